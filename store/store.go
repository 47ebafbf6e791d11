// Package store holds the certificate and profile records behind one interface,
// with an in-memory implementation (seeded mock tables, artificial latency) and
// a gorm implementation.
package store

import (
	"context"
	"errors"

	"certvault/models"

	"gorm.io/datatypes"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrAlreadyMinted  = errors.New("certificate already minted")
	ErrNotVerified    = errors.New("certificate must be verified before minting")
	ErrDuplicateEntry = errors.New("duplicate record")
)

// ErrInvalidTransition is shared with models so callers can match either.
var ErrInvalidTransition = models.ErrInvalidTransition

type Store interface {
	// ListCertificates returns the user's certificates, newest first.
	ListCertificates(ctx context.Context, userID string) ([]models.Certificate, error)
	// ListPending returns every certificate still awaiting verification.
	ListPending(ctx context.Context) ([]models.Certificate, error)
	GetCertificate(ctx context.Context, id string) (*models.Certificate, error)
	// CreateCertificate always stores the record as pending.
	CreateCertificate(ctx context.Context, userID string, fields models.CertificateFields) (*models.Certificate, error)
	GetStatus(ctx context.Context, id string) (models.VerificationStatus, error)
	// SetStatus applies a lifecycle transition. A nil details keeps the current value.
	SetStatus(ctx context.Context, id string, status models.VerificationStatus, details datatypes.JSON) (*models.Certificate, error)
	// AssignMint sets the mint address once, on a verified certificate.
	AssignMint(ctx context.Context, id, mintAddress, arweaveURL string) (*models.Certificate, error)

	AppendVerificationLog(ctx context.Context, entry *models.VerificationLog) error
	ListVerificationLogs(ctx context.Context, certificateID string) ([]models.VerificationLog, error)

	// GetUserProfile returns the user owning walletAddress, creating it on first sight.
	GetUserProfile(ctx context.Context, walletAddress string) (*models.User, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	UpdateUserProfile(ctx context.Context, update models.UserUpdate) (*models.User, error)

	Close() error
}
