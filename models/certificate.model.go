package models

import (
	"errors"
	"time"

	"gorm.io/datatypes"
)

type VerificationStatus string

const (
	StatusPending  VerificationStatus = "pending"
	StatusVerified VerificationStatus = "verified"
	StatusRejected VerificationStatus = "rejected"
)

// ErrInvalidTransition is returned for status moves outside the verification lifecycle.
var ErrInvalidTransition = errors.New("invalid verification status transition")

// IsTerminal reports whether polling should stop at s.
func (s VerificationStatus) IsTerminal() bool {
	return s == StatusVerified || s == StatusRejected
}

func (s VerificationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusVerified, StatusRejected:
		return true
	}
	return false
}

// CanTransition reports whether a certificate may move from s to next.
// pending -> verified|rejected, rejected -> pending (resubmission), and same-status no-ops.
func (s VerificationStatus) CanTransition(next VerificationStatus) bool {
	if !s.Valid() || !next.Valid() {
		return false
	}
	if s == next {
		return true
	}
	switch s {
	case StatusPending:
		return next == StatusVerified || next == StatusRejected
	case StatusRejected:
		return next == StatusPending
	}
	return false
}

type Certificate struct {
	ID                  string             `json:"id" gorm:"primaryKey;size:64"`
	UserID              string             `json:"user_id" gorm:"index;size:64;not null"`
	Title               string             `json:"title" gorm:"not null"`
	InstitutionName     string             `json:"institution_name" gorm:"not null"`
	ProgramName         string             `json:"program_name" gorm:"not null"`
	IssueDate           string             `json:"issue_date" gorm:"size:10"`
	VerificationURL     string             `json:"verification_url"`
	CertificateURL      string             `json:"certificate_url"`
	ArweaveURL          string             `json:"arweave_url,omitempty"`
	NFTMintAddress      string             `json:"nft_mint_address,omitempty" gorm:"index;size:64"`
	VerificationStatus  VerificationStatus `json:"verification_status" gorm:"index;size:16;default:'pending'"`
	VerificationDetails datatypes.JSON     `json:"verification_details,omitempty"`
	CreatedAt           time.Time          `json:"created_at"`
	UpdatedAt           time.Time          `json:"updated_at"`
}

// IsMinted reports whether a mint address has been assigned.
func (c *Certificate) IsMinted() bool {
	return c.NFTMintAddress != ""
}

// TransitionTo moves the certificate to next, enforcing the lifecycle.
func (c *Certificate) TransitionTo(next VerificationStatus) error {
	if !c.VerificationStatus.CanTransition(next) {
		return ErrInvalidTransition
	}
	c.VerificationStatus = next
	return nil
}

// CertificateFields are the user-supplied parts of a new certificate.
type CertificateFields struct {
	Title           string `json:"title"`
	InstitutionName string `json:"institution_name"`
	ProgramName     string `json:"program_name"`
	IssueDate       string `json:"issue_date"`
	VerificationURL string `json:"verification_url"`
	CertificateURL  string `json:"certificate_url"`
}
