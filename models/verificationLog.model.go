package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	StepSubmission         = "submission"
	StepHashVerification   = "hash_verification"
	StepIssuerVerification = "issuer_verification"
)

const (
	LogSuccess = "success"
	LogPending = "pending"
	LogFailed  = "failed"
)

// VerificationLog is append-only; ordering is creation time.
type VerificationLog struct {
	ID               string         `json:"id" gorm:"primaryKey;size:64"`
	CertificateID    string         `json:"certificate_id" gorm:"index;size:64;not null"`
	VerificationStep string         `json:"verification_step" gorm:"size:64;not null"`
	Status           string         `json:"status" gorm:"size:16;not null"`
	Details          datatypes.JSON `json:"details,omitempty"`
	CreatedAt        time.Time      `json:"created_at" gorm:"index"`
}
