package models

import "time"

const (
	VariantDefault     = "default"
	VariantDestructive = "destructive"
)

// Notification is a user-visible message raised by background work.
type Notification struct {
	UserID        string    `json:"user_id"`
	CertificateID string    `json:"certificate_id,omitempty"`
	Title         string    `json:"title"`
	Message       string    `json:"message"`
	Variant       string    `json:"variant"`
	CreatedAt     time.Time `json:"created_at"`
}
