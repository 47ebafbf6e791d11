package store

import (
	"time"

	"certvault/models"

	"gorm.io/datatypes"
)

// DemoWallet owns the seeded certificates.
const DemoWallet = "5wLhAsYwvKcDviAFHyWZB7UZLWGqABXSSqQjJXqM5eu2"

func mustTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

// SeedUsers returns the demo profile that owns the seeded certificates.
func SeedUsers() []models.User {
	return []models.User{
		{
			ID:              "user-1",
			FullName:        "Alex Johnson",
			Email:           "alex@example.com",
			WalletAddress:   DemoWallet,
			ProfileImageURL: "https://example.com/profile/alex.jpg",
			CreatedAt:       mustTime("2024-01-01T00:00:00Z"),
			UpdatedAt:       mustTime("2024-04-01T00:00:00Z"),
		},
	}
}

// SeedCertificates returns one certificate in each verification state.
func SeedCertificates() []models.Certificate {
	return []models.Certificate{
		{
			ID:                 "cert-1",
			UserID:             "user-1",
			Title:              "Blockchain Developer",
			InstitutionName:    "Solana Academy",
			ProgramName:        "Web3 Development",
			IssueDate:          "2024-03-15",
			VerificationURL:    "https://example.com/verify/cert-1",
			CertificateURL:     "https://example.com/certificates/cert-1.pdf",
			VerificationStatus: models.StatusVerified,
			ArweaveURL:         "https://arweave.net/abc123cert1",
			NFTMintAddress:     "SNftxKdf8xY6vKn5DS3qBM5bpvEwQNwD5a5PJj5nAVd",
			CreatedAt:          mustTime("2024-03-15T10:00:00Z"),
			UpdatedAt:          mustTime("2024-03-16T15:30:00Z"),
		},
		{
			ID:                 "cert-2",
			UserID:             "user-1",
			Title:              "NFT Artist Certificate",
			InstitutionName:    "Digital Art School",
			ProgramName:        "NFT Creation",
			IssueDate:          "2024-02-20",
			VerificationURL:    "https://example.com/verify/cert-2",
			CertificateURL:     "https://example.com/certificates/cert-2.pdf",
			VerificationStatus: models.StatusPending,
			CreatedAt:          mustTime("2024-02-20T14:20:00Z"),
			UpdatedAt:          mustTime("2024-02-20T14:20:00Z"),
		},
		{
			ID:                  "cert-3",
			UserID:              "user-1",
			Title:               "Solana Programming",
			InstitutionName:     "Solana University",
			ProgramName:         "Smart Contract Development",
			IssueDate:           "2024-01-10",
			VerificationURL:     "https://example.com/verify/cert-3",
			CertificateURL:      "https://example.com/certificates/cert-3.pdf",
			VerificationStatus:  models.StatusRejected,
			VerificationDetails: datatypes.JSON(`{"reason":"Invalid institution signature"}`),
			CreatedAt:           mustTime("2024-01-10T09:15:00Z"),
			UpdatedAt:           mustTime("2024-01-11T16:45:00Z"),
		},
	}
}

func SeedVerificationLogs() []models.VerificationLog {
	entry := func(id, certID, step, status, msg, at string) models.VerificationLog {
		return models.VerificationLog{
			ID:               id,
			CertificateID:    certID,
			VerificationStep: step,
			Status:           status,
			Details:          datatypes.JSON(`{"message":"` + msg + `"}`),
			CreatedAt:        mustTime(at),
		}
	}
	return []models.VerificationLog{
		entry("log-1", "cert-1", models.StepHashVerification, models.LogSuccess, "Certificate hash verified", "2024-03-16T11:30:00Z"),
		entry("log-2", "cert-1", models.StepIssuerVerification, models.LogSuccess, "Issuer signature verified", "2024-03-16T11:31:00Z"),
		entry("log-3", "cert-2", models.StepHashVerification, models.LogSuccess, "Certificate hash verified", "2024-02-20T14:25:00Z"),
		entry("log-4", "cert-2", models.StepIssuerVerification, models.LogPending, "Waiting for issuer confirmation", "2024-02-20T14:26:00Z"),
		entry("log-5", "cert-3", models.StepHashVerification, models.LogSuccess, "Certificate hash verified", "2024-01-11T10:15:00Z"),
		entry("log-6", "cert-3", models.StepIssuerVerification, models.LogFailed, "Invalid institution signature", "2024-01-11T10:16:00Z"),
	}
}
