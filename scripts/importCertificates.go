package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"io"
	"log"
	"os"
	"strings"

	"certvault/config"
	"certvault/database"
	"certvault/models"
	"certvault/services"
	"certvault/session"
	"certvault/store"
)

// importer is the slice of the store the CSV import writes through.
type importer interface {
	GetUserProfile(ctx context.Context, walletAddress string) (*models.User, error)
}

type importStats struct {
	Inserted int
	Skipped  int
}

func main() {
	path := flag.String("file", "certificates.csv", "CSV with a header row")
	flag.Parse()

	// Load config and connect to database
	config.LoadConfig()
	db, err := database.ConnectDb(config.AppConfig)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	st := store.NewGorm(db)
	defer st.Close()

	file, err := os.Open(*path)
	if err != nil {
		log.Fatalf("Failed to open CSV file: %v", err)
	}
	defer file.Close()

	certs := services.NewCertificateService(services.Deps{Store: st})
	stats, err := importCertificates(context.Background(), file, st, certs)
	if err != nil {
		log.Fatal(err)
	}

	log.Printf("=== Import Complete ===")
	log.Printf("Inserted: %d", stats.Inserted)
	log.Printf("Skipped: %d", stats.Skipped)
	log.Printf("Imported certificates stay pending until verification is started")
}

// importCertificates creates one pending certificate per CSV row, creating
// the owner profile on first sight of a wallet.
func importCertificates(ctx context.Context, r io.Reader, users importer, certs *services.CertificateService) (importStats, error) {
	var stats importStats

	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return stats, err
	}
	if len(records) < 2 {
		return stats, errors.New("CSV file is empty or has only headers")
	}

	// Map header indices
	headerIndex := make(map[string]int)
	for i, h := range records[0] {
		headerIndex[strings.TrimSpace(h)] = i
	}
	log.Printf("Total rows to import: %d", len(records)-1)

	for i, row := range records[1:] {
		wallet, err := session.ValidateAddress(getField(row, headerIndex, "wallet_address"))
		if err != nil {
			log.Printf("Row %d skipped: %v", i+2, err)
			stats.Skipped++
			continue
		}
		user, err := users.GetUserProfile(ctx, wallet)
		if err != nil {
			return stats, err
		}

		_, err = certs.Create(ctx, user.ID, models.CertificateFields{
			Title:           getField(row, headerIndex, "title"),
			InstitutionName: getField(row, headerIndex, "institution_name"),
			ProgramName:     getField(row, headerIndex, "program_name"),
			IssueDate:       getField(row, headerIndex, "issue_date"),
			CertificateURL:  getField(row, headerIndex, "certificate_url"),
			VerificationURL: getField(row, headerIndex, "verification_url"),
		})
		var fieldErrs services.FieldErrors
		if errors.As(err, &fieldErrs) {
			log.Printf("Row %d skipped: %v", i+2, fieldErrs)
			stats.Skipped++
			continue
		}
		if err != nil {
			return stats, err
		}
		stats.Inserted++
	}
	return stats, nil
}

// getField safely gets a field from the row by header name
func getField(row []string, headerIndex map[string]int, field string) string {
	if idx, ok := headerIndex[field]; ok && idx < len(row) {
		return strings.TrimSpace(row[idx])
	}
	return ""
}
