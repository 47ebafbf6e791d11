package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"certvault/models"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Gorm is a Store on top of a migrated gorm database.
type Gorm struct {
	db *gorm.DB
}

func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (g *Gorm) ListCertificates(ctx context.Context, userID string) ([]models.Certificate, error) {
	var certificates []models.Certificate
	if err := g.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&certificates).Error; err != nil {
		return nil, fmt.Errorf("list certificates: %w", err)
	}
	return certificates, nil
}

func (g *Gorm) ListPending(ctx context.Context) ([]models.Certificate, error) {
	var certificates []models.Certificate
	if err := g.db.WithContext(ctx).
		Where("verification_status = ?", models.StatusPending).
		Order("created_at asc").
		Find(&certificates).Error; err != nil {
		return nil, fmt.Errorf("list pending certificates: %w", err)
	}
	return certificates, nil
}

func (g *Gorm) GetCertificate(ctx context.Context, id string) (*models.Certificate, error) {
	var cert models.Certificate
	if err := g.db.WithContext(ctx).Where("id = ?", id).First(&cert).Error; err != nil {
		return nil, notFound(err)
	}
	return &cert, nil
}

func (g *Gorm) CreateCertificate(ctx context.Context, userID string, fields models.CertificateFields) (*models.Certificate, error) {
	cert := models.Certificate{
		ID:                 "cert-" + uuid.NewString(),
		UserID:             userID,
		Title:              fields.Title,
		InstitutionName:    fields.InstitutionName,
		ProgramName:        fields.ProgramName,
		IssueDate:          fields.IssueDate,
		VerificationURL:    fields.VerificationURL,
		CertificateURL:     fields.CertificateURL,
		VerificationStatus: models.StatusPending,
	}
	if err := g.db.WithContext(ctx).Create(&cert).Error; err != nil {
		return nil, fmt.Errorf("create certificate: %w", err)
	}
	return &cert, nil
}

func (g *Gorm) GetStatus(ctx context.Context, id string) (models.VerificationStatus, error) {
	var cert models.Certificate
	if err := g.db.WithContext(ctx).
		Select("id", "verification_status").
		Where("id = ?", id).
		First(&cert).Error; err != nil {
		return "", notFound(err)
	}
	return cert.VerificationStatus, nil
}

func (g *Gorm) SetStatus(ctx context.Context, id string, status models.VerificationStatus, details datatypes.JSON) (*models.Certificate, error) {
	var out models.Certificate
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&out).Error; err != nil {
			return notFound(err)
		}
		from := out.VerificationStatus
		if err := out.TransitionTo(status); err != nil {
			return fmt.Errorf("%s -> %s: %w", from, status, err)
		}

		updates := map[string]interface{}{
			"verification_status": status,
			"updated_at":          time.Now().UTC(),
		}
		if details != nil {
			updates["verification_details"] = details
		}

		// Guard against a concurrent transition between read and write.
		res := tx.Model(&models.Certificate{}).
			Where("id = ? AND verification_status = ?", id, from).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%s changed concurrently: %w", id, ErrInvalidTransition)
		}
		return tx.Where("id = ?", id).First(&out).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *Gorm) AssignMint(ctx context.Context, id, mintAddress, arweaveURL string) (*models.Certificate, error) {
	db := g.db.WithContext(ctx)

	res := db.Model(&models.Certificate{}).
		Where("id = ? AND verification_status = ? AND (nft_mint_address IS NULL OR nft_mint_address = '')",
			id, models.StatusVerified).
		Updates(map[string]interface{}{
			"nft_mint_address": mintAddress,
			"arweave_url":      arweaveURL,
			"updated_at":       time.Now().UTC(),
		})
	if res.Error != nil {
		return nil, fmt.Errorf("assign mint: %w", res.Error)
	}

	cert, err := g.GetCertificate(ctx, id)
	if err != nil {
		return nil, err
	}
	if res.RowsAffected == 0 {
		if cert.IsMinted() {
			return nil, ErrAlreadyMinted
		}
		return nil, ErrNotVerified
	}
	return cert, nil
}

func (g *Gorm) AppendVerificationLog(ctx context.Context, entry *models.VerificationLog) error {
	db := g.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.Certificate{}).Where("id = ?", entry.CertificateID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}

	if entry.ID == "" {
		entry.ID = "log-" + uuid.NewString()
	}
	if err := db.Create(entry).Error; err != nil {
		return fmt.Errorf("append verification log: %w", err)
	}
	return nil
}

func (g *Gorm) ListVerificationLogs(ctx context.Context, certificateID string) ([]models.VerificationLog, error) {
	var logs []models.VerificationLog
	if err := g.db.WithContext(ctx).
		Where("certificate_id = ?", certificateID).
		Order("created_at asc").
		Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("list verification logs: %w", err)
	}
	return logs, nil
}

func (g *Gorm) GetUserProfile(ctx context.Context, walletAddress string) (*models.User, error) {
	walletAddress = strings.TrimSpace(walletAddress)
	if walletAddress == "" {
		return nil, fmt.Errorf("wallet address is required")
	}

	var user models.User
	err := g.db.WithContext(ctx).
		Where(models.User{WalletAddress: walletAddress}).
		Attrs(models.User{ID: "user-" + uuid.NewString(), FullName: "Solana User"}).
		FirstOrCreate(&user).Error
	if err != nil {
		return nil, fmt.Errorf("get user profile: %w", err)
	}
	return &user, nil
}

func (g *Gorm) GetUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := g.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (g *Gorm) UpdateUserProfile(ctx context.Context, update models.UserUpdate) (*models.User, error) {
	db := g.db.WithContext(ctx)

	var user models.User
	var err error
	switch {
	case update.ID != "":
		err = db.Where("id = ?", update.ID).First(&user).Error
	case update.WalletAddress != "":
		err = db.Where("wallet_address = ?", update.WalletAddress).First(&user).Error
	default:
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, notFound(err)
	}

	update.Apply(&user)
	if err := db.Save(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateEntry
		}
		return nil, fmt.Errorf("update user profile: %w", err)
	}
	return &user, nil
}

func (g *Gorm) Close() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
