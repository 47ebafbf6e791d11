package services

import (
	"context"
	"fmt"

	"certvault/files"
	"certvault/models"
	"certvault/store"

	"go.uber.org/zap"
)

type ProfileService struct {
	store   store.Store
	storage *files.Storage
	logger  *zap.Logger
}

func NewProfileService(s store.Store, storage *files.Storage, logger *zap.Logger) *ProfileService {
	if logger == nil {
		logger = zap.L()
	}
	return &ProfileService{store: s, storage: storage, logger: logger}
}

func (p *ProfileService) Get(ctx context.Context, userID string) (*models.User, error) {
	return p.store.GetUser(ctx, userID)
}

// ProfileForm is a partial profile update with an optional new image.
type ProfileForm struct {
	FullName string
	Email    string
	Image    *files.File
}

// Update uploads the image first, then applies the non-empty fields.
func (p *ProfileService) Update(ctx context.Context, userID string, form ProfileForm) (*models.User, error) {
	update := models.UserUpdate{
		ID:       userID,
		FullName: form.FullName,
		Email:    form.Email,
	}
	if form.Image != nil && len(form.Image.Data) > 0 {
		url, err := p.storage.Upload(form.Image, files.KindProfile)
		if err != nil {
			return nil, fmt.Errorf("upload profile image: %w", err)
		}
		update.ProfileImageURL = url
	}

	user, err := p.store.UpdateUserProfile(ctx, update)
	if err != nil {
		return nil, err
	}
	p.logger.Info("Profile updated", zap.String("user_id", userID))
	return user, nil
}
