package models

import (
	"time"
)

type User struct {
	ID              string    `json:"id" gorm:"primaryKey;size:64"`
	FullName        string    `json:"full_name" gorm:"default:''"`
	Email           string    `json:"email,omitempty" gorm:"default:''"`
	WalletAddress   string    `json:"wallet_address" gorm:"uniqueIndex;size:64;not null"`
	ProfileImageURL string    `json:"profile_image_url,omitempty" gorm:"default:''"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// UserUpdate is a partial profile update. Empty fields keep their current value.
type UserUpdate struct {
	ID              string `json:"id"`
	FullName        string `json:"full_name"`
	Email           string `json:"email"`
	WalletAddress   string `json:"wallet_address"`
	ProfileImageURL string `json:"profile_image_url"`
}

// Apply copies the non-empty fields of u onto user.
func (u UserUpdate) Apply(user *User) {
	if u.FullName != "" {
		user.FullName = u.FullName
	}
	if u.Email != "" {
		user.Email = u.Email
	}
	if u.WalletAddress != "" {
		user.WalletAddress = u.WalletAddress
	}
	if u.ProfileImageURL != "" {
		user.ProfileImageURL = u.ProfileImageURL
	}
}
