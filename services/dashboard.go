package services

import (
	"context"
	"time"

	"certvault/models"
	"certvault/store"

	"github.com/jinzhu/now"
)

const recentCertificates = 3

type Dashboard struct {
	Total           int                  `json:"total"`
	Verified        int                  `json:"verified"`
	Pending         int                  `json:"pending"`
	Rejected        int                  `json:"rejected"`
	Minted          int                  `json:"minted"`
	IssuedThisMonth int                  `json:"issued_this_month"`
	Recent          []models.Certificate `json:"recent"`
}

type DashboardService struct {
	store store.Store
	now   func() time.Time
}

func NewDashboardService(s store.Store) *DashboardService {
	return &DashboardService{store: s, now: time.Now}
}

func (d *DashboardService) Summary(ctx context.Context, userID string) (*Dashboard, error) {
	certs, err := d.store.ListCertificates(ctx, userID)
	if err != nil {
		return nil, err
	}

	monthStart := now.With(d.now()).BeginningOfMonth()
	out := &Dashboard{Total: len(certs), Recent: []models.Certificate{}}
	for _, c := range certs {
		switch c.VerificationStatus {
		case models.StatusVerified:
			out.Verified++
		case models.StatusPending:
			out.Pending++
		case models.StatusRejected:
			out.Rejected++
		}
		if c.IsMinted() {
			out.Minted++
		}
		if !c.CreatedAt.Before(monthStart) {
			out.IssuedThisMonth++
		}
	}

	// certs are newest first
	if len(certs) > recentCertificates {
		certs = certs[:recentCertificates]
	}
	out.Recent = append(out.Recent, certs...)
	return out, nil
}
