package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"certvault/models"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Latency is the artificial delay applied to each in-memory operation.
type Latency struct {
	List          time.Duration
	Get           time.Duration
	Create        time.Duration
	Status        time.Duration
	Profile       time.Duration
	UpdateProfile time.Duration
	Logs          time.Duration
}

// DefaultLatency mirrors the delays of the mocked web API.
func DefaultLatency() Latency {
	return Latency{
		List:          800 * time.Millisecond,
		Get:           500 * time.Millisecond,
		Create:        1500 * time.Millisecond,
		Status:        500 * time.Millisecond,
		Profile:       800 * time.Millisecond,
		UpdateProfile: 1200 * time.Millisecond,
		Logs:          300 * time.Millisecond,
	}
}

// Memory is a Store backed by in-process tables. Safe for concurrent use.
type Memory struct {
	latency Latency

	mu           sync.RWMutex
	users        map[string]*models.User
	certificates map[string]*models.Certificate
	logs         []models.VerificationLog
}

// NewMemory returns an empty store.
func NewMemory(latency Latency) *Memory {
	return &Memory{
		latency:      latency,
		users:        make(map[string]*models.User),
		certificates: make(map[string]*models.Certificate),
	}
}

// NewSeededMemory returns a store holding the demo user, certificates and logs.
func NewSeededMemory(latency Latency) *Memory {
	m := NewMemory(latency)
	for _, u := range SeedUsers() {
		u := u
		m.users[u.ID] = &u
	}
	for _, c := range SeedCertificates() {
		c := c
		m.certificates[c.ID] = &c
	}
	m.logs = append(m.logs, SeedVerificationLogs()...)
	return m
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func cloneJSON(j datatypes.JSON) datatypes.JSON {
	if j == nil {
		return nil
	}
	out := make(datatypes.JSON, len(j))
	copy(out, j)
	return out
}

func cloneCertificate(c *models.Certificate) *models.Certificate {
	out := *c
	out.VerificationDetails = cloneJSON(c.VerificationDetails)
	return &out
}

func (m *Memory) ListCertificates(ctx context.Context, userID string) ([]models.Certificate, error) {
	if err := wait(ctx, m.latency.List); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Certificate, 0)
	for _, c := range m.certificates {
		if c.UserID == userID {
			out = append(out, *cloneCertificate(c))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *Memory) ListPending(ctx context.Context) ([]models.Certificate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Certificate, 0)
	for _, c := range m.certificates {
		if c.VerificationStatus == models.StatusPending {
			out = append(out, *cloneCertificate(c))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (m *Memory) GetCertificate(ctx context.Context, id string) (*models.Certificate, error) {
	if err := wait(ctx, m.latency.Get); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.certificates[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneCertificate(c), nil
}

func (m *Memory) CreateCertificate(ctx context.Context, userID string, fields models.CertificateFields) (*models.Certificate, error) {
	if err := wait(ctx, m.latency.Create); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	c := &models.Certificate{
		ID:                 "cert-" + uuid.NewString(),
		UserID:             userID,
		Title:              fields.Title,
		InstitutionName:    fields.InstitutionName,
		ProgramName:        fields.ProgramName,
		IssueDate:          fields.IssueDate,
		VerificationURL:    fields.VerificationURL,
		CertificateURL:     fields.CertificateURL,
		VerificationStatus: models.StatusPending,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	m.mu.Lock()
	m.certificates[c.ID] = c
	m.mu.Unlock()

	return cloneCertificate(c), nil
}

func (m *Memory) GetStatus(ctx context.Context, id string) (models.VerificationStatus, error) {
	if err := wait(ctx, m.latency.Status); err != nil {
		return "", err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.certificates[id]
	if !ok {
		return "", ErrNotFound
	}
	return c.VerificationStatus, nil
}

func (m *Memory) SetStatus(ctx context.Context, id string, status models.VerificationStatus, details datatypes.JSON) (*models.Certificate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.certificates[id]
	if !ok {
		return nil, ErrNotFound
	}
	if err := c.TransitionTo(status); err != nil {
		return nil, fmt.Errorf("%s -> %s: %w", c.VerificationStatus, status, err)
	}
	if details != nil {
		c.VerificationDetails = cloneJSON(details)
	}
	c.UpdatedAt = time.Now().UTC()
	return cloneCertificate(c), nil
}

func (m *Memory) AssignMint(ctx context.Context, id, mintAddress, arweaveURL string) (*models.Certificate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.certificates[id]
	if !ok {
		return nil, ErrNotFound
	}
	if c.IsMinted() {
		return nil, ErrAlreadyMinted
	}
	if c.VerificationStatus != models.StatusVerified {
		return nil, ErrNotVerified
	}
	c.NFTMintAddress = mintAddress
	c.ArweaveURL = arweaveURL
	c.UpdatedAt = time.Now().UTC()
	return cloneCertificate(c), nil
}

func (m *Memory) AppendVerificationLog(ctx context.Context, entry *models.VerificationLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.certificates[entry.CertificateID]; !ok {
		return ErrNotFound
	}
	if entry.ID == "" {
		entry.ID = "log-" + uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	stored := *entry
	stored.Details = cloneJSON(entry.Details)
	m.logs = append(m.logs, stored)
	return nil
}

func (m *Memory) ListVerificationLogs(ctx context.Context, certificateID string) ([]models.VerificationLog, error) {
	if err := wait(ctx, m.latency.Logs); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.VerificationLog, 0)
	for _, l := range m.logs {
		if l.CertificateID == certificateID {
			l.Details = cloneJSON(l.Details)
			out = append(out, l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (m *Memory) GetUserProfile(ctx context.Context, walletAddress string) (*models.User, error) {
	if err := wait(ctx, m.latency.Profile); err != nil {
		return nil, err
	}
	walletAddress = strings.TrimSpace(walletAddress)
	if walletAddress == "" {
		return nil, fmt.Errorf("wallet address is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.WalletAddress == walletAddress {
			out := *u
			return &out, nil
		}
	}

	now := time.Now().UTC()
	u := &models.User{
		ID:            "user-" + uuid.NewString(),
		FullName:      "Solana User",
		WalletAddress: walletAddress,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	m.users[u.ID] = u
	out := *u
	return &out, nil
}

func (m *Memory) GetUser(ctx context.Context, id string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *u
	return &out, nil
}

func (m *Memory) UpdateUserProfile(ctx context.Context, update models.UserUpdate) (*models.User, error) {
	if err := wait(ctx, m.latency.UpdateProfile); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var target *models.User
	if update.ID != "" {
		target = m.users[update.ID]
	} else if update.WalletAddress != "" {
		for _, u := range m.users {
			if u.WalletAddress == update.WalletAddress {
				target = u
				break
			}
		}
	}
	if target == nil {
		return nil, ErrNotFound
	}

	if update.WalletAddress != "" && update.WalletAddress != target.WalletAddress {
		for _, u := range m.users {
			if u.ID != target.ID && u.WalletAddress == update.WalletAddress {
				return nil, ErrDuplicateEntry
			}
		}
	}

	update.Apply(target)
	target.UpdatedAt = time.Now().UTC()
	out := *target
	return &out, nil
}

func (m *Memory) Close() error { return nil }
