// Package session implements wallet login: address validation, JWT issuing
// and revocation, the mock wallet, and the CLI's persisted session.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"certvault/models"

	"github.com/gagliardetto/solana-go"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrInvalidAddress = errors.New("invalid wallet address")
	ErrInvalidToken   = errors.New("invalid or expired token")
	ErrRevoked        = errors.New("token has been revoked")
)

// Claims carried by every session token.
type Claims struct {
	UserID string `json:"userId"`
	Wallet string `json:"wallet"`
	jwt.RegisteredClaims
}

type Session struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

// UserStore resolves a wallet to its profile, creating it on first login.
type UserStore interface {
	GetUserProfile(ctx context.Context, walletAddress string) (*models.User, error)
}

type Manager struct {
	key    []byte
	ttl    time.Duration
	users  UserStore
	logger *zap.Logger
	now    func() time.Time

	mu      sync.Mutex
	revoked map[string]time.Time
}

func NewManager(key string, ttl time.Duration, users UserStore, logger *zap.Logger) *Manager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if logger == nil {
		logger = zap.L()
	}
	return &Manager{
		key:     []byte(key),
		ttl:     ttl,
		users:   users,
		logger:  logger,
		now:     time.Now,
		revoked: make(map[string]time.Time),
	}
}

// ValidateAddress checks that address is a base58 Solana public key.
func ValidateAddress(address string) (string, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return "", ErrInvalidAddress
	}
	if _, err := solana.PublicKeyFromBase58(address); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	return address, nil
}

func (m *Manager) Login(ctx context.Context, walletAddress string) (*Session, error) {
	address, err := ValidateAddress(walletAddress)
	if err != nil {
		return nil, err
	}

	user, err := m.users.GetUserProfile(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}

	token, expiresAt, err := m.Issue(user.ID, address)
	if err != nil {
		return nil, err
	}

	m.logger.Info("Wallet connected", zap.String("user_id", user.ID), zap.String("wallet", address))
	return &Session{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// Issue signs a token for userID.
func (m *Manager) Issue(userID, wallet string) (string, time.Time, error) {
	now := m.now()
	expiresAt := now.Add(m.ttl)
	claims := Claims{
		UserID: userID,
		Wallet: wallet,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return token, expiresAt, nil
}

// Parse validates a token and returns its claims.
func (m *Manager) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return m.key, nil
	})
	if err != nil || !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}

	m.mu.Lock()
	_, revoked := m.revoked[claims.ID]
	m.mu.Unlock()
	if revoked {
		return nil, ErrRevoked
	}
	return claims, nil
}

// Logout revokes the token until it would have expired anyway.
func (m *Manager) Logout(tokenString string) error {
	claims, err := m.Parse(tokenString)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	for id, exp := range m.revoked {
		if exp.Before(now) {
			delete(m.revoked, id)
		}
	}
	m.revoked[claims.ID] = claims.ExpiresAt.Time

	m.logger.Info("Wallet disconnected", zap.String("user_id", claims.UserID))
	return nil
}
