// Package mint simulates minting a verified certificate as an NFT.
package mint

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"certvault/models"
	"certvault/store"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

const arweaveGateway = "https://arweave.net/"

// Minter assigns a mint address and permanent storage URL to a certificate.
type Minter struct {
	store  store.Store
	logger *zap.Logger
}

func NewMinter(s store.Store, logger *zap.Logger) *Minter {
	if logger == nil {
		logger = zap.L()
	}
	return &Minter{store: s, logger: logger}
}

// Mint fails with store.ErrNotVerified or store.ErrAlreadyMinted when the
// certificate cannot be minted. Concurrent calls assign exactly one address.
func (m *Minter) Mint(ctx context.Context, certificateID string) (*models.Certificate, error) {
	address := NewMintAddress()
	arweaveURL, err := NewArweaveURL()
	if err != nil {
		return nil, err
	}

	cert, err := m.store.AssignMint(ctx, certificateID, address, arweaveURL)
	if err != nil {
		return nil, fmt.Errorf("mint %s: %w", certificateID, err)
	}

	m.logger.Info("Certificate minted",
		zap.String("certificate_id", certificateID),
		zap.String("mint_address", cert.NFTMintAddress),
		zap.String("arweave_url", cert.ArweaveURL))
	return cert, nil
}

// NewMintAddress returns the base58 public key of a fresh keypair.
func NewMintAddress() string {
	wallet := solana.NewWallet()
	defer clear(wallet.PrivateKey)
	return wallet.PublicKey().String()
}

// NewArweaveURL returns a gateway URL with a random 43 character transaction id.
func NewArweaveURL() (string, error) {
	id := make([]byte, 32)
	if _, err := rand.Read(id); err != nil {
		return "", fmt.Errorf("failed to generate arweave id: %w", err)
	}
	return arweaveGateway + base64.RawURLEncoding.EncodeToString(id), nil
}
