package mint

import (
	"context"
	"strings"
	"testing"

	"certvault/models"
	"certvault/store"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewMintAddressIsPublicKey(t *testing.T) {
	address := NewMintAddress()
	_, err := solana.PublicKeyFromBase58(address)
	require.NoError(t, err)
	assert.NotEqual(t, address, NewMintAddress())
}

func TestNewArweaveURL(t *testing.T) {
	url, err := NewArweaveURL()
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "https://arweave.net/"))
	assert.Len(t, strings.TrimPrefix(url, "https://arweave.net/"), 43)
}

func TestMint(t *testing.T) {
	ctx := context.Background()
	s := store.NewSeededMemory(store.Latency{})
	m := NewMinter(s, zap.NewNop())

	_, err := m.Mint(ctx, "cert-2")
	assert.ErrorIs(t, err, store.ErrNotVerified)

	_, err = m.Mint(ctx, "cert-1")
	assert.ErrorIs(t, err, store.ErrAlreadyMinted)

	_, err = s.SetStatus(ctx, "cert-2", models.StatusVerified, nil)
	require.NoError(t, err)

	cert, err := m.Mint(ctx, "cert-2")
	require.NoError(t, err)
	assert.True(t, cert.IsMinted())
	assert.Contains(t, cert.ArweaveURL, "https://arweave.net/")

	_, err = m.Mint(ctx, "cert-2")
	assert.ErrorIs(t, err, store.ErrAlreadyMinted)
}
