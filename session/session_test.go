package session

import (
	"context"
	"testing"
	"time"

	"certvault/store"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newManager(ttl time.Duration) *Manager {
	return NewManager("test-secret", ttl, store.NewSeededMemory(store.Latency{}), zap.NewNop())
}

func TestValidateAddress(t *testing.T) {
	for _, addr := range DemoAddresses {
		got, err := ValidateAddress("  " + addr + " ")
		require.NoError(t, err)
		assert.Equal(t, addr, got)
	}

	for _, bad := range []string{"", "not-a-wallet", "0OIl"} {
		_, err := ValidateAddress(bad)
		assert.ErrorIs(t, err, ErrInvalidAddress, bad)
	}
}

func TestLoginParseLogout(t *testing.T) {
	m := newManager(time.Hour)
	ctx := context.Background()

	s, err := m.Login(ctx, store.DemoWallet)
	require.NoError(t, err)
	assert.Equal(t, "user-1", s.User.ID)

	claims, err := m.Parse(s.Token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, store.DemoWallet, claims.Wallet)
	assert.NotEmpty(t, claims.ID)

	require.NoError(t, m.Logout(s.Token))
	_, err = m.Parse(s.Token)
	assert.ErrorIs(t, err, ErrRevoked)

	assert.Error(t, m.Logout(s.Token))
}

func TestLoginRejectsInvalidAddress(t *testing.T) {
	_, err := newManager(time.Hour).Login(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrInvalidAddress)
}

func TestParseRejectsBadTokens(t *testing.T) {
	m := newManager(time.Hour)

	_, err := m.Parse("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)

	other := NewManager("other-secret", time.Hour, nil, zap.NewNop())
	token, _, err := other.Issue("user-1", store.DemoWallet)
	require.NoError(t, err)
	_, err = m.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := newManager(time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _, err = expired.Issue("user-1", store.DemoWallet)
	require.NoError(t, err)
	_, err = m.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestWalletSimulator(t *testing.T) {
	m := newManager(time.Hour)
	ctx := context.Background()

	t.Run("demo address", func(t *testing.T) {
		w := NewWalletSimulator(m, false)
		w.pick = func(int) int { return 0 }

		s, err := w.Connect(ctx)
		require.NoError(t, err)
		assert.Equal(t, DemoAddresses[0], s.User.WalletAddress)
		require.NoError(t, w.Disconnect(s.Token))
	})

	t.Run("generated address", func(t *testing.T) {
		w := NewWalletSimulator(m, true)
		s, err := w.Connect(ctx)
		require.NoError(t, err)
		_, err = solana.PublicKeyFromBase58(s.User.WalletAddress)
		assert.NoError(t, err)
		assert.NotContains(t, DemoAddresses, s.User.WalletAddress)
	})
}

func TestFileStoreRoundTrip(t *testing.T) {
	fs := NewFileStore(t.TempDir())

	_, err := fs.Load()
	assert.ErrorIs(t, err, ErrNoSession)

	want := Saved{WalletAddress: store.DemoWallet, UserID: "user-1", Token: "tok"}
	require.NoError(t, fs.Save(want))

	got, err := fs.Load()
	require.NoError(t, err)
	assert.Equal(t, want, *got)

	require.NoError(t, fs.Clear())
	require.NoError(t, fs.Clear())
	_, err = fs.Load()
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestDefaultDir(t *testing.T) {
	t.Setenv("CERTCTL_HOME", "/tmp/certctl-test")
	dir, err := DefaultDir()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/certctl-test", dir)
}
