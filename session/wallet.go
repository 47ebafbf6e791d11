package session

import (
	"context"
	"math/rand/v2"

	"github.com/gagliardetto/solana-go"
)

// DemoAddresses are the wallets the mock wallet connects with.
var DemoAddresses = []string{
	"5wLhAsYwvKcDviAFHyWZB7UZLWGqABXSSqQjJXqM5eu2",
	"2JRJ1TnhGUkb7UJ3fSho8DvLpnw7QAgwKWFDMXRkKJEP",
	"HvAx6HVeNQMgXt2hGKv8PWNMfaAnMQvDpb7VvkL9yQPY",
}

// WalletSimulator stands in for a browser wallet extension.
type WalletSimulator struct {
	manager  *Manager
	generate bool
	pick     func(n int) int
}

// NewWalletSimulator connects with a random demo address, or with a freshly
// generated keypair when generate is set.
func NewWalletSimulator(manager *Manager, generate bool) *WalletSimulator {
	return &WalletSimulator{manager: manager, generate: generate, pick: rand.IntN}
}

// Address returns the public key the next Connect would use.
func (w *WalletSimulator) Address() string {
	if w.generate {
		wallet := solana.NewWallet()
		defer clear(wallet.PrivateKey)
		return wallet.PublicKey().String()
	}
	return DemoAddresses[w.pick(len(DemoAddresses))]
}

func (w *WalletSimulator) Connect(ctx context.Context) (*Session, error) {
	return w.manager.Login(ctx, w.Address())
}

func (w *WalletSimulator) Disconnect(token string) error {
	return w.manager.Logout(token)
}
