package store

import (
	"context"
	"sync"
	"testing"

	"certvault/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newSeededGorm(t *testing.T) Store {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Certificate{}, &models.VerificationLog{}))

	users := SeedUsers()
	require.NoError(t, db.Create(&users).Error)
	certificates := SeedCertificates()
	require.NoError(t, db.Create(&certificates).Error)
	logs := SeedVerificationLogs()
	require.NoError(t, db.Create(&logs).Error)

	s := NewGorm(db)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newSeededMemory(t *testing.T) Store {
	return NewSeededMemory(Latency{})
}

func TestStores(t *testing.T) {
	impls := map[string]func(t *testing.T) Store{
		"memory": newSeededMemory,
		"gorm":   newSeededGorm,
	}
	for name, newStore := range impls {
		t.Run(name, func(t *testing.T) {
			runStoreContract(t, newStore)
		})
	}
}

func runStoreContract(t *testing.T, newStore func(t *testing.T) Store) {
	ctx := context.Background()

	t.Run("list is scoped to user and newest first", func(t *testing.T) {
		s := newStore(t)

		certs, err := s.ListCertificates(ctx, "user-1")
		require.NoError(t, err)
		require.Len(t, certs, 3)
		assert.Equal(t, "cert-1", certs[0].ID)
		assert.Equal(t, "cert-3", certs[2].ID)

		none, err := s.ListCertificates(ctx, "user-unknown")
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("get unknown certificate", func(t *testing.T) {
		s := newStore(t)

		_, err := s.GetCertificate(ctx, "cert-missing")
		assert.ErrorIs(t, err, ErrNotFound)

		_, err = s.GetStatus(ctx, "cert-missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("create always yields pending", func(t *testing.T) {
		s := newStore(t)

		cert, err := s.CreateCertificate(ctx, "user-1", models.CertificateFields{
			Title:           "A",
			InstitutionName: "B",
			ProgramName:     "C",
			IssueDate:       "2024-01-01",
		})
		require.NoError(t, err)
		assert.Equal(t, models.StatusPending, cert.VerificationStatus)
		assert.NotEmpty(t, cert.ID)

		status, err := s.GetStatus(ctx, cert.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusPending, status)

		certs, err := s.ListCertificates(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, cert.ID, certs[0].ID)
	})

	t.Run("status transitions", func(t *testing.T) {
		s := newStore(t)

		cert, err := s.SetStatus(ctx, "cert-2", models.StatusVerified, nil)
		require.NoError(t, err)
		assert.Equal(t, models.StatusVerified, cert.VerificationStatus)

		_, err = s.SetStatus(ctx, "cert-2", models.StatusPending, nil)
		assert.ErrorIs(t, err, ErrInvalidTransition)

		cert, err = s.SetStatus(ctx, "cert-3", models.StatusPending, datatypes.JSON(`{}`))
		require.NoError(t, err)
		assert.Equal(t, models.StatusPending, cert.VerificationStatus)
		assert.JSONEq(t, `{}`, string(cert.VerificationDetails))

		_, err = s.SetStatus(ctx, "cert-missing", models.StatusVerified, nil)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("mint is rejected when already minted or unverified", func(t *testing.T) {
		s := newStore(t)

		_, err := s.AssignMint(ctx, "cert-1", "addr", "https://arweave.net/x")
		assert.ErrorIs(t, err, ErrAlreadyMinted)

		_, err = s.AssignMint(ctx, "cert-2", "addr", "https://arweave.net/x")
		assert.ErrorIs(t, err, ErrNotVerified)

		_, err = s.AssignMint(ctx, "cert-missing", "addr", "https://arweave.net/x")
		assert.ErrorIs(t, err, ErrNotFound)

		_, err = s.SetStatus(ctx, "cert-2", models.StatusVerified, nil)
		require.NoError(t, err)

		cert, err := s.AssignMint(ctx, "cert-2", "addr", "https://arweave.net/x")
		require.NoError(t, err)
		assert.Equal(t, "addr", cert.NFTMintAddress)
		assert.Equal(t, "https://arweave.net/x", cert.ArweaveURL)

		_, err = s.AssignMint(ctx, "cert-2", "other", "https://arweave.net/y")
		assert.ErrorIs(t, err, ErrAlreadyMinted)
	})

	t.Run("logs append in order", func(t *testing.T) {
		s := newStore(t)

		err := s.AppendVerificationLog(ctx, &models.VerificationLog{
			CertificateID:    "cert-2",
			VerificationStep: models.StepIssuerVerification,
			Status:           models.LogSuccess,
		})
		require.NoError(t, err)

		logs, err := s.ListVerificationLogs(ctx, "cert-2")
		require.NoError(t, err)
		require.Len(t, logs, 3)
		assert.Equal(t, "log-3", logs[0].ID)
		assert.Equal(t, models.LogSuccess, logs[2].Status)

		err = s.AppendVerificationLog(ctx, &models.VerificationLog{CertificateID: "cert-missing"})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("profile get-or-create and update", func(t *testing.T) {
		s := newStore(t)

		demo, err := s.GetUserProfile(ctx, DemoWallet)
		require.NoError(t, err)
		assert.Equal(t, "user-1", demo.ID)

		fresh, err := s.GetUserProfile(ctx, "2JRJ1TnhGUkb7UJ3fSho8DvLpnw7QAgwKWFDMXRkKJEP")
		require.NoError(t, err)
		assert.NotEqual(t, "user-1", fresh.ID)

		again, err := s.GetUserProfile(ctx, "2JRJ1TnhGUkb7UJ3fSho8DvLpnw7QAgwKWFDMXRkKJEP")
		require.NoError(t, err)
		assert.Equal(t, fresh.ID, again.ID)

		updated, err := s.UpdateUserProfile(ctx, models.UserUpdate{ID: "user-1", FullName: "Alex J."})
		require.NoError(t, err)
		assert.Equal(t, "Alex J.", updated.FullName)
		assert.Equal(t, "alex@example.com", updated.Email)

		_, err = s.UpdateUserProfile(ctx, models.UserUpdate{ID: "user-missing", FullName: "x"})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestMemoryConcurrentMintAssignsOnce(t *testing.T) {
	s := NewSeededMemory(Latency{})
	ctx := context.Background()
	_, err := s.SetStatus(ctx, "cert-2", models.StatusVerified, nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.AssignMint(ctx, "cert-2", uuid.NewString(), "https://arweave.net/x"); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
}

func TestMemoryLatencyHonoursContext(t *testing.T) {
	s := NewSeededMemory(Latency{List: 0, Get: DefaultLatency().Get})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.GetCertificate(ctx, "cert-1")
	assert.ErrorIs(t, err, context.Canceled)
}
