package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := Parse()
		require.NoError(t, err)

		assert.Equal(t, "3000", cfg.Port)
		assert.Equal(t, "memory", cfg.StoreDriver)
		assert.Equal(t, 10*time.Second, cfg.PollInterval)
		assert.Equal(t, "simulated", cfg.VerifyMode)
		assert.Equal(t, "https://api.telegram.org", cfg.TelegramAPIURL)
		assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("PORT", "8081")
		t.Setenv("STORE_DRIVER", "sqlite")
		t.Setenv("POLL_INTERVAL", "2s")

		cfg, err := Parse()
		require.NoError(t, err)

		assert.Equal(t, "8081", cfg.Port)
		assert.Equal(t, "sqlite", cfg.StoreDriver)
		assert.Equal(t, 2*time.Second, cfg.PollInterval)
	})

	t.Run("unknown store driver", func(t *testing.T) {
		t.Setenv("STORE_DRIVER", "mongo")

		_, err := Parse()
		assert.ErrorContains(t, err, "STORE_DRIVER")
	})

	t.Run("worker mode needs url", func(t *testing.T) {
		t.Setenv("VERIFY_MODE", "worker")
		t.Setenv("VERIFY_WORKER_URL", "")

		_, err := Parse()
		assert.ErrorContains(t, err, "VERIFY_WORKER_URL")
	})

	t.Run("non-positive poll interval", func(t *testing.T) {
		t.Setenv("POLL_INTERVAL", "0s")

		_, err := Parse()
		assert.Error(t, err)
	})
}
