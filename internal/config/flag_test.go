package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	t.Run("overrides given values", func(t *testing.T) {
		os.Args = []string{"cmd", "-s", "sqlite", "-d", "/tmp/gate", "-i", "250", "-w", "15", "-g", ":50061", "-lines", "-c", "ignored.json"}

		cfg := &Config{}
		cfg.LoadDefaults()
		require.NotPanics(t, func() { parseFlags(cfg) })

		assert.Equal(t, BackendSQLite, cfg.StoreBackend)
		assert.Equal(t, "/tmp/gate", cfg.DataDir)
		assert.Equal(t, 250*time.Millisecond, cfg.PollInterval)
		assert.Equal(t, 15*time.Second, cfg.AcquireTimeout)
		assert.Equal(t, ":50061", cfg.GRPCAddr)
		assert.True(t, cfg.LineMode)
		assert.False(t, cfg.Backup)
	})

	t.Run("absent duration flags keep sub-unit values", func(t *testing.T) {
		os.Args = []string{"cmd"}

		cfg := &Config{}
		cfg.LoadDefaults()
		cfg.AcquireTimeout = 1500 * time.Millisecond
		require.NotPanics(t, func() { parseFlags(cfg) })

		assert.Equal(t, 1500*time.Millisecond, cfg.AcquireTimeout)
	})

	t.Run("incorrect poll interval panics", func(t *testing.T) {
		os.Args = []string{"cmd", "-i", "abc"}

		cfg := &Config{}
		require.Panics(t, func() { parseFlags(cfg) })
	})
}
