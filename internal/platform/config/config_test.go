package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("BANKGUARD_STORE_DSN", "postgres://localhost/bankguard?sslmode=disable")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":8090", cfg.OpsAddr)
	assert.Equal(t, 5*time.Second, cfg.PollInterval)
	assert.True(t, cfg.AmountThreshold.Equal(decimal.NewFromInt(500_000)))
	assert.Equal(t, 60*time.Second, cfg.VelocityWindow)
	assert.Equal(t, 3, cfg.VelocityCountThreshold)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.NoError(t, cfg.Validate())
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("BANKGUARD_STORE_DSN", "postgres://localhost/bankguard")
	t.Setenv("BANKGUARD_OPS_ADDR", ":9999")
	t.Setenv("BANKGUARD_POLL_INTERVAL", "1s")
	t.Setenv("BANKGUARD_AMOUNT_THRESHOLD", "250000.50")
	t.Setenv("BANKGUARD_VELOCITY_WINDOW", "2m")
	t.Setenv("BANKGUARD_VELOCITY_COUNT", "5")
	t.Setenv("BANKGUARD_LOG_LEVEL", "debug")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.OpsAddr)
	assert.Equal(t, time.Second, cfg.PollInterval)
	assert.True(t, cfg.AmountThreshold.Equal(decimal.RequireFromString("250000.50")))
	assert.Equal(t, 2*time.Minute, cfg.VelocityWindow)
	assert.Equal(t, 5, cfg.VelocityCountThreshold)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestFromEnvMalformedValues(t *testing.T) {
	cases := map[string]string{
		"BANKGUARD_POLL_INTERVAL":    "soon",
		"BANKGUARD_AMOUNT_THRESHOLD": "a lot",
		"BANKGUARD_VELOCITY_WINDOW":  "later",
		"BANKGUARD_VELOCITY_COUNT":   "few",
		"BANKGUARD_LOG_LEVEL":        "chatty",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv("BANKGUARD_STORE_DSN", "postgres://localhost/bankguard")
			t.Setenv(key, value)

			_, err := FromEnv()
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestValidate(t *testing.T) {
	valid := Engine{
		StoreDSN:               "postgres://localhost/bankguard",
		PollInterval:           5 * time.Second,
		AmountThreshold:        decimal.NewFromInt(500_000),
		VelocityWindow:         time.Minute,
		VelocityCountThreshold: 3,
	}
	require.NoError(t, valid.Validate())

	t.Run("missing DSN", func(t *testing.T) {
		cfg := valid
		cfg.StoreDSN = ""
		assert.Error(t, cfg.Validate())
	})
	t.Run("non-positive poll interval", func(t *testing.T) {
		cfg := valid
		cfg.PollInterval = 0
		assert.Error(t, cfg.Validate())
	})
	t.Run("negative amount threshold", func(t *testing.T) {
		cfg := valid
		cfg.AmountThreshold = decimal.NewFromInt(-1)
		assert.Error(t, cfg.Validate())
	})
	t.Run("non-positive velocity window", func(t *testing.T) {
		cfg := valid
		cfg.VelocityWindow = 0
		assert.Error(t, cfg.Validate())
	})
	t.Run("velocity count below one", func(t *testing.T) {
		cfg := valid
		cfg.VelocityCountThreshold = 0
		assert.Error(t, cfg.Validate())
	})
}
