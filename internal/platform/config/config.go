// Package config externalizes engine configuration. Values come from
// BANKGUARD_* environment variables so main stays lean; validation failures
// are fatal at startup, never mid-run.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Engine holds everything the fraud engine process needs.
type Engine struct {
	// StoreDSN is the PostgreSQL connection target.
	StoreDSN string

	// OpsAddr is the listen address for /healthz, /readyz, and /metrics.
	OpsAddr string

	// PollInterval is the flat delay between watch-loop iterations.
	PollInterval time.Duration

	// AmountThreshold rejects amounts strictly above it, in the transaction's
	// stated currency units.
	AmountThreshold decimal.Decimal

	// VelocityWindow is the trailing interval for burst counting.
	VelocityWindow time.Duration

	// VelocityCountThreshold rejects when the windowed count reaches it.
	VelocityCountThreshold int

	// LogLevel controls the slog handler.
	LogLevel slog.Level
}

const (
	defaultOpsAddr                = ":8090"
	defaultPollInterval           = 5 * time.Second
	defaultVelocityWindow         = 60 * time.Second
	defaultVelocityCountThreshold = 3
)

var defaultAmountThreshold = decimal.NewFromInt(500_000)

// FromEnv builds an Engine config from environment variables, falling back to
// the documented defaults. Malformed values are configuration errors.
func FromEnv() (Engine, error) {
	cfg := Engine{
		StoreDSN:               os.Getenv("BANKGUARD_STORE_DSN"),
		OpsAddr:                defaultOpsAddr,
		PollInterval:           defaultPollInterval,
		AmountThreshold:        defaultAmountThreshold,
		VelocityWindow:         defaultVelocityWindow,
		VelocityCountThreshold: defaultVelocityCountThreshold,
		LogLevel:               slog.LevelInfo,
	}

	if addr := os.Getenv("BANKGUARD_OPS_ADDR"); addr != "" {
		cfg.OpsAddr = addr
	}
	if raw := os.Getenv("BANKGUARD_POLL_INTERVAL"); raw != "" {
		interval, err := time.ParseDuration(raw)
		if err != nil {
			return Engine{}, fmt.Errorf("parse BANKGUARD_POLL_INTERVAL: %w", err)
		}
		cfg.PollInterval = interval
	}
	if raw := os.Getenv("BANKGUARD_AMOUNT_THRESHOLD"); raw != "" {
		threshold, err := decimal.NewFromString(raw)
		if err != nil {
			return Engine{}, fmt.Errorf("parse BANKGUARD_AMOUNT_THRESHOLD: %w", err)
		}
		cfg.AmountThreshold = threshold
	}
	if raw := os.Getenv("BANKGUARD_VELOCITY_WINDOW"); raw != "" {
		window, err := time.ParseDuration(raw)
		if err != nil {
			return Engine{}, fmt.Errorf("parse BANKGUARD_VELOCITY_WINDOW: %w", err)
		}
		cfg.VelocityWindow = window
	}
	if raw := os.Getenv("BANKGUARD_VELOCITY_COUNT"); raw != "" {
		count, err := strconv.Atoi(raw)
		if err != nil {
			return Engine{}, fmt.Errorf("parse BANKGUARD_VELOCITY_COUNT: %w", err)
		}
		cfg.VelocityCountThreshold = count
	}
	if raw := os.Getenv("BANKGUARD_LOG_LEVEL"); raw != "" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(raw)); err != nil {
			return Engine{}, fmt.Errorf("parse BANKGUARD_LOG_LEVEL: %w", err)
		}
		cfg.LogLevel = level
	}

	return cfg, nil
}

// Validate enforces the startup invariants the watch loop assumes.
func (c Engine) Validate() error {
	if c.StoreDSN == "" {
		return fmt.Errorf("BANKGUARD_STORE_DSN is required")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", c.PollInterval)
	}
	if c.AmountThreshold.IsNegative() {
		return fmt.Errorf("amount threshold must be non-negative, got %s", c.AmountThreshold)
	}
	if c.VelocityWindow <= 0 {
		return fmt.Errorf("velocity window must be positive, got %s", c.VelocityWindow)
	}
	if c.VelocityCountThreshold < 1 {
		return fmt.Errorf("velocity count threshold must be at least 1, got %d", c.VelocityCountThreshold)
	}
	return nil
}
