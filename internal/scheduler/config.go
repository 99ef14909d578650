package scheduler

import (
	"time"

	appconfig "github.com/hashyield/powergrid/internal/config"
	"github.com/shopspring/decimal"
)

// Config controls the settlement schedule and per-run limits.
type Config struct {
	// Spec is the cron expression for the nightly run. The default fires
	// just before midnight so the safety margin excludes positions
	// activated during the evening.
	Spec       string
	JobTimeout time.Duration
	// ClosePrice is the closing price applied to every position in a run.
	// It is supplied by configuration, never fetched.
	ClosePrice decimal.Decimal
}

func DefaultConfig() Config {
	return Config{
		Spec:       "59 23 * * *",
		JobTimeout: 10 * time.Minute,
		ClosePrice: decimal.NewFromInt(2),
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.Spec == "" {
		c.Spec = defaults.Spec
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = defaults.JobTimeout
	}
	if !c.ClosePrice.IsPositive() {
		c.ClosePrice = defaults.ClosePrice
	}
	return c
}

// ProvideConfig derives the scheduler configuration from the application
// environment.
func ProvideConfig(cfg appconfig.Config) Config {
	return Config{
		Spec:       cfg.SettleCron,
		JobTimeout: cfg.SettleTimeout,
		ClosePrice: cfg.SettleClosePrice,
	}.withDefaults()
}
