package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 0.10, cfg.Booking.CommissionRate)
	assert.Equal(t, "ZAR", cfg.Booking.Currency)

	require.Len(t, cfg.Booking.CancelPolicy.Tiers, 2)
	assert.Equal(t, float64(24), cfg.Booking.CancelPolicy.Tiers[0].MinHours)
	assert.Equal(t, 100, cfg.Booking.CancelPolicy.Tiers[0].Percent)
	assert.Equal(t, float64(2), cfg.Booking.CancelPolicy.Tiers[1].MinHours)
	assert.Equal(t, 50, cfg.Booking.CancelPolicy.Tiers[1].Percent)

	require.Len(t, cfg.Booking.RefundPolicy.Tiers, 2)
	assert.Equal(t, 90, cfg.Booking.RefundPolicy.Tiers[0].Percent)
	assert.Equal(t, 50, cfg.Booking.RefundPolicy.Tiers[1].Percent)

	assert.Equal(t, 15*time.Minute, cfg.Payouts.Interval)
	assert.Equal(t, 168*time.Hour, cfg.Auth.TokenTTL)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("COMMISSION_RATE", "0.15")
	t.Setenv("CURRENCY", "NAD")
	t.Setenv("CANCEL_REFUND_PCT_OVER_24H", "80")
	t.Setenv("PAYOUT_INTERVAL_MIN", "5")

	cfg := Load()

	assert.Equal(t, 0.15, cfg.Booking.CommissionRate)
	assert.Equal(t, "NAD", cfg.Booking.Currency)
	assert.Equal(t, 80, cfg.Booking.CancelPolicy.Tiers[0].Percent)
	assert.Equal(t, 5*time.Minute, cfg.Payouts.Interval)
}

func TestEnvBadValueFallsBack(t *testing.T) {
	t.Setenv("DB_PORT", "not-a-number")

	cfg := Load()
	assert.Equal(t, 5432, cfg.Database.Port)
}
