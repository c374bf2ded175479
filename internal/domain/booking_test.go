package domain

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"helperhive/internal/apperr"
)

func TestCalculatePricing(t *testing.T) {
	addOns := []AddOn{
		{Name: "Inside fridge", Price: 5000},
		{Name: "Inside oven", Price: 5000},
	}

	pricing, err := CalculatePricing(40000, addOns, 0.10, "ZAR")
	require.NoError(t, err)

	assert.Equal(t, int64(40000), pricing.BasePrice)
	assert.Equal(t, int64(10000), pricing.AddOnsTotal)
	assert.Equal(t, int64(50000), pricing.Subtotal)
	assert.Equal(t, int64(5000), pricing.PlatformFee)
	assert.Equal(t, int64(55000), pricing.Total)
	assert.Equal(t, "ZAR", pricing.Currency)
}

func TestCalculatePricingNoAddOns(t *testing.T) {
	pricing, err := CalculatePricing(35000, nil, 0.10, "ZAR")
	require.NoError(t, err)

	assert.Equal(t, int64(0), pricing.AddOnsTotal)
	assert.Equal(t, int64(35000), pricing.Subtotal)
	assert.Equal(t, int64(3500), pricing.PlatformFee)
	assert.Equal(t, int64(38500), pricing.Total)
}

func TestCalculatePricingRoundsFee(t *testing.T) {
	// 10% of 33333 is 3333.3, rounded to 3333.
	pricing, err := CalculatePricing(33333, nil, 0.10, "ZAR")
	require.NoError(t, err)
	assert.Equal(t, int64(3333), pricing.PlatformFee)
	assert.Equal(t, int64(36666), pricing.Total)

	// 10% of 33335 is 3333.5, rounded to 3334.
	pricing, err = CalculatePricing(33335, nil, 0.10, "ZAR")
	require.NoError(t, err)
	assert.Equal(t, int64(3334), pricing.PlatformFee)
}

func TestCalculatePricingRejectsNegative(t *testing.T) {
	_, err := CalculatePricing(-100, nil, 0.10, "ZAR")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = CalculatePricing(40000, []AddOn{{Name: "bad", Price: -1}}, 0.10, "ZAR")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestRefundAmountCancelTiers(t *testing.T) {
	policy := RefundPolicy{Tiers: []RefundTier{
		{MinHours: 24, Percent: 100},
		{MinHours: 2, Percent: 50},
	}}

	tests := []struct {
		name   string
		hours  float64
		amount int64
		status string
	}{
		{"two days out", 48, 55000, RefundFull},
		{"just over a day", 24.01, 55000, RefundFull},
		{"exactly 24h falls to next tier", 24, 27500, RefundPartial},
		{"morning of", 10, 27500, RefundPartial},
		{"exactly 2h refunds nothing", 2, 0, RefundNone},
		{"last minute", 1, 0, RefundNone},
		{"already past start", -1, 0, RefundNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, status := policy.RefundAmount(55000, tt.hours)
			assert.Equal(t, tt.amount, amount)
			assert.Equal(t, tt.status, status)
		})
	}
}

func TestRefundAmountRequestTiers(t *testing.T) {
	policy := RefundPolicy{Tiers: []RefundTier{
		{MinHours: 24, Percent: 90},
		{MinHours: 2, Percent: 50},
	}}

	amount, status := policy.RefundAmount(55000, 48)
	assert.Equal(t, int64(49500), amount)
	assert.Equal(t, RefundPartial, status)

	amount, status = policy.RefundAmount(55000, 3)
	assert.Equal(t, int64(27500), amount)
	assert.Equal(t, RefundPartial, status)

	amount, status = policy.RefundAmount(55000, 0.5)
	assert.Equal(t, int64(0), amount)
	assert.Equal(t, RefundNone, status)
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.True(t, StatusNoShow.IsTerminal())

	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusConfirmed.IsTerminal())
	assert.False(t, StatusEnRoute.IsTerminal())
	assert.False(t, StatusInProgress.IsTerminal())
	assert.False(t, StatusDisputed.IsTerminal())
}

func TestCanProgress(t *testing.T) {
	assert.True(t, CanProgress(StatusConfirmed, StatusEnRoute))
	assert.True(t, CanProgress(StatusConfirmed, StatusInProgress))
	assert.True(t, CanProgress(StatusConfirmed, StatusCompleted))
	assert.True(t, CanProgress(StatusEnRoute, StatusInProgress))
	assert.True(t, CanProgress(StatusInProgress, StatusCompleted))

	// No going backwards.
	assert.False(t, CanProgress(StatusInProgress, StatusEnRoute))
	assert.False(t, CanProgress(StatusEnRoute, StatusConfirmed))
	assert.False(t, CanProgress(StatusCompleted, StatusInProgress))

	// No progressing outside the in-service path.
	assert.False(t, CanProgress(StatusPending, StatusEnRoute))
	assert.False(t, CanProgress(StatusCancelled, StatusCompleted))
}

func TestCanCancel(t *testing.T) {
	assert.True(t, CanCancel(StatusPending))
	assert.True(t, CanCancel(StatusConfirmed))

	assert.False(t, CanCancel(StatusEnRoute))
	assert.False(t, CanCancel(StatusInProgress))
	assert.False(t, CanCancel(StatusCompleted))
	assert.False(t, CanCancel(StatusCancelled))
}

func TestTrackingActive(t *testing.T) {
	assert.True(t, TrackingActive(StatusConfirmed))
	assert.True(t, TrackingActive(StatusEnRoute))
	assert.True(t, TrackingActive(StatusInProgress))

	assert.False(t, TrackingActive(StatusPending))
	assert.False(t, TrackingActive(StatusCompleted))
	assert.False(t, TrackingActive(StatusCancelled))
}

func TestHoursUntil(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	assert.InDelta(t, 26, HoursUntil(now.Add(26*time.Hour), now), 0.001)
	assert.InDelta(t, -2, HoursUntil(now.Add(-2*time.Hour), now), 0.001)
}

func TestNewBookingNumber(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	number := NewBookingNumber(now)

	assert.Regexp(t, regexp.MustCompile(`^HH-20250601-\d{5}$`), number)
}
