// Package domain holds the booking lifecycle rules: pricing, status
// transitions, the cancellation refund policy and the tracking/messaging
// windows. Everything here is pure; persistence and broadcasting live in
// the service layer.
package domain

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"helperhive/internal/apperr"
)

// BookingStatus enumerates the booking lifecycle states.
type BookingStatus string

const (
	StatusPending    BookingStatus = "pending"
	StatusConfirmed  BookingStatus = "confirmed"
	StatusEnRoute    BookingStatus = "en-route"
	StatusInProgress BookingStatus = "in-progress"
	StatusCompleted  BookingStatus = "completed"
	StatusCancelled  BookingStatus = "cancelled"
	StatusNoShow     BookingStatus = "no-show"
	StatusDisputed   BookingStatus = "disputed"
)

// Actor identifies who is attempting a lifecycle action.
type Actor string

const (
	ActorCustomer Actor = "customer"
	ActorProvider Actor = "provider"
	ActorAdmin    Actor = "admin"
)

// Payment lifecycle, decoupled from booking status.
const (
	PaymentPending    = "pending"
	PaymentProcessing = "processing"
	PaymentCompleted  = "completed"
	PaymentFailed     = "failed"
	PaymentRefunded   = "refunded"
)

// Provider payout lifecycle.
const (
	PayoutPending   = "pending"
	PayoutScheduled = "scheduled"
	PayoutCompleted = "completed"
)

// Refund status recorded on the cancellation entry.
const (
	RefundNone      = "none"
	RefundPartial   = "partial"
	RefundFull      = "full"
	RefundCompleted = "completed"
)

// IsTerminal reports whether no further status transition is permitted.
// Messages may still be appended to a completed booking.
func (s BookingStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusNoShow
}

// progress index for the forward-only provider path.
var progressOrder = map[BookingStatus]int{
	StatusConfirmed:  0,
	StatusEnRoute:    1,
	StatusInProgress: 2,
	StatusCompleted:  3,
}

// CanProgress reports whether a provider may move a booking from one
// in-service status to a later one. Going back is not a defined transition.
func CanProgress(from, to BookingStatus) bool {
	fromIdx, ok := progressOrder[from]
	if !ok || from == StatusCompleted {
		return false
	}
	toIdx, ok := progressOrder[to]
	if !ok || to == StatusConfirmed {
		return false
	}
	return toIdx > fromIdx
}

// CanCancel reports whether a booking in the given status may be cancelled.
func CanCancel(status BookingStatus) bool {
	return status == StatusPending || status == StatusConfirmed
}

// TrackingActive reports whether provider location and arrival fields are
// writable for the given status.
func TrackingActive(status BookingStatus) bool {
	switch status {
	case StatusConfirmed, StatusEnRoute, StatusInProgress:
		return true
	}
	return false
}

// AddOn is a caller-selected extra on top of the service base price.
type AddOn struct {
	Name  string `json:"name"`
	Price int64  `json:"price"` // cents
}

// Pricing is the frozen money snapshot computed once at booking creation.
// All amounts are integer cents.
type Pricing struct {
	BasePrice   int64  `json:"base_price"`
	AddOnsTotal int64  `json:"add_ons_total"`
	Subtotal    int64  `json:"subtotal"`
	PlatformFee int64  `json:"platform_fee"`
	Total       int64  `json:"total"`
	Currency    string `json:"currency"`
}

// CalculatePricing derives the pricing snapshot from the service base price
// and the selected add-ons. Negative add-on prices are a validation error,
// never clamped.
func CalculatePricing(basePrice int64, addOns []AddOn, commissionRate float64, currency string) (Pricing, error) {
	if basePrice < 0 {
		return Pricing{}, apperr.Validation("base price cannot be negative")
	}

	var addOnsTotal int64
	for _, a := range addOns {
		if a.Price < 0 {
			return Pricing{}, apperr.Validation(fmt.Sprintf("add-on %q has a negative price", a.Name))
		}
		addOnsTotal += a.Price
	}

	subtotal := basePrice + addOnsTotal
	fee := int64(math.Round(float64(subtotal) * commissionRate))

	return Pricing{
		BasePrice:   basePrice,
		AddOnsTotal: addOnsTotal,
		Subtotal:    subtotal,
		PlatformFee: fee,
		Total:       subtotal + fee,
		Currency:    currency,
	}, nil
}

// RefundTier maps a lower time bound (exclusive, hours before the scheduled
// service) to a refund percentage of the frozen total.
type RefundTier struct {
	MinHours float64
	Percent  int
}

// RefundPolicy is an ordered tier table, highest bound first. Anything below
// the last tier refunds nothing.
type RefundPolicy struct {
	Tiers []RefundTier
}

// RefundAmount computes the refund in cents for a cancellation happening
// hoursUntilService before the scheduled start. Evaluated once at decision
// time, against the frozen total.
func (p RefundPolicy) RefundAmount(total int64, hoursUntilService float64) (int64, string) {
	for _, tier := range p.Tiers {
		if hoursUntilService > tier.MinHours {
			amount := int64(math.Round(float64(total) * float64(tier.Percent) / 100))
			switch {
			case tier.Percent >= 100:
				return amount, RefundFull
			case tier.Percent > 0:
				return amount, RefundPartial
			}
			return 0, RefundNone
		}
	}
	return 0, RefundNone
}

// HoursUntil returns the signed distance from now to the scheduled service
// start, in hours.
func HoursUntil(scheduled time.Time, now time.Time) float64 {
	return scheduled.Sub(now).Hours()
}

// NewBookingNumber generates the human-readable identity assigned once at
// creation, format HH-YYYYMMDD-NNNNN.
func NewBookingNumber(now time.Time) string {
	return fmt.Sprintf("HH-%s-%05d", now.UTC().Format("20060102"), rand.Intn(100000))
}
