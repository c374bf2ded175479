package models

import (
	"time"

	"helperhive/internal/domain"
)

// User roles. Role is an explicit column set at registration and never
// inferred from other fields.
const (
	RoleCustomer = "customer"
	RoleProvider = "provider"
	RoleAdmin    = "admin"
)

// Background check states gating whether a provider may be booked.
const (
	BackgroundCheckPending     = "pending"
	BackgroundCheckApproved    = "approved"
	BackgroundCheckRejected    = "rejected"
	BackgroundCheckNotRequired = "not-required"
)

// User represents an account in the system
type User struct {
	ID               int64      `json:"id" db:"id"`
	FirstName        string     `json:"first_name" db:"first_name"`
	LastName         string     `json:"last_name" db:"last_name"`
	Email            string     `json:"email" db:"email"`
	Phone            string     `json:"phone" db:"phone"`
	PasswordHash     string     `json:"-" db:"password_hash"`
	Role             string     `json:"role" db:"role"`
	EmailVerified    bool       `json:"email_verified" db:"email_verified"`
	PhoneVerified    bool       `json:"phone_verified" db:"phone_verified"`
	IsActive         bool       `json:"is_active" db:"is_active"`
	IsSuspended      bool       `json:"is_suspended" db:"is_suspended"`
	SuspensionReason *string    `json:"suspension_reason,omitempty" db:"suspension_reason"`
	Street           *string    `json:"street,omitempty" db:"street"`
	City             *string    `json:"city,omitempty" db:"city"`
	Province         *string    `json:"province,omitempty" db:"province"`
	PostalCode       *string    `json:"postal_code,omitempty" db:"postal_code"`
	Country          string     `json:"country" db:"country"`
	Longitude        float64    `json:"longitude" db:"longitude"`
	Latitude         float64    `json:"latitude" db:"latitude"`
	TotalBookings    int        `json:"total_bookings" db:"total_bookings"`
	TotalSpent       int64      `json:"total_spent" db:"total_spent"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at" db:"updated_at"`
	LastActiveAt     *time.Time `json:"last_active_at,omitempty" db:"last_active_at"`
}

// ProviderProfile is the provider-specific sub-record, one row per provider
// account, updated through explicit field-level methods rather than path
// mutation.
type ProviderProfile struct {
	UserID                int64   `json:"user_id" db:"user_id"`
	Bio                   string  `json:"bio" db:"bio"`
	HourlyRate            int64   `json:"hourly_rate" db:"hourly_rate"`
	ServingRadiusKm       int     `json:"serving_radius_km" db:"serving_radius_km"`
	BackgroundCheckStatus string  `json:"background_check_status" db:"background_check_status"`
	IsAvailable           bool    `json:"is_available" db:"is_available"`
	IsOnline              bool    `json:"is_online" db:"is_online"`
	RatingAverage         float64 `json:"rating_average" db:"rating_average"`
	RatingCount           int     `json:"rating_count" db:"rating_count"`
	CompletedJobs         int     `json:"completed_jobs" db:"completed_jobs"`
	TotalEarnings         int64   `json:"total_earnings" db:"total_earnings"`
	BankVerified          bool    `json:"bank_verified" db:"bank_verified"`
}

// Service represents a bookable service in the catalog
type Service struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Category    string    `json:"category" db:"category"`
	Subcategory string    `json:"subcategory" db:"subcategory"`
	Icon        string    `json:"icon" db:"icon"`
	BasePrice   int64     `json:"base_price" db:"base_price"` // cents
	PricingType string    `json:"pricing_type" db:"pricing_type"`
	Currency    string    `json:"currency" db:"currency"`
	DurationMin int       `json:"duration_min" db:"duration_min"` // minutes
	DurationMax int       `json:"duration_max" db:"duration_max"`
	IsActive    bool      `json:"is_active" db:"is_active"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Location is a service address with coordinates
type Location struct {
	Street              string  `json:"street"`
	City                string  `json:"city"`
	Province            string  `json:"province"`
	PostalCode          string  `json:"postal_code"`
	Country             string  `json:"country"`
	Longitude           float64 `json:"longitude"`
	Latitude            float64 `json:"latitude"`
	SpecialInstructions string  `json:"special_instructions"`
	AccessInstructions  string  `json:"access_instructions"`
}

// Tracking holds the single most recent provider position and the arrival
// timestamps. Full path history is not modeled.
type Tracking struct {
	CurrentLongitude *float64   `json:"current_longitude,omitempty"`
	CurrentLatitude  *float64   `json:"current_latitude,omitempty"`
	EstimatedArrival *time.Time `json:"estimated_arrival,omitempty"`
	ActualArrival    *time.Time `json:"actual_arrival,omitempty"`
	ActualCompletion *time.Time `json:"actual_completion,omitempty"`
}

// EmergencyAlert is the single active/inactive alert per booking.
// Re-triggering overwrites, it does not stack.
type EmergencyAlert struct {
	IsActive    bool       `json:"is_active"`
	TriggeredBy *int64     `json:"triggered_by,omitempty"`
	Reason      *string    `json:"reason,omitempty"`
	TriggeredAt *time.Time `json:"triggered_at,omitempty"`
	Resolved    bool       `json:"resolved"`
}

// Cancellation is set at most once per booking.
type Cancellation struct {
	CancelledBy  *int64     `json:"cancelled_by,omitempty"`
	Reason       *string    `json:"reason,omitempty"`
	CancelledAt  *time.Time `json:"cancelled_at,omitempty"`
	RefundAmount int64      `json:"refund_amount"`
	RefundStatus *string    `json:"refund_status,omitempty"`
}

// Payment is the customer payment sub-record plus the decoupled provider
// payout state.
type Payment struct {
	Status       string     `json:"status"`
	IntentID     *string    `json:"intent_id,omitempty"`
	PaidAt       *time.Time `json:"paid_at,omitempty"`
	PayoutStatus string     `json:"payout_status"`
	PayoutAt     *time.Time `json:"payout_at,omitempty"`
	FeeCollected bool       `json:"fee_collected"`
}

// Booking represents a scheduled engagement between one customer and one
// provider for one service.
type Booking struct {
	ID             int64                `json:"id" db:"id"`
	BookingNumber  string               `json:"booking_number" db:"booking_number"`
	CustomerID     int64                `json:"customer_id" db:"customer_id"`
	ProviderID     int64                `json:"provider_id" db:"provider_id"`
	ServiceID      int64                `json:"service_id" db:"service_id"`
	ScheduledDate  time.Time            `json:"scheduled_date" db:"scheduled_date"`
	ScheduledStart string               `json:"scheduled_start" db:"scheduled_start"` // HH:MM
	ScheduledEnd   *string              `json:"scheduled_end,omitempty" db:"scheduled_end"`
	Location       Location             `json:"location"`
	AddOns         []domain.AddOn       `json:"add_ons"`
	Pricing        domain.Pricing       `json:"pricing"`
	Status         domain.BookingStatus `json:"status" db:"status"`
	Tracking       Tracking             `json:"tracking"`
	Emergency      EmergencyAlert       `json:"emergency"`
	Cancellation   Cancellation         `json:"cancellation"`
	Payment        Payment              `json:"payment"`
	CreatedAt      time.Time            `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at" db:"updated_at"`
}

// ScheduledAt combines the scheduled date with the HH:MM start time.
func (b *Booking) ScheduledAt() time.Time {
	t, err := time.Parse("15:04", b.ScheduledStart)
	if err != nil {
		return b.ScheduledDate
	}
	d := b.ScheduledDate
	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), 0, 0, d.Location())
}

// StatusHistoryEntry is one append-only row in the booking status log.
type StatusHistoryEntry struct {
	ID        int64     `json:"id" db:"id"`
	BookingID int64     `json:"booking_id" db:"booking_id"`
	Status    string    `json:"status" db:"status"`
	Note      *string   `json:"note,omitempty" db:"note"`
	ActorID   *int64    `json:"actor_id,omitempty" db:"actor_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// BookingMessage is one append-only chat message on a booking.
type BookingMessage struct {
	ID        int64     `json:"id" db:"id"`
	BookingID int64     `json:"booking_id" db:"booking_id"`
	SenderID  int64     `json:"sender_id" db:"sender_id"`
	Body      string    `json:"body" db:"body"`
	IsRead    bool      `json:"is_read" db:"is_read"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
