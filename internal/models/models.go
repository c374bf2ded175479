package models

import (
	"time"

	"helperhive/internal/domain"
)

// Auth

type RegisterRequest struct {
	FirstName string `json:"first_name" binding:"required,min=2,max=50"`
	LastName  string `json:"last_name" binding:"required,min=2,max=50"`
	Email     string `json:"email" binding:"required,email"`
	Phone     string `json:"phone" binding:"required"`
	Password  string `json:"password" binding:"required,min=6"`
	Role      string `json:"role" binding:"required,oneof=customer provider"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

type VerifyPhoneRequest struct {
	Phone string `json:"phone" binding:"required"`
	Code  string `json:"code" binding:"required,len=6"`
}

type ResendOTPRequest struct {
	Phone string `json:"phone" binding:"required"`
}

// Users

type UpdateProfileRequest struct {
	FirstName  *string `json:"first_name,omitempty"`
	LastName   *string `json:"last_name,omitempty"`
	Street     *string `json:"street,omitempty"`
	City       *string `json:"city,omitempty"`
	Province   *string `json:"province,omitempty"`
	PostalCode *string `json:"postal_code,omitempty"`
}

type UpdateLocationRequest struct {
	Longitude float64 `json:"longitude" binding:"required"`
	Latitude  float64 `json:"latitude" binding:"required"`
}

type UpdateProviderProfileRequest struct {
	Bio             *string `json:"bio,omitempty"`
	HourlyRate      *int64  `json:"hourly_rate,omitempty"`
	ServingRadiusKm *int    `json:"serving_radius_km,omitempty"`
	ServiceIDs      []int64 `json:"service_ids,omitempty"`
}

type UpdateAvailabilityRequest struct {
	IsAvailable *bool `json:"is_available,omitempty"`
	IsOnline    *bool `json:"is_online,omitempty"`
}

// Services

type CreateServiceRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description" binding:"required"`
	Category    string `json:"category" binding:"required"`
	Subcategory string `json:"subcategory" binding:"required"`
	Icon        string `json:"icon"`
	BasePrice   int64  `json:"base_price" binding:"required,min=0"`
	PricingType string `json:"pricing_type" binding:"required,oneof=hourly fixed per-item"`
	DurationMin int    `json:"duration_min" binding:"required,min=1"`
	DurationMax int    `json:"duration_max" binding:"required,min=1"`
}

type NearbyProvidersRequest struct {
	Longitude float64 `json:"longitude" binding:"required"`
	Latitude  float64 `json:"latitude" binding:"required"`
	RadiusKm  float64 `json:"radius_km"`
	ServiceID int64   `json:"service_id"`
	Query     string  `json:"query"`
}

// ProviderDocument is what gets indexed per provider for nearby search.
type ProviderDocument struct {
	ID            int64     `json:"id"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	Bio           string    `json:"bio"`
	ServiceIDs    []int64   `json:"service_ids"`
	Categories    []string  `json:"categories"`
	RatingAverage float64   `json:"rating_average"`
	RatingCount   int       `json:"rating_count"`
	IsAvailable   bool      `json:"is_available"`
	Approved      bool      `json:"approved"`
	Location      GeoPoint  `json:"location"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type GeoPoint struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// Bookings

type CreateBookingRequest struct {
	ProviderID     int64          `json:"provider_id" binding:"required"`
	ServiceID      int64          `json:"service_id" binding:"required"`
	ScheduledDate  time.Time      `json:"scheduled_date" binding:"required"`
	ScheduledStart string         `json:"scheduled_start" binding:"required"`
	Location       Location       `json:"location" binding:"required"`
	AddOns         []domain.AddOn `json:"add_ons"`
}

type RespondBookingRequest struct {
	Action string `json:"action" binding:"required"`
	Reason string `json:"reason"`
}

type UpdateStatusRequest struct {
	Status   string          `json:"status" binding:"required"`
	Location *StatusLocation `json:"location,omitempty"`
}

type StatusLocation struct {
	Longitude        float64    `json:"longitude"`
	Latitude         float64    `json:"latitude"`
	EstimatedArrival *time.Time `json:"estimated_arrival,omitempty"`
}

type UpdateLocationPingRequest struct {
	Longitude float64 `json:"longitude" binding:"required"`
	Latitude  float64 `json:"latitude" binding:"required"`
}

type CancelBookingRequest struct {
	Reason string `json:"reason"`
}

type CancelBookingResponse struct {
	Message      string `json:"message"`
	RefundStatus string `json:"refund_status"`
	RefundAmount int64  `json:"refund_amount"`
}

type AddMessageRequest struct {
	Message string `json:"message" binding:"required"`
}

type EmergencyRequest struct {
	Reason string `json:"reason"`
}

type BookingListResponse struct {
	Bookings   []Booking `json:"bookings"`
	Page       int       `json:"page"`
	TotalPages int       `json:"total_pages"`
	Total      int64     `json:"total"`
}

type ResolveDisputeRequest struct {
	Outcome string `json:"outcome" binding:"required"`
	Note    string `json:"note"`
}

// Payments

type CreateIntentRequest struct {
	BookingID int64 `json:"booking_id" binding:"required"`
}

type CreateIntentResponse struct {
	ClientSecret string `json:"client_secret"`
	IntentID     string `json:"intent_id"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
}

type ConfirmPaymentRequest struct {
	IntentID string `json:"intent_id" binding:"required"`
}

type RefundRequest struct {
	BookingID int64  `json:"booking_id" binding:"required"`
	Reason    string `json:"reason" binding:"required"`
}

type RefundResponse struct {
	Message      string `json:"message"`
	RefundAmount int64  `json:"refund_amount"`
	RefundID     string `json:"refund_id,omitempty"`
}

type PaymentHistoryResponse struct {
	Payments   []Booking `json:"payments"`
	Page       int       `json:"page"`
	TotalPages int       `json:"total_pages"`
	Total      int64     `json:"total"`
}

type EarningsResponse struct {
	Period        string `json:"period"`
	TotalEarnings int64  `json:"total_earnings"`
	Pending       int64  `json:"pending"`
	BookingsCount int    `json:"bookings_count"`
}

// Admin

type DashboardResponse struct {
	TotalUsers        int64 `json:"total_users"`
	TotalProviders    int64 `json:"total_providers"`
	TotalBookings     int64 `json:"total_bookings"`
	ActiveBookings    int64 `json:"active_bookings"`
	DisputedBookings  int64 `json:"disputed_bookings"`
	CompletedBookings int64 `json:"completed_bookings"`
	GrossVolume       int64 `json:"gross_volume"`
	PlatformFees      int64 `json:"platform_fees"`
}

type UpdateUserStatusRequest struct {
	IsActive    *bool   `json:"is_active,omitempty"`
	IsSuspended *bool   `json:"is_suspended,omitempty"`
	Reason      *string `json:"reason,omitempty"`
}

type UpdateVerificationRequest struct {
	Status string `json:"status" binding:"required,oneof=pending approved rejected not-required"`
}
