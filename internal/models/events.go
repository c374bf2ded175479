package models

import "time"

// Broadcast subjects. UI fan-out channels are derived per entity
// (user.<id>, booking.<id>); these are the logical event names.
const (
	EventBookingCreated   = "booking.created"
	EventBookingResponse  = "booking.response"
	EventBookingStatus    = "booking.status"
	EventBookingLocation  = "booking.location"
	EventBookingMessage   = "booking.message"
	EventBookingEmergency = "booking.emergency"
	EventBookingCancelled = "booking.cancelled"
	EventPaymentConfirmed = "payment.confirmed"
	EventPaymentRefunded  = "payment.refunded"
	EventNotificationSend = "notification.send"
)

// BookingCreatedEvent notifies the provider of a new pending booking
type BookingCreatedEvent struct {
	BookingID     int64     `json:"booking_id"`
	BookingNumber string    `json:"booking_number"`
	CustomerID    int64     `json:"customer_id"`
	ProviderID    int64     `json:"provider_id"`
	ServiceID     int64     `json:"service_id"`
	Total         int64     `json:"total"`
	Timestamp     time.Time `json:"timestamp"`
}

// BookingResponseEvent notifies the customer of a provider accept/reject
type BookingResponseEvent struct {
	BookingID  int64     `json:"booking_id"`
	CustomerID int64     `json:"customer_id"`
	Action     string    `json:"action"`
	Status     string    `json:"status"`
	Timestamp  time.Time `json:"timestamp"`
}

// BookingStatusEvent notifies booking watchers of a lifecycle change
type BookingStatusEvent struct {
	BookingID int64     `json:"booking_id"`
	Status    string    `json:"status"`
	Location  []float64 `json:"location,omitempty"` // [lon, lat]
	Timestamp time.Time `json:"timestamp"`
}

// ProviderLocationEvent is a live position ping during an active booking
type ProviderLocationEvent struct {
	BookingID int64     `json:"booking_id"`
	Longitude float64   `json:"longitude"`
	Latitude  float64   `json:"latitude"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMessageEvent carries a chat message to the other party
type NewMessageEvent struct {
	BookingID  int64     `json:"booking_id"`
	SenderID   int64     `json:"sender_id"`
	SenderName string    `json:"sender_name"`
	Body       string    `json:"body"`
	Timestamp  time.Time `json:"timestamp"`
}

// EmergencyBroadcastEvent is fanned out to all listeners
type EmergencyBroadcastEvent struct {
	BookingID   int64     `json:"booking_id"`
	TriggeredBy string    `json:"triggered_by"` // role of the triggering party
	Reason      string    `json:"reason"`
	Longitude   float64   `json:"longitude"`
	Latitude    float64   `json:"latitude"`
	Timestamp   time.Time `json:"timestamp"`
}

// BookingCancelledEvent notifies the counterparty of a cancellation
type BookingCancelledEvent struct {
	BookingID    int64     `json:"booking_id"`
	CancelledBy  int64     `json:"cancelled_by"`
	OtherPartyID int64     `json:"other_party_id"`
	Reason       string    `json:"reason"`
	RefundAmount int64     `json:"refund_amount"`
	Timestamp    time.Time `json:"timestamp"`
}

// PaymentConfirmedEvent notifies the provider of a captured payment
type PaymentConfirmedEvent struct {
	BookingID  int64     `json:"booking_id"`
	ProviderID int64     `json:"provider_id"`
	Amount     int64     `json:"amount"` // subtotal, the provider share
	Timestamp  time.Time `json:"timestamp"`
}

// PaymentRefundedEvent records a processed refund
type PaymentRefundedEvent struct {
	BookingID    int64     `json:"booking_id"`
	CustomerID   int64     `json:"customer_id"`
	RefundAmount int64     `json:"refund_amount"`
	RefundID     string    `json:"refund_id"`
	Timestamp    time.Time `json:"timestamp"`
}

// NotificationTask is a queued email/SMS delivery request, consumed by the
// background worker with bounded retry.
type NotificationTask struct {
	TaskID    string            `json:"task_id"`
	Channel   string            `json:"channel"` // email | sms
	Recipient string            `json:"recipient"`
	Template  string            `json:"template"`
	Params    map[string]string `json:"params,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}
