package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "helperhive_http_request_duration_seconds",
		Help:    "HTTP request latency by method, path and status.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	BookingsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "helperhive_bookings_created_total",
		Help: "Bookings created.",
	})

	BookingsCancelled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "helperhive_bookings_cancelled_total",
		Help: "Bookings cancelled, by refund tier label.",
	}, []string{"refund"})

	BookingStatusChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "helperhive_booking_status_changes_total",
		Help: "Booking status transitions, by target status.",
	}, []string{"status"})

	PaymentsCaptured = promauto.NewCounter(prometheus.CounterOpts{
		Name: "helperhive_payments_captured_total",
		Help: "Payments captured.",
	})

	PaymentsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "helperhive_payments_failed_total",
		Help: "Payment confirmations that ended failed.",
	})

	RefundsIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "helperhive_refunds_issued_total",
		Help: "Refunds issued through the gateway.",
	})

	PayoutsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "helperhive_payouts_completed_total",
		Help: "Provider payouts completed by the payout job.",
	})

	NotificationsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "helperhive_notifications_sent_total",
		Help: "Notifications dispatched by the consumer, by channel and outcome.",
	}, []string{"channel", "outcome"})

	EmergencyAlerts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "helperhive_emergency_alerts_total",
		Help: "Emergency alerts triggered.",
	})
)
