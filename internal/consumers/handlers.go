package consumers

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"helperhive/internal/external"
	"helperhive/internal/messaging"
	"helperhive/internal/metrics"
	"helperhive/internal/models"
	"helperhive/internal/repository"

	"github.com/google/uuid"
	"github.com/nats-io/stan.go"
)

const (
	notifyMaxAttempts = 3
	notifyRetryDelay  = 2 * time.Second
)

type Handlers struct {
	repos        *repository.Repositories
	notifyClient *external.NotifyClient
	natsClient   *messaging.NATSClient
}

func NewHandlers(repos *repository.Repositories, notifyClient *external.NotifyClient, natsClient *messaging.NATSClient) *Handlers {
	return &Handlers{
		repos:        repos,
		notifyClient: notifyClient,
		natsClient:   natsClient,
	}
}

// HandleNotificationSend delivers a queued email or SMS. Delivery is retried
// a bounded number of times; after that the task is dropped with an error
// log rather than blocking the queue.
func (h *Handlers) HandleNotificationSend(m *stan.Msg) {
	var task models.NotificationTask
	if err := json.Unmarshal(m.Data, &task); err != nil {
		slog.Error("Failed to unmarshal notification task", "error", err)
		m.Ack()
		return
	}

	var err error
	for attempt := 1; attempt <= notifyMaxAttempts; attempt++ {
		err = h.deliver(&task)
		if err == nil {
			break
		}
		slog.Warn("Notification delivery failed",
			"task_id", task.TaskID,
			"channel", task.Channel,
			"attempt", attempt,
			"error", err)
		if attempt < notifyMaxAttempts {
			time.Sleep(notifyRetryDelay * time.Duration(attempt))
		}
	}

	if err != nil {
		metrics.NotificationsSent.WithLabelValues(task.Channel, "dropped").Inc()
		slog.Error("Notification dropped after retries",
			"task_id", task.TaskID, "channel", task.Channel, "template", task.Template)
	} else {
		metrics.NotificationsSent.WithLabelValues(task.Channel, "delivered").Inc()
		slog.Info("Notification delivered",
			"task_id", task.TaskID, "channel", task.Channel, "template", task.Template)
	}

	m.Ack()
}

func (h *Handlers) deliver(task *models.NotificationTask) error {
	switch task.Channel {
	case "sms":
		body := task.Template
		if code, ok := task.Params["code"]; ok && task.Template == "otp" {
			body = "Your HelperHive verification code is " + code
		}
		_, err := h.notifyClient.SendSMS(task.Recipient, body)
		return err
	default:
		_, err := h.notifyClient.SendEmail(task.Recipient, task.Template, task.Params)
		return err
	}
}

// HandleBookingCreated queues the "new booking request" notification for the
// provider.
func (h *Handlers) HandleBookingCreated(m *stan.Msg) {
	var event models.BookingCreatedEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal booking created event", "error", err)
		m.Ack()
		return
	}

	h.queueEmail(event.ProviderID, "booking_requested", map[string]string{
		"booking_number": event.BookingNumber,
		"total":          strconv.FormatInt(event.Total, 10),
	})

	m.Ack()
}

// HandleBookingResponse queues the accept/reject outcome notification for the
// customer.
func (h *Handlers) HandleBookingResponse(m *stan.Msg) {
	var event models.BookingResponseEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal booking response event", "error", err)
		m.Ack()
		return
	}

	template := "booking_confirmed"
	if event.Action == "reject" {
		template = "booking_rejected"
	}
	h.queueEmail(event.CustomerID, template, map[string]string{
		"booking_id": strconv.FormatInt(event.BookingID, 10),
		"status":     event.Status,
	})

	m.Ack()
}

// queueEmail resolves the recipient and hands the message to the
// notification queue, which owns the retry policy.
func (h *Handlers) queueEmail(userID int64, template string, params map[string]string) {
	user, err := h.repos.Users.GetByID(context.Background(), userID)
	if err != nil || user == nil {
		slog.Error("Failed to load notification recipient", "error", err, "user_id", userID)
		return
	}

	task := models.NotificationTask{
		TaskID:    uuid.New().String(),
		Channel:   "email",
		Recipient: user.Email,
		Template:  template,
		Params:    params,
		Timestamp: time.Now(),
	}
	if err := h.natsClient.Publish(models.EventNotificationSend, task); err != nil {
		slog.Error("Failed to queue notification", "error", err, "user_id", userID, "template", template)
	}
}

// HandleEmergency escalates an active alert: both parties get an SMS on top
// of the realtime broadcast the API already did.
func (h *Handlers) HandleEmergency(m *stan.Msg) {
	var event models.EmergencyBroadcastEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal emergency event", "error", err)
		m.Ack()
		return
	}

	ctx := context.Background()
	booking, err := h.repos.Bookings.GetByID(ctx, event.BookingID)
	if err != nil || booking == nil {
		slog.Error("Failed to load booking for emergency escalation",
			"error", err, "booking_id", event.BookingID)
		m.Ack()
		return
	}

	for _, userID := range []int64{booking.CustomerID, booking.ProviderID} {
		user, err := h.repos.Users.GetByID(ctx, userID)
		if err != nil || user == nil {
			continue
		}
		if _, err := h.notifyClient.SendSMS(user.Phone,
			"Emergency alert raised on booking "+booking.BookingNumber); err != nil {
			slog.Error("Failed to send emergency SMS", "error", err, "user_id", userID)
		}
	}

	m.Ack()
}

// HandlePaymentConfirmed tells the provider their job is paid and scheduled
// for payout.
func (h *Handlers) HandlePaymentConfirmed(m *stan.Msg) {
	var event models.PaymentConfirmedEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal payment confirmed event", "error", err)
		m.Ack()
		return
	}

	ctx := context.Background()
	provider, err := h.repos.Users.GetByID(ctx, event.ProviderID)
	if err != nil || provider == nil {
		slog.Error("Failed to load provider for payment notification",
			"error", err, "provider_id", event.ProviderID)
		m.Ack()
		return
	}

	if _, err := h.notifyClient.SendEmail(provider.Email, "payment_received", map[string]string{
		"booking_id": strconv.FormatInt(event.BookingID, 10),
		"amount":     strconv.FormatInt(event.Amount, 10),
	}); err != nil {
		slog.Error("Failed to send payment notification", "error", err, "provider_id", event.ProviderID)
	}

	m.Ack()
}
