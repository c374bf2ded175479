package service

import (
	"context"
	"strconv"
	"time"

	"helperhive/internal/apperr"
	"helperhive/internal/config"
	"helperhive/internal/domain"
	"helperhive/internal/external"
	"helperhive/internal/logger"
	"helperhive/internal/messaging"
	"helperhive/internal/metrics"
	"helperhive/internal/models"
	"helperhive/internal/repository"

	"github.com/google/uuid"
)

type PaymentService struct {
	cfg           *config.Config
	bookingRepo   *repository.BookingRepository
	userRepo      *repository.UserRepository
	natsClient    *messaging.NATSClient
	gatewayClient *external.GatewayClient
}

func NewPaymentService(cfg *config.Config, repos *repository.Repositories, natsClient *messaging.NATSClient, gatewayClient *external.GatewayClient) *PaymentService {
	return &PaymentService{
		cfg:           cfg,
		bookingRepo:   repos.Bookings,
		userRepo:      repos.Users,
		natsClient:    natsClient,
		gatewayClient: gatewayClient,
	}
}

// CreateIntent opens a gateway intent for the frozen booking total. Calling
// it again before confirmation replaces the stored intent.
func (s *PaymentService) CreateIntent(ctx context.Context, customerID int64, req *models.CreateIntentRequest) (*models.CreateIntentResponse, error) {
	booking, err := s.bookingRepo.GetByID(ctx, req.BookingID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if booking == nil {
		return nil, apperr.NotFound("booking not found")
	}
	if booking.CustomerID != customerID {
		return nil, apperr.Forbidden("not your booking")
	}
	if booking.Status.IsTerminal() {
		return nil, apperr.StateConflict("booking is already finalized")
	}
	switch booking.Payment.Status {
	case domain.PaymentCompleted:
		return nil, apperr.StateConflict("booking is already paid")
	case domain.PaymentRefunded:
		return nil, apperr.StateConflict("payment was refunded")
	}

	intent, err := s.gatewayClient.CreateIntent(
		booking.Pricing.Total,
		booking.Pricing.Currency,
		booking.BookingNumber,
		"HelperHive booking "+booking.BookingNumber,
		map[string]string{
			"booking_id":  strconv.FormatInt(booking.ID, 10),
			"customer_id": strconv.FormatInt(booking.CustomerID, 10),
		})
	if err != nil {
		return nil, apperr.External("payment gateway unavailable", err)
	}

	if err := s.bookingRepo.SetPaymentIntent(ctx, booking.ID, intent.IntentID); err != nil {
		return nil, apperr.Internal(err)
	}

	return &models.CreateIntentResponse{
		ClientSecret: intent.ClientSecret,
		IntentID:     intent.IntentID,
		Amount:       booking.Pricing.Total,
		Currency:     booking.Pricing.Currency,
	}, nil
}

// Confirm settles the payment from the gateway-side intent status. A
// succeeded intent captures the payment, collects the platform fee and
// schedules the provider payout.
func (s *PaymentService) Confirm(ctx context.Context, customerID int64, req *models.ConfirmPaymentRequest) (*models.Booking, error) {
	booking, err := s.bookingRepo.GetByIntentID(ctx, req.IntentID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if booking == nil {
		return nil, apperr.NotFound("no booking for this payment")
	}
	if booking.CustomerID != customerID {
		return nil, apperr.Forbidden("not your booking")
	}
	if booking.Payment.Status == domain.PaymentCompleted {
		return booking, nil
	}

	intent, err := s.gatewayClient.RetrieveIntent(req.IntentID)
	if err != nil {
		return nil, apperr.External("payment gateway unavailable", err)
	}

	switch intent.Status {
	case external.IntentSucceeded:
		if err := s.bookingRepo.MarkPaid(ctx, booking.ID); err != nil {
			return nil, apperr.Internal(err)
		}
		metrics.PaymentsCaptured.Inc()

		if err := s.userRepo.IncrementSpending(ctx, booking.CustomerID, booking.Pricing.Total); err != nil {
			logger.WithContext(ctx).Error("Failed to update customer spending",
				"error", err, "user_id", booking.CustomerID)
		}

		s.publish(ctx, models.EventPaymentConfirmed, models.PaymentConfirmedEvent{
			BookingID:  booking.ID,
			ProviderID: booking.ProviderID,
			Amount:     booking.Pricing.Subtotal,
			Timestamp:  time.Now(),
		})
		s.notifyUser(ctx, booking.CustomerID, "payment_receipt", map[string]string{
			"booking_number": booking.BookingNumber,
			"amount":         strconv.FormatInt(booking.Pricing.Total, 10),
			"currency":       booking.Pricing.Currency,
		})

	case external.IntentProcessing:
		return nil, apperr.StateConflict("payment is still processing")

	default:
		if err := s.bookingRepo.SetPaymentStatus(ctx, booking.ID, domain.PaymentFailed); err != nil {
			return nil, apperr.Internal(err)
		}
		metrics.PaymentsFailed.Inc()
		return nil, apperr.StateConflict("payment failed")
	}

	return s.bookingRepo.GetByID(ctx, booking.ID)
}

// Refund handles a customer-initiated refund request. Granting it cancels
// the booking; the refunded share follows the request-refund tier table,
// which is stricter than the self-service cancel one.
func (s *PaymentService) Refund(ctx context.Context, customerID int64, req *models.RefundRequest) (*models.RefundResponse, error) {
	booking, err := s.bookingRepo.GetByID(ctx, req.BookingID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if booking == nil {
		return nil, apperr.NotFound("booking not found")
	}
	if booking.CustomerID != customerID {
		return nil, apperr.Forbidden("not your booking")
	}

	alreadyCancelled := booking.Status == domain.StatusCancelled
	if err := domain.EnsureRefundable(booking.Status, booking.Payment.Status, alreadyCancelled); err != nil {
		return nil, err
	}
	if booking.Payment.IntentID == nil {
		return nil, apperr.StateConflict("no payment intent on booking")
	}

	hours := domain.HoursUntil(booking.ScheduledAt(), time.Now())
	refundAmount, refundStatus := s.cfg.Booking.RefundPolicy.RefundAmount(booking.Pricing.Total, hours)
	if refundAmount <= 0 {
		return nil, apperr.StateConflict("booking is no longer refundable")
	}

	refund, err := s.gatewayClient.CreateRefund(*booking.Payment.IntentID, refundAmount, req.Reason)
	if err != nil {
		return nil, apperr.External("refund failed", err)
	}

	if err := s.bookingRepo.Cancel(ctx, booking.ID, customerID, req.Reason, refundAmount, refundStatus, domain.PaymentRefunded); err != nil {
		return nil, apperr.Internal(err)
	}

	metrics.RefundsIssued.Inc()
	metrics.BookingsCancelled.WithLabelValues(refundStatus).Inc()

	s.publish(ctx, models.EventPaymentRefunded, models.PaymentRefundedEvent{
		BookingID:    booking.ID,
		CustomerID:   booking.CustomerID,
		RefundAmount: refundAmount,
		RefundID:     refund.RefundID,
		Timestamp:    time.Now(),
	})
	s.notifyUser(ctx, booking.CustomerID, "refund_processed", map[string]string{
		"booking_number": booking.BookingNumber,
		"amount":         strconv.FormatInt(refundAmount, 10),
	})
	s.notifyUser(ctx, booking.ProviderID, "booking_cancelled", map[string]string{
		"booking_number": booking.BookingNumber,
	})

	return &models.RefundResponse{
		Message:      "refund processed",
		RefundAmount: refundAmount,
		RefundID:     refund.RefundID,
	}, nil
}

// History lists the caller's settled payments. Customers see what they
// paid, providers see the bookings they were paid for.
func (s *PaymentService) History(ctx context.Context, userID int64, role string, page, limit int) (*models.PaymentHistoryResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	bookings, total, err := s.bookingRepo.PaymentHistory(ctx, userID, role, page, limit)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &models.PaymentHistoryResponse{
		Payments:   bookings,
		Page:       page,
		TotalPages: totalPages,
		Total:      total,
	}, nil
}

// Earnings summarizes provider takings for a period (week, month or all).
func (s *PaymentService) Earnings(ctx context.Context, providerID int64, period string) (*models.EarningsResponse, error) {
	var since time.Time
	switch period {
	case "week":
		since = time.Now().AddDate(0, 0, -7)
	case "month":
		since = time.Now().AddDate(0, -1, 0)
	case "", "all":
		period = "all"
	default:
		return nil, apperr.Validation("period must be week, month or all")
	}

	earned, pending, count, err := s.bookingRepo.Earnings(ctx, providerID, since)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	return &models.EarningsResponse{
		Period:        period,
		TotalEarnings: earned,
		Pending:       pending,
		BookingsCount: count,
	}, nil
}

func (s *PaymentService) publish(ctx context.Context, subject string, data interface{}) {
	if err := s.natsClient.Publish(subject, data); err != nil {
		logger.WithContext(ctx).Error("Failed to publish event",
			"error", err, "subject", subject)
	}
}

func (s *PaymentService) notifyUser(ctx context.Context, userID int64, template string, params map[string]string) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil || user == nil {
		logger.WithContext(ctx).Error("Failed to load notification recipient",
			"error", err, "user_id", userID)
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
	s.publish(ctx, models.EventNotificationSend, task)
}
