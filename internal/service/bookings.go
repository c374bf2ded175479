package service

import (
	"context"
	"fmt"
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

type BookingService struct {
	cfg           *config.Config
	bookingRepo   *repository.BookingRepository
	userRepo      *repository.UserRepository
	serviceRepo   *repository.ServiceRepository
	natsClient    *messaging.NATSClient
	gatewayClient *external.GatewayClient
}

func NewBookingService(cfg *config.Config, repos *repository.Repositories, natsClient *messaging.NATSClient, gatewayClient *external.GatewayClient) *BookingService {
	return &BookingService{
		cfg:           cfg,
		bookingRepo:   repos.Bookings,
		userRepo:      repos.Users,
		serviceRepo:   repos.Services,
		natsClient:    natsClient,
		gatewayClient: gatewayClient,
	}
}

// Create books a provider for a service. The pricing snapshot is computed
// and frozen here; later catalog price changes never touch it.
func (s *BookingService) Create(ctx context.Context, customerID int64, req *models.CreateBookingRequest) (*models.Booking, error) {
	customer, err := s.userRepo.GetByID(ctx, customerID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if customer == nil {
		return nil, apperr.NotFound("user not found")
	}
	if !customer.PhoneVerified {
		return nil, apperr.Forbidden("phone verification required to book")
	}

	svc, err := s.serviceRepo.GetByID(ctx, req.ServiceID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if svc == nil || !svc.IsActive {
		return nil, apperr.NotFound("service not found")
	}

	if err := s.checkProviderBookable(ctx, req.ProviderID, req.ServiceID); err != nil {
		return nil, err
	}

	if _, err := time.Parse("15:04", req.ScheduledStart); err != nil {
		return nil, apperr.Validation("scheduled_start must be HH:MM")
	}

	pricing, err := domain.CalculatePricing(svc.BasePrice, req.AddOns, s.cfg.Booking.CommissionRate, svc.Currency)
	if err != nil {
		return nil, err
	}

	booking := &models.Booking{
		BookingNumber:  domain.NewBookingNumber(time.Now()),
		CustomerID:     customerID,
		ProviderID:     req.ProviderID,
		ServiceID:      req.ServiceID,
		ScheduledDate:  req.ScheduledDate,
		ScheduledStart: req.ScheduledStart,
		Location:       req.Location,
		AddOns:         req.AddOns,
		Pricing:        pricing,
		Status:         domain.StatusPending,
	}

	if booking.ScheduledAt().Before(time.Now()) {
		return nil, apperr.Validation("scheduled time is in the past")
	}

	if err := s.bookingRepo.Create(ctx, booking); err != nil {
		return nil, apperr.Internal(err)
	}

	metrics.BookingsCreated.Inc()

	s.publish(ctx, models.EventBookingCreated, models.BookingCreatedEvent{
		BookingID:     booking.ID,
		BookingNumber: booking.BookingNumber,
		CustomerID:    booking.CustomerID,
		ProviderID:    booking.ProviderID,
		ServiceID:     booking.ServiceID,
		Total:         booking.Pricing.Total,
		Timestamp:     time.Now(),
	})

	return booking, nil
}

func (s *BookingService) checkProviderBookable(ctx context.Context, providerID, serviceID int64) error {
	provider, err := s.userRepo.GetByID(ctx, providerID)
	if err != nil {
		return apperr.Internal(err)
	}
	if provider == nil || provider.Role != models.RoleProvider {
		return apperr.NotFound("provider not found")
	}
	if !provider.IsActive || provider.IsSuspended {
		return apperr.Validation("provider is not accepting bookings")
	}

	profile, err := s.userRepo.GetProviderProfile(ctx, providerID)
	if err != nil {
		return apperr.Internal(err)
	}
	if profile == nil {
		return apperr.NotFound("provider not found")
	}
	if profile.BackgroundCheckStatus != models.BackgroundCheckApproved {
		return apperr.Validation("provider has not passed verification")
	}
	if !profile.IsAvailable {
		return apperr.Validation("provider is not accepting bookings")
	}

	offers, err := s.userRepo.ProviderOffersService(ctx, providerID, serviceID)
	if err != nil {
		return apperr.Internal(err)
	}
	if !offers {
		return apperr.Validation("provider does not offer this service")
	}

	return nil
}

// BookingDetail is one booking with its status log.
type BookingDetail struct {
	Booking *models.Booking             `json:"booking"`
	History []models.StatusHistoryEntry `json:"status_history"`
}

func (s *BookingService) Get(ctx context.Context, userID int64, role string, bookingID int64) (*BookingDetail, error) {
	booking, err := s.getForParty(ctx, userID, role, bookingID)
	if err != nil {
		return nil, err
	}

	history, err := s.bookingRepo.GetStatusHistory(ctx, bookingID)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	return &BookingDetail{Booking: booking, History: history}, nil
}

func (s *BookingService) List(ctx context.Context, userID int64, role, status string, page, limit int) (*models.BookingListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	bookings, total, err := s.bookingRepo.ListForUser(ctx, userID, role, status, page, limit)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &models.BookingListResponse{
		Bookings:   bookings,
		Page:       page,
		TotalPages: totalPages,
		Total:      total,
	}, nil
}

// Respond handles the provider accept/reject on a pending booking. A reject
// cancels the booking; any captured payment is returned in full.
func (s *BookingService) Respond(ctx context.Context, providerID, bookingID int64, req *models.RespondBookingRequest) (*models.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if booking == nil {
		return nil, apperr.NotFound("booking not found")
	}
	if booking.ProviderID != providerID {
		return nil, apperr.Forbidden("not your booking")
	}

	next, err := domain.Respond(booking.Status, req.Action)
	if err != nil {
		return nil, err
	}

	if next == domain.StatusCancelled {
		refundAmount, refundStatus, paymentStatus := int64(0), domain.RefundNone, booking.Payment.Status
		if booking.Payment.Status == domain.PaymentCompleted {
			refundAmount, refundStatus = booking.Pricing.Total, domain.RefundFull
			if err := s.issueRefund(ctx, booking, refundAmount, "provider rejected booking"); err != nil {
				return nil, err
			}
			paymentStatus = domain.PaymentRefunded
		}
		if err := s.bookingRepo.Cancel(ctx, bookingID, providerID, req.Reason, refundAmount, refundStatus, paymentStatus); err != nil {
			return nil, apperr.Internal(err)
		}
	} else {
		if err := s.bookingRepo.UpdateStatus(ctx, bookingID, next); err != nil {
			return nil, apperr.Internal(err)
		}
	}

	s.appendHistory(ctx, bookingID, string(next), req.Reason, providerID)
	metrics.BookingStatusChanges.WithLabelValues(string(next)).Inc()

	s.publish(ctx, models.EventBookingResponse, models.BookingResponseEvent{
		BookingID:  bookingID,
		CustomerID: booking.CustomerID,
		Action:     req.Action,
		Status:     string(next),
		Timestamp:  time.Now(),
	})

	return s.bookingRepo.GetByID(ctx, bookingID)
}

// UpdateStatus moves a booking along the provider path. Arrival and
// completion timestamps are recorded as side effects of the transition.
func (s *BookingService) UpdateStatus(ctx context.Context, providerID, bookingID int64, req *models.UpdateStatusRequest) (*models.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if booking == nil {
		return nil, apperr.NotFound("booking not found")
	}
	if booking.ProviderID != providerID {
		return nil, apperr.Forbidden("not your booking")
	}

	next := domain.BookingStatus(req.Status)
	if err := domain.Progress(booking.Status, next); err != nil {
		return nil, err
	}

	var location []float64
	switch next {
	case domain.StatusEnRoute:
		if req.Location == nil {
			if err := s.bookingRepo.UpdateStatus(ctx, bookingID, next); err != nil {
				return nil, apperr.Internal(err)
			}
			break
		}
		if err := s.bookingRepo.SetEnRoute(ctx, bookingID, req.Location.Longitude, req.Location.Latitude, req.Location.EstimatedArrival); err != nil {
			return nil, apperr.Internal(err)
		}
		location = []float64{req.Location.Longitude, req.Location.Latitude}
	case domain.StatusInProgress:
		if err := s.bookingRepo.SetInProgress(ctx, bookingID); err != nil {
			return nil, apperr.Internal(err)
		}
	case domain.StatusCompleted:
		if err := s.bookingRepo.SetCompleted(ctx, bookingID); err != nil {
			return nil, apperr.Internal(err)
		}
	}

	s.appendHistory(ctx, bookingID, string(next), "", providerID)
	metrics.BookingStatusChanges.WithLabelValues(string(next)).Inc()

	s.publish(ctx, models.EventBookingStatus, models.BookingStatusEvent{
		BookingID: bookingID,
		Status:    string(next),
		Location:  location,
		Timestamp: time.Now(),
	})
	s.notifyUser(ctx, booking.CustomerID, "booking_status", map[string]string{
		"booking_number": booking.BookingNumber,
		"status":         string(next),
	})

	return s.bookingRepo.GetByID(ctx, bookingID)
}

// LocationPing records a live provider position. Only meaningful while the
// service is upcoming or underway; outside that window pings are rejected.
func (s *BookingService) LocationPing(ctx context.Context, providerID, bookingID int64, req *models.UpdateLocationPingRequest) error {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return apperr.Internal(err)
	}
	if booking == nil {
		return apperr.NotFound("booking not found")
	}
	if booking.ProviderID != providerID {
		return apperr.Forbidden("not your booking")
	}
	if !domain.TrackingActive(booking.Status) {
		return apperr.StateConflict("tracking is not active for this booking")
	}

	if err := s.bookingRepo.UpdateTracking(ctx, bookingID, req.Longitude, req.Latitude); err != nil {
		return apperr.Internal(err)
	}

	s.publish(ctx, fmt.Sprintf("%s.%d", models.EventBookingLocation, bookingID), models.ProviderLocationEvent{
		BookingID: bookingID,
		Longitude: req.Longitude,
		Latitude:  req.Latitude,
		Timestamp: time.Now(),
	})

	return nil
}

// AddMessage appends to the booking chat. Messages stay open in every
// status, including after completion.
func (s *BookingService) AddMessage(ctx context.Context, userID int64, role string, bookingID int64, req *models.AddMessageRequest) (*models.BookingMessage, error) {
	booking, err := s.getForParty(ctx, userID, role, bookingID)
	if err != nil {
		return nil, err
	}

	sender, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	msg := &models.BookingMessage{
		BookingID: bookingID,
		SenderID:  userID,
		Body:      req.Message,
	}
	if err := s.bookingRepo.AddMessage(ctx, msg); err != nil {
		return nil, apperr.Internal(err)
	}

	senderName := ""
	if sender != nil {
		senderName = sender.FirstName
	}
	s.publish(ctx, fmt.Sprintf("%s.%d", models.EventBookingMessage, bookingID), models.NewMessageEvent{
		BookingID:  bookingID,
		SenderID:   userID,
		SenderName: senderName,
		Body:       req.Message,
		Timestamp:  msg.CreatedAt,
	})

	other := booking.CustomerID
	if userID == booking.CustomerID {
		other = booking.ProviderID
	}
	s.notifyUser(ctx, other, "new_message", map[string]string{
		"booking_number": booking.BookingNumber,
	})

	return msg, nil
}

func (s *BookingService) ListMessages(ctx context.Context, userID int64, role string, bookingID int64) ([]models.BookingMessage, error) {
	if _, err := s.getForParty(ctx, userID, role, bookingID); err != nil {
		return nil, err
	}

	messages, err := s.bookingRepo.GetMessages(ctx, bookingID)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	if err := s.bookingRepo.MarkMessagesRead(ctx, bookingID, userID); err != nil {
		logger.WithContext(ctx).Error("Failed to mark messages read", "error", err, "booking_id", bookingID)
	}

	return messages, nil
}

// Emergency raises the alert on a booking. A new alert overwrites the
// previous one rather than stacking.
func (s *BookingService) Emergency(ctx context.Context, userID int64, role string, bookingID int64, req *models.EmergencyRequest) error {
	booking, err := s.getForParty(ctx, userID, role, bookingID)
	if err != nil {
		return err
	}
	if booking.Status.IsTerminal() {
		return apperr.StateConflict("booking is already finalized")
	}

	if err := s.bookingRepo.SetEmergency(ctx, bookingID, userID, req.Reason); err != nil {
		return apperr.Internal(err)
	}

	metrics.EmergencyAlerts.Inc()

	triggeredBy := string(domain.ActorCustomer)
	if userID == booking.ProviderID {
		triggeredBy = string(domain.ActorProvider)
	}

	var lon, lat float64
	if booking.Tracking.CurrentLongitude != nil {
		lon = *booking.Tracking.CurrentLongitude
	}
	if booking.Tracking.CurrentLatitude != nil {
		lat = *booking.Tracking.CurrentLatitude
	}

	s.publish(ctx, models.EventBookingEmergency, models.EmergencyBroadcastEvent{
		BookingID:   bookingID,
		TriggeredBy: triggeredBy,
		Reason:      req.Reason,
		Longitude:   lon,
		Latitude:    lat,
		Timestamp:   time.Now(),
	})

	other := booking.CustomerID
	if userID == booking.CustomerID {
		other = booking.ProviderID
	}
	s.notifyUser(ctx, other, "emergency_alert", map[string]string{
		"booking_number": booking.BookingNumber,
	})

	return nil
}

// Cancel applies the tiered refund policy and finalizes the booking.
// The cancellation record is written once; a repeat cancel is a state
// conflict.
func (s *BookingService) Cancel(ctx context.Context, userID int64, role string, bookingID int64, req *models.CancelBookingRequest) (*models.CancelBookingResponse, error) {
	booking, err := s.getForParty(ctx, userID, role, bookingID)
	if err != nil {
		return nil, err
	}

	if err := domain.EnsureCancellable(booking.Status, booking.Status == domain.StatusCancelled); err != nil {
		return nil, err
	}

	refundAmount, refundStatus := int64(0), domain.RefundNone
	paymentStatus := booking.Payment.Status
	if booking.Payment.Status == domain.PaymentCompleted {
		hours := domain.HoursUntil(booking.ScheduledAt(), time.Now())
		refundAmount, refundStatus = s.cfg.Booking.CancelPolicy.RefundAmount(booking.Pricing.Total, hours)
		if refundAmount > 0 {
			if err := s.issueRefund(ctx, booking, refundAmount, req.Reason); err != nil {
				return nil, err
			}
			paymentStatus = domain.PaymentRefunded
		}
	}

	if err := s.bookingRepo.Cancel(ctx, bookingID, userID, req.Reason, refundAmount, refundStatus, paymentStatus); err != nil {
		return nil, apperr.Internal(err)
	}

	s.appendHistory(ctx, bookingID, string(domain.StatusCancelled), req.Reason, userID)
	metrics.BookingsCancelled.WithLabelValues(refundStatus).Inc()

	other := booking.ProviderID
	if userID == booking.ProviderID {
		other = booking.CustomerID
	}
	s.publish(ctx, models.EventBookingCancelled, models.BookingCancelledEvent{
		BookingID:    bookingID,
		CancelledBy:  userID,
		OtherPartyID: other,
		Reason:       req.Reason,
		RefundAmount: refundAmount,
		Timestamp:    time.Now(),
	})
	s.notifyUser(ctx, other, "booking_cancelled", map[string]string{
		"booking_number": booking.BookingNumber,
	})

	return &models.CancelBookingResponse{
		Message:      "booking cancelled",
		RefundStatus: refundStatus,
		RefundAmount: refundAmount,
	}, nil
}

// issueRefund pushes the refund through the gateway. The caller records the
// resulting payment status.
func (s *BookingService) issueRefund(ctx context.Context, booking *models.Booking, amount int64, reason string) error {
	if booking.Payment.IntentID == nil {
		return apperr.StateConflict("no payment intent on booking")
	}

	refund, err := s.gatewayClient.CreateRefund(*booking.Payment.IntentID, amount, reason)
	if err != nil {
		return apperr.External("refund failed", err)
	}

	metrics.RefundsIssued.Inc()

	s.publish(ctx, models.EventPaymentRefunded, models.PaymentRefundedEvent{
		BookingID:    booking.ID,
		CustomerID:   booking.CustomerID,
		RefundAmount: amount,
		RefundID:     refund.RefundID,
		Timestamp:    time.Now(),
	})

	return nil
}

func (s *BookingService) getForParty(ctx context.Context, userID int64, role string, bookingID int64) (*models.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if booking == nil {
		return nil, apperr.NotFound("booking not found")
	}

	if role != models.RoleAdmin {
		if err := domain.EnsureParty(userID, booking.CustomerID, booking.ProviderID); err != nil {
			return nil, err
		}
	}

	return booking, nil
}

func (s *BookingService) appendHistory(ctx context.Context, bookingID int64, status, note string, actorID int64) {
	var notePtr *string
	if note != "" {
		notePtr = &note
	}
	if err := s.bookingRepo.AppendStatusHistory(ctx, bookingID, status, notePtr, &actorID); err != nil {
		logger.WithContext(ctx).Error("Failed to append status history",
			"error", err, "booking_id", bookingID, "status", status)
	}
}

// publish is fire-and-forget: a broadcast failure never fails the operation.
func (s *BookingService) publish(ctx context.Context, subject string, data interface{}) {
	if err := s.natsClient.Publish(subject, data); err != nil {
		logger.WithContext(ctx).Error("Failed to publish event",
			"error", err, "subject", subject)
	}
}

// notifyUser queues an email for the background worker to deliver.
func (s *BookingService) notifyUser(ctx context.Context, userID int64, template string, params map[string]string) {
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
