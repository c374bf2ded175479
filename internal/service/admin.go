package service

import (
	"context"
	"time"

	"helperhive/internal/apperr"
	"helperhive/internal/domain"
	"helperhive/internal/external"
	"helperhive/internal/logger"
	"helperhive/internal/messaging"
	"helperhive/internal/models"
	"helperhive/internal/repository"
)

type AdminService struct {
	userRepo      *repository.UserRepository
	bookingRepo   *repository.BookingRepository
	natsClient    *messaging.NATSClient
	gatewayClient *external.GatewayClient
	users         *UserService
}

func NewAdminService(repos *repository.Repositories, natsClient *messaging.NATSClient, gatewayClient *external.GatewayClient, users *UserService) *AdminService {
	return &AdminService{
		userRepo:      repos.Users,
		bookingRepo:   repos.Bookings,
		natsClient:    natsClient,
		gatewayClient: gatewayClient,
		users:         users,
	}
}

func (s *AdminService) Dashboard(ctx context.Context) (*models.DashboardResponse, error) {
	stats, err := s.bookingRepo.DashboardStats(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	stats.TotalUsers, err = s.userRepo.CountByRole(ctx, models.RoleCustomer)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	stats.TotalProviders, err = s.userRepo.CountByRole(ctx, models.RoleProvider)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	stats.TotalUsers += stats.TotalProviders

	return stats, nil
}

func (s *AdminService) ListUsers(ctx context.Context, role string, page, limit int) ([]models.User, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	users, total, err := s.userRepo.List(ctx, role, page, limit)
	if err != nil {
		return nil, 0, apperr.Internal(err)
	}
	return users, total, nil
}

// UpdateUserStatus activates, deactivates or suspends an account. Suspended
// providers drop out of the search index.
func (s *AdminService) UpdateUserStatus(ctx context.Context, userID int64, req *models.UpdateUserStatusRequest) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return apperr.Internal(err)
	}
	if user == nil {
		return apperr.NotFound("user not found")
	}

	if err := s.userRepo.SetStatus(ctx, userID, req.IsActive, req.IsSuspended, req.Reason); err != nil {
		return apperr.Internal(err)
	}

	if user.Role == models.RoleProvider {
		if err := s.users.ReindexProvider(ctx, userID); err != nil {
			logger.WithContext(ctx).Error("Failed to reindex provider",
				"error", err, "provider_id", userID)
		}
	}

	return nil
}

// UpdateVerification records a background check outcome on a provider.
func (s *AdminService) UpdateVerification(ctx context.Context, providerID int64, req *models.UpdateVerificationRequest) error {
	profile, err := s.userRepo.GetProviderProfile(ctx, providerID)
	if err != nil {
		return apperr.Internal(err)
	}
	if profile == nil {
		return apperr.NotFound("provider not found")
	}

	if err := s.userRepo.SetBackgroundCheckStatus(ctx, providerID, req.Status); err != nil {
		return apperr.Internal(err)
	}

	if err := s.users.ReindexProvider(ctx, providerID); err != nil {
		logger.WithContext(ctx).Error("Failed to reindex provider",
			"error", err, "provider_id", providerID)
	}

	return nil
}

func (s *AdminService) ListDisputes(ctx context.Context, page, limit int) ([]models.Booking, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	bookings, total, err := s.bookingRepo.ListByStatus(ctx, string(domain.StatusDisputed), page, limit)
	if err != nil {
		return nil, 0, apperr.Internal(err)
	}
	return bookings, total, nil
}

// OpenDispute moves an active booking into the disputed state, freezing the
// provider path until an admin resolves it.
func (s *AdminService) OpenDispute(ctx context.Context, adminID, bookingID int64, note string) error {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return apperr.Internal(err)
	}
	if booking == nil {
		return apperr.NotFound("booking not found")
	}

	if err := domain.OpenDispute(booking.Status); err != nil {
		return err
	}

	if err := s.bookingRepo.UpdateStatus(ctx, bookingID, domain.StatusDisputed); err != nil {
		return apperr.Internal(err)
	}
	s.appendHistory(ctx, bookingID, string(domain.StatusDisputed), note, adminID)

	return nil
}

// ResolveDispute closes a disputed booking with a terminal outcome. A
// cancelled outcome refunds the full captured amount.
func (s *AdminService) ResolveDispute(ctx context.Context, adminID, bookingID int64, req *models.ResolveDisputeRequest) error {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return apperr.Internal(err)
	}
	if booking == nil {
		return apperr.NotFound("booking not found")
	}

	outcome := domain.BookingStatus(req.Outcome)
	if err := domain.ResolveDispute(booking.Status, outcome); err != nil {
		return err
	}

	if outcome == domain.StatusCancelled {
		refundAmount, refundStatus := int64(0), domain.RefundNone
		paymentStatus := booking.Payment.Status
		if booking.Payment.Status == domain.PaymentCompleted && booking.Payment.IntentID != nil {
			if _, err := s.gatewayClient.CreateRefund(*booking.Payment.IntentID, booking.Pricing.Total, req.Note); err != nil {
				return apperr.External("refund failed", err)
			}
			refundAmount, refundStatus = booking.Pricing.Total, domain.RefundFull
			paymentStatus = domain.PaymentRefunded
		}
		if err := s.bookingRepo.Cancel(ctx, bookingID, adminID, req.Note, refundAmount, refundStatus, paymentStatus); err != nil {
			return apperr.Internal(err)
		}
	} else {
		if err := s.bookingRepo.UpdateStatus(ctx, bookingID, outcome); err != nil {
			return apperr.Internal(err)
		}
	}

	s.appendHistory(ctx, bookingID, string(outcome), req.Note, adminID)

	if err := s.natsClient.Publish(models.EventBookingStatus, models.BookingStatusEvent{
		BookingID: bookingID,
		Status:    string(outcome),
		Timestamp: time.Now(),
	}); err != nil {
		logger.WithContext(ctx).Error("Failed to publish event",
			"error", err, "subject", models.EventBookingStatus)
	}

	return nil
}

func (s *AdminService) appendHistory(ctx context.Context, bookingID int64, status, note string, actorID int64) {
	var notePtr *string
	if note != "" {
		notePtr = &note
	}
	if err := s.bookingRepo.AppendStatusHistory(ctx, bookingID, status, notePtr, &actorID); err != nil {
		logger.WithContext(ctx).Error("Failed to append status history",
			"error", err, "booking_id", bookingID, "status", status)
	}
}
