package jobs

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"helperhive/internal/messaging"
	"helperhive/internal/metrics"
	"helperhive/internal/models"
	"helperhive/internal/repository"

	"github.com/google/uuid"
)

const payoutBatchSize = 100

// PayoutJob periodically settles scheduled provider payouts. The provider
// receives the subtotal; the platform fee was already collected at capture.
type PayoutJob struct {
	bookingRepo *repository.BookingRepository
	userRepo    *repository.UserRepository
	natsClient  *messaging.NATSClient
	interval    time.Duration
	ticker      *time.Ticker
	done        chan bool
}

func NewPayoutJob(repos *repository.Repositories, natsClient *messaging.NATSClient, interval time.Duration) *PayoutJob {
	return &PayoutJob{
		bookingRepo: repos.Bookings,
		userRepo:    repos.Users,
		natsClient:  natsClient,
		interval:    interval,
		done:        make(chan bool),
	}
}

func (j *PayoutJob) Start(ctx context.Context) {
	slog.Info("Starting payout job", "interval", j.interval)

	j.ticker = time.NewTicker(j.interval)

	go j.runOnce(ctx)

	go func() {
		for {
			select {
			case <-j.ticker.C:
				go j.runOnce(ctx)
			case <-j.done:
				slog.Info("Payout job stopped")
				return
			}
		}
	}()
}

func (j *PayoutJob) Stop() {
	if j.ticker != nil {
		j.ticker.Stop()
	}
	close(j.done)
}

func (j *PayoutJob) runOnce(ctx context.Context) {
	due, err := j.bookingRepo.ListPayoutDue(ctx, payoutBatchSize)
	if err != nil {
		slog.Error("Failed to list due payouts", "error", err)
		return
	}
	if len(due) == 0 {
		slog.Debug("No payouts due")
		return
	}

	slog.Info("Processing payouts", "count", len(due))

	for _, booking := range due {
		if err := j.settle(ctx, &booking); err != nil {
			slog.Error("Failed to settle payout",
				"error", err,
				"booking_id", booking.ID,
				"provider_id", booking.ProviderID)
		}
	}
}

func (j *PayoutJob) settle(ctx context.Context, booking *models.Booking) error {
	if err := j.bookingRepo.MarkPayoutCompleted(ctx, booking.ID); err != nil {
		return err
	}

	if err := j.userRepo.CreditEarnings(ctx, booking.ProviderID, booking.Pricing.Subtotal); err != nil {
		return err
	}

	metrics.PayoutsCompleted.Inc()

	provider, err := j.userRepo.GetByID(ctx, booking.ProviderID)
	if err == nil && provider != nil {
		task := models.NotificationTask{
			TaskID:    uuid.New().String(),
			Channel:   "email",
			Recipient: provider.Email,
			Template:  "payout_completed",
			Params: map[string]string{
				"booking_number": booking.BookingNumber,
				"amount":         strconv.FormatInt(booking.Pricing.Subtotal, 10),
				"currency":       booking.Pricing.Currency,
			},
			Timestamp: time.Now(),
		}
		if err := j.natsClient.Publish(models.EventNotificationSend, task); err != nil {
			slog.Error("Failed to queue payout notification",
				"error", err, "booking_id", booking.ID)
		}
	}

	slog.Info("Payout settled",
		"booking_id", booking.ID,
		"provider_id", booking.ProviderID,
		"amount", booking.Pricing.Subtotal)

	return nil
}
