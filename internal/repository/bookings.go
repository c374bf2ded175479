package repository

import (
	"context"
	"database/sql"
	"time"

	"helperhive/internal/database"
	"helperhive/internal/domain"
	"helperhive/internal/models"
)

type BookingRepository struct {
	db *database.DB
}

func NewBookingRepository(db *database.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

const bookingColumns = `
	id, booking_number, customer_id, provider_id, service_id,
	scheduled_date, scheduled_start, scheduled_end,
	street, city, province, postal_code, country, longitude, latitude,
	special_instructions, access_instructions,
	base_price, add_ons_total, subtotal, platform_fee, total, currency,
	status,
	current_longitude, current_latitude, estimated_arrival, actual_arrival, actual_completion,
	emergency_active, emergency_by, emergency_reason, emergency_at, emergency_resolved,
	cancelled_by, cancel_reason, cancelled_at, refund_amount, refund_status,
	payment_status, payment_intent_id, paid_at, payout_status, payout_at, fee_collected,
	created_at, updated_at`

func scanBooking(row interface{ Scan(...any) error }) (*models.Booking, error) {
	b := &models.Booking{}
	err := row.Scan(
		&b.ID,
		&b.BookingNumber,
		&b.CustomerID,
		&b.ProviderID,
		&b.ServiceID,
		&b.ScheduledDate,
		&b.ScheduledStart,
		&b.ScheduledEnd,
		&b.Location.Street,
		&b.Location.City,
		&b.Location.Province,
		&b.Location.PostalCode,
		&b.Location.Country,
		&b.Location.Longitude,
		&b.Location.Latitude,
		&b.Location.SpecialInstructions,
		&b.Location.AccessInstructions,
		&b.Pricing.BasePrice,
		&b.Pricing.AddOnsTotal,
		&b.Pricing.Subtotal,
		&b.Pricing.PlatformFee,
		&b.Pricing.Total,
		&b.Pricing.Currency,
		&b.Status,
		&b.Tracking.CurrentLongitude,
		&b.Tracking.CurrentLatitude,
		&b.Tracking.EstimatedArrival,
		&b.Tracking.ActualArrival,
		&b.Tracking.ActualCompletion,
		&b.Emergency.IsActive,
		&b.Emergency.TriggeredBy,
		&b.Emergency.Reason,
		&b.Emergency.TriggeredAt,
		&b.Emergency.Resolved,
		&b.Cancellation.CancelledBy,
		&b.Cancellation.Reason,
		&b.Cancellation.CancelledAt,
		&b.Cancellation.RefundAmount,
		&b.Cancellation.RefundStatus,
		&b.Payment.Status,
		&b.Payment.IntentID,
		&b.Payment.PaidAt,
		&b.Payment.PayoutStatus,
		&b.Payment.PayoutAt,
		&b.Payment.FeeCollected,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return b, err
}

// Create inserts the booking and its add-on rows in one transaction. The
// pricing snapshot is frozen here and never recalculated.
func (r *BookingRepository) Create(ctx context.Context, b *models.Booking) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO bookings (
			booking_number, customer_id, provider_id, service_id,
			scheduled_date, scheduled_start, scheduled_end,
			street, city, province, postal_code, country, longitude, latitude,
			special_instructions, access_instructions,
			base_price, add_ons_total, subtotal, platform_fee, total, currency, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
		        $15, $16, $17, $18, $19, $20, $21, $22, $23)
		RETURNING id, created_at, updated_at`

	err = tx.QueryRowContext(ctx, query,
		b.BookingNumber, b.CustomerID, b.ProviderID, b.ServiceID,
		b.ScheduledDate, b.ScheduledStart, b.ScheduledEnd,
		b.Location.Street, b.Location.City, b.Location.Province, b.Location.PostalCode,
		b.Location.Country, b.Location.Longitude, b.Location.Latitude,
		b.Location.SpecialInstructions, b.Location.AccessInstructions,
		b.Pricing.BasePrice, b.Pricing.AddOnsTotal, b.Pricing.Subtotal,
		b.Pricing.PlatformFee, b.Pricing.Total, b.Pricing.Currency, b.Status,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return err
	}

	for _, addOn := range b.AddOns {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO booking_add_ons (booking_id, name, price) VALUES ($1, $2, $3)`,
			b.ID, addOn.Name, addOn.Price); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*models.Booking, error) {
	query := `SELECT` + bookingColumns + ` FROM bookings WHERE id = $1`
	b, err := scanBooking(r.db.QueryRowContext(ctx, query, id))
	if err != nil || b == nil {
		return b, err
	}
	b.AddOns, err = r.getAddOns(ctx, b.ID)
	return b, err
}

func (r *BookingRepository) GetByIntentID(ctx context.Context, intentID string) (*models.Booking, error) {
	query := `SELECT` + bookingColumns + ` FROM bookings WHERE payment_intent_id = $1`
	b, err := scanBooking(r.db.QueryRowContext(ctx, query, intentID))
	if err != nil || b == nil {
		return b, err
	}
	b.AddOns, err = r.getAddOns(ctx, b.ID)
	return b, err
}

func (r *BookingRepository) getAddOns(ctx context.Context, bookingID int64) ([]domain.AddOn, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT name, price FROM booking_add_ons WHERE booking_id = $1 ORDER BY id`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var addOns []domain.AddOn
	for rows.Next() {
		var a domain.AddOn
		if err := rows.Scan(&a.Name, &a.Price); err != nil {
			return nil, err
		}
		addOns = append(addOns, a)
	}
	return addOns, rows.Err()
}

// ListForUser returns bookings where the user is the customer or the
// provider, depending on role, newest first.
func (r *BookingRepository) ListForUser(ctx context.Context, userID int64, role, status string, page, limit int) ([]models.Booking, int64, error) {
	column := "customer_id"
	if role == models.RoleProvider {
		column = "provider_id"
	}

	var total int64
	countQuery := `SELECT COUNT(*) FROM bookings WHERE ` + column + ` = $1 AND ($2 = '' OR status = $2)`
	if err := r.db.QueryRowContext(ctx, countQuery, userID, status).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT` + bookingColumns + `
		FROM bookings
		WHERE ` + column + ` = $1 AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`

	rows, err := r.db.QueryContext(ctx, query, userID, status, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var bookings []models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, 0, err
		}
		bookings = append(bookings, *b)
	}

	return bookings, total, rows.Err()
}

// ListByStatus returns bookings by status for the admin dispute queue.
func (r *BookingRepository) ListByStatus(ctx context.Context, status string, page, limit int) ([]models.Booking, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookings WHERE status = $1`, status).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT` + bookingColumns + `
		FROM bookings
		WHERE status = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.QueryContext(ctx, query, status, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var bookings []models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, 0, err
		}
		bookings = append(bookings, *b)
	}

	return bookings, total, rows.Err()
}

func (r *BookingRepository) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error {
	query := `UPDATE bookings SET status = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, status, id)
	return err
}

// SetEnRoute records the transition to en-route along with the provider's
// starting position and estimate.
func (r *BookingRepository) SetEnRoute(ctx context.Context, id int64, lon, lat float64, eta *time.Time) error {
	query := `
		UPDATE bookings
		SET status = 'en-route', current_longitude = $1, current_latitude = $2,
		    estimated_arrival = $3, updated_at = NOW()
		WHERE id = $4`
	_, err := r.db.ExecContext(ctx, query, lon, lat, eta, id)
	return err
}

func (r *BookingRepository) SetInProgress(ctx context.Context, id int64) error {
	query := `
		UPDATE bookings
		SET status = 'in-progress', actual_arrival = NOW(), updated_at = NOW()
		WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *BookingRepository) SetCompleted(ctx context.Context, id int64) error {
	query := `
		UPDATE bookings
		SET status = 'completed', actual_completion = NOW(), updated_at = NOW()
		WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *BookingRepository) UpdateTracking(ctx context.Context, id int64, lon, lat float64) error {
	query := `
		UPDATE bookings
		SET current_longitude = $1, current_latitude = $2, updated_at = NOW()
		WHERE id = $3`
	_, err := r.db.ExecContext(ctx, query, lon, lat, id)
	return err
}

// SetEmergency overwrites any previous alert on the booking.
func (r *BookingRepository) SetEmergency(ctx context.Context, id, triggeredBy int64, reason string) error {
	query := `
		UPDATE bookings
		SET emergency_active = TRUE, emergency_by = $1, emergency_reason = $2,
		    emergency_at = NOW(), emergency_resolved = FALSE, updated_at = NOW()
		WHERE id = $3`
	_, err := r.db.ExecContext(ctx, query, triggeredBy, reason, id)
	return err
}

func (r *BookingRepository) ResolveEmergency(ctx context.Context, id int64) error {
	query := `
		UPDATE bookings
		SET emergency_active = FALSE, emergency_resolved = TRUE, updated_at = NOW()
		WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

// Cancel writes the cancellation record and the resulting payment status in
// one statement so a crash cannot leave a cancelled booking without its
// refund record.
func (r *BookingRepository) Cancel(ctx context.Context, id, cancelledBy int64, reason string, refundAmount int64, refundStatus, paymentStatus string) error {
	query := `
		UPDATE bookings
		SET status = 'cancelled', cancelled_by = $1, cancel_reason = $2,
		    cancelled_at = NOW(), refund_amount = $3, refund_status = $4,
		    payment_status = $5, updated_at = NOW()
		WHERE id = $6`
	_, err := r.db.ExecContext(ctx, query, cancelledBy, reason, refundAmount, refundStatus, paymentStatus, id)
	return err
}

// Payments

func (r *BookingRepository) SetPaymentIntent(ctx context.Context, id int64, intentID string) error {
	query := `
		UPDATE bookings
		SET payment_intent_id = $1, payment_status = 'processing', updated_at = NOW()
		WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, intentID, id)
	return err
}

func (r *BookingRepository) SetPaymentStatus(ctx context.Context, id int64, status string) error {
	query := `UPDATE bookings SET payment_status = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, status, id)
	return err
}

// MarkPaid captures the payment, collects the platform fee, and schedules
// the provider payout.
func (r *BookingRepository) MarkPaid(ctx context.Context, id int64) error {
	query := `
		UPDATE bookings
		SET payment_status = 'completed', paid_at = NOW(), fee_collected = TRUE,
		    payout_status = 'scheduled', updated_at = NOW()
		WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *BookingRepository) MarkRefunded(ctx context.Context, id int64, refundAmount int64, refundStatus string) error {
	query := `
		UPDATE bookings
		SET payment_status = 'refunded', refund_amount = $1, refund_status = $2, updated_at = NOW()
		WHERE id = $3`
	_, err := r.db.ExecContext(ctx, query, refundAmount, refundStatus, id)
	return err
}

// ListPayoutDue returns completed bookings with captured payment whose payout
// is still only scheduled.
func (r *BookingRepository) ListPayoutDue(ctx context.Context, limit int) ([]models.Booking, error) {
	query := `SELECT` + bookingColumns + `
		FROM bookings
		WHERE status = 'completed' AND payment_status = 'completed' AND payout_status = 'scheduled'
		ORDER BY actual_completion
		LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}

	return bookings, rows.Err()
}

func (r *BookingRepository) MarkPayoutCompleted(ctx context.Context, id int64) error {
	query := `
		UPDATE bookings
		SET payout_status = 'completed', payout_at = NOW(), updated_at = NOW()
		WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

// Status history

func (r *BookingRepository) AppendStatusHistory(ctx context.Context, bookingID int64, status string, note *string, actorID *int64) error {
	query := `
		INSERT INTO booking_status_history (booking_id, status, note, actor_id)
		VALUES ($1, $2, $3, $4)`
	_, err := r.db.ExecContext(ctx, query, bookingID, status, note, actorID)
	return err
}

func (r *BookingRepository) GetStatusHistory(ctx context.Context, bookingID int64) ([]models.StatusHistoryEntry, error) {
	query := `
		SELECT id, booking_id, status, note, actor_id, created_at
		FROM booking_status_history
		WHERE booking_id = $1
		ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.StatusHistoryEntry
	for rows.Next() {
		var e models.StatusHistoryEntry
		if err := rows.Scan(&e.ID, &e.BookingID, &e.Status, &e.Note, &e.ActorID, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// Messages

func (r *BookingRepository) AddMessage(ctx context.Context, msg *models.BookingMessage) error {
	query := `
		INSERT INTO booking_messages (booking_id, sender_id, body)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, query, msg.BookingID, msg.SenderID, msg.Body).
		Scan(&msg.ID, &msg.CreatedAt)
}

func (r *BookingRepository) GetMessages(ctx context.Context, bookingID int64) ([]models.BookingMessage, error) {
	query := `
		SELECT id, booking_id, sender_id, body, is_read, created_at
		FROM booking_messages
		WHERE booking_id = $1
		ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []models.BookingMessage
	for rows.Next() {
		var m models.BookingMessage
		if err := rows.Scan(&m.ID, &m.BookingID, &m.SenderID, &m.Body, &m.IsRead, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}

	return messages, rows.Err()
}

func (r *BookingRepository) MarkMessagesRead(ctx context.Context, bookingID, readerID int64) error {
	query := `
		UPDATE booking_messages
		SET is_read = TRUE
		WHERE booking_id = $1 AND sender_id <> $2 AND NOT is_read`
	_, err := r.db.ExecContext(ctx, query, bookingID, readerID)
	return err
}

// Aggregates

// Earnings sums provider takings since a cutoff. Completed payouts count as
// earned, scheduled ones as pending. The provider earns the subtotal; the
// platform fee never reaches them.
// PaymentHistory lists the caller's bookings with a settled payment, most
// recent payment first. Customers are matched on customer_id, providers on
// provider_id.
func (r *BookingRepository) PaymentHistory(ctx context.Context, userID int64, role string, page, limit int) ([]models.Booking, int64, error) {
	column := "customer_id"
	if role == models.RoleProvider {
		column = "provider_id"
	}

	var total int64
	countQuery := `SELECT COUNT(*) FROM bookings WHERE ` + column + ` = $1 AND payment_status IN ('completed', 'refunded')`
	if err := r.db.QueryRowContext(ctx, countQuery, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT` + bookingColumns + `
		FROM bookings
		WHERE ` + column + ` = $1 AND payment_status IN ('completed', 'refunded')
		ORDER BY paid_at DESC NULLS LAST
		LIMIT $2 OFFSET $3`

	rows, err := r.db.QueryContext(ctx, query, userID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var bookings []models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, 0, err
		}
		bookings = append(bookings, *b)
	}

	return bookings, total, rows.Err()
}

func (r *BookingRepository) Earnings(ctx context.Context, providerID int64, since time.Time) (earned, pending int64, count int, err error) {
	query := `
		SELECT
			COALESCE(SUM(subtotal) FILTER (WHERE payout_status = 'completed'), 0),
			COALESCE(SUM(subtotal) FILTER (WHERE payout_status = 'scheduled'), 0),
			COUNT(*)
		FROM bookings
		WHERE provider_id = $1 AND status = 'completed' AND created_at >= $2`
	err = r.db.QueryRowContext(ctx, query, providerID, since).Scan(&earned, &pending, &count)
	return
}

// DashboardStats aggregates the platform-wide counters for the admin view.
func (r *BookingRepository) DashboardStats(ctx context.Context) (*models.DashboardResponse, error) {
	stats := &models.DashboardResponse{}
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status IN ('pending', 'confirmed', 'en-route', 'in-progress')),
			COUNT(*) FILTER (WHERE status = 'disputed'),
			COUNT(*) FILTER (WHERE status = 'completed'),
			COALESCE(SUM(total) FILTER (WHERE payment_status = 'completed'), 0),
			COALESCE(SUM(platform_fee) FILTER (WHERE fee_collected), 0)
		FROM bookings`

	err := r.db.QueryRowContext(ctx, query).Scan(
		&stats.TotalBookings,
		&stats.ActiveBookings,
		&stats.DisputedBookings,
		&stats.CompletedBookings,
		&stats.GrossVolume,
		&stats.PlatformFees,
	)
	return stats, err
}
