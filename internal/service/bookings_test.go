package service

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"helperhive/internal/apperr"
	"helperhive/internal/config"
	"helperhive/internal/database"
	"helperhive/internal/domain"
	"helperhive/internal/models"
	"helperhive/internal/repository"
)

func newTestRepos(t *testing.T) (*repository.Repositories, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return repository.New(&database.DB{DB: db}), mock
}

var bookingCols = []string{
	"id", "booking_number", "customer_id", "provider_id", "service_id",
	"scheduled_date", "scheduled_start", "scheduled_end",
	"street", "city", "province", "postal_code", "country", "longitude", "latitude",
	"special_instructions", "access_instructions",
	"base_price", "add_ons_total", "subtotal", "platform_fee", "total", "currency",
	"status",
	"current_longitude", "current_latitude", "estimated_arrival", "actual_arrival", "actual_completion",
	"emergency_active", "emergency_by", "emergency_reason", "emergency_at", "emergency_resolved",
	"cancelled_by", "cancel_reason", "cancelled_at", "refund_amount", "refund_status",
	"payment_status", "payment_intent_id", "paid_at", "payout_status", "payout_at", "fee_collected",
	"created_at", "updated_at",
}

type bookingRow struct {
	status        string
	paymentStatus string
	refundAmount  int64
	refundStatus  any
	cancelledBy   any
	paidAt        any
}

func (br bookingRow) rows() *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(bookingCols).AddRow(
		int64(12), "HH-20250601-00042", int64(7), int64(9), int64(3),
		now.AddDate(0, 0, 3), "09:00", nil,
		"12 Oak Ave", "Cape Town", "Western Cape", "8001", "ZA", 18.42, -33.92,
		"", "",
		int64(40000), int64(4000), int64(44000), int64(4400), int64(48400), "ZAR",
		br.status,
		nil, nil, nil, nil, nil,
		false, nil, nil, nil, false,
		br.cancelledBy, nil, nil, br.refundAmount, br.refundStatus,
		br.paymentStatus, nil, br.paidAt, "pending", nil, false,
		now, now,
	)
}

func expectGetBooking(mock sqlmock.Sqlmock, row bookingRow) {
	mock.ExpectQuery("FROM bookings WHERE id").
		WithArgs(int64(12)).
		WillReturnRows(row.rows())
	mock.ExpectQuery("FROM booking_add_ons").
		WillReturnRows(sqlmock.NewRows([]string{"name", "price"}))
}

func TestCancelAlreadyCancelledConflicts(t *testing.T) {
	repos, mock := newTestRepos(t)
	svc := NewBookingService(config.Load(), repos, nil, nil)

	expectGetBooking(mock, bookingRow{
		status:        string(domain.StatusCancelled),
		paymentStatus: domain.PaymentRefunded,
		refundAmount:  44000,
		refundStatus:  domain.RefundFull,
		cancelledBy:   int64(7),
	})

	resp, err := svc.Cancel(context.Background(), 7, models.RoleCustomer, 12,
		&models.CancelBookingRequest{Reason: "changed my mind"})

	assert.Nil(t, resp)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindStateConflict))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelCompletedConflicts(t *testing.T) {
	repos, mock := newTestRepos(t)
	svc := NewBookingService(config.Load(), repos, nil, nil)

	expectGetBooking(mock, bookingRow{
		status:        string(domain.StatusCompleted),
		paymentStatus: domain.PaymentCompleted,
		refundStatus:  nil,
	})

	resp, err := svc.Cancel(context.Background(), 7, models.RoleCustomer, 12,
		&models.CancelBookingRequest{Reason: "too late"})

	assert.Nil(t, resp)
	assert.True(t, apperr.Is(err, apperr.KindStateConflict))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusEnRouteWithoutLocation(t *testing.T) {
	repos, mock := newTestRepos(t)
	svc := NewBookingService(config.Load(), repos, nil, nil)

	expectGetBooking(mock, bookingRow{
		status:        string(domain.StatusConfirmed),
		paymentStatus: domain.PaymentPending,
	})
	mock.ExpectExec("UPDATE bookings SET status").
		WithArgs(domain.StatusEnRoute, int64(12)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO booking_status_history").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("FROM users").
		WillReturnError(sql.ErrConnDone)
	expectGetBooking(mock, bookingRow{
		status:        string(domain.StatusEnRoute),
		paymentStatus: domain.PaymentPending,
	})

	updated, err := svc.UpdateStatus(context.Background(), 9, 12,
		&models.UpdateStatusRequest{Status: string(domain.StatusEnRoute)})

	require.NoError(t, err)
	assert.Equal(t, domain.StatusEnRoute, updated.Status)
	assert.Nil(t, updated.Tracking.CurrentLongitude)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusEnRouteWithLocation(t *testing.T) {
	repos, mock := newTestRepos(t)
	svc := NewBookingService(config.Load(), repos, nil, nil)

	expectGetBooking(mock, bookingRow{
		status:        string(domain.StatusConfirmed),
		paymentStatus: domain.PaymentPending,
	})
	mock.ExpectExec(regexp.QuoteMeta("SET status = 'en-route', current_longitude")).
		WithArgs(18.42, -33.92, nil, int64(12)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO booking_status_history").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("FROM users").
		WillReturnError(sql.ErrConnDone)
	expectGetBooking(mock, bookingRow{
		status:        string(domain.StatusEnRoute),
		paymentStatus: domain.PaymentPending,
	})

	_, err := svc.UpdateStatus(context.Background(), 9, 12,
		&models.UpdateStatusRequest{
			Status:   string(domain.StatusEnRoute),
			Location: &models.StatusLocation{Longitude: 18.42, Latitude: -33.92},
		})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
