package service

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"helperhive/internal/config"
	"helperhive/internal/domain"
	"helperhive/internal/models"
)

func TestPaymentHistoryListsSettledPayments(t *testing.T) {
	repos, mock := newTestRepos(t)
	svc := NewPaymentService(config.Load(), repos, nil, nil)

	paidAt := time.Now().Add(-time.Hour)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM bookings WHERE customer_id")).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("ORDER BY paid_at DESC").
		WithArgs(int64(7), 20, 0).
		WillReturnRows(bookingRow{
			status:        string(domain.StatusCompleted),
			paymentStatus: domain.PaymentCompleted,
			paidAt:        paidAt,
		}.rows())

	resp, err := svc.History(context.Background(), 7, models.RoleCustomer, 0, 0)

	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.Total)
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, 1, resp.TotalPages)
	require.Len(t, resp.Payments, 1)
	assert.Equal(t, domain.PaymentCompleted, resp.Payments[0].Payment.Status)
	require.NotNil(t, resp.Payments[0].Payment.PaidAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentHistoryFiltersProvidersByProviderColumn(t *testing.T) {
	repos, mock := newTestRepos(t)
	svc := NewPaymentService(config.Load(), repos, nil, nil)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM bookings WHERE provider_id")).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("WHERE provider_id").
		WithArgs(int64(9), 20, 0).
		WillReturnRows(sqlmock.NewRows(bookingCols))

	resp, err := svc.History(context.Background(), 9, models.RoleProvider, 1, 20)

	require.NoError(t, err)
	assert.Equal(t, int64(0), resp.Total)
	assert.Empty(t, resp.Payments)
	assert.NoError(t, mock.ExpectationsWereMet())
}
