package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"helperhive/internal/apperr"
)

func TestRespond(t *testing.T) {
	next, err := Respond(StatusPending, ActionAccept)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, next)

	next, err = Respond(StatusPending, ActionReject)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, next)
}

func TestRespondNotPending(t *testing.T) {
	for _, status := range []BookingStatus{StatusConfirmed, StatusCancelled, StatusCompleted} {
		_, err := Respond(status, ActionAccept)
		assert.True(t, apperr.Is(err, apperr.KindStateConflict), "status %s", status)
	}
}

func TestRespondUnknownAction(t *testing.T) {
	_, err := Respond(StatusPending, "maybe")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestProgress(t *testing.T) {
	assert.NoError(t, Progress(StatusConfirmed, StatusEnRoute))
	assert.NoError(t, Progress(StatusEnRoute, StatusInProgress))
	assert.NoError(t, Progress(StatusInProgress, StatusCompleted))

	// Skipping forward is allowed.
	assert.NoError(t, Progress(StatusConfirmed, StatusCompleted))
}

func TestProgressRejected(t *testing.T) {
	// Terminal bookings stay terminal.
	err := Progress(StatusCompleted, StatusEnRoute)
	assert.True(t, apperr.Is(err, apperr.KindStateConflict))

	err = Progress(StatusCancelled, StatusInProgress)
	assert.True(t, apperr.Is(err, apperr.KindStateConflict))

	// Backwards is not a transition.
	err = Progress(StatusInProgress, StatusEnRoute)
	assert.True(t, apperr.Is(err, apperr.KindStateConflict))

	// Pending must go through accept, not a status update.
	err = Progress(StatusPending, StatusEnRoute)
	assert.True(t, apperr.Is(err, apperr.KindStateConflict))

	// Targets outside the in-service path are invalid input.
	err = Progress(StatusConfirmed, StatusCancelled)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestOpenDispute(t *testing.T) {
	assert.NoError(t, OpenDispute(StatusConfirmed))
	assert.NoError(t, OpenDispute(StatusInProgress))

	err := OpenDispute(StatusDisputed)
	assert.True(t, apperr.Is(err, apperr.KindStateConflict))

	err = OpenDispute(StatusCompleted)
	assert.True(t, apperr.Is(err, apperr.KindStateConflict))
}

func TestResolveDispute(t *testing.T) {
	assert.NoError(t, ResolveDispute(StatusDisputed, StatusCompleted))
	assert.NoError(t, ResolveDispute(StatusDisputed, StatusCancelled))
	assert.NoError(t, ResolveDispute(StatusDisputed, StatusNoShow))

	err := ResolveDispute(StatusConfirmed, StatusCompleted)
	assert.True(t, apperr.Is(err, apperr.KindStateConflict))

	err = ResolveDispute(StatusDisputed, StatusConfirmed)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestEnsureCancellable(t *testing.T) {
	assert.NoError(t, EnsureCancellable(StatusPending, false))
	assert.NoError(t, EnsureCancellable(StatusConfirmed, false))

	err := EnsureCancellable(StatusCancelled, true)
	assert.True(t, apperr.Is(err, apperr.KindStateConflict))

	err = EnsureCancellable(StatusInProgress, false)
	assert.True(t, apperr.Is(err, apperr.KindStateConflict))
}

func TestEnsureRefundable(t *testing.T) {
	assert.NoError(t, EnsureRefundable(StatusConfirmed, PaymentCompleted, false))

	err := EnsureRefundable(StatusConfirmed, PaymentPending, false)
	assert.True(t, apperr.Is(err, apperr.KindStateConflict))

	err = EnsureRefundable(StatusCompleted, PaymentCompleted, false)
	assert.True(t, apperr.Is(err, apperr.KindStateConflict))

	err = EnsureRefundable(StatusCancelled, PaymentCompleted, true)
	assert.True(t, apperr.Is(err, apperr.KindStateConflict))
}

func TestEnsureParty(t *testing.T) {
	assert.NoError(t, EnsureParty(1, 1, 2))
	assert.NoError(t, EnsureParty(2, 1, 2))

	err := EnsureParty(3, 1, 2)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
}
