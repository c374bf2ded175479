package domain

import "helperhive/internal/apperr"

// Provider response actions on a pending booking.
const (
	ActionAccept = "accept"
	ActionReject = "reject"
)

// Respond resolves a provider accept/reject into the next status. Only a
// pending booking can be responded to.
func Respond(current BookingStatus, action string) (BookingStatus, error) {
	if current != StatusPending {
		return current, apperr.StateConflict("booking is no longer pending")
	}
	switch action {
	case ActionAccept:
		return StatusConfirmed, nil
	case ActionReject:
		return StatusCancelled, nil
	}
	return current, apperr.Validation("action must be accept or reject")
}

// Progress validates a provider-driven status update along the forward-only
// in-service path. The booking is left unchanged on error.
func Progress(current, next BookingStatus) error {
	switch next {
	case StatusEnRoute, StatusInProgress, StatusCompleted:
	default:
		return apperr.Validation("invalid status")
	}
	if current.IsTerminal() {
		return apperr.StateConflict("booking is already finalized")
	}
	if !CanProgress(current, next) {
		return apperr.StateConflict("status update not allowed from current state")
	}
	return nil
}

// OpenDispute validates the administrative transition into disputed.
func OpenDispute(current BookingStatus) error {
	if current.IsTerminal() {
		return apperr.StateConflict("cannot dispute a finalized booking")
	}
	if current == StatusDisputed {
		return apperr.StateConflict("booking is already disputed")
	}
	return nil
}

// ResolveDispute validates the administrative exit from disputed into a
// terminal outcome.
func ResolveDispute(current, outcome BookingStatus) error {
	if current != StatusDisputed {
		return apperr.StateConflict("booking is not disputed")
	}
	switch outcome {
	case StatusCompleted, StatusCancelled, StatusNoShow:
		return nil
	}
	return apperr.Validation("dispute outcome must be completed, cancelled or no-show")
}

// EnsureCancellable enforces the cancellation window and the once-only
// cancellation record.
func EnsureCancellable(current BookingStatus, alreadyCancelled bool) error {
	if alreadyCancelled {
		return apperr.StateConflict("booking is already cancelled")
	}
	if !CanCancel(current) {
		return apperr.StateConflict("booking cannot be cancelled at this stage")
	}
	return nil
}

// EnsureRefundable enforces the refund preconditions: payment completed,
// service not already delivered, no prior cancellation.
func EnsureRefundable(current BookingStatus, paymentStatus string, alreadyCancelled bool) error {
	if alreadyCancelled {
		return apperr.StateConflict("booking is already cancelled")
	}
	if paymentStatus != PaymentCompleted {
		return apperr.StateConflict("payment not completed, cannot refund")
	}
	if current == StatusCompleted {
		return apperr.StateConflict("cannot refund a completed service")
	}
	return nil
}

// EnsureParty checks that userID belongs to the booking.
func EnsureParty(userID, customerID, providerID int64) error {
	if userID != customerID && userID != providerID {
		return apperr.Forbidden("access denied")
	}
	return nil
}
