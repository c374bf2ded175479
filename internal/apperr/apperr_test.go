package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindValidation, KindOf(Validation("bad input")))
	assert.Equal(t, KindNotFound, KindOf(NotFound("missing")))
	assert.Equal(t, KindStateConflict, KindOf(StateConflict("too late")))
	assert.Equal(t, KindExternal, KindOf(External("gateway down", errors.New("dial tcp"))))
	assert.Equal(t, KindInternal, KindOf(Internal(errors.New("boom"))))

	// Plain errors default to internal.
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
}

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("loading booking: %w", NotFound("booking not found"))
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.True(t, Is(err, KindNotFound))
}

func TestClientMessage(t *testing.T) {
	assert.Equal(t, "booking not found", ClientMessage(NotFound("booking not found")))
	assert.Equal(t, "gateway down", ClientMessage(External("gateway down", errors.New("dial tcp"))))

	// Internal causes never leak to clients.
	assert.Equal(t, "internal error", ClientMessage(Internal(errors.New("pq: relation does not exist"))))
	assert.Equal(t, "internal error", ClientMessage(errors.New("raw failure")))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := External("payment gateway unavailable", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")
}
