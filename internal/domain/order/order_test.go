package order

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gensutsu-code/AvarusVenditoreEmergent/internal/domain"
)

func testLines() []Line {
	return []Line{
		{ProductID: uuid.New(), Name: "Brake pad set", Article: "BP-4412", Price: 12500, Quantity: 2},
		{ProductID: uuid.New(), Name: "Oil filter", Article: "OF-209", Price: 3400, Quantity: 1},
	}
}

func TestNewOrder_ComputesTotal(t *testing.T) {
	o, err := NewOrder(uuid.New(), testLines(), "Ivan Petrov", "Moscow, Lenina 1", "+79001234567")
	require.NoError(t, err)

	assert.Equal(t, int64(28400), o.Total())
	assert.Equal(t, StatusPending, o.Status())
}

func TestNewOrder_Validation(t *testing.T) {
	_, err := NewOrder(uuid.New(), nil, "Ivan", "addr", "phone")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)

	lines := testLines()
	lines[0].Quantity = 0
	_, err = NewOrder(uuid.New(), lines, "Ivan", "addr", "phone")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestOrder_TransitionLifecycle(t *testing.T) {
	o, err := NewOrder(uuid.New(), testLines(), "Ivan", "addr", "phone")
	require.NoError(t, err)

	delivered, err := o.TransitionTo(StatusProcessing)
	require.NoError(t, err)
	assert.False(t, delivered)

	delivered, err = o.TransitionTo(StatusShipped)
	require.NoError(t, err)
	assert.False(t, delivered)

	delivered, err = o.TransitionTo(StatusDelivered)
	require.NoError(t, err)
	assert.True(t, delivered)

	// Terminal: a repeat delivered update must not fire accrual again.
	_, err = o.TransitionTo(StatusDelivered)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	_, err = o.TransitionTo(StatusCancelled)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestOrder_TransitionValidation(t *testing.T) {
	o, err := NewOrder(uuid.New(), testLines(), "Ivan", "addr", "phone")
	require.NoError(t, err)

	_, err = o.TransitionTo("teleported")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)

	// Same-status update is a no-op, not an error.
	delivered, err := o.TransitionTo(StatusPending)
	require.NoError(t, err)
	assert.False(t, delivered)
}

func TestOrder_CancelledIsTerminal(t *testing.T) {
	o, err := NewOrder(uuid.New(), testLines(), "Ivan", "addr", "phone")
	require.NoError(t, err)

	_, err = o.TransitionTo(StatusCancelled)
	require.NoError(t, err)

	_, err = o.TransitionTo(StatusDelivered)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}
