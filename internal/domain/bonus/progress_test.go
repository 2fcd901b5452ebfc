package bonus

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gensutsu-code/AvarusVenditoreEmergent/internal/domain"
)

func TestProgress_AccrueSaturates(t *testing.T) {
	p := NewProgress(uuid.New(), uuid.New())

	p.Accrue(60000, 100000)
	assert.Equal(t, int64(60000), p.CurrentAmount())

	p.Accrue(60000, 100000)
	assert.Equal(t, int64(100000), p.CurrentAmount())

	p.Accrue(1, 100000)
	assert.Equal(t, int64(100000), p.CurrentAmount())

	p.Accrue(-5, 100000)
	assert.Equal(t, int64(100000), p.CurrentAmount())
}

func TestProgress_Request(t *testing.T) {
	p := NewProgress(uuid.New(), uuid.New())

	err := p.Request(0)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)

	p.Accrue(30000, 100000)
	err = p.Request(50000)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)

	p.Accrue(20000, 100000)
	require.NoError(t, p.Request(50000))
	assert.True(t, p.BonusRequested())
	require.NotNil(t, p.RequestDate())

	err = p.Request(50000)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAlreadyRequested)
}

func TestProgress_IssueReset(t *testing.T) {
	p := NewProgress(uuid.New(), uuid.New())
	p.Accrue(75000, 100000)
	require.NoError(t, p.Request(0))

	amount := p.IssueReset()
	assert.Equal(t, int64(75000), amount)
	assert.Equal(t, int64(0), p.CurrentAmount())
	assert.False(t, p.BonusRequested())
	assert.Nil(t, p.RequestDate())

	// The pair can accrue and request again after issuance.
	p.Accrue(10000, 100000)
	require.NoError(t, p.Request(0))
}

func TestProgress_Spend(t *testing.T) {
	p := NewProgress(uuid.New(), uuid.New())
	p.Accrue(5000, 100000)

	err := p.Spend(6000)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)
	assert.Equal(t, int64(5000), p.CurrentAmount())

	require.NoError(t, p.Spend(5000))
	assert.Equal(t, int64(0), p.CurrentAmount())
}

func TestProgress_RefundClamps(t *testing.T) {
	p := NewProgress(uuid.New(), uuid.New())
	p.Accrue(90000, 100000)

	p.Refund(50000, 100000)
	assert.Equal(t, int64(100000), p.CurrentAmount())

	p.Refund(0, 100000)
	assert.Equal(t, int64(100000), p.CurrentAmount())
}
