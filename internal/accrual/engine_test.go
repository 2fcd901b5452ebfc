package accrual

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Gensutsu-code/AvarusVenditoreEmergent/internal/domain/bonus"
)

type fakeProgramRepo struct {
	enabled []*bonus.Program
	err     error
}

func (f *fakeProgramRepo) Save(context.Context, *bonus.Program) error   { return nil }
func (f *fakeProgramRepo) Update(context.Context, *bonus.Program) error { return nil }
func (f *fakeProgramRepo) FindByID(context.Context, uuid.UUID) (*bonus.Program, error) {
	return nil, nil
}
func (f *fakeProgramRepo) FindAll(context.Context) ([]*bonus.Program, error) { return nil, nil }
func (f *fakeProgramRepo) FindEnabled(context.Context) ([]*bonus.Program, error) {
	return f.enabled, f.err
}
func (f *fakeProgramRepo) Delete(context.Context, uuid.UUID) error                 { return nil }
func (f *fakeProgramRepo) DecrementPrizeQuantity(context.Context, uuid.UUID) error { return nil }

type accrualCall struct {
	programID    uuid.UUID
	contribution int64
	maxAmount    int64
}

type fakeProgressRepo struct {
	calls   []accrualCall
	failFor uuid.UUID
}

func (f *fakeProgressRepo) Get(context.Context, uuid.UUID, uuid.UUID) (*bonus.Progress, error) {
	return nil, nil
}
func (f *fakeProgressRepo) Update(context.Context, *bonus.Progress) error { return nil }
func (f *fakeProgressRepo) AccrueCapped(_ context.Context, _, programID uuid.UUID, contribution, maxAmount int64) error {
	if programID == f.failFor {
		return errors.New("connection reset")
	}
	f.calls = append(f.calls, accrualCall{programID: programID, contribution: contribution, maxAmount: maxAmount})
	return nil
}
func (f *fakeProgressRepo) SpendConditional(context.Context, uuid.UUID, uuid.UUID, int64) error {
	return nil
}
func (f *fakeProgressRepo) RefundCapped(context.Context, uuid.UUID, uuid.UUID, int64, int64) error {
	return nil
}
func (f *fakeProgressRepo) ListByProgram(context.Context, uuid.UUID) ([]*bonus.Progress, error) {
	return nil, nil
}

func mustProgram(t *testing.T, params bonus.ProgramParams) *bonus.Program {
	t.Helper()
	p, err := bonus.NewProgram(params)
	require.NoError(t, err)
	return p
}

func TestEngine_CreditsEveryEnabledProgram(t *testing.T) {
	full := mustProgram(t, bonus.ProgramParams{
		Title:            "Full total",
		MaxAmount:        100000,
		ContributionType: bonus.ContributionOrderTotal,
		Enabled:          true,
	})
	pct := mustProgram(t, bonus.ProgramParams{
		Title:               "Five percent",
		MaxAmount:           50000,
		ContributionType:    bonus.ContributionPercentage,
		ContributionPercent: 5,
		Enabled:             true,
	})

	progress := &fakeProgressRepo{}
	engine := NewEngine(&fakeProgramRepo{enabled: []*bonus.Program{full, pct}}, progress, zap.NewNop())

	err := engine.OnOrderDelivered(context.Background(), uuid.New(), uuid.New(), 34990)
	require.NoError(t, err)

	require.Len(t, progress.calls, 2)
	assert.Equal(t, full.ID(), progress.calls[0].programID)
	assert.Equal(t, int64(34990), progress.calls[0].contribution)
	assert.Equal(t, int64(100000), progress.calls[0].maxAmount)
	assert.Equal(t, pct.ID(), progress.calls[1].programID)
	assert.Equal(t, int64(1749), progress.calls[1].contribution)
}

func TestEngine_SkipsZeroContribution(t *testing.T) {
	pct := mustProgram(t, bonus.ProgramParams{
		Title:               "One percent",
		MaxAmount:           50000,
		ContributionType:    bonus.ContributionPercentage,
		ContributionPercent: 1,
		Enabled:             true,
	})

	progress := &fakeProgressRepo{}
	engine := NewEngine(&fakeProgramRepo{enabled: []*bonus.Program{pct}}, progress, zap.NewNop())

	// 1% of 99 rounds down to zero; no ledger write should happen.
	require.NoError(t, engine.OnOrderDelivered(context.Background(), uuid.New(), uuid.New(), 99))
	assert.Empty(t, progress.calls)
}

func TestEngine_KeepsEarlierCreditsOnFailure(t *testing.T) {
	first := mustProgram(t, bonus.ProgramParams{
		Title:            "First",
		MaxAmount:        100000,
		ContributionType: bonus.ContributionOrderTotal,
		Enabled:          true,
	})
	second := mustProgram(t, bonus.ProgramParams{
		Title:            "Second",
		MaxAmount:        100000,
		ContributionType: bonus.ContributionOrderTotal,
		Enabled:          true,
	})

	progress := &fakeProgressRepo{failFor: second.ID()}
	engine := NewEngine(&fakeProgramRepo{enabled: []*bonus.Program{first, second}}, progress, zap.NewNop())

	err := engine.OnOrderDelivered(context.Background(), uuid.New(), uuid.New(), 1000)
	require.Error(t, err)

	// The first program's credit went through before the failure.
	require.Len(t, progress.calls, 1)
	assert.Equal(t, first.ID(), progress.calls[0].programID)
}

func TestEngine_ProgramLoadFailure(t *testing.T) {
	progress := &fakeProgressRepo{}
	engine := NewEngine(&fakeProgramRepo{err: errors.New("db down")}, progress, zap.NewNop())

	err := engine.OnOrderDelivered(context.Background(), uuid.New(), uuid.New(), 1000)
	require.Error(t, err)
	assert.Empty(t, progress.calls)
}
