package bonus

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gensutsu-code/AvarusVenditoreEmergent/internal/domain"
)

func validParams() ProgramParams {
	return ProgramParams{
		Title:            "Tire change voucher",
		MaxAmount:        100000,
		MinThreshold:     50000,
		ContributionType: ContributionOrderTotal,
		Enabled:          true,
	}
}

func TestNewProgram_Valid(t *testing.T) {
	p, err := NewProgram(validParams())
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, p.ID())
	assert.Equal(t, "Tire change voucher", p.Title())
	assert.Equal(t, int64(100000), p.MaxAmount())
	assert.True(t, p.Enabled())
}

func TestNewProgram_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ProgramParams)
	}{
		{"empty title", func(p *ProgramParams) { p.Title = "  " }},
		{"zero max amount", func(p *ProgramParams) { p.MaxAmount = 0 }},
		{"negative threshold", func(p *ProgramParams) { p.MinThreshold = -1 }},
		{"threshold above max", func(p *ProgramParams) { p.MinThreshold = 100001 }},
		{"unknown contribution type", func(p *ProgramParams) { p.ContributionType = "loyalty_magic" }},
		{"percentage without percent", func(p *ProgramParams) {
			p.ContributionType = ContributionPercentage
			p.ContributionPercent = 0
		}},
		{"percent above 100", func(p *ProgramParams) {
			p.ContributionType = ContributionPercentage
			p.ContributionPercent = 101
		}},
		{"prize without name", func(p *ProgramParams) {
			p.Prizes = []Prize{{Name: " ", PointsCost: 10, Quantity: 1}}
		}},
		{"prize with zero cost", func(p *ProgramParams) {
			p.Prizes = []Prize{{Name: "Cap", PointsCost: 0, Quantity: 1}}
		}},
		{"prize with bad quantity", func(p *ProgramParams) {
			p.Prizes = []Prize{{Name: "Cap", PointsCost: 10, Quantity: -2}}
		}},
		{"level without name", func(p *ProgramParams) {
			p.Levels = []Level{{Name: "", MinPoints: 0}}
		}},
		{"level with negative min points", func(p *ProgramParams) {
			p.Levels = []Level{{Name: "Bronze", MinPoints: -5}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := validParams()
			tt.mutate(&params)
			_, err := NewProgram(params)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestNewProgram_AssignsIDsAndSortsLevels(t *testing.T) {
	params := validParams()
	params.Prizes = []Prize{{Name: "Mug", PointsCost: 500, Quantity: UnlimitedQuantity}}
	params.Levels = []Level{
		{Name: "Gold", MinPoints: 50000},
		{Name: "Bronze", MinPoints: 0},
		{Name: "Silver", MinPoints: 20000},
	}

	p, err := NewProgram(params)
	require.NoError(t, err)

	require.Len(t, p.Prizes(), 1)
	assert.NotEqual(t, uuid.Nil, p.Prizes()[0].ID)

	levels := p.Levels()
	require.Len(t, levels, 3)
	assert.Equal(t, "Bronze", levels[0].Name)
	assert.Equal(t, "Silver", levels[1].Name)
	assert.Equal(t, "Gold", levels[2].Name)
	for _, level := range levels {
		assert.NotEqual(t, uuid.Nil, level.ID)
	}
}

func TestProgram_Contribution(t *testing.T) {
	orderTotal, err := NewProgram(validParams())
	require.NoError(t, err)
	assert.Equal(t, int64(34990), orderTotal.Contribution(34990))

	params := validParams()
	params.ContributionType = ContributionPercentage
	params.ContributionPercent = 5
	pct, err := NewProgram(params)
	require.NoError(t, err)

	assert.Equal(t, int64(1749), pct.Contribution(34990))
	assert.Equal(t, int64(0), pct.Contribution(19))
}

func TestProgram_LevelFor(t *testing.T) {
	params := validParams()
	params.Levels = []Level{
		{Name: "Bronze", MinPoints: 0},
		{Name: "Silver", MinPoints: 20000},
		{Name: "Gold", MinPoints: 50000},
	}
	p, err := NewProgram(params)
	require.NoError(t, err)

	current, next := p.LevelFor(0)
	require.NotNil(t, current)
	require.NotNil(t, next)
	assert.Equal(t, "Bronze", current.Name)
	assert.Equal(t, "Silver", next.Name)

	current, next = p.LevelFor(20000)
	require.NotNil(t, current)
	assert.Equal(t, "Silver", current.Name)
	assert.Equal(t, "Gold", next.Name)

	current, next = p.LevelFor(99999)
	require.NotNil(t, current)
	assert.Equal(t, "Gold", current.Name)
	assert.Nil(t, next)
}

func TestProgram_PrizeByID(t *testing.T) {
	params := validParams()
	params.Prizes = []Prize{{Name: "Jacket", PointsCost: 40000, Quantity: 3}}
	p, err := NewProgram(params)
	require.NoError(t, err)

	prize, ok := p.PrizeByID(p.Prizes()[0].ID)
	require.True(t, ok)
	assert.Equal(t, "Jacket", prize.Name)

	_, ok = p.PrizeByID(uuid.New())
	assert.False(t, ok)
}

func TestProgram_UpdateKeepsIdentity(t *testing.T) {
	p, err := NewProgram(validParams())
	require.NoError(t, err)

	id := p.ID()
	created := p.CreatedAt()
	time.Sleep(time.Millisecond)

	params := validParams()
	params.Title = "Winter promo"
	params.Enabled = false
	require.NoError(t, p.Update(params))

	assert.Equal(t, id, p.ID())
	assert.Equal(t, created, p.CreatedAt())
	assert.Equal(t, "Winter promo", p.Title())
	assert.False(t, p.Enabled())
	assert.True(t, p.UpdatedAt().After(created))
}
