package bonus

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Gensutsu-code/AvarusVenditoreEmergent/internal/domain"
)

// ContributionType selects how a delivered order contributes to a program.
type ContributionType string

const (
	ContributionOrderTotal ContributionType = "order_total"
	ContributionPercentage ContributionType = "percentage"
)

// UnlimitedQuantity marks a prize that is never decremented.
const UnlimitedQuantity = -1

// Prize is one redeemable catalog entry within a program.
type Prize struct {
	ID         uuid.UUID
	Name       string
	PointsCost int64
	Quantity   int // UnlimitedQuantity means no stock tracking
	Enabled    bool
}

// Level is a named balance bracket granting a cashback rate.
type Level struct {
	ID              uuid.UUID
	Name            string
	MinPoints       int64
	CashbackPercent float64
	Color           string
	Benefits        string
}

// ProgramParams carries the raw fields for creating or updating a Program.
type ProgramParams struct {
	Title               string
	Description         string
	ImageURL            string
	MaxAmount           int64
	MinThreshold        int64
	ContributionType    ContributionType
	ContributionPercent float64
	Prizes              []Prize
	Levels              []Level
	Enabled             bool
}

// Program is the aggregate root for one bonus scheme.
type Program struct {
	id                  uuid.UUID
	title               string
	description         string
	imageURL            string
	maxAmount           int64
	minThreshold        int64
	contributionType    ContributionType
	contributionPercent float64
	prizes              []Prize
	levels              []Level
	enabled             bool
	createdAt           time.Time
	updatedAt           time.Time
}

// NewProgram creates a program, validating and normalizing the params.
// Prizes and levels without an id are assigned one; levels are sorted
// ascending by min points, stable for ties.
func NewProgram(params ProgramParams) (*Program, error) {
	now := time.Now().UTC()
	p := &Program{
		id:        uuid.New(),
		createdAt: now,
	}
	if err := p.apply(params, now); err != nil {
		return nil, err
	}
	return p, nil
}

// Update revalidates and applies a full set of params to an existing program.
func (p *Program) Update(params ProgramParams) error {
	return p.apply(params, time.Now().UTC())
}

func (p *Program) apply(params ProgramParams, now time.Time) error {
	title := strings.TrimSpace(params.Title)
	if title == "" {
		return domain.NewValidationError("program title is required")
	}
	if params.MaxAmount <= 0 {
		return domain.NewValidationError("max_amount must be positive")
	}
	if params.MinThreshold < 0 || params.MinThreshold > params.MaxAmount {
		return domain.NewValidationError("min_threshold must be within [0, max_amount]")
	}

	switch params.ContributionType {
	case ContributionOrderTotal:
		// percent is ignored for order_total programs
	case ContributionPercentage:
		if params.ContributionPercent <= 0 || params.ContributionPercent > 100 {
			return domain.NewValidationError("contribution_percent must be within (0, 100]")
		}
	default:
		return domain.NewValidationError("invalid contribution_type: " + string(params.ContributionType))
	}

	prizes := make([]Prize, len(params.Prizes))
	for i, prize := range params.Prizes {
		if strings.TrimSpace(prize.Name) == "" {
			return domain.NewValidationError("prize name is required")
		}
		if prize.PointsCost <= 0 {
			return domain.NewValidationError("prize points_cost must be positive")
		}
		if prize.Quantity < UnlimitedQuantity {
			return domain.NewValidationError("prize quantity must be -1 (unlimited) or non-negative")
		}
		if prize.ID == uuid.Nil {
			prize.ID = uuid.New()
		}
		prizes[i] = prize
	}

	levels := make([]Level, len(params.Levels))
	for i, level := range params.Levels {
		if strings.TrimSpace(level.Name) == "" {
			return domain.NewValidationError("level name is required")
		}
		if level.MinPoints < 0 {
			return domain.NewValidationError("level min_points must be non-negative")
		}
		if level.ID == uuid.Nil {
			level.ID = uuid.New()
		}
		levels[i] = level
	}
	sort.SliceStable(levels, func(i, j int) bool { return levels[i].MinPoints < levels[j].MinPoints })

	p.title = title
	p.description = params.Description
	p.imageURL = params.ImageURL
	p.maxAmount = params.MaxAmount
	p.minThreshold = params.MinThreshold
	p.contributionType = params.ContributionType
	p.contributionPercent = params.ContributionPercent
	p.prizes = prizes
	p.levels = levels
	p.enabled = params.Enabled
	p.updatedAt = now
	return nil
}

// Contribution computes this program's accrual for a delivered order total.
func (p *Program) Contribution(orderTotal int64) int64 {
	switch p.contributionType {
	case ContributionPercentage:
		return int64(float64(orderTotal) * p.contributionPercent / 100)
	default:
		return orderTotal
	}
}

// PrizeByID returns the prize with the given id, if present.
func (p *Program) PrizeByID(id uuid.UUID) (Prize, bool) {
	for _, prize := range p.prizes {
		if prize.ID == id {
			return prize, true
		}
	}
	return Prize{}, false
}

// LevelFor returns the highest level whose min points is at or below the
// given balance, and the next level above it. Either may be nil.
func (p *Program) LevelFor(points int64) (current, next *Level) {
	for i := range p.levels {
		if p.levels[i].MinPoints <= points {
			current = &p.levels[i]
		} else {
			next = &p.levels[i]
			break
		}
	}
	return current, next
}

// Getters.
func (p *Program) ID() uuid.UUID                      { return p.id }
func (p *Program) Title() string                      { return p.title }
func (p *Program) Description() string                { return p.description }
func (p *Program) ImageURL() string                   { return p.imageURL }
func (p *Program) MaxAmount() int64                   { return p.maxAmount }
func (p *Program) MinThreshold() int64                { return p.minThreshold }
func (p *Program) ContributionType() ContributionType { return p.contributionType }
func (p *Program) ContributionPercent() float64       { return p.contributionPercent }
func (p *Program) Prizes() []Prize                    { return p.prizes }
func (p *Program) Levels() []Level                    { return p.levels }
func (p *Program) Enabled() bool                      { return p.enabled }
func (p *Program) CreatedAt() time.Time               { return p.createdAt }
func (p *Program) UpdatedAt() time.Time               { return p.updatedAt }

// Reconstitute rebuilds a Program from persistence. Levels are re-sorted so
// the ascending-by-min-points invariant holds regardless of storage order.
func Reconstitute(
	id uuid.UUID,
	title, description, imageURL string,
	maxAmount, minThreshold int64,
	contributionType ContributionType,
	contributionPercent float64,
	prizes []Prize,
	levels []Level,
	enabled bool,
	createdAt, updatedAt time.Time,
) *Program {
	sort.SliceStable(levels, func(i, j int) bool { return levels[i].MinPoints < levels[j].MinPoints })
	return &Program{
		id:                  id,
		title:               title,
		description:         description,
		imageURL:            imageURL,
		maxAmount:           maxAmount,
		minThreshold:        minThreshold,
		contributionType:    contributionType,
		contributionPercent: contributionPercent,
		prizes:              prizes,
		levels:              levels,
		enabled:             enabled,
		createdAt:           createdAt,
		updatedAt:           updatedAt,
	}
}
