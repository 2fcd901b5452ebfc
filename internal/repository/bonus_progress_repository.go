package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Gensutsu-code/AvarusVenditoreEmergent/internal/domain"
	bonusDomain "github.com/Gensutsu-code/AvarusVenditoreEmergent/internal/domain/bonus"
)

// BonusProgressModel is the GORM persistence model for the bonus_progress table.
type BonusProgressModel struct {
	UserID         uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ProgramID      uuid.UUID  `gorm:"type:uuid;primaryKey"`
	CurrentAmount  int64      `gorm:"not null;default:0"`
	BonusRequested bool       `gorm:"not null;default:false"`
	RequestDate    *time.Time `gorm:"type:timestamptz"`
	UpdatedAt      time.Time  `gorm:"type:timestamptz;not null"`
}

// TableName specifies the table name for GORM.
func (BonusProgressModel) TableName() string { return "bonus_progress" }

// GormProgressRepository implements bonus.ProgressRepository using GORM.
// All balance mutations run as single conditional UPDATE statements so
// concurrent writers never lose increments.
type GormProgressRepository struct {
	db *gorm.DB
}

// NewGormProgressRepository creates a new GormProgressRepository.
func NewGormProgressRepository(db *gorm.DB) *GormProgressRepository {
	return &GormProgressRepository{db: db}
}

// Get returns the (user, program) progress, lazily creating a zeroed row.
func (r *GormProgressRepository) Get(ctx context.Context, userID, programID uuid.UUID) (*bonusDomain.Progress, error) {
	var model BonusProgressModel
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND program_id = ?", userID, programID).
		First(&model).Error
	if err == nil {
		return toProgressDomain(model), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	fresh := bonusDomain.NewProgress(userID, programID)
	model = toProgressModel(fresh)
	// Concurrent first reads race on the insert; whoever loses keeps the
	// existing row.
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND program_id = ?", userID, programID).
		First(&model).Error; err != nil {
		return nil, err
	}
	return toProgressDomain(model), nil
}

// Update persists request-flag changes and full resets.
func (r *GormProgressRepository) Update(ctx context.Context, p *bonusDomain.Progress) error {
	model := toProgressModel(p)
	result := r.db.WithContext(ctx).Model(&BonusProgressModel{}).
		Where("user_id = ? AND program_id = ?", p.UserID(), p.ProgramID()).
		Select("current_amount", "bonus_requested", "request_date", "updated_at").
		Updates(&model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("bonus progress", p.ProgramID().String())
	}
	return nil
}

// AccrueCapped adds a contribution saturating at maxAmount in one statement.
func (r *GormProgressRepository) AccrueCapped(ctx context.Context, userID, programID uuid.UUID, contribution, maxAmount int64) error {
	model := BonusProgressModel{
		UserID:        userID,
		ProgramID:     programID,
		CurrentAmount: min(contribution, maxAmount),
		UpdatedAt:     time.Now().UTC(),
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "program_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"current_amount": gorm.Expr("LEAST(bonus_progress.current_amount + ?, ?)", contribution, maxAmount),
			"updated_at":     time.Now().UTC(),
		}),
	}).Create(&model).Error
}

// SpendConditional deducts cost only when the balance covers it.
func (r *GormProgressRepository) SpendConditional(ctx context.Context, userID, programID uuid.UUID, cost int64) error {
	result := r.db.WithContext(ctx).Model(&BonusProgressModel{}).
		Where("user_id = ? AND program_id = ? AND current_amount >= ?", userID, programID, cost).
		Updates(map[string]interface{}{
			"current_amount": gorm.Expr("current_amount - ?", cost),
			"updated_at":     time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NewInsufficientBalanceError("balance does not cover the cost")
	}
	return nil
}

// RefundCapped returns spent points, saturating at maxAmount.
func (r *GormProgressRepository) RefundCapped(ctx context.Context, userID, programID uuid.UUID, amount, maxAmount int64) error {
	result := r.db.WithContext(ctx).Model(&BonusProgressModel{}).
		Where("user_id = ? AND program_id = ?", userID, programID).
		Updates(map[string]interface{}{
			"current_amount": gorm.Expr("LEAST(current_amount + ?, ?)", amount, maxAmount),
			"updated_at":     time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("bonus progress", programID.String())
	}
	return nil
}

// ListByProgram returns every participant's progress, highest balance first.
func (r *GormProgressRepository) ListByProgram(ctx context.Context, programID uuid.UUID) ([]*bonusDomain.Progress, error) {
	var models []BonusProgressModel
	if err := r.db.WithContext(ctx).Where("program_id = ?", programID).
		Order("current_amount DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]*bonusDomain.Progress, len(models))
	for i, m := range models {
		out[i] = toProgressDomain(m)
	}
	return out, nil
}

func toProgressModel(p *bonusDomain.Progress) BonusProgressModel {
	return BonusProgressModel{
		UserID:         p.UserID(),
		ProgramID:      p.ProgramID(),
		CurrentAmount:  p.CurrentAmount(),
		BonusRequested: p.BonusRequested(),
		RequestDate:    p.RequestDate(),
		UpdatedAt:      p.UpdatedAt(),
	}
}

func toProgressDomain(m BonusProgressModel) *bonusDomain.Progress {
	return bonusDomain.ReconstituteProgress(
		m.UserID,
		m.ProgramID,
		m.CurrentAmount,
		m.BonusRequested,
		m.RequestDate,
		m.UpdatedAt,
	)
}
