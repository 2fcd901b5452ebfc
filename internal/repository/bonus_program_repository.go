package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Gensutsu-code/AvarusVenditoreEmergent/internal/domain"
	bonusDomain "github.com/Gensutsu-code/AvarusVenditoreEmergent/internal/domain/bonus"
)

// BonusProgramModel is the GORM persistence model for the bonus_programs table.
type BonusProgramModel struct {
	ID                  uuid.UUID `gorm:"type:uuid;primaryKey"`
	Title               string    `gorm:"type:varchar(255);not null"`
	Description         string    `gorm:"type:text"`
	ImageURL            string    `gorm:"type:text"`
	MaxAmount           int64     `gorm:"not null"`
	MinThreshold        int64     `gorm:"not null;default:0"`
	ContributionType    string    `gorm:"type:varchar(20);not null"`
	ContributionPercent float64   `gorm:"not null;default:0"`
	Enabled             bool      `gorm:"not null;default:true"`
	CreatedAt           time.Time `gorm:"type:timestamptz;not null"`
	UpdatedAt           time.Time `gorm:"type:timestamptz;not null"`
}

// TableName specifies the table name for GORM.
func (BonusProgramModel) TableName() string { return "bonus_programs" }

// BonusPrizeModel is the GORM persistence model for the bonus_prizes table.
type BonusPrizeModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProgramID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Name       string    `gorm:"type:varchar(255);not null"`
	PointsCost int64     `gorm:"not null"`
	Quantity   int       `gorm:"not null;default:-1"`
	Enabled    bool      `gorm:"not null;default:true"`
	Position   int       `gorm:"not null;default:0"`
}

// TableName specifies the table name for GORM.
func (BonusPrizeModel) TableName() string { return "bonus_prizes" }

// BonusLevelModel is the GORM persistence model for the bonus_levels table.
type BonusLevelModel struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProgramID       uuid.UUID `gorm:"type:uuid;not null;index"`
	Name            string    `gorm:"type:varchar(255);not null"`
	MinPoints       int64     `gorm:"not null"`
	CashbackPercent float64   `gorm:"not null;default:0"`
	Color           string    `gorm:"type:varchar(20)"`
	Benefits        string    `gorm:"type:text"`
	Position        int       `gorm:"not null;default:0"`
}

// TableName specifies the table name for GORM.
func (BonusLevelModel) TableName() string { return "bonus_levels" }

// GormProgramRepository implements bonus.ProgramRepository using GORM.
type GormProgramRepository struct {
	db *gorm.DB
}

// NewGormProgramRepository creates a new GormProgramRepository.
func NewGormProgramRepository(db *gorm.DB) *GormProgramRepository {
	return &GormProgramRepository{db: db}
}

// Save persists a new program with its prizes and levels in one transaction.
func (r *GormProgramRepository) Save(ctx context.Context, p *bonusDomain.Program) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := toProgramModel(p)
		if err := tx.Create(&model).Error; err != nil {
			return err
		}
		return saveChildren(tx, p)
	})
}

// Update overwrites the program row and replaces its prizes and levels.
func (r *GormProgramRepository) Update(ctx context.Context, p *bonusDomain.Program) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := toProgramModel(p)
		result := tx.Model(&BonusProgramModel{}).Where("id = ?", p.ID()).
			Select("*").Omit("id", "created_at").Updates(&model)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.NewNotFoundError("bonus program", p.ID().String())
		}

		if err := tx.Delete(&BonusPrizeModel{}, "program_id = ?", p.ID()).Error; err != nil {
			return err
		}
		if err := tx.Delete(&BonusLevelModel{}, "program_id = ?", p.ID()).Error; err != nil {
			return err
		}
		return saveChildren(tx, p)
	})
}

// FindByID returns a program with its prizes and levels.
func (r *GormProgramRepository) FindByID(ctx context.Context, id uuid.UUID) (*bonusDomain.Program, error) {
	var model BonusProgramModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("bonus program", id.String())
		}
		return nil, err
	}

	programs, err := r.attachChildren(ctx, []BonusProgramModel{model})
	if err != nil {
		return nil, err
	}
	return programs[0], nil
}

// FindAll returns every program, newest first (admin).
func (r *GormProgramRepository) FindAll(ctx context.Context) ([]*bonusDomain.Program, error) {
	var models []BonusProgramModel
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	return r.attachChildren(ctx, models)
}

// FindEnabled returns only enabled programs (user-facing listing and accrual).
func (r *GormProgramRepository) FindEnabled(ctx context.Context) ([]*bonusDomain.Program, error) {
	var models []BonusProgramModel
	if err := r.db.WithContext(ctx).Where("enabled = ?", true).
		Order("created_at ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	return r.attachChildren(ctx, models)
}

// Delete removes a program, cascading prizes, levels and progress rows.
func (r *GormProgramRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&BonusProgramModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.NewNotFoundError("bonus program", id.String())
		}
		if err := tx.Delete(&BonusPrizeModel{}, "program_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&BonusLevelModel{}, "program_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&BonusProgressModel{}, "program_id = ?", id).Error
	})
}

// DecrementPrizeQuantity atomically takes one unit of a finite prize.
// Unlimited prizes (negative quantity) match the predicate but keep their
// sentinel value. Zero rows affected means the prize is out of stock.
func (r *GormProgramRepository) DecrementPrizeQuantity(ctx context.Context, prizeID uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(&BonusPrizeModel{}).
		Where("id = ? AND quantity <> 0", prizeID).
		Update("quantity", gorm.Expr("GREATEST(quantity - 1, -1)"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NewOutOfStockError("prize is out of stock")
	}
	return nil
}

func saveChildren(tx *gorm.DB, p *bonusDomain.Program) error {
	prizes := make([]BonusPrizeModel, len(p.Prizes()))
	for i, prize := range p.Prizes() {
		prizes[i] = BonusPrizeModel{
			ID:         prize.ID,
			ProgramID:  p.ID(),
			Name:       prize.Name,
			PointsCost: prize.PointsCost,
			Quantity:   prize.Quantity,
			Enabled:    prize.Enabled,
			Position:   i,
		}
	}
	if len(prizes) > 0 {
		if err := tx.Create(&prizes).Error; err != nil {
			return err
		}
	}

	levels := make([]BonusLevelModel, len(p.Levels()))
	for i, level := range p.Levels() {
		levels[i] = BonusLevelModel{
			ID:              level.ID,
			ProgramID:       p.ID(),
			Name:            level.Name,
			MinPoints:       level.MinPoints,
			CashbackPercent: level.CashbackPercent,
			Color:           level.Color,
			Benefits:        level.Benefits,
			Position:        i,
		}
	}
	if len(levels) > 0 {
		if err := tx.Create(&levels).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *GormProgramRepository) attachChildren(ctx context.Context, models []BonusProgramModel) ([]*bonusDomain.Program, error) {
	if len(models) == 0 {
		return nil, nil
	}
	ids := make([]uuid.UUID, len(models))
	for i, m := range models {
		ids[i] = m.ID
	}

	var prizeModels []BonusPrizeModel
	if err := r.db.WithContext(ctx).Where("program_id IN ?", ids).
		Order("position ASC").Find(&prizeModels).Error; err != nil {
		return nil, err
	}
	prizesByProgram := make(map[uuid.UUID][]bonusDomain.Prize)
	for _, m := range prizeModels {
		prizesByProgram[m.ProgramID] = append(prizesByProgram[m.ProgramID], bonusDomain.Prize{
			ID:         m.ID,
			Name:       m.Name,
			PointsCost: m.PointsCost,
			Quantity:   m.Quantity,
			Enabled:    m.Enabled,
		})
	}

	var levelModels []BonusLevelModel
	if err := r.db.WithContext(ctx).Where("program_id IN ?", ids).
		Order("min_points ASC, position ASC").Find(&levelModels).Error; err != nil {
		return nil, err
	}
	levelsByProgram := make(map[uuid.UUID][]bonusDomain.Level)
	for _, m := range levelModels {
		levelsByProgram[m.ProgramID] = append(levelsByProgram[m.ProgramID], bonusDomain.Level{
			ID:              m.ID,
			Name:            m.Name,
			MinPoints:       m.MinPoints,
			CashbackPercent: m.CashbackPercent,
			Color:           m.Color,
			Benefits:        m.Benefits,
		})
	}

	programs := make([]*bonusDomain.Program, len(models))
	for i, m := range models {
		programs[i] = bonusDomain.Reconstitute(
			m.ID,
			m.Title,
			m.Description,
			m.ImageURL,
			m.MaxAmount,
			m.MinThreshold,
			bonusDomain.ContributionType(m.ContributionType),
			m.ContributionPercent,
			prizesByProgram[m.ID],
			levelsByProgram[m.ID],
			m.Enabled,
			m.CreatedAt,
			m.UpdatedAt,
		)
	}
	return programs, nil
}

func toProgramModel(p *bonusDomain.Program) BonusProgramModel {
	return BonusProgramModel{
		ID:                  p.ID(),
		Title:               p.Title(),
		Description:         p.Description(),
		ImageURL:            p.ImageURL(),
		MaxAmount:           p.MaxAmount(),
		MinThreshold:        p.MinThreshold(),
		ContributionType:    string(p.ContributionType()),
		ContributionPercent: p.ContributionPercent(),
		Enabled:             p.Enabled(),
		CreatedAt:           p.CreatedAt(),
		UpdatedAt:           p.UpdatedAt(),
	}
}
