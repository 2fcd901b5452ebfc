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

// BonusHistoryModel is the GORM persistence model for the bonus_history table.
// Rows are written once and never updated; program columns are snapshots.
type BonusHistoryModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID        uuid.UUID `gorm:"type:uuid;not null;index"`
	ProgramID     uuid.UUID `gorm:"type:uuid;not null"`
	ProgramTitle  string    `gorm:"type:varchar(255);not null"`
	BonusCode     string    `gorm:"type:varchar(100);not null"`
	AmountAtIssue int64     `gorm:"not null"`
	IssuedBy      uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt     time.Time `gorm:"type:timestamptz;not null"`
}

// TableName specifies the table name for GORM.
func (BonusHistoryModel) TableName() string { return "bonus_history" }

// BonusRedemptionModel is the GORM persistence model for the bonus_redemptions table.
type BonusRedemptionModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index"`
	ProgramID   uuid.UUID `gorm:"type:uuid;not null"`
	PrizeID     uuid.UUID `gorm:"type:uuid;not null"`
	PrizeName   string    `gorm:"type:varchar(255);not null"`
	PointsSpent int64     `gorm:"not null"`
	Status      string    `gorm:"type:varchar(20);not null"`
	CreatedAt   time.Time `gorm:"type:timestamptz;not null"`
	UpdatedAt   time.Time `gorm:"type:timestamptz;not null"`
}

// TableName specifies the table name for GORM.
func (BonusRedemptionModel) TableName() string { return "bonus_redemptions" }

// GormHistoryRepository implements bonus.HistoryRepository using GORM.
type GormHistoryRepository struct {
	db *gorm.DB
}

// NewGormHistoryRepository creates a new GormHistoryRepository.
func NewGormHistoryRepository(db *gorm.DB) *GormHistoryRepository {
	return &GormHistoryRepository{db: db}
}

// SaveRecord appends an issuance audit entry.
func (r *GormHistoryRepository) SaveRecord(ctx context.Context, rec *bonusDomain.HistoryRecord) error {
	model := BonusHistoryModel{
		ID:            rec.ID,
		UserID:        rec.UserID,
		ProgramID:     rec.ProgramID,
		ProgramTitle:  rec.ProgramTitle,
		BonusCode:     rec.BonusCode,
		AmountAtIssue: rec.AmountAtIssue,
		IssuedBy:      rec.IssuedBy,
		CreatedAt:     rec.CreatedAt,
	}
	return r.db.WithContext(ctx).Create(&model).Error
}

// ListRecordsByUser returns a user's issuance history, newest first.
func (r *GormHistoryRepository) ListRecordsByUser(ctx context.Context, userID uuid.UUID) ([]*bonusDomain.HistoryRecord, error) {
	var models []BonusHistoryModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	return toHistoryDomainList(models), nil
}

// ListAllRecords returns the full issuance log, newest first (admin).
func (r *GormHistoryRepository) ListAllRecords(ctx context.Context) ([]*bonusDomain.HistoryRecord, error) {
	var models []BonusHistoryModel
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	return toHistoryDomainList(models), nil
}

// SaveRedemption persists a new redemption.
func (r *GormHistoryRepository) SaveRedemption(ctx context.Context, red *bonusDomain.Redemption) error {
	model := toRedemptionModel(red)
	return r.db.WithContext(ctx).Create(&model).Error
}

// UpdateRedemption persists a status change.
func (r *GormHistoryRepository) UpdateRedemption(ctx context.Context, red *bonusDomain.Redemption) error {
	result := r.db.WithContext(ctx).Model(&BonusRedemptionModel{}).
		Where("id = ?", red.ID).
		Updates(map[string]interface{}{
			"status":     string(red.Status),
			"updated_at": red.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("redemption", red.ID.String())
	}
	return nil
}

// FindRedemptionByID returns a single redemption.
func (r *GormHistoryRepository) FindRedemptionByID(ctx context.Context, id uuid.UUID) (*bonusDomain.Redemption, error) {
	var model BonusRedemptionModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("redemption", id.String())
		}
		return nil, err
	}
	return toRedemptionDomain(model), nil
}

// ListRedemptionsByUser returns a user's redemptions, newest first.
func (r *GormHistoryRepository) ListRedemptionsByUser(ctx context.Context, userID uuid.UUID) ([]*bonusDomain.Redemption, error) {
	var models []BonusRedemptionModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	return toRedemptionDomainList(models), nil
}

// ListAllRedemptions returns every redemption, newest first (admin).
func (r *GormHistoryRepository) ListAllRedemptions(ctx context.Context) ([]*bonusDomain.Redemption, error) {
	var models []BonusRedemptionModel
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	return toRedemptionDomainList(models), nil
}

func toHistoryDomainList(models []BonusHistoryModel) []*bonusDomain.HistoryRecord {
	out := make([]*bonusDomain.HistoryRecord, len(models))
	for i, m := range models {
		out[i] = &bonusDomain.HistoryRecord{
			ID:            m.ID,
			UserID:        m.UserID,
			ProgramID:     m.ProgramID,
			ProgramTitle:  m.ProgramTitle,
			BonusCode:     m.BonusCode,
			AmountAtIssue: m.AmountAtIssue,
			IssuedBy:      m.IssuedBy,
			CreatedAt:     m.CreatedAt,
		}
	}
	return out
}

func toRedemptionModel(red *bonusDomain.Redemption) BonusRedemptionModel {
	return BonusRedemptionModel{
		ID:          red.ID,
		UserID:      red.UserID,
		ProgramID:   red.ProgramID,
		PrizeID:     red.PrizeID,
		PrizeName:   red.PrizeName,
		PointsSpent: red.PointsSpent,
		Status:      string(red.Status),
		CreatedAt:   red.CreatedAt,
		UpdatedAt:   red.UpdatedAt,
	}
}

func toRedemptionDomain(m BonusRedemptionModel) *bonusDomain.Redemption {
	return &bonusDomain.Redemption{
		ID:          m.ID,
		UserID:      m.UserID,
		ProgramID:   m.ProgramID,
		PrizeID:     m.PrizeID,
		PrizeName:   m.PrizeName,
		PointsSpent: m.PointsSpent,
		Status:      bonusDomain.RedemptionStatus(m.Status),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func toRedemptionDomainList(models []BonusRedemptionModel) []*bonusDomain.Redemption {
	out := make([]*bonusDomain.Redemption, len(models))
	for i, m := range models {
		out[i] = toRedemptionDomain(m)
	}
	return out
}
