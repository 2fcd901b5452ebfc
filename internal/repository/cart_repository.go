package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	cartDomain "github.com/Gensutsu-code/AvarusVenditoreEmergent/internal/domain/cart"
)

// CartItemModel is the GORM persistence model for the cart_items table.
// One row per (user, product) line.
type CartItemModel struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProductID uuid.UUID `gorm:"type:uuid;primaryKey"`
	Quantity  int       `gorm:"not null"`
}

// TableName specifies the table name for GORM.
func (CartItemModel) TableName() string { return "cart_items" }

// GormCartRepository implements cart.Repository using GORM.
type GormCartRepository struct {
	db *gorm.DB
}

// NewGormCartRepository creates a new GormCartRepository.
func NewGormCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// AddItem merges quantity into an existing line or inserts a new one.
func (r *GormCartRepository) AddItem(ctx context.Context, item cartDomain.Item) error {
	model := CartItemModel{UserID: item.UserID, ProductID: item.ProductID, Quantity: item.Quantity}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"quantity": gorm.Expr("cart_items.quantity + ?", item.Quantity)}),
	}).Create(&model).Error
}

// SetQuantity overwrites a line's quantity; zero or less removes the line.
func (r *GormCartRepository) SetQuantity(ctx context.Context, item cartDomain.Item) error {
	if item.Quantity <= 0 {
		return r.RemoveItem(ctx, item.UserID, item.ProductID)
	}
	return r.db.WithContext(ctx).Model(&CartItemModel{}).
		Where("user_id = ? AND product_id = ?", item.UserID, item.ProductID).
		Update("quantity", item.Quantity).Error
}

// RemoveItem deletes one line from the cart.
func (r *GormCartRepository) RemoveItem(ctx context.Context, userID, productID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&CartItemModel{}, "user_id = ? AND product_id = ?", userID, productID).Error
}

// Clear removes every line from the user's cart.
func (r *GormCartRepository) Clear(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&CartItemModel{}, "user_id = ?", userID).Error
}

// ListByUser returns the user's cart lines.
func (r *GormCartRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]cartDomain.Item, error) {
	var models []CartItemModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&models).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	items := make([]cartDomain.Item, len(models))
	for i, m := range models {
		items[i] = cartDomain.Item{UserID: m.UserID, ProductID: m.ProductID, Quantity: m.Quantity}
	}
	return items, nil
}
