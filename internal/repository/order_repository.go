package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Gensutsu-code/AvarusVenditoreEmergent/internal/domain"
	orderDomain "github.com/Gensutsu-code/AvarusVenditoreEmergent/internal/domain/order"
)

// OrderModel is the GORM persistence model for the orders table.
type OrderModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Total     int64     `gorm:"not null"`
	Status    string    `gorm:"type:varchar(20);not null;default:'pending';index"`
	FullName  string    `gorm:"type:varchar(255);not null"`
	Address   string    `gorm:"type:text;not null"`
	Phone     string    `gorm:"type:varchar(50);not null"`
	CreatedAt time.Time `gorm:"type:timestamptz;not null"`
	UpdatedAt time.Time `gorm:"type:timestamptz;not null"`
}

// TableName specifies the table name for GORM.
func (OrderModel) TableName() string { return "orders" }

// OrderLineModel is the GORM persistence model for the order_lines table.
// Lines snapshot product data at checkout and are never updated.
type OrderLineModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID   uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID `gorm:"type:uuid;not null"`
	Name      string    `gorm:"type:varchar(255);not null"`
	Article   string    `gorm:"type:varchar(100);not null"`
	Price     int64     `gorm:"not null"`
	Quantity  int       `gorm:"not null"`
	ImageURL  string    `gorm:"type:text"`
}

// TableName specifies the table name for GORM.
func (OrderLineModel) TableName() string { return "order_lines" }

// GormOrderRepository implements order.Repository using GORM.
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository.
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Save persists a new order with its lines in one transaction.
func (r *GormOrderRepository) Save(ctx context.Context, o *orderDomain.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := toOrderModel(o)
		if err := tx.Create(&model).Error; err != nil {
			return err
		}
		lines := toOrderLineModels(o)
		if len(lines) > 0 {
			if err := tx.Create(&lines).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Update persists status changes. Lines are immutable after checkout.
func (r *GormOrderRepository) Update(ctx context.Context, o *orderDomain.Order) error {
	result := r.db.WithContext(ctx).Model(&OrderModel{}).Where("id = ?", o.ID()).
		Updates(map[string]interface{}{
			"status":     string(o.Status()),
			"updated_at": o.UpdatedAt(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("order", o.ID().String())
	}
	return nil
}

// FindByID returns an order with its lines.
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*orderDomain.Order, error) {
	var model OrderModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("order", id.String())
		}
		return nil, err
	}

	lines, err := r.loadLines(ctx, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	return toOrderDomain(&model, lines[id]), nil
}

// ListByUser returns the user's orders, newest first.
func (r *GormOrderRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*orderDomain.Order, error) {
	var models []OrderModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	return r.attachLines(ctx, models)
}

// ListAll returns all orders with pagination, newest first (admin).
func (r *GormOrderRepository) ListAll(ctx context.Context, page, limit int) ([]*orderDomain.Order, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&OrderModel{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	var models []OrderModel
	if err := r.db.WithContext(ctx).Order("created_at DESC").
		Offset(offset).Limit(limit).Find(&models).Error; err != nil {
		return nil, 0, err
	}

	orders, err := r.attachLines(ctx, models)
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// GetStats returns total revenue and order counts by status (admin).
func (r *GormOrderRepository) GetStats(ctx context.Context) (int64, orderDomain.StatusCounts, error) {
	var totalRevenue int64
	if err := r.db.WithContext(ctx).Model(&OrderModel{}).
		Select("COALESCE(SUM(total), 0)").Scan(&totalRevenue).Error; err != nil {
		return 0, nil, err
	}

	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&OrderModel{}).
		Select("status, count(*) as count").Group("status").
		Find(&results).Error; err != nil {
		return 0, nil, err
	}

	counts := make(orderDomain.StatusCounts)
	for _, sc := range results {
		counts[orderDomain.Status(sc.Status)] = sc.Count
	}
	return totalRevenue, counts, nil
}

func (r *GormOrderRepository) attachLines(ctx context.Context, models []OrderModel) ([]*orderDomain.Order, error) {
	ids := make([]uuid.UUID, len(models))
	for i, m := range models {
		ids[i] = m.ID
	}
	linesByOrder, err := r.loadLines(ctx, ids)
	if err != nil {
		return nil, err
	}

	orders := make([]*orderDomain.Order, len(models))
	for i := range models {
		orders[i] = toOrderDomain(&models[i], linesByOrder[models[i].ID])
	}
	return orders, nil
}

func (r *GormOrderRepository) loadLines(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID][]orderDomain.Line, error) {
	if len(orderIDs) == 0 {
		return map[uuid.UUID][]orderDomain.Line{}, nil
	}
	var models []OrderLineModel
	if err := r.db.WithContext(ctx).Where("order_id IN ?", orderIDs).Find(&models).Error; err != nil {
		return nil, err
	}

	byOrder := make(map[uuid.UUID][]orderDomain.Line)
	for _, m := range models {
		byOrder[m.OrderID] = append(byOrder[m.OrderID], orderDomain.Line{
			ProductID: m.ProductID,
			Name:      m.Name,
			Article:   m.Article,
			Price:     m.Price,
			Quantity:  m.Quantity,
			ImageURL:  m.ImageURL,
		})
	}
	return byOrder, nil
}

func toOrderModel(o *orderDomain.Order) OrderModel {
	return OrderModel{
		ID:        o.ID(),
		UserID:    o.UserID(),
		Total:     o.Total(),
		Status:    string(o.Status()),
		FullName:  o.FullName(),
		Address:   o.Address(),
		Phone:     o.Phone(),
		CreatedAt: o.CreatedAt(),
		UpdatedAt: o.UpdatedAt(),
	}
}

func toOrderLineModels(o *orderDomain.Order) []OrderLineModel {
	lines := make([]OrderLineModel, len(o.Lines()))
	for i, line := range o.Lines() {
		lines[i] = OrderLineModel{
			ID:        uuid.New(),
			OrderID:   o.ID(),
			ProductID: line.ProductID,
			Name:      line.Name,
			Article:   line.Article,
			Price:     line.Price,
			Quantity:  line.Quantity,
			ImageURL:  line.ImageURL,
		}
	}
	return lines
}

func toOrderDomain(m *OrderModel, lines []orderDomain.Line) *orderDomain.Order {
	return orderDomain.Reconstitute(
		m.ID,
		m.UserID,
		lines,
		m.Total,
		orderDomain.Status(m.Status),
		m.FullName,
		m.Address,
		m.Phone,
		m.CreatedAt,
		m.UpdatedAt,
	)
}
