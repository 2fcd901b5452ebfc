package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Gensutsu-code/AvarusVenditoreEmergent/internal/domain"
	catalogDomain "github.com/Gensutsu-code/AvarusVenditoreEmergent/internal/domain/catalog"
)

// CategoryModel is the GORM persistence model for the categories table.
type CategoryModel struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name     string    `gorm:"type:varchar(255);not null"`
	ImageURL string    `gorm:"type:text"`
}

// TableName specifies the table name for GORM.
func (CategoryModel) TableName() string { return "categories" }

// ProductModel is the GORM persistence model for the products table.
type ProductModel struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Name         string     `gorm:"type:varchar(255);not null;index"`
	Article      string     `gorm:"type:varchar(100);not null;index"`
	CategoryID   *uuid.UUID `gorm:"type:uuid;index"`
	Price        int64      `gorm:"not null"`
	Description  string     `gorm:"type:text"`
	ImageURL     string     `gorm:"type:text"`
	Stock        int        `gorm:"not null;default:0"`
	DeliveryDays int        `gorm:"not null;default:3"`
	CreatedAt    time.Time  `gorm:"type:timestamptz;not null"`
	UpdatedAt    time.Time  `gorm:"type:timestamptz;not null"`
}

// TableName specifies the table name for GORM.
func (ProductModel) TableName() string { return "products" }

// GormCategoryRepository implements catalog.CategoryRepository using GORM.
type GormCategoryRepository struct {
	db *gorm.DB
}

// NewGormCategoryRepository creates a new GormCategoryRepository.
func NewGormCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

// Save persists a new category.
func (r *GormCategoryRepository) Save(ctx context.Context, c *catalogDomain.Category) error {
	model := CategoryModel{ID: c.ID, Name: c.Name, ImageURL: c.ImageURL}
	return r.db.WithContext(ctx).Create(&model).Error
}

// Update overwrites an existing category.
func (r *GormCategoryRepository) Update(ctx context.Context, c *catalogDomain.Category) error {
	result := r.db.WithContext(ctx).Model(&CategoryModel{}).Where("id = ?", c.ID).
		Updates(map[string]interface{}{"name": c.Name, "image_url": c.ImageURL})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("category", c.ID.String())
	}
	return nil
}

// FindByID returns a category by ID.
func (r *GormCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalogDomain.Category, error) {
	var model CategoryModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("category", id.String())
		}
		return nil, err
	}
	return &catalogDomain.Category{ID: model.ID, Name: model.Name, ImageURL: model.ImageURL}, nil
}

// ListAll returns every category.
func (r *GormCategoryRepository) ListAll(ctx context.Context) ([]*catalogDomain.Category, error) {
	var models []CategoryModel
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	categories := make([]*catalogDomain.Category, len(models))
	for i, m := range models {
		categories[i] = &catalogDomain.Category{ID: m.ID, Name: m.Name, ImageURL: m.ImageURL}
	}
	return categories, nil
}

// Delete removes a category.
func (r *GormCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&CategoryModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("category", id.String())
	}
	return nil
}

// GormProductRepository implements catalog.ProductRepository using GORM.
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository.
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// Save persists a new product.
func (r *GormProductRepository) Save(ctx context.Context, p *catalogDomain.Product) error {
	model := toProductModel(p)
	return r.db.WithContext(ctx).Create(&model).Error
}

// Update overwrites an existing product.
func (r *GormProductRepository) Update(ctx context.Context, p *catalogDomain.Product) error {
	model := toProductModel(p)
	result := r.db.WithContext(ctx).Model(&ProductModel{}).Where("id = ?", p.ID).
		Select("*").Omit("id", "created_at").Updates(&model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("product", p.ID.String())
	}
	return nil
}

// FindByID returns a product by ID.
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalogDomain.Product, error) {
	var model ProductModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("product", id.String())
		}
		return nil, err
	}
	return toProductDomain(&model), nil
}

// FindByIDs batch-loads products for cart and checkout pricing.
func (r *GormProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*catalogDomain.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var models []ProductModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&models).Error; err != nil {
		return nil, err
	}
	products := make([]*catalogDomain.Product, len(models))
	for i := range models {
		products[i] = toProductDomain(&models[i])
	}
	return products, nil
}

// List returns products matching the filter plus the unpaged total.
func (r *GormProductRepository) List(ctx context.Context, filter catalogDomain.ProductFilter) ([]*catalogDomain.Product, int64, error) {
	query := r.db.WithContext(ctx).Model(&ProductModel{})
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR article ILIKE ?", pattern, pattern)
	}
	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	var models []ProductModel
	if err := query.Order("name ASC").Offset(offset).Limit(filter.Limit).Find(&models).Error; err != nil {
		return nil, 0, err
	}

	products := make([]*catalogDomain.Product, len(models))
	for i := range models {
		products[i] = toProductDomain(&models[i])
	}
	return products, total, nil
}

// Delete removes a product.
func (r *GormProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&ProductModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("product", id.String())
	}
	return nil
}

// DetachCategory clears the category reference on all products in it.
func (r *GormProductRepository) DetachCategory(ctx context.Context, categoryID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&ProductModel{}).
		Where("category_id = ?", categoryID).
		Update("category_id", nil).Error
}

// Count returns the total number of products.
func (r *GormProductRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&ProductModel{}).Count(&count).Error
	return count, err
}

func toProductModel(p *catalogDomain.Product) ProductModel {
	return ProductModel{
		ID:           p.ID,
		Name:         p.Name,
		Article:      p.Article,
		CategoryID:   p.CategoryID,
		Price:        p.Price,
		Description:  p.Description,
		ImageURL:     p.ImageURL,
		Stock:        p.Stock,
		DeliveryDays: p.DeliveryDays,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func toProductDomain(m *ProductModel) *catalogDomain.Product {
	return &catalogDomain.Product{
		ID:           m.ID,
		Name:         m.Name,
		Article:      m.Article,
		CategoryID:   m.CategoryID,
		Price:        m.Price,
		Description:  m.Description,
		ImageURL:     m.ImageURL,
		Stock:        m.Stock,
		DeliveryDays: m.DeliveryDays,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}
