package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Category groups products for storefront navigation.
type Category struct {
	ID       uuid.UUID
	Name     string
	ImageURL string
}

// Product is one truck part in the catalog. Article is the manufacturer
// part number shown to customers and used in search.
type Product struct {
	ID           uuid.UUID
	Name         string
	Article      string
	CategoryID   *uuid.UUID
	Price        int64
	Description  string
	ImageURL     string
	Stock        int
	DeliveryDays int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ProductFilter narrows product listings.
type ProductFilter struct {
	Search     string
	CategoryID *uuid.UUID
	Page       int
	Limit      int
}

// ProductRepository defines persistence operations for products.
type ProductRepository interface {
	Save(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*Product, error)
	List(ctx context.Context, filter ProductFilter) ([]*Product, int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DetachCategory(ctx context.Context, categoryID uuid.UUID) error
	Count(ctx context.Context) (int64, error)
}

// CategoryRepository defines persistence operations for categories.
type CategoryRepository interface {
	Save(ctx context.Context, c *Category) error
	Update(ctx context.Context, c *Category) error
	FindByID(ctx context.Context, id uuid.UUID) (*Category, error)
	ListAll(ctx context.Context) ([]*Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
