package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Gensutsu-code/AvarusVenditoreEmergent/internal/domain/catalog"
)

// CategoryRequest is the DTO for creating or updating a category.
type CategoryRequest struct {
	Name     string `json:"name" binding:"required"`
	ImageURL string `json:"image_url"`
}

// CategoryDTO is the API response DTO for category data.
type CategoryDTO struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	ImageURL string    `json:"image_url,omitempty"`
}

// ProductRequest is the DTO for creating or updating a product.
type ProductRequest struct {
	Name         string     `json:"name" binding:"required"`
	Article      string     `json:"article" binding:"required"`
	CategoryID   *uuid.UUID `json:"category_id"`
	Price        int64      `json:"price" binding:"required,gt=0"`
	Description  string     `json:"description"`
	ImageURL     string     `json:"image_url"`
	Stock        int        `json:"stock" binding:"gte=0"`
	DeliveryDays int        `json:"delivery_days" binding:"gte=0"`
}

// ProductDTO is the API response DTO for product data.
type ProductDTO struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Article      string     `json:"article"`
	CategoryID   *uuid.UUID `json:"category_id,omitempty"`
	Price        int64      `json:"price"`
	Description  string     `json:"description,omitempty"`
	ImageURL     string     `json:"image_url,omitempty"`
	Stock        int        `json:"stock"`
	DeliveryDays int        `json:"delivery_days"`
	CreatedAt    time.Time  `json:"created_at"`
}

// ProductListQuery narrows and paginates product listings.
type ProductListQuery struct {
	Search     string
	CategoryID *uuid.UUID
	Page       int
	Limit      int
}

// CatalogService manages products and categories.
type CatalogService struct {
	products   catalog.ProductRepository
	categories catalog.CategoryRepository
	logger     *zap.Logger
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(products catalog.ProductRepository, categories catalog.CategoryRepository, logger *zap.Logger) *CatalogService {
	return &CatalogService{
		products:   products,
		categories: categories,
		logger:     logger,
	}
}

// ListCategories returns all categories.
func (s *CatalogService) ListCategories(ctx context.Context) ([]CategoryDTO, error) {
	categories, err := s.categories.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]CategoryDTO, len(categories))
	for i, c := range categories {
		out[i] = toCategoryDTO(c)
	}
	return out, nil
}

// CreateCategory adds a new category (admin).
func (s *CatalogService) CreateCategory(ctx context.Context, req CategoryRequest) (*CategoryDTO, error) {
	c := &catalog.Category{
		ID:       uuid.New(),
		Name:     req.Name,
		ImageURL: req.ImageURL,
	}
	if err := s.categories.Save(ctx, c); err != nil {
		return nil, err
	}
	dto := toCategoryDTO(c)
	return &dto, nil
}

// UpdateCategory overwrites a category (admin).
func (s *CatalogService) UpdateCategory(ctx context.Context, id uuid.UUID, req CategoryRequest) (*CategoryDTO, error) {
	c := &catalog.Category{
		ID:       id,
		Name:     req.Name,
		ImageURL: req.ImageURL,
	}
	if err := s.categories.Update(ctx, c); err != nil {
		return nil, err
	}
	dto := toCategoryDTO(c)
	return &dto, nil
}

// DeleteCategory removes a category; its products keep existing uncategorized.
func (s *CatalogService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if err := s.products.DetachCategory(ctx, id); err != nil {
		return err
	}
	return s.categories.Delete(ctx, id)
}

// ListProducts returns a filtered, paginated product listing and total count.
func (s *CatalogService) ListProducts(ctx context.Context, q ProductListQuery) ([]ProductDTO, int64, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 || q.Limit > 100 {
		q.Limit = 20
	}

	products, total, err := s.products.List(ctx, catalog.ProductFilter{
		Search:     q.Search,
		CategoryID: q.CategoryID,
		Page:       q.Page,
		Limit:      q.Limit,
	})
	if err != nil {
		return nil, 0, err
	}

	out := make([]ProductDTO, len(products))
	for i, p := range products {
		out[i] = toProductDTO(p)
	}
	return out, total, nil
}

// GetProduct returns a single product.
func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := toProductDTO(p)
	return &dto, nil
}

// CreateProduct adds a new product (admin).
func (s *CatalogService) CreateProduct(ctx context.Context, req ProductRequest) (*ProductDTO, error) {
	if err := s.checkCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	p := &catalog.Product{
		ID:           uuid.New(),
		Name:         req.Name,
		Article:      req.Article,
		CategoryID:   req.CategoryID,
		Price:        req.Price,
		Description:  req.Description,
		ImageURL:     req.ImageURL,
		Stock:        req.Stock,
		DeliveryDays: req.DeliveryDays,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.products.Save(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("product created",
		zap.String("product_id", p.ID.String()),
		zap.String("article", p.Article),
	)
	dto := toProductDTO(p)
	return &dto, nil
}

// UpdateProduct overwrites a product (admin).
func (s *CatalogService) UpdateProduct(ctx context.Context, id uuid.UUID, req ProductRequest) (*ProductDTO, error) {
	if err := s.checkCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	existing, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	existing.Name = req.Name
	existing.Article = req.Article
	existing.CategoryID = req.CategoryID
	existing.Price = req.Price
	existing.Description = req.Description
	existing.ImageURL = req.ImageURL
	existing.Stock = req.Stock
	existing.DeliveryDays = req.DeliveryDays
	existing.UpdatedAt = time.Now().UTC()

	if err := s.products.Update(ctx, existing); err != nil {
		return nil, err
	}
	dto := toProductDTO(existing)
	return &dto, nil
}

// DeleteProduct removes a product (admin).
func (s *CatalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return s.products.Delete(ctx, id)
}

func (s *CatalogService) checkCategory(ctx context.Context, categoryID *uuid.UUID) error {
	if categoryID == nil {
		return nil
	}
	_, err := s.categories.FindByID(ctx, *categoryID)
	return err
}

func toCategoryDTO(c *catalog.Category) CategoryDTO {
	return CategoryDTO{ID: c.ID, Name: c.Name, ImageURL: c.ImageURL}
}

func toProductDTO(p *catalog.Product) ProductDTO {
	return ProductDTO{
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
	}
}
