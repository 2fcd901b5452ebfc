package application

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Gensutsu-code/AvarusVenditoreEmergent/internal/domain/cart"
	"github.com/Gensutsu-code/AvarusVenditoreEmergent/internal/domain/catalog"
)

// CartItemRequest is the DTO for adding or updating a cart line.
type CartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,gt=0"`
}

// CartLineDTO is one cart line joined with its product snapshot.
type CartLineDTO struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Article   string    `json:"article"`
	Price     int64     `json:"price"`
	ImageURL  string    `json:"image_url,omitempty"`
	Quantity  int       `json:"quantity"`
	LineTotal int64     `json:"line_total"`
}

// CartDTO is the API response DTO for a user's cart.
type CartDTO struct {
	Items []CartLineDTO `json:"items"`
	Total int64         `json:"total"`
}

// CartService manages per-user cart lines.
type CartService struct {
	carts    cart.Repository
	products catalog.ProductRepository
	logger   *zap.Logger
}

// NewCartService creates a new CartService.
func NewCartService(carts cart.Repository, products catalog.ProductRepository, logger *zap.Logger) *CartService {
	return &CartService{
		carts:    carts,
		products: products,
		logger:   logger,
	}
}

// GetCart returns the user's cart joined with current product data.
// Lines referencing deleted products are dropped from the view.
func (s *CartService) GetCart(ctx context.Context, userID uuid.UUID) (*CartDTO, error) {
	items, err := s.carts.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return &CartDTO{Items: []CartLineDTO{}}, nil
	}

	ids := make([]uuid.UUID, len(items))
	for i, item := range items {
		ids[i] = item.ProductID
	}
	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*catalog.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	dto := &CartDTO{Items: make([]CartLineDTO, 0, len(items))}
	for _, item := range items {
		p, ok := byID[item.ProductID]
		if !ok {
			continue
		}
		lineTotal := p.Price * int64(item.Quantity)
		dto.Items = append(dto.Items, CartLineDTO{
			ProductID: p.ID,
			Name:      p.Name,
			Article:   p.Article,
			Price:     p.Price,
			ImageURL:  p.ImageURL,
			Quantity:  item.Quantity,
			LineTotal: lineTotal,
		})
		dto.Total += lineTotal
	}
	return dto, nil
}

// AddItem merges a quantity into the user's cart line for the product.
func (s *CartService) AddItem(ctx context.Context, userID uuid.UUID, req CartItemRequest) error {
	if _, err := s.products.FindByID(ctx, req.ProductID); err != nil {
		return err
	}
	return s.carts.AddItem(ctx, cart.Item{
		UserID:    userID,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	})
}

// SetQuantity overwrites a line's quantity. Zero removes the line.
func (s *CartService) SetQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) error {
	return s.carts.SetQuantity(ctx, cart.Item{
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
	})
}

// RemoveItem drops a line from the cart.
func (s *CartService) RemoveItem(ctx context.Context, userID, productID uuid.UUID) error {
	return s.carts.RemoveItem(ctx, userID, productID)
}

// Clear empties the user's cart.
func (s *CartService) Clear(ctx context.Context, userID uuid.UUID) error {
	return s.carts.Clear(ctx, userID)
}
