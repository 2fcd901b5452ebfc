package cart

import (
	"context"

	"github.com/google/uuid"
)

// Item is one product line in a user's cart.
type Item struct {
	UserID    uuid.UUID
	ProductID uuid.UUID
	Quantity  int
}

// Repository defines persistence operations for cart lines.
type Repository interface {
	// AddItem merges quantity into an existing line or creates one.
	AddItem(ctx context.Context, item Item) error
	// SetQuantity overwrites a line's quantity; zero removes the line.
	SetQuantity(ctx context.Context, item Item) error
	RemoveItem(ctx context.Context, userID, productID uuid.UUID) error
	Clear(ctx context.Context, userID uuid.UUID) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Item, error)
}
