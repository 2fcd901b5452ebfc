package order

import (
	"context"

	"github.com/google/uuid"
)

// StatusCounts is the per-status order tally used by admin statistics.
type StatusCounts map[Status]int64

// Repository defines persistence operations for orders.
type Repository interface {
	Save(ctx context.Context, o *Order) error
	Update(ctx context.Context, o *Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Order, error)
	ListAll(ctx context.Context, page, limit int) ([]*Order, int64, error)
	// GetStats returns total revenue across all orders and counts by status.
	GetStats(ctx context.Context) (int64, StatusCounts, error)
}
