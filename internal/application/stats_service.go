package application

import (
	"context"

	"github.com/Gensutsu-code/AvarusVenditoreEmergent/internal/domain/catalog"
	orderDomain "github.com/Gensutsu-code/AvarusVenditoreEmergent/internal/domain/order"
	userDomain "github.com/Gensutsu-code/AvarusVenditoreEmergent/internal/domain/user"
)

// StatsDTO is the admin dashboard summary.
type StatsDTO struct {
	TotalUsers    int64            `json:"total_users"`
	TotalProducts int64            `json:"total_products"`
	TotalRevenue  int64            `json:"total_revenue"`
	OrdersByState map[string]int64 `json:"orders_by_status"`
}

// StatsService aggregates store-wide counters for the admin dashboard.
type StatsService struct {
	users    userDomain.Repository
	products catalog.ProductRepository
	orders   orderDomain.Repository
}

// NewStatsService creates a new StatsService.
func NewStatsService(users userDomain.Repository, products catalog.ProductRepository, orders orderDomain.Repository) *StatsService {
	return &StatsService{
		users:    users,
		products: products,
		orders:   orders,
	}
}

// GetStats returns user, product and order totals.
func (s *StatsService) GetStats(ctx context.Context) (*StatsDTO, error) {
	userCount, err := s.users.Count(ctx)
	if err != nil {
		return nil, err
	}
	productCount, err := s.products.Count(ctx)
	if err != nil {
		return nil, err
	}
	revenue, byStatus, err := s.orders.GetStats(ctx)
	if err != nil {
		return nil, err
	}

	ordersByState := make(map[string]int64, len(byStatus))
	for status, count := range byStatus {
		ordersByState[string(status)] = count
	}

	return &StatsDTO{
		TotalUsers:    userCount,
		TotalProducts: productCount,
		TotalRevenue:  revenue,
		OrdersByState: ordersByState,
	}, nil
}
