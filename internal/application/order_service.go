package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Gensutsu-code/AvarusVenditoreEmergent/internal/accrual"
	"github.com/Gensutsu-code/AvarusVenditoreEmergent/internal/domain"
	"github.com/Gensutsu-code/AvarusVenditoreEmergent/internal/domain/cart"
	"github.com/Gensutsu-code/AvarusVenditoreEmergent/internal/domain/catalog"
	orderDomain "github.com/Gensutsu-code/AvarusVenditoreEmergent/internal/domain/order"
	"github.com/Gensutsu-code/AvarusVenditoreEmergent/internal/events"
)

// CheckoutRequest is the DTO for placing an order from the current cart.
type CheckoutRequest struct {
	FullName string `json:"full_name" binding:"required"`
	Address  string `json:"address" binding:"required"`
	Phone    string `json:"phone" binding:"required"`
}

// UpdateOrderStatusRequest is the DTO for the admin status transition.
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// OrderLineDTO is one frozen product line of an order.
type OrderLineDTO struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Article   string    `json:"article"`
	Price     int64     `json:"price"`
	Quantity  int       `json:"quantity"`
	ImageURL  string    `json:"image_url,omitempty"`
}

// OrderDTO is the API response DTO for order data.
type OrderDTO struct {
	ID        uuid.UUID      `json:"id"`
	UserID    uuid.UUID      `json:"user_id"`
	Lines     []OrderLineDTO `json:"lines"`
	Total     int64          `json:"total"`
	Status    string         `json:"status"`
	FullName  string         `json:"full_name"`
	Address   string         `json:"address"`
	Phone     string         `json:"phone"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// OrderService orchestrates checkout and the order lifecycle. Entering the
// delivered status triggers bonus accrual synchronously before the status
// change is announced.
type OrderService struct {
	orders    orderDomain.Repository
	carts     cart.Repository
	products  catalog.ProductRepository
	accrual   *accrual.Engine
	publisher events.Publisher
	logger    *zap.Logger
}

// NewOrderService creates a new OrderService.
func NewOrderService(
	orders orderDomain.Repository,
	carts cart.Repository,
	products catalog.ProductRepository,
	accrualEngine *accrual.Engine,
	publisher events.Publisher,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		orders:    orders,
		carts:     carts,
		products:  products,
		accrual:   accrualEngine,
		publisher: publisher,
		logger:    logger,
	}
}

// Checkout converts the user's cart into a pending order and clears the cart.
// Prices and names are frozen into the order lines at this moment.
func (s *OrderService) Checkout(ctx context.Context, userID uuid.UUID, req CheckoutRequest) (*OrderDTO, error) {
	items, err := s.carts.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, domain.NewValidationError("cart is empty")
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

	lines := make([]orderDomain.Line, 0, len(items))
	for _, item := range items {
		p, ok := byID[item.ProductID]
		if !ok {
			return nil, domain.NewNotFoundError("product", item.ProductID.String())
		}
		lines = append(lines, orderDomain.Line{
			ProductID: p.ID,
			Name:      p.Name,
			Article:   p.Article,
			Price:     p.Price,
			Quantity:  item.Quantity,
			ImageURL:  p.ImageURL,
		})
	}

	o, err := orderDomain.NewOrder(userID, lines, req.FullName, req.Address, req.Phone)
	if err != nil {
		return nil, err
	}
	if err := s.orders.Save(ctx, o); err != nil {
		return nil, err
	}

	if err := s.carts.Clear(ctx, userID); err != nil {
		s.logger.Warn("failed to clear cart after checkout",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
	}

	s.logger.Info("order placed",
		zap.String("order_id", o.ID().String()),
		zap.String("user_id", userID.String()),
		zap.Int64("total", o.Total()),
	)
	dto := toOrderDTO(o)
	return &dto, nil
}

// GetOrder returns one order. Non-admin callers only see their own orders.
func (s *OrderService) GetOrder(ctx context.Context, orderID, requesterID uuid.UUID, isAdmin bool) (*OrderDTO, error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && o.UserID() != requesterID {
		return nil, domain.NewPermissionDeniedError("order belongs to another user")
	}
	dto := toOrderDTO(o)
	return &dto, nil
}

// ListMyOrders returns the caller's orders, newest first.
func (s *OrderService) ListMyOrders(ctx context.Context, userID uuid.UUID) ([]OrderDTO, error) {
	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toOrderDTOList(orders), nil
}

// ListAllOrders returns a page of all orders (admin).
func (s *OrderService) ListAllOrders(ctx context.Context, page, limit int) ([]OrderDTO, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	orders, total, err := s.orders.ListAll(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}
	return toOrderDTOList(orders), total, nil
}

// UpdateStatus moves an order through its lifecycle (admin). The first
// transition into delivered credits every enabled bonus program before the
// status event goes out.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, req UpdateOrderStatusRequest) (*OrderDTO, error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	from := o.Status()
	enteredDelivered, err := o.TransitionTo(orderDomain.Status(req.Status))
	if err != nil {
		return nil, err
	}
	if err := s.orders.Update(ctx, o); err != nil {
		return nil, err
	}

	if enteredDelivered {
		if err := s.accrual.OnOrderDelivered(ctx, o.UserID(), o.ID(), o.Total()); err != nil {
			// The order stays delivered so the engine is not re-run, but the
			// incomplete sweep fails the request for the admin to see.
			s.logger.Error("bonus accrual incomplete for delivered order",
				zap.String("order_id", o.ID().String()),
				zap.Error(err),
			)
			return nil, err
		}
	}

	if err := s.publisher.Publish(ctx, events.TopicOrderEvents, events.OrderStatusChanged, events.OrderStatusChangedEvent{
		OrderID:    o.ID(),
		UserID:     o.UserID(),
		FromStatus: string(from),
		ToStatus:   string(o.Status()),
		Total:      o.Total(),
	}); err != nil {
		s.logger.Warn("failed to publish order status event", zap.Error(err))
	}

	dto := toOrderDTO(o)
	return &dto, nil
}

func toOrderDTO(o *orderDomain.Order) OrderDTO {
	lines := make([]OrderLineDTO, len(o.Lines()))
	for i, line := range o.Lines() {
		lines[i] = OrderLineDTO{
			ProductID: line.ProductID,
			Name:      line.Name,
			Article:   line.Article,
			Price:     line.Price,
			Quantity:  line.Quantity,
			ImageURL:  line.ImageURL,
		}
	}
	return OrderDTO{
		ID:        o.ID(),
		UserID:    o.UserID(),
		Lines:     lines,
		Total:     o.Total(),
		Status:    string(o.Status()),
		FullName:  o.FullName(),
		Address:   o.Address(),
		Phone:     o.Phone(),
		CreatedAt: o.CreatedAt(),
		UpdatedAt: o.UpdatedAt(),
	}
}

func toOrderDTOList(orders []*orderDomain.Order) []OrderDTO {
	out := make([]OrderDTO, len(orders))
	for i, o := range orders {
		out[i] = toOrderDTO(o)
	}
	return out
}
