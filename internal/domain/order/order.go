package order

import (
	"time"

	"github.com/google/uuid"

	"github.com/Gensutsu-code/AvarusVenditoreEmergent/internal/domain"
)

// Status is the order lifecycle state.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// ValidStatus reports whether s is a known status value.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// Line is one product snapshot frozen at checkout time.
type Line struct {
	ProductID uuid.UUID
	Name      string
	Article   string
	Price     int64
	Quantity  int
	ImageURL  string
}

// Order is the aggregate root for a customer order. Delivered and cancelled
// are terminal: an order enters delivered at most once, which is what makes
// delivery-triggered bonus accrual fire exactly once per order.
type Order struct {
	id        uuid.UUID
	userID    uuid.UUID
	lines     []Line
	total     int64
	status    Status
	fullName  string
	address   string
	phone     string
	createdAt time.Time
	updatedAt time.Time
}

// NewOrder creates a pending order from checkout data.
func NewOrder(userID uuid.UUID, lines []Line, fullName, address, phone string) (*Order, error) {
	if len(lines) == 0 {
		return nil, domain.NewValidationError("order must contain at least one item")
	}

	var total int64
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, domain.NewValidationError("order line quantity must be positive")
		}
		total += line.Price * int64(line.Quantity)
	}

	now := time.Now().UTC()
	return &Order{
		id:        uuid.New(),
		userID:    userID,
		lines:     lines,
		total:     total,
		status:    StatusPending,
		fullName:  fullName,
		address:   address,
		phone:     phone,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// Getters.
func (o *Order) ID() uuid.UUID        { return o.id }
func (o *Order) UserID() uuid.UUID    { return o.userID }
func (o *Order) Lines() []Line        { return o.lines }
func (o *Order) Total() int64         { return o.total }
func (o *Order) Status() Status       { return o.status }
func (o *Order) FullName() string     { return o.fullName }
func (o *Order) Address() string      { return o.address }
func (o *Order) Phone() string        { return o.phone }
func (o *Order) CreatedAt() time.Time { return o.createdAt }
func (o *Order) UpdatedAt() time.Time { return o.updatedAt }

// TransitionTo moves the order to a new status. It returns whether the
// transition entered delivered for the first time, which is the trigger for
// bonus accrual. Terminal states reject further transitions, including a
// repeat delivered update.
func (o *Order) TransitionTo(next Status) (enteredDelivered bool, err error) {
	if !ValidStatus(next) {
		return false, domain.NewValidationError("invalid order status: " + string(next))
	}
	if o.status == StatusDelivered || o.status == StatusCancelled {
		return false, domain.NewInvalidStateError(string(o.status), string(next))
	}
	if next == o.status {
		return false, nil
	}

	o.status = next
	o.updatedAt = time.Now().UTC()
	return next == StatusDelivered, nil
}

// Reconstitute rebuilds an Order from persistence.
func Reconstitute(
	id, userID uuid.UUID,
	lines []Line,
	total int64,
	status Status,
	fullName, address, phone string,
	createdAt, updatedAt time.Time,
) *Order {
	return &Order{
		id:        id,
		userID:    userID,
		lines:     lines,
		total:     total,
		status:    status,
		fullName:  fullName,
		address:   address,
		phone:     phone,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}
