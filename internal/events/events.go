package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Topic names shared with downstream consumers.
const (
	TopicOrderEvents = "order.events"
	TopicBonusEvents = "bonus.events"
)

// Event type identifiers, CloudEvents reverse-DNS style.
const (
	OrderStatusChanged = "store.order.status_changed"
	BonusRequested     = "store.bonus.requested"
	BonusIssued        = "store.bonus.issued"
	PrizeRedeemed      = "store.bonus.prize_redeemed"
)

// CloudEvent is the envelope every published message is wrapped in,
// following the CloudEvents 1.0 attribute names.
type CloudEvent struct {
	SpecVersion     string          `json:"specversion"`
	ID              string          `json:"id"`
	Source          string          `json:"source"`
	Type            string          `json:"type"`
	Time            time.Time       `json:"time"`
	DataContentType string          `json:"datacontenttype"`
	Data            json.RawMessage `json:"data"`
}

// NewCloudEvent wraps a payload in a CloudEvent envelope.
func NewCloudEvent(eventType, source string, data interface{}) (CloudEvent, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return CloudEvent{}, err
	}
	return CloudEvent{
		SpecVersion:     "1.0",
		ID:              uuid.NewString(),
		Source:          source,
		Type:            eventType,
		Time:            time.Now().UTC(),
		DataContentType: "application/json",
		Data:            raw,
	}, nil
}

// ParseData unmarshals the event payload into v.
func (ce CloudEvent) ParseData(v interface{}) error {
	return json.Unmarshal(ce.Data, v)
}

// OrderStatusChangedEvent is published whenever an order moves to a new status.
type OrderStatusChangedEvent struct {
	OrderID    uuid.UUID `json:"order_id"`
	UserID     uuid.UUID `json:"user_id"`
	FromStatus string    `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	Total      int64     `json:"total"`
}

// BonusRequestedEvent is published when a user asks for their bonus to be issued.
type BonusRequestedEvent struct {
	UserID        uuid.UUID `json:"user_id"`
	ProgramID     uuid.UUID `json:"program_id"`
	CurrentAmount int64     `json:"current_amount"`
}

// BonusIssuedEvent is published when an admin fulfils a bonus request.
type BonusIssuedEvent struct {
	UserID        uuid.UUID `json:"user_id"`
	ProgramID     uuid.UUID `json:"program_id"`
	BonusCode     string    `json:"bonus_code"`
	AmountAtIssue int64     `json:"amount_at_issue"`
	IssuedBy      uuid.UUID `json:"issued_by"`
}

// PrizeRedeemedEvent is published when a user exchanges points for a prize.
type PrizeRedeemedEvent struct {
	RedemptionID uuid.UUID `json:"redemption_id"`
	UserID       uuid.UUID `json:"user_id"`
	ProgramID    uuid.UUID `json:"program_id"`
	PrizeID      uuid.UUID `json:"prize_id"`
	PointsSpent  int64     `json:"points_spent"`
}
