package bonus

import (
	"time"

	"github.com/google/uuid"
)

// HistoryRecord is the immutable audit entry written once per issuance.
// The program title and balance are snapshotted because the program may be
// edited or deleted later.
type HistoryRecord struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	ProgramID     uuid.UUID
	ProgramTitle  string
	BonusCode     string
	AmountAtIssue int64
	IssuedBy      uuid.UUID
	CreatedAt     time.Time
}

// RedemptionStatus is the admin-managed state of a prize redemption.
type RedemptionStatus string

const (
	RedemptionPending   RedemptionStatus = "pending"
	RedemptionApproved  RedemptionStatus = "approved"
	RedemptionDelivered RedemptionStatus = "delivered"
	RedemptionCancelled RedemptionStatus = "cancelled"
)

// ValidRedemptionStatus reports whether s is a known status value.
func ValidRedemptionStatus(s RedemptionStatus) bool {
	switch s {
	case RedemptionPending, RedemptionApproved, RedemptionDelivered, RedemptionCancelled:
		return true
	}
	return false
}

// Redemption records a prize-for-points exchange. PrizeName is a snapshot.
type Redemption struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	ProgramID   uuid.UUID
	PrizeID     uuid.UUID
	PrizeName   string
	PointsSpent int64
	Status      RedemptionStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
