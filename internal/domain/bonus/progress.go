package bonus

import (
	"time"

	"github.com/google/uuid"

	"github.com/Gensutsu-code/AvarusVenditoreEmergent/internal/domain"
)

// Progress is one (user, program) pair's accumulated state.
// Invariant: current amount stays within [0, program max amount], and a
// payout can only be requested while the balance is positive.
type Progress struct {
	userID         uuid.UUID
	programID      uuid.UUID
	currentAmount  int64
	bonusRequested bool
	requestDate    *time.Time
	updatedAt      time.Time
}

// NewProgress returns the zeroed progress lazily created on first read.
func NewProgress(userID, programID uuid.UUID) *Progress {
	return &Progress{
		userID:    userID,
		programID: programID,
		updatedAt: time.Now().UTC(),
	}
}

// Getters.
func (p *Progress) UserID() uuid.UUID       { return p.userID }
func (p *Progress) ProgramID() uuid.UUID    { return p.programID }
func (p *Progress) CurrentAmount() int64    { return p.currentAmount }
func (p *Progress) BonusRequested() bool    { return p.bonusRequested }
func (p *Progress) RequestDate() *time.Time { return p.requestDate }
func (p *Progress) UpdatedAt() time.Time    { return p.updatedAt }

// Accrue adds a contribution, saturating at maxAmount. Excess is dropped.
func (p *Progress) Accrue(contribution, maxAmount int64) {
	if contribution <= 0 {
		return
	}
	next := p.currentAmount + contribution
	if next > maxAmount {
		next = maxAmount
	}
	p.currentAmount = next
	p.updatedAt = time.Now().UTC()
}

// Request marks the payout as requested. The balance must be positive and
// at or above the program's minimum threshold, and no request may be pending.
func (p *Progress) Request(minThreshold int64) error {
	if p.bonusRequested {
		return domain.NewAlreadyRequestedError("bonus payout already requested")
	}
	if p.currentAmount <= 0 || p.currentAmount < minThreshold {
		return domain.NewInsufficientBalanceError("accumulated amount is below the payout threshold")
	}
	now := time.Now().UTC()
	p.bonusRequested = true
	p.requestDate = &now
	p.updatedAt = now
	return nil
}

// IssueReset finalizes an issuance: it returns the balance at the moment of
// issuance and resets the pair to its initial state.
func (p *Progress) IssueReset() int64 {
	amount := p.currentAmount
	p.currentAmount = 0
	p.bonusRequested = false
	p.requestDate = nil
	p.updatedAt = time.Now().UTC()
	return amount
}

// Spend deducts a prize cost. The balance must cover the full cost.
func (p *Progress) Spend(cost int64) error {
	if cost > p.currentAmount {
		return domain.NewInsufficientBalanceError("accumulated amount does not cover the prize cost")
	}
	p.currentAmount -= cost
	p.updatedAt = time.Now().UTC()
	return nil
}

// Refund returns previously spent points, clamped at maxAmount.
func (p *Progress) Refund(amount, maxAmount int64) {
	if amount <= 0 {
		return
	}
	next := p.currentAmount + amount
	if next > maxAmount {
		next = maxAmount
	}
	p.currentAmount = next
	p.updatedAt = time.Now().UTC()
}

// ReconstituteProgress rebuilds Progress from persistence.
func ReconstituteProgress(
	userID, programID uuid.UUID,
	currentAmount int64,
	bonusRequested bool,
	requestDate *time.Time,
	updatedAt time.Time,
) *Progress {
	return &Progress{
		userID:         userID,
		programID:      programID,
		currentAmount:  currentAmount,
		bonusRequested: bonusRequested,
		requestDate:    requestDate,
		updatedAt:      updatedAt,
	}
}
