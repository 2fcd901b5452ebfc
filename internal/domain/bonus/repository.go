package bonus

import (
	"context"

	"github.com/google/uuid"
)

// ProgramRepository defines persistence operations for bonus programs.
type ProgramRepository interface {
	Save(ctx context.Context, p *Program) error
	Update(ctx context.Context, p *Program) error
	FindByID(ctx context.Context, id uuid.UUID) (*Program, error)
	FindAll(ctx context.Context) ([]*Program, error)
	FindEnabled(ctx context.Context) ([]*Program, error)
	// Delete removes the program with its prizes, levels and progress rows.
	// History and redemption records are retained.
	Delete(ctx context.Context, id uuid.UUID) error
	// DecrementPrizeQuantity atomically decrements a finite prize's stock,
	// failing with an out-of-stock error when none remains. Unlimited
	// prizes are left untouched.
	DecrementPrizeQuantity(ctx context.Context, prizeID uuid.UUID) error
}

// ProgressRepository defines persistence operations for the progress ledger.
// The mutating amount operations are atomic conditional updates so that
// concurrent accruals, spends and refunds never lose increments.
type ProgressRepository interface {
	// Get returns the (user, program) progress, lazily creating a zeroed
	// row when none exists.
	Get(ctx context.Context, userID, programID uuid.UUID) (*Progress, error)
	// Update persists request-flag changes and full resets.
	Update(ctx context.Context, p *Progress) error
	// AccrueCapped adds a contribution saturating at maxAmount.
	AccrueCapped(ctx context.Context, userID, programID uuid.UUID, contribution, maxAmount int64) error
	// SpendConditional deducts cost only when the balance covers it,
	// failing with an insufficient-balance error otherwise.
	SpendConditional(ctx context.Context, userID, programID uuid.UUID, cost int64) error
	// RefundCapped returns spent points, saturating at maxAmount.
	RefundCapped(ctx context.Context, userID, programID uuid.UUID, amount, maxAmount int64) error
	ListByProgram(ctx context.Context, programID uuid.UUID) ([]*Progress, error)
}

// HistoryRepository defines persistence for issuance and redemption records.
type HistoryRepository interface {
	SaveRecord(ctx context.Context, rec *HistoryRecord) error
	ListRecordsByUser(ctx context.Context, userID uuid.UUID) ([]*HistoryRecord, error)
	ListAllRecords(ctx context.Context) ([]*HistoryRecord, error)

	SaveRedemption(ctx context.Context, r *Redemption) error
	UpdateRedemption(ctx context.Context, r *Redemption) error
	FindRedemptionByID(ctx context.Context, id uuid.UUID) (*Redemption, error)
	ListRedemptionsByUser(ctx context.Context, userID uuid.UUID) ([]*Redemption, error)
	ListAllRedemptions(ctx context.Context) ([]*Redemption, error)
}
