// Package accrual turns delivered orders into progress ledger credits.
package accrual

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Gensutsu-code/AvarusVenditoreEmergent/internal/domain/bonus"
)

// Engine credits every enabled bonus program when an order is delivered.
// Each program is an independent ledger row, so a failure on one program
// does not roll back credits already applied to others.
type Engine struct {
	programs bonus.ProgramRepository
	progress bonus.ProgressRepository
	logger   *zap.Logger
}

// NewEngine creates an accrual engine.
func NewEngine(programs bonus.ProgramRepository, progress bonus.ProgressRepository, logger *zap.Logger) *Engine {
	return &Engine{
		programs: programs,
		progress: progress,
		logger:   logger,
	}
}

// OnOrderDelivered applies the order total to every enabled program's
// ledger row for the user. Programs with a zero contribution are skipped.
// The first persistence error aborts the sweep; credits already written
// stay in place.
func (e *Engine) OnOrderDelivered(ctx context.Context, userID, orderID uuid.UUID, orderTotal int64) error {
	programs, err := e.programs.FindEnabled(ctx)
	if err != nil {
		return fmt.Errorf("loading enabled programs: %w", err)
	}

	for _, program := range programs {
		contribution := program.Contribution(orderTotal)
		if contribution <= 0 {
			continue
		}

		if err := e.progress.AccrueCapped(ctx, userID, program.ID(), contribution, program.MaxAmount()); err != nil {
			e.logger.Error("accrual failed",
				zap.String("order_id", orderID.String()),
				zap.String("user_id", userID.String()),
				zap.String("program_id", program.ID().String()),
				zap.Error(err),
			)
			return fmt.Errorf("accruing to program %s: %w", program.ID(), err)
		}

		e.logger.Info("accrued order contribution",
			zap.String("order_id", orderID.String()),
			zap.String("user_id", userID.String()),
			zap.String("program_id", program.ID().String()),
			zap.Int64("contribution", contribution),
		)
	}
	return nil
}
