package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Gensutsu-code/AvarusVenditoreEmergent/internal/domain"
	bonusDomain "github.com/Gensutsu-code/AvarusVenditoreEmergent/internal/domain/bonus"
	userDomain "github.com/Gensutsu-code/AvarusVenditoreEmergent/internal/domain/user"
	"github.com/Gensutsu-code/AvarusVenditoreEmergent/internal/events"
)

// PrizeRequest is one prize entry in a program create/update request.
type PrizeRequest struct {
	ID         *uuid.UUID `json:"id"`
	Name       string     `json:"name" binding:"required"`
	PointsCost int64      `json:"points_cost" binding:"required,gt=0"`
	Quantity   int        `json:"quantity"`
	Enabled    bool       `json:"enabled"`
}

// LevelRequest is one level entry in a program create/update request.
type LevelRequest struct {
	ID              *uuid.UUID `json:"id"`
	Name            string     `json:"name" binding:"required"`
	MinPoints       int64      `json:"min_points" binding:"gte=0"`
	CashbackPercent float64    `json:"cashback_percent" binding:"gte=0"`
	Color           string     `json:"color"`
	Benefits        string     `json:"benefits"`
}

// ProgramRequest is the DTO for creating or updating a bonus program.
type ProgramRequest struct {
	Title               string         `json:"title" binding:"required"`
	Description         string         `json:"description"`
	ImageURL            string         `json:"image_url"`
	MaxAmount           int64          `json:"max_amount" binding:"required,gt=0"`
	MinThreshold        int64          `json:"min_threshold" binding:"gte=0"`
	ContributionType    string         `json:"contribution_type" binding:"required"`
	ContributionPercent float64        `json:"contribution_percent"`
	Prizes              []PrizeRequest `json:"prizes"`
	Levels              []LevelRequest `json:"levels"`
	Enabled             *bool          `json:"enabled"`
}

// PrizeDTO is the API response DTO for a prize.
type PrizeDTO struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	PointsCost int64     `json:"points_cost"`
	Quantity   int       `json:"quantity"`
	Enabled    bool      `json:"enabled"`
}

// LevelDTO is the API response DTO for a level.
type LevelDTO struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	MinPoints       int64     `json:"min_points"`
	CashbackPercent float64   `json:"cashback_percent"`
	Color           string    `json:"color,omitempty"`
	Benefits        string    `json:"benefits,omitempty"`
}

// ProgramDTO is the admin-facing program view.
type ProgramDTO struct {
	ID                  uuid.UUID  `json:"id"`
	Title               string     `json:"title"`
	Description         string     `json:"description,omitempty"`
	ImageURL            string     `json:"image_url,omitempty"`
	MaxAmount           int64      `json:"max_amount"`
	MinThreshold        int64      `json:"min_threshold"`
	ContributionType    string     `json:"contribution_type"`
	ContributionPercent float64    `json:"contribution_percent,omitempty"`
	Prizes              []PrizeDTO `json:"prizes"`
	Levels              []LevelDTO `json:"levels"`
	Enabled             bool       `json:"enabled"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// UserProgramDTO is the customer-facing program view joined with the
// caller's ledger position.
type UserProgramDTO struct {
	ProgramDTO
	CurrentAmount   int64      `json:"current_amount"`
	ProgressPercent float64    `json:"progress_percent"`
	BonusRequested  bool       `json:"bonus_requested"`
	RequestDate     *time.Time `json:"request_date,omitempty"`
	CurrentLevel    *LevelDTO  `json:"current_level,omitempty"`
	NextLevel       *LevelDTO  `json:"next_level,omitempty"`
}

// ProgramParticipantDTO is one user's ledger row in the admin participant
// listing.
type ProgramParticipantDTO struct {
	UserID         uuid.UUID  `json:"user_id"`
	Email          string     `json:"email,omitempty"`
	Name           string     `json:"name,omitempty"`
	CurrentAmount  int64      `json:"current_amount"`
	BonusRequested bool       `json:"bonus_requested"`
	RequestDate    *time.Time `json:"request_date,omitempty"`
}

// HistoryRecordDTO is one issuance audit entry.
type HistoryRecordDTO struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"user_id"`
	ProgramID     uuid.UUID `json:"program_id"`
	ProgramTitle  string    `json:"program_title"`
	BonusCode     string    `json:"bonus_code"`
	AmountAtIssue int64     `json:"amount_at_issue"`
	IssuedBy      uuid.UUID `json:"issued_by"`
	CreatedAt     time.Time `json:"created_at"`
}

// RedemptionDTO is the API response DTO for a prize redemption.
type RedemptionDTO struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	ProgramID   uuid.UUID `json:"program_id"`
	PrizeID     uuid.UUID `json:"prize_id"`
	PrizeName   string    `json:"prize_name"`
	PointsSpent int64     `json:"points_spent"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UpdateRedemptionStatusRequest is the admin DTO for moving a redemption.
type UpdateRedemptionStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// BonusService orchestrates the loyalty program use cases: registry
// management, the request/issuance protocol, prize redemption and the
// audit history.
type BonusService struct {
	programs  bonusDomain.ProgramRepository
	progress  bonusDomain.ProgressRepository
	history   bonusDomain.HistoryRepository
	users     userDomain.Repository
	publisher events.Publisher
	logger    *zap.Logger
}

// NewBonusService creates a new BonusService.
func NewBonusService(
	programs bonusDomain.ProgramRepository,
	progress bonusDomain.ProgressRepository,
	history bonusDomain.HistoryRepository,
	users userDomain.Repository,
	publisher events.Publisher,
	logger *zap.Logger,
) *BonusService {
	return &BonusService{
		programs:  programs,
		progress:  progress,
		history:   history,
		users:     users,
		publisher: publisher,
		logger:    logger,
	}
}

// CreateProgram registers a new bonus program (admin).
func (s *BonusService) CreateProgram(ctx context.Context, req ProgramRequest) (*ProgramDTO, error) {
	p, err := bonusDomain.NewProgram(toProgramParams(req))
	if err != nil {
		return nil, err
	}
	if err := s.programs.Save(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("bonus program created",
		zap.String("program_id", p.ID().String()),
		zap.String("title", p.Title()),
	)
	dto := toProgramDTO(p)
	return &dto, nil
}

// UpdateProgram overwrites a program's definition (admin). Existing ledger
// balances are untouched even when max_amount shrinks; the cap applies to
// future accruals only.
func (s *BonusService) UpdateProgram(ctx context.Context, id uuid.UUID, req ProgramRequest) (*ProgramDTO, error) {
	p, err := s.programs.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := p.Update(toProgramParams(req)); err != nil {
		return nil, err
	}
	if err := s.programs.Update(ctx, p); err != nil {
		return nil, err
	}
	dto := toProgramDTO(p)
	return &dto, nil
}

// DeleteProgram removes a program with its prizes, levels and ledger rows.
// Issuance history and redemptions survive as snapshots (admin).
func (s *BonusService) DeleteProgram(ctx context.Context, id uuid.UUID) error {
	return s.programs.Delete(ctx, id)
}

// GetProgram returns one program (admin).
func (s *BonusService) GetProgram(ctx context.Context, id uuid.UUID) (*ProgramDTO, error) {
	p, err := s.programs.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := toProgramDTO(p)
	return &dto, nil
}

// ListPrograms returns every program including disabled ones (admin).
func (s *BonusService) ListPrograms(ctx context.Context) ([]ProgramDTO, error) {
	programs, err := s.programs.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]ProgramDTO, len(programs))
	for i, p := range programs {
		out[i] = toProgramDTO(p)
	}
	return out, nil
}

// ListProgramParticipants returns every ledger row of a program joined with
// account data (admin).
func (s *BonusService) ListProgramParticipants(ctx context.Context, programID uuid.UUID) ([]ProgramParticipantDTO, error) {
	if _, err := s.programs.FindByID(ctx, programID); err != nil {
		return nil, err
	}
	rows, err := s.progress.ListByProgram(ctx, programID)
	if err != nil {
		return nil, err
	}

	out := make([]ProgramParticipantDTO, len(rows))
	for i, row := range rows {
		entry := ProgramParticipantDTO{
			UserID:         row.UserID(),
			CurrentAmount:  row.CurrentAmount(),
			BonusRequested: row.BonusRequested(),
			RequestDate:    row.RequestDate(),
		}
		if u, err := s.users.FindByID(ctx, row.UserID()); err == nil {
			entry.Email = u.Email
			entry.Name = u.Name
		}
		out[i] = entry
	}
	return out, nil
}

// ListProgramsForUser returns enabled programs joined with the caller's
// ledger position, completion percentage and level bracket.
func (s *BonusService) ListProgramsForUser(ctx context.Context, userID uuid.UUID) ([]UserProgramDTO, error) {
	programs, err := s.programs.FindEnabled(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]UserProgramDTO, len(programs))
	for i, p := range programs {
		row, err := s.progress.Get(ctx, userID, p.ID())
		if err != nil {
			return nil, err
		}
		out[i] = toUserProgramDTO(p, row)
	}
	return out, nil
}

// RequestBonus marks the caller's accumulated bonus as requested for payout.
// The balance must meet the program's minimum threshold and no request may
// already be pending.
func (s *BonusService) RequestBonus(ctx context.Context, userID, programID uuid.UUID) (*UserProgramDTO, error) {
	p, err := s.programs.FindByID(ctx, programID)
	if err != nil {
		return nil, err
	}
	if !p.Enabled() {
		return nil, domain.NewDisabledError("bonus program is disabled")
	}

	row, err := s.progress.Get(ctx, userID, programID)
	if err != nil {
		return nil, err
	}
	if err := row.Request(p.MinThreshold()); err != nil {
		return nil, err
	}
	if err := s.progress.Update(ctx, row); err != nil {
		return nil, err
	}

	s.logger.Info("bonus requested",
		zap.String("user_id", userID.String()),
		zap.String("program_id", programID.String()),
		zap.Int64("current_amount", row.CurrentAmount()),
	)

	if err := s.publisher.Publish(ctx, events.TopicBonusEvents, events.BonusRequested, events.BonusRequestedEvent{
		UserID:        userID,
		ProgramID:     programID,
		CurrentAmount: row.CurrentAmount(),
	}); err != nil {
		s.logger.Warn("failed to publish bonus requested event", zap.Error(err))
	}

	dto := toUserProgramDTO(p, row)
	return &dto, nil
}

// IssueBonus snapshots the balance into the audit log, resets the ledger
// row and records which admin issued it. A pending request is not required;
// admins may issue proactively.
func (s *BonusService) IssueBonus(ctx context.Context, programID, userID, issuedBy uuid.UUID, bonusCode string) (*HistoryRecordDTO, error) {
	if strings.TrimSpace(bonusCode) == "" {
		return nil, domain.NewValidationError("bonus code is required")
	}
	p, err := s.programs.FindByID(ctx, programID)
	if err != nil {
		return nil, err
	}
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, err
	}

	row, err := s.progress.Get(ctx, userID, programID)
	if err != nil {
		return nil, err
	}

	amount := row.IssueReset()
	if err := s.progress.Update(ctx, row); err != nil {
		return nil, err
	}

	rec := &bonusDomain.HistoryRecord{
		ID:            uuid.New(),
		UserID:        userID,
		ProgramID:     programID,
		ProgramTitle:  p.Title(),
		BonusCode:     bonusCode,
		AmountAtIssue: amount,
		IssuedBy:      issuedBy,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.history.SaveRecord(ctx, rec); err != nil {
		return nil, err
	}

	s.logger.Info("bonus issued",
		zap.String("user_id", userID.String()),
		zap.String("program_id", programID.String()),
		zap.Int64("amount", amount),
		zap.String("issued_by", issuedBy.String()),
	)

	if err := s.publisher.Publish(ctx, events.TopicBonusEvents, events.BonusIssued, events.BonusIssuedEvent{
		UserID:        userID,
		ProgramID:     programID,
		BonusCode:     bonusCode,
		AmountAtIssue: amount,
		IssuedBy:      issuedBy,
	}); err != nil {
		s.logger.Warn("failed to publish bonus issued event", zap.Error(err))
	}

	return toHistoryRecordDTO(rec), nil
}

// RedeemPrize exchanges the caller's points for a prize. The spend and the
// stock decrement are both atomic; when the prize runs out between them the
// points are returned.
func (s *BonusService) RedeemPrize(ctx context.Context, userID, programID, prizeID uuid.UUID) (*RedemptionDTO, error) {
	p, err := s.programs.FindByID(ctx, programID)
	if err != nil {
		return nil, err
	}
	if !p.Enabled() {
		return nil, domain.NewDisabledError("bonus program is disabled")
	}

	prize, ok := p.PrizeByID(prizeID)
	if !ok {
		return nil, domain.NewNotFoundError("prize", prizeID.String())
	}
	if !prize.Enabled {
		return nil, domain.NewDisabledError("prize is disabled")
	}
	if prize.Quantity == 0 {
		return nil, domain.NewOutOfStockError("prize is out of stock")
	}

	if err := s.progress.SpendConditional(ctx, userID, programID, prize.PointsCost); err != nil {
		return nil, err
	}

	if prize.Quantity != bonusDomain.UnlimitedQuantity {
		if err := s.programs.DecrementPrizeQuantity(ctx, prizeID); err != nil {
			if refundErr := s.progress.RefundCapped(ctx, userID, programID, prize.PointsCost, p.MaxAmount()); refundErr != nil {
				s.logger.Error("failed to refund points after stock conflict",
					zap.String("user_id", userID.String()),
					zap.String("prize_id", prizeID.String()),
					zap.Error(refundErr),
				)
			}
			return nil, err
		}
	}

	now := time.Now().UTC()
	red := &bonusDomain.Redemption{
		ID:          uuid.New(),
		UserID:      userID,
		ProgramID:   programID,
		PrizeID:     prizeID,
		PrizeName:   prize.Name,
		PointsSpent: prize.PointsCost,
		Status:      bonusDomain.RedemptionPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.history.SaveRedemption(ctx, red); err != nil {
		return nil, err
	}

	s.logger.Info("prize redeemed",
		zap.String("user_id", userID.String()),
		zap.String("prize_id", prizeID.String()),
		zap.Int64("points_spent", prize.PointsCost),
	)

	if err := s.publisher.Publish(ctx, events.TopicBonusEvents, events.PrizeRedeemed, events.PrizeRedeemedEvent{
		RedemptionID: red.ID,
		UserID:       userID,
		ProgramID:    programID,
		PrizeID:      prizeID,
		PointsSpent:  prize.PointsCost,
	}); err != nil {
		s.logger.Warn("failed to publish prize redeemed event", zap.Error(err))
	}

	return toRedemptionDTO(red), nil
}

// UpdateRedemptionStatus moves a redemption through its fulfilment states
// (admin). Cancelling refunds the spent points, capped at the program
// maximum when the program still exists. Delivered and cancelled are
// terminal.
func (s *BonusService) UpdateRedemptionStatus(ctx context.Context, redemptionID uuid.UUID, req UpdateRedemptionStatusRequest) (*RedemptionDTO, error) {
	next := bonusDomain.RedemptionStatus(req.Status)
	if !bonusDomain.ValidRedemptionStatus(next) {
		return nil, domain.NewValidationError("invalid redemption status: " + req.Status)
	}

	red, err := s.history.FindRedemptionByID(ctx, redemptionID)
	if err != nil {
		return nil, err
	}
	if red.Status == bonusDomain.RedemptionDelivered || red.Status == bonusDomain.RedemptionCancelled {
		return nil, domain.NewInvalidStateError(string(red.Status), string(next))
	}
	if next == red.Status {
		return toRedemptionDTO(red), nil
	}

	if next == bonusDomain.RedemptionCancelled {
		maxAmount := red.PointsSpent
		if p, err := s.programs.FindByID(ctx, red.ProgramID); err == nil {
			maxAmount = p.MaxAmount()
		} else if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		if err := s.progress.RefundCapped(ctx, red.UserID, red.ProgramID, red.PointsSpent, maxAmount); err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				return nil, err
			}
			// The ledger row is gone when the program was deleted; the
			// cancellation still goes through.
		}
	}

	red.Status = next
	red.UpdatedAt = time.Now().UTC()
	if err := s.history.UpdateRedemption(ctx, red); err != nil {
		return nil, err
	}

	s.logger.Info("redemption status updated",
		zap.String("redemption_id", red.ID.String()),
		zap.String("status", string(next)),
	)
	return toRedemptionDTO(red), nil
}

// MyHistory returns the caller's issuance audit entries, newest first.
func (s *BonusService) MyHistory(ctx context.Context, userID uuid.UUID) ([]HistoryRecordDTO, error) {
	records, err := s.history.ListRecordsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toHistoryRecordDTOList(records), nil
}

// AllHistory returns the full issuance audit log (admin).
func (s *BonusService) AllHistory(ctx context.Context) ([]HistoryRecordDTO, error) {
	records, err := s.history.ListAllRecords(ctx)
	if err != nil {
		return nil, err
	}
	return toHistoryRecordDTOList(records), nil
}

// MyRedemptions returns the caller's redemptions, newest first.
func (s *BonusService) MyRedemptions(ctx context.Context, userID uuid.UUID) ([]RedemptionDTO, error) {
	redemptions, err := s.history.ListRedemptionsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toRedemptionDTOList(redemptions), nil
}

// AllRedemptions returns every redemption (admin).
func (s *BonusService) AllRedemptions(ctx context.Context) ([]RedemptionDTO, error) {
	redemptions, err := s.history.ListAllRedemptions(ctx)
	if err != nil {
		return nil, err
	}
	return toRedemptionDTOList(redemptions), nil
}

func toProgramParams(req ProgramRequest) bonusDomain.ProgramParams {
	prizes := make([]bonusDomain.Prize, len(req.Prizes))
	for i, prize := range req.Prizes {
		id := uuid.Nil
		if prize.ID != nil {
			id = *prize.ID
		}
		prizes[i] = bonusDomain.Prize{
			ID:         id,
			Name:       prize.Name,
			PointsCost: prize.PointsCost,
			Quantity:   prize.Quantity,
			Enabled:    prize.Enabled,
		}
	}

	levels := make([]bonusDomain.Level, len(req.Levels))
	for i, level := range req.Levels {
		id := uuid.Nil
		if level.ID != nil {
			id = *level.ID
		}
		levels[i] = bonusDomain.Level{
			ID:              id,
			Name:            level.Name,
			MinPoints:       level.MinPoints,
			CashbackPercent: level.CashbackPercent,
			Color:           level.Color,
			Benefits:        level.Benefits,
		}
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	return bonusDomain.ProgramParams{
		Title:               req.Title,
		Description:         req.Description,
		ImageURL:            req.ImageURL,
		MaxAmount:           req.MaxAmount,
		MinThreshold:        req.MinThreshold,
		ContributionType:    bonusDomain.ContributionType(req.ContributionType),
		ContributionPercent: req.ContributionPercent,
		Prizes:              prizes,
		Levels:              levels,
		Enabled:             enabled,
	}
}

func toProgramDTO(p *bonusDomain.Program) ProgramDTO {
	prizes := make([]PrizeDTO, len(p.Prizes()))
	for i, prize := range p.Prizes() {
		prizes[i] = PrizeDTO{
			ID:         prize.ID,
			Name:       prize.Name,
			PointsCost: prize.PointsCost,
			Quantity:   prize.Quantity,
			Enabled:    prize.Enabled,
		}
	}
	levels := make([]LevelDTO, len(p.Levels()))
	for i, level := range p.Levels() {
		levels[i] = toLevelDTO(level)
	}
	return ProgramDTO{
		ID:                  p.ID(),
		Title:               p.Title(),
		Description:         p.Description(),
		ImageURL:            p.ImageURL(),
		MaxAmount:           p.MaxAmount(),
		MinThreshold:        p.MinThreshold(),
		ContributionType:    string(p.ContributionType()),
		ContributionPercent: p.ContributionPercent(),
		Prizes:              prizes,
		Levels:              levels,
		Enabled:             p.Enabled(),
		CreatedAt:           p.CreatedAt(),
		UpdatedAt:           p.UpdatedAt(),
	}
}

func toUserProgramDTO(p *bonusDomain.Program, row *bonusDomain.Progress) UserProgramDTO {
	dto := UserProgramDTO{
		ProgramDTO:     toProgramDTO(p),
		CurrentAmount:  row.CurrentAmount(),
		BonusRequested: row.BonusRequested(),
		RequestDate:    row.RequestDate(),
	}
	if p.MaxAmount() > 0 {
		dto.ProgressPercent = float64(row.CurrentAmount()) / float64(p.MaxAmount()) * 100
	}
	current, next := p.LevelFor(row.CurrentAmount())
	if current != nil {
		l := toLevelDTO(*current)
		dto.CurrentLevel = &l
	}
	if next != nil {
		l := toLevelDTO(*next)
		dto.NextLevel = &l
	}
	return dto
}

func toLevelDTO(level bonusDomain.Level) LevelDTO {
	return LevelDTO{
		ID:              level.ID,
		Name:            level.Name,
		MinPoints:       level.MinPoints,
		CashbackPercent: level.CashbackPercent,
		Color:           level.Color,
		Benefits:        level.Benefits,
	}
}

func toHistoryRecordDTO(rec *bonusDomain.HistoryRecord) *HistoryRecordDTO {
	return &HistoryRecordDTO{
		ID:            rec.ID,
		UserID:        rec.UserID,
		ProgramID:     rec.ProgramID,
		ProgramTitle:  rec.ProgramTitle,
		BonusCode:     rec.BonusCode,
		AmountAtIssue: rec.AmountAtIssue,
		IssuedBy:      rec.IssuedBy,
		CreatedAt:     rec.CreatedAt,
	}
}

func toHistoryRecordDTOList(records []*bonusDomain.HistoryRecord) []HistoryRecordDTO {
	out := make([]HistoryRecordDTO, len(records))
	for i, rec := range records {
		out[i] = *toHistoryRecordDTO(rec)
	}
	return out
}

func toRedemptionDTO(red *bonusDomain.Redemption) *RedemptionDTO {
	return &RedemptionDTO{
		ID:          red.ID,
		UserID:      red.UserID,
		ProgramID:   red.ProgramID,
		PrizeID:     red.PrizeID,
		PrizeName:   red.PrizeName,
		PointsSpent: red.PointsSpent,
		Status:      string(red.Status),
		CreatedAt:   red.CreatedAt,
		UpdatedAt:   red.UpdatedAt,
	}
}

func toRedemptionDTOList(redemptions []*bonusDomain.Redemption) []RedemptionDTO {
	out := make([]RedemptionDTO, len(redemptions))
	for i, red := range redemptions {
		out[i] = *toRedemptionDTO(red)
	}
	return out
}
