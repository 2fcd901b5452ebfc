package application

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Gensutsu-code/AvarusVenditoreEmergent/internal/domain"
	bonusDomain "github.com/Gensutsu-code/AvarusVenditoreEmergent/internal/domain/bonus"
	userDomain "github.com/Gensutsu-code/AvarusVenditoreEmergent/internal/domain/user"
)

type memProgramRepo struct {
	programs map[uuid.UUID]*bonusDomain.Program
	stock    map[uuid.UUID]int
}

func newMemProgramRepo() *memProgramRepo {
	return &memProgramRepo{
		programs: make(map[uuid.UUID]*bonusDomain.Program),
		stock:    make(map[uuid.UUID]int),
	}
}

func (m *memProgramRepo) Save(_ context.Context, p *bonusDomain.Program) error {
	m.programs[p.ID()] = p
	for _, prize := range p.Prizes() {
		m.stock[prize.ID] = prize.Quantity
	}
	return nil
}

func (m *memProgramRepo) Update(_ context.Context, p *bonusDomain.Program) error {
	if _, ok := m.programs[p.ID()]; !ok {
		return domain.NewNotFoundError("bonus program", p.ID().String())
	}
	return m.Save(context.Background(), p)
}

func (m *memProgramRepo) FindByID(_ context.Context, id uuid.UUID) (*bonusDomain.Program, error) {
	p, ok := m.programs[id]
	if !ok {
		return nil, domain.NewNotFoundError("bonus program", id.String())
	}
	return p, nil
}

func (m *memProgramRepo) FindAll(context.Context) ([]*bonusDomain.Program, error) {
	out := make([]*bonusDomain.Program, 0, len(m.programs))
	for _, p := range m.programs {
		out = append(out, p)
	}
	return out, nil
}

func (m *memProgramRepo) FindEnabled(ctx context.Context) ([]*bonusDomain.Program, error) {
	all, _ := m.FindAll(ctx)
	out := all[:0]
	for _, p := range all {
		if p.Enabled() {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memProgramRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.programs[id]; !ok {
		return domain.NewNotFoundError("bonus program", id.String())
	}
	delete(m.programs, id)
	return nil
}

func (m *memProgramRepo) DecrementPrizeQuantity(_ context.Context, prizeID uuid.UUID) error {
	q, ok := m.stock[prizeID]
	if !ok || q == 0 {
		return domain.NewOutOfStockError("prize is out of stock")
	}
	if q > 0 {
		m.stock[prizeID] = q - 1
	}
	return nil
}

type memProgressRepo struct {
	rows map[[2]uuid.UUID]*bonusDomain.Progress
}

func newMemProgressRepo() *memProgressRepo {
	return &memProgressRepo{rows: make(map[[2]uuid.UUID]*bonusDomain.Progress)}
}

func key(userID, programID uuid.UUID) [2]uuid.UUID { return [2]uuid.UUID{userID, programID} }

func (m *memProgressRepo) Get(_ context.Context, userID, programID uuid.UUID) (*bonusDomain.Progress, error) {
	if row, ok := m.rows[key(userID, programID)]; ok {
		return row, nil
	}
	row := bonusDomain.NewProgress(userID, programID)
	m.rows[key(userID, programID)] = row
	return row, nil
}

func (m *memProgressRepo) Update(_ context.Context, p *bonusDomain.Progress) error {
	m.rows[key(p.UserID(), p.ProgramID())] = p
	return nil
}

func (m *memProgressRepo) AccrueCapped(ctx context.Context, userID, programID uuid.UUID, contribution, maxAmount int64) error {
	row, _ := m.Get(ctx, userID, programID)
	row.Accrue(contribution, maxAmount)
	return nil
}

func (m *memProgressRepo) SpendConditional(ctx context.Context, userID, programID uuid.UUID, cost int64) error {
	row, ok := m.rows[key(userID, programID)]
	if !ok || row.CurrentAmount() < cost {
		return domain.NewInsufficientBalanceError("balance does not cover the cost")
	}
	return row.Spend(cost)
}

func (m *memProgressRepo) RefundCapped(_ context.Context, userID, programID uuid.UUID, amount, maxAmount int64) error {
	row, ok := m.rows[key(userID, programID)]
	if !ok {
		return domain.NewNotFoundError("bonus progress", programID.String())
	}
	row.Refund(amount, maxAmount)
	return nil
}

func (m *memProgressRepo) ListByProgram(_ context.Context, programID uuid.UUID) ([]*bonusDomain.Progress, error) {
	var out []*bonusDomain.Progress
	for k, row := range m.rows {
		if k[1] == programID {
			out = append(out, row)
		}
	}
	return out, nil
}

type memHistoryRepo struct {
	records     []*bonusDomain.HistoryRecord
	redemptions map[uuid.UUID]*bonusDomain.Redemption
}

func newMemHistoryRepo() *memHistoryRepo {
	return &memHistoryRepo{redemptions: make(map[uuid.UUID]*bonusDomain.Redemption)}
}

func (m *memHistoryRepo) SaveRecord(_ context.Context, rec *bonusDomain.HistoryRecord) error {
	m.records = append(m.records, rec)
	return nil
}

func (m *memHistoryRepo) ListRecordsByUser(_ context.Context, userID uuid.UUID) ([]*bonusDomain.HistoryRecord, error) {
	var out []*bonusDomain.HistoryRecord
	for _, rec := range m.records {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *memHistoryRepo) ListAllRecords(context.Context) ([]*bonusDomain.HistoryRecord, error) {
	return m.records, nil
}

func (m *memHistoryRepo) SaveRedemption(_ context.Context, r *bonusDomain.Redemption) error {
	m.redemptions[r.ID] = r
	return nil
}

func (m *memHistoryRepo) UpdateRedemption(_ context.Context, r *bonusDomain.Redemption) error {
	if _, ok := m.redemptions[r.ID]; !ok {
		return domain.NewNotFoundError("redemption", r.ID.String())
	}
	m.redemptions[r.ID] = r
	return nil
}

func (m *memHistoryRepo) FindRedemptionByID(_ context.Context, id uuid.UUID) (*bonusDomain.Redemption, error) {
	r, ok := m.redemptions[id]
	if !ok {
		return nil, domain.NewNotFoundError("redemption", id.String())
	}
	return r, nil
}

func (m *memHistoryRepo) ListRedemptionsByUser(_ context.Context, userID uuid.UUID) ([]*bonusDomain.Redemption, error) {
	var out []*bonusDomain.Redemption
	for _, r := range m.redemptions {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memHistoryRepo) ListAllRedemptions(context.Context) ([]*bonusDomain.Redemption, error) {
	out := make([]*bonusDomain.Redemption, 0, len(m.redemptions))
	for _, r := range m.redemptions {
		out = append(out, r)
	}
	return out, nil
}

type memUserRepo struct {
	users map[uuid.UUID]*userDomain.User
}

func newMemUserRepo(users ...*userDomain.User) *memUserRepo {
	m := &memUserRepo{users: make(map[uuid.UUID]*userDomain.User)}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *memUserRepo) Save(_ context.Context, u *userDomain.User) error {
	m.users[u.ID] = u
	return nil
}

func (m *memUserRepo) FindByID(_ context.Context, id uuid.UUID) (*userDomain.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, domain.NewNotFoundError("user", id.String())
	}
	return u, nil
}

func (m *memUserRepo) FindByEmail(_ context.Context, email string) (*userDomain.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.NewNotFoundError("user", email)
}

func (m *memUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := m.FindByEmail(ctx, email)
	return err == nil, nil
}

func (m *memUserRepo) ListAll(context.Context) ([]*userDomain.User, error) {
	out := make([]*userDomain.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

func (m *memUserRepo) Count(context.Context) (int64, error) { return int64(len(m.users)), nil }

type capturedEvent struct {
	topic     string
	eventType string
}

type memPublisher struct {
	published []capturedEvent
}

func (m *memPublisher) Publish(_ context.Context, topic, eventType string, _ interface{}) error {
	m.published = append(m.published, capturedEvent{topic: topic, eventType: eventType})
	return nil
}

func (m *memPublisher) Close() error { return nil }

type bonusFixture struct {
	service  *BonusService
	programs *memProgramRepo
	progress *memProgressRepo
	history  *memHistoryRepo
	events   *memPublisher
	userID   uuid.UUID
	adminID  uuid.UUID
}

func newBonusFixture(t *testing.T) *bonusFixture {
	t.Helper()

	userID := uuid.New()
	adminID := uuid.New()
	users := newMemUserRepo(
		&userDomain.User{ID: userID, Email: "driver@example.com", Name: "Driver", Role: "user"},
		&userDomain.User{ID: adminID, Email: "admin@example.com", Name: "Admin", Role: "admin"},
	)

	programs := newMemProgramRepo()
	progress := newMemProgressRepo()
	history := newMemHistoryRepo()
	publisher := &memPublisher{}

	return &bonusFixture{
		service:  NewBonusService(programs, progress, history, users, publisher, zap.NewNop()),
		programs: programs,
		progress: progress,
		history:  history,
		events:   publisher,
		userID:   userID,
		adminID:  adminID,
	}
}

func (f *bonusFixture) createProgram(t *testing.T, req ProgramRequest) *ProgramDTO {
	t.Helper()
	dto, err := f.service.CreateProgram(context.Background(), req)
	require.NoError(t, err)
	return dto
}

func baseProgramRequest() ProgramRequest {
	return ProgramRequest{
		Title:            "Truck parts cashback",
		MaxAmount:        100000,
		MinThreshold:     50000,
		ContributionType: string(bonusDomain.ContributionOrderTotal),
	}
}

func TestBonusService_RequestBelowThreshold(t *testing.T) {
	f := newBonusFixture(t)
	program := f.createProgram(t, baseProgramRequest())
	ctx := context.Background()

	require.NoError(t, f.progress.AccrueCapped(ctx, f.userID, program.ID, 30000, 100000))

	_, err := f.service.RequestBonus(ctx, f.userID, program.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)
}

func TestBonusService_RequestIssueCycle(t *testing.T) {
	f := newBonusFixture(t)
	program := f.createProgram(t, baseProgramRequest())
	ctx := context.Background()

	require.NoError(t, f.progress.AccrueCapped(ctx, f.userID, program.ID, 60000, 100000))

	dto, err := f.service.RequestBonus(ctx, f.userID, program.ID)
	require.NoError(t, err)
	assert.True(t, dto.BonusRequested)
	assert.Equal(t, int64(60000), dto.CurrentAmount)

	// A second request while one is pending is rejected.
	_, err = f.service.RequestBonus(ctx, f.userID, program.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAlreadyRequested)

	rec, err := f.service.IssueBonus(ctx, program.ID, f.userID, f.adminID, "WINTER-500")
	require.NoError(t, err)
	assert.Equal(t, int64(60000), rec.AmountAtIssue)
	assert.Equal(t, "WINTER-500", rec.BonusCode)
	assert.Equal(t, f.adminID, rec.IssuedBy)
	assert.Equal(t, program.Title, rec.ProgramTitle)

	// The ledger row is reset and can be requested again after new accruals.
	row, err := f.progress.Get(ctx, f.userID, program.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), row.CurrentAmount())
	assert.False(t, row.BonusRequested())

	history, err := f.service.MyHistory(ctx, f.userID)
	require.NoError(t, err)
	require.Len(t, history, 1)
}

func TestBonusService_ProactiveIssueWithoutRequest(t *testing.T) {
	f := newBonusFixture(t)
	program := f.createProgram(t, baseProgramRequest())
	ctx := context.Background()

	require.NoError(t, f.progress.AccrueCapped(ctx, f.userID, program.ID, 60000, 100000))

	rec, err := f.service.IssueBonus(ctx, program.ID, f.userID, f.adminID, "CODE")
	require.NoError(t, err)
	assert.Equal(t, int64(60000), rec.AmountAtIssue)

	row, err := f.progress.Get(ctx, f.userID, program.ID)
	require.NoError(t, err)
	assert.Zero(t, row.CurrentAmount())
	assert.False(t, row.BonusRequested())
}

func TestBonusService_IssueBlankCode(t *testing.T) {
	f := newBonusFixture(t)
	program := f.createProgram(t, baseProgramRequest())

	_, err := f.service.IssueBonus(context.Background(), program.ID, f.userID, f.adminID, "   ")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestBonusService_RequestOnDisabledProgram(t *testing.T) {
	f := newBonusFixture(t)
	req := baseProgramRequest()
	disabled := false
	req.Enabled = &disabled
	program := f.createProgram(t, req)

	_, err := f.service.RequestBonus(context.Background(), f.userID, program.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDisabled)
}

func TestBonusService_RedeemPrize(t *testing.T) {
	f := newBonusFixture(t)
	req := baseProgramRequest()
	req.Prizes = []PrizeRequest{{Name: "Branded jacket", PointsCost: 40000, Quantity: 1, Enabled: true}}
	program := f.createProgram(t, req)
	ctx := context.Background()

	prizeID := program.Prizes[0].ID
	require.NoError(t, f.progress.AccrueCapped(ctx, f.userID, program.ID, 90000, 100000))

	red, err := f.service.RedeemPrize(ctx, f.userID, program.ID, prizeID)
	require.NoError(t, err)
	assert.Equal(t, "pending", red.Status)
	assert.Equal(t, int64(40000), red.PointsSpent)

	row, err := f.progress.Get(ctx, f.userID, program.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(50000), row.CurrentAmount())

	// Stock is exhausted now; a second redemption fails without spending.
	_, err = f.service.RedeemPrize(ctx, f.userID, program.ID, prizeID)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrOutOfStock)

	row, err = f.progress.Get(ctx, f.userID, program.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(50000), row.CurrentAmount())
}

func TestBonusService_RedeemInsufficientBalance(t *testing.T) {
	f := newBonusFixture(t)
	req := baseProgramRequest()
	req.Prizes = []PrizeRequest{{Name: "Mug", PointsCost: 5000, Quantity: -1, Enabled: true}}
	program := f.createProgram(t, req)
	ctx := context.Background()

	require.NoError(t, f.progress.AccrueCapped(ctx, f.userID, program.ID, 1000, 100000))

	_, err := f.service.RedeemPrize(ctx, f.userID, program.ID, program.Prizes[0].ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)
}

func TestBonusService_RedeemStockConflictRefunds(t *testing.T) {
	f := newBonusFixture(t)
	req := baseProgramRequest()
	req.Prizes = []PrizeRequest{{Name: "Jacket", PointsCost: 40000, Quantity: 1, Enabled: true}}
	program := f.createProgram(t, req)
	ctx := context.Background()

	prizeID := program.Prizes[0].ID
	require.NoError(t, f.progress.AccrueCapped(ctx, f.userID, program.ID, 90000, 100000))

	// Another redemption grabbed the last unit after this caller loaded the
	// program but before the decrement.
	f.programs.stock[prizeID] = 0

	_, err := f.service.RedeemPrize(ctx, f.userID, program.ID, prizeID)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrOutOfStock)

	// The points spent were returned.
	row, err := f.progress.Get(ctx, f.userID, program.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(90000), row.CurrentAmount())
}

func TestBonusService_CancelRedemptionRefunds(t *testing.T) {
	f := newBonusFixture(t)
	req := baseProgramRequest()
	req.Prizes = []PrizeRequest{{Name: "Jacket", PointsCost: 40000, Quantity: -1, Enabled: true}}
	program := f.createProgram(t, req)
	ctx := context.Background()

	require.NoError(t, f.progress.AccrueCapped(ctx, f.userID, program.ID, 90000, 100000))

	red, err := f.service.RedeemPrize(ctx, f.userID, program.ID, program.Prizes[0].ID)
	require.NoError(t, err)

	cancelled, err := f.service.UpdateRedemptionStatus(ctx, red.ID, UpdateRedemptionStatusRequest{Status: "cancelled"})
	require.NoError(t, err)
	assert.Equal(t, "cancelled", cancelled.Status)

	row, err := f.progress.Get(ctx, f.userID, program.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(90000), row.CurrentAmount())

	// Cancelled is terminal.
	_, err = f.service.UpdateRedemptionStatus(ctx, red.ID, UpdateRedemptionStatusRequest{Status: "approved"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestBonusService_ListProgramsForUser(t *testing.T) {
	f := newBonusFixture(t)
	req := baseProgramRequest()
	req.Levels = []LevelRequest{
		{Name: "Bronze", MinPoints: 0},
		{Name: "Silver", MinPoints: 50000},
	}
	program := f.createProgram(t, req)
	ctx := context.Background()

	require.NoError(t, f.progress.AccrueCapped(ctx, f.userID, program.ID, 25000, 100000))

	listed, err := f.service.ListProgramsForUser(ctx, f.userID)
	require.NoError(t, err)
	require.Len(t, listed, 1)

	entry := listed[0]
	assert.Equal(t, int64(25000), entry.CurrentAmount)
	assert.InDelta(t, 25.0, entry.ProgressPercent, 0.001)
	require.NotNil(t, entry.CurrentLevel)
	assert.Equal(t, "Bronze", entry.CurrentLevel.Name)
	require.NotNil(t, entry.NextLevel)
	assert.Equal(t, "Silver", entry.NextLevel.Name)
}

func TestBonusService_EventsPublished(t *testing.T) {
	f := newBonusFixture(t)
	program := f.createProgram(t, baseProgramRequest())
	ctx := context.Background()

	require.NoError(t, f.progress.AccrueCapped(ctx, f.userID, program.ID, 60000, 100000))

	_, err := f.service.RequestBonus(ctx, f.userID, program.ID)
	require.NoError(t, err)
	_, err = f.service.IssueBonus(ctx, program.ID, f.userID, f.adminID, "CODE")
	require.NoError(t, err)

	require.Len(t, f.events.published, 2)
	assert.Equal(t, "store.bonus.requested", f.events.published[0].eventType)
	assert.Equal(t, "store.bonus.issued", f.events.published[1].eventType)
}
