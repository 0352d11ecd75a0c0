package command

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayaka-hub/ayaka-learning-bot/internal/application/authz"
	"github.com/ayaka-hub/ayaka-learning-bot/internal/domain/penalty"
	"github.com/ayaka-hub/ayaka-learning-bot/internal/domain/user"
)

// ─────────────────────────────────────────────────────────────────────────────
// fakes
// ─────────────────────────────────────────────────────────────────────────────

type fakeUserRepo struct {
	records map[int64]*user.Record
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{records: make(map[int64]*user.Record)}
}

func (f *fakeUserRepo) Create(_ context.Context, rec *user.Record) error {
	if _, ok := f.records[int64(rec.TelegramID)]; ok {
		return user.ErrAlreadyExists
	}
	f.records[int64(rec.TelegramID)] = rec
	return nil
}

func (f *fakeUserRepo) GetByTelegramID(_ context.Context, id user.TelegramID) (*user.Record, error) {
	rec, ok := f.records[int64(id)]
	if !ok {
		return nil, user.ErrNotFound
	}
	return rec, nil
}

func (f *fakeUserRepo) Update(_ context.Context, rec *user.Record) error {
	if _, ok := f.records[int64(rec.TelegramID)]; !ok {
		return user.ErrNotFound
	}
	f.records[int64(rec.TelegramID)] = rec
	return nil
}

func (f *fakeUserRepo) GetAll(_ context.Context) ([]*user.Record, error) {
	out := make([]*user.Record, 0, len(f.records))
	for _, rec := range f.records {
		out = append(out, rec)
	}
	return out, nil
}

func (f *fakeUserRepo) Count(_ context.Context) (int, error) {
	return len(f.records), nil
}

func (f *fakeUserRepo) addUser(t *testing.T, telegramID int64, role user.Role) {
	t.Helper()
	rec, err := user.NewRecord(user.NewRecordParams{
		ID:          uuid.NewString(),
		TelegramID:  user.TelegramID(telegramID),
		Username:    "someone",
		DisplayName: "Someone",
		Role:        role,
	})
	require.NoError(t, err)
	f.records[telegramID] = rec
}

type fakePenaltyRepo struct {
	records map[int64]*penalty.Record
	saved   int
}

func newFakePenaltyRepo() *fakePenaltyRepo {
	return &fakePenaltyRepo{records: make(map[int64]*penalty.Record)}
}

func (f *fakePenaltyRepo) Get(_ context.Context, id int64) (*penalty.Record, error) {
	rec, ok := f.records[id]
	if !ok {
		return nil, penalty.ErrNotTracked
	}
	return rec, nil
}

func (f *fakePenaltyRepo) GetOrCreate(_ context.Context, id int64, username string) (*penalty.Record, error) {
	if rec, ok := f.records[id]; ok {
		return rec, nil
	}
	return penalty.NewRecord(id, username), nil
}

func (f *fakePenaltyRepo) Save(_ context.Context, rec *penalty.Record) error {
	f.saved++
	f.records[rec.TelegramID] = rec
	return nil
}

func (f *fakePenaltyRepo) GetAll(_ context.Context) ([]*penalty.Record, error) {
	out := make([]*penalty.Record, 0, len(f.records))
	for _, rec := range f.records {
		out = append(out, rec)
	}
	return out, nil
}

type fakeNotifier struct {
	donations  []penalty.Money
	exceptions []string
}

func (f *fakeNotifier) NotifyDonation(_ context.Context, _ string, amount penalty.Money) {
	f.donations = append(f.donations, amount)
}

func (f *fakeNotifier) NotifyException(_ context.Context, _ string, reason string) {
	f.exceptions = append(f.exceptions, reason)
}

// ─────────────────────────────────────────────────────────────────────────────
// test wiring
// ─────────────────────────────────────────────────────────────────────────────

const (
	leaderID = int64(1)
	memberID = int64(2)
	targetID = int64(42)
)

type penaltyFixture struct {
	users    *fakeUserRepo
	repo     *fakePenaltyRepo
	auth     *authz.Service
	ledger   *penalty.Ledger
	notifier *fakeNotifier
	now      time.Time
}

func newPenaltyFixture(t *testing.T) *penaltyFixture {
	t.Helper()
	users := newFakeUserRepo()
	users.addUser(t, leaderID, user.RoleLeader)
	users.addUser(t, memberID, user.RoleMember)

	cfg := penalty.DefaultConfig()
	cfg.Location = time.UTC

	return &penaltyFixture{
		users:    users,
		repo:     newFakePenaltyRepo(),
		auth:     authz.NewService(users),
		ledger:   penalty.NewLedger(cfg),
		notifier: &fakeNotifier{},
		now:      time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func (fx *penaltyFixture) clock() time.Time {
	return fx.now
}

// ─────────────────────────────────────────────────────────────────────────────
// record miss
// ─────────────────────────────────────────────────────────────────────────────

func TestRecordMiss_LeaderCharges(t *testing.T) {
	fx := newPenaltyFixture(t)
	h := NewRecordMissHandler(fx.auth, fx.repo, fx.ledger, fx.notifier, nil).WithClock(fx.clock)

	res, err := h.Handle(context.Background(), RecordMissCommand{
		ActorID: leaderID, TargetID: targetID, TargetUsername: "rahul",
	})

	require.NoError(t, err)
	assert.Equal(t, fx.ledger.Unit(), res.Charged)
	assert.False(t, res.Escalated)
	assert.Equal(t, 1, fx.repo.saved)
	assert.Empty(t, fx.notifier.donations)
}

func TestRecordMiss_NonLeaderDenied(t *testing.T) {
	fx := newPenaltyFixture(t)
	h := NewRecordMissHandler(fx.auth, fx.repo, fx.ledger, fx.notifier, nil).WithClock(fx.clock)

	for _, actor := range []int64{memberID, 999} {
		_, err := h.Handle(context.Background(), RecordMissCommand{ActorID: actor, TargetID: targetID})
		assert.ErrorIs(t, err, authz.ErrNotLeader)
	}
	assert.Equal(t, 0, fx.repo.saved)
}

func TestRecordMiss_EscalationNotifies(t *testing.T) {
	fx := newPenaltyFixture(t)
	h := NewRecordMissHandler(fx.auth, fx.repo, fx.ledger, fx.notifier, nil).WithClock(fx.clock)

	cmd := RecordMissCommand{ActorID: leaderID, TargetID: targetID, TargetUsername: "rahul"}
	var last *RecordMissResult
	for i := 0; i < 3; i++ {
		var err error
		last, err = h.Handle(context.Background(), cmd)
		require.NoError(t, err)
	}

	assert.True(t, last.Escalated)
	assert.Equal(t, penalty.Money(0), last.Record.Outstanding)
	require.Len(t, fx.notifier.donations, 1)
	assert.Equal(t, last.Donated, fx.notifier.donations[0])
}

// ─────────────────────────────────────────────────────────────────────────────
// record done
// ─────────────────────────────────────────────────────────────────────────────

func TestRecordDone_ResetsRunKeepsBalance(t *testing.T) {
	fx := newPenaltyFixture(t)
	miss := NewRecordMissHandler(fx.auth, fx.repo, fx.ledger, fx.notifier, nil).WithClock(fx.clock)
	done := NewRecordDoneHandler(fx.auth, fx.repo, fx.ledger, nil).WithClock(fx.clock)

	_, err := miss.Handle(context.Background(), RecordMissCommand{ActorID: leaderID, TargetID: targetID})
	require.NoError(t, err)

	res, err := done.Handle(context.Background(), RecordDoneCommand{ActorID: leaderID, TargetID: targetID})
	require.NoError(t, err)

	assert.Equal(t, 0, res.Record.ConsecutiveMisses)
	assert.Equal(t, fx.ledger.Unit(), res.Record.Outstanding)
	assert.Equal(t, penalty.StateOwing, res.State)
}

// ─────────────────────────────────────────────────────────────────────────────
// payment
// ─────────────────────────────────────────────────────────────────────────────

func TestPayPenalty_AppliesAndRejects(t *testing.T) {
	fx := newPenaltyFixture(t)
	miss := NewRecordMissHandler(fx.auth, fx.repo, fx.ledger, fx.notifier, nil).WithClock(fx.clock)
	pay := NewPayPenaltyHandler(fx.auth, fx.repo, fx.ledger, nil).WithClock(fx.clock)

	_, err := miss.Handle(context.Background(), RecordMissCommand{ActorID: leaderID, TargetID: targetID})
	require.NoError(t, err)
	unit := fx.ledger.Unit()

	// Overpayment far beyond tolerance is rejected with no state change.
	_, err = pay.Handle(context.Background(), PayPenaltyCommand{
		ActorID: leaderID, TargetID: targetID, Amount: unit * 2,
	})
	assert.ErrorIs(t, err, penalty.ErrPaymentExceedsBalance)
	savedBefore := fx.repo.saved

	res, err := pay.Handle(context.Background(), PayPenaltyCommand{
		ActorID: leaderID, TargetID: targetID, Amount: unit,
	})
	require.NoError(t, err)
	assert.Equal(t, unit, res.Applied)
	assert.Equal(t, penalty.Money(0), res.Record.Outstanding)
	assert.Equal(t, savedBefore+1, fx.repo.saved)
}

func TestPayPenalty_ValidatesAmount(t *testing.T) {
	fx := newPenaltyFixture(t)
	pay := NewPayPenaltyHandler(fx.auth, fx.repo, fx.ledger, nil).WithClock(fx.clock)

	_, err := pay.Handle(context.Background(), PayPenaltyCommand{
		ActorID: leaderID, TargetID: targetID, Amount: 0,
	})
	assert.ErrorIs(t, err, penalty.ErrNonPositiveAmount)
}

// ─────────────────────────────────────────────────────────────────────────────
// exception
// ─────────────────────────────────────────────────────────────────────────────

func TestRequestException_RecordsAndNotifies(t *testing.T) {
	fx := newPenaltyFixture(t)
	h := NewRequestExceptionHandler(fx.auth, fx.repo, fx.ledger, fx.notifier, nil).WithClock(fx.clock)

	rec, err := h.Handle(context.Background(), RequestExceptionCommand{
		ActorID: leaderID, TargetID: targetID, TargetUsername: "rahul",
		Reason: "travelling for a family event",
	})

	require.NoError(t, err)
	assert.Equal(t, penalty.Money(0), rec.Outstanding)
	require.Len(t, rec.History, 1)
	assert.Equal(t, penalty.EventException, rec.History[0].Type)
	assert.Equal(t, []string{"travelling for a family event"}, fx.notifier.exceptions)
}

func TestRequestException_EmptyReasonRejected(t *testing.T) {
	fx := newPenaltyFixture(t)
	h := NewRequestExceptionHandler(fx.auth, fx.repo, fx.ledger, fx.notifier, nil).WithClock(fx.clock)

	_, err := h.Handle(context.Background(), RequestExceptionCommand{
		ActorID: leaderID, TargetID: targetID, Reason: "  ",
	})

	assert.ErrorIs(t, err, penalty.ErrEmptyReason)
	assert.Empty(t, fx.notifier.exceptions)
}
