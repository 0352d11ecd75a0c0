package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayaka-hub/ayaka-learning-bot/internal/domain/penalty"
	"github.com/ayaka-hub/ayaka-learning-bot/internal/domain/progress"
)

type stubPenaltyRepo struct {
	rec *penalty.Record
}

func (s *stubPenaltyRepo) Get(_ context.Context, id int64) (*penalty.Record, error) {
	if s.rec == nil || s.rec.TelegramID != id {
		return nil, penalty.ErrNotTracked
	}
	return s.rec, nil
}

func (s *stubPenaltyRepo) GetOrCreate(_ context.Context, id int64, username string) (*penalty.Record, error) {
	return penalty.NewRecord(id, username), nil
}

func (s *stubPenaltyRepo) Save(_ context.Context, rec *penalty.Record) error {
	s.rec = rec
	return nil
}

func (s *stubPenaltyRepo) GetAll(_ context.Context) ([]*penalty.Record, error) {
	if s.rec == nil {
		return nil, nil
	}
	return []*penalty.Record{s.rec}, nil
}

type stubProgressRepo struct {
	rec *progress.Record
}

func (s *stubProgressRepo) Get(_ context.Context, id int64) (*progress.Record, error) {
	if s.rec == nil {
		return nil, progress.ErrNotFound
	}
	return s.rec, nil
}

func (s *stubProgressRepo) GetOrDefault(_ context.Context, id int64) (*progress.Record, error) {
	if s.rec == nil {
		return progress.NewRecord(id), nil
	}
	return s.rec, nil
}

func (s *stubProgressRepo) Save(_ context.Context, rec *progress.Record) error {
	s.rec = rec
	return nil
}

func (s *stubProgressRepo) Delete(_ context.Context, id int64) error {
	s.rec = nil
	return nil
}

func TestPenaltyStatus_Untracked(t *testing.T) {
	cfg := penalty.DefaultConfig()
	cfg.Location = time.UTC
	h := NewPenaltyStatusHandler(&stubPenaltyRepo{}, penalty.NewLedger(cfg))

	view, err := h.Handle(context.Background(), 42)

	require.NoError(t, err)
	assert.False(t, view.Tracked)
	assert.Equal(t, penalty.StateClear, view.State)
}

func TestPenaltyStatus_TrackedWithHistoryTail(t *testing.T) {
	cfg := penalty.DefaultConfig()
	cfg.Location = time.UTC
	ledger := penalty.NewLedger(cfg)
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	rec := penalty.NewRecord(42, "rahul")
	ledger.RecordMiss(rec, now)
	ledger.RecordDone(rec, now)

	h := NewPenaltyStatusHandler(&stubPenaltyRepo{rec: rec}, ledger)
	view, err := h.Handle(context.Background(), 42)

	require.NoError(t, err)
	assert.True(t, view.Tracked)
	assert.Equal(t, penalty.StateOwing, view.State)
	assert.Equal(t, rec.Outstanding, view.Outstanding)
	require.Len(t, view.RecentHistory, 2)
	// Newest first.
	assert.Equal(t, penalty.EventDone, view.RecentHistory[0].Type)
	assert.Equal(t, penalty.EventMiss, view.RecentHistory[1].Type)
}

func TestGetProgress_DefaultView(t *testing.T) {
	h := NewGetProgressHandler(&stubProgressRepo{}, 6)

	view, err := h.Handle(context.Background(), 42)

	require.NoError(t, err)
	assert.Empty(t, view.CompletedModules)
	assert.Equal(t, 6, view.TotalModules)
	assert.Equal(t, 0, view.OverallScore)
	assert.Equal(t, progress.SkillBeginner, view.SkillLevel)
}

func TestGetProgress_ComputedScore(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	rec := progress.NewRecord(42)
	require.NoError(t, rec.CompleteModule("crypto_basics", now))
	require.NoError(t, rec.CompleteModule("stocks_basics", now))

	h := NewGetProgressHandler(&stubProgressRepo{rec: rec}, 6)
	view, err := h.Handle(context.Background(), 42)

	require.NoError(t, err)
	assert.Equal(t, []string{"crypto_basics", "stocks_basics"}, view.CompletedModules)
	assert.Equal(t, 33, view.OverallScore)
	assert.Equal(t, 1, view.StreakCount)
}
