// Package query contains read operations (CQRS - Queries).
// Queries never mutate state; they load documents and shape them into
// views the interface layer can render directly.
package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ayaka-hub/ayaka-learning-bot/internal/domain/penalty"
)

// ══════════════════════════════════════════════════════════════════════════════
// PENALTY STATUS QUERY
// ══════════════════════════════════════════════════════════════════════════════

// PenaltyStatusView is the read model for the status command.
type PenaltyStatusView struct {
	Tracked           bool
	Username          string
	State             penalty.State
	Outstanding       penalty.Money
	PaidTotal         penalty.Money
	DonatedTotal      penalty.Money
	ConsecutiveMisses int
	MissedDays        int
	LastMissDate      time.Time

	// DailyRatePercent is the interest rate the status warning quotes.
	DailyRatePercent float64

	// RecentHistory holds the newest entries first, bounded.
	RecentHistory []penalty.HistoryEntry
}

// historyTail bounds how much history the status view carries.
const historyTail = 10

// PenaltyStatusHandler answers the status query.
type PenaltyStatusHandler struct {
	repo   penalty.Repository
	ledger *penalty.Ledger
}

// NewPenaltyStatusHandler creates the handler.
func NewPenaltyStatusHandler(repo penalty.Repository, ledger *penalty.Ledger) *PenaltyStatusHandler {
	return &PenaltyStatusHandler{repo: repo, ledger: ledger}
}

// Handle returns the current view for the tracked member. An untracked
// identity yields a view with Tracked=false, not an error.
func (h *PenaltyStatusHandler) Handle(ctx context.Context, telegramID int64) (*PenaltyStatusView, error) {
	rec, err := h.repo.Get(ctx, telegramID)
	if err != nil {
		if errors.Is(err, penalty.ErrNotTracked) {
			return &PenaltyStatusView{Tracked: false, State: penalty.StateClear}, nil
		}
		return nil, fmt.Errorf("failed to load penalty record: %w", err)
	}

	view := &PenaltyStatusView{
		Tracked:           true,
		Username:          rec.Username,
		State:             h.ledger.State(rec),
		Outstanding:       rec.Outstanding,
		PaidTotal:         rec.PaidTotal,
		DonatedTotal:      rec.DonatedTotal,
		ConsecutiveMisses: rec.ConsecutiveMisses,
		MissedDays:        rec.MissedDays,
		LastMissDate:      rec.LastMissDate,
		DailyRatePercent:  h.ledger.DailyRatePercent(),
	}

	for i := len(rec.History) - 1; i >= 0 && len(view.RecentHistory) < historyTail; i-- {
		view.RecentHistory = append(view.RecentHistory, rec.History[i])
	}
	return view, nil
}
