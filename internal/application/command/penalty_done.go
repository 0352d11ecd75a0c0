package command

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ayaka-hub/ayaka-learning-bot/internal/application/authz"
	"github.com/ayaka-hub/ayaka-learning-bot/internal/domain/penalty"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECORD DONE COMMAND
// Marks the daily task as completed: the unresolved miss run resets,
// the balance is untouched.
// ══════════════════════════════════════════════════════════════════════════════

// RecordDoneCommand records a completed day for the tracked member.
type RecordDoneCommand struct {
	ActorID        int64
	TargetID       int64
	TargetUsername string
}

// Validate validates the command.
func (c RecordDoneCommand) Validate() error {
	if c.ActorID <= 0 || c.TargetID <= 0 {
		return fmt.Errorf("record_done: actor and target ids are required")
	}
	return nil
}

// RecordDoneResult is what the interface layer renders.
type RecordDoneResult struct {
	Record *penalty.Record
	State  penalty.State
}

// RecordDoneHandler handles RecordDoneCommand.
type RecordDoneHandler struct {
	auth   *authz.Service
	repo   penalty.Repository
	ledger *penalty.Ledger
	logger *slog.Logger
	now    func() time.Time
}

// NewRecordDoneHandler creates the handler.
func NewRecordDoneHandler(auth *authz.Service, repo penalty.Repository, ledger *penalty.Ledger, logger *slog.Logger) *RecordDoneHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecordDoneHandler{
		auth:   auth,
		repo:   repo,
		ledger: ledger,
		logger: logger,
		now:    time.Now,
	}
}

// WithClock overrides the time source, for tests.
func (h *RecordDoneHandler) WithClock(now func() time.Time) *RecordDoneHandler {
	h.now = now
	return h
}

// Handle records the completed day.
func (h *RecordDoneHandler) Handle(ctx context.Context, cmd RecordDoneCommand) (*RecordDoneResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	if _, err := h.auth.RequireLeader(ctx, cmd.ActorID); err != nil {
		return nil, err
	}

	rec, err := h.repo.GetOrCreate(ctx, cmd.TargetID, cmd.TargetUsername)
	if err != nil {
		return nil, fmt.Errorf("failed to load penalty record: %w", err)
	}

	state := h.ledger.RecordDone(rec, h.now())

	if err := h.repo.Save(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to save penalty record: %w", err)
	}

	h.logger.Info("daily task done recorded",
		"telegram_id", cmd.TargetID, "state", string(state))
	return &RecordDoneResult{Record: rec, State: state}, nil
}
