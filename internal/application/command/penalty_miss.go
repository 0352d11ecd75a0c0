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
// RECORD MISS COMMAND
// Charges one penalty unit for a missed daily task. A run of unresolved
// misses beyond the threshold escalates: the balance is written off as a
// donation and a notification is fired.
// ══════════════════════════════════════════════════════════════════════════════

// DonationNotifier announces an escalation. Implementations are
// fire-and-forget; failures are logged, never retried.
type DonationNotifier interface {
	NotifyDonation(ctx context.Context, targetName string, amount penalty.Money)
}

// RecordMissCommand records one missed day for the tracked member.
type RecordMissCommand struct {
	// ActorID is who issued the command; must be the leader.
	ActorID int64

	// TargetID is the tracked member being charged.
	TargetID int64

	// TargetUsername seeds the record on first use.
	TargetUsername string
}

// Validate validates the command.
func (c RecordMissCommand) Validate() error {
	if c.ActorID <= 0 || c.TargetID <= 0 {
		return fmt.Errorf("record_miss: actor and target ids are required")
	}
	return nil
}

// RecordMissResult is what the interface layer renders.
type RecordMissResult struct {
	Record    *penalty.Record
	Charged   penalty.Money
	Interest  penalty.Money
	Escalated bool
	Donated   penalty.Money
}

// RecordMissHandler handles RecordMissCommand.
type RecordMissHandler struct {
	auth     *authz.Service
	repo     penalty.Repository
	ledger   *penalty.Ledger
	notifier DonationNotifier
	logger   *slog.Logger
	now      func() time.Time
}

// NewRecordMissHandler creates the handler. notifier may be nil when no
// donation channel is configured.
func NewRecordMissHandler(auth *authz.Service, repo penalty.Repository, ledger *penalty.Ledger, notifier DonationNotifier, logger *slog.Logger) *RecordMissHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecordMissHandler{
		auth:     auth,
		repo:     repo,
		ledger:   ledger,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock overrides the time source, for tests.
func (h *RecordMissHandler) WithClock(now func() time.Time) *RecordMissHandler {
	h.now = now
	return h
}

// Handle records the miss. The save happens before the donation
// notification so a notification failure can never lose ledger state.
func (h *RecordMissHandler) Handle(ctx context.Context, cmd RecordMissCommand) (*RecordMissResult, error) {
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

	miss := h.ledger.RecordMiss(rec, h.now())

	if err := h.repo.Save(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to save penalty record: %w", err)
	}

	result := &RecordMissResult{
		Record:    rec,
		Charged:   miss.Charged,
		Interest:  miss.InterestAccrued,
		Escalated: miss.Escalated,
		Donated:   miss.Donated,
	}

	if miss.Escalated {
		h.logger.Warn("penalty escalated to donation",
			"telegram_id", cmd.TargetID,
			"donated", miss.Donated.Rupees(),
			"consecutive_misses", rec.ConsecutiveMisses,
		)
		if h.notifier != nil {
			h.notifier.NotifyDonation(ctx, rec.Username, miss.Donated)
		}
	}

	return result, nil
}
