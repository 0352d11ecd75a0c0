package command

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ayaka-hub/ayaka-learning-bot/internal/application/authz"
	"github.com/ayaka-hub/ayaka-learning-bot/internal/domain/penalty"
	"github.com/ayaka-hub/ayaka-learning-bot/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// PAY PENALTY COMMAND
// Applies a payment against the outstanding balance. Payments beyond the
// balance (outside the rounding tolerance) are rejected with no change.
// ══════════════════════════════════════════════════════════════════════════════

// PayPenaltyCommand applies a payment for the tracked member.
type PayPenaltyCommand struct {
	ActorID        int64
	TargetID       int64
	TargetUsername string

	// Amount is the payment in minor units.
	Amount penalty.Money
}

// Validate validates the command.
func (c PayPenaltyCommand) Validate() error {
	if c.ActorID <= 0 || c.TargetID <= 0 {
		return fmt.Errorf("pay_penalty: actor and target ids are required")
	}
	if c.Amount <= 0 {
		return fmt.Errorf("%w: %w", penalty.ErrNonPositiveAmount, shared.ErrValidation)
	}
	return nil
}

// PayPenaltyResult is what the interface layer renders.
type PayPenaltyResult struct {
	Record  *penalty.Record
	Applied penalty.Money
}

// PayPenaltyHandler handles PayPenaltyCommand.
type PayPenaltyHandler struct {
	auth   *authz.Service
	repo   penalty.Repository
	ledger *penalty.Ledger
	logger *slog.Logger
	now    func() time.Time
}

// NewPayPenaltyHandler creates the handler.
func NewPayPenaltyHandler(auth *authz.Service, repo penalty.Repository, ledger *penalty.Ledger, logger *slog.Logger) *PayPenaltyHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PayPenaltyHandler{
		auth:   auth,
		repo:   repo,
		ledger: ledger,
		logger: logger,
		now:    time.Now,
	}
}

// WithClock overrides the time source, for tests.
func (h *PayPenaltyHandler) WithClock(now func() time.Time) *PayPenaltyHandler {
	h.now = now
	return h
}

// Handle applies the payment. A rejected payment leaves the record
// untouched and nothing is saved.
func (h *PayPenaltyHandler) Handle(ctx context.Context, cmd PayPenaltyCommand) (*PayPenaltyResult, error) {
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

	applied, err := h.ledger.RecordPayment(rec, cmd.Amount, h.now())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", err, shared.ErrValidation)
	}

	if err := h.repo.Save(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to save penalty record: %w", err)
	}

	h.logger.Info("penalty payment applied",
		"telegram_id", cmd.TargetID,
		"applied", applied.Rupees(),
		"outstanding", rec.Outstanding.Rupees(),
	)
	return &PayPenaltyResult{Record: rec, Applied: applied}, nil
}
