package command

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ayaka-hub/ayaka-learning-bot/internal/application/authz"
	"github.com/ayaka-hub/ayaka-learning-bot/internal/domain/penalty"
	"github.com/ayaka-hub/ayaka-learning-bot/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// REQUEST EXCEPTION COMMAND
// Records an exception request in the history (no balance change) and
// notifies the admin contact for a manual decision.
// ══════════════════════════════════════════════════════════════════════════════

// ExceptionNotifier forwards an exception request to the admin contact.
// Fire-and-forget, same as donation notifications.
type ExceptionNotifier interface {
	NotifyException(ctx context.Context, targetName, reason string)
}

// RequestExceptionCommand files an exception request.
type RequestExceptionCommand struct {
	ActorID        int64
	TargetID       int64
	TargetUsername string
	Reason         string
}

// Validate validates the command.
func (c RequestExceptionCommand) Validate() error {
	if c.ActorID <= 0 || c.TargetID <= 0 {
		return fmt.Errorf("request_exception: actor and target ids are required")
	}
	return nil
}

// RequestExceptionHandler handles RequestExceptionCommand.
type RequestExceptionHandler struct {
	auth     *authz.Service
	repo     penalty.Repository
	notifier ExceptionNotifier
	ledger   *penalty.Ledger
	logger   *slog.Logger
	now      func() time.Time
}

// NewRequestExceptionHandler creates the handler. notifier may be nil.
func NewRequestExceptionHandler(auth *authz.Service, repo penalty.Repository, ledger *penalty.Ledger, notifier ExceptionNotifier, logger *slog.Logger) *RequestExceptionHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RequestExceptionHandler{
		auth:     auth,
		repo:     repo,
		ledger:   ledger,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock overrides the time source, for tests.
func (h *RequestExceptionHandler) WithClock(now func() time.Time) *RequestExceptionHandler {
	h.now = now
	return h
}

// Handle files the exception request.
func (h *RequestExceptionHandler) Handle(ctx context.Context, cmd RequestExceptionCommand) (*penalty.Record, error) {
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

	reason := strings.TrimSpace(cmd.Reason)
	if err := h.ledger.RequestException(rec, reason, h.now()); err != nil {
		return nil, fmt.Errorf("%w: %w", err, shared.ErrValidation)
	}

	if err := h.repo.Save(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to save penalty record: %w", err)
	}

	h.logger.Info("exception requested",
		"telegram_id", cmd.TargetID, "reason", reason)
	if h.notifier != nil {
		h.notifier.NotifyException(ctx, rec.Username, reason)
	}
	return rec, nil
}
