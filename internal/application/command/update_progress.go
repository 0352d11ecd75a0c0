package command

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ayaka-hub/ayaka-learning-bot/internal/domain/progress"
	"github.com/ayaka-hub/ayaka-learning-bot/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROGRESS COMMANDS
// Module completion, activity recording, and the explicit reset. These
// are self-service: any user may mutate their own progress.
// ══════════════════════════════════════════════════════════════════════════════

// ModuleCatalog answers whether a module id exists. The static content
// library implements this.
type ModuleCatalog interface {
	HasModule(id string) bool
}

// CompleteModuleCommand marks one learning module as finished.
type CompleteModuleCommand struct {
	TelegramID int64
	ModuleID   string
}

// CompleteModuleResult is what the interface layer renders.
type CompleteModuleResult struct {
	Record         *progress.Record
	AlreadyDone    bool
	CompletedCount int
}

// ProgressHandler handles all progress mutations.
type ProgressHandler struct {
	repo    progress.Repository
	catalog ModuleCatalog
	logger  *slog.Logger
	now     func() time.Time
}

// NewProgressHandler creates the handler.
func NewProgressHandler(repo progress.Repository, catalog ModuleCatalog, logger *slog.Logger) *ProgressHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProgressHandler{
		repo:    repo,
		catalog: catalog,
		logger:  logger,
		now:     time.Now,
	}
}

// WithClock overrides the time source, for tests.
func (h *ProgressHandler) WithClock(now func() time.Time) *ProgressHandler {
	h.now = now
	return h
}

// CompleteModule marks the module done and touches the streak.
func (h *ProgressHandler) CompleteModule(ctx context.Context, cmd CompleteModuleCommand) (*CompleteModuleResult, error) {
	if cmd.TelegramID <= 0 {
		return nil, fmt.Errorf("complete_module: telegram id is required")
	}
	if !h.catalog.HasModule(cmd.ModuleID) {
		return nil, fmt.Errorf("unknown module %q: %w", cmd.ModuleID, shared.ErrValidation)
	}

	rec, err := h.repo.GetOrDefault(ctx, cmd.TelegramID)
	if err != nil {
		return nil, fmt.Errorf("failed to load progress: %w", err)
	}

	alreadyDone := rec.HasCompleted(progress.ModuleID(cmd.ModuleID))
	if !alreadyDone {
		if err := rec.CompleteModule(progress.ModuleID(cmd.ModuleID), h.now()); err != nil {
			return nil, err
		}
		if err := h.repo.Save(ctx, rec); err != nil {
			return nil, fmt.Errorf("failed to save progress: %w", err)
		}
		h.logger.Info("module completed",
			"telegram_id", cmd.TelegramID, "module", cmd.ModuleID)
	}

	return &CompleteModuleResult{
		Record:         rec,
		AlreadyDone:    alreadyDone,
		CompletedCount: len(rec.CompletedModules),
	}, nil
}

// RecordQuiz notes a quiz attempt and touches the streak.
func (h *ProgressHandler) RecordQuiz(ctx context.Context, telegramID int64) (*progress.Record, error) {
	rec, err := h.repo.GetOrDefault(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("failed to load progress: %w", err)
	}
	rec.RecordQuiz(h.now())
	if err := h.repo.Save(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to save progress: %w", err)
	}
	return rec, nil
}

// RecordTopic notes a discussed topic and touches the streak. Used by
// the conversation responder so chatting keeps the streak alive.
func (h *ProgressHandler) RecordTopic(ctx context.Context, telegramID int64, topic string) error {
	rec, err := h.repo.GetOrDefault(ctx, telegramID)
	if err != nil {
		return fmt.Errorf("failed to load progress: %w", err)
	}
	rec.RecordTopic(topic, h.now())
	if err := h.repo.Save(ctx, rec); err != nil {
		return fmt.Errorf("failed to save progress: %w", err)
	}
	return nil
}

// Reset wipes the record back to defaults on explicit user request.
func (h *ProgressHandler) Reset(ctx context.Context, telegramID int64) error {
	if err := h.repo.Delete(ctx, telegramID); err != nil {
		return fmt.Errorf("failed to reset progress: %w", err)
	}
	h.logger.Info("progress reset", "telegram_id", telegramID)
	return nil
}
