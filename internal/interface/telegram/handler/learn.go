package handler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ayaka-hub/ayaka-learning-bot/internal/application/command"
	"github.com/ayaka-hub/ayaka-learning-bot/internal/application/query"
	"github.com/ayaka-hub/ayaka-learning-bot/internal/content"
	"github.com/ayaka-hub/ayaka-learning-bot/internal/interface/telegram/presenter"
)

// ══════════════════════════════════════════════════════════════════════════════
// LEARN HANDLER
// The educational core: module catalog, module bodies, quizzes, trivia
// and the progress card. Reading a module marks it complete.
// ══════════════════════════════════════════════════════════════════════════════

// LearnHandler handles the learning commands.
type LearnHandler struct {
	progressCmd   *command.ProgressHandler
	progressQuery *query.GetProgressHandler
	library       *content.Library
	presenter     *presenter.ProgressPresenter
	logger        *slog.Logger
}

// NewLearnHandler creates a new LearnHandler.
func NewLearnHandler(
	progressCmd *command.ProgressHandler,
	progressQuery *query.GetProgressHandler,
	library *content.Library,
	logger *slog.Logger,
) *LearnHandler {
	return &LearnHandler{
		progressCmd:   progressCmd,
		progressQuery: progressQuery,
		library:       library,
		presenter:     presenter.NewProgressPresenter(),
		logger:        logger,
	}
}

// Learn processes /learn: the catalog with completion marks.
func (h *LearnHandler) Learn(ctx context.Context, cmdCtx Context) error {
	view, err := h.progressQuery.Handle(ctx, int64(cmdCtx.Sender.TelegramID))
	if err != nil {
		return err
	}

	text := h.presenter.FormatModuleList(content.Modules(), view.CompletedModules)
	_, err = cmdCtx.Client.SendMarkdown(ctx, cmdCtx.ChatID, text)
	return err
}

// Module processes /module_<id>: sends the module body and records
// completion.
func (h *LearnHandler) Module(moduleID string) func(context.Context, Context) error {
	return func(ctx context.Context, cmdCtx Context) error {
		mod, ok := content.ModuleByID(moduleID)
		if !ok {
			_, err := cmdCtx.Client.SendText(ctx, cmdCtx.ChatID,
				"🤔 I don't know that module. Try /learn for the catalog.")
			return err
		}

		res, err := h.progressCmd.CompleteModule(ctx, command.CompleteModuleCommand{
			TelegramID: int64(cmdCtx.Sender.TelegramID),
			ModuleID:   moduleID,
		})
		if err != nil {
			return err
		}

		text := mod.Body
		if res.AlreadyDone {
			text += "\n\n✅ You finished this one before. Revision is never wasted!"
		} else {
			text += fmt.Sprintf("\n\n🎉 Module complete! %d down, keep going!", res.CompletedCount)
		}
		_, err = cmdCtx.Client.SendMarkdown(ctx, cmdCtx.ChatID, text)
		return err
	}
}

// Crypto processes /crypto: the crypto basics module, marked complete.
func (h *LearnHandler) Crypto(ctx context.Context, cmdCtx Context) error {
	return h.sendBasics(ctx, cmdCtx, "crypto_basics", content.CryptoBasics())
}

// Stocks processes /stocks: the stocks basics module, marked complete.
func (h *LearnHandler) Stocks(ctx context.Context, cmdCtx Context) error {
	return h.sendBasics(ctx, cmdCtx, "stocks_basics", content.StocksBasics())
}

func (h *LearnHandler) sendBasics(ctx context.Context, cmdCtx Context, moduleID, body string) error {
	if _, err := h.progressCmd.CompleteModule(ctx, command.CompleteModuleCommand{
		TelegramID: int64(cmdCtx.Sender.TelegramID),
		ModuleID:   moduleID,
	}); err != nil {
		// The lesson still goes out even if progress could not be saved.
		h.logger.Warn("failed to record module completion",
			"module", moduleID, "error", err)
	}
	_, err := cmdCtx.Client.SendMarkdown(ctx, cmdCtx.ChatID, body)
	return err
}

// Quiz processes /quiz: one random knowledge question.
func (h *LearnHandler) Quiz(ctx context.Context, cmdCtx Context) error {
	q := h.library.Quiz()
	if _, err := h.progressCmd.RecordQuiz(ctx, int64(cmdCtx.Sender.TelegramID)); err != nil {
		h.logger.Warn("failed to record quiz", "error", err)
	}

	text := h.presenter.FormatQuestion("🧠 **Quiz Time!**", q)
	_, err := cmdCtx.Client.SendMarkdown(ctx, cmdCtx.ChatID, text)
	return err
}

// Trivia processes /trivia: one random trivia question with the answer.
func (h *LearnHandler) Trivia(ctx context.Context, cmdCtx Context) error {
	q := h.library.Trivia()
	text := h.presenter.FormatQuestion("🎲 **Crypto Trivia!**", q)
	if _, err := cmdCtx.Client.SendMarkdown(ctx, cmdCtx.ChatID, text); err != nil {
		return err
	}
	_, err := cmdCtx.Client.SendText(ctx, cmdCtx.ChatID, h.presenter.FormatAnswerReveal(q))
	return err
}

// Progress processes /progress: the learning progress card.
func (h *LearnHandler) Progress(ctx context.Context, cmdCtx Context) error {
	view, err := h.progressQuery.Handle(ctx, int64(cmdCtx.Sender.TelegramID))
	if err != nil {
		return err
	}

	text := h.presenter.FormatProgress(cmdCtx.Sender.DisplayName, view)
	_, err = cmdCtx.Client.SendMarkdown(ctx, cmdCtx.ChatID, text)
	return err
}

// Reset processes /reset: wipes the sender's learning progress.
func (h *LearnHandler) Reset(ctx context.Context, cmdCtx Context) error {
	if err := h.progressCmd.Reset(ctx, int64(cmdCtx.Sender.TelegramID)); err != nil {
		return err
	}
	_, err := cmdCtx.Client.SendText(ctx, cmdCtx.ChatID,
		"🔄 Your learning progress has been reset. Fresh start, let's go!")
	return err
}
