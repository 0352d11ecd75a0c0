package handler

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ayaka-hub/ayaka-learning-bot/internal/application/authz"
)

// ══════════════════════════════════════════════════════════════════════════════
// TRIBUTE HANDLER
// Leader-gated toggle for the daily tribute announcement. The toggle is
// in-process only; a restart brings the job back in its default state.
// ══════════════════════════════════════════════════════════════════════════════

// JobToggler enables and disables a registered scheduler job by name.
type JobToggler interface {
	EnableJob(jobName string) error
	DisableJob(jobName string) error
}

// TributeHandler handles /start_tribute and /stop_tribute.
type TributeHandler struct {
	auth    *authz.Service
	jobs    JobToggler
	jobName string
	logger  *slog.Logger
}

// NewTributeHandler creates a new TributeHandler.
func NewTributeHandler(auth *authz.Service, jobs JobToggler, jobName string, logger *slog.Logger) *TributeHandler {
	return &TributeHandler{auth: auth, jobs: jobs, jobName: jobName, logger: logger}
}

// Start processes /start_tribute.
func (h *TributeHandler) Start(ctx context.Context, cmdCtx Context) error {
	return h.toggle(ctx, cmdCtx, true)
}

// Stop processes /stop_tribute.
func (h *TributeHandler) Stop(ctx context.Context, cmdCtx Context) error {
	return h.toggle(ctx, cmdCtx, false)
}

func (h *TributeHandler) toggle(ctx context.Context, cmdCtx Context, enable bool) error {
	if _, err := h.auth.RequireLeader(ctx, int64(cmdCtx.Sender.TelegramID)); err != nil {
		if errors.Is(err, authz.ErrNotLeader) {
			_, sendErr := cmdCtx.Client.SendText(ctx, cmdCtx.ChatID,
				"🔒 Only the team leader can toggle the daily tribute.")
			return sendErr
		}
		return err
	}

	var err error
	var reply string
	if enable {
		err = h.jobs.EnableJob(h.jobName)
		reply = "🌅 Daily tribute is ON. See you tomorrow morning!"
	} else {
		err = h.jobs.DisableJob(h.jobName)
		reply = "🌙 Daily tribute is OFF."
	}
	if err != nil {
		h.logger.Error("failed to toggle tribute job", "enable", enable, "error", err)
		_, sendErr := cmdCtx.Client.SendText(ctx, cmdCtx.ChatID,
			"😔 Couldn't toggle the tribute right now.")
		return sendErr
	}

	_, sendErr := cmdCtx.Client.SendText(ctx, cmdCtx.ChatID, reply)
	return sendErr
}
