package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/ayaka-hub/ayaka-learning-bot/internal/application/authz"
	"github.com/ayaka-hub/ayaka-learning-bot/internal/application/command"
	"github.com/ayaka-hub/ayaka-learning-bot/internal/application/query"
	"github.com/ayaka-hub/ayaka-learning-bot/internal/domain/penalty"
	"github.com/ayaka-hub/ayaka-learning-bot/internal/domain/shared"
	"github.com/ayaka-hub/ayaka-learning-bot/internal/interface/telegram/presenter"
)

// ══════════════════════════════════════════════════════════════════════════════
// PENALTY HANDLER
// The accountability commands. Mutations are leader-only and the target
// is resolved from a reply or an explicit @username; status and tips
// are open to everyone.
// ══════════════════════════════════════════════════════════════════════════════

// TargetResolver resolves a mutation target from command input.
type TargetResolver interface {
	// ResolveTarget returns the Telegram ID and username for the
	// member a penalty command addresses.
	ResolveTarget(ctx context.Context, cmdCtx Context) (int64, string, error)
}

// PenaltyHandler handles the penalty ledger commands.
type PenaltyHandler struct {
	miss      *command.RecordMissHandler
	done      *command.RecordDoneHandler
	pay       *command.PayPenaltyHandler
	exception *command.RequestExceptionHandler
	status    *query.PenaltyStatusHandler
	resolver  TargetResolver
	presenter *presenter.PenaltyPresenter
	logger    *slog.Logger
}

// NewPenaltyHandler creates a new PenaltyHandler.
func NewPenaltyHandler(
	miss *command.RecordMissHandler,
	done *command.RecordDoneHandler,
	pay *command.PayPenaltyHandler,
	exception *command.RequestExceptionHandler,
	status *query.PenaltyStatusHandler,
	resolver TargetResolver,
	logger *slog.Logger,
) *PenaltyHandler {
	return &PenaltyHandler{
		miss:      miss,
		done:      done,
		pay:       pay,
		exception: exception,
		status:    status,
		resolver:  resolver,
		presenter: presenter.NewPenaltyPresenter(),
		logger:    logger,
	}
}

// Status processes /penalty_status. With no target it shows the
// sender's own ledger.
func (h *PenaltyHandler) Status(ctx context.Context, cmdCtx Context) error {
	targetID := int64(cmdCtx.Sender.TelegramID)
	if id, _, err := h.resolver.ResolveTarget(ctx, cmdCtx); err == nil {
		targetID = id
	}

	view, err := h.status.Handle(ctx, targetID)
	if err != nil {
		return h.reportError(ctx, cmdCtx, err)
	}
	_, err = cmdCtx.Client.SendMarkdown(ctx, cmdCtx.ChatID, h.presenter.FormatStatus(view))
	return err
}

// Tips processes /penalty_tips.
func (h *PenaltyHandler) Tips(ctx context.Context, cmdCtx Context) error {
	_, err := cmdCtx.Client.SendMarkdown(ctx, cmdCtx.ChatID, h.presenter.FormatRecoveryTips())
	return err
}

// Miss processes /penalty_miss: charges one penalty unit.
func (h *PenaltyHandler) Miss(ctx context.Context, cmdCtx Context) error {
	targetID, username, err := h.resolver.ResolveTarget(ctx, cmdCtx)
	if err != nil {
		return h.reportError(ctx, cmdCtx, err)
	}

	res, err := h.miss.Handle(ctx, command.RecordMissCommand{
		ActorID:        int64(cmdCtx.Sender.TelegramID),
		TargetID:       targetID,
		TargetUsername: username,
	})
	if err != nil {
		return h.reportError(ctx, cmdCtx, err)
	}

	_, err = cmdCtx.Client.SendMarkdown(ctx, cmdCtx.ChatID, h.presenter.FormatMissResult(res))
	return err
}

// Done processes /penalty_done: records completed work.
func (h *PenaltyHandler) Done(ctx context.Context, cmdCtx Context) error {
	targetID, username, err := h.resolver.ResolveTarget(ctx, cmdCtx)
	if err != nil {
		return h.reportError(ctx, cmdCtx, err)
	}

	res, err := h.done.Handle(ctx, command.RecordDoneCommand{
		ActorID:        int64(cmdCtx.Sender.TelegramID),
		TargetID:       targetID,
		TargetUsername: username,
	})
	if err != nil {
		return h.reportError(ctx, cmdCtx, err)
	}

	_, err = cmdCtx.Client.SendMarkdown(ctx, cmdCtx.ChatID, h.presenter.FormatDoneResult(res))
	return err
}

// Pay processes /penalty_pay <amount>.
func (h *PenaltyHandler) Pay(ctx context.Context, cmdCtx Context) error {
	amountArg := lastField(cmdCtx.Args)
	rupees, err := strconv.ParseFloat(strings.TrimPrefix(amountArg, "₹"), 64)
	if err != nil || rupees <= 0 {
		_, sendErr := cmdCtx.Client.SendText(ctx, cmdCtx.ChatID,
			"Usage: /penalty_pay <amount>, e.g. /penalty_pay 100")
		return sendErr
	}

	targetID, username, err := h.resolver.ResolveTarget(ctx, cmdCtx)
	if err != nil {
		return h.reportError(ctx, cmdCtx, err)
	}

	res, err := h.pay.Handle(ctx, command.PayPenaltyCommand{
		ActorID:        int64(cmdCtx.Sender.TelegramID),
		TargetID:       targetID,
		TargetUsername: username,
		Amount:         penalty.FromRupees(rupees),
	})
	if err != nil {
		return h.reportError(ctx, cmdCtx, err)
	}

	_, err = cmdCtx.Client.SendMarkdown(ctx, cmdCtx.ChatID, h.presenter.FormatPaymentResult(res))
	return err
}

// Exception processes /penalty_exception <reason>.
func (h *PenaltyHandler) Exception(ctx context.Context, cmdCtx Context) error {
	reason := strings.TrimSpace(stripMentions(cmdCtx.Args))
	if reason == "" {
		_, err := cmdCtx.Client.SendText(ctx, cmdCtx.ChatID,
			"Usage: /penalty_exception <reason>, e.g. /penalty_exception medical emergency")
		return err
	}

	targetID, username, err := h.resolver.ResolveTarget(ctx, cmdCtx)
	if err != nil {
		return h.reportError(ctx, cmdCtx, err)
	}

	if _, err := h.exception.Handle(ctx, command.RequestExceptionCommand{
		ActorID:        int64(cmdCtx.Sender.TelegramID),
		TargetID:       targetID,
		TargetUsername: username,
		Reason:         reason,
	}); err != nil {
		return h.reportError(ctx, cmdCtx, err)
	}

	_, err = cmdCtx.Client.SendMarkdown(ctx, cmdCtx.ChatID,
		h.presenter.FormatExceptionRecorded(reason))
	return err
}

// reportError maps application errors onto user-readable messages.
// Unexpected errors are passed up after a generic apology.
func (h *PenaltyHandler) reportError(ctx context.Context, cmdCtx Context, err error) error {
	var text string
	switch {
	case errors.Is(err, authz.ErrNotLeader):
		text = "🔒 Only the team leader can do that."
	case errors.Is(err, errNoTarget):
		text = "🤔 Who is this for? Reply to their message or add their @username."
	case errors.Is(err, penalty.ErrPaymentExceedsBalance):
		text = "🤔 That payment is larger than the pending amount. Check /penalty_status first."
	case errors.Is(err, penalty.ErrNonPositiveAmount):
		text = "🤔 The amount has to be positive."
	case errors.Is(err, penalty.ErrEmptyReason):
		text = "🤔 An exception needs a reason."
	case errors.Is(err, shared.ErrCorruptDocument):
		text = "🧨 The penalty ledger looks damaged. No changes were made; please check the data files."
	case errors.Is(err, shared.ErrValidation):
		text = fmt.Sprintf("🤔 %v", err)
	default:
		if _, sendErr := cmdCtx.Client.SendText(ctx, cmdCtx.ChatID,
			"😔 Something went wrong with the penalty ledger. Please try again."); sendErr != nil {
			return sendErr
		}
		return err
	}

	_, sendErr := cmdCtx.Client.SendText(ctx, cmdCtx.ChatID, text)
	return sendErr
}

// stripMentions drops @-prefixed tokens so the remaining text can serve
// as free-form input (e.g. an exception reason).
func stripMentions(s string) string {
	fields := strings.Fields(s)
	kept := fields[:0]
	for _, field := range fields {
		if !strings.HasPrefix(field, "@") {
			kept = append(kept, field)
		}
	}
	return strings.Join(kept, " ")
}

func lastField(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}
