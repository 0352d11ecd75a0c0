// Package presenter formats application views for Telegram display.
// Presenters turn read models and command results into Markdown text;
// they never touch repositories or the Telegram client.
package presenter

import (
	"fmt"
	"strings"

	"github.com/ayaka-hub/ayaka-learning-bot/internal/application/command"
	"github.com/ayaka-hub/ayaka-learning-bot/internal/application/query"
	"github.com/ayaka-hub/ayaka-learning-bot/internal/domain/penalty"
	"github.com/ayaka-hub/ayaka-learning-bot/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// PENALTY PRESENTER
// Renders ledger state the way the group is used to reading it: rupee
// amounts, miss streaks, and the donation warning.
// ══════════════════════════════════════════════════════════════════════════════

// PenaltyPresenter formats penalty ledger views and command results.
type PenaltyPresenter struct{}

// NewPenaltyPresenter creates the presenter.
func NewPenaltyPresenter() *PenaltyPresenter {
	return &PenaltyPresenter{}
}

// FormatStatus renders the full status card for a tracked member.
func (p *PenaltyPresenter) FormatStatus(view *query.PenaltyStatusView) string {
	if !view.Tracked {
		return "📊 No penalties recorded yet. Keep doing the work!"
	}

	total := view.Outstanding + view.PaidTotal + view.DonatedTotal

	var sb strings.Builder
	name := strings.TrimPrefix(view.Username, "@")
	if name == "" {
		name = "Member"
	}
	fmt.Fprintf(&sb, "📊 **%s - Penalty Status**\n\n", name)
	fmt.Fprintf(&sb, "💰 Total Penalty: %s\n", total.Rupees())
	fmt.Fprintf(&sb, "✅ Paid Amount: %s\n", view.PaidTotal.Rupees())
	fmt.Fprintf(&sb, "⏳ Pending: %s\n\n", view.Outstanding.Rupees())
	if view.LastMissDate.IsZero() {
		fmt.Fprintf(&sb, "📅 Missed Days: %d\n", view.MissedDays)
	} else {
		fmt.Fprintf(&sb, "📅 Missed Days: %d (last %s)\n",
			view.MissedDays, timeutil.FormatRelative(view.LastMissDate))
	}
	fmt.Fprintf(&sb, "🔄 Consecutive Misses: %d\n", view.ConsecutiveMisses)
	fmt.Fprintf(&sb, "🫀 Donated to Foundation: %s\n", view.DonatedTotal.Rupees())

	if view.Outstanding > 0 {
		daily := penalty.FromRupees(float64(view.Outstanding) / 100 * view.DailyRatePercent / 100)
		fmt.Fprintf(&sb, "\n⚠️ Interest (%.0f%%/day): %s if not paid soon!\n", view.DailyRatePercent, daily.Rupees())
	}

	if len(view.RecentHistory) > 0 {
		sb.WriteString("\n🧾 **Recent Activity:**\n")
		for _, entry := range view.RecentHistory {
			fmt.Fprintf(&sb, "• %s %s", timeutil.FormatIndia(entry.Date, timeutil.FormatShortDate), formatEvent(entry))
			sb.WriteString("\n")
		}
	}

	sb.WriteString("\nHave a valid reason? Ask the leader to record an exception.")
	return sb.String()
}

func formatEvent(entry penalty.HistoryEntry) string {
	switch entry.Type {
	case penalty.EventMiss:
		return fmt.Sprintf("❌ miss (%s)", entry.Amount.Rupees())
	case penalty.EventDone:
		return "✅ work done"
	case penalty.EventPayment:
		return fmt.Sprintf("💳 payment (%s)", entry.Amount.Rupees())
	case penalty.EventInterest:
		return fmt.Sprintf("📈 interest (%s)", entry.Amount.Rupees())
	case penalty.EventException:
		if entry.Note != "" {
			return "📧 exception: " + entry.Note
		}
		return "📧 exception"
	case penalty.EventDonation:
		return fmt.Sprintf("🫀 donated (%s)", entry.Amount.Rupees())
	default:
		return string(entry.Type)
	}
}

// FormatMissResult renders the outcome of a recorded miss.
func (p *PenaltyPresenter) FormatMissResult(res *command.RecordMissResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "❌ %s penalty added!\n", res.Charged.Rupees())
	if res.Interest > 0 {
		fmt.Fprintf(&sb, "📈 Interest accrued: %s\n", res.Interest.Rupees())
	}

	if res.Escalated {
		fmt.Fprintf(&sb,
			"\n🫀 Penalty of %s donated to local foundation with your name!\nLet's get back on track!",
			res.Donated.Rupees())
		return sb.String()
	}

	fmt.Fprintf(&sb, "Total pending: %s", res.Record.Outstanding.Rupees())
	return sb.String()
}

// FormatDoneResult renders the outcome of recording completed work.
func (p *PenaltyPresenter) FormatDoneResult(res *command.RecordDoneResult) string {
	if res.Record.Outstanding == 0 {
		return "✅ Work recorded! You're all clear, keep it up! 🎉"
	}
	return fmt.Sprintf(
		"✅ Work recorded! The miss streak is broken.\nStill pending: %s",
		res.Record.Outstanding.Rupees())
}

// FormatPaymentResult renders the outcome of a payment.
func (p *PenaltyPresenter) FormatPaymentResult(res *command.PayPenaltyResult) string {
	if res.Record.Outstanding == 0 {
		return fmt.Sprintf(
			"✅ Penalty fully paid! %s received.\nYou're free to go! 🎉",
			res.Applied.Rupees())
	}
	return fmt.Sprintf(
		"✅ Payment of %s recorded!\nRemaining: %s",
		res.Applied.Rupees(), res.Record.Outstanding.Rupees())
}

// FormatExceptionRecorded acknowledges a leader-granted exception.
func (p *PenaltyPresenter) FormatExceptionRecorded(reason string) string {
	return fmt.Sprintf(
		"📧 Exception recorded: %s\nNo penalty for this one. Take care!",
		reason)
}

// FormatRecoveryTips returns the standing advice for members in penalty.
func (p *PenaltyPresenter) FormatRecoveryTips() string {
	return `🎯 **How to Recover from Penalties** 🎯

1. ✅ **Maintain Daily Progress**: Complete your tasks on time
2. 🔄 **Consistent Work**: Don't skip more than allowed days
3. 💳 **Pay Penalties**: Settle pending amounts to avoid interest
4. 📧 **Report Issues**: Tell the leader about valid exceptions
5. 🏃 **Speed Recovery**: More consistent days = faster penalty reduction

💡 Pro Tip: Better to work daily than pay penalties! 😄

Remember: after too many skips without payment, the pending amount gets donated to a local foundation with your name!`
}
