// Package notify posts penalty announcements to the group chat.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ayaka-hub/ayaka-learning-bot/internal/domain/penalty"
	"github.com/ayaka-hub/ayaka-learning-bot/internal/infrastructure/external/telegram"
)

// Sender is the outward-send surface the announcer needs.
type Sender interface {
	SendMarkdown(ctx context.Context, chatID int64, markdown string) (*telegram.Message, error)
}

// GroupAnnouncer posts donation and exception announcements to one
// chat. Announcements are best effort; a failed send is logged and
// dropped, never retried, and never fails the command that caused it.
type GroupAnnouncer struct {
	sender Sender
	chatID int64
	logger *slog.Logger
}

// NewGroupAnnouncer creates the announcer for the given chat.
func NewGroupAnnouncer(sender Sender, chatID int64, logger *slog.Logger) *GroupAnnouncer {
	if logger == nil {
		logger = slog.Default()
	}
	return &GroupAnnouncer{sender: sender, chatID: chatID, logger: logger}
}

// NotifyDonation announces an escalated penalty written off as a
// donation.
func (a *GroupAnnouncer) NotifyDonation(ctx context.Context, targetName string, amount penalty.Money) {
	text := fmt.Sprintf(
		"🫀 **Donation alert!**\n\n%s's penalty of %s has been donated to a local foundation in their name. Let's get back on track! 💪",
		targetName, amount.Rupees(),
	)
	if _, err := a.sender.SendMarkdown(ctx, a.chatID, text); err != nil {
		a.logger.Warn("donation announcement failed", "target", targetName, "error", err)
	}
}

// NotifyException announces a recorded exception so the group knows the
// miss was excused.
func (a *GroupAnnouncer) NotifyException(ctx context.Context, targetName, reason string) {
	text := fmt.Sprintf(
		"📧 **Exception recorded** for %s.\nReason: %s",
		targetName, reason,
	)
	if _, err := a.sender.SendMarkdown(ctx, a.chatID, text); err != nil {
		a.logger.Warn("exception announcement failed", "target", targetName, "error", err)
	}
}
