package handler

import (
	tgclient "github.com/ayaka-hub/ayaka-learning-bot/internal/infrastructure/external/telegram"
	"github.com/ayaka-hub/ayaka-learning-bot/internal/domain/user"
)

// Context carries everything a command handler needs for one invocation.
// It mirrors the router's CommandContext field for field so the bot can
// convert between the two; keeping a separate type avoids an import
// cycle between the router and this package.
type Context struct {
	// Sender is the directory record of the issuing identity.
	Sender *user.Record

	// ChatID is where the reply goes.
	ChatID int64

	// MessageID is the inbound message, for reply-to sends.
	MessageID int64

	// Args is the trailing free text after the command word.
	Args string

	// Message is the raw inbound message.
	Message *tgclient.Message

	// Client sends the response.
	Client *tgclient.Client
}
