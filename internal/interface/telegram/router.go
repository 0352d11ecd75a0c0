package telegram

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/ayaka-hub/ayaka-learning-bot/internal/domain/user"
	"github.com/ayaka-hub/ayaka-learning-bot/internal/infrastructure/external/telegram"
)

// ══════════════════════════════════════════════════════════════════════════════
// CLASSIFICATION
// Every inbound message lands in exactly one class. Group chatter is the
// only class that is dropped without reaching any handler or the
// generation delegate.
// ══════════════════════════════════════════════════════════════════════════════

// MessageKind is the routing class of one inbound message.
type MessageKind int

const (
	// KindCommand - a /command, in any chat.
	KindCommand MessageKind = iota
	// KindDirect - a non-command message in a private chat; always answered.
	KindDirect
	// KindMention - a group message addressing the bot by name.
	KindMention
	// KindReplyToBot - a group message replying to one of the bot's messages.
	KindReplyToBot
	// KindGroupChatter - any other group message; ignored entirely.
	KindGroupChatter
)

// String returns the kind name for logging.
func (k MessageKind) String() string {
	switch k {
	case KindCommand:
		return "command"
	case KindDirect:
		return "direct"
	case KindMention:
		return "mention"
	case KindReplyToBot:
		return "reply_to_bot"
	case KindGroupChatter:
		return "group_chatter"
	default:
		return "unknown"
	}
}

// Classifier decides the routing class of a message.
type Classifier struct {
	botID    int64
	botNames []string
}

// NewClassifier creates a classifier. botNames are the names the bot
// answers to in group chat, checked case-insensitively.
func NewClassifier(botID int64, botNames []string) *Classifier {
	lowered := make([]string, 0, len(botNames))
	for _, n := range botNames {
		if n = strings.TrimSpace(strings.ToLower(n)); n != "" {
			lowered = append(lowered, n)
		}
	}
	return &Classifier{botID: botID, botNames: lowered}
}

// Classify assigns the message to exactly one routing class.
func (c *Classifier) Classify(msg *telegram.Message, sender *user.Record) MessageKind {
	if telegram.ExtractCommand(msg) != "" {
		return KindCommand
	}
	if telegram.IsPrivateChat(msg) {
		return KindDirect
	}
	if msg.ReplyToMessage != nil && msg.ReplyToMessage.From != nil &&
		msg.ReplyToMessage.From.ID == c.botID {
		return KindReplyToBot
	}
	if c.mentionsBot(msg.Text) {
		return KindMention
	}
	// Known aliases of the sender never make chatter addressable; only
	// the bot's own names do. Everything else in a group is ignored.
	return KindGroupChatter
}

// mentionsBot checks whether the text addresses the bot by any of its
// names.
func (c *Classifier) mentionsBot(text string) bool {
	lowered := strings.ToLower(text)
	for _, name := range c.botNames {
		if strings.Contains(lowered, name) {
			return true
		}
	}
	return false
}

// ══════════════════════════════════════════════════════════════════════════════
// COMMAND ROUTING
// ══════════════════════════════════════════════════════════════════════════════

// CommandContext carries one command invocation to its handler.
type CommandContext struct {
	// Sender is the directory record of the issuing identity.
	Sender *user.Record

	// ChatID is where the reply goes.
	ChatID int64

	// MessageID is the inbound message, for reply-to sends.
	MessageID int64

	// Args is the trailing free text after the command word.
	Args string

	// Message is the raw inbound message.
	Message *telegram.Message

	// Client sends the response.
	Client *telegram.Client
}

// CommandHandler handles one bot command.
type CommandHandler interface {
	Handle(ctx context.Context, cmdCtx CommandContext) error
}

// CommandFunc adapts a function to CommandHandler.
type CommandFunc func(ctx context.Context, cmdCtx CommandContext) error

// Handle implements CommandHandler.
func (f CommandFunc) Handle(ctx context.Context, cmdCtx CommandContext) error {
	return f(ctx, cmdCtx)
}

// Router dispatches commands to registered handlers.
type Router struct {
	logger *slog.Logger

	mu       sync.RWMutex
	handlers map[string]CommandHandler
	fallback CommandHandler
}

// NewRouter creates an empty router.
func NewRouter(logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Router{
		logger:   logger,
		handlers: make(map[string]CommandHandler),
	}
	r.fallback = CommandFunc(r.handleUnknownCommand)
	return r
}

// Register binds a handler to a command name (without the leading "/").
func (r *Router) Register(command string, h CommandHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[command] = h
}

// Commands lists the registered command names.
func (r *Router) Commands() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		out = append(out, name)
	}
	return out
}

// Dispatch routes the command to its handler, or the fallback for
// unknown commands.
func (r *Router) Dispatch(ctx context.Context, command string, cmdCtx CommandContext) error {
	r.mu.RLock()
	h, ok := r.handlers[command]
	r.mu.RUnlock()

	if !ok {
		return r.fallback.Handle(ctx, cmdCtx)
	}
	return h.Handle(ctx, cmdCtx)
}

func (r *Router) handleUnknownCommand(ctx context.Context, cmdCtx CommandContext) error {
	_, err := cmdCtx.Client.SendText(ctx, cmdCtx.ChatID,
		"🤔 I don't know that command. Try /help for the full list.")
	return err
}
