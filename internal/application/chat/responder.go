// Package chat implements the conversation responder: it assembles the
// persona and memory window into a prompt, calls the generation
// delegate, and remembers the exchange. Classification of which
// messages deserve a generated reply happens at the interface layer;
// by the time a message reaches this package the decision is made.
package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ayaka-hub/ayaka-learning-bot/internal/domain/memory"
)

// ══════════════════════════════════════════════════════════════════════════════
// DELEGATE BOUNDARY
// ══════════════════════════════════════════════════════════════════════════════

// Conversation roles on the delegate boundary.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Turn is one transcript entry handed to the delegate.
type Turn struct {
	Role string
	Text string
}

// Generator is the external generation delegate.
type Generator interface {
	Generate(ctx context.Context, systemInstruction string, turns []Turn) (string, error)
}

// ══════════════════════════════════════════════════════════════════════════════
// RESPONDER
// ══════════════════════════════════════════════════════════════════════════════

// Persona is the standing system instruction for the delegate.
const Persona = `You are an expert cryptocurrency and stock trading educator with a supportive, friendly personality. Your role is to:

1. Provide accurate, up-to-date information about crypto and stocks
2. Break down complex concepts into easy-to-understand explanations
3. Be encouraging and motivational in your responses
4. Use examples and analogies to make learning easier
5. Encourage questions and deeper exploration
6. Maintain a conversational, supportive tone
7. Use emojis and formatting to make responses engaging
8. Always prioritize educational value and safety in trading advice

Remember: You're not just providing information, you're being a supportive learning companion.`

// Apology is sent when the delegate fails. No retry.
const Apology = "Sorry, I'm having trouble processing that right now. Please try again in a moment!"

// contextTurns bounds how many remembered exchanges go into the prompt.
const contextTurns = 6

// Request is one message that earned a generated reply.
type Request struct {
	TelegramID  int64
	ChatID      int64
	IsGroup     bool
	DisplayName string
	Text        string
}

// Responder produces generated replies.
type Responder struct {
	generator Generator
	memories  memory.Repository
	logger    *slog.Logger
	persona   string
	now       func() time.Time
}

// NewResponder creates the responder. persona may be empty to use the
// default.
func NewResponder(generator Generator, memories memory.Repository, persona string, logger *slog.Logger) *Responder {
	if logger == nil {
		logger = slog.Default()
	}
	if persona == "" {
		persona = Persona
	}
	return &Responder{
		generator: generator,
		memories:  memories,
		logger:    logger,
		persona:   persona,
		now:       time.Now,
	}
}

// Respond generates a reply for the message, remembering the exchange on
// success. On delegate failure the generic apology is returned and
// nothing is remembered; the error is logged, not retried.
func (r *Responder) Respond(ctx context.Context, req Request) string {
	key := memory.UserKey(req.TelegramID)
	if req.IsGroup {
		key = memory.ChatKey(req.ChatID)
	}

	turns := r.buildTranscript(ctx, key, req)

	reply, err := r.generator.Generate(ctx, r.persona, turns)
	if err != nil {
		r.logger.Error("generation delegate failed",
			"telegram_id", req.TelegramID, "error", err)
		return Apology
	}

	reply = CleanMarkdown(reply)

	r.remember(ctx, key, req.DisplayName, req.Text)
	r.remember(ctx, key, "ayaka", reply)
	return reply
}

// buildTranscript turns the memory window plus the current message into
// delegate turns. The window stores raw exchanges; speakers other than
// the bot become user turns.
func (r *Responder) buildTranscript(ctx context.Context, key memory.Key, req Request) []Turn {
	turns := make([]Turn, 0, contextTurns+1)

	win, err := r.memories.Window(ctx, key)
	if err != nil {
		// A lost window only costs context, never the reply.
		r.logger.Warn("failed to load memory window", "key", key.String(), "error", err)
	} else {
		for _, ex := range win.Recent(contextTurns) {
			role := RoleUser
			text := ex.Text
			if ex.Speaker == "ayaka" {
				role = RoleModel
			} else if ex.Speaker != "" {
				text = fmt.Sprintf("%s: %s", ex.Speaker, ex.Text)
			}
			turns = append(turns, Turn{Role: role, Text: text})
		}
	}

	current := req.Text
	if req.IsGroup && req.DisplayName != "" {
		current = fmt.Sprintf("%s: %s", req.DisplayName, req.Text)
	}
	return append(turns, Turn{Role: RoleUser, Text: current})
}

func (r *Responder) remember(ctx context.Context, key memory.Key, speaker, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	ex := memory.Exchange{Speaker: speaker, Text: text, Timestamp: r.now()}
	if err := r.memories.Append(ctx, key, ex); err != nil {
		r.logger.Warn("failed to append memory", "key", key.String(), "error", err)
	}
}
