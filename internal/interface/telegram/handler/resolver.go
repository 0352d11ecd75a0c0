package handler

import (
	"context"
	"fmt"
	"strings"

	"github.com/ayaka-hub/ayaka-learning-bot/internal/domain/shared"
	"github.com/ayaka-hub/ayaka-learning-bot/internal/domain/user"
)

// errNoTarget - the command did not name a member the bot knows.
var errNoTarget = fmt.Errorf("no target member named: %w", shared.ErrValidation)

// DirectoryResolver resolves penalty targets from the user directory.
// A reply to the target's message wins; otherwise the first @mention in
// the arguments is matched against usernames, display names and aliases.
type DirectoryResolver struct {
	users user.Repository
}

// NewDirectoryResolver creates the resolver.
func NewDirectoryResolver(users user.Repository) *DirectoryResolver {
	return &DirectoryResolver{users: users}
}

// ResolveTarget implements TargetResolver.
func (r *DirectoryResolver) ResolveTarget(ctx context.Context, cmdCtx Context) (int64, string, error) {
	if msg := cmdCtx.Message; msg != nil && msg.ReplyToMessage != nil && msg.ReplyToMessage.From != nil {
		from := msg.ReplyToMessage.From
		return from.ID, from.Username, nil
	}

	mention := firstMention(cmdCtx.Args)
	if mention == "" {
		return 0, "", errNoTarget
	}

	all, err := r.users.GetAll(ctx)
	if err != nil {
		return 0, "", fmt.Errorf("failed to search the user directory: %w", err)
	}
	for _, rec := range all {
		if rec.KnownAs(mention) || strings.EqualFold(rec.Username, mention) {
			return int64(rec.TelegramID), rec.Username, nil
		}
	}
	return 0, "", errNoTarget
}

// firstMention returns the first @-prefixed token without the @, or "".
func firstMention(args string) string {
	for _, field := range strings.Fields(args) {
		if name, ok := strings.CutPrefix(field, "@"); ok && name != "" {
			return name
		}
	}
	return ""
}
