// Package authz holds the single authorization predicate for the bot.
// Penalty-mutating commands and tribute toggles are leader-only; every
// check fails closed, so an unknown identity or a storage error denies.
package authz

import (
	"context"
	"errors"
	"fmt"

	"github.com/ayaka-hub/ayaka-learning-bot/internal/domain/shared"
	"github.com/ayaka-hub/ayaka-learning-bot/internal/domain/user"
)

// ErrNotLeader - the actor may not administer penalties.
var ErrNotLeader = fmt.Errorf("only the team leader can do that: %w", shared.ErrForbidden)

// Service answers "may this identity administer the group".
type Service struct {
	users user.Repository
}

// NewService creates the authorization service.
func NewService(users user.Repository) *Service {
	return &Service{users: users}
}

// RequireLeader returns the actor's record when they hold the leader
// role. Unknown identities and lookup failures both deny.
func (s *Service) RequireLeader(ctx context.Context, actorID int64) (*user.Record, error) {
	rec, err := s.users.GetByTelegramID(ctx, user.TelegramID(actorID))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrNotLeader
		}
		return nil, fmt.Errorf("failed to resolve actor %d: %w", actorID, err)
	}
	if !rec.Role.CanAdministerPenalties() {
		return nil, ErrNotLeader
	}
	return rec, nil
}
