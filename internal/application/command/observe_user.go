// Package command contains write operations (CQRS - Commands).
// Commands change the state of the system; each handler loads the
// relevant document, mutates it, and saves it within one turn.
package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ayaka-hub/ayaka-learning-bot/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// OBSERVE USER COMMAND
// Every inbound message passes through here: unknown identities get a
// directory entry, known ones get their display name refreshed.
// ══════════════════════════════════════════════════════════════════════════════

// ObserveUserCommand describes one observed sender.
type ObserveUserCommand struct {
	TelegramID  int64
	Username    string
	DisplayName string
}

// Validate validates the command.
func (c ObserveUserCommand) Validate() error {
	if c.TelegramID <= 0 {
		return user.ErrInvalidTelegramID
	}
	return nil
}

// ObserveUserHandler registers first-time senders and keeps display
// names current.
type ObserveUserHandler struct {
	users    user.Repository
	leaderID int64
	logger   *slog.Logger
	now      func() time.Time
}

// NewObserveUserHandler creates the handler. leaderID is the identity
// that receives the leader role on first contact; everyone else starts
// as a guest.
func NewObserveUserHandler(users user.Repository, leaderID int64, logger *slog.Logger) *ObserveUserHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ObserveUserHandler{
		users:    users,
		leaderID: leaderID,
		logger:   logger,
		now:      time.Now,
	}
}

// Handle returns the up-to-date directory record for the sender,
// creating it when the identity is new.
func (h *ObserveUserHandler) Handle(ctx context.Context, cmd ObserveUserCommand) (*user.Record, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	rec, err := h.users.GetByTelegramID(ctx, user.TelegramID(cmd.TelegramID))
	if err == nil {
		if cmd.DisplayName != "" && cmd.DisplayName != rec.DisplayName {
			if renameErr := rec.Rename(cmd.DisplayName); renameErr == nil {
				if err := h.users.Update(ctx, rec); err != nil {
					return nil, fmt.Errorf("failed to update user %d: %w", cmd.TelegramID, err)
				}
			}
		}
		return rec, nil
	}
	if !errors.Is(err, user.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up user %d: %w", cmd.TelegramID, err)
	}

	role := user.RoleGuest
	if cmd.TelegramID == h.leaderID {
		role = user.RoleLeader
	}

	displayName := cmd.DisplayName
	if displayName == "" {
		displayName = cmd.Username
	}
	if displayName == "" {
		displayName = fmt.Sprintf("user-%d", cmd.TelegramID)
	}

	rec, err = user.NewRecord(user.NewRecordParams{
		ID:          uuid.NewString(),
		TelegramID:  user.TelegramID(cmd.TelegramID),
		Username:    cmd.Username,
		DisplayName: displayName,
		Role:        role,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build user record: %w", err)
	}

	if err := h.users.Create(ctx, rec); err != nil {
		// Lost the race with another turn; the record exists now.
		if errors.Is(err, user.ErrAlreadyExists) {
			return h.users.GetByTelegramID(ctx, user.TelegramID(cmd.TelegramID))
		}
		return nil, fmt.Errorf("failed to create user %d: %w", cmd.TelegramID, err)
	}

	h.logger.Info("new user observed",
		"telegram_id", cmd.TelegramID, "display_name", displayName, "role", string(role))
	return rec, nil
}
