package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayaka-hub/ayaka-learning-bot/internal/domain/user"
)

func TestObserveUser_CreatesNewIdentity(t *testing.T) {
	repo := newFakeUserRepo()
	h := NewObserveUserHandler(repo, leaderID, nil)

	rec, err := h.Handle(context.Background(), ObserveUserCommand{
		TelegramID: 42, Username: "rahul", DisplayName: "Rahul",
	})

	require.NoError(t, err)
	assert.Equal(t, user.RoleGuest, rec.Role)
	assert.Equal(t, "Rahul", rec.DisplayName)
	assert.Contains(t, repo.records, int64(42))
}

func TestObserveUser_LeaderRoleOnFirstContact(t *testing.T) {
	repo := newFakeUserRepo()
	h := NewObserveUserHandler(repo, leaderID, nil)

	rec, err := h.Handle(context.Background(), ObserveUserCommand{
		TelegramID: leaderID, DisplayName: "The Boss",
	})

	require.NoError(t, err)
	assert.Equal(t, user.RoleLeader, rec.Role)
}

func TestObserveUser_RenamesKnownIdentity(t *testing.T) {
	repo := newFakeUserRepo()
	h := NewObserveUserHandler(repo, leaderID, nil)

	first, err := h.Handle(context.Background(), ObserveUserCommand{
		TelegramID: 42, DisplayName: "Rahul",
	})
	require.NoError(t, err)

	second, err := h.Handle(context.Background(), ObserveUserCommand{
		TelegramID: 42, DisplayName: "Rahul S",
	})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Rahul S", second.DisplayName)
}

func TestObserveUser_FallbackDisplayName(t *testing.T) {
	repo := newFakeUserRepo()
	h := NewObserveUserHandler(repo, leaderID, nil)

	rec, err := h.Handle(context.Background(), ObserveUserCommand{TelegramID: 42})

	require.NoError(t, err)
	assert.Equal(t, "user-42", rec.DisplayName)
}

func TestObserveUser_RejectsInvalidID(t *testing.T) {
	h := NewObserveUserHandler(newFakeUserRepo(), leaderID, nil)

	_, err := h.Handle(context.Background(), ObserveUserCommand{TelegramID: 0})

	assert.ErrorIs(t, err, user.ErrInvalidTelegramID)
}
