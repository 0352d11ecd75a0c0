package authz

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayaka-hub/ayaka-learning-bot/internal/domain/user"
)

type stubUserRepo struct {
	records map[int64]*user.Record
	err     error
}

func (s *stubUserRepo) Create(context.Context, *user.Record) error { return nil }
func (s *stubUserRepo) Update(context.Context, *user.Record) error { return nil }
func (s *stubUserRepo) GetAll(context.Context) ([]*user.Record, error) {
	return nil, nil
}
func (s *stubUserRepo) Count(context.Context) (int, error) { return len(s.records), nil }

func (s *stubUserRepo) GetByTelegramID(_ context.Context, id user.TelegramID) (*user.Record, error) {
	if s.err != nil {
		return nil, s.err
	}
	rec, ok := s.records[int64(id)]
	if !ok {
		return nil, user.ErrNotFound
	}
	return rec, nil
}

func makeUser(t *testing.T, id int64, role user.Role) *user.Record {
	t.Helper()
	rec, err := user.NewRecord(user.NewRecordParams{
		ID:          uuid.NewString(),
		TelegramID:  user.TelegramID(id),
		DisplayName: "Test User",
		Role:        role,
	})
	require.NoError(t, err)
	return rec
}

func TestRequireLeader(t *testing.T) {
	repo := &stubUserRepo{records: map[int64]*user.Record{
		1: makeUser(t, 1, user.RoleLeader),
		2: makeUser(t, 2, user.RoleMember),
		3: makeUser(t, 3, user.RoleGuest),
	}}
	svc := NewService(repo)

	rec, err := svc.RequireLeader(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, user.RoleLeader, rec.Role)

	for _, id := range []int64{2, 3, 99} {
		_, err := svc.RequireLeader(context.Background(), id)
		assert.ErrorIs(t, err, ErrNotLeader, "id %d", id)
	}
}

func TestRequireLeader_StorageErrorDenies(t *testing.T) {
	repo := &stubUserRepo{err: errors.New("disk error")}
	svc := NewService(repo)

	_, err := svc.RequireLeader(context.Background(), 1)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotLeader)
}
