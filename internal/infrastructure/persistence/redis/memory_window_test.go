package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayaka-hub/ayaka-learning-bot/internal/domain/memory"
)

func newTestRepo(t *testing.T, cap int) *MemoryRepository {
	t.Helper()

	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { client.Close() })

	cfg := DefaultConfig()
	cfg.Addr = srv.Addr()
	cfg.WindowCap = cap
	return NewMemoryRepositoryWithClient(client, cfg)
}

func TestMemoryRepository_AppendAndWindow(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t, 10)
	key := memory.UserKey(42)

	first := memory.Exchange{Speaker: "User", Text: "what is a stop loss?", Timestamp: time.Now()}
	second := memory.Exchange{Speaker: "Ayaka", Text: "a preset exit level", Timestamp: time.Now()}
	require.NoError(t, repo.Append(ctx, key, first))
	require.NoError(t, repo.Append(ctx, key, second))

	win, err := repo.Window(ctx, key)
	require.NoError(t, err)
	require.Len(t, win.Exchanges, 2)
	assert.Equal(t, "what is a stop loss?", win.Exchanges[0].Text)
	assert.Equal(t, "a preset exit level", win.Exchanges[1].Text)
}

func TestMemoryRepository_CapEvictsOldest(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t, 3)
	key := memory.UserKey(42)

	for _, text := range []string{"one", "two", "three", "four", "five"} {
		require.NoError(t, repo.Append(ctx, key, memory.Exchange{
			Speaker: "User", Text: text, Timestamp: time.Now(),
		}))
	}

	win, err := repo.Window(ctx, key)
	require.NoError(t, err)
	require.Len(t, win.Exchanges, 3)
	assert.Equal(t, "three", win.Exchanges[0].Text)
	assert.Equal(t, "five", win.Exchanges[2].Text)
}

func TestMemoryRepository_EmptyExchangeRejected(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t, 3)

	err := repo.Append(ctx, memory.UserKey(42), memory.Exchange{Speaker: "User", Text: "   "})
	require.ErrorIs(t, err, memory.ErrEmptyExchange)
}

func TestMemoryRepository_UnknownKeyIsEmptyWindow(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t, 3)

	win, err := repo.Window(ctx, memory.ChatKey(-100))
	require.NoError(t, err)
	assert.Empty(t, win.Exchanges)
}

func TestMemoryRepository_Clear(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t, 3)
	key := memory.ChatKey(-100)

	require.NoError(t, repo.Append(ctx, key, memory.Exchange{Speaker: "User", Text: "hi", Timestamp: time.Now()}))
	require.NoError(t, repo.Clear(ctx, key))

	win, err := repo.Window(ctx, key)
	require.NoError(t, err)
	assert.Empty(t, win.Exchanges)
}
