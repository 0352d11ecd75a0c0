package telegram

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayaka-hub/ayaka-learning-bot/internal/application/chat"
	"github.com/ayaka-hub/ayaka-learning-bot/internal/application/command"
	"github.com/ayaka-hub/ayaka-learning-bot/internal/domain/memory"
	"github.com/ayaka-hub/ayaka-learning-bot/internal/domain/user"
	tgclient "github.com/ayaka-hub/ayaka-learning-bot/internal/infrastructure/external/telegram"
)

// ─────────────────────────────────────────────────────────────────────────────
// fakes
// ─────────────────────────────────────────────────────────────────────────────

type directoryStub struct {
	mu      sync.Mutex
	records map[user.TelegramID]*user.Record
}

func newDirectoryStub() *directoryStub {
	return &directoryStub{records: make(map[user.TelegramID]*user.Record)}
}

func (d *directoryStub) Create(_ context.Context, rec *user.Record) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.records[rec.TelegramID]; ok {
		return user.ErrAlreadyExists
	}
	d.records[rec.TelegramID] = rec
	return nil
}

func (d *directoryStub) GetByTelegramID(_ context.Context, id user.TelegramID) (*user.Record, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	rec, ok := d.records[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return rec, nil
}

func (d *directoryStub) Update(_ context.Context, rec *user.Record) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.records[rec.TelegramID]; !ok {
		return user.ErrNotFound
	}
	d.records[rec.TelegramID] = rec
	return nil
}

func (d *directoryStub) GetAll(_ context.Context) ([]*user.Record, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]*user.Record, 0, len(d.records))
	for _, rec := range d.records {
		out = append(out, rec)
	}
	return out, nil
}

func (d *directoryStub) Count(_ context.Context) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.records), nil
}

type memoryStub struct{}

func (memoryStub) Append(_ context.Context, _ memory.Key, _ memory.Exchange) error { return nil }

func (memoryStub) Window(_ context.Context, key memory.Key) (*memory.Window, error) {
	return memory.NewWindow(key, memory.DefaultWindowCap), nil
}

func (memoryStub) Clear(_ context.Context, _ memory.Key) error { return nil }

// countingGenerator counts delegate calls; an optional block channel
// holds every call open until released.
type countingGenerator struct {
	started atomic.Int32
	calls   atomic.Int32
	block   chan struct{}
	reply   string
}

func (g *countingGenerator) Generate(_ context.Context, _ string, _ []chat.Turn) (string, error) {
	g.started.Add(1)
	if g.block != nil {
		<-g.block
	}
	g.calls.Add(1)
	return g.reply, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// pipeline harness
// ─────────────────────────────────────────────────────────────────────────────

// newPipelineBot wires a real Bot against a fake Bot API server and the
// given generator, ready for processMessage / handleUpdate calls.
func newPipelineBot(t *testing.T, gen chat.Generator, maxConcurrent int) *Bot {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/sendChatAction") {
			fmt.Fprint(w, `{"ok":true,"result":true}`)
			return
		}
		fmt.Fprint(w, `{"ok":true,"result":{}}`)
	}))
	t.Cleanup(srv.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	directory := newDirectoryStub()

	bot, err := NewBot(BotConfig{
		Token:                "test-token",
		Logger:               logger,
		MaxConcurrentUpdates: maxConcurrent,
	}, BotDependencies{
		UserRepo:       directory,
		ObserveUserCmd: command.NewObserveUserHandler(directory, 1, logger),
		Responder:      chat.NewResponder(gen, memoryStub{}, "", logger),
	})
	require.NoError(t, err)

	clientConfig := tgclient.DefaultClientConfig("test-token")
	clientConfig.BaseURL = srv.URL
	clientConfig.Logger = logger
	bot.client = tgclient.NewClient(clientConfig)

	bot.classifier = testClassifier()
	return bot
}

// ─────────────────────────────────────────────────────────────────────────────
// dispatch pipeline
// ─────────────────────────────────────────────────────────────────────────────

func TestProcessMessage_GroupChatterNeverReachesGenerator(t *testing.T) {
	gen := &countingGenerator{reply: "happy to help!"}
	bot := newPipelineBot(t, gen, 4)

	require.NoError(t, bot.processMessage(context.Background(), groupMsg("anyone up for lunch?"), ""))
	assert.Equal(t, int32(0), gen.calls.Load(), "group chatter must not be answered")

	require.NoError(t, bot.processMessage(context.Background(), privateMsg("what is a stop loss?"), ""))
	assert.Equal(t, int32(1), gen.calls.Load(), "direct messages are always answered")

	require.NoError(t, bot.processMessage(context.Background(), groupMsg("ayaka explain margin"), ""))
	assert.Equal(t, int32(2), gen.calls.Load(), "mentions are answered")
}

func TestProcessMessage_ChatterStillCounted(t *testing.T) {
	gen := &countingGenerator{reply: "hi"}
	bot := newPipelineBot(t, gen, 4)

	require.NoError(t, bot.processMessage(context.Background(), groupMsg("good morning all"), ""))

	snap := bot.usage.Snapshot()
	assert.Equal(t, int64(1), snap.TotalMessages)
	assert.Equal(t, int32(0), gen.calls.Load())
}

func TestHandleUpdate_ConcurrentDispatch(t *testing.T) {
	gen := &countingGenerator{reply: "ok", block: make(chan struct{})}
	bot := newPipelineBot(t, gen, 2)

	first := &tgclient.Update{Message: privateMsg("first question")}
	second := &tgclient.Update{Message: &tgclient.Message{
		Text: "second question",
		From: &tgclient.User{ID: 43, Username: "priya"},
		Chat: &tgclient.Chat{ID: 43, Type: "private"},
	}}

	require.NoError(t, bot.handleUpdate(context.Background(), first))
	require.NoError(t, bot.handleUpdate(context.Background(), second))

	require.Eventually(t, func() bool { return gen.started.Load() == 2 },
		2*time.Second, 10*time.Millisecond, "both updates should be in flight at once")

	close(gen.block)
	bot.wg.Wait()
	assert.Equal(t, int32(2), gen.calls.Load())
}

func TestHandleUpdate_IgnoresBotsAndEmptyUpdates(t *testing.T) {
	gen := &countingGenerator{reply: "ok"}
	bot := newPipelineBot(t, gen, 2)

	require.NoError(t, bot.handleUpdate(context.Background(), &tgclient.Update{}))

	fromBot := privateMsg("beep")
	fromBot.From.IsBot = true
	require.NoError(t, bot.handleUpdate(context.Background(), &tgclient.Update{Message: fromBot}))

	bot.wg.Wait()
	assert.Equal(t, int32(0), gen.started.Load())
}
