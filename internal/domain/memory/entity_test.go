package memory

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindow_AppendEvictsFIFO(t *testing.T) {
	w := NewWindow(UserKey(42), 3)

	for i := 1; i <= 5; i++ {
		err := w.Append(Exchange{
			Speaker:   "user",
			Text:      fmt.Sprintf("msg %d", i),
			Timestamp: time.Now(),
		})
		require.NoError(t, err)
	}

	require.Len(t, w.Exchanges, 3)
	assert.Equal(t, "msg 3", w.Exchanges[0].Text)
	assert.Equal(t, "msg 5", w.Exchanges[2].Text)
}

func TestWindow_RejectsEmptyText(t *testing.T) {
	w := NewWindow(ChatKey(-100), 3)
	err := w.Append(Exchange{Speaker: "user", Text: "   "})
	assert.ErrorIs(t, err, ErrEmptyExchange)
	assert.Empty(t, w.Exchanges)
}

func TestWindow_Recent(t *testing.T) {
	w := NewWindow(UserKey(1), 10)
	for i := 1; i <= 4; i++ {
		require.NoError(t, w.Append(Exchange{Speaker: "user", Text: fmt.Sprintf("m%d", i)}))
	}

	recent := w.Recent(2)
	require.Len(t, recent, 2)
	assert.Equal(t, "m3", recent[0].Text)
	assert.Equal(t, "m4", recent[1].Text)

	// Asking for more than stored returns everything.
	assert.Len(t, w.Recent(99), 4)
	assert.Nil(t, w.Recent(0))
}

func TestWindow_Transcript(t *testing.T) {
	w := NewWindow(UserKey(1), 10)
	assert.Equal(t, "No previous conversations", w.Transcript(3))

	require.NoError(t, w.Append(Exchange{Speaker: "Neel", Text: "what is DeFi?"}))
	require.NoError(t, w.Append(Exchange{Speaker: "Ayaka", Text: "Decentralized finance."}))

	assert.Equal(t, "Neel: what is DeFi?\nAyaka: Decentralized finance.", w.Transcript(3))
}

func TestKey_String(t *testing.T) {
	assert.Equal(t, "user:42", UserKey(42).String())
	assert.Equal(t, "chat:-1001", ChatKey(-1001).String())
}
