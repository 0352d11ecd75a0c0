// Package memory contains the conversational memory domain model: a
// bounded window of recent exchanges kept per user and per group chat,
// used as context for the generation delegate. This is the core
// business layer - no external dependencies here.
package memory

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// Scope distinguishes per-user memory from per-chat memory.
type Scope string

const (
	// ScopeUser is the private conversation window of one user.
	ScopeUser Scope = "user"
	// ScopeChat is the shared window of one group chat.
	ScopeChat Scope = "chat"
)

// Key addresses one memory window.
type Key struct {
	Scope Scope
	ID    int64
}

// UserKey returns the key for a user's private window.
func UserKey(telegramID int64) Key {
	return Key{Scope: ScopeUser, ID: telegramID}
}

// ChatKey returns the key for a group chat's shared window.
func ChatKey(chatID int64) Key {
	return Key{Scope: ScopeChat, ID: chatID}
}

// String renders the key as a stable storage identifier.
func (k Key) String() string {
	return fmt.Sprintf("%s:%d", k.Scope, k.ID)
}

// ══════════════════════════════════════════════════════════════════════════════
// EXCHANGE & WINDOW
// ══════════════════════════════════════════════════════════════════════════════

// Exchange is one remembered (speaker, text, timestamp) tuple.
type Exchange struct {
	Speaker   string    `json:"speaker"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Window is a bounded, ordered sequence of recent exchanges. Once the
// cap is exceeded the oldest entries are evicted - plain FIFO, no other
// invariant.
type Window struct {
	Key       Key
	Exchanges []Exchange
	Cap       int
}

// DefaultWindowCap bounds a window when no explicit cap is configured.
const DefaultWindowCap = 20

// ErrEmptyExchange - an exchange with no text cannot be remembered.
var ErrEmptyExchange = errors.New("exchange text cannot be empty")

// NewWindow creates an empty window with the given cap.
// A non-positive cap falls back to DefaultWindowCap.
func NewWindow(key Key, cap int) *Window {
	if cap <= 0 {
		cap = DefaultWindowCap
	}
	return &Window{Key: key, Cap: cap}
}

// Append remembers one exchange, evicting from the front when the
// window is over its cap.
func (w *Window) Append(ex Exchange) error {
	if strings.TrimSpace(ex.Text) == "" {
		return ErrEmptyExchange
	}
	w.Exchanges = append(w.Exchanges, ex)
	if len(w.Exchanges) > w.Cap {
		w.Exchanges = w.Exchanges[len(w.Exchanges)-w.Cap:]
	}
	return nil
}

// Recent returns the newest n exchanges in chronological order.
func (w *Window) Recent(n int) []Exchange {
	if n <= 0 || len(w.Exchanges) == 0 {
		return nil
	}
	if n > len(w.Exchanges) {
		n = len(w.Exchanges)
	}
	out := make([]Exchange, n)
	copy(out, w.Exchanges[len(w.Exchanges)-n:])
	return out
}

// Transcript renders the newest n exchanges as prompt context,
// one "Speaker: text" line per exchange.
func (w *Window) Transcript(n int) string {
	recent := w.Recent(n)
	if len(recent) == 0 {
		return "No previous conversations"
	}
	lines := make([]string, 0, len(recent))
	for _, ex := range recent {
		lines = append(lines, fmt.Sprintf("%s: %s", ex.Speaker, ex.Text))
	}
	return strings.Join(lines, "\n")
}

// Clone creates a deep copy of the window.
func (w *Window) Clone() *Window {
	if w == nil {
		return nil
	}
	clone := *w
	clone.Exchanges = append([]Exchange(nil), w.Exchanges...)
	return &clone
}
