// Package handler contains Telegram command handlers.
// Each handler follows the pattern: parse args → call application layer →
// format response via presenter → send through the client.
package handler

import (
	"strings"
	"sync"
)

// ══════════════════════════════════════════════════════════════════════════════
// IN-PROCESS SESSION STATE
// Watchlists and todo lists live in memory only and reset on restart,
// like the original group bot. Keyed by Telegram identity.
// ══════════════════════════════════════════════════════════════════════════════

// SessionState holds per-user lists that are not persisted.
type SessionState struct {
	mu         sync.Mutex
	watchlists map[int64][]string
	todos      map[int64][]string
}

// NewSessionState creates an empty session state.
func NewSessionState() *SessionState {
	return &SessionState{
		watchlists: make(map[int64][]string),
		todos:      make(map[int64][]string),
	}
}

// maxListItems bounds each per-user list so a spammer cannot grow them
// without limit.
const maxListItems = 25

// AddToWatchlist adds a ticker to the user's watchlist.
// Returns false if the ticker is already present or the list is full.
func (s *SessionState) AddToWatchlist(telegramID int64, symbol string) bool {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.watchlists[telegramID]
	if len(list) >= maxListItems {
		return false
	}
	for _, existing := range list {
		if existing == symbol {
			return false
		}
	}
	s.watchlists[telegramID] = append(list, symbol)
	return true
}

// Watchlist returns a copy of the user's watchlist.
func (s *SessionState) Watchlist(telegramID int64) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.watchlists[telegramID]...)
}

// ClearWatchlist empties the user's watchlist.
func (s *SessionState) ClearWatchlist(telegramID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.watchlists, telegramID)
}

// AddTodo appends an item to the user's todo list.
// Returns false when the list is full.
func (s *SessionState) AddTodo(telegramID int64, item string) bool {
	item = strings.TrimSpace(item)
	if item == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.todos[telegramID]
	if len(list) >= maxListItems {
		return false
	}
	s.todos[telegramID] = append(list, item)
	return true
}

// Todos returns a copy of the user's todo list.
func (s *SessionState) Todos(telegramID int64) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.todos[telegramID]...)
}

// CompleteTodo removes the item at the 1-based position.
// Returns the removed item and whether the position was valid.
func (s *SessionState) CompleteTodo(telegramID int64, position int) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.todos[telegramID]
	if position < 1 || position > len(list) {
		return "", false
	}
	item := list[position-1]
	s.todos[telegramID] = append(list[:position-1], list[position:]...)
	return item, true
}
