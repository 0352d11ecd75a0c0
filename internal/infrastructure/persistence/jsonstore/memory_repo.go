package jsonstore

import (
	"context"

	"github.com/ayaka-hub/ayaka-learning-bot/internal/domain/memory"
)

// ══════════════════════════════════════════════════════════════════════════════
// MEMORY REPOSITORY IMPLEMENTATION
// Per-user windows live in memories.json, per-chat windows in
// group_memories.json. Both files share the same shape: a map from
// window key to exchange list.
// ══════════════════════════════════════════════════════════════════════════════

// MemoryRepository implements memory.Repository over two JSON files.
type MemoryRepository struct {
	userDoc *Document
	chatDoc *Document
	cap     int
}

// NewMemoryRepository creates a memory repository. cap bounds each
// window; non-positive falls back to the domain default.
func NewMemoryRepository(userPath, chatPath string, cap int) (*MemoryRepository, error) {
	userDoc, err := NewDocument(userPath)
	if err != nil {
		return nil, err
	}
	chatDoc, err := NewDocument(chatPath)
	if err != nil {
		return nil, err
	}
	if cap <= 0 {
		cap = memory.DefaultWindowCap
	}
	return &MemoryRepository{userDoc: userDoc, chatDoc: chatDoc, cap: cap}, nil
}

func (r *MemoryRepository) docFor(key memory.Key) *Document {
	if key.Scope == memory.ScopeChat {
		return r.chatDoc
	}
	return r.userDoc
}

// Append remembers one exchange, evicting beyond the window cap.
func (r *MemoryRepository) Append(ctx context.Context, key memory.Key, ex memory.Exchange) error {
	docs := map[string][]memory.Exchange{}
	return r.docFor(key).Update(&docs, func() error {
		win := memory.NewWindow(key, r.cap)
		win.Exchanges = docs[key.String()]
		if err := win.Append(ex); err != nil {
			return err
		}
		docs[key.String()] = win.Exchanges
		return nil
	})
}

// Window returns the stored window for the key, empty when unknown.
func (r *MemoryRepository) Window(ctx context.Context, key memory.Key) (*memory.Window, error) {
	docs := map[string][]memory.Exchange{}
	if err := r.docFor(key).Load(&docs); err != nil {
		return nil, err
	}

	win := memory.NewWindow(key, r.cap)
	win.Exchanges = docs[key.String()]
	return win, nil
}

// Clear drops the window for the key.
func (r *MemoryRepository) Clear(ctx context.Context, key memory.Key) error {
	docs := map[string][]memory.Exchange{}
	return r.docFor(key).Update(&docs, func() error {
		delete(docs, key.String())
		return nil
	})
}
