package memory

import "context"

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACE
// Two implementations exist: the default whole-document JSON store and
// an optional Redis-backed window (bounded list per key).
// ══════════════════════════════════════════════════════════════════════════════

// Repository defines storage operations for memory windows.
type Repository interface {
	// Append remembers one exchange in the window addressed by key,
	// evicting the oldest entries beyond the configured cap.
	Append(ctx context.Context, key Key, ex Exchange) error

	// Window returns the current window for the key. A key that was
	// never written returns an empty window, not an error.
	Window(ctx context.Context, key Key) (*Window, error)

	// Clear drops the window for the key.
	Clear(ctx context.Context, key Key) error
}
