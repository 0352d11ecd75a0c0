package progress

import "context"

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACE
// ══════════════════════════════════════════════════════════════════════════════

// Repository defines storage operations for progress records.
type Repository interface {
	// Get returns the record for the identity, or ErrNotFound when the
	// user has no progress yet. Callers that want a default-initialised
	// record should use GetOrDefault.
	Get(ctx context.Context, telegramID int64) (*Record, error)

	// GetOrDefault returns the stored record or a fresh default one.
	GetOrDefault(ctx context.Context, telegramID int64) (*Record, error)

	// Save inserts or rewrites the record for its identity.
	Save(ctx context.Context, rec *Record) error

	// Delete removes the record (used by progress reset).
	Delete(ctx context.Context, telegramID int64) error
}
