package user

import "context"

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACE
// The contract for the user directory document. Implementations live in
// infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// Repository defines storage operations for user records.
//
// Every operation loads the whole directory document, mutates it, and
// rewrites it atomically within one turn; implementations must be safe
// for use from concurrent turns.
type Repository interface {
	// Create stores a new user record.
	// Returns ErrAlreadyExists if the identity is already registered.
	Create(ctx context.Context, rec *Record) error

	// GetByTelegramID returns the record for a platform identity.
	// Returns ErrNotFound if the identity has never been observed.
	GetByTelegramID(ctx context.Context, id TelegramID) (*Record, error)

	// Update rewrites an existing record.
	// Returns ErrNotFound if the record does not exist.
	Update(ctx context.Context, rec *Record) error

	// GetAll returns every known record.
	GetAll(ctx context.Context) ([]*Record, error)

	// Count returns the number of known identities.
	Count(ctx context.Context) (int, error)
}
