package penalty

import "context"

// Repository persists penalty records.
//
// Implementations must refuse every write when the underlying document
// cannot be parsed, surfacing shared.ErrCorruptDocument. A corrupt
// ledger is frozen for manual repair, never silently reset.
type Repository interface {
	// Get returns the record for a member. ErrNotTracked when the
	// member has no penalty record yet.
	Get(ctx context.Context, telegramID int64) (*Record, error)

	// GetOrCreate returns the existing record or a fresh zeroed one.
	GetOrCreate(ctx context.Context, telegramID int64, username string) (*Record, error)

	// Save upserts a record.
	Save(ctx context.Context, rec *Record) error

	// GetAll returns every tracked record, for the interest sweep and
	// admin summaries.
	GetAll(ctx context.Context) ([]*Record, error)
}
