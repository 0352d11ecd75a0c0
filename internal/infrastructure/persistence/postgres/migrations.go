package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATIONS
// Applied in order inside transactions, tracked in schema_migrations.
// ══════════════════════════════════════════════════════════════════════════════

// Migration is one versioned schema change.
type Migration struct {
	Version int
	Name    string
	UpSQL   string
}

// Migrator applies pending migrations.
type Migrator struct {
	conn       *Connection
	migrations []Migration
	tableName  string
}

// NewMigrator creates a migrator with the embedded migrations.
func NewMigrator(conn *Connection) *Migrator {
	return &Migrator{
		conn:       conn,
		migrations: getMigrations(),
		tableName:  "schema_migrations",
	}
}

// Migrate applies all pending migrations.
func (m *Migrator) Migrate(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		)
	`, m.tableName)
	if _, err := m.conn.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := m.appliedVersions(ctx)
	if err != nil {
		return err
	}

	for _, mig := range m.migrations {
		if _, ok := applied[mig.Version]; ok {
			continue
		}

		err := m.conn.WithTx(ctx, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, mig.UpSQL); err != nil {
				return fmt.Errorf("failed to execute migration %d: %w", mig.Version, err)
			}
			insert := fmt.Sprintf("INSERT INTO %s (version, name) VALUES ($1, $2)", m.tableName)
			_, err := tx.Exec(ctx, insert, mig.Version, mig.Name)
			return err
		})
		if err != nil {
			return fmt.Errorf("%w: version %d: %v", ErrMigrationFailed, mig.Version, err)
		}
	}

	return nil
}

func (m *Migrator) appliedVersions(ctx context.Context) (map[int]time.Time, error) {
	query := fmt.Sprintf("SELECT version, applied_at FROM %s ORDER BY version", m.tableName)

	rows, err := m.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]time.Time)
	for rows.Next() {
		var version int
		var appliedAt time.Time
		if err := rows.Scan(&version, &appliedAt); err != nil {
			return nil, fmt.Errorf("failed to scan migration row: %w", err)
		}
		applied[version] = appliedAt
	}
	return applied, rows.Err()
}

func getMigrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_penalty_records",
			UpSQL: `
				CREATE TABLE IF NOT EXISTS penalty_records (
					telegram_id BIGINT PRIMARY KEY,
					username TEXT NOT NULL DEFAULT '',
					outstanding BIGINT NOT NULL DEFAULT 0 CHECK (outstanding >= 0),
					consecutive_misses INTEGER NOT NULL DEFAULT 0,
					missed_days INTEGER NOT NULL DEFAULT 0,
					paid_total BIGINT NOT NULL DEFAULT 0,
					donated_total BIGINT NOT NULL DEFAULT 0,
					last_miss_date TIMESTAMP WITH TIME ZONE,
					last_interest_date TIMESTAMP WITH TIME ZONE,
					created_at TIMESTAMP WITH TIME ZONE NOT NULL,
					updated_at TIMESTAMP WITH TIME ZONE NOT NULL
				)
			`,
		},
		{
			Version: 2,
			Name:    "create_penalty_history",
			UpSQL: `
				CREATE TABLE IF NOT EXISTS penalty_history (
					id UUID PRIMARY KEY,
					telegram_id BIGINT NOT NULL REFERENCES penalty_records(telegram_id),
					event_date TIMESTAMP WITH TIME ZONE NOT NULL,
					event_type TEXT NOT NULL,
					amount BIGINT NOT NULL DEFAULT 0,
					note TEXT NOT NULL DEFAULT '',
					seq SERIAL
				);
				CREATE INDEX IF NOT EXISTS idx_penalty_history_member
					ON penalty_history (telegram_id, seq)
			`,
		},
	}
}
