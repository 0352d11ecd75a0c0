package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ayaka-hub/ayaka-learning-bot/internal/domain/penalty"
)

// ══════════════════════════════════════════════════════════════════════════════
// PENALTY REPOSITORY IMPLEMENTATION
// Record row and history journal are written together in one
// transaction, so the reconstruction invariant survives crashes.
// ══════════════════════════════════════════════════════════════════════════════

// PenaltyRepository implements penalty.Repository for PostgreSQL.
type PenaltyRepository struct {
	conn *Connection
}

// NewPenaltyRepository creates a new PenaltyRepository.
func NewPenaltyRepository(conn *Connection) *PenaltyRepository {
	return &PenaltyRepository{conn: conn}
}

// Get returns the ledger record for a member, history included.
func (r *PenaltyRepository) Get(ctx context.Context, telegramID int64) (*penalty.Record, error) {
	query := `
		SELECT telegram_id, username, outstanding, consecutive_misses, missed_days,
			   paid_total, donated_total, last_miss_date, last_interest_date,
			   created_at, updated_at
		FROM penalty_records
		WHERE telegram_id = $1
	`

	rec, err := r.scanRecord(r.conn.QueryRow(ctx, query, telegramID))
	if err != nil {
		return nil, err
	}

	history, err := r.loadHistory(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	rec.History = history

	return rec, nil
}

// GetOrCreate returns the existing record or a fresh zeroed one. The
// fresh record is not persisted until the first Save.
func (r *PenaltyRepository) GetOrCreate(ctx context.Context, telegramID int64, username string) (*penalty.Record, error) {
	rec, err := r.Get(ctx, telegramID)
	if err == penalty.ErrNotTracked {
		return penalty.NewRecord(telegramID, username), nil
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Save upserts the record row and any history entries not yet stored,
// in one transaction.
func (r *PenaltyRepository) Save(ctx context.Context, rec *penalty.Record) error {
	return r.conn.WithTx(ctx, func(tx pgx.Tx) error {
		upsert := `
			INSERT INTO penalty_records (
				telegram_id, username, outstanding, consecutive_misses, missed_days,
				paid_total, donated_total, last_miss_date, last_interest_date,
				created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			ON CONFLICT (telegram_id) DO UPDATE SET
				username = EXCLUDED.username,
				outstanding = EXCLUDED.outstanding,
				consecutive_misses = EXCLUDED.consecutive_misses,
				missed_days = EXCLUDED.missed_days,
				paid_total = EXCLUDED.paid_total,
				donated_total = EXCLUDED.donated_total,
				last_miss_date = EXCLUDED.last_miss_date,
				last_interest_date = EXCLUDED.last_interest_date,
				updated_at = EXCLUDED.updated_at
		`

		_, err := tx.Exec(ctx, upsert,
			rec.TelegramID,
			rec.Username,
			int64(rec.Outstanding),
			rec.ConsecutiveMisses,
			rec.MissedDays,
			int64(rec.PaidTotal),
			int64(rec.DonatedTotal),
			nullableTime(rec.LastMissDate),
			nullableTime(rec.LastInterestDate),
			rec.CreatedAt,
			rec.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert penalty record: %w", err)
		}

		insertEntry := `
			INSERT INTO penalty_history (id, telegram_id, event_date, event_type, amount, note)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO NOTHING
		`
		for _, entry := range rec.History {
			_, err := tx.Exec(ctx, insertEntry,
				entry.ID,
				rec.TelegramID,
				entry.Date,
				string(entry.Type),
				int64(entry.Amount),
				entry.Note,
			)
			if err != nil {
				return fmt.Errorf("failed to insert history entry %s: %w", entry.ID, err)
			}
		}

		return nil
	})
}

// GetAll returns every tracked ledger record, history included.
func (r *PenaltyRepository) GetAll(ctx context.Context) ([]*penalty.Record, error) {
	query := `
		SELECT telegram_id, username, outstanding, consecutive_misses, missed_days,
			   paid_total, donated_total, last_miss_date, last_interest_date,
			   created_at, updated_at
		FROM penalty_records
		ORDER BY telegram_id
	`

	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query penalty records: %w", err)
	}
	defer rows.Close()

	var records []*penalty.Record
	for rows.Next() {
		rec, err := r.scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	for _, rec := range records {
		history, err := r.loadHistory(ctx, rec.TelegramID)
		if err != nil {
			return nil, err
		}
		rec.History = history
	}

	return records, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// scanning
// ─────────────────────────────────────────────────────────────────────────────

func (r *PenaltyRepository) scanRecord(row pgx.Row) (*penalty.Record, error) {
	var rec penalty.Record
	var outstanding, paidTotal, donatedTotal int64
	var lastMiss, lastInterest *time.Time

	err := row.Scan(
		&rec.TelegramID,
		&rec.Username,
		&outstanding,
		&rec.ConsecutiveMisses,
		&rec.MissedDays,
		&paidTotal,
		&donatedTotal,
		&lastMiss,
		&lastInterest,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if IsNoRows(err) {
		return nil, penalty.ErrNotTracked
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan penalty record: %w", err)
	}

	rec.Outstanding = penalty.Money(outstanding)
	rec.PaidTotal = penalty.Money(paidTotal)
	rec.DonatedTotal = penalty.Money(donatedTotal)
	if lastMiss != nil {
		rec.LastMissDate = *lastMiss
	}
	if lastInterest != nil {
		rec.LastInterestDate = *lastInterest
	}

	return &rec, nil
}

func (r *PenaltyRepository) loadHistory(ctx context.Context, telegramID int64) ([]penalty.HistoryEntry, error) {
	query := `
		SELECT id, event_date, event_type, amount, note
		FROM penalty_history
		WHERE telegram_id = $1
		ORDER BY seq ASC
	`

	rows, err := r.conn.Query(ctx, query, telegramID)
	if err != nil {
		return nil, fmt.Errorf("failed to query penalty history: %w", err)
	}
	defer rows.Close()

	var history []penalty.HistoryEntry
	for rows.Next() {
		var entry penalty.HistoryEntry
		var eventType string
		var amount int64

		if err := rows.Scan(&entry.ID, &entry.Date, &eventType, &amount, &entry.Note); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}

		entry.Type = penalty.EventType(eventType)
		entry.Amount = penalty.Money(amount)
		history = append(history, entry)
	}

	return history, rows.Err()
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
