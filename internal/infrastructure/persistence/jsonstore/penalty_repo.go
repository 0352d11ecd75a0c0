package jsonstore

import (
	"context"
	"time"

	"github.com/ayaka-hub/ayaka-learning-bot/internal/domain/penalty"
)

// ══════════════════════════════════════════════════════════════════════════════
// PENALTY REPOSITORY IMPLEMENTATION
// The penalty ledger is money. Every operation re-reads penalties.json,
// so a corrupt document fails reads and writes alike until someone
// repairs the file by hand. The ledger is never silently reset.
// ══════════════════════════════════════════════════════════════════════════════

// penaltyDoc is the on-disk shape of a ledger record.
type penaltyDoc struct {
	TelegramID        int64                  `json:"telegram_id"`
	Username          string                 `json:"username,omitempty"`
	Outstanding       int64                  `json:"outstanding"`
	ConsecutiveMisses int                    `json:"consecutive_misses"`
	MissedDays        int                    `json:"missed_days"`
	PaidTotal         int64                  `json:"paid_total"`
	DonatedTotal      int64                  `json:"donated_total"`
	LastMissDate      time.Time              `json:"last_miss_date,omitempty"`
	LastInterestDate  time.Time              `json:"last_interest_date,omitempty"`
	History           []penalty.HistoryEntry `json:"history,omitempty"`
	CreatedAt         time.Time              `json:"created_at"`
	UpdatedAt         time.Time              `json:"updated_at"`
}

// PenaltyRepository implements penalty.Repository over penalties.json.
type PenaltyRepository struct {
	doc *Document
}

// NewPenaltyRepository creates a penalty repository backed by the
// given file.
func NewPenaltyRepository(path string) (*PenaltyRepository, error) {
	doc, err := NewDocument(path)
	if err != nil {
		return nil, err
	}
	return &PenaltyRepository{doc: doc}, nil
}

// Get returns the ledger record for a member.
func (r *PenaltyRepository) Get(ctx context.Context, telegramID int64) (*penalty.Record, error) {
	docs := map[string]penaltyDoc{}
	if err := r.doc.Load(&docs); err != nil {
		return nil, err
	}

	doc, ok := docs[idKey(telegramID)]
	if !ok {
		return nil, penalty.ErrNotTracked
	}
	return docToPenalty(doc), nil
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

// Save upserts a ledger record. Fails without writing when the
// document is corrupt.
func (r *PenaltyRepository) Save(ctx context.Context, rec *penalty.Record) error {
	docs := map[string]penaltyDoc{}
	return r.doc.Update(&docs, func() error {
		docs[idKey(rec.TelegramID)] = penaltyToDoc(rec)
		return nil
	})
}

// GetAll returns every tracked ledger record.
func (r *PenaltyRepository) GetAll(ctx context.Context) ([]*penalty.Record, error) {
	docs := map[string]penaltyDoc{}
	if err := r.doc.Load(&docs); err != nil {
		return nil, err
	}

	records := make([]*penalty.Record, 0, len(docs))
	for _, doc := range docs {
		records = append(records, docToPenalty(doc))
	}
	return records, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// mapping
// ─────────────────────────────────────────────────────────────────────────────

func penaltyToDoc(rec *penalty.Record) penaltyDoc {
	history := make([]penalty.HistoryEntry, len(rec.History))
	copy(history, rec.History)
	return penaltyDoc{
		TelegramID:        rec.TelegramID,
		Username:          rec.Username,
		Outstanding:       int64(rec.Outstanding),
		ConsecutiveMisses: rec.ConsecutiveMisses,
		MissedDays:        rec.MissedDays,
		PaidTotal:         int64(rec.PaidTotal),
		DonatedTotal:      int64(rec.DonatedTotal),
		LastMissDate:      rec.LastMissDate,
		LastInterestDate:  rec.LastInterestDate,
		History:           history,
		CreatedAt:         rec.CreatedAt,
		UpdatedAt:         rec.UpdatedAt,
	}
}

func docToPenalty(doc penaltyDoc) *penalty.Record {
	history := make([]penalty.HistoryEntry, len(doc.History))
	copy(history, doc.History)
	return &penalty.Record{
		TelegramID:        doc.TelegramID,
		Username:          doc.Username,
		Outstanding:       penalty.Money(doc.Outstanding),
		ConsecutiveMisses: doc.ConsecutiveMisses,
		MissedDays:        doc.MissedDays,
		PaidTotal:         penalty.Money(doc.PaidTotal),
		DonatedTotal:      penalty.Money(doc.DonatedTotal),
		LastMissDate:      doc.LastMissDate,
		LastInterestDate:  doc.LastInterestDate,
		History:           history,
		CreatedAt:         doc.CreatedAt,
		UpdatedAt:         doc.UpdatedAt,
	}
}
