package jsonstore

import (
	"context"
	"time"

	"github.com/ayaka-hub/ayaka-learning-bot/internal/domain/progress"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROGRESS REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// progressDoc is the on-disk shape of a progress record.
type progressDoc struct {
	TelegramID       int64     `json:"telegram_id"`
	CompletedModules []string  `json:"completed_modules,omitempty"`
	SkillLevel       string    `json:"skill_level"`
	StreakCount      int       `json:"streak_count"`
	QuizzesTaken     int       `json:"quizzes_taken"`
	RecentTopics     []string  `json:"recent_topics,omitempty"`
	LastActivityDate time.Time `json:"last_activity_date,omitempty"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ProgressRepository implements progress.Repository over progress.json.
type ProgressRepository struct {
	doc *Document
}

// NewProgressRepository creates a progress repository backed by the
// given file.
func NewProgressRepository(path string) (*ProgressRepository, error) {
	doc, err := NewDocument(path)
	if err != nil {
		return nil, err
	}
	return &ProgressRepository{doc: doc}, nil
}

// Get returns the progress record for a member.
func (r *ProgressRepository) Get(ctx context.Context, telegramID int64) (*progress.Record, error) {
	docs := map[string]progressDoc{}
	if err := r.doc.Load(&docs); err != nil {
		return nil, err
	}

	doc, ok := docs[idKey(telegramID)]
	if !ok {
		return nil, progress.ErrNotFound
	}
	return docToProgress(doc), nil
}

// GetOrDefault returns the stored record or a fresh default one.
func (r *ProgressRepository) GetOrDefault(ctx context.Context, telegramID int64) (*progress.Record, error) {
	rec, err := r.Get(ctx, telegramID)
	if err == progress.ErrNotFound {
		return progress.NewRecord(telegramID), nil
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Save upserts a progress record.
func (r *ProgressRepository) Save(ctx context.Context, rec *progress.Record) error {
	docs := map[string]progressDoc{}
	return r.doc.Update(&docs, func() error {
		docs[idKey(rec.TelegramID)] = progressToDoc(rec)
		return nil
	})
}

// Delete removes a progress record. Used by the reset command.
func (r *ProgressRepository) Delete(ctx context.Context, telegramID int64) error {
	docs := map[string]progressDoc{}
	return r.doc.Update(&docs, func() error {
		delete(docs, idKey(telegramID))
		return nil
	})
}

// ─────────────────────────────────────────────────────────────────────────────
// mapping
// ─────────────────────────────────────────────────────────────────────────────

func progressToDoc(rec *progress.Record) progressDoc {
	modules := make([]string, len(rec.CompletedModules))
	for i, m := range rec.CompletedModules {
		modules[i] = string(m)
	}
	topics := make([]string, len(rec.RecentTopics))
	copy(topics, rec.RecentTopics)
	return progressDoc{
		TelegramID:       rec.TelegramID,
		CompletedModules: modules,
		SkillLevel:       string(rec.SkillLevel),
		StreakCount:      rec.StreakCount,
		QuizzesTaken:     rec.QuizzesTaken,
		RecentTopics:     topics,
		LastActivityDate: rec.LastActivityDate,
		UpdatedAt:        rec.UpdatedAt,
	}
}

func docToProgress(doc progressDoc) *progress.Record {
	modules := make([]progress.ModuleID, len(doc.CompletedModules))
	for i, m := range doc.CompletedModules {
		modules[i] = progress.ModuleID(m)
	}
	topics := make([]string, len(doc.RecentTopics))
	copy(topics, doc.RecentTopics)
	return &progress.Record{
		TelegramID:       doc.TelegramID,
		CompletedModules: modules,
		SkillLevel:       progress.SkillLevel(doc.SkillLevel),
		StreakCount:      doc.StreakCount,
		QuizzesTaken:     doc.QuizzesTaken,
		RecentTopics:     topics,
		LastActivityDate: doc.LastActivityDate,
		UpdatedAt:        doc.UpdatedAt,
	}
}
