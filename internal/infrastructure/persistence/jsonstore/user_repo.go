package jsonstore

import (
	"context"
	"time"

	"github.com/ayaka-hub/ayaka-learning-bot/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// USER REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// userDoc is the on-disk shape of a user record.
type userDoc struct {
	ID           string    `json:"id"`
	TelegramID   int64     `json:"telegram_id"`
	Username     string    `json:"username,omitempty"`
	DisplayName  string    `json:"display_name"`
	Role         string    `json:"role"`
	Aliases      []string  `json:"aliases,omitempty"`
	RegisteredAt time.Time `json:"registered_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserRepository implements user.Repository over users.json.
type UserRepository struct {
	doc *Document
}

// NewUserRepository creates a user repository backed by the given file.
func NewUserRepository(path string) (*UserRepository, error) {
	doc, err := NewDocument(path)
	if err != nil {
		return nil, err
	}
	return &UserRepository{doc: doc}, nil
}

// Create stores a new user record.
func (r *UserRepository) Create(ctx context.Context, rec *user.Record) error {
	docs := map[string]userDoc{}
	return r.doc.Update(&docs, func() error {
		key := idKey(int64(rec.TelegramID))
		if _, exists := docs[key]; exists {
			return user.ErrAlreadyExists
		}
		docs[key] = userToDoc(rec)
		return nil
	})
}

// GetByTelegramID returns the record for a platform identity.
func (r *UserRepository) GetByTelegramID(ctx context.Context, telegramID user.TelegramID) (*user.Record, error) {
	docs := map[string]userDoc{}
	if err := r.doc.Load(&docs); err != nil {
		return nil, err
	}

	doc, ok := docs[idKey(int64(telegramID))]
	if !ok {
		return nil, user.ErrNotFound
	}
	return docToUser(doc), nil
}

// Update replaces an existing user record.
func (r *UserRepository) Update(ctx context.Context, rec *user.Record) error {
	docs := map[string]userDoc{}
	return r.doc.Update(&docs, func() error {
		key := idKey(int64(rec.TelegramID))
		if _, exists := docs[key]; !exists {
			return user.ErrNotFound
		}
		docs[key] = userToDoc(rec)
		return nil
	})
}

// GetAll returns every registered user.
func (r *UserRepository) GetAll(ctx context.Context) ([]*user.Record, error) {
	docs := map[string]userDoc{}
	if err := r.doc.Load(&docs); err != nil {
		return nil, err
	}

	records := make([]*user.Record, 0, len(docs))
	for _, doc := range docs {
		records = append(records, docToUser(doc))
	}
	return records, nil
}

// Count returns the number of registered users.
func (r *UserRepository) Count(ctx context.Context) (int, error) {
	docs := map[string]userDoc{}
	if err := r.doc.Load(&docs); err != nil {
		return 0, err
	}
	return len(docs), nil
}

// ─────────────────────────────────────────────────────────────────────────────
// mapping
// ─────────────────────────────────────────────────────────────────────────────

func userToDoc(rec *user.Record) userDoc {
	aliases := make([]string, len(rec.Aliases))
	copy(aliases, rec.Aliases)
	return userDoc{
		ID:           rec.ID,
		TelegramID:   int64(rec.TelegramID),
		Username:     rec.Username,
		DisplayName:  rec.DisplayName,
		Role:         string(rec.Role),
		Aliases:      aliases,
		RegisteredAt: rec.RegisteredAt,
		UpdatedAt:    rec.UpdatedAt,
	}
}

func docToUser(doc userDoc) *user.Record {
	aliases := make([]string, len(doc.Aliases))
	copy(aliases, doc.Aliases)
	return &user.Record{
		ID:           doc.ID,
		TelegramID:   user.TelegramID(doc.TelegramID),
		Username:     doc.Username,
		DisplayName:  doc.DisplayName,
		Role:         user.Role(doc.Role),
		Aliases:      aliases,
		RegisteredAt: doc.RegisteredAt,
		UpdatedAt:    doc.UpdatedAt,
	}
}
