// Package user contains the user directory domain model: who talks to the
// bot, how they are displayed, and what role they carry. This is the core
// business layer - no external dependencies here.
package user

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// TelegramID is the immutable platform identity of a user.
type TelegramID int64

// IsValid checks that the TelegramID is positive.
func (t TelegramID) IsValid() bool {
	return t > 0
}

// ChatID identifies a Telegram chat (group or private).
type ChatID int64

// IsValid checks that the ChatID is non-zero. Group chat IDs are negative.
func (c ChatID) IsValid() bool {
	return c != 0
}

// ══════════════════════════════════════════════════════════════════════════════
// ROLES
// ══════════════════════════════════════════════════════════════════════════════

// Role defines what a user is allowed to do.
type Role string

const (
	// RoleLeader is the team leader: the only identity allowed to mutate
	// the penalty ledger and to toggle the daily tribute.
	RoleLeader Role = "leader"
	// RoleMember is a regular study group member.
	RoleMember Role = "member"
	// RoleGuest is anyone the bot has seen but who is not part of the team.
	RoleGuest Role = "guest"
)

// IsValid checks that the role is one of the known values.
func (r Role) IsValid() bool {
	switch r {
	case RoleLeader, RoleMember, RoleGuest:
		return true
	default:
		return false
	}
}

// CanAdministerPenalties reports whether this role may invoke
// penalty-mutating commands. The check fails closed: only an explicit
// leader passes.
func (r Role) CanAdministerPenalties() bool {
	return r == RoleLeader
}

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: USER RECORD
// ══════════════════════════════════════════════════════════════════════════════

// Record is a directory entry for one platform identity. Records are
// created on the first observed message from a new identity and are
// never deleted; only the display name is expected to change.
type Record struct {
	// ID is the internal unique identifier (UUID in string form).
	ID string

	// TelegramID is the platform identity. Immutable.
	TelegramID TelegramID

	// Username is the Telegram @username, if any.
	Username string

	// DisplayName is how the bot addresses the user.
	DisplayName string

	// Role determines permissions (leader / member / guest).
	Role Role

	// Aliases are additional names the user is recognised by
	// when checking whether the bot was addressed.
	Aliases []string

	// RegisteredAt is when the identity was first observed.
	RegisteredAt time.Time

	// UpdatedAt is when the record last changed.
	UpdatedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrNotFound - user record not found.
	ErrNotFound = errors.New("user not found")

	// ErrAlreadyExists - a record for this identity already exists.
	ErrAlreadyExists = errors.New("user already exists")

	// ErrInvalidTelegramID - the platform identity is not positive.
	ErrInvalidTelegramID = errors.New("invalid telegram id: must be positive")

	// ErrInvalidDisplayName - display name is empty or too long.
	ErrInvalidDisplayName = errors.New("invalid display name: must be 1-100 chars")

	// ErrInvalidRole - unknown role value.
	ErrInvalidRole = errors.New("invalid user role")
)

// ══════════════════════════════════════════════════════════════════════════════
// FACTORY & VALIDATION
// ══════════════════════════════════════════════════════════════════════════════

// NewRecordParams holds the parameters for creating a user record.
type NewRecordParams struct {
	ID          string
	TelegramID  TelegramID
	Username    string
	DisplayName string
	Role        Role
}

// NewRecord creates a user record with full field validation.
// An empty role defaults to guest; an empty display name falls back
// to the username.
func NewRecord(params NewRecordParams) (*Record, error) {
	if params.ID == "" {
		return nil, errors.New("user id is required")
	}

	if !params.TelegramID.IsValid() {
		return nil, ErrInvalidTelegramID
	}

	displayName := strings.TrimSpace(params.DisplayName)
	if displayName == "" {
		displayName = params.Username
	}
	if len(displayName) == 0 || len(displayName) > 100 {
		return nil, ErrInvalidDisplayName
	}

	role := params.Role
	if role == "" {
		role = RoleGuest
	}
	if !role.IsValid() {
		return nil, ErrInvalidRole
	}

	now := time.Now().UTC()

	return &Record{
		ID:           params.ID,
		TelegramID:   params.TelegramID,
		Username:     params.Username,
		DisplayName:  displayName,
		Role:         role,
		Aliases:      nil,
		RegisteredAt: now,
		UpdatedAt:    now,
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN METHODS
// ══════════════════════════════════════════════════════════════════════════════

// Rename updates the display name.
func (r *Record) Rename(displayName string) error {
	displayName = strings.TrimSpace(displayName)
	if len(displayName) == 0 || len(displayName) > 100 {
		return ErrInvalidDisplayName
	}
	r.DisplayName = displayName
	r.UpdatedAt = time.Now().UTC()
	return nil
}

// Promote changes the user's role.
func (r *Record) Promote(role Role) error {
	if !role.IsValid() {
		return ErrInvalidRole
	}
	r.Role = role
	r.UpdatedAt = time.Now().UTC()
	return nil
}

// AddAlias registers another name the user is recognised by.
// Duplicate aliases are ignored.
func (r *Record) AddAlias(alias string) {
	alias = strings.TrimSpace(alias)
	if alias == "" {
		return
	}
	for _, a := range r.Aliases {
		if strings.EqualFold(a, alias) {
			return
		}
	}
	r.Aliases = append(r.Aliases, alias)
	r.UpdatedAt = time.Now().UTC()
}

// KnownAs reports whether the given name matches the username, display
// name or any alias, case-insensitively.
func (r *Record) KnownAs(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	if strings.EqualFold(r.Username, name) || strings.EqualFold(r.DisplayName, name) {
		return true
	}
	for _, a := range r.Aliases {
		if strings.EqualFold(a, name) {
			return true
		}
	}
	return false
}

// String returns a compact representation for logging.
func (r *Record) String() string {
	return fmt.Sprintf("User{ID: %s, TG: %d, Name: %s, Role: %s}",
		r.ID, r.TelegramID, r.DisplayName, r.Role)
}

// Clone creates a deep copy of the record.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	clone := *r
	clone.Aliases = append([]string(nil), r.Aliases...)
	return &clone
}
