// Package progress contains the learning progress domain model: which
// modules a user finished, their skill level, and their daily streak.
// This is the core business layer - no external dependencies here.
package progress

import (
	"errors"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// ModuleID identifies one learning module (e.g. "crypto_basics").
type ModuleID string

// IsValid checks that the module id is non-empty.
func (m ModuleID) IsValid() bool {
	return len(m) > 0 && len(m) <= 64
}

// SkillLevel reflects how far a user has progressed.
type SkillLevel string

const (
	SkillBeginner     SkillLevel = "beginner"
	SkillIntermediate SkillLevel = "intermediate"
	SkillAdvanced     SkillLevel = "advanced"
)

// IsValid checks that the skill level is a known value.
func (s SkillLevel) IsValid() bool {
	switch s {
	case SkillBeginner, SkillIntermediate, SkillAdvanced:
		return true
	default:
		return false
	}
}

// skillForModuleCount derives the skill level from the number of
// completed modules: 0-2 beginner, 3-5 intermediate, 6+ advanced.
func skillForModuleCount(n int) SkillLevel {
	switch {
	case n >= 6:
		return SkillAdvanced
	case n >= 3:
		return SkillIntermediate
	default:
		return SkillBeginner
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: PROGRESS RECORD
// ══════════════════════════════════════════════════════════════════════════════

// Record tracks one user's learning progress. A record is created
// alongside the user directory entry and reset to defaults only on
// explicit user request.
type Record struct {
	// TelegramID is the owning platform identity.
	TelegramID int64

	// CompletedModules is the set of finished module ids,
	// in completion order.
	CompletedModules []ModuleID

	// SkillLevel is derived from the completed module count.
	SkillLevel SkillLevel

	// StreakCount is the number of consecutive active calendar days.
	StreakCount int

	// QuizzesTaken counts answered quizzes.
	QuizzesTaken int

	// RecentTopics holds the last few topics the user asked about,
	// newest last.
	RecentTopics []string

	// LastActivityDate is the last day (in the bot timezone) the user
	// interacted with learning content.
	LastActivityDate time.Time

	// UpdatedAt is when the record last changed.
	UpdatedAt time.Time
}

// maxRecentTopics bounds the RecentTopics list.
const maxRecentTopics = 5

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrNotFound - progress record not found.
	ErrNotFound = errors.New("progress record not found")

	// ErrInvalidModuleID - empty or oversized module id.
	ErrInvalidModuleID = errors.New("invalid module id")
)

// NewRecord creates a default-initialised progress record.
func NewRecord(telegramID int64) *Record {
	now := time.Now().UTC()
	return &Record{
		TelegramID: telegramID,
		SkillLevel: SkillBeginner,
		UpdatedAt:  now,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN METHODS
// ══════════════════════════════════════════════════════════════════════════════

// CompleteModule marks the module as finished. Completing a module the
// user already finished is a no-op. The skill level is re-derived from
// the new module count and the streak is touched for the given day.
func (r *Record) CompleteModule(id ModuleID, now time.Time) error {
	if !id.IsValid() {
		return ErrInvalidModuleID
	}
	if !r.HasCompleted(id) {
		r.CompletedModules = append(r.CompletedModules, id)
		r.SkillLevel = skillForModuleCount(len(r.CompletedModules))
	}
	r.TouchActivity(now)
	return nil
}

// HasCompleted reports whether the module is already finished.
func (r *Record) HasCompleted(id ModuleID) bool {
	for _, m := range r.CompletedModules {
		if m == id {
			return true
		}
	}
	return false
}

// RecordQuiz counts one answered quiz and touches the streak.
func (r *Record) RecordQuiz(now time.Time) {
	r.QuizzesTaken++
	r.TouchActivity(now)
}

// RecordTopic remembers a topic the user asked about, evicting the
// oldest entry once the bound is exceeded.
func (r *Record) RecordTopic(topic string, now time.Time) {
	if topic == "" {
		return
	}
	r.RecentTopics = append(r.RecentTopics, topic)
	if len(r.RecentTopics) > maxRecentTopics {
		r.RecentTopics = r.RecentTopics[len(r.RecentTopics)-maxRecentTopics:]
	}
	r.TouchActivity(now)
}

// TouchActivity updates the daily streak for activity happening at the
// given moment. The streak increments when the previous activity was
// exactly one calendar day earlier, resets to 1 after a longer gap, and
// stays unchanged within the same day. Calendar days are compared in
// the location of the supplied time.
func (r *Record) TouchActivity(now time.Time) {
	today := startOfDay(now)
	last := startOfDay(r.LastActivityDate.In(now.Location()))

	switch {
	case r.LastActivityDate.IsZero():
		r.StreakCount = 1
	case last.Equal(today):
		// Same day: streak untouched.
	case last.AddDate(0, 0, 1).Equal(today):
		r.StreakCount++
	default:
		r.StreakCount = 1
	}

	r.LastActivityDate = now
	r.UpdatedAt = time.Now().UTC()
}

// Reset restores the record to its default-initialised state.
func (r *Record) Reset() {
	r.CompletedModules = nil
	r.SkillLevel = SkillBeginner
	r.StreakCount = 0
	r.QuizzesTaken = 0
	r.RecentTopics = nil
	r.LastActivityDate = time.Time{}
	r.UpdatedAt = time.Now().UTC()
}

// OverallScore is a rough completion percentage used in status output:
// each completed module is worth an equal share of the given total.
func (r *Record) OverallScore(totalModules int) int {
	if totalModules <= 0 {
		return 0
	}
	score := len(r.CompletedModules) * 100 / totalModules
	if score > 100 {
		score = 100
	}
	return score
}

// Clone creates a deep copy of the record.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	clone := *r
	clone.CompletedModules = append([]ModuleID(nil), r.CompletedModules...)
	clone.RecentTopics = append([]string(nil), r.RecentTopics...)
	return &clone
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
