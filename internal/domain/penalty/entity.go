// Package penalty contains the penalty ledger domain model: a small
// state machine tracking one team member's daily task compliance, the
// money owed for missed days, compounding interest, and the donation
// escalation after a run of unresolved misses.
//
// All amounts are kept in minor currency units (paise) as int64 so that
// arithmetic is exact and rounding happens in exactly one place.
package penalty

import (
	"errors"
	"fmt"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// Money is a currency amount in minor units (paise). Negative amounts
// never appear in a valid record.
type Money int64

// IsValid checks that the amount is non-negative.
func (m Money) IsValid() bool {
	return m >= 0
}

// Rupees renders the amount as rupees with paise, e.g. "₹118.00".
func (m Money) Rupees() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s₹%d.%02d", sign, v/100, v%100)
}

// FromRupees converts a rupee value into minor units using round-half-up.
func FromRupees(rupees float64) Money {
	paise := rupees * 100
	if paise >= 0 {
		return Money(int64(paise + 0.5))
	}
	return Money(-int64(-paise + 0.5))
}

// State is the current position of the tracked member in the ledger
// state machine.
type State string

const (
	// StateClear - nothing outstanding, no unresolved misses.
	StateClear State = "clear"
	// StateOwing - there is an outstanding amount.
	StateOwing State = "owing"
	// StateEscalated - the run of unresolved misses exceeded the
	// configured threshold and the donation action has been triggered.
	StateEscalated State = "escalated"
)

// EventType classifies a ledger history entry.
type EventType string

const (
	// EventMiss - a missed daily task: one penalty unit charged.
	EventMiss EventType = "miss"
	// EventDone - the daily task was completed: the miss run resets.
	EventDone EventType = "done"
	// EventPayment - a payment against the outstanding amount.
	EventPayment EventType = "payment"
	// EventInterest - daily interest accrued on the outstanding amount.
	EventInterest EventType = "interest"
	// EventException - a recorded excuse; mutates nothing but history.
	EventException EventType = "exception"
	// EventDonation - the escalation action: the pending amount is
	// written off as a donation.
	EventDonation EventType = "donation"
)

// IsValid checks that the event type is a known value.
func (e EventType) IsValid() bool {
	switch e {
	case EventMiss, EventDone, EventPayment, EventInterest, EventException, EventDonation:
		return true
	default:
		return false
	}
}

// HistoryEntry is one appended ledger event. History is append-only and
// ordered; the outstanding amount must always be reconstructible from it.
type HistoryEntry struct {
	ID     string    `json:"id"`
	Date   time.Time `json:"date"`
	Type   EventType `json:"type"`
	Amount Money     `json:"amount,omitempty"`
	Note   string    `json:"note,omitempty"`
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrNotFound - no penalty record for this member.
	ErrNotFound = errors.New("penalty record not found")

	// ErrNotTracked - the identity is not the tracked team member.
	ErrNotTracked = errors.New("identity is not tracked by the penalty ledger")

	// ErrNonPositiveAmount - payments must be positive.
	ErrNonPositiveAmount = errors.New("payment amount must be positive")

	// ErrPaymentExceedsBalance - payment is larger than the outstanding
	// amount plus the configured tolerance.
	ErrPaymentExceedsBalance = errors.New("payment exceeds outstanding amount")

	// ErrEmptyReason - exception requests must carry a reason.
	ErrEmptyReason = errors.New("exception reason cannot be empty")
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: PENALTY RECORD
// ══════════════════════════════════════════════════════════════════════════════

// Record is the full ledger state for one tracked member. Records are
// created once at first use, mutated only by the ledger transitions,
// and never deleted - only zeroed.
type Record struct {
	// TelegramID is the tracked member's platform identity.
	TelegramID int64

	// Username is the tracked member's @username (used in status output).
	Username string

	// Outstanding is the unpaid amount: Σ misses + Σ interest −
	// Σ payments − Σ donations. Never negative.
	Outstanding Money

	// ConsecutiveMisses counts misses without an intervening done or
	// payment. Resets to 0 on either.
	ConsecutiveMisses int

	// MissedDays is the lifetime total of recorded misses.
	MissedDays int

	// PaidTotal is the lifetime total of recorded payments.
	PaidTotal Money

	// DonatedTotal is the lifetime total written off by escalation.
	DonatedTotal Money

	// LastMissDate is the calendar day of the most recent miss.
	LastMissDate time.Time

	// LastInterestDate is the last calendar day interest was applied,
	// making interest application idempotent per day.
	LastInterestDate time.Time

	// History is the append-only event journal.
	History []HistoryEntry

	// CreatedAt is when the record was first created.
	CreatedAt time.Time

	// UpdatedAt is when the record last changed.
	UpdatedAt time.Time
}

// NewRecord creates an empty ledger record for the tracked member.
func NewRecord(telegramID int64, username string) *Record {
	now := time.Now().UTC()
	return &Record{
		TelegramID: telegramID,
		Username:   username,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// State derives the current state from balance and miss run. The
// escalated state is reported while a donation event is the most recent
// resolution-relevant entry and the miss run has not been broken; in
// practice the ledger transitions keep it simple: escalated means the
// run exceeded the threshold and has not yet been reset.
func (r *Record) State(escalationThreshold int) State {
	if r.ConsecutiveMisses > escalationThreshold {
		return StateEscalated
	}
	if r.Outstanding > 0 {
		return StateOwing
	}
	return StateClear
}

// Pending returns the outstanding amount. Kept as a method so status
// rendering reads the same as the original ledger.
func (r *Record) Pending() Money {
	return r.Outstanding
}

// ReconstructOutstanding re-derives the outstanding amount from the
// history journal. A valid record always satisfies
// ReconstructOutstanding() == Outstanding.
func (r *Record) ReconstructOutstanding() Money {
	var sum Money
	for _, e := range r.History {
		switch e.Type {
		case EventMiss, EventInterest:
			sum += e.Amount
		case EventPayment, EventDonation:
			sum -= e.Amount
		}
	}
	return sum
}

// Validate checks the record's financial invariants.
func (r *Record) Validate() error {
	if !r.Outstanding.IsValid() {
		return fmt.Errorf("outstanding amount is negative: %d", r.Outstanding)
	}
	if r.ConsecutiveMisses < 0 {
		return fmt.Errorf("consecutive misses is negative: %d", r.ConsecutiveMisses)
	}
	if got := r.ReconstructOutstanding(); got != r.Outstanding {
		return fmt.Errorf("outstanding %d does not match history reconstruction %d",
			r.Outstanding, got)
	}
	for _, e := range r.History {
		if !e.Type.IsValid() {
			return fmt.Errorf("unknown history event type %q", e.Type)
		}
	}
	return nil
}

// Clone creates a deep copy of the record.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	clone := *r
	clone.History = append([]HistoryEntry(nil), r.History...)
	return &clone
}
