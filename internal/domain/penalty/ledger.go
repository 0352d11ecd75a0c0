package penalty

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// ══════════════════════════════════════════════════════════════════════════════
// LEDGER CONFIGURATION
// The interest rate and escalation threshold differed across revisions of
// the original ledger, so both are configuration, never constants.
// ══════════════════════════════════════════════════════════════════════════════

// Config holds the tunable parameters of the ledger state machine.
type Config struct {
	// Unit is the fixed amount charged per recorded miss.
	Unit Money

	// DailyRatePercent is the daily compound interest rate on the
	// outstanding amount, in percent (e.g. 18.0).
	DailyRatePercent float64

	// EscalationThreshold is the number of consecutive unresolved
	// misses tolerated before the donation action fires. With a
	// threshold of 2 the third consecutive miss escalates.
	EscalationThreshold int

	// PaymentTolerance is how far a payment may overshoot the
	// outstanding amount before it is rejected. Covers the rounding
	// slack of people paying round rupee figures.
	PaymentTolerance Money

	// Location is the timezone used for calendar-day arithmetic.
	Location *time.Location

	// NewID generates history entry IDs. Defaults to UUIDs.
	NewID func() string
}

// DefaultConfig returns the ledger parameters used by the study group:
// ₹100 per miss, 18% daily interest, escalation after 2 unresolved
// misses, ₹1 payment tolerance.
func DefaultConfig() Config {
	return Config{
		Unit:                10000,
		DailyRatePercent:    18.0,
		EscalationThreshold: 2,
		PaymentTolerance:    100,
		Location:            time.UTC,
	}
}

func (c Config) normalized() Config {
	if c.Location == nil {
		c.Location = time.UTC
	}
	if c.NewID == nil {
		c.NewID = uuid.NewString
	}
	return c
}

// ══════════════════════════════════════════════════════════════════════════════
// LEDGER
// All mutating transitions append to history before returning, so the
// outstanding amount stays reconstructible from the journal at every
// point. Authorization is enforced one layer up, uniformly for every
// mutating transition.
// ══════════════════════════════════════════════════════════════════════════════

// Ledger applies state machine transitions to penalty records.
type Ledger struct {
	cfg Config
}

// NewLedger creates a ledger with the given configuration.
func NewLedger(cfg Config) *Ledger {
	return &Ledger{cfg: cfg.normalized()}
}

// Unit returns the configured per-miss penalty amount.
func (l *Ledger) Unit() Money {
	return l.cfg.Unit
}

// EscalationThreshold returns the configured miss tolerance.
func (l *Ledger) EscalationThreshold() int {
	return l.cfg.EscalationThreshold
}

// DailyRatePercent returns the configured daily interest rate.
func (l *Ledger) DailyRatePercent() float64 {
	return l.cfg.DailyRatePercent
}

// State returns the record's current state under this ledger's threshold.
func (l *Ledger) State(rec *Record) State {
	return rec.State(l.cfg.EscalationThreshold)
}

// MissResult describes the outcome of a recorded miss.
type MissResult struct {
	// Charged is the penalty unit added by this miss.
	Charged Money

	// InterestAccrued is interest applied for days elapsed since the
	// last application, settled before the unit was added.
	InterestAccrued Money

	// Outstanding is the balance after the transition.
	Outstanding Money

	// ConsecutiveMisses is the unresolved miss run after the transition.
	ConsecutiveMisses int

	// Escalated is true when this miss pushed the run over the
	// threshold; the caller must fire the donation notification.
	Escalated bool

	// Donated is the amount written off when escalation fired.
	Donated Money
}

// RecordMiss charges one penalty unit and advances the unresolved miss
// run. Interest owed for elapsed days is settled first so the charge
// lands on an up-to-date balance. When the run exceeds the threshold
// the pending amount is written off as a donation and the result asks
// the caller to send the donation notification.
func (l *Ledger) RecordMiss(rec *Record, now time.Time) *MissResult {
	res := &MissResult{}
	res.InterestAccrued = l.accrueInterest(rec, now)

	rec.Outstanding += l.cfg.Unit
	rec.ConsecutiveMisses++
	rec.MissedDays++
	rec.LastMissDate = now
	l.append(rec, now, EventMiss, l.cfg.Unit, "missed daily progress")

	res.Charged = l.cfg.Unit

	if rec.ConsecutiveMisses > l.cfg.EscalationThreshold && rec.Outstanding > 0 {
		res.Escalated = true
		res.Donated = rec.Outstanding
		rec.DonatedTotal += rec.Outstanding
		l.append(rec, now, EventDonation, rec.Outstanding, "escalation: pending amount donated")
		rec.Outstanding = 0
	}

	res.Outstanding = rec.Outstanding
	res.ConsecutiveMisses = rec.ConsecutiveMisses
	rec.UpdatedAt = time.Now().UTC()
	return res
}

// RecordDone resets the unresolved miss run. The outstanding amount is
// untouched: doing the work stops the bleeding, it does not repay it.
func (l *Ledger) RecordDone(rec *Record, now time.Time) State {
	rec.ConsecutiveMisses = 0
	l.append(rec, now, EventDone, 0, "daily progress completed")
	rec.UpdatedAt = time.Now().UTC()
	return l.State(rec)
}

// RecordPayment applies a payment against the outstanding amount. The
// amount must be positive and may exceed the balance only by the
// configured tolerance; the applied amount is capped at the balance so
// the record never goes negative. Any payment also resets the
// unresolved miss run.
func (l *Ledger) RecordPayment(rec *Record, amount Money, now time.Time) (Money, error) {
	if amount <= 0 {
		return 0, ErrNonPositiveAmount
	}
	if amount > rec.Outstanding+l.cfg.PaymentTolerance {
		return 0, ErrPaymentExceedsBalance
	}

	applied := amount
	if applied > rec.Outstanding {
		applied = rec.Outstanding
	}

	rec.Outstanding -= applied
	rec.PaidTotal += applied
	rec.ConsecutiveMisses = 0
	l.append(rec, now, EventPayment, applied, "penalty payment")
	rec.UpdatedAt = time.Now().UTC()
	return applied, nil
}

// ApplyDailyInterest settles interest for every calendar day elapsed
// since the last application. Idempotent per day: a second call on the
// same day accrues nothing.
func (l *Ledger) ApplyDailyInterest(rec *Record, now time.Time) Money {
	accrued := l.accrueInterest(rec, now)
	if accrued > 0 {
		rec.UpdatedAt = time.Now().UTC()
	}
	return accrued
}

// RequestException records an excuse in history without touching the
// balance or the miss run. Forwarding the excuse to the admin contact
// is the caller's job.
func (l *Ledger) RequestException(rec *Record, reason string, now time.Time) error {
	if reason == "" {
		return ErrEmptyReason
	}
	l.append(rec, now, EventException, 0, reason)
	rec.UpdatedAt = time.Now().UTC()
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// internals
// ─────────────────────────────────────────────────────────────────────────────

// accrueInterest compounds the outstanding amount once per elapsed
// calendar day, rounding to the paise with round-half-up on each day.
// Days with a zero balance advance the marker without charging.
func (l *Ledger) accrueInterest(rec *Record, now time.Time) Money {
	today := l.startOfDay(now)

	if rec.LastInterestDate.IsZero() {
		// First contact: interest starts counting from the first
		// charge, or from today when the ledger is still clear.
		if !rec.LastMissDate.IsZero() {
			rec.LastInterestDate = l.startOfDay(rec.LastMissDate)
		} else {
			rec.LastInterestDate = today
		}
	}

	last := l.startOfDay(rec.LastInterestDate)
	if !last.Before(today) {
		return 0
	}

	var accrued Money
	for day := last.AddDate(0, 0, 1); !day.After(today); day = day.AddDate(0, 0, 1) {
		if rec.Outstanding > 0 {
			grown := roundHalfUp(float64(rec.Outstanding) * (1 + l.cfg.DailyRatePercent/100))
			accrued += grown - rec.Outstanding
			rec.Outstanding = grown
		}
	}
	rec.LastInterestDate = today

	if accrued > 0 {
		l.append(rec, now, EventInterest, accrued, "daily interest")
	}
	return accrued
}

// append adds a history entry. Every mutating transition goes through
// here so the journal stays complete.
func (l *Ledger) append(rec *Record, now time.Time, typ EventType, amount Money, note string) {
	rec.History = append(rec.History, HistoryEntry{
		ID:     l.cfg.NewID(),
		Date:   now,
		Type:   typ,
		Amount: amount,
		Note:   note,
	})
}

func (l *Ledger) startOfDay(t time.Time) time.Time {
	t = t.In(l.cfg.Location)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, l.cfg.Location)
}

// roundHalfUp rounds to the nearest minor unit, halves away from zero.
func roundHalfUp(v float64) Money {
	return Money(math.Floor(v + 0.5))
}
