package penalty

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLedger() *Ledger {
	return NewLedger(DefaultConfig())
}

func day(d int) time.Time {
	return time.Date(2026, time.March, d, 12, 0, 0, 0, time.UTC)
}

func TestRecordMiss_ChargesUnit(t *testing.T) {
	l := testLedger()
	rec := NewRecord(42, "neel")

	res := l.RecordMiss(rec, day(1))

	assert.Equal(t, Money(10000), res.Charged)
	assert.Equal(t, Money(10000), rec.Outstanding)
	assert.Equal(t, 1, rec.ConsecutiveMisses)
	assert.Equal(t, 1, rec.MissedDays)
	assert.Equal(t, StateOwing, l.State(rec))
	assert.False(t, res.Escalated)
}

func TestRecordMiss_SameDayDoubleMiss(t *testing.T) {
	l := testLedger()
	rec := NewRecord(42, "neel")

	l.RecordMiss(rec, day(1))
	res := l.RecordMiss(rec, day(1))

	// No day elapsed, so no interest between the two charges.
	assert.Equal(t, Money(0), res.InterestAccrued)
	assert.Equal(t, Money(20000), rec.Outstanding)
	assert.Equal(t, 2, rec.ConsecutiveMisses)
}

func TestRecordMiss_NextDayAccruesInterestFirst(t *testing.T) {
	l := testLedger()
	rec := NewRecord(42, "neel")

	l.RecordMiss(rec, day(1))
	res := l.RecordMiss(rec, day(2))

	// 100.00 grows to 118.00 before the second unit lands.
	assert.Equal(t, Money(1800), res.InterestAccrued)
	assert.Equal(t, Money(21800), rec.Outstanding)
}

func TestRecordDone_ResetsRunKeepsBalance(t *testing.T) {
	l := testLedger()
	rec := NewRecord(42, "neel")

	l.RecordMiss(rec, day(1))
	l.RecordMiss(rec, day(1))
	state := l.RecordDone(rec, day(1))

	assert.Equal(t, 0, rec.ConsecutiveMisses)
	assert.Equal(t, Money(20000), rec.Outstanding)
	assert.Equal(t, StateOwing, state)
}

func TestRecordMiss_ThirdConsecutiveEscalates(t *testing.T) {
	l := testLedger() // threshold 2
	rec := NewRecord(42, "neel")

	first := l.RecordMiss(rec, day(1))
	second := l.RecordMiss(rec, day(1))
	third := l.RecordMiss(rec, day(1))

	assert.False(t, first.Escalated)
	assert.False(t, second.Escalated)
	assert.True(t, third.Escalated)
	assert.Equal(t, Money(30000), third.Donated)
	assert.Equal(t, Money(0), rec.Outstanding)
	assert.Equal(t, Money(30000), rec.DonatedTotal)
	assert.Equal(t, StateEscalated, l.State(rec))
}

func TestRecordMiss_DoneBreaksTheRun(t *testing.T) {
	l := testLedger()
	rec := NewRecord(42, "neel")

	l.RecordMiss(rec, day(1))
	l.RecordMiss(rec, day(1))
	l.RecordDone(rec, day(1))
	res := l.RecordMiss(rec, day(1))

	// The done reset the run, so this miss is the first of a new run.
	assert.False(t, res.Escalated)
	assert.Equal(t, 1, rec.ConsecutiveMisses)
	assert.Equal(t, Money(30000), rec.Outstanding)
}

func TestRecordPayment(t *testing.T) {
	tests := []struct {
		name            string
		outstanding     Money
		amount          Money
		wantErr         error
		wantApplied     Money
		wantOutstanding Money
	}{
		{
			name:            "partial payment",
			outstanding:     20000,
			amount:          5000,
			wantApplied:     5000,
			wantOutstanding: 15000,
		},
		{
			name:            "exact payment clears",
			outstanding:     20000,
			amount:          20000,
			wantApplied:     20000,
			wantOutstanding: 0,
		},
		{
			name:            "overshoot within tolerance floors at zero",
			outstanding:     20000,
			amount:          20099,
			wantApplied:     20000,
			wantOutstanding: 0,
		},
		{
			name:        "overshoot beyond tolerance rejected",
			outstanding: 20000,
			amount:      25000,
			wantErr:     ErrPaymentExceedsBalance,
		},
		{
			name:        "zero amount rejected",
			outstanding: 20000,
			amount:      0,
			wantErr:     ErrNonPositiveAmount,
		},
		{
			name:        "negative amount rejected",
			outstanding: 20000,
			amount:      -100,
			wantErr:     ErrNonPositiveAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := testLedger()
			rec := NewRecord(42, "neel")
			l.RecordMiss(rec, day(1))
			l.RecordMiss(rec, day(1))
			require.Equal(t, tt.outstanding, rec.Outstanding)

			before := rec.Clone()
			applied, err := l.RecordPayment(rec, tt.amount, day(1))

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				// A rejected payment leaves the record untouched.
				assert.Equal(t, before.Outstanding, rec.Outstanding)
				assert.Equal(t, before.ConsecutiveMisses, rec.ConsecutiveMisses)
				assert.Len(t, rec.History, len(before.History))
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantApplied, applied)
			assert.Equal(t, tt.wantOutstanding, rec.Outstanding)
			assert.Equal(t, 0, rec.ConsecutiveMisses)
			assert.Equal(t, tt.wantApplied, rec.PaidTotal)
		})
	}
}

func TestApplyDailyInterest_CompoundsPerDay(t *testing.T) {
	l := testLedger()
	rec := NewRecord(42, "neel")
	l.RecordMiss(rec, day(1))

	accrued := l.ApplyDailyInterest(rec, day(3))

	// Two elapsed days: 100.00 -> 118.00 -> 139.24.
	assert.Equal(t, Money(3924), accrued)
	assert.Equal(t, Money(13924), rec.Outstanding)
}

func TestApplyDailyInterest_IdempotentPerDay(t *testing.T) {
	l := testLedger()
	rec := NewRecord(42, "neel")
	l.RecordMiss(rec, day(1))

	first := l.ApplyDailyInterest(rec, day(2))
	second := l.ApplyDailyInterest(rec, day(2))

	assert.Equal(t, Money(1800), first)
	assert.Equal(t, Money(0), second)
	assert.Equal(t, Money(11800), rec.Outstanding)
}

func TestApplyDailyInterest_ZeroBalanceAdvancesMarker(t *testing.T) {
	l := testLedger()
	rec := NewRecord(42, "neel")
	l.RecordMiss(rec, day(1))
	_, err := l.RecordPayment(rec, 10000, day(1))
	require.NoError(t, err)

	accrued := l.ApplyDailyInterest(rec, day(5))

	assert.Equal(t, Money(0), accrued)
	assert.Equal(t, Money(0), rec.Outstanding)

	// A later charge must not back-bill the cleared days.
	res := l.RecordMiss(rec, day(5))
	assert.Equal(t, Money(0), res.InterestAccrued)
	assert.Equal(t, Money(10000), rec.Outstanding)
}

func TestRequestException(t *testing.T) {
	l := testLedger()
	rec := NewRecord(42, "neel")
	l.RecordMiss(rec, day(1))

	require.ErrorIs(t, l.RequestException(rec, "", day(1)), ErrEmptyReason)

	require.NoError(t, l.RequestException(rec, "fever, doctor's note attached", day(1)))
	assert.Equal(t, Money(10000), rec.Outstanding)
	assert.Equal(t, 1, rec.ConsecutiveMisses)
	last := rec.History[len(rec.History)-1]
	assert.Equal(t, EventException, last.Type)
	assert.Equal(t, "fever, doctor's note attached", last.Note)
}

// The journal must reconstruct the outstanding amount after any mix of
// transitions.
func TestHistory_ReconstructsOutstanding(t *testing.T) {
	l := testLedger()
	rec := NewRecord(42, "neel")

	l.RecordMiss(rec, day(1))
	l.RecordMiss(rec, day(2))
	l.RecordDone(rec, day(3))
	l.ApplyDailyInterest(rec, day(4))
	_, err := l.RecordPayment(rec, 5000, day(4))
	require.NoError(t, err)
	l.RecordMiss(rec, day(5))
	l.RecordMiss(rec, day(5))
	l.RecordMiss(rec, day(5)) // escalates, donation write-off

	assert.Equal(t, rec.Outstanding, rec.ReconstructOutstanding())
	require.NoError(t, rec.Validate())
	assert.GreaterOrEqual(t, rec.Outstanding, Money(0))
}

func TestLedger_ScenarioMissMissDone(t *testing.T) {
	l := testLedger()
	rec := NewRecord(42, "neel")

	first := l.RecordMiss(rec, day(1))
	assert.Equal(t, Money(10000), first.Outstanding)

	second := l.RecordMiss(rec, day(2))
	assert.Equal(t, Money(21800), second.Outstanding)

	state := l.RecordDone(rec, day(3))
	assert.Equal(t, 0, rec.ConsecutiveMisses)
	assert.Equal(t, Money(21800), rec.Outstanding)
	assert.Equal(t, StateOwing, state)
	assert.Equal(t, rec.Outstanding, rec.ReconstructOutstanding())
}

func TestLedger_TimezoneDayBoundary(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Location = time.FixedZone("IST", 5*3600+1800)
	l := NewLedger(cfg)
	rec := NewRecord(42, "neel")

	// 20:00 UTC on the 1st is already the 2nd in IST; 19:00 UTC on the
	// 2nd is still the 2nd in IST, so no day elapses between them.
	l.RecordMiss(rec, time.Date(2026, time.March, 1, 20, 0, 0, 0, time.UTC))
	accrued := l.ApplyDailyInterest(rec, time.Date(2026, time.March, 2, 19, 0, 0, 0, time.UTC))

	assert.Equal(t, Money(0), accrued)
}
