package penalty

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoney_Rupees(t *testing.T) {
	assert.Equal(t, "₹100.00", Money(10000).Rupees())
	assert.Equal(t, "₹118.00", Money(11800).Rupees())
	assert.Equal(t, "₹0.05", Money(5).Rupees())
	assert.Equal(t, "₹1234.56", Money(123456).Rupees())
}

func TestFromRupees_RoundsHalfUp(t *testing.T) {
	assert.Equal(t, Money(10000), FromRupees(100))
	assert.Equal(t, Money(11800), FromRupees(118.0))
	assert.Equal(t, Money(101), FromRupees(1.005))
	assert.Equal(t, Money(100), FromRupees(1.004))
}

func TestRecord_State(t *testing.T) {
	rec := NewRecord(42, "neel")
	assert.Equal(t, StateClear, rec.State(2))

	rec.Outstanding = 10000
	rec.ConsecutiveMisses = 2
	assert.Equal(t, StateOwing, rec.State(2))

	rec.ConsecutiveMisses = 3
	assert.Equal(t, StateEscalated, rec.State(2))
}

func TestRecord_Validate(t *testing.T) {
	rec := NewRecord(42, "neel")
	rec.Outstanding = 10000
	rec.History = []HistoryEntry{
		{ID: "1", Date: time.Now(), Type: EventMiss, Amount: 10000},
	}
	require.NoError(t, rec.Validate())

	// A balance the journal cannot account for is corruption.
	rec.Outstanding = 99999
	assert.Error(t, rec.Validate())

	rec.Outstanding = 10000
	rec.History[0].Type = "refund"
	assert.Error(t, rec.Validate())
}

func TestRecord_CloneIsDeep(t *testing.T) {
	rec := NewRecord(42, "neel")
	rec.History = []HistoryEntry{{ID: "1", Type: EventMiss, Amount: 10000}}

	clone := rec.Clone()
	clone.History[0].Amount = 1
	clone.Outstanding = 777

	assert.Equal(t, Money(10000), rec.History[0].Amount)
	assert.Equal(t, Money(0), rec.Outstanding)
}
