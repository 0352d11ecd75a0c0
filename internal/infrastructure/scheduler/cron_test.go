package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayaka-hub/ayaka-learning-bot/pkg/timeutil"
)

func TestParseCronExpression(t *testing.T) {
	tests := []struct {
		name    string
		expr    string
		wantErr bool
	}{
		{"every minute", "* * * * *", false},
		{"daily morning", "0 8 * * *", false},
		{"step", "*/15 * * * *", false},
		{"list", "0,30 9 * * *", false},
		{"range", "0 9-17 * * *", false},
		{"too few fields", "0 8 * *", true},
		{"minute out of range", "61 * * * *", true},
		{"garbage", "a b c d e", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCronExpression(tt.expr)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCronNextDailyFiring(t *testing.T) {
	expr, err := DailyAt(8, 0)
	require.NoError(t, err)

	// Before today's firing: fires today at 08:00.
	after := timeutil.DateTime(2026, 3, 10, 6, 30, 0)
	assert.Equal(t, timeutil.DateTime(2026, 3, 10, 8, 0, 0), expr.Next(after))

	// After today's firing: fires tomorrow.
	after = timeutil.DateTime(2026, 3, 10, 8, 0, 0)
	assert.Equal(t, timeutil.DateTime(2026, 3, 11, 8, 0, 0), expr.Next(after))
}

func TestCronNextKeepsLocation(t *testing.T) {
	expr := MustParseCronExpression("30 21 * * *")

	after := timeutil.DateTime(2026, 3, 10, 12, 0, 0)
	next := expr.Next(after)

	assert.Equal(t, 21, next.Hour())
	assert.Equal(t, 30, next.Minute())
	assert.Equal(t, timeutil.IndiaTZ.String(), next.Location().String())
}

func TestCronEveryMinutePreset(t *testing.T) {
	expr := MustParseCronExpression(EveryMinute)
	after := time.Date(2026, 3, 10, 12, 0, 30, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 10, 12, 1, 0, 0, time.UTC), expr.Next(after))
}
