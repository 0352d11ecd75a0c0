package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDateTimeUsesIST(t *testing.T) {
	ts := DateTime(2026, 3, 10, 8, 0, 0)

	assert.Equal(t, IndiaTZ.String(), ts.Location().String())
	assert.Equal(t, 8, ts.Hour())
}

func TestFormatIndiaConvertsZone(t *testing.T) {
	// 03:30 UTC is 09:00 IST.
	utc := time.Date(2026, 3, 10, 3, 30, 0, 0, time.UTC)

	assert.Equal(t, "09:00", FormatIndia(utc, FormatTime))
	assert.Equal(t, "Mar 10", FormatIndia(utc, FormatShortDate))
}

func TestFormatRelative(t *testing.T) {
	now := Now()

	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{"just now", now.Add(-10 * time.Second), "just now"},
		{"minutes ago", now.Add(-5 * time.Minute), "5m ago"},
		{"hours ago", now.Add(-3 * time.Hour), "3h ago"},
		{"yesterday", now.Add(-26 * time.Hour), "yesterday"},
		{"days ago", now.Add(-3 * 24 * time.Hour), "3d ago"},
		{"weeks ago", now.Add(-10 * 24 * time.Hour), "1w ago"},
		{"future hours", now.Add(3*time.Hour + time.Minute), "in 3h"},
		{"tomorrow", now.Add(26 * time.Hour), "tomorrow"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatRelative(tt.t))
		})
	}
}

func TestIsSafeNotificationTime(t *testing.T) {
	tests := []struct {
		name string
		hour int
		want bool
	}{
		{"middle of the night", 3, false},
		{"just before the window", 6, false},
		{"window opens", 7, true},
		{"morning tribute hour", 8, true},
		{"evening", 21, true},
		{"window closes", 22, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := DateTime(2026, 3, 10, tt.hour, 30, 0)
			assert.Equal(t, tt.want, IsSafeNotificationTime(ts))
		})
	}
}

func TestNextSafeNotificationTime(t *testing.T) {
	night := DateTime(2026, 3, 10, 3, 0, 0)
	assert.Equal(t, DateTime(2026, 3, 10, 7, 0, 0), NextSafeNotificationTime(night))

	late := DateTime(2026, 3, 10, 23, 0, 0)
	assert.Equal(t, DateTime(2026, 3, 11, 7, 0, 0), NextSafeNotificationTime(late))

	midday := DateTime(2026, 3, 10, 12, 15, 0)
	assert.Equal(t, midday, NextSafeNotificationTime(midday))
}
