// Package timeutil provides timezone utilities for India Standard Time (UTC+5:30).
// The study group runs on IST: streaks, misses and the morning tribute are all
// anchored to IST calendar days.
// No external dependencies - uses only standard library.
package timeutil

import (
	"fmt"
	"time"
)

// IndiaTZ is the India Standard Time zone (UTC+5:30, no DST).
// India has not observed DST since 1945, so this is constant year-round.
var IndiaTZ = time.FixedZone("Asia/Kolkata", 5*3600+1800)

// Now returns the current time in IST.
func Now() time.Time {
	return time.Now().In(IndiaTZ)
}

// ToIndia converts a time to IST.
func ToIndia(t time.Time) time.Time {
	return t.In(IndiaTZ)
}

// DateTime creates a time in IST with the given date and time.
func DateTime(year, month, day, hour, min, sec int) time.Time {
	return time.Date(year, time.Month(month), day, hour, min, sec, 0, IndiaTZ)
}

// Common date/time formats.
const (
	// FormatTime is the standard time format (HH:MM).
	FormatTime = "15:04"
	// FormatShortDate is a short format (Jan 2).
	FormatShortDate = "Jan 2"
)

// FormatIndia formats a time in IST with the given layout.
func FormatIndia(t time.Time, layout string) string {
	return ToIndia(t).Format(layout)
}

// FormatRelative returns a human-readable relative time string.
func FormatRelative(t time.Time) string {
	d := Now().Sub(ToIndia(t))
	if d < 0 {
		return formatFutureDuration(-d)
	}
	return formatPastDuration(d)
}

func formatPastDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		days := int(d.Hours() / 24)
		if days == 1 {
			return "yesterday"
		}
		return fmt.Sprintf("%dd ago", days)
	case d < 30*24*time.Hour:
		return fmt.Sprintf("%dw ago", int(d.Hours()/24/7))
	default:
		months := int(d.Hours() / 24 / 30)
		if months < 12 {
			return fmt.Sprintf("%dmo ago", months)
		}
		return fmt.Sprintf("%dy ago", months/12)
	}
}

func formatFutureDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "now"
	case d < time.Hour:
		return fmt.Sprintf("in %dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("in %dh", int(d.Hours()))
	default:
		days := int(d.Hours() / 24)
		if days == 1 {
			return "tomorrow"
		}
		return fmt.Sprintf("in %dd", days)
	}
}

// Notification timing helpers.

// quietHourStart and quietHourEnd bound the window in which group
// announcements may be sent. The window admits the 8:00 morning tribute.
const (
	quietHourEnd   = 7  // announcements allowed from 7:00 IST
	quietHourStart = 22 // and until 22:00 IST
)

// IsSafeNotificationTime checks if it's appropriate to post announcements
// to the group (7:00-22:00 IST).
func IsSafeNotificationTime(t time.Time) bool {
	hour := ToIndia(t).Hour()
	return hour >= quietHourEnd && hour < quietHourStart
}

// NextSafeNotificationTime returns the next time when announcements are
// appropriate. A time already inside the window is returned unchanged.
func NextSafeNotificationTime(t time.Time) time.Time {
	ist := ToIndia(t)
	hour := ist.Hour()

	if hour < quietHourEnd {
		return DateTime(ist.Year(), int(ist.Month()), ist.Day(), quietHourEnd, 0, 0)
	}
	if hour >= quietHourStart {
		next := ist.AddDate(0, 0, 1)
		return DateTime(next.Year(), int(next.Month()), next.Day(), quietHourEnd, 0, 0)
	}
	return ist
}
