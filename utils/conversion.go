package utils

import (
	"fmt"
	"time"
)

// ISOWeekday maps a time.Weekday onto the 1..7 (Monday..Sunday) scheme used
// by availability windows and recurrences.
func ISOWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// ParseDate parses a "2006-01-02" date string in UTC.
func ParseDate(date string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, date, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return t, nil
}

// FormatDate renders t as a "2006-01-02" date string.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// MinutesToHHMM renders minutes-from-midnight as "HH:MM" for human-readable
// verdicts and notification payloads.
func MinutesToHHMM(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}
