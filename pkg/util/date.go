package util

import (
	"strconv"
	"time"
)

// nseExpiryLayouts are the date formats the NSE option-chain feed has been
// seen serving, most common first.
var nseExpiryLayouts = []string{
	"02-Jan-2006",
	"2-Jan-2006",
	"02 Jan 2006",
	"2006-01-02",
}

// ParseTime tries RFC3339, RFC3339Nano, date-only, and unix seconds.
// Returns (t, true) if any worked.
func ParseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
		return time.Unix(ts, 0), true
	}
	return time.Time{}, false
}

// ParseTimeDefault parses time or returns default if empty/invalid.
func ParseTimeDefault(s string, def time.Time) time.Time {
	if t, ok := ParseTime(s); ok {
		return t
	}
	return def
}

// ParseNSEDate parses an NSE expiry date string such as "26-Aug-2026".
func ParseNSEDate(s string) (time.Time, bool) {
	for _, layout := range nseExpiryLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DaysUntil counts whole calendar days from now's date to t's date.
// Negative when t is in the past.
func DaysUntil(now, t time.Time) int {
	nowDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	tDay := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return int(tDay.Sub(nowDay).Hours() / 24)
}

// IsMonthlyExpiry reports whether t is the last occurrence of its weekday in
// its month. NSE monthly contracts expire on the month's final Thursday (or
// Tuesday for some series), so "last such weekday" is the robust test.
func IsMonthlyExpiry(t time.Time) bool {
	return t.AddDate(0, 0, 7).Month() != t.Month()
}
