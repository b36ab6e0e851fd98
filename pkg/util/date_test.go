package util

import (
	"strconv"
	"testing"
	"time"
)

func TestParseTimeRFC3339(t *testing.T) {
	s := "2024-10-10T10:10:10Z"
	got, ok := ParseTime(s)
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.UTC().Format(time.RFC3339) != s {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseTimeDateOnly(t *testing.T) {
	got, ok := ParseTime("2025-03-27")
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.Year() != 2025 || got.Month() != time.March || got.Day() != 27 {
		t.Fatalf("unexpected date %v", got)
	}
}

func TestParseTimeUnix(t *testing.T) {
	ts := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC).Unix()
	got, ok := ParseTime(strconv.FormatInt(ts, 10))
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.Unix() != ts {
		t.Fatalf("unexpected unix %v", got.Unix())
	}
}

func TestParseTimeDefault(t *testing.T) {
	def := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC)
	got := ParseTimeDefault("", def)
	if !got.Equal(def) {
		t.Fatalf("expected default")
	}
}

func TestParseNSEDate(t *testing.T) {
	for _, s := range []string{"27-Mar-2025", "27 Mar 2025", "2025-03-27"} {
		got, ok := ParseNSEDate(s)
		if !ok {
			t.Fatalf("%s: expected ok", s)
		}
		if got.Year() != 2025 || got.Month() != time.March || got.Day() != 27 {
			t.Fatalf("%s: unexpected date %v", s, got)
		}
	}
	if _, ok := ParseNSEDate("not-a-date"); ok {
		t.Fatalf("expected failure")
	}
}

func TestDaysUntil(t *testing.T) {
	now := time.Date(2025, 3, 20, 15, 30, 0, 0, time.UTC)
	expiry := time.Date(2025, 3, 27, 0, 0, 0, 0, time.UTC)
	if got := DaysUntil(now, expiry); got != 7 {
		t.Fatalf("expected 7, got %d", got)
	}
	if got := DaysUntil(expiry, now); got != -7 {
		t.Fatalf("expected -7, got %d", got)
	}
}

func TestIsMonthlyExpiry(t *testing.T) {
	// 2025-03-27 is the last Thursday of March 2025.
	if !IsMonthlyExpiry(time.Date(2025, 3, 27, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("last Thursday should be monthly")
	}
	if IsMonthlyExpiry(time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("mid-month Thursday should be weekly")
	}
}
