package validate

import (
	"testing"
	"time"
)

func TestIsValidDateFormat(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"2024-06-01", true},
		{"2099-12-31", true},
		{"2024-02-29", true},  // leap year
		{"2023-02-29", false}, // not a leap year
		{"2024-02-30", false},
		{"2024-13-01", false},
		{"2024-00-10", false},
		{"2024-6-01", false}, // no zero-padding tolerance
		{"2024-06-1", false},
		{"24-06-01", false},
		{"2024/06/01", false},
		{"2024-06-01 ", false},
		{"", false},
		{"not-a-date", false},
	}
	for _, tt := range tests {
		if got := IsValidDateFormat(tt.in); got != tt.want {
			t.Errorf("IsValidDateFormat(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestIsValidTimeFormat(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"00:00", true},
		{"09:30", true},
		{"23:59", true},
		{"24:00", false},
		{"9:30", false}, // no zero-padding tolerance
		{"09:3", false},
		{"12:60", false},
		{"12-30", false},
		{"", false},
		{"12:30:00", false},
	}
	for _, tt := range tests {
		if got := IsValidTimeFormat(tt.in); got != tt.want {
			t.Errorf("IsValidTimeFormat(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestIsFutureDate(t *testing.T) {
	loc := time.UTC
	now := time.Date(2024, 6, 15, 13, 45, 0, 0, loc)

	tests := []struct {
		name string
		date string
		want bool
	}{
		{"yesterday", "2024-06-14", false},
		{"today counts as future", "2024-06-15", true},
		{"tomorrow", "2024-06-16", true},
		{"far future", "2099-01-01", true},
		{"garbage", "xx", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsFutureDate(tt.date, now, loc); got != tt.want {
				t.Errorf("IsFutureDate(%q) = %v, want %v", tt.date, got, tt.want)
			}
		})
	}
}

func TestIsFutureDateTime(t *testing.T) {
	loc := time.UTC
	now := time.Date(2024, 6, 15, 13, 45, 0, 0, loc)

	tests := []struct {
		name string
		date string
		tod  string
		want bool
	}{
		{"same day earlier time", "2024-06-15", "09:00", false},
		{"same day exact minute is not strictly after", "2024-06-15", "13:45", false},
		{"same day later time", "2024-06-15", "14:00", true},
		{"next day", "2024-06-16", "00:00", true},
		{"previous day", "2024-06-14", "23:59", false},
		{"bad time", "2024-06-15", "25:00", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsFutureDateTime(tt.date, tt.tod, now, loc); got != tt.want {
				t.Errorf("IsFutureDateTime(%q, %q) = %v, want %v", tt.date, tt.tod, got, tt.want)
			}
		})
	}
}

func TestIsFutureDateRespectsTimezone(t *testing.T) {
	// 01:30 UTC on June 16 is still June 15 in Buenos Aires (UTC-3).
	ba := time.FixedZone("America/Argentina/Buenos_Aires", -3*60*60)
	now := time.Date(2024, 6, 16, 1, 30, 0, 0, time.UTC)

	if !IsFutureDate("2024-06-15", now, ba) {
		t.Error("2024-06-15 should still be today in UTC-3")
	}
	if IsFutureDate("2024-06-15", now, time.UTC) {
		t.Error("2024-06-15 should be past in UTC")
	}
}

func TestIsWithinBusinessHours(t *testing.T) {
	tests := []struct {
		tod  string
		want bool
	}{
		{"08:59", false},
		{"09:00", true}, // inclusive start
		{"12:30", true},
		{"18:00", true}, // inclusive end
		{"18:01", false},
		{"23:00", false},
		{"bad", false},
	}
	for _, tt := range tests {
		if got := IsWithinBusinessHours(tt.tod, "09:00", "18:00"); got != tt.want {
			t.Errorf("IsWithinBusinessHours(%q) = %v, want %v", tt.tod, got, tt.want)
		}
	}
}
