// Package validate contains pure date/time checks used by the scheduling
// service. Every function is total: bad input yields false, never a panic.
package validate

import (
	"regexp"
	"time"
)

// Clock abstracts time.Now so services and tests agree on "now".
type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

var (
	dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timeRe = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)
)

// IsValidDateFormat reports whether s is a zero-padded YYYY-MM-DD string
// naming a real calendar day. "2024-02-30" and "2024-2-03" both fail.
func IsValidDateFormat(s string) bool {
	if !dateRe.MatchString(s) {
		return false
	}
	_, err := time.Parse(dateLayout, s)
	return err == nil
}

// IsValidTimeFormat reports whether s is a zero-padded 24-hour HH:MM
// string. "24:00" and "9:30" both fail.
func IsValidTimeFormat(s string) bool {
	return timeRe.MatchString(s)
}

// IsFutureDate reports whether date is today or later, compared at
// calendar-day granularity in loc. The time of day is ignored.
func IsFutureDate(date string, now time.Time, loc *time.Location) bool {
	d, err := time.ParseInLocation(dateLayout, date, loc)
	if err != nil {
		return false
	}
	local := now.In(loc)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return !d.Before(today)
}

// IsFutureDateTime reports whether the combined date+tod instant lies
// strictly after now. Unlike IsFutureDate this is a full timestamp
// comparison, so a same-day slot whose time has passed fails.
func IsFutureDateTime(date, tod string, now time.Time, loc *time.Location) bool {
	inst, err := time.ParseInLocation(dateLayout+" "+timeLayout, date+" "+tod, loc)
	if err != nil {
		return false
	}
	return inst.After(now)
}

// IsWithinBusinessHours reports whether start <= tod <= end at minute
// resolution. Advisory only: callers annotate, they do not reject.
func IsWithinBusinessHours(tod, start, end string) bool {
	t, ok := minuteOfDay(tod)
	if !ok {
		return false
	}
	lo, ok := minuteOfDay(start)
	if !ok {
		return false
	}
	hi, ok := minuteOfDay(end)
	if !ok {
		return false
	}
	return lo <= t && t <= hi
}

func minuteOfDay(s string) (int, bool) {
	if !timeRe.MatchString(s) {
		return 0, false
	}
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return 0, false
	}
	return t.Hour()*60 + t.Minute(), true
}
