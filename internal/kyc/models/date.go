package models

import (
	"errors"
	"time"
)

// dateLayout is the canonical rendering of a Date.
const dateLayout = "2006-01-02"

// ErrInvalidDate indicates the components do not name a real calendar day.
var ErrInvalidDate = errors.New("invalid date: not a real calendar date")

// Date is a civil calendar date with no time-of-day or zone.
//
// Invariants:
//   - A set Date always names a real calendar day (no 31 February)
//   - Stored at midnight UTC so comparisons are day-granular
//   - 0001-01-01 is a set date; only the zero value is unset
type Date struct {
	value time.Time
	set   bool
}

// NewDate creates a Date, rejecting components that would be normalized
// into a different day (e.g. 2021-02-30 becoming 2021-03-02).
func NewDate(year int, month time.Month, day int) (Date, error) {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != month || t.Day() != day {
		return Date{}, ErrInvalidDate
	}
	return Date{value: t, set: true}, nil
}

// MustDate creates a Date, panicking if invalid.
// Use only in tests or when the value is known to be valid.
func MustDate(year int, month time.Month, day int) Date {
	d, err := NewDate(year, month, day)
	if err != nil {
		panic(err)
	}
	return d
}

// DateOf truncates a timestamp to its calendar day in the timestamp's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{value: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), set: true}
}

// Time returns the date at midnight UTC.
func (d Date) Time() time.Time {
	return d.value
}

// Year returns the calendar year.
func (d Date) Year() int {
	return d.value.Year()
}

// IsZero returns true if this is the zero value (uninitialized).
func (d Date) IsZero() bool {
	return !d.set
}

// Before reports whether d falls on an earlier day than other.
func (d Date) Before(other Date) bool {
	return d.value.Before(other.value)
}

// After reports whether d falls on a later day than other.
func (d Date) After(other Date) bool {
	return d.value.After(other.value)
}

// Equal reports whether both dates name the same day, or are both unset.
func (d Date) Equal(other Date) bool {
	return d.set == other.set && d.value.Equal(other.value)
}

// YearsUntil returns the number of whole years elapsed from d to other.
// The result is negative when other precedes d.
func (d Date) YearsUntil(other Date) int {
	years := other.value.Year() - d.value.Year()
	if other.value.Month() < d.value.Month() ||
		(other.value.Month() == d.value.Month() && other.value.Day() < d.value.Day()) {
		years--
	}
	return years
}

// String renders the date as YYYY-MM-DD, or "" for the zero value.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.value.Format(dateLayout)
}

// MarshalText implements encoding.TextMarshaler.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Only the canonical
// YYYY-MM-DD form is accepted; lenient parsing belongs to the normalizer.
func (d *Date) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*d = Date{}
		return nil
	}
	t, err := time.Parse(dateLayout, string(text))
	if err != nil {
		return ErrInvalidDate
	}
	*d = DateOf(t)
	return nil
}
