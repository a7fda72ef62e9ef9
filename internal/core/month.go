package core

import (
	"fmt"
	"time"
)

// Month is a calendar month key, rendered as "YYYY-MM". Budget assignments
// are unique per (month, category).
type Month struct {
	year  int
	month time.Month
}

// ParseMonth parses a "YYYY-MM" key.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Month{}, fmt.Errorf("month %q: %w", s, ErrInvalidArgument)
	}
	return Month{year: t.Year(), month: t.Month()}, nil
}

// MonthOf returns the month containing t.
func MonthOf(t time.Time) Month {
	return Month{year: t.Year(), month: t.Month()}
}

// NewMonth builds a month from a year and a 1-12 month number, normalizing
// out-of-range months the way time.Date does.
func NewMonth(year int, month time.Month) Month {
	t := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return Month{year: t.Year(), month: t.Month()}
}

// IsZero reports whether the month is the zero value.
func (m Month) IsZero() bool {
	return m.year == 0
}

// String renders the "YYYY-MM" key.
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.year, int(m.month))
}

// Add returns the month n calendar months later (n may be negative).
func (m Month) Add(n int) Month {
	t := time.Date(m.year, m.month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, n, 0)
	return Month{year: t.Year(), month: t.Month()}
}

// Before reports whether m precedes other.
func (m Month) Before(other Month) bool {
	if m.year != other.year {
		return m.year < other.year
	}
	return m.month < other.month
}

// UntilInclusive returns the number of calendar months from m through other,
// counting both ends. Returns 0 when other precedes m.
func (m Month) UntilInclusive(other Month) int {
	n := (other.year-m.year)*12 + int(other.month) - int(m.month) + 1
	if n < 0 {
		return 0
	}
	return n
}

// Range returns the half-open [start, end) time range covering the month.
func (m Month) Range() (time.Time, time.Time) {
	start := time.Date(m.year, m.month, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// Contains reports whether t falls inside the month.
func (m Month) Contains(t time.Time) bool {
	start, end := m.Range()
	return !t.Before(start) && t.Before(end)
}
