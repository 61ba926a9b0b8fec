package calendar

import (
	"fmt"
	"sort"
	"time"
)

// Holiday is a weekday calendar that also closes on listed dates
type Holiday struct {
	closed map[time.Time]struct{}
}

// NewHoliday creates a calendar closed on weekends and the given dates.
// Dates are truncated to calendar days; weekend entries are harmless.
func NewHoliday(holidays []time.Time) *Holiday {
	closed := make(map[time.Time]struct{}, len(holidays))
	for _, h := range holidays {
		closed[Date(h)] = struct{}{}
	}
	return &Holiday{closed: closed}
}

// ParseHolidays parses YYYY-MM-DD strings into dates
func ParseHolidays(values []string) ([]time.Time, error) {
	out := make([]time.Time, 0, len(values))
	for _, v := range values {
		d, err := time.Parse("2006-01-02", v)
		if err != nil {
			return nil, fmt.Errorf("parse holiday %q: %w", v, err)
		}
		out = append(out, d)
	}
	return out, nil
}

// IsBusinessDay returns false on weekends and holidays
func (h *Holiday) IsBusinessDay(date time.Time) bool {
	if !(Weekday{}).IsBusinessDay(date) {
		return false
	}
	_, holiday := h.closed[Date(date)]
	return !holiday
}

// Range returns the open days in [start, end]
func (h *Holiday) Range(start, end time.Time) []time.Time {
	return scan(h, start, end)
}

// StepBack moves n open days before date
func (h *Holiday) StepBack(date time.Time, n int) time.Time {
	return stepBack(h, date, n)
}

// RollForward returns the next open day on or after date
func (h *Holiday) RollForward(date time.Time) time.Time {
	return rollForward(h, date)
}

// Holidays returns the closed dates, ascending
func (h *Holiday) Holidays() []time.Time {
	out := make([]time.Time, 0, len(h.closed))
	for d := range h.closed {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}
