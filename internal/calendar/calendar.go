package calendar

import (
	"time"
)

// BusinessCalendar decides which calendar dates are trading days
// ⭐ SSOT: every business-day step in the repo goes through this interface
type BusinessCalendar interface {
	// IsBusinessDay reports whether date is a trading day
	IsBusinessDay(date time.Time) bool

	// Range returns the business days in [start, end], ascending
	Range(start, end time.Time) []time.Time

	// StepBack moves n business days before date.
	// StepBack(d, 1) is the last business day strictly before d.
	StepBack(date time.Time, n int) time.Time

	// RollForward returns date if it is a business day, otherwise the next one
	RollForward(date time.Time) time.Time
}

// Date truncates t to a UTC calendar date
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Weekday is the Mon–Fri calendar with no holidays
type Weekday struct{}

// NewWeekday creates a weekday-only calendar
func NewWeekday() Weekday {
	return Weekday{}
}

// IsBusinessDay returns false on Saturday and Sunday
func (Weekday) IsBusinessDay(date time.Time) bool {
	wd := date.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// Range returns the weekdays in [start, end]
func (w Weekday) Range(start, end time.Time) []time.Time {
	return scan(w, start, end)
}

// StepBack moves n weekdays before date
func (w Weekday) StepBack(date time.Time, n int) time.Time {
	return stepBack(w, date, n)
}

// RollForward moves a weekend date to the following Monday
func (w Weekday) RollForward(date time.Time) time.Time {
	return rollForward(w, date)
}

// scan walks [start, end] one calendar day at a time keeping business days
func scan(cal BusinessCalendar, start, end time.Time) []time.Time {
	start, end = Date(start), Date(end)
	if end.Before(start) {
		return []time.Time{}
	}

	// ~5/7 of the span are business days
	days := make([]time.Time, 0, int(end.Sub(start).Hours()/24)*5/7+1)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if cal.IsBusinessDay(d) {
			days = append(days, d)
		}
	}
	return days
}

func stepBack(cal BusinessCalendar, date time.Time, n int) time.Time {
	d := Date(date)
	for n > 0 {
		d = d.AddDate(0, 0, -1)
		if cal.IsBusinessDay(d) {
			n--
		}
	}
	return d
}

func rollForward(cal BusinessCalendar, date time.Time) time.Time {
	d := Date(date)
	for !cal.IsBusinessDay(d) {
		d = d.AddDate(0, 0, 1)
	}
	return d
}
