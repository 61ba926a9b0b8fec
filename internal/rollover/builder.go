package rollover

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/wonny/rollover/internal/calendar"
	"github.com/wonny/rollover/internal/contracts"
	"github.com/wonny/rollover/pkg/logger"
)

// Builder computes rollover weight tables for futures chains.
// Holds only configuration, so one Builder may serve concurrent callers.
type Builder struct {
	cal  calendar.BusinessCalendar
	opts Options
	log  *logger.Logger
}

// Roll describes one transfer from an expiring contract to its successor
type Roll struct {
	From        string    `json:"from"`
	To          string    `json:"to"`
	Expiry      time.Time `json:"expiry"`
	WindowStart time.Time `json:"window_start"`
	WindowEnd   time.Time `json:"window_end"` // last business day before Expiry
	Days        int       `json:"days"`       // window days inside the horizon
	Clamped     bool      `json:"clamped"`
}

// Result is a weight table plus the rolls that shaped it
type Result struct {
	Weights *contracts.WeightTable
	Rolls   []Roll
}

// NewBuilder creates a Builder. A nil calendar means Mon–Fri, a nil logger discards.
func NewBuilder(cal calendar.BusinessCalendar, opts Options, log *logger.Logger) *Builder {
	if cal == nil {
		cal = calendar.NewWeekday()
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Builder{
		cal:  cal,
		opts: opts.withDefaults(),
		log:  log.Component("rollover"),
	}
}

// BuildRolloverWeights builds weights on the weekday calendar with default policies
func BuildRolloverWeights(start time.Time, schedule contracts.ExpirySchedule, columns []string, window int) (*contracts.WeightTable, error) {
	opts := DefaultOptions()
	opts.Window = window
	return NewBuilder(nil, opts, nil).Build(start, schedule, columns)
}

// Build returns the weight table over [start, last expiry] × columns
func (b *Builder) Build(start time.Time, schedule contracts.ExpirySchedule, columns []string) (*contracts.WeightTable, error) {
	res, err := b.BuildResult(start, schedule, columns)
	if err != nil {
		return nil, err
	}
	return res.Weights, nil
}

// BuildResult is Build plus the list of rolls
// ⭐ SSOT: the only place rollover weights are computed
func (b *Builder) BuildResult(start time.Time, schedule contracts.ExpirySchedule, columns []string) (*Result, error) {
	if err := b.opts.validate(); err != nil {
		return nil, err
	}

	chain, err := b.normalize(schedule)
	if err != nil {
		return nil, err
	}

	if err := checkColumns(chain, columns); err != nil {
		return nil, err
	}

	lastDays, err := b.lastTradingDays(chain)
	if err != nil {
		return nil, err
	}

	first, err := b.horizonStart(start, chain, lastDays)
	if err != nil {
		return nil, err
	}

	days := b.cal.Range(first, chain.Last().Date)

	log := b.log.WithFields(map[string]interface{}{
		"contracts": len(chain),
		"days":      len(days),
		"window":    b.opts.Window,
	})
	log.Debug("building rollover weights")

	col := make(map[string]int, len(columns))
	for j, c := range columns {
		col[c] = j
	}

	t := newArena(len(days), len(columns))
	rolls := make([]Roll, 0, len(chain)-1)

	prev := 0
	for i, e := range chain {
		c := col[e.Contract]

		if i == len(chain)-1 {
			for r := prev; r < len(days); r++ {
				t.hold(r, c)
			}
			break
		}

		end := rowOf(days, lastDays[i])
		for r := prev; r <= end; r++ {
			t.hold(r, c)
		}

		roll, err := b.ramp(t, days, prev, end, c, col[chain[i+1].Contract])
		if err != nil {
			if se, ok := err.(*ScheduleError); ok {
				se.Contract = e.Contract
			}
			return nil, err
		}
		roll.From, roll.To, roll.Expiry = e.Contract, chain[i+1].Contract, e.Date
		if roll.Clamped {
			log.Debugf("clamped %s→%s window to %d days", roll.From, roll.To, roll.Days)
		}
		rolls = append(rolls, roll)

		prev = end + 1
	}

	weights, err := contracts.NewWeightTable(days, columns, t.cells)
	if err != nil {
		return nil, err
	}

	return &Result{Weights: weights, Rolls: rolls}, nil
}

// ramp blends out→in over the window ending on row end.
// prev is the first row of the outgoing contract's hold.
func (b *Builder) ramp(t *arena, days []time.Time, prev, end, out, in int) (Roll, error) {
	size := b.opts.Window + 1
	windowStart := b.cal.StepBack(days[end], b.opts.Window)

	lo := rowOf(days, windowStart)
	skip := 0
	clamped := false

	if windowStart.Before(days[prev]) {
		switch b.opts.Overlap {
		case OverlapReject:
			return Roll{}, newError(ErrWindowOverlap, "",
				"window starting %s precedes hold start %s",
				windowStart.Format("2006-01-02"), days[prev].Format("2006-01-02"))
		case OverlapClamp:
			lo = prev
			size = end - prev + 1
			clamped = true
		case OverlapLastWrite:
			// lo already points at the first window day inside the horizon
			skip = size - (end - lo + 1)
		}
	}

	decay := decayWeights(size)
	for k := 0; lo+k <= end; k++ {
		d := decay[skip+k]
		t.blend(lo+k, out, in, 1-d, d)
	}

	return Roll{
		WindowStart: days[lo],
		WindowEnd:   days[end],
		Days:        end - lo + 1,
		Clamped:     clamped,
	}, nil
}

// decayWeights returns n evenly spaced points from 0 to 1 inclusive.
// n == 1 is a hard cutover carrying the full transfer.
func decayWeights(n int) []float64 {
	d := make([]float64, n)
	if n == 1 {
		d[0] = 1
		return d
	}
	floats.Span(d, 0, 1)
	d[n-1] = 1
	return d
}

// normalize truncates dates, applies the order policy and rejects conflicts
func (b *Builder) normalize(schedule contracts.ExpirySchedule) (contracts.ExpirySchedule, error) {
	if len(schedule) == 0 {
		return nil, newError(ErrEmptySchedule, "", "no contracts in schedule")
	}

	chain := make(contracts.ExpirySchedule, len(schedule))
	seen := make(map[string]struct{}, len(schedule))
	for i, e := range schedule {
		if e.Contract == "" {
			return nil, newError(ErrInvalidParameter, "", "schedule entry %d has no contract label", i)
		}
		if e.Date.IsZero() {
			return nil, newError(ErrInvalidParameter, e.Contract, "missing expiry date")
		}
		if _, dup := seen[e.Contract]; dup {
			return nil, newError(ErrScheduleConflict, e.Contract, "listed more than once")
		}
		seen[e.Contract] = struct{}{}
		chain[i] = contracts.Expiry{Contract: e.Contract, Date: calendar.Date(e.Date)}
	}

	if !chain.IsSorted() {
		if b.opts.Order == OrderReject {
			return nil, newError(ErrScheduleOrder, firstOutOfOrder(chain), "expires before its predecessor")
		}
		b.log.Warn("expiry schedule not sorted, sorting by expiry")
		chain = chain.Sorted()
	}

	for i := 1; i < len(chain); i++ {
		if chain[i].Date.Equal(chain[i-1].Date) {
			return nil, newError(ErrScheduleConflict, chain[i].Contract,
				"shares expiry %s with %s", chain[i].Date.Format("2006-01-02"), chain[i-1].Contract)
		}
	}

	return chain, nil
}

func firstOutOfOrder(chain contracts.ExpirySchedule) string {
	for i := 1; i < len(chain); i++ {
		if chain[i].Date.Before(chain[i-1].Date) {
			return chain[i].Contract
		}
	}
	return ""
}

// lastTradingDays returns expiry − 1 business day per contract, which must
// be strictly increasing along the chain
func (b *Builder) lastTradingDays(chain contracts.ExpirySchedule) ([]time.Time, error) {
	out := make([]time.Time, len(chain))
	for i, e := range chain {
		out[i] = b.cal.StepBack(e.Date, 1)
		if i > 0 && !out[i].After(out[i-1]) {
			return nil, newError(ErrScheduleConflict, e.Contract,
				"expires on the same trading day as %s", chain[i-1].Contract)
		}
	}
	return out, nil
}

// horizonStart rolls start to a business day and checks the first contract
// still has at least one day to hold
func (b *Builder) horizonStart(start time.Time, chain contracts.ExpirySchedule, lastDays []time.Time) (time.Time, error) {
	if start.IsZero() {
		return time.Time{}, newError(ErrInvalidParameter, "", "start date is required")
	}

	first := b.cal.RollForward(start)

	limit := chain[0].Date
	if len(chain) > 1 {
		limit = lastDays[0]
	}
	if first.After(limit) {
		return time.Time{}, newError(ErrInvalidParameter, chain[0].Contract,
			"start %s is after last trading day %s", first.Format("2006-01-02"), limit.Format("2006-01-02"))
	}
	return first, nil
}

// checkColumns requires columns to be exactly the schedule's contracts
func checkColumns(chain contracts.ExpirySchedule, columns []string) error {
	if len(columns) == 0 {
		return newError(ErrEmptySchedule, "", "no contract columns requested")
	}

	seen := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		if _, dup := seen[c]; dup {
			return newError(ErrContractMismatch, c, "column requested more than once")
		}
		if _, ok := chain.Lookup(c); !ok {
			return newError(ErrContractMismatch, c, "column not in schedule")
		}
		seen[c] = struct{}{}
	}

	for _, e := range chain {
		if _, ok := seen[e.Contract]; !ok {
			return newError(ErrContractMismatch, e.Contract, "scheduled contract missing from columns")
		}
	}
	return nil
}

// rowOf returns the first row on or after date
func rowOf(days []time.Time, date time.Time) int {
	return sort.Search(len(days), func(i int) bool {
		return !days[i].Before(date)
	})
}

// arena is the mutable row-major grid written during a build
type arena struct {
	width int
	cells []float64
}

func newArena(rows, width int) *arena {
	return &arena{width: width, cells: make([]float64, rows*width)}
}

func (a *arena) row(r int) []float64 {
	return a.cells[r*a.width : (r+1)*a.width]
}

// hold gives the whole day to one contract
func (a *arena) hold(r, c int) {
	row := a.row(r)
	floats.Scale(0, row)
	row[c] = 1
}

// blend splits the day between two contracts
func (a *arena) blend(r, out, in int, wOut, wIn float64) {
	row := a.row(r)
	floats.Scale(0, row)
	row[out] = wOut
	row[in] = wIn
}
