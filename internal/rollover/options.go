package rollover

import "fmt"

// DefaultWindow is the rollover window used when none is configured
const DefaultWindow = 5

// OrderPolicy decides what happens to a schedule not sorted by expiry
type OrderPolicy string

const (
	OrderReject OrderPolicy = "reject" // fail with ErrScheduleOrder
	OrderSort   OrderPolicy = "sort"   // sort by expiry and continue
)

// OverlapPolicy decides what happens when a rollover window starts before
// the contract's own hold period (or before the horizon)
type OverlapPolicy string

const (
	// OverlapClamp starts the window at the hold start and re-spreads the ramp
	OverlapClamp OverlapPolicy = "clamp"
	// OverlapReject fails with ErrWindowOverlap
	OverlapReject OverlapPolicy = "reject"
	// OverlapLastWrite writes days in expiry order; the later write replaces
	// the whole day's allocation and days before the horizon are dropped
	OverlapLastWrite OverlapPolicy = "last-write"
)

// Options configures a Builder
type Options struct {
	Window  int           // R, business days of blending; R+1 window days
	Order   OrderPolicy   // default OrderReject
	Overlap OverlapPolicy // default OverlapClamp
}

// DefaultOptions returns R=5, reject unsorted schedules, clamp overlaps
func DefaultOptions() Options {
	return Options{
		Window:  DefaultWindow,
		Order:   OrderReject,
		Overlap: OverlapClamp,
	}
}

// ParseOrderPolicy converts a config string to an OrderPolicy
func ParseOrderPolicy(s string) (OrderPolicy, error) {
	switch p := OrderPolicy(s); p {
	case OrderReject, OrderSort:
		return p, nil
	case "":
		return OrderReject, nil
	}
	return "", fmt.Errorf("%w: unknown order policy %q", ErrInvalidParameter, s)
}

// ParseOverlapPolicy converts a config string to an OverlapPolicy
func ParseOverlapPolicy(s string) (OverlapPolicy, error) {
	switch p := OverlapPolicy(s); p {
	case OverlapClamp, OverlapReject, OverlapLastWrite:
		return p, nil
	case "":
		return OverlapClamp, nil
	}
	return "", fmt.Errorf("%w: unknown overlap policy %q", ErrInvalidParameter, s)
}

func (o Options) validate() error {
	if o.Window < 0 {
		return newError(ErrInvalidParameter, "", "rollover window must be >= 0, got %d", o.Window)
	}
	if _, err := ParseOrderPolicy(string(o.Order)); err != nil {
		return err
	}
	if _, err := ParseOverlapPolicy(string(o.Overlap)); err != nil {
		return err
	}
	return nil
}

// withDefaults fills empty policies
func (o Options) withDefaults() Options {
	if o.Order == "" {
		o.Order = OrderReject
	}
	if o.Overlap == "" {
		o.Overlap = OverlapClamp
	}
	return o
}
