package contracts

import (
	"sort"
	"time"
)

// Expiry pairs a contract with its expiry date
type Expiry struct {
	Contract string    `json:"contract"`
	Date     time.Time `json:"expiry"`
}

// ExpirySchedule is the ordered chain of contracts to roll through.
// ⭐ SSOT: chain order is ascending expiry, never insertion order
type ExpirySchedule []Expiry

// Contracts returns the contract labels in schedule order
func (s ExpirySchedule) Contracts() []string {
	out := make([]string, len(s))
	for i, e := range s {
		out[i] = e.Contract
	}
	return out
}

// Lookup returns the expiry of a contract
func (s ExpirySchedule) Lookup(contract string) (time.Time, bool) {
	for _, e := range s {
		if e.Contract == contract {
			return e.Date, true
		}
	}
	return time.Time{}, false
}

// Last returns the final expiry of the chain (zero Expiry when empty)
func (s ExpirySchedule) Last() Expiry {
	if len(s) == 0 {
		return Expiry{}
	}
	return s[len(s)-1]
}

// IsSorted reports whether expiries are non-decreasing
func (s ExpirySchedule) IsSorted() bool {
	return sort.SliceIsSorted(s, func(i, j int) bool {
		return s[i].Date.Before(s[j].Date)
	})
}

// Sorted returns a copy ordered by expiry. Ties keep input order.
func (s ExpirySchedule) Sorted() ExpirySchedule {
	out := make(ExpirySchedule, len(s))
	copy(out, s)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}
