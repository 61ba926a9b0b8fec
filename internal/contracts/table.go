package contracts

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ErrEmptyTable is returned when a table would have no rows or no columns
var ErrEmptyTable = errors.New("table needs at least one date and one contract")

// grid is a date × contract matrix shared by weight and price tables
type grid struct {
	dates     []time.Time
	contracts []string
	index     map[string]int
	data      *mat.Dense
}

func newGrid(dates []time.Time, contracts []string, values []float64) (grid, error) {
	if len(dates) == 0 || len(contracts) == 0 {
		return grid{}, ErrEmptyTable
	}
	if values != nil && len(values) != len(dates)*len(contracts) {
		return grid{}, fmt.Errorf("got %d values for %dx%d table", len(values), len(dates), len(contracts))
	}

	index := make(map[string]int, len(contracts))
	for i, c := range contracts {
		if _, dup := index[c]; dup {
			return grid{}, fmt.Errorf("duplicate contract column %q", c)
		}
		index[c] = i
	}

	// mat.NewDense keeps the slice, so copy to stay independent of the caller
	backing := make([]float64, len(dates)*len(contracts))
	if values != nil {
		copy(backing, values)
	}

	return grid{
		dates:     append([]time.Time(nil), dates...),
		contracts: append([]string(nil), contracts...),
		index:     index,
		data:      mat.NewDense(len(dates), len(contracts), backing),
	}, nil
}

// Len returns the number of dates (rows)
func (g grid) Len() int { return len(g.dates) }

// Width returns the number of contracts (columns)
func (g grid) Width() int { return len(g.contracts) }

// Dates returns a copy of the row index
func (g grid) Dates() []time.Time {
	return append([]time.Time(nil), g.dates...)
}

// Date returns the date of row i
func (g grid) Date(i int) time.Time { return g.dates[i] }

// Contracts returns a copy of the column labels
func (g grid) Contracts() []string {
	return append([]string(nil), g.contracts...)
}

// ColumnIndex returns the column of a contract
func (g grid) ColumnIndex(contract string) (int, bool) {
	j, ok := g.index[contract]
	return j, ok
}

// At returns the cell at row i, column j
func (g grid) At(i, j int) float64 { return g.data.At(i, j) }

// Row returns a copy of row i
func (g grid) Row(i int) []float64 {
	return mat.Row(nil, i, g.data)
}

// Column returns a copy of a contract's column
func (g grid) Column(contract string) ([]float64, bool) {
	j, ok := g.index[contract]
	if !ok {
		return nil, false
	}
	return mat.Col(nil, j, g.data), true
}

// RowIndex finds the row of a date by binary search over the sorted index
func (g grid) RowIndex(date time.Time) (int, bool) {
	lo, hi := 0, len(g.dates)
	for lo < hi {
		mid := (lo + hi) / 2
		if g.dates[mid].Before(date) {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < len(g.dates) && g.dates[lo].Equal(date) {
		return lo, true
	}
	return 0, false
}

// Matrix returns a copy of the underlying matrix
func (g grid) Matrix() *mat.Dense {
	return mat.DenseCopyOf(g.data)
}

// sameShape reports whether both grids share dates and contract labels in order
func (g grid) sameShape(other grid) bool {
	if len(g.dates) != len(other.dates) || len(g.contracts) != len(other.contracts) {
		return false
	}
	for i := range g.dates {
		if !g.dates[i].Equal(other.dates[i]) {
			return false
		}
	}
	for i := range g.contracts {
		if g.contracts[i] != other.contracts[i] {
			return false
		}
	}
	return true
}

// WeightTable holds each contract's share of the continuous series per day.
// ⭐ SSOT: immutable once built; rows sum to 1.0
type WeightTable struct {
	grid
}

// NewWeightTable copies values (row-major, len(dates)*len(contracts)) into a table
func NewWeightTable(dates []time.Time, contracts []string, values []float64) (*WeightTable, error) {
	g, err := newGrid(dates, contracts, values)
	if err != nil {
		return nil, err
	}
	return &WeightTable{grid: g}, nil
}

// Weight returns a contract's weight on a date
func (w *WeightTable) Weight(date time.Time, contract string) (float64, bool) {
	i, ok := w.RowIndex(date)
	if !ok {
		return 0, false
	}
	j, ok := w.ColumnIndex(contract)
	if !ok {
		return 0, false
	}
	return w.At(i, j), true
}

// RowSum returns the total allocation on row i
func (w *WeightTable) RowSum(i int) float64 {
	return floats.Sum(w.Row(i))
}

// Equal reports bit-identical content
func (w *WeightTable) Equal(other *WeightTable) bool {
	if other == nil || !w.sameShape(other.grid) {
		return false
	}
	return mat.Equal(w.data, other.data)
}

// Aligned reports whether prices share this table's dates and contract order
func (w *WeightTable) Aligned(prices *PriceTable) bool {
	return prices != nil && w.sameShape(prices.grid)
}

// PriceTable holds settlement prices per day and contract; NaN means missing
type PriceTable struct {
	grid
}

// NewPriceTable creates a price table with every cell missing
func NewPriceTable(dates []time.Time, contracts []string) (*PriceTable, error) {
	g, err := newGrid(dates, contracts, nil)
	if err != nil {
		return nil, err
	}
	for i := 0; i < g.Len(); i++ {
		for j := 0; j < g.Width(); j++ {
			g.data.Set(i, j, math.NaN())
		}
	}
	return &PriceTable{grid: g}, nil
}

// Set stores a price; NaN marks it missing
func (p *PriceTable) Set(i, j int, price float64) {
	p.data.Set(i, j, price)
}

// Price returns a contract's price on a date; false when absent or missing
func (p *PriceTable) Price(date time.Time, contract string) (float64, bool) {
	i, ok := p.RowIndex(date)
	if !ok {
		return 0, false
	}
	j, ok := p.ColumnIndex(contract)
	if !ok {
		return 0, false
	}
	v := p.At(i, j)
	return v, !math.IsNaN(v)
}

// Reindex returns a table over the given dates and contract order.
// Dates or contracts not present become missing.
func (p *PriceTable) Reindex(dates []time.Time, contracts []string) (*PriceTable, error) {
	out, err := NewPriceTable(dates, contracts)
	if err != nil {
		return nil, err
	}
	for i, d := range dates {
		src, ok := p.RowIndex(d)
		if !ok {
			continue
		}
		for j, c := range contracts {
			if col, ok := p.ColumnIndex(c); ok {
				out.Set(i, j, p.At(src, col))
			}
		}
	}
	return out, nil
}

// ContinuousSeries is the weight-blended price per day
type ContinuousSeries struct {
	Dates  []time.Time `json:"dates"`
	Values []float64   `json:"values"`
}

// Len returns the number of points
func (s *ContinuousSeries) Len() int {
	return len(s.Dates)
}

// Tail returns the last n points
func (s *ContinuousSeries) Tail(n int) *ContinuousSeries {
	start := len(s.Dates) - n
	if start < 0 {
		start = 0
	}
	return &ContinuousSeries{
		Dates:  s.Dates[start:],
		Values: s.Values[start:],
	}
}
