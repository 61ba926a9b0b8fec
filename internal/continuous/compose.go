package continuous

import (
	"errors"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/wonny/rollover/internal/contracts"
	"github.com/wonny/rollover/pkg/logger"
)

// ErrShapeMismatch is returned when weights and prices do not share dates and contracts
var ErrShapeMismatch = errors.New("weights and prices have different shape")

// Composition is a continuous series plus the days that could not be priced
type Composition struct {
	Series  *contracts.ContinuousSeries
	Dropped []time.Time
}

// Compositor blends contract prices into one series
type Compositor struct {
	log *logger.Logger
}

// NewCompositor creates a Compositor. A nil logger discards.
func NewCompositor(log *logger.Logger) *Compositor {
	if log == nil {
		log = logger.Nop()
	}
	return &Compositor{log: log.Component("compositor")}
}

// Compose multiplies weights and prices element-wise and sums each day.
// Weights and prices must share dates and contract order.
func Compose(weights *contracts.WeightTable, prices *contracts.PriceTable) (*contracts.ContinuousSeries, error) {
	c, err := NewCompositor(nil).Compose(weights, prices)
	if err != nil {
		return nil, err
	}
	return c.Series, nil
}

// Compose blends prices by weight. A day is dropped when a contract carrying
// non-zero weight has no price; zero-weight contracts may be missing.
func (c *Compositor) Compose(weights *contracts.WeightTable, prices *contracts.PriceTable) (*Composition, error) {
	if weights == nil || !weights.Aligned(prices) {
		return nil, ErrShapeMismatch
	}

	w := weights.Matrix()
	var blended mat.Dense
	blended.MulElem(w, prices.Matrix())

	rows, cols := blended.Dims()
	out := &Composition{
		Series: &contracts.ContinuousSeries{
			Dates:  make([]time.Time, 0, rows),
			Values: make([]float64, 0, rows),
		},
	}

	for i := 0; i < rows; i++ {
		sum, priced := 0.0, true
		for j := 0; j < cols; j++ {
			if w.At(i, j) == 0 {
				continue
			}
			v := blended.At(i, j)
			if math.IsNaN(v) {
				priced = false
				break
			}
			sum += v
		}

		if !priced {
			out.Dropped = append(out.Dropped, weights.Date(i))
			continue
		}
		out.Series.Dates = append(out.Series.Dates, weights.Date(i))
		out.Series.Values = append(out.Series.Values, sum)
	}

	if len(out.Dropped) > 0 {
		c.log.WithFields(map[string]interface{}{
			"dropped": len(out.Dropped),
			"first":   out.Dropped[0].Format("2006-01-02"),
		}).Warn("days without prices for weighted contracts")
	}

	return out, nil
}

// Align reindexes prices onto the weight table's dates and contracts.
// Cells with no source price are missing.
func Align(weights *contracts.WeightTable, prices *contracts.PriceTable) (*contracts.PriceTable, error) {
	if weights == nil || prices == nil {
		return nil, ErrShapeMismatch
	}
	return prices.Reindex(weights.Dates(), weights.Contracts())
}
