package continuous

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/wonny/rollover/internal/contracts"
)

const dateLayout = "2006-01-02"

// ErrPriceFile is returned for malformed price CSV input
var ErrPriceFile = errors.New("malformed price file")

type priceRow struct {
	date   time.Time
	values []float64
}

// ReadPriceCSV reads a "date,<contract>,..." table. Empty cells and "NaN"
// are missing prices. Rows may come in any order but dates must be unique.
func ReadPriceCSV(r io.Reader) (*contracts.PriceTable, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: no header", ErrPriceFile)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPriceFile, err)
	}
	if len(header) < 2 || !strings.EqualFold(strings.TrimSpace(header[0]), "date") {
		return nil, fmt.Errorf("%w: header must be date,<contract>,...", ErrPriceFile)
	}
	columns := make([]string, len(header)-1)
	for i, h := range header[1:] {
		columns[i] = strings.TrimSpace(h)
	}

	var rows []priceRow
	seen := make(map[time.Time]struct{})
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPriceFile, err)
		}

		line, _ := reader.FieldPos(0)
		date, err := time.Parse(dateLayout, strings.TrimSpace(record[0]))
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: bad date %q", ErrPriceFile, line, record[0])
		}
		if _, dup := seen[date]; dup {
			return nil, fmt.Errorf("%w: line %d: duplicate date %s", ErrPriceFile, line, record[0])
		}
		seen[date] = struct{}{}

		values := make([]float64, len(columns))
		for j, cell := range record[1:] {
			values[j], err = parsePrice(cell)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d column %s: %v", ErrPriceFile, line, columns[j], err)
			}
		}
		rows = append(rows, priceRow{date: date, values: values})
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no price rows", ErrPriceFile)
	}

	sort.Slice(rows, func(a, b int) bool { return rows[a].date.Before(rows[b].date) })

	dates := make([]time.Time, len(rows))
	for i, row := range rows {
		dates[i] = row.date
	}

	table, err := contracts.NewPriceTable(dates, columns)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPriceFile, err)
	}
	for i, row := range rows {
		for j, v := range row.values {
			table.Set(i, j, v)
		}
	}
	return table, nil
}

func parsePrice(cell string) (float64, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" || strings.EqualFold(cell, "nan") {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(cell, 64)
}

// WriteWeightsCSV writes a weight table as "date,<contract>,..."
func WriteWeightsCSV(w io.Writer, weights *contracts.WeightTable) error {
	out := csv.NewWriter(w)

	if err := out.Write(append([]string{"date"}, weights.Contracts()...)); err != nil {
		return err
	}

	record := make([]string, weights.Width()+1)
	for i := 0; i < weights.Len(); i++ {
		record[0] = weights.Date(i).Format(dateLayout)
		for j, v := range weights.Row(i) {
			record[j+1] = strconv.FormatFloat(v, 'f', -1, 64)
		}
		if err := out.Write(record); err != nil {
			return err
		}
	}

	out.Flush()
	return out.Error()
}

// WriteSeriesCSV writes a continuous series as "date,value"
func WriteSeriesCSV(w io.Writer, series *contracts.ContinuousSeries) error {
	out := csv.NewWriter(w)

	if err := out.Write([]string{"date", "value"}); err != nil {
		return err
	}
	for i, d := range series.Dates {
		if err := out.Write([]string{
			d.Format(dateLayout),
			strconv.FormatFloat(series.Values[i], 'f', -1, 64),
		}); err != nil {
			return err
		}
	}

	out.Flush()
	return out.Error()
}
