package commands

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/wonny/rollover/internal/continuous"
	"github.com/wonny/rollover/internal/contracts"
)

// composeCmd represents the compose command
var composeCmd = &cobra.Command{
	Use:   "compose",
	Short: "Blend contract prices into a continuous series",
	Long: `Builds the chain's weight table, aligns a price file to it and blends
each day's prices by weight.

The price file is CSV with a header "date,<contract>,..." and YYYY-MM-DD dates.
Empty cells or NaN mark missing prices. A day is dropped when a contract with
non-zero weight has no price.

Flags:
  --prices    price CSV file (required, "-" reads stdin)
  --tail      print only the last N points
  --format    table | csv

Example:
  go run ./cmd/rollover compose --prices data/cl.csv
  go run ./cmd/rollover compose --prices data/cl.csv --tail 10 --window 3`,
	RunE: runCompose,
}

var (
	composePrices string
	composeTail   int
	composeFormat string
)

func init() {
	rootCmd.AddCommand(composeCmd)

	addPolicyFlags(composeCmd)
	composeCmd.Flags().StringVar(&composePrices, "prices", "", "price CSV file (required)")
	composeCmd.Flags().IntVar(&composeTail, "tail", 0, "print only the last N points (0 = all)")
	composeCmd.Flags().StringVar(&composeFormat, "format", formatTable, "output format (table|csv)")

	composeCmd.MarkFlagRequired("prices")
}

func runCompose(cmd *cobra.Command, args []string) error {
	if err := checkFormat(composeFormat, formatTable, formatCSV); err != nil {
		return err
	}

	c, err := loadChain(cmd)
	if err != nil {
		return err
	}

	res, err := c.build()
	if err != nil {
		return err
	}

	raw, err := readPrices(cmd, composePrices)
	if err != nil {
		return err
	}

	prices, err := continuous.Align(res.Weights, raw)
	if err != nil {
		return fmt.Errorf("align prices: %w", err)
	}

	composition, err := continuous.NewCompositor(log).Compose(res.Weights, prices)
	if err != nil {
		return err
	}

	series := composition.Series
	if composeTail > 0 {
		series = series.Tail(composeTail)
	}

	out := cmd.OutOrStdout()
	if composeFormat == formatCSV {
		return continuous.WriteSeriesCSV(out, series)
	}

	PrintChainHeader(out, ChainHeader{
		Title:   "Continuous Series",
		ChainID: c.cfg.Meta.ChainID,
		Path:    c.path,
		Window:  c.opts.Window,
		Policy:  fmt.Sprintf("order=%s overlap=%s", c.opts.Order, c.opts.Overlap),
	})
	printSeries(out, series)
	PrintSeparator(out)
	PrintKeyValue(out, "Points", strconv.Itoa(composition.Series.Len()), 8)
	PrintKeyValue(out, "Dropped", strconv.Itoa(len(composition.Dropped)), 8)
	if len(composition.Dropped) > 0 {
		PrintWarning(out, fmt.Sprintf("%d days dropped for missing prices, first %s",
			len(composition.Dropped), composition.Dropped[0].Format("2006-01-02")))
	}
	return nil
}

func readPrices(cmd *cobra.Command, path string) (*contracts.PriceTable, error) {
	var r io.Reader
	if path == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open prices: %w", err)
		}
		defer f.Close()
		r = f
	}

	prices, err := continuous.ReadPriceCSV(r)
	if err != nil {
		return nil, fmt.Errorf("read prices %s: %w", path, err)
	}
	return prices, nil
}

func printSeries(w io.Writer, series *contracts.ContinuousSeries) {
	widths := []int{10, 12}
	PrintTableHeader(w, []string{"Date", "Value"}, widths)
	for i, d := range series.Dates {
		PrintTableRow(w, []string{
			d.Format("2006-01-02"),
			strconv.FormatFloat(series.Values[i], 'f', 4, 64),
		}, widths)
	}
}
