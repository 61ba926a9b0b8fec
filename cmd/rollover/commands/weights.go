package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/rollover/internal/chainconfig"
	"github.com/wonny/rollover/internal/continuous"
	"github.com/wonny/rollover/internal/contracts"
	"github.com/wonny/rollover/internal/rollover"
)

// weightsCmd represents the weights command
var weightsCmd = &cobra.Command{
	Use:   "weights",
	Short: "Build the rollover weight table for a chain",
	Long: `Builds the (business day × contract) weight table for a chain definition.

Options are layered: environment defaults, then the chain file's rollover
section, then flags.

Flags:
  --window    rollover window in business days (R+1 window days)
  --order     reject | sort
  --overlap   clamp | reject | last-write
  --format    table | csv | json
  --rolls     print only the roll summary (table format)

Example:
  go run ./cmd/rollover weights --chain config/chain.yaml
  go run ./cmd/rollover weights --window 0 --format csv > weights.csv
  go run ./cmd/rollover weights --overlap last-write --format json`,
	RunE: runWeights,
}

var (
	weightsFormat    string
	weightsRollsOnly bool
)

func init() {
	rootCmd.AddCommand(weightsCmd)

	addPolicyFlags(weightsCmd)
	weightsCmd.Flags().StringVar(&weightsFormat, "format", formatTable, "output format (table|csv|json)")
	weightsCmd.Flags().BoolVar(&weightsRollsOnly, "rolls", false, "print only the roll summary")
}

func runWeights(cmd *cobra.Command, args []string) error {
	if err := checkFormat(weightsFormat, formatTable, formatCSV, formatJSON); err != nil {
		return err
	}

	started := time.Now()

	c, err := loadChain(cmd)
	if err != nil {
		return err
	}

	res, err := c.build()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch weightsFormat {
	case formatCSV:
		err = continuous.WriteWeightsCSV(out, res.Weights)
	case formatJSON:
		err = writeWeightsJSON(out, c, res)
	default:
		printWeightsTable(out, c, res, weightsRollsOnly)
	}
	if err != nil {
		return fmt.Errorf("write weights: %w", err)
	}

	log.WithFields(map[string]interface{}{
		"chain":    c.cfg.Meta.ChainID,
		"days":     res.Weights.Len(),
		"rolls":    len(res.Rolls),
		"duration": time.Since(started).String(),
	}).Info("weights built")

	return nil
}

// weightsDocument is the JSON output of the weights command
type weightsDocument struct {
	Manifest  *chainconfig.Manifest `json:"manifest"`
	Contracts []string              `json:"contracts"`
	Rows      []weightsRow          `json:"rows"`
}

type weightsRow struct {
	Date    string    `json:"date"`
	Weights []float64 `json:"weights"`
}

func writeWeightsJSON(w io.Writer, c *chain, res *rollover.Result) error {
	manifest, err := chainconfig.NewManifest(c.cfg, c.opts, res)
	if err != nil {
		return err
	}

	doc := weightsDocument{
		Manifest:  manifest,
		Contracts: res.Weights.Contracts(),
		Rows:      make([]weightsRow, res.Weights.Len()),
	}
	for i := range doc.Rows {
		doc.Rows[i] = weightsRow{
			Date:    res.Weights.Date(i).Format("2006-01-02"),
			Weights: res.Weights.Row(i),
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func printWeightsTable(w io.Writer, c *chain, res *rollover.Result, rollsOnly bool) {
	weights := res.Weights
	PrintChainHeader(w, ChainHeader{
		Title:   "Rollover Weights",
		ChainID: c.cfg.Meta.ChainID,
		Path:    c.path,
		Period: &Period{
			StartDate: weights.Date(0).Format("2006-01-02"),
			EndDate:   weights.Date(weights.Len() - 1).Format("2006-01-02"),
		},
		Window: c.opts.Window,
		Policy: fmt.Sprintf("order=%s overlap=%s", c.opts.Order, c.opts.Overlap),
	})

	printRolls(w, res.Rolls)

	if rollsOnly {
		return
	}

	fmt.Fprintln(w)
	printWeightGrid(w, weights)
}

func printRolls(w io.Writer, rolls []rollover.Roll) {
	header := []string{"From", "To", "Expiry", "Window", "Days", "Clamped"}
	widths := []int{10, 10, 10, 23, 4, 7}
	PrintTableHeader(w, header, widths)

	for _, r := range rolls {
		clamped := ""
		if r.Clamped {
			clamped = "yes"
		}
		PrintTableRow(w, []string{
			r.From,
			r.To,
			r.Expiry.Format("2006-01-02"),
			r.WindowStart.Format("2006-01-02") + " ~ " + r.WindowEnd.Format("01-02"),
			fmt.Sprint(r.Days),
			clamped,
		}, widths)
	}
}

func printWeightGrid(w io.Writer, weights *contracts.WeightTable) {
	header := append([]string{"Date"}, weights.Contracts()...)
	widths := columnWidths(header, 6)
	widths[0] = 10
	PrintTableHeader(w, header, widths)

	values := make([]string, len(header))
	for i := 0; i < weights.Len(); i++ {
		values[0] = weights.Date(i).Format("2006-01-02")
		for j, v := range weights.Row(i) {
			values[j+1] = formatWeight(v)
		}
		PrintTableRow(w, values, widths)
	}
}
