package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/wonny/rollover/internal/chainconfig"
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a chain definition without building weights",
	Long: `Loads the chain file strictly (unknown fields fail), validates it, prints
its canonical hash and lists non-fatal warnings such as weekend expiries or
rollover windows that reach into the previous contract.

Example:
  go run ./cmd/rollover validate
  go run ./cmd/rollover validate --chain config/chain.yaml --window 15`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	addPolicyFlags(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	c, err := loadChain(cmd)
	if err != nil {
		return err
	}

	hash, err := chainconfig.Hash(c.cfg)
	if err != nil {
		return fmt.Errorf("hash chain: %w", err)
	}

	out := cmd.OutOrStdout()
	PrintChainHeader(out, ChainHeader{
		Title:   "Chain Validation",
		ChainID: c.cfg.Meta.ChainID,
		Path:    c.path,
		Window:  c.opts.Window,
		Policy:  fmt.Sprintf("order=%s overlap=%s", c.opts.Order, c.opts.Overlap),
	})
	PrintKeyValue(out, "Contracts", strconv.Itoa(len(c.cfg.Contracts)), 10)
	PrintKeyValue(out, "Holidays", strconv.Itoa(len(c.cfg.Calendar.Holidays)), 10)
	PrintKeyValue(out, "Hash", hash, 10)
	PrintSeparator(out)

	warnings := chainconfig.Warn(c.cfg, c.opts)
	for _, w := range warnings {
		PrintWarning(out, fmt.Sprintf("[%s] %s", w.Code, w.Message))
		log.WithField("code", w.Code).Warn(w.Message)
	}

	// A dry build catches what static checks cannot (start vs last trading day)
	if _, err := c.build(); err != nil {
		return err
	}

	PrintSuccess(out, fmt.Sprintf("%s is valid (%d warnings)", c.cfg.Meta.ChainID, len(warnings)))
	return nil
}
