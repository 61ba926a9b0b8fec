package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/rollover/internal/chainconfig"
	"github.com/wonny/rollover/internal/rollover"
	"github.com/wonny/rollover/pkg/config"
	"github.com/wonny/rollover/pkg/logger"
)

var (
	// Global flags
	configFile string
	chainFile  string
	verbose    bool

	// Set by loadEnvironment before any subcommand runs
	appConfig *config.Config
	log       *logger.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "rollover",
	Short: "Continuous futures rollover weights",
	Long: `Rollover builds continuous futures series from a chain of expiring contracts.

Each contract is held until shortly before expiry, then blended linearly into
its successor over a rollover window of business days.

Usage:
  go run ./cmd/rollover [command]

Examples:
  go run ./cmd/rollover validate --chain config/chain.yaml
  go run ./cmd/rollover weights --window 3 --format csv
  go run ./cmd/rollover compose --prices data/cl.csv --tail 20`,
	SilenceUsage:      true,
	PersistentPreRunE: loadEnvironment,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "env file (default is .env)")
	rootCmd.PersistentFlags().StringVar(&chainFile, "chain", "", "chain definition YAML (default CHAIN_FILE)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

func loadEnvironment(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFile(configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	appConfig = cfg
	log = logger.NewWithWriter(cfg, cmd.ErrOrStderr())
	return nil
}

// chain is a loaded chain definition with everything a build needs
type chain struct {
	path string
	cfg  *chainconfig.Config
	opts rollover.Options
}

// loadChain reads the chain file and layers options: env < chain file < flags
func loadChain(cmd *cobra.Command) (*chain, error) {
	path := chainFile
	if path == "" {
		path = appConfig.ChainFile
	}

	cfg, _, err := chainconfig.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load chain: %w", err)
	}

	defaults, err := envOptions(appConfig)
	if err != nil {
		return nil, err
	}

	opts, err := cfg.Options(defaults)
	if err != nil {
		return nil, err
	}

	opts, err = applyFlags(cmd, opts)
	if err != nil {
		return nil, err
	}

	log.WithFields(map[string]interface{}{
		"chain":     cfg.Meta.ChainID,
		"path":      path,
		"contracts": len(cfg.Contracts),
	}).Debug("chain loaded")

	return &chain{path: path, cfg: cfg, opts: opts}, nil
}

// build runs the rollover builder for a loaded chain
func (c *chain) build() (*rollover.Result, error) {
	start, err := c.cfg.Start()
	if err != nil {
		return nil, err
	}
	schedule, err := c.cfg.Schedule()
	if err != nil {
		return nil, err
	}
	cal, err := c.cfg.BusinessCalendar()
	if err != nil {
		return nil, err
	}

	res, err := rollover.NewBuilder(cal, c.opts, log).BuildResult(start, schedule, c.cfg.Codes())
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", c.cfg.Meta.ChainID, err)
	}
	return res, nil
}

func envOptions(cfg *config.Config) (rollover.Options, error) {
	order, err := rollover.ParseOrderPolicy(cfg.Rollover.OrderPolicy)
	if err != nil {
		return rollover.Options{}, err
	}
	overlap, err := rollover.ParseOverlapPolicy(cfg.Rollover.OverlapPolicy)
	if err != nil {
		return rollover.Options{}, err
	}
	return rollover.Options{
		Window:  cfg.Rollover.Window,
		Order:   order,
		Overlap: overlap,
	}, nil
}

// Policy flags shared by weights and compose
var (
	flagWindow  int
	flagOrder   string
	flagOverlap string
)

func addPolicyFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&flagWindow, "window", rollover.DefaultWindow, "rollover window in business days")
	cmd.Flags().StringVar(&flagOrder, "order", "", "order policy (reject|sort)")
	cmd.Flags().StringVar(&flagOverlap, "overlap", "", "overlap policy (clamp|reject|last-write)")
}

func applyFlags(cmd *cobra.Command, opts rollover.Options) (rollover.Options, error) {
	if cmd.Flags().Changed("window") {
		opts.Window = flagWindow
	}
	if cmd.Flags().Changed("order") {
		p, err := rollover.ParseOrderPolicy(flagOrder)
		if err != nil {
			return opts, err
		}
		opts.Order = p
	}
	if cmd.Flags().Changed("overlap") {
		p, err := rollover.ParseOverlapPolicy(flagOverlap)
		if err != nil {
			return opts, err
		}
		opts.Overlap = p
	}
	return opts, nil
}
