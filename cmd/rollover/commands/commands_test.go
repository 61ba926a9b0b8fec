package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/rollover/internal/rollover"
	"github.com/wonny/rollover/pkg/config"
)

const testChain = `
meta:
  chain_id: TEST
  start_date: "2024-01-01"
rollover:
  window: 2
contracts:
  - code: C1
    expiry: "2024-01-12"
  - code: C2
    expiry: "2024-01-26"
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// resetFlags restores defaults so commands can run more than once per process
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("LOG_LEVEL", "disabled")
	resetFlags(rootCmd)

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return out.String(), err
}

func TestWeightsCommand_CSV(t *testing.T) {
	chain := writeFile(t, "chain.yaml", testChain)

	out, err := run(t, "weights", "--chain", chain, "--format", "csv")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 21) // header + 20 business days
	assert.Equal(t, "date,C1,C2", lines[0])
	assert.Equal(t, "2024-01-01,1,0", lines[1])
	assert.Equal(t, "2024-01-10,0.5,0.5", lines[8])
	assert.Equal(t, "2024-01-26,0,1", lines[20])
}

func TestWeightsCommand_FlagOverridesChain(t *testing.T) {
	chain := writeFile(t, "chain.yaml", testChain)

	out, err := run(t, "weights", "--chain", chain, "--format", "csv", "--window", "0")
	require.NoError(t, err)

	assert.NotContains(t, out, "0.5")
	assert.Contains(t, out, "2024-01-11,0,1")
}

func TestWeightsCommand_JSON(t *testing.T) {
	chain := writeFile(t, "chain.yaml", testChain)

	out, err := run(t, "weights", "--chain", chain, "--format", "json")
	require.NoError(t, err)

	var doc weightsDocument
	require.NoError(t, json.Unmarshal([]byte(out), &doc))

	assert.Equal(t, "TEST", doc.Manifest.ChainID)
	assert.Equal(t, 2, doc.Manifest.Window)
	assert.Len(t, doc.Manifest.ConfigHash, 64)
	require.Len(t, doc.Manifest.Rolls, 1)
	assert.Equal(t, "C1", doc.Manifest.Rolls[0].From)
	assert.Equal(t, []string{"C1", "C2"}, doc.Contracts)
	assert.Len(t, doc.Rows, 20)
}

func TestWeightsCommand_Table(t *testing.T) {
	chain := writeFile(t, "chain.yaml", testChain)

	out, err := run(t, "weights", "--chain", chain, "--rolls")
	require.NoError(t, err)

	assert.Contains(t, out, "Rollover Weights")
	assert.Contains(t, out, "TEST")
	assert.Contains(t, out, "2024-01-09 ~ 01-11")
	assert.NotContains(t, out, "2024-01-26  ")
}

func TestWeightsCommand_Errors(t *testing.T) {
	unsorted := strings.Replace(strings.Replace(testChain, `"2024-01-12"`, `"X"`, 1), `"2024-01-26"`, `"2024-01-12"`, 1)
	unsorted = strings.Replace(unsorted, `"X"`, `"2024-01-26"`, 1)
	chain := writeFile(t, "chain.yaml", unsorted)

	_, err := run(t, "weights", "--chain", chain)
	require.Error(t, err)
	assert.ErrorIs(t, err, rollover.ErrScheduleOrder)

	_, err = run(t, "weights", "--chain", chain, "--order", "sort", "--format", "csv")
	assert.NoError(t, err)

	_, err = run(t, "weights", "--chain", chain, "--format", "xml")
	assert.Error(t, err)

	_, err = run(t, "weights", "--chain", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestComposeCommand(t *testing.T) {
	chain := writeFile(t, "chain.yaml", testChain)

	var prices strings.Builder
	prices.WriteString("date,C1,C2\n")
	for _, d := range []string{"2024-01-08", "2024-01-09", "2024-01-10", "2024-01-11", "2024-01-12"} {
		prices.WriteString(d + ",100,110\n")
	}
	pricePath := writeFile(t, "prices.csv", prices.String())

	out, err := run(t, "compose", "--chain", chain, "--prices", pricePath, "--format", "csv")
	require.NoError(t, err)

	assert.Equal(t, "date,value\n"+
		"2024-01-08,100\n"+
		"2024-01-09,100\n"+
		"2024-01-10,105\n"+
		"2024-01-11,110\n"+
		"2024-01-12,110\n", out)

	out, err = run(t, "compose", "--chain", chain, "--prices", pricePath, "--tail", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Continuous Series")
	assert.Contains(t, out, "110.0000")
	assert.NotContains(t, out, "105.0000")
}

func TestValidateCommand(t *testing.T) {
	chain := writeFile(t, "chain.yaml", testChain)

	out, err := run(t, "validate", "--chain", chain)
	require.NoError(t, err)
	assert.Contains(t, out, "TEST is valid (0 warnings)")

	three := writeFile(t, "three.yaml", strings.Replace(testChain, "contracts:\n", "contracts:\n  - code: C0\n    expiry: \"2024-01-05\"\n", 1))
	out, err = run(t, "validate", "--chain", three, "--window", "8")
	require.NoError(t, err)
	assert.Contains(t, out, "[WINDOW_OVERLAP] C1")
	assert.Contains(t, out, "(1 warnings)")

	bad := writeFile(t, "bad.yaml", testChain+"unknown: 1\n")
	_, err = run(t, "validate", "--chain", bad)
	assert.Error(t, err)
}

func TestEnvOptions(t *testing.T) {
	opts, err := envOptions(&config.Config{Rollover: config.RolloverConfig{
		Window:        3,
		OrderPolicy:   config.OrderSort,
		OverlapPolicy: config.OverlapLastWrite,
	}})
	require.NoError(t, err)
	assert.Equal(t, rollover.Options{Window: 3, Order: rollover.OrderSort, Overlap: rollover.OverlapLastWrite}, opts)
}

func TestFormatWeight(t *testing.T) {
	assert.Equal(t, "0", formatWeight(0))
	assert.Equal(t, "1", formatWeight(1))
	assert.Equal(t, "0.5", formatWeight(0.5))
	assert.Equal(t, "0.6667", formatWeight(2.0/3.0))
}
