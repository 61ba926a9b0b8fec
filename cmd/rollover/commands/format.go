package commands

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

const (
	singleLine = "───────────────────────────────────────────────────────────"
	doubleLine = "═══════════════════════════════════════════════════════════"
)

// Output formats accepted by --format
const (
	formatTable = "table"
	formatCSV   = "csv"
	formatJSON  = "json"
)

func checkFormat(format string, allowed ...string) error {
	for _, a := range allowed {
		if format == a {
			return nil
		}
	}
	return fmt.Errorf("unknown format %q (want %s)", format, strings.Join(allowed, "|"))
}

// ChainHeader describes the chain a command ran against
type ChainHeader struct {
	Title   string
	ChainID string
	Path    string
	Period  *Period // Optional
	Window  int
	Policy  string
}

// Period represents a date range
type Period struct {
	StartDate string
	EndDate   string
}

// PrintChainHeader prints a formatted chain header
func PrintChainHeader(w io.Writer, h ChainHeader) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, doubleLine)
	fmt.Fprintf(w, "  %s\n", h.Title)
	fmt.Fprintln(w, singleLine)
	fmt.Fprintf(w, "  Chain     : %s\n", h.ChainID)
	fmt.Fprintf(w, "  File      : %s\n", h.Path)

	// Optional period
	if h.Period != nil {
		fmt.Fprintf(w, "  Period    : %s ~ %s\n", h.Period.StartDate, h.Period.EndDate)
	}

	fmt.Fprintf(w, "  Window    : %d business days\n", h.Window)
	fmt.Fprintf(w, "  Policy    : %s\n", h.Policy)
	fmt.Fprintln(w, singleLine)
}

// PrintSeparator prints a visual separator
func PrintSeparator(w io.Writer) {
	fmt.Fprintln(w, singleLine)
}

// PrintWarning prints a warning message
func PrintWarning(w io.Writer, message string) {
	fmt.Fprintf(w, "⚠️  %s\n", message)
}

// PrintSuccess prints a success message
func PrintSuccess(w io.Writer, message string) {
	fmt.Fprintf(w, "✅ %s\n", message)
}

// PrintTableHeader prints a table header
func PrintTableHeader(w io.Writer, columns []string, widths []int) {
	PrintTableRow(w, columns, widths)

	// Separator line
	totalWidth := 0
	for i, width := range widths {
		totalWidth += width
		if i < len(widths)-1 {
			totalWidth += 2 // spacing
		}
	}
	fmt.Fprintln(w, strings.Repeat("─", totalWidth))
}

// PrintTableRow prints a table row
func PrintTableRow(w io.Writer, values []string, widths []int) {
	for i, val := range values {
		fmt.Fprintf(w, "%-*s", widths[i], val)
		if i < len(values)-1 {
			fmt.Fprint(w, "  ")
		}
	}
	fmt.Fprintln(w)
}

// PrintKeyValue prints key-value pairs
func PrintKeyValue(w io.Writer, key string, value string, keyWidth int) {
	fmt.Fprintf(w, "   %-*s : %s\n", keyWidth, key, value)
}

// columnWidths sizes each column to its widest cell
func columnWidths(header []string, minWidth int) []int {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = len(h)
		if widths[i] < minWidth {
			widths[i] = minWidth
		}
	}
	return widths
}

// formatWeight prints weights with at most four decimals, trimming zeros
func formatWeight(v float64) string {
	s := strconv.FormatFloat(v, 'f', 4, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
