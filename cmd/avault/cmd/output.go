package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"os"

	"github.com/fatih/color"
	"github.com/shopspring/decimal"
	"go.yaml.in/yaml/v3"
)

// Output formats.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// amountDecimals is the number of fractional digits shown for fee amounts.
const amountDecimals = 9

var (
	// Color definitions.
	successColor = color.New(color.FgGreen)
	errorColor   = color.New(color.FgRed)
	warningColor = color.New(color.FgYellow)
	infoColor    = color.New(color.FgCyan)
	boldColor    = color.New(color.Bold)
	dimColor     = color.New(color.Faint)
)

// stdout is where command output goes; tests replace it.
var stdout io.Writer = os.Stdout

// Success prints a success message in green.
func Success(format string, a ...any) {
	successColor.Fprintf(os.Stderr, "✓ "+format+"\n", a...)
}

// Error prints an error message in red.
func Error(format string, a ...any) {
	errorColor.Fprintf(os.Stderr, "✗ "+format+"\n", a...)
}

// Warning prints a warning message in yellow.
func Warning(format string, a ...any) {
	warningColor.Fprintf(os.Stderr, "⚠ "+format+"\n", a...)
}

// Info prints an info message in cyan.
func Info(format string, a ...any) {
	infoColor.Fprintf(os.Stderr, "ℹ "+format+"\n", a...)
}

// Bold prints text in bold.
func Bold(format string, a ...any) string {
	return boldColor.Sprintf(format, a...)
}

// Dim prints text in dim/faint style.
func Dim(format string, a ...any) string {
	return dimColor.Sprintf(format, a...)
}

// PrintKeyValue prints a key-value pair with the key highlighted.
func PrintKeyValue(key, value string) {
	fmt.Fprintf(stdout, "%s: %s\n", boldColor.Sprint(key), value)
}

// PrintTableHeader prints a table header with bold column names.
func PrintTableHeader(columns ...string) {
	for i, col := range columns {
		if i > 0 {
			fmt.Fprint(stdout, "\t")
		}
		fmt.Fprint(stdout, boldColor.Sprint(col))
	}
	fmt.Fprintln(stdout)
}

// getOutputFormat resolves --format and the --json shorthand.
func getOutputFormat() string {
	if jsonOutput {
		return formatJSON
	}
	if outputFormat == "" {
		return formatText
	}
	return outputFormat
}

// render writes v as JSON or YAML when a structured format is selected,
// otherwise it calls text.
func render(v any, text func()) error {
	switch getOutputFormat() {
	case formatJSON:
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		// Round-trip through JSON so YAML keys match the API field names.
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		var generic any
		if err := json.Unmarshal(data, &generic); err != nil {
			return err
		}
		enc := yaml.NewEncoder(stdout)
		defer enc.Close()
		return enc.Encode(generic)
	default:
		text()
		return nil
	}
}

// formatAmount renders base units as a whole-unit decimal string.
func formatAmount(units uint64) string {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(units), -amountDecimals).StringFixed(amountDecimals)
}

// parseAmount parses a whole-unit decimal string into base units.
func parseAmount(s string) (uint64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("amount %q is negative", s)
	}
	units := d.Shift(amountDecimals)
	if !units.Equal(units.Truncate(0)) {
		return 0, fmt.Errorf("amount %q has more than %d decimal places", s, amountDecimals)
	}
	bi := units.BigInt()
	if !bi.IsUint64() {
		return 0, fmt.Errorf("amount %q is too large", s)
	}
	return bi.Uint64(), nil
}
