// Package textutil formats and cleans text for prompt construction.
package textutil

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	csvCellSep = ",\t"
	csvRowSep  = "\n"
)

// EncloseStringWithQuotes renders a table cell. Numbers and bools stay bare,
// bools as True/False. Anything else is stringified, trimmed, stripped of
// surrounding ' and " characters and wrapped in double quotes. Inner quotes
// are kept as-is.
func EncloseStringWithQuotes(v any) string {
	if s, ok := formatNumber(v); ok {
		return s
	}

	s := strings.TrimSpace(fmt.Sprint(v))
	s = strings.Trim(s, "'")
	s = strings.Trim(s, `"`)
	return `"` + s + `"`
}

// ListOfListToCSV joins rows of cells into the prompt table format:
// cells separated by ",\t", rows by newlines.
func ListOfListToCSV(rows [][]any) string {
	lines := make([]string, len(rows))
	for i, row := range rows {
		cells := make([]string, len(row))
		for j, cell := range row {
			cells[j] = EncloseStringWithQuotes(cell)
		}
		lines[i] = strings.Join(cells, csvCellSep)
	}
	return strings.Join(lines, csvRowSep)
}

func formatNumber(v any) (string, bool) {
	switch n := v.(type) {
	case bool:
		if n {
			return "True", true
		}
		return "False", true
	case int:
		return strconv.Itoa(n), true
	case int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(n), true
	case float32:
		return formatFloat(float64(n), 32), true
	case float64:
		return formatFloat(n, 64), true
	case json.Number:
		return n.String(), true
	}
	return "", false
}

// formatFloat renders the shortest round-trip form. Decimal exponents below
// -4 or from 16 up use exponent notation ("1e+16", "1e-05"); otherwise whole
// numbers keep a trailing ".0" so 3.0 and 3 stay distinct in prompts.
func formatFloat(f float64, bitSize int) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}

	sci := strconv.FormatFloat(f, 'e', -1, bitSize)
	if exp, err := strconv.Atoi(sci[strings.IndexByte(sci, 'e')+1:]); err == nil && (exp < -4 || exp >= 16) {
		return sci
	}

	s := strconv.FormatFloat(f, 'f', -1, bitSize)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
