package invoice

import (
	"fmt"
	"strconv"
	"strings"
)

// NumberPrefix is the scheme prefix for generated invoice numbers.
const NumberPrefix = "INV"

// FormatNumber renders a sequence value as INV-0001 style. Values past
// 9999 widen naturally.
func FormatNumber(n int) string {
	if n < 0 {
		n = 0
	}
	return fmt.Sprintf("%s-%04d", NumberPrefix, n)
}

// ParseNumber extracts the integer suffix after the last '-' in an
// invoice number. Malformed input yields 0, so the next number after a
// value that cannot be parsed restarts the sequence.
func ParseNumber(s string) int {
	trimmed := strings.TrimSpace(s)
	idx := strings.LastIndex(trimmed, "-")
	if idx < 0 || idx == len(trimmed)-1 {
		return 0
	}
	n, err := strconv.Atoi(trimmed[idx+1:])
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// NextNumber derives the successor of prev. An empty prev starts the
// sequence at INV-0001.
func NextNumber(prev string) string {
	return FormatNumber(ParseNumber(prev) + 1)
}
