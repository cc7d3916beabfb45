package catalog

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// CoerceInt converts a loosely typed store value to int64.
// Absent, non-numeric and non-finite values become 0.
func CoerceInt(v any) int64 {
	switch n := v.(type) {
	case nil:
		return 0
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case int64:
		return n
	case float32:
		return floatToInt(float64(n))
	case float64:
		return floatToInt(n)
	case string:
		return parseIntString(n)
	case fmt.Stringer:
		// decimal128 and similar numeric wrappers
		return parseIntString(n.String())
	default:
		return 0
	}
}

func floatToInt(f float64) int64 {
	switch {
	case math.IsNaN(f), math.IsInf(f, 0):
		return 0
	case f >= math.MaxInt64:
		return math.MaxInt64
	case f <= math.MinInt64:
		return math.MinInt64
	}
	return int64(f)
}

func parseIntString(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return floatToInt(f)
	}
	return 0
}
