package calc

import (
	"math"
	"strconv"
	"strings"
)

const (
	// positional notation is used for magnitudes in [minPlain, maxPlain).
	minPlain = 1e-6
	maxPlain = 1e21
)

// ParseNumber reads a display literal. It accepts only plain decimal and
// exponent forms, independent of locale, and reports false for the error
// marker, empty input, and anything that is not finite.
func ParseNumber(s string) (float64, bool) {
	if s == "" || strings.Trim(s, "0123456789.eE+-") != "" {
		return 0, false
	}
	// "3." is a literal still being typed.
	s = strings.TrimSuffix(s, ".")
	if s == "" || s == "-" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// FormatNumber renders v with the fewest digits that still round-trip.
// Integral values print without a decimal part.
func FormatNumber(v float64) string {
	if v == 0 {
		// covers negative zero
		return "0"
	}
	if abs := math.Abs(v); abs >= minPlain && abs < maxPlain {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func isFinite(v float64) bool {
	return !math.IsInf(v, 0) && !math.IsNaN(v)
}
