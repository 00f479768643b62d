package normalize

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"ordernorm/pkg/value"
)

var rePercentage = regexp.MustCompile(`^\d+(\.\d+)?%$`)

// NormalizePercentage turns "21%" or " 21.9% " into the integer 21.
// Fractions are truncated toward zero.
func NormalizePercentage(s string) value.Value {
	pct, err := VATPercentage(s)
	if err != nil {
		return value.String(s)
	}
	return value.Int(pct)
}

// VATPercentage is the strict form of NormalizePercentage for callers that
// want to know when a string is not a percentage.
func VATPercentage(s string) (int64, error) {
	trimmed := strings.TrimSpace(s)
	if !rePercentage.MatchString(trimmed) {
		return 0, fmt.Errorf("not a percentage: %q", s)
	}
	f, err := strconv.ParseFloat(strings.TrimSuffix(trimmed, "%"), 64)
	if err != nil {
		return 0, fmt.Errorf("parse percentage %q: %w", s, err)
	}
	if f >= math.MaxInt64 {
		return 0, fmt.Errorf("percentage %q out of range", s)
	}
	return int64(f), nil
}
