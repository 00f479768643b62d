package normalize

import (
	"regexp"
	"strconv"
	"strings"

	"ordernorm/pkg/value"
)

var (
	reDecimal = regexp.MustCompile(`^\d+\.\d+$`)
	reDigits  = regexp.MustCompile(`^\d+$`)
)

// CoerceNumeric converts "1,234.5" to a float and "007" to the int 7.
// Commas are dropped as thousands separators. Digit strings too long for
// an int64 are left as strings.
func CoerceNumeric(s string) value.Value {
	cleaned := strings.ReplaceAll(strings.TrimSpace(s), ",", "")

	switch {
	case reDecimal.MatchString(cleaned):
		if f, err := strconv.ParseFloat(cleaned, 64); err == nil {
			return value.Float(f)
		}
	case reDigits.MatchString(cleaned):
		if i, err := strconv.ParseInt(cleaned, 10, 64); err == nil {
			return value.Int(i)
		}
	}
	return value.String(s)
}
