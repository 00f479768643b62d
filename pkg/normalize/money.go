package normalize

import (
	"math"
	"regexp"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	"ordernorm/pkg/sanitizer"
	"ordernorm/pkg/value"
)

// DefaultCurrencySymbols lists what is stripped from money strings. The
// second entry is the euro sign as it appears when an upstream system
// double-escapes its JSON.
var DefaultCurrencySymbols = []string{"€", `\u20ac`}

// Amounts whose magnitude passes this many decimal digits do not fit a
// float64; exponent notation ("1e400") can get there.
const maxAmountDigits = 309

var reEuroAmount = regexp.MustCompile(`^€?\s*[\d,]+\.\d{1,2}$`)

// NormalizeMoney parses s as an amount using DefaultCurrencySymbols.
func NormalizeMoney(s string) value.Value {
	return MoneyNormalizer(DefaultCurrencySymbols)(s)
}

// MoneyNormalizer returns a leaf func that turns amount strings into floats.
// Symbols and whitespace are removed first; strings with no digit left are
// not amounts. A comma marks the decimal part, so dots before it are read as
// thousands separators ("1.234,56" is 1234.56). Anything that still fails to
// parse, or is too large for a float, is returned unchanged.
func MoneyNormalizer(symbols []string) LeafFunc {
	strip := sanitizer.Pipeline{
		strings.TrimSpace,
		sanitizer.RemoveAll(symbols...),
		sanitizer.RemoveSpaces,
	}

	return func(s string) value.Value {
		cleaned := strip.Apply(s)
		if !strings.ContainsFunc(cleaned, unicode.IsDigit) {
			return value.String(s)
		}
		if strings.Contains(cleaned, ",") {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
			cleaned = strings.ReplaceAll(cleaned, ",", ".")
		}
		amount, err := decimal.NewFromString(cleaned)
		if err != nil {
			return value.String(s)
		}
		if mag := amount.NumDigits() + int(amount.Exponent()); mag > maxAmountDigits || mag < -maxAmountDigits {
			return value.String(s)
		}
		f := amount.InexactFloat64()
		if math.IsInf(f, 0) || math.IsNaN(f) {
			return value.String(s)
		}
		return value.Float(f)
	}
}

// NormalizeEuroAmount is the stricter older cleaner: only strings shaped
// like "€1,752.66" (dot decimals, one or two digits) are touched, and the
// result stays a string with the symbol and grouping commas removed.
func NormalizeEuroAmount(s string) value.Value {
	if !reEuroAmount.MatchString(strings.TrimSpace(s)) {
		return value.String(s)
	}
	p := sanitizer.Pipeline{
		sanitizer.RemoveAll("€", ","),
		strings.TrimSpace,
	}
	return value.String(p.Apply(s))
}
