package normalize

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatNumberEU renders f with two decimals, a comma as decimal mark and
// spaces between thousands: 11560 becomes "11 560,00".
func FormatNumberEU(f float64) string {
	return FormatDecimalEU(decimal.NewFromFloat(f))
}

func FormatDecimalEU(d decimal.Decimal) string {
	fixed := d.StringFixed(2)

	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign = "-"
		fixed = fixed[1:]
	}
	whole, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return sign + b.String() + "," + frac
}
