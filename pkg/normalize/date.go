package normalize

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"ordernorm/pkg/value"
)

const (
	DateFormatUS       = "%m/%d/%Y"
	DateFormatDayFirst = "%d-%m-%Y"
	DateFormatISO      = "%Y-%m-%d"
)

type layoutToken struct {
	parse  string
	format string
}

// Parsing accepts unpadded month and day numbers ("5/7/2023"); output is
// always padded.
var strftimeTokens = map[byte]layoutToken{
	'Y': {parse: "2006", format: "2006"},
	'y': {parse: "06", format: "06"},
	'm': {parse: "1", format: "01"},
	'd': {parse: "2", format: "02"},
	'H': {parse: "15", format: "15"},
	'I': {parse: "3", format: "03"},
	'M': {parse: "04", format: "04"},
	'S': {parse: "05", format: "05"},
	'p': {parse: "PM", format: "PM"},
	'b': {parse: "Jan", format: "Jan"},
	'B': {parse: "January", format: "January"},
	'a': {parse: "Mon", format: "Mon"},
	'A': {parse: "Monday", format: "Monday"},
	'j': {parse: "002", format: "002"},
}

// Words Go would read as layout elements if they showed up as literal text.
var layoutWords = []string{"Jan", "Mon", "MST", "PM", "pm", "_"}

// Layout translates a strftime-style format into a Go time layout.
func Layout(format string, forParse bool) (string, error) {
	var b strings.Builder
	literal := func(s string) error {
		if strings.ContainsFunc(s, unicode.IsDigit) {
			return fmt.Errorf("unsupported literal %q in date format %q", s, format)
		}
		for _, w := range layoutWords {
			if strings.Contains(s, w) {
				return fmt.Errorf("unsupported literal %q in date format %q", s, format)
			}
		}
		b.WriteString(s)
		return nil
	}

	start := 0
	for i := 0; i < len(format); i++ {
		if format[i] != '%' {
			continue
		}
		if err := literal(format[start:i]); err != nil {
			return "", err
		}
		if i+1 >= len(format) {
			return "", fmt.Errorf("dangling %% in date format %q", format)
		}
		i++
		if format[i] == '%' {
			b.WriteByte('%')
		} else {
			tok, ok := strftimeTokens[format[i]]
			if !ok {
				return "", fmt.Errorf("unsupported directive %%%c in date format %q", format[i], format)
			}
			if forParse {
				b.WriteString(tok.parse)
			} else {
				b.WriteString(tok.format)
			}
		}
		start = i + 1
	}
	if err := literal(format[start:]); err != nil {
		return "", err
	}
	return b.String(), nil
}

// ReformatDate parses s with inputFormat and renders it with outputFormat.
// On any failure, including a format it cannot translate, s comes back as is.
func ReformatDate(s, inputFormat, outputFormat string) value.Value {
	return DateReformatter(inputFormat, outputFormat)(s)
}

// DateReformatter builds the leaf func once so the layouts are translated a
// single time per pass.
func DateReformatter(inputFormat, outputFormat string) LeafFunc {
	in, err := Layout(inputFormat, true)
	if err != nil {
		return passthrough
	}
	out, err := Layout(outputFormat, false)
	if err != nil {
		return passthrough
	}

	return func(s string) value.Value {
		t, err := time.Parse(in, s)
		if err != nil {
			return value.String(s)
		}
		return value.String(t.Format(out))
	}
}

func passthrough(s string) value.Value {
	return value.String(s)
}
