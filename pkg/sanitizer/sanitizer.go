package sanitizer

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

// RemoveAll returns a strategy deleting every occurrence of each substring.
func RemoveAll(substrs ...string) Strategy {
	pairs := make([]string, 0, len(substrs)*2)
	for _, sub := range substrs {
		if sub == "" {
			continue
		}
		pairs = append(pairs, sub, "")
	}
	if len(pairs) == 0 {
		return func(s string) string { return s }
	}
	r := strings.NewReplacer(pairs...)
	return r.Replace
}

// RemoveSpaces drops every Unicode space, including the no-break spaces
// used as thousands separators in European amounts.
func RemoveSpaces(s string) string {
	if !strings.ContainsFunc(s, unicode.IsSpace) {
		return s
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

func NFC(s string) string {
	return norm.NFC.String(s)
}

var titleCaser = cases.Title(language.Und, cases.NoLower)

// Title upper-cases the first letter of each word and leaves the rest as
// typed, so "rue de la loi" becomes "Rue De La Loi" and "NL" stays "NL".
func Title(s string) string {
	return titleCaser.String(s)
}

// CleanSegment is applied to each comma-separated part of a free-text
// address before it is interpreted.
func CleanSegment(s string) string {
	p := Pipeline{
		NFC,
		CollapseWhitespace,
	}
	return p.Apply(s)
}

// FoldKey reduces a name to a lookup key: composed, trimmed, single-spaced
// and lower case.
func FoldKey(s string) string {
	p := Pipeline{
		NFC,
		CollapseWhitespace,
		strings.ToLower,
	}
	return p.Apply(s)
}
