package locale

import (
	"sort"

	"ordernorm/pkg/sanitizer"
)

const (
	DefaultTimezone = "UTC"
)

type Country struct {
	Code            string   // ISO 3166-1 alpha-2 country code (e.g., "BE", "NL")
	Name            string   // English short name
	Aliases         []string // Local spellings seen on invoices
	DefaultTimezone string   // IANA timezone identifier (e.g., "Europe/Brussels")
}

var (
	Countries = map[string]Country{
		"BE": {Code: "BE", Name: "Belgium", Aliases: []string{"België", "Belgie", "Belgique", "Belgien"}, DefaultTimezone: "Europe/Brussels"},
		"NL": {Code: "NL", Name: "Netherlands", Aliases: []string{"Nederland", "The Netherlands", "Pays-Bas", "Holland"}, DefaultTimezone: "Europe/Amsterdam"},
		"LU": {Code: "LU", Name: "Luxembourg", Aliases: []string{"Luxemburg", "Lëtzebuerg"}, DefaultTimezone: "Europe/Luxembourg"},
		"FR": {Code: "FR", Name: "France", Aliases: []string{"Frankrijk", "Frankreich"}, DefaultTimezone: "Europe/Paris"},
		"DE": {Code: "DE", Name: "Germany", Aliases: []string{"Deutschland", "Duitsland", "Allemagne"}, DefaultTimezone: "Europe/Berlin"},
		"IT": {Code: "IT", Name: "Italy", Aliases: []string{"Italia", "Italië", "Italie"}, DefaultTimezone: "Europe/Rome"},
		"ES": {Code: "ES", Name: "Spain", Aliases: []string{"España", "Espagne", "Spanje"}, DefaultTimezone: "Europe/Madrid"},
		"PL": {Code: "PL", Name: "Poland", Aliases: []string{"Polska", "Polen", "Pologne"}, DefaultTimezone: "Europe/Warsaw"},
		"RO": {Code: "RO", Name: "Romania", Aliases: []string{"România", "Roemenië"}, DefaultTimezone: "Europe/Bucharest"},
		"GB": {Code: "GB", Name: "United Kingdom", Aliases: []string{"UK", "Great Britain", "England", "Verenigd Koninkrijk"}, DefaultTimezone: "Europe/London"},
		"US": {Code: "US", Name: "United States", Aliases: []string{"USA", "United States of America"}, DefaultTimezone: "America/New_York"},
		"MX": {Code: "MX", Name: "Mexico", Aliases: []string{"México", "Mexique"}, DefaultTimezone: "America/Mexico_City"},
	}

	byName = buildIndex()
)

func buildIndex() map[string]string {
	idx := make(map[string]string)
	for code, c := range Countries {
		idx[sanitizer.FoldKey(code)] = code
		idx[sanitizer.FoldKey(c.Name)] = code
		for _, alias := range c.Aliases {
			idx[sanitizer.FoldKey(alias)] = code
		}
	}
	return idx
}

// LookupCountry resolves a country written as a code, English name or one of
// the known local spellings. Matching ignores case, spacing and Unicode
// composition differences.
func LookupCountry(name string) (Country, bool) {
	code, ok := byName[sanitizer.FoldKey(name)]
	if !ok {
		return Country{}, false
	}
	return Countries[code], true
}

// CountryCode is LookupCountry reduced to the ISO code, or "" when unknown.
func CountryCode(name string) string {
	c, ok := LookupCountry(name)
	if !ok {
		return ""
	}
	return c.Code
}

// Codes lists the known country codes in sorted order.
func Codes() []string {
	codes := make([]string, 0, len(Countries))
	for code := range Countries {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
