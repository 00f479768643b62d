package normalize

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"ordernorm/pkg/value"
)

// CapitalizeKey upper-cases the first character of key.
func CapitalizeKey(key string) string {
	if key == "" {
		return key
	}
	r, size := utf8.DecodeRuneInString(key)
	if r == utf8.RuneError {
		return key
	}
	upper := unicode.ToUpper(r)
	if upper == r {
		return key
	}
	return string(upper) + key[size:]
}

// UnderscoreKey replaces every space in key with an underscore.
func UnderscoreKey(key string) string {
	return strings.ReplaceAll(key, " ", "_")
}

func CapitalizeKeys(v value.Value) value.Value {
	return WalkKeys(v, CapitalizeKey)
}

func UnderscoreKeys(v value.Value) value.Value {
	return WalkKeys(v, UnderscoreKey)
}
