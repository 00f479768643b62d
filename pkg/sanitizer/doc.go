// Package sanitizer holds small string strategies that are composed into
// pipelines by the normalizers and the address parser.
//
// Every strategy is total: it never fails and hands back its input when
// there is nothing to do. Most are idempotent.
//
// Strategies include:
//   - Whitespace: trim, collapse runs to one space, remove entirely
//   - Unicode: NFC composition so "é" typed two ways compares equal
//   - Removal: strip a fixed set of substrings such as currency symbols
//   - Casing: title case for display fields like city and country names
//   - Lists: keep each normalized value once, dropping blanks
package sanitizer
