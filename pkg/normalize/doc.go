// Package normalize rewrites loosely structured order records into their
// canonical form.
//
// Every transform is built on Walk, which copies a value while applying a key
// function to object keys and a leaf function to string scalars. Leaf
// functions are heuristic parsers: when a string does not have the shape they
// look for they hand it back unchanged, so one malformed field never stops
// the rest of the document from being normalized.
//
// Clean runs the full chain in a fixed order:
//   - capitalize keys
//   - money amounts ("1.234,56 €" becomes 1234.56)
//   - percentages ("21%" becomes 21)
//   - spaces in keys become underscores
//   - US dates (%m/%d/%Y) to ISO
//   - day-first dates (%d-%m-%Y) to ISO
//   - numeric strings to ints and floats
//
// Money parsing treats a comma as the decimal separator whenever one is
// present. "1,234" therefore reads as 1.234, and US amounts such as
// "1,234.56" are not recognised. There is no locale input to tell the two
// apart, so the behaviour is kept as is.
package normalize
