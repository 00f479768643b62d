package sanitizer

import "strings"

// CollapseWhitespace trims s and joins its words with single spaces. Tabs,
// newlines and no-break spaces all count as separators.
func CollapseWhitespace(s string) string {
	fields := strings.Fields(s)
	switch len(fields) {
	case 0:
		return ""
	case 1:
		return fields[0]
	}
	return strings.Join(fields, " ")
}
