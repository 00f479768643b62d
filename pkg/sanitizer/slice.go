package sanitizer

// Distinct runs every item through s and returns the non-empty results once
// each, in the order they were first produced.
func Distinct(items []string, s Strategy) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		key := s(item)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	return out
}
