package address

import (
	"regexp"
	"strings"
	"unicode"

	"ordernorm/pkg/sanitizer"
)

var (
	// A part holding nothing but a box number: "Box 3", "box12".
	reBoxPart = regexp.MustCompile(`(?i)^box\s*(\d+)$`)

	// "<name> <number>" with an optional box after a hyphen and/or the
	// word box: "Main St 12", "Main St 12-3", "Main St 12 - Box 3".
	reStreet = regexp.MustCompile(`(?i)^(.*?)[\s,]+(\d+[a-z]?)(?:\s*(?:-\s*(?:box\s*)?|box\s*)(\d+))?$`)
)

func splitParts(addr string) []string {
	raw := strings.Split(addr, ",")
	parts := make([]string, len(raw))
	for i, p := range raw {
		parts[i] = sanitizer.CleanSegment(p)
	}
	return parts
}

// splitPostalCity splits at the first whitespace run: the postal code is the
// first token, the rest is the city.
func splitPostalCity(s string) (postal, city string) {
	s = strings.TrimSpace(s)
	i := strings.IndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimSpace(s[i:])
}

// DecomposeSimple accepts "street, postal city" and
// "street, postal city, country". The street is not split further.
func DecomposeSimple(addr string, kind Kind) (Components, error) {
	if !kind.Valid() {
		return Components{}, unknownKind(string(kind))
	}

	parts := splitParts(addr)
	var c Components
	switch len(parts) {
	case 3:
		c.StreetName = parts[0]
		c.PostalCode, c.City = splitPostalCity(parts[1])
		c.Country = parts[2]
	case 2:
		c.StreetName = parts[0]
		c.PostalCode, c.City = splitPostalCity(parts[1])
	default:
		return Components{}, formatError(addr, len(parts))
	}
	c.resolveCountry()
	return c, nil
}

// DecomposeAdvanced takes the last part as country and the one before it as
// postal code and city; with only two parts there is no country. All
// leading parts describe the street. Parts that are only a box number set
// the box, the rest are joined and split into name, number and an optional
// hyphenated box. A street without a recognisable number is kept whole as
// the street name.
func DecomposeAdvanced(addr string, kind Kind) (Components, error) {
	if !kind.Valid() {
		return Components{}, unknownKind(string(kind))
	}
	return decompose(addr, splitParts(addr))
}

// Decompose is DecomposeAdvanced restricted to the simple shapes: one street
// part, postal city and an optional country. Parts that are only a box
// number may appear anywhere and are set aside before the parts are counted.
// An explicit box part takes precedence over a hyphenated one.
func Decompose(addr string, kind Kind) (Components, error) {
	if !kind.Valid() {
		return Components{}, unknownKind(string(kind))
	}

	var (
		kept []string
		box  string
	)
	for _, p := range splitParts(addr) {
		if m := reBoxPart.FindStringSubmatch(p); m != nil {
			box = m[1]
			continue
		}
		kept = append(kept, p)
	}
	if len(kept) != 2 && len(kept) != 3 {
		return Components{}, formatError(addr, len(kept))
	}

	c, err := decompose(addr, kept)
	if err != nil {
		return Components{}, err
	}
	if box != "" {
		c.Box = box
	}
	return c, nil
}

func decompose(addr string, parts []string) (Components, error) {
	var (
		c          Components
		postalCity string
		streetPart []string
	)
	switch {
	case len(parts) >= 3:
		c.Country = parts[len(parts)-1]
		postalCity = parts[len(parts)-2]
		streetPart = parts[:len(parts)-2]
	case len(parts) == 2:
		postalCity = parts[1]
		streetPart = parts[:1]
	default:
		return Components{}, formatError(addr, len(parts))
	}
	c.PostalCode, c.City = splitPostalCity(postalCity)

	var street []string
	for _, p := range streetPart {
		if m := reBoxPart.FindStringSubmatch(p); m != nil {
			c.Box = m[1]
			continue
		}
		if p != "" {
			street = append(street, p)
		}
	}

	full := strings.Join(street, " ")
	if m := reStreet.FindStringSubmatch(full); m != nil {
		c.StreetName = strings.TrimSpace(m[1])
		c.StreetNumber = m[2]
		if c.Box == "" {
			c.Box = m[3]
		}
	} else {
		c.StreetName = full
	}

	c.resolveCountry()
	return c, nil
}
