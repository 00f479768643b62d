// Package address splits free-text postal addresses into the fields billing
// templates need.
//
// Addresses are comma separated: street parts first, then "postal city",
// then optionally the country. Three parsers are offered:
//
//   - DecomposeSimple keeps the street whole and accepts two or three parts.
//   - DecomposeAdvanced pulls the house number and box out of the street and
//     accepts any number of leading street parts.
//   - Decompose is the advanced parser limited to the simple parser's
//     shapes, so "one, two, three, four" is rejected while a separate
//     "Box 3" part is still allowed.
package address

import (
	"errors"
	"fmt"
	"strings"

	apperrors "ordernorm/pkg/errors"
)

var (
	ErrAddressFormat = errors.New("unexpected address format")
	ErrUnknownKind   = errors.New("unknown address kind")
	ErrUnknownMode   = errors.New("unknown address mode")
)

type Kind string

const (
	Supplier Kind = "supplier"
	Customer Kind = "customer"
)

func (k Kind) Valid() bool {
	return k == Supplier || k == Customer
}

// ParseKind accepts "supplier" or "customer" in any case.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", unknownKind(s)
	}
	return k, nil
}

type Mode string

const (
	ModeStrict   Mode = "strict"
	ModeAdvanced Mode = "advanced"
	ModeSimple   Mode = "simple"
)

func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeStrict, nil
	case ModeStrict, ModeAdvanced, ModeSimple:
		return m, nil
	}
	err := apperrors.Validation(fmt.Sprintf("address mode must be one of %s, %s, %s", ModeStrict, ModeAdvanced, ModeSimple), map[string]any{
		"mode": s,
	})
	err.Err = ErrUnknownMode
	return "", err
}

// Parse runs the parser selected by mode.
func Parse(addr string, kind Kind, mode Mode) (Components, error) {
	switch mode {
	case ModeStrict, "":
		return Decompose(addr, kind)
	case ModeAdvanced:
		return DecomposeAdvanced(addr, kind)
	case ModeSimple:
		return DecomposeSimple(addr, kind)
	}
	_, err := ParseMode(string(mode))
	return Components{}, err
}

func unknownKind(kind string) error {
	err := apperrors.Validation(fmt.Sprintf("address kind must be %q or %q", Supplier, Customer), map[string]any{
		"kind": kind,
	})
	err.Err = ErrUnknownKind
	return err
}

func formatError(addr string, segments int) error {
	return apperrors.AddressFormat(
		fmt.Sprintf("cannot split address with %d comma-separated parts", segments),
		ErrAddressFormat,
	).WithDetails(map[string]any{
		"address":  addr,
		"segments": segments,
	})
}
