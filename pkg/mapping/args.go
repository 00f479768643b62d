package mapping

import (
	"fmt"
	"reflect"
	"strings"

	apperrors "ordernorm/pkg/errors"
	"ordernorm/pkg/value"
)

// Arg is one mandatory argument checked by RequireArgs.
type Arg struct {
	Name  string
	Value any
}

// RequireArgs fails with a validation error naming every argument that is
// nil, null, or an empty string. Names are reported in the order given.
func RequireArgs(args ...Arg) error {
	var missing []string
	for _, a := range args {
		if !present(a.Value) {
			missing = append(missing, a.Name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return apperrors.Validation(
		fmt.Sprintf("Mandatory function argument(s) missing: %s", strings.Join(missing, ", ")),
		map[string]any{"missing": missing},
	)
}

func present(x any) bool {
	switch t := x.(type) {
	case nil:
		return false
	case value.Value:
		if t.IsNull() {
			return false
		}
		if s, ok := t.AsString(); ok {
			return s != ""
		}
		return true
	case *value.Object:
		return t != nil
	case string:
		return t != ""
	}

	// Zero numbers and false are real values; only nil references are missing.
	rv := reflect.ValueOf(x)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Chan, reflect.Func:
		return !rv.IsNil()
	}
	return true
}
