package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "ordernorm/pkg/errors"
	"ordernorm/pkg/value"
)

var validate = validator.New()

func init() {
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// Decode copies a flow input into dst and validates it. Fields of type
// value.Value or *value.Object keep their key order.
func Decode(input value.Value, dst any) error {
	if _, ok := input.Object(); !ok {
		return apperrors.InvalidInput("flow input must be a JSON object")
	}

	raw, err := input.MarshalJSON()
	if err != nil {
		return apperrors.InvalidInput("flow input cannot be encoded: " + err.Error())
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return apperrors.InvalidInput("invalid flow input: " + err.Error())
	}

	if err := validate.Struct(dst); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translate(validationErrs)
		}
		return apperrors.Internal("flow input validation failed", err)
	}
	return nil
}

func translate(errs validator.ValidationErrors) error {
	fields := make(map[string]string, len(errs))
	messages := make([]string, 0, len(errs))

	for _, err := range errs {
		message := err.Error()
		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must have at least %s entries", err.Field(), err.Param())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		}
		fields[fieldPath(err.Namespace())] = message
		messages = append(messages, message)
	}

	return apperrors.Validation(strings.Join(messages, "; "), map[string]any{"fields": fields})
}

// fieldPath drops the struct name from a validator namespace, leaving the
// JSON path of the field such as rules[0].input.
func fieldPath(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}
	return namespace
}
