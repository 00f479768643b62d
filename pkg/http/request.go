package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	apperrors "ordernorm/pkg/errors"
	"ordernorm/pkg/value"
)

// ReadValue parses the request body as a single JSON document. Documents
// nested deeper than maxDepth are rejected; maxDepth <= 0 disables the check.
func ReadValue(r *http.Request, maxDepth int) (value.Value, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return value.Value{}, apperrors.New(apperrors.CodeInvalidInput, "Request body too large", http.StatusRequestEntityTooLarge)
		}
		return value.Value{}, apperrors.InvalidInput("Failed to read request body")
	}

	v, err := value.Parse(body)
	if err != nil {
		return value.Value{}, apperrors.InvalidInput("Invalid JSON body: " + err.Error())
	}

	if maxDepth > 0 {
		if depth := value.Depth(v); depth > maxDepth {
			return value.Value{}, apperrors.InvalidInput(
				fmt.Sprintf("Document nesting depth %d exceeds the limit of %d", depth, maxDepth))
		}
	}
	return v, nil
}

// ReadObject is ReadValue for endpoints that only accept a JSON object.
func ReadObject(r *http.Request, maxDepth int) (*value.Object, error) {
	v, err := ReadValue(r, maxDepth)
	if err != nil {
		return nil, err
	}
	obj, ok := v.Object()
	if !ok {
		return nil, apperrors.InvalidInput("Request body must be a JSON object")
	}
	return obj, nil
}

// DecodeJSON decodes a typed request body.
func DecodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperrors.InvalidInput("Invalid request body")
	}
	return nil
}
