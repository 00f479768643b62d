package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "without underlying error",
			appErr:   Validation("address kind must be supplier or customer", nil),
			expected: "VALIDATION_ERROR: address kind must be supplier or customer",
		},
		{
			name:     "with underlying error",
			appErr:   AddressFormat("unexpected address format", errors.New("4 segments")),
			expected: "ADDRESS_FORMAT_ERROR: unexpected address format (caused by: 4 segments)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.appErr.Error()
			if got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestConstructors_StatusCodes(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		code   string
		status int
	}{
		{name: "address format", err: AddressFormat("bad", nil), code: CodeAddressFormat, status: http.StatusBadRequest},
		{name: "validation", err: Validation("bad", nil), code: CodeValidation, status: http.StatusUnprocessableEntity},
		{name: "invalid input", err: InvalidInput("bad"), code: CodeInvalidInput, status: http.StatusBadRequest},
		{name: "not found", err: NotFound("Order"), code: CodeNotFound, status: http.StatusNotFound},
		{name: "external api", err: ExternalAPI("billing", 500, nil), code: CodeExternalAPI, status: http.StatusBadGateway},
		{name: "timeout", err: Timeout("slow"), code: CodeTimeout, status: http.StatusGatewayTimeout},
		{name: "unavailable", err: Unavailable("Audit store"), code: CodeUnavailable, status: http.StatusServiceUnavailable},
		{name: "internal", err: Internal("boom", nil), code: CodeInternal, status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("code = %s, want %s", tt.err.Code, tt.code)
			}
			if tt.err.StatusCode() != tt.status {
				t.Errorf("status = %d, want %d", tt.err.StatusCode(), tt.status)
			}
		})
	}
}

func TestAppError_UnwrapAndIs(t *testing.T) {
	sentinel := errors.New("unexpected address format")
	appErr := AddressFormat("cannot split address", sentinel)

	if !errors.Is(appErr, sentinel) {
		t.Error("errors.Is should see the wrapped sentinel")
	}

	wrapped := fmt.Errorf("decompose supplier: %w", appErr)
	if !IsAppError(wrapped) {
		t.Error("IsAppError should look through fmt wrapping")
	}
	if AsAppError(wrapped) != appErr {
		t.Error("AsAppError should return the wrapped AppError")
	}
	if !HasCode(wrapped, CodeAddressFormat) {
		t.Error("HasCode should match the wrapped code")
	}
	if HasCode(wrapped, CodeValidation) {
		t.Error("HasCode should not match a different code")
	}
}

func TestAsAppError_PlainError(t *testing.T) {
	regularErr := errors.New("regular error")

	result := AsAppError(regularErr)
	if result.Code != CodeInternal {
		t.Errorf("AsAppError() should wrap regular error as internal error")
	}
	if result.Err != regularErr {
		t.Errorf("AsAppError() should wrap the original error")
	}
}

func TestExternalAPI_Details(t *testing.T) {
	err := ExternalAPI("billing", http.StatusTooManyRequests, nil)

	if err.Details["service"] != "billing" {
		t.Errorf("service detail = %v", err.Details["service"])
	}
	if err.Details["upstream_code"] != http.StatusTooManyRequests {
		t.Errorf("upstream_code detail = %v", err.Details["upstream_code"])
	}
}

func TestNew_OverridesStatus(t *testing.T) {
	err := New(CodeInvalidInput, "Request body too large", http.StatusRequestEntityTooLarge)
	if err.StatusCode() != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d", err.StatusCode())
	}
	if (&AppError{Code: "SOMETHING_NEW"}).StatusCode() != http.StatusInternalServerError {
		t.Error("unknown codes should map to 500")
	}
}

func TestAppError_Retryable(t *testing.T) {
	tests := []struct {
		err  *AppError
		want bool
	}{
		{err: Unavailable("Billing API"), want: true},
		{err: Timeout("slow"), want: true},
		{err: ExternalAPI("tables", 503, nil), want: true},
		{err: AddressFormat("bad", nil), want: false},
		{err: Validation("bad", nil), want: false},
		{err: Internal("boom", nil), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.err.Code, func(t *testing.T) {
			if got := tt.err.Retryable(); got != tt.want {
				t.Errorf("Retryable() = %v, want %v", got, tt.want)
			}
		})
	}
}
