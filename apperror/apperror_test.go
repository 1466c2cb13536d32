package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatusCodes(t *testing.T) {
	cases := []struct {
		name string
		err  *AppError
		want int
	}{
		{"validation", NewValidationError("bad input", nil), http.StatusBadRequest},
		{"bad request", NewBadRequestError("bad body", nil), http.StatusBadRequest},
		{"auth", NewAuthError("no token", nil), http.StatusUnauthorized},
		{"forbidden", NewForbiddenError("not yours", nil), http.StatusForbidden},
		{"not found", NewNotFoundError("missing", nil), http.StatusNotFound},
		{"conflict", NewConflictError("taken", nil), http.StatusConflict},
		{"database", NewDatabaseError("db down", nil), http.StatusInternalServerError},
		{"internal", NewInternalError("boom", nil), http.StatusInternalServerError},
		{"external", NewExternalServiceError("upstream down", nil), http.StatusServiceUnavailable},
		{"unknown", NewAppError(UnknownError, "???", nil), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.err.StatusCode(); got != tc.want {
				t.Errorf("StatusCode() = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestErrorIncludesUnderlying(t *testing.T) {
	underlying := errors.New("connection refused")
	err := NewDatabaseError("db down", underlying)

	if err.Error() != "db down: connection refused" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, underlying) {
		t.Error("expected errors.Is to find the wrapped cause")
	}
}

func TestToResponseHidesUnderlying(t *testing.T) {
	err := NewInternalError("Internal server error", errors.New("secret detail"))
	resp := err.ToResponse()

	if resp.Success {
		t.Error("expected success=false")
	}
	if resp.Message != "Internal server error" {
		t.Errorf("Message = %q, leaked underlying detail?", resp.Message)
	}
}

func TestFromError(t *testing.T) {
	appErr := NewNotFoundError("missing", nil)

	if got, ok := FromError(appErr); !ok || got != appErr {
		t.Error("FromError should return the original AppError")
	}
	if got, ok := FromError(fmt.Errorf("wrapped: %w", appErr)); !ok || got != appErr {
		t.Error("FromError should unwrap to the AppError")
	}
	if _, ok := FromError(errors.New("plain")); ok {
		t.Error("FromError should reject non-app errors")
	}
	if _, ok := FromError(nil); ok {
		t.Error("FromError should reject nil")
	}
}

func TestTypePredicates(t *testing.T) {
	if !IsNotFound(NewNotFoundError("x", nil)) {
		t.Error("IsNotFound")
	}
	if !IsAuthError(NewAuthError("x", nil)) {
		t.Error("IsAuthError")
	}
	if !IsForbidden(NewForbiddenError("x", nil)) {
		t.Error("IsForbidden")
	}
	if !IsValidationError(NewValidationError("x", nil)) {
		t.Error("IsValidationError")
	}
	if !IsConflict(NewConflictError("x", nil)) {
		t.Error("IsConflict")
	}
	if IsNotFound(NewConflictError("x", nil)) {
		t.Error("predicates must not cross-match")
	}
}
