package validation

import (
	"strings"
	"testing"

	"github.com/user/campwood-go/apperror"
)

type registerForm struct {
	Name     string `validate:"required,min=2,max=50"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
}

type coordForm struct {
	Latitude  *float64 `validate:"required,gte=-90,lte=90"`
	Longitude *float64 `validate:"required,gte=-180,lte=180"`
}

func TestStructValid(t *testing.T) {
	form := registerForm{Name: "Ivan", Email: "ivan@example.com", Password: "secret123"}
	if err := Struct(form); err != nil {
		t.Errorf("expected valid, got %v", err)
	}
}

func TestStructCollectsAllFieldErrors(t *testing.T) {
	err := Struct(registerForm{Name: "I", Email: "not-an-email", Password: "abc"})
	if err != nil && !apperror.IsValidationError(err) {
		t.Fatalf("expected a ValidationError, got %v", err)
	}
	if err == nil {
		t.Fatal("expected an error")
	}

	appErr, _ := apperror.FromError(err)
	for _, want := range []string{
		"name must be at least 2 characters",
		"email must be a valid email address",
		"password must be at least 6 characters",
	} {
		if !strings.Contains(appErr.Message, want) {
			t.Errorf("message %q missing %q", appErr.Message, want)
		}
	}
}

func TestStructRequiredPointer(t *testing.T) {
	lat := 55.75
	err := Struct(coordForm{Latitude: &lat})
	if err == nil {
		t.Fatal("missing longitude should fail")
	}
	appErr, _ := apperror.FromError(err)
	if !strings.Contains(appErr.Message, "longitude is required") {
		t.Errorf("message = %q", appErr.Message)
	}
}

func TestStructCoordinateRange(t *testing.T) {
	lat, lng := 91.0, 37.62
	err := Struct(coordForm{Latitude: &lat, Longitude: &lng})
	if err == nil {
		t.Fatal("latitude out of range should fail")
	}
	appErr, _ := apperror.FromError(err)
	if !strings.Contains(appErr.Message, "latitude cannot exceed 90") {
		t.Errorf("message = %q", appErr.Message)
	}
}

func TestVar(t *testing.T) {
	if err := Var(42, "min=1,max=100", "limit"); err != nil {
		t.Errorf("expected valid, got %v", err)
	}
	err := Var(500, "min=1,max=100", "limit")
	if err == nil {
		t.Fatal("expected an error")
	}
	if !apperror.IsValidationError(err) {
		t.Errorf("expected a ValidationError, got %v", err)
	}
}
