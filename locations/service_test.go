package locations

import (
	"testing"

	"github.com/user/campwood-go/apperror"
	"github.com/user/campwood-go/auth"
)

func TestAuthorize(t *testing.T) {
	listing := &Location{ID: 1, CreatedBy: Owner{ID: 7}}

	cases := []struct {
		name    string
		caller  *auth.Claims
		allowed bool
	}{
		{"owner", &auth.Claims{UserID: 7, Role: auth.RoleUser}, true},
		{"admin on someone else's listing", &auth.Claims{UserID: 99, Role: auth.RoleAdmin}, true},
		{"other user", &auth.Claims{UserID: 8, Role: auth.RoleUser}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := authorize(tc.caller, listing)
			if tc.allowed && err != nil {
				t.Errorf("expected access, got %v", err)
			}
			if !tc.allowed {
				if !apperror.IsForbidden(err) {
					t.Errorf("expected ForbiddenError, got %v", err)
				}
			}
		})
	}
}
