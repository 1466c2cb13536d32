package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/user/campwood-go/apperror"
)

func guardedEcho(t *testing.T, s *Service) http.Handler {
	t.Helper()
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			t.Error("claims missing from request context")
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]interface{}{"user_id": claims.UserID})
	})
	return Guard(&s.cfg)(inner)
}

func TestGuardMissingHeader(t *testing.T) {
	s := testService(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/user/profile", nil)

	guardedEcho(t, s).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	var body apperror.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Success || body.Message != "Access token required" {
		t.Errorf("body = %+v", body)
	}
}

func TestGuardMalformedHeader(t *testing.T) {
	s := testService(t)

	for _, header := range []string{"Token abc", "Bearer", "Bearer "} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/user/profile", nil)
		req.Header.Set("Authorization", header)

		guardedEcho(t, s).ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("header %q: status = %d, want 401", header, rec.Code)
		}
	}
}

func TestGuardInvalidToken(t *testing.T) {
	s := testService(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/user/profile", nil)
	req.Header.Set("Authorization", "Bearer not-a-real-token")

	guardedEcho(t, s).ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
	var body apperror.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Message != "Invalid or expired token" {
		t.Errorf("message = %q", body.Message)
	}
}

func TestGuardRejectsRefreshToken(t *testing.T) {
	s := testService(t)
	pair, err := s.generateTokens(testUser())
	if err != nil {
		t.Fatalf("generateTokens: %v", err)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/user/profile", nil)
	req.Header.Set("Authorization", "Bearer "+pair.RefreshToken)

	guardedEcho(t, s).ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func TestGuardValidToken(t *testing.T) {
	s := testService(t)
	pair, err := s.generateTokens(testUser())
	if err != nil {
		t.Fatalf("generateTokens: %v", err)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/user/profile", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)

	guardedEcho(t, s).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}
	var body struct {
		UserID int `json:"user_id"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.UserID != 7 {
		t.Errorf("user_id = %d, want 7", body.UserID)
	}
}
