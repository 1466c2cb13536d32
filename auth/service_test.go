package auth

import (
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/user/campwood-go/config"
)

func testService(t *testing.T) *Service {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	cfg := config.AuthConfig{
		JWTSecret:            "test-secret",
		AccessTokenDuration:  15 * time.Minute,
		RefreshTokenDuration: 168 * time.Hour,
	}
	return NewService(nil, cfg, log)
}

func testUser() *User {
	return &User{ID: 7, Name: "Ivan", Email: "ivan@example.com", Role: RoleUser}
}

func TestTokenRoundTrip(t *testing.T) {
	s := testService(t)

	pair, err := s.generateTokens(testUser())
	if err != nil {
		t.Fatalf("generateTokens: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("expected both tokens to be issued")
	}
	if pair.ExpiresIn <= 0 || pair.ExpiresIn > int64((15*time.Minute).Seconds()) {
		t.Errorf("ExpiresIn = %d, want within the access token lifetime", pair.ExpiresIn)
	}

	claims, err := ValidateToken(pair.AccessToken, "test-secret", tokenTypeAccess)
	if err != nil {
		t.Fatalf("ValidateToken(access): %v", err)
	}
	if claims.UserID != 7 || claims.Email != "ivan@example.com" || claims.Role != RoleUser {
		t.Errorf("unexpected claims: %+v", claims)
	}
	if claims.Issuer != tokenIssuer {
		t.Errorf("Issuer = %q, want %q", claims.Issuer, tokenIssuer)
	}

	if _, err := ValidateToken(pair.RefreshToken, "test-secret", tokenTypeRefresh); err != nil {
		t.Errorf("ValidateToken(refresh): %v", err)
	}
}

func TestValidateTokenRejectsWrongType(t *testing.T) {
	s := testService(t)
	pair, err := s.generateTokens(testUser())
	if err != nil {
		t.Fatalf("generateTokens: %v", err)
	}

	if _, err := ValidateToken(pair.RefreshToken, "test-secret", tokenTypeAccess); err == nil {
		t.Error("refresh token must not pass as an access token")
	}
	if _, err := ValidateToken(pair.AccessToken, "test-secret", tokenTypeRefresh); err == nil {
		t.Error("access token must not pass as a refresh token")
	}
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	s := testService(t)
	pair, err := s.generateTokens(testUser())
	if err != nil {
		t.Fatalf("generateTokens: %v", err)
	}

	if _, err := ValidateToken(pair.AccessToken, "other-secret", tokenTypeAccess); err == nil {
		t.Error("token signed with a different secret must not validate")
	}
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	s := testService(t)
	token, _, err := s.signToken(testUser(), tokenTypeAccess, -time.Minute)
	if err != nil {
		t.Fatalf("signToken: %v", err)
	}

	if _, err := ValidateToken(token, "test-secret", tokenTypeAccess); err == nil {
		t.Error("expired token must not validate")
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	if _, err := ValidateToken("not-a-jwt", "test-secret", tokenTypeAccess); err == nil {
		t.Error("garbage input must not validate")
	}
}

func TestRefreshIssuesNewAccessToken(t *testing.T) {
	s := testService(t)
	pair, err := s.generateTokens(testUser())
	if err != nil {
		t.Fatalf("generateTokens: %v", err)
	}

	refreshed, err := s.Refresh(t.Context(), pair.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if refreshed.RefreshToken != pair.RefreshToken {
		t.Error("refresh token should be returned unchanged")
	}

	claims, err := ValidateToken(refreshed.AccessToken, "test-secret", tokenTypeAccess)
	if err != nil {
		t.Fatalf("ValidateToken(new access): %v", err)
	}
	if claims.UserID != 7 {
		t.Errorf("UserID = %d, want 7", claims.UserID)
	}
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	s := testService(t)
	pair, err := s.generateTokens(testUser())
	if err != nil {
		t.Fatalf("generateTokens: %v", err)
	}

	if _, err := s.Refresh(t.Context(), pair.AccessToken); err == nil {
		t.Error("an access token must not be accepted for refresh")
	}
}
