package auth

import (
	"net/http"
	"strings"

	"github.com/user/campwood-go/apperror"
	"github.com/user/campwood-go/config"
)

// Guard returns middleware that enforces a valid bearer access token and
// attaches the decoded claims to the request context.
//
// A missing or blank Authorization header is 401; a header that is present
// but carries an unparsable, badly signed, expired or non-access token is
// 403. Claims are trusted as-is; the user row is not re-read per request,
// so a deleted user's token stays valid until it expires.
func Guard(cfg *config.AuthConfig) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				WriteError(w, r, apperror.NewAuthError("Access token required", nil))
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
				WriteError(w, r, apperror.NewAuthError("Authorization header format must be Bearer {token}", nil))
				return
			}

			claims, err := ValidateToken(parts[1], cfg.JWTSecret, tokenTypeAccess)
			if err != nil {
				WriteError(w, r, apperror.NewForbiddenError("Invalid or expired token", err))
				return
			}

			ctx := NewContextWithClaims(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
