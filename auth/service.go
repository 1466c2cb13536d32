// Package auth handles registration, login, token issuance and the bearer
// token guard for the listings API.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/user/campwood-go/apperror"
	"github.com/user/campwood-go/config"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
	// pgUniqueViolation is the PostgreSQL error code for unique constraint violations.
	pgUniqueViolation = "23505"

	tokenIssuer = "campwood"
)

// Claims is the JWT payload. The identity fields mirror what the API
// exposes about a user so the guard never has to re-read the user row.
type Claims struct {
	UserID    int    `json:"user_id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// Service provides authentication operations backed by the user store.
type Service struct {
	db  *pgxpool.Pool
	cfg config.AuthConfig
	log *logrus.Logger
}

// NewService creates an auth Service.
func NewService(db *pgxpool.Pool, cfg config.AuthConfig, log *logrus.Logger) *Service {
	return &Service{db: db, cfg: cfg, log: log}
}

// Register creates a new user and returns it with a fresh token pair.
// A taken email yields a ConflictError.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*User, *TokenPair, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, apperror.NewInternalError("error processing password", err)
	}

	user := &User{
		Name:           strings.TrimSpace(req.Name),
		Email:          strings.ToLower(strings.TrimSpace(req.Email)),
		HashedPassword: string(hashed),
		Role:           RoleUser,
	}

	query := `INSERT INTO users (name, email, password)
	          VALUES ($1, $2, $3)
	          RETURNING id, role, created_at`
	err = s.db.QueryRow(ctx, query, user.Name, user.Email, user.HashedPassword).
		Scan(&user.ID, &user.Role, &user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, nil, apperror.NewConflictError("User with this email already exists", nil)
		}
		return nil, nil, apperror.NewDatabaseError("Failed to create user account", err)
	}

	tokens, err := s.generateTokens(user)
	if err != nil {
		return nil, nil, err
	}

	s.log.WithFields(logrus.Fields{"user_id": user.ID, "email": user.Email}).Info("user registered")
	return user, tokens, nil
}

// Login verifies credentials and returns the user with a fresh token pair.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*User, *TokenPair, error) {
	user, err := s.getUserByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, nil, apperror.NewAuthError("Invalid email or password", nil)
		}
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.Password)); err != nil {
		return nil, nil, apperror.NewAuthError("Invalid email or password", nil)
	}

	tokens, err := s.generateTokens(user)
	if err != nil {
		return nil, nil, err
	}
	return user, tokens, nil
}

// Refresh validates a refresh token and issues a new access token. The
// refresh token is returned unchanged; rotation is not implemented.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := ValidateToken(refreshToken, s.cfg.JWTSecret, tokenTypeRefresh)
	if err != nil {
		return nil, apperror.NewForbiddenError("Invalid or expired refresh token", err)
	}

	user := &User{ID: claims.UserID, Name: claims.Name, Email: claims.Email, Role: claims.Role}
	access, expiresAt, err := s.signToken(user, tokenTypeAccess, s.cfg.AccessTokenDuration)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(time.Until(expiresAt).Seconds()),
	}, nil
}

// Me returns the current account as stored, not as claimed in the token.
func (s *Service) Me(ctx context.Context, userID int) (*User, error) {
	var user User
	query := `SELECT id, name, email, role, created_at FROM users WHERE id = $1`
	err := s.db.QueryRow(ctx, query, userID).
		Scan(&user.ID, &user.Name, &user.Email, &user.Role, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError("User not found", nil)
		}
		return nil, apperror.NewDatabaseError("Failed to get user", err)
	}
	return &user, nil
}

func (s *Service) generateTokens(user *User) (*TokenPair, error) {
	access, accessExpiresAt, err := s.signToken(user, tokenTypeAccess, s.cfg.AccessTokenDuration)
	if err != nil {
		return nil, err
	}
	refresh, _, err := s.signToken(user, tokenTypeRefresh, s.cfg.RefreshTokenDuration)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(time.Until(accessExpiresAt).Seconds()),
	}, nil
}

func (s *Service) signToken(user *User, tokenType string, duration time.Duration) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(duration)
	claims := &Claims{
		UserID:    user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Role:      user.Role,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
			Subject:   fmt.Sprintf("%d", user.ID),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", time.Time{}, apperror.NewInternalError("failed to sign token", err)
	}
	return signed, expiresAt, nil
}

// ValidateToken parses a JWT, verifies the HMAC signature and expiry, and
// checks the token type ("access" or "refresh").
func ValidateToken(tokenString, secret, expectedType string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("token is invalid")
	}
	if claims.TokenType != expectedType {
		return nil, fmt.Errorf("invalid token type: expected %s, got %s", expectedType, claims.TokenType)
	}
	if claims.UserID == 0 {
		return nil, errors.New("user_id claim is missing")
	}
	return claims, nil
}

func (s *Service) getUserByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	query := `SELECT id, name, email, password, role, created_at FROM users WHERE email = $1`
	err := s.db.QueryRow(ctx, query, email).
		Scan(&user.ID, &user.Name, &user.Email, &user.HashedPassword, &user.Role, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError("User not found", nil)
		}
		return nil, apperror.NewDatabaseError("Failed to get user", err)
	}
	return &user, nil
}
