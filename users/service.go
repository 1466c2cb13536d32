// Package users covers account management: profile updates, listing
// statistics and account deletion with its listing cascade.
package users

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/user/campwood-go/apperror"
	"github.com/user/campwood-go/auth"
)

const pgUniqueViolation = "23505"

// Service provides account management operations.
type Service struct {
	db  *pgxpool.Pool
	log *logrus.Logger
}

// NewService creates a users Service.
func NewService(db *pgxpool.Pool, log *logrus.Logger) *Service {
	return &Service{db: db, log: log}
}

// UpdateProfile updates name and email, and optionally the password when
// NewPassword is set. Changing the password requires the current one.
func (s *Service) UpdateProfile(ctx context.Context, userID int, req *UpdateProfileRequest) (*auth.User, error) {
	current, err := s.getUserWithPassword(ctx, userID)
	if err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email != current.Email {
		var takenBy int
		err := s.db.QueryRow(ctx,
			`SELECT id FROM users WHERE email = $1 AND id != $2`, email, userID,
		).Scan(&takenBy)
		if err == nil {
			return nil, apperror.NewConflictError("Email is already taken by another user", nil)
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewDatabaseError("Failed to check email availability", err)
		}
	}

	password := current.HashedPassword
	if req.NewPassword != "" {
		if req.CurrentPassword == "" {
			return nil, apperror.NewBadRequestError("Current password is required to change password", nil)
		}
		if err := bcrypt.CompareHashAndPassword([]byte(current.HashedPassword), []byte(req.CurrentPassword)); err != nil {
			return nil, apperror.NewBadRequestError("Current password is incorrect", nil)
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, apperror.NewInternalError("error processing password", err)
		}
		password = string(hashed)
	}

	var updated auth.User
	err = s.db.QueryRow(ctx,
		`UPDATE users
		 SET name = $1, email = $2, password = $3, updated_at = now()
		 WHERE id = $4
		 RETURNING id, name, email, role, created_at`,
		strings.TrimSpace(req.Name), email, password, userID,
	).Scan(&updated.ID, &updated.Name, &updated.Email, &updated.Role, &updated.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			// Raced with another update between the check and the write.
			return nil, apperror.NewConflictError("Email is already taken by another user", nil)
		}
		return nil, apperror.NewDatabaseError("Failed to update profile", err)
	}

	s.log.WithField("user_id", userID).Info("profile updated")
	return &updated, nil
}

// DeleteAccount removes the caller's listings and then the user row in one
// transaction. The ids of the removed listings are returned so the caller
// can notify stream subscribers. Irreversible.
func (s *Service) DeleteAccount(ctx context.Context, userID int) ([]int, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, apperror.NewDatabaseError("Failed to delete account", err)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, `DELETE FROM locations WHERE created_by = $1 RETURNING id`, userID)
	if err != nil {
		return nil, apperror.NewDatabaseError("Failed to delete account listings", err)
	}
	var deleted []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, apperror.NewDatabaseError("Failed to delete account listings", err)
		}
		deleted = append(deleted, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDatabaseError("Failed to delete account listings", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return nil, apperror.NewDatabaseError("Failed to delete account", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, apperror.NewNotFoundError("User account not found", nil)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, apperror.NewDatabaseError("Failed to delete account", err)
	}

	s.log.WithFields(logrus.Fields{"user_id": userID, "listings_removed": len(deleted)}).
		Info("account deleted")
	return deleted, nil
}

// GetStats returns the caller's listing counts by status.
func (s *Service) GetStats(ctx context.Context, userID int) (*Stats, error) {
	var stats Stats
	err := s.db.QueryRow(ctx,
		`SELECT count(*),
		        count(*) FILTER (WHERE status = 'active')
		 FROM locations WHERE created_by = $1`, userID,
	).Scan(&stats.TotalLocations, &stats.ActiveLocations)
	if err != nil {
		return nil, apperror.NewDatabaseError("Failed to fetch user statistics", err)
	}
	stats.PendingLocations = stats.TotalLocations - stats.ActiveLocations
	return &stats, nil
}

func (s *Service) getUserWithPassword(ctx context.Context, userID int) (*auth.User, error) {
	var user auth.User
	err := s.db.QueryRow(ctx,
		`SELECT id, name, email, password, role, created_at FROM users WHERE id = $1`, userID,
	).Scan(&user.ID, &user.Name, &user.Email, &user.HashedPassword, &user.Role, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError("User not found", nil)
		}
		return nil, apperror.NewDatabaseError("Failed to get user", err)
	}
	return &user, nil
}
