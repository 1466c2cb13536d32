// Package locations implements the listings API: public browsing with a
// radius filter, authenticated CRUD with ownership checks, near-duplicate
// rejection and the report counter feeding the moderation sweep.
package locations

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/user/campwood-go/apperror"
	"github.com/user/campwood-go/auth"
)

// Service provides listing operations.
type Service struct {
	db  *pgxpool.Pool
	log *logrus.Logger
}

// NewService creates a locations Service.
func NewService(db *pgxpool.Pool, log *logrus.Logger) *Service {
	return &Service{db: db, log: log}
}

const selectColumns = `
	l.id, l.name, l.description, l.price, l.latitude, l.longitude,
	l.status, l.verified, l.report_count, l.created_at, l.updated_at,
	u.id, u.name, u.email`

// List returns active listings, newest first, optionally filtered by a
// bounding box around (lat, lng). Limit is clamped to [1, 100].
func (s *Service) List(ctx context.Context, params ListParams) ([]Location, error) {
	query := `SELECT ` + selectColumns + `
	          FROM locations l
	          JOIN users u ON u.id = l.created_by
	          WHERE l.status = $1`
	args := []interface{}{StatusActive}

	if params.Lat != nil && params.Lng != nil {
		box := BoxAround(*params.Lat, *params.Lng, clampRadius(params.RadiusKm))
		query += fmt.Sprintf(
			` AND l.latitude BETWEEN $%d AND $%d AND l.longitude BETWEEN $%d AND $%d`,
			len(args)+1, len(args)+2, len(args)+3, len(args)+4,
		)
		args = append(args, box.MinLat, box.MaxLat, box.MinLng, box.MaxLng)
	}

	query += fmt.Sprintf(` ORDER BY l.created_at DESC LIMIT $%d`, len(args)+1)
	args = append(args, clampLimit(params.Limit))

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, apperror.NewDatabaseError("Failed to fetch locations", err)
	}
	defer rows.Close()

	return scanLocations(rows)
}

// Get returns one active listing by id.
func (s *Service) Get(ctx context.Context, id int) (*Location, error) {
	query := `SELECT ` + selectColumns + `
	          FROM locations l
	          JOIN users u ON u.id = l.created_by
	          WHERE l.id = $1 AND l.status = $2`
	loc, err := s.queryOne(ctx, query, id, StatusActive)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFoundError("Location not found", nil)
		}
		return nil, err
	}
	return loc, nil
}

// Create inserts a new listing owned by the caller. A second active
// listing within ±0.001° on both axes of an existing one is rejected.
func (s *Service) Create(ctx context.Context, userID int, req *CreateLocationRequest) (*Location, error) {
	lat, lng := *req.Latitude, *req.Longitude

	box := duplicateBox(lat, lng)
	var existingID int
	err := s.db.QueryRow(ctx,
		`SELECT id FROM locations
		 WHERE status = $1
		   AND latitude BETWEEN $2 AND $3
		   AND longitude BETWEEN $4 AND $5
		 LIMIT 1`,
		StatusActive, box.MinLat, box.MaxLat, box.MinLng, box.MaxLng,
	).Scan(&existingID)
	if err == nil {
		return nil, apperror.NewConflictError("A location already exists very close to these coordinates", nil)
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NewDatabaseError("Failed to check for nearby locations", err)
	}

	var id int
	err = s.db.QueryRow(ctx,
		`INSERT INTO locations (name, description, price, latitude, longitude, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		strings.TrimSpace(req.Name), req.Description, req.Price, lat, lng, userID,
	).Scan(&id)
	if err != nil {
		return nil, apperror.NewDatabaseError("Failed to create location", err)
	}

	s.log.WithFields(logrus.Fields{"location_id": id, "user_id": userID}).Info("location created")
	return s.getAnyStatus(ctx, id)
}

// Update applies the provided fields to a listing. Only the owner or an
// admin may update; the lookup happens first, so a missing listing is 404
// even for strangers. Concurrent updates are last-write-wins.
func (s *Service) Update(ctx context.Context, caller *auth.Claims, id int, req *UpdateLocationRequest) (*Location, error) {
	existing, err := s.getAnyStatus(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(caller, existing); err != nil {
		return nil, err
	}

	var setClauses []string
	var args []interface{}
	add := func(column string, value interface{}) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, len(args)+1))
		args = append(args, value)
	}
	if req.Name != nil {
		add("name", strings.TrimSpace(*req.Name))
	}
	if req.Description != nil {
		add("description", *req.Description)
	}
	if req.Price != nil {
		add("price", *req.Price)
	}
	if req.Latitude != nil {
		add("latitude", *req.Latitude)
	}
	if req.Longitude != nil {
		add("longitude", *req.Longitude)
	}
	if len(setClauses) == 0 {
		return existing, nil
	}
	setClauses = append(setClauses, "updated_at = now()")

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE locations SET %s WHERE id = $%d`,
		strings.Join(setClauses, ", "), len(args))
	if _, err := s.db.Exec(ctx, query, args...); err != nil {
		return nil, apperror.NewDatabaseError("Failed to update location", err)
	}

	s.log.WithFields(logrus.Fields{"location_id": id, "user_id": caller.UserID}).Info("location updated")
	return s.getAnyStatus(ctx, id)
}

// Delete removes a listing. Same ownership rule as Update.
func (s *Service) Delete(ctx context.Context, caller *auth.Claims, id int) error {
	existing, err := s.getAnyStatus(ctx, id)
	if err != nil {
		return err
	}
	if err := authorize(caller, existing); err != nil {
		return err
	}

	if _, err := s.db.Exec(ctx, `DELETE FROM locations WHERE id = $1`, id); err != nil {
		return apperror.NewDatabaseError("Failed to delete location", err)
	}

	s.log.WithFields(logrus.Fields{"location_id": id, "user_id": caller.UserID}).Info("location deleted")
	return nil
}

// Mine returns every listing owned by the caller, regardless of status.
func (s *Service) Mine(ctx context.Context, userID int) ([]Location, error) {
	query := `SELECT ` + selectColumns + `
	          FROM locations l
	          JOIN users u ON u.id = l.created_by
	          WHERE l.created_by = $1
	          ORDER BY l.created_at DESC`
	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, apperror.NewDatabaseError("Failed to fetch your locations", err)
	}
	defer rows.Close()

	return scanLocations(rows)
}

// Report increments the report counter of an active listing.
func (s *Service) Report(ctx context.Context, id int) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE locations SET report_count = report_count + 1, updated_at = now()
		 WHERE id = $1 AND status = $2`, id, StatusActive)
	if err != nil {
		return apperror.NewDatabaseError("Failed to report location", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFoundError("Location not found", nil)
	}

	s.log.WithField("location_id", id).Info("location reported")
	return nil
}

// authorize allows the owner and admins, everyone else gets 403.
func authorize(caller *auth.Claims, loc *Location) error {
	if loc.CreatedBy.ID == caller.UserID || caller.Role == auth.RoleAdmin {
		return nil
	}
	return apperror.NewForbiddenError("Not authorized to modify this location", nil)
}

// getAnyStatus loads a listing by id regardless of status, for ownership
// checks and post-write reads.
func (s *Service) getAnyStatus(ctx context.Context, id int) (*Location, error) {
	query := `SELECT ` + selectColumns + `
	          FROM locations l
	          JOIN users u ON u.id = l.created_by
	          WHERE l.id = $1`
	return s.queryOne(ctx, query, id)
}

func (s *Service) queryOne(ctx context.Context, query string, args ...interface{}) (*Location, error) {
	var loc Location
	err := s.db.QueryRow(ctx, query, args...).Scan(
		&loc.ID, &loc.Name, &loc.Description, &loc.Price,
		&loc.Latitude, &loc.Longitude,
		&loc.Status, &loc.Verified, &loc.ReportCount,
		&loc.CreatedAt, &loc.UpdatedAt,
		&loc.CreatedBy.ID, &loc.CreatedBy.Name, &loc.CreatedBy.Email,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError("Location not found", nil)
		}
		return nil, apperror.NewDatabaseError("Failed to fetch location", err)
	}
	return &loc, nil
}

func scanLocations(rows pgx.Rows) ([]Location, error) {
	result := make([]Location, 0)
	for rows.Next() {
		var loc Location
		err := rows.Scan(
			&loc.ID, &loc.Name, &loc.Description, &loc.Price,
			&loc.Latitude, &loc.Longitude,
			&loc.Status, &loc.Verified, &loc.ReportCount,
			&loc.CreatedAt, &loc.UpdatedAt,
			&loc.CreatedBy.ID, &loc.CreatedBy.Name, &loc.CreatedBy.Email,
		)
		if err != nil {
			return nil, apperror.NewDatabaseError("Failed to read location row", err)
		}
		result = append(result, loc)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDatabaseError("Failed to read location rows", err)
	}
	return result, nil
}
