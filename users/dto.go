// Request and response payloads for the user account endpoints.
package users

import "github.com/user/campwood-go/auth"

// UpdateProfileRequest is the payload for PUT /api/user/profile. Name and
// email are always required; the password fields are only used together
// when changing the password.
type UpdateProfileRequest struct {
	Name            string `json:"name" validate:"required,min=2,max=50"`
	Email           string `json:"email" validate:"required,email"`
	CurrentPassword string `json:"currentPassword" validate:"omitempty"`
	NewPassword     string `json:"newPassword" validate:"omitempty,min=6"`
}

// ProfileResponse is the envelope returned by PUT /api/user/profile.
type ProfileResponse struct {
	Success bool       `json:"success"`
	Message string     `json:"message,omitempty"`
	User    *auth.User `json:"user"`
}

// Stats summarizes the caller's listings by status.
type Stats struct {
	TotalLocations   int `json:"totalLocations"`
	ActiveLocations  int `json:"activeLocations"`
	PendingLocations int `json:"pendingLocations"`
}

// StatsResponse is the envelope returned by GET /api/user/stats.
type StatsResponse struct {
	Success bool   `json:"success"`
	Stats   *Stats `json:"stats"`
}
