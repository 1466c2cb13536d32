package auth

import "time"

// Roles a user account can hold. Admins may mutate any listing.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a registered account. HashedPassword is never serialized.
type User struct {
	ID             int       `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"`
	Role           string    `json:"role"`
	CreatedAt      time.Time `json:"created_at"`
}
