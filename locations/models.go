package locations

import "time"

// Listing statuses. Only active listings are publicly visible; the
// moderation sweep demotes heavily reported listings to pending.
const (
	StatusActive   = "active"
	StatusPending  = "pending"
	StatusRejected = "rejected"
)

// Owner is the public view of the user who created a listing. The id is a
// plain integer everywhere; there is no string/object ambiguity.
type Owner struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// Location is a geotagged firewood listing.
type Location struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Price       *float64  `json:"price,omitempty"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	CreatedBy   Owner     `json:"createdBy"`
	Status      string    `json:"status"`
	Verified    bool      `json:"verified"`
	ReportCount int       `json:"reportCount"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
