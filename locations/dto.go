// Request and response payloads for the listings endpoints.
package locations

// CreateLocationRequest is the payload for POST /api/locations. Latitude
// and longitude are pointers so a missing field is distinguishable from a
// valid zero coordinate.
type CreateLocationRequest struct {
	Name        string   `json:"name" validate:"required,min=1,max=100"`
	Description *string  `json:"description" validate:"omitempty,max=500"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
	Latitude    *float64 `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude   *float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
}

// UpdateLocationRequest is the payload for PUT /api/locations/{id}. Only
// fields present in the body are applied.
type UpdateLocationRequest struct {
	Name        *string  `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string  `json:"description" validate:"omitempty,max=500"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
	Latitude    *float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude   *float64 `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
}

// ListParams are the parsed query parameters of GET /api/locations.
// Lat and Lng are both required to activate the radius filter.
type ListParams struct {
	Lat      *float64
	Lng      *float64
	RadiusKm float64
	Limit    int
}

// ListResponse is the envelope for listing collections.
type ListResponse struct {
	Success   bool       `json:"success"`
	Locations []Location `json:"locations"`
	Count     int        `json:"count"`
}

// LocationResponse is the envelope for a single listing.
type LocationResponse struct {
	Success  bool      `json:"success"`
	Message  string    `json:"message,omitempty"`
	Location *Location `json:"location"`
}
