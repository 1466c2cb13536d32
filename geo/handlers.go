package geo

import (
	"net/http"
	"strconv"

	"github.com/user/campwood-go/apperror"
	"github.com/user/campwood-go/auth"
)

// Handlers exposes the geocoding proxy over HTTP.
type Handlers struct {
	client *Client
}

// NewHandlers creates geo Handlers.
func NewHandlers(client *Client) *Handlers {
	return &Handlers{client: client}
}

// geoResponse wraps a lookup result in the standard envelope.
type geoResponse struct {
	Success bool        `json:"success"`
	Result  interface{} `json:"result"`
}

// HandleGeocode handles GET /api/geo/geocode?q=.
func (h *Handlers) HandleGeocode() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query().Get("q")
		if query == "" {
			auth.WriteError(w, r, apperror.NewBadRequestError("Missing q parameter", nil))
			return
		}

		result, err := h.client.Geocode(r.Context(), query)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		auth.WriteJSON(w, http.StatusOK, geoResponse{Success: true, Result: result})
	}
}

// HandleReverse handles GET /api/geo/reverse?lat=&lon=.
func (h *Handlers) HandleReverse() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lat, err1 := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
		lon, err2 := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
		if err1 != nil || err2 != nil || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
			auth.WriteError(w, r, apperror.NewBadRequestError("lat/lon required", nil))
			return
		}

		result, err := h.client.Reverse(r.Context(), lat, lon)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		auth.WriteJSON(w, http.StatusOK, geoResponse{Success: true, Result: result})
	}
}

// HandleLocate handles GET /api/geo/me.
func (h *Handlers) HandleLocate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := h.client.Locate(r.Context())
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		auth.WriteJSON(w, http.StatusOK, geoResponse{Success: true, Result: result})
	}
}
