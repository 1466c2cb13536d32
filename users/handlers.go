package users

import (
	"encoding/json"
	"net/http"

	"github.com/user/campwood-go/apperror"
	"github.com/user/campwood-go/auth"
	"github.com/user/campwood-go/broadcast"
	"github.com/user/campwood-go/validation"
)

// Handlers exposes account management over HTTP.
type Handlers struct {
	service *Service
	events  *broadcast.Broadcaster
}

// NewHandlers creates users Handlers. Deleting an account publishes
// deleted events for the cascaded listings.
func NewHandlers(service *Service, events *broadcast.Broadcaster) *Handlers {
	return &Handlers{service: service, events: events}
}

// HandleUpdateProfile handles PUT /api/user/profile.
func (h *Handlers) HandleUpdateProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			auth.WriteError(w, r, apperror.NewAuthError("Access token required", nil))
			return
		}

		var req UpdateProfileRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("Invalid request body", err))
			return
		}
		defer r.Body.Close()

		if err := validation.Struct(req); err != nil {
			auth.WriteError(w, r, err)
			return
		}

		user, err := h.service.UpdateProfile(r.Context(), userID, &req)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		auth.WriteJSON(w, http.StatusOK, ProfileResponse{
			Success: true,
			Message: "Profile updated successfully",
			User:    user,
		})
	}
}

// HandleDeleteAccount handles DELETE /api/user/account.
func (h *Handlers) HandleDeleteAccount() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			auth.WriteError(w, r, apperror.NewAuthError("Access token required", nil))
			return
		}

		deletedListings, err := h.service.DeleteAccount(r.Context(), userID)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		for _, id := range deletedListings {
			h.events.Publish(broadcast.Event{Type: broadcast.EventDeleted, ID: id})
		}

		auth.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"message": "Account and all associated data deleted successfully",
		})
	}
}

// HandleStats handles GET /api/user/stats.
func (h *Handlers) HandleStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			auth.WriteError(w, r, apperror.NewAuthError("Access token required", nil))
			return
		}

		stats, err := h.service.GetStats(r.Context(), userID)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		auth.WriteJSON(w, http.StatusOK, StatsResponse{Success: true, Stats: stats})
	}
}
