package locations

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/user/campwood-go/apperror"
	"github.com/user/campwood-go/auth"
	"github.com/user/campwood-go/broadcast"
	"github.com/user/campwood-go/validation"
)

// Handlers exposes the listings service over HTTP. Mutations publish
// change events to the broadcaster for connected SSE clients.
type Handlers struct {
	service *Service
	events  *broadcast.Broadcaster
}

// NewHandlers creates location Handlers.
func NewHandlers(service *Service, events *broadcast.Broadcaster) *Handlers {
	return &Handlers{service: service, events: events}
}

// HandleList handles GET /api/locations.
func (h *Handlers) HandleList() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := parseListParams(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		items, err := h.service.List(r.Context(), params)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		auth.WriteJSON(w, http.StatusOK, ListResponse{
			Success:   true,
			Locations: items,
			Count:     len(items),
		})
	}
}

// HandleGet handles GET /api/locations/{id}.
func (h *Handlers) HandleGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		loc, err := h.service.Get(r.Context(), id)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		auth.WriteJSON(w, http.StatusOK, LocationResponse{Success: true, Location: loc})
	}
}

// HandleCreate handles POST /api/locations.
func (h *Handlers) HandleCreate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			auth.WriteError(w, r, apperror.NewAuthError("Access token required", nil))
			return
		}

		var req CreateLocationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("Invalid request body", err))
			return
		}
		defer r.Body.Close()

		if err := validation.Struct(req); err != nil {
			auth.WriteError(w, r, err)
			return
		}

		loc, err := h.service.Create(r.Context(), userID, &req)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		h.events.Publish(broadcast.Event{Type: broadcast.EventCreated, ID: loc.ID, Payload: loc})

		auth.WriteJSON(w, http.StatusCreated, LocationResponse{
			Success:  true,
			Message:  "Location created successfully",
			Location: loc,
		})
	}
}

// HandleUpdate handles PUT /api/locations/{id}.
func (h *Handlers) HandleUpdate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := auth.ClaimsFromContext(r.Context())
		if !ok {
			auth.WriteError(w, r, apperror.NewAuthError("Access token required", nil))
			return
		}

		id, err := pathID(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		var req UpdateLocationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("Invalid request body", err))
			return
		}
		defer r.Body.Close()

		if err := validation.Struct(req); err != nil {
			auth.WriteError(w, r, err)
			return
		}

		loc, err := h.service.Update(r.Context(), claims, id, &req)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		h.events.Publish(broadcast.Event{Type: broadcast.EventUpdated, ID: loc.ID, Payload: loc})

		auth.WriteJSON(w, http.StatusOK, LocationResponse{
			Success:  true,
			Message:  "Location updated successfully",
			Location: loc,
		})
	}
}

// HandleDelete handles DELETE /api/locations/{id}.
func (h *Handlers) HandleDelete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := auth.ClaimsFromContext(r.Context())
		if !ok {
			auth.WriteError(w, r, apperror.NewAuthError("Access token required", nil))
			return
		}

		id, err := pathID(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		if err := h.service.Delete(r.Context(), claims, id); err != nil {
			auth.WriteError(w, r, err)
			return
		}

		h.events.Publish(broadcast.Event{Type: broadcast.EventDeleted, ID: id})

		auth.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"message": "Location deleted successfully",
		})
	}
}

// HandleMine handles GET /api/locations/user/mine.
func (h *Handlers) HandleMine() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			auth.WriteError(w, r, apperror.NewAuthError("Access token required", nil))
			return
		}

		items, err := h.service.Mine(r.Context(), userID)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		auth.WriteJSON(w, http.StatusOK, ListResponse{
			Success:   true,
			Locations: items,
			Count:     len(items),
		})
	}
}

// HandleReport handles POST /api/locations/{id}/report.
func (h *Handlers) HandleReport() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		if err := h.service.Report(r.Context(), id); err != nil {
			auth.WriteError(w, r, err)
			return
		}

		auth.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"message": "Location reported",
		})
	}
}

// HandleEvents handles GET /api/locations/events, streaming listing change
// events as server-sent events until the client disconnects.
func (h *Handlers) HandleEvents() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			auth.WriteError(w, r, apperror.NewInternalError("Streaming not supported", nil))
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)

		clientID, events := h.events.Subscribe()
		defer h.events.Unsubscribe(clientID)

		// Initial comment so proxies and clients see the stream open.
		fmt.Fprint(w, ": connected\n\n")
		flusher.Flush()

		for {
			select {
			case <-r.Context().Done():
				return
			case event, open := <-events:
				if !open {
					return
				}
				fmt.Fprintf(w, "data: %s\n\n", event.Encode())
				flusher.Flush()
			}
		}
	}
}

func pathID(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, apperror.NewBadRequestError("Invalid location ID", err)
	}
	return id, nil
}

// parseListParams reads lat/lng/radius/limit query parameters. lat and lng
// must be a valid pair to activate the radius filter.
func parseListParams(r *http.Request) (ListParams, error) {
	q := r.URL.Query()
	params := ListParams{}

	latStr, lngStr := q.Get("lat"), q.Get("lng")
	if latStr != "" || lngStr != "" {
		lat, err := strconv.ParseFloat(latStr, 64)
		if err != nil || lat < -90 || lat > 90 {
			return params, apperror.NewValidationError("Invalid latitude", err)
		}
		lng, err := strconv.ParseFloat(lngStr, 64)
		if err != nil || lng < -180 || lng > 180 {
			return params, apperror.NewValidationError("Invalid longitude", err)
		}
		params.Lat, params.Lng = &lat, &lng
	}

	if radiusStr := q.Get("radius"); radiusStr != "" {
		radius, err := strconv.ParseFloat(radiusStr, 64)
		if err != nil || radius < minRadiusKm || radius > maxRadiusKm {
			return params, apperror.NewValidationError("Radius must be between 1 and 1000 km", err)
		}
		params.RadiusKm = radius
	}

	if limitStr := q.Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < minLimit || limit > maxLimit {
			return params, apperror.NewValidationError("Limit must be between 1 and 100", err)
		}
		params.Limit = limit
	}

	return params, nil
}
