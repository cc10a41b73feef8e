package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"agriklima/internal/core"
	"agriklima/internal/types"
)

// WeatherReader defines the service contract for the weather handler.
// Implemented by weather.Service.
type WeatherReader interface {
	Snapshot(ctx context.Context, location string) (*types.WeatherSnapshot, error)
	Locations(ctx context.Context) ([]string, error)
}

// WeatherHandler serves stored weather snapshots. All routes are public;
// snapshots contain no user data.
type WeatherHandler struct {
	weather WeatherReader
	logger  *slog.Logger
}

// NewWeatherHandler creates a new WeatherHandler.
func NewWeatherHandler(weather WeatherReader, logger *slog.Logger) *WeatherHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WeatherHandler{weather: weather, logger: logger}
}

// RegisterRoutes mounts the weather endpoints onto the mux. The locations
// route must register before the wildcard so "locations" is not treated as a
// location name.
func (h *WeatherHandler) RegisterRoutes(r chi.Router) {
	r.Get("/weather/locations", h.HandleListLocations)
	r.Get("/weather/{location}", h.HandleGet)
}

// HandleGet handles GET /v1/weather/{location}.
func (h *WeatherHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	location := chi.URLParam(r, "location")
	if location == "" {
		core.Error(w, r, types.NewAppError(
			types.ErrCodeValidationMissingField,
			"location is required",
			nil,
		))
		return
	}

	snap, err := h.weather.Snapshot(r.Context(), location)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: snap})
}

// HandleListLocations handles GET /v1/weather/locations.
func (h *WeatherHandler) HandleListLocations(w http.ResponseWriter, r *http.Request) {
	locations, err := h.weather.Locations(r.Context())
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: locations})
}
