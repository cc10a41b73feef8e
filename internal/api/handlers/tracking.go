package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"agriklima/internal/core"
	"agriklima/internal/types"
)

// TrackingStore defines the persistence contract for the crop tracking
// handler. Every method is scoped to the owning user.
type TrackingStore interface {
	Create(ctx context.Context, ct *types.CropTracking) error
	GetByID(ctx context.Context, id, userID string) (*types.CropTracking, error)
	Delete(ctx context.Context, id, userID string) error
	ListByUser(ctx context.Context, userID string) ([]*types.CropTracking, error)
}

// CropCatalog resolves crop entries when starting a tracking record.
type CropCatalog interface {
	GetByID(ctx context.Context, id string) (*types.Crop, error)
}

// TrackingHandler serves per-user crop tracking records. Progress is
// computed at read time from the planting date and the crop's growing
// duration, never stored.
type TrackingHandler struct {
	tracking  TrackingStore
	crops     CropCatalog
	validator *core.Validator
	clock     func() time.Time
	logger    *slog.Logger
}

// NewTrackingHandler creates a new TrackingHandler. A nil clock defaults to
// time.Now.
func NewTrackingHandler(
	tracking TrackingStore,
	crops CropCatalog,
	val *core.Validator,
	clock func() time.Time,
	logger *slog.Logger,
) *TrackingHandler {
	if clock == nil {
		clock = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TrackingHandler{
		tracking:  tracking,
		crops:     crops,
		validator: val,
		clock:     clock,
		logger:    logger,
	}
}

// RegisterRoutes mounts the crop tracking endpoints onto the mux.
func (h *TrackingHandler) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(core.RequireAuth)
		r.Get("/tracking", h.HandleList)
		r.Post("/tracking", h.HandleCreate)
		r.Get("/tracking/{id}", h.HandleGet)
		r.Delete("/tracking/{id}", h.HandleDelete)
	})
}

// trackingRequest is the payload for POST /v1/tracking. A zero planted_at
// defaults to now; the expected harvest date derives from the crop's
// growing duration.
type trackingRequest struct {
	CropID    string    `json:"crop_id" validate:"required,uuid4"`
	PlantedAt time.Time `json:"planted_at,omitempty"`
}

// HandleList handles GET /v1/tracking.
func (h *TrackingHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	actor, _ := types.GetActor(r.Context())

	items, err := h.tracking.ListByUser(r.Context(), actor.ID)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	now := h.clock().UTC()
	for _, item := range items {
		item.Progress = item.ProgressAt(now)
	}
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: items})
}

// HandleCreate handles POST /v1/tracking.
func (h *TrackingHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	actor, _ := types.GetActor(r.Context())

	var req trackingRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	crop, err := h.crops.GetByID(r.Context(), req.CropID)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	now := h.clock().UTC()
	plantedAt := req.PlantedAt
	if plantedAt.IsZero() {
		plantedAt = now
	}

	record := &types.CropTracking{
		ID:              uuid.NewString(),
		UserID:          actor.ID,
		CropID:          crop.ID,
		CropName:        crop.Name,
		PlantedAt:       plantedAt,
		ExpectedHarvest: plantedAt.AddDate(0, 0, crop.GrowingDays),
		CreatedAt:       now,
	}
	if err := h.tracking.Create(r.Context(), record); err != nil {
		core.Error(w, r, err)
		return
	}

	record.Progress = record.ProgressAt(now)
	h.logger.Info("crop tracking started", "tracking_id", record.ID, "crop_id", crop.ID)
	core.JSON(w, r, http.StatusCreated, core.APIResponse{Data: record})
}

// HandleGet handles GET /v1/tracking/{id}.
func (h *TrackingHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	actor, _ := types.GetActor(r.Context())

	record, err := h.tracking.GetByID(r.Context(), chi.URLParam(r, "id"), actor.ID)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	record.Progress = record.ProgressAt(h.clock().UTC())
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: record})
}

// HandleDelete handles DELETE /v1/tracking/{id}.
func (h *TrackingHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	actor, _ := types.GetActor(r.Context())

	if err := h.tracking.Delete(r.Context(), chi.URLParam(r, "id"), actor.ID); err != nil {
		core.Error(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
