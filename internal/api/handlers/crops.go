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

// CropStore defines the persistence contract for the crop catalog handler.
type CropStore interface {
	Create(ctx context.Context, c *types.Crop) error
	GetByID(ctx context.Context, id string) (*types.Crop, error)
	Update(ctx context.Context, c *types.Crop) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter types.ListFilter) ([]*types.Crop, types.PageInfo, error)
}

// CropHandler serves the crop catalog. Reads are public; writes are
// admin-only.
type CropHandler struct {
	crops     CropStore
	validator *core.Validator
	logger    *slog.Logger
}

// NewCropHandler creates a new CropHandler.
func NewCropHandler(crops CropStore, val *core.Validator, logger *slog.Logger) *CropHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CropHandler{crops: crops, validator: val, logger: logger}
}

// RegisterRoutes mounts the crop endpoints onto the mux.
func (h *CropHandler) RegisterRoutes(r chi.Router) {
	r.Get("/crops", h.HandleList)
	r.Get("/crops/{id}", h.HandleGet)

	r.Group(func(r chi.Router) {
		r.Use(core.RequireAdmin)
		r.Post("/crops", h.HandleCreate)
		r.Put("/crops/{id}", h.HandleUpdate)
		r.Delete("/crops/{id}", h.HandleDelete)
	})
}

// cropRequest is the payload for crop create and update.
type cropRequest struct {
	Name           string          `json:"name" validate:"required,max=200"`
	Category       string          `json:"category" validate:"required,max=100"`
	Description    string          `json:"description,omitempty"`
	ImageURL       string          `json:"image_url,omitempty" validate:"omitempty,url"`
	PlantingSeason string          `json:"planting_season,omitempty" validate:"omitempty,max=100"`
	HarvestTime    string          `json:"harvest_time,omitempty" validate:"omitempty,max=100"`
	GrowingDays    int             `json:"growing_days" validate:"required,gt=0"`
	Guide          types.CropGuide `json:"guide"`
}

// HandleList handles GET /v1/crops. Supports search over name and category.
func (h *CropHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	crops, page, err := h.crops.List(r.Context(), listFilterFromQuery(r))
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: crops, Meta: &page})
}

// HandleGet handles GET /v1/crops/{id}.
func (h *CropHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	crop, err := h.crops.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: crop})
}

// HandleCreate handles POST /v1/crops.
func (h *CropHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req cropRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	now := time.Now().UTC()
	crop := &types.Crop{
		ID:             uuid.NewString(),
		Name:           req.Name,
		Category:       req.Category,
		Description:    req.Description,
		ImageURL:       req.ImageURL,
		PlantingSeason: req.PlantingSeason,
		HarvestTime:    req.HarvestTime,
		GrowingDays:    req.GrowingDays,
		Guide:          req.Guide,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := h.crops.Create(r.Context(), crop); err != nil {
		core.Error(w, r, err)
		return
	}

	h.logger.Info("crop created", "crop_id", crop.ID, "name", crop.Name)
	core.JSON(w, r, http.StatusCreated, core.APIResponse{Data: crop})
}

// HandleUpdate handles PUT /v1/crops/{id}. Full replacement of the entry.
func (h *CropHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req cropRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	crop, err := h.crops.GetByID(r.Context(), id)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	crop.Name = req.Name
	crop.Category = req.Category
	crop.Description = req.Description
	crop.ImageURL = req.ImageURL
	crop.PlantingSeason = req.PlantingSeason
	crop.HarvestTime = req.HarvestTime
	crop.GrowingDays = req.GrowingDays
	crop.Guide = req.Guide
	crop.UpdatedAt = time.Now().UTC()

	if err := h.crops.Update(r.Context(), crop); err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: crop})
}

// HandleDelete handles DELETE /v1/crops/{id}.
func (h *CropHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.crops.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		core.Error(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
