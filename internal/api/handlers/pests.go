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

// PestStore defines the persistence contract for the pest catalog handler.
type PestStore interface {
	Create(ctx context.Context, p *types.Pest) error
	GetByID(ctx context.Context, id string) (*types.Pest, error)
	Update(ctx context.Context, p *types.Pest) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter types.ListFilter) ([]*types.Pest, types.PageInfo, error)
}

// PestHandler serves the pest catalog. Reads are public; writes are
// admin-only.
type PestHandler struct {
	pests     PestStore
	validator *core.Validator
	logger    *slog.Logger
}

// NewPestHandler creates a new PestHandler.
func NewPestHandler(pests PestStore, val *core.Validator, logger *slog.Logger) *PestHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PestHandler{pests: pests, validator: val, logger: logger}
}

// RegisterRoutes mounts the pest endpoints onto the mux.
func (h *PestHandler) RegisterRoutes(r chi.Router) {
	r.Get("/pests", h.HandleList)
	r.Get("/pests/{id}", h.HandleGet)

	r.Group(func(r chi.Router) {
		r.Use(core.RequireAdmin)
		r.Post("/pests", h.HandleCreate)
		r.Put("/pests/{id}", h.HandleUpdate)
		r.Delete("/pests/{id}", h.HandleDelete)
	})
}

// pestRequest is the payload for pest create and update.
type pestRequest struct {
	Name          string   `json:"name" validate:"required,max=200"`
	ImageURL      string   `json:"image_url,omitempty" validate:"omitempty,url"`
	AffectedCrops []string `json:"affected_crops" validate:"required,min=1"`
	Symptoms      []string `json:"symptoms" validate:"required,min=1"`
	Treatments    []string `json:"treatments" validate:"required,min=1"`
	Prevention    []string `json:"prevention,omitempty"`
}

// HandleList handles GET /v1/pests. Search matches pest names and affected
// crops.
func (h *PestHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	pests, page, err := h.pests.List(r.Context(), listFilterFromQuery(r))
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: pests, Meta: &page})
}

// HandleGet handles GET /v1/pests/{id}.
func (h *PestHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	pest, err := h.pests.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: pest})
}

// HandleCreate handles POST /v1/pests.
func (h *PestHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req pestRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	now := time.Now().UTC()
	pest := &types.Pest{
		ID:            uuid.NewString(),
		Name:          req.Name,
		ImageURL:      req.ImageURL,
		AffectedCrops: req.AffectedCrops,
		Symptoms:      req.Symptoms,
		Treatments:    req.Treatments,
		Prevention:    req.Prevention,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := h.pests.Create(r.Context(), pest); err != nil {
		core.Error(w, r, err)
		return
	}

	h.logger.Info("pest created", "pest_id", pest.ID, "name", pest.Name)
	core.JSON(w, r, http.StatusCreated, core.APIResponse{Data: pest})
}

// HandleUpdate handles PUT /v1/pests/{id}. Full replacement of the entry.
func (h *PestHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req pestRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	pest, err := h.pests.GetByID(r.Context(), id)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	pest.Name = req.Name
	pest.ImageURL = req.ImageURL
	pest.AffectedCrops = req.AffectedCrops
	pest.Symptoms = req.Symptoms
	pest.Treatments = req.Treatments
	pest.Prevention = req.Prevention
	pest.UpdatedAt = time.Now().UTC()

	if err := h.pests.Update(r.Context(), pest); err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: pest})
}

// HandleDelete handles DELETE /v1/pests/{id}.
func (h *PestHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.pests.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		core.Error(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
