package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"agriklima/internal/core"
	"agriklima/internal/types"
)

// UserAdminStore defines the persistence contract for the user admin
// handler.
type UserAdminStore interface {
	List(ctx context.Context, filter types.ListFilter) ([]*types.User, types.PageInfo, error)
	GetByID(ctx context.Context, id string) (*types.User, error)
	SetAdmin(ctx context.Context, id string, isAdmin bool) error
	Delete(ctx context.Context, id string) error
}

// UserAdminHandler serves the administrator-only user management endpoints.
type UserAdminHandler struct {
	users  UserAdminStore
	logger *slog.Logger
}

// NewUserAdminHandler creates a new UserAdminHandler.
func NewUserAdminHandler(users UserAdminStore, logger *slog.Logger) *UserAdminHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserAdminHandler{users: users, logger: logger}
}

// RegisterRoutes mounts the admin user endpoints onto the mux.
func (h *UserAdminHandler) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(core.RequireAdmin)
		r.Get("/users", h.HandleList)
		r.Get("/users/{id}", h.HandleGet)
		r.Put("/users/{id}/admin", h.HandleSetAdmin)
		r.Delete("/users/{id}", h.HandleDelete)
	})
}

// HandleList handles GET /v1/users.
func (h *UserAdminHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	users, page, err := h.users.List(r.Context(), listFilterFromQuery(r))
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: users, Meta: &page})
}

// HandleGet handles GET /v1/users/{id}.
func (h *UserAdminHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: user})
}

// setAdminRequest is the payload for PUT /v1/users/{id}/admin.
type setAdminRequest struct {
	IsAdmin *bool `json:"is_admin" validate:"required"`
}

// HandleSetAdmin handles PUT /v1/users/{id}/admin. An administrator cannot
// revoke their own admin flag; that prevents a system with zero admins.
func (h *UserAdminHandler) HandleSetAdmin(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req setAdminRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if req.IsAdmin == nil {
		core.Error(w, r, types.NewAppError(
			types.ErrCodeValidationMissingField,
			"is_admin is required",
			nil,
		))
		return
	}

	actor, _ := types.GetActor(r.Context())
	if actor.ID == id && !*req.IsAdmin {
		core.Error(w, r, types.NewAppError(
			types.ErrCodePermissionAdminOnly,
			"administrators cannot revoke their own admin access",
			nil,
		))
		return
	}

	if err := h.users.SetAdmin(r.Context(), id, *req.IsAdmin); err != nil {
		core.Error(w, r, err)
		return
	}

	h.logger.Info("admin flag changed", "user_id", id, "is_admin", *req.IsAdmin, "actor_id", actor.ID)
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: map[string]any{
		"id":       id,
		"is_admin": *req.IsAdmin,
	}})
}

// HandleDelete handles DELETE /v1/users/{id}.
func (h *UserAdminHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	actor, _ := types.GetActor(r.Context())
	if actor.ID == id {
		core.Error(w, r, types.NewAppError(
			types.ErrCodePermissionAdminOnly,
			"administrators cannot delete their own account",
			nil,
		))
		return
	}

	if err := h.users.Delete(r.Context(), id); err != nil {
		core.Error(w, r, err)
		return
	}

	h.logger.Info("user deleted", "user_id", id, "actor_id", actor.ID)
	w.WriteHeader(http.StatusNoContent)
}

// listFilterFromQuery parses the shared offset/limit/search query params.
// Malformed numbers fall back to defaults rather than erroring.
func listFilterFromQuery(r *http.Request) types.ListFilter {
	q := r.URL.Query()
	var f types.ListFilter
	if v, err := strconv.Atoi(q.Get("offset")); err == nil {
		f.Offset = v
	}
	if v, err := strconv.Atoi(q.Get("limit")); err == nil {
		f.Limit = v
	}
	f.Search = q.Get("search")
	f.Normalize()
	return f
}
