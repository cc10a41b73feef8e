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

// TaskStore defines the persistence contract for the task handler. Every
// method is scoped to the owning user.
type TaskStore interface {
	Create(ctx context.Context, t *types.Task) error
	GetByID(ctx context.Context, id, userID string) (*types.Task, error)
	Update(ctx context.Context, t *types.Task) error
	Delete(ctx context.Context, id, userID string) error
	ListByUser(ctx context.Context, userID string) ([]*types.Task, error)
}

// TaskHandler serves per-user farm tasks. All routes require authentication
// and operate only on the signed-in user's own tasks.
type TaskHandler struct {
	tasks     TaskStore
	validator *core.Validator
	logger    *slog.Logger
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(tasks TaskStore, val *core.Validator, logger *slog.Logger) *TaskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskHandler{tasks: tasks, validator: val, logger: logger}
}

// RegisterRoutes mounts the task endpoints onto the mux.
func (h *TaskHandler) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(core.RequireAuth)
		r.Get("/tasks", h.HandleList)
		r.Post("/tasks", h.HandleCreate)
		r.Get("/tasks/{id}", h.HandleGet)
		r.Put("/tasks/{id}", h.HandleUpdate)
		r.Delete("/tasks/{id}", h.HandleDelete)
	})
}

// taskRequest is the payload for task create and update.
type taskRequest struct {
	Title     string    `json:"title" validate:"required,max=300"`
	Notes     string    `json:"notes,omitempty"`
	DueDate   time.Time `json:"due_date" validate:"required"`
	Completed bool      `json:"completed,omitempty"`
}

// HandleList handles GET /v1/tasks.
func (h *TaskHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	actor, _ := types.GetActor(r.Context())

	tasks, err := h.tasks.ListByUser(r.Context(), actor.ID)
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: tasks})
}

// HandleCreate handles POST /v1/tasks.
func (h *TaskHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	actor, _ := types.GetActor(r.Context())

	var req taskRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	now := time.Now().UTC()
	task := &types.Task{
		ID:        uuid.NewString(),
		UserID:    actor.ID,
		Title:     req.Title,
		Notes:     req.Notes,
		DueDate:   req.DueDate,
		Completed: req.Completed,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.tasks.Create(r.Context(), task); err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusCreated, core.APIResponse{Data: task})
}

// HandleGet handles GET /v1/tasks/{id}.
func (h *TaskHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	actor, _ := types.GetActor(r.Context())

	task, err := h.tasks.GetByID(r.Context(), chi.URLParam(r, "id"), actor.ID)
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: task})
}

// HandleUpdate handles PUT /v1/tasks/{id}.
func (h *TaskHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	actor, _ := types.GetActor(r.Context())
	id := chi.URLParam(r, "id")

	var req taskRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	task, err := h.tasks.GetByID(r.Context(), id, actor.ID)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	task.Title = req.Title
	task.Notes = req.Notes
	task.DueDate = req.DueDate
	task.Completed = req.Completed
	task.UpdatedAt = time.Now().UTC()

	if err := h.tasks.Update(r.Context(), task); err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: task})
}

// HandleDelete handles DELETE /v1/tasks/{id}.
func (h *TaskHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	actor, _ := types.GetActor(r.Context())

	if err := h.tasks.Delete(r.Context(), chi.URLParam(r, "id"), actor.ID); err != nil {
		core.Error(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
