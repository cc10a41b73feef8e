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

// NewsStore defines the persistence contract for the news handler.
type NewsStore interface {
	Create(ctx context.Context, a *types.NewsArticle) error
	GetByID(ctx context.Context, id string) (*types.NewsArticle, error)
	Update(ctx context.Context, a *types.NewsArticle) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter types.ListFilter) ([]*types.NewsArticle, types.PageInfo, error)
}

// NewsHandler serves agricultural news articles. Reads are public; writes
// are admin-only.
type NewsHandler struct {
	news      NewsStore
	validator *core.Validator
	logger    *slog.Logger
}

// NewNewsHandler creates a new NewsHandler.
func NewNewsHandler(news NewsStore, val *core.Validator, logger *slog.Logger) *NewsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &NewsHandler{news: news, validator: val, logger: logger}
}

// RegisterRoutes mounts the news endpoints onto the mux.
func (h *NewsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/news", h.HandleList)
	r.Get("/news/{id}", h.HandleGet)

	r.Group(func(r chi.Router) {
		r.Use(core.RequireAdmin)
		r.Post("/news", h.HandleCreate)
		r.Put("/news/{id}", h.HandleUpdate)
		r.Delete("/news/{id}", h.HandleDelete)
	})
}

// newsRequest is the payload for article create and update. A zero
// published_at defaults to the time of the write.
type newsRequest struct {
	Title       string    `json:"title" validate:"required,max=300"`
	Author      string    `json:"author,omitempty" validate:"omitempty,max=200"`
	Summary     string    `json:"summary,omitempty"`
	Content     string    `json:"content" validate:"required"`
	ImageURL    string    `json:"image_url,omitempty" validate:"omitempty,url"`
	PublishedAt time.Time `json:"published_at,omitempty"`
}

// HandleList handles GET /v1/news, newest articles first.
func (h *NewsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	articles, page, err := h.news.List(r.Context(), listFilterFromQuery(r))
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: articles, Meta: &page})
}

// HandleGet handles GET /v1/news/{id}.
func (h *NewsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	article, err := h.news.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: article})
}

// HandleCreate handles POST /v1/news.
func (h *NewsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req newsRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	now := time.Now().UTC()
	publishedAt := req.PublishedAt
	if publishedAt.IsZero() {
		publishedAt = now
	}

	article := &types.NewsArticle{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Author:      req.Author,
		Summary:     req.Summary,
		Content:     req.Content,
		ImageURL:    req.ImageURL,
		PublishedAt: publishedAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := h.news.Create(r.Context(), article); err != nil {
		core.Error(w, r, err)
		return
	}

	h.logger.Info("news article created", "article_id", article.ID)
	core.JSON(w, r, http.StatusCreated, core.APIResponse{Data: article})
}

// HandleUpdate handles PUT /v1/news/{id}.
func (h *NewsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req newsRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	article, err := h.news.GetByID(r.Context(), id)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	article.Title = req.Title
	article.Author = req.Author
	article.Summary = req.Summary
	article.Content = req.Content
	article.ImageURL = req.ImageURL
	if !req.PublishedAt.IsZero() {
		article.PublishedAt = req.PublishedAt
	}
	article.UpdatedAt = time.Now().UTC()

	if err := h.news.Update(r.Context(), article); err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: article})
}

// HandleDelete handles DELETE /v1/news/{id}.
func (h *NewsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.news.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		core.Error(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
