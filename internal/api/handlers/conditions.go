package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"agriklima/internal/core"
	"agriklima/internal/farming"
	"agriklima/internal/types"
)

// RuleManager defines the rule store contract for the conditions handler.
// Implemented by farming.RuleStore.
type RuleManager interface {
	ActiveRuleSet(ctx context.Context) (*types.RuleSet, error)
	ReplaceActiveRuleSet(ctx context.Context, update *types.RuleSetUpdate, actorID string) (*types.RuleSet, error)
	ResetToDefault(ctx context.Context) (*types.RuleSet, error)
}

// ConditionsHandler serves farming-condition assessments and the threshold
// rule management endpoints. Assessments and the active rule set are public;
// rule replacement and reset are admin-only.
type ConditionsHandler struct {
	rules   RuleManager
	weather WeatherReader
	logger  *slog.Logger
}

// NewConditionsHandler creates a new ConditionsHandler.
func NewConditionsHandler(rules RuleManager, weather WeatherReader, logger *slog.Logger) *ConditionsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConditionsHandler{rules: rules, weather: weather, logger: logger}
}

// RegisterRoutes mounts the conditions endpoints onto the mux. The static
// rules routes register before the location wildcard.
func (h *ConditionsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/conditions/rules", h.HandleGetRules)
	r.Get("/conditions/{location}", h.HandleAssess)

	r.Group(func(r chi.Router) {
		r.Use(core.RequireAdmin)
		r.Put("/conditions/rules", h.HandleReplaceRules)
		r.Post("/conditions/rules/reset", h.HandleResetRules)
	})
}

// HandleAssess handles GET /v1/conditions/{location}. It scores the stored
// snapshot for the location against the active rule set. The assessment is
// computed fresh on every request and never persisted.
func (h *ConditionsHandler) HandleAssess(w http.ResponseWriter, r *http.Request) {
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

	rules, err := h.rules.ActiveRuleSet(r.Context())
	if err != nil {
		core.Error(w, r, err)
		return
	}

	reading := &types.WeatherReading{
		Temperature:   snap.Temperature,
		Humidity:      snap.Humidity,
		WindSpeed:     snap.WindSpeed,
		Precipitation: snap.Details.Precipitation,
	}
	assessment, err := farming.Score(reading, rules)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: map[string]any{
		"location":   snap.Location,
		"fetched_at": snap.FetchedAt,
		"assessment": assessment,
	}})
}

// HandleGetRules handles GET /v1/conditions/rules. Returns the active rule
// set, materializing the default on first read.
func (h *ConditionsHandler) HandleGetRules(w http.ResponseWriter, r *http.Request) {
	rules, err := h.rules.ActiveRuleSet(r.Context())
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: rules})
}

// HandleReplaceRules handles PUT /v1/conditions/rules. Omitted dimensions
// inherit the previous active set's values.
func (h *ConditionsHandler) HandleReplaceRules(w http.ResponseWriter, r *http.Request) {
	var update types.RuleSetUpdate
	if err := core.DecodeJSON(w, r, &update); err != nil {
		core.Error(w, r, err)
		return
	}

	actor, _ := types.GetActor(r.Context())
	rules, err := h.rules.ReplaceActiveRuleSet(r.Context(), &update, actor.ID)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: rules})
}

// HandleResetRules handles POST /v1/conditions/rules/reset. Deletes all rule
// history and re-materializes the built-in default.
func (h *ConditionsHandler) HandleResetRules(w http.ResponseWriter, r *http.Request) {
	rules, err := h.rules.ResetToDefault(r.Context())
	if err != nil {
		core.Error(w, r, err)
		return
	}

	actor, _ := types.GetActor(r.Context())
	h.logger.Info("rule sets reset", "actor_id", actor.ID)
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: rules})
}
