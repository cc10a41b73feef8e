package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agriklima/internal/core"
	"agriklima/internal/farming"
	"agriklima/internal/types"
)

func ptr(v float64) *float64 { return &v }

// fakeRuleManager serves a fixed rule set and records calls.
type fakeRuleManager struct {
	active      *types.RuleSet
	replaced    *types.RuleSetUpdate
	replacedBy  string
	resetCalled bool
	err         error
}

func (f *fakeRuleManager) ActiveRuleSet(context.Context) (*types.RuleSet, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.active, nil
}

func (f *fakeRuleManager) ReplaceActiveRuleSet(_ context.Context, update *types.RuleSetUpdate, actorID string) (*types.RuleSet, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.replaced = update
	f.replacedBy = actorID
	return f.active, nil
}

func (f *fakeRuleManager) ResetToDefault(context.Context) (*types.RuleSet, error) {
	f.resetCalled = true
	return f.active, nil
}

// fakeWeatherReader serves canned snapshots by location.
type fakeWeatherReader struct {
	snaps map[string]*types.WeatherSnapshot
}

func (f *fakeWeatherReader) Snapshot(_ context.Context, location string) (*types.WeatherSnapshot, error) {
	snap, ok := f.snaps[strings.ToLower(location)]
	if !ok {
		return nil, types.NewAppError(types.ErrCodeNotFoundWeather, "no weather data for location", nil)
	}
	return snap, nil
}

func (f *fakeWeatherReader) Locations(context.Context) ([]string, error) {
	var locations []string
	for loc := range f.snaps {
		locations = append(locations, loc)
	}
	return locations, nil
}

func defaultActiveRuleSet() *types.RuleSet {
	rs := farming.DefaultRuleSet()
	rs.ID = "rs-1"
	rs.Active = true
	rs.LastUpdated = time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	return rs
}

func conditionsRouter(rules RuleManager, weather WeatherReader) *chi.Mux {
	h := NewConditionsHandler(rules, weather, slog.New(slog.NewTextHandler(io.Discard, nil)))
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

func asAdmin(r *http.Request) *http.Request {
	return r.WithContext(types.WithActor(r.Context(), types.Actor{ID: "admin-1", IsAdmin: true}))
}

func TestHandleAssess(t *testing.T) {
	weather := &fakeWeatherReader{snaps: map[string]*types.WeatherSnapshot{
		"capas": {
			Location:    "capas",
			Temperature: ptr(28),
			Humidity:    ptr(70),
			WindSpeed:   ptr(10),
			Details:     types.WeatherDetails{Precipitation: ptr(5)},
			FetchedAt:   time.Date(2026, 8, 28, 6, 0, 0, 0, time.UTC),
		},
	}}
	router := conditionsRouter(&fakeRuleManager{active: defaultActiveRuleSet()}, weather)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/conditions/capas", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data struct {
			Location   string                     `json:"location"`
			Assessment *types.ConditionAssessment `json:"assessment"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "capas", body.Data.Location)
	require.NotNil(t, body.Data.Assessment)
	assert.Equal(t, 100, body.Data.Assessment.Score)
	assert.Equal(t, types.StatusExcellent, body.Data.Assessment.Status)
}

func TestHandleAssess_UnknownLocation(t *testing.T) {
	router := conditionsRouter(
		&fakeRuleManager{active: defaultActiveRuleSet()},
		&fakeWeatherReader{snaps: map[string]*types.WeatherSnapshot{}},
	)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/conditions/atlantis", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleAssess_IncompleteSnapshot(t *testing.T) {
	// A snapshot with missing humidity cannot be scored; 0 must not be
	// substituted.
	weather := &fakeWeatherReader{snaps: map[string]*types.WeatherSnapshot{
		"concepcion": {
			Location:    "concepcion",
			Temperature: ptr(28),
			WindSpeed:   ptr(10),
			Details:     types.WeatherDetails{Precipitation: ptr(5)},
		},
	}}
	router := conditionsRouter(&fakeRuleManager{active: defaultActiveRuleSet()}, weather)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/conditions/concepcion", nil))

	require.Equal(t, http.StatusBadRequest, w.Code)

	var body core.APIErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, string(types.ErrCodeValidationMissingWeather), body.Error.Code)
}

func TestHandleGetRules_Public(t *testing.T) {
	router := conditionsRouter(&fakeRuleManager{active: defaultActiveRuleSet()}, &fakeWeatherReader{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/conditions/rules", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data types.RuleSet `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "rs-1", body.Data.ID)
	assert.True(t, body.Data.Active)
}

func TestHandleReplaceRules(t *testing.T) {
	t.Run("admin can replace", func(t *testing.T) {
		manager := &fakeRuleManager{active: defaultActiveRuleSet()}
		router := conditionsRouter(manager, &fakeWeatherReader{})

		payload := `{"wind_rules":{"moderate":{"threshold":15,"score_deduction":5},"high":{"threshold":25,"score_deduction":15}}}`
		req := asAdmin(httptest.NewRequest(http.MethodPut, "/conditions/rules", strings.NewReader(payload)))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, manager.replaced)
		require.NotNil(t, manager.replaced.Wind)
		assert.Equal(t, 15.0, manager.replaced.Wind.Moderate.Threshold)
		assert.Nil(t, manager.replaced.Temperature)
		assert.Equal(t, "admin-1", manager.replacedBy)
	})

	t.Run("anonymous rejected", func(t *testing.T) {
		manager := &fakeRuleManager{active: defaultActiveRuleSet()}
		router := conditionsRouter(manager, &fakeWeatherReader{})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/conditions/rules", strings.NewReader(`{}`)))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Nil(t, manager.replaced)
	})

	t.Run("non-admin forbidden", func(t *testing.T) {
		manager := &fakeRuleManager{active: defaultActiveRuleSet()}
		router := conditionsRouter(manager, &fakeWeatherReader{})

		req := httptest.NewRequest(http.MethodPut, "/conditions/rules", strings.NewReader(`{}`))
		req = req.WithContext(types.WithActor(req.Context(), types.Actor{ID: "u-1"}))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("unknown field rejected", func(t *testing.T) {
		router := conditionsRouter(&fakeRuleManager{active: defaultActiveRuleSet()}, &fakeWeatherReader{})

		req := asAdmin(httptest.NewRequest(http.MethodPut, "/conditions/rules", strings.NewReader(`{"nope":1}`)))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandleResetRules(t *testing.T) {
	manager := &fakeRuleManager{active: defaultActiveRuleSet()}
	router := conditionsRouter(manager, &fakeWeatherReader{})

	req := asAdmin(httptest.NewRequest(http.MethodPost, "/conditions/rules/reset", nil))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, manager.resetCalled)
}
