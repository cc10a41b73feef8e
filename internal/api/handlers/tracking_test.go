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
	"agriklima/internal/types"
)

// fakeTrackingStore is an in-memory TrackingStore.
type fakeTrackingStore struct {
	records map[string]*types.CropTracking
}

func newFakeTrackingStore() *fakeTrackingStore {
	return &fakeTrackingStore{records: map[string]*types.CropTracking{}}
}

func (f *fakeTrackingStore) Create(_ context.Context, ct *types.CropTracking) error {
	cp := *ct
	f.records[ct.ID] = &cp
	return nil
}

func (f *fakeTrackingStore) GetByID(_ context.Context, id, userID string) (*types.CropTracking, error) {
	ct, ok := f.records[id]
	if !ok || ct.UserID != userID {
		return nil, types.NewAppError(types.ErrCodeNotFoundTracking, "crop tracking not found", nil)
	}
	cp := *ct
	return &cp, nil
}

func (f *fakeTrackingStore) Delete(_ context.Context, id, userID string) error {
	ct, ok := f.records[id]
	if !ok || ct.UserID != userID {
		return types.NewAppError(types.ErrCodeNotFoundTracking, "crop tracking not found", nil)
	}
	delete(f.records, id)
	return nil
}

func (f *fakeTrackingStore) ListByUser(_ context.Context, userID string) ([]*types.CropTracking, error) {
	var items []*types.CropTracking
	for _, ct := range f.records {
		if ct.UserID == userID {
			cp := *ct
			items = append(items, &cp)
		}
	}
	return items, nil
}

// fakeCropCatalog resolves a single known crop.
type fakeCropCatalog struct {
	crop *types.Crop
}

func (f *fakeCropCatalog) GetByID(_ context.Context, id string) (*types.Crop, error) {
	if f.crop == nil || f.crop.ID != id {
		return nil, types.NewAppError(types.ErrCodeNotFoundCrop, "crop not found", nil)
	}
	cp := *f.crop
	return &cp, nil
}

var trackingNow = time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

func trackingRouter(store *fakeTrackingStore, catalog *fakeCropCatalog) *chi.Mux {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewTrackingHandler(store, catalog, core.NewValidator(logger),
		func() time.Time { return trackingNow }, logger)
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

func withActor(r *http.Request, userID string) *http.Request {
	return r.WithContext(types.WithActor(r.Context(), types.Actor{ID: userID}))
}

const riceCropID = "3b8f2a6e-9d4c-4f1a-b5e7-2c8d9e0f1a2b"

func riceCatalog() *fakeCropCatalog {
	return &fakeCropCatalog{crop: &types.Crop{
		ID:          riceCropID,
		Name:        "Rice",
		GrowingDays: 120,
	}}
}

func TestTrackingCreate(t *testing.T) {
	store := newFakeTrackingStore()
	router := trackingRouter(store, riceCatalog())

	planted := trackingNow.AddDate(0, 0, -30)
	payload := `{"crop_id":"` + riceCropID + `","planted_at":"` + planted.Format(time.RFC3339) + `"}`
	req := withActor(httptest.NewRequest(http.MethodPost, "/tracking", strings.NewReader(payload)), "u-1")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var body struct {
		Data *types.CropTracking `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	require.NotNil(t, body.Data)
	assert.Equal(t, "Rice", body.Data.CropName)
	assert.Equal(t, planted.AddDate(0, 0, 120), body.Data.ExpectedHarvest.UTC())
	assert.Equal(t, 25, body.Data.Progress, "30 of 120 growing days elapsed")
}

func TestTrackingCreate_UnknownCrop(t *testing.T) {
	router := trackingRouter(newFakeTrackingStore(), riceCatalog())

	payload := `{"crop_id":"aaaaaaaa-bbbb-4ccc-8ddd-eeeeeeeeeeee"}`
	req := withActor(httptest.NewRequest(http.MethodPost, "/tracking", strings.NewReader(payload)), "u-1")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTracking_OwnershipScoping(t *testing.T) {
	store := newFakeTrackingStore()
	router := trackingRouter(store, riceCatalog())

	// u-1 creates a record.
	payload := `{"crop_id":"` + riceCropID + `"}`
	req := withActor(httptest.NewRequest(http.MethodPost, "/tracking", strings.NewReader(payload)), "u-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		Data *types.CropTracking `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&created))
	id := created.Data.ID

	// u-2 cannot read or delete it; the record is simply not found.
	w = httptest.NewRecorder()
	router.ServeHTTP(w, withActor(httptest.NewRequest(http.MethodGet, "/tracking/"+id, nil), "u-2"))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, withActor(httptest.NewRequest(http.MethodDelete, "/tracking/"+id, nil), "u-2"))
	assert.Equal(t, http.StatusNotFound, w.Code)

	// u-1 can.
	w = httptest.NewRecorder()
	router.ServeHTTP(w, withActor(httptest.NewRequest(http.MethodGet, "/tracking/"+id, nil), "u-1"))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, withActor(httptest.NewRequest(http.MethodDelete, "/tracking/"+id, nil), "u-1"))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestTracking_RequiresAuth(t *testing.T) {
	router := trackingRouter(newFakeTrackingStore(), riceCatalog())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tracking", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
