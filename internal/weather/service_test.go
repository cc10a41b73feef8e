package weather

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agriklima/internal/types"
)

func ptr(v float64) *float64 { return &v }

// fakeSnapshotRepo is an in-memory SnapshotRepo keyed by lowercase location.
type fakeSnapshotRepo struct {
	mu    sync.Mutex
	snaps map[string]*types.WeatherSnapshot
}

func newFakeSnapshotRepo() *fakeSnapshotRepo {
	return &fakeSnapshotRepo{snaps: map[string]*types.WeatherSnapshot{}}
}

func (f *fakeSnapshotRepo) Upsert(_ context.Context, s *types.WeatherSnapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *s
	f.snaps[strings.ToLower(s.Location)] = &cp
	return nil
}

func (f *fakeSnapshotRepo) GetByLocation(_ context.Context, location string) (*types.WeatherSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.snaps[strings.ToLower(location)]
	if !ok {
		return nil, types.NewAppError(types.ErrCodeNotFoundWeather, "no weather data for location", nil)
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSnapshotRepo) ListLocations(context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var locations []string
	for loc := range f.snaps {
		locations = append(locations, loc)
	}
	return locations, nil
}

// fakeFetcher returns canned snapshots and fails for configured locations.
type fakeFetcher struct {
	mu      sync.Mutex
	failFor map[string]bool
	calls   []string
}

func (f *fakeFetcher) Fetch(_ context.Context, location string) (*types.WeatherSnapshot, error) {
	f.mu.Lock()
	f.calls = append(f.calls, location)
	fail := f.failFor[location]
	f.mu.Unlock()

	if fail {
		return nil, types.NewAppError(types.ErrCodeUpstreamWeather, "provider down", nil)
	}
	return &types.WeatherSnapshot{
		Location:    location,
		Temperature: ptr(28),
		Humidity:    ptr(70),
		WindSpeed:   ptr(10),
		Details:     types.WeatherDetails{Precipitation: ptr(5)},
		FetchedAt:   time.Now().UTC(),
	}, nil
}

func newTestService(repo SnapshotRepo, fetcher Fetcher) *Service {
	return NewService(repo, fetcher, nil, time.Minute, 2, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSnapshot_ReadsFromStorage(t *testing.T) {
	repo := newFakeSnapshotRepo()
	require.NoError(t, repo.Upsert(context.Background(), &types.WeatherSnapshot{
		Location:    "tarlac city",
		Temperature: ptr(30),
	}))

	svc := newTestService(repo, &fakeFetcher{})

	snap, err := svc.Snapshot(context.Background(), "Tarlac City")
	require.NoError(t, err)
	assert.Equal(t, 30.0, *snap.Temperature)
}

func TestSnapshot_UnknownLocation(t *testing.T) {
	svc := newTestService(newFakeSnapshotRepo(), &fakeFetcher{})

	_, err := svc.Snapshot(context.Background(), "Atlantis")
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeNotFoundWeather, appErr.Code)
}

func TestRefresh_AllLocationsSucceed(t *testing.T) {
	repo := newFakeSnapshotRepo()
	fetcher := &fakeFetcher{}
	svc := newTestService(repo, fetcher)

	locations := []string{"Tarlac City", "Concepcion", "Capas"}
	ok, err := svc.Refresh(context.Background(), locations)
	require.NoError(t, err)
	assert.Equal(t, 3, ok)
	assert.ElementsMatch(t, locations, fetcher.calls)

	stored, err := repo.ListLocations(context.Background())
	require.NoError(t, err)
	assert.Len(t, stored, 3)

	// Stored snapshots get an assigned ID.
	snap, err := repo.GetByLocation(context.Background(), "Capas")
	require.NoError(t, err)
	assert.NotEmpty(t, snap.ID)
}

func TestRefresh_PartialFailureContinues(t *testing.T) {
	repo := newFakeSnapshotRepo()
	fetcher := &fakeFetcher{failFor: map[string]bool{"Concepcion": true}}
	svc := newTestService(repo, fetcher)

	ok, err := svc.Refresh(context.Background(), []string{"Tarlac City", "Concepcion", "Capas"})
	require.NoError(t, err)
	assert.Equal(t, 2, ok)

	// The failed location has no stored snapshot; the others do.
	_, err = repo.GetByLocation(context.Background(), "Concepcion")
	require.Error(t, err)
	_, err = repo.GetByLocation(context.Background(), "Tarlac City")
	require.NoError(t, err)
}

func TestRefresh_AllFailuresIsAnError(t *testing.T) {
	fetcher := &fakeFetcher{failFor: map[string]bool{"Tarlac City": true, "Capas": true}}
	svc := newTestService(newFakeSnapshotRepo(), fetcher)

	ok, err := svc.Refresh(context.Background(), []string{"Tarlac City", "Capas"})
	assert.Equal(t, 0, ok)
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeUpstreamWeather, appErr.Code)
}

func TestRefresh_NoLocations(t *testing.T) {
	fetcher := &fakeFetcher{}
	svc := newTestService(newFakeSnapshotRepo(), fetcher)

	ok, err := svc.Refresh(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, ok)
	assert.Empty(t, fetcher.calls)
}
