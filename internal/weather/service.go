package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"agriklima/internal/types"
)

// SnapshotRepo defines the persistence contract for weather snapshots.
// Implemented by db.WeatherRepository.
type SnapshotRepo interface {
	Upsert(ctx context.Context, s *types.WeatherSnapshot) error
	GetByLocation(ctx context.Context, location string) (*types.WeatherSnapshot, error)
	ListLocations(ctx context.Context) ([]string, error)
}

// Fetcher retrieves a snapshot from the upstream provider. Implemented by
// ProviderClient.
type Fetcher interface {
	Fetch(ctx context.Context, location string) (*types.WeatherSnapshot, error)
}

// Service serves weather snapshots from storage with an optional Redis
// read-through cache, and refreshes all configured locations from the
// upstream provider on behalf of the poller.
type Service struct {
	repo          SnapshotRepo
	fetcher       Fetcher
	cache         redis.UniversalClient
	cacheTTL      time.Duration
	maxConcurrent int
	logger        *slog.Logger
}

// NewService creates a weather Service. The cache client may be nil; reads
// then always hit storage.
func NewService(
	repo SnapshotRepo,
	fetcher Fetcher,
	cache redis.UniversalClient,
	cacheTTL time.Duration,
	maxConcurrent int,
	logger *slog.Logger,
) *Service {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:          repo,
		fetcher:       fetcher,
		cache:         cache,
		cacheTTL:      cacheTTL,
		maxConcurrent: maxConcurrent,
		logger:        logger,
	}
}

// Snapshot returns the stored snapshot for a location. Cache misses and
// cache errors fall through to storage; a cache failure never fails a read.
func (s *Service) Snapshot(ctx context.Context, location string) (*types.WeatherSnapshot, error) {
	key := cacheKey(location)

	if s.cache != nil {
		raw, err := s.cache.Get(ctx, key).Bytes()
		if err == nil {
			var snap types.WeatherSnapshot
			if err := json.Unmarshal(raw, &snap); err == nil {
				return &snap, nil
			}
			// Corrupt entry; drop it and fall through to storage.
			s.cache.Del(ctx, key)
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn("weather cache read failed", "location", location, "error", err)
		}
	}

	snap, err := s.repo.GetByLocation(ctx, location)
	if err != nil {
		return nil, err
	}

	s.cacheSet(ctx, key, snap)
	return snap, nil
}

// Locations returns every location with a stored snapshot.
func (s *Service) Locations(ctx context.Context) ([]string, error) {
	return s.repo.ListLocations(ctx)
}

// Refresh fetches and stores fresh snapshots for the given locations,
// fanning out up to maxConcurrent fetches at a time. Failures are logged
// per location; the refresh continues for the rest and reports how many
// locations succeeded.
func (s *Service) Refresh(ctx context.Context, locations []string) (int, error) {
	if len(locations) == 0 {
		return 0, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)

	results := make([]bool, len(locations))
	for i, location := range locations {
		i, location := i, location
		g.Go(func() error {
			if err := s.refreshOne(ctx, location); err != nil {
				s.logger.Error("weather refresh failed", "location", location, "error", err)
				return nil
			}
			results[i] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	ok := 0
	for _, succeeded := range results {
		if succeeded {
			ok++
		}
	}
	if ok == 0 {
		return 0, types.NewAppError(
			types.ErrCodeUpstreamWeather,
			fmt.Sprintf("all %d location refreshes failed", len(locations)),
			nil,
		)
	}
	return ok, nil
}

// refreshOne fetches, persists, and re-caches a single location.
func (s *Service) refreshOne(ctx context.Context, location string) error {
	snap, err := s.fetcher.Fetch(ctx, location)
	if err != nil {
		return err
	}
	snap.ID = uuid.NewString()

	if err := s.repo.Upsert(ctx, snap); err != nil {
		return err
	}

	s.cacheSet(ctx, cacheKey(snap.Location), snap)
	s.logger.Info("weather snapshot refreshed", "location", snap.Location)
	return nil
}

// cacheSet writes a snapshot to the cache, logging and ignoring failures.
func (s *Service) cacheSet(ctx context.Context, key string, snap *types.WeatherSnapshot) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.cacheTTL).Err(); err != nil {
		s.logger.Warn("weather cache write failed", "key", key, "error", err)
	}
}

func cacheKey(location string) string {
	return "weather:snapshot:" + strings.ToLower(strings.TrimSpace(location))
}
