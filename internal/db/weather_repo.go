package db

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"

	"agriklima/internal/types"
)

// WeatherRepository stores the current weather snapshot per location.
// Locations are matched case-insensitively; the snapshot row is replaced on
// every poller refresh via upsert.
type WeatherRepository struct {
	db DBTX
}

// NewWeatherRepository creates a new WeatherRepository.
func NewWeatherRepository(db DBTX) *WeatherRepository {
	return &WeatherRepository{db: db}
}

const weatherColumns = `w.id, w.location, w.temperature, w.humidity, w.wind_speed,
	w.condition, w.details, w.forecast, w.fetched_at`

func scanSnapshot(row pgx.Row) (*types.WeatherSnapshot, error) {
	var s types.WeatherSnapshot
	var (
		condition   *string
		detailsRaw  []byte
		forecastRaw []byte
	)
	err := row.Scan(
		&s.ID,
		&s.Location,
		&s.Temperature,
		&s.Humidity,
		&s.WindSpeed,
		&condition,
		&detailsRaw,
		&forecastRaw,
		&s.FetchedAt,
	)
	if err != nil {
		return nil, err
	}
	if condition != nil {
		s.Condition = *condition
	}
	if len(detailsRaw) > 0 {
		if err := json.Unmarshal(detailsRaw, &s.Details); err != nil {
			return nil, err
		}
	}
	if len(forecastRaw) > 0 {
		if err := json.Unmarshal(forecastRaw, &s.Forecast); err != nil {
			return nil, err
		}
	}
	return &s, nil
}

// Upsert inserts or replaces the snapshot for the given location.
func (r *WeatherRepository) Upsert(ctx context.Context, s *types.WeatherSnapshot) error {
	details, err := json.Marshal(s.Details)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalUnexpected, "failed to encode weather details", err)
	}
	forecast, err := json.Marshal(s.Forecast)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalUnexpected, "failed to encode forecast", err)
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO weather_snapshots (id, location, temperature, humidity,
		 wind_speed, condition, details, forecast, fetched_at)
		 VALUES ($1, lower($2), $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (location) DO UPDATE SET
		   temperature = EXCLUDED.temperature,
		   humidity = EXCLUDED.humidity,
		   wind_speed = EXCLUDED.wind_speed,
		   condition = EXCLUDED.condition,
		   details = EXCLUDED.details,
		   forecast = EXCLUDED.forecast,
		   fetched_at = EXCLUDED.fetched_at`,
		s.ID,
		s.Location,
		s.Temperature,
		s.Humidity,
		s.WindSpeed,
		nilIfEmpty(s.Condition),
		details,
		forecast,
		s.FetchedAt,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to upsert weather snapshot", err)
	}
	return nil
}

// GetByLocation retrieves the snapshot for a location (case-insensitive).
func (r *WeatherRepository) GetByLocation(ctx context.Context, location string) (*types.WeatherSnapshot, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+weatherColumns+`
		 FROM weather_snapshots w
		 WHERE w.location = lower($1)`,
		location,
	)
	s, err := scanSnapshot(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.NewAppError(types.ErrCodeNotFoundWeather, "no weather data for location", nil)
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to retrieve weather snapshot", err)
	}
	return s, nil
}

// ListLocations returns every location that has a stored snapshot.
func (r *WeatherRepository) ListLocations(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT location FROM weather_snapshots ORDER BY location`,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list weather locations", err)
	}
	defer rows.Close()

	var locations []string
	for rows.Next() {
		var loc string
		if err := rows.Scan(&loc); err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan location row", err)
		}
		locations = append(locations, loc)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to iterate location rows", err)
	}
	return locations, nil
}
