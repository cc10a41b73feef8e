// Package config defines the global configuration for the AgriKlima backend.
// Configuration is loaded once at process start and is immutable thereafter.
// It follows 12-Factor principles: values come from the OS environment, with
// a local .env file as a development convenience.
//
// Any missing required value or invalid format causes startup to fail
// immediately (fail fast).
package config

import (
	"time"

	"agriklima/internal/types"
)

// SecretString is an alias for types.SecretString, the redacted secret type
// used throughout configuration to prevent accidental logging of sensitive
// values.
type SecretString = types.SecretString

// Config is the top-level configuration struct for the AgriKlima backend.
// It is populated once during process initialization and never modified.
type Config struct {
	Environment string `envconfig:"APP_ENV" default:"local" validate:"required,oneof=local dev staging prod"`
	Service     string `envconfig:"SERVICE_NAME" default:"agriklima-api"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Weather  WeatherConfig
	Redis    RedisConfig
	Security SecurityConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"8080"`
	RequestTimeout  time.Duration `envconfig:"REQUEST_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// DatabaseConfig holds database connection and pool tuning parameters.
type DatabaseConfig struct {
	URL SecretString `envconfig:"DATABASE_URL" validate:"required"`

	MaxConns          int           `envconfig:"DB_MAX_CONNS" default:"10"`
	MinConns          int           `envconfig:"DB_MIN_CONNS" default:"2"`
	MaxConnLifetime   time.Duration `envconfig:"DB_MAX_CONN_LIFETIME" default:"30m"`
	HealthCheckPeriod time.Duration `envconfig:"DB_HEALTH_CHECK_PERIOD" default:"1m"`
}

// AuthConfig holds token signing and session duration settings.
type AuthConfig struct {
	JWTSecret SecretString  `envconfig:"JWT_SECRET" validate:"required,min=32"`
	TokenTTL  time.Duration `envconfig:"TOKEN_TTL" default:"24h"`
	Issuer    string        `envconfig:"TOKEN_ISSUER" default:"agriklima"`
}

// WeatherConfig holds upstream weather provider settings and the location
// list refreshed by the poller.
type WeatherConfig struct {
	ProviderURL    string        `envconfig:"WEATHER_PROVIDER_URL" validate:"required,url"`
	ProviderAPIKey SecretString  `envconfig:"WEATHER_PROVIDER_API_KEY"`
	Timeout        time.Duration `envconfig:"WEATHER_TIMEOUT" default:"10s"`
	PollInterval   time.Duration `envconfig:"WEATHER_POLL_INTERVAL" default:"30m"`
	Locations      []string      `envconfig:"WEATHER_LOCATIONS" default:"Tarlac City,Concepcion,Capas,Victoria,Gerona"`
	MaxConcurrent  int           `envconfig:"WEATHER_MAX_CONCURRENT" default:"4"`
}

// RedisConfig holds the optional snapshot cache settings. An empty Addr
// disables caching entirely.
type RedisConfig struct {
	Addr     string        `envconfig:"REDIS_ADDR"`
	Password SecretString  `envconfig:"REDIS_PASSWORD"`
	DB       int           `envconfig:"REDIS_DB" default:"0"`
	CacheTTL time.Duration `envconfig:"WEATHER_CACHE_TTL" default:"5m"`
}

// SecurityConfig holds CORS and password policy settings.
type SecurityConfig struct {
	CorsAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	MinPasswordLength  int      `envconfig:"MIN_PASSWORD_LENGTH" default:"8"`
	BcryptCost         int      `envconfig:"BCRYPT_COST" default:"10"`
}
