package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the configuration settings for the donation pipeline and the
// read API. Everything comes from environment variables (a local .env file is
// honored), with defaults suitable for a production deployment against the
// Israeli schedule provider.
//
// Fields:
// - Env: the current environment (local, development, production).
// - HealthPort: the pipeline monitoring server port.
// - APIPort: the donation read-API port.
// - ProviderType: which geocoding provider to use (google, nominatim).
// - APIKey: the geocoding provider credential (required for Google).
// - Region: the country bias applied to every geocoding query.
// - Language: the preferred response language for geocoding results.
// - MinDelay: the minimum interval between outbound provider calls.
// - Interval: the duration between schedule refreshes.
// - StationLimit: max station records per run, 0 processes everything.
// - MissingReport: CSV path for unresolved stations, empty disables it.
// - Database: the PostgreSQL connection settings.
type Config struct {
	Env           string
	HealthPort    int
	APIPort       int
	ProviderType  string
	APIKey        string
	Region        string
	Language      string
	MinDelay      time.Duration
	Interval      time.Duration
	StationLimit  int
	MissingReport string
	Database      PostgresConfig
}

// PostgresConfig struct holds the configuration details for connecting to a PostgreSQL database.
type PostgresConfig struct {
	Host     string // Host is the database server address.
	Port     string // Port is the database server port.
	User     string // User is the database user.
	Password string // Password is the database user's password.
	Name     string // Name is the name of the database.
}

// MustLoad reads the configuration from the environment and panics on
// malformed values, so a misconfigured deployment fails at startup rather
// than mid-run.
func MustLoad() *Config {
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("DONORMAP_ENV", "production")
	v.SetDefault("DONORMAP_HEALTH_PORT", 8080)
	v.SetDefault("DONORMAP_API_PORT", 8000)
	v.SetDefault("DONORMAP_PROVIDER_TYPE", "google")
	v.SetDefault("DONORMAP_REGION", "IL")
	v.SetDefault("DONORMAP_LANGUAGE", "iw")
	v.SetDefault("DONORMAP_MIN_DELAY", "100ms")
	v.SetDefault("DONORMAP_INTERVAL", "10m")
	v.SetDefault("DONORMAP_STATION_LIMIT", 100)
	v.SetDefault("DONORMAP_MISSING_REPORT", "")
	v.SetDefault("DB_PORT", "5432")
	v.AutomaticEnv()

	interval := v.GetDuration("DONORMAP_INTERVAL")
	if interval <= 0 {
		panic("failed to parse interval from configuration")
	}

	minDelay := v.GetDuration("DONORMAP_MIN_DELAY")
	if minDelay <= 0 {
		panic("failed to parse provider min delay from configuration")
	}

	healthPort := v.GetInt("DONORMAP_HEALTH_PORT")
	if healthPort <= 0 {
		panic("failed to parse port for monitoring server from configuration")
	}

	apiPort := v.GetInt("DONORMAP_API_PORT")
	if apiPort <= 0 {
		panic("failed to parse port for donation API from configuration")
	}

	return &Config{
		Env:           v.GetString("DONORMAP_ENV"),
		HealthPort:    healthPort,
		APIPort:       apiPort,
		ProviderType:  v.GetString("DONORMAP_PROVIDER_TYPE"),
		APIKey:        v.GetString("DONORMAP_PROVIDER_KEY"),
		Region:        v.GetString("DONORMAP_REGION"),
		Language:      v.GetString("DONORMAP_LANGUAGE"),
		MinDelay:      minDelay,
		Interval:      interval,
		StationLimit:  v.GetInt("DONORMAP_STATION_LIMIT"),
		MissingReport: v.GetString("DONORMAP_MISSING_REPORT"),
		Database: PostgresConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USERNAME"),
			Password: v.GetString("DB_PASSWORD"),
			Name:     v.GetString("DB_NAME"),
		},
	}
}
