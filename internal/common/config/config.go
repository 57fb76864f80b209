package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Trips    TripsConfig
	Store    StoreConfig
	Database DatabaseConfig
	Geocoder GeocoderConfig
	Server   ServerConfig
	Logging  LoggingConfig
	Notify   NotifyConfig
}

// TripsConfig points at the transport-card CSV export
type TripsConfig struct {
	CSVPath   string
	Delimiter rune
}

// Store backends
const (
	BackendJSON     = "json"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

type StoreConfig struct {
	Backend    string
	JSONPath   string
	SQLitePath string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// GeocoderConfig for the Nominatim lookups done by the resolver
type GeocoderConfig struct {
	BaseURL       string
	UserAgent     string
	CountryCodes  []string
	Delay         time.Duration
	Timeout       time.Duration
	OverridesFile string
}

type ServerConfig struct {
	Port           string
	AllowedOrigins []string
	StaticDir      string
	MinRouteTrips  int
}

type LoggingConfig struct {
	Level    string
	FilePath string
}

type NotifyConfig struct {
	DiscordURL string
}

func Load() (*Config, error) {
	delimiter, err := getRuneEnv("TRIPS_CSV_DELIMITER", ',')
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Trips: TripsConfig{
			CSVPath:   getEnv("TRIPS_CSV", "data/trips.csv"),
			Delimiter: delimiter,
		},
		Store: StoreConfig{
			Backend:    strings.ToLower(getEnv("STORE_BACKEND", BackendJSON)),
			JSONPath:   getEnv("STORE_PATH", "data/stops.json"),
			SQLitePath: getEnv("SQLITE_DATABASE", "data/stops.db"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "ovtracker"),
		},
		Geocoder: GeocoderConfig{
			BaseURL:       getEnv("GEOCODER_URL", "https://nominatim.openstreetmap.org"),
			UserAgent:     getEnv("GEOCODER_USER_AGENT", "ovtracker-map/1.0"),
			CountryCodes:  getListEnv("GEOCODER_COUNTRY_CODES", []string{"nl", "be", "de"}),
			Delay:         getDurationEnv("GEOCODER_DELAY", 1100*time.Millisecond),
			Timeout:       getDurationEnv("GEOCODER_TIMEOUT", 20*time.Second),
			OverridesFile: getEnv("GEOCODER_OVERRIDES_FILE", ""),
		},
		Server: ServerConfig{
			Port:           getEnv("PORT", "8081"),
			AllowedOrigins: getListEnv("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
			StaticDir:      getEnv("STATIC_DIR", ""),
			MinRouteTrips:  getIntEnv("MIN_ROUTE_TRIPS", 1),
		},
		Logging: LoggingConfig{
			Level:    getEnv("LOG_LEVEL", "info"),
			FilePath: getEnv("LOG_FILE", "ovtracker.log"),
		},
		Notify: NotifyConfig{
			DiscordURL: getEnv("DISCORD_WEBHOOK_URL", ""),
		},
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Trips.CSVPath == "" {
		return fmt.Errorf("TRIPS_CSV cannot be empty")
	}
	if err := c.Store.Validate(); err != nil {
		return err
	}
	if c.Store.Backend == BackendPostgres {
		if err := c.Database.Validate(); err != nil {
			return err
		}
	}
	return c.Geocoder.Validate()
}

func (c *StoreConfig) Validate() error {
	switch c.Backend {
	case BackendJSON:
		if c.JSONPath == "" {
			return fmt.Errorf("STORE_PATH is required for the json backend")
		}
	case BackendSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_DATABASE is required for the sqlite backend")
		}
	case BackendPostgres:
	default:
		return fmt.Errorf("unknown store backend %q", c.Backend)
	}
	return nil
}

func (c *DatabaseConfig) Validate() error {
	if c.Host == "" || c.Port == "" || c.User == "" || c.DBName == "" {
		return fmt.Errorf("database host, port, user and name are required")
	}
	return nil
}

func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Host, c.Port, c.User, c.Password, c.DBName)
}

func (c *GeocoderConfig) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("GEOCODER_URL cannot be empty")
	}
	// Nominatim rejects anonymous clients
	if strings.TrimSpace(c.UserAgent) == "" {
		return fmt.Errorf("GEOCODER_USER_AGENT is required by the geocoding usage policy")
	}
	if c.Delay < 0 {
		return fmt.Errorf("GEOCODER_DELAY must not be negative")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getRuneEnv(key string, defaultValue rune) (rune, error) {
	value := os.Getenv(key)
	switch {
	case value == "":
		return defaultValue, nil
	case value == `\t`:
		return '\t', nil
	case len([]rune(value)) == 1:
		return []rune(value)[0], nil
	}
	return 0, fmt.Errorf("%s must be a single character, got %q", key, value)
}
