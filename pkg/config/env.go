// Env loader
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	AppEnv             string
	Port               string
	LogLevel           string
	DBDriver           string
	DBHost             string
	DBPort             string
	DBName             string
	DBUser             string
	DBPassword         string
	DBSchema           string
	SQLitePath         string
	JWTSecret          string
	DefaultTimezone    string
	DefaultUTCOffset   int // minutes east of UTC
	RetryMaxElapsed    time.Duration
	ShutdownTimeout    time.Duration
	retryMaxElapsedRaw string
}

// LoadConfig loads environment variables from the .env file
func LoadConfig() *Config {
	appEnv := os.Getenv("APP_ENV")

	switch appEnv {
	case "production":
		if err := godotenv.Load(".env.production"); err == nil {
			fmt.Println("Loaded .env.production")
		}
	default:
		if err := godotenv.Load(".env.development"); err == nil {
			fmt.Println("Loaded .env.development")
		}
	}

	cfg := &Config{
		AppEnv:             getEnv("APP_ENV", "development"),
		Port:               getEnv("PORT", "8080"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		DBDriver:           getEnv("DB_DRIVER", DriverPostgres),
		DBHost:             getEnv("BLUEPRINT_DB_HOST", "localhost"),
		DBPort:             getEnv("BLUEPRINT_DB_PORT", "5432"),
		DBName:             getEnv("BLUEPRINT_DB_DATABASE", "reading_engine"),
		DBUser:             getEnv("BLUEPRINT_DB_USERNAME", "postgres"),
		DBPassword:         getEnv("BLUEPRINT_DB_PASSWORD", ""),
		DBSchema:           getEnv("BLUEPRINT_DB_SCHEMA", "public"),
		SQLitePath:         getEnv("SQLITE_PATH", "data/reading.db"),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		DefaultTimezone:    getEnv("DEFAULT_TIMEZONE", "America/Sao_Paulo"),
		ShutdownTimeout:    5 * time.Second,
		retryMaxElapsedRaw: getEnv("RETRY_MAX_ELAPSED", "5s"),
	}

	offset, err := strconv.Atoi(getEnv("DEFAULT_UTC_OFFSET_MINUTES", "-180"))
	if err != nil {
		offset = -180
	}
	cfg.DefaultUTCOffset = offset

	if d, err := time.ParseDuration(cfg.retryMaxElapsedRaw); err == nil {
		cfg.RetryMaxElapsed = d
	}

	return cfg
}

// Validate reports configuration that would make the engine unusable.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("DB_DRIVER must be %q or %q, got %q", DriverPostgres, DriverSQLite, c.DBDriver)
	}
	if c.DBDriver == DriverSQLite && c.SQLitePath == "" {
		return errors.New("SQLITE_PATH is required when DB_DRIVER=sqlite")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.RetryMaxElapsed <= 0 {
		return fmt.Errorf("RETRY_MAX_ELAPSED must be a positive duration, got %q", c.retryMaxElapsedRaw)
	}
	if c.DefaultUTCOffset < -14*60 || c.DefaultUTCOffset > 14*60 {
		return fmt.Errorf("DEFAULT_UTC_OFFSET_MINUTES out of range: %d", c.DefaultUTCOffset)
	}
	return nil
}

// DefaultLocation is the zone used for users that never set one. An unknown IANA name falls
// back to the fixed offset.
func (c *Config) DefaultLocation() *time.Location {
	sign := "+"
	if c.DefaultUTCOffset < 0 {
		sign = "-"
	}
	m := abs(c.DefaultUTCOffset)
	fixed := time.FixedZone(fmt.Sprintf("UTC%s%02d:%02d", sign, m/60, m%60), c.DefaultUTCOffset*60)
	if c.DefaultTimezone == "" {
		return fixed
	}
	loc, err := time.LoadLocation(c.DefaultTimezone)
	if err != nil {
		return fixed
	}
	return loc
}

// PostgresURL builds the connection string for the pgx driver.
func (c *Config) PostgresURL() string {
	q := url.Values{}
	q.Set("sslmode", "disable")
	q.Set("search_path", c.DBSchema)
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     net.JoinHostPort(c.DBHost, c.DBPort),
		Path:     "/" + c.DBName,
		RawQuery: q.Encode(),
	}
	return u.String()
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
