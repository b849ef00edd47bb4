package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config labtrack-data (HTTP API) configuration
type Config struct {
	HTTP struct {
		Addr string
	}
	DBEnabled bool
	Database  DatabaseConfig
	Redis     struct {
		Addr     string
		Password string
		DB       int
	}
	Log struct {
		Level  string
		Format string
	}
	Session SessionConfig
	Access  AccessConfig
}

// DatabaseConfig PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MaxIdle  int
}

// GetDSN builds the lib/pq connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// SessionConfig cookie-session lifetimes
type SessionConfig struct {
	TTL         time.Duration // plain login
	RememberTTL time.Duration // login with remember_me
}

// AccessConfig is the injected practice-visibility mapping.
// UserPractices maps username -> practice name; a nil value means the user
// is explicitly unrestricted. DefaultDeny controls what happens to non-admin
// usernames absent from the map: false keeps the legacy behavior
// (unrestricted), true hides all jobs from them.
type AccessConfig struct {
	UserPractices map[string]*string
	DefaultDeny   bool
}

func Load() *Config {
	cfg := &Config{}
	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8080")

	// Default to true for local dev: if the DB is unavailable, labtrack-data
	// falls back to in-memory repositories so the app still starts.
	cfg.DBEnabled = getEnv("DB_ENABLED", "true") == "true"
	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = parseInt(getEnv("DB_PORT", "5432"), 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "labtrack")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Database.MaxConns = parseInt(getEnv("DB_MAX_CONNS", "0"), 0)
	cfg.Database.MaxIdle = parseInt(getEnv("DB_MAX_IDLE", "0"), 0)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = 0

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	cfg.Session.TTL = time.Duration(parseInt(getEnv("SESSION_TTL_HOURS", "24"), 24)) * time.Hour
	cfg.Session.RememberTTL = time.Duration(parseInt(getEnv("SESSION_REMEMBER_DAYS", "30"), 30)) * 24 * time.Hour

	cfg.Access.UserPractices = loadAccessMap()
	cfg.Access.DefaultDeny = getEnv("ACCESS_DEFAULT_DENY", "false") == "true"

	return cfg
}

// loadAccessMap reads the username -> practice mapping from ACCESS_MAP
// (inline JSON) or ACCESS_MAP_FILE. JSON null marks an unrestricted user:
//
//	{"lab-owner": null, "frontdesk@ballito": "Ballito"}
func loadAccessMap() map[string]*string {
	raw := os.Getenv("ACCESS_MAP")
	if raw == "" {
		if path := os.Getenv("ACCESS_MAP_FILE"); path != "" {
			if data, err := os.ReadFile(path); err == nil {
				raw = string(data)
			}
		}
	}
	m := map[string]*string{}
	if raw == "" {
		return m
	}
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return map[string]*string{}
	}
	return m
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}
