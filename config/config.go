// Package config loads and validates application configuration from
// environment variables. All errors are collected and reported together so
// a misconfigured deployment fails fast with the full list of problems.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// PoolConfig holds settings for the PostgreSQL connection pool.
type PoolConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	MaxSize  int
}

// AuthConfig holds token-related configuration.
type AuthConfig struct {
	JWTSecret            string
	AccessTokenDuration  time.Duration
	RefreshTokenDuration time.Duration
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port           string
	AllowedOrigins []string
}

// GeoConfig holds settings for the outbound geocoding and IP-location calls.
type GeoConfig struct {
	GeocoderBaseURL string
	UserAgent       string
	IPGeoURL        string
	RequestTimeout  time.Duration
}

// ModerationConfig holds settings for the background moderation sweep.
type ModerationConfig struct {
	// ReportThreshold is the report count at which an active listing is
	// demoted to pending.
	ReportThreshold int
	// Schedule is a cron expression controlling how often the sweep runs.
	Schedule string
}

// AppConfig is the top-level configuration structure.
type AppConfig struct {
	DB         *PoolConfig
	Auth       *AuthConfig
	Server     *ServerConfig
	Geo        *GeoConfig
	Moderation *ModerationConfig
}

func getRequiredEnv(key string, errs *[]string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		*errs = append(*errs, fmt.Sprintf("missing required environment variable: %s", key))
		return ""
	}
	return value
}

func getOptionalEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getOptionalEnvInt(key string, defaultValue int, errs *[]string) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valueInt, err := strconv.Atoi(valueStr)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("invalid value for %s: expected integer, got '%s': %v", key, valueStr, err))
		return defaultValue
	}
	return valueInt
}

func getOptionalEnvDuration(key string, defaultValue time.Duration, errs *[]string) time.Duration {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valueDuration, err := time.ParseDuration(valueStr)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("invalid value for %s: expected duration string, got '%s': %v", key, valueStr, err))
		return defaultValue
	}
	return valueDuration
}

// parseOrigins splits a comma-separated origin list, trimming whitespace and
// dropping empty entries.
func parseOrigins(raw string) []string {
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if o := strings.TrimSpace(p); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// clampPoolSize keeps the pool size within [2, 100].
func clampPoolSize(size int, errs *[]string) int {
	if size < 2 {
		*errs = append(*errs, fmt.Sprintf("DB_POOL_SIZE (%d) below minimum 2, clamping", size))
		return 2
	}
	if size > 100 {
		*errs = append(*errs, fmt.Sprintf("DB_POOL_SIZE (%d) above maximum 100, clamping", size))
		return 100
	}
	return size
}

// LoadConfig reads and validates all environment variables, returning a
// single aggregated error if anything is missing or malformed.
func LoadConfig() (*AppConfig, error) {
	var errs []string

	db := &PoolConfig{
		Host:     getOptionalEnv("DB_HOST", "localhost"),
		Port:     getOptionalEnvInt("DB_PORT", 5432, &errs),
		User:     getRequiredEnv("DB_USER", &errs),
		Password: getRequiredEnv("DB_PASSWORD", &errs),
		DBName:   getRequiredEnv("DB_NAME", &errs),
		MaxSize:  clampPoolSize(getOptionalEnvInt("DB_POOL_SIZE", 10, &errs), &errs),
	}

	auth := &AuthConfig{
		JWTSecret:            getRequiredEnv("JWT_SECRET", &errs),
		AccessTokenDuration:  getOptionalEnvDuration("JWT_ACCESS_TOKEN_DURATION", 15*time.Minute, &errs),
		RefreshTokenDuration: getOptionalEnvDuration("JWT_REFRESH_TOKEN_DURATION", 168*time.Hour, &errs),
	}

	server := &ServerConfig{
		Port:           getOptionalEnv("PORT", "8080"),
		AllowedOrigins: parseOrigins(getOptionalEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")),
	}

	geo := &GeoConfig{
		GeocoderBaseURL: getOptionalEnv("GEOCODER_BASE_URL", "https://nominatim.openstreetmap.org"),
		UserAgent:       getOptionalEnv("GEOCODER_USER_AGENT", "GetCampWood/1.0"),
		IPGeoURL:        getOptionalEnv("IP_GEO_URL", "https://ipapi.co/json/"),
		RequestTimeout:  getOptionalEnvDuration("GEO_REQUEST_TIMEOUT", 10*time.Second, &errs),
	}

	moderation := &ModerationConfig{
		ReportThreshold: getOptionalEnvInt("REPORT_THRESHOLD", 3, &errs),
		Schedule:        getOptionalEnv("MODERATION_SCHEDULE", "@every 15m"),
	}
	if moderation.ReportThreshold < 1 {
		errs = append(errs, fmt.Sprintf("REPORT_THRESHOLD must be at least 1, got %d", moderation.ReportThreshold))
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration errors:\n- %s", strings.Join(errs, "\n- "))
	}

	return &AppConfig{
		DB:         db,
		Auth:       auth,
		Server:     server,
		Geo:        geo,
		Moderation: moderation,
	}, nil
}
