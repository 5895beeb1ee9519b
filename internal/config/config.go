// Package config provides application configuration management
// with validation and environment parsing
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Session backends
const (
	SessionBackendMemory   = "memory"
	SessionBackendRedis    = "redis"
	SessionBackendPostgres = "postgres"
	SessionBackendFile     = "file"
)

// Config represents the application configuration
type Config struct {
	Environment string
	Port        string
	Host        string
	DatabaseURL string
	API         APIConfig
	Session     SessionConfig
	Cache       CacheConfig
	UI          UIConfig
	Logging     *LoggingConfig
	Server      *ServerConfig
}

// APIConfig holds the upstream REST backend settings
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

// SessionConfig controls where browser session tokens are kept
type SessionConfig struct {
	Backend       string
	CookieName    string
	CookieSecure  bool
	TTL           time.Duration
	PurgeInterval time.Duration
	FilePath      string
}

// CacheConfig holds Redis/Valkey configuration for the redis session backend
type CacheConfig struct {
	Enabled         bool
	Address         string
	Password        string
	Database        int
	DefaultTTL      time.Duration
	MaxRetries      int
	MinRetryBackoff time.Duration
	MaxRetryBackoff time.Duration
	DialTimeout     time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	PoolSize        int
	MinIdleConns    int
	PoolTimeout     time.Duration
}

// UIConfig holds presentation constants
type UIConfig struct {
	GalleryPageSize      int
	SearchPageSize       int
	MaxVisiblePages      int
	SessionCheckInterval time.Duration
	LoginRedirectDelay   time.Duration
	ToastDuration        time.Duration
	MaxUploadSize        int64
	PreviewMaxSide       int
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
	Output string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Load creates a new configuration from environment variables with validation
func Load() (*Config, error) {
	readTimeout, _ := time.ParseDuration(getEnv("READ_TIMEOUT", "10s"))
	writeTimeout, _ := time.ParseDuration(getEnv("WRITE_TIMEOUT", "30s"))
	idleTimeout, _ := time.ParseDuration(getEnv("SERVER_TIMEOUT", "60s"))

	backend := strings.ToLower(getEnv("SESSION_BACKEND", SessionBackendMemory))
	cookieSecure, _ := strconv.ParseBool(getEnv("SESSION_COOKIE_SECURE", "false"))

	config := &Config{
		Environment: getEnv("GO_ENV", "development"),
		Port:        getEnv("PORT", "8080"),
		Host:        getEnv("HOST", "localhost"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		API: APIConfig{
			BaseURL: strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:5000"), "/"),
			Timeout: getEnvDuration("API_TIMEOUT", 30*time.Second),
		},
		Session: SessionConfig{
			Backend:       backend,
			CookieName:    getEnv("SESSION_COOKIE_NAME", "gallery_session"),
			CookieSecure:  cookieSecure,
			TTL:           getEnvDuration("SESSION_TTL", 7*24*time.Hour),
			PurgeInterval: getEnvDuration("SESSION_PURGE_INTERVAL", 15*time.Minute),
			FilePath:      getEnv("SESSION_FILE", ""),
		},
		Cache: CacheConfig{
			Enabled:         backend == SessionBackendRedis,
			Address:         getEnv("REDIS_ADDRESS", "localhost:6379"),
			Password:        getEnv("REDIS_PASSWORD", ""),
			Database:        getEnvInt("REDIS_DB", 0),
			DefaultTTL:      getEnvDuration("SESSION_TTL", 7*24*time.Hour),
			MaxRetries:      getEnvInt("REDIS_MAX_RETRIES", 3),
			MinRetryBackoff: 8 * time.Millisecond,
			MaxRetryBackoff: 512 * time.Millisecond,
			DialTimeout:     getEnvDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:     3 * time.Second,
			WriteTimeout:    3 * time.Second,
			PoolSize:        getEnvInt("REDIS_POOL_SIZE", 10),
			MinIdleConns:    2,
			PoolTimeout:     4 * time.Second,
		},
		UI: UIConfig{
			GalleryPageSize:      getEnvInt("GALLERY_PAGE_SIZE", 10),
			SearchPageSize:       getEnvInt("SEARCH_PAGE_SIZE", 12),
			MaxVisiblePages:      getEnvInt("MAX_VISIBLE_PAGES", 5),
			SessionCheckInterval: getEnvDuration("SESSION_CHECK_INTERVAL", 60*time.Second),
			LoginRedirectDelay:   getEnvDuration("LOGIN_REDIRECT_DELAY", time.Second),
			ToastDuration:        getEnvDuration("TOAST_DURATION", 3*time.Second),
			MaxUploadSize:        parseSize(getEnv("MAX_UPLOAD_SIZE", "50MB")),
			PreviewMaxSide:       getEnvInt("PREVIEW_MAX_SIDE", 4096),
		},
		Logging: &LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
			Output: getEnv("LOG_OUTPUT", "stdout"),
		},
		Server: &ServerConfig{
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
			IdleTimeout:  idleTimeout,
		},
	}

	// Validate configuration before returning
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// parseSize parses size strings like "10MB", "512KB" into bytes
func parseSize(sizeStr string) int64 {
	sizeStr = strings.ToUpper(strings.TrimSpace(sizeStr))

	if strings.HasSuffix(sizeStr, "MB") {
		numStr := strings.TrimSuffix(sizeStr, "MB")
		if num, err := strconv.ParseInt(numStr, 10, 64); err == nil {
			return num * 1024 * 1024
		}
	}

	if strings.HasSuffix(sizeStr, "KB") {
		numStr := strings.TrimSuffix(sizeStr, "KB")
		if num, err := strconv.ParseInt(numStr, 10, 64); err == nil {
			return num * 1024
		}
	}

	// Default to 50MB if parsing fails
	return 50 * 1024 * 1024
}
