package config

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed for %s: %s (value: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}

	var messages []string
	for _, err := range ve {
		messages = append(messages, err.Error())
	}

	return fmt.Sprintf("configuration validation failed: %s", strings.Join(messages, "; "))
}

// Has checks if ValidationErrors contains any errors
func (ve ValidationErrors) Has() bool {
	return len(ve) > 0
}

// Validate validates the entire configuration
func (c *Config) Validate() error {
	var validationErrors ValidationErrors

	validationErrors = append(validationErrors, c.validateServer()...)
	validationErrors = append(validationErrors, c.validateAPI()...)
	validationErrors = append(validationErrors, c.validateSession()...)
	validationErrors = append(validationErrors, c.validateUI()...)

	if c.Logging != nil {
		validationErrors = append(validationErrors, c.validateLogging()...)
	}

	if c.Server != nil {
		validationErrors = append(validationErrors, c.validateServerTimeouts()...)
	}

	if validationErrors.Has() {
		return validationErrors
	}

	return nil
}

func (c *Config) validateServer() ValidationErrors {
	var errors ValidationErrors

	if c.Port == "" {
		errors = append(errors, ValidationError{
			Field:   "port",
			Value:   c.Port,
			Message: "port cannot be empty",
		})
	} else if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, ValidationError{
			Field:   "port",
			Value:   c.Port,
			Message: "port must be a valid integer",
		})
	} else if port < 1 || port > 65535 {
		errors = append(errors, ValidationError{
			Field:   "port",
			Value:   c.Port,
			Message: "port must be between 1 and 65535",
		})
	}

	if c.Environment != "" {
		validEnvs := []string{"development", "production", "test", "staging"}
		if !slices.Contains(validEnvs, c.Environment) {
			errors = append(errors, ValidationError{
				Field:   "environment",
				Value:   c.Environment,
				Message: "environment must be one of: development, production, test, staging",
			})
		}
	}

	return errors
}

func (c *Config) validateAPI() ValidationErrors {
	var errors ValidationErrors

	if c.API.BaseURL == "" {
		return append(errors, ValidationError{
			Field:   "api.base_url",
			Value:   c.API.BaseURL,
			Message: "API base URL cannot be empty",
		})
	}

	parsedURL, err := url.Parse(c.API.BaseURL)
	if err != nil {
		return append(errors, ValidationError{
			Field:   "api.base_url",
			Value:   c.API.BaseURL,
			Message: "API base URL must be a valid URL",
		})
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		errors = append(errors, ValidationError{
			Field:   "api.base_url",
			Value:   parsedURL.Scheme,
			Message: "API base URL must use http or https scheme",
		})
	}

	if parsedURL.Host == "" {
		errors = append(errors, ValidationError{
			Field:   "api.base_url",
			Value:   c.API.BaseURL,
			Message: "API base URL must include host",
		})
	}

	if c.API.Timeout <= 0 {
		errors = append(errors, ValidationError{
			Field:   "api.timeout",
			Value:   c.API.Timeout,
			Message: "API timeout must be greater than 0",
		})
	}

	return errors
}

func (c *Config) validateSession() ValidationErrors {
	var errors ValidationErrors

	switch c.Session.Backend {
	case SessionBackendMemory, SessionBackendFile:
	case SessionBackendRedis:
		if c.Cache.Address == "" {
			errors = append(errors, ValidationError{
				Field:   "cache.address",
				Value:   c.Cache.Address,
				Message: "redis address is required for the redis session backend",
			})
		}
	case SessionBackendPostgres:
		errors = append(errors, c.validateDatabase()...)
	default:
		errors = append(errors, ValidationError{
			Field:   "session.backend",
			Value:   c.Session.Backend,
			Message: "session backend must be one of: memory, redis, postgres, file",
		})
	}

	if c.Session.CookieName == "" {
		errors = append(errors, ValidationError{
			Field:   "session.cookie_name",
			Value:   c.Session.CookieName,
			Message: "session cookie name cannot be empty",
		})
	}

	if c.Session.TTL <= 0 {
		errors = append(errors, ValidationError{
			Field:   "session.ttl",
			Value:   c.Session.TTL,
			Message: "session TTL must be greater than 0",
		})
	}

	if c.Environment == "production" && !c.Session.CookieSecure {
		errors = append(errors, ValidationError{
			Field:   "session.cookie_secure",
			Value:   c.Session.CookieSecure,
			Message: "session cookie must be secure in production",
		})
	}

	return errors
}

func (c *Config) validateDatabase() ValidationErrors {
	var errors ValidationErrors

	if c.DatabaseURL == "" {
		return append(errors, ValidationError{
			Field:   "database_url",
			Value:   c.DatabaseURL,
			Message: "database URL is required for the postgres session backend",
		})
	}

	parsedURL, err := url.Parse(c.DatabaseURL)
	if err != nil {
		return append(errors, ValidationError{
			Field:   "database_url",
			Value:   c.DatabaseURL,
			Message: "database URL must be a valid URL",
		})
	}

	if parsedURL.Scheme != "postgres" && parsedURL.Scheme != "postgresql" {
		errors = append(errors, ValidationError{
			Field:   "database_url",
			Value:   parsedURL.Scheme,
			Message: "database URL must use postgres or postgresql scheme",
		})
	}

	if parsedURL.Host == "" {
		errors = append(errors, ValidationError{
			Field:   "database_url",
			Value:   c.DatabaseURL,
			Message: "database URL must include host",
		})
	}

	if parsedURL.Path == "" || parsedURL.Path == "/" {
		errors = append(errors, ValidationError{
			Field:   "database_url",
			Value:   c.DatabaseURL,
			Message: "database URL must include database name",
		})
	}

	return errors
}

func (c *Config) validateUI() ValidationErrors {
	var errors ValidationErrors

	positive := map[string]int{
		"ui.gallery_page_size": c.UI.GalleryPageSize,
		"ui.search_page_size":  c.UI.SearchPageSize,
		"ui.max_visible_pages": c.UI.MaxVisiblePages,
	}
	for _, field := range []string{"ui.gallery_page_size", "ui.search_page_size", "ui.max_visible_pages"} {
		if positive[field] < 1 || positive[field] > 100 {
			errors = append(errors, ValidationError{
				Field:   field,
				Value:   positive[field],
				Message: "must be between 1 and 100",
			})
		}
	}

	if c.UI.SessionCheckInterval < time.Second {
		errors = append(errors, ValidationError{
			Field:   "ui.session_check_interval",
			Value:   c.UI.SessionCheckInterval,
			Message: "session check interval must be at least 1s",
		})
	}

	if c.UI.ToastDuration <= 0 {
		errors = append(errors, ValidationError{
			Field:   "ui.toast_duration",
			Value:   c.UI.ToastDuration,
			Message: "toast duration must be greater than 0",
		})
	}

	if c.UI.LoginRedirectDelay < 0 {
		errors = append(errors, ValidationError{
			Field:   "ui.login_redirect_delay",
			Value:   c.UI.LoginRedirectDelay,
			Message: "login redirect delay cannot be negative",
		})
	}

	if c.UI.PreviewMaxSide < 1 || c.UI.PreviewMaxSide > 16384 {
		errors = append(errors, ValidationError{
			Field:   "ui.preview_max_side",
			Value:   c.UI.PreviewMaxSide,
			Message: "preview max side must be between 1 and 16384 pixels",
		})
	}

	maxAllowed := int64(200 * 1024 * 1024)
	if c.UI.MaxUploadSize <= 0 || c.UI.MaxUploadSize > maxAllowed {
		errors = append(errors, ValidationError{
			Field:   "ui.max_upload_size",
			Value:   c.UI.MaxUploadSize,
			Message: fmt.Sprintf("max upload size must be between 1 and %d bytes (200MB)", maxAllowed),
		})
	}

	return errors
}

func (c *Config) validateLogging() ValidationErrors {
	var errors ValidationErrors

	validLevels := []string{"debug", "info", "warn", "error"}
	isValidLevel := false
	for _, level := range validLevels {
		if strings.EqualFold(c.Logging.Level, level) {
			isValidLevel = true
			break
		}
	}

	if !isValidLevel {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: "logging level must be one of: debug, info, warn, error",
		})
	}

	validFormats := []string{"json", "console"}
	isValidFormat := false
	for _, format := range validFormats {
		if strings.EqualFold(c.Logging.Format, format) {
			isValidFormat = true
			break
		}
	}

	if !isValidFormat {
		errors = append(errors, ValidationError{
			Field:   "logging.format",
			Value:   c.Logging.Format,
			Message: "logging format must be either 'json' or 'console'",
		})
	}

	return errors
}

func (c *Config) validateServerTimeouts() ValidationErrors {
	var errors ValidationErrors

	if c.Server.ReadTimeout <= 0 {
		errors = append(errors, ValidationError{
			Field:   "server.read_timeout",
			Value:   c.Server.ReadTimeout,
			Message: "read timeout must be greater than 0",
		})
	} else if c.Server.ReadTimeout > 5*time.Minute {
		errors = append(errors, ValidationError{
			Field:   "server.read_timeout",
			Value:   c.Server.ReadTimeout,
			Message: "read timeout should not exceed 5 minutes",
		})
	}

	if c.Server.WriteTimeout <= 0 {
		errors = append(errors, ValidationError{
			Field:   "server.write_timeout",
			Value:   c.Server.WriteTimeout,
			Message: "write timeout must be greater than 0",
		})
	} else if c.Server.WriteTimeout > 5*time.Minute {
		errors = append(errors, ValidationError{
			Field:   "server.write_timeout",
			Value:   c.Server.WriteTimeout,
			Message: "write timeout should not exceed 5 minutes",
		})
	}

	if c.Server.IdleTimeout <= 0 {
		errors = append(errors, ValidationError{
			Field:   "server.idle_timeout",
			Value:   c.Server.IdleTimeout,
			Message: "idle timeout must be greater than 0",
		})
	}

	return errors
}
