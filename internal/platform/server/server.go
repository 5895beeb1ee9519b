// Package server builds the portal's http.Server
package server

import (
	"net"
	"net/http"
	"time"

	"gallery-portal/internal/config"
)

// Fallback timeouts when the config leaves them unset
const (
	defaultReadTimeout  = 15 * time.Second
	defaultWriteTimeout = 15 * time.Second
	defaultIdleTimeout  = 60 * time.Second
)

func New(cfg *config.Config, handler http.Handler) *http.Server {
	readTimeout, writeTimeout, idleTimeout := defaultReadTimeout, defaultWriteTimeout, defaultIdleTimeout
	if s := cfg.Server; s != nil {
		readTimeout = orDefault(s.ReadTimeout, readTimeout)
		writeTimeout = orDefault(s.WriteTimeout, writeTimeout)
		idleTimeout = orDefault(s.IdleTimeout, idleTimeout)
	}

	return &http.Server{
		Addr:              net.JoinHostPort(cfg.Host, cfg.Port),
		Handler:           handler,
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}
}

func orDefault(d, fallback time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return fallback
}
