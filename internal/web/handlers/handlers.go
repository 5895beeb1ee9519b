// Package handlers serves the portal's pages and htmx fragments
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/trace"

	"gallery-portal/internal/guard"
	"gallery-portal/internal/observability"
	"gallery-portal/internal/services"
	"gallery-portal/internal/web/views"
)

const (
	// maxMemoryPerUpload is buffered in RAM per request; the rest spills to disk
	maxMemoryPerUpload = 1 << 20

	defaultMaxUploadSize = 50 << 20
)

type Handler struct {
	container *services.Container
	views     *views.Templates
	guard     *guard.Guard
	logger    *observability.Logger
	tracer    trace.Tracer
	metrics   *observability.HTTPMetrics
	version   string
}

// Option customizes a Handler
type Option func(*Handler)

// WithTracer sets the tracer used for handler spans
func WithTracer(tracer trace.Tracer) Option {
	return func(h *Handler) { h.tracer = tracer }
}

// WithMetrics enables the HTTP metrics middleware
func WithMetrics(metrics *observability.HTTPMetrics) Option {
	return func(h *Handler) { h.metrics = metrics }
}

// WithVersion sets the version reported by the probes
func WithVersion(version string) Option {
	return func(h *Handler) { h.version = version }
}

// NewWithContainer creates a handler serving the container's sessions
func NewWithContainer(container *services.Container, opts ...Option) *Handler {
	h := &Handler{
		container: container,
		views:     views.MustParse(),
		logger:    container.Logger().Component("web"),
		tracer:    observability.HTTPTracer(),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.guard = guard.New(h.resolveSession, container.Logger())
	return h
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(observability.TracingMiddleware(h.tracer))
	if h.metrics != nil {
		r.Use(h.metrics.Middleware)
	}

	// Probes
	r.Get("/healthz", h.healthzHandler)
	r.Get("/readyz", h.readyzHandler)

	r.Get("/placeholder/{width}/{height}", h.placeholderHandler)

	r.Group(func(r chi.Router) {
		r.Use(h.sessionMiddleware)
		r.Use(h.guard.Middleware)

		// Auth
		r.Get("/login", h.loginPageHandler)
		r.Get("/login/panel/{panel}", h.loginPanelHandler)
		r.Post("/login", h.loginHandler)
		r.Post("/register", h.registerHandler)
		r.Post("/logout", h.logoutHandler)
		r.Get("/session/check", h.sessionCheckHandler)
		r.Get("/redirect", h.redirectHandler)

		// Gallery
		r.Get("/", h.galleryPageHandler)
		r.Get("/dashboard", h.galleryPageHandler)
		r.Get("/images", h.galleryPageHandler)
		r.Route("/gallery", func(r chi.Router) {
			r.Get("/page/{page}", h.galleryPageFragmentHandler)
			r.Post("/upload", h.uploadImagesHandler)
			r.Delete("/images/{id}", h.deleteImageHandler)
			r.Post("/select/{id}", h.selectImageHandler)
			r.Post("/select-all", h.selectAllHandler)
			r.Post("/delete-selected", h.deleteSelectedHandler)
			r.Get("/preview/{id}", h.previewHandler)
			r.Post("/preview/close", h.closePreviewHandler)
		})

		// Search
		r.Route("/search", func(r chi.Router) {
			r.Get("/", h.searchPageHandler)
			r.Post("/text", h.textSearchHandler)
			r.Post("/image", h.imageSearchHandler)
			r.Get("/page/{page}", h.searchPageFragmentHandler)
			r.Post("/sort", h.sortHandler)
			r.Get("/tab/{mode}", h.searchTabHandler)
		})

		// Image bytes
		r.Get("/files/*", h.fileHandler)
	})

	return r
}

func (h *Handler) maxUploadSize() int64 {
	if size := h.container.Config().UI.MaxUploadSize; size > 0 {
		return size
	}
	return defaultMaxUploadSize
}
