package observability

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentationName scopes the portal's HTTP tracer and meter
const InstrumentationName = "gallery-portal/http"

// Attributes describing how the browser issued a request
const (
	attrHTMX       = attribute.Key("portal.htmx")
	attrHTMXTarget = attribute.Key("portal.htmx.target")
)

var uninstrumented = []string{"/healthz", "/readyz"}

// instrumented is false for health checks and static assets
func instrumented(r *http.Request) bool {
	for _, p := range uninstrumented {
		if r.URL.Path == p {
			return false
		}
	}
	return !strings.HasPrefix(r.URL.Path, "/static/")
}

// route is the chi pattern that served r, e.g. /gallery/images/{id}, or the
// raw path when nothing matched
func route(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// outcome is the low-cardinality attribute set shared by spans and metrics
func outcome(r *http.Request, status int) []attribute.KeyValue {
	return []attribute.KeyValue{
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRoute(route(r)),
		semconv.HTTPResponseStatusCode(status),
		attrHTMX.Bool(isHTMX(r)),
	}
}

// statusRecorder remembers what the handler wrote
type statusRecorder struct {
	http.ResponseWriter
	status int
	size   int64
}

func record(w http.ResponseWriter) *statusRecorder {
	return &statusRecorder{ResponseWriter: w, status: http.StatusOK}
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	n, err := s.ResponseWriter.Write(b)
	s.size += int64(n)
	return n, err
}

// Unwrap lets http.ResponseController reach the real writer
func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}

// HTTPMetrics are the portal's server-side instruments
type HTTPMetrics struct {
	duration metric.Float64Histogram
	bodySize metric.Int64Histogram
	inFlight metric.Int64UpDownCounter
}

// NewHTTPMetrics registers the instruments on meter
func NewHTTPMetrics(meter metric.Meter) (*HTTPMetrics, error) {
	duration, err := meter.Float64Histogram("http.server.request.duration",
		metric.WithDescription("Time to answer a browser request"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}
	bodySize, err := meter.Int64Histogram("http.server.response.body.size",
		metric.WithDescription("Size of rendered pages and fragments"),
		metric.WithUnit("By"))
	if err != nil {
		return nil, err
	}
	inFlight, err := meter.Int64UpDownCounter("http.server.active_requests",
		metric.WithDescription("Requests being served"),
		metric.WithUnit("{request}"))
	if err != nil {
		return nil, err
	}
	return &HTTPMetrics{duration: duration, bodySize: bodySize, inFlight: inFlight}, nil
}

// Middleware records one duration and body size sample per request, labelled
// by route, status and whether htmx sent it
func (m *HTTPMetrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !instrumented(r) {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		start := time.Now()
		m.inFlight.Add(ctx, 1)
		defer m.inFlight.Add(ctx, -1)

		rec := record(w)
		next.ServeHTTP(rec, r)

		attrs := metric.WithAttributes(outcome(r, rec.status)...)
		m.duration.Record(ctx, time.Since(start).Seconds(), attrs)
		m.bodySize.Record(ctx, rec.size, attrs)
	})
}

// TracingMiddleware opens a server span per request, continuing any trace
// context the caller sent. The span is renamed to the matched route once
// routing has run.
func TracingMiddleware(tracer trace.Tracer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !instrumented(r) {
				next.ServeHTTP(w, r)
				return
			}

			ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
			ctx, span := tracer.Start(ctx, r.Method+" "+r.URL.Path,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					semconv.URLPath(r.URL.Path),
					semconv.UserAgentOriginal(r.UserAgent()),
					semconv.ClientAddress(r.RemoteAddr),
				),
			)
			defer span.End()
			if target := r.Header.Get("HX-Target"); target != "" {
				span.SetAttributes(attrHTMXTarget.String(target))
			}

			rec := record(w)
			next.ServeHTTP(rec, r.WithContext(ctx))

			span.SetName(r.Method + " " + route(r))
			span.SetAttributes(outcome(r, rec.status)...)
			span.SetAttributes(semconv.HTTPResponseBodySize(int(rec.size)))
			if rec.status >= http.StatusBadRequest {
				span.SetStatus(codes.Error, http.StatusText(rec.status))
			}
		})
	}
}

// HTTPTracer is the global tracer used when no provider tracer is supplied
func HTTPTracer() trace.Tracer {
	return otel.Tracer(InstrumentationName)
}
