package apiclient

import (
	"context"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// Refresh outcomes recorded on the refresh counter
const (
	refreshSucceeded = "succeeded"
	refreshShared    = "shared"
	refreshReused    = "reused"
	refreshMissing   = "missing"
	refreshFailed    = "failed"
)

type clientMetrics struct {
	refreshes metric.Int64Counter
	duration  metric.Float64Histogram
}

// newClientMetrics never fails; instruments that cannot be created fall back
// to no-ops and are skipped when recording
func newClientMetrics(meter metric.Meter) *clientMetrics {
	m := &clientMetrics{}
	if counter, err := meter.Int64Counter(
		"apiclient.token.refreshes",
		metric.WithDescription("Access token refresh attempts by outcome"),
		metric.WithUnit("{refresh}"),
	); err == nil {
		m.refreshes = counter
	}
	if hist, err := meter.Float64Histogram(
		"http.client.request.duration",
		metric.WithDescription("Duration of upstream API requests"),
		metric.WithUnit("s"),
	); err == nil {
		m.duration = hist
	}
	return m
}

func (m *clientMetrics) recordRefresh(ctx context.Context, outcome string) {
	if m.refreshes == nil {
		return
	}
	m.refreshes.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (m *clientMetrics) recordDuration(ctx context.Context, d time.Duration, attrs ...attribute.KeyValue) {
	if m.duration == nil {
		return
	}
	m.duration.Record(ctx, d.Seconds(), metric.WithAttributes(attrs...))
}

// do sends req inside a client span and propagates the trace context upstream
func (c *Client) do(req *http.Request) (*http.Response, error) {
	ctx, span := c.tracer.Start(req.Context(), req.Method+" "+req.URL.Path,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			semconv.HTTPRequestMethodKey.String(req.Method),
			semconv.URLFull(req.URL.String()),
			semconv.ServerAddress(req.URL.Hostname()),
		),
	)
	defer span.End()

	req = req.WithContext(ctx)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	elapsed := time.Since(start)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.metrics.recordDuration(ctx, elapsed,
			semconv.HTTPRequestMethodKey.String(req.Method),
			attribute.String("error.type", "transport"),
		)
		c.logger.Debug(ctx).Err(err).Str("method", req.Method).Str("path", req.URL.Path).Msg("Upstream request failed")
		return nil, err
	}

	span.SetAttributes(semconv.HTTPResponseStatusCode(resp.StatusCode))
	if resp.StatusCode >= 500 {
		span.SetStatus(codes.Error, http.StatusText(resp.StatusCode))
	}
	c.metrics.recordDuration(ctx, elapsed,
		semconv.HTTPRequestMethodKey.String(req.Method),
		semconv.HTTPResponseStatusCode(resp.StatusCode),
	)
	c.logger.Debug(ctx).
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Int("status", resp.StatusCode).
		Dur("duration", elapsed).
		Msg("Upstream request")

	return resp, nil
}
