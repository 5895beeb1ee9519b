package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func TestLogger_TraceCorrelation(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, Config{
		ServiceName: "gallery-portal",
		LogLevel:    "debug",
		LogFormat:   "json",
	})

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	logger.Component("apiclient").Info(ctx).Msg("token refreshed")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "token refreshed", entry["message"])
	assert.Equal(t, "apiclient", entry["component"])
	assert.Equal(t, "gallery-portal", entry["service"])
	assert.Equal(t, traceID.String(), entry["trace_id"])
	assert.Equal(t, spanID.String(), entry["span_id"])
	assert.Equal(t, true, entry["trace_sampled"])
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, Config{ServiceName: "gallery-portal", LogLevel: "warn"})

	logger.Info(context.Background()).Msg("hidden")
	assert.Zero(t, buf.Len())

	logger.Warn(context.Background()).Msg("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNopLogger(t *testing.T) {
	logger := NopLogger()
	assert.NotPanics(t, func() {
		logger.Error(context.Background()).Msg("discarded")
	})
}

func TestLogger_ForSessionTruncatesID(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, Config{LogLevel: "info"})

	logger.ForSession("0123456789abcdef").Info(context.Background()).Msg("page rendered")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "01234567", entry["session"])
	assert.NotContains(t, entry, "service")
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"debug", "debug"},
		{"WARNING", "warn"},
		{" error ", "error"},
		{"", "info"},
		{"verbose", "info"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLogLevel(tt.in).String())
		})
	}
}
