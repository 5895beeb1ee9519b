package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSamplerFor(t *testing.T) {
	tests := []struct {
		name    string
		sampler string
		arg     string
		want    string
		wantErr bool
	}{
		{name: "always on", sampler: SamplerAlwaysOn, want: "AlwaysOnSampler"},
		{name: "always off", sampler: SamplerAlwaysOff, want: "AlwaysOffSampler"},
		{name: "ratio", sampler: SamplerTraceIDRatio, arg: "0.5", want: "TraceIDRatioBased{0.5}"},
		{name: "parent ratio", sampler: SamplerParentBasedTraceIDRatio, arg: "0.25", want: "ParentBased{root:TraceIDRatioBased{0.25}"},
		{name: "bad ratio", sampler: SamplerTraceIDRatio, arg: "half", wantErr: true},
		{name: "unknown", sampler: "sometimes", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := samplerFor(tt.sampler, tt.arg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, s.Description(), tt.want)
		})
	}
}

func TestNewProvider_Disabled(t *testing.T) {
	ctx := context.Background()
	p, err := NewProvider(ctx, Config{ServiceName: "gallery-portal"})
	require.NoError(t, err)

	assert.NotNil(t, p.Tracer("test"))
	assert.NotNil(t, p.Meter("test"))
	assert.NoError(t, p.Shutdown(ctx))
}

func TestNewProvider_InvalidConfig(t *testing.T) {
	_, err := NewProvider(context.Background(), Config{})
	assert.Error(t, err)
}

func TestMetricViews(t *testing.T) {
	assert.Len(t, metricViews(), 2)
	assert.IsIncreasing(t, upstreamBuckets)
}
