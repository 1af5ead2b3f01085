package tools

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halvard/scout/internal/log"
)

type fakeTool struct {
	name   string
	result string
	err    error
	panics bool
}

func (f fakeTool) Name() string { return f.name }

func (f fakeTool) Run(_ context.Context, _ map[string]any) (string, error) {
	if f.panics {
		panic("boom")
	}
	return f.result, f.err
}

func TestNewRegistryRejectsBadNames(t *testing.T) {
	t.Parallel()

	_, err := NewRegistry(log.NewNop(), fakeTool{name: ""})
	assert.Error(t, err)

	_, err = NewRegistry(log.NewNop(), fakeTool{name: "dup"}, fakeTool{name: "dup"})
	assert.Error(t, err)
}

func TestRegistryNamesSorted(t *testing.T) {
	t.Parallel()

	r, err := NewRegistry(log.NewNop(), fakeTool{name: "zeta"}, fakeTool{name: "alpha"})
	require.NoError(t, err)

	assert.Equal(t, []string{"alpha", "zeta"}, r.Names())
}

func TestInvokeDispatchesWeather(t *testing.T) {
	t.Parallel()

	r, err := NewRegistry(log.NewNop(), WeatherTool{})
	require.NoError(t, err)

	content := r.Invoke(context.Background(), "get_current_weather",
		map[string]any{"location": "Chicago, IL"})

	assert.Contains(t, content, "75")
	assert.Contains(t, content, "sunny")
}

func TestInvokeUnknownToolReturnsContent(t *testing.T) {
	t.Parallel()

	r, err := NewRegistry(log.NewNop())
	require.NoError(t, err)

	content := r.Invoke(context.Background(), "launch_rocket", nil)

	assert.Equal(t, "Tool launch_rocket not found", content)
}

func TestInvokeCapturesToolError(t *testing.T) {
	t.Parallel()

	r, err := NewRegistry(log.NewNop(), fakeTool{name: "flaky", err: errors.New("upstream down")})
	require.NoError(t, err)

	content := r.Invoke(context.Background(), "flaky", nil)

	assert.Contains(t, content, "flaky")
	assert.Contains(t, content, "upstream down")
}

func TestInvokeCapturesPanic(t *testing.T) {
	t.Parallel()

	r, err := NewRegistry(log.NewNop(), fakeTool{name: "fragile", panics: true})
	require.NoError(t, err)

	content := r.Invoke(context.Background(), "fragile", nil)

	assert.Contains(t, content, "fragile")
	assert.Contains(t, content, "boom")
}

func TestWeatherLocations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		location string
		want     string
	}{
		{
			name:     "chicago case-insensitive",
			location: "downtown CHICAGO, IL",
			want:     "It's 75 degrees Fahrenheit and sunny in Chicago, IL. There's a slight breeze.",
		},
		{
			name:     "new york",
			location: "New York, NY",
			want:     "It's 80 degrees Fahrenheit and humid in New York, NY.",
		},
		{
			name:     "unknown location",
			location: "Reykjavik",
			want:     "Weather information not available for Reykjavik.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := WeatherTool{}.Run(context.Background(), map[string]any{"location": tt.location})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWeatherMissingLocation(t *testing.T) {
	t.Parallel()

	_, err := WeatherTool{}.Run(context.Background(), map[string]any{})
	assert.Error(t, err)
}
