package tools

import (
	"context"
	"fmt"
	"strings"
)

// WeatherTool reports canned conditions for a couple of demo locations.
// A real provider can replace it behind the same interface.
type WeatherTool struct{}

func (WeatherTool) Name() string { return "get_current_weather" }

// Run matches the location case-insensitively by substring, so both
// "Chicago, IL" and "downtown chicago, il" hit the same report.
func (WeatherTool) Run(_ context.Context, args map[string]any) (string, error) {
	location, _ := args["location"].(string)
	if location == "" {
		return "", fmt.Errorf("missing location argument")
	}

	switch loc := strings.ToLower(location); {
	case strings.Contains(loc, "chicago, il"):
		return "It's 75 degrees Fahrenheit and sunny in Chicago, IL. There's a slight breeze.", nil
	case strings.Contains(loc, "new york, ny"):
		return "It's 80 degrees Fahrenheit and humid in New York, NY.", nil
	default:
		return fmt.Sprintf("Weather information not available for %s.", location), nil
	}
}
