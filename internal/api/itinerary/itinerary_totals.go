package itinerary

import (
	"fmt"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"github.com/FACorreiaa/roma-barocca-planner/internal/types"
)

const clockLayout = "15:04"

// routeLengthKm is the great-circle length of the polyline through the stops.
func routeLengthKm(stops []types.Stop) float64 {
	if len(stops) < 2 {
		return 0
	}
	line := make(orb.LineString, 0, len(stops))
	for _, s := range stops {
		line = append(line, orb.Point{s.Coordinates.Lng, s.Coordinates.Lat})
	}
	return geo.Length(line) / 1000
}

// routeDuration spans the first arrival to the last departure. The second
// return is false when either time is unparseable or the span is negative.
func routeDuration(stops []types.Stop) (time.Duration, bool) {
	if len(stops) == 0 {
		return 0, false
	}
	start, err := time.Parse(clockLayout, stops[0].ArrivalTime)
	if err != nil {
		return 0, false
	}
	end, err := time.Parse(clockLayout, stops[len(stops)-1].DepartureTime)
	if err != nil {
		return 0, false
	}
	d := end.Sub(start)
	if d < 0 {
		return 0, false
	}
	return d, true
}

func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	if hours == 0 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dh %02dm", hours, minutes)
}
