package itinerary

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/FACorreiaa/roma-barocca-planner/internal/types"
)

type rawStop struct {
	Name          string            `json:"name"`
	Description   string            `json:"description"`
	Coordinates   types.Coordinates `json:"coordinates"`
	ArrivalTime   string            `json:"arrivalTime"`
	DepartureTime string            `json:"departureTime"`
	Artists       []string          `json:"artists"`
	Tips          string            `json:"tips"`
	Type          types.StopType    `json:"type"`
}

type rawItinerary struct {
	Title string    `json:"title"`
	Stops []rawStop `json:"stops"`
}

// extractJSONObject returns the span from the first '{' to the last '}'.
// The model may wrap the object in prose or markdown fences.
func extractJSONObject(text string) (string, error) {
	first := strings.Index(text, "{")
	last := strings.LastIndex(text, "}")
	if first == -1 || last <= first {
		return "", fmt.Errorf("%w: no JSON object found in model output", types.ErrMalformedResponse)
	}
	return text[first : last+1], nil
}

func parseItinerary(jsonStr string) (*rawItinerary, error) {
	var raw rawItinerary
	if err := json.Unmarshal([]byte(jsonStr), &raw); err != nil {
		return nil, fmt.Errorf("%w: failed to parse itinerary JSON: %v", types.ErrMalformedResponse, err)
	}
	if err := validateStops(raw.Stops); err != nil {
		return nil, err
	}
	return &raw, nil
}

func validateStops(stops []rawStop) error {
	if len(stops) == 0 {
		return fmt.Errorf("%w: itinerary has no stops", types.ErrMalformedResponse)
	}
	for i, s := range stops {
		if strings.TrimSpace(s.Name) == "" {
			return fmt.Errorf("%w: stop %d has no name", types.ErrMalformedResponse, i)
		}
		if !s.Type.Valid() {
			return fmt.Errorf("%w: stop %d has unknown type %q", types.ErrMalformedResponse, i, s.Type)
		}
	}
	if stops[0].Type != types.StopTypeStart {
		return fmt.Errorf("%w: first stop must be of type %q, got %q", types.ErrMalformedResponse, types.StopTypeStart, stops[0].Type)
	}
	if last := stops[len(stops)-1]; last.Type != types.StopTypeEnd {
		return fmt.Errorf("%w: last stop must be of type %q, got %q", types.ErrMalformedResponse, types.StopTypeEnd, last.Type)
	}
	return nil
}

// toStops assigns positional ids and keeps the order received.
func toStops(raw []rawStop) []types.Stop {
	stops := make([]types.Stop, 0, len(raw))
	for i, s := range raw {
		artists := s.Artists
		if artists == nil {
			artists = []string{}
		}
		stops = append(stops, types.Stop{
			ID:            fmt.Sprintf("stop-%d", i),
			Name:          s.Name,
			Description:   s.Description,
			Coordinates:   s.Coordinates,
			ArrivalTime:   s.ArrivalTime,
			DepartureTime: s.DepartureTime,
			Artists:       artists,
			Tips:          s.Tips,
			Type:          s.Type,
		})
	}
	return stops
}
