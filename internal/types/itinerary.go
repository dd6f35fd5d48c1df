package types

import "time"

type StopType string

const (
	StopTypeStart StopType = "start"
	StopTypeStop  StopType = "stop"
	StopTypeEnd   StopType = "end"
)

// Valid reports whether t is one of the known stop types.
func (t StopType) Valid() bool {
	switch t {
	case StopTypeStart, StopTypeStop, StopTypeEnd:
		return true
	}
	return false
}

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Stop is a single visit of the itinerary. ID is assigned by the generator
// from the stop position and never changes afterwards.
type Stop struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Description   string      `json:"description"`
	Coordinates   Coordinates `json:"coordinates"`
	ArrivalTime   string      `json:"arrivalTime"`   // HH:MM
	DepartureTime string      `json:"departureTime"` // HH:MM
	Artists       []string    `json:"artists"`
	Tips          string      `json:"tips,omitempty"`
	Type          StopType    `json:"type"`
}

// Itinerary is the ordered day plan. Sequence order is visit order, display
// order and polyline order.
type Itinerary struct {
	Title         string    `json:"title"`
	Date          string    `json:"date"`
	Stops         []Stop    `json:"stops"`
	TotalDistance string    `json:"totalDistance,omitempty"`
	TotalTime     string    `json:"totalTime,omitempty"`
	GeneratedAt   time.Time `json:"generatedAt"`
}

// FindStop returns the stop with the given id.
func (it *Itinerary) FindStop(id string) (Stop, bool) {
	if it == nil {
		return Stop{}, false
	}
	for _, s := range it.Stops {
		if s.ID == id {
			return s, true
		}
	}
	return Stop{}, false
}

// StopNames lists the stop names in sequence order.
func (it *Itinerary) StopNames() []string {
	if it == nil {
		return nil
	}
	names := make([]string, 0, len(it.Stops))
	for _, s := range it.Stops {
		names = append(names, s.Name)
	}
	return names
}
