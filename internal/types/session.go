package types

import (
	"time"

	"github.com/google/uuid"
)

// SessionState is the main state of a planning session.
type SessionState string

const (
	StateIdle       SessionState = "idle"
	StateGenerating SessionState = "generating"
	StateReady      SessionState = "ready"
)

// ChatState is the chat sub-state, independent of SessionState.
type ChatState string

const (
	ChatIdle    ChatState = "idle"
	ChatSending ChatState = "sending"
)

// SessionSnapshot is a consistent copy of a session taken under its lock.
type SessionSnapshot struct {
	ID             uuid.UUID       `json:"id"`
	State          SessionState    `json:"state"`
	ChatState      ChatState       `json:"chatState"`
	Preferences    UserPreferences `json:"preferences"`
	Itinerary      *Itinerary      `json:"itinerary,omitempty"`
	SelectedStopID *string         `json:"selectedStopId"`
	Transcript     []ChatMessage   `json:"transcript"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// SessionResponse is the full session payload returned by the API.
type SessionResponse struct {
	ID             uuid.UUID       `json:"id"`
	State          SessionState    `json:"state"`
	Preferences    UserPreferences `json:"preferences"`
	SelectedStopID *string         `json:"selectedStopId"`
	Itinerary      *ItineraryView  `json:"itinerary,omitempty"`
	Map            MapView         `json:"map"`
	Chat           ChatView        `json:"chat"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

type ToggleArtistRequest struct {
	Artist string `json:"artist"`
}

type SelectStopRequest struct {
	StopID string `json:"stopId"`
}

type SelectionResponse struct {
	SelectedStopID *string `json:"selectedStopId"`
}
