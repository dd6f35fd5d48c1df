package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/FACorreiaa/roma-barocca-planner/internal/types"
)

// GreetingMessage opens every transcript.
const GreetingMessage = "Ciao! Sono BerniniBot. Chiedimi qualsiasi cosa sulla Roma Barocca, biglietti o dove trovare il miglior gelato vicino alla tua prossima tappa!"

// Session is one planning session. All fields are guarded by mu, and mu is
// never held across a model call.
type Session struct {
	mu sync.Mutex

	id             uuid.UUID
	state          types.SessionState
	chatState      types.ChatState
	preferences    types.UserPreferences
	itinerary      *types.Itinerary
	selectedStopID *string
	transcript     []types.ChatMessage
	createdAt      time.Time
	updatedAt      time.Time
}

func newSession(now time.Time) *Session {
	return &Session{
		id:          uuid.New(),
		state:       types.StateIdle,
		chatState:   types.ChatIdle,
		preferences: types.DefaultPreferences(),
		transcript: []types.ChatMessage{{
			Role:      types.RoleModel,
			Text:      GreetingMessage,
			Timestamp: now,
		}},
		createdAt: now,
		updatedAt: now,
	}
}

func (s *Session) ID() uuid.UUID { return s.id }

func copyID(id *string) *string {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

// snapshot must be called with mu held. The itinerary is shared: it is
// replaced, never mutated, once stored.
func (s *Session) snapshot() *types.SessionSnapshot {
	return &types.SessionSnapshot{
		ID:             s.id,
		State:          s.state,
		ChatState:      s.chatState,
		Preferences:    s.preferences.Clone(),
		Itinerary:      s.itinerary,
		SelectedStopID: copyID(s.selectedStopID),
		Transcript:     append([]types.ChatMessage{}, s.transcript...),
		CreatedAt:      s.createdAt,
		UpdatedAt:      s.updatedAt,
	}
}
