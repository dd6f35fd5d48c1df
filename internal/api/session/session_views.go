package session

import (
	"strings"

	"github.com/FACorreiaa/roma-barocca-planner/internal/api/mapview"
	"github.com/FACorreiaa/roma-barocca-planner/internal/types"
)

const (
	maxArtistBadges = 2
	durationLabel   = "1 Giorno"
)

// BuildItineraryView returns nil when there is no itinerary.
func BuildItineraryView(it *types.Itinerary, selectedID *string) *types.ItineraryView {
	if it == nil {
		return nil
	}
	stops := make([]types.StopView, 0, len(it.Stops))
	for i, s := range it.Stops {
		badges := s.Artists
		if len(badges) > maxArtistBadges {
			badges = badges[:maxArtistBadges]
		}
		stops = append(stops, types.StopView{
			ID:            s.ID,
			Position:      i + 1,
			Name:          s.Name,
			Description:   s.Description,
			ArrivalTime:   s.ArrivalTime,
			DepartureTime: s.DepartureTime,
			Type:          s.Type,
			Tips:          s.Tips,
			Artists:       append([]string{}, s.Artists...),
			ArtistBadges:  append([]string{}, badges...),
			MoreArtists:   len(s.Artists) - len(badges),
			Selected:      selectedID != nil && *selectedID == s.ID,
			HasConnector:  i < len(it.Stops)-1,
		})
	}
	return &types.ItineraryView{
		Title:         it.Title,
		Date:          it.Date,
		DurationLabel: durationLabel,
		TotalDistance: it.TotalDistance,
		TotalTime:     it.TotalTime,
		Stops:         stops,
	}
}

// BuildChatView anchors scrolling on the newest message, or -1 when empty.
func BuildChatView(transcript []types.ChatMessage, sending bool) types.ChatView {
	return types.ChatView{
		Messages:      append([]types.ChatMessage{}, transcript...),
		Sending:       sending,
		ScrollToIndex: len(transcript) - 1,
	}
}

// CanSend reports whether the send control is enabled.
func CanSend(input string, sending bool) bool {
	return !sending && strings.TrimSpace(input) != ""
}

// BuildSessionResponse assembles every view of a session snapshot.
func BuildSessionResponse(snap *types.SessionSnapshot) types.SessionResponse {
	return types.SessionResponse{
		ID:             snap.ID,
		State:          snap.State,
		Preferences:    snap.Preferences,
		SelectedStopID: snap.SelectedStopID,
		Itinerary:      BuildItineraryView(snap.Itinerary, snap.SelectedStopID),
		Map:            mapview.Project(snap.Itinerary, snap.SelectedStopID),
		Chat:           BuildChatView(snap.Transcript, snap.ChatState == types.ChatSending),
		CreatedAt:      snap.CreatedAt,
		UpdatedAt:      snap.UpdatedAt,
	}
}
