package types

type Pace string

const (
	PaceRelaxed  Pace = "relaxed"
	PaceModerate Pace = "moderate"
	PaceIntense  Pace = "intense"
)

func (p Pace) Valid() bool {
	switch p {
	case PaceRelaxed, PaceModerate, PaceIntense:
		return true
	}
	return false
}

const (
	MinParticipants = 1
	MaxParticipants = 50
)

// FocusArtistChoices are the artists offered by the preferences form.
var FocusArtistChoices = []string{"Bernini", "Borromini", "Caravaggio", "P. da Cortona", "A. Pozzo"}

// UserPreferences drives itinerary generation. FocusArtists has set
// semantics: membership is toggled, never duplicated.
type UserPreferences struct {
	StartTime     string   `json:"startTime"`
	Participants  int      `json:"participants"`
	Pace          Pace     `json:"pace"`
	Accessibility bool     `json:"accessibility"`
	FocusArtists  []string `json:"focusArtists"`
}

// DefaultPreferences returns the values the form starts with.
func DefaultPreferences() UserPreferences {
	return UserPreferences{
		StartTime:     "09:00",
		Participants:  2,
		Pace:          PaceModerate,
		Accessibility: false,
		FocusArtists:  []string{},
	}
}

// Clone returns a copy that shares no slices with p.
func (p UserPreferences) Clone() UserPreferences {
	c := p
	c.FocusArtists = append([]string{}, p.FocusArtists...)
	return c
}

// UpdatePreferencesParams is a partial update of the preferences form.
type UpdatePreferencesParams struct {
	StartTime     *string `json:"startTime,omitempty"`
	Participants  *int    `json:"participants,omitempty"`
	Pace          *Pace   `json:"pace,omitempty"`
	Accessibility *bool   `json:"accessibility,omitempty"`
}
