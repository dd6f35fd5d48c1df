package types

// StopView is one row of the itinerary list.
type StopView struct {
	ID            string   `json:"id"`
	Position      int      `json:"position"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	ArrivalTime   string   `json:"arrivalTime"`
	DepartureTime string   `json:"departureTime"`
	Type          StopType `json:"type"`
	Tips          string   `json:"tips,omitempty"`
	Artists       []string `json:"artists"`
	ArtistBadges  []string `json:"artistBadges"`
	MoreArtists   int      `json:"moreArtists"`
	Selected      bool     `json:"selected"`
	HasConnector  bool     `json:"hasConnector"`
}

type ItineraryView struct {
	Title         string     `json:"title"`
	Date          string     `json:"date"`
	DurationLabel string     `json:"durationLabel"`
	TotalDistance string     `json:"totalDistance,omitempty"`
	TotalTime     string     `json:"totalTime,omitempty"`
	Stops         []StopView `json:"stops"`
}

type ChatView struct {
	Messages      []ChatMessage `json:"messages"`
	Sending       bool          `json:"sending"`
	ScrollToIndex int           `json:"scrollToIndex"`
}

type TileLayer struct {
	URL         string `json:"url"`
	Attribution string `json:"attribution"`
}

type Marker struct {
	StopID      string      `json:"stopId"`
	Label       int         `json:"label"`
	Position    Coordinates `json:"position"`
	PopupTitle  string      `json:"popupTitle"`
	PopupDetail string      `json:"popupDetail"`
	Opacity     float64     `json:"opacity"`
	Selected    bool        `json:"selected"`
}

type RouteLine struct {
	Positions       []Coordinates `json:"positions"`
	EncodedPolyline string        `json:"encodedPolyline"`
	Color           string        `json:"color"`
	Weight          int           `json:"weight"`
	DashArray       string        `json:"dashArray"`
	Opacity         float64       `json:"opacity"`
}

// Viewport is the box a map must fit, with padding in pixels applied by the
// renderer on each side.
type Viewport struct {
	SouthWest Coordinates `json:"southWest"`
	NorthEast Coordinates `json:"northEast"`
	PaddingPx [2]int      `json:"paddingPx"`
}

type MapView struct {
	Center   Coordinates `json:"center"`
	Zoom     int         `json:"zoom"`
	Tiles    TileLayer   `json:"tiles"`
	Markers  []Marker    `json:"markers"`
	Route    *RouteLine  `json:"route,omitempty"`
	Viewport *Viewport   `json:"viewport,omitempty"`
	GeoJSON  any         `json:"geojson,omitempty"`
}

type ExportPDFRequest struct {
	// MapSnapshot is a base64 PNG or JPEG of the map as the client sees it.
	MapSnapshot string `json:"mapSnapshot,omitempty"`
}
