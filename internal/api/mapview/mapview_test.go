package mapview

import (
	"encoding/json"
	"testing"

	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/roma-barocca-planner/internal/types"
)

func testItinerary() *types.Itinerary {
	return &types.Itinerary{
		Title: "Test",
		Stops: []types.Stop{
			{ID: "stop-0", Name: "Basilica di San Pietro", Coordinates: types.Coordinates{Lat: 41.9022, Lng: 12.4539}, ArrivalTime: "09:00", DepartureTime: "10:30", Type: types.StopTypeStart},
			{ID: "stop-1", Name: "Sant'Ivo alla Sapienza", Coordinates: types.Coordinates{Lat: 41.8986, Lng: 12.4743}, ArrivalTime: "11:00", DepartureTime: "11:30", Type: types.StopTypeStop},
			{ID: "stop-2", Name: "Galleria Borghese", Coordinates: types.Coordinates{Lat: 41.9142, Lng: 12.4921}, ArrivalTime: "15:00", DepartureTime: "16:30", Type: types.StopTypeEnd},
		},
	}
}

func TestProject_NoItinerary(t *testing.T) {
	view := Project(nil, nil)

	assert.Equal(t, RomeCenter, view.Center)
	assert.Equal(t, 13, view.Zoom)
	assert.Empty(t, view.Markers)
	assert.Nil(t, view.Route)
	assert.Nil(t, view.Viewport)
	assert.Nil(t, view.GeoJSON)
	assert.Equal(t, TileURL, view.Tiles.URL)
}

func TestProject_MarkersAndRoute(t *testing.T) {
	view := Project(testItinerary(), nil)

	require.Len(t, view.Markers, 3)
	for i, m := range view.Markers {
		assert.Equal(t, i+1, m.Label)
		assert.Equal(t, 1.0, m.Opacity)
		assert.False(t, m.Selected)
	}
	assert.Equal(t, "1. Basilica di San Pietro", view.Markers[0].PopupTitle)
	assert.Equal(t, "09:00 - 10:30", view.Markers[0].PopupDetail)

	require.NotNil(t, view.Route)
	assert.Equal(t, "#ea580c", view.Route.Color)
	assert.Equal(t, 4, view.Route.Weight)
	assert.Equal(t, "5, 10", view.Route.DashArray)
	assert.Equal(t, 0.9, view.Route.Opacity)
	require.Len(t, view.Route.Positions, 3)
	assert.Equal(t, 41.9022, view.Route.Positions[0].Lat)
	assert.NotEmpty(t, view.Route.EncodedPolyline)

	require.NotNil(t, view.Viewport)
	assert.Equal(t, types.Coordinates{Lat: 41.8986, Lng: 12.4539}, view.Viewport.SouthWest)
	assert.Equal(t, types.Coordinates{Lat: 41.9142, Lng: 12.4921}, view.Viewport.NorthEast)
	assert.Equal(t, [2]int{50, 50}, view.Viewport.PaddingPx)
	assert.InDelta(t, 41.9064, view.Center.Lat, 1e-9)
	assert.InDelta(t, 12.473, view.Center.Lng, 1e-9)
}

func TestProject_SelectionDimsOthers(t *testing.T) {
	selected := "stop-1"
	view := Project(testItinerary(), &selected)

	assert.Equal(t, DimmedOpacity, view.Markers[0].Opacity)
	assert.Equal(t, 1.0, view.Markers[1].Opacity)
	assert.True(t, view.Markers[1].Selected)
	assert.Equal(t, DimmedOpacity, view.Markers[2].Opacity)
}

func TestProject_IsPure(t *testing.T) {
	it := testItinerary()
	selected := "stop-2"
	a, err := json.Marshal(Project(it, &selected))
	require.NoError(t, err)
	b, err := json.Marshal(Project(it, &selected))
	require.NoError(t, err)
	assert.JSONEq(t, string(a), string(b))
}

func TestProject_GeoJSON(t *testing.T) {
	view := Project(testItinerary(), nil)

	fc, ok := view.GeoJSON.(*geojson.FeatureCollection)
	require.True(t, ok)
	require.Len(t, fc.Features, 4)
	assert.Equal(t, "Point", fc.Features[0].Geometry.GeoJSONType())
	assert.Equal(t, "stop-0", fc.Features[0].Properties["stopId"])
	assert.Equal(t, "LineString", fc.Features[3].Geometry.GeoJSONType())

	raw, err := json.Marshal(fc)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"FeatureCollection"`)
}
