// Package mapview projects an itinerary and the current selection onto the
// data a tile map client renders: markers, route line and viewport.
package mapview

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/twpayne/go-polyline"

	"github.com/FACorreiaa/roma-barocca-planner/internal/types"
)

const (
	DefaultZoom    = 13
	ViewportPadPx  = 50
	DimmedOpacity  = 0.6
	RouteColor     = "#ea580c"
	RouteWeight    = 4
	RouteDashArray = "5, 10"
	RouteOpacity   = 0.9

	TileURL         = "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png"
	TileAttribution = `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors`
)

// RomeCenter is shown before any itinerary exists.
var RomeCenter = types.Coordinates{Lat: 41.9028, Lng: 12.4964}

func point(c types.Coordinates) orb.Point {
	return orb.Point{c.Lng, c.Lat}
}

func coords(p orb.Point) types.Coordinates {
	return types.Coordinates{Lat: p.Lat(), Lng: p.Lon()}
}

// Project is pure: the same itinerary and selection always give the same view.
func Project(it *types.Itinerary, selectedID *string) types.MapView {
	view := types.MapView{
		Center:  RomeCenter,
		Zoom:    DefaultZoom,
		Tiles:   types.TileLayer{URL: TileURL, Attribution: TileAttribution},
		Markers: []types.Marker{},
	}
	if it == nil || len(it.Stops) == 0 {
		return view
	}

	hasSelection := selectedID != nil
	points := make(orb.MultiPoint, 0, len(it.Stops))
	positions := make([]types.Coordinates, 0, len(it.Stops))
	latLngs := make([][]float64, 0, len(it.Stops))
	fc := geojson.NewFeatureCollection()

	for i, stop := range it.Stops {
		selected := hasSelection && *selectedID == stop.ID
		opacity := 1.0
		if hasSelection && !selected {
			opacity = DimmedOpacity
		}
		view.Markers = append(view.Markers, types.Marker{
			StopID:      stop.ID,
			Label:       i + 1,
			Position:    stop.Coordinates,
			PopupTitle:  fmt.Sprintf("%d. %s", i+1, stop.Name),
			PopupDetail: fmt.Sprintf("%s - %s", stop.ArrivalTime, stop.DepartureTime),
			Opacity:     opacity,
			Selected:    selected,
		})

		p := point(stop.Coordinates)
		points = append(points, p)
		positions = append(positions, stop.Coordinates)
		latLngs = append(latLngs, []float64{stop.Coordinates.Lat, stop.Coordinates.Lng})

		f := geojson.NewFeature(p)
		f.Properties["stopId"] = stop.ID
		f.Properties["label"] = i + 1
		f.Properties["name"] = stop.Name
		f.Properties["type"] = string(stop.Type)
		f.Properties["selected"] = selected
		fc.Append(f)
	}

	line := geojson.NewFeature(orb.LineString(points))
	line.Properties["kind"] = "route"
	line.Properties["stroke"] = RouteColor
	fc.Append(line)

	bound := points.Bound()
	view.Center = coords(bound.Center())
	view.Viewport = &types.Viewport{
		SouthWest: coords(bound.Min),
		NorthEast: coords(bound.Max),
		PaddingPx: [2]int{ViewportPadPx, ViewportPadPx},
	}
	view.Route = &types.RouteLine{
		Positions:       positions,
		EncodedPolyline: string(polyline.EncodeCoords(latLngs)),
		Color:           RouteColor,
		Weight:          RouteWeight,
		DashArray:       RouteDashArray,
		Opacity:         RouteOpacity,
	}
	view.GeoJSON = fc
	return view
}
