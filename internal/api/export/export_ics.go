package export

import (
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/FACorreiaa/roma-barocca-planner/internal/types"
)

const (
	ICSFilename     = "roma-barocca-itinerary.ics"
	icsProductID    = "-//Roma Barocca//Planner//IT"
	defaultStopSpan = 30 * time.Minute
)

// stopWindow places a stop's HH:MM times on day in loc. A missing or
// inverted departure gets a default span after arrival.
func stopWindow(day time.Time, loc *time.Location, stop types.Stop) (time.Time, time.Time, bool) {
	arrival, err := time.Parse("15:04", stop.ArrivalTime)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	y, m, d := day.In(loc).Date()
	start := time.Date(y, m, d, arrival.Hour(), arrival.Minute(), 0, 0, loc)

	end := start.Add(defaultStopSpan)
	if departure, err := time.Parse("15:04", stop.DepartureTime); err == nil {
		if candidate := time.Date(y, m, d, departure.Hour(), departure.Minute(), 0, 0, loc); candidate.After(start) {
			end = candidate
		}
	}
	return start, end, true
}

func eventDescription(stop types.Stop) string {
	var b strings.Builder
	b.WriteString(stop.Description)
	if len(stop.Artists) > 0 {
		fmt.Fprintf(&b, "\nArtisti: %s", strings.Join(stop.Artists, ", "))
	}
	if stop.Tips != "" {
		fmt.Fprintf(&b, "\nConsiglio: %s", stop.Tips)
	}
	return strings.TrimSpace(b.String())
}

// buildCalendar returns the calendar and the number of stops skipped for
// unreadable times.
func buildCalendar(it *types.Itinerary, loc *time.Location) (*ics.Calendar, int) {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(icsProductID)
	cal.SetXWRCalName(it.Title)
	cal.SetXWRTimezone(loc.String())

	skipped := 0
	for i, stop := range it.Stops {
		start, end, ok := stopWindow(it.GeneratedAt, loc, stop)
		if !ok {
			skipped++
			continue
		}
		event := cal.AddEvent(fmt.Sprintf("%s-%d@roma-barocca", stop.ID, it.GeneratedAt.Unix()))
		event.SetDtStampTime(it.GeneratedAt)
		event.SetStartAt(start)
		event.SetEndAt(end)
		event.SetSummary(fmt.Sprintf("%d. %s", i+1, stop.Name))
		event.SetDescription(eventDescription(stop))
		event.SetLocation(stop.Name)
	}
	return cal, skipped
}
