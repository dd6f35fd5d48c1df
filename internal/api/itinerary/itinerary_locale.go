package itinerary

import (
	"fmt"
	"time"
	_ "time/tzdata"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var supportedLocales = []language.Tag{
	language.Italian,
	language.AmericanEnglish,
	language.BritishEnglish,
	language.German,
	language.French,
	language.Spanish,
}

// dateLayouts is indexed like supportedLocales. Numeric day/month with no
// zero padding, the way a browser prints a short local date.
var dateLayouts = []string{
	"2/1/2006",
	"1/2/2006",
	"02/01/2006",
	"2.1.2006",
	"02/01/2006",
	"2/1/2006",
}

var localeMatcher = language.NewMatcher(supportedLocales)

// Locale formats dates and numbers for the configured display language.
type Locale struct {
	tag        language.Tag
	dateLayout string
	location   *time.Location
	printer    *message.Printer
}

// NewLocale resolves tag to the closest supported locale. An unknown tag
// falls back to Italian.
func NewLocale(tag, timezone string) (*Locale, error) {
	requested, err := language.Parse(tag)
	if err != nil {
		return nil, fmt.Errorf("invalid locale tag %q: %w", tag, err)
	}
	_, idx, _ := localeMatcher.Match(requested)

	loc := time.UTC
	if timezone != "" {
		loc, err = time.LoadLocation(timezone)
		if err != nil {
			return nil, fmt.Errorf("invalid timezone %q: %w", timezone, err)
		}
	}

	return &Locale{
		tag:        supportedLocales[idx],
		dateLayout: dateLayouts[idx],
		location:   loc,
		printer:    message.NewPrinter(supportedLocales[idx]),
	}, nil
}

func (l *Locale) Tag() language.Tag { return l.tag }

func (l *Locale) Location() *time.Location { return l.location }

func (l *Locale) FormatDate(t time.Time) string {
	return t.In(l.location).Format(l.dateLayout)
}

func (l *Locale) FormatDistance(km float64) string {
	return l.printer.Sprintf("%.1f km", km)
}
