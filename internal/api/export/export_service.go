package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	_ "time/tzdata"

	"github.com/ringsaturn/tzf"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"

	"github.com/FACorreiaa/roma-barocca-planner/app/observability/metrics"
	"github.com/FACorreiaa/roma-barocca-planner/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

// Service renders an itinerary as a downloadable document.
type Service interface {
	// PDF renders the itinerary. mapSnapshot is an optional base64 image; a
	// snapshot that cannot be used is logged and left out.
	PDF(ctx context.Context, it *types.Itinerary, mapSnapshot string) ([]byte, error)
	ICS(ctx context.Context, it *types.Itinerary) ([]byte, error)
}

// Options are the document texts taken from configuration.
type Options struct {
	CreditLine       string
	LinkText         string
	LinkURL          string
	FallbackTimezone string
}

// timezoneFinder is satisfied by tzf.F.
type timezoneFinder interface {
	GetTimezoneName(lng float64, lat float64) string
}

type ServiceImpl struct {
	logger  *slog.Logger
	options Options
	finder  timezoneFinder
	metrics *metrics.AppMetrics
}

func NewServiceImpl(options Options, appMetrics *metrics.AppMetrics, logger *slog.Logger) (*ServiceImpl, error) {
	finder, err := tzf.NewDefaultFinder()
	if err != nil {
		return nil, fmt.Errorf("failed to load time zone finder: %w", err)
	}
	return &ServiceImpl{
		logger:  logger,
		options: options,
		finder:  finder,
		metrics: appMetrics,
	}, nil
}

func (s *ServiceImpl) PDF(ctx context.Context, it *types.Itinerary, mapSnapshot string) ([]byte, error) {
	ctx, span := otel.Tracer("ExportService").Start(ctx, "PDF")
	defer span.End()

	l := s.logger.With(slog.String("method", "PDF"))
	if it == nil {
		span.SetStatus(codes.Error, "No itinerary")
		return nil, types.ErrNoItinerary
	}

	doc := newPDFDocument(s.options)
	doc.title(it.Title, it.Date)

	if mapSnapshot != "" {
		if err := s.addSnapshot(doc, mapSnapshot); err != nil {
			l.WarnContext(ctx, "Map snapshot skipped", slog.Any("error", err))
			span.AddEvent("Map snapshot skipped")
		} else {
			span.SetAttributes(attribute.Bool("export.snapshot", true))
		}
	}

	doc.table(it.Stops)
	doc.footer()

	out, err := doc.bytes()
	if err != nil {
		l.ErrorContext(ctx, "Failed to render PDF", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Render failed")
		s.record(ctx, "pdf", "error")
		return nil, err
	}

	l.InfoContext(ctx, "PDF exported", slog.Int("bytes", len(out)), slog.Int("stops", len(it.Stops)))
	s.record(ctx, "pdf", "success")
	span.SetStatus(codes.Ok, "PDF exported")
	return out, nil
}

func (s *ServiceImpl) addSnapshot(doc *pdfDocument, encoded string) error {
	img, err := decodeSnapshot(encoded)
	if err != nil {
		return err
	}
	return doc.snapshot(img)
}

// location resolves the time zone at the first stop, falling back to the
// configured zone and then UTC.
func (s *ServiceImpl) location(it *types.Itinerary) *time.Location {
	if len(it.Stops) > 0 && s.finder != nil {
		c := it.Stops[0].Coordinates
		if name := s.finder.GetTimezoneName(c.Lng, c.Lat); name != "" {
			if loc, err := time.LoadLocation(name); err == nil {
				return loc
			}
		}
	}
	if s.options.FallbackTimezone != "" {
		if loc, err := time.LoadLocation(s.options.FallbackTimezone); err == nil {
			return loc
		}
	}
	return time.UTC
}

func (s *ServiceImpl) ICS(ctx context.Context, it *types.Itinerary) ([]byte, error) {
	ctx, span := otel.Tracer("ExportService").Start(ctx, "ICS")
	defer span.End()

	l := s.logger.With(slog.String("method", "ICS"))
	if it == nil {
		span.SetStatus(codes.Error, "No itinerary")
		return nil, types.ErrNoItinerary
	}

	loc := s.location(it)
	cal, skipped := buildCalendar(it, loc)
	if skipped > 0 {
		l.WarnContext(ctx, "Stops without readable times left out of calendar", slog.Int("skipped", skipped))
	}
	span.SetAttributes(attribute.String("export.timezone", loc.String()))

	s.record(ctx, "ics", "success")
	l.InfoContext(ctx, "Calendar exported", slog.String("timezone", loc.String()))
	span.SetStatus(codes.Ok, "Calendar exported")
	return []byte(cal.Serialize()), nil
}

func (s *ServiceImpl) record(ctx context.Context, format, outcome string) {
	if s.metrics == nil {
		return
	}
	s.metrics.ExportsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("format", format),
		attribute.String("outcome", outcome),
	))
}
