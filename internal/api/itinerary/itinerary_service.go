package itinerary

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"google.golang.org/genai"

	"github.com/FACorreiaa/roma-barocca-planner/app/observability/metrics"
	generativeAI "github.com/FACorreiaa/roma-barocca-planner/internal/api/generative_ai"
	"github.com/FACorreiaa/roma-barocca-planner/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

// Service generates a one-day Baroque itinerary from user preferences.
type Service interface {
	Generate(ctx context.Context, prefs types.UserPreferences) (*types.Itinerary, error)
}

type ServiceImpl struct {
	logger      *slog.Logger
	aiClient    generativeAI.AIClientInterface
	locale      *Locale
	temperature float32
	metrics     *metrics.AppMetrics
	now         func() time.Time
}

func NewServiceImpl(aiClient generativeAI.AIClientInterface, locale *Locale, temperature float32, appMetrics *metrics.AppMetrics, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:      logger,
		aiClient:    aiClient,
		locale:      locale,
		temperature: temperature,
		metrics:     appMetrics,
		now:         time.Now,
	}
}

// WithClock replaces the clock used to stamp the itinerary date.
func (s *ServiceImpl) WithClock(now func() time.Time) *ServiceImpl {
	s.now = now
	return s
}

func (s *ServiceImpl) generationConfig() *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		SystemInstruction: generativeAI.SystemInstruction(itinerarySystemInstruction),
		Tools:             []*genai.Tool{generativeAI.GoogleMapsTool()},
	}
	if s.temperature > 0 {
		config.Temperature = genai.Ptr(s.temperature)
	}
	return config
}

func (s *ServiceImpl) Generate(ctx context.Context, prefs types.UserPreferences) (*types.Itinerary, error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "Generate")
	defer span.End()

	l := s.logger.With(slog.String("method", "Generate"))
	l.DebugContext(ctx, "Generating itinerary",
		slog.String("start_time", prefs.StartTime),
		slog.String("pace", string(prefs.Pace)),
		slog.Int("participants", prefs.Participants))

	started := time.Now()
	resp, err := s.aiClient.GenerateResponse(ctx, getItineraryPrompt(prefs), s.generationConfig())
	if err != nil {
		l.ErrorContext(ctx, "AI request failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "AI request failed")
		s.record(ctx, "transport_error", started)
		return nil, fmt.Errorf("%w: %w", types.ErrTransport, err)
	}

	itinerary, err := s.buildItinerary(generativeAI.ResponseText(resp))
	if err != nil {
		l.WarnContext(ctx, "Model returned an unusable itinerary", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Malformed itinerary")
		s.record(ctx, "malformed", started)
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("itinerary.stops", len(itinerary.Stops)),
		attribute.String("itinerary.total_distance", itinerary.TotalDistance),
	)
	s.record(ctx, "success", started)
	l.InfoContext(ctx, "Itinerary generated",
		slog.String("title", itinerary.Title),
		slog.Int("stops", len(itinerary.Stops)))
	span.SetStatus(codes.Ok, "Itinerary generated")
	return itinerary, nil
}

func (s *ServiceImpl) buildItinerary(text string) (*types.Itinerary, error) {
	jsonStr, err := extractJSONObject(text)
	if err != nil {
		return nil, err
	}
	raw, err := parseItinerary(jsonStr)
	if err != nil {
		return nil, err
	}

	now := s.now()
	title := strings.TrimSpace(raw.Title)
	if title == "" {
		title = DefaultTitle
	}
	it := &types.Itinerary{
		Title:       title,
		Date:        s.locale.FormatDate(now),
		Stops:       toStops(raw.Stops),
		GeneratedAt: now,
	}
	if len(it.Stops) > 1 {
		it.TotalDistance = s.locale.FormatDistance(routeLengthKm(it.Stops))
	}
	if d, ok := routeDuration(it.Stops); ok {
		it.TotalTime = formatDuration(d)
	}
	return it, nil
}

func (s *ServiceImpl) record(ctx context.Context, outcome string, started time.Time) {
	if s.metrics == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	s.metrics.GenerationsTotal.Add(ctx, 1, attrs)
	s.metrics.GenerationDurationSeconds.Record(ctx, time.Since(started).Seconds(), attrs)
}
