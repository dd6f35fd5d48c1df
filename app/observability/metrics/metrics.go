package metrics

import (
	"fmt"
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	GenerationsTotal          metric.Int64Counter
	GenerationDurationSeconds metric.Float64Histogram
	ChatMessagesTotal         metric.Int64Counter
	ExportsTotal              metric.Int64Counter
	ActiveSessions            metric.Int64UpDownCounter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// New creates the instruments on the given meter.
func New(meter metric.Meter) (*AppMetrics, error) {
	var err error
	m := &AppMetrics{}

	m.GenerationsTotal, err = meter.Int64Counter(
		"itinerary_generations_total",
		metric.WithDescription("Itinerary generation attempts by outcome"),
		metric.WithUnit("{generation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("itinerary_generations_total: %w", err)
	}

	m.GenerationDurationSeconds, err = meter.Float64Histogram(
		"itinerary_generation_duration_seconds",
		metric.WithDescription("Duration of itinerary generation calls in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("itinerary_generation_duration_seconds: %w", err)
	}

	m.ChatMessagesTotal, err = meter.Int64Counter(
		"chat_messages_total",
		metric.WithDescription("Chat messages answered by outcome"),
		metric.WithUnit("{message}"),
	)
	if err != nil {
		return nil, fmt.Errorf("chat_messages_total: %w", err)
	}

	m.ExportsTotal, err = meter.Int64Counter(
		"itinerary_exports_total",
		metric.WithDescription("Itinerary exports by format and outcome"),
		metric.WithUnit("{export}"),
	)
	if err != nil {
		return nil, fmt.Errorf("itinerary_exports_total: %w", err)
	}

	m.ActiveSessions, err = meter.Int64UpDownCounter(
		"planning_sessions_active",
		metric.WithDescription("Planning sessions currently held in memory"),
		metric.WithUnit("{session}"),
	)
	if err != nil {
		return nil, fmt.Errorf("planning_sessions_active: %w", err)
	}

	return m, nil
}

// InitAppMetrics initializes the global metrics instruments ONLY ONCE.
// It gets the Meter from the globally configured MeterProvider.
func InitAppMetrics() {
	once.Do(func() {
		m, err := New(otel.GetMeterProvider().Meter("RomaBarocca"))
		if err != nil {
			log.Fatalf("Metrics: %v", err)
		}
		log.Println("Application metrics instruments initialized.")
		appMetrics = m
	})
}

// Get returns the globally initialized AppMetrics instance.
// Panics if InitAppMetrics was not called first.
func Get() *AppMetrics {
	if appMetrics == nil {
		panic("metrics instruments not initialized. Call metrics.InitAppMetrics() first.")
	}
	return appMetrics
}
