package container

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/FACorreiaa/roma-barocca-planner/app/observability/metrics"
	"github.com/FACorreiaa/roma-barocca-planner/config"
	"github.com/FACorreiaa/roma-barocca-planner/internal/api/export"
	generativeAI "github.com/FACorreiaa/roma-barocca-planner/internal/api/generative_ai"
	"github.com/FACorreiaa/roma-barocca-planner/internal/api/itinerary"
	llmChat "github.com/FACorreiaa/roma-barocca-planner/internal/api/llm_chat"
	"github.com/FACorreiaa/roma-barocca-planner/internal/api/session"
)

// Container holds all application dependencies
type Container struct {
	Config         *config.Config
	Logger         *slog.Logger
	AIClient       generativeAI.AIClientInterface
	SessionRepo    *session.CacheRepository
	SessionService *session.ServiceImpl
	SessionHandler *session.Handler
}

// NewContainer builds the dependency graph around an existing AI client.
func NewContainer(cfg *config.Config, aiClient generativeAI.AIClientInterface, appMetrics *metrics.AppMetrics, logger *slog.Logger) (*Container, error) {
	locale, err := itinerary.NewLocale(cfg.Locale.Tag, cfg.Locale.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to configure locale: %w", err)
	}

	itineraryService := itinerary.NewServiceImpl(aiClient, locale, cfg.AI.Temperature, appMetrics, logger)
	chatService := llmChat.NewServiceImpl(aiClient, cfg.AI.Temperature, appMetrics, logger)

	exportService, err := export.NewServiceImpl(export.Options{
		CreditLine:       cfg.Export.CreditLine,
		LinkText:         cfg.Export.LinkText,
		LinkURL:          cfg.Export.LinkURL,
		FallbackTimezone: cfg.Locale.Timezone,
	}, appMetrics, logger)
	if err != nil {
		return nil, err
	}

	sessionRepo := session.NewCacheRepository(cfg.Session.TTL, cfg.Session.CleanupInterval, appMetrics, logger)
	sessionService := session.NewServiceImpl(sessionRepo, itineraryService, chatService, cfg.Chat.HistoryLimit, logger)
	sessionHandler := session.NewHandler(sessionService, exportService, logger)

	return &Container{
		Config:         cfg,
		Logger:         logger,
		AIClient:       aiClient,
		SessionRepo:    sessionRepo,
		SessionService: sessionService,
		SessionHandler: sessionHandler,
	}, nil
}

// NewGeminiContainer connects to Gemini with the configured credential and
// builds the container on top of it.
func NewGeminiContainer(ctx context.Context, cfg *config.Config, appMetrics *metrics.AppMetrics, logger *slog.Logger) (*Container, error) {
	aiClient, err := generativeAI.NewAIClient(ctx, cfg.AI.APIKey, cfg.AI.Model, logger)
	if err != nil {
		logger.Error("Failed to create AI client", slog.Any("error", err))
		return nil, err
	}
	return NewContainer(cfg, aiClient, appMetrics, logger)
}
