package llmChat

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samber/lo"
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

// Service answers questions about the current itinerary. Chat never fails:
// upstream errors surface as FallbackMessage.
type Service interface {
	Chat(ctx context.Context, history []types.ChatMessage, message string, itinerary *types.Itinerary) types.ChatReply
}

type ServiceImpl struct {
	logger      *slog.Logger
	aiClient    generativeAI.AIClientInterface
	temperature float32
	metrics     *metrics.AppMetrics
}

func NewServiceImpl(aiClient generativeAI.AIClientInterface, temperature float32, appMetrics *metrics.AppMetrics, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:      logger,
		aiClient:    aiClient,
		temperature: temperature,
		metrics:     appMetrics,
	}
}

func (s *ServiceImpl) chatConfig(itinerary *types.Itinerary) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		SystemInstruction: generativeAI.SystemInstruction(getChatSystemInstruction(itinerary.StopNames())),
		Tools: []*genai.Tool{
			generativeAI.GoogleSearchTool(),
			generativeAI.GoogleMapsTool(),
		},
	}
	if s.temperature > 0 {
		config.Temperature = genai.Ptr(s.temperature)
	}
	return config
}

// toContents keeps only role and text of each transcript entry.
func toContents(history []types.ChatMessage) []*genai.Content {
	return lo.Map(history, func(m types.ChatMessage, _ int) *genai.Content {
		role := genai.Role(genai.RoleUser)
		if m.Role == types.RoleModel {
			role = genai.RoleModel
		}
		return genai.NewContentFromText(m.Text, role)
	})
}

func (s *ServiceImpl) Chat(ctx context.Context, history []types.ChatMessage, message string, itinerary *types.Itinerary) (reply types.ChatReply) {
	ctx, span := otel.Tracer("LlmChatService").Start(ctx, "Chat")
	defer span.End()

	l := s.logger.With(slog.String("method", "Chat"))
	span.SetAttributes(
		attribute.Int("chat.history_length", len(history)),
		attribute.Bool("chat.has_itinerary", itinerary != nil),
	)

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("chat panic: %v", r)
			l.WarnContext(ctx, "Chat request panicked", slog.Any("error", err))
			span.RecordError(err)
			span.SetStatus(codes.Error, "Chat panicked")
			s.record(ctx, "fallback")
			reply = types.ChatReply{Text: FallbackMessage, Sources: []types.Source{}}
		}
	}()

	resp, err := s.aiClient.ChatResponse(ctx, toContents(history), message, s.chatConfig(itinerary))
	if err != nil {
		l.WarnContext(ctx, "Chat request failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Chat request failed")
		s.record(ctx, "fallback")
		return types.ChatReply{Text: FallbackMessage, Sources: []types.Source{}}
	}

	reply = types.ChatReply{
		Text:    generativeAI.ResponseText(resp),
		Sources: extractSources(resp),
	}
	span.SetAttributes(attribute.Int("chat.sources", len(reply.Sources)))
	l.DebugContext(ctx, "Chat answered", slog.Int("sources", len(reply.Sources)))
	s.record(ctx, "success")
	span.SetStatus(codes.Ok, "Chat answered")
	return reply
}

func (s *ServiceImpl) record(ctx context.Context, outcome string) {
	if s.metrics == nil {
		return
	}
	s.metrics.ChatMessagesTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}
