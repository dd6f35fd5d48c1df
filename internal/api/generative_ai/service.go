package generativeAI

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/genai"
)

const DefaultModel = "gemini-2.5-flash"

var ErrMissingAPIKey = errors.New("gemini api key is not set")

// AIClientInterface is the slice of the Gemini client the gateways depend on.
// Tests substitute it with a mock.
type AIClientInterface interface {
	// GenerateResponse runs a single-turn generation.
	GenerateResponse(ctx context.Context, prompt string, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	// ChatResponse opens a chat seeded with history and sends one message.
	ChatResponse(ctx context.Context, history []*genai.Content, message string, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

var _ AIClientInterface = (*AIClient)(nil)

// AIClient holds the one long-lived credentialed connection to Gemini,
// shared by every session.
type AIClient struct {
	client *genai.Client
	model  string
	logger *slog.Logger
}

func NewAIClient(ctx context.Context, apiKey, model string, logger *slog.Logger) (*AIClient, error) {
	ctx, span := otel.Tracer("GenerativeAI").Start(ctx, "NewAIClient")
	defer span.End()

	if apiKey == "" {
		span.RecordError(ErrMissingAPIKey)
		span.SetStatus(codes.Error, "API key not set")
		return nil, ErrMissingAPIKey
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to create Gemini client")
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	span.SetStatus(codes.Ok, "AI client created successfully")
	return &AIClient{
		client: client,
		model:  model,
		logger: logger,
	}, nil
}

// Model returns the model identifier every request is sent to.
func (ai *AIClient) Model() string { return ai.model }

func (ai *AIClient) GenerateResponse(ctx context.Context, prompt string, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	ctx, span := otel.Tracer("GenerativeAI").Start(ctx, "GenerateResponse", trace.WithAttributes(
		attribute.Int("prompt.length", len(prompt)),
		attribute.String("model", ai.model),
	))
	defer span.End()

	result, err := ai.client.Models.GenerateContent(ctx, ai.model, genai.Text(prompt), config)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to generate content")
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	span.SetAttributes(attribute.Int("response.length", len(result.Text())))
	span.SetStatus(codes.Ok, "Content generated successfully")
	return result, nil
}

func (ai *AIClient) ChatResponse(ctx context.Context, history []*genai.Content, message string, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	ctx, span := otel.Tracer("GenerativeAI").Start(ctx, "ChatResponse", trace.WithAttributes(
		attribute.Int("history.length", len(history)),
		attribute.Int("message.length", len(message)),
		attribute.String("model", ai.model),
	))
	defer span.End()

	chat, err := ai.client.Chats.Create(ctx, ai.model, config, history)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to create chat session")
		return nil, fmt.Errorf("failed to create chat: %w", err)
	}

	result, err := chat.SendMessage(ctx, genai.Part{Text: message})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to send message")
		return nil, fmt.Errorf("failed to send message: %w", err)
	}

	span.SetStatus(codes.Ok, "Message sent successfully")
	return result, nil
}

// FirstCandidate returns the first candidate of a response, or nil.
func FirstCandidate(resp *genai.GenerateContentResponse) *genai.Candidate {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil
	}
	return resp.Candidates[0]
}

// ResponseText concatenates the text parts of the first candidate.
func ResponseText(resp *genai.GenerateContentResponse) string {
	if FirstCandidate(resp) == nil {
		return ""
	}
	return resp.Text()
}

// SystemInstruction wraps a system prompt for GenerateContentConfig.
func SystemInstruction(text string) *genai.Content {
	return genai.NewContentFromText(text, genai.RoleUser)
}

// GoogleSearchTool enables web-search grounding.
func GoogleSearchTool() *genai.Tool {
	return &genai.Tool{GoogleSearch: &genai.GoogleSearch{}}
}

// GoogleMapsTool enables Google Maps grounding.
func GoogleMapsTool() *genai.Tool {
	return &genai.Tool{GoogleMaps: &genai.GoogleMaps{}}
}
