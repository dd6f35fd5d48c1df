package llmChat

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	"google.golang.org/genai"

	"github.com/FACorreiaa/roma-barocca-planner/app/observability/metrics"
	"github.com/FACorreiaa/roma-barocca-planner/internal/types"
)

type MockAIClient struct {
	mock.Mock
}

func (m *MockAIClient) GenerateResponse(ctx context.Context, prompt string, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	args := m.Called(ctx, prompt, config)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*genai.GenerateContentResponse), args.Error(1)
}

func (m *MockAIClient) ChatResponse(ctx context.Context, history []*genai.Content, message string, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	args := m.Called(ctx, history, message, config)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*genai.GenerateContentResponse), args.Error(1)
}

func setupTestService(t *testing.T) (*ServiceImpl, *MockAIClient) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	appMetrics, err := metrics.New(noop.NewMeterProvider().Meter("test"))
	require.NoError(t, err)
	mockAI := new(MockAIClient)
	return NewServiceImpl(mockAI, 0.5, appMetrics, logger), mockAI
}

func chatResponse(text string, chunks ...*genai.GroundingChunk) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content:           &genai.Content{Role: genai.RoleModel, Parts: []*genai.Part{genai.NewPartFromText(text)}},
			GroundingMetadata: &genai.GroundingMetadata{GroundingChunks: chunks},
		}},
	}
}

func systemText(cfg *genai.GenerateContentConfig) string {
	if cfg == nil || cfg.SystemInstruction == nil || len(cfg.SystemInstruction.Parts) == 0 {
		return ""
	}
	return cfg.SystemInstruction.Parts[0].Text
}

func TestServiceImpl_Chat(t *testing.T) {
	ctx := context.Background()
	itinerary := &types.Itinerary{Stops: []types.Stop{{Name: "Basilica di San Pietro"}, {Name: "Galleria Borghese"}}}

	t.Run("Answer with citations in upstream order", func(t *testing.T) {
		service, mockAI := setupTestService(t)
		resp := chatResponse("Sì, è aperta fino alle 19.",
			&genai.GroundingChunk{Web: &genai.GroundingChunkWeb{Title: "Orari", URI: "https://example.org/orari"}},
			&genai.GroundingChunk{Maps: &genai.GroundingChunkMaps{URI: "https://maps.google.com/?cid=1"}},
			&genai.GroundingChunk{},
			&genai.GroundingChunk{Maps: &genai.GroundingChunkMaps{Title: "Sant'Ivo", URI: "https://maps.google.com/?cid=2"}},
		)
		mockAI.On("ChatResponse", mock.Anything, mock.Anything, "È aperta oggi?", mock.MatchedBy(func(cfg *genai.GenerateContentConfig) bool {
			return strings.Contains(systemText(cfg), `Contesto Itinerario Corrente: ["Basilica di San Pietro","Galleria Borghese"]`) &&
				len(cfg.Tools) == 2 && cfg.Tools[0].GoogleSearch != nil && cfg.Tools[1].GoogleMaps != nil
		})).Return(resp, nil).Once()

		reply := service.Chat(ctx, nil, "È aperta oggi?", itinerary)
		assert.Equal(t, "Sì, è aperta fino alle 19.", reply.Text)
		assert.Equal(t, []types.Source{
			{Title: "Orari", URI: "https://example.org/orari"},
			{Title: "Google Maps", URI: "https://maps.google.com/?cid=1"},
			{Title: "Sant'Ivo", URI: "https://maps.google.com/?cid=2"},
		}, reply.Sources)
		mockAI.AssertExpectations(t)
	})

	t.Run("History is forwarded as role and text only", func(t *testing.T) {
		service, mockAI := setupTestService(t)
		history := []types.ChatMessage{
			{Role: types.RoleModel, Text: "Ciao!", Sources: []types.Source{{Title: "x", URI: "y"}}},
			{Role: types.RoleUser, Text: "Chi era Borromini?"},
		}
		mockAI.On("ChatResponse", mock.Anything, mock.MatchedBy(func(h []*genai.Content) bool {
			return len(h) == 2 &&
				h[0].Role == genai.RoleModel && h[0].Parts[0].Text == "Ciao!" && len(h[0].Parts) == 1 &&
				h[1].Role == genai.RoleUser && h[1].Parts[0].Text == "Chi era Borromini?"
		}), "E Bernini?", mock.Anything).Return(chatResponse("Un genio."), nil).Once()

		reply := service.Chat(ctx, history, "E Bernini?", nil)
		assert.Equal(t, "Un genio.", reply.Text)
		assert.Empty(t, reply.Sources)
		mockAI.AssertExpectations(t)
	})

	t.Run("No itinerary context", func(t *testing.T) {
		service, mockAI := setupTestService(t)
		mockAI.On("ChatResponse", mock.Anything, mock.Anything, mock.Anything, mock.MatchedBy(func(cfg *genai.GenerateContentConfig) bool {
			return strings.Contains(systemText(cfg), "Nessun itinerario generato ancora.")
		})).Return(chatResponse("Ok"), nil).Once()

		service.Chat(ctx, nil, "Ciao", nil)
		mockAI.AssertExpectations(t)
	})

	t.Run("Empty text passes through", func(t *testing.T) {
		service, mockAI := setupTestService(t)
		mockAI.On("ChatResponse", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(&genai.GenerateContentResponse{}, nil).Once()

		reply := service.Chat(ctx, nil, "Ciao", itinerary)
		assert.Empty(t, reply.Text)
		assert.Empty(t, reply.Sources)
	})

	t.Run("Transport error falls back", func(t *testing.T) {
		service, mockAI := setupTestService(t)
		mockAI.On("ChatResponse", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, errors.New("quota exceeded")).Once()

		reply := service.Chat(ctx, nil, "Ciao", itinerary)
		assert.Equal(t, FallbackMessage, reply.Text)
		assert.NotNil(t, reply.Sources)
		assert.Empty(t, reply.Sources)
	})

	t.Run("Panic falls back", func(t *testing.T) {
		service, mockAI := setupTestService(t)
		mockAI.On("ChatResponse", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Run(func(mock.Arguments) { panic("boom") }).Once()

		reply := service.Chat(ctx, nil, "Ciao", itinerary)
		assert.Equal(t, FallbackMessage, reply.Text)
	})
}

func TestChatSystemInstruction(t *testing.T) {
	withStops := getChatSystemInstruction([]string{"Sant'Ivo alla Sapienza"})
	assert.Contains(t, withStops, "'BerniniBot'")
	assert.Contains(t, withStops, "storia, logistica, consigli sul cibo e informazioni sui biglietti")
	assert.Contains(t, withStops, `Contesto Itinerario Corrente: ["Sant'Ivo alla Sapienza"]`)
	assert.Contains(t, withStops, "usa Google Search")
	assert.Contains(t, withStops, "usa Google Maps")
	assert.Contains(t, withStops, "RISPONDI SEMPRE IN ITALIANO.")

	empty := getChatSystemInstruction(nil)
	assert.Contains(t, empty, "Nessun itinerario generato ancora.")
	assert.NotContains(t, empty, "Contesto Itinerario Corrente")
}

func TestToContents(t *testing.T) {
	contents := toContents([]types.ChatMessage{
		{Role: types.RoleUser, Text: "Dov'è il Pantheon?"},
		{Role: types.RoleModel, Text: "In Piazza della Rotonda."},
	})

	require.Len(t, contents, 2)
	assert.Equal(t, "user", string(contents[0].Role))
	assert.Equal(t, "model", string(contents[1].Role))
	assert.Equal(t, "In Piazza della Rotonda.", contents[1].Parts[0].Text)
}
