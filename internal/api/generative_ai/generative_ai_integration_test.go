//go:build integration

package generativeAI

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func newIntegrationClient(t *testing.T) *AIClient {
	t.Helper()
	apiKey := os.Getenv("GOOGLE_GEMINI_API_KEY")
	if apiKey == "" {
		t.Skip("Skipping integration test: GOOGLE_GEMINI_API_KEY not set")
	}
	client, err := NewAIClient(context.Background(), apiKey, DefaultModel, slog.Default())
	require.NoError(t, err)
	return client
}

func TestAIClient_GenerateResponse_Integration(t *testing.T) {
	client := newIntegrationClient(t)

	resp, err := client.GenerateResponse(context.Background(), "In quale città si trova la Galleria Borghese? Rispondi con una parola.",
		&genai.GenerateContentConfig{Temperature: genai.Ptr[float32](0.1)})
	require.NoError(t, err)
	assert.Contains(t, strings.ToLower(ResponseText(resp)), "roma")
}

func TestAIClient_ChatResponse_Integration(t *testing.T) {
	client := newIntegrationClient(t)

	history := []*genai.Content{
		genai.NewContentFromText("Mi chiamo Gian Lorenzo.", genai.RoleUser),
		genai.NewContentFromText("Piacere, Gian Lorenzo!", genai.RoleModel),
	}
	resp, err := client.ChatResponse(context.Background(), history, "Come mi chiamo?",
		&genai.GenerateContentConfig{Temperature: genai.Ptr[float32](0.1)})
	require.NoError(t, err)
	assert.Contains(t, ResponseText(resp), "Gian Lorenzo")
}
