package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.opentelemetry.io/otel/metric/noop"
	"google.golang.org/genai"

	appLogger "github.com/FACorreiaa/roma-barocca-planner/app/logger"
	"github.com/FACorreiaa/roma-barocca-planner/app/observability/metrics"
	"github.com/FACorreiaa/roma-barocca-planner/config"
	"github.com/FACorreiaa/roma-barocca-planner/internal/container"
	"github.com/FACorreiaa/roma-barocca-planner/internal/types"
)

type mockAIClient struct {
	mock.Mock
}

func (m *mockAIClient) GenerateResponse(ctx context.Context, prompt string, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	args := m.Called(ctx, prompt, config)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*genai.GenerateContentResponse), args.Error(1)
}

func (m *mockAIClient) ChatResponse(ctx context.Context, history []*genai.Content, message string, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	args := m.Called(ctx, history, message, config)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*genai.GenerateContentResponse), args.Error(1)
}

func modelText(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Role: genai.RoleModel, Parts: []*genai.Part{genai.NewPartFromText(text)}},
		}},
	}
}

const generatedItinerary = `Ecco il tuo itinerario:
{
  "title": "Il Seicento in un giorno",
  "stops": [
    {"name": "Basilica di San Pietro", "coordinates": {"lat": 41.9022, "lng": 12.4539}, "description": "Il Baldacchino.",
     "arrivalTime": "09:00", "departureTime": "10:30", "artists": ["Gian Lorenzo Bernini"], "type": "start"},
    {"name": "Sant'Agnese in Agone", "coordinates": {"lat": 41.8989, "lng": 12.4723}, "description": "Piazza Navona.",
     "arrivalTime": "11:00", "departureTime": "11:45", "artists": ["Francesco Borromini", "Gian Lorenzo Bernini"], "type": "stop"},
    {"name": "San Luigi dei Francesi", "coordinates": {"lat": 41.8997, "lng": 12.4746}, "description": "La cappella Contarelli.",
     "arrivalTime": "12:00", "departureTime": "12:40", "artists": ["Caravaggio"], "tips": "Porta monete per l'illuminazione.", "type": "stop"},
    {"name": "Galleria Borghese", "coordinates": {"lat": 41.9142, "lng": 12.4921}, "description": "Apollo e Dafne.",
     "arrivalTime": "15:00", "departureTime": "17:00", "artists": ["Gian Lorenzo Bernini", "Caravaggio"], "type": "end"}
  ]
}`

// newTestApp builds the full server stack over a mocked model.
func newTestApp(tb testing.TB) (http.Handler, *mockAIClient) {
	tb.Helper()
	cfg, err := config.InitConfig()
	require.NoError(tb, err)

	logger := appLogger.New("production", io.Discard)
	appMetrics, err := metrics.New(noop.NewMeterProvider().Meter("test"))
	require.NoError(tb, err)

	ai := new(mockAIClient)
	c, err := container.NewContainer(&cfg, ai, appMetrics, logger)
	require.NoError(tb, err)

	metricsHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("# HELP roma_sessions_active"))
	})
	return newHTTPHandler(&cfg, c, metricsHandler, logger), ai
}

// E2ETestSuite drives the planner over a real HTTP listener.
type E2ETestSuite struct {
	suite.Suite
	server  *httptest.Server
	client  *http.Client
	baseURL string
	ai      *mockAIClient
}

func (s *E2ETestSuite) SetupTest() {
	handler, ai := newTestApp(s.T())
	s.ai = ai
	s.server = httptest.NewServer(handler)
	s.baseURL = s.server.URL
	s.client = &http.Client{Timeout: 30 * time.Second}
}

func (s *E2ETestSuite) TearDownTest() {
	if s.server != nil {
		s.server.Close()
	}
}

func (s *E2ETestSuite) makeRequest(method, path string, body any) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, s.baseURL+path, reqBody)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return s.client.Do(req)
}

// doJSON performs a request, checks the status and decodes the body into out.
func (s *E2ETestSuite) doJSON(method, path string, body any, wantStatus int, out any) {
	t := s.T()
	resp, err := s.makeRequest(method, path, body)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, wantStatus, resp.StatusCode, string(raw))
	if out != nil {
		require.NoError(t, json.Unmarshal(raw, out), string(raw))
	}
}

func (s *E2ETestSuite) createSession() string {
	var created types.SessionResponse
	s.doJSON(http.MethodPost, "/api/v1/sessions", nil, http.StatusCreated, &created)
	return "/api/v1/sessions/" + created.ID.String()
}

func (s *E2ETestSuite) TestCompletePlanningWorkflow() {
	t := s.T()

	t.Log("Step 1: opening a session")
	var created types.SessionResponse
	s.doJSON(http.MethodPost, "/api/v1/sessions", nil, http.StatusCreated, &created)
	base := "/api/v1/sessions/" + created.ID.String()
	assert.Equal(t, types.StateIdle, created.State)
	require.Len(t, created.Chat.Messages, 1)
	assert.Equal(t, types.RoleModel, created.Chat.Messages[0].Role)

	t.Log("Step 2: choosing preferences")
	var prefs types.UserPreferences
	s.doJSON(http.MethodPatch, base+"/preferences", map[string]any{
		"startTime":     "09:00",
		"participants":  4,
		"pace":          "intense",
		"accessibility": true,
	}, http.StatusOK, &prefs)
	assert.Equal(t, 4, prefs.Participants)
	assert.True(t, prefs.Accessibility)

	s.doJSON(http.MethodPost, base+"/preferences/artists", types.ToggleArtistRequest{Artist: "Borromini"}, http.StatusOK, &prefs)
	assert.Contains(t, prefs.FocusArtists, "Borromini")

	t.Log("Step 3: generating the itinerary")
	s.ai.On("GenerateResponse", mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, "intenso") && strings.Contains(p, "Borromini") && strings.Contains(p, "evita le scale")
	}), mock.Anything).Return(modelText(generatedItinerary), nil).Once()

	var ready types.SessionResponse
	s.doJSON(http.MethodPost, base+"/itinerary", nil, http.StatusOK, &ready)
	assert.Equal(t, types.StateReady, ready.State)
	require.NotNil(t, ready.Itinerary)
	assert.Equal(t, "Il Seicento in un giorno", ready.Itinerary.Title)
	require.Len(t, ready.Itinerary.Stops, 4)
	assert.Len(t, ready.Map.Markers, 4)
	assert.NotEmpty(t, ready.Itinerary.TotalDistance)

	t.Log("Step 4: focusing a stop")
	var selection types.SelectionResponse
	s.doJSON(http.MethodPost, base+"/selection", types.SelectStopRequest{StopID: "stop-3"}, http.StatusOK, &selection)
	require.NotNil(t, selection.SelectedStopID)
	assert.Equal(t, "stop-3", *selection.SelectedStopID)

	var view types.MapView
	s.doJSON(http.MethodGet, base+"/map", nil, http.StatusOK, &view)
	assert.Equal(t, 1.0, view.Markers[3].Opacity)
	assert.Equal(t, 0.6, view.Markers[0].Opacity)

	t.Log("Step 5: asking the guide")
	s.ai.On("ChatResponse", mock.Anything, mock.Anything, "Serve prenotare la Galleria Borghese?", mock.Anything).
		Return(&genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{
				Content: &genai.Content{Role: genai.RoleModel, Parts: []*genai.Part{genai.NewPartFromText("Sì, la prenotazione è obbligatoria.")}},
				GroundingMetadata: &genai.GroundingMetadata{GroundingChunks: []*genai.GroundingChunk{
					{Web: &genai.GroundingChunkWeb{Title: "Galleria Borghese", URI: "https://galleriaborghese.beniculturali.it"}},
				}},
			}},
		}, nil).Once()

	var chat types.ChatResponse
	s.doJSON(http.MethodPost, base+"/chat", types.ChatRequest{Message: "Serve prenotare la Galleria Borghese?"}, http.StatusOK, &chat)
	assert.Equal(t, "Sì, la prenotazione è obbligatoria.", chat.ModelMessage.Text)
	require.Len(t, chat.ModelMessage.Sources, 1)
	assert.Equal(t, "https://galleriaborghese.beniculturali.it", chat.ModelMessage.Sources[0].URI)

	t.Log("Step 6: exporting")
	resp, err := s.makeRequest(http.MethodGet, base+"/export/ics", nil)
	require.NoError(t, err)
	ics, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), ".ics")
	assert.Equal(t, 4, strings.Count(string(ics), "BEGIN:VEVENT"))

	resp, err = s.makeRequest(http.MethodPost, base+"/export/pdf", nil)
	require.NoError(t, err)
	pdf, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))

	t.Log("Step 7: starting over")
	s.doJSON(http.MethodDelete, base+"/itinerary", nil, http.StatusNoContent, nil)

	var reset types.SessionResponse
	s.doJSON(http.MethodGet, base, nil, http.StatusOK, &reset)
	assert.Equal(t, types.StateIdle, reset.State)
	assert.Nil(t, reset.Itinerary)
	assert.Nil(t, reset.SelectedStopID)

	s.ai.AssertExpectations(t)
}

func (s *E2ETestSuite) TestConcurrentSessions() {
	t := s.T()
	s.ai.On("GenerateResponse", mock.Anything, mock.Anything, mock.Anything).Return(modelText(generatedItinerary), nil)

	const numSessions = 5
	bases := make([]string, numSessions)
	for i := range bases {
		bases[i] = s.createSession()
	}

	var wg sync.WaitGroup
	codes := make([]int, numSessions)
	for i, base := range bases {
		wg.Add(1)
		go func(i int, base string) {
			defer wg.Done()
			resp, err := s.makeRequest(http.MethodPost, base+"/itinerary", nil)
			if err != nil {
				return
			}
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			codes[i] = resp.StatusCode
		}(i, base)
	}
	wg.Wait()

	for i, code := range codes {
		assert.Equal(t, http.StatusOK, code, "session %d", i)
	}

	// every session keeps its own itinerary and selection
	var sel types.SelectionResponse
	s.doJSON(http.MethodPost, bases[0]+"/selection", types.SelectStopRequest{StopID: "stop-2"}, http.StatusOK, &sel)
	var other types.SessionResponse
	s.doJSON(http.MethodGet, bases[1], nil, http.StatusOK, &other)
	assert.Nil(t, other.SelectedStopID)
	assert.Equal(t, types.StateReady, other.State)
}

func (s *E2ETestSuite) TestRejectsInvalidInput() {
	base := s.createSession()

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"malformed session id", http.MethodGet, "/api/v1/sessions/not-a-uuid", nil, http.StatusBadRequest},
		{"unknown session", http.MethodGet, fmt.Sprintf("/api/v1/sessions/%s", "6f1c2e1a-8d3b-4c6a-9e0f-123456789abc"), nil, http.StatusNotFound},
		{"start time out of range", http.MethodPatch, base + "/preferences", map[string]any{"startTime": "25:00"}, http.StatusBadRequest},
		{"unknown preference field", http.MethodPatch, base + "/preferences", map[string]any{"budget": 3}, http.StatusBadRequest},
		{"artist outside the catalogue", http.MethodPost, base + "/preferences/artists", types.ToggleArtistRequest{Artist: "Raffaello"}, http.StatusBadRequest},
		{"selection without itinerary", http.MethodPost, base + "/selection", types.SelectStopRequest{StopID: "stop-1"}, http.StatusConflict},
		{"reset without itinerary", http.MethodDelete, base + "/itinerary", nil, http.StatusConflict},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			resp, err := s.makeRequest(tt.method, tt.path, tt.body)
			s.Require().NoError(err)
			resp.Body.Close()
			s.Equal(tt.want, resp.StatusCode)
		})
	}
}

func (s *E2ETestSuite) TestOperationalEndpoints() {
	resp, err := s.makeRequest(http.MethodGet, "/ping", nil)
	s.Require().NoError(err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("pong", string(body))

	resp, err = s.makeRequest(http.MethodGet, "/metrics", nil)
	s.Require().NoError(err)
	resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)
}

// TestE2E runs the complete end-to-end test suite
func TestE2E(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E tests in short mode")
	}

	suite.Run(t, new(E2ETestSuite))
}
