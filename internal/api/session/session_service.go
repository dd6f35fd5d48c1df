package session

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/FACorreiaa/roma-barocca-planner/internal/api/itinerary"
	llmChat "github.com/FACorreiaa/roma-barocca-planner/internal/api/llm_chat"
	"github.com/FACorreiaa/roma-barocca-planner/internal/types"
)

const (
	DefaultHistoryLimit = 10

	// EmptyReplyMessage replaces a model answer with no text.
	EmptyReplyMessage = "Scusa, non sono riuscito a elaborare la richiesta."
)

var startTimePattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

var _ Service = (*ServiceImpl)(nil)

// Service drives a planning session through idle, generating and ready, and
// keeps the chat transcript. Each method is also an HTTP endpoint.
type Service interface {
	CreateSession(ctx context.Context) (*types.SessionSnapshot, error)
	GetSession(ctx context.Context, id uuid.UUID) (*types.SessionSnapshot, error)
	DeleteSession(ctx context.Context, id uuid.UUID) error

	UpdatePreferences(ctx context.Context, id uuid.UUID, params types.UpdatePreferencesParams) (*types.UserPreferences, error)
	ToggleArtist(ctx context.Context, id uuid.UUID, artist string) (*types.UserPreferences, error)

	GenerateItinerary(ctx context.Context, id uuid.UUID) (*types.Itinerary, error)
	ResetItinerary(ctx context.Context, id uuid.UUID) error

	ToggleStopSelection(ctx context.Context, id uuid.UUID, stopID string) (*string, error)
	ClearSelection(ctx context.Context, id uuid.UUID) error

	SendChatMessage(ctx context.Context, id uuid.UUID, message string) (*types.ChatResponse, error)
}

type ServiceImpl struct {
	logger       *slog.Logger
	repo         Repository
	generator    itinerary.Service
	chat         llmChat.Service
	historyLimit int
	now          func() time.Time
}

func NewServiceImpl(repo Repository, generator itinerary.Service, chat llmChat.Service, historyLimit int, logger *slog.Logger) *ServiceImpl {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	return &ServiceImpl{
		logger:       logger,
		repo:         repo,
		generator:    generator,
		chat:         chat,
		historyLimit: historyLimit,
		now:          time.Now,
	}
}

// WithClock replaces the clock used for timestamps.
func (s *ServiceImpl) WithClock(now func() time.Time) *ServiceImpl {
	s.now = now
	return s
}

func (s *ServiceImpl) CreateSession(ctx context.Context) (*types.SessionSnapshot, error) {
	ctx, span := otel.Tracer("SessionService").Start(ctx, "CreateSession")
	defer span.End()

	sess := newSession(s.now())
	s.repo.Save(ctx, sess)

	s.logger.InfoContext(ctx, "Session created", slog.String("session_id", sess.id.String()))
	span.SetAttributes(attribute.String("session.id", sess.id.String()))
	span.SetStatus(codes.Ok, "Session created")

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.snapshot(), nil
}

func (s *ServiceImpl) GetSession(ctx context.Context, id uuid.UUID) (*types.SessionSnapshot, error) {
	ctx, span := otel.Tracer("SessionService").Start(ctx, "GetSession")
	defer span.End()

	sess, err := s.repo.Get(ctx, id)
	if err != nil {
		span.SetStatus(codes.Error, "Session not found")
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.snapshot(), nil
}

func (s *ServiceImpl) DeleteSession(ctx context.Context, id uuid.UUID) error {
	ctx, span := otel.Tracer("SessionService").Start(ctx, "DeleteSession")
	defer span.End()

	if err := s.repo.Delete(ctx, id); err != nil {
		span.SetStatus(codes.Error, "Session not found")
		return err
	}
	s.logger.InfoContext(ctx, "Session deleted", slog.String("session_id", id.String()))
	return nil
}

func validatePreferences(p types.UserPreferences) error {
	if !startTimePattern.MatchString(p.StartTime) {
		return fmt.Errorf("%w: start time %q must be HH:MM", types.ErrInvalidPreferences, p.StartTime)
	}
	if p.Participants < types.MinParticipants || p.Participants > types.MaxParticipants {
		return fmt.Errorf("%w: participants must be between %d and %d", types.ErrInvalidPreferences, types.MinParticipants, types.MaxParticipants)
	}
	if !p.Pace.Valid() {
		return fmt.Errorf("%w: unknown pace %q", types.ErrInvalidPreferences, p.Pace)
	}
	return nil
}

func (s *ServiceImpl) UpdatePreferences(ctx context.Context, id uuid.UUID, params types.UpdatePreferencesParams) (*types.UserPreferences, error) {
	ctx, span := otel.Tracer("SessionService").Start(ctx, "UpdatePreferences")
	defer span.End()

	sess, err := s.repo.Get(ctx, id)
	if err != nil {
		span.SetStatus(codes.Error, "Session not found")
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.state == types.StateGenerating {
		span.SetStatus(codes.Error, "Preferences locked")
		return nil, types.ErrPreferencesLocked
	}

	next := sess.preferences.Clone()
	if params.StartTime != nil {
		next.StartTime = *params.StartTime
	}
	if params.Participants != nil {
		next.Participants = *params.Participants
	}
	if params.Pace != nil {
		next.Pace = *params.Pace
	}
	if params.Accessibility != nil {
		next.Accessibility = *params.Accessibility
	}
	if err := validatePreferences(next); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid preferences")
		return nil, err
	}

	sess.preferences = next
	sess.updatedAt = s.now()
	out := next.Clone()
	return &out, nil
}

func (s *ServiceImpl) ToggleArtist(ctx context.Context, id uuid.UUID, artist string) (*types.UserPreferences, error) {
	ctx, span := otel.Tracer("SessionService").Start(ctx, "ToggleArtist")
	defer span.End()

	if !lo.Contains(types.FocusArtistChoices, artist) {
		span.SetStatus(codes.Error, "Unknown artist")
		return nil, fmt.Errorf("%w: unknown artist %q", types.ErrInvalidPreferences, artist)
	}

	sess, err := s.repo.Get(ctx, id)
	if err != nil {
		span.SetStatus(codes.Error, "Session not found")
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.state == types.StateGenerating {
		span.SetStatus(codes.Error, "Preferences locked")
		return nil, types.ErrPreferencesLocked
	}

	if lo.Contains(sess.preferences.FocusArtists, artist) {
		sess.preferences.FocusArtists = lo.Without(sess.preferences.FocusArtists, artist)
	} else {
		sess.preferences.FocusArtists = append(sess.preferences.FocusArtists, artist)
	}
	sess.updatedAt = s.now()
	out := sess.preferences.Clone()
	return &out, nil
}

func (s *ServiceImpl) GenerateItinerary(ctx context.Context, id uuid.UUID) (*types.Itinerary, error) {
	ctx, span := otel.Tracer("SessionService").Start(ctx, "GenerateItinerary")
	defer span.End()

	l := s.logger.With(slog.String("method", "GenerateItinerary"), slog.String("session_id", id.String()))

	sess, err := s.repo.Get(ctx, id)
	if err != nil {
		span.SetStatus(codes.Error, "Session not found")
		return nil, err
	}

	sess.mu.Lock()
	if sess.state == types.StateGenerating {
		sess.mu.Unlock()
		span.SetStatus(codes.Error, "Generation in progress")
		return nil, types.ErrGenerationInProgress
	}
	previous := sess.state
	prefs := sess.preferences.Clone()
	sess.state = types.StateGenerating
	sess.updatedAt = s.now()
	sess.mu.Unlock()

	l.InfoContext(ctx, "Generating itinerary", slog.String("from_state", string(previous)))
	it, genErr := s.generator.Generate(ctx, prefs)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.updatedAt = s.now()

	if genErr != nil {
		sess.state = previous
		l.ErrorContext(ctx, "Itinerary generation failed", slog.Any("error", genErr))
		span.RecordError(genErr)
		span.SetStatus(codes.Error, "Generation failed")
		return nil, fmt.Errorf("failed to generate itinerary: %w", genErr)
	}

	sess.itinerary = it
	sess.selectedStopID = nil
	sess.state = types.StateReady
	span.SetAttributes(attribute.Int("itinerary.stops", len(it.Stops)))
	span.SetStatus(codes.Ok, "Itinerary ready")
	return it, nil
}

func (s *ServiceImpl) ResetItinerary(ctx context.Context, id uuid.UUID) error {
	ctx, span := otel.Tracer("SessionService").Start(ctx, "ResetItinerary")
	defer span.End()

	sess, err := s.repo.Get(ctx, id)
	if err != nil {
		span.SetStatus(codes.Error, "Session not found")
		return err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	switch sess.state {
	case types.StateGenerating:
		return types.ErrGenerationInProgress
	case types.StateIdle:
		return types.ErrNoItinerary
	}
	sess.itinerary = nil
	sess.selectedStopID = nil
	sess.state = types.StateIdle
	sess.updatedAt = s.now()
	return nil
}

func (s *ServiceImpl) ToggleStopSelection(ctx context.Context, id uuid.UUID, stopID string) (*string, error) {
	ctx, span := otel.Tracer("SessionService").Start(ctx, "ToggleStopSelection")
	defer span.End()

	sess, err := s.repo.Get(ctx, id)
	if err != nil {
		span.SetStatus(codes.Error, "Session not found")
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.itinerary == nil {
		return nil, types.ErrNoItinerary
	}
	if _, ok := sess.itinerary.FindStop(stopID); !ok {
		return nil, fmt.Errorf("%w: %s", types.ErrStopNotFound, stopID)
	}

	if sess.selectedStopID != nil && *sess.selectedStopID == stopID {
		sess.selectedStopID = nil
	} else {
		sess.selectedStopID = &stopID
	}
	sess.updatedAt = s.now()
	return copyID(sess.selectedStopID), nil
}

func (s *ServiceImpl) ClearSelection(ctx context.Context, id uuid.UUID) error {
	ctx, span := otel.Tracer("SessionService").Start(ctx, "ClearSelection")
	defer span.End()

	sess, err := s.repo.Get(ctx, id)
	if err != nil {
		span.SetStatus(codes.Error, "Session not found")
		return err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.selectedStopID = nil
	sess.updatedAt = s.now()
	return nil
}

func (s *ServiceImpl) SendChatMessage(ctx context.Context, id uuid.UUID, message string) (*types.ChatResponse, error) {
	ctx, span := otel.Tracer("SessionService").Start(ctx, "SendChatMessage")
	defer span.End()

	if strings.TrimSpace(message) == "" {
		span.SetStatus(codes.Error, "Empty message")
		return nil, types.ErrEmptyMessage
	}

	sess, err := s.repo.Get(ctx, id)
	if err != nil {
		span.SetStatus(codes.Error, "Session not found")
		return nil, err
	}

	sess.mu.Lock()
	if sess.chatState == types.ChatSending {
		sess.mu.Unlock()
		span.SetStatus(codes.Error, "Chat in progress")
		return nil, types.ErrChatInProgress
	}
	start := max(0, len(sess.transcript)-s.historyLimit)
	history := append([]types.ChatMessage{}, sess.transcript[start:]...)
	userMsg := types.ChatMessage{Role: types.RoleUser, Text: message, Timestamp: s.now()}
	sess.transcript = append(sess.transcript, userMsg)
	sess.chatState = types.ChatSending
	current := sess.itinerary
	sess.updatedAt = userMsg.Timestamp
	sess.mu.Unlock()

	span.SetAttributes(attribute.Int("chat.history_length", len(history)))
	reply := s.chat.Chat(ctx, history, message, current)

	text := reply.Text
	if strings.TrimSpace(text) == "" {
		text = EmptyReplyMessage
	}
	modelMsg := types.ChatMessage{Role: types.RoleModel, Text: text, Timestamp: s.now(), Sources: reply.Sources}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.transcript = append(sess.transcript, modelMsg)
	sess.chatState = types.ChatIdle
	sess.updatedAt = modelMsg.Timestamp

	span.SetStatus(codes.Ok, "Chat message answered")
	return &types.ChatResponse{UserMessage: userMsg, ModelMessage: modelMsg}, nil
}
