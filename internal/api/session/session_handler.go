package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/roma-barocca-planner/internal/api"
	"github.com/FACorreiaa/roma-barocca-planner/internal/api/export"
	"github.com/FACorreiaa/roma-barocca-planner/internal/api/mapview"
	"github.com/FACorreiaa/roma-barocca-planner/internal/types"
)

// GenerationFailedMessage is the one notice shown for any generation failure.
const GenerationFailedMessage = "Impossibile generare l'itinerario. Riprova."

type Handler struct {
	sessionService Service
	exportService  export.Service
	logger         *slog.Logger
}

func NewHandler(sessionService Service, exportService export.Service, logger *slog.Logger) *Handler {
	return &Handler{
		sessionService: sessionService,
		exportService:  exportService,
		logger:         logger,
	}
}

func startSpan(r *http.Request, name, route string) (context.Context, trace.Span) {
	return otel.Tracer("SessionHandler").Start(r.Context(), name, trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String(route),
	))
}

func (h *Handler) sessionID(w http.ResponseWriter, r *http.Request, l *slog.Logger) (uuid.UUID, bool) {
	raw := chi.URLParam(r, "sessionID")
	id, err := uuid.Parse(raw)
	if err != nil {
		l.WarnContext(r.Context(), "Invalid session ID format", slog.String("session_id", raw))
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid session ID format")
		return uuid.Nil, false
	}
	return id, true
}

// writeError maps service errors to HTTP status codes.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, l *slog.Logger, err error) {
	switch {
	case errors.Is(err, context.DeadlineExceeded) && r.Context().Err() != nil:
		// middleware.Timeout answers 504 once the request deadline has passed
		l.WarnContext(r.Context(), "Request deadline exceeded", slog.Any("error", err))
	case errors.Is(err, types.ErrSessionNotFound), errors.Is(err, types.ErrStopNotFound):
		api.ErrorResponse(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, types.ErrInvalidPreferences), errors.Is(err, types.ErrEmptyMessage):
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, types.ErrGenerationInProgress),
		errors.Is(err, types.ErrChatInProgress),
		errors.Is(err, types.ErrPreferencesLocked),
		errors.Is(err, types.ErrNoItinerary):
		api.ErrorResponse(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, types.ErrTransport), errors.Is(err, types.ErrMalformedResponse):
		api.ErrorResponse(w, r, http.StatusBadGateway, GenerationFailedMessage)
	default:
		l.ErrorContext(r.Context(), "Unexpected error", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Internal server error")
	}
}

// CreateSession starts a new planning session.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r, "CreateSession", "/sessions")
	defer span.End()
	l := h.logger.With(slog.String("handler", "CreateSession"))

	snap, err := h.sessionService.CreateSession(ctx)
	if err != nil {
		h.writeError(w, r, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusCreated, BuildSessionResponse(snap))
}

// GetSession returns the session with every view projected.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r, "GetSession", "/sessions/{sessionID}")
	defer span.End()
	l := h.logger.With(slog.String("handler", "GetSession"))

	id, ok := h.sessionID(w, r, l)
	if !ok {
		return
	}
	snap, err := h.sessionService.GetSession(ctx, id)
	if err != nil {
		h.writeError(w, r, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, BuildSessionResponse(snap))
}

func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r, "DeleteSession", "/sessions/{sessionID}")
	defer span.End()
	l := h.logger.With(slog.String("handler", "DeleteSession"))

	id, ok := h.sessionID(w, r, l)
	if !ok {
		return
	}
	if err := h.sessionService.DeleteSession(ctx, id); err != nil {
		h.writeError(w, r, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}

func (h *Handler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r, "UpdatePreferences", "/sessions/{sessionID}/preferences")
	defer span.End()
	l := h.logger.With(slog.String("handler", "UpdatePreferences"))

	id, ok := h.sessionID(w, r, l)
	if !ok {
		return
	}
	var params types.UpdatePreferencesParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		l.WarnContext(ctx, "Failed to decode request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	prefs, err := h.sessionService.UpdatePreferences(ctx, id, params)
	if err != nil {
		h.writeError(w, r, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, prefs)
}

func (h *Handler) ToggleArtist(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r, "ToggleArtist", "/sessions/{sessionID}/preferences/artists")
	defer span.End()
	l := h.logger.With(slog.String("handler", "ToggleArtist"))

	id, ok := h.sessionID(w, r, l)
	if !ok {
		return
	}
	var req types.ToggleArtistRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Failed to decode request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	prefs, err := h.sessionService.ToggleArtist(ctx, id, req.Artist)
	if err != nil {
		h.writeError(w, r, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, prefs)
}

// GenerateItinerary blocks until the model answers and returns the updated
// session.
func (h *Handler) GenerateItinerary(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r, "GenerateItinerary", "/sessions/{sessionID}/itinerary")
	defer span.End()
	l := h.logger.With(slog.String("handler", "GenerateItinerary"))

	id, ok := h.sessionID(w, r, l)
	if !ok {
		return
	}
	if _, err := h.sessionService.GenerateItinerary(ctx, id); err != nil {
		h.writeError(w, r, l, err)
		return
	}
	snap, err := h.sessionService.GetSession(ctx, id)
	if err != nil {
		h.writeError(w, r, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, BuildSessionResponse(snap))
}

func (h *Handler) GetItinerary(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r, "GetItinerary", "/sessions/{sessionID}/itinerary")
	defer span.End()
	l := h.logger.With(slog.String("handler", "GetItinerary"))

	id, ok := h.sessionID(w, r, l)
	if !ok {
		return
	}
	snap, err := h.sessionService.GetSession(ctx, id)
	if err != nil {
		h.writeError(w, r, l, err)
		return
	}
	if snap.Itinerary == nil {
		h.writeError(w, r, l, types.ErrNoItinerary)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, BuildItineraryView(snap.Itinerary, snap.SelectedStopID))
}

func (h *Handler) ResetItinerary(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r, "ResetItinerary", "/sessions/{sessionID}/itinerary")
	defer span.End()
	l := h.logger.With(slog.String("handler", "ResetItinerary"))

	id, ok := h.sessionID(w, r, l)
	if !ok {
		return
	}
	if err := h.sessionService.ResetItinerary(ctx, id); err != nil {
		h.writeError(w, r, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}

func (h *Handler) ToggleStopSelection(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r, "ToggleStopSelection", "/sessions/{sessionID}/selection")
	defer span.End()
	l := h.logger.With(slog.String("handler", "ToggleStopSelection"))

	id, ok := h.sessionID(w, r, l)
	if !ok {
		return
	}
	var req types.SelectStopRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Failed to decode request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.StopID == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "stopId is required")
		return
	}

	selected, err := h.sessionService.ToggleStopSelection(ctx, id, req.StopID)
	if err != nil {
		h.writeError(w, r, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, types.SelectionResponse{SelectedStopID: selected})
}

func (h *Handler) ClearSelection(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r, "ClearSelection", "/sessions/{sessionID}/selection")
	defer span.End()
	l := h.logger.With(slog.String("handler", "ClearSelection"))

	id, ok := h.sessionID(w, r, l)
	if !ok {
		return
	}
	if err := h.sessionService.ClearSelection(ctx, id); err != nil {
		h.writeError(w, r, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, types.SelectionResponse{})
}

func (h *Handler) GetMap(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r, "GetMap", "/sessions/{sessionID}/map")
	defer span.End()
	l := h.logger.With(slog.String("handler", "GetMap"))

	id, ok := h.sessionID(w, r, l)
	if !ok {
		return
	}
	snap, err := h.sessionService.GetSession(ctx, id)
	if err != nil {
		h.writeError(w, r, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, mapview.Project(snap.Itinerary, snap.SelectedStopID))
}

func (h *Handler) GetChat(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r, "GetChat", "/sessions/{sessionID}/chat")
	defer span.End()
	l := h.logger.With(slog.String("handler", "GetChat"))

	id, ok := h.sessionID(w, r, l)
	if !ok {
		return
	}
	snap, err := h.sessionService.GetSession(ctx, id)
	if err != nil {
		h.writeError(w, r, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, BuildChatView(snap.Transcript, snap.ChatState == types.ChatSending))
}

func (h *Handler) SendChatMessage(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r, "SendChatMessage", "/sessions/{sessionID}/chat")
	defer span.End()
	l := h.logger.With(slog.String("handler", "SendChatMessage"))

	id, ok := h.sessionID(w, r, l)
	if !ok {
		return
	}
	var req types.ChatRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Failed to decode request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.sessionService.SendChatMessage(ctx, id, req.Message)
	if err != nil {
		h.writeError(w, r, l, err)
		return
	}
	span.SetAttributes(attribute.Int("chat.sources", len(resp.ModelMessage.Sources)))
	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}

func (h *Handler) itineraryFor(ctx context.Context, w http.ResponseWriter, r *http.Request, l *slog.Logger) (*types.Itinerary, bool) {
	id, ok := h.sessionID(w, r, l)
	if !ok {
		return nil, false
	}
	snap, err := h.sessionService.GetSession(ctx, id)
	if err != nil {
		h.writeError(w, r, l, err)
		return nil, false
	}
	if snap.Itinerary == nil {
		h.writeError(w, r, l, types.ErrNoItinerary)
		return nil, false
	}
	return snap.Itinerary, true
}

// ExportPDF renders the itinerary, with the client's map snapshot if sent.
func (h *Handler) ExportPDF(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r, "ExportPDF", "/sessions/{sessionID}/export/pdf")
	defer span.End()
	l := h.logger.With(slog.String("handler", "ExportPDF"))

	it, ok := h.itineraryFor(ctx, w, r, l)
	if !ok {
		return
	}
	var req types.ExportPDFRequest
	if r.ContentLength != 0 {
		if err := api.DecodeJSONBodyLimit(w, r, &req, api.SnapshotBodyLimit); err != nil {
			l.WarnContext(ctx, "Failed to decode request body", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
			return
		}
	}

	out, err := h.exportService.PDF(ctx, it, req.MapSnapshot)
	if err != nil {
		h.writeError(w, r, l, err)
		return
	}
	api.WriteAttachment(w, r, "application/pdf", export.PDFFilename, out)
}

func (h *Handler) ExportICS(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r, "ExportICS", "/sessions/{sessionID}/export/ics")
	defer span.End()
	l := h.logger.With(slog.String("handler", "ExportICS"))

	it, ok := h.itineraryFor(ctx, w, r, l)
	if !ok {
		return
	}
	out, err := h.exportService.ICS(ctx, it)
	if err != nil {
		h.writeError(w, r, l, err)
		return
	}
	api.WriteAttachment(w, r, "text/calendar; charset=utf-8", export.ICSFilename, out)
}
