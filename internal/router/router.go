package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/FACorreiaa/roma-barocca-planner/internal/api/session"
)

// Config contains dependencies needed for the router setup
type Config struct {
	SessionHandler *session.Handler
	MetricsHandler http.Handler
	AllowedOrigins []string
}

// SetupRouter initializes and configures the main application router.
// Server-wide middleware (like logger, requestID, recoverer) are expected
// to be applied *before* mounting this router in main.go.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("pong"))
	})
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	h := cfg.SessionHandler
	r.Route("/api/v1/sessions", func(r chi.Router) {
		r.Post("/", h.CreateSession)

		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", h.GetSession)
			r.Delete("/", h.DeleteSession)

			r.Patch("/preferences", h.UpdatePreferences)
			r.Post("/preferences/artists", h.ToggleArtist)

			r.Post("/itinerary", h.GenerateItinerary)
			r.Get("/itinerary", h.GetItinerary)
			r.Delete("/itinerary", h.ResetItinerary)

			r.Post("/selection", h.ToggleStopSelection)
			r.Delete("/selection", h.ClearSelection)

			r.Get("/map", h.GetMap)

			r.Get("/chat", h.GetChat)
			r.Post("/chat", h.SendChatMessage)

			r.Post("/export/pdf", h.ExportPDF)
			r.Get("/export/ics", h.ExportICS)
		})
	})

	return r
}
