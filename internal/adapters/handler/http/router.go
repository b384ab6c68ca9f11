package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/vncsmyrnk/publicvoting/internal/core/ports"
)

type RouterConfig struct {
	AllowedOrigins []string
	Auth           ports.OrganizerAuthService
	Settings       ports.SettingsService
}

func NewHandler(votingHandler *VotingHandler, settingsHandler *SettingsHandler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	// An empty origin list would make cors allow every origin.
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/{event}", func(r chi.Router) {
		r.Route("/vote", func(r chi.Router) {
			r.Get("/signup", votingHandler.Overview)
			r.Post("/signup", votingHandler.Signup)
			r.Get("/thanks", votingHandler.Thanks)
			r.Get("/talks/{token}", votingHandler.ListSubmissions)
			r.Post("/talks/{token}", votingHandler.SubmitScores)
		})

		r.Route("/settings/voting", func(r chi.Router) {
			r.Use(RequireOrganizer(cfg.Auth, cfg.Settings))
			r.Get("/", settingsHandler.GetSettings)
			r.Post("/", settingsHandler.UpdateSettings)
			r.Post("/copy", settingsHandler.CopySettings)
			r.Get("/export.csv", settingsHandler.Export)
		})
	})

	return r
}
