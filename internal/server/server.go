// Package server exposes the HTTP surface: health check, read-only summary
// and chart endpoints, cron trigger endpoints for external schedulers, and
// the Telegram webhook.
package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/claude/gymbot/internal/storage"
)

// BotDriver is the slice of the bot the HTTP layer needs: webhook delivery
// plus the two externally-triggerable jobs.
type BotDriver interface {
	HandleTelegramUpdate(ctx context.Context, body []byte) error
	CheckDeadlineNudges(ctx context.Context) error
	MorningGreeting(ctx context.Context) error
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store         storage.Store
	bot           BotDriver
	log           *slog.Logger
	apiKey        string
	webhookSecret string
	router        chi.Router
}

// New creates a new Server with all routes configured.
func New(store storage.Store, bot BotDriver, apiKey, webhookSecret string, log *slog.Logger) *Server {
	s := &Server{
		store:         store,
		bot:           bot,
		log:           log,
		apiKey:        apiKey,
		webhookSecret: webhookSecret,
		router:        chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))

	s.router.Get("/healthz", s.handleHealthz)

	// Read-only data endpoints (no auth; tsnet handles access when enabled).
	s.router.Get("/api/v1/summary", s.handleSummary)
	s.router.Get("/api/v1/charts/daily", s.handleDailyChart)

	// Cron trigger endpoints for external schedulers (API key required).
	s.router.Route("/api/v1/cron", func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Post("/nudges", s.handleCronNudges)
		r.Post("/greeting", s.handleCronGreeting)
	})

	// Telegram webhook, guarded by the shared secret token.
	s.router.Post("/telegram/webhook", s.handleTelegramWebhook)
}
