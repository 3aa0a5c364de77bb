// ABOUTME: HTTP API for the tribe gamification engine built on chi.
// ABOUTME: Mounts log, progress, team stats, shop, and gift routes plus /health and /metrics.
package api

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/harperreed/tribe/internal/gamification"
	"github.com/harperreed/tribe/internal/storage"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// API serves the engine over HTTP.
type API struct {
	repo   storage.Repository
	engine *gamification.Engine
	logger *log.Logger
}

// New creates an API. A nil logger uses the charmbracelet default.
func New(repo storage.Repository, engine *gamification.Engine, logger *log.Logger) *API {
	if logger == nil {
		logger = log.Default()
	}
	return &API{repo: repo, engine: engine, logger: logger}
}

// Router returns the chi router with all routes mounted.
func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(a.loggingMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/badges", a.handleBadges)

		r.Route("/logs", func(r chi.Router) {
			r.Post("/", a.handleCreateLog)
			r.Delete("/{id}", a.handleDeleteLog)
		})

		r.Route("/users/{user}", func(r chi.Router) {
			r.Get("/state", a.handleState)
			r.Get("/breakdown", a.handleBreakdown)
			r.Post("/commit", a.handleCommit)
			r.Post("/themes/{theme}", a.handlePurchaseTheme)
			r.Post("/gifts", a.handleSendGift)
			r.Get("/quests", a.handleQuests)
			r.Post("/quests/{quest}/complete", a.handleCompleteQuest)
		})

		r.Route("/tribes/{tribe}", func(r chi.Router) {
			r.Get("/stats", a.handleTeamStats)
			r.Get("/leaderboard", a.handleLeaderboard)
		})
	})

	return r
}

func (a *API) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		a.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"took", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
