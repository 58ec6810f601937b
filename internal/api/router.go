package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mcoot/gideon/internal/api/handler"
	"github.com/mcoot/gideon/internal/api/middleware"
	"github.com/mcoot/gideon/internal/command"
	commonmw "github.com/mcoot/gideon/internal/middleware"
	"github.com/mcoot/gideon/internal/services/auth"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger      *slog.Logger
	AuthService *auth.Service
	Executor    *command.Executor
	Clans       handler.ClanDirectory
	// Gatherer serves /metrics when set
	Gatherer prometheus.Gatherer
	// HTTPMetrics records request counts when set
	HTTPMetrics *commonmw.HTTPMetrics
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	sessionHandler := handler.NewSessionHandler(cfg.AuthService)
	clanHandler := handler.NewClanHandler(cfg.Executor, cfg.Clans)
	playerHandler := handler.NewPlayerHandler(cfg.Executor)
	registryHandler := handler.NewRegistryHandler(cfg.Executor)
	commandHandler := handler.NewCommandHandler(cfg.Executor)
	healthHandler := handler.NewHealthHandler(cfg.Clans)

	// Create middleware
	callerMiddleware := middleware.Caller(cfg.AuthService)
	loggingMiddleware := commonmw.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware. Permission checks happen per
	// operation against the caller resolved here.
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)
	if cfg.HTTPMetrics != nil {
		api.Use(cfg.HTTPMetrics.Middleware)
	}
	api.Use(callerMiddleware)

	// Health check endpoint
	api.HandleFunc("/health", healthHandler.Check).Methods(http.MethodGet)

	// Sessions
	api.HandleFunc("/sessions", sessionHandler.Login).Methods(http.MethodPost)
	api.Handle("/sessions", middleware.RequireSession(http.HandlerFunc(sessionHandler.Logout))).Methods(http.MethodDelete)

	// Clans
	api.HandleFunc("/clans", clanHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/clans/{name}/roles", clanHandler.Roles).Methods(http.MethodGet)
	api.HandleFunc("/clans/{name}/size", clanHandler.Size).Methods(http.MethodGet)
	api.HandleFunc("/clans/{name}/roster", clanHandler.Roster).Methods(http.MethodGet)
	api.HandleFunc("/size", clanHandler.TotalSize).Methods(http.MethodGet)
	api.HandleFunc("/clans/{name}/sync", clanHandler.Sync).Methods(http.MethodPost)
	api.HandleFunc("/rosters", clanHandler.AllRosters).Methods(http.MethodGet)

	// Players
	api.HandleFunc("/players/link", playerHandler.Link).Methods(http.MethodPost)
	api.HandleFunc("/players/{name}", playerHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/players/{name}", playerHandler.Unlink).Methods(http.MethodDelete)
	api.HandleFunc("/players/{name}/clans/{clan}", playerHandler.SetRole).Methods(http.MethodPatch)

	// Registry maintenance
	api.HandleFunc("/registry/backup", registryHandler.Backup).Methods(http.MethodPost)
	api.HandleFunc("/registry/backups", registryHandler.Backups).Methods(http.MethodGet)
	api.HandleFunc("/registry/update", registryHandler.Update).Methods(http.MethodPost)
	api.HandleFunc("/registry/dedupe", registryHandler.Dedupe).Methods(http.MethodPost)

	// Free-text commands, as typed in chat
	api.HandleFunc("/commands", commandHandler.Exec).Methods(http.MethodPost)

	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	return r
}
