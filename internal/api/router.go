package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/rpsarena/rps-arena-go/internal/api/handler"
	apimiddleware "github.com/rpsarena/rps-arena-go/internal/api/middleware"
	"github.com/rpsarena/rps-arena-go/internal/middleware"
	"github.com/rpsarena/rps-arena-go/internal/notify"
	"github.com/rpsarena/rps-arena-go/internal/services/auth"
	"github.com/rpsarena/rps-arena-go/internal/services/match"
	"github.com/rpsarena/rps-arena-go/internal/services/ranking"
	"github.com/rpsarena/rps-arena-go/internal/sse"
	"github.com/rpsarena/rps-arena-go/internal/storage"
)

// RouterConfig holds everything the router wires together
type RouterConfig struct {
	Logger          *slog.Logger
	Storage         storage.Storage
	AuthService     *auth.Service
	MatchController match.ControllerInterface
	RankingService  *ranking.Service
	Broadcaster     *notify.Broadcaster
	HubManager      *sse.HubManager
	GlobalHub       *sse.Hub
}

// NewRouter creates the API router with all routes configured
func NewRouter(cfg RouterConfig) *mux.Router {
	router := mux.NewRouter()

	router.Use(apimiddleware.Recovery(cfg.Logger))
	router.Use(middleware.Logging(cfg.Logger))

	authHandler := handler.NewAuthHandler(cfg.AuthService, cfg.Logger)
	matchHandler := handler.NewMatchHandler(cfg.MatchController, cfg.Storage, cfg.Broadcaster, cfg.Logger)
	rankingHandler := handler.NewRankingHandler(cfg.RankingService, cfg.Logger)
	eventsHandler := handler.NewEventsHandler(cfg.MatchController, cfg.HubManager, cfg.GlobalHub, cfg.Logger)

	api := router.PathPrefix("/api/v1").Subrouter()

	// Public routes
	api.HandleFunc("/auth/register", authHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodPost)

	// Authenticated routes
	protected := api.NewRoute().Subrouter()
	protected.Use(apimiddleware.Auth(cfg.AuthService))

	protected.HandleFunc("/users/me", authHandler.GetMe).Methods(http.MethodGet)

	protected.HandleFunc("/matches", matchHandler.Create).Methods(http.MethodPost)
	protected.HandleFunc("/matches", matchHandler.List).Methods(http.MethodGet)
	protected.HandleFunc("/matches/mine", matchHandler.Mine).Methods(http.MethodGet)
	protected.HandleFunc("/matches/{matchId}", matchHandler.Get).Methods(http.MethodGet)
	protected.HandleFunc("/matches/{matchId}/join", matchHandler.Join).Methods(http.MethodPost)
	protected.HandleFunc("/matches/{matchId}/choice", matchHandler.Choice).Methods(http.MethodPost)
	protected.HandleFunc("/matches/{matchId}/abandon", matchHandler.Abandon).Methods(http.MethodPost)
	protected.HandleFunc("/matches/{matchId}/events", eventsHandler.Room).Methods(http.MethodGet)

	protected.HandleFunc("/ranking", rankingHandler.Get).Methods(http.MethodGet)
	protected.HandleFunc("/events", eventsHandler.Global).Methods(http.MethodGet)

	// Health check
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}).Methods(http.MethodGet)

	return router
}
