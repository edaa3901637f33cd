package server

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/studybuddy/studybuddy-api/internal/app"
	"github.com/studybuddy/studybuddy-api/internal/config"
	"github.com/studybuddy/studybuddy-api/internal/handlers"
	"github.com/studybuddy/studybuddy-api/internal/middleware"
	"github.com/studybuddy/studybuddy-api/internal/service/account"
	matchsvc "github.com/studybuddy/studybuddy-api/internal/service/match"
	"github.com/studybuddy/studybuddy-api/internal/ws"
)

// NewRouter wires all handlers and middleware into the request tree.
// Auth endpoints sit outside the bearer-auth middleware but inside rate
// limiting; everything under /api/v1 except /auth requires a valid token.
func NewRouter(
	appCtx *app.AppContext,
	cfg *config.Config,
	accounts *account.Service,
	matches *matchsvc.Service,
	hub *ws.Hub,
) *mux.Router {
	authHandler := handlers.NewAuthHandler(accounts)
	profileHandler := handlers.NewProfileHandler(accounts)
	matchHandler := handlers.NewMatchHandler(matches)
	wsHandler := handlers.NewWSHandler(hub, cfg.Auth, appCtx.Logger)

	root := mux.NewRouter()
	root.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	root.HandleFunc("/ws", wsHandler.Serve).Methods(http.MethodGet)

	api := root.PathPrefix("/api/v1").Subrouter()

	public := api.PathPrefix("/auth").Subrouter()
	public.HandleFunc("/register", authHandler.Register).Methods(http.MethodPost)
	public.HandleFunc("/login", authHandler.Login).Methods(http.MethodPost)
	public.Use(func(next http.Handler) http.Handler {
		return middleware.RateLimit(next, appCtx.RedisCache, cfg.RateLimit, appCtx.Logger)
	})

	private := api.NewRoute().Subrouter()
	private.HandleFunc("/profile", profileHandler.Get).Methods(http.MethodGet)
	private.HandleFunc("/profile", profileHandler.Update).Methods(http.MethodPut)

	private.HandleFunc("/matches", matchHandler.List).Methods(http.MethodGet)
	private.HandleFunc("/matches/discover", matchHandler.Discover).Methods(http.MethodGet)
	private.HandleFunc("/matches/count", matchHandler.Count).Methods(http.MethodGet)
	private.HandleFunc("/matches/{matchID:[0-9]+}", matchHandler.Get).Methods(http.MethodGet)
	private.HandleFunc("/matches/{matchID:[0-9]+}/like", matchHandler.ToggleLike).Methods(http.MethodPost)
	private.HandleFunc("/matches/{matchID:[0-9]+}/rating", matchHandler.AddRating).Methods(http.MethodPost)
	private.HandleFunc("/matches/{matchID:[0-9]+}/decline", matchHandler.Decline).Methods(http.MethodPost)
	private.HandleFunc("/matches/{matchID:[0-9]+}/block", matchHandler.Block).Methods(http.MethodPost)
	private.HandleFunc("/matches/{matchID:[0-9]+}/unblock", matchHandler.Unblock).Methods(http.MethodPost)
	private.HandleFunc("/matches/{matchID:[0-9]+}/interactions", matchHandler.RecordInteraction).Methods(http.MethodPost)

	private.Use(func(next http.Handler) http.Handler {
		return middleware.Auth(next, cfg.Auth)
	})
	private.Use(func(next http.Handler) http.Handler {
		return middleware.RateLimit(next, appCtx.RedisCache, cfg.RateLimit, appCtx.Logger)
	})

	return root
}
