package main

import (
	"context"

	"github.com/joho/godotenv"

	"github.com/studybuddy/studybuddy-api/internal/app"
	"github.com/studybuddy/studybuddy-api/internal/cache"
	"github.com/studybuddy/studybuddy-api/internal/config"
	"github.com/studybuddy/studybuddy-api/internal/db"
	"github.com/studybuddy/studybuddy-api/internal/logger"
	"github.com/studybuddy/studybuddy-api/internal/server"
	"github.com/studybuddy/studybuddy-api/internal/service/account"
	matchsvc "github.com/studybuddy/studybuddy-api/internal/service/match"
	"github.com/studybuddy/studybuddy-api/internal/ws"
)

// hubNotifier adapts *ws.Hub's Notify(uint64, any) to the
// match.Notifier interface, which takes a concrete Notification.
type hubNotifier struct {
	hub *ws.Hub
}

func (n hubNotifier) Notify(userID uint64, v matchsvc.Notification) {
	n.hub.Notify(userID, v)
}

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg := config.New()

	logger.InitFromConfig(cfg.Log)
	log := logger.L()

	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		return
	}

	redisCache := cache.NewRedisCache(cfg)
	if err := redisCache.Ping(context.Background()); err != nil {
		log.Error("failed to connect to redis", "err", err)
		return
	}

	appCtx := app.New(database, redisCache, log)

	hub := ws.NewHub(log)
	go hub.Run()

	accounts := account.NewService(appCtx, cfg.Auth)
	matches := matchsvc.NewService(appCtx, hubNotifier{hub})

	if cfg.Env == "development" {
		if err := db.SeedTestData(database); err != nil {
			log.Error("failed to seed", "err", err)
		}
	}

	router := server.NewRouter(appCtx, cfg, accounts, matches, hub)
	if err := server.Start(cfg, router); err != nil {
		log.Error("server exited with error", "err", err)
	}
}
