package main

import (
	"context"
	"log"

	"pollapp/config"
	"pollapp/internal/events"
	"pollapp/internal/handler"
	"pollapp/internal/redis"
	"pollapp/internal/server"
	"pollapp/internal/services"
	"pollapp/internal/store"
	"pollapp/internal/websocket"
	"pollapp/pkg/logger"
)

func main() {
	cfg := config.LoadConfig()

	l := logger.New(cfg.LogMode)
	logger.SetGlobalLogger(l)
	defer l.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := websocket.NewHub()
	go hub.Run(ctx)

	var (
		cache     services.CountCache
		publisher events.Publisher = hub
	)
	if cfg.RedisEnabled {
		client, err := redis.Connect(ctx, redis.Config{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, cfg.CacheTimeout)
		if err != nil {
			l.Warnf("Redis not available, running without caching: %v", err)
		} else {
			defer client.Close()
			cache = redis.NewVoteCountCache(client)
			publisher = redis.NewPublisher(client, cfg.CacheTimeout)

			bridge := websocket.NewRedisBridge(redis.NewSubscriber(client, l), hub)
			go func() {
				if err := bridge.Run(ctx); err != nil {
					l.Errorf("Redis event bridge stopped: %v", err)
				}
			}()
			l.Infof("Redis connected at %s:%s", cfg.RedisHost, cfg.RedisPort)
		}
	}

	st := store.New()
	results := services.NewResultsService(st, cache, services.ResultsConfig{
		TTL:     cfg.ResultsCacheTTL,
		Timeout: cfg.CacheTimeout,
	}, l)
	st.SetInvalidator(results)

	pollService := services.NewPollService(st, results, publisher, l)

	srv := server.New(cfg, l)
	srv.SetupRoutes(&server.Handlers{
		Users:       handler.NewUserHandler(pollService),
		Polls:       handler.NewPollHandler(pollService),
		VoteOptions: handler.NewVoteOptionHandler(pollService),
		Votes:       handler.NewVoteHandler(pollService),
		Live:        websocket.NewHandler(pollService, hub),
	}, results)

	if err := srv.Start(); err != nil {
		log.Fatalf("Server exited: %v", err)
	}
}
