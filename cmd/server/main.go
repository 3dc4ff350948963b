package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/vinpro/dealdesk/internal/activity"
	"github.com/vinpro/dealdesk/internal/config"
	"github.com/vinpro/dealdesk/internal/event"
	"github.com/vinpro/dealdesk/internal/eventbus"
	"github.com/vinpro/dealdesk/internal/marketdata"
	"github.com/vinpro/dealdesk/internal/pulse"
	"github.com/vinpro/dealdesk/internal/seed"
	"github.com/vinpro/dealdesk/internal/server"
	"github.com/vinpro/dealdesk/internal/store"
	"github.com/vinpro/dealdesk/internal/worker"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()

	db, err := store.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("opening database: %v", err)
	}
	defer db.Close()

	if err := store.CreateSchema(ctx, db); err != nil {
		log.Fatalf("creating schema: %v", err)
	}
	activityStore := activity.NewSQLiteStore(db)
	if err := activityStore.CreateTable(ctx); err != nil {
		log.Fatalf("creating activity table: %v", err)
	}
	log.Println("database schema ready")

	if cfg.Env == "development" {
		if err := seed.Demo(ctx, db); err != nil {
			log.Fatalf("seeding demo data: %v", err)
		}
	}

	// Event pipeline: recorder writes the activity feed, then the bus fans
	// events out to the log and the live pulse socket.
	bus := eventbus.New(cfg.EventBusBuffer)
	hub := pulse.NewHub()
	bus.Subscribe("log", eventbus.NewLogConsumer())
	bus.Subscribe("pulse", hub)
	bus.Start(ctx)

	recorder := event.NewActivityRecorder(activityStore)
	recorder.SetPublisher(bus)

	go worker.RunRetention(ctx, activityStore, cfg.ActivityRetentionDays)

	// Market data: Redis cache when configured, process-local otherwise.
	var cache marketdata.Cache
	if cfg.RedisAddr != "" {
		redisCache := marketdata.NewRedisCache(cfg.RedisAddr)
		if err := redisCache.Ping(ctx); err != nil {
			log.Fatalf("connecting to redis at %s: %v", cfg.RedisAddr, err)
		}
		defer redisCache.Close()
		cache = redisCache
		log.Printf("market cache: redis at %s", cfg.RedisAddr)
	} else {
		cache = marketdata.NewTTLCache()
		log.Println("market cache: in-process TTL map")
	}
	valuator := marketdata.NewCachedValuator(
		marketdata.NewMarketCheckValuator("https://mc-api.marketcheck.com/v2", cfg.MarketCheckAPIKey),
		cache, 0)

	err = server.Run(ctx, server.Config{
		Addr:     cfg.ListenAddr,
		DB:       db,
		Activity: activityStore,
		Recorder: recorder,
		Decoder:  marketdata.NewNHTSADecoder(cfg.NHTSABaseURL),
		Valuator: valuator,
		Pulse:    hub,
	})
	if err != nil {
		log.Fatalf("server error: %v", err)
	}
	log.Println("shutdown complete")
}
