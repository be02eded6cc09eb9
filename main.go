package main

import (
	"context"
	"log"
	"os"
	"time"

	"aurix/internal/api"
	"aurix/internal/config"
	"aurix/internal/redis"
	"aurix/internal/session"
	"aurix/internal/upstream"

	"github.com/gin-gonic/gin"
)

func main() {
	cfgPath := os.Getenv("AURIX_CONFIG")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	var cache *redis.Client
	if cfg.Redis.Host != "" {
		cache, err = redis.NewClient(cfg)
		if err != nil {
			log.Fatalf("create redis client: %v", err)
		}
		defer cache.Close()
	} else {
		log.Printf("redis not configured, session transcripts stay in memory")
	}

	timeout := upstream.DefaultTimeout
	if secs := cfg.BasicConfig.RequestTimeoutSeconds; secs > 0 {
		timeout = time.Duration(secs) * time.Second
	} else if secs < 0 {
		timeout = 0
	}
	client := upstream.NewClient(timeout)
	uploads := upstream.NewUploadClient(client, cfg.Upstreams.Upload)
	chats := upstream.NewChatClient(client, cfg.Upstreams.Chat)

	ttl := time.Duration(cfg.BasicConfig.SessionTTLMinutes) * time.Minute
	registry := session.NewRegistry(uploads, chats, ttl, cache)

	sweepCtx, sweepCancel := context.WithCancel(context.Background())
	defer sweepCancel()
	sweep := time.Duration(cfg.BasicConfig.SessionSweepMinutes) * time.Minute
	registry.StartJanitor(sweepCtx, sweep)

	handlers := api.NewHandler(registry, cfg.BasicConfig.MaxStagedBytes)

	router := gin.Default()
	handlers.RegisterRoutes(router)

	addr := cfg.BasicConfig.ServerAddress
	if addr == "" {
		addr = ":8090"
	}

	if err := router.Run(addr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
