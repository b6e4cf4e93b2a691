package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"storechatgo/internal/config"
	"storechatgo/internal/database/db_client"
	"storechatgo/internal/http/http_server"
	"storechatgo/internal/presence"
	"storechatgo/internal/redis/redis_client"
	"storechatgo/internal/services/autoreply"
	"storechatgo/internal/services/chat"
	"storechatgo/internal/ws"
)

var (
	Log, _ = zap.NewDevelopment()
)

func main() {
	defer Log.Sync()
	zap.ReplaceGlobals(Log)

	var err error
	var cfg *config.Config
	var redisClient *redis.Client
	var chatService chat.IChatService

	// 1. Load configuration
	cfg, err = config.LoadConfig()
	if err != nil {
		Log.Fatal("Failed to load configuration", zap.Error(err))
	}
	Log.Debug("Configuration loaded successfully", zap.Any("config", cfg))

	// 2. Context with signal handling
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGINT, syscall.SIGTERM,
	)
	defer stop()

	// 3. Redis (presence mirror)
	redisClient, err = redis_client.NewRedisClient(cfg.RedisHost, int(cfg.RedisPort))
	if err != nil {
		Log.Fatal("Failed to create Redis client", zap.Error(err))
	}
	defer redisClient.Close()
	Log.Debug("Redis client created successfully")

	// 4. Postgres db client
	pgDb, err := db_client.Open(cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresDb)
	if err != nil {
		Log.Fatal("pg-open", zap.Error(err))
	}
	defer pgDb.Close()

	// 5. Services: message store + scripted support responder
	chatService = chat.NewChatService(pgDb)
	responder := autoreply.NewResponder(chatService,
		time.Duration(cfg.AutoReplyMinDelayMs)*time.Millisecond,
		time.Duration(cfg.AutoReplyMaxDelayMs)*time.Millisecond,
	)

	// 6. WebSockets: room table + connection registry + session server
	hub := ws.NewHub()
	registry := ws.NewRegistry()
	wsSrv := ws.NewWsServer(hub, registry, chatService, responder, cfg.DefaultRoom, cfg.HistoryLimit)

	// 7. Background: online-users mirror into Redis
	presence.Run(ctx, redisClient, registry, time.Duration(cfg.PresenceSyncSeconds)*time.Second)

	// 8. HTTP + WS server
	httpServer := http_server.NewHttpServer(ctx, cfg.HttpServerPort, wsSrv, registry, chatService)
	if err := httpServer.Start(); err != nil {
		Log.Fatal("Failed to start HTTP server", zap.Error(err))
	}

}
