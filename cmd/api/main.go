package main

import (
	"context"
	"log"
	"time"

	"bazaar-chat/config"
	"bazaar-chat/internal/aggregate"
	"bazaar-chat/internal/domain/listing"
	"bazaar-chat/internal/domain/message"
	"bazaar-chat/internal/domain/user"
	"bazaar-chat/internal/handler"
	appredis "bazaar-chat/internal/redis"
	"bazaar-chat/internal/repository"
	"bazaar-chat/internal/resolver"
	"bazaar-chat/internal/server"
	"bazaar-chat/internal/services"
	"bazaar-chat/internal/websocket"
	"bazaar-chat/pkg/database"
	"bazaar-chat/pkg/logger"
)

func main() {
	cfg := config.LoadConfig()

	l := logger.New(cfg.AppMode)
	logger.SetGlobalLogger(l)

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&user.User{},
		&listing.Listing{},
		&message.Message{},
	); err != nil {
		log.Fatalf("Failed to apply GORM migrations: %v", err)
	}

	redisClient := appredis.NewClient(appredis.Config{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
	})

	messageRepo := repository.NewMessageRepository(db)
	userRepo := repository.NewUserRepository(db)
	listingRepo := repository.NewListingRepository(db)

	profileCache := appredis.NewProfileCache(redisClient, appredis.DefaultCacheConfig())
	userResolver := resolver.NewUserResolver(userRepo, profileCache, l)
	listingResolver := resolver.NewListingResolver(listingRepo)

	aggregator := aggregate.New(userResolver, listingResolver, l)
	publisher := appredis.NewPublisher(redisClient)
	messaging := services.NewMessagingService(messageRepo, aggregator, publisher, l)

	verifier := services.NewTokenVerifier(cfg.JWTSecret)
	limiter := appredis.NewRateLimiter(redisClient, appredis.RateLimitConfig{
		MessageLimit:  cfg.MessageLimit,
		MessageWindow: time.Duration(cfg.MessageWindow) * time.Second,
	})

	hub := websocket.NewHub()
	bridge := websocket.NewRedisBridge(appredis.NewSubscriber(redisClient), hub)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go hub.Run(ctx)
	go func() {
		if err := bridge.Run(ctx); err != nil && ctx.Err() == nil {
			l.Errorf("Redis bridge stopped: %s", err)
		}
	}()

	srv := server.New(cfg, l, db)
	srv.SetupRoutes(&server.Handlers{
		Message:      handler.NewMessageHandler(messaging),
		Conversation: handler.NewConversationHandler(messaging),
		WS:           websocket.NewHandler(verifier, hub),
	}, verifier, limiter)

	if err := srv.Start(); err != nil {
		log.Fatalf("Server exited with error: %v", err)
	}
}
