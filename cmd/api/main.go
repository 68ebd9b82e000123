package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"mc-bridge-api/internal/cache"
	"mc-bridge-api/internal/config"
	"mc-bridge-api/internal/discord"
	"mc-bridge-api/internal/handler"
	"mc-bridge-api/internal/middleware"
	"mc-bridge-api/internal/repository"
	"mc-bridge-api/internal/router"
	"mc-bridge-api/internal/service"

	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.MustLoad()

	if cfg.App.IsProduction() {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
	logrus.WithField("environment", cfg.App.Environment).Info("starting mc-bridge-api")

	// Bridge store (bindings, messages, settings, sync channels)
	store, err := repository.NewSQLiteBridgeStore(cfg.BridgeDB.Path)
	if err != nil {
		logrus.WithError(err).Fatal("failed to initialize bridge store")
	}
	defer store.Close()
	logrus.WithField("path", cfg.BridgeDB.Path).Info("bridge store initialized")

	// Inventory repository, driver selected by config
	var inventoryRepo repository.InventoryRepository
	switch cfg.InventoryDB.Type {
	case "mysql":
		mysqlRepo, err := repository.NewMySQLInventoryRepository(cfg.InventoryDB.MySQLDSN())
		if err != nil {
			logrus.WithError(err).Fatal("failed to initialize MySQL inventory repository")
		}
		inventoryRepo = mysqlRepo
		logrus.Info("MySQL inventory repository initialized")
	default: // sqlite
		sqliteRepo, err := repository.NewSQLiteInventoryRepository(cfg.InventoryDB.Path)
		if err != nil {
			logrus.WithError(err).Fatal("failed to initialize SQLite inventory repository")
		}
		inventoryRepo = sqliteRepo
		logrus.Info("SQLite inventory repository initialized")
	}
	defer inventoryRepo.Close()

	// Name-resolution cache: Redis when configured, memory otherwise
	var nameCache cache.Cache
	if cfg.Cache.Type == "redis" {
		redisCache, err := cache.NewRedisCache(cache.RedisConfig{
			Addr:     cfg.Cache.RedisAddress(),
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		if err != nil {
			logrus.WithError(err).Warn("Redis connection failed, falling back to memory cache")
		} else {
			defer redisCache.Close()
			nameCache = redisCache
			logrus.Info("Redis cache initialized")
		}
	}
	if nameCache == nil {
		memCache := cache.NewMemoryCache()
		defer memCache.Close()
		nameCache = memCache
	}

	// Discord REST client (no gateway connection)
	discordClient, err := discord.NewRESTClient(cfg.Discord.BotToken, nameCache, cfg.Cache.TTL)
	if err != nil {
		logrus.WithError(err).Fatal("failed to create Discord client")
	}

	// Services
	bindingService := service.NewBindingService(store)
	relayService := service.NewRelayService(store, store, discordClient, cfg.Discord.DefaultChannelID)

	// Interaction dispatcher
	dispatcher := discord.NewDispatcher(discord.Config{
		Bindings: bindingService,
		Relay:    relayService,
		Players:  store,
		Settings: store,
		Channels: store,
		DB:       store,
		Client:   discordClient,
		Version:  cfg.App.Version,
	})

	// Handlers
	interactionHandler, err := handler.NewInteractionHandler(cfg.Discord.PublicKey, dispatcher)
	if err != nil {
		logrus.WithError(err).Fatal("invalid Discord public key")
	}

	r := router.New(router.Config{
		Handler:            handler.New(),
		InteractionHandler: interactionHandler,
		ChatHandler:        handler.NewChatHandler(relayService),
		PlayerHandler:      handler.NewPlayerHandler(bindingService, store),
		InventoryHandler:   handler.NewInventoryHandler(inventoryRepo),
		SettingHandler:     handler.NewSettingHandler(store),
		APIKeyMiddleware:   middleware.NewAPIKeyMiddleware(cfg.Minecraft.APIKey),
	})

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logrus.WithField("address", cfg.Server.Address()).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("server error")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logrus.WithError(err).Error("server shutdown error")
	}

	logrus.Info("server stopped")
}
