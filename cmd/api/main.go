package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"netrunner-rpg-backend/internal/config"
	"netrunner-rpg-backend/internal/handlers"
	"netrunner-rpg-backend/internal/middleware"
	"netrunner-rpg-backend/internal/postgres"
	"netrunner-rpg-backend/internal/services"
	"netrunner-rpg-backend/internal/worker"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Error("failed to load config", "path", configPath, "error", err)
			os.Exit(1)
		}
		cfg = config.DefaultConfig()
	}

	logLevel := slog.LevelInfo
	if cfg.Env != "production" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	heartbeat := services.NewHeartbeat(cfg.Heartbeat, logger)
	heartbeat.Start()
	defer heartbeat.Stop()

	fatal := func(msg string, err error) {
		logger.Error(msg, "error", err)
		heartbeat.ReportFailure(fmt.Sprintf("%s: %v", msg, err))
		heartbeat.Stop()
		os.Exit(1)
	}

	store, err := services.NewRedisStore(&cfg.Redis, logger)
	if err != nil {
		fatal("failed to connect to redis", err)
	}
	defer store.Close()

	var pg *postgres.Repository
	var syncWorker *worker.SyncWorker
	if cfg.Postgres.Enabled {
		pg, err = postgres.NewRepository(&cfg.Postgres, logger)
		if err != nil {
			fatal("failed to connect to postgres", err)
		}
		defer pg.Close()

		if err := pg.RunMigrations(context.Background()); err != nil {
			fatal("failed to run migrations", err)
		}

		syncWorker = worker.NewSyncWorker(store, pg, &cfg.Sync, logger)
		if err := syncWorker.RestoreFromDatabase(context.Background()); err != nil {
			fatal("failed to restore players from snapshots", err)
		}
		if cfg.Sync.Enabled {
			if err := syncWorker.Start(context.Background()); err != nil {
				fatal("failed to start snapshot worker", err)
			}
			defer syncWorker.Stop()
		}
	}

	locks := services.NewLockRing()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	jwtService := services.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	hackEngine := services.NewHackEngine(store, locks, rng, logger)
	economyEngine := services.NewEconomyEngine(store, locks, rng, logger)
	lifecycle := services.NewLifecycle(store, locks, logger)

	wsHandler := handlers.NewWebSocketHandler(store, logger)
	hackEngine.SetBroadcaster(wsHandler)
	economyEngine.SetBroadcaster(wsHandler)

	shutdownCh := make(chan struct{}, 1)

	authHandler := handlers.NewAuthHandler(jwtService, cfg.Auth.GatewayKey)
	playerHandler := handlers.NewPlayerHandler(store)
	hackHandler := handlers.NewHackHandler(hackEngine)
	economyHandler := handlers.NewEconomyHandler(economyEngine)
	lifecycleHandler := handlers.NewLifecycleHandler(lifecycle)
	var snapshotDeleter handlers.SnapshotDeleter
	var snapshotCounter handlers.SnapshotCounter
	if pg != nil {
		snapshotDeleter = pg
		snapshotCounter = pg
	}
	adminHandler := handlers.NewAdminHandler(store, economyEngine, syncWorker, snapshotCounter, shutdownCh)
	privacyHandler := handlers.NewPrivacyHandler(store, snapshotDeleter, logger)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.POST("/auth/session", authHandler.CreateSession)

	api := router.Group("/api")
	api.Use(middleware.AuthMiddleware(jwtService))
	{
		// Routes reachable without a character: the creation flow and
		// the privacy self-service.
		jackIn := api.Group("/jack-in")
		{
			jackIn.GET("", lifecycleHandler.JackIn)
			jackIn.POST("/consent", lifecycleHandler.Consent)
			jackIn.POST("/profile", lifecycleHandler.SubmitProfile)
			jackIn.GET("/backgrounds", lifecycleHandler.ListBackgrounds)
			jackIn.POST("/background", lifecycleHandler.SelectBackground)
		}

		privacy := api.Group("/privacy")
		{
			privacy.GET("", privacyHandler.GetPolicy)
			privacy.GET("/data", privacyHandler.ViewData)
			privacy.GET("/data/export", privacyHandler.ExportData)
			privacy.DELETE("/data", privacyHandler.DeleteData)
		}

		game := api.Group("")
		game.Use(middleware.RequireCharacter(lifecycle))
		game.Use(middleware.RateLimitMiddleware(store))
		{
			game.GET("/profile", playerHandler.GetProfile)
			game.GET("/credits", playerHandler.GetCredits)
			game.GET("/leaderboard", playerHandler.GetLeaderboard)

			game.POST("/hack", hackHandler.BeginHack)
			game.POST("/hack/:tier", hackHandler.ResolveHack)

			game.POST("/daily", economyHandler.ClaimDaily)
			game.POST("/heal", economyHandler.Heal)
			game.POST("/upgrade", economyHandler.QuoteUpgrade)
			game.POST("/upgrade/:id/confirm", economyHandler.ConfirmUpgrade)
			game.POST("/upgrade/:id/cancel", economyHandler.CancelUpgrade)

			game.GET("/ws", wsHandler.HandleWebSocket)
		}

		admin := api.Group("/admin")
		admin.Use(middleware.RequireAdmin(cfg.Auth.OwnerIDs))
		{
			admin.GET("/stats", adminHandler.Stats)

			owner := admin.Group("")
			owner.Use(middleware.RequireOwner(cfg.Auth.OwnerIDs))
			{
				owner.POST("/users/:id/reset", adminHandler.ResetUser)
				owner.POST("/users/:id/credits", adminHandler.GiveCredits)
				owner.POST("/snapshot", adminHandler.TriggerSnapshot)
				owner.POST("/shutdown", adminHandler.Shutdown)
			}
		}
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Server.Port, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal("server failed", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("received signal, shutting down", "signal", sig.String())
	case <-shutdownCh:
		logger.Info("shutdown requested by operator")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}

	logger.Info("server stopped")
}
