package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"

	"github.com/Dosada05/padel-tournament/brackets"
	"github.com/Dosada05/padel-tournament/config"
	"github.com/Dosada05/padel-tournament/db"
	"github.com/Dosada05/padel-tournament/handlers"
	"github.com/Dosada05/padel-tournament/repositories"
	api "github.com/Dosada05/padel-tournament/routes"
	"github.com/Dosada05/padel-tournament/services"
	"github.com/Dosada05/padel-tournament/storage"
)

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort), slog.String("storage", cfg.StorageDriver))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var store *repositories.Store
	switch cfg.StorageDriver {
	case config.StorageDriverMemory:
		store = repositories.NewMemoryStore()
		logger.Warn("using in-memory storage, data is lost on restart")
	default:
		dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
		if err != nil {
			logger.Error("failed to connect to database", slog.Any("error", err))
			os.Exit(1)
		}
		defer func() {
			if err := dbConn.Close(); err != nil {
				logger.Error("failed to close database connection", slog.Any("error", err))
			} else {
				logger.Info("database connection closed")
			}
		}()
		if err := db.Migrate(ctx, dbConn); err != nil {
			logger.Error("failed to apply schema", slog.Any("error", err))
			os.Exit(1)
		}
		store = repositories.NewPostgresStore(dbConn, logger)
		logger.Info("database connection established")
	}

	// Redis дает общий кэш и распределенную блокировку; без него все живет в процессе.
	var (
		cache  storage.Cache
		locker services.Locker
	)
	if cfg.RedisURL != "" {
		client, err := storage.NewRedisClient(ctx, storage.RedisConfig{Addr: cfg.RedisURL, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		if err != nil {
			logger.Error("failed to connect to redis", slog.Any("error", err))
			os.Exit(1)
		}
		defer client.Close()
		cache = storage.NewRedisCache(client)
		locker = services.NewRedisLocker(client, cfg.LockTTL, logger)
		logger.Info("redis cache and lock initialized", slog.String("addr", cfg.RedisURL))
	} else {
		cache = storage.NewMemoryCache()
		locker = services.NewLocalLocker()
	}

	// Архивы завершенных турниров (Cloudflare R2)
	var objects storage.ObjectStore
	r2 := storage.CloudflareR2Config{
		AccountID:       cfg.R2AccountID,
		AccessKeyID:     cfg.R2AccessKeyID,
		SecretAccessKey: cfg.R2SecretAccessKey,
		BucketName:      cfg.R2BucketName,
		PublicBaseURL:   cfg.R2PublicBaseURL,
	}
	if r2.Enabled() {
		objects, err = storage.NewCloudflareR2Store(ctx, r2)
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 store", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 store initialized", slog.String("bucket", cfg.R2BucketName))
	} else {
		objects = storage.NewMemoryObjectStore(fmt.Sprintf("http://localhost:%d/archives", cfg.ServerPort))
		logger.Warn("R2 is not configured, archives are kept in memory")
	}
	archiver := storage.NewArchiver(objects)

	// Инициализация WebSocket Hub
	wsHub := brackets.NewHub(logger)
	go wsHub.Run(ctx)
	logger.Info("WebSocket Hub started")

	// Инициализация сервисов
	matchService := services.NewMatchService(store, locker, wsHub, archiver, logger)
	tournamentService := services.NewTournamentService(store, locker, brackets.NewSingleEliminationGenerator(), wsHub, logger)
	registrationService := services.NewRegistrationService(store, matchService, logger)
	scheduleService := services.NewScheduleService(store, locker, wsHub, cfg.Location, logger)
	logger.Info("Services initialized")

	// Инициализация обработчиков HTTP
	responseCache := handlers.NewResponseCache(cache, cfg.CacheTTL, logger)
	router := chi.NewRouter()
	api.SetupRoutes(router, api.Options{
		JWTSecret:      cfg.JWTSecretKey,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Logger:         logger,
	}, api.Handlers{
		Tournaments:  handlers.NewTournamentHandler(tournamentService, responseCache, archiver),
		Participants: handlers.NewParticipantHandler(registrationService, responseCache),
		Matches:      handlers.NewMatchHandler(matchService, responseCache),
		Schedule:     handlers.NewScheduleHandler(scheduleService, responseCache),
		WebSocket:    handlers.NewWebSocketHandler(wsHub, tournamentService, cfg.CORSAllowedOrigins, logger),
	})
	logger.Info("Routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}
