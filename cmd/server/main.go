package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SAP-F-2025/interview-service/internal/auth"
	"github.com/SAP-F-2025/interview-service/internal/cache"
	"github.com/SAP-F-2025/interview-service/internal/config"
	"github.com/SAP-F-2025/interview-service/internal/handlers"
	"github.com/SAP-F-2025/interview-service/internal/jobs"
	"github.com/SAP-F-2025/interview-service/internal/repositories"
	keystrokemongo "github.com/SAP-F-2025/interview-service/internal/repositories/mongo"
	"github.com/SAP-F-2025/interview-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/interview-service/internal/services"
	"github.com/SAP-F-2025/interview-service/internal/utils"
	"github.com/SAP-F-2025/interview-service/internal/validator"
	"github.com/SAP-F-2025/interview-service/pkg"
	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"go.mongodb.org/mongo-driver/mongo"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := utils.NewLogger(cfg.Environment)
	slog.SetDefault(logger)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		logger.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}

	var cacheService cache.CacheService = cache.NoopCache{}
	if redisClient, err := pkg.NewRedisClient(cfg); err != nil {
		logger.Warn("Redis unavailable, keystroke cache disabled", "error", err)
	} else {
		defer redisClient.Close()
		cacheService = cache.NewRedisCache(redisClient, logger)
	}

	var keystrokes repositories.KeystrokeRepository
	if cfg.Keystroke.Store == "mongo" {
		var mongoClient *mongo.Client
		mongoClient, keystrokes, err = openKeystrokeMongo(cfg)
		if err != nil {
			logger.Error("Failed to initialize mongo keystroke store", "error", err)
			os.Exit(1)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = mongoClient.Disconnect(ctx)
		}()
		logger.Info("Keystroke logs stored in mongo", "database", cfg.Keystroke.MongoDatabase)
	}
	repo := postgres.NewRepository(db, keystrokes)

	publisher, err := cfg.Events.CreateEventPublisher(logger)
	if err != nil {
		logger.Error("Failed to create event publisher", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()

	resolver, err := newResolver(cfg)
	if err != nil {
		logger.Error("Failed to configure authentication", "error", err)
		os.Exit(1)
	}

	clock := clockwork.NewRealClock()
	svc := services.NewServices(services.Dependencies{
		Repo:      repo,
		Cache:     cacheService,
		CacheTTL:  cfg.CacheTTL,
		Publisher: publisher,
		Clock:     clock,
		Logger:    logger,
		Validator: validator.New(),
	})

	sweep := jobs.NewExpirySweepJob(repo, svc.Notifications, clock, logger, cfg.ExpirySweepSpec)
	if err := sweep.Start(); err != nil {
		logger.Error("Failed to start expiry sweep", "error", err)
		os.Exit(1)
	}

	hm := handlers.NewHandlerManager(svc, handlers.HandlerOptions{
		Resolver:           resolver,
		Clock:              clock,
		KeystrokeBatchSize: cfg.Keystroke.BatchSize,
	}, utils.NewSlogLogger(logger))

	// No WriteTimeout: websocket streams outlive any fixed deadline.
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           hm.NewRouter(),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("Interview service starting", "addr", server.Addr, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)
	<-shutdownChan

	logger.Info("Interview service shutting down")
	sweep.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Interview service exited")
}

func newResolver(cfg *config.Config) (auth.Resolver, error) {
	switch cfg.Auth.Provider {
	case "casdoor":
		if cfg.Auth.CasdoorEndpoint == "" {
			return nil, errors.New("CASDOOR_ENDPOINT is required when AUTH_PROVIDER=casdoor")
		}
		return auth.NewCasdoorResolver(auth.CasdoorConfig{
			Endpoint:     cfg.Auth.CasdoorEndpoint,
			ClientID:     cfg.Auth.CasdoorClientID,
			ClientSecret: cfg.Auth.CasdoorClientSecret,
			Certificate:  cfg.Auth.CasdoorCertificate,
			Organization: cfg.Auth.CasdoorOrganization,
			Application:  cfg.Auth.CasdoorApplication,
		}), nil
	case "jwt", "":
		return auth.NewJWTResolver(cfg.Auth.JWTSecret), nil
	default:
		return nil, errors.New("unknown AUTH_PROVIDER " + cfg.Auth.Provider)
	}
}

func openKeystrokeMongo(cfg *config.Config) (*mongo.Client, repositories.KeystrokeRepository, error) {
	ctx := context.Background()
	client, database, err := pkg.NewMongoDatabase(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	if err := keystrokemongo.EnsureIndexes(ctx, database); err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, err
	}
	return client, keystrokemongo.NewKeystrokeMongo(database), nil
}
