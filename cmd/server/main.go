package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"profession-server/internal/cache"
	"profession-server/internal/clients"
	"profession-server/internal/config"
	"profession-server/internal/handler"
	"profession-server/internal/logger"
	"profession-server/internal/producer"
	"profession-server/internal/retry"
	"profession-server/internal/service"
	"profession-server/internal/tasks"
)

func main() {
	// Загрузка переменных окружения; в production .env может не использоваться
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Warning: could not load .env file: %v\n", err)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{Level: cfg.LogLevel, Encoding: cfg.LogEncoding})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	store, cleanup, err := buildStore(cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize cache store", zap.Error(err))
	}
	defer cleanup()

	// Клиенты внешних API: явная композиция вместо глобальных синглтонов,
	// жизненным циклом владеет main
	aiClient := clients.NewAIClient(clients.AIConfig{
		APIKey:      cfg.AIAPIKey,
		BaseURL:     cfg.AIBaseURL,
		Model:       cfg.AIModel,
		ImageModel:  cfg.AIImageModel,
		SpeechModel: cfg.AISpeechModel,
		SpeechVoice: cfg.AISpeechVoice,
		Timeout:     cfg.AITimeout,
	}, log)

	hhClient, err := clients.NewHHClient(cfg.HHBaseURL, cfg.HHTimeout, log)
	if err != nil {
		log.Fatal("Failed to create HH client", zap.Error(err))
	}
	ytClient := clients.NewYouTubeClient(cfg.YouTubeAPIKey, log)

	retryCfg := retry.Config{MaxAttempts: cfg.AIMaxAttempts, Delay: cfg.AIRetryDelay}

	svc := service.NewGenerationService(
		store,
		producer.NewTextProducer(aiClient, retryCfg, log),
		producer.NewImageBatchProducer(aiClient, log),
		producer.NewMarketStatsProducer(hhClient, log),
		producer.NewVideoSearchProducer(ytClient, log),
		producer.NewCareerTreeProducer(aiClient, hhClient, cfg.CareerEnrichDelay, log),
		producer.NewAudioProducer(aiClient, cfg.MediaDir, cfg.AudioCallDelay, log),
		cfg.AudioEnabled,
		log,
	)

	registry := tasks.NewRegistry()
	h := handler.New(svc, registry, log)
	router := handler.NewRouter(h, handler.RouterConfig{
		AllowedOrigins: cfg.AllowedOrigins,
		MediaDir:       cfg.MediaDir,
	}, log)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info("Starting HTTP server", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	log.Info("Server exited")
}

// buildStore выбирает бэкенд кеша по конфигурации.
func buildStore(cfg *config.Config, log *zap.Logger) (cache.Store, func(), error) {
	switch cfg.CacheBackend {
	case "redis":
		store, err := cache.NewRedisStore(context.Background(), cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, log)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { store.Close() }, nil //nolint:errcheck
	default:
		return cache.NewFileStore(cfg.CacheDir, log), func() {}, nil
	}
}
