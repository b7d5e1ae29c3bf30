package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/edulens/edulens-api/internal/config"
	"github.com/edulens/edulens-api/internal/database"
	"github.com/edulens/edulens-api/internal/evaluation"
	"github.com/edulens/edulens-api/internal/extract"
	"github.com/edulens/edulens-api/internal/handler"
	"github.com/edulens/edulens-api/internal/middleware"
	"github.com/edulens/edulens-api/internal/models"
	"github.com/edulens/edulens-api/internal/observability"
	"github.com/edulens/edulens-api/internal/repository"
	"github.com/edulens/edulens-api/internal/router"
	"github.com/edulens/edulens-api/internal/service"
	"github.com/edulens/edulens-api/pkg/ai"
	cloud "github.com/edulens/edulens-api/pkg/cloudinary"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&models.Lecture{}, &models.LectureFile{}, &models.LectureEvaluation{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, evaluation reports will not be cached")
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	var storage service.FileStorage
	if cfg.CloudinaryCloudName != "" {
		uploader, err := cloud.New(cloud.Config{
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
			Folder:    cfg.CloudinaryUploadFolder,
		}, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("cloudinary unavailable, attachments will keep extracted text only")
		} else {
			storage = uploader
		}
	}

	var completer ai.Completer
	switch cfg.AIProvider {
	case "anthropic":
		if client, err := ai.NewAnthropicCompleter(ai.AnthropicConfig{APIKey: cfg.AnthropicAPIKey, Model: cfg.AIModel}); err != nil {
			logger.Warn().Err(err).Msg("anthropic unavailable, evaluators fall back to deterministic tiers")
		} else {
			completer = client
		}
	default:
		if client, err := ai.NewOpenAICompleter(ai.OpenAIConfig{
			APIKey: cfg.OpenAIAPIKey,
			Model:  cfg.AIModel,
			Logger: logger,
		}); err != nil {
			logger.Warn().Err(err).Msg("openai unavailable, evaluators fall back to deterministic tiers")
		} else {
			completer = client
		}
	}

	engine := evaluation.NewEngine(completer, nil, evaluation.NoopReconstructor{}, evaluation.Config{
		Weights: evaluation.Weights{
			Correctness:   cfg.WeightCorrectness,
			Engagement:    cfg.WeightEngagement,
			TopicCoverage: cfg.WeightTopicCoverage,
		},
		TargetTotal:            cfg.TargetTotal,
		Timeout:                cfg.EvaluationTimeout,
		EngagementAgentEnabled: cfg.EngagementAgentEnabled,
	}, logger)

	validate := validator.New(validator.WithRequiredStructEnabled())

	lectureRepo := repository.NewLectureRepository(db)
	lectureService := service.NewLectureService(lectureRepo, engine, extract.NewTextExtractor(), storage, redisClient, cfg.EvaluationCacheTTL, cfg.MaxAttachmentMB, logger)
	analyticsService := service.NewAnalyticsService(lectureRepo, logger)

	lectureHandler := handler.NewLectureHandler(lectureService, validate, logger)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    (cfg.MaxAttachmentMB + 1) * 1024 * 1024,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	app.Get("/metrics", observability.MetricsHandler())
	router.Register(app, cfg, router.Dependencies{
		LectureHandler:   lectureHandler,
		AnalyticsHandler: analyticsHandler,
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
