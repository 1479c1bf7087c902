package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/rfp-brief/backend/internal/api"
	"github.com/rfp-brief/backend/internal/api/handlers"
	"github.com/rfp-brief/backend/internal/cache/redis"
	"github.com/rfp-brief/backend/internal/evaluation"
	"github.com/rfp-brief/backend/internal/extraction"
	"github.com/rfp-brief/backend/internal/fetch"
	"github.com/rfp-brief/backend/internal/ingestion"
	"github.com/rfp-brief/backend/internal/metrics"
	"github.com/rfp-brief/backend/internal/middleware/ratelimit"
	"github.com/rfp-brief/backend/internal/middleware/security"
	"github.com/rfp-brief/backend/internal/storage"
	"github.com/rfp-brief/backend/internal/storage/postgres"
	"github.com/rfp-brief/backend/internal/storage/sqlite"
	"github.com/rfp-brief/backend/pkg/config"
	appLogger "github.com/rfp-brief/backend/pkg/logger"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Printf("Failed to load .env: %v\n", err)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting RFP Brief API Server", zap.String("storage", cfg.Storage.Driver))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	store, err := openStore(ctx, cfg)
	cancel()
	if err != nil {
		appLogger.Fatal("Failed to open store", zap.Error(err))
	}
	defer store.Close()

	checks := map[string]handlers.Pinger{"store": store}

	var cache ingestion.Cache
	if cfg.Cache.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		redisClient, err := redis.NewClient(ctx, cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB)
		cancel()
		if err != nil {
			appLogger.Warn("Summary cache unavailable, continuing without it", zap.Error(err))
		} else {
			defer redisClient.Close()
			if cfg.Cache.FlushOnStart {
				if err := redisClient.InvalidateSummaries(context.Background()); err != nil {
					appLogger.Warn("Failed to flush summary cache", zap.Error(err))
				}
			}
			cache = redisClient
			checks["cache"] = redisClient
		}
	}

	metrics.Init()

	extractor := extraction.NewExtractor(extractionConfig(cfg.Extraction))
	processor := ingestion.NewProcessor(extractor, store, cache, ingestion.Options{
		CacheTTL:         time.Duration(cfg.Cache.TTLSeconds) * time.Second,
		MaxDocumentBytes: cfg.Ingestion.MaxDocumentBytes,
		MaxBatch:         cfg.Ingestion.MaxBatch,
		BatchConcurrency: cfg.Ingestion.BatchConcurrency,
	})

	var fetcher handlers.Fetcher
	if cfg.Ingestion.FetchEnabled {
		fetcher = fetch.NewClient(time.Duration(cfg.Ingestion.FetchTimeoutSeconds)*time.Second, cfg.Ingestion.MaxDocumentBytes)
	}

	app := fiber.New(fiber.Config{
		AppName:      "rfp-brief",
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.Server.AllowedOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, " + security.PreviewSecretHeader + ", " + ratelimit.ClientIDHeader,
		AllowMethods: "GET, POST, OPTIONS",
	}))
	app.Use(security.HeadersMiddleware(security.HeadersConfig{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		IsDevelopment:  cfg.Server.Development,
	}))

	if cfg.RateLimit.Enabled {
		limiter := ratelimit.New(ratelimit.Config{
			MaxRequestsPerMinute: cfg.RateLimit.MaxRequestsPerMinute,
			Logger:               appLogger.Named("ratelimit"),
		})
		defer limiter.Stop()
		app.Use(limiter.Middleware())
	}

	api.Register(app, api.Routes{
		Summarize:        handlers.NewSummarizeHandler(processor, fetcher),
		Solicitations:    handlers.NewSolicitationHandler(store),
		Health:           handlers.NewHealthHandler(checks),
		Evaluation:       handlers.NewEvaluationHandler(evaluation.NewEvaluator(extractor)),
		PreviewSecret:    cfg.Security.PreviewSecret,
		MaxDocumentBytes: cfg.Ingestion.MaxDocumentBytes,
		Logger:           appLogger.Named("http"),
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("Server starting", zap.String("address", addr))

	go func() {
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Server shutting down gracefully...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		appLogger.Error("Shutdown failed", zap.Error(err))
	}
	appLogger.Info("Server stopped")
}

func openStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	switch cfg.Storage.Driver {
	case "postgres":
		client, err := postgres.NewClient(ctx, cfg.Postgres.DSN, cfg.Postgres.MaxConns)
		if err != nil {
			return nil, err
		}
		if err := client.InitSchema(ctx); err != nil {
			client.Close()
			return nil, err
		}
		return client, nil
	default:
		if dir := filepath.Dir(cfg.SQLite.Path); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create data directory: %w", err)
			}
		}
		client, err := sqlite.NewClient(cfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		if err := client.InitSchema(ctx); err != nil {
			client.Close()
			return nil, err
		}
		return client, nil
	}
}

func extractionConfig(c config.ExtractionConfig) extraction.Config {
	cfg := extraction.DefaultConfig()
	cfg.KeywordLimit = c.KeywordLimit
	cfg.SectionItemLimit = c.SectionItemLimit
	cfg.TitleScanLines = c.TitleScanLines
	cfg.BuyerScanLines = c.BuyerScanLines
	cfg.ExecutiveSentences = c.ExecutiveSentences
	cfg.ExecutiveMaxChars = c.ExecutiveMaxChars
	cfg.HighlightSentences = c.HighlightSentences
	if len(c.Stopwords) > 0 {
		cfg.Stopwords = c.Stopwords
	}
	return cfg
}
