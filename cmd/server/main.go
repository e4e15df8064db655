package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/fadilmartias/plan-analyzer/internal/cache"
	"github.com/fadilmartias/plan-analyzer/internal/config"
	"github.com/fadilmartias/plan-analyzer/internal/domain/fiber/handler"
	"github.com/fadilmartias/plan-analyzer/internal/evaluator"
	"github.com/fadilmartias/plan-analyzer/internal/extractor"
	applogger "github.com/fadilmartias/plan-analyzer/internal/logger"
	"github.com/fadilmartias/plan-analyzer/internal/middleware"
	"github.com/fadilmartias/plan-analyzer/internal/model"
	"github.com/fadilmartias/plan-analyzer/internal/report"
	"github.com/fadilmartias/plan-analyzer/internal/repository"
	"github.com/fadilmartias/plan-analyzer/internal/service"
	"github.com/fadilmartias/plan-analyzer/internal/usecase"
	"github.com/fadilmartias/plan-analyzer/internal/worker"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/pprof"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Could not load .env file")
	}

	appConfig := config.LoadAppConfig()
	zlog := applogger.New(appConfig.LogLevel, appConfig.LogFormat)
	defer func() { _ = zlog.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := ConnectDB()
	if err != nil {
		zlog.Fatal("database setup failed", zap.Error(err))
	}

	llm, modelLabel, err := newLLM(ctx, zlog)
	if err != nil {
		zlog.Fatal("model client setup failed", zap.Error(err))
	}

	store, err := service.NewDocumentStore(ctx, config.LoadStorageConfig())
	if err != nil {
		zlog.Fatal("document store setup failed", zap.Error(err))
	}

	formatter, err := report.NewFormatter(modelLabel)
	if err != nil {
		zlog.Fatal("report templates failed to load", zap.Error(err))
	}

	workerConfig := config.LoadWorkerConfig()
	llmConfig := config.LoadLLMConfig()

	queue := worker.NewQueue(zlog.Named("worker"),
		worker.WithWorkers(workerConfig.Workers),
		worker.WithQueueSize(workerConfig.QueueSize),
		worker.WithProcessTimeout(workerConfig.ProcessTimeout),
	)

	opts := []usecase.Option{usecase.WithMaxUploadBytes(appConfig.MaxUploadBytes)}
	if redisConfig := config.LoadRedisConfig(); redisConfig.Addr != "" {
		client := cache.NewRedisClient(redisConfig)
		if err := client.Ping(ctx).Err(); err != nil {
			zlog.Warn("redis unreachable, report cache disabled", zap.String("addr", redisConfig.Addr), zap.Error(err))
		} else {
			defer client.Close()
			opts = append(opts, usecase.WithReportCache(cache.NewReportCache(client, redisConfig.ReportTTL)))
		}
	}

	uc := usecase.NewSubmissionUsecase(
		repository.NewSubmissionRepository(db),
		repository.NewAnalysisRepository(db),
		extractor.New(store, workerConfig.FetchTimeout, zlog.Named("extractor")),
		evaluator.New(llm, zlog.Named("evaluator"),
			evaluator.WithTemperature(llmConfig.Temperature),
			evaluator.WithMaxTokens(llmConfig.MaxTokens),
		),
		formatter,
		store,
		queue,
		zlog.Named("pipeline"),
		opts...,
	)
	queue.Start(uc.Process)

	if n, err := uc.ResumePending(ctx); err != nil {
		zlog.Error("failed to resume pending submissions", zap.Int("queued", n), zap.Error(err))
	}

	app := newApp(appConfig, zlog)
	handler.NewSubmissionHandler(uc).RegisterRoutes(app)

	// Monitor goroutine count
	go func() {
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				zlog.Debug("runtime stats", zap.Int("goroutines", runtime.NumGoroutine()))
			}
		}
	}()

	go func() {
		zlog.Info("server running", zap.String("port", appConfig.Port), zap.String("model", modelLabel))
		if err := app.Listen(appConfig.Port); err != nil {
			zlog.Error("server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	zlog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), workerConfig.ProcessTimeout+30*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		zlog.Error("http shutdown failed", zap.Error(err))
	}
	if err := queue.Shutdown(shutdownCtx); err != nil {
		zlog.Error("queue did not drain", zap.Error(err))
	}
}

func newApp(appConfig *config.AppConfig, zlog *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:   appConfig.Name,
		BodyLimit: int(appConfig.MaxUploadBytes) + 1<<20,
		ErrorHandler: func(ctx *fiber.Ctx, err error) error {
			// Status code defaults to 500
			code := fiber.StatusInternalServerError

			// Retrieve the custom status code if it's a *fiber.Error
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}

			message := err.Error()
			if message == "" {
				message = "Internal Server Error"
			}
			if code >= fiber.StatusInternalServerError {
				zlog.Error("unhandled request error", zap.String("path", ctx.Path()), zap.Error(err))
			}

			return ctx.Status(code).JSON(fiber.Map{"success": false, "message": message})
		},
	})
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, " + middleware.ProfessorHeader,
	}))
	app.Use(recover.New(recover.Config{
		EnableStackTrace: !appConfig.IsProduction(),
	}))

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
	app.Use(pprof.New(pprof.Config{
		Next: func(c *fiber.Ctx) bool {
			return appConfig.IsProduction()
		},
	}))
	app.Use(healthcheck.New())

	app.Use(helmet.New(helmet.Config{
		CrossOriginResourcePolicy: "cross-origin",
	}))

	app.Use(middleware.RateLimiter(50, 1*time.Minute))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	return app
}

// newLLM builds the model client named by LLM_PROVIDER and returns the label
// shown in report footers.
func newLLM(ctx context.Context, zlog *zap.Logger) (service.LLMServiceInterface, string, error) {
	switch provider := config.LoadLLMConfig().Provider; provider {
	case "gemini", "":
		cfg := config.LoadGeminiConfig()
		svc, err := service.NewGeminiService(ctx, cfg, zlog.Named("gemini"))
		return svc, cfg.Model, err
	case "openrouter":
		cfg := config.LoadOpenRouterConfig()
		svc, err := service.NewOpenRouterService(cfg, zlog.Named("openrouter"))
		return svc, cfg.Model, err
	default:
		return nil, "", fmt.Errorf("unknown llm provider %q", provider)
	}
}

func ConnectDB() (*gorm.DB, error) {
	dbConfig := config.LoadDBConfig()
	appConfig := config.LoadAppConfig()

	db, err := gorm.Open(postgres.Open(dbConfig.DSN()), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("could not connect to database: %w", err)
	}
	pgDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("could not get database instance: %w", err)
	}
	if !appConfig.IsProduction() {
		pgDB.SetMaxIdleConns(5)
		pgDB.SetMaxOpenConns(10)
		pgDB.SetConnMaxLifetime(30 * time.Minute)
	} else {
		pgDB.SetMaxIdleConns(20)
		pgDB.SetMaxOpenConns(200)
		pgDB.SetConnMaxLifetime(time.Hour)
	}

	if err := db.AutoMigrate(&model.Submission{}, &model.Analysis{}); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	return db, nil
}
