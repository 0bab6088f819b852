package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"newsroom-cms/config"
	"newsroom-cms/handlers"
	"newsroom-cms/helper"
	"newsroom-cms/images"
	"newsroom-cms/middleware"
	"newsroom-cms/models"
	"newsroom-cms/repositories"
	"newsroom-cms/services"
	"newsroom-cms/storage"
	"newsroom-cms/worker"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg := config.Load()
	logger := config.NewLogger(cfg.LogLevel)

	// Initialize database
	db, err := config.InitDB(cfg.Database, cfg.LogLevel, logger)
	if err != nil {
		logger.Error("database init failed", "error", err)
		os.Exit(1)
	}

	backend, err := newBackend(cfg.Storage, logger)
	if err != nil {
		logger.Error("storage init failed", "error", err)
		os.Exit(1)
	}
	contentStore := storage.NewContentStore(backend, cfg.Storage.ContentDir)
	deriver := images.NewDeriver(backend, cfg.Storage.ImageDir)

	queue := worker.NewQueue(worker.Options{
		Workers:     cfg.Worker.Workers,
		QueueSize:   cfg.Worker.QueueSize,
		Backoff:     cfg.Worker.Backoff,
		TaskTimeout: cfg.Worker.TaskTimeout,
	}, logger)

	// Initialize repositories
	userRepo := repositories.NewDocumentRepository[models.User](db)
	articleRepo := repositories.NewDocumentRepository[models.Article](db)
	tagRepo := repositories.NewDocumentRepository[models.Tag](db)
	statisticsRepo := repositories.NewDocumentRepository[models.Statistics](db)

	// Initialize services
	authService := services.NewAuthService(userRepo, cfg.JWT, logger)
	tagService := services.NewTagService(tagRepo, logger)
	statisticsService := services.NewStatisticsService(statisticsRepo, logger)
	articleService := services.NewArticleService(articleRepo, tagService, statisticsService, contentStore, deriver, queue,
		services.ArticleOptions{
			Resolutions:       cfg.Images.Resolutions,
			SideEffectTimeout: cfg.Pipeline.SideEffectTimeout,
			TaskAttempts:      cfg.Worker.MaxAttempts,
		}, logger)
	consistency := services.NewConsistencyService(articleRepo, tagRepo, tagService, logger)

	// Initialize handlers
	httpHelper := helper.NewHTTPHelper()
	h := handlers.Handlers{
		Auth:       handlers.NewAuthHandler(authService, httpHelper, int(cfg.JWT.Expiration.Seconds())),
		Article:    handlers.NewArticleHandler(articleService, httpHelper),
		Tag:        handlers.NewTagHandler(tagService, httpHelper),
		Statistics: handlers.NewStatisticsHandler(statisticsService, deriver, cfg.Images.Profile, httpHelper),
	}

	// Setup router
	router := gin.Default()

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	handlers.RegisterRoutes(router, h, middleware.AuthMiddleware(authService, httpHelper))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	consistency.Start(ctx, cfg.Consistency.Interval)

	httpSrv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.Server.Port)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		logger.Error("server error", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown error", "error", err)
	}
	if err := queue.Close(shutdownCtx); err != nil {
		logger.Warn("background tasks abandoned", "error", err)
	}
	logger.Info("server stopped")
}

func newBackend(cfg config.StorageConfig, logger *slog.Logger) (storage.Backend, error) {
	switch cfg.Backend {
	case "webhdfs":
		logger.Info("using webhdfs storage", "url", cfg.WebHDFS.URL)
		return storage.NewWebHDFSBackend(cfg.WebHDFS.URL, cfg.WebHDFS.User, cfg.Root, cfg.WebHDFS.Timeout), nil
	default:
		return storage.NewLocalBackend(cfg.Root)
	}
}
