package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kashvi5907-create/legalease/backend/config"
	"github.com/kashvi5907-create/legalease/backend/handler"
	"github.com/kashvi5907-create/legalease/backend/middleware"
	"github.com/kashvi5907-create/legalease/backend/pkg/logger"
	"github.com/kashvi5907-create/legalease/backend/service"
)

func main() {
	cfg, err := config.Load("config.yaml")
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Init(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	slog.Info("configuration loaded successfully")

	// Archiving the raw uploads is optional; the pipeline runs without it.
	var archiveSvc *service.ArchiveService
	if cfg.Minio.Enabled {
		archiveSvc, err = service.NewArchiveService(&cfg.Minio)
		if err != nil {
			slog.Error("failed to initialize archive service", "error", err)
			os.Exit(1)
		}
		if err := archiveSvc.EnsureBucket(context.Background()); err != nil {
			slog.Error("failed to ensure archive bucket", "error", err)
			os.Exit(1)
		}
	}

	llmSvc, err := service.NewLLMService(context.Background(), &cfg.LLM)
	if err != nil {
		slog.Error("failed to initialize LLM service", "error", err)
		os.Exit(1)
	}

	extractor := service.NewExtractor(&cfg.OCR)
	workspace := service.NewWorkspace(&cfg.Store)
	comparer := service.NewComparer(extractor, cfg.Scanner.Keywords)
	deadlineExtractor := service.NewDeadlineExtractor(llmSvc)

	authHandler := handler.NewAuthHandler(cfg)
	documentHandler := handler.NewDocumentHandler(workspace, extractor, archiveSvc, cfg.Scanner.Keywords)
	analysisHandler := handler.NewAnalysisHandler(workspace, llmSvc, deadlineExtractor, &cfg.Calendar)
	compareHandler := handler.NewCompareHandler(comparer)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(corsMiddleware())
	router.Use(middleware.RateLimit(100, time.Minute))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	// Public routes
	api := router.Group("/api")
	{
		api.POST("/auth/login", authHandler.Login)
	}

	// Protected routes
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(&cfg.Auth))
	{
		protected.GET("/auth/me", authHandler.GetCurrentUser)

		protected.POST("/documents/upload", documentHandler.Upload)
		protected.GET("/documents", documentHandler.List)
		protected.GET("/documents/:name", documentHandler.Get)
		protected.POST("/documents/:name/select", documentHandler.Select)
		protected.DELETE("/documents/:name", documentHandler.Delete)

		protected.POST("/documents/:name/deadlines", analysisHandler.ExtractDeadlines)
		protected.POST("/documents/:name/calendar-sync", analysisHandler.SyncCalendar)
		protected.POST("/documents/:name/summary", analysisHandler.Summarize)
		protected.POST("/documents/:name/explain", analysisHandler.ExplainRisk)
		protected.POST("/documents/:name/chat", analysisHandler.Chat)

		protected.POST("/compare", compareHandler.Compare)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server exited gracefully")
}

// corsMiddleware handles CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
