package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/clonecrm/crm-engine/pkg/config"
	"github.com/clonecrm/crm-engine/pkg/database"
	"github.com/clonecrm/crm-engine/pkg/datasource"
	"github.com/clonecrm/crm-engine/pkg/handlers"
	"github.com/clonecrm/crm-engine/pkg/llm"
	"github.com/clonecrm/crm-engine/pkg/middleware"
	"github.com/clonecrm/crm-engine/pkg/observability"
	"github.com/clonecrm/crm-engine/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		// No config.yaml in containerized deployments; fall back to env.
		cfg, err = config.LoadFromEnv(Version)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("database", cfg.Database.Database),
		zap.String("db_host", cfg.Database.Host),
		zap.String("model", cfg.OpenAI.Model),
		zap.Strings("tables", cfg.Database.Tables()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewConnection(ctx, &database.Config{
		DSN:          cfg.Database.DSN(),
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	llmClient, err := llm.NewClient(&llm.Config{
		BaseURL: cfg.OpenAI.BaseURL,
		Model:   cfg.OpenAI.Model,
		APIKey:  cfg.OpenAI.APIKey,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to create LLM client", zap.Error(err))
	}

	executor := datasource.NewMySQLExecutor(db.DB, logger)
	translator := services.NewTranslatorService(llmClient, executor, cfg.Database.Tables(), logger)
	segments := services.NewSegmentService(translator, llmClient, executor, logger)
	customers := services.NewCustomerService(executor, llmClient, logger)
	chat := services.NewChatService(llmClient, cfg.OpenAI.ChatTemperature, logger)

	mux := http.NewServeMux()
	handlers.NewHealthHandler(db, logger).RegisterRoutes(mux)
	handlers.NewChatCompletionsHandler(translator, chat, logger).RegisterRoutes(mux)
	handlers.NewSegmentHandler(segments, logger).RegisterRoutes(mux)
	handlers.NewCustomerHandler(customers, logger).RegisterRoutes(mux)
	mux.Handle("GET /metrics", observability.MetricsHandler())

	handler := middleware.CORS(
		middleware.RequestLogger(logger)(
			observability.MetricsMiddleware(mux)))

	server := &http.Server{
		Addr:    cfg.BindAddr + ":" + cfg.Port,
		Handler: handler,
		// No WriteTimeout: chat completions stream SSE for as long as the
		// model keeps producing tokens.
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("Starting crm-engine",
			zap.String("addr", server.Addr),
			zap.String("version", cfg.Version))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", zap.Error(err))
	}
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "local" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
