package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/seetohjy/hdb-insights/internal/adapter/llm"
	"github.com/seetohjy/hdb-insights/internal/config"
	"github.com/seetohjy/hdb-insights/internal/logger"
	"github.com/seetohjy/hdb-insights/internal/model"
	"github.com/seetohjy/hdb-insights/internal/policy"
	"github.com/seetohjy/hdb-insights/internal/service"
	"github.com/seetohjy/hdb-insights/internal/store"
	"github.com/seetohjy/hdb-insights/internal/tools"
	httptransport "github.com/seetohjy/hdb-insights/internal/transport/http"
	v1 "github.com/seetohjy/hdb-insights/internal/transport/http/v1"
)

func main() {
	// Load configuration
	cfg := config.Load()

	zlog, err := logger.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	zlog.Info("starting hdb-insights",
		zap.Int("http_port", cfg.HTTPPort),
		zap.String("reasoning_model", cfg.ReasoningModel),
		zap.String("translator_model", cfg.TranslatorModel))

	// Initialize store
	db, err := store.New(cfg.DatabaseURL, cfg.MaxQueryRows, cfg.QueryTimeout)
	if err != nil {
		zlog.Fatal("failed to initialize store", zap.Error(err))
	}
	defer db.Close()

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	if err := db.Ping(pingCtx); err != nil {
		cancelPing()
		zlog.Fatal("database unreachable", zap.Error(err))
	}
	cancelPing()

	// Load the price model artifact. The service cannot run without it.
	priceModel, err := model.Load(cfg.ModelArtifactPath)
	if err != nil {
		zlog.Fatal("failed to load model artifact",
			zap.String("path", cfg.ModelArtifactPath), zap.Error(err))
	}
	zlog.Info("model artifact loaded", zap.String("trained_at", priceModel.TrainedAt()))

	// Initialize policy engine
	ctx := context.Background()
	guard, err := policy.NewEngine(ctx, policy.ReadOnlyPolicy)
	if err != nil {
		zlog.Fatal("failed to initialize policy engine", zap.Error(err))
	}

	// Initialize LLM client
	llmClient := llm.NewClient(cfg.AnthropicURL, cfg.AnthropicAPIKey, cfg.LLMTimeout)

	// Initialize tools and service
	queryTool := tools.NewQueryTool(llmClient, db, guard, cfg.TranslatorModel, zlog)
	predictTool := tools.NewPredictTool(priceModel, zlog)
	toolset := tools.NewToolset(queryTool, predictTool)

	svc := service.New(llmClient, toolset, cfg, zlog)

	// Initialize handler and server
	h := v1.NewHandler(svc)
	server := httptransport.NewServer(h)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := server.Start(addr); err != nil && err != http.ErrServerClosed {
			zlog.Fatal("failed to start server", zap.Error(err))
		}
	}()

	zlog.Info("server started", zap.Int("port", cfg.HTTPPort))

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("shutting down")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zlog.Error("failed to shutdown server gracefully", zap.Error(err))
	}

	zlog.Info("stopped")
}
