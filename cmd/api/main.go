package main

import (
	"context"
	"net/http"

	"alera/internal/api"
	"alera/internal/bootstrap"
	"alera/internal/config"
	"alera/internal/logging"
	"alera/internal/models"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load(".env")
	cfg := config.Load()
	logger := logging.MustSetup(cfg.LogLevel, cfg.LogFormat)
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	comp, err := bootstrap.Build(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("build pipeline", zap.Error(err))
	}
	defer comp.Close()
	if err := comp.Warm(ctx); err != nil {
		logger.Fatal("load indexes", zap.Error(err))
	}
	if err := comp.Watch(ctx); err != nil {
		logger.Fatal("watch indexes", zap.Error(err))
	}

	runner, closeRunner, err := comp.Runner(logger)
	if err != nil {
		logger.Fatal("build runner", zap.Error(err))
	}
	defer closeRunner()

	mode, err := models.ParseMode(cfg.DefaultMode)
	if err != nil {
		logger.Fatal("default mode", zap.Error(err))
	}
	h := api.NewServer(runner, comp.Catalog, mode, logger.Named("api"))
	logger.Info("alera api listening",
		zap.String("addr", cfg.APIAddr),
		zap.String("executor", cfg.Executor),
		zap.String("llm_providers", cfg.LLMProviders),
		zap.String("embed_providers", cfg.EmbedProviders),
	)
	if err := http.ListenAndServe(cfg.APIAddr, h.Routes()); err != nil {
		logger.Fatal("serve", zap.Error(err))
	}
}
