package main

import (
	"context"

	"alera/internal/activities"
	"alera/internal/bootstrap"
	"alera/internal/config"
	"alera/internal/logging"
	"alera/internal/workflows"

	"github.com/joho/godotenv"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load(".env")
	cfg := config.Load()
	logger := logging.MustSetup(cfg.LogLevel, cfg.LogFormat)
	defer func() { _ = logger.Sync() }()

	c, err := client.Dial(client.Options{
		HostPort: cfg.TemporalAddress,
		Logger:   workflows.NewZapAdapter(logger.Named("temporal")),
	})
	if err != nil {
		logger.Fatal("dial temporal", zap.Error(err))
	}
	defer c.Close()

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

	w := worker.New(c, cfg.TemporalTaskQueue, worker.Options{})
	workflows.Register(w)
	activities.Register(w, activities.New(comp.Retriever, comp.Summarizer, logger.Named("activities")))

	logger.Info("alera worker listening",
		zap.String("temporal", cfg.TemporalAddress),
		zap.String("queue", cfg.TemporalTaskQueue),
		zap.String("llm_providers", cfg.LLMProviders),
		zap.String("embed_providers", cfg.EmbedProviders),
	)
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Fatal("worker stopped", zap.Error(err))
	}
}
