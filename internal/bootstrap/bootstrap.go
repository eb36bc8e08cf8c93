// Package bootstrap wires the scouting pipeline from configuration for the
// api, worker and CLI entrypoints.
package bootstrap

import (
	"context"
	"fmt"
	"strings"
	"time"

	"alera/internal/config"
	"alera/internal/models"
	"alera/internal/providers"
	"alera/internal/retrieval"
	"alera/internal/scout"
	"alera/internal/storage"
	"alera/internal/vector"
	"alera/internal/workflows"

	tclient "go.temporal.io/sdk/client"
	"go.uber.org/zap"
)

const (
	ExecutorInline   = "inline"
	ExecutorTemporal = "temporal"
)

type Components struct {
	Config     config.Config
	Catalog    *config.Catalog
	Providers  *providers.Manager
	Retriever  *retrieval.Retriever
	Summarizer *scout.Summarizer
	Pipeline   *scout.Pipeline

	// Local is set for the file and sqlite backends, DB for postgres.
	Local *storage.Catalog
	DB    *storage.DB
}

func Build(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Components, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	catalog, err := config.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		return nil, err
	}
	pm, err := providers.NewManager(cfg)
	if err != nil {
		return nil, err
	}

	c := &Components{Config: cfg, Catalog: catalog, Providers: pm}
	var backend retrieval.Backend
	switch strings.ToLower(strings.TrimSpace(cfg.IndexBackend)) {
	case storage.BackendPostgres:
		dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		db, err := storage.NewDB(dialCtx, cfg.PostgresURL)
		if err != nil {
			return nil, err
		}
		c.DB = db
		metrics, err := pgMetrics(catalog)
		if err != nil {
			db.Close()
			return nil, err
		}
		backend = vector.NewPGSearcher(db.Pool, catalog.PGTable, metrics, catalog.PGKeys())
	case "", storage.BackendFile, storage.BackendSQLite:
		local, err := storage.NewCatalog(catalog, cfg.IndexBackend, logger.Named("catalog"))
		if err != nil {
			return nil, err
		}
		c.Local = local
		backend = local
	default:
		return nil, fmt.Errorf("unsupported index backend %q", cfg.IndexBackend)
	}

	embedder, embedRef := pm.PrimaryEmbed()
	llm, llmRef := pm.PrimaryLLM()
	c.Retriever = retrieval.NewRetriever(embedder, backend, cfg.EmbedDim, logger.Named("retrieval"))
	c.Summarizer = scout.NewSummarizer(llm, time.Duration(cfg.LLMTimeoutSecs)*time.Second, logger.Named("summarizer"))
	c.Pipeline = scout.NewPipeline(c.Retriever, c.Summarizer, catalog, cfg.TargetSeason, cfg.TopK, logger.Named("pipeline"))

	logger.Info("pipeline ready",
		zap.String("index_backend", cfg.IndexBackend),
		zap.String("embed_provider", embedRef.Raw),
		zap.String("llm_provider", llmRef.Raw),
		zap.Int("embed_dim", cfg.EmbedDim),
		zap.String("target_season", cfg.TargetSeason),
	)
	return c, nil
}

// pgMetrics resolves each catalog category's distance metric for the pgvector
// backend.
func pgMetrics(catalog *config.Catalog) (map[models.Category]vector.Metric, error) {
	out := make(map[models.Category]vector.Metric, len(catalog.Categories))
	for name, src := range catalog.Categories {
		m, err := vector.ParseMetric(src.Metric)
		if err != nil {
			return nil, fmt.Errorf("category %s: %w", name, err)
		}
		out[models.Category(name)] = m
	}
	return out, nil
}

// Warm preloads local indexes; it is a no-op for postgres.
func (c *Components) Warm(ctx context.Context) error {
	if c.Local == nil {
		return nil
	}
	return c.Local.Warm(ctx)
}

// Watch reloads local indexes when their files change; it is a no-op for
// postgres or when ALERA_WATCH_INDEXES is off.
func (c *Components) Watch(ctx context.Context) error {
	if c.Local == nil || !c.Config.WatchIndexes {
		return nil
	}
	return c.Local.Watch(ctx)
}

// Runner returns the executor named by the config. The returned close func
// releases the Temporal client when one was dialed.
func (c *Components) Runner(logger *zap.Logger) (scout.Runner, func(), error) {
	switch strings.ToLower(strings.TrimSpace(c.Config.Executor)) {
	case "", ExecutorInline:
		return c.Pipeline, func() {}, nil
	case ExecutorTemporal:
		tc, err := tclient.Dial(tclient.Options{
			HostPort: c.Config.TemporalAddress,
			Logger:   workflows.NewZapAdapter(logger),
		})
		if err != nil {
			return nil, nil, fmt.Errorf("dial temporal: %w", err)
		}
		return workflows.NewTemporalRunner(tc, c.Config, c.Catalog), tc.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported executor %q", c.Config.Executor)
	}
}

func (c *Components) Close() {
	c.DB.Close()
}
