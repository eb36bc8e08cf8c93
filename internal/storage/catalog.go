package storage

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"alera/internal/config"
	"alera/internal/models"
	"alera/internal/vector"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Catalog lazily loads one composite index per category from local sources
// and keeps it for the life of the process. Failed loads are not cached.
type Catalog struct {
	sources *config.Catalog
	backend string
	logger  *zap.Logger

	mu      sync.Mutex
	entries map[models.Category]*catalogEntry
}

type catalogEntry struct {
	mu  sync.Mutex
	idx *vector.Index
}

func NewCatalog(sources *config.Catalog, backend string, logger *zap.Logger) (*Catalog, error) {
	backend = strings.ToLower(strings.TrimSpace(backend))
	if backend == "" {
		backend = BackendFile
	}
	if backend != BackendFile && backend != BackendSQLite {
		return nil, fmt.Errorf("catalog backend %q cannot be loaded locally", backend)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Catalog{
		sources: sources,
		backend: backend,
		logger:  logger,
		entries: make(map[models.Category]*catalogEntry),
	}, nil
}

func (c *Catalog) Index(ctx context.Context, category models.Category) (*vector.Index, error) {
	c.mu.Lock()
	e, ok := c.entries[category]
	if !ok {
		e = &catalogEntry{}
		c.entries[category] = e
	}
	c.mu.Unlock()

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.idx != nil {
		return e.idx, nil
	}
	started := time.Now()
	idx, err := c.load(ctx, category)
	if err != nil {
		return nil, err
	}
	e.idx = idx
	c.logger.Info("category index loaded",
		zap.String("category", string(category)),
		zap.String("backend", c.backend),
		zap.Int("records", idx.Len()),
		zap.Int("dim", idx.Dim()),
		zap.Duration("took", time.Since(started)),
	)
	return idx, nil
}

func (c *Catalog) Search(ctx context.Context, category models.Category, queryVec []float32, topK int) ([]vector.Hit, error) {
	idx, err := c.Index(ctx, category)
	if err != nil {
		return nil, err
	}
	return idx.Search(queryVec, topK)
}

// Warm loads every listed category concurrently, or all catalog categories
// when none are given.
func (c *Catalog) Warm(ctx context.Context, categories ...models.Category) error {
	if len(categories) == 0 {
		for name := range c.sources.Categories {
			categories = append(categories, models.Category(name))
		}
	}
	g, gctx := errgroup.WithContext(ctx)
	for _, category := range categories {
		category := category
		g.Go(func() error {
			_, err := c.Index(gctx, category)
			return err
		})
	}
	return g.Wait()
}

func (c *Catalog) load(ctx context.Context, category models.Category) (*vector.Index, error) {
	src, err := c.sources.Source(category)
	if err != nil {
		return nil, err
	}
	switch c.backend {
	case BackendSQLite:
		metric, err := vector.ParseMetric(src.Metric)
		if err != nil {
			return nil, err
		}
		records, vectors, err := LoadSQLiteBundle(ctx, src.SQLite)
		if err != nil {
			return nil, err
		}
		return vector.NewIndex(records, vectors, metric)
	default:
		records, err := LoadCorpusFile(src.Corpus)
		if err != nil {
			return nil, err
		}
		metric, vectors, err := vector.ReadIndexFile(src.Index)
		if err != nil {
			return nil, err
		}
		return vector.NewIndex(records, vectors, metric)
	}
}
