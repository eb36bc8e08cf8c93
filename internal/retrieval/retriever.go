package retrieval

import (
	"context"
	"fmt"
	"strings"
	"time"

	"alera/internal/models"
	"alera/internal/providers"
	"alera/internal/util"
	"alera/internal/vector"

	"go.uber.org/zap"
)

// Backend is a per-category nearest-neighbour source: the local catalog cache
// or the pgvector searcher.
type Backend interface {
	Search(ctx context.Context, category models.Category, queryVec []float32, topK int) ([]vector.Hit, error)
}

type Retriever struct {
	embedder providers.EmbeddingProvider
	backend  Backend
	dim      int
	logger   *zap.Logger
}

func NewRetriever(embedder providers.EmbeddingProvider, backend Backend, dim int, logger *zap.Logger) *Retriever {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Retriever{embedder: embedder, backend: backend, dim: dim, logger: logger}
}

// Retrieve embeds the formatted query with the configured model and returns up
// to k records of category, nearest first. Every failure is a
// *util.RetrievalError.
func (r *Retriever) Retrieve(ctx context.Context, formatted string, category models.Category, k int) ([]models.PlayerRecord, providers.ProviderInfo, error) {
	if strings.TrimSpace(formatted) == "" {
		return nil, providers.ProviderInfo{}, &util.RetrievalError{Category: string(category), Err: util.ErrEmptyQuery}
	}
	if k <= 0 {
		k = 10
	}
	started := time.Now()
	vecs, info, err := r.embedder.Embed(ctx, providers.EmbedRequest{
		Operation: "scout_query",
		Inputs:    []string{formatted},
		Dimension: r.dim,
	})
	if err != nil {
		return nil, info, &util.RetrievalError{Category: string(category), Err: fmt.Errorf("embed query with %s: %w", info.Name, err)}
	}
	if len(vecs) != 1 {
		return nil, info, &util.RetrievalError{Category: string(category), Err: fmt.Errorf("embed query: got %d vectors", len(vecs))}
	}
	if r.dim > 0 && len(vecs[0]) != r.dim {
		return nil, info, &util.RetrievalError{
			Category: string(category),
			Err:      fmt.Errorf("%w: %s/%s returned %d, index expects %d", util.ErrDimensionMismatch, info.Name, info.Model, len(vecs[0]), r.dim),
		}
	}
	if !vector.Finite(vecs[0]) {
		return nil, info, &util.RetrievalError{
			Category: string(category),
			Err:      fmt.Errorf("%w: %s/%s returned a non-finite query embedding", util.ErrMalformedVector, info.Name, info.Model),
		}
	}

	hits, err := r.backend.Search(ctx, category, vecs[0], k)
	if err != nil {
		return nil, info, &util.RetrievalError{Category: string(category), Err: err}
	}
	records := make([]models.PlayerRecord, 0, len(hits))
	for _, h := range hits {
		records = append(records, h.Record)
	}
	r.logger.Debug("retrieved candidates",
		zap.String("category", string(category)),
		zap.Int("k", k),
		zap.Int("hits", len(records)),
		zap.String("embed_provider", info.Name),
		zap.String("embed_model", info.Model),
		zap.Duration("took", time.Since(started)),
	)
	return records, info, nil
}
