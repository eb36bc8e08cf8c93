package vector

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"alera/internal/models"

	"github.com/jackc/pgx/v5"
)

// PGSearcher runs k-NN against a pgvector table loaded by the offline
// ingestion job. Each row carries its own record, so the corpus/index pairing
// cannot drift.
type PGSearcher struct {
	q       Queryer
	table   string
	metrics map[models.Category]Metric
	keys    map[models.Category]string
}

type Queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// NewPGSearcher searches table. keys maps a category to the value of its
// category column (defaults to the category name); metrics picks the distance
// operator per category (defaults to l2).
func NewPGSearcher(q Queryer, table string, metrics map[models.Category]Metric, keys map[models.Category]string) *PGSearcher {
	if strings.TrimSpace(table) == "" {
		table = "player_chunks"
	}
	return &PGSearcher{q: q, table: table, metrics: metrics, keys: keys}
}

func (s *PGSearcher) Search(ctx context.Context, category models.Category, queryVec []float32, topK int) ([]Hit, error) {
	if topK <= 0 {
		topK = 10
	}
	key := string(category)
	if k, ok := s.keys[category]; ok && k != "" {
		key = k
	}
	rows, err := s.q.Query(ctx, s.searchSQL(s.metrics[category]), key, ToLiteral(queryVec), topK)
	if err != nil {
		return nil, fmt.Errorf("query vector search: %w", err)
	}
	defer rows.Close()

	hits := make([]Hit, 0, topK)
	for rows.Next() {
		var (
			h         Hit
			draftYear string
		)
		if err := rows.Scan(&h.Ordinal, &h.Record.Name, &h.Record.Chunk, &draftYear, &h.Record.DraftRange, &h.Distance); err != nil {
			return nil, fmt.Errorf("scan player result: %w", err)
		}
		h.Record.DraftYear = models.DraftYear(strings.TrimSpace(draftYear))
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate search rows: %w", err)
	}
	return hits, nil
}

func (s *PGSearcher) searchSQL(metric Metric) string {
	op := "<->"
	if metric == MetricInnerProduct {
		op = "<#>"
	}
	return `
SELECT p.ordinal,
       p.name,
       p.chunk,
       COALESCE(p.draft_year, '') AS draft_year,
       COALESCE(p.draft_range, '') AS draft_range,
       (p.embedding ` + op + ` $2::vector)::float8 AS distance
FROM ` + pgx.Identifier{s.table}.Sanitize() + ` p
WHERE p.category = $1
  AND p.embedding IS NOT NULL
ORDER BY p.embedding ` + op + ` $2::vector, p.ordinal
LIMIT $3`
}

func ToLiteral(v []float32) string {
	parts := make([]string, 0, len(v))
	for _, x := range v {
		parts = append(parts, strconv.FormatFloat(float64(x), 'f', -1, 32))
	}
	return "[" + strings.Join(parts, ",") + "]"
}
