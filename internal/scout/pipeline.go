package scout

import (
	"context"
	"strings"
	"time"

	"alera/internal/config"
	"alera/internal/dashboard"
	"alera/internal/models"
	"alera/internal/providers"
	"alera/internal/query"
	"alera/internal/retrieval"
	"alera/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Request struct {
	Query      string
	Category   models.Category
	DraftRange string
	Mode       models.Mode
	TopK       int
}

// Result is either complete or absent: Run never returns a partial one.
type Result struct {
	RequestID     string                      `json:"request_id"`
	Query         models.Query                `json:"query"`
	Mode          string                      `json:"mode"`
	Candidates    []models.PlayerRecord       `json:"candidates"`
	Output        models.RecommendationOutput `json:"output"`
	Cards         []dashboard.Card            `json:"cards"`
	EmbedProvider providers.ProviderInfo      `json:"embed_provider"`
	LLMProvider   providers.ProviderInfo      `json:"llm_provider"`
}

// Runner is the single request/response boundary callers depend on. The
// in-process Pipeline and the Temporal-backed runner both satisfy it.
type Runner interface {
	Run(ctx context.Context, req Request) (Result, error)
}

type Pipeline struct {
	retriever  *retrieval.Retriever
	summarizer *Summarizer
	catalog    *config.Catalog
	season     string
	defaultK   int
	logger     *zap.Logger
}

func NewPipeline(retriever *retrieval.Retriever, summarizer *Summarizer, catalog *config.Catalog, season string, defaultK int, logger *zap.Logger) *Pipeline {
	if defaultK <= 0 {
		defaultK = 10
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		retriever:  retriever,
		summarizer: summarizer,
		catalog:    catalog,
		season:     season,
		defaultK:   defaultK,
		logger:     logger,
	}
}

// Normalize validates req and fills defaults. The query text is left as
// typed. It is shared with the workflow path so both executors accept the
// same requests.
func Normalize(req Request, defaultK int) (Request, error) {
	if strings.TrimSpace(req.Query) == "" {
		return req, util.ErrEmptyQuery
	}
	if req.Category == "" {
		req.Category = models.CategoryDraft
	}
	if _, err := models.ParseCategory(string(req.Category)); err != nil {
		return req, err
	}
	if req.Mode.Name == "" {
		req.Mode = models.ModeQuick
	}
	if req.TopK <= 0 {
		req.TopK = defaultK
	}
	return req, nil
}

func (p *Pipeline) Run(ctx context.Context, req Request) (Result, error) {
	req, err := Normalize(req, p.defaultK)
	if err != nil {
		return Result{}, err
	}
	src, err := p.catalog.Source(req.Category)
	if err != nil {
		return Result{}, err
	}

	requestID := uuid.NewString()
	log := p.logger.With(
		zap.String("request_id", requestID),
		zap.String("category", string(req.Category)),
		zap.String("mode", req.Mode.Name),
	)
	started := time.Now()

	q := models.Query{
		RawText:          req.Query,
		FormattedText:    query.FormatForEmbedding(req.Query),
		Category:         req.Category,
		DraftRangeFilter: req.DraftRange,
	}
	retrieved, embedInfo, err := p.retriever.Retrieve(ctx, q.FormattedText, req.Category, req.TopK)
	if err != nil {
		log.Error("retrieval failed", zap.Error(err))
		return Result{}, err
	}
	candidates := retrieval.ApplyDraftFilters(retrieved, req.Category, req.DraftRange, p.season)
	log.Info("candidates selected",
		zap.Int("retrieved", len(retrieved)),
		zap.Int("kept", len(candidates)),
		zap.String("draft_range", req.DraftRange),
	)

	out, llmInfo, err := p.summarizer.Summarize(ctx, q.RawText, candidates, req.Mode)
	if err != nil {
		return Result{}, err
	}
	log.Info("scout request completed",
		zap.Strings("recommended", out.RecommendedNames),
		zap.Duration("took", time.Since(started)),
	)

	return Result{
		RequestID:     requestID,
		Query:         q,
		Mode:          req.Mode.Name,
		Candidates:    candidates,
		Output:        out,
		Cards:         dashboard.Cards(src.DashboardURL, out),
		EmbedProvider: embedInfo,
		LLMProvider:   llmInfo,
	}, nil
}
