package activities

import (
	"context"
	"errors"

	"alera/internal/retrieval"
	"alera/internal/scout"
	"alera/internal/util"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"
	"go.uber.org/zap"
)

type Activities struct {
	retriever  *retrieval.Retriever
	summarizer *scout.Summarizer
	logger     *zap.Logger
}

func New(retriever *retrieval.Retriever, summarizer *scout.Summarizer, logger *zap.Logger) *Activities {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Activities{retriever: retriever, summarizer: summarizer, logger: logger}
}

// RetrieveCandidatesActivity embeds the formatted query and searches the
// category index. Broken index data is not retried; provider hiccups are.
func (a *Activities) RetrieveCandidatesActivity(ctx context.Context, in RetrieveCandidatesInput) (RetrieveCandidatesOutput, error) {
	records, info, err := a.retriever.Retrieve(ctx, in.FormattedQuery, in.Category, in.TopK)
	if err != nil {
		a.logger.Warn("retrieve activity failed",
			zap.String("request_id", in.RequestID),
			zap.Int32("attempt", activity.GetInfo(ctx).Attempt),
			zap.Error(err),
		)
		if permanentRetrievalError(err) {
			return RetrieveCandidatesOutput{}, temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeRetrieval, err, string(in.Category))
		}
		return RetrieveCandidatesOutput{}, temporal.NewApplicationError(err.Error(), ErrTypeRetrieval, string(in.Category))
	}
	return RetrieveCandidatesOutput{Records: records, Provider: info}, nil
}

// RecommendActivity makes the single LLM call for a request.
func (a *Activities) RecommendActivity(ctx context.Context, in RecommendInput) (RecommendOutput, error) {
	out, info, err := a.summarizer.Summarize(ctx, in.RawQuery, in.Candidates, in.Mode)
	if err != nil {
		details := ExternalErrorDetails{Provider: info.Name, Model: info.Model}
		var ext *util.ExternalServiceError
		if errors.As(err, &ext) {
			details = ExternalErrorDetails{Provider: ext.Provider, Model: ext.Model, Type: ext.Type}
		}
		return RecommendOutput{}, temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeExternalService, err, details)
	}
	return RecommendOutput{Output: out, Provider: info}, nil
}

func permanentRetrievalError(err error) bool {
	for _, target := range []error{
		util.ErrIndexMismatch,
		util.ErrMalformedVector,
		util.ErrMalformedCorpus,
		util.ErrDimensionMismatch,
		util.ErrOrdinalOutOfRange,
		util.ErrUnknownCategory,
		util.ErrEmptyQuery,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
