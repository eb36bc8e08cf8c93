package workflows

import (
	"time"

	"alera/internal/activities"
	"alera/internal/models"
	"alera/internal/query"
	"alera/internal/retrieval"
	"alera/internal/scout"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

const QueryGetStage = "GetStage"

// ScoutWorkflow runs one recommendation request. Formatting and filtering are
// pure and run inline; embedding/search and the LLM call are activities. The
// LLM activity is attempted exactly once.
func ScoutWorkflow(ctx workflow.Context, in ScoutInput) (ScoutOutput, error) {
	stage := StageRetrieving
	if err := workflow.SetQueryHandler(ctx, QueryGetStage, func() (string, error) {
		return stage, nil
	}); err != nil {
		return ScoutOutput{}, err
	}
	logger := workflow.GetLogger(ctx)

	q := models.Query{
		RawText:          in.Query,
		FormattedText:    query.FormatForEmbedding(in.Query),
		Category:         in.Category,
		DraftRangeFilter: in.DraftRange,
	}

	retrieveCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2,
			MaximumInterval:    10 * time.Second,
			MaximumAttempts:    3,
		},
	})
	var retrieved activities.RetrieveCandidatesOutput
	if err := workflow.ExecuteActivity(retrieveCtx, "RetrieveCandidatesActivity", activities.RetrieveCandidatesInput{
		RequestID:      in.RequestID,
		FormattedQuery: q.FormattedText,
		Category:       in.Category,
		TopK:           in.TopK,
	}).Get(ctx, &retrieved); err != nil {
		return ScoutOutput{}, err
	}

	stage = StageFiltering
	candidates := retrieval.ApplyDraftFilters(retrieved.Records, in.Category, in.DraftRange, in.TargetSeason)
	logger.Info("candidates selected", "request_id", in.RequestID, "retrieved", len(retrieved.Records), "kept", len(candidates))

	out := ScoutOutput{
		Query:         q,
		Candidates:    candidates,
		Output:        scout.EmptyOutput(),
		EmbedProvider: retrieved.Provider,
	}
	if len(candidates) == 0 {
		stage = StageDone
		return out, nil
	}

	stage = StageRecommending
	timeout := time.Duration(in.LLMTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	recommendCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: timeout + 10*time.Second,
		RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 1},
	})
	var rec activities.RecommendOutput
	if err := workflow.ExecuteActivity(recommendCtx, "RecommendActivity", activities.RecommendInput{
		RequestID:  in.RequestID,
		RawQuery:   in.Query,
		Candidates: candidates,
		Mode:       in.Mode,
	}).Get(ctx, &rec); err != nil {
		return ScoutOutput{}, err
	}

	stage = StageDone
	out.Output = rec.Output
	out.LLMProvider = rec.Provider
	return out, nil
}
