package workflows

import (
	"context"
	"errors"
	"fmt"
	"time"

	"alera/internal/activities"
	"alera/internal/config"
	"alera/internal/dashboard"
	"alera/internal/models"
	"alera/internal/scout"
	"alera/internal/util"

	"github.com/google/uuid"
	enumspb "go.temporal.io/api/enums/v1"
	tclient "go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"
)

// WorkflowStarter is the slice of the Temporal client the runner uses.
type WorkflowStarter interface {
	ExecuteWorkflow(ctx context.Context, options tclient.StartWorkflowOptions, workflow interface{}, args ...interface{}) (tclient.WorkflowRun, error)
}

// TemporalRunner executes scout requests as ScoutWorkflow runs and waits for
// the result.
type TemporalRunner struct {
	client     WorkflowStarter
	taskQueue  string
	catalog    *config.Catalog
	season     string
	defaultK   int
	llmTimeout time.Duration
}

func NewTemporalRunner(c WorkflowStarter, cfg config.Config, catalog *config.Catalog) *TemporalRunner {
	return &TemporalRunner{
		client:     c,
		taskQueue:  cfg.TemporalTaskQueue,
		catalog:    catalog,
		season:     cfg.TargetSeason,
		defaultK:   cfg.TopK,
		llmTimeout: time.Duration(cfg.LLMTimeoutSecs) * time.Second,
	}
}

func (r *TemporalRunner) Run(ctx context.Context, req scout.Request) (scout.Result, error) {
	req, err := scout.Normalize(req, r.defaultK)
	if err != nil {
		return scout.Result{}, err
	}
	src, err := r.catalog.Source(req.Category)
	if err != nil {
		return scout.Result{}, err
	}

	requestID := uuid.NewString()
	run, err := r.client.ExecuteWorkflow(ctx, tclient.StartWorkflowOptions{
		ID:                    "scout-" + requestID,
		TaskQueue:             r.taskQueue,
		WorkflowIDReusePolicy: enumspb.WORKFLOW_ID_REUSE_POLICY_REJECT_DUPLICATE,
	}, ScoutWorkflow, ScoutInput{
		RequestID:         requestID,
		Query:             req.Query,
		Category:          req.Category,
		DraftRange:        req.DraftRange,
		Mode:              req.Mode,
		TopK:              req.TopK,
		TargetSeason:      r.season,
		LLMTimeoutSeconds: int(r.llmTimeout / time.Second),
	})
	if err != nil {
		return scout.Result{}, fmt.Errorf("start scout workflow: %w", err)
	}

	var out ScoutOutput
	if err := run.Get(ctx, &out); err != nil {
		return scout.Result{}, FromWorkflowError(err, req.Category)
	}
	return scout.Result{
		RequestID:     requestID,
		Query:         out.Query,
		Mode:          req.Mode.Name,
		Candidates:    out.Candidates,
		Output:        out.Output,
		Cards:         dashboard.Cards(src.DashboardURL, out.Output),
		EmbedProvider: out.EmbedProvider,
		LLMProvider:   out.LLMProvider,
	}, nil
}

// FromWorkflowError restores the pipeline error types from a failed run so
// callers handle both executors the same way.
func FromWorkflowError(err error, category models.Category) error {
	var appErr *temporal.ApplicationError
	if !errors.As(err, &appErr) {
		return err
	}
	switch appErr.Type() {
	case activities.ErrTypeRetrieval:
		return &util.RetrievalError{Category: string(category), Err: errors.New(appErr.Message())}
	case activities.ErrTypeExternalService:
		var d activities.ExternalErrorDetails
		if appErr.HasDetails() {
			_ = appErr.Details(&d)
		}
		return &util.ExternalServiceError{Provider: d.Provider, Model: d.Model, Type: d.Type, Err: errors.New(appErr.Message())}
	default:
		return err
	}
}
