package workflows

import (
	"alera/internal/models"
	"alera/internal/providers"
)

type ScoutInput struct {
	RequestID         string          `json:"request_id"`
	Query             string          `json:"query"`
	Category          models.Category `json:"category"`
	DraftRange        string          `json:"draft_range,omitempty"`
	Mode              models.Mode     `json:"mode"`
	TopK              int             `json:"top_k"`
	TargetSeason      string          `json:"target_season"`
	LLMTimeoutSeconds int             `json:"llm_timeout_seconds"`
}

type ScoutOutput struct {
	Query         models.Query                `json:"query"`
	Candidates    []models.PlayerRecord       `json:"candidates"`
	Output        models.RecommendationOutput `json:"output"`
	EmbedProvider providers.ProviderInfo      `json:"embed_provider"`
	LLMProvider   providers.ProviderInfo      `json:"llm_provider"`
}

const (
	StageRetrieving   = "retrieving"
	StageFiltering    = "filtering"
	StageRecommending = "recommending"
	StageDone         = "done"
)
