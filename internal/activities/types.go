package activities

import (
	"alera/internal/models"
	"alera/internal/providers"
)

type RetrieveCandidatesInput struct {
	RequestID      string          `json:"request_id"`
	FormattedQuery string          `json:"formatted_query"`
	Category       models.Category `json:"category"`
	TopK           int             `json:"top_k"`
}

type RetrieveCandidatesOutput struct {
	Records  []models.PlayerRecord  `json:"records"`
	Provider providers.ProviderInfo `json:"provider"`
}

type RecommendInput struct {
	RequestID  string                `json:"request_id"`
	RawQuery   string                `json:"raw_query"`
	Candidates []models.PlayerRecord `json:"candidates"`
	Mode       models.Mode           `json:"mode"`
}

type RecommendOutput struct {
	Output   models.RecommendationOutput `json:"output"`
	Provider providers.ProviderInfo      `json:"provider"`
}

// ExternalErrorDetails rides on a failed RecommendActivity so the caller can
// rebuild the provider error.
type ExternalErrorDetails struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
	Type     string `json:"type"`
}

const (
	ErrTypeRetrieval       = "RetrievalError"
	ErrTypeExternalService = "ExternalServiceError"
)
