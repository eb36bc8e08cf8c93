package scout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"alera/internal/grounding"
	"alera/internal/models"
	"alera/internal/providers"
	"alera/internal/query"
	"alera/internal/util"

	"go.uber.org/zap"
)

type Summarizer struct {
	llm     providers.LLMProvider
	timeout time.Duration
	logger  *zap.Logger
}

func NewSummarizer(llm providers.LLMProvider, timeout time.Duration, logger *zap.Logger) *Summarizer {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Summarizer{llm: llm, timeout: timeout, logger: logger}
}

// BuildPrompts returns the system instruction and the user prompt for one
// recommendation call. rawQuery is the text the scout typed, not the
// embedding-formatted one.
func BuildPrompts(rawQuery string, candidates []models.PlayerRecord, mode models.Mode) (string, string) {
	system := providers.DefaultSystemPrompt
	if year, ok := query.DetectYear(rawQuery); ok {
		system += fmt.Sprintf(" Only recommend players from the %s draft class.", year)
	}

	chunks := make([]string, 0, len(candidates))
	for _, c := range candidates {
		chunks = append(chunks, c.Chunk)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\nScouting Query: %s\n\n%s\n%s\n\n", rawQuery, providers.ContextMarker, strings.Join(chunks, "\n\n"))
	fmt.Fprintf(&b, "Based on the query, suggest %d-%d ideal players", mode.MinPlayers, mode.MaxPlayers)
	if mode.IncludeRationale {
		b.WriteString(".\nFor each player, give a short paragraph that starts with the player's full name and explains why they are a good fit.")
		b.WriteString("\nAfter listing all players, give a final recommendation for the best overall fit")
	} else {
		b.WriteString(" and explain why. Do not mention other players.\nClose with your single best overall fit")
	}
	fmt.Fprintf(&b, " under the heading %q.", grounding.FinalSummaryMarker)
	return system, b.String()
}

// Summarize asks the model for recommendations once and grounds the answer
// against candidates. An empty candidate set short-circuits without calling
// the model. A failed call fails the whole step.
func (s *Summarizer) Summarize(ctx context.Context, rawQuery string, candidates []models.PlayerRecord, mode models.Mode) (models.RecommendationOutput, providers.ProviderInfo, error) {
	if len(candidates) == 0 {
		return EmptyOutput(), providers.ProviderInfo{}, nil
	}

	system, prompt := BuildPrompts(rawQuery, candidates, mode)
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	started := time.Now()
	resp, info, err := s.llm.Generate(callCtx, providers.GenerateRequest{
		Operation: "scout_recommend_" + mode.Name,
		System:    system,
		Prompt:    prompt,
	})
	if err != nil {
		errType := providers.ClassifyError(err)
		s.logger.Warn("llm call failed",
			zap.String("provider", info.Name),
			zap.String("model", info.Model),
			zap.String("mode", mode.Name),
			zap.String("error_type", string(errType)),
			zap.Duration("took", time.Since(started)),
			zap.Error(err),
		)
		return models.RecommendationOutput{}, info, &util.ExternalServiceError{
			Provider: info.Name,
			Model:    info.Model,
			Type:     string(errType),
			Err:      err,
		}
	}
	s.logger.Info("llm call succeeded",
		zap.String("provider", info.Name),
		zap.String("model", info.Model),
		zap.String("mode", mode.Name),
		zap.Int("candidates", len(candidates)),
		zap.Int("response_chars", len(resp.Text)),
		zap.Duration("took", time.Since(started)),
	)

	return Ground(resp.Text, candidates, mode), info, nil
}

// EmptyOutput is the recommendation for an empty candidate set.
func EmptyOutput() models.RecommendationOutput {
	return models.RecommendationOutput{
		Narrative:        grounding.NoMatchesNarrative,
		RecommendedNames: []string{},
		RationaleByName:  map[string]string{},
		FinalSummary:     grounding.NoFinalSummary,
	}
}

// Ground turns raw model text into a recommendation for the given mode.
func Ground(text string, candidates []models.PlayerRecord, mode models.Mode) models.RecommendationOutput {
	if mode.TrimFollowUp {
		text = grounding.TrimFollowUp(text)
	} else {
		text = strings.TrimSpace(text)
	}
	names := make([]string, 0, len(candidates))
	for _, c := range candidates {
		names = append(names, c.Name)
	}
	recommended := grounding.GroundNames(text, names, mode.MaxPlayers)

	rationale := map[string]string{}
	if mode.IncludeRationale {
		rationale = grounding.ExtractRationales(text, recommended)
	}
	return models.RecommendationOutput{
		Narrative:        text,
		RecommendedNames: recommended,
		RationaleByName:  rationale,
		FinalSummary:     grounding.ExtractFinalSummary(text),
	}
}
