package scout

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"alera/internal/config"
	"alera/internal/grounding"
	"alera/internal/models"
	"alera/internal/providers"
	"alera/internal/retrieval"
	"alera/internal/util"
	"alera/internal/vector"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type stubLLM struct {
	mock.Mock
}

func (s *stubLLM) Generate(ctx context.Context, req providers.GenerateRequest) (providers.GenerateResponse, providers.ProviderInfo, error) {
	args := s.Called(ctx, req)
	return args.Get(0).(providers.GenerateResponse), args.Get(1).(providers.ProviderInfo), args.Error(2)
}

var stubInfo = providers.ProviderInfo{Name: "stub", Model: "stub-1"}

func scoutRecords() []models.PlayerRecord {
	return []models.PlayerRecord{
		{Name: "Jane Doe", Chunk: "Jane Doe: 6'9\" stretch four, 40% from three, 9 rebounds.", DraftYear: "2025", DraftRange: "Lottery"},
		{Name: "John Roe", Chunk: "John Roe: rim protector, elite rebounder.", DraftYear: "2025", DraftRange: "Top 5"},
		{Name: "Sam Poe", Chunk: "Sam Poe: pass-first guard.", DraftYear: "2024", DraftRange: "Lottery"},
		{Name: "Max Moe", Chunk: "Max Moe: athletic wing, developing shot.", DraftYear: "2025", DraftRange: "2nd Round"},
	}
}

type indexBackend struct{ idx *vector.Index }

func (b indexBackend) Search(_ context.Context, _ models.Category, q []float32, k int) ([]vector.Hit, error) {
	return b.idx.Search(q, k)
}

func newTestPipeline(t *testing.T, llm providers.LLMProvider, timeout time.Duration) *Pipeline {
	t.Helper()
	idx, err := vector.NewIndex(scoutRecords(), [][]float32{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}, {1, 1, 0}}, vector.MetricL2)
	require.NoError(t, err)
	retriever := retrieval.NewRetriever(providers.NewMockProvider(3), indexBackend{idx: idx}, 3, nil)
	return NewPipeline(retriever, NewSummarizer(llm, timeout, nil), config.DefaultCatalog(), "2025", 10, nil)
}

func TestSummarizeEmptyCandidatesSkipsModel(t *testing.T) {
	llm := &stubLLM{}
	out, _, err := NewSummarizer(llm, time.Second, nil).Summarize(context.Background(), "anyone", nil, models.ModeDetailed)
	require.NoError(t, err)
	require.Equal(t, grounding.NoMatchesNarrative, out.Narrative)
	require.Empty(t, out.RecommendedNames)
	require.Empty(t, out.RationaleByName)
	require.Equal(t, grounding.NoFinalSummary, out.FinalSummary)
	llm.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestBuildPromptsYearConstraintAndContextOrder(t *testing.T) {
	system, prompt := BuildPrompts("Stretch 4 (2025 draft class)", scoutRecords()[:2], models.ModeQuick)
	require.True(t, strings.HasSuffix(system, "Only recommend players from the 2025 draft class."))
	require.Contains(t, prompt, "Scouting Query: Stretch 4 (2025 draft class)")
	require.Contains(t, prompt, scoutRecords()[0].Chunk+"\n\n"+scoutRecords()[1].Chunk)
	require.Contains(t, prompt, "suggest 1-2 ideal players")
	require.Contains(t, prompt, "Do not mention other players.")

	system, prompt = BuildPrompts("a rim protector", scoutRecords()[:1], models.ModeDetailed)
	require.Equal(t, providers.DefaultSystemPrompt, system)
	require.Contains(t, prompt, "suggest 3-4 ideal players")
	require.Contains(t, prompt, `"Final Best Fit Recommendation"`)
}

func TestSummarizeDetailedGrounding(t *testing.T) {
	text := "Max Moe is raw but explosive.\n\nJane Doe brings elite shooting.\n\nJohn Roe protects the rim.\n\n" +
		"Final Best Fit Recommendation\nJane Doe is the top pick.\n\nWould you like deeper stats on Max Moe?"
	llm := &stubLLM{}
	llm.On("Generate", mock.Anything, mock.MatchedBy(func(req providers.GenerateRequest) bool {
		return req.Operation == "scout_recommend_detailed" && req.System != ""
	})).Return(providers.GenerateResponse{Text: text}, stubInfo, nil).Once()

	out, info, err := NewSummarizer(llm, time.Second, nil).Summarize(context.Background(), "shooter", scoutRecords(), models.ModeDetailed)
	require.NoError(t, err)
	require.Equal(t, stubInfo, info)
	require.Equal(t, []string{"Max Moe", "Jane Doe", "John Roe"}, out.RecommendedNames)
	require.Equal(t, "brings elite shooting.", out.RationaleByName["Jane Doe"])
	require.Equal(t, "Jane Doe is the top pick.", out.FinalSummary)
	require.NotContains(t, out.Narrative, "Would you like deeper stats")
	llm.AssertExpectations(t)
}

func TestSummarizeQuickModeCapsAndSkipsRationale(t *testing.T) {
	text := "John Roe and Jane Doe both fit; Max Moe less so.\nWould you like deeper stats?"
	llm := &stubLLM{}
	llm.On("Generate", mock.Anything, mock.Anything).Return(providers.GenerateResponse{Text: text}, stubInfo, nil)

	out, _, err := NewSummarizer(llm, time.Second, nil).Summarize(context.Background(), "big", scoutRecords(), models.ModeQuick)
	require.NoError(t, err)
	require.Equal(t, []string{"John Roe", "Jane Doe"}, out.RecommendedNames)
	require.Empty(t, out.RationaleByName)
	require.Contains(t, out.Narrative, "Would you like deeper stats")
	require.Equal(t, grounding.NoFinalSummary, out.FinalSummary)
}

func TestSummarizeFailureIsAtomic(t *testing.T) {
	llm := &stubLLM{}
	llm.On("Generate", mock.Anything, mock.Anything).
		Return(providers.GenerateResponse{}, stubInfo, errors.New("stub generate: error 429: rate limit")).Once()

	out, _, err := NewSummarizer(llm, time.Second, nil).Summarize(context.Background(), "q", scoutRecords(), models.ModeQuick)
	require.Error(t, err)
	require.Equal(t, models.RecommendationOutput{}, out)

	var ext *util.ExternalServiceError
	require.ErrorAs(t, err, &ext)
	require.Equal(t, "stub", ext.Provider)
	require.ErrorIs(t, err, util.ErrRateLimited)
	llm.AssertNumberOfCalls(t, "Generate", 1)
}

func TestSummarizeHonoursTimeout(t *testing.T) {
	llm := &stubLLM{}
	llm.On("Generate", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			<-args.Get(0).(context.Context).Done()
		}).
		Return(providers.GenerateResponse{}, stubInfo, context.DeadlineExceeded)

	_, _, err := NewSummarizer(llm, 20*time.Millisecond, nil).Summarize(context.Background(), "q", scoutRecords(), models.ModeQuick)
	require.ErrorIs(t, err, util.ErrTransient)
}

func TestPipelineEndToEnd(t *testing.T) {
	llm := &stubLLM{}
	llm.On("Generate", mock.Anything, mock.MatchedBy(func(req providers.GenerateRequest) bool {
		return strings.Contains(req.System, "2025 draft class") &&
			strings.Contains(req.Prompt, "Scouting Query: Stretch 4 who can shoot 3s and rebound (2025 draft class)") &&
			!strings.Contains(req.Prompt, "Sam Poe")
	})).Return(providers.GenerateResponse{
		Text: "Jane Doe is the ideal stretch four.\n\nMax Moe could grow into it.\n\nFinal Best Fit Recommendation: Jane Doe.",
	}, stubInfo, nil).Once()

	p := newTestPipeline(t, llm, time.Second)
	res, err := p.Run(context.Background(), Request{
		Query:      "Stretch 4 who can shoot 3s and rebound (2025 draft class)",
		Category:   models.CategoryDraft,
		DraftRange: "All",
		Mode:       models.ModeQuick,
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.RequestID)
	require.Equal(t, "2025 draft class: Stretch 4 who can shoot 3s and rebound (2025 draft class)", res.Query.FormattedText)
	require.Len(t, res.Candidates, 3)
	for _, c := range res.Candidates {
		require.Equal(t, "2025", c.DraftYear.String())
	}
	require.LessOrEqual(t, len(res.Output.RecommendedNames), 2)
	require.Equal(t, []string{"Jane Doe", "Max Moe"}, res.Output.RecommendedNames)
	require.Equal(t, "Jane Doe.", res.Output.FinalSummary)
	require.Len(t, res.Cards, 2)
	require.Equal(t, config.DefaultDashboardURL+"?:language=en&PlayerParam=Jane%20Doe", res.Cards[0].URL)
	require.Equal(t, "stub", res.LLMProvider.Name)
	require.Equal(t, "mock", res.EmbedProvider.Name)
	llm.AssertExpectations(t)
}

func TestPipelineDetailedEveryNameHasRationale(t *testing.T) {
	llm := &stubLLM{}
	llm.On("Generate", mock.Anything, mock.Anything).Return(providers.GenerateResponse{
		Text: "Top pick: Jane Doe\n\nJohn Roe rebounds everything.\n\nMax Moe",
	}, stubInfo, nil)

	res, err := newTestPipeline(t, llm, time.Second).Run(context.Background(), Request{
		Query: "rebounder 2025", Mode: models.ModeDetailed,
	})
	require.NoError(t, err)
	require.LessOrEqual(t, len(res.Output.RecommendedNames), 4)
	for _, name := range res.Output.RecommendedNames {
		require.NotEmpty(t, res.Output.RationaleByName[name])
	}
	require.Equal(t, grounding.NoRationale, res.Output.RationaleByName["Jane Doe"])
	require.NotEmpty(t, res.Output.FinalSummary)
}

func TestPipelineFilterCanEmptyCandidates(t *testing.T) {
	llm := &stubLLM{}
	res, err := newTestPipeline(t, llm, time.Second).Run(context.Background(), Request{
		Query: "undrafted shooter", Category: models.CategoryDraft, DraftRange: "Undrafted",
	})
	require.NoError(t, err)
	require.Empty(t, res.Candidates)
	require.Equal(t, grounding.NoMatchesNarrative, res.Output.Narrative)
	require.Empty(t, res.Cards)
	llm.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestPipelineMidseasonSkipsDraftFilters(t *testing.T) {
	llm := &stubLLM{}
	llm.On("Generate", mock.Anything, mock.Anything).Return(providers.GenerateResponse{Text: "Sam Poe."}, stubInfo, nil)

	res, err := newTestPipeline(t, llm, time.Second).Run(context.Background(), Request{
		Query: "a passer", Category: models.CategoryMidseason, DraftRange: "Top 5", TopK: 10,
	})
	require.NoError(t, err)
	require.Len(t, res.Candidates, 4)
	require.Equal(t, "a passer", res.Query.FormattedText)
}

func TestPipelineRejectsEmptyQuery(t *testing.T) {
	_, err := newTestPipeline(t, &stubLLM{}, time.Second).Run(context.Background(), Request{Query: "  "})
	require.ErrorIs(t, err, util.ErrEmptyQuery)
}

func TestPipelineKeepsRawQueryVerbatim(t *testing.T) {
	raw := "  a passer\n"
	llm := &stubLLM{}
	llm.On("Generate", mock.Anything, mock.MatchedBy(func(req providers.GenerateRequest) bool {
		return strings.Contains(req.Prompt, "Scouting Query: "+raw+"\n")
	})).Return(providers.GenerateResponse{Text: "Sam Poe."}, stubInfo, nil).Once()

	res, err := newTestPipeline(t, llm, time.Second).Run(context.Background(), Request{
		Query: raw, Category: models.CategoryMidseason,
	})
	require.NoError(t, err)
	require.Equal(t, raw, res.Query.RawText)
	llm.AssertExpectations(t)

	norm, err := Normalize(Request{Query: raw}, 10)
	require.NoError(t, err)
	require.Equal(t, raw, norm.Query)
}
