package main

import (
	"bytes"
	"testing"

	"alera/internal/dashboard"
	"alera/internal/models"
	"alera/internal/scout"
	"alera/internal/vector"

	"github.com/stretchr/testify/require"
)

func TestRenderResultListsCardsInOrder(t *testing.T) {
	out := models.RecommendationOutput{
		Narrative:        "Ace Bailey is a shot creator.\n\nFinal Best Fit Recommendation: Ace Bailey.",
		RecommendedNames: []string{"Ace Bailey", "Cooper Flagg"},
		RationaleByName:  map[string]string{"Ace Bailey": "is a shot creator."},
		FinalSummary:     "Ace Bailey.",
	}
	res := scout.Result{
		Query: models.Query{RawText: "wing shot creator"},
		Mode:  "quick",
		Candidates: []models.PlayerRecord{
			{Name: "Cooper Flagg", Chunk: "Cooper Flagg: two-way forward."},
			{Name: "Ace Bailey", Chunk: "Ace Bailey: Elite shot creator. Thin frame."},
		},
		Output: out,
		Cards:  dashboard.Cards("https://dash.example/v", out),
	}

	var buf bytes.Buffer
	renderResult(&buf, res)
	s := buf.String()
	require.Contains(t, s, "1. Ace Bailey\n   is a shot creator.\n   Notes: Ace Bailey: Elite shot creator.\n")
	require.Contains(t, s, "2. Cooper Flagg\n")
	require.Contains(t, s, "PlayerParam=Ace%20Bailey")
	require.Contains(t, s, "Final Best Fit Recommendation:\nAce Bailey.\n")
}

func TestRenderResultWithoutCardsPrintsNarrative(t *testing.T) {
	var buf bytes.Buffer
	renderResult(&buf, scout.Result{Output: scout.EmptyOutput()})
	require.Contains(t, buf.String(), "No matching players found.")
}

func TestRenderIndexSamples(t *testing.T) {
	idx, err := vector.NewIndex([]models.PlayerRecord{
		{Name: "Jane Doe", Chunk: "Jane Doe: stretch four", DraftYear: "2025", DraftRange: "Lottery"},
		{Name: "Sam Poe", Chunk: "Sam Poe: guard"},
	}, [][]float32{{1, 0}, {0, 1}}, vector.MetricL2)
	require.NoError(t, err)

	var buf bytes.Buffer
	renderIndex(&buf, models.CategoryDraft, idx, 5)
	require.Equal(t, "draft: 2 records, dim 2, metric l2\n"+
		"  [0] Jane Doe (2025, Lottery) Jane Doe: stretch four\n"+
		"  [1] Sam Poe (-, -) Sam Poe: guard\n", buf.String())
}
