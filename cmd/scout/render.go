package main

import (
	"fmt"
	"io"

	"alera/internal/models"
	"alera/internal/scout"
	"alera/internal/util"
	"alera/internal/vector"
)

func renderResult(w io.Writer, res scout.Result) {
	fmt.Fprintf(w, "Query: %s\n", res.Query.RawText)
	fmt.Fprintf(w, "Mode: %s  Candidates: %d\n\n", res.Mode, len(res.Candidates))

	if len(res.Cards) == 0 {
		fmt.Fprintln(w, res.Output.Narrative)
		return
	}
	for i, card := range res.Cards {
		fmt.Fprintf(w, "%d. %s\n", i+1, card.Name)
		if card.Rationale != "" {
			fmt.Fprintf(w, "   %s\n", util.Preview(card.Rationale, 400))
		}
		for _, c := range res.Candidates {
			if c.Name == card.Name {
				fmt.Fprintf(w, "   Notes: %s\n", util.EvidenceSnippet(c.Chunk, res.Query.RawText, 200))
				break
			}
		}
		fmt.Fprintf(w, "   Dashboard: %s\n", card.URL)
	}
	fmt.Fprintf(w, "\nFinal Best Fit Recommendation:\n%s\n", res.Output.FinalSummary)
}

func renderIndex(w io.Writer, c models.Category, idx *vector.Index, sample int) {
	fmt.Fprintf(w, "%s: %d records, dim %d, metric %s\n", c, idx.Len(), idx.Dim(), idx.Metric())
	for i := 0; i < sample && i < idx.Len(); i++ {
		rec, err := idx.Record(i)
		if err != nil {
			break
		}
		fmt.Fprintf(w, "  [%d] %s (%s, %s) %s\n", i, rec.Name, orDash(string(rec.DraftYear)), orDash(rec.DraftRange), util.Preview(rec.Chunk, 80))
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
