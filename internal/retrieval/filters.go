package retrieval

import (
	"strings"

	"alera/internal/models"
)

// ApplyDraftFilters narrows draft candidates after search. A range filter
// other than "" or "All" keeps records whose draft range matches it
// case-insensitively; the target season is then always enforced. Other
// categories pass through untouched. Order is preserved and an empty result
// is valid.
func ApplyDraftFilters(records []models.PlayerRecord, category models.Category, rangeFilter, season string) []models.PlayerRecord {
	if category != models.CategoryDraft {
		return records
	}
	rangeFilter = strings.TrimSpace(rangeFilter)
	season = strings.TrimSpace(season)
	byRange := rangeFilter != "" && !strings.EqualFold(rangeFilter, models.DraftRangeAll)

	out := make([]models.PlayerRecord, 0, len(records))
	for _, rec := range records {
		if byRange && !strings.EqualFold(strings.TrimSpace(rec.DraftRange), rangeFilter) {
			continue
		}
		if rec.DraftYear.String() != season {
			continue
		}
		out = append(out, rec)
	}
	return out
}
