package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"alera/internal/util"
)

type Category string

const (
	CategoryDraft     Category = "draft"
	CategoryMidseason Category = "midseason"
)

func Categories() []Category {
	return []Category{CategoryDraft, CategoryMidseason}
}

func ParseCategory(raw string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "draft":
		return CategoryDraft, nil
	case "midseason", "mid-season", "mid_season":
		return CategoryMidseason, nil
	default:
		return "", fmt.Errorf("%w %q", util.ErrUnknownCategory, raw)
	}
}

func (c Category) Label() string {
	switch c {
	case CategoryDraft:
		return "Draft"
	case CategoryMidseason:
		return "Midseason"
	default:
		return string(c)
	}
}

const (
	DraftRangeAll       = "All"
	DraftRangeTop5      = "Top 5"
	DraftRangeLottery   = "Lottery"
	DraftRangeFirst     = "1st Round"
	DraftRangeSecond    = "2nd Round"
	DraftRangeUndrafted = "Undrafted"
)

// DraftRanges lists the draft range selector values in display order.
func DraftRanges() []string {
	return []string{DraftRangeAll, DraftRangeTop5, DraftRangeLottery, DraftRangeFirst, DraftRangeSecond, DraftRangeUndrafted}
}

// DraftYear accepts both `"2025"` and `2025` in corpus files.
type DraftYear string

func (y *DraftYear) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*y = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("decode draft_year: %w", err)
		}
		*y = DraftYear(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("decode draft_year: %w", err)
	}
	s := n.String()
	// 2025.0 from pandas-exported corpora
	s = strings.TrimSuffix(s, ".0")
	*y = DraftYear(s)
	return nil
}

func (y DraftYear) String() string {
	return strings.TrimSpace(string(y))
}

type PlayerRecord struct {
	Name       string    `json:"name"`
	Chunk      string    `json:"chunk"`
	DraftYear  DraftYear `json:"draft_year,omitempty"`
	DraftRange string    `json:"draft_range,omitempty"`
}

type Query struct {
	RawText          string   `json:"raw_text"`
	FormattedText    string   `json:"formatted_text"`
	Category         Category `json:"category"`
	DraftRangeFilter string   `json:"draft_range_filter,omitempty"`
}

type RecommendationOutput struct {
	Narrative        string            `json:"narrative"`
	RecommendedNames []string          `json:"recommended_names"`
	RationaleByName  map[string]string `json:"rationale_by_name"`
	FinalSummary     string            `json:"final_summary"`
}

// Mode selects between the quick and detailed recommendation flows.
type Mode struct {
	Name             string `json:"name"`
	MinPlayers       int    `json:"min_players"`
	MaxPlayers       int    `json:"max_players"`
	IncludeRationale bool   `json:"include_rationale"`
	TrimFollowUp     bool   `json:"trim_follow_up"`
}

var (
	ModeQuick    = Mode{Name: "quick", MinPlayers: 1, MaxPlayers: 2}
	ModeDetailed = Mode{Name: "detailed", MinPlayers: 3, MaxPlayers: 4, IncludeRationale: true, TrimFollowUp: true}
)

func ParseMode(raw string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "quick":
		return ModeQuick, nil
	case "detailed":
		return ModeDetailed, nil
	default:
		return Mode{}, fmt.Errorf("unknown recommendation mode %q", raw)
	}
}
