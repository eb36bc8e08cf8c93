package dashboard

import (
	"net/url"
	"strings"

	"alera/internal/models"
)

// Card is what a presentation layer renders per recommended player.
type Card struct {
	Name      string `json:"name"`
	Rationale string `json:"rationale,omitempty"`
	URL       string `json:"url"`
	EmbedURL  string `json:"embed_url"`
}

func Link(base, name string) string {
	return strings.TrimRight(base, "?") + "?:language=en&PlayerParam=" + encodeName(name)
}

func EmbedLink(base, name string) string {
	return strings.TrimRight(base, "?") + "?:embed=yes&:showVizHome=no&PlayerParam=" + encodeName(name)
}

// Cards follows the recommendation order of out.
func Cards(base string, out models.RecommendationOutput) []Card {
	cards := make([]Card, 0, len(out.RecommendedNames))
	for _, name := range out.RecommendedNames {
		cards = append(cards, Card{
			Name:      name,
			Rationale: out.RationaleByName[name],
			URL:       Link(base, name),
			EmbedURL:  EmbedLink(base, name),
		})
	}
	return cards
}

func encodeName(name string) string {
	return strings.ReplaceAll(url.QueryEscape(name), "+", "%20")
}
