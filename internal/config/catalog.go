package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"alera/internal/models"
	"alera/internal/util"

	"gopkg.in/yaml.v3"
)

const DefaultDashboardURL = "https://public.tableau.com/views/Player_Stats_17453432818390/playerstats"

// Catalog maps each player category to its read-only corpus/index sources and
// its dashboard.
type Catalog struct {
	PGTable    string                    `yaml:"pg_table"`
	Categories map[string]CategorySource `yaml:"categories"`
}

type CategorySource struct {
	Corpus       string `yaml:"corpus"`
	Index        string `yaml:"index"`
	SQLite       string `yaml:"sqlite"`
	PGKey        string `yaml:"pg_key,omitempty"`
	Metric       string `yaml:"metric,omitempty"`
	DashboardURL string `yaml:"dashboard_url"`
}

func DefaultCatalog() *Catalog {
	return &Catalog{
		PGTable: "player_chunks",
		Categories: map[string]CategorySource{
			string(models.CategoryDraft): {
				Corpus:       "player_chunks_with_draft_year_in_chunk.json",
				Index:        "faiss_draft_index/index.faiss",
				SQLite:       "draft_players.db",
				DashboardURL: DefaultDashboardURL,
			},
			string(models.CategoryMidseason): {
				Corpus:       "midtrade_player_chunks_cleaned.json",
				Index:        "faiss_midseason_index/index.faiss",
				SQLite:       "midseason_players.db",
				DashboardURL: DefaultDashboardURL,
			},
		},
	}
}

// LoadCatalog reads a YAML catalog. A missing file yields the defaults with
// paths relative to the file's directory.
func LoadCatalog(path string) (*Catalog, error) {
	base := filepath.Dir(path)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cat := DefaultCatalog()
			cat.resolve(base)
			return cat, nil
		}
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var cat Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(cat.Categories) == 0 {
		return nil, fmt.Errorf("catalog %s defines no categories", path)
	}
	normalized := make(map[string]CategorySource, len(cat.Categories))
	for name, src := range cat.Categories {
		c, err := models.ParseCategory(name)
		if err != nil {
			return nil, fmt.Errorf("catalog %s: %w", path, err)
		}
		if strings.TrimSpace(src.DashboardURL) == "" {
			src.DashboardURL = DefaultDashboardURL
		}
		normalized[string(c)] = src
	}
	cat.Categories = normalized
	if cat.PGTable == "" {
		cat.PGTable = "player_chunks"
	}
	cat.resolve(base)
	return &cat, nil
}

func (c *Catalog) Source(category models.Category) (CategorySource, error) {
	src, ok := c.Categories[string(category)]
	if !ok {
		return CategorySource{}, fmt.Errorf("%w: %s", util.ErrUnknownCategory, category)
	}
	return src, nil
}

// PGKeys returns the category column value for each category.
func (c *Catalog) PGKeys() map[models.Category]string {
	out := make(map[models.Category]string, len(c.Categories))
	for name, src := range c.Categories {
		key := src.PGKey
		if key == "" {
			key = name
		}
		out[models.Category(name)] = key
	}
	return out
}

func (c *Catalog) resolve(base string) {
	for name, src := range c.Categories {
		src.Corpus = resolvePath(base, src.Corpus)
		src.Index = resolvePath(base, src.Index)
		src.SQLite = resolvePath(base, src.SQLite)
		c.Categories[name] = src
	}
}

func resolvePath(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}
