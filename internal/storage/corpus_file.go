package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"alera/internal/models"
	"alera/internal/util"
)

// LoadCorpusFile reads a JSON array of player records. Array position is the
// record's ordinal in the paired index.
func LoadCorpusFile(path string) ([]models.PlayerRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read corpus %s: %w", path, err)
	}
	if err := validateCorpus(path, data); err != nil {
		return nil, err
	}
	var records []models.PlayerRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode corpus %s: %w", path, err)
	}
	for i := range records {
		records[i].Name = strings.TrimSpace(records[i].Name)
		records[i].Chunk = util.SanitizeText(records[i].Chunk)
		if records[i].Name == "" {
			return nil, fmt.Errorf("%w: %s: record %d has no name", util.ErrMalformedCorpus, path, i)
		}
	}
	return records, nil
}
