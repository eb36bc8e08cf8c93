package storage

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	_ "modernc.org/sqlite"

	"alera/internal/models"
	"alera/internal/util"
)

// LoadSQLiteBundle reads a pre-built category bundle. Rows of the players
// table must carry contiguous ordinals starting at 0; the embedding column is a
// little-endian float32 blob.
func LoadSQLiteBundle(ctx context.Context, path string) ([]models.PlayerRecord, [][]float32, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, nil, fmt.Errorf("open sqlite bundle %s: %w", path, err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	rows, err := db.QueryContext(ctx, `
SELECT ordinal, name, chunk, COALESCE(draft_year, ''), COALESCE(draft_range, ''), embedding
FROM players
ORDER BY ordinal ASC`)
	if err != nil {
		return nil, nil, fmt.Errorf("query sqlite bundle %s: %w", path, err)
	}
	defer rows.Close()

	var (
		records []models.PlayerRecord
		vectors [][]float32
	)
	for rows.Next() {
		var (
			ordinal   int
			rec       models.PlayerRecord
			draftYear string
			blob      []byte
		)
		if err := rows.Scan(&ordinal, &rec.Name, &rec.Chunk, &draftYear, &rec.DraftRange, &blob); err != nil {
			return nil, nil, fmt.Errorf("scan sqlite player: %w", err)
		}
		if ordinal != len(records) {
			return nil, nil, fmt.Errorf("%w: sqlite bundle %s expected ordinal %d, got %d", util.ErrIndexMismatch, path, len(records), ordinal)
		}
		vec, ok := blobToFloat32Slice(blob)
		if !ok {
			return nil, nil, fmt.Errorf("%w: ordinal %d blob is %d bytes", util.ErrMalformedVector, ordinal, len(blob))
		}
		rec.Chunk = util.SanitizeText(rec.Chunk)
		rec.DraftYear = models.DraftYear(draftYear)
		records = append(records, rec)
		vectors = append(vectors, vec)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate sqlite bundle %s: %w", path, err)
	}
	return records, vectors, nil
}

func blobToFloat32Slice(blob []byte) ([]float32, bool) {
	if len(blob) == 0 || len(blob)%4 != 0 {
		return nil, false
	}
	values := make([]float32, len(blob)/4)
	for i := range values {
		bits := uint32(0)
		for j := 0; j < 4; j++ {
			bits |= uint32(blob[i*4+j]) << (j * 8)
		}
		values[i] = math.Float32frombits(bits)
	}
	return values, true
}
