package vector

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"alera/internal/models"
	"alera/internal/util"

	"github.com/stretchr/testify/require"
)

func fixtureRecords() []models.PlayerRecord {
	return []models.PlayerRecord{
		{Name: "Jane Doe", Chunk: "Jane Doe: stretch four, elite shooter", DraftYear: "2025", DraftRange: "Lottery"},
		{Name: "John Roe", Chunk: "John Roe: rim protector", DraftYear: "2025", DraftRange: "Top 5"},
		{Name: "Sam Poe", Chunk: "Sam Poe: pass-first point guard", DraftYear: "2024", DraftRange: "2nd Round"},
	}
}

func fixtureVectors() [][]float32 {
	return [][]float32{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	}
}

func TestNewIndexRejectsSizeMismatch(t *testing.T) {
	_, err := NewIndex(fixtureRecords(), fixtureVectors()[:2], MetricL2)
	require.ErrorIs(t, err, util.ErrIndexMismatch)
}

func TestNewIndexRejectsMalformedVectors(t *testing.T) {
	vecs := fixtureVectors()
	vecs[1] = []float32{0, 1}
	_, err := NewIndex(fixtureRecords(), vecs, MetricL2)
	require.ErrorIs(t, err, util.ErrMalformedVector)

	vecs = fixtureVectors()
	vecs[2] = []float32{0, float32(math.NaN()), 1}
	_, err = NewIndex(fixtureRecords(), vecs, MetricL2)
	require.ErrorIs(t, err, util.ErrMalformedVector)
}

func TestSearchRanksByDistance(t *testing.T) {
	idx, err := NewIndex(fixtureRecords(), fixtureVectors(), MetricL2)
	require.NoError(t, err)

	hits, err := idx.Search([]float32{0.9, 0.4, 0}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	require.Equal(t, "Jane Doe", hits[0].Record.Name)
	require.Equal(t, "John Roe", hits[1].Record.Name)
	require.LessOrEqual(t, hits[0].Distance, hits[1].Distance)
}

func TestSearchExactVectorIsRankZero(t *testing.T) {
	idx, err := NewIndex(fixtureRecords(), fixtureVectors(), MetricL2)
	require.NoError(t, err)
	for i, v := range fixtureVectors() {
		hits, err := idx.Search(v, 3)
		require.NoError(t, err)
		require.Equal(t, i, hits[0].Ordinal)
		require.Zero(t, hits[0].Distance)
	}
}

func TestSearchCapsAtIndexSize(t *testing.T) {
	idx, err := NewIndex(fixtureRecords(), fixtureVectors(), MetricL2)
	require.NoError(t, err)
	hits, err := idx.Search([]float32{0, 0, 1}, 10)
	require.NoError(t, err)
	require.Len(t, hits, 3)
	for i := 1; i < len(hits); i++ {
		require.LessOrEqual(t, hits[i-1].Distance, hits[i].Distance)
	}
}

func TestSearchRejectsDimensionMismatch(t *testing.T) {
	idx, err := NewIndex(fixtureRecords(), fixtureVectors(), MetricL2)
	require.NoError(t, err)
	_, err = idx.Search([]float32{1, 0}, 3)
	require.ErrorIs(t, err, util.ErrDimensionMismatch)
}

func TestSearchRejectsNonFiniteQuery(t *testing.T) {
	idx, err := NewIndex(fixtureRecords(), fixtureVectors(), MetricL2)
	require.NoError(t, err)

	_, err = idx.Search([]float32{float32(math.NaN()), 0, 0}, 2)
	require.ErrorIs(t, err, util.ErrMalformedVector)

	_, err = idx.Search([]float32{0, float32(math.Inf(-1)), 0}, 2)
	require.ErrorIs(t, err, util.ErrMalformedVector)
}

func TestSearchInnerProduct(t *testing.T) {
	idx, err := NewIndex(fixtureRecords(), fixtureVectors(), MetricInnerProduct)
	require.NoError(t, err)
	hits, err := idx.Search([]float32{0.1, 0.2, 0.9}, 3)
	require.NoError(t, err)
	require.Equal(t, "Sam Poe", hits[0].Record.Name)
	require.InDelta(t, -0.9, hits[0].Distance, 1e-6)
}

func TestRecordOrdinalOutOfRange(t *testing.T) {
	idx, err := NewIndex(fixtureRecords(), fixtureVectors(), MetricL2)
	require.NoError(t, err)
	_, err = idx.Record(3)
	require.ErrorIs(t, err, util.ErrOrdinalOutOfRange)
}

func TestIndexFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.alrx")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, EncodeIndex(f, MetricInnerProduct, fixtureVectors()))
	require.NoError(t, f.Close())

	metric, vecs, err := ReadIndexFile(path)
	require.NoError(t, err)
	require.Equal(t, MetricInnerProduct, metric)
	require.Equal(t, fixtureVectors(), vecs)
}

func TestDecodeIndexRejectsTruncatedPayload(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeIndex(&buf, MetricL2, fixtureVectors()))
	raw := buf.Bytes()[:buf.Len()-5]

	_, _, err := DecodeIndex(bytes.NewReader(raw))
	require.ErrorIs(t, err, util.ErrMalformedVector)

	_, _, err = DecodeIndex(bytes.NewReader([]byte("FAISS-not-ours....")))
	require.ErrorIs(t, err, util.ErrMalformedVector)
}

// writeFAISSFlat lays out vectors exactly as faiss.write_index does for
// IndexFlatL2 / IndexFlatIP.
func writeFAISSFlat(t *testing.T, fourcc string, metricType int32, vectors [][]float32) []byte {
	t.Helper()
	var buf bytes.Buffer
	le := binary.LittleEndian
	dim := len(vectors[0])
	buf.WriteString(fourcc)
	require.NoError(t, binary.Write(&buf, le, int32(dim)))
	require.NoError(t, binary.Write(&buf, le, int64(len(vectors))))
	require.NoError(t, binary.Write(&buf, le, int64(1<<20)))
	require.NoError(t, binary.Write(&buf, le, int64(1<<20)))
	require.NoError(t, binary.Write(&buf, le, uint8(1)))
	require.NoError(t, binary.Write(&buf, le, metricType))
	require.NoError(t, binary.Write(&buf, le, uint64(dim*len(vectors))))
	for _, v := range vectors {
		require.NoError(t, binary.Write(&buf, le, v))
	}
	return buf.Bytes()
}

func TestReadIndexFileFAISSFlatL2(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.faiss")
	require.NoError(t, os.WriteFile(path, writeFAISSFlat(t, "IxF2", 1, fixtureVectors()), 0o644))

	metric, vecs, err := ReadIndexFile(path)
	require.NoError(t, err)
	require.Equal(t, MetricL2, metric)
	require.Equal(t, fixtureVectors(), vecs)

	idx, err := NewIndex(fixtureRecords(), vecs, metric)
	require.NoError(t, err)
	hits, err := idx.Search([]float32{0, 1, 0}, 1)
	require.NoError(t, err)
	require.Equal(t, "John Roe", hits[0].Record.Name)
}

func TestDecodeFAISSFlatIP(t *testing.T) {
	metric, vecs, err := DecodeFAISS(bytes.NewReader(writeFAISSFlat(t, "IxFI", 0, fixtureVectors())))
	require.NoError(t, err)
	require.Equal(t, MetricInnerProduct, metric)
	require.Len(t, vecs, 3)
}

func TestDecodeFAISSRejectsBadInput(t *testing.T) {
	// Metric type disagrees with the fourcc.
	_, _, err := DecodeFAISS(bytes.NewReader(writeFAISSFlat(t, "IxF2", 0, fixtureVectors())))
	require.ErrorIs(t, err, util.ErrMalformedVector)

	raw := writeFAISSFlat(t, "IxF2", 1, fixtureVectors())
	_, _, err = DecodeFAISS(bytes.NewReader(raw[:len(raw)-3]))
	require.ErrorIs(t, err, util.ErrMalformedVector)

	// IVF and other non-flat indexes are not readable.
	ivf := append([]byte("IwFl"), raw[4:]...)
	_, _, err = DecodeFAISS(bytes.NewReader(ivf))
	require.ErrorIs(t, err, util.ErrMalformedVector)
}
