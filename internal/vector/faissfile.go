package vector

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"alera/internal/util"
)

// FAISS flat indexes (IndexFlatL2 / IndexFlatIP as written by
// faiss.write_index):
//
//	fourcc "IxF2"|"IxFI" | d i32 | ntotal i64 | dummy i64 | dummy i64 |
//	is_trained u8 | metric_type i32 | n u64 | n float32
//
// n counts floats and must equal d*ntotal. Little-endian throughout.
const (
	faissFlatL2 = "IxF2"
	faissFlatIP = "IxFI"

	faissMetricIP = 0
	faissMetricL2 = 1
)

type faissHeader struct {
	Dim        int32
	NTotal     int64
	Dummy1     int64
	Dummy2     int64
	IsTrained  uint8
	MetricType int32
}

func isFAISSMagic(magic []byte) bool {
	m := string(magic)
	return m == faissFlatL2 || m == faissFlatIP
}

// DecodeFAISS reads a flat FAISS index. Other FAISS index types (IVF, HNSW,
// PQ) are rejected.
func DecodeFAISS(r io.Reader) (Metric, [][]float32, error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return "", nil, fmt.Errorf("%w: faiss header: %v", util.ErrMalformedVector, err)
	}
	var metric Metric
	var wantType int32
	switch string(magic[:]) {
	case faissFlatL2:
		metric, wantType = MetricL2, faissMetricL2
	case faissFlatIP:
		metric, wantType = MetricInnerProduct, faissMetricIP
	default:
		return "", nil, fmt.Errorf("%w: unsupported faiss index %q, only flat indexes are readable", util.ErrMalformedVector, string(magic[:]))
	}

	var h faissHeader
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return "", nil, fmt.Errorf("%w: faiss header: %v", util.ErrMalformedVector, err)
	}
	if h.MetricType != wantType {
		return "", nil, fmt.Errorf("%w: %s index declares metric type %d", util.ErrMalformedVector, string(magic[:]), h.MetricType)
	}
	if h.NTotal < 0 || h.Dim < 0 || (h.NTotal > 0 && h.Dim == 0) {
		return "", nil, fmt.Errorf("%w: faiss index has d=%d ntotal=%d", util.ErrMalformedVector, h.Dim, h.NTotal)
	}
	if uint64(h.Dim)*uint64(h.NTotal)*4 > maxIndexBytes {
		return "", nil, fmt.Errorf("%w: %d x %d payload too large", util.ErrMalformedVector, h.NTotal, h.Dim)
	}

	var n uint64
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", nil, fmt.Errorf("%w: faiss code size: %v", util.ErrMalformedVector, err)
	}
	if n != uint64(h.Dim)*uint64(h.NTotal) {
		return "", nil, fmt.Errorf("%w: faiss payload holds %d floats, want %d x %d", util.ErrMalformedVector, n, h.NTotal, h.Dim)
	}

	vectors := make([][]float32, h.NTotal)
	buf := make([]byte, int(h.Dim)*4)
	for i := range vectors {
		if _, err := io.ReadFull(r, buf); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return "", nil, fmt.Errorf("%w: truncated at vector %d of %d", util.ErrMalformedVector, i, h.NTotal)
			}
			return "", nil, err
		}
		v := make([]float32, h.Dim)
		for j := range v {
			v[j] = math.Float32frombits(binary.LittleEndian.Uint32(buf[j*4:]))
		}
		vectors[i] = v
	}
	return metric, vectors, nil
}
