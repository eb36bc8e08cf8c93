package vector

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"alera/internal/util"
)

// ALRX is the optional native flat layout. ReadIndexFile also accepts FAISS
// flat indexes, which is what the category defaults point at.
//
//	magic "ALRX" | version u16 | metric u8 | reserved u8 | dim u32 | count u32 | count*dim float32
//
// All integers and floats are little-endian.
var indexMagic = [4]byte{'A', 'L', 'R', 'X'}

const indexVersion = 1

type indexHeader struct {
	Magic    [4]byte
	Version  uint16
	Metric   uint8
	Reserved uint8
	Dim      uint32
	Count    uint32
}

// maxIndexBytes bounds the payload a header may claim before any allocation.
const maxIndexBytes = 4 << 30

func ReadIndexFile(path string) (Metric, [][]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", nil, fmt.Errorf("open index file: %w", err)
	}
	defer f.Close()
	br := bufio.NewReader(f)
	decode := DecodeIndex
	if magic, err := br.Peek(4); err == nil && isFAISSMagic(magic) {
		decode = DecodeFAISS
	}
	metric, vectors, err := decode(br)
	if err != nil {
		return "", nil, fmt.Errorf("read index %s: %w", path, err)
	}
	return metric, vectors, nil
}

func DecodeIndex(r io.Reader) (Metric, [][]float32, error) {
	var h indexHeader
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return "", nil, fmt.Errorf("%w: header: %v", util.ErrMalformedVector, err)
	}
	if h.Magic != indexMagic {
		return "", nil, fmt.Errorf("%w: bad magic %q", util.ErrMalformedVector, string(h.Magic[:]))
	}
	if h.Version != indexVersion {
		return "", nil, fmt.Errorf("%w: unsupported version %d", util.ErrMalformedVector, h.Version)
	}
	metric, err := metricFromCode(h.Metric)
	if err != nil {
		return "", nil, err
	}
	if h.Count > 0 && h.Dim == 0 {
		return "", nil, fmt.Errorf("%w: zero dimension", util.ErrMalformedVector)
	}
	if uint64(h.Dim)*uint64(h.Count)*4 > maxIndexBytes {
		return "", nil, fmt.Errorf("%w: %d x %d payload too large", util.ErrMalformedVector, h.Count, h.Dim)
	}
	vectors := make([][]float32, h.Count)
	buf := make([]byte, int(h.Dim)*4)
	for i := range vectors {
		if _, err := io.ReadFull(r, buf); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return "", nil, fmt.Errorf("%w: truncated at vector %d of %d", util.ErrMalformedVector, i, h.Count)
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

// EncodeIndex writes vectors in the ALRX layout. The server never writes
// indexes; this is for fixtures and for converting vectors exported elsewhere.
func EncodeIndex(w io.Writer, metric Metric, vectors [][]float32) error {
	code, err := metricCode(metric)
	if err != nil {
		return err
	}
	dim := 0
	if len(vectors) > 0 {
		dim = len(vectors[0])
	}
	h := indexHeader{Magic: indexMagic, Version: indexVersion, Metric: code, Dim: uint32(dim), Count: uint32(len(vectors))}
	if err := binary.Write(w, binary.LittleEndian, h); err != nil {
		return fmt.Errorf("write index header: %w", err)
	}
	for i, v := range vectors {
		if len(v) != dim {
			return fmt.Errorf("%w: vector %d has dimension %d, want %d", util.ErrMalformedVector, i, len(v), dim)
		}
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return fmt.Errorf("write vector %d: %w", i, err)
		}
	}
	return nil
}

func metricCode(m Metric) (uint8, error) {
	switch m {
	case MetricL2, "":
		return 0, nil
	case MetricInnerProduct:
		return 1, nil
	default:
		return 0, fmt.Errorf("unsupported index metric %q", m)
	}
}

func metricFromCode(c uint8) (Metric, error) {
	switch c {
	case 0:
		return MetricL2, nil
	case 1:
		return MetricInnerProduct, nil
	default:
		return "", fmt.Errorf("%w: unknown metric code %d", util.ErrMalformedVector, c)
	}
}
