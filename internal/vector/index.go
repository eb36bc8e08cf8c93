package vector

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"alera/internal/models"
	"alera/internal/util"
)

type Metric string

const (
	MetricL2           Metric = "l2"
	MetricInnerProduct Metric = "ip"
)

func ParseMetric(raw string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "l2":
		return MetricL2, nil
	case "ip", "inner_product":
		return MetricInnerProduct, nil
	default:
		return "", fmt.Errorf("unsupported index metric %q", raw)
	}
}

// Hit is one ranked neighbor. Distance is non-decreasing across a result set;
// for inner-product indexes it is the negated product.
type Hit struct {
	Ordinal  int                 `json:"ordinal"`
	Distance float64             `json:"distance"`
	Record   models.PlayerRecord `json:"record"`
}

// Index binds a category's corpus to its embedding vectors. Ordinal i of the
// vectors always refers to records[i]; construction fails otherwise.
type Index struct {
	records []models.PlayerRecord
	vectors [][]float32
	dim     int
	metric  Metric
}

func NewIndex(records []models.PlayerRecord, vectors [][]float32, metric Metric) (*Index, error) {
	if len(records) != len(vectors) {
		return nil, fmt.Errorf("%w: %d records, %d vectors", util.ErrIndexMismatch, len(records), len(vectors))
	}
	if metric == "" {
		metric = MetricL2
	}
	dim := 0
	for i, v := range vectors {
		if len(v) == 0 {
			return nil, fmt.Errorf("%w: vector %d is empty", util.ErrMalformedVector, i)
		}
		if dim == 0 {
			dim = len(v)
		}
		if len(v) != dim {
			return nil, fmt.Errorf("%w: vector %d has dimension %d, want %d", util.ErrMalformedVector, i, len(v), dim)
		}
		if !Finite(v) {
			return nil, fmt.Errorf("%w: vector %d has non-finite component", util.ErrMalformedVector, i)
		}
	}
	return &Index{records: records, vectors: vectors, dim: dim, metric: metric}, nil
}

// Finite reports whether every component of v is a real number.
func Finite(v []float32) bool {
	for _, x := range v {
		if math.IsNaN(float64(x)) || math.IsInf(float64(x), 0) {
			return false
		}
	}
	return true
}

func (x *Index) Len() int       { return len(x.records) }
func (x *Index) Dim() int       { return x.dim }
func (x *Index) Metric() Metric { return x.metric }

func (x *Index) Record(ordinal int) (models.PlayerRecord, error) {
	if ordinal < 0 || ordinal >= len(x.records) {
		return models.PlayerRecord{}, fmt.Errorf("%w: %d (size %d)", util.ErrOrdinalOutOfRange, ordinal, len(x.records))
	}
	return x.records[ordinal], nil
}

// Search scans every vector and returns the k nearest, or all of them when the
// index holds fewer than k.
func (x *Index) Search(query []float32, k int) ([]Hit, error) {
	if k <= 0 || len(x.vectors) == 0 {
		return nil, nil
	}
	if len(query) != x.dim {
		return nil, fmt.Errorf("%w: got %d, index has %d", util.ErrDimensionMismatch, len(query), x.dim)
	}
	if !Finite(query) {
		return nil, fmt.Errorf("%w: query has non-finite component", util.ErrMalformedVector)
	}
	hits := make([]Hit, 0, len(x.vectors))
	for i, v := range x.vectors {
		hits = append(hits, Hit{Ordinal: i, Distance: x.distance(query, v)})
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Distance < hits[j].Distance
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	for i := range hits {
		rec, err := x.Record(hits[i].Ordinal)
		if err != nil {
			return nil, err
		}
		hits[i].Record = rec
	}
	return hits, nil
}

func (x *Index) distance(a, b []float32) float64 {
	switch x.metric {
	case MetricInnerProduct:
		var dot float64
		for i := range a {
			dot += float64(a[i]) * float64(b[i])
		}
		return -dot
	default:
		var sum float64
		for i := range a {
			d := float64(a[i]) - float64(b[i])
			sum += d * d
		}
		return sum
	}
}
