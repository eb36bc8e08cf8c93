package providers

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math"
	"strings"
)

// ContextMarker introduces the candidate block in scouting prompts. The mock
// LLM reads candidates back from it.
const ContextMarker = "Here are some potential players:"

type MockProvider struct {
	dim int
}

func NewMockProvider(dim int) *MockProvider {
	if dim <= 0 {
		dim = 384
	}
	return &MockProvider{dim: dim}
}

func (m *MockProvider) Embed(ctx context.Context, req EmbedRequest) ([][]float32, ProviderInfo, error) {
	_ = ctx
	dim := req.Dimension
	if dim <= 0 {
		dim = m.dim
	}
	vectors := make([][]float32, 0, len(req.Inputs))
	for _, input := range req.Inputs {
		vectors = append(vectors, deterministicVector(input, dim))
	}
	return vectors, ProviderInfo{Name: "mock", Model: fmt.Sprintf("mock-embed-%d", dim), Key: "mock"}, nil
}

// Generate recommends the leading candidates from the prompt's context block,
// one paragraph each, and closes with a final pick.
func (m *MockProvider) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, ProviderInfo, error) {
	_ = ctx
	info := ProviderInfo{Name: "mock", Model: "mock-llm-v1", Key: "mock"}
	names := mockCandidates(req.Prompt)
	if len(names) == 0 {
		return GenerateResponse{Text: "No suitable players in the provided context."}, info, nil
	}
	limit := 2
	if strings.Contains(req.Prompt, "3-4") {
		limit = 4
	}
	if len(names) > limit {
		names = names[:limit]
	}
	b := strings.Builder{}
	for _, name := range names {
		b.WriteString(name)
		b.WriteString(" fits the requested profile based on the scouting notes.\n\n")
	}
	b.WriteString("Final Best Fit Recommendation: ")
	b.WriteString(names[0])
	b.WriteString(" is the strongest overall fit.")
	return GenerateResponse{Text: b.String()}, info, nil
}

func mockCandidates(prompt string) []string {
	i := strings.Index(prompt, ContextMarker)
	if i < 0 {
		return nil
	}
	var names []string
	for _, para := range strings.Split(prompt[i+len(ContextMarker):], "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		line := strings.SplitN(para, "\n", 2)[0]
		if j := strings.IndexAny(line, ":,("); j > 0 {
			line = line[:j]
		}
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "Based on") {
			continue
		}
		names = append(names, line)
	}
	return names
}

func deterministicVector(input string, dim int) []float32 {
	vec := make([]float32, dim)
	seed := []byte(input)
	if len(seed) == 0 {
		seed = []byte("empty")
	}
	for i := 0; i < dim; i++ {
		h := sha256.Sum256(append(seed, byte(i%251)))
		u := binary.BigEndian.Uint32(h[:4])
		vec[i] = float32(u%2000)/1000.0 - 1.0
	}
	return normalize(vec)
}

func normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	inv := float32(1.0 / (math.Sqrt(sum) + 1e-9))
	for i := range v {
		v[i] *= inv
	}
	return v
}
