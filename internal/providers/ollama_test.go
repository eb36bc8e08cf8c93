package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestResolveOllamaEmbedModel_Default(t *testing.T) {
	t.Setenv("ALERA_OLLAMA_EMBED_MODEL", "")
	if got := resolveOllamaEmbedModel(""); got != "all-minilm" {
		t.Fatalf("expected default all-minilm, got %q", got)
	}
	if got := resolveOllamaEmbedModel("nomic"); got != "nomic-embed-text" {
		t.Fatalf("expected nomic alias, got %q", got)
	}
	if got := resolveOllamaEmbedModel("all-minilm:l6-v2"); got != "all-minilm:l6-v2" {
		t.Fatalf("expected direct model, got %q", got)
	}
}

func TestOllamaEmbedKeepsModelWidth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embeddings" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["model"] != "all-minilm" {
			t.Errorf("unexpected model %v", body["model"])
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"embedding": []float32{0.1, 0.2, 0.3}})
	}))
	defer srv.Close()
	t.Setenv("ALERA_OLLAMA_BASE_URL", srv.URL)
	t.Setenv("ALERA_OLLAMA_EMBED_MODEL", "")

	vecs, info, err := NewOllamaEmbeddingProvider("").Embed(context.Background(), EmbedRequest{Inputs: []string{"a"}, Dimension: 384})
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	if len(vecs) != 1 || len(vecs[0]) != 3 {
		t.Fatalf("expected untouched 3-d vector, got %#v", vecs)
	}
	if info.Name != "ollama" || info.Model != "all-minilm" {
		t.Fatalf("unexpected info %+v", info)
	}
}

func TestOllamaEmbedSurfacesHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()
	t.Setenv("ALERA_OLLAMA_BASE_URL", srv.URL)

	if _, _, err := NewOllamaEmbeddingProvider("").Embed(context.Background(), EmbedRequest{Inputs: []string{"a"}}); err == nil {
		t.Fatalf("expected error")
	}
}
