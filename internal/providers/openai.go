package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const DefaultSystemPrompt = "You are an expert NBA scout assistant helping identify ideal draft picks."

// OpenAIProvider speaks the OpenAI REST dialect. DeepSeek and Groq reuse it
// with their own base URL, model and key.
type OpenAIProvider struct {
	name       string
	keyName    string
	apiKey     string
	baseURL    string
	model      string
	embedModel string
	client     *http.Client
}

func NewOpenAIProvider(keyName string) *OpenAIProvider {
	return &OpenAIProvider{
		name:       "openai",
		keyName:    keyName,
		apiKey:     resolveKey("OPENAI", keyName),
		baseURL:    envOr("ALERA_OPENAI_BASE_URL", "https://api.openai.com/v1"),
		model:      envOr("ALERA_OPENAI_MODEL", "gpt-4o-mini"),
		embedModel: envOr("ALERA_OPENAI_EMBED_MODEL", "text-embedding-3-small"),
		client:     &http.Client{Timeout: 60 * time.Second},
	}
}

func (o *OpenAIProvider) info(model string) ProviderInfo {
	return ProviderInfo{Name: o.name, Model: model, Key: o.keyName}
}

func (o *OpenAIProvider) Embed(ctx context.Context, req EmbedRequest) ([][]float32, ProviderInfo, error) {
	if o.embedModel == "" {
		return nil, o.info(""), fmt.Errorf("%s does not serve embeddings", o.name)
	}
	if o.apiKey == "" {
		return nil, o.info(o.embedModel), fmt.Errorf("%s key missing for alias %q", o.name, o.keyName)
	}
	body := map[string]any{"model": o.embedModel, "input": req.Inputs}
	if req.Dimension > 0 {
		body["dimensions"] = req.Dimension
	}
	var parsed struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := o.post(ctx, "/embeddings", body, &parsed); err != nil {
		return nil, o.info(o.embedModel), fmt.Errorf("%s embedding: %w", o.name, err)
	}
	if len(parsed.Data) != len(req.Inputs) {
		return nil, o.info(o.embedModel), fmt.Errorf("%s returned %d embeddings for %d inputs", o.name, len(parsed.Data), len(req.Inputs))
	}
	out := make([][]float32, 0, len(parsed.Data))
	for _, d := range parsed.Data {
		out = append(out, d.Embedding)
	}
	return out, o.info(o.embedModel), nil
}

func (o *OpenAIProvider) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, ProviderInfo, error) {
	if o.apiKey == "" {
		return GenerateResponse{}, o.info(o.model), fmt.Errorf("%s key missing for alias %q", o.name, o.keyName)
	}
	system := req.System
	if strings.TrimSpace(system) == "" {
		system = DefaultSystemPrompt
	}
	body := map[string]any{
		"model": o.model,
		"messages": []map[string]string{
			{"role": "system", "content": system},
			{"role": "user", "content": req.Prompt},
		},
		"stream": false,
	}
	if req.Temperature > 0 {
		body["temperature"] = req.Temperature
	}
	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := o.post(ctx, "/chat/completions", body, &parsed); err != nil {
		return GenerateResponse{}, o.info(o.model), fmt.Errorf("%s generate: %w", o.name, err)
	}
	if len(parsed.Choices) == 0 {
		return GenerateResponse{}, o.info(o.model), fmt.Errorf("%s returned empty choices", o.name)
	}
	return GenerateResponse{Text: parsed.Choices[0].Message.Content}, o.info(o.model), nil
}

func (o *OpenAIProvider) post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	resp, err := o.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return fmt.Errorf("error %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// resolveKey prefers ALERA_<VENDOR>_KEY_<ALIAS>, then <VENDOR>_API_KEY.
func resolveKey(vendor, alias string) string {
	if alias != "" {
		if k := os.Getenv("ALERA_" + vendor + "_KEY_" + sanitizeEnvToken(alias)); k != "" {
			return k
		}
	}
	return os.Getenv(vendor + "_API_KEY")
}

func envOr(k, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return strings.TrimRight(v, "/")
	}
	return fallback
}

func sanitizeEnvToken(s string) string {
	s = strings.ToUpper(s)
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, ".", "_")
	s = strings.ReplaceAll(s, "/", "_")
	return s
}
