package providers

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiProvider serves both generation and embeddings through the Google
// generative AI SDK. A client is opened per call and closed after it.
type GeminiProvider struct {
	keyName    string
	apiKey     string
	model      string
	embedModel string
}

func NewGeminiProvider(keyName string) *GeminiProvider {
	return &GeminiProvider{
		keyName:    keyName,
		apiKey:     resolveKey("GEMINI", keyName),
		model:      envOr("ALERA_GEMINI_MODEL", "gemini-1.5-flash"),
		embedModel: envOr("ALERA_GEMINI_EMBED_MODEL", "text-embedding-004"),
	}
}

func (g *GeminiProvider) client(ctx context.Context) (*genai.Client, error) {
	if g.apiKey == "" {
		return nil, fmt.Errorf("gemini key missing for alias %q", g.keyName)
	}
	c, err := genai.NewClient(ctx, option.WithAPIKey(g.apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return c, nil
}

func (g *GeminiProvider) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, ProviderInfo, error) {
	info := ProviderInfo{Name: "gemini", Model: g.model, Key: g.keyName}
	c, err := g.client(ctx)
	if err != nil {
		return GenerateResponse{}, info, err
	}
	defer c.Close()

	model := c.GenerativeModel(g.model)
	system := req.System
	if strings.TrimSpace(system) == "" {
		system = DefaultSystemPrompt
	}
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	if req.Temperature > 0 {
		model.SetTemperature(req.Temperature)
	}

	resp, err := model.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		return GenerateResponse{}, info, fmt.Errorf("gemini generate: %w", err)
	}
	text, err := extractGeminiText(resp)
	if err != nil {
		return GenerateResponse{}, info, err
	}
	return GenerateResponse{Text: text}, info, nil
}

func (g *GeminiProvider) Embed(ctx context.Context, req EmbedRequest) ([][]float32, ProviderInfo, error) {
	info := ProviderInfo{Name: "gemini", Model: g.embedModel, Key: g.keyName}
	if len(req.Inputs) == 0 {
		return nil, info, fmt.Errorf("no embedding inputs")
	}
	c, err := g.client(ctx)
	if err != nil {
		return nil, info, err
	}
	defer c.Close()

	em := c.EmbeddingModel(g.embedModel)
	out := make([][]float32, 0, len(req.Inputs))
	for _, text := range req.Inputs {
		res, err := em.EmbedContent(ctx, genai.Text(text))
		if err != nil {
			return nil, info, fmt.Errorf("gemini embedding: %w", err)
		}
		if res == nil || res.Embedding == nil || len(res.Embedding.Values) == 0 {
			return nil, info, fmt.Errorf("gemini returned empty embedding")
		}
		out = append(out, res.Embedding.Values)
	}
	return out, info, nil
}

func extractGeminiText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned no content")
	}
	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("gemini returned no text parts")
	}
	return strings.Join(parts, ""), nil
}
