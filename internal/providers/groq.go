package providers

import (
	"net/http"
	"time"
)

// NewGroqProvider targets Groq's OpenAI-compatible endpoint. Groq has no
// embeddings API; only Generate is wired by the manager.
func NewGroqProvider(keyName string) *OpenAIProvider {
	return &OpenAIProvider{
		name:    "groq",
		keyName: keyName,
		apiKey:  resolveKey("GROQ", keyName),
		baseURL: envOr("ALERA_GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
		model:   envOr("ALERA_GROQ_MODEL", "llama-3.1-8b-instant"),
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}
