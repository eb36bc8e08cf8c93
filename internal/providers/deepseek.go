package providers

import (
	"net/http"
	"time"
)

// NewDeepSeekProvider is the default hosted LLM. The key comes from
// DEEPSEEK_API_KEY (or ALERA_DEEPSEEK_KEY_<ALIAS>).
func NewDeepSeekProvider(keyName string) *OpenAIProvider {
	return &OpenAIProvider{
		name:    "deepseek",
		keyName: keyName,
		apiKey:  resolveKey("DEEPSEEK", keyName),
		baseURL: envOr("ALERA_DEEPSEEK_BASE_URL", "https://api.deepseek.com/v1"),
		model:   envOr("ALERA_DEEPSEEK_MODEL", "deepseek-chat"),
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}
