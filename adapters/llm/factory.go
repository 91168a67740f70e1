// Package llm provides chat-completion clients for the assistant: OpenAI,
// Gemini, and an offline deterministic mock.
package llm

import (
	"log"
	"time"

	"datalens/domain/chat"
	"datalens/ports"
)

// Config selects and parameterizes a provider client
type Config struct {
	Provider    string
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// NewClient builds the client for the configured provider. Providers that
// need a key fall back to the mock client when none is set, so the assistant
// always answers.
func NewClient(cfg Config) ports.LLMClient {
	switch cfg.Provider {
	case chat.ProviderOpenAI:
		if cfg.APIKey == "" {
			log.Printf("[LLM] No OpenAI key configured, using mock client")
			return NewMockClient()
		}
		return NewOpenAIClient(cfg)
	case chat.ProviderGemini:
		if cfg.APIKey == "" {
			log.Printf("[LLM] No Gemini key configured, using mock client")
			return NewMockClient()
		}
		return NewGeminiClient(cfg)
	case chat.ProviderMock, "":
		return NewMockClient()
	default:
		log.Printf("[LLM] Unknown provider %q, using mock client", cfg.Provider)
		return NewMockClient()
	}
}

// truncateBody keeps provider error payloads readable in logs and responses.
func truncateBody(body []byte) string {
	const max = 512
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}
