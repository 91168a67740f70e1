package chat

import (
	"strings"

	"datalens/domain/core"
)

// Providers accepted by the assistant settings
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderMock   = "mock"
)

// Settings holds the runtime LLM configuration. A single record exists per
// installation; the API key is stored verbatim and only masked on read.
// Zero Temperature or MaxTokens means "use the provider default".
type Settings struct {
	Provider    string         `json:"provider"`
	APIKey      string         `json:"api_key"`
	Model       string         `json:"model"`
	Temperature float64        `json:"temperature,omitempty"`
	MaxTokens   int            `json:"max_tokens,omitempty"`
	UpdatedAt   core.Timestamp `json:"updated_at"`
}

// ValidProvider reports whether p names a supported provider
func ValidProvider(p string) bool {
	switch p {
	case ProviderOpenAI, ProviderGemini, ProviderMock:
		return true
	}
	return false
}

// MaskedKey returns the API key with all but the last four characters hidden
func (s Settings) MaskedKey() string {
	if s.APIKey == "" {
		return ""
	}
	if len(s.APIKey) <= 4 {
		return strings.Repeat("*", len(s.APIKey))
	}
	return strings.Repeat("*", 8) + s.APIKey[len(s.APIKey)-4:]
}

// Configured reports whether a usable provider is set up. The mock provider
// needs no key.
func (s Settings) Configured() bool {
	if s.Provider == ProviderMock {
		return true
	}
	return s.Provider != "" && s.APIKey != ""
}
