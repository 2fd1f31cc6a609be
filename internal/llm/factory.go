package llm

import (
	"fmt"
	"strings"
)

// NewProvider creates a reviewer provider based on configuration
func NewProvider(config Config) (Provider, error) {
	provider := strings.ToLower(config.Provider)

	switch provider {
	case "openai":
		return NewOpenAIProvider(config)

	case "ollama":
		return NewOllamaProvider(config)

	case "":
		// No provider configured - return nil (reviewer disabled)
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown reviewer provider: %s (supported: openai, ollama)", config.Provider)
	}
}
