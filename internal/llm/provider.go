package llm

import (
	"context"
	"fmt"

	"github.com/ApeachM/llm-code-reviewer-sub002/internal/model"
)

// Provider defines the interface for external code reviewers. The
// harness treats the reviewer as a black box: it sends one chunk of
// source text and gets back whatever the model said, unparsed.
type Provider interface {
	// Name returns the provider name
	Name() string

	// Review sends one chunk for review and returns the raw response
	Review(ctx context.Context, req ReviewRequest) (*ReviewResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// ReviewRequest contains the input for one reviewer call.
type ReviewRequest struct {
	// Header is the chunk preamble restating file path and line range
	Header string

	// Code is the chunk body, context prefix included
	Code string

	// Path is the file path being reviewed
	Path string

	// Language hints the source language ("cpp", "python", ...)
	Language string

	// Prompt is an optional custom prompt (if empty, use default)
	Prompt string

	// Categories is the allowed category vocabulary spelled into the prompt
	Categories []string

	// Model is the specific model to use (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// ReviewResponse contains the reviewer's raw output. Parsing into
// detected issues happens separately so a malformed response degrades
// to zero issues instead of failing the call.
type ReviewResponse struct {
	// Content is the raw model output
	Content string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds reviewer provider configuration
type Config struct {
	// Provider name: "openai", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI-compatible endpoints
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama, local gateways)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "", // Disabled by default
		Model:     "",
		Timeout:   120,
		MaxTokens: 2048,
	}
}

// ConfigFrom maps the harness LLM settings onto a provider config.
func ConfigFrom(mc model.LLMConfig) Config {
	return Config{
		Provider:  mc.Provider,
		Model:     mc.Model,
		APIKey:    mc.APIKey,
		BaseURL:   mc.BaseURL,
		Timeout:   mc.Timeout,
		MaxTokens: mc.MaxTokens,
	}
}

// BuildPrompt constructs the default review prompt for one chunk. The
// closed category list is spelled out so the model's free-text
// categories stay close to the vocabulary.
func BuildPrompt(req ReviewRequest) string {
	if req.Prompt != "" {
		return fmt.Sprintf("%s\n\n%s%s", req.Prompt, req.Header, req.Code)
	}

	prompt := fmt.Sprintf(`You are reviewing a chunk of a %s source file for semantic defects that static analyzers miss.

CRITICAL RULES:
1. Number lines within this chunk: the first line of code below the header comments is line 1. The header's "// lines:" range only locates the chunk in its file; never report those file-level numbers.
2. Use ONLY these categories:
%s
3. Report real defects only, not style preferences.
4. Lines marked as context are for reference only - do not report issues in them.
5. Respond with ONLY a JSON array. An empty array [] means the chunk is clean.

Response format:
[{"line": <number>, "category": "<category>", "description": "<one sentence>"}]

%s%s`, languageName(req.Language), joinCategories(req.Categories), req.Header, req.Code)

	return prompt
}

// Helper functions

func joinCategories(categories []string) string {
	if len(categories) == 0 {
		return "   (any short category label)"
	}
	result := ""
	for _, c := range categories {
		result += fmt.Sprintf("   - %s\n", c)
	}
	return result
}

func languageName(lang string) string {
	switch lang {
	case "cpp", "cc", "cxx":
		return "C++"
	case "c":
		return "C"
	case "go":
		return "Go"
	case "java":
		return "Java"
	case "python", "py":
		return "Python"
	case "":
		return "source"
	}
	return lang
}
