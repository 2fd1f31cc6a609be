package llm

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MockProvider implements Provider with canned responses, keyed by a
// substring of the request code. Used by runner tests and the dry-run
// mode of the CLI.
type MockProvider struct {
	mu sync.Mutex

	// Responses maps a code substring to the raw response returned for
	// chunks containing it. The empty key is the default response.
	Responses map[string]string

	// Err, when set, is returned by every Review call.
	Err error

	// Calls records the requests received, in order.
	Calls []ReviewRequest
}

// NewMockProvider returns a provider that reports every chunk clean.
func NewMockProvider() *MockProvider {
	return &MockProvider{Responses: map[string]string{"": "[]"}}
}

func (m *MockProvider) Name() string {
	return "mock"
}

func (m *MockProvider) IsAvailable(ctx context.Context) bool {
	return true
}

func (m *MockProvider) Review(ctx context.Context, req ReviewRequest) (*ReviewResponse, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, req)
	m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(m.Responses))
	for key := range m.Responses {
		if key != "" {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	content := m.Responses[""]
	for _, key := range keys {
		if strings.Contains(req.Code, key) {
			content = m.Responses[key]
			break
		}
	}

	return &ReviewResponse{
		Content: content,
		Model:   "mock",
	}, nil
}
