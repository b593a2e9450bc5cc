package agent

import (
	"context"
	"sync"
)

// MockLLM is a deterministic LLM implementation for testing. It returns the
// queued responses in order, recording every request it receives. When the
// queue runs out it falls back to a plain text response.
type MockLLM struct {
	mu sync.Mutex

	// Responses are returned one per Chat call, in order.
	Responses []ChatResponse

	// Error, if set, is returned by Chat instead of a response.
	Error error

	// Requests stores every request passed to Chat.
	Requests []ChatRequest

	next int
}

// NewMockLLM creates a mock that replays the given responses in order.
func NewMockLLM(responses ...ChatResponse) *MockLLM {
	return &MockLLM{Responses: responses}
}

// NewMockLLMWithError creates a mock LLM that always returns an error.
func NewMockLLMWithError(err error) *MockLLM {
	return &MockLLM{Error: err}
}

// Chat returns the next queued response.
func (m *MockLLM) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Requests = append(m.Requests, req)

	if m.Error != nil {
		return nil, m.Error
	}

	if m.next < len(m.Responses) {
		resp := m.Responses[m.next]
		m.next++
		return &resp, nil
	}

	return &ChatResponse{Text: "mock response"}, nil
}

// CallCount returns how many times Chat was invoked.
func (m *MockLLM) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Requests)
}
