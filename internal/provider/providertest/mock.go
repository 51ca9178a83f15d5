// Package providertest provides a scriptable Provider mock for tests.
package providertest

import (
	"context"
	"sync"

	"github.com/loreweaver/loom/internal/provider"
)

// Mock is a scriptable provider.Provider. The zero value replies with a
// single empty choice; set Reply or CompleteFunc to script behavior.
type Mock struct {
	mu sync.Mutex

	// Reply is returned as the single choice content when CompleteFunc is nil.
	Reply string

	// Err is returned from Complete when non-nil and CompleteFunc is nil.
	Err error

	// CompleteFunc, when set, fully controls Complete.
	CompleteFunc func(ctx context.Context, req provider.CompletionRequest) (provider.CompletionResponse, error)

	// Model and Window configure the descriptor accessors.
	Model  string
	Window int

	requests []provider.CompletionRequest
}

// Compile-time interface guard.
var _ provider.Provider = (*Mock)(nil)

// Complete records the request and returns the scripted response.
func (m *Mock) Complete(ctx context.Context, req provider.CompletionRequest) (provider.CompletionResponse, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, req)
	}
	if m.Err != nil {
		return provider.CompletionResponse{}, m.Err
	}
	return provider.CompletionResponse{
		Choices: []provider.Choice{
			{Content: m.Reply, FinishReason: provider.FinishReasonStop},
		},
	}, nil
}

// ContextWindowSize implements provider.Provider.
func (m *Mock) ContextWindowSize() int {
	if m.Window > 0 {
		return m.Window
	}
	return 4096
}

// ModelName implements provider.Provider.
func (m *Mock) ModelName() string {
	if m.Model != "" {
		return m.Model
	}
	return "mock-model"
}

// Requests returns a copy of all recorded completion requests.
func (m *Mock) Requests() []provider.CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]provider.CompletionRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// LastRequest returns the most recent request, or a zero value if none.
func (m *Mock) LastRequest() provider.CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return provider.CompletionRequest{}
	}
	return m.requests[len(m.requests)-1]
}
