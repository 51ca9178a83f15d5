// Package provider defines the contract between loom and LLM chat
// completion backends. Concrete implementations live in modules
// (e.g. provider.openai) and also implement core.Module for lifecycle.
package provider

import "context"

// Provider is the interface for communicating with an LLM chat endpoint.
type Provider interface {
	// Complete sends a completion request and returns the full response.
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)

	// ContextWindowSize returns the maximum context window in tokens for
	// the provider's configured model.
	ContextWindowSize() int

	// ModelName returns the identifier of the configured default model.
	ModelName() string
}

// HealthChecker is an optional interface providers may implement to support
// active health probing.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}
