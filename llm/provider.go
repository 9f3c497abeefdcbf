// Package llm abstracts over heterogeneous text-generation backends. The
// provider is selected once at startup from configuration; callers never
// branch on the concrete variant.
package llm

import "context"

// Request is one generation request. Tenant and user identifiers are carried
// for instrumentation only and are always sourced from the authenticated
// principal by the caller.
type Request struct {
	Prompt      string
	TenantID    string
	UserID      string
	Model       string
	MaxTokens   int
	Temperature float64
}

// Chunk is one incremental unit of generated text. A non-nil Err means the
// stream failed mid-flight; no further chunks follow it.
type Chunk struct {
	Text string
	Err  error
}

// Provider is the interface all generation backends implement.
type Provider interface {
	// Name returns a short identifier for the backend (e.g. "mock", "openai").
	Name() string

	// Generate performs one blocking call and returns the complete response
	// text. The context should carry a deadline.
	Generate(ctx context.Context, req Request) (string, error)

	// GenerateStream starts an incremental generation and returns a channel
	// of chunks in production order. The sequence is lazy, finite and
	// non-restartable: the channel is closed after the final chunk, and
	// cancelling ctx stops production and releases the upstream connection
	// without waiting for the consumer to drain.
	GenerateStream(ctx context.Context, req Request) (<-chan Chunk, error)
}

// EstimateTokens approximates a token count at ~4 characters per token, the
// same heuristic the tracking sink uses for drift analysis.
func EstimateTokens(text string) float64 {
	return float64(len(text)) / 4
}
