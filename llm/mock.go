package llm

import (
	"context"
	"fmt"
	"strings"
)

// MockProvider is a deterministic, zero-I/O backend used when no live
// provider is configured. It keeps the whole system testable offline.
type MockProvider struct{}

var _ Provider = (*MockProvider)(nil)

func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (p *MockProvider) Name() string { return "mock" }

// Generate returns canned text derived from the prompt. The output is a pure
// function of the prompt so tests can assert on it.
func (p *MockProvider) Generate(_ context.Context, req Request) (string, error) {
	return mockResponse(req.Prompt), nil
}

// GenerateStream yields the canned response word by word.
func (p *MockProvider) GenerateStream(ctx context.Context, req Request) (<-chan Chunk, error) {
	words := strings.SplitAfter(mockResponse(req.Prompt), " ")
	out := make(chan Chunk)

	go func() {
		defer close(out)
		for _, word := range words {
			select {
			case out <- Chunk{Text: word}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}

func mockResponse(prompt string) string {
	clipped := prompt
	if len(clipped) > 100 {
		clipped = clipped[:100] + "..."
	}
	wordCount := len(strings.Fields(prompt))
	return fmt.Sprintf(
		"[MOCK RESPONSE] You asked: %q (%d words). Set OPENAI_API_KEY to use a live model.",
		clipped, wordCount,
	)
}
