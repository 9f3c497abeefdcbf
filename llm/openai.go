package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	apperrors "github.com/Nayab-Gohar-95/llm-saas-backend/internal/errors"
)

const (
	systemPrompt = "You are a helpful AI assistant."

	// Bounded retry for transient failures on the non-streaming path only.
	// Streams are never retried: a partially-consumed stream is not
	// restartable.
	maxGenerateRetries = 2
	retryBaseDelay     = 250 * time.Millisecond
)

// OpenAIConfig carries the connection settings for an OpenAI-compatible
// chat-completions API.
type OpenAIConfig struct {
	BaseURL        string
	APIKey         string
	RequestTimeout time.Duration
}

// OpenAIProvider delegates generation to a remote OpenAI-compatible
// completion API. The HTTP client's connection pool is shared and internally
// synchronized; each request carries its own context.
type OpenAIProvider struct {
	config OpenAIConfig
	client *http.Client
}

var _ Provider = (*OpenAIProvider)(nil)

func NewOpenAIProvider(config OpenAIConfig) *OpenAIProvider {
	if config.BaseURL == "" {
		config.BaseURL = "https://api.openai.com/v1"
	}
	if config.RequestTimeout <= 0 {
		config.RequestTimeout = 60 * time.Second
	}
	return &OpenAIProvider{
		config: config,
		client: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

func (p *OpenAIProvider) Name() string { return "openai" }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
	Stream      bool          `json:"stream,omitempty"`
}

type chatCompletion struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type chatStreamEvent struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// Generate issues one blocking completion call, retrying transient failures
// with backoff.
func (p *OpenAIProvider) Generate(ctx context.Context, req Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.config.RequestTimeout)
	defer cancel()

	var lastErr error
	for attempt := 0; attempt <= maxGenerateRetries; attempt++ {
		if attempt > 0 {
			delay := retryBaseDelay << (attempt - 1)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return "", mapTransportError(ctx.Err())
			}
			log.Warn().Int("attempt", attempt).Err(lastErr).Msg("retrying completion request")
		}

		text, retryable, err := p.generateOnce(ctx, req)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if !retryable {
			break
		}
	}
	return "", lastErr
}

func (p *OpenAIProvider) generateOnce(ctx context.Context, req Request) (text string, retryable bool, err error) {
	resp, err := p.post(ctx, req, false)
	if err != nil {
		return "", isTransient(err), mapTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := errors.Wrapf(apperrors.ErrProviderUnavailable,
			"[generateOnce] completion API returned %d: %s", resp.StatusCode, string(body))
		return "", resp.StatusCode >= 500, err
	}

	var completion chatCompletion
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return "", false, errors.Wrap(apperrors.ErrGenerationFailed, "[generateOnce] failed to decode completion")
	}
	if len(completion.Choices) == 0 {
		return "", false, errors.Wrap(apperrors.ErrGenerationFailed, "[generateOnce] completion has no choices")
	}
	return completion.Choices[0].Message.Content, false, nil
}

// GenerateStream opens a streaming completion call and yields chunks as they
// arrive, each server-sent event decoded independently. Cancelling ctx closes
// the response body, which unblocks the reader and releases the connection.
func (p *OpenAIProvider) GenerateStream(ctx context.Context, req Request) (<-chan Chunk, error) {
	resp, err := p.post(ctx, req, true)
	if err != nil {
		return nil, mapTransportError(err)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, errors.Wrapf(apperrors.ErrProviderUnavailable,
			"[GenerateStream] completion API returned %d: %s", resp.StatusCode, string(body))
	}

	out := make(chan Chunk)
	go func() {
		defer close(out)
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if !strings.HasPrefix(line, "data:") {
				continue
			}
			payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			if payload == "[DONE]" {
				return
			}

			var event chatStreamEvent
			if err := json.Unmarshal([]byte(payload), &event); err != nil {
				// A malformed frame is skipped; the stream itself is intact
				continue
			}
			if len(event.Choices) == 0 || event.Choices[0].Delta.Content == "" {
				continue
			}

			select {
			case out <- Chunk{Text: event.Choices[0].Delta.Content}:
			case <-ctx.Done():
				return
			}
		}

		if err := scanner.Err(); err != nil && ctx.Err() == nil {
			select {
			case out <- Chunk{Err: errors.Wrap(apperrors.ErrStreamInterrupted, err.Error())}:
			case <-ctx.Done():
			}
		}
	}()

	return out, nil
}

func (p *OpenAIProvider) post(ctx context.Context, req Request, stream bool) (*http.Response, error) {
	body, err := json.Marshal(chatRequest{
		Model: req.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: req.Prompt},
		},
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		Stream:      stream,
	})
	if err != nil {
		return nil, errors.Wrap(err, "[post] failed to marshal request")
	}

	url := fmt.Sprintf("%s/chat/completions", strings.TrimSuffix(p.config.BaseURL, "/"))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "[post] failed to build request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.config.APIKey)
	if stream {
		httpReq.Header.Set("Accept", "text/event-stream")
	}

	return p.client.Do(httpReq)
}

func isTransient(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr)
}

func mapTransportError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		return errors.Wrap(apperrors.ErrProviderTimeout, err.Error())
	case errors.Is(err, context.Canceled):
		return err
	default:
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return errors.Wrap(apperrors.ErrProviderTimeout, err.Error())
		}
		return errors.Wrap(apperrors.ErrProviderUnavailable, err.Error())
	}
}
