package tracking

import (
	"time"

	"github.com/posthog/posthog-go"
	"github.com/rs/zerolog/log"
)

// PostHogRecorder ships inference records to PostHog. The client batches and
// sends on its own goroutine, so Record never blocks the request path.
type PostHogRecorder struct {
	client posthog.Client
}

var _ Recorder = (*PostHogRecorder)(nil)

func NewPostHogRecorder(apiKey, endpoint string) (*PostHogRecorder, error) {
	client, err := posthog.NewWithConfig(apiKey, posthog.Config{
		Endpoint:  endpoint,
		BatchSize: 100,
		Interval:  30 * time.Second,
	})
	if err != nil {
		return nil, err
	}
	return &PostHogRecorder{client: client}, nil
}

// Record enqueues one inference event. Enqueue failures are logged and
// dropped; a panicking sink is contained here as well.
func (r *PostHogRecorder) Record(rec InferenceRecord) {
	defer func() {
		if p := recover(); p != nil {
			log.Warn().Interface("panic", p).Msg("inference tracking panicked (non-fatal)")
		}
	}()

	err := r.client.Enqueue(posthog.Capture{
		DistinctId: rec.UserID,
		Event:      "llm_inference",
		Timestamp:  time.Now(),
		Properties: posthog.NewProperties().
			Set("tenant_id", rec.TenantID).
			Set("provider", rec.Provider).
			Set("model", rec.Model).
			Set("prompt_length", rec.PromptLength).
			Set("response_length", rec.ResponseLength).
			Set("latency_ms", rec.LatencyMS).
			Set("approx_tokens_in", rec.TokensIn).
			Set("approx_tokens_out", rec.TokensOut).
			Set("environment", rec.Environment).
			Set("streamed", rec.Streamed).
			Set("cancelled", rec.Cancelled),
	})
	if err != nil {
		log.Warn().Err(err).Msg("inference tracking failed (non-fatal)")
	}
}

func (r *PostHogRecorder) Close() error {
	return r.client.Close()
}
