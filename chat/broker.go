package chat

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/Nayab-Gohar-95/llm-saas-backend/llm"
)

// DoneSentinel is the reserved terminal payload written after the last
// content event. It is distinct from any real content chunk.
const DoneSentinel = "[DONE]"

// Event is one transport-level stream event. Exactly one of the fields is
// meaningful: Text for a content event, Err for a failure event, Done for the
// terminal sentinel.
type Event struct {
	Text string
	Err  error
	Done bool
}

// Outcome summarises a finished (or abandoned) stream. It is reported exactly
// once, before the terminal events are emitted, so a consumer that drains the
// event channel observes the outcome's side effects first.
type Outcome struct {
	Text      string
	Chunks    int
	Latency   time.Duration
	Completed bool  // provider stream exhausted normally
	Cancelled bool  // consumer went away before exhaustion
	Err       error // mid-stream provider failure
}

// Broker drives a provider's incremental mode and frames chunks for
// transport. Chunk order is preserved end to end; nothing is buffered beyond
// the chunk in flight.
type Broker struct {
	provider llm.Provider
	nowTime  func() time.Time
}

// BrokerOption defines a function type to modify the Broker instance.
type BrokerOption func(*Broker)

// WithBrokerNowTime sets the now time function (primarily for testing)
func WithBrokerNowTime(nowFunc func() time.Time) BrokerOption {
	return func(b *Broker) {
		b.nowTime = nowFunc
	}
}

func NewBroker(provider llm.Provider, options ...BrokerOption) (*Broker, error) {
	if provider == nil {
		return nil, errors.New("[NewBroker] provider is required")
	}
	b := &Broker{
		provider: provider,
		nowTime:  time.Now,
	}
	for _, opt := range options {
		opt(b)
	}
	return b, nil
}

// Run starts an incremental generation and returns the event channel the
// transport drains. onFinish is invoked exactly once with the stream outcome,
// after the last content event and before any terminal event, so the caller
// can persist or record with a deterministic ordering guarantee. An error
// returned from onFinish is surfaced to the consumer as a failure event.
//
// When ctx is cancelled the broker stops pulling from the provider
// immediately; the provider releases its upstream connection through the same
// cancellation. No chunk produced after cancellation is delivered.
func (b *Broker) Run(ctx context.Context, req llm.Request, onFinish func(Outcome) error) (<-chan Event, error) {
	chunks, err := b.provider.GenerateStream(ctx, req)
	if err != nil {
		return nil, errors.Wrap(err, "[Run] failed to open stream")
	}

	events := make(chan Event)
	start := b.nowTime()

	go func() {
		defer close(events)

		var full strings.Builder
		var streamErr error
		chunkCount := 0
		cancelled := false

	pull:
		for chunk := range chunks {
			if chunk.Err != nil {
				streamErr = chunk.Err
				break
			}
			full.WriteString(chunk.Text)
			chunkCount++

			select {
			case events <- Event{Text: chunk.Text}:
			case <-ctx.Done():
				cancelled = true
				break pull
			}
		}
		if !cancelled && ctx.Err() != nil {
			cancelled = true
		}

		outcome := Outcome{
			Text:      full.String(),
			Chunks:    chunkCount,
			Latency:   b.nowTime().Sub(start),
			Completed: streamErr == nil && !cancelled,
			Cancelled: cancelled,
			Err:       streamErr,
		}

		finishErr := onFinish(outcome)

		if cancelled {
			// Nobody is listening; skip the terminal events.
			return
		}
		if streamErr != nil {
			b.emit(ctx, events, Event{Err: streamErr})
		} else if finishErr != nil {
			b.emit(ctx, events, Event{Err: finishErr})
		}
		b.emit(ctx, events, Event{Done: true})
	}()

	return events, nil
}

func (b *Broker) emit(ctx context.Context, events chan<- Event, ev Event) {
	select {
	case events <- ev:
	case <-ctx.Done():
	}
}
