// Package chat composes the authenticated principal, the generation provider,
// the stream broker and the persistence layer into the two request flows:
// synchronous generate-and-store, and streamed generate-then-store.
package chat

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	apperrors "github.com/Nayab-Gohar-95/llm-saas-backend/internal/errors"
	"github.com/Nayab-Gohar-95/llm-saas-backend/auth"
	"github.com/Nayab-Gohar-95/llm-saas-backend/llm"
	"github.com/Nayab-Gohar-95/llm-saas-backend/messages"
	"github.com/Nayab-Gohar-95/llm-saas-backend/tracking"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ResponseCache is an optional tenant-scoped cache consulted on the
// synchronous path. Implementations degrade to a miss on any failure.
type ResponseCache interface {
	Get(ctx context.Context, tenantID, model, prompt string) (string, bool)
	Set(ctx context.Context, tenantID, model, prompt, response string)
}

// Params are the generation parameters applied to every request. Established
// at startup and read-only thereafter.
type Params struct {
	Model       string
	MaxTokens   int
	Temperature float64
	Environment string
}

// Orchestrator owns the message request flows. Tenant and user identifiers
// are sourced exclusively from the principal at every call site; any
// tenant-like value in a client payload is ignored.
type Orchestrator struct {
	provider llm.Provider
	broker   *Broker
	repo     messages.Repo
	recorder tracking.Recorder
	cache    ResponseCache
	params   Params
	nowTime  func() time.Time
}

// OrchestratorOption defines a function type to modify the Orchestrator instance.
type OrchestratorOption func(*Orchestrator)

// WithCache attaches a response cache to the synchronous path.
func WithCache(cache ResponseCache) OrchestratorOption {
	return func(o *Orchestrator) {
		o.cache = cache
	}
}

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) OrchestratorOption {
	return func(o *Orchestrator) {
		o.nowTime = nowFunc
	}
}

// NewOrchestrator initializes a new Orchestrator with required dependencies.
func NewOrchestrator(
	provider llm.Provider,
	repo messages.Repo,
	recorder tracking.Recorder,
	params Params,
	options ...OrchestratorOption,
) (*Orchestrator, error) {
	if provider == nil {
		return nil, errors.New("[NewOrchestrator] provider is required")
	}
	if repo == nil {
		return nil, errors.New("[NewOrchestrator] message repo is required")
	}
	if recorder == nil {
		return nil, errors.New("[NewOrchestrator] recorder is required")
	}

	broker, err := NewBroker(provider)
	if err != nil {
		return nil, err
	}

	o := &Orchestrator{
		provider: provider,
		broker:   broker,
		repo:     repo,
		recorder: recorder,
		params:   params,
		nowTime:  time.Now,
	}
	for _, opt := range options {
		opt(o)
	}
	return o, nil
}

// Send generates a complete response for the prompt and persists the
// exchange. On provider failure nothing is persisted. If generation succeeds
// but persistence fails, the storage error is returned so the caller knows
// the side effect did not happen.
func (o *Orchestrator) Send(ctx context.Context, principal *auth.Principal, prompt string) (*messages.Message, error) {
	req := o.buildRequest(principal, prompt)

	if o.cache != nil {
		if cached, hit := o.cache.Get(ctx, principal.TenantID, req.Model, prompt); hit {
			log.Debug().Str("tenant_id", principal.TenantID).Msg("generation cache hit")
			return o.persist(ctx, principal, prompt, cached)
		}
	}

	start := o.nowTime()
	text, err := o.provider.Generate(ctx, req)
	latency := o.nowTime().Sub(start)
	if err != nil {
		return nil, errors.Wrap(err, "[Send] generation failed")
	}

	o.observe(principal, req, text, latency, false, false)

	if o.cache != nil {
		// Best-effort write-behind; a cache failure never fails the request
		go o.cache.Set(context.Background(), principal.TenantID, req.Model, prompt, text)
	}

	return o.persist(ctx, principal, prompt, text)
}

// Stream delegates to the broker and persists the fully-accumulated response
// exactly once after normal exhaustion. A cancelled or failed stream persists
// nothing; partial generations are never durably stored.
func (o *Orchestrator) Stream(ctx context.Context, principal *auth.Principal, prompt string) (<-chan Event, error) {
	req := o.buildRequest(principal, prompt)

	events, err := o.broker.Run(ctx, req, func(out Outcome) error {
		o.observe(principal, req, out.Text, out.Latency, true, out.Cancelled)

		if !out.Completed {
			return nil
		}
		if _, err := o.persist(ctx, principal, prompt, out.Text); err != nil {
			log.Error().Err(err).Str("tenant_id", principal.TenantID).
				Msg("failed to persist streamed message")
			return err
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "[Stream] failed to start stream")
	}
	return events, nil
}

// List returns one page of the tenant's messages, newest first. The tenant
// filter comes from the principal regardless of anything the caller supplies.
func (o *Orchestrator) List(ctx context.Context, principal *auth.Principal, skip, limit int) (int, []*messages.Message, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	total, page, err := o.repo.ListByTenant(ctx, principal.TenantID, skip, limit)
	if err != nil {
		return 0, nil, errors.Wrap(apperrors.ErrStorageFailed, err.Error())
	}
	return total, page, nil
}

func (o *Orchestrator) buildRequest(principal *auth.Principal, prompt string) llm.Request {
	return llm.Request{
		Prompt:      prompt,
		TenantID:    principal.TenantID,
		UserID:      principal.UserID,
		Model:       o.params.Model,
		MaxTokens:   o.params.MaxTokens,
		Temperature: o.params.Temperature,
	}
}

func (o *Orchestrator) persist(ctx context.Context, principal *auth.Principal, prompt, response string) (*messages.Message, error) {
	msg := &messages.Message{
		Content:   prompt,
		Response:  response,
		UserID:    principal.UserID,
		TenantID:  principal.TenantID,
		CreatedAt: o.nowTime(),
	}
	if err := o.repo.Create(ctx, msg); err != nil {
		return nil, errors.Wrap(apperrors.ErrStorageFailed, err.Error())
	}
	return msg, nil
}

func (o *Orchestrator) observe(principal *auth.Principal, req llm.Request, response string, latency time.Duration, streamed, cancelled bool) {
	o.recorder.Record(tracking.InferenceRecord{
		TenantID:       principal.TenantID,
		UserID:         principal.UserID,
		Provider:       o.provider.Name(),
		Model:          req.Model,
		PromptLength:   len(req.Prompt),
		ResponseLength: len(response),
		LatencyMS:      float64(latency.Milliseconds()),
		TokensIn:       llm.EstimateTokens(req.Prompt),
		TokensOut:      llm.EstimateTokens(response),
		Environment:    o.params.Environment,
		Streamed:       streamed,
		Cancelled:      cancelled,
	})
}
