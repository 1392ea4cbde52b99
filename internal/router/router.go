package router

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/AI-Models-Telegram-Bot/ai-models-tgbot/internal/domain"
	"github.com/AI-Models-Telegram-Bot/ai-models-tgbot/internal/ledger"
	"github.com/AI-Models-Telegram-Bot/ai-models-tgbot/internal/pricing"
	"github.com/AI-Models-Telegram-Bot/ai-models-tgbot/internal/provider"
	"github.com/AI-Models-Telegram-Bot/ai-models-tgbot/internal/registry"
	"github.com/AI-Models-Telegram-Bot/ai-models-tgbot/internal/stream"
	"github.com/google/uuid"
)

// Router drives one generation request end to end: price it, charge
// the category balance, walk the provider fallback chain in order, and
// either deliver the result or refund the charge. Per request it
// issues exactly one charge and at most one refund.
type Router struct {
	registry       *registry.Registry
	pricing        *pricing.Calculator
	ledger         *ledger.Service
	providers      *provider.Registry
	hub            *stream.Hub
	attemptTimeout time.Duration
}

func New(reg *registry.Registry, calc *pricing.Calculator, led *ledger.Service, providers *provider.Registry, hub *stream.Hub, attemptTimeout time.Duration) *Router {
	return &Router{
		registry:       reg,
		pricing:        calc,
		ledger:         led,
		providers:      providers,
		hub:            hub,
		attemptTimeout: attemptTimeout,
	}
}

// GenerateParams is one user prompt against one model slug.
type GenerateParams struct {
	UserID   int64
	Slug     string
	Prompt   string
	Settings *domain.GenerationSettings
}

// Generate runs the request to a terminal state. The returned request
// is always non-nil; err is nil only when it completed. Business
// failures surface as domain.ErrUnknownModel,
// domain.ErrInsufficientBalance or domain.ErrAllProvidersFailed; a
// fatal provider rejection surfaces as the provider's error.
func (r *Router) Generate(ctx context.Context, p GenerateParams) (*domain.GenerationRequest, error) {
	req := &domain.GenerationRequest{
		ID:        uuid.New(),
		UserID:    p.UserID,
		Slug:      p.Slug,
		Prompt:    p.Prompt,
		Settings:  p.Settings,
		Status:    domain.StatusPending,
		CreatedAt: time.Now(),
	}

	candidates, err := r.registry.Resolve(p.Slug)
	if err != nil {
		return r.fail(req, err, "unknown model "+p.Slug)
	}
	req.Category, err = r.registry.Category(p.Slug)
	if err != nil {
		return r.fail(req, err, "unknown model "+p.Slug)
	}

	req.PricedCost = r.pricing.Price(p.Slug, p.Settings)

	req.ChargeTxID, err = r.ledger.Charge(ctx, p.UserID, req.Category, req.PricedCost,
		fmt.Sprintf("generation %s (%s)", p.Slug, req.ID), req.ID)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientBalance) {
			return r.fail(req, err, "insufficient balance")
		}
		return r.fail(req, err, "charge failed")
	}

	slog.Info("generation charged",
		"request_id", req.ID, "user_id", p.UserID, "slug", p.Slug,
		"category", req.Category, "cost", req.PricedCost)

	result, attemptErr := r.attemptCandidates(ctx, req, candidates)
	if attemptErr != nil {
		r.refund(ctx, req)
		reason := "all providers failed"
		var fatal *provider.FatalError
		if errors.As(attemptErr, &fatal) {
			reason = fatal.Reason
		} else if errors.Is(attemptErr, domain.ErrRequestCancelled) {
			reason = "request cancelled"
		}
		return r.fail(req, attemptErr, reason)
	}

	req.ResultContent = result.Content
	req.ResultFileURL = result.FileURL
	r.setStreaming(req)
	if result.FileURL != "" {
		r.hub.Publish(stream.Event{RequestID: req.ID, FileURL: result.FileURL})
	}

	req.Status = domain.StatusCompleted
	req.FinishedAt = time.Now()
	r.hub.Publish(stream.Event{RequestID: req.ID, Status: domain.StatusCompleted})

	slog.Info("generation completed",
		"request_id", req.ID, "slug", p.Slug,
		"providers_tried", req.AttemptedProviders,
		"duration", time.Since(req.CreatedAt))
	return req, nil
}

// attemptCandidates walks the fallback chain in configuration order. A
// retryable failure advances to the next candidate; a fatal failure or
// caller cancellation stops immediately.
func (r *Router) attemptCandidates(ctx context.Context, req *domain.GenerationRequest, candidates []domain.ProviderCandidate) (*provider.Result, error) {
	var lastErr error

	for _, candidate := range candidates {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrRequestCancelled, ctx.Err())
		}

		req.AttemptedProviders = append(req.AttemptedProviders, candidate.ProviderName)

		adapter, ok := r.providers.Get(candidate.ProviderName)
		if !ok {
			lastErr = provider.Retryable("provider %s not configured", candidate.ProviderName)
			slog.Warn("skipping unconfigured provider",
				"request_id", req.ID, "provider", candidate.ProviderName)
			continue
		}

		result, err := r.invoke(ctx, req, adapter, candidate)
		if err == nil {
			return result, nil
		}
		lastErr = err

		var fatal *provider.FatalError
		if errors.As(err, &fatal) {
			slog.Warn("fatal provider failure, stopping fallback",
				"request_id", req.ID, "provider", candidate.ProviderName, "error", err)
			return nil, err
		}

		slog.Warn("provider attempt failed, trying next",
			"request_id", req.ID, "provider", candidate.ProviderName, "error", err)
	}

	if lastErr == nil {
		lastErr = provider.Retryable("no provider candidates")
	}
	return nil, fmt.Errorf("%w: %w", domain.ErrAllProvidersFailed, lastErr)
}

func (r *Router) invoke(ctx context.Context, req *domain.GenerationRequest, adapter provider.Adapter, candidate domain.ProviderCandidate) (*provider.Result, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, r.attemptTimeout)
	defer cancel()

	result, err := adapter.Invoke(attemptCtx, provider.Invocation{
		ModelID:      candidate.ProviderModelID,
		Prompt:       req.Prompt,
		Settings:     req.Settings,
		ExtraOptions: candidate.ExtraOptions,
		OnDelta: func(delta string) {
			r.setStreaming(req)
			r.hub.Publish(stream.Event{RequestID: req.ID, ContentDelta: delta})
		},
	})
	if err == nil {
		return result, nil
	}

	// An attempt that outlived its own deadline is a retryable failure,
	// unless the caller itself went away.
	if attemptCtx.Err() != nil && ctx.Err() == nil {
		return nil, &provider.RetryableError{Reason: "attempt timed out", Err: err}
	}
	return nil, err
}

// setStreaming moves the request into STREAMING once, on the first
// sign of a result.
func (r *Router) setStreaming(req *domain.GenerationRequest) {
	if req.Status == domain.StatusStreaming {
		return
	}
	req.Status = domain.StatusStreaming
	r.hub.Publish(stream.Event{RequestID: req.ID, Status: domain.StatusStreaming})
}

// refund compensates the request's single charge. The ledger retries
// infrastructure failures internally and escalates if they persist;
// nothing more can be done here.
func (r *Router) refund(ctx context.Context, req *domain.GenerationRequest) {
	_, err := r.ledger.Refund(ctx, req.UserID, req.Category, req.PricedCost,
		fmt.Sprintf("refund for failed generation %s (%s)", req.Slug, req.ID), req.ID)
	if err != nil {
		slog.Error("refund not issued", "request_id", req.ID, "user_id", req.UserID,
			"amount", req.PricedCost, "error", err)
	}
}

func (r *Router) fail(req *domain.GenerationRequest, err error, reason string) (*domain.GenerationRequest, error) {
	req.Status = domain.StatusFailed
	req.Err = err
	req.FinishedAt = time.Now()
	r.hub.Publish(stream.Event{RequestID: req.ID, Status: domain.StatusFailed, Error: reason})
	return req, err
}
