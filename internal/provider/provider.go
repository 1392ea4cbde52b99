package provider

import (
	"context"
	"fmt"
	"net/http"

	"github.com/AI-Models-Telegram-Bot/ai-models-tgbot/internal/domain"
)

// Invocation is one attempt against one upstream model.
type Invocation struct {
	ModelID      string
	Prompt       string
	Settings     *domain.GenerationSettings
	ExtraOptions map[string]string

	// OnDelta, when set, receives partial content as the provider
	// streams it. The final Result still carries the full content.
	OnDelta func(delta string)
}

// Result is a successful generation: inline content, a hosted file
// URL, or both.
type Result struct {
	Content string
	FileURL string
}

// Adapter is one upstream vendor. Implementations classify their
// failures as retryable or fatal; anything else is treated as
// retryable by the router.
type Adapter interface {
	Name() string
	Invoke(ctx context.Context, inv Invocation) (*Result, error)
}

// RetryableError means this candidate failed but the next one may
// succeed: the provider is down, rate-limited, or timed out.
type RetryableError struct {
	Reason string
	Err    error
}

func (e *RetryableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *RetryableError) Unwrap() error { return e.Err }

// FatalError means the request itself is the problem (rejected or
// malformed prompt); trying further candidates would only burn quota.
type FatalError struct {
	Reason string
	Err    error
}

func (e *FatalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *FatalError) Unwrap() error { return e.Err }

func Retryable(format string, args ...any) error {
	return &RetryableError{Reason: fmt.Sprintf(format, args...)}
}

func Fatal(format string, args ...any) error {
	return &FatalError{Reason: fmt.Sprintf(format, args...)}
}

// classifyStatus maps an upstream HTTP status to the failure taxonomy.
// Client errors indict the request; everything else may clear up on a
// different provider.
func classifyStatus(status int, body string) error {
	switch {
	case status == http.StatusTooManyRequests:
		return &RetryableError{Reason: fmt.Sprintf("rate limited (%d)", status)}
	case status == http.StatusRequestTimeout || status >= 500:
		return &RetryableError{Reason: fmt.Sprintf("upstream unavailable (%d): %s", status, truncate(body, 200))}
	case status == http.StatusBadRequest, status == http.StatusUnauthorized,
		status == http.StatusForbidden, status == http.StatusNotFound,
		status == http.StatusUnprocessableEntity:
		return &FatalError{Reason: fmt.Sprintf("request rejected (%d): %s", status, truncate(body, 200))}
	default:
		return &RetryableError{Reason: fmt.Sprintf("unexpected status %d: %s", status, truncate(body, 200))}
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// Registry maps provider names from the route table to adapters.
type Registry struct {
	adapters map[string]Adapter
}

func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{adapters: make(map[string]Adapter, len(adapters))}
	for _, a := range adapters {
		r.adapters[a.Name()] = a
	}
	return r
}

// Get returns the adapter for a provider name, or false if none is
// configured (e.g. a route references a provider whose credentials
// were not supplied).
func (r *Registry) Get(name string) (Adapter, bool) {
	a, ok := r.adapters[name]
	return a, ok
}
