package registry

import (
	"fmt"

	"github.com/AI-Models-Telegram-Bot/ai-models-tgbot/internal/domain"
)

// Registry is the immutable slug -> provider fallback chain lookup.
// It is built once at startup from the static route table; Resolve is a
// pure read and always returns candidates in configuration order.
type Registry struct {
	routes map[string]domain.ModelRoute
	slugs  []string
}

// New builds a Registry from the given routes, validating that every
// route has at least one candidate and that provider names are unique
// within a route.
func New(routes []domain.ModelRoute) (*Registry, error) {
	r := &Registry{routes: make(map[string]domain.ModelRoute, len(routes))}
	for _, route := range routes {
		if route.Slug == "" {
			return nil, fmt.Errorf("route with empty slug")
		}
		if !route.Category.Valid() {
			return nil, fmt.Errorf("route %s: invalid category %q", route.Slug, route.Category)
		}
		if len(route.Candidates) == 0 {
			return nil, fmt.Errorf("route %s: no provider candidates", route.Slug)
		}
		if _, dup := r.routes[route.Slug]; dup {
			return nil, fmt.Errorf("duplicate route for slug %s", route.Slug)
		}
		seen := make(map[string]struct{}, len(route.Candidates))
		for _, c := range route.Candidates {
			if c.ProviderName == "" || c.ProviderModelID == "" {
				return nil, fmt.Errorf("route %s: candidate with empty provider or model id", route.Slug)
			}
			if _, dup := seen[c.ProviderName]; dup {
				return nil, fmt.Errorf("route %s: duplicate provider %s", route.Slug, c.ProviderName)
			}
			seen[c.ProviderName] = struct{}{}
		}
		r.routes[route.Slug] = route
		r.slugs = append(r.slugs, route.Slug)
	}
	return r, nil
}

// Default returns the Registry built from the compiled-in route table.
func Default() (*Registry, error) {
	return New(defaultRoutes)
}

// Resolve returns the ordered provider candidates for a slug, or
// domain.ErrUnknownModel. The returned slice is a copy; callers cannot
// disturb the configured fallback order.
func (r *Registry) Resolve(slug string) ([]domain.ProviderCandidate, error) {
	route, ok := r.routes[slug]
	if !ok {
		return nil, fmt.Errorf("resolve %q: %w", slug, domain.ErrUnknownModel)
	}
	out := make([]domain.ProviderCandidate, len(route.Candidates))
	copy(out, route.Candidates)
	return out, nil
}

// Category returns the balance category a slug charges against.
func (r *Registry) Category(slug string) (domain.Category, error) {
	route, ok := r.routes[slug]
	if !ok {
		return "", fmt.Errorf("category of %q: %w", slug, domain.ErrUnknownModel)
	}
	return route.Category, nil
}

// Slugs returns every configured slug in table order.
func (r *Registry) Slugs() []string {
	out := make([]string, len(r.slugs))
	copy(out, r.slugs)
	return out
}
