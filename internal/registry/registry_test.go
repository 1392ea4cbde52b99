package registry

import (
	"testing"

	"github.com/AI-Models-Telegram-Bot/ai-models-tgbot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRoutesValid(t *testing.T) {
	r, err := Default()
	require.NoError(t, err)

	for _, slug := range r.Slugs() {
		candidates, err := r.Resolve(slug)
		require.NoError(t, err)
		assert.NotEmpty(t, candidates, "slug %s has no candidates", slug)

		cat, err := r.Category(slug)
		require.NoError(t, err)
		assert.True(t, cat.Valid())
	}
}

func TestResolveStableOrder(t *testing.T) {
	r, err := Default()
	require.NoError(t, err)

	first, err := r.Resolve("flux-schnell")
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := r.Resolve("flux-schnell")
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestResolveCopyIsDefensive(t *testing.T) {
	r, err := Default()
	require.NoError(t, err)

	candidates, err := r.Resolve("flux-schnell")
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(candidates), 2)

	candidates[0], candidates[1] = candidates[1], candidates[0]

	again, err := r.Resolve("flux-schnell")
	require.NoError(t, err)
	assert.NotEqual(t, candidates[0].ProviderName, again[0].ProviderName)
}

func TestResolveUnknownSlug(t *testing.T) {
	r, err := Default()
	require.NoError(t, err)

	_, err = r.Resolve("no-such-model")
	assert.ErrorIs(t, err, domain.ErrUnknownModel)

	_, err = r.Category("no-such-model")
	assert.ErrorIs(t, err, domain.ErrUnknownModel)
}

func TestNewRejectsInvalidRoutes(t *testing.T) {
	cases := []struct {
		name   string
		routes []domain.ModelRoute
	}{
		{"empty slug", []domain.ModelRoute{{
			Category:   domain.CategoryText,
			Candidates: []domain.ProviderCandidate{{ProviderName: "a", ProviderModelID: "m"}},
		}}},
		{"no candidates", []domain.ModelRoute{{
			Slug: "x", Category: domain.CategoryText,
		}}},
		{"bad category", []domain.ModelRoute{{
			Slug: "x", Category: "gif",
			Candidates: []domain.ProviderCandidate{{ProviderName: "a", ProviderModelID: "m"}},
		}}},
		{"duplicate provider", []domain.ModelRoute{{
			Slug: "x", Category: domain.CategoryText,
			Candidates: []domain.ProviderCandidate{
				{ProviderName: "a", ProviderModelID: "m1"},
				{ProviderName: "a", ProviderModelID: "m2"},
			},
		}}},
		{"duplicate slug", []domain.ModelRoute{
			{Slug: "x", Category: domain.CategoryText,
				Candidates: []domain.ProviderCandidate{{ProviderName: "a", ProviderModelID: "m"}}},
			{Slug: "x", Category: domain.CategoryText,
				Candidates: []domain.ProviderCandidate{{ProviderName: "b", ProviderModelID: "m"}}},
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.routes)
			assert.Error(t, err)
		})
	}
}
