package registry

import "github.com/AI-Models-Telegram-Bot/ai-models-tgbot/internal/domain"

// defaultRoutes is the static routing table. Candidates are ordered
// cheapest/most-reliable first; the order is the fallback priority.
var defaultRoutes = []domain.ModelRoute{
	// Text
	{
		Slug:     "deepseek-chat",
		Category: domain.CategoryText,
		Candidates: []domain.ProviderCandidate{
			{ProviderName: "openrouter", ProviderModelID: "deepseek/deepseek-chat-v3"},
		},
	},
	{
		Slug:     "gpt-5-mini",
		Category: domain.CategoryText,
		Candidates: []domain.ProviderCandidate{
			{ProviderName: "openrouter", ProviderModelID: "openai/gpt-5-mini"},
		},
	},
	{
		Slug:     "claude-haiku",
		Category: domain.CategoryText,
		Candidates: []domain.ProviderCandidate{
			{ProviderName: "openrouter", ProviderModelID: "anthropic/claude-haiku-4.5"},
		},
	},

	// Image
	{
		Slug:     "flux-schnell",
		Category: domain.CategoryImage,
		Candidates: []domain.ProviderCandidate{
			{ProviderName: "fal", ProviderModelID: "fal-ai/flux/schnell"},
			{ProviderName: "replicate", ProviderModelID: "black-forest-labs/flux-schnell"},
		},
	},
	{
		Slug:     "flux-pro",
		Category: domain.CategoryImage,
		Candidates: []domain.ProviderCandidate{
			{ProviderName: "fal", ProviderModelID: "fal-ai/flux-pro/v1.1"},
			{ProviderName: "replicate", ProviderModelID: "black-forest-labs/flux-1.1-pro"},
		},
	},
	{
		Slug:     "sd-3.5",
		Category: domain.CategoryImage,
		Candidates: []domain.ProviderCandidate{
			{ProviderName: "replicate", ProviderModelID: "stability-ai/stable-diffusion-3.5-large"},
			{ProviderName: "fal", ProviderModelID: "fal-ai/stable-diffusion-v35-large"},
		},
	},

	// Video
	{
		Slug:     "veo-fast",
		Category: domain.CategoryVideo,
		Candidates: []domain.ProviderCandidate{
			{ProviderName: "fal", ProviderModelID: "fal-ai/veo3/fast"},
			{ProviderName: "replicate", ProviderModelID: "google/veo-3-fast"},
		},
	},
	{
		Slug:     "veo-quality",
		Category: domain.CategoryVideo,
		Candidates: []domain.ProviderCandidate{
			{ProviderName: "fal", ProviderModelID: "fal-ai/veo3"},
			{ProviderName: "replicate", ProviderModelID: "google/veo-3"},
		},
	},
	{
		Slug:     "sora",
		Category: domain.CategoryVideo,
		Candidates: []domain.ProviderCandidate{
			{ProviderName: "fal", ProviderModelID: "fal-ai/sora-2/text-to-video"},
		},
	},
	{
		Slug:     "kling",
		Category: domain.CategoryVideo,
		Candidates: []domain.ProviderCandidate{
			{ProviderName: "fal", ProviderModelID: "fal-ai/kling-video/v2.5-turbo/pro/text-to-video", ExtraOptions: map[string]string{"mode": "pro"}},
			{ProviderName: "replicate", ProviderModelID: "kwaivgi/kling-v2.5-turbo-pro"},
		},
	},

	// Audio
	{
		Slug:     "suno",
		Category: domain.CategoryAudio,
		Candidates: []domain.ProviderCandidate{
			{ProviderName: "fal", ProviderModelID: "fal-ai/minimax-music"},
		},
	},
	{
		Slug:     "stable-audio",
		Category: domain.CategoryAudio,
		Candidates: []domain.ProviderCandidate{
			{ProviderName: "fal", ProviderModelID: "fal-ai/stable-audio"},
			{ProviderName: "replicate", ProviderModelID: "stackadoc/stable-audio-open-1.0"},
		},
	},
}
