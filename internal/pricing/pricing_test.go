package pricing

import (
	"testing"

	"github.com/AI-Models-Telegram-Bot/ai-models-tgbot/internal/config"
	"github.com/AI-Models-Telegram-Bot/ai-models-tgbot/internal/domain"
	"github.com/stretchr/testify/assert"
)

func videoSettings(duration int, resolution string) *domain.GenerationSettings {
	return &domain.GenerationSettings{
		Video: &domain.VideoSettings{DurationSeconds: duration, Resolution: resolution},
	}
}

func TestFlatPrice(t *testing.T) {
	c := Default()

	assert.EqualValues(t, 2, c.Price("flux-schnell", nil))
	assert.EqualValues(t, 1, c.Price("deepseek-chat", nil))
}

func TestUnknownSlugUsesDefault(t *testing.T) {
	c := Default()

	assert.EqualValues(t, config.DefaultCreditsPerUnit, c.Price("mystery-model", nil))
}

func TestDynamicDurationScaling(t *testing.T) {
	c := Default()

	// veo-fast: flat 100, default 8s @ 1080p. Doubling the duration at
	// the default resolution doubles the price.
	got := c.Price("veo-fast", videoSettings(16, "1080p"))
	assert.EqualValues(t, 200, got)

	// sora: flat 120, default 4s, no default resolution. Half duration
	// halves the price; resolution is ignored for this slug.
	got = c.Price("sora", videoSettings(2, ""))
	assert.EqualValues(t, 60, got)
}

func TestDynamicResolutionScaling(t *testing.T) {
	c := Default()

	// 720p (1.0) against the 1080p default (1.5): 100 * 1.0/1.5 = 66.67,
	// rounded up.
	got := c.Price("veo-fast", videoSettings(8, "720p"))
	assert.EqualValues(t, 67, got)

	// Unknown resolution values use multiplier 1.0.
	got = c.Price("veo-fast", videoSettings(8, "9000p"))
	assert.EqualValues(t, 67, got)
}

func TestDynamicResolutionIgnoredWithoutDefault(t *testing.T) {
	c := Default()

	// sora declares no default resolution, so resolution never scales it.
	got := c.Price("sora", videoSettings(4, "4k"))
	assert.EqualValues(t, 120, got)
}

func TestDynamicWithoutSettingsFallsBackToFlat(t *testing.T) {
	c := Default()

	assert.EqualValues(t, 100, c.Price("veo-fast", nil))
	assert.EqualValues(t, 100, c.Price("veo-fast", &domain.GenerationSettings{}))
}

func TestDynamicCap(t *testing.T) {
	c := Default()

	// 800s at 4k would be a 166x multiplier; the cap holds it at 10x.
	got := c.Price("veo-fast", videoSettings(800, "4k"))
	assert.EqualValues(t, 100*config.DynamicPriceCapMultiplier, got)
}

func TestPriceNeverBelowOne(t *testing.T) {
	c := Default()

	got := c.Price("veo-fast", videoSettings(1, "480p"))
	assert.GreaterOrEqual(t, got, int64(1))

	// 1s @ 480p: 100 * (1/8) * (0.5/1.5) = 4.17 -> 5.
	assert.EqualValues(t, 5, got)
}

func TestTableInvariants(t *testing.T) {
	for slug, e := range defaultTable {
		assert.Positive(t, e.CreditsPerUnit, "slug %s", slug)
		if e.Dynamic != nil {
			assert.Positive(t, e.Dynamic.DefaultDurationSeconds, "slug %s", slug)
		}
	}
}
