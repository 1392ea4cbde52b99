package pricing

import (
	"math"

	"github.com/AI-Models-Telegram-Bot/ai-models-tgbot/internal/config"
	"github.com/AI-Models-Telegram-Bot/ai-models-tgbot/internal/domain"
)

// Calculator prices requests from an immutable in-memory table.
// Pricing is pure call-time computation; nothing is persisted.
type Calculator struct {
	table map[string]Entry
}

func NewCalculator(table map[string]Entry) *Calculator {
	return &Calculator{table: table}
}

// Default returns a Calculator over the compiled-in price table.
func Default() *Calculator {
	return NewCalculator(defaultTable)
}

// Lookup returns the static entry for a slug, if present.
func (c *Calculator) Lookup(slug string) (Entry, bool) {
	e, ok := c.table[slug]
	return e, ok
}

// FlatPrice returns the unscaled credit price for a slug. Unknown slugs
// cost the default constant so a request is never priced "undefined".
func (c *Calculator) FlatPrice(slug string) int64 {
	if e, ok := c.table[slug]; ok {
		return e.CreditsPerUnit
	}
	return config.DefaultCreditsPerUnit
}

// Price returns the credit cost of one request, >= 1. For slugs with a
// dynamic config and supplied video settings the flat price is scaled
// by duration and, when the slug declares a default resolution, by the
// resolution multiplier ratio. Scaling is capped, then rounded up.
// Absent settings always mean the flat price.
func (c *Calculator) Price(slug string, settings *domain.GenerationSettings) int64 {
	flat := c.FlatPrice(slug)

	e, ok := c.table[slug]
	if !ok || e.Dynamic == nil || settings == nil || settings.Video == nil {
		return clampMin1(flat)
	}

	return clampMin1(scaleDynamic(flat, e.Dynamic, settings.Video))
}

func scaleDynamic(flat int64, dyn *DynamicConfig, v *domain.VideoSettings) int64 {
	factor := 1.0

	if dyn.DefaultDurationSeconds > 0 && v.DurationSeconds > 0 {
		factor *= float64(v.DurationSeconds) / float64(dyn.DefaultDurationSeconds)
	}

	if dyn.DefaultResolution != "" && v.Resolution != "" {
		factor *= resolutionMultiplier(v.Resolution) / resolutionMultiplier(dyn.DefaultResolution)
	}

	if factor > config.DynamicPriceCapMultiplier {
		factor = config.DynamicPriceCapMultiplier
	}

	return int64(math.Ceil(float64(flat) * factor))
}

func resolutionMultiplier(res string) float64 {
	if m, ok := resolutionMultipliers[res]; ok {
		return m
	}
	return 1.0
}

func clampMin1(v int64) int64 {
	if v < 1 {
		return 1
	}
	return v
}
