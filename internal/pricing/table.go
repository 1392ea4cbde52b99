package pricing

// UnitType names what one creditsPerUnit buys.
type UnitType string

const (
	UnitPerRequest          UnitType = "per-request"
	UnitPerImage            UnitType = "per-image"
	UnitPerVideoSecondBlock UnitType = "per-video-second-block"
	UnitPerSong             UnitType = "per-song"
)

// Entry is one slug's static price.
type Entry struct {
	CreditsPerUnit int64
	UnitType       UnitType
	BaseCostUSD    float64
	IsLossLeader   bool
	Dynamic        *DynamicConfig
}

// DynamicConfig marks a slug as duration/resolution scaled. The flat
// price corresponds to DefaultDurationSeconds at DefaultResolution;
// deviating settings scale it proportionally.
type DynamicConfig struct {
	DefaultDurationSeconds int
	DefaultResolution      string
}

// resolutionMultipliers scales video prices by output resolution.
// Unknown resolutions fall back to 1.0.
var resolutionMultipliers = map[string]float64{
	"480p":  0.5,
	"720p":  1.0,
	"1080p": 1.5,
	"4k":    2.5,
}

// defaultTable is the static price list. Prices are credits, always
// positive; slugs missing here cost config.DefaultCreditsPerUnit.
var defaultTable = map[string]Entry{
	// Text
	"deepseek-chat": {CreditsPerUnit: 1, UnitType: UnitPerRequest, BaseCostUSD: 0.0004, IsLossLeader: true},
	"gpt-5-mini":    {CreditsPerUnit: 2, UnitType: UnitPerRequest, BaseCostUSD: 0.001},
	"claude-haiku":  {CreditsPerUnit: 2, UnitType: UnitPerRequest, BaseCostUSD: 0.0012},

	// Image
	"flux-schnell": {CreditsPerUnit: 2, UnitType: UnitPerImage, BaseCostUSD: 0.003, IsLossLeader: true},
	"flux-pro":     {CreditsPerUnit: 8, UnitType: UnitPerImage, BaseCostUSD: 0.04},
	"sd-3.5":       {CreditsPerUnit: 6, UnitType: UnitPerImage, BaseCostUSD: 0.035},

	// Video
	"veo-fast": {
		CreditsPerUnit: 100, UnitType: UnitPerVideoSecondBlock, BaseCostUSD: 1.2,
		Dynamic: &DynamicConfig{DefaultDurationSeconds: 8, DefaultResolution: "1080p"},
	},
	"veo-quality": {
		CreditsPerUnit: 250, UnitType: UnitPerVideoSecondBlock, BaseCostUSD: 3.0,
		Dynamic: &DynamicConfig{DefaultDurationSeconds: 8, DefaultResolution: "1080p"},
	},
	"sora": {
		CreditsPerUnit: 120, UnitType: UnitPerVideoSecondBlock, BaseCostUSD: 1.6,
		Dynamic: &DynamicConfig{DefaultDurationSeconds: 4},
	},
	"kling": {
		CreditsPerUnit: 80, UnitType: UnitPerVideoSecondBlock, BaseCostUSD: 0.9,
		Dynamic: &DynamicConfig{DefaultDurationSeconds: 5, DefaultResolution: "1080p"},
	},

	// Audio
	"suno":         {CreditsPerUnit: 15, UnitType: UnitPerSong, BaseCostUSD: 0.08},
	"stable-audio": {CreditsPerUnit: 10, UnitType: UnitPerSong, BaseCostUSD: 0.05},
}
