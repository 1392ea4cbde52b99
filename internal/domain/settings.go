package domain

// GenerationSettings carries the per-category settings variant for one
// request. At most one field is non-nil, matching the model's category.
type GenerationSettings struct {
	Text  *TextSettings
	Image *ImageSettings
	Video *VideoSettings
	Audio *AudioSettings
}

type TextSettings struct {
	Temperature float64
}

type ImageSettings struct {
	Width  int
	Height int
	Count  int
}

type VideoSettings struct {
	DurationSeconds int
	Resolution      string
}

type AudioSettings struct {
	DurationSeconds int
}

func DefaultTextSettings() TextSettings {
	return TextSettings{Temperature: 1.0}
}

func DefaultImageSettings() ImageSettings {
	return ImageSettings{Width: 1024, Height: 1024, Count: 1}
}

func DefaultVideoSettings() VideoSettings {
	return VideoSettings{DurationSeconds: 8, Resolution: "1080p"}
}

func DefaultAudioSettings() AudioSettings {
	return AudioSettings{DurationSeconds: 120}
}

// Merge overlays non-zero override fields onto the defaults.
func (s TextSettings) Merge(o TextSettings) TextSettings {
	if o.Temperature != 0 {
		s.Temperature = o.Temperature
	}
	return s
}

func (s ImageSettings) Merge(o ImageSettings) ImageSettings {
	if o.Width != 0 {
		s.Width = o.Width
	}
	if o.Height != 0 {
		s.Height = o.Height
	}
	if o.Count != 0 {
		s.Count = o.Count
	}
	return s
}

func (s VideoSettings) Merge(o VideoSettings) VideoSettings {
	if o.DurationSeconds != 0 {
		s.DurationSeconds = o.DurationSeconds
	}
	if o.Resolution != "" {
		s.Resolution = o.Resolution
	}
	return s
}

func (s AudioSettings) Merge(o AudioSettings) AudioSettings {
	if o.DurationSeconds != 0 {
		s.DurationSeconds = o.DurationSeconds
	}
	return s
}
