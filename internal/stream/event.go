package stream

import (
	"github.com/AI-Models-Telegram-Bot/ai-models-tgbot/internal/domain"
	"github.com/google/uuid"
)

// Event is one lifecycle update for a generation request. Events for a
// request are delivered in production order; a status event with a
// terminal status is always the last one.
type Event struct {
	RequestID    uuid.UUID            `json:"request_id"`
	ContentDelta string               `json:"content_delta,omitempty"`
	FileURL      string               `json:"file_url,omitempty"`
	Status       domain.RequestStatus `json:"status,omitempty"`
	Error        string               `json:"error,omitempty"`
}

// Terminal reports whether this event ends the stream.
func (e Event) Terminal() bool {
	return e.Status.Terminal()
}
