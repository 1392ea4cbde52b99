package domain

import (
	"time"

	"github.com/google/uuid"
)

type RequestStatus string

const (
	StatusPending   RequestStatus = "pending"
	StatusStreaming RequestStatus = "streaming"
	StatusCompleted RequestStatus = "completed"
	StatusFailed    RequestStatus = "failed"
)

// Terminal reports whether the status is final.
func (s RequestStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// GenerationRequest tracks one user prompt through pricing, charging,
// provider fallback and result delivery. It is owned by the generation
// router for its lifetime; once a terminal status is written the struct
// is not modified again.
type GenerationRequest struct {
	ID                 uuid.UUID
	UserID             int64
	Slug               string
	Category           Category
	Prompt             string
	Settings           *GenerationSettings
	PricedCost         int64
	ChargeTxID         int64
	AttemptedProviders []string
	Status             RequestStatus
	ResultContent      string
	ResultFileURL      string
	Err                error
	CreatedAt          time.Time
	FinishedAt         time.Time
}
