package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Replicate serves image/video models through the predictions API,
// using the sync-wait header and falling back to polling for slow
// models.
type Replicate struct {
	apiKey       string
	baseURL      string
	httpClient   *http.Client
	pollInterval time.Duration
}

func NewReplicate(apiKey string) *Replicate {
	return &Replicate{
		apiKey:       apiKey,
		baseURL:      "https://api.replicate.com/v1",
		httpClient:   &http.Client{Timeout: 90 * time.Second},
		pollInterval: 2 * time.Second,
	}
}

func (r *Replicate) Name() string { return "replicate" }

type replicatePrediction struct {
	ID     string          `json:"id"`
	Status string          `json:"status"` // starting|processing|succeeded|failed|canceled
	Output json.RawMessage `json:"output"`
	Error  string          `json:"error"`
	URLs   struct {
		Get string `json:"get"`
	} `json:"urls"`
}

func (r *Replicate) Invoke(ctx context.Context, inv Invocation) (*Result, error) {
	input := map[string]any{"prompt": inv.Prompt}
	if inv.Settings != nil && inv.Settings.Video != nil {
		input["duration"] = inv.Settings.Video.DurationSeconds
		if inv.Settings.Video.Resolution != "" {
			input["resolution"] = inv.Settings.Video.Resolution
		}
	}
	for k, v := range inv.ExtraOptions {
		input[k] = v
	}

	payload, err := json.Marshal(map[string]any{"input": input})
	if err != nil {
		return nil, fmt.Errorf("marshal input: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s/predictions", r.baseURL, inv.ModelID)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.apiKey)
	req.Header.Set("Prefer", "wait=60")

	pred, err := r.do(req)
	if err != nil {
		return nil, err
	}

	for !terminalPredictionStatus(pred.Status) {
		select {
		case <-ctx.Done():
			return nil, &RetryableError{Reason: "replicate attempt timed out", Err: ctx.Err()}
		case <-time.After(r.pollInterval):
		}

		getReq, err := http.NewRequestWithContext(ctx, "GET", pred.URLs.Get, nil)
		if err != nil {
			return nil, fmt.Errorf("create poll request: %w", err)
		}
		getReq.Header.Set("Authorization", "Bearer "+r.apiKey)

		pred, err = r.do(getReq)
		if err != nil {
			return nil, err
		}
	}

	if pred.Status != "succeeded" {
		return nil, Retryable("prediction %s: %s", pred.Status, pred.Error)
	}
	return predictionResult(pred)
}

func (r *Replicate) do(req *http.Request) (*replicatePrediction, error) {
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, &RetryableError{Reason: "replicate unreachable", Err: err}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, classifyStatus(resp.StatusCode, string(body))
	}

	var pred replicatePrediction
	if err := json.Unmarshal(body, &pred); err != nil {
		return nil, &RetryableError{Reason: "malformed prediction response", Err: err}
	}
	return &pred, nil
}

func terminalPredictionStatus(s string) bool {
	return s == "succeeded" || s == "failed" || s == "canceled"
}

// predictionResult extracts the output file URL; replicate returns
// either a single URL string or a list of them.
func predictionResult(pred *replicatePrediction) (*Result, error) {
	var single string
	if err := json.Unmarshal(pred.Output, &single); err == nil && single != "" {
		return &Result{FileURL: single}, nil
	}

	var many []string
	if err := json.Unmarshal(pred.Output, &many); err == nil && len(many) > 0 {
		return &Result{FileURL: many[0]}, nil
	}

	return nil, Retryable("prediction succeeded without output")
}

var _ Adapter = (*Replicate)(nil)
