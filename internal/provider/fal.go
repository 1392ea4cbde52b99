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

// Fal serves image/video/audio models through fal.ai's queue API:
// submit, poll status, fetch the hosted result file.
type Fal struct {
	apiKey       string
	baseURL      string
	httpClient   *http.Client
	pollInterval time.Duration
}

func NewFal(apiKey string) *Fal {
	return &Fal{
		apiKey:       apiKey,
		baseURL:      "https://queue.fal.run",
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		pollInterval: 2 * time.Second,
	}
}

func (f *Fal) Name() string { return "fal" }

type falSubmitResponse struct {
	RequestID   string `json:"request_id"`
	StatusURL   string `json:"status_url"`
	ResponseURL string `json:"response_url"`
}

type falStatusResponse struct {
	Status string `json:"status"` // IN_QUEUE | IN_PROGRESS | COMPLETED
}

type falResult struct {
	Images []falFile `json:"images"`
	Video  *falFile  `json:"video"`
	Audio  *falFile  `json:"audio_file"`
}

type falFile struct {
	URL string `json:"url"`
}

func (f *Fal) Invoke(ctx context.Context, inv Invocation) (*Result, error) {
	submitted, err := f.submit(ctx, inv)
	if err != nil {
		return nil, err
	}

	for {
		select {
		case <-ctx.Done():
			return nil, &RetryableError{Reason: "fal attempt timed out", Err: ctx.Err()}
		case <-time.After(f.pollInterval):
		}

		status, err := f.getJSON(ctx, submitted.StatusURL, new(falStatusResponse))
		if err != nil {
			return nil, err
		}
		if status.(*falStatusResponse).Status == "COMPLETED" {
			break
		}
	}

	res, err := f.getJSON(ctx, submitted.ResponseURL, new(falResult))
	if err != nil {
		return nil, err
	}
	return fileResult(res.(*falResult))
}

func (f *Fal) submit(ctx context.Context, inv Invocation) (*falSubmitResponse, error) {
	input := map[string]any{"prompt": inv.Prompt}
	if inv.Settings != nil {
		switch {
		case inv.Settings.Image != nil:
			input["image_size"] = map[string]int{
				"width":  inv.Settings.Image.Width,
				"height": inv.Settings.Image.Height,
			}
			input["num_images"] = inv.Settings.Image.Count
		case inv.Settings.Video != nil:
			input["duration"] = fmt.Sprintf("%ds", inv.Settings.Video.DurationSeconds)
			if inv.Settings.Video.Resolution != "" {
				input["resolution"] = inv.Settings.Video.Resolution
			}
		case inv.Settings.Audio != nil:
			input["seconds_total"] = inv.Settings.Audio.DurationSeconds
		}
	}
	for k, v := range inv.ExtraOptions {
		input[k] = v
	}

	payload, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("marshal input: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", f.baseURL+"/"+inv.ModelID, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Key "+f.apiKey)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, &RetryableError{Reason: "fal unreachable", Err: err}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return nil, classifyStatus(resp.StatusCode, string(body))
	}

	var submitted falSubmitResponse
	if err := json.Unmarshal(body, &submitted); err != nil {
		return nil, &RetryableError{Reason: "malformed queue response", Err: err}
	}
	if submitted.StatusURL == "" || submitted.ResponseURL == "" {
		return nil, Retryable("queue response missing urls")
	}
	return &submitted, nil
}

func (f *Fal) getJSON(ctx context.Context, url string, out any) (any, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Key "+f.apiKey)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, &RetryableError{Reason: "fal unreachable", Err: err}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if resp.StatusCode != http.StatusOK {
		return nil, classifyStatus(resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return nil, &RetryableError{Reason: "malformed response", Err: err}
	}
	return out, nil
}

func fileResult(res *falResult) (*Result, error) {
	switch {
	case res.Video != nil && res.Video.URL != "":
		return &Result{FileURL: res.Video.URL}, nil
	case res.Audio != nil && res.Audio.URL != "":
		return &Result{FileURL: res.Audio.URL}, nil
	case len(res.Images) > 0 && res.Images[0].URL != "":
		return &Result{FileURL: res.Images[0].URL}, nil
	default:
		return nil, Retryable("completed without a result file")
	}
}

var _ Adapter = (*Fal)(nil)
