package provider

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// OpenRouter serves text models through the OpenRouter chat
// completions API, streaming deltas over SSE.
type OpenRouter struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewOpenRouter(apiKey string) *OpenRouter {
	return &OpenRouter{
		apiKey:  apiKey,
		baseURL: "https://openrouter.ai/api/v1",
		// Per-request deadlines come from the router's attempt context.
		httpClient: &http.Client{Timeout: 0},
	}
}

func (o *OpenRouter) Name() string { return "openrouter" }

type orMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type orChatRequest struct {
	Model       string      `json:"model"`
	Messages    []orMessage `json:"messages"`
	Temperature *float64    `json:"temperature,omitempty"`
	Stream      bool        `json:"stream"`
}

type orStreamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

func (o *OpenRouter) Invoke(ctx context.Context, inv Invocation) (*Result, error) {
	chatReq := orChatRequest{
		Model:    inv.ModelID,
		Messages: []orMessage{{Role: "user", Content: inv.Prompt}},
		Stream:   true,
	}
	if inv.Settings != nil && inv.Settings.Text != nil {
		t := inv.Settings.Text.Temperature
		chatReq.Temperature = &t
	}

	payload, err := json.Marshal(chatReq)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", o.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, &RetryableError{Reason: "openrouter unreachable", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, classifyStatus(resp.StatusCode, string(body))
	}

	return o.readStream(resp.Body, inv.OnDelta)
}

// readStream consumes the SSE response, forwarding each content delta
// and accumulating the full answer.
func (o *OpenRouter) readStream(body io.Reader, onDelta func(string)) (*Result, error) {
	var sb strings.Builder
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		data := strings.TrimPrefix(line, "data: ")
		if data == "[DONE]" {
			break
		}

		var chunk orStreamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			continue
		}
		for _, choice := range chunk.Choices {
			if choice.Delta.Content == "" {
				continue
			}
			sb.WriteString(choice.Delta.Content)
			if onDelta != nil {
				onDelta(choice.Delta.Content)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, &RetryableError{Reason: "stream interrupted", Err: err}
	}

	if sb.Len() == 0 {
		return nil, Retryable("empty completion")
	}
	return &Result{Content: sb.String()}, nil
}

var _ Adapter = (*OpenRouter)(nil)
