package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const maxAttempts = 3

// stopSequences end generation once the model leaves the JSON answer
var stopSequences = []string{"```", "\n\n\n"}

// Client talks to a llama.cpp compatible completion server
type Client struct {
	httpClient  *http.Client
	baseURL     string
	maxTokens   int
	rateLimiter *rate.Limiter
	debug       bool
}

type completionRequest struct {
	Prompt      string   `json:"prompt"`
	NPredict    int      `json:"n_predict"`
	Temperature float64  `json:"temperature"`
	Stop        []string `json:"stop,omitempty"`
}

type completionResponse struct {
	Content string `json:"content"`
}

// NewClient creates a new completion client
func NewClient(baseURL string, maxTokens int, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if maxTokens <= 0 {
		maxTokens = 200
	}

	// A local model on a Pi handles one prompt at a time;
	// allow a request per second with a small burst
	limiter := rate.NewLimiter(rate.Limit(1), 2)

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:     strings.TrimRight(baseURL, "/"),
		maxTokens:   maxTokens,
		rateLimiter: limiter,
	}
}

// SetDebug enables or disables request logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// exponentialBackoff returns the wait before retrying attempt n (1-based)
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(500*(1<<(attempt-1))) * time.Millisecond
}

// Complete sends the prompt and returns the generated text.
// Transport errors and 5xx responses are retried up to three times.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(completionRequest{
		Prompt:      prompt,
		NPredict:    c.maxTokens,
		Temperature: 0,
		Stop:        stopSequences,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	endpoint := c.baseURL + "/completion"

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			if err := sleep(ctx, exponentialBackoff(attempt-1)); err != nil {
				return "", err
			}
		}

		if err := c.rateLimiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limiter error: %w", err)
		}

		content, retry, err := c.doCompletion(ctx, endpoint, payload)
		if err == nil {
			return content, nil
		}
		log.Printf("[LLM] Completion failed (attempt %d): %v", attempt, err)
		lastErr = err
		if !retry {
			break
		}
	}

	return "", lastErr
}

// doCompletion performs one request. retry reports whether the failure is
// worth another attempt.
func (c *Client) doCompletion(ctx context.Context, endpoint string, payload []byte) (content string, retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "ClearTag/1.0")

	if c.debug {
		log.Printf("[LLM] POST %s (%d bytes)", endpoint, len(payload))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", ctx.Err() == nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", true, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", resp.StatusCode >= 500, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var completion completionResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		return "", false, fmt.Errorf("failed to decode response: %w", err)
	}

	if c.debug {
		log.Printf("[LLM] Completion: %d characters", len(completion.Content))
	}

	return completion.Content, false, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
