package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	paddleBaseURL        = "https://api.paddle.com"
	paddleSandboxBaseURL = "https://sandbox-api.paddle.com"
	paddleTimeout        = 15 * time.Second
)

// PaddleTransaction is the slice of a Paddle transaction we consume.
type PaddleTransaction struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// Succeeded reports whether the transaction reached a paid state.
func (t *PaddleTransaction) Succeeded() bool {
	return t.Status == "completed" || t.Status == "paid"
}

// PaddleClient is a minimal client for the Paddle Billing API.
type PaddleClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// PaddleConfig holds the Paddle API settings.
type PaddleConfig struct {
	APIKey  string
	Sandbox bool
}

// NewPaddleClient creates a Paddle API client.
func NewPaddleClient(cfg PaddleConfig) *PaddleClient {
	baseURL := paddleBaseURL
	if cfg.Sandbox {
		baseURL = paddleSandboxBaseURL
	}
	return &PaddleClient{
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: paddleTimeout,
		},
	}
}

// GetTransaction fetches a transaction by ID.
func (c *PaddleClient) GetTransaction(ctx context.Context, id string) (*PaddleTransaction, error) {
	url := fmt.Sprintf("%s/transactions/%s", c.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("paddle: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("paddle: get transaction %s: %w", id, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("paddle: read response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("paddle: transaction %s not found", id)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("paddle: get transaction %s: status %d: %s", id, resp.StatusCode, truncate(body, 200))
	}

	var envelope struct {
		Data PaddleTransaction `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("paddle: decode response: %w", err)
	}
	return &envelope.Data, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
