package googlevision

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/retroconnect/idverify/internal/provider"
)

const providerName = "google"

// Config holds the configuration for the Google Vision client
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() Config {
	return Config{
		BaseURL: "https://vision.googleapis.com/v1",
		Timeout: 30 * time.Second,
	}
}

// Client is the HTTP client for the images:annotate endpoint
type Client struct {
	httpClient *http.Client
	config     Config
}

// NewClient creates a new Google Vision client
func NewClient(config Config) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		config: config,
	}
}

// Annotate sends every request in one batched call.
func (c *Client) Annotate(ctx context.Context, requests []AnnotateImageRequest) (*BatchAnnotateResponse, error) {
	var resp BatchAnnotateResponse
	if err := c.doRequest(ctx, "/images:annotate", BatchAnnotateRequest{Requests: requests}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Responses) != len(requests) {
		return nil, fmt.Errorf("%w: expected %d responses, got %d",
			provider.ErrInvalidResponse, len(requests), len(resp.Responses))
	}
	for _, r := range resp.Responses {
		if r.Error != nil && r.Error.Message != "" {
			return nil, &provider.ServiceError{
				Provider:   providerName,
				StatusCode: http.StatusOK,
				Code:       r.Error.Status,
				Message:    r.Error.Message,
			}
		}
	}
	return &resp, nil
}

// doRequest executes a single HTTP request
func (c *Client) doRequest(ctx context.Context, path string, body interface{}, result interface{}) error {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	endpoint := c.config.BaseURL + path + "?key=" + url.QueryEscape(c.config.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return parseError(resp.StatusCode, respBody)
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("%w: %v", provider.ErrInvalidResponse, err)
	}

	return nil
}

// parseError keeps the API's own message when the body carries one.
func parseError(status int, body []byte) error {
	svcErr := &provider.ServiceError{
		Provider:   providerName,
		StatusCode: status,
		Message:    fmt.Sprintf("google vision returned status %d", status),
	}

	var envelope errorResponse
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != nil && envelope.Error.Message != "" {
		svcErr.Code = envelope.Error.Status
		svcErr.Message = envelope.Error.Message
	}
	return svcErr
}
