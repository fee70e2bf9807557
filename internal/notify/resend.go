// Package notify sends moderation e-mails through the Resend API.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
)

const (
	DefaultBaseURL = "https://api.resend.com"
	DefaultFrom    = "RetroConnect <noreply@retroconnect.app>"
)

// Email is the Resend send-email payload.
type Email struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Bcc     []string `json:"bcc,omitempty"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

type sendResponse struct {
	ID string `json:"id"`
}

// APIError is a non-2xx answer from Resend.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Resend API Error: %s", e.Body)
}

type Config struct {
	BaseURL    string
	APIKey     string
	From       string
	Timeout    time.Duration
	MaxRetries uint64
	// RetryBase is the first backoff step; later steps double.
	RetryBase time.Duration
}

func DefaultConfig() Config {
	return Config{
		BaseURL:    DefaultBaseURL,
		From:       DefaultFrom,
		Timeout:    10 * time.Second,
		MaxRetries: 3,
		RetryBase:  200 * time.Millisecond,
	}
}

// Client posts e-mails to Resend, retrying network failures and 5xx answers.
type Client struct {
	httpClient *http.Client
	cfg        Config
	logger     *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.From == "" {
		cfg.From = DefaultFrom
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = 200 * time.Millisecond
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
		logger:     logger.With("component", "resend"),
	}
}

// Send delivers one e-mail and returns the Resend message id.
func (c *Client) Send(ctx context.Context, email Email) (string, error) {
	if email.From == "" {
		email.From = c.cfg.From
	}

	body, err := json.Marshal(email)
	if err != nil {
		return "", fmt.Errorf("marshal email: %w", err)
	}

	var id string
	backoff := retry.WithMaxRetries(c.cfg.MaxRetries, retry.NewExponential(c.cfg.RetryBase))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		var sendErr error
		id, sendErr = c.post(ctx, body)
		if sendErr == nil {
			return nil
		}
		var apiErr *APIError
		if errors.As(sendErr, &apiErr) && apiErr.StatusCode < 500 {
			return sendErr
		}
		c.logger.WarnContext(ctx, "email send failed, retrying", "error", sendErr)
		return retry.RetryableError(sendErr)
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

func (c *Client) post(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send email: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}

	var out sendResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return out.ID, nil
}
