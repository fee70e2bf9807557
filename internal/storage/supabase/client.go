// Package supabase talks to the Supabase Storage REST API.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/retroconnect/idverify/internal/storage"
)

// Config holds the configuration for the storage client
type Config struct {
	BaseURL    string
	ServiceKey string
	Timeout    time.Duration
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() Config {
	return Config{
		Timeout: 30 * time.Second,
	}
}

// Client implements storage.Storage
type Client struct {
	httpClient *http.Client
	config     Config
}

// NewClient creates a new storage client
func NewClient(config Config) *Client {
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	return &Client{
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		config: config,
	}
}

var _ storage.Storage = (*Client)(nil)

type apiError struct {
	StatusCode string `json:"statusCode"`
	Error      string `json:"error"`
	Message    string `json:"message"`
}

// Put uploads an object. Existing objects are never overwritten.
func (c *Client) Put(ctx context.Context, bucket, path string, payload []byte, contentType string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.objectURL(bucket, path), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	c.authorize(req)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "false")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("upload %s/%s: %w", bucket, path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("upload %s/%s: %w", bucket, path, readError(resp))
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// PublicURL returns the URL served by the public object endpoint
func (c *Client) PublicURL(bucket, path string) string {
	return c.config.BaseURL + "/storage/v1/object/public/" + url.PathEscape(bucket) + "/" + escapePath(path)
}

// Download fetches an object through the authenticated endpoint
func (c *Client) Download(ctx context.Context, bucket, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.objectURL(bucket, path), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download %s/%s: %w", bucket, path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("download %s/%s: %w", bucket, path, storage.ErrObjectNotFound)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("download %s/%s: %w", bucket, path, readError(resp))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read object: %w", err)
	}
	return body, nil
}

func (c *Client) objectURL(bucket, path string) string {
	return c.config.BaseURL + "/storage/v1/object/" + url.PathEscape(bucket) + "/" + escapePath(path)
}

func (c *Client) authorize(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.config.ServiceKey)
	req.Header.Set("apikey", c.config.ServiceKey)
}

func readError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Message != "" {
		return fmt.Errorf("storage returned status %d: %s", resp.StatusCode, apiErr.Message)
	}
	return fmt.Errorf("storage returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
}

func escapePath(path string) string {
	parts := strings.Split(path, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
