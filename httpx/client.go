package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 10 * time.Second

// DefaultMaxRetries is the default number of attempts.
const DefaultMaxRetries = 3

// DefaultRetryWait is the default initial wait between retries.
const DefaultRetryWait = 1 * time.Second

// DefaultMaxRetryWait caps a single wait, including one asked for by a
// Retry-After header.
const DefaultMaxRetryWait = 10 * time.Second

// Client posts JSON with retries for transient errors.
type Client struct {
	client      *http.Client
	serviceName string
	maxRetries  int
	retryWait   time.Duration
	maxWait     time.Duration
	headers     map[string]string
}

// ClientConfig holds configuration for Client.
type ClientConfig struct {
	Client      *http.Client
	ServiceName string
	MaxRetries  int
	RetryWait   time.Duration
	// MaxRetryWait caps every wait between attempts.
	MaxRetryWait time.Duration
	// Headers are set on every request.
	Headers map[string]string
}

// NewClient creates a new Client with the given configuration.
func NewClient(cfg ClientConfig) *Client {
	c := &Client{
		client:      cfg.Client,
		serviceName: cfg.ServiceName,
		maxRetries:  cfg.MaxRetries,
		retryWait:   cfg.RetryWait,
		maxWait:     cfg.MaxRetryWait,
		headers:     cfg.Headers,
	}

	if c.client == nil {
		c.client = &http.Client{Timeout: DefaultTimeout}
	}
	if c.maxRetries <= 0 {
		c.maxRetries = DefaultMaxRetries
	}
	if c.retryWait <= 0 {
		c.retryWait = DefaultRetryWait
	}
	if c.maxWait <= 0 {
		c.maxWait = DefaultMaxRetryWait
	}
	if c.serviceName == "" {
		c.serviceName = "http"
	}

	return c
}

// PostJSON marshals body, posts it to url and checks the status code.
// The response body is discarded.
func (c *Client) PostJSON(ctx context.Context, url string, body any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request body: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, url, data)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.parseError(resp, url)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (c *Client) do(ctx context.Context, method, url string, data []byte) (*http.Response, error) {
	var lastErr error
	for attempt := range c.maxRetries {
		req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		for k, v := range c.headers {
			req.Header.Set(k, v)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%s request failed: %w", c.serviceName, err)
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if attempt < c.maxRetries-1 {
				if err := sleep(ctx, c.backoff(attempt)); err != nil {
					return nil, err
				}
				continue
			}
			return nil, lastErr
		}

		if shouldRetry(resp) && attempt < c.maxRetries-1 {
			wait := c.getRetryWait(resp, attempt)
			resp.Body.Close()
			if err := sleep(ctx, wait); err != nil {
				return nil, err
			}
			continue
		}

		return resp, nil
	}

	return nil, lastErr
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (c *Client) parseError(resp *http.Response, endpoint string) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	apiErr := &APIError{
		Service:    c.serviceName,
		StatusCode: resp.StatusCode,
		Endpoint:   endpoint,
		RequestID:  resp.Header.Get("X-Request-Id"),
	}

	var errResp struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(body, &errResp) == nil {
		if errResp.Message != "" {
			apiErr.Message = errResp.Message
		} else if errResp.Error != "" {
			apiErr.Message = errResp.Error
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}

	return apiErr
}

// getRetryWait honours Retry-After seconds, else backs off exponentially.
// The result never exceeds the configured maximum wait.
func (c *Client) getRetryWait(resp *http.Response, attempt int) time.Duration {
	if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
		if seconds, err := strconv.Atoi(retryAfter); err == nil && seconds >= 0 {
			return min(time.Duration(seconds)*time.Second, c.maxWait)
		}
	}
	return c.backoff(attempt)
}

func (c *Client) backoff(attempt int) time.Duration {
	return min(c.retryWait*time.Duration(1<<attempt), c.maxWait)
}

func shouldRetry(resp *http.Response) bool {
	return resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
}
