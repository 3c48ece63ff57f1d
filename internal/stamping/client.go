package stamping

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/familyjustice/orders-api/internal/services"
)

const (
	defaultTimeout = 30 * time.Second
	stampPath      = "/stamp"

	// Stamped PDFs stay well under this; the cap guards against a
	// misbehaving upstream streaming unbounded data.
	maxStampedSize = 50 * 1024 * 1024
)

var (
	// ErrStampRejected indicates the stamping service returned a non-success status.
	ErrStampRejected = errors.New("stamping: request rejected")
	// ErrDocumentFetch indicates the existing document's binary could not be retrieved.
	ErrDocumentFetch = errors.New("stamping: document fetch failed")
)

// Client wraps the external amendment-stamping service. It fetches the
// existing document's bytes from the file store and posts them for stamping;
// any failure aborts the amendment entirely.
type Client struct {
	baseURL    string
	authToken  string
	httpClient *http.Client
}

// Option customises client behaviour.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client (useful for tests).
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// NewClient constructs a stamping client for the given endpoint.
func NewClient(baseURL, authToken string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("stamping: base URL is required")
	}

	client := &Client{
		baseURL:    baseURL,
		authToken:  strings.TrimSpace(authToken),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// Stamp implements services.AmendmentStamper.
func (c *Client) Stamp(ctx context.Context, doc services.Document) ([]byte, error) {
	if strings.TrimSpace(doc.BinaryURL) == "" {
		return nil, fmt.Errorf("%w: document has no binary url", ErrDocumentFetch)
	}

	original, err := c.fetch(ctx, doc.BinaryURL)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+stampPath, bytes.NewReader(original))
	if err != nil {
		return nil, fmt.Errorf("stamping: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/pdf")
	if c.authToken != "" {
		httpReq.Header.Set("ServiceAuthorization", "Bearer "+c.authToken)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("stamping: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: status %d", ErrStampRejected, resp.StatusCode)
	}

	stamped, err := io.ReadAll(io.LimitReader(resp.Body, maxStampedSize))
	if err != nil {
		return nil, fmt.Errorf("stamping: read response: %w", err)
	}
	return stamped, nil
}

func (c *Client) fetch(ctx context.Context, binaryURL string) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, binaryURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDocumentFetch, err)
	}
	if c.authToken != "" {
		httpReq.Header.Set("ServiceAuthorization", "Bearer "+c.authToken)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDocumentFetch, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrDocumentFetch, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxStampedSize))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDocumentFetch, err)
	}
	return data, nil
}
