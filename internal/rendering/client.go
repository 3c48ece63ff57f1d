package rendering

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/familyjustice/orders-api/internal/services"
)

const (
	defaultTimeout  = 30 * time.Second
	renderPath      = "/rs/render"
	maxErrorBodyLen = 512
)

var (
	// ErrRenderRejected indicates the rendering service returned a non-success status.
	ErrRenderRejected = errors.New("rendering: request rejected")
)

// Client calls the external document-assembly service. The engine owns no
// timeout or retry policy; a render that fails simply yields an absent
// document for that language.
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

// NewClient constructs a rendering client for the given endpoint.
func NewClient(baseURL, authToken string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("rendering: base URL is required")
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

type renderRequestBody struct {
	Template   string         `json:"templateName"`
	OutputName string         `json:"outputName"`
	Data       map[string]any `json:"data"`
}

type renderResponseBody struct {
	URL       string `json:"url"`
	BinaryURL string `json:"binaryUrl"`
	HashToken string `json:"hashToken"`
}

// Render implements services.DocumentRenderer.
func (c *Client) Render(ctx context.Context, req services.RenderRequest) (services.RenderedDocument, error) {
	if strings.TrimSpace(req.Template) == "" {
		return services.RenderedDocument{}, errors.New("rendering: template name is required")
	}

	payload, err := json.Marshal(renderRequestBody{
		Template:   req.Template,
		OutputName: req.FileName,
		Data:       req.Data,
	})
	if err != nil {
		return services.RenderedDocument{}, fmt.Errorf("rendering: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+renderPath, bytes.NewReader(payload))
	if err != nil {
		return services.RenderedDocument{}, fmt.Errorf("rendering: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.authToken != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return services.RenderedDocument{}, fmt.Errorf("rendering: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLen))
		return services.RenderedDocument{}, fmt.Errorf("%w: status %d: %s", ErrRenderRejected, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var body renderResponseBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return services.RenderedDocument{}, fmt.Errorf("rendering: decode response: %w", err)
	}

	return services.RenderedDocument{
		URL:       body.URL,
		BinaryURL: body.BinaryURL,
		Hash:      body.HashToken,
	}, nil
}
