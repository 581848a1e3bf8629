// Package translate provides translation collaborators for feedback
// classification.
package translate

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

	"github.com/okian/orientbot/internal/domain/feedback"
	"golang.org/x/time/rate"
)

// Default client configuration constants.
const (
	defaultHTTPTimeout = 10 * time.Second
	defaultRPS         = 5
	defaultBurst       = 5
	maxResponseBytes   = 1 << 20
)

// Option applies a configuration option to the LibreTranslate client.
type Option func(*LibreTranslate)

// WithAPIKey sets the API key sent with every request.
func WithAPIKey(key string) Option {
	return func(c *LibreTranslate) {
		c.apiKey = key
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *LibreTranslate) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithRateLimit bounds outgoing requests. A non-positive rps disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *LibreTranslate) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// LibreTranslate talks to a LibreTranslate compatible HTTP API.
type LibreTranslate struct {
	baseURL string
	apiKey  string
	http    *http.Client
	limiter *rate.Limiter
}

// NewLibreTranslate creates a client for the server at baseURL.
func NewLibreTranslate(baseURL string, opts ...Option) *LibreTranslate {
	c := &LibreTranslate{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultHTTPTimeout},
		limiter: rate.NewLimiter(rate.Limit(defaultRPS), defaultBurst),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type detectRequest struct {
	Q      string `json:"q"`
	APIKey string `json:"api_key,omitempty"`
}

type detection struct {
	Language   string  `json:"language"`
	Confidence float64 `json:"confidence"`
}

type translateRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
	APIKey string `json:"api_key,omitempty"`
}

type translateResponse struct {
	TranslatedText string `json:"translatedText"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Detect returns the most confident language reported by the server.
func (c *LibreTranslate) Detect(ctx context.Context, text string) (string, error) {
	var out []detection
	if err := c.post(ctx, "/detect", detectRequest{Q: text, APIKey: c.apiKey}, &out); err != nil {
		return "", err
	}
	if len(out) == 0 {
		return "", fmt.Errorf("%w: empty detection result", feedback.ErrInvalidResponse)
	}
	best := out[0]
	for _, d := range out[1:] {
		if d.Confidence > best.Confidence {
			best = d
		}
	}
	if best.Language == "" {
		return "", fmt.Errorf("%w: detection without language", feedback.ErrInvalidResponse)
	}
	return best.Language, nil
}

// Translate translates text into target, letting the server detect the source.
func (c *LibreTranslate) Translate(ctx context.Context, text, target string) (string, error) {
	req := translateRequest{Q: text, Source: "auto", Target: target, Format: "text", APIKey: c.apiKey}
	var out translateResponse
	if err := c.post(ctx, "/translate", req, &out); err != nil {
		return "", err
	}
	if out.TranslatedText == "" {
		return "", fmt.Errorf("%w: empty translation", feedback.ErrInvalidResponse)
	}
	return out.TranslatedText, nil
}

// post sends body as JSON and decodes a 2xx response into out. Failures are
// wrapped with the feedback error kinds.
func (c *LibreTranslate) post(ctx context.Context, path string, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("libretranslate %s: %w", path, ctxErr)
		}
		return fmt.Errorf("%w: libretranslate %s: %w", feedback.ErrRateLimited, path, err)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("libretranslate %s: %w", path, ctxErr)
		}
		return fmt.Errorf("%w: libretranslate %s: %w", feedback.ErrUnavailable, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("%w: read %s response: %w", feedback.ErrUnavailable, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(path, resp.StatusCode, data)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: decode %s response: %w", feedback.ErrInvalidResponse, path, err)
	}
	return nil
}

func statusError(path string, status int, body []byte) error {
	msg := http.StatusText(status)
	var er errorResponse
	if json.Unmarshal(body, &er) == nil && er.Error != "" {
		msg = er.Error
	}
	cause := fmt.Errorf("libretranslate %s: status %d: %s", path, status, msg)

	switch {
	case status == http.StatusTooManyRequests:
		return errors.Join(feedback.ErrRateLimited, cause)
	case status >= http.StatusInternalServerError:
		return errors.Join(feedback.ErrUnavailable, cause)
	default:
		return errors.Join(feedback.ErrInvalidResponse, cause)
	}
}
