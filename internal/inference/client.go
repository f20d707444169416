package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// DefaultBaseURL is the Hugging Face serverless inference endpoint.
const DefaultBaseURL = "https://api-inference.huggingface.co"

const (
	defaultTimeout    = 120 * time.Second
	defaultRetryDelay = 2 * time.Second
	maxRetryDelay     = 30 * time.Second

	defaultMaxResponseBytes = 32 << 20
)

var (
	// ErrMissingAPIKey is returned by every call when no API key is set.
	ErrMissingAPIKey = errors.New("inference API key is not configured")

	// ErrEmptyResponse is returned when the provider answers without content.
	ErrEmptyResponse = errors.New("inference provider returned an empty response")

	// ErrEmptyPrompt is returned for requests without prompt text.
	ErrEmptyPrompt = errors.New("prompt must be set")
)

// Config holds the explicit settings of a Client.
type Config struct {
	// APIKey is sent as a bearer token.
	APIKey string

	// BaseURL defaults to DefaultBaseURL.
	BaseURL string

	// Timeout bounds one HTTP attempt. Defaults to two minutes.
	Timeout time.Duration

	// MaxRetries is the number of extra attempts made while a model is
	// loading (HTTP 503) or the provider is rate limiting (HTTP 429).
	MaxRetries int

	// RetryDelay is the wait between attempts when the provider does not
	// suggest one. Defaults to two seconds.
	RetryDelay time.Duration

	// MaxResponseBytes bounds response bodies; larger answers are errors.
	// Defaults to 32 MiB.
	MaxResponseBytes int64

	// HTTPClient replaces the default client, mainly for tests.
	HTTPClient *http.Client
}

// APIError is a non-2xx answer from the provider.
type APIError struct {
	StatusCode int
	Message    string

	// EstimatedTime is the model loading time in seconds reported with 503
	// answers, 0 when absent.
	EstimatedTime float64
}

func (e *APIError) Error() string {
	return fmt.Sprintf("inference API returned %d: %s", e.StatusCode, e.Message)
}

// Temporary reports whether the request may succeed when retried.
func (e *APIError) Temporary() bool {
	return e.StatusCode == http.StatusServiceUnavailable || e.StatusCode == http.StatusTooManyRequests
}

// Client calls hosted text-to-image and vision-language models. It is safe
// for concurrent use.
type Client struct {
	cfg  Config
	http *http.Client
}

// New returns a Client for cfg, filling in defaults.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = defaultRetryDelay
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.MaxResponseBytes <= 0 {
		cfg.MaxResponseBytes = defaultMaxResponseBytes
	}

	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{cfg: cfg, http: hc}
}

// Configured reports whether an API key is set.
func (c *Client) Configured() bool { return c.cfg.APIKey != "" }

// ImageParameters tune a text-to-image request. Zero values are omitted and
// leave the model defaults in place.
type ImageParameters struct {
	NegativePrompt    string  `json:"negative_prompt,omitempty" yaml:"negative_prompt"`
	NumInferenceSteps int     `json:"num_inference_steps,omitempty" yaml:"num_inference_steps"`
	GuidanceScale     float64 `json:"guidance_scale,omitempty" yaml:"guidance_scale"`
	Width             int     `json:"width,omitempty" yaml:"width"`
	Height            int     `json:"height,omitempty" yaml:"height"`
}

// ImageRequest asks a text-to-image model for one image.
type ImageRequest struct {
	Prompt     string
	Parameters *ImageParameters
}

// Image is a generated raster image.
type Image struct {
	Data     []byte
	MimeType string
}

type imageBody struct {
	Inputs     string           `json:"inputs"`
	Parameters *ImageParameters `json:"parameters,omitempty"`
}

// GenerateImage runs a text-to-image model and returns the encoded image.
func (c *Client) GenerateImage(ctx context.Context, model string, req ImageRequest) (*Image, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, ErrEmptyPrompt
	}

	body, header, err := c.post(ctx, modelPath(model), imageBody{Inputs: req.Prompt, Parameters: req.Parameters})
	if err != nil {
		return nil, errors.Wrapf(err, "unable to generate image with %s", model)
	}
	if len(body) == 0 {
		return nil, errors.Wrapf(ErrEmptyResponse, "unable to generate image with %s", model)
	}

	return &Image{Data: body, MimeType: imageMimeType(header.Get("Content-Type"), body)}, nil
}

// ChatRequest asks a vision-language model about one image.
type ChatRequest struct {
	// Prompt is the instruction text.
	Prompt string

	// ImageURL is an http(s) or data URL of the image.
	ImageURL string

	// MaxTokens bounds the answer length. Zero leaves the model default.
	MaxTokens int
}

type chatPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageRef `json:"image_url,omitempty"`
}

type imageRef struct {
	URL string `json:"url"`
}

type chatMessage struct {
	Role    string     `json:"role"`
	Content []chatPart `json:"content"`
}

type chatBody struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Describe sends one user message with a text part and an image part to the
// model's chat completion endpoint and returns the first answer.
func (c *Client) Describe(ctx context.Context, model string, req ChatRequest) (string, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return "", ErrEmptyPrompt
	}

	payload := chatBody{
		Model: model,
		Messages: []chatMessage{{
			Role: "user",
			Content: []chatPart{
				{Type: "text", Text: req.Prompt},
				{Type: "image_url", ImageURL: &imageRef{URL: req.ImageURL}},
			},
		}},
		MaxTokens: req.MaxTokens,
	}

	body, _, err := c.post(ctx, modelPath(model)+"/v1/chat/completions", payload)
	if err != nil {
		return "", errors.Wrapf(err, "unable to describe image with %s", model)
	}

	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", errors.Wrap(err, "unable to decode chat completion")
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", errors.Wrapf(ErrEmptyResponse, "unable to describe image with %s", model)
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// post sends a JSON body and returns the response body, retrying temporary
// provider errors up to MaxRetries times.
func (c *Client) post(ctx context.Context, path string, payload interface{}) ([]byte, http.Header, error) {
	if c.cfg.APIKey == "" {
		return nil, nil, ErrMissingAPIKey
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, errors.Wrap(err, "unable to encode request")
	}

	for attempt := 0; ; attempt++ {
		body, header, err := c.once(ctx, path, data)
		if err == nil {
			return body, header, nil
		}

		var apiErr *APIError
		if !errors.As(err, &apiErr) || !apiErr.Temporary() || attempt >= c.cfg.MaxRetries {
			return nil, nil, err
		}

		delay := c.cfg.RetryDelay
		if apiErr.EstimatedTime > 0 {
			delay = time.Duration(apiErr.EstimatedTime * float64(time.Second))
		}
		if delay > maxRetryDelay {
			delay = maxRetryDelay
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, nil, errors.Wrap(ctx.Err(), "unable to wait for model")
		case <-timer.C:
		}
	}
}

func (c *Client) once(ctx context.Context, path string, data []byte) ([]byte, http.Header, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, nil, errors.Wrap(err, "unable to build request")
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, errors.Wrap(err, "unable to reach inference API")
	}
	defer resp.Body.Close()

	limit := c.cfg.MaxResponseBytes
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, nil, errors.Wrap(err, "unable to read response")
	}
	if int64(len(body)) > limit {
		return nil, nil, errors.Errorf("inference API response is larger than %d bytes", limit)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, nil, decodeAPIError(resp.StatusCode, body)
	}
	return body, resp.Header, nil
}

// decodeAPIError reads the provider's {"error": ..., "estimated_time": ...}
// body, falling back to the raw text.
func decodeAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}

	var payload struct {
		Error         json.RawMessage `json:"error"`
		EstimatedTime float64         `json:"estimated_time"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && len(payload.Error) > 0 {
		apiErr.EstimatedTime = payload.EstimatedTime
		var msg string
		if json.Unmarshal(payload.Error, &msg) == nil {
			apiErr.Message = msg
		} else {
			apiErr.Message = string(payload.Error)
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(body))
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}

func modelPath(model string) string {
	return "/models/" + (&url.URL{Path: model}).EscapedPath()
}

// imageMimeType trusts an image/* Content-Type and sniffs the body otherwise.
func imageMimeType(contentType string, body []byte) string {
	if mt, _, err := mime.ParseMediaType(contentType); err == nil && strings.HasPrefix(mt, "image/") {
		return mt
	}
	return http.DetectContentType(body)
}
