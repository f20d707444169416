package httpapi

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/logoforge-mcp/internal/config"
	"github.com/ironsheep/logoforge-mcp/internal/inference"
	"github.com/ironsheep/logoforge-mcp/internal/studio"
	"github.com/ironsheep/logoforge-mcp/internal/vectorize"
)

type fakeProvider struct {
	mu     sync.Mutex
	err    error
	models []string
}

func (p *fakeProvider) GenerateImage(_ context.Context, model string, _ inference.ImageRequest) (*inference.Image, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.models = append(p.models, model)
	if p.err != nil {
		return nil, p.err
	}
	return &inference.Image{Data: []byte("\x89PNG"), MimeType: "image/png"}, nil
}

func (p *fakeProvider) Describe(_ context.Context, model string, _ inference.ChatRequest) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.models = append(p.models, model)
	if p.err != nil {
		return "", p.err
	}
	return "A fine mug.", nil
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Trace.TurdSize = 4
	return cfg
}

func newTestRouter(t *testing.T, cfg config.Config, p studio.Provider) http.Handler {
	t.Helper()
	if p == nil {
		p = &fakeProvider{}
	}
	return NewRouter(studio.New(cfg, p))
}

// encodePNG renders a size x size white image, with a black square in the
// middle when square is set, as a data URL.
func encodePNG(t *testing.T, size int, square bool) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			c := color.RGBA{255, 255, 255, 255}
			if square && x >= size/4 && x < 3*size/4 && y >= size/4 && y < 3*size/4 {
				c = color.RGBA{0, 0, 0, 255}
			}
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func post(t *testing.T, h http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var data []byte
	switch b := body.(type) {
	case string:
		data = []byte(b)
	default:
		var err error
		data, err = json.Marshal(b)
		require.NoError(t, err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func TestHealthz(t *testing.T) {
	h := newTestRouter(t, testConfig(), nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestConvertToSVG(t *testing.T) {
	h := newTestRouter(t, testConfig(), nil)
	rec := post(t, h, "/api/convert-to-svg", map[string]interface{}{
		"imageUrl": encodePNG(t, 40, true),
		"options": map[string]interface{}{
			"width":           80,
			"strokeColor":     "#112233",
			"backgroundColor": "#ffffff",
			"strokeWidth":     0,
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp convertResponse
	decodeBody(t, rec, &resp)
	assert.Contains(t, resp.SVG, `width="80" height="80"`)
	assert.Contains(t, resp.SVG, `fill="#112233"`)
	assert.Contains(t, resp.SVG, `<rect x="0" y="0" width="40" height="40" fill="#ffffff"/>`)
	assert.NotContains(t, resp.SVG, "stroke=")
}

func TestConvertToSVG_Errors(t *testing.T) {
	h := newTestRouter(t, testConfig(), nil)

	tests := []struct {
		name   string
		body   interface{}
		status int
		title  string
	}{
		{"malformed body", `{"imageUrl":`, http.StatusBadRequest, "Invalid request body"},
		{"missing image", map[string]interface{}{}, http.StatusBadRequest, "Failed to convert to SVG"},
		{"undecodable image", map[string]interface{}{"imageUrl": "data:image/png;base64,AAAA"}, http.StatusBadRequest, "Failed to convert to SVG"},
		{"bad polarity", map[string]interface{}{
			"imageUrl": encodePNG(t, 40, true),
			"options":  map[string]interface{}{"polarity": "sideways"},
		}, http.StatusBadRequest, "Failed to convert to SVG"},
		{"nothing to trace", map[string]interface{}{"imageUrl": encodePNG(t, 40, false)}, http.StatusUnprocessableEntity, "Failed to convert to SVG"},
		{"remote url", map[string]interface{}{"imageUrl": "http://169.254.169.254/latest/meta-data"}, http.StatusBadRequest, "Failed to convert to SVG"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, h, "/api/convert-to-svg", tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())

			var resp ErrorResponse
			decodeBody(t, rec, &resp)
			assert.Equal(t, tt.title, resp.Error)
			assert.NotEmpty(t, resp.Details)
		})
	}
}

func TestBodyLimit(t *testing.T) {
	cfg := testConfig()
	cfg.HTTP.MaxBodyBytes = 64
	h := newTestRouter(t, cfg, nil)

	rec := post(t, h, "/api/convert-to-svg", map[string]interface{}{"imageUrl": encodePNG(t, 40, true)})
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestGenerateLogo(t *testing.T) {
	p := &fakeProvider{}
	h := newTestRouter(t, testConfig(), p)

	rec := post(t, h, "/api/generate-logo", map[string]interface{}{"prompt": "a fox", "model": "acme/logo-xl"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp imageURLResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, "data:image/png;base64,"+base64.StdEncoding.EncodeToString([]byte("\x89PNG")), resp.ImageURL)
	assert.Equal(t, []string{"acme/logo-xl"}, p.models)
}

func TestGenerateLogo_Errors(t *testing.T) {
	tests := []struct {
		name   string
		prompt string
		err    error
		status int
	}{
		{"empty prompt", "  ", nil, http.StatusBadRequest},
		{"missing key", "a fox", inference.ErrMissingAPIKey, http.StatusServiceUnavailable},
		{"provider failure", "a fox", &inference.APIError{StatusCode: 500, Message: "boom"}, http.StatusBadGateway},
		{"empty answer", "a fox", inference.ErrEmptyResponse, http.StatusBadGateway},
		{"unexpected", "a fox", errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestRouter(t, testConfig(), &fakeProvider{err: tt.err})
			rec := post(t, h, "/api/generate-logo", map[string]interface{}{"prompt": tt.prompt})
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())

			var resp ErrorResponse
			decodeBody(t, rec, &resp)
			assert.Equal(t, "Failed to generate logo", resp.Error)
		})
	}
}

func TestGenerateSVG(t *testing.T) {
	cfg := testConfig()
	p := &fakeProvider{}
	h := newTestRouter(t, cfg, p)

	rec := post(t, h, "/api/generate-svg", map[string]interface{}{"prompt": "a fox"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp imageURLResponse
	decodeBody(t, rec, &resp)
	assert.True(t, strings.HasPrefix(resp.ImageURL, "data:image/png;base64,"))
	assert.Equal(t, []string{cfg.Models.Image}, p.models)
}

func TestGenerateDescription(t *testing.T) {
	cfg := testConfig()
	p := &fakeProvider{}
	h := newTestRouter(t, cfg, p)

	rec := post(t, h, "/api/generate-description", map[string]interface{}{
		"imageUrl":  encodePNG(t, 40, true),
		"model":     cfg.Models.Vision,
		"languages": []string{"English", "french"},
		"length":    "short",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp describeResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, map[string]string{"english": "A fine mug.", "french": "A fine mug."}, resp.Descriptions)
	assert.Len(t, p.models, 2)
}

func TestGenerateDescription_Errors(t *testing.T) {
	h := newTestRouter(t, testConfig(), nil)
	img := encodePNG(t, 40, true)

	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{"no languages", map[string]interface{}{"imageUrl": img}},
		{"too many languages", map[string]interface{}{"imageUrl": img, "languages": []string{"english", "french", "german", "spanish"}}},
		{"unknown language", map[string]interface{}{"imageUrl": img, "languages": []string{"klingon"}}},
		{"unknown length", map[string]interface{}{"imageUrl": img, "languages": []string{"english"}, "length": "epic"}},
		{"disallowed model", map[string]interface{}{"imageUrl": img, "languages": []string{"english"}, "model": "acme/other"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, h, "/api/generate-description", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

			var resp ErrorResponse
			decodeBody(t, rec, &resp)
			assert.Equal(t, "Failed to generate descriptions", resp.Error)
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	h := newTestRouter(t, testConfig(), nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/generate-logo", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid request", pkgerrors.Wrap(studio.ErrInvalidRequest, "prompt is required"), http.StatusBadRequest},
		{"invalid options", pkgerrors.Wrap(vectorize.ErrInvalidOptions, "threshold"), http.StatusBadRequest},
		{"decode", &vectorize.DecodeError{Err: errors.New("truncated")}, http.StatusBadRequest},
		{"trace", &vectorize.TraceError{Err: vectorize.ErrUniform}, http.StatusUnprocessableEntity},
		{"empty result", &vectorize.EmptyResultError{Suppressed: 3}, http.StatusUnprocessableEntity},
		{"missing key", pkgerrors.Wrap(inference.ErrMissingAPIKey, "unable to generate logo"), http.StatusServiceUnavailable},
		{"api", &inference.APIError{StatusCode: 503, Message: "loading"}, http.StatusBadGateway},
		{"fetch", pkgerrors.Wrap(studio.ErrFetch, "example.com returned 404"), http.StatusBadGateway},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}
