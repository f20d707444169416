package studio

import (
	"context"
	"encoding/base64"
	"image"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/yuin/goldmark"

	"github.com/ironsheep/logoforge-mcp/internal/config"
	"github.com/ironsheep/logoforge-mcp/internal/inference"
	"github.com/ironsheep/logoforge-mcp/internal/vectorize"
)

const fetchTimeout = 30 * time.Second

var (
	// ErrInvalidRequest marks requests rejected before any work is done.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrFetch marks failures to download a remote image.
	ErrFetch = errors.New("unable to fetch image")
)

func invalidf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrInvalidRequest, format, args...)
}

// Provider runs the hosted models. *inference.Client implements it.
type Provider interface {
	GenerateImage(ctx context.Context, model string, req inference.ImageRequest) (*inference.Image, error)
	Describe(ctx context.Context, model string, req inference.ChatRequest) (string, error)
}

// TextHinter reads the text printed on an image. *ocr.Engine implements it.
type TextHinter interface {
	Hint(img image.Image) (string, error)
}

// Service orchestrates logo generation, SVG generation and conversion and
// product descriptions. It is safe for concurrent use.
type Service struct {
	cfg      config.Config
	provider Provider
	hinter   TextHinter
	fetcher  *http.Client
	markdown goldmark.Markdown
	cache    *resultCache
}

// Option configures a Service.
type Option func(*Service)

// WithTextHinter enables OCR hints in descriptions.
func WithTextHinter(h TextHinter) Option {
	return func(s *Service) { s.hinter = h }
}

// WithHTTPClient sets the client used to download http(s) image URLs. The
// client replaces the default one, including its address checks.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Service) { s.fetcher = c }
}

// New returns a Service using cfg and provider.
func New(cfg config.Config, provider Provider, opts ...Option) *Service {
	s := &Service{
		cfg:      cfg,
		provider: provider,
		fetcher:  newFetcher(),
		markdown: goldmark.New(),
		cache:    newResultCache(cfg.Cache.MaxEntries),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Config returns the configuration the service was built with.
func (s *Service) Config() config.Config { return s.cfg }

// TraceDefaults returns the default vectorization options.
func (s *Service) TraceDefaults() vectorize.Options { return s.cfg.Trace }

// CachedResults returns the number of cached vectorization results.
func (s *Service) CachedResults() int { return s.cache.Len() }

// LogoRequest asks for a logo image.
type LogoRequest struct {
	Prompt string

	// Model overrides the configured text-to-image model.
	Model string
}

// GenerateLogo runs the text-to-image model on the prompt as given and
// returns the image as a data URL.
func (s *Service) GenerateLogo(ctx context.Context, req LogoRequest) (string, error) {
	img, err := s.generate(ctx, req.Model, req.Prompt, nil)
	if err != nil {
		return "", errors.Wrap(err, "unable to generate logo")
	}
	return dataURL(img), nil
}

// ImageRequest asks for an image suited to vectorization.
type ImageRequest struct {
	Prompt string
	Model  string
}

// GenerateImage runs the text-to-image model with the configured generation
// parameters and returns the image as a data URL.
func (s *Service) GenerateImage(ctx context.Context, req ImageRequest) (string, error) {
	params := s.cfg.Generation.Parameters
	img, err := s.generate(ctx, req.Model, req.Prompt, &params)
	if err != nil {
		return "", errors.Wrap(err, "unable to generate image")
	}
	return dataURL(img), nil
}

func (s *Service) generate(ctx context.Context, model, prompt string, params *inference.ImageParameters) (*inference.Image, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, invalidf("prompt is required")
	}
	if model == "" {
		model = s.cfg.Models.Image
	}
	return s.provider.GenerateImage(ctx, model, inference.ImageRequest{Prompt: prompt, Parameters: params})
}

// ConvertToSVG vectorizes the image at imageURL, which may be a data URL, bare
// base64 text or an http(s) URL. Results are cached by content, so repeating
// a conversion does not trace again.
//
// Pipeline failures are returned unwrapped so callers can match them with
// errors.As.
func (s *Service) ConvertToSVG(ctx context.Context, imageURL string, opts vectorize.Options) (*vectorize.Result, error) {
	payload, err := s.Load(ctx, imageURL)
	if err != nil {
		return nil, err
	}
	return s.Vectorize(payload, opts)
}

// Vectorize converts an encoded image to SVG through the result cache.
func (s *Service) Vectorize(payload []byte, opts vectorize.Options) (*vectorize.Result, error) {
	key := keyFor(payload, opts)
	if res, ok := s.cache.get(key); ok {
		return res, nil
	}

	res, err := vectorize.Convert(payload, opts)
	if err != nil {
		return nil, err
	}
	s.cache.put(key, res)
	return res, nil
}

// SVGRequest asks for a generated image traced to SVG.
type SVGRequest struct {
	Prompt  string
	Model   string
	Options vectorize.Options
}

// SVGResult holds a generated raster image and its vectorization.
type SVGResult struct {
	// ImageURL is the generated raster image as a data URL.
	ImageURL string

	*vectorize.Result
}

// GenerateSVG generates an image with the configured generation parameters
// and converts it to SVG.
func (s *Service) GenerateSVG(ctx context.Context, req SVGRequest) (*SVGResult, error) {
	if err := req.Options.Validate(); err != nil {
		return nil, err
	}

	params := s.cfg.Generation.Parameters
	img, err := s.generate(ctx, req.Model, req.Prompt, &params)
	if err != nil {
		return nil, errors.Wrap(err, "unable to generate image")
	}

	res, err := s.Vectorize(img.Data, req.Options)
	if err != nil {
		return nil, err
	}
	return &SVGResult{ImageURL: dataURL(img), Result: res}, nil
}

// Load returns the encoded image named by ref. Inline references (data URLs
// and base64 text) are returned for the decoder as is. http(s) URLs are
// downloaded, up to the configured body limit, only when remote fetching is
// enabled and the host is allowed.
func (s *Service) Load(ctx context.Context, ref string) ([]byte, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, invalidf("image URL is required")
	}
	if !isRemote(ref) {
		return []byte(ref), nil
	}
	if !s.cfg.HTTP.FetchRemote {
		return nil, invalidf("remote image URLs are disabled; send the image as a data URL")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, invalidf("bad image URL: %v", err)
	}
	if hosts := s.cfg.HTTP.AllowedHosts; len(hosts) > 0 && !containsFold(hosts, req.URL.Hostname()) {
		return nil, invalidf("image host %q is not allowed", req.URL.Hostname())
	}

	resp, err := s.fetcher.Do(req)
	if err != nil {
		if errors.Is(err, ErrBlockedAddress) {
			return nil, invalidf("image host %q is not allowed", req.URL.Hostname())
		}
		return nil, errors.Wrapf(ErrFetch, "%v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Wrapf(ErrFetch, "%s returned %d", req.URL.Redacted(), resp.StatusCode)
	}

	limit := s.cfg.HTTP.MaxBodyBytes
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, errors.Wrapf(ErrFetch, "reading body: %v", err)
	}
	if int64(len(data)) > limit {
		return nil, errors.Wrapf(ErrFetch, "image is larger than %d bytes", limit)
	}
	return data, nil
}

func isRemote(ref string) bool {
	u, err := url.Parse(ref)
	if err != nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return (scheme == "http" || scheme == "https") && u.Host != ""
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

func dataURL(img *inference.Image) string {
	return "data:" + img.MimeType + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}
