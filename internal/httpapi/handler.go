package httpapi

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"

	"github.com/ironsheep/logoforge-mcp/internal/inference"
	"github.com/ironsheep/logoforge-mcp/internal/studio"
	"github.com/ironsheep/logoforge-mcp/internal/vectorize"
)

// Handler serves the studio operations as JSON endpoints.
type Handler struct {
	svc *studio.Service
}

// New returns a Handler over svc.
func New(svc *studio.Service) *Handler {
	return &Handler{svc: svc}
}

// Routes returns the API routes, meant to be mounted under /api.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Post("/convert-to-svg", h.convertToSVG)
	r.Post("/generate-logo", h.generateLogo)
	r.Post("/generate-svg", h.generateSVG)
	r.Post("/generate-description", h.generateDescription)

	return r
}

// NewRouter builds the complete HTTP surface: middleware, CORS, the health
// check and the API under /api.
func NewRouter(svc *studio.Service) http.Handler {
	cfg := svc.Config().HTTP

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]string{"status": "ok"})
	})
	r.Mount("/api", New(svc).Routes())

	return r
}

// ListenAndServe runs handler on addr until ctx is done, then shuts the
// server down, waiting up to grace for in-flight requests.
func ListenAndServe(ctx context.Context, addr string, handler http.Handler, grace time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Printf("HTTP API listening on %s", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// decode reads a JSON body bounded by the configured size limit.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	body := r.Body
	if limit := h.svc.Config().HTTP.MaxBodyBytes; limit > 0 {
		body = http.MaxBytesReader(w, r.Body, limit)
	}
	if err := render.DecodeJSON(body, v); err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		render.Status(r, status)
		render.JSON(w, r, ErrorResponse{Error: "Invalid request body", Details: err.Error()})
		return false
	}
	return true
}

// fail writes err with the status its kind maps to.
func fail(w http.ResponseWriter, r *http.Request, title string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Printf("%s %s: %s: %v", r.Method, r.URL.Path, title, err)
	}
	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Error: title, Details: err.Error()})
}

func statusFor(err error) int {
	var (
		decodeErr *vectorize.DecodeError
		traceErr  *vectorize.TraceError
		emptyErr  *vectorize.EmptyResultError
		apiErr    *inference.APIError
	)
	switch {
	case errors.Is(err, studio.ErrInvalidRequest),
		errors.Is(err, vectorize.ErrInvalidOptions),
		errors.Is(err, inference.ErrEmptyPrompt),
		errors.As(err, &decodeErr):
		return http.StatusBadRequest
	case errors.As(err, &traceErr), errors.As(err, &emptyErr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, inference.ErrMissingAPIKey):
		return http.StatusServiceUnavailable
	case errors.As(err, &apiErr),
		errors.Is(err, inference.ErrEmptyResponse),
		errors.Is(err, studio.ErrFetch):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// === Conversion ===

type convertOptions struct {
	Width           *int     `json:"width"`
	Height          *int     `json:"height"`
	BackgroundColor *string  `json:"backgroundColor"`
	StrokeColor     *string  `json:"strokeColor"`
	StrokeWidth     *float64 `json:"strokeWidth"`

	TurdSize  *int    `json:"turdSize"`
	Threshold *int    `json:"threshold"`
	Polarity  *string `json:"polarity"`
}

// apply overlays the options that were sent on base.
func (o convertOptions) apply(base vectorize.Options) vectorize.Options {
	if o.Width != nil {
		base.Width = *o.Width
	}
	if o.Height != nil {
		base.Height = *o.Height
	}
	if o.BackgroundColor != nil {
		base.Background = *o.BackgroundColor
	}
	if o.StrokeColor != nil {
		base.Color = *o.StrokeColor
	}
	if o.StrokeWidth != nil {
		base.StrokeWidth = *o.StrokeWidth
	}
	if o.TurdSize != nil {
		base.TurdSize = *o.TurdSize
	}
	if o.Threshold != nil {
		base.Threshold = *o.Threshold
	}
	if o.Polarity != nil {
		base.Polarity = vectorize.Polarity(*o.Polarity)
	}
	return base
}

type convertRequest struct {
	ImageURL string         `json:"imageUrl"`
	Options  convertOptions `json:"options"`
}

type convertResponse struct {
	SVG string `json:"svg"`
}

func (h *Handler) convertToSVG(w http.ResponseWriter, r *http.Request) {
	var req convertRequest
	if !h.decode(w, r, &req) {
		return
	}

	res, err := h.svc.ConvertToSVG(r.Context(), req.ImageURL, req.Options.apply(h.svc.TraceDefaults()))
	if err != nil {
		fail(w, r, "Failed to convert to SVG", err)
		return
	}
	render.JSON(w, r, convertResponse{SVG: res.Document.SVG})
}

// === Generation ===

type generateRequest struct {
	Prompt string `json:"prompt"`
	Model  string `json:"model"`
}

type imageURLResponse struct {
	ImageURL string `json:"imageUrl"`
}

func (h *Handler) generateLogo(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if !h.decode(w, r, &req) {
		return
	}

	u, err := h.svc.GenerateLogo(r.Context(), studio.LogoRequest{Prompt: req.Prompt, Model: req.Model})
	if err != nil {
		fail(w, r, "Failed to generate logo", err)
		return
	}
	render.JSON(w, r, imageURLResponse{ImageURL: u})
}

// generateSVG produces a trace-ready image; callers convert it with
// /convert-to-svg.
func (h *Handler) generateSVG(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if !h.decode(w, r, &req) {
		return
	}

	u, err := h.svc.GenerateImage(r.Context(), studio.ImageRequest{Prompt: req.Prompt, Model: req.Model})
	if err != nil {
		fail(w, r, "Failed to generate image", err)
		return
	}
	render.JSON(w, r, imageURLResponse{ImageURL: u})
}

// === Descriptions ===

type describeRequest struct {
	ImageURL  string   `json:"imageUrl"`
	Model     string   `json:"model"`
	Languages []string `json:"languages"`
	Length    string   `json:"length"`
	Format    string   `json:"format"`
}

type describeResponse struct {
	Descriptions map[string]string `json:"descriptions"`
	Hint         string            `json:"ocrHint,omitempty"`
}

func (h *Handler) generateDescription(w http.ResponseWriter, r *http.Request) {
	var req describeRequest
	if !h.decode(w, r, &req) {
		return
	}

	res, err := h.svc.Describe(r.Context(), studio.DescribeRequest{
		ImageURL:  req.ImageURL,
		Model:     req.Model,
		Languages: req.Languages,
		Length:    req.Length,
		Format:    req.Format,
	})
	if err != nil {
		fail(w, r, "Failed to generate descriptions", err)
		return
	}
	render.JSON(w, r, describeResponse{Descriptions: res.Descriptions, Hint: res.Hint})
}
