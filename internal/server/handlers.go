package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image/color"
	"log"
	"net/http"
	"time"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/logoforge-mcp/internal/imaging"
	"github.com/ironsheep/logoforge-mcp/internal/studio"
	"github.com/ironsheep/logoforge-mcp/internal/vectorize"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "vectorize_image", "generate_logo").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// attachment is implemented by results that carry an image to return as MCP
// image content next to the JSON text.
type attachment interface {
	attachedImage() *imaging.EncodedImage
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Results with a preview add an {"type": "image"} item. Tool execution errors
// return a JSON-RPC error response with code codeToolFailed.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return rpcError(req.ID, codeInvalidParams, "Invalid params", err.Error())
	}
	if len(params.Arguments) == 0 {
		params.Arguments = json.RawMessage("{}")
	}

	if timeout := s.studio.Config().HTTP.RequestTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	res, err := s.executeTool(ctx, params.Name, params.Arguments)
	if s.debug {
		log.Printf("tool %s finished in %v (error: %v)", params.Name, time.Since(start).Round(time.Millisecond), err)
	}
	if err != nil {
		return rpcError(req.ID, codeToolFailed, "Tool execution failed", err.Error())
	}

	content := []map[string]interface{}{
		{
			"type": "text",
			"text": mustMarshalJSON(res),
		},
	}
	if a, ok := res.(attachment); ok {
		if img := a.attachedImage(); img != nil {
			content = append(content, map[string]interface{}{
				"type":     "image",
				"data":     img.ImageBase64,
				"mimeType": img.MimeType,
			})
		}
	}

	return result(req.ID, map[string]interface{}{"content": content})
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies the configured defaults for omitted parameters
//  3. Calls the studio service
//  4. Returns the result or error
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Vectorization
	case "vectorize_image":
		return s.handleVectorizeImage(ctx, args)
	case "image_info":
		return s.handleImageInfo(ctx, args)

	// Generation
	case "generate_logo":
		return s.handleGenerateLogo(ctx, args)
	case "generate_image":
		return s.handleGenerateImage(ctx, args)
	case "generate_svg":
		return s.handleGenerateSVG(ctx, args)

	// Descriptions
	case "describe_product":
		return s.handleDescribeProduct(ctx, args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Image Sources ===

type imageSourceArgs struct {
	Path     string `json:"path"`
	ImageURL string `json:"image_url"`
}

// payload returns the encoded image named by the arguments.
func (a imageSourceArgs) payload(ctx context.Context, svc *studio.Service) ([]byte, error) {
	switch {
	case a.Path != "":
		return imaging.ReadFile(a.Path)
	case a.ImageURL != "":
		return svc.Load(ctx, a.ImageURL)
	default:
		return nil, fmt.Errorf("either path or image_url is required")
	}
}

// traceOptions overlays the vectorization options present in args on the
// configured defaults. Resource limits cannot be raised by callers.
func (s *Server) traceOptions(args json.RawMessage) (vectorize.Options, error) {
	defaults := s.studio.TraceDefaults()
	opts := defaults
	if err := json.Unmarshal(args, &opts); err != nil {
		return vectorize.Options{}, err
	}
	opts.MaxContours = defaults.MaxContours
	opts.MaxPixels = defaults.MaxPixels
	return opts, nil
}

// === Vectorization Handlers ===

type vectorizeArgs struct {
	imageSourceArgs
	Preview bool `json:"preview"`
}

type vectorizeResult struct {
	SVG        string `json:"svg"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Paths      int    `json:"paths"`
	Contours   int    `json:"contours"`
	Holes      int    `json:"holes"`
	Suppressed int    `json:"suppressed"`
	Format     string `json:"format"`
	Color      string `json:"color"`

	preview *imaging.EncodedImage
}

func (r *vectorizeResult) attachedImage() *imaging.EncodedImage { return r.preview }

func newVectorizeResult(res *vectorize.Result) vectorizeResult {
	out := vectorizeResult{
		SVG:        res.Document.SVG,
		Width:      res.Document.Width,
		Height:     res.Document.Height,
		Paths:      res.Document.Paths,
		Contours:   len(res.Path.Contours),
		Suppressed: res.Path.Suppressed,
		Format:     res.Format,
		Color:      res.Color,
	}
	for _, c := range res.Path.Contours {
		if c.Hole {
			out.Holes++
		}
	}
	return out
}

func (s *Server) handleVectorizeImage(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a vectorizeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	opts, err := s.traceOptions(args)
	if err != nil {
		return nil, err
	}

	payload, err := a.payload(ctx, s.studio)
	if err != nil {
		return nil, err
	}
	res, err := s.studio.Vectorize(payload, opts)
	if err != nil {
		return nil, fmt.Errorf("vectorization failed: %w", err)
	}

	out := newVectorizeResult(res)
	if a.Preview {
		if out.preview, err = renderPreview(res, opts); err != nil {
			return nil, err
		}
	}
	return &out, nil
}

// maxPreviewSide bounds the longer side of preview images.
const maxPreviewSide = 1024

// previewSize fits width x height within maxPreviewSide, keeping the aspect
// ratio.
func previewSize(width, height int) (int, int) {
	longest := width
	if height > longest {
		longest = height
	}
	if longest <= maxPreviewSide {
		return width, height
	}
	w := width * maxPreviewSide / longest
	h := height * maxPreviewSide / longest
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

// renderPreview rasterizes the traced shapes at the document size, fitted
// within maxPreviewSide.
func renderPreview(res *vectorize.Result, opts vectorize.Options) (*imaging.EncodedImage, error) {
	fill, err := colorful.Hex(res.Color)
	if err != nil {
		return nil, fmt.Errorf("invalid fill color %q: %w", res.Color, err)
	}

	var background color.Color
	if p, err := vectorize.ParsePaint(opts.Background); err == nil && !p.None {
		if bg, err := colorful.Hex(p.Hex); err == nil {
			background = bg
		}
	}

	width, height := previewSize(res.Document.Width, res.Document.Height)
	img := vectorize.Render(res.Path, width, height, fill, background)
	return imaging.EncodePNG(img, 1.0)
}

type imageInfoResult struct {
	*imaging.ImageInfo
	MeanColor *imaging.ColorSummary `json:"mean_color,omitempty"`
}

func (s *Server) handleImageInfo(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a imageSourceArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	payload, err := a.payload(ctx, s.studio)
	if err != nil {
		return nil, err
	}

	info, err := imaging.Info(payload, s.studio.TraceDefaults().MaxPixels)
	if err != nil {
		return nil, err
	}
	img, _, err := imaging.Decode(payload, s.studio.TraceDefaults().MaxPixels)
	if err != nil {
		return nil, err
	}

	out := imageInfoResult{ImageInfo: info}
	if hex, ok := imaging.MeanColor(img, nil); ok {
		if out.MeanColor, err = imaging.Summarize(hex); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// === Generation Handlers ===

type generateArgs struct {
	Prompt string `json:"prompt"`
	Model  string `json:"model"`
}

type imageURLResult struct {
	ImageURL string `json:"image_url"`
}

func (s *Server) handleGenerateLogo(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a generateArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	u, err := s.studio.GenerateLogo(ctx, studio.LogoRequest{Prompt: a.Prompt, Model: a.Model})
	if err != nil {
		return nil, err
	}
	return imageURLResult{ImageURL: u}, nil
}

func (s *Server) handleGenerateImage(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a generateArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	u, err := s.studio.GenerateImage(ctx, studio.ImageRequest{Prompt: a.Prompt, Model: a.Model})
	if err != nil {
		return nil, err
	}
	return imageURLResult{ImageURL: u}, nil
}

type generateSVGResult struct {
	ImageURL string `json:"image_url"`
	vectorizeResult
}

func (s *Server) handleGenerateSVG(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a generateArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	opts, err := s.traceOptions(args)
	if err != nil {
		return nil, err
	}

	res, err := s.studio.GenerateSVG(ctx, studio.SVGRequest{Prompt: a.Prompt, Model: a.Model, Options: opts})
	if err != nil {
		return nil, err
	}
	return generateSVGResult{ImageURL: res.ImageURL, vectorizeResult: newVectorizeResult(res.Result)}, nil
}

// === Description Handlers ===

type describeArgs struct {
	imageSourceArgs
	Languages []string `json:"languages"`
	Length    string   `json:"length"`
	Model     string   `json:"model"`
	Format    string   `json:"format"`
}

type describeResult struct {
	Descriptions map[string]string `json:"descriptions"`
	Hint         string            `json:"ocr_hint,omitempty"`
}

func (s *Server) handleDescribeProduct(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a describeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	imageURL := a.ImageURL
	if a.Path != "" {
		data, err := imaging.ReadFile(a.Path)
		if err != nil {
			return nil, err
		}
		imageURL = "data:" + http.DetectContentType(data) + ";base64," + base64.StdEncoding.EncodeToString(data)
	}

	res, err := s.studio.Describe(ctx, studio.DescribeRequest{
		ImageURL:  imageURL,
		Model:     a.Model,
		Languages: a.Languages,
		Length:    a.Length,
		Format:    a.Format,
	})
	if err != nil {
		return nil, err
	}
	return describeResult{Descriptions: res.Descriptions, Hint: res.Hint}, nil
}
