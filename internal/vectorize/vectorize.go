package vectorize

import (
	"strings"

	"github.com/ironsheep/logoforge-mcp/internal/imaging"
)

// Result is the full outcome of one conversion.
type Result struct {
	// Document is the serialized SVG.
	Document *Document

	// Path is the traced geometry the document was built from.
	Path *VectorPath

	// Format is the name of the decoder that read the payload.
	Format string

	// Color is the resolved fill color, after AutoColor sampling.
	Color string
}

// Vectorize converts an encoded raster image into an SVG document.
//
// The payload may be raw PNG, JPEG, GIF, BMP, TIFF or WebP bytes, base64 text
// or a "data:image/...;base64," URL. The conversion runs decode, preprocess,
// trace and serialize in order and stops at the first failing stage:
//
//   - options that fail Validate: an error wrapping ErrInvalidOptions
//   - unreadable payloads: *DecodeError
//   - nothing to trace: *TraceError
//   - every region suppressed as noise: *EmptyResultError
//
// The output depends only on payload and opts.
func Vectorize(payload []byte, opts Options) (*Document, error) {
	res, err := Convert(payload, opts)
	if err != nil {
		return nil, err
	}
	return res.Document, nil
}

// Convert is Vectorize returning the traced geometry alongside the document.
func Convert(payload []byte, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	img, format, err := imaging.Decode(payload, opts.MaxPixels)
	if err != nil {
		return nil, &DecodeError{Err: err}
	}

	gray := imaging.Preprocess(img)
	mask := Binarize(gray, opts.Threshold, opts.Polarity)
	vp, err := TraceMask(mask, opts)
	if err != nil {
		return nil, err
	}

	if strings.EqualFold(strings.TrimSpace(opts.Color), AutoColor) {
		opts.Color = DefaultOptions().Color
		if hex, ok := imaging.MeanColor(img, mask.At); ok {
			opts.Color = hex
		}
	}

	doc, err := Serialize(vp, opts)
	if err != nil {
		return nil, err
	}
	return &Result{Document: doc, Path: vp, Format: format, Color: opts.Color}, nil
}
