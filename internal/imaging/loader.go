package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"strings"

	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// DefaultMaxPixels is the largest decoded area, in pixels, accepted by Decode
// when the caller passes a non-positive limit.
const DefaultMaxPixels = 40_000_000

var (
	// ErrEmptyPayload is returned when there are no image bytes to decode.
	ErrEmptyPayload = errors.New("empty image payload")

	// ErrNotImageDataURL is returned for data URLs that do not carry base64
	// encoded image data.
	ErrNotImageDataURL = errors.New("data URL is not a base64 encoded image")

	// ErrTooLarge is returned when the declared image dimensions exceed the
	// pixel limit.
	ErrTooLarge = errors.New("image exceeds pixel limit")
)

// Payload returns the raw encoded image bytes carried by b.
//
// Three input shapes are accepted:
//   - a data URL of the form "data:image/<subtype>;base64,<payload>"
//   - bare base64 text, as produced by stripping the data URL prefix
//   - raw encoded image bytes (PNG, JPEG, ...)
//
// The second return value is the media type declared by the data URL, or the
// empty string when there was no prefix.
func Payload(b []byte) ([]byte, string, error) {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 {
		return nil, "", ErrEmptyPayload
	}

	if bytes.HasPrefix(trimmed, []byte("data:")) {
		comma := bytes.IndexByte(trimmed, ',')
		if comma < 0 {
			return nil, "", ErrNotImageDataURL
		}
		header := string(trimmed[len("data:"):comma])
		mediaType, params, _ := strings.Cut(header, ";")
		if !strings.HasPrefix(mediaType, "image/") || params != "base64" {
			return nil, "", ErrNotImageDataURL
		}
		raw, err := decodeBase64(trimmed[comma+1:])
		if err != nil {
			return nil, "", fmt.Errorf("failed to decode data URL payload: %w", err)
		}
		if len(raw) == 0 {
			return nil, "", ErrEmptyPayload
		}
		return raw, mediaType, nil
	}

	// Raw image bytes are used as is. Anything the registered decoders do not
	// recognise gets one chance as base64 text.
	if _, _, err := image.DecodeConfig(bytes.NewReader(trimmed)); err == nil {
		return b, "", nil
	}
	if raw, err := decodeBase64(trimmed); err == nil && len(raw) > 0 {
		return raw, "", nil
	}
	return b, "", nil
}

// decodeBase64 accepts both padded and unpadded standard encodings and
// ignores embedded line breaks.
func decodeBase64(text []byte) ([]byte, error) {
	clean := strings.NewReplacer("\n", "", "\r", "", " ", "").Replace(string(text))
	if raw, err := base64.StdEncoding.DecodeString(clean); err == nil {
		return raw, nil
	}
	return base64.RawStdEncoding.DecodeString(strings.TrimRight(clean, "="))
}

// Decode parses an encoded image payload into an image.Image.
//
// The payload may be wrapped in a data URL; see Payload. The image header is
// inspected before the pixel data is decoded so that payloads declaring more
// than maxPixels pixels are rejected without allocating the pixel buffer.
// A non-positive maxPixels selects DefaultMaxPixels.
//
// Returns the decoded image and the format name registered by its decoder
// ("png", "jpeg", "gif", "bmp", "tiff" or "webp").
func Decode(payload []byte, maxPixels int) (image.Image, string, error) {
	data, _, err := Payload(payload)
	if err != nil {
		return nil, "", err
	}
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image header: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, "", fmt.Errorf("invalid image dimensions %dx%d", cfg.Width, cfg.Height)
	}
	if int64(cfg.Width)*int64(cfg.Height) > int64(maxPixels) {
		return nil, "", fmt.Errorf("%w: %dx%d > %d", ErrTooLarge, cfg.Width, cfg.Height, maxPixels)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	return img, format, nil
}

// ReadFile loads the raw bytes of an image file from disk.
func ReadFile(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	return b, nil
}

// ImageInfo contains metadata about an encoded image payload.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is the decoder that recognised the payload: "png", "jpeg", "gif",
	// "bmp", "tiff" or "webp".
	Format string `json:"format"`

	// MediaType is the type declared by a data URL prefix, if any.
	MediaType string `json:"media_type,omitempty"`

	// ColorDepth indicates the bit depth per channel: "8-bit" or "16-bit".
	ColorDepth string `json:"color_depth"`

	// HasAlpha indicates whether the image has an alpha (transparency) channel.
	HasAlpha bool `json:"has_alpha"`

	// SizeBytes is the size of the encoded image in bytes.
	SizeBytes int `json:"size_bytes"`
}

// Info decodes a payload and reports its metadata.
//
// # Color Depth Detection
//
// Color depth is determined by the Go image type:
//   - *image.RGBA64, *image.NRGBA64, *image.Gray16 -> "16-bit"
//   - All other types -> "8-bit"
func Info(payload []byte, maxPixels int) (*ImageInfo, error) {
	data, mediaType, err := Payload(payload)
	if err != nil {
		return nil, err
	}
	img, format, err := Decode(data, maxPixels)
	if err != nil {
		return nil, err
	}

	hasAlpha := false
	colorDepth := "8-bit"
	switch img.(type) {
	case *image.RGBA, *image.NRGBA:
		hasAlpha = true
	case *image.RGBA64, *image.NRGBA64:
		hasAlpha = true
		colorDepth = "16-bit"
	case *image.Gray16:
		colorDepth = "16-bit"
	}

	bounds := img.Bounds()
	return &ImageInfo{
		Width:      bounds.Dx(),
		Height:     bounds.Dy(),
		Format:     format,
		MediaType:  mediaType,
		ColorDepth: colorDepth,
		HasAlpha:   hasAlpha,
		SizeBytes:  len(data),
	}, nil
}
