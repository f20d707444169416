//go:build !tesseract

package ocr

import "image"

// Available reports whether OCR support is compiled in.
func Available() bool { return false }

// ExtractText always fails with ErrUnavailable in builds without the
// tesseract tag.
func (e *Engine) ExtractText(img image.Image) (*Result, error) {
	return nil, ErrUnavailable
}

// Version returns the empty string in builds without OCR support.
func Version() string { return "" }
