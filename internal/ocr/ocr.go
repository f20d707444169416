package ocr

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"strings"
	"unicode"

	"github.com/disintegration/imaging"
)

// DefaultLanguage is used when Engine.Language is empty.
const DefaultLanguage = "eng"

// ErrUnavailable is returned when the binary was built without OCR support.
var ErrUnavailable = errors.New("OCR support is not compiled in (build with -tags tesseract)")

// Bounds represents a rectangular bounding box in pixel coordinates.
type Bounds struct {
	X1 int `json:"x1"` // Left edge
	Y1 int `json:"y1"` // Top edge
	X2 int `json:"x2"` // Right edge
	Y2 int `json:"y2"` // Bottom edge
}

// TextRegion represents a word with its location and OCR confidence.
type TextRegion struct {
	Text string `json:"text"`

	// Confidence is the OCR confidence score (0.0 to 1.0).
	Confidence float64 `json:"confidence"`

	Bounds Bounds `json:"bounds"`
}

// Result contains the text recognized in one image.
type Result struct {
	// FullText is all recognized text with its original line breaks.
	FullText string `json:"full_text"`

	// Regions lists the recognized words. It may be empty even when FullText
	// is not.
	Regions []TextRegion `json:"regions"`
}

// Engine runs OCR with fixed settings. The zero value uses DefaultLanguage
// and Tesseract's default data directory.
type Engine struct {
	// Language is a Tesseract language code, or several joined with "+".
	Language string

	// TessdataPrefix is the directory holding the .traineddata files.
	TessdataPrefix string

	// MinConfidence drops words recognized with a lower confidence from
	// Hint. Zero keeps every word.
	MinConfidence float64
}

func (e *Engine) language() string {
	if e == nil || e.Language == "" {
		return DefaultLanguage
	}
	return e.Language
}

// Hint recognizes the text in img and returns it as a single line suitable
// for a prompt, keeping words in reading order. Low-confidence words and
// fragments without letters or digits are dropped. An image without text
// yields the empty string.
func (e *Engine) Hint(img image.Image) (string, error) {
	res, err := e.ExtractText(img)
	if err != nil {
		return "", err
	}

	minConf := 0.0
	if e != nil {
		minConf = e.MinConfidence
	}
	return hintText(res, minConf), nil
}

func hintText(res *Result, minConf float64) string {
	var words []string
	if len(res.Regions) > 0 {
		for _, r := range res.Regions {
			if r.Confidence >= minConf && meaningful(r.Text) {
				words = append(words, strings.TrimSpace(r.Text))
			}
		}
	} else {
		for _, w := range strings.Fields(res.FullText) {
			if meaningful(w) {
				words = append(words, w)
			}
		}
	}
	return strings.Join(words, " ")
}

func meaningful(word string) bool {
	for _, r := range word {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// prepare converts img to a grayscale PNG, which Tesseract reads more reliably
// than colored or translucent input.
func prepare(img image.Image) ([]byte, error) {
	b := img.Bounds()
	flat := imaging.New(b.Dx(), b.Dy(), image.White)
	flat = imaging.Overlay(flat, img, image.Pt(0, 0), 1.0)

	var buf bytes.Buffer
	if err := png.Encode(&buf, imaging.Grayscale(flat)); err != nil {
		return nil, fmt.Errorf("failed to encode image for OCR: %w", err)
	}
	return buf.Bytes(), nil
}
