package vectorize

import (
	"fmt"
	"strings"

	"gopkg.in/go-playground/colors.v1"
)

// Polarity selects which side of the threshold is traced.
type Polarity string

const (
	// PolarityDark traces pixels darker than the threshold on a light
	// background.
	PolarityDark Polarity = "dark"

	// PolarityLight traces pixels at or above the threshold on a dark
	// background.
	PolarityLight Polarity = "light"
)

// AutoColor asks Vectorize to fill shapes with the mean source color found
// under the traced foreground.
const AutoColor = "auto"

// maxDimension bounds explicit output sizes.
const maxDimension = 16384

// Options configures one Vectorize call. Start from DefaultOptions and
// override fields; the zero value of several fields is meaningful.
type Options struct {
	// TurdSize is the minimum pixel area of a region, and of a hole, that
	// survives noise suppression.
	TurdSize int `json:"turd_size" yaml:"turd_size"`

	// Polarity chooses dark-on-light or light-on-dark tracing.
	Polarity Polarity `json:"polarity" yaml:"polarity"`

	// Threshold is the binarization level, 1-255.
	Threshold int `json:"threshold" yaml:"threshold"`

	// OptTolerance is the largest distance, in pixels, a simplified boundary
	// may deviate from the traced one.
	OptTolerance float64 `json:"opt_tolerance" yaml:"opt_tolerance"`

	// AlphaMax is the corner threshold. Vertices whose smoothness estimate
	// reaches it stay sharp; the others become curves.
	AlphaMax float64 `json:"alpha_max" yaml:"alpha_max"`

	// OptimizeCurves enables Bézier fitting. When false the simplified
	// polygons are emitted as straight segments.
	OptimizeCurves bool `json:"optimize_curves" yaml:"optimize_curves"`

	// Color fills the traced shapes. Accepts #rgb, #rrggbb, rgb(), rgba() or
	// AutoColor.
	Color string `json:"color" yaml:"color"`

	// Background paints the canvas behind the shapes; "transparent" or empty
	// leaves it unpainted.
	Background string `json:"background" yaml:"background"`

	// StrokeWidth outlines the shapes with Color when positive.
	StrokeWidth float64 `json:"stroke_width" yaml:"stroke_width"`

	// Width and Height set the output document size. Zero keeps the source
	// size; a single value scales the other proportionally.
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`

	// MaxContours bounds the number of retained contours. Zero disables the
	// bound.
	MaxContours int `json:"max_contours" yaml:"max_contours"`

	// MaxPixels bounds the decoded image area. Zero selects the decoder
	// default.
	MaxPixels int `json:"max_pixels" yaml:"max_pixels"`
}

// DefaultOptions returns the settings used for logo tracing.
func DefaultOptions() Options {
	return Options{
		TurdSize:       100,
		Polarity:       PolarityDark,
		Threshold:      128,
		OptTolerance:   1.0,
		AlphaMax:       1.0,
		OptimizeCurves: true,
		Color:          "#000000",
		Background:     "transparent",
		MaxContours:    20000,
	}
}

// Validate reports whether o can be used. Errors wrap ErrInvalidOptions.
func (o Options) Validate() error {
	switch {
	case o.TurdSize < 0:
		return invalid("turd_size must be >= 0, got %d", o.TurdSize)
	case o.Polarity != PolarityDark && o.Polarity != PolarityLight:
		return invalid("polarity must be %q or %q, got %q", PolarityDark, PolarityLight, o.Polarity)
	case o.Threshold < 1 || o.Threshold > 255:
		return invalid("threshold must be in 1-255, got %d", o.Threshold)
	case o.OptTolerance < 0:
		return invalid("opt_tolerance must be >= 0, got %g", o.OptTolerance)
	case o.AlphaMax < 0:
		return invalid("alpha_max must be >= 0, got %g", o.AlphaMax)
	case o.StrokeWidth < 0:
		return invalid("stroke_width must be >= 0, got %g", o.StrokeWidth)
	case o.Width < 0 || o.Width > maxDimension:
		return invalid("width must be in 0-%d, got %d", maxDimension, o.Width)
	case o.Height < 0 || o.Height > maxDimension:
		return invalid("height must be in 0-%d, got %d", maxDimension, o.Height)
	case o.MaxContours < 0:
		return invalid("max_contours must be >= 0, got %d", o.MaxContours)
	case o.MaxPixels < 0:
		return invalid("max_pixels must be >= 0, got %d", o.MaxPixels)
	}

	if !strings.EqualFold(strings.TrimSpace(o.Color), AutoColor) {
		if _, err := ParsePaint(o.Color); err != nil {
			return invalid("color: %v", err)
		}
	}
	if _, err := ParsePaint(o.Background); err != nil {
		return invalid("background: %v", err)
	}
	return nil
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidOptions, fmt.Sprintf(format, args...))
}

// Paint is a parsed SVG paint value.
type Paint struct {
	// Hex is the color as "#rrggbb". Empty when None is set.
	Hex string

	// Opacity is the alpha of rgba() colors, 1 otherwise.
	Opacity float64

	// None is set for empty, "none" and "transparent".
	None bool
}

// ParsePaint parses a CSS style color. Empty, "none" and "transparent" yield a
// Paint with None set.
func ParsePaint(s string) (Paint, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "", "none", "transparent":
		return Paint{None: true}, nil
	}

	c, err := colors.Parse(s)
	if err != nil {
		return Paint{}, fmt.Errorf("unsupported color %q: %w", s, err)
	}
	rgba := c.ToRGBA()
	return Paint{
		Hex:     fmt.Sprintf("#%02x%02x%02x", rgba.R, rgba.G, rgba.B),
		Opacity: rgba.A,
	}, nil
}
