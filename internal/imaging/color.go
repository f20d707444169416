package imaging

import (
	"image"

	"github.com/lucasb-eyer/go-colorful"
)

// MeanColor returns the average color of the pixels of img selected by
// include, as a "#rrggbb" hex string.
//
// Parameters:
//   - img: The source image to sample from.
//   - include: Reports whether the pixel at (x, y), relative to the image's
//     top-left corner, takes part in the average. A nil include selects every
//     pixel.
//
// Colors are averaged in linear RGB so that mixing a saturated color with its
// anti-aliased edges does not drift darker. Fully transparent pixels are
// skipped. The second return value is false when no pixel was selected.
func MeanColor(img image.Image, include func(x, y int) bool) (string, bool) {
	bounds := img.Bounds()

	var sumR, sumG, sumB float64
	n := 0
	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			if include != nil && !include(x, y) {
				continue
			}
			c, ok := colorful.MakeColor(img.At(x+bounds.Min.X, y+bounds.Min.Y))
			if !ok {
				continue
			}
			r, g, b := c.LinearRgb()
			sumR += r
			sumG += g
			sumB += b
			n++
		}
	}
	if n == 0 {
		return "", false
	}

	mean := colorful.LinearRgb(sumR/float64(n), sumG/float64(n), sumB/float64(n))
	return mean.Clamped().Hex(), true
}

// HSLColor represents a color in HSL (Hue, Saturation, Lightness) color space.
type HSLColor struct {
	H int `json:"h"` // Hue: 0-360 degrees (0=red, 120=green, 240=blue)
	S int `json:"s"` // Saturation: 0-100 percent (0=gray, 100=vivid)
	L int `json:"l"` // Lightness: 0-100 percent (0=black, 50=normal, 100=white)
}

// ColorSummary describes a color for tool output.
type ColorSummary struct {
	Hex string   `json:"hex"` // Hex format "#rrggbb"
	HSL HSLColor `json:"hsl"` // HSL representation
}

// Summarize parses a "#rrggbb" hex color and reports it in hex and HSL form.
func Summarize(hex string) (*ColorSummary, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return nil, err
	}
	h, s, l := c.Hsl()
	return &ColorSummary{
		Hex: c.Hex(),
		HSL: HSLColor{H: int(h), S: int(s * 100), L: int(l * 100)},
	}, nil
}
