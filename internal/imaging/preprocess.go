package imaging

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

const (
	// DefaultContrast is the contrast factor applied by Preprocess. A factor
	// of 0.5 moves every intensity 50% further away from the midpoint.
	DefaultContrast = 0.5

	// DefaultLevels is the number of intensity levels kept by Preprocess.
	DefaultLevels = 4
)

// Preprocess prepares a decoded image for contour tracing.
//
// The steps run in a fixed order and the order matters:
//
//  1. Grayscale: transparent areas are flattened onto white, then colors are
//     collapsed to Rec. 601 luma (0.299*R + 0.587*G + 0.114*B).
//  2. Contrast: intensities are pushed away from the midpoint by
//     DefaultContrast.
//  3. Normalize: the intensity range is stretched to span 0-255.
//  4. Posterize: intensities are quantized to DefaultLevels flat levels.
//
// Contrast and normalization work on a single channel, so grayscale comes
// first. Posterization discards the gradients the other steps use, so it
// comes last. The source image is not modified.
func Preprocess(img image.Image) *image.Gray {
	gray := Grayscale(img)
	gray = Contrast(gray, DefaultContrast)
	Normalize(gray)
	Posterize(gray, DefaultLevels)
	return gray
}

// Grayscale converts img to an 8-bit single channel image with its origin at
// (0,0). Transparent and translucent pixels are composited onto white first.
func Grayscale(img image.Image) *image.Gray {
	bounds := img.Bounds()
	flat := imaging.New(bounds.Dx(), bounds.Dy(), color.White)
	flat = imaging.Overlay(flat, img, image.Pt(0, 0), 1.0)
	return toGray(imaging.Grayscale(flat))
}

// Contrast remaps intensities around the midpoint:
//
//	v' = (v - 127.5) * (1 + factor) + 127.5
//
// Results are clamped to 0-255. Factor is expected in [-1, 1].
func Contrast(gray *image.Gray, factor float64) *image.Gray {
	return toGray(imaging.AdjustContrast(gray, contrastPercentage(factor)))
}

// contrastPercentage converts a slope of 1+factor into the percentage taken by
// imaging.AdjustContrast. Above 100% the library uses a slope of 1/(2-v) with
// v = 1+percentage/100, so increases are inverted through that curve. Below it
// the slope is v itself.
func contrastPercentage(factor float64) float64 {
	if factor <= 0 {
		return factor * 100
	}
	return 100 * (1 - 1/(1+factor))
}

// Normalize linearly rescales gray in place so that its darkest pixel becomes
// 0 and its lightest becomes 255. Uniform images are left unchanged.
func Normalize(gray *image.Gray) {
	w, h := gray.Rect.Dx(), gray.Rect.Dy()
	if w == 0 || h == 0 {
		return
	}

	lo, hi := uint8(255), uint8(0)
	for y := 0; y < h; y++ {
		row := gray.Pix[y*gray.Stride : y*gray.Stride+w]
		for _, v := range row {
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
	}
	if lo == hi || (lo == 0 && hi == 255) {
		return
	}

	var lut [256]uint8
	span := int(hi) - int(lo)
	for v := int(lo); v <= int(hi); v++ {
		lut[v] = uint8(((v-int(lo))*255 + span/2) / span)
	}
	for y := 0; y < h; y++ {
		row := gray.Pix[y*gray.Stride : y*gray.Stride+w]
		for i, v := range row {
			row[i] = lut[v]
		}
	}
}

// Posterize quantizes gray in place to the given number of evenly spaced
// levels. With 4 levels, 0-63 maps to 0, 64-127 to 85, 128-191 to 170 and
// 192-255 to 255. Levels below 2 are treated as 2.
func Posterize(gray *image.Gray, levels int) {
	if levels < 2 {
		levels = 2
	}
	if levels > 256 {
		levels = 256
	}

	var lut [256]uint8
	for v := 0; v < 256; v++ {
		bucket := v * levels / 256
		lut[v] = uint8(bucket * 255 / (levels - 1))
	}

	w, h := gray.Rect.Dx(), gray.Rect.Dy()
	for y := 0; y < h; y++ {
		row := gray.Pix[y*gray.Stride : y*gray.Stride+w]
		for i, v := range row {
			row[i] = lut[v]
		}
	}
}

// toGray copies the red channel of an NRGBA image whose channels are already
// equal into a Gray image.
func toGray(src *image.NRGBA) *image.Gray {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		si := y * src.Stride
		di := y * dst.Stride
		for x := 0; x < w; x++ {
			dst.Pix[di+x] = src.Pix[si+x*4]
		}
	}
	return dst
}
