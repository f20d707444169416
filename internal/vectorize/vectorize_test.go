package vectorize

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// canvas returns a white w x h image.
func canvas(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	return img
}

func fillRect(img draw.Image, r image.Rectangle, c color.Color) {
	draw.Draw(img, r, image.NewUniform(c), image.Point{}, draw.Src)
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// squarePNG is a 60x60 white image with a black 20x20 square at (5,5).
func squarePNG(t *testing.T) []byte {
	t.Helper()
	img := canvas(60, 60)
	fillRect(img, image.Rect(5, 5, 25, 25), color.Black)
	return encodePNG(t, img)
}

func TestVectorizeSquare(t *testing.T) {
	doc, err := Vectorize(squarePNG(t), DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, 60, doc.Width)
	assert.Equal(t, 60, doc.Height)
	assert.Equal(t, 1, doc.Paths)
	assert.True(t, strings.HasPrefix(doc.SVG,
		`<svg xmlns="http://www.w3.org/2000/svg" version="1.1" width="60" height="60" viewBox="0 0 60 60">`))
	assert.Contains(t, doc.SVG,
		`<path d="M5 15 L5 5 L25 5 L25 25 L5 25 Z" fill="#000000" fill-rule="evenodd"/>`)
	assert.NotContains(t, doc.SVG, "<rect")
	assert.True(t, strings.HasSuffix(doc.SVG, "</svg>\n"))
	assert.Equal(t, doc.SVG, doc.String())
	assert.Equal(t, []byte(doc.SVG), doc.Bytes())
}

func TestVectorizeDeterministic(t *testing.T) {
	img := canvas(80, 80)
	fillRect(img, image.Rect(10, 10, 50, 30), color.RGBA{R: 30, G: 60, B: 200, A: 255})
	fillRect(img, image.Rect(20, 40, 70, 70), color.RGBA{R: 120, G: 20, B: 20, A: 255})
	for y := 45; y < 65; y++ {
		for x := 25 + (y-45)/2; x < 45; x++ {
			img.Set(x, y, color.White)
		}
	}
	payload := encodePNG(t, img)

	opts := DefaultOptions()
	opts.Color = AutoColor
	first, err := Vectorize(payload, opts)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := Vectorize(payload, opts)
		require.NoError(t, err)
		assert.Equal(t, first.SVG, again.SVG, "run %d", i)
	}
}

func TestVectorizeAcceptsDataURL(t *testing.T) {
	raw := squarePNG(t)
	want, err := Vectorize(raw, DefaultOptions())
	require.NoError(t, err)

	dataURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString(raw)
	got, err := Vectorize([]byte(dataURL), DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, want.SVG, got.SVG)
}

func TestVectorizeNoiseSuppression(t *testing.T) {
	img := canvas(100, 100)
	fillRect(img, image.Rect(30, 30, 70, 70), color.Black)
	for _, p := range []image.Point{{5, 5}, {90, 90}, {5, 90}, {92, 8}} {
		img.Set(p.X, p.Y, color.Black)
	}

	opts := DefaultOptions()
	opts.TurdSize = 4
	res, err := Convert(encodePNG(t, img), opts)
	require.NoError(t, err)

	require.Len(t, res.Path.Contours, 1)
	assert.Equal(t, 4, res.Path.Suppressed)
	assert.Equal(t, float64(40*40), res.Path.Contours[0].Area)
	assert.Equal(t, 1, res.Document.Paths)
}

func TestVectorizeRingHole(t *testing.T) {
	img := canvas(40, 40)
	fillRect(img, image.Rect(5, 5, 35, 35), color.Black)
	fillRect(img, image.Rect(13, 13, 27, 27), color.White)

	res, err := Convert(encodePNG(t, img), DefaultOptions())
	require.NoError(t, err)

	contours := res.Path.Contours
	require.Len(t, contours, 2)
	assert.False(t, contours[0].Hole)
	assert.Equal(t, -1, contours[0].Parent)
	assert.Equal(t, 0, contours[0].Depth)
	assert.True(t, contours[1].Hole)
	assert.Equal(t, 0, contours[1].Parent)
	assert.Equal(t, 1, contours[1].Depth)
	assert.Equal(t, float64(30*30), contours[0].Area)
	assert.Equal(t, -float64(14*14), contours[1].Area)

	// Outline and hole share one even-odd path.
	assert.Equal(t, 1, res.Document.Paths)
	assert.Equal(t, 1, strings.Count(res.Document.SVG, "<path"))
	assert.Equal(t, 2, strings.Count(res.Document.SVG, "M"))
	assert.Contains(t, res.Document.SVG, `fill-rule="evenodd"`)

	preview := Render(res.Path, 40, 40, color.Black, color.White)
	assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, preview.RGBAAt(20, 20), "hole centre")
	assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, preview.RGBAAt(1, 1), "background")
	assert.Equal(t, color.RGBA{A: 255}, preview.RGBAAt(8, 8), "ring")
}

func TestVectorizeBlankImage(t *testing.T) {
	tests := []struct {
		name   string
		fill   color.Color
		reason error
	}{
		{"white", color.White, ErrNoForeground},
		{"black", color.Black, ErrUniform},
		{"mid gray", color.Gray{Y: 128}, ErrNoForeground},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := canvas(32, 32)
			fillRect(img, img.Bounds(), tt.fill)

			doc, err := Vectorize(encodePNG(t, img), DefaultOptions())
			assert.Nil(t, doc)

			var traceErr *TraceError
			require.True(t, errors.As(err, &traceErr), "got %T: %v", err, err)
			assert.ErrorIs(t, err, tt.reason)
		})
	}
}

func TestVectorizeOnlySpeckles(t *testing.T) {
	img := canvas(50, 50)
	fillRect(img, image.Rect(4, 4, 6, 6), color.Black)
	fillRect(img, image.Rect(30, 30, 33, 33), color.Black)

	doc, err := Vectorize(encodePNG(t, img), DefaultOptions())
	assert.Nil(t, doc)

	var empty *EmptyResultError
	require.True(t, errors.As(err, &empty), "got %T: %v", err, err)
	assert.Equal(t, 2, empty.Suppressed)
}

func TestVectorizeDecodeRejection(t *testing.T) {
	valid := squarePNG(t)

	tests := []struct {
		name    string
		payload []byte
	}{
		{"empty", nil},
		{"whitespace", []byte("  \n")},
		{"text", []byte("this is not an image")},
		{"truncated png", valid[:len(valid)/2]},
		{"png header only", valid[:16]},
		{"non-image data url", []byte("data:text/plain;base64,aGVsbG8=")},
		{"bad base64 in data url", []byte("data:image/png;base64,!!!")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Vectorize(tt.payload, DefaultOptions())
			assert.Nil(t, doc)

			var decodeErr *DecodeError
			assert.True(t, errors.As(err, &decodeErr), "got %T: %v", err, err)
		})
	}
}

func TestVectorizeTooManyPixels(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxPixels = 100

	_, err := Vectorize(squarePNG(t), opts)
	var decodeErr *DecodeError
	assert.True(t, errors.As(err, &decodeErr))
}

func TestVectorizeExplicitSize(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		wantW, wantH  int
	}{
		{"both", 300, 200, 300, 200},
		{"width only", 120, 0, 120, 120},
		{"height only", 0, 30, 30, 30},
		{"source", 0, 0, 60, 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			opts.Width, opts.Height = tt.width, tt.height

			doc, err := Vectorize(squarePNG(t), opts)
			require.NoError(t, err)
			assert.Equal(t, tt.wantW, doc.Width)
			assert.Equal(t, tt.wantH, doc.Height)
			assert.Contains(t, doc.SVG, `viewBox="0 0 60 60"`)
			assert.Contains(t, doc.SVG, ` width="`+strconv.Itoa(tt.wantW)+`" height="`+strconv.Itoa(tt.wantH)+`"`)
		})
	}
}

func TestVectorizeAutoColor(t *testing.T) {
	img := canvas(40, 40)
	fillRect(img, image.Rect(10, 10, 30, 30), color.RGBA{R: 255, A: 255})

	opts := DefaultOptions()
	opts.Color = AutoColor
	res, err := Convert(encodePNG(t, img), opts)
	require.NoError(t, err)
	assert.Equal(t, "#ff0000", res.Color)
	assert.Contains(t, res.Document.SVG, `fill="#ff0000"`)
	assert.Equal(t, "png", res.Format)
}

func TestVectorizeLightPolarity(t *testing.T) {
	img := canvas(40, 40)
	fillRect(img, img.Bounds(), color.Black)
	fillRect(img, image.Rect(10, 10, 30, 30), color.White)

	opts := DefaultOptions()
	opts.Polarity = PolarityLight
	opts.Color = "#ffffff"
	opts.Background = "#000000"
	doc, err := Vectorize(encodePNG(t, img), opts)
	require.NoError(t, err)
	assert.Contains(t, doc.SVG, `<rect x="0" y="0" width="40" height="40" fill="#000000"/>`)
	assert.Contains(t, doc.SVG, `d="M10 20 L10 10 L30 10 L30 30 L10 30 Z" fill="#ffffff"`)
}

func TestVectorizeInvalidOptions(t *testing.T) {
	opts := DefaultOptions()
	opts.Threshold = 0

	// Options are checked before the payload.
	_, err := Vectorize([]byte("garbage"), opts)
	assert.ErrorIs(t, err, ErrInvalidOptions)
	var decodeErr *DecodeError
	assert.False(t, errors.As(err, &decodeErr))
}
