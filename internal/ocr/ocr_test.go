package ocr

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strings"
	"testing"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// createImageWithText renders text with basicfont and scales it up so that
// Tesseract can read it.
func createImageWithText(text string, scale int) *image.RGBA {
	width := len(text)*7 + 40
	height := 40

	small := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(small, small.Bounds(), image.White, image.Point{}, draw.Src)
	d := &font.Drawer{
		Dst:  small,
		Src:  image.NewUniform(color.Black),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(20), Y: fixed.I(25)},
	}
	d.DrawString(text)

	img := image.NewRGBA(image.Rect(0, 0, width*scale, height*scale))
	for y := 0; y < height*scale; y++ {
		for x := 0; x < width*scale; x++ {
			img.Set(x, y, small.At(x/scale, y/scale))
		}
	}
	return img
}

func TestHintText(t *testing.T) {
	tests := []struct {
		name    string
		res     *Result
		minConf float64
		want    string
	}{
		{
			name: "regions in order",
			res: &Result{Regions: []TextRegion{
				{Text: "ACME", Confidence: 0.95},
				{Text: "Coffee", Confidence: 0.9},
			}},
			want: "ACME Coffee",
		},
		{
			name: "low confidence dropped",
			res: &Result{Regions: []TextRegion{
				{Text: "ACME", Confidence: 0.95},
				{Text: "x7q", Confidence: 0.2},
			}},
			minConf: 0.5,
			want:    "ACME",
		},
		{
			name: "punctuation dropped",
			res: &Result{Regions: []TextRegion{
				{Text: "|", Confidence: 0.9},
				{Text: "500ml", Confidence: 0.9},
				{Text: "--", Confidence: 0.9},
			}},
			want: "500ml",
		},
		{
			name: "full text fallback",
			res:  &Result{FullText: "Organic\nGreen  Tea\n~\n"},
			want: "Organic Green Tea",
		},
		{
			name: "nothing",
			res:  &Result{},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := hintText(tt.res, tt.minConf); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPrepare(t *testing.T) {
	img := image.NewNRGBA(image.Rect(5, 5, 25, 15))
	img.Set(10, 10, color.NRGBA{255, 0, 0, 255})

	data, err := prepare(img)
	if err != nil {
		t.Fatalf("prepare failed: %v", err)
	}
	out, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("prepare produced invalid PNG: %v", err)
	}
	if out.Bounds().Dx() != 20 || out.Bounds().Dy() != 10 {
		t.Errorf("dimensions: got %dx%d, want 20x10", out.Bounds().Dx(), out.Bounds().Dy())
	}

	// Transparent pixels become white.
	r, g, b, _ := out.At(0, 0).RGBA()
	if r>>8 != 255 || g>>8 != 255 || b>>8 != 255 {
		t.Errorf("transparent pixel: got (%d,%d,%d), want white", r>>8, g>>8, b>>8)
	}
}

func TestEngineLanguage(t *testing.T) {
	var nilEngine *Engine
	if got := nilEngine.language(); got != DefaultLanguage {
		t.Errorf("nil engine language: got %q", got)
	}
	if got := (&Engine{Language: "deu+eng"}).language(); got != "deu+eng" {
		t.Errorf("language: got %q", got)
	}
}

func TestExtractText(t *testing.T) {
	engine := &Engine{}
	img := createImageWithText("HELLO WORLD", 4)

	res, err := engine.ExtractText(img)
	if !Available() {
		if !errors.Is(err, ErrUnavailable) {
			t.Fatalf("expected ErrUnavailable without OCR support, got %v", err)
		}
		if Version() != "" {
			t.Error("Version should be empty without OCR support")
		}
		t.Skip("built without the tesseract tag")
	}
	if err != nil {
		t.Skipf("Tesseract is not usable here: %v", err)
	}

	if !strings.Contains(strings.ToUpper(res.FullText), "HELLO") {
		t.Errorf("expected HELLO in %q", res.FullText)
	}

	hint, err := engine.Hint(img)
	if err != nil {
		t.Fatalf("Hint failed: %v", err)
	}
	if !strings.Contains(strings.ToUpper(hint), "WORLD") {
		t.Errorf("expected WORLD in hint %q", hint)
	}
}
