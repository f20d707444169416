//go:build tesseract

package ocr

import (
	"fmt"
	"image"

	"github.com/otiai10/gosseract/v2"
)

// Available reports whether OCR support is compiled in.
func Available() bool { return true }

// ExtractText performs OCR on img.
//
// Word-level results use Tesseract's RIL_WORD iterator level. If bounding box
// extraction fails, the full text is still returned with an empty Regions
// slice.
func (e *Engine) ExtractText(img image.Image) (*Result, error) {
	data, err := prepare(img)
	if err != nil {
		return nil, err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if e != nil && e.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(e.TessdataPrefix); err != nil {
			return nil, fmt.Errorf("failed to set tessdata path: %w", err)
		}
	}
	if err := client.SetLanguage(e.language()); err != nil {
		return nil, fmt.Errorf("failed to set language: %w", err)
	}
	if err := client.SetImageFromBytes(data); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	regions := make([]TextRegion, 0, len(boxes))
	if err == nil {
		for _, box := range boxes {
			if box.Word == "" {
				continue
			}
			regions = append(regions, TextRegion{
				Text:       box.Word,
				Confidence: box.Confidence / 100.0,
				Bounds: Bounds{
					X1: box.Box.Min.X,
					Y1: box.Box.Min.Y,
					X2: box.Box.Max.X,
					Y2: box.Box.Max.Y,
				},
			})
		}
	}

	return &Result{FullText: text, Regions: regions}, nil
}

// Version returns the linked Tesseract version.
func Version() string {
	client := gosseract.NewClient()
	defer client.Close()
	return client.Version()
}
