package vectorize

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/srwiley/rasterx"
	"golang.org/x/image/math/fixed"
)

// Render rasterizes vp into a width x height image using the even-odd fill
// rule, the same rule Serialize declares on its paths. The drawing is scaled
// from the traced raster size to the requested size. A nil background leaves
// the canvas transparent.
func Render(vp *VectorPath, width, height int, fill, background color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	if background != nil {
		draw.Draw(img, img.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)
	}
	if vp == nil || len(vp.Contours) == 0 || vp.Width == 0 || vp.Height == 0 {
		return img
	}

	sx := float64(width) / float64(vp.Width)
	sy := float64(height) / float64(vp.Height)
	at := func(p Point) fixed.Point26_6 {
		return fixed.Point26_6{
			X: fixed.Int26_6(p.X * sx * 64),
			Y: fixed.Int26_6(p.Y * sy * 64),
		}
	}

	scanner := rasterx.NewScannerGV(width, height, img, img.Bounds())
	filler := rasterx.NewFiller(width, height, scanner)
	filler.SetWinding(false)
	filler.SetColor(fill)

	for _, c := range vp.Contours {
		filler.Start(at(c.Start))
		for _, s := range c.Segments {
			switch s.Kind {
			case Line:
				filler.Line(at(s.End))
			case Corner:
				filler.Line(at(s.C1))
				filler.Line(at(s.End))
			case Curve:
				filler.CubeBezier(at(s.C1), at(s.C2), at(s.End))
			}
		}
		filler.Stop(true)
	}
	filler.Draw()
	return img
}
