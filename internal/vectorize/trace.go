package vectorize

import (
	"image"

	"github.com/anthonynsimon/bild/segment"
)

// Mask is a binarized image. Pix holds one foreground flag per pixel in
// row-major order.
type Mask struct {
	Width  int
	Height int
	Pix    []bool
}

// At reports whether (x, y) is foreground. Pixels outside the mask are
// background.
func (m *Mask) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return false
	}
	return m.Pix[y*m.Width+x]
}

// Binarize classifies every pixel of a preprocessed image as foreground or
// background. With PolarityDark, pixels below threshold are foreground; with
// PolarityLight, pixels at or above it are.
func Binarize(gray *image.Gray, threshold int, polarity Polarity) *Mask {
	bin := segment.Threshold(gray, uint8(threshold))
	bounds := bin.Bounds()
	m := &Mask{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Pix:    make([]bool, bounds.Dx()*bounds.Dy()),
	}

	want := uint8(0x00)
	if polarity == PolarityLight {
		want = 0xFF
	}
	for y := 0; y < m.Height; y++ {
		row := bin.Pix[y*bin.Stride : y*bin.Stride+m.Width]
		for x, v := range row {
			m.Pix[y*m.Width+x] = v == want
		}
	}
	return m
}

// Trace binarizes a preprocessed image and traces its foreground regions.
// See TraceMask.
func Trace(gray *image.Gray, opts Options) (*VectorPath, error) {
	return TraceMask(Binarize(gray, opts.Threshold, opts.Polarity), opts)
}

// TraceMask extracts the boundaries of the foreground regions of m.
//
// Regions are 8-connected. Regions smaller than opts.TurdSize pixels are
// dropped, and holes smaller than opts.TurdSize are filled. Retained
// boundaries are simplified and smoothed, then ordered so that every contour
// comes after the contour enclosing it.
//
// A mask with no foreground, or with nothing but foreground, yields a
// TraceError. A mask whose regions are all speckles yields an empty
// VectorPath; Serialize rejects it.
func TraceMask(m *Mask, opts Options) (*VectorPath, error) {
	fg := 0
	for _, v := range m.Pix {
		if v {
			fg++
		}
	}
	switch fg {
	case 0:
		return nil, &TraceError{Err: ErrNoForeground}
	case len(m.Pix):
		return nil, &TraceError{Err: ErrUniform}
	}

	labels, areas := labelRegions(m)
	loops, err := followBoundaries(m, labels, 4*fg)
	if err != nil {
		return nil, err
	}

	kept, suppressed := suppressSpeckles(loops, areas, opts.TurdSize)
	if opts.MaxContours > 0 && len(kept) > opts.MaxContours {
		return nil, &TraceError{Err: ErrTooManyContours}
	}

	parents, order, err := nest(kept)
	if err != nil {
		return nil, err
	}

	vp := &VectorPath{
		Width:      m.Width,
		Height:     m.Height,
		Contours:   make([]Contour, 0, len(order)),
		Suppressed: suppressed,
	}
	position := make([]int, len(kept))
	for i, idx := range order {
		position[idx] = i
	}
	for _, idx := range order {
		l := kept[idx]
		c := fitContour(simplifyClosed(toPoints(l.pts), opts.OptTolerance), opts.AlphaMax, opts.OptimizeCurves)
		c.Hole = l.area < 0
		c.Area = float64(l.area)
		c.Parent = -1
		if p := parents[idx]; p >= 0 {
			c.Parent = position[p]
			c.Depth = vp.Contours[c.Parent].Depth + 1
		}
		vp.Contours = append(vp.Contours, c)
	}
	return vp, nil
}

// labelRegions assigns an id, starting at 1, to every 8-connected foreground
// region. areas[id] is the region's pixel count; areas[0] is unused.
func labelRegions(m *Mask) ([]int32, []int) {
	labels := make([]int32, len(m.Pix))
	areas := []int{0}
	var stack []int

	for start, isFg := range m.Pix {
		if !isFg || labels[start] != 0 {
			continue
		}
		id := int32(len(areas))
		areas = append(areas, 0)
		labels[start] = id
		stack = append(stack[:0], start)

		for len(stack) > 0 {
			p := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			areas[id]++

			x, y := p%m.Width, p/m.Width
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := x+dx, y+dy
					if !m.At(nx, ny) {
						continue
					}
					q := ny*m.Width + nx
					if labels[q] == 0 {
						labels[q] = id
						stack = append(stack, q)
					}
				}
			}
		}
	}
	return labels, areas
}

// suppressSpeckles drops regions, with their holes, whose pixel area is below
// turdSize, and holes whose area is below turdSize. It returns the remaining
// loops in their original order and the number of dropped regions.
func suppressSpeckles(loops []rawLoop, areas []int, turdSize int) ([]rawLoop, int) {
	suppressed := 0
	for id := 1; id < len(areas); id++ {
		if areas[id] < turdSize {
			suppressed++
		}
	}

	kept := make([]rawLoop, 0, len(loops))
	for _, l := range loops {
		if areas[l.region] < turdSize {
			continue
		}
		if l.area < 0 && -l.area < turdSize {
			continue
		}
		kept = append(kept, l)
	}
	return kept, suppressed
}
