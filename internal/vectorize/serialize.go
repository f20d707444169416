package vectorize

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Document is a serialized SVG.
type Document struct {
	// Width and Height are the dimensions declared on the root element.
	Width  int
	Height int

	// Paths is the number of path elements, one per outline.
	Paths int

	// SVG is the UTF-8 markup.
	SVG string
}

// Bytes returns the markup as bytes.
func (d *Document) Bytes() []byte { return []byte(d.SVG) }

func (d *Document) String() string { return d.SVG }

// Serialize renders vp as a standalone SVG document.
//
// The root element declares the requested Width and Height (or the source
// size) and a viewBox of the source raster, so the drawing scales to fit.
// Every outline becomes one path element holding the outline and its holes as
// subpaths; the even-odd fill rule, backed by the opposite winding of holes,
// leaves holes empty. A VectorPath without contours yields an
// EmptyResultError.
func Serialize(vp *VectorPath, opts Options) (*Document, error) {
	if vp == nil || len(vp.Contours) == 0 {
		suppressed := 0
		if vp != nil {
			suppressed = vp.Suppressed
		}
		return nil, &EmptyResultError{Suppressed: suppressed}
	}

	color := opts.Color
	if strings.EqualFold(strings.TrimSpace(color), AutoColor) {
		color = DefaultOptions().Color
	}
	fill, err := ParsePaint(color)
	if err != nil {
		return nil, invalid("color: %v", err)
	}
	bg, err := ParsePaint(opts.Background)
	if err != nil {
		return nil, invalid("background: %v", err)
	}

	width, height := outputSize(vp.Width, vp.Height, opts.Width, opts.Height)

	holes := make([][]int, len(vp.Contours))
	for i, c := range vp.Contours {
		if c.Hole && c.Parent >= 0 {
			holes[c.Parent] = append(holes[c.Parent], i)
		}
	}

	style := paintAttrs(fill, opts.StrokeWidth)

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" version="1.1" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n",
		width, height, vp.Width, vp.Height)
	if !bg.None {
		fmt.Fprintf(&b, `<rect x="0" y="0" width="%d" height="%d" fill="%s"%s/>`+"\n",
			vp.Width, vp.Height, bg.Hex, opacityAttr("fill-opacity", bg.Opacity))
	}

	paths := 0
	for i, c := range vp.Contours {
		if c.Hole {
			continue
		}
		b.WriteString(`<path d="`)
		writeContour(&b, c)
		for _, h := range holes[i] {
			b.WriteByte(' ')
			writeContour(&b, vp.Contours[h])
		}
		b.WriteString(`"`)
		b.WriteString(style)
		b.WriteString("/>\n")
		paths++
	}
	b.WriteString("</svg>\n")

	return &Document{Width: width, Height: height, Paths: paths, SVG: b.String()}, nil
}

// outputSize resolves the root element size from the requested dimensions.
func outputSize(srcW, srcH, w, h int) (int, int) {
	switch {
	case w > 0 && h > 0:
		return w, h
	case w > 0:
		return w, maxInt(1, int(math.Round(float64(srcH)*float64(w)/float64(srcW))))
	case h > 0:
		return maxInt(1, int(math.Round(float64(srcW)*float64(h)/float64(srcH)))), h
	}
	return srcW, srcH
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func paintAttrs(fill Paint, strokeWidth float64) string {
	var b strings.Builder
	if fill.None {
		b.WriteString(` fill="none"`)
	} else {
		fmt.Fprintf(&b, ` fill="%s"%s`, fill.Hex, opacityAttr("fill-opacity", fill.Opacity))
	}
	b.WriteString(` fill-rule="evenodd"`)
	if strokeWidth > 0 && !fill.None {
		fmt.Fprintf(&b, ` stroke="%s" stroke-width="%s"%s`,
			fill.Hex, formatCoord(strokeWidth), opacityAttr("stroke-opacity", fill.Opacity))
	}
	return b.String()
}

func opacityAttr(name string, opacity float64) string {
	if opacity >= 1 {
		return ""
	}
	return fmt.Sprintf(` %s="%s"`, name, formatCoord(opacity))
}

// writeContour appends the path data of one closed contour. A corner followed
// by another corner omits the shared edge midpoint, which lies on the straight
// line between the two corners.
func writeContour(b *strings.Builder, c Contour) {
	b.WriteByte('M')
	writePoint(b, c.Start)

	n := len(c.Segments)
	for i, s := range c.Segments {
		switch s.Kind {
		case Line:
			if i == n-1 {
				continue
			}
			b.WriteString(" L")
			writePoint(b, s.End)
		case Corner:
			b.WriteString(" L")
			writePoint(b, s.C1)
			if c.Segments[(i+1)%n].Kind != Corner {
				b.WriteString(" L")
				writePoint(b, s.End)
			}
		case Curve:
			b.WriteString(" C")
			writePoint(b, s.C1)
			b.WriteByte(' ')
			writePoint(b, s.C2)
			b.WriteByte(' ')
			writePoint(b, s.End)
		}
	}
	b.WriteString(" Z")
}

func writePoint(b *strings.Builder, p Point) {
	b.WriteString(formatCoord(p.X))
	b.WriteByte(' ')
	b.WriteString(formatCoord(p.Y))
}

// formatCoord prints v rounded to three decimals without trailing zeros.
func formatCoord(v float64) string {
	r := math.Round(v*1000) / 1000
	if r == 0 {
		r = 0 // drop the sign of -0
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}
