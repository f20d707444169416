package vectorize

import (
	"image"
	"math"
)

func toPoints(pts []image.Point) []Point {
	out := make([]Point, len(pts))
	for i, p := range pts {
		out[i] = Point{X: float64(p.X), Y: float64(p.Y)}
	}
	return out
}

// simplifyClosed reduces a closed polygon with the Ramer-Douglas-Peucker
// algorithm so that no dropped vertex lies farther than eps from the kept
// outline. The loop is split at its first vertex and the vertex farthest from
// it. Results with fewer than three vertices fall back to pts.
func simplifyClosed(pts []Point, eps float64) []Point {
	n := len(pts)
	if n <= 3 || eps <= 0 {
		return pts
	}

	far, best := 0, -1.0
	for i := 1; i < n; i++ {
		d := pts[i].sub(pts[0])
		if dd := d.dot(d); dd > best {
			far, best = i, dd
		}
	}

	keep := make([]bool, n)
	keep[0], keep[far] = true, true

	type span struct{ i, j int }
	stack := []span{{0, far}, {far, n}}
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if s.j-s.i < 2 {
			continue
		}

		a, b := pts[s.i], pts[s.j%n]
		k, dmax := -1, eps
		for t := s.i + 1; t < s.j; t++ {
			if d := segmentDistance(pts[t], a, b); d > dmax {
				k, dmax = t, d
			}
		}
		if k >= 0 {
			keep[k] = true
			stack = append(stack, span{s.i, k}, span{k, s.j})
		}
	}

	out := make([]Point, 0, n)
	for i, p := range pts {
		if keep[i] {
			out = append(out, p)
		}
	}
	if len(out) < 3 {
		return pts
	}
	return out
}

// segmentDistance returns the distance from p to the segment ab.
func segmentDistance(p, a, b Point) float64 {
	ab := b.sub(a)
	ap := p.sub(a)
	l2 := ab.dot(ab)
	if l2 == 0 {
		return math.Hypot(ap.X, ap.Y)
	}
	t := ap.dot(ab) / l2
	switch {
	case t <= 0:
		return math.Hypot(ap.X, ap.Y)
	case t >= 1:
		bp := p.sub(b)
		return math.Hypot(bp.X, bp.Y)
	}
	return math.Abs(ab.cross(ap)) / math.Sqrt(l2)
}

// fitContour turns a simplified polygon into contour segments.
//
// With curves disabled the polygon is emitted as straight lines. Otherwise
// every vertex v becomes one segment running from the midpoint of the edge
// before v to the midpoint of the edge after it. Vertices whose smoothness
// estimate reaches alphaMax stay sharp corners; the others become cubic
// Béziers whose control points sit between the midpoints and v.
func fitContour(v []Point, alphaMax float64, curves bool) Contour {
	n := len(v)
	if !curves {
		c := Contour{Start: v[0], Segments: make([]Segment, 0, n)}
		for j := 1; j <= n; j++ {
			c.Segments = append(c.Segments, Segment{Kind: Line, End: v[j%n]})
		}
		return c
	}

	c := Contour{Start: v[n-1].mid(v[0]), Segments: make([]Segment, 0, n)}
	for j := 0; j < n; j++ {
		prev, cur, next := v[(j+n-1)%n], v[j], v[(j+1)%n]
		p0, p2 := prev.mid(cur), cur.mid(next)

		alpha := smoothness(p0, cur, p2)
		if alpha >= alphaMax {
			c.Segments = append(c.Segments, Segment{Kind: Corner, C1: cur, End: p2})
			continue
		}
		alpha = math.Min(math.Max(alpha, 0.55), 1)
		c.Segments = append(c.Segments, Segment{
			Kind: Curve,
			C1:   p0.lerp(cur, alpha),
			C2:   p2.lerp(cur, alpha),
			End:  p2,
		})
	}
	return c
}

// smoothness estimates how sharply the outline turns at v, given the
// midpoints p0 and p2 of its adjacent edges. It is 0 for vertices within one
// pixel of the chord p0-p2 and approaches 4/3 as the vertex moves away from it.
func smoothness(p0, v, p2 Point) float64 {
	chord := p2.sub(p0)
	l := math.Hypot(chord.X, chord.Y)
	if l == 0 {
		return 4.0 / 3.0
	}
	d := math.Abs(chord.cross(v.sub(p0))) / l
	if d <= 1 {
		return 0
	}
	return (1 - 1/d) / 0.75
}
