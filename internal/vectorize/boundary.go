package vectorize

import "image"

// Boundary edges run along pixel sides, between lattice vertices at pixel
// corners. Each edge keeps its foreground pixel on the right-hand side, so in
// image coordinates (y down) outer boundaries run clockwise and holes run
// counter-clockwise.
const (
	dirRight = iota
	dirDown
	dirLeft
	dirUp
)

var (
	stepX = [4]int{1, 0, -1, 0}
	stepY = [4]int{0, 1, 0, -1}
)

// rawLoop is a closed boundary on the pixel lattice, reduced to the vertices
// where it turns.
type rawLoop struct {
	pts []image.Point

	// area is the signed shoelace area: positive for outer boundaries,
	// negative for holes. Its magnitude is the enclosed pixel count.
	area int

	// region is the label of the foreground region the loop bounds.
	region int32

	// inside is a foreground pixel of the region, used for containment tests.
	inside image.Point
}

// hasEdge reports whether a boundary edge leaves vertex (x, y) in direction d.
func hasEdge(m *Mask, x, y, d int) bool {
	switch d {
	case dirRight:
		return m.At(x, y) && !m.At(x, y-1)
	case dirDown:
		return m.At(x-1, y) && !m.At(x, y)
	case dirLeft:
		return m.At(x-1, y-1) && !m.At(x-1, y)
	default:
		return m.At(x, y-1) && !m.At(x-1, y-1)
	}
}

// rightPixel returns the foreground pixel to the right of the edge leaving
// vertex (x, y) in direction d.
func rightPixel(x, y, d int) (int, int) {
	switch d {
	case dirRight:
		return x, y
	case dirDown:
		return x - 1, y
	case dirLeft:
		return x - 1, y - 1
	default:
		return x, y - 1
	}
}

// followBoundaries walks every boundary edge of m exactly once and returns the
// closed loops in the order their first edge is met in a raster scan of the
// lattice. budget bounds the total number of steps.
//
// At a vertex shared by two diagonal foreground pixels the walk turns left,
// which keeps diagonal neighbours inside one outline. This matches the
// 8-connectivity used by labelRegions.
func followBoundaries(m *Mask, labels []int32, budget int) ([]rawLoop, error) {
	vw := m.Width + 1
	visited := make([]uint8, vw*(m.Height+1))
	var loops []rawLoop
	steps := 0

	for y := 0; y <= m.Height; y++ {
		for x := 0; x <= m.Width; x++ {
			for d := dirRight; d <= dirUp; d++ {
				if visited[y*vw+x]&(1<<d) != 0 || !hasEdge(m, x, y, d) {
					continue
				}

				loop, n, err := followLoop(m, visited, x, y, d, budget-steps)
				if err != nil {
					return nil, err
				}
				steps += n

				px, py := rightPixel(x, y, d)
				loop.region = labels[py*m.Width+px]
				loop.inside = image.Pt(px, py)
				loops = append(loops, loop)
			}
		}
	}
	return loops, nil
}

// followLoop walks one loop starting with the edge leaving (x0, y0) in
// direction d0 and returns it with the number of edges walked.
func followLoop(m *Mask, visited []uint8, x0, y0, d0, budget int) (rawLoop, int, error) {
	vw := m.Width + 1
	var pts []image.Point

	x, y, d := x0, y0, d0
	prev := -1
	steps := 0
	for {
		if steps >= budget {
			return rawLoop{}, steps, &TraceError{Err: ErrNoConvergence}
		}
		visited[y*vw+x] |= 1 << d
		if d != prev {
			pts = append(pts, image.Pt(x, y))
		}
		prev = d
		steps++

		x, y = x+stepX[d], y+stepY[d]
		next := -1
		for _, cand := range [3]int{(d + 3) % 4, d, (d + 1) % 4} {
			if hasEdge(m, x, y, cand) {
				next = cand
				break
			}
		}
		if next < 0 {
			return rawLoop{}, steps, &TraceError{Err: ErrNoConvergence}
		}
		if x == x0 && y == y0 && next == d0 {
			break
		}
		if visited[y*vw+x]&(1<<next) != 0 {
			return rawLoop{}, steps, &TraceError{Err: ErrNoConvergence}
		}
		d = next
	}

	// The start vertex is only a corner if the loop enters it from another
	// direction.
	if prev == d0 && len(pts) > 1 {
		pts = pts[1:]
	}

	return rawLoop{pts: pts, area: shoelace(pts)}, steps, nil
}

// shoelace returns the signed area of a closed polygon in image coordinates.
func shoelace(pts []image.Point) int {
	sum := 0
	for i, p := range pts {
		q := pts[(i+1)%len(pts)]
		sum += p.X*q.Y - q.X*p.Y
	}
	return sum / 2
}

// containsPoint reports whether the point (px+0.5, py+0.5), the centre of
// pixel (px, py), lies inside the lattice polygon pts. Lattice vertices have
// integer coordinates, so the horizontal ray never passes through one.
func containsPoint(pts []image.Point, px, py int) bool {
	cx, cy := float64(px)+0.5, float64(py)+0.5
	inside := false
	for i, a := range pts {
		b := pts[(i+1)%len(pts)]
		ay, by := float64(a.Y), float64(b.Y)
		if (ay > cy) == (by > cy) {
			continue
		}
		ix := float64(a.X) + (cy-ay)*float64(b.X-a.X)/(by-ay)
		if cx < ix {
			inside = !inside
		}
	}
	return inside
}
