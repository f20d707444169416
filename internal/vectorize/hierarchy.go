package vectorize

import (
	"image"
	"sort"

	"github.com/dominikbraun/graph"
)

// nest works out which loop directly encloses each loop and returns the
// parent of every loop (-1 for top-level outlines) together with an order in
// which each parent precedes its children.
//
// A hole belongs to the outline of its own region. An outline that sits inside
// a hole of another region belongs to the smallest such hole. The resulting
// forest is kept in a directed graph and ordered breadth-first, keeping
// discovery order among siblings.
func nest(loops []rawLoop) ([]int, []int, error) {
	parents := make([]int, len(loops))
	outline := make(map[int32]int)
	var holes []int
	for i, l := range loops {
		parents[i] = -1
		if l.area > 0 {
			outline[l.region] = i
		} else {
			holes = append(holes, i)
		}
	}

	boxes := make([]image.Rectangle, len(loops))
	for _, h := range holes {
		boxes[h] = bounds(loops[h].pts)
	}

	for i, l := range loops {
		if l.area < 0 {
			if o, ok := outline[l.region]; ok {
				parents[i] = o
			}
			continue
		}

		best, bestArea := -1, 0
		for _, h := range holes {
			hole := loops[h]
			if hole.region == l.region || !l.inside.In(boxes[h]) {
				continue
			}
			if -hole.area >= bestArea && best >= 0 {
				continue
			}
			if containsPoint(hole.pts, l.inside.X, l.inside.Y) {
				best, bestArea = h, -hole.area
			}
		}
		parents[i] = best
	}

	g := graph.New(graph.IntHash, graph.Directed())
	for i := range loops {
		if err := g.AddVertex(i); err != nil {
			return nil, nil, &TraceError{Err: err}
		}
	}
	for child, parent := range parents {
		if parent < 0 {
			continue
		}
		if err := g.AddEdge(parent, child); err != nil {
			return nil, nil, &TraceError{Err: err}
		}
	}

	order, err := parentsFirst(g, parents)
	if err != nil {
		return nil, nil, err
	}
	return parents, order, nil
}

// parentsFirst walks the forest breadth-first from its roots, visiting
// siblings in index order. Each vertex has at most one parent, so the walk is
// linear in the number of loops.
func parentsFirst(g graph.Graph[int, int], parents []int) ([]int, error) {
	adjacency, err := g.AdjacencyMap()
	if err != nil {
		return nil, &TraceError{Err: err}
	}

	order := make([]int, 0, len(parents))
	for i, p := range parents {
		if p < 0 {
			order = append(order, i)
		}
	}

	var children []int
	for next := 0; next < len(order); next++ {
		children = children[:0]
		for c := range adjacency[order[next]] {
			children = append(children, c)
		}
		sort.Ints(children)
		order = append(order, children...)
	}

	// Loops never reached from a root sit on a cycle.
	if len(order) != len(parents) {
		return nil, &TraceError{Err: ErrNoConvergence}
	}
	return order, nil
}

// bounds returns the smallest rectangle holding every lattice vertex of pts.
// Pixels inside the polygon satisfy Point.In on the result.
func bounds(pts []image.Point) image.Rectangle {
	r := image.Rectangle{Min: pts[0], Max: pts[0]}
	for _, p := range pts[1:] {
		if p.X < r.Min.X {
			r.Min.X = p.X
		}
		if p.Y < r.Min.Y {
			r.Min.Y = p.Y
		}
		if p.X > r.Max.X {
			r.Max.X = p.X
		}
		if p.Y > r.Max.Y {
			r.Max.Y = p.Y
		}
	}
	return r
}
