package vectorize

// Point is a position in source pixel coordinates. (0,0) is the top-left
// corner of the top-left pixel.
type Point struct {
	X float64
	Y float64
}

func (p Point) add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }
func (p Point) sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }
func (p Point) scale(k float64) Point { return Point{p.X * k, p.Y * k} }
func (p Point) mid(q Point) Point { return Point{(p.X + q.X) / 2, (p.Y + q.Y) / 2} }
func (p Point) cross(q Point) float64 { return p.X*q.Y - p.Y*q.X }
func (p Point) dot(q Point) float64 { return p.X*q.X + p.Y*q.Y }
func (p Point) lerp(q Point, t float64) Point { return p.add(q.sub(p).scale(t)) }

// SegmentKind tells how a Segment reaches its end point.
type SegmentKind int

const (
	// Line is a straight segment to End.
	Line SegmentKind = iota

	// Corner is a straight segment to the corner vertex C1, then to End.
	Corner

	// Curve is a cubic Bézier with control points C1 and C2.
	Curve
)

// Segment is one piece of a contour, starting where the previous one ended.
type Segment struct {
	Kind SegmentKind
	C1   Point
	C2   Point
	End  Point
}

// Contour is a closed outline. Its last segment ends at Start.
type Contour struct {
	Start    Point
	Segments []Segment

	// Hole is set for boundaries that run counter-clockwise around
	// background enclosed by a shape.
	Hole bool

	// Area is the signed area of the traced pixel boundary before
	// simplification: positive for outlines, negative for holes.
	Area float64

	// Parent is the index of the enclosing contour, or -1.
	Parent int

	// Depth is 0 for top-level outlines and grows by one per nesting level.
	Depth int
}

// VectorPath is the result of tracing one image.
type VectorPath struct {
	// Width and Height are the traced raster's dimensions.
	Width  int
	Height int

	// Contours lists every retained boundary; parents come before children.
	Contours []Contour

	// Suppressed counts the regions discarded as speckles.
	Suppressed int
}
