package vectorize

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square(x0, y0, x1, y1 float64) Contour {
	return Contour{
		Start:  Point{x0, y0},
		Parent: -1,
		Area:   (x1 - x0) * (y1 - y0),
		Segments: []Segment{
			{Kind: Line, End: Point{x1, y0}},
			{Kind: Line, End: Point{x1, y1}},
			{Kind: Line, End: Point{x0, y1}},
			{Kind: Line, End: Point{x0, y0}},
		},
	}
}

func TestSerializeEmpty(t *testing.T) {
	_, err := Serialize(&VectorPath{Width: 10, Height: 10, Suppressed: 3}, DefaultOptions())
	var empty *EmptyResultError
	require.True(t, errors.As(err, &empty))
	assert.Equal(t, 3, empty.Suppressed)

	_, err = Serialize(nil, DefaultOptions())
	assert.True(t, errors.As(err, &empty))
}

func TestSerializeLines(t *testing.T) {
	vp := &VectorPath{Width: 10, Height: 10, Contours: []Contour{square(1, 1, 9, 9)}}

	doc, err := Serialize(vp, DefaultOptions())
	require.NoError(t, err)
	want := `<svg xmlns="http://www.w3.org/2000/svg" version="1.1" width="10" height="10" viewBox="0 0 10 10">` + "\n" +
		`<path d="M1 1 L9 1 L9 9 L1 9 Z" fill="#000000" fill-rule="evenodd"/>` + "\n" +
		"</svg>\n"
	assert.Equal(t, want, doc.SVG)
}

func TestSerializeCurveFormatting(t *testing.T) {
	vp := &VectorPath{Width: 4, Height: 4, Contours: []Contour{{
		Start:  Point{0, 0.5},
		Parent: -1,
		Segments: []Segment{
			{Kind: Curve, C1: Point{0.1234, 0}, C2: Point{1.0 / 3.0, -0.0001}, End: Point{1, 1}},
			{Kind: Corner, C1: Point{2.5, 2.5}, End: Point{2, 3}},
			{Kind: Line, End: Point{0, 0.5}},
		},
	}}}

	doc, err := Serialize(vp, DefaultOptions())
	require.NoError(t, err)
	assert.Contains(t, doc.SVG, `d="M0 0.5 C0.123 0 0.333 0 1 1 L2.5 2.5 L2 3 Z"`)
}

func TestSerializeHolesJoinParent(t *testing.T) {
	hole := square(3, 3, 6, 6)
	hole.Hole = true
	hole.Parent = 0
	hole.Depth = 1
	vp := &VectorPath{Width: 10, Height: 10, Contours: []Contour{square(1, 1, 9, 9), hole}}

	doc, err := Serialize(vp, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 1, doc.Paths)
	assert.Contains(t, doc.SVG, `d="M1 1 L9 1 L9 9 L1 9 Z M3 3 L6 3 L6 6 L3 6 Z"`)
}

func TestSerializeStyling(t *testing.T) {
	vp := &VectorPath{Width: 10, Height: 10, Contours: []Contour{square(1, 1, 9, 9)}}

	tests := []struct {
		name   string
		modify func(*Options)
		want   []string
	}{
		{
			name:   "background",
			modify: func(o *Options) { o.Background = "#FFFFFF" },
			want:   []string{`<rect x="0" y="0" width="10" height="10" fill="#ffffff"/>`},
		},
		{
			name:   "stroke",
			modify: func(o *Options) { o.Color = "#FF8800"; o.StrokeWidth = 1.5 },
			want:   []string{`fill="#ff8800" fill-rule="evenodd" stroke="#ff8800" stroke-width="1.5"`},
		},
		{
			name:   "no fill",
			modify: func(o *Options) { o.Color = "none"; o.StrokeWidth = 2 },
			want:   []string{`fill="none" fill-rule="evenodd"/>`},
		},
		{
			name:   "rgb",
			modify: func(o *Options) { o.Color = "rgb(0,128,255)" },
			want:   []string{`fill="#0080ff"`},
		},
		{
			name:   "auto falls back to black",
			modify: func(o *Options) { o.Color = AutoColor },
			want:   []string{`fill="#000000"`},
		},
		{
			name:   "scaled",
			modify: func(o *Options) { o.Width = 25 },
			want:   []string{`width="25" height="25" viewBox="0 0 10 10"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.modify(&opts)
			doc, err := Serialize(vp, opts)
			require.NoError(t, err)
			for _, w := range tt.want {
				assert.Contains(t, doc.SVG, w)
			}
		})
	}
}

func TestFormatCoord(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{-0.0001, "0"},
		{12, "12"},
		{12.5, "12.5"},
		{1.23456, "1.235"},
		{-3.1, "-3.1"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatCoord(tt.in), "formatCoord(%v)", tt.in)
	}
}

func TestOutputSize(t *testing.T) {
	w, h := outputSize(200, 100, 50, 0)
	assert.Equal(t, 50, w)
	assert.Equal(t, 25, h)

	w, h = outputSize(200, 100, 0, 10)
	assert.Equal(t, 20, w)
	assert.Equal(t, 10, h)

	w, h = outputSize(1000, 1, 10, 0)
	assert.Equal(t, 10, w)
	assert.Equal(t, 1, h, "never rounds down to zero")
}
