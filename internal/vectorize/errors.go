package vectorize

import (
	"errors"
	"fmt"
)

// ErrInvalidOptions is returned by Vectorize and Options.Validate when the
// trace options cannot be used.
var ErrInvalidOptions = errors.New("invalid trace options")

// Reasons carried by TraceError.
var (
	// ErrNoForeground means binarization selected no pixel at all.
	ErrNoForeground = errors.New("no traceable regions found")

	// ErrUniform means binarization selected every pixel, so there is no
	// boundary to follow.
	ErrUniform = errors.New("image has no contrast to trace")

	// ErrTooManyContours means more contours survived noise suppression than
	// Options.MaxContours allows.
	ErrTooManyContours = errors.New("contour limit exceeded")

	// ErrNoConvergence means boundary following did not close a loop within
	// the number of boundary edges in the image.
	ErrNoConvergence = errors.New("boundary following did not converge")
)

// DecodeError reports a payload that is malformed, truncated, too large or of
// an unsupported encoding.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode image: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// TraceError reports an image that has nothing to trace or whose tracing
// exceeded its bounds. Err is one of the reasons declared in this package.
type TraceError struct {
	Err error
}

func (e *TraceError) Error() string {
	return fmt.Sprintf("trace image: %v", e.Err)
}

func (e *TraceError) Unwrap() error { return e.Err }

// EmptyResultError reports that tracing found regions but every one of them
// was suppressed as noise.
type EmptyResultError struct {
	// Suppressed is the number of regions discarded as speckles.
	Suppressed int
}

func (e *EmptyResultError) Error() string {
	return fmt.Sprintf("no contours left after suppressing %d speckle regions", e.Suppressed)
}
