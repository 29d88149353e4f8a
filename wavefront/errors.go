package wavefront

import "errors"

// Sentinel errors returned by field constructors and element operators.
var (
	// ErrEmptyGrid is returned when a field has no samples.
	ErrEmptyGrid = errors.New("wavefront: empty grid")

	// ErrNotSquare is returned when a sample or axis grid is not N x N.
	ErrNotSquare = errors.New("wavefront: grid is not square")

	// ErrShapeMismatch is returned when two grids that must line up point for point
	// (samples and axes, a field and a height map, a field and a precomputed spectrum)
	// have different sizes.
	ErrShapeMismatch = errors.New("wavefront: grid shape mismatch")

	// ErrUnknownOrientation is returned for a mirror orientation other than
	// horizontal or vertical.
	ErrUnknownOrientation = errors.New("wavefront: unknown mirror orientation")

	// ErrGrazingAngle is returned for a mirror whose grazing angle is not positive.
	ErrGrazingAngle = errors.New("wavefront: grazing angle must be positive")
)
