// Package math3d provides the vector and matrix primitives used to project
// game world coordinates onto the overlay.
//
// All types are plain values. Matrices use row-major storage and the
// row-vector convention v' = v · M, so translation lives in row 3.
package math3d

import "errors"

// Epsilon is the threshold below which a norm or determinant is treated as zero.
const Epsilon = 1e-9

var (
	// ErrDegenerateVector is returned when normalizing a zero-length vector.
	ErrDegenerateVector = errors.New("degenerate vector")
	// ErrDimensionMismatch is returned when building a vector from a slice of the wrong length.
	ErrDimensionMismatch = errors.New("dimension mismatch")
	// ErrSingularMatrix is returned when inverting a non-invertible matrix.
	ErrSingularMatrix = errors.New("singular matrix")
)
