package sparsevector

import "errors"

var (
	// ErrOutOfBounds is returned for an index at or beyond the nominal
	// size, or for any lookup against a vector with no materialized
	// ranges at all.
	ErrOutOfBounds = errors.New("sparsevector: index out of bounds")

	// ErrNoSuchRange is returned when a valid in-bounds index falls in
	// a void region, so no DataRange covers it.
	ErrNoSuchRange = errors.New("sparsevector: index is void")

	// ErrAlienIterator is returned when an operation is given an
	// Iterator that was not produced by the SparseVector it is called
	// on.
	ErrAlienIterator = errors.New("sparsevector: iterator belongs to a different vector")

	// ErrVoidWrite is returned by Proxy.Set when writing through a
	// proxy that has no materialized backing cell.
	ErrVoidWrite = errors.New("sparsevector: write through a void reference")
)
