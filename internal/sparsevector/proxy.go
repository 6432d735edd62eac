package sparsevector

// ConstProxy stands in for a single cell that may or may not be
// materialized. Reading it never allocates a range: a void cell simply
// reads as the zero value.
type ConstProxy[T any] struct {
	cell *T
}

// Get returns the cell's value, or the zero value if the cell is void.
func (p ConstProxy[T]) Get() T {
	if p.cell == nil {
		var zero T
		return zero
	}
	return *p.cell
}

// Materialized reports whether the cell is backed by a DataRange.
func (p ConstProxy[T]) Materialized() bool { return p.cell != nil }

// Proxy is like ConstProxy, but additionally supports write-through
// assignment when it carries a materialized cell.
type Proxy[T any] struct {
	cell *T
}

// Get returns the cell's value, or the zero value if the cell is void.
func (p Proxy[T]) Get() T {
	if p.cell == nil {
		var zero T
		return zero
	}
	return *p.cell
}

// Materialized reports whether the cell is backed by a DataRange.
func (p Proxy[T]) Materialized() bool { return p.cell != nil }

// Set assigns v through the proxy. It reports ErrVoidWrite if the
// proxy has no materialized backing cell; callers who want to write
// into void cells should go through SparseVector.SetAt instead, which
// materializes a range as needed.
func (p Proxy[T]) Set(v T) error {
	if p.cell == nil {
		return ErrVoidWrite
	}
	*p.cell = v
	return nil
}
