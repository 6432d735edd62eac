// Package sparsevector implements a sparse, dense-chunked sequence
// container: a nominal run of N logical cells, of which only a subset
// are materialized in memory. Unmaterialized cells read as the zero
// value of the element type and do not count towards storage.
//
// The container keeps its materialized cells in an ordered list of
// non-overlapping, non-touching DataRanges, coalescing neighbours
// whenever a write makes them adjacent. It is not safe for concurrent
// use; callers needing that must provide their own synchronization.
package sparsevector
