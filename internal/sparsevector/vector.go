package sparsevector

import (
	"slices"
	"sort"
)

// SparseVector is a sequence of N logical cells, of which only the
// materialized subset actually occupies memory. Reads of the rest
// return the zero value of T. Ranges are kept ordered, non-overlapping,
// and non-touching (a write that would make two ranges touch merges
// them).
//
// The zero value is a valid, empty SparseVector.
type SparseVector[T any] struct {
	n      int
	ranges []*DataRange[T]
}

// New returns an empty SparseVector with nominal size n.
func New[T any](n int) *SparseVector[T] {
	return &SparseVector[T]{n: n}
}

func zeroOf[T any]() T {
	var zero T
	return zero
}

// nextRangeAfter returns the index into v.ranges of the first range whose
// Offset is strictly greater than i, or len(v.ranges) if none.
func (v *SparseVector[T]) nextRangeAfter(i int) int {
	return sort.Search(len(v.ranges), func(k int) bool { return v.ranges[k].Offset > i })
}

// rangeAtOrAfter returns the index into v.ranges of the range containing
// i, if one exists; otherwise the index of the first range starting
// after i (i.e. the insertion point for a new range at i).
func (v *SparseVector[T]) rangeAtOrAfter(i int) int {
	next := v.nextRangeAfter(i)
	if next > 0 && v.ranges[next-1].Includes(i) {
		return next - 1
	}
	return next
}

// extendingRange returns the index into v.ranges of the range that i
// "extends": the range covering i, or the range immediately bordering i
// from below, or (if i is void and not bordering) the first range
// starting after i. Used to find where a coalescing pass should begin.
func (v *SparseVector[T]) extendingRange(i int) int {
	next := v.nextRangeAfter(i)
	if next > 0 && v.ranges[next-1].Borders(i) {
		return next - 1
	}
	return next
}

// mergeForward absorbs every following range that borders v.ranges[idx]
// into it, removing the absorbed ranges from the list. Only each
// absorbed range's tail beyond cur's current end is appended; cur may
// already cover (and have newer data for) the rest, since Borders now
// also matches a following range that cur's last write swallowed
// outright.
func (v *SparseVector[T]) mergeForward(idx int) {
	if idx < 0 || idx >= len(v.ranges) {
		return
	}
	cur := v.ranges[idx]
	j := idx + 1
	for j < len(v.ranges) && cur.Borders(v.ranges[j].Offset) {
		next := v.ranges[j]
		if next.Last() > cur.Last() {
			tailStart := cur.Last() - next.Offset
			cur.extend(cur.Last(), next.values[tailStart:], zeroOf[T]())
		}
		j++
	}
	if j > idx+1 {
		v.ranges = slices.Delete(v.ranges, idx+1, j)
	}
}

func (v *SparseVector[T]) emptyOrOOB(i int) bool {
	return len(v.ranges) == 0 || i < 0 || i >= v.n
}

// Size returns the nominal number of logical cells.
func (v *SparseVector[T]) Size() int { return v.n }

// Empty reports whether the vector's nominal size is zero.
func (v *SparseVector[T]) Empty() bool { return v.n == 0 }

// Clear resets the vector to nominal size zero with no ranges.
func (v *SparseVector[T]) Clear() {
	v.n = 0
	v.ranges = nil
}

// Count returns the number of materialized cells.
func (v *SparseVector[T]) Count() int {
	c := 0
	for _, r := range v.ranges {
		c += r.Size()
	}
	return c
}

// NRanges returns the number of materialized ranges.
func (v *SparseVector[T]) NRanges() int { return len(v.ranges) }

// At returns the value at logical index i, or the zero value if i is
// void or out of bounds.
func (v *SparseVector[T]) At(i int) T {
	if i < 0 || i >= v.n {
		return zeroOf[T]()
	}
	k := v.rangeAtOrAfter(i)
	if k < len(v.ranges) && v.ranges[k].Includes(i) {
		return *v.ranges[k].at(i)
	}
	return zeroOf[T]()
}

// Ref returns a write-through proxy for the cell at logical index i.
// The proxy is void (Materialized() == false) if i is currently void
// or out of bounds; use SetAt to materialize a void cell.
func (v *SparseVector[T]) Ref(i int) Proxy[T] {
	if i < 0 || i >= v.n {
		return Proxy[T]{}
	}
	k := v.rangeAtOrAfter(i)
	if k < len(v.ranges) && v.ranges[k].Includes(i) {
		return Proxy[T]{cell: v.ranges[k].at(i)}
	}
	return Proxy[T]{}
}

// IsVoid reports whether i carries no materialized value. It fails with
// ErrOutOfBounds if i is at or beyond the nominal size, or if the
// vector has no ranges at all.
func (v *SparseVector[T]) IsVoid(i int) (bool, error) {
	if v.emptyOrOOB(i) {
		return false, ErrOutOfBounds
	}
	k := v.rangeAtOrAfter(i)
	return !(k < len(v.ranges) && v.ranges[k].Includes(i)), nil
}

// BackIsVoid reports whether the last logical cell is void: either
// there are no ranges at all, or the last range doesn't reach the
// nominal size.
func (v *SparseVector[T]) BackIsVoid() bool {
	if len(v.ranges) == 0 {
		return true
	}
	return v.ranges[len(v.ranges)-1].Last() < v.n
}

// SetAt assigns val to logical index i, materializing a new one-element
// range if i was void, and coalescing it with any bordering neighbours.
// It grows the nominal size if i is at or beyond it.
func (v *SparseVector[T]) SetAt(i int, val T) {
	v.insertRun(i, []T{val}, true)
}

// UnsetAt removes any materialized value at logical index i, shrinking,
// splitting, or deleting its range as needed. It is a no-op if i is
// already void.
func (v *SparseVector[T]) UnsetAt(i int) {
	k := v.rangeAtOrAfter(i)
	if !(k < len(v.ranges) && v.ranges[k].Includes(i)) {
		return
	}
	r := v.ranges[k]
	switch {
	case r.Size() == 1:
		v.ranges = slices.Delete(v.ranges, k, k+1)
	case i == r.Offset:
		r.moveHead(i+1, zeroOf[T]())
	case i == r.Last()-1:
		r.moveTail(i, zeroOf[T]())
	default:
		tail := append([]T(nil), r.values[i+1-r.Offset:]...)
		r.moveTail(i, zeroOf[T]())
		v.ranges = slices.Insert(v.ranges, k+1, newDataRange(i+1, tail))
	}
}

// insertRun is the shared bulk-insert algorithm behind SetAt, AddRange
// and Append: it materializes src starting at offset, extending a
// bordering predecessor in place if one exists, and coalesces forward.
// mustCopy controls whether src is copied before being adopted as a new
// range's backing storage (a bordering predecessor is always copied
// into, regardless of mustCopy).
func (v *SparseVector[T]) insertRun(offset int, src []T, mustCopy bool) {
	if len(src) == 0 {
		if offset > v.n {
			v.n = offset
		}
		return
	}
	ins := v.nextRangeAfter(offset)
	var idx int
	if ins > 0 && v.ranges[ins-1].Borders(offset) {
		v.ranges[ins-1].extend(offset, src, zeroOf[T]())
		idx = ins - 1
	} else {
		buf := src
		if mustCopy {
			buf = append([]T(nil), src...)
		}
		v.ranges = slices.Insert(v.ranges, ins, newDataRange(offset, buf))
		idx = ins
	}
	v.mergeForward(idx)
	if last := v.ranges[idx].Last(); last > v.n {
		v.n = last
	}
}

// AddRange materializes a copy of src starting at offset, overwriting
// any existing values there, and coalesces the result with bordering
// neighbours. It grows the nominal size if the inserted run reaches
// past it.
func (v *SparseVector[T]) AddRange(offset int, src []T) {
	v.insertRun(offset, src, true)
}

// AddRangeOwned is like AddRange, but adopts src directly as the new
// range's backing storage without copying when it is not merged into an
// existing range. The caller must not retain or mutate src afterwards.
func (v *SparseVector[T]) AddRangeOwned(offset int, src []T) {
	v.insertRun(offset, src, false)
}

// Append materializes a copy of src immediately after the current
// nominal size, growing the vector by len(src).
func (v *SparseVector[T]) Append(src []T) {
	v.insertRun(v.n, src, true)
}

// AppendOwned is like Append, adopting src without copying when
// possible. The caller must not retain or mutate src afterwards.
func (v *SparseVector[T]) AppendOwned(src []T) {
	v.insertRun(v.n, src, false)
}

// CombineOp combines a stored value with an incoming one, returning the
// new stored value.
type CombineOp[T any] func(stored, incoming T) T

// CombineRange folds src into the vector starting at offset using op:
// materialized cells are combined with op(stored, src[i]); void cells
// are materialized with op(voidValue, src[i]). The result is coalesced
// with bordering neighbours same as AddRange.
func (v *SparseVector[T]) CombineRange(offset int, src []T, op CombineOp[T], voidValue T) {
	if len(src) == 0 {
		if offset > v.n {
			v.n = offset
		}
		return
	}
	insertionPoint := offset
	cur := offset
	d := v.rangeAtOrAfter(offset)
	i := 0
	n := len(src)
	for i < n {
		if d < len(v.ranges) && v.ranges[d].Includes(cur) {
			dr := v.ranges[d]
			for i < n && cur < dr.Last() {
				p := dr.at(cur)
				*p = op(*p, src[i])
				i++
				cur++
			}
			if i == n {
				break
			}
			cur = dr.Last()
			d++
			continue
		}

		remaining := n - i
		run := remaining
		if d < len(v.ranges) {
			if avail := v.ranges[d].Offset - cur; avail < run {
				run = avail
			}
		}
		buf := make([]T, run)
		for k := 0; k < run; k++ {
			buf[k] = op(voidValue, src[i+k])
		}
		v.ranges = slices.Insert(v.ranges, d, newDataRange(cur, buf))
		d++
		i += run
		cur += run
	}

	mergeStart := insertionPoint - 1
	if mergeStart < 0 {
		mergeStart = 0
	}
	v.mergeForward(v.extendingRange(mergeStart))

	if len(v.ranges) > 0 {
		if last := v.ranges[len(v.ranges)-1].Last(); last > v.n {
			v.n = last
		}
	}
}

// Resize changes the nominal size. Growing never materializes new
// cells. Shrinking truncates or deletes any range that falls at or
// beyond newN.
func (v *SparseVector[T]) Resize(newN int) {
	if newN >= v.n {
		v.n = newN
		return
	}
	k := sort.Search(len(v.ranges), func(i int) bool { return v.ranges[i].Offset >= newN })
	if k > 0 && v.ranges[k-1].Last() > newN {
		v.ranges[k-1].moveTail(newN, zeroOf[T]())
		if v.ranges[k-1].Size() == 0 {
			k--
		}
	}
	clear(v.ranges[k:])
	v.ranges = v.ranges[:k]
	v.n = newN
}

// ResizeFill changes the nominal size to newN. If growing and the back
// of the vector is currently void, the new cells are materialized with
// fill; if the back is already materialized, the last range is extended
// with fill instead of left void. Shrinking behaves like Resize.
func (v *SparseVector[T]) ResizeFill(newN int, fill T) {
	if newN <= v.n {
		v.Resize(newN)
		return
	}
	if v.BackIsVoid() {
		buf := make([]T, newN-v.n)
		for i := range buf {
			buf[i] = fill
		}
		v.ranges = append(v.ranges, newDataRange(v.n, buf))
	} else {
		last := v.ranges[len(v.ranges)-1]
		for last.Last() < newN {
			last.values = append(last.values, fill)
			last.Length++
		}
	}
	v.n = newN
}

// PushBack appends a single value, growing the nominal size by one.
func (v *SparseVector[T]) PushBack(val T) {
	v.ResizeFill(v.n+1, val)
}

// RangeAt returns the Range of the i-th materialized range, in offset
// order.
func (v *SparseVector[T]) RangeAt(i int) Range { return v.ranges[i].Range }

// RangeData returns the mutable backing slice of the i-th materialized
// range.
func (v *SparseVector[T]) RangeData(i int) []T { return v.ranges[i].values }

// FindRangeNumber returns the index of the range covering i. It fails
// with ErrOutOfBounds if i is at or beyond the nominal size or the
// vector has no ranges, or with ErrNoSuchRange if i is void.
func (v *SparseVector[T]) FindRangeNumber(i int) (int, error) {
	if v.emptyOrOOB(i) {
		return 0, ErrOutOfBounds
	}
	k := v.rangeAtOrAfter(i)
	if k < len(v.ranges) && v.ranges[k].Includes(i) {
		return k, nil
	}
	return 0, ErrNoSuchRange
}

// FindRange returns the Range and backing data of the range covering i.
// See FindRangeNumber for its error conditions.
func (v *SparseVector[T]) FindRange(i int) (Range, []T, error) {
	k, err := v.FindRangeNumber(i)
	if err != nil {
		return Range{}, nil, err
	}
	return v.ranges[k].Range, v.ranges[k].values, nil
}

// VoidRange erases the i-th materialized range outright and returns it.
// i must be a valid range index; behavior is undefined otherwise,
// consistent with the rest of the range-number API.
func (v *SparseVector[T]) VoidRange(i int) DataRange[T] {
	r := *v.ranges[i]
	v.ranges = slices.Delete(v.ranges, i, i+1)
	return r
}

// MakeVoidAround erases the range covering i, if any, and returns it.
// Unlike most other lookups, a void (but in-bounds) index is not an
// error: it simply returns a zero-value DataRange. It still fails with
// ErrOutOfBounds if the vector has no ranges or i is at or beyond the
// nominal size.
func (v *SparseVector[T]) MakeVoidAround(i int) (DataRange[T], error) {
	if v.emptyOrOOB(i) {
		return DataRange[T]{}, ErrOutOfBounds
	}
	k := v.rangeAtOrAfter(i)
	if k < len(v.ranges) && v.ranges[k].Includes(i) {
		return v.VoidRange(k), nil
	}
	return DataRange[T]{}, nil
}

// MakeVoid clears every cell in [first.Index(), last.Index()), splitting
// or erasing ranges as needed. Both iterators must belong to v.
func (v *SparseVector[T]) MakeVoid(first, last *Iterator[T]) error {
	if first.vec != v || last.vec != v {
		return ErrAlienIterator
	}
	v.makeVoidRange(first.index, last.index)
	return nil
}

func (v *SparseVector[T]) makeVoidRange(lo, hi int) {
	if lo < 0 {
		lo = 0
	}
	if hi > v.n {
		hi = v.n
	}
	if lo >= hi {
		return
	}
	k := v.rangeAtOrAfter(lo)
	for k < len(v.ranges) {
		r := v.ranges[k]
		if r.Offset >= hi {
			break
		}
		switch {
		case r.Offset >= lo && r.Last() <= hi:
			v.ranges = slices.Delete(v.ranges, k, k+1)
		case r.Offset < lo && r.Last() > hi:
			tail := append([]T(nil), r.values[hi-r.Offset:]...)
			r.moveTail(lo, zeroOf[T]())
			v.ranges = slices.Insert(v.ranges, k+1, newDataRange(hi, tail))
			k += 2
		case r.Offset < lo:
			r.moveTail(lo, zeroOf[T]())
			k++
		default:
			r.moveHead(hi, zeroOf[T]())
			k++
		}
	}
}

// IsValid checks the container invariants: every range is non-empty,
// ranges are strictly ordered with a gap between neighbours, and the
// nominal size reaches at least the end of the last range.
func (v *SparseVector[T]) IsValid() bool {
	for i, r := range v.ranges {
		if r.Empty() {
			return false
		}
		if i+1 < len(v.ranges) && !(r.Last() < v.ranges[i+1].Offset) {
			return false
		}
	}
	if len(v.ranges) > 0 && v.n < v.ranges[len(v.ranges)-1].Last() {
		return false
	}
	return true
}
