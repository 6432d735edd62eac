package blockindex

// RangeMap indexes bulk spans of a uint64 key space, each span carrying
// a single value. ancestrymap.Map uses it to map a span of descendant
// track IDs to the one ancestor that produced them, without storing one
// map entry per descendant ID.
type RangeMap[V any] interface {
	// Begin and End report the lowest and one-past-the-highest key
	// recorded by any Add call. Begin's ok is false iff nothing has
	// been added yet.
	Begin() (begin uint64, ok bool)
	End() (end uint64)

	// Add records [offset, offset+length) as carrying value,
	// overwriting any keys already recorded in that span.
	Add(offset, length uint64, value V)
	// Remove(offset, length uint64)
	// Get looks up the value recorded for a single key.
	Get(offset uint64) (value V, ok bool)

	// NextKey and NextEmpty locate the next recorded/unrecorded key at
	// or after offset.
	NextKey(offset uint64) (next uint64, ok bool)
	NextEmpty(offset uint64) (next uint64)

	RangeMapIterator[V]
}

// RangeMapIterator walks the recorded spans in key order, starting at
// or after start, merging adjacent same-value spans.
type RangeMapIterator[V any] interface {
	Iterate(start uint64, iter func(RangeValue[V]) bool)
}

// Range is a span of keys, e.g. a contiguous block of descendant track
// IDs recorded under one ancestor.
type Range struct {
	Offset, Length uint64
}

func (r *Range) Key() uint64 {
	return r.Offset
}

func (r Range) End() uint64 {
	return r.Offset + r.Length
}

func (r Range) Contains(off uint64) bool {
	return off >= r.Offset && off < (r.Offset+r.Length)
}

func (r Range) Overlaps(other Range) bool {
	return r.Contains(other.Offset) || other.Contains(r.Offset)
}

// RangeValue pairs a Range with the single value recorded across it,
// as yielded by RangeMapIterator.Iterate.
type RangeValue[V any] struct {
	Range
	Value V
}
