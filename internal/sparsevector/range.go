package sparsevector

// Range is a half-open interval of logical indices [Offset, Offset+Length).
type Range struct {
	Offset int
	Length int
}

// Last returns the index one past the end of the range.
func (r Range) Last() int { return r.Offset + r.Length }

// Empty reports whether the range contains no indices.
func (r Range) Empty() bool { return r.Length <= 0 }

// Includes reports whether i falls inside the range.
func (r Range) Includes(i int) bool { return i >= r.Offset && i < r.Last() }

// Borders reports whether i falls inside the range or immediately
// follows it (one past the end counts), i.e. whether writing at i would
// extend or overwrite this range rather than start a new one.
func (r Range) Borders(i int) bool { return i >= r.Offset && i <= r.Last() }

// Overlaps reports whether the two ranges share at least one index.
func (r Range) Overlaps(other Range) bool {
	return r.Offset < other.Last() && other.Offset < r.Last()
}
