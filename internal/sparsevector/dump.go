package sparsevector

import (
	"fmt"
	"io"
)

// Dump writes a range-by-range textual rendering of v to w, in the form
// "[begin-end) (size): { v0 v1 ... }" per range, one per line. It is a
// diagnostic aid, not a serialization format: round-tripping through it
// is not supported.
func (v *SparseVector[T]) Dump(w io.Writer) error {
	for i := 0; i < len(v.ranges); i++ {
		r := v.ranges[i]
		if _, err := fmt.Fprintf(w, "[%d-%d) (%d): {", r.Offset, r.Last(), r.Size()); err != nil {
			return err
		}
		for _, val := range r.values {
			if _, err := fmt.Fprintf(w, " %v", val); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, " }\n"); err != nil {
			return err
		}
	}
	return nil
}
