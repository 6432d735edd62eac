package sparsevector

// Number is the set of element types PushBackThresholded supports. Go
// methods can't take extra type parameters, so this variant of
// PushBack is a free function rather than a method.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// PushBackThresholded appends val, unless it is within thr of the zero
// value, in which case the vector just grows by one void cell instead
// of materializing a near-zero value. A negative thr disables the
// threshold check and always appends val materialized.
func PushBackThresholded[T Number](v *SparseVector[T], val T, thr T) {
	if thr >= 0 {
		d := val
		if d < 0 {
			d = -d
		}
		if d <= thr {
			v.Resize(v.Size() + 1)
			return
		}
	}
	v.PushBack(val)
}
