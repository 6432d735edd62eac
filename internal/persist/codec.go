// Package persist serializes a byte-element SparseVector to a compact
// binary format and stores it atomically on the local filesystem. The
// container itself has no persistence layer; this is an external
// collaborator built on top of its public API.
package persist

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/akmistry/sparsevec/internal/sparsevector"
)

// Dump encodes v as: varint(size), varint(range count), then for each
// range varint(offset), varint(length), raw bytes.
func Dump(v *sparsevector.SparseVector[byte]) ([]byte, error) {
	var buf bytes.Buffer
	container := make([]byte, binary.MaxVarintLen64)

	writeVarint := func(x int64) error {
		n := binary.PutVarint(container, x)
		_, err := buf.Write(container[:n])
		return err
	}

	if err := writeVarint(int64(v.Size())); err != nil {
		return nil, err
	}
	if err := writeVarint(int64(v.NRanges())); err != nil {
		return nil, err
	}
	for i := 0; i < v.NRanges(); i++ {
		r := v.RangeAt(i)
		if err := writeVarint(int64(r.Offset)); err != nil {
			return nil, err
		}
		if err := writeVarint(int64(r.Length)); err != nil {
			return nil, err
		}
		if _, err := buf.Write(v.RangeData(i)); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// Load decodes a buffer produced by Dump into a fresh SparseVector.
func Load(data []byte) (*sparsevector.SparseVector[byte], error) {
	i := 0
	readVarint := func() (int64, error) {
		if i >= len(data) {
			return 0, fmt.Errorf("persist: truncated varint at offset %d", i)
		}
		x, n := binary.Varint(data[i:])
		if n <= 0 {
			return 0, fmt.Errorf("persist: invalid varint at offset %d", i)
		}
		i += n
		return x, nil
	}

	size, err := readVarint()
	if err != nil {
		return nil, err
	}
	numRanges, err := readVarint()
	if err != nil {
		return nil, err
	}

	v := sparsevector.New[byte](int(size))
	for r := int64(0); r < numRanges; r++ {
		offset, err := readVarint()
		if err != nil {
			return nil, err
		}
		length, err := readVarint()
		if err != nil {
			return nil, err
		}
		if i+int(length) > len(data) {
			return nil, fmt.Errorf("persist: range %d truncated payload", r)
		}
		// Cap the slice at its length so that growing this range later
		// reallocates instead of writing over the bytes that follow it.
		v.AddRangeOwned(int(offset), data[i:i+int(length):i+int(length)])
		i += int(length)
	}
	return v, nil
}
