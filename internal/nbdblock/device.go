// Package nbdblock exposes a byte-addressable SparseVector as a
// random-access block device suitable for serving over NBD: reads of
// unmaterialized regions come back as zeros, and an explicit Discard
// reclaims a range the way an NBD trim/unmap command does, by handing
// it straight to the container's makeVoid.
package nbdblock

import (
	"fmt"
	"io"
	"sync"

	"github.com/akmistry/sparsevec/internal/blockio"
	"github.com/akmistry/sparsevec/internal/persist"
	"github.com/akmistry/sparsevec/internal/sparsevector"
)

var _ = (blockio.HoleReaderAt)((*Device)(nil))
var _ = (blockio.Flusher)((*Device)(nil))

// Device is a fixed-size, sparse, in-memory block device, optionally
// backed by a persist.FileStore snapshot.
type Device struct {
	mu    sync.Mutex
	vec   *sparsevector.SparseVector[byte]
	store *persist.FileStore
	name  string
}

// NewDevice returns an empty Device of the given size in bytes. If
// store is non-nil, Flush saves a snapshot under name.
func NewDevice(size int64, store *persist.FileStore, name string) *Device {
	return &Device{
		vec:   sparsevector.New[byte](int(size)),
		store: store,
		name:  name,
	}
}

// LoadDevice restores a Device from a previously Flush-ed snapshot.
func LoadDevice(store *persist.FileStore, name string) (*Device, error) {
	vec, err := store.Load(name)
	if err != nil {
		return nil, err
	}
	return &Device{vec: vec, store: store, name: name}, nil
}

// Size returns the device's size in bytes.
func (d *Device) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(d.vec.Size())
}

// ReadAt implements io.ReaderAt, synthesizing zero bytes for any
// unmaterialized region of the read.
func (d *Device) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("nbdblock: negative offset %d", off)
	}
	if len(p) == 0 {
		return 0, nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	size := int64(d.vec.Size())
	if off >= size {
		return 0, io.EOF
	}
	n := len(p)
	if off+int64(n) > size {
		n = int(size - off)
	}

	clear(p[:n])
	end := off + int64(n)
	for ri := d.vec.IterateRanges(); !ri.Done(); ri.Next() {
		r := ri.Range()
		rstart, rend := int64(r.Offset), int64(r.Last())
		if rend <= off {
			continue
		}
		if rstart >= end {
			break
		}
		copyStart, copyEnd := max64(rstart, off), min64(rend, end)
		data := ri.Data()
		copy(p[copyStart-off:copyEnd-off], data[copyStart-rstart:copyEnd-rstart])
	}

	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// WriteAt implements io.WriterAt, materializing p as a range at off.
func (d *Device) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("nbdblock: negative offset %d", off)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if off+int64(len(p)) > int64(d.vec.Size()) {
		return 0, fmt.Errorf("nbdblock: write [%d, %d) past device size %d", off, off+int64(len(p)), d.vec.Size())
	}
	d.vec.AddRange(int(off), p)
	return len(p), nil
}

// Discard marks [off, off+length) void, reclaiming its storage. This
// is the block device's analogue of an NBD trim/unmap request.
func (d *Device) Discard(off, length int64) error {
	if off < 0 || length < 0 {
		return fmt.Errorf("nbdblock: invalid discard range [%d, %d)", off, off+length)
	}
	if length == 0 {
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	first := d.vec.Begin()
	first.Advance(int(off))
	last := d.vec.Begin()
	last.Advance(int(off + length))
	return d.vec.MakeVoid(first, last)
}

// NextData implements blockio.Holey, returning the next offset at or
// after off that is materialized, or io.EOF if there is none.
func (d *Device) NextData(off int64) (int64, error) {
	if off < 0 {
		return 0, fmt.Errorf("nbdblock: negative offset %d", off)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	for ri := d.vec.IterateRanges(); !ri.Done(); ri.Next() {
		r := ri.Range()
		if int64(r.Last()) <= off {
			continue
		}
		if int64(r.Offset) > off {
			return int64(r.Offset), nil
		}
		return off, nil
	}
	return 0, io.EOF
}

// NextHole implements blockio.Holey, returning the next offset at or
// after off that is void, or io.EOF if the device ends before one is
// found.
func (d *Device) NextHole(off int64) (int64, error) {
	if off < 0 {
		return 0, fmt.Errorf("nbdblock: negative offset %d", off)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	size := int64(d.vec.Size())
	if off >= size {
		return 0, io.EOF
	}
	cur := off
	for ri := d.vec.IterateRanges(); !ri.Done(); ri.Next() {
		r := ri.Range()
		rstart, rend := int64(r.Offset), int64(r.Last())
		if rend <= cur {
			continue
		}
		if rstart > cur {
			return cur, nil
		}
		cur = rend
		if cur >= size {
			return 0, io.EOF
		}
	}
	return cur, nil
}

// Flush saves a snapshot to the backing persist.FileStore, if any.
func (d *Device) Flush() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.store == nil {
		return nil
	}
	return d.store.Save(d.name, d.vec)
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
