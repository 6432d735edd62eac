// Package blockio defines the small I/O interfaces shared by the NBD
// block device adaptor and its test harness: byte-addressable and
// block-addressable random access, hole/data location, and flushing.
package blockio

import "io"

// ReadWriterAt combines random-access read and write.
type ReadWriterAt interface {
	io.ReaderAt
	io.WriterAt
}

// Holey locates the data/hole boundaries of a sparse byte stream, in
// the same vein as lseek(SEEK_DATA)/lseek(SEEK_HOLE).
type Holey interface {
	NextData(off int64) (int64, error)
	NextHole(off int64) (int64, error)
}

// HoleReaderAt is a ReaderAt that can also report where its data and
// holes lie.
type HoleReaderAt interface {
	io.ReaderAt
	Holey
}

// Flusher pushes any buffered state to durable storage.
type Flusher interface {
	Flush() error
}

// BlockReader reads whole blocks.
type BlockReader interface {
	// ReadBlocks reads a contiguous sequence of blocks starting at off.
	// len(buf) must be a multiple of the block size.
	ReadBlocks(buf []byte, off int64) (blocksRead int, err error)
}

// BlockWriter writes whole blocks.
type BlockWriter interface {
	// WriteBlocks writes a contiguous sequence of blocks starting at
	// off. len(buf) must be a multiple of the block size.
	WriteBlocks(buf []byte, off int64) (blocksWritten int, err error)
}

// BlockReadWriter combines BlockReader and BlockWriter.
type BlockReadWriter interface {
	BlockReader
	BlockWriter
}

// BlockHoley is Holey at block granularity.
type BlockHoley interface {
	// NextBlockData locates the index of the next existing block. If
	// off is itself a valid block, it returns off. Returns io.EOF if
	// there are no more blocks.
	NextBlockData(off int64) (nextBlock int64, err error)

	// NextBlockHole locates the index of the next hole block.
	NextBlockHole(off int64) (nextHole int64, err error)
}

// BlockHoleReader combines BlockReader and BlockHoley.
type BlockHoleReader interface {
	BlockReader
	BlockHoley
}
