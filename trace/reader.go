package trace

import (
	"encoding/binary"
	"errors"
	"fmt"
	"iter"
	"os"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	"github.com/edsrzf/mmap-go"

	sketcherrors "github.com/tamirms/flowsketch/errors"
)

// Trace is a read-only view of a trace file.
//
// Thread Safety:
// - Record, All and Verify are safe for concurrent use
// - Close must only be called after all readers have finished
type Trace struct {
	// Memory map (no file handle needed after mmap)
	mmap mmap.MMap
	data []byte

	header  *header
	records []byte // record region

	closed atomic.Bool
}

// Open opens a trace file for reading.
// It opens the file, memory-maps it, and closes the file descriptor.
func Open(path string) (*Trace, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open trace file: %w", err)
	}
	defer file.Close()
	return OpenFile(file)
}

// OpenFile opens a trace by memory-mapping f. The caller is responsible for
// closing f, which may happen as soon as OpenFile returns.
func OpenFile(f *os.File) (*Trace, error) {
	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat trace file: %w", err)
	}
	if stat.Size() < headerSize+footerSize {
		return nil, sketcherrors.ErrTruncatedFile
	}

	mm, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("mmap trace file: %w", err)
	}
	adviseSequential(mm)

	t := &Trace{mmap: mm, data: []byte(mm)}
	if err := t.init(); err != nil {
		return nil, errors.Join(err, t.Close())
	}
	return t, nil
}

// OpenBytes creates a Trace over an in-memory copy of a trace file.
// Close is a no-op. The caller must not modify data while the Trace is in use.
func OpenBytes(data []byte) (*Trace, error) {
	if len(data) < headerSize+footerSize {
		return nil, sketcherrors.ErrTruncatedFile
	}
	t := &Trace{data: data}
	if err := t.init(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Trace) init() error {
	hdr, err := decodeHeader(t.data[:headerSize])
	if err != nil {
		return err
	}
	want, ok := fileSize(hdr.Records)
	if !ok || len(t.data) < want {
		return fmt.Errorf("%w: header declares %d records in %d bytes",
			sketcherrors.ErrTruncatedFile, hdr.Records, len(t.data))
	}
	if len(t.data) > want {
		return fmt.Errorf("%w: %d trailing bytes", sketcherrors.ErrCorruptedTrace, len(t.data)-want)
	}
	t.header = hdr
	t.records = t.data[headerSize : want-footerSize]
	return nil
}

// Len returns the number of records.
func (t *Trace) Len() int { return len(t.records) / recordSize }

// Seed returns the seed stored in the header.
func (t *Trace) Seed() uint64 { return t.header.Seed }

// Record returns record i. It returns ErrTraceClosed after Close.
func (t *Trace) Record(i int) (key, count uint64, err error) {
	if t.closed.Load() {
		return 0, 0, sketcherrors.ErrTraceClosed
	}
	key, count = getRecord(t.records[i*recordSize:])
	return key, count, nil
}

// All yields every record in file order. It yields nothing once the trace
// is closed.
func (t *Trace) All() iter.Seq2[uint64, uint64] {
	return func(yield func(uint64, uint64) bool) {
		for off := 0; off < len(t.records); off += recordSize {
			if t.closed.Load() {
				return
			}
			if !yield(getRecord(t.records[off:])) {
				return
			}
		}
	}
}

// Verify checks the record region against the footer checksum.
func (t *Trace) Verify() error {
	if t.closed.Load() {
		return sketcherrors.ErrTraceClosed
	}
	footerOff := headerSize + len(t.records)
	want := binary.LittleEndian.Uint64(t.data[footerOff : footerOff+footerSize])
	if got := xxhash.Sum64(t.records); got != want {
		return fmt.Errorf("%w: records hash %016x, footer %016x", sketcherrors.ErrChecksumFailed, got, want)
	}
	return nil
}

// Close releases the mapping. Idempotent.
func (t *Trace) Close() error {
	if t.closed.Swap(true) {
		return nil
	}
	if t.mmap != nil {
		return t.mmap.Unmap()
	}
	return nil
}
