package trace

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	"github.com/cespare/xxhash/v2"

	sketcherrors "github.com/tamirms/flowsketch/errors"
)

// writeBufferSize is the bufio buffer used for the record stream.
const writeBufferSize = 1 << 16

// Writer appends (key, count) records to a new trace file. The record count
// and checksum are written by Close; a trace that was never closed fails
// to open.
//
// A Writer is not safe for concurrent use.
type Writer struct {
	file    *os.File
	bw      *bufio.Writer
	hasher  *xxhash.Digest // streaming hash of the record region
	seed    uint64
	records uint64
	buf     [recordSize]byte
	closed  bool
}

// Create creates (or truncates) the trace file at path. seed is stored in
// the header for the reader's information.
func Create(path string, seed uint64) (*Writer, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create trace file: %w", err)
	}
	w := &Writer{
		file:   file,
		bw:     bufio.NewWriterSize(file, writeBufferSize),
		hasher: xxhash.New(),
		seed:   seed,
	}
	// Placeholder header, rewritten by Close.
	var hdr [headerSize]byte
	if _, err := w.bw.Write(hdr[:]); err != nil {
		return nil, errors.Join(fmt.Errorf("write trace header: %w", err), file.Close())
	}
	return w, nil
}

// Write appends one record. count must be positive.
func (w *Writer) Write(key, count uint64) error {
	if w.closed {
		return sketcherrors.ErrWriterClosed
	}
	if count == 0 {
		return sketcherrors.ErrZeroMultiplicity
	}
	putRecord(w.buf[:], key, count)
	if _, err := w.bw.Write(w.buf[:]); err != nil {
		return fmt.Errorf("write trace record: %w", err)
	}
	_, _ = w.hasher.Write(w.buf[:]) // Digest.Write never fails
	w.records++
	return nil
}

// WriteCounts appends one record per entry of counts, in unspecified order.
func (w *Writer) WriteCounts(counts map[uint64]uint64) error {
	for key, count := range counts {
		if err := w.Write(key, count); err != nil {
			return err
		}
	}
	return nil
}

// Records returns the number of records written so far.
func (w *Writer) Records() uint64 { return w.records }

// Close writes the footer and final header and closes the file.
// Idempotent: later calls return nil.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	var ftr [footerSize]byte
	binary.LittleEndian.PutUint64(ftr[:], w.hasher.Sum64())
	if _, err := w.bw.Write(ftr[:]); err != nil {
		return errors.Join(fmt.Errorf("write trace footer: %w", err), w.file.Close())
	}
	if err := w.bw.Flush(); err != nil {
		return errors.Join(fmt.Errorf("flush trace: %w", err), w.file.Close())
	}

	hdr := header{Magic: magic, Version: version, Records: w.records, Seed: w.seed}
	var buf [headerSize]byte
	hdr.encodeTo(buf[:])
	if _, err := w.file.WriteAt(buf[:], 0); err != nil {
		return errors.Join(fmt.Errorf("write trace header: %w", err), w.file.Close())
	}
	return w.file.Close()
}
