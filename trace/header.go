// Package trace stores keyed event streams on disk and replays them into a
// sketch.
//
// A trace file is a fixed header, a dense array of (key, count) records and
// a footer carrying an xxHash64 of the record region:
//
//	Offset        Size      Field
//	0             32        header
//	32            16*N      records: key uint64_le, count uint64_le
//	32+16*N       8         footer: xxHash64 of the record region
//
// Files are written once by Writer and read through a read-only memory map
// by Open.
package trace

import (
	"encoding/binary"
	"fmt"

	sketcherrors "github.com/tamirms/flowsketch/errors"
)

const (
	// magic number for trace files, "FLTR" in little-endian
	magic = uint32(0x52544C46)

	// version is the current format version
	version = uint16(0x0001)

	// headerSize is the exact size of the serialized header (32 bytes)
	headerSize = 32

	// footerSize is the exact size of the serialized footer (8 bytes)
	footerSize = 8

	// recordSize is the size of one (key, count) record
	recordSize = 16
)

// header is the 32-byte file header.
//
// Layout:
//
//	Offset  Size  Field     Type
//	0       4     Magic     0x52544C46 ("FLTR")
//	4       2     Version   0x0001
//	6       2     Reserved  uint16 (zero)
//	8       8     Records   uint64_le
//	16      8     Seed      uint64_le (generator or sketch seed, informational)
//	24      8     Reserved  [8]byte (zero)
type header struct {
	Magic   uint32
	Version uint16
	Records uint64
	Seed    uint64
}

// encodeTo serializes the header to an existing buffer.
func (h *header) encodeTo(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:4], h.Magic)
	binary.LittleEndian.PutUint16(buf[4:6], h.Version)
	clear(buf[6:8])
	binary.LittleEndian.PutUint64(buf[8:16], h.Records)
	binary.LittleEndian.PutUint64(buf[16:24], h.Seed)
	clear(buf[24:32])
}

// decodeHeader parses a 32-byte header.
func decodeHeader(buf []byte) (*header, error) {
	if len(buf) < headerSize {
		return nil, sketcherrors.ErrTruncatedFile
	}
	h := &header{
		Magic:   binary.LittleEndian.Uint32(buf[0:4]),
		Version: binary.LittleEndian.Uint16(buf[4:6]),
		Records: binary.LittleEndian.Uint64(buf[8:16]),
		Seed:    binary.LittleEndian.Uint64(buf[16:24]),
	}
	if h.Magic != magic {
		return nil, sketcherrors.ErrInvalidMagic
	}
	if h.Version != version {
		return nil, fmt.Errorf("%w: %d", sketcherrors.ErrInvalidVersion, h.Version)
	}
	return h, nil
}

// fileSize returns the exact size of a trace holding n records, and false if
// it does not fit in an int.
func fileSize(n uint64) (int, bool) {
	const maxRecords = (1<<62 - headerSize - footerSize) / recordSize
	if n > maxRecords {
		return 0, false
	}
	return headerSize + int(n)*recordSize + footerSize, true
}

func putRecord(buf []byte, key, count uint64) {
	binary.LittleEndian.PutUint64(buf[0:8], key)
	binary.LittleEndian.PutUint64(buf[8:16], count)
}

func getRecord(buf []byte) (key, count uint64) {
	return binary.LittleEndian.Uint64(buf[0:8]), binary.LittleEndian.Uint64(buf[8:16])
}
