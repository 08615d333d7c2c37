// Package errors defines all exported error sentinels for the flowsketch library.
//
// This is the single source of truth for error values. The top-level
// flowsketch package, the trace package and the internal packages all import
// from here, so errors.Is checks work across package boundaries.
package errors

import "errors"

// Configuration errors, returned by flowsketch.New.
var (
	ErrInvalidReplication     = errors.New("flowsketch: replication factor must be at least 1")
	ErrInvalidColumnRange     = errors.New("flowsketch: column range must be at least 1")
	ErrWeightTableExceeded    = errors.New("flowsketch: replication factor * column range exceeds weight table size")
	ErrInvalidRows            = errors.New("flowsketch: row count must be at least 1")
	ErrInvalidBuckets         = errors.New("flowsketch: buckets per row must be at least 1")
	ErrModulusNotPrime        = errors.New("flowsketch: modulus is not prime")
	ErrModulusOutOfRange      = errors.New("flowsketch: modulus out of supported range")
	ErrCandidateSpaceTooLarge = errors.New("flowsketch: candidate matrix space too large")
	ErrInvalidKeyLimit        = errors.New("flowsketch: key limit must be in [1, modulus]")
	ErrInvalidMaxMultiplicity = errors.New("flowsketch: max multiplicity must be in [1, modulus)")
	ErrUnknownHashAlgorithm   = errors.New("flowsketch: unknown hash algorithm")
	ErrUnknownWeighting       = errors.New("flowsketch: unknown weighting")
)

// Argument errors
var (
	ErrRowOutOfRange          = errors.New("flowsketch: row index out of range")
	ErrKeyOutOfRange          = errors.New("flowsketch: key outside key domain")
	ErrZeroMultiplicity       = errors.New("flowsketch: multiplicity must be positive")
	ErrMultiplicityOutOfRange = errors.New("flowsketch: multiplicity exceeds maximum")
	ErrIncompatibleSketch     = errors.New("flowsketch: sketches have different shape or seed")
)

// Trace errors
var (
	ErrInvalidMagic    = errors.New("flowsketch: invalid trace magic number")
	ErrInvalidVersion  = errors.New("flowsketch: unsupported trace version")
	ErrTruncatedFile   = errors.New("flowsketch: trace file is truncated")
	ErrChecksumFailed  = errors.New("flowsketch: trace checksum verification failed")
	ErrCorruptedTrace  = errors.New("flowsketch: trace file is corrupted")
	ErrTraceClosed     = errors.New("flowsketch: trace is closed")
	ErrWriterClosed    = errors.New("flowsketch: trace writer is closed")
	ErrInvalidWorkload = errors.New("flowsketch: invalid synthetic workload parameters")
)
