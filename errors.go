package dsstore

import (
	"errors"
	"fmt"
)

// Package-specific error variables that can be used with errors.Is() for error handling.
var (
	// ErrInvalidMagic is returned when the file does not start with the "Bud1" container magic.
	ErrInvalidMagic = errors.New("dsstore: invalid container magic")

	// ErrInvalidHeader is returned when the fixed 36-byte container prefix fails its own checks.
	ErrInvalidHeader = errors.New("dsstore: invalid container header")

	// ErrOffsetMismatch is returned when the header's two copies of the allocator offset disagree.
	ErrOffsetMismatch = errors.New("dsstore: allocator offset mismatch")

	// ErrInvalidBlockAddress is returned when a decoded buddy address violates size or alignment rules.
	ErrInvalidBlockAddress = errors.New("dsstore: invalid block address")

	// ErrInvalidBTreeHeader is returned when the root metadata block cannot be parsed, or its
	// invariants (page size, non-zero root, internal level bound) do not hold.
	ErrInvalidBTreeHeader = errors.New("dsstore: invalid B-tree header")

	// ErrInvalidUTF16String is returned when a length-prefixed UTF-16BE region fails to decode.
	ErrInvalidUTF16String = errors.New("dsstore: invalid UTF-16 string")

	// ErrFileNotFound mirrors the I/O boundary's file-not-found condition for callers that map it through.
	ErrFileNotFound = errors.New("dsstore: file not found")
)

// UnknownDataTypeError is returned when a record's on-disk type code is not one of the
// codes this package knows how to decode (§4.3 of the format).
type UnknownDataTypeError struct {
	Code FourCC
}

func (e *UnknownDataTypeError) Error() string {
	return "dsstore: unknown data type code " + e.Code.String()
}

// CorruptedFileError wraps any other structural violation: bounds overruns, duplicate
// records, node/record count mismatches, unaligned free-list offsets, cyclic trees, etc.
type CorruptedFileError struct {
	Reason string
}

func (e *CorruptedFileError) Error() string {
	return "dsstore: corrupted file: " + e.Reason
}

func corruptf(format string, args ...interface{}) error {
	return &CorruptedFileError{Reason: fmt.Sprintf(format, args...)}
}

// ReadFailedError wraps a lower-level I/O error encountered while reading a container.
type ReadFailedError struct {
	Reason string
	Err    error
}

func (e *ReadFailedError) Error() string {
	return "dsstore: read failed: " + e.Reason
}

func (e *ReadFailedError) Unwrap() error { return e.Err }

// WriteFailedError wraps an error encountered while writing a container: applying an
// option, building the B-tree, planning the layout, or the final write to the io.Writer.
type WriteFailedError struct {
	Reason string
	Err    error
}

func (e *WriteFailedError) Error() string {
	return "dsstore: write failed: " + e.Reason
}

func (e *WriteFailedError) Unwrap() error { return e.Err }

// PlistSerializationError is returned when the property-list codec rejects a value on
// encode, or a decoded blob cannot be serialized back to binary property-list bytes.
type PlistSerializationError struct {
	Reason string
	Err    error
}

func (e *PlistSerializationError) Error() string {
	return "dsstore: property list serialization failed: " + e.Reason
}

func (e *PlistSerializationError) Unwrap() error { return e.Err }
