package bigtiff

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownFieldType is returned when a tag entry declares a value type
	// that is not part of the BigTIFF type table.
	ErrUnknownFieldType = errors.New("unknown tag value type")
)

// FormatError reports a header or structure field that does not match the
// BigTIFF layout this package supports. There is no tolerant fallback: offset
// arithmetic downstream assumes the exact layout.
type FormatError struct {
	Field string
	Value uint64
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("unsupported container: %s = %d", e.Field, e.Value)
}

// TruncatedDataError reports a read that ran past the available bytes while
// decoding a structure at a known offset.
type TruncatedDataError struct {
	Offset int64
	Need   int
	What   string
}

func (e *TruncatedDataError) Error() string {
	return fmt.Sprintf("truncated %s: need %d bytes at offset %d", e.What, e.Need, e.Offset)
}

// MissingTagError reports a tag a consumer assumed to be present but the
// directory does not carry. Callers treat this as "field absent", which is
// not always fatal.
type MissingTagError struct {
	Tag uint16
	Dir int
}

func (e *MissingTagError) Error() string {
	name := TagName(e.Tag)
	if name == "" {
		name = "unknown"
	}
	return fmt.Sprintf("directory %d missing tag %d (%s)", e.Dir, e.Tag, name)
}

// AuxImageNotFoundError reports that the classification heuristic accepted no
// directory for the named role.
type AuxImageNotFoundError struct {
	Role Role
}

func (e *AuxImageNotFoundError) Error() string {
	return fmt.Sprintf("no %s image identified in directory chain", e.Role)
}

// ProtectedPathError is returned before any byte is written when a
// destructive operation targets a guarded path.
type ProtectedPathError struct {
	Path   string
	Marker string
}

func (e *ProtectedPathError) Error() string {
	return fmt.Sprintf("refusing destructive operation on protected path %s (marker %q)", e.Path, e.Marker)
}
