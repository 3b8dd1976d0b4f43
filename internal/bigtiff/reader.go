package bigtiff

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
)

const (
	headerSize      = 16
	byteOrderMarker = 0x4949 // "II", little-endian
	bigtiffVersion  = 43
	offsetFieldSize = 8
	entrySize       = 20

	// Upper bound on chain length. A well-formed slide has a handful of
	// pyramid levels plus the two auxiliary images; anything past this is a
	// mangled next pointer.
	maxDirectories = 4096
)

// Header is the decoded 16-byte BigTIFF preamble.
type Header struct {
	FirstDirOffset uint64
}

// TagEntry is one 20-byte tag record inside a directory. TagPos and ValuePos
// are the absolute file positions of the tag field and the value/offset slot;
// the patch engine rewrites slots through ValuePos.
type TagEntry struct {
	Tag   uint16
	Type  uint16
	Count uint64

	TagPos   int64
	ValuePos int64
	// Raw is the 8-byte value slot interpreted as a little-endian integer.
	// For external values this is the absolute offset of the data.
	Raw uint64

	Value TagValue
}

// EncodedLen returns count * element size for the entry. It errors when the
// declared type is not in the type table or the product does not fit in a
// uint64; a count that large is a corrupt entry, not a real value.
func (e *TagEntry) EncodedLen() (uint64, error) {
	ft, ok := fieldTypes[e.Type]
	if !ok {
		return 0, fmt.Errorf("tag %d: %w (%d)", e.Tag, ErrUnknownFieldType, e.Type)
	}
	if ft.Size != 0 && e.Count > math.MaxUint64/ft.Size {
		return 0, &FormatError{Field: "tag value count", Value: e.Count}
	}
	return e.Count * ft.Size, nil
}

// Directory is one linked node in the container chain. Index is the 1-based
// visitation order, which is significant: convention places the label
// second-to-last and the macro last.
type Directory struct {
	Index   int
	Offset  int64
	Entries []TagEntry

	// NextPos is the absolute position of the next-directory pointer field,
	// recorded so the pointer itself can be rewritten during a splice.
	NextPos    int64
	NextOffset uint64
}

// Entry returns the first entry carrying the given tag.
func (d *Directory) Entry(tag uint16) (*TagEntry, bool) {
	for i := range d.Entries {
		if d.Entries[i].Tag == tag {
			return &d.Entries[i], true
		}
	}
	return nil, false
}

// Description returns the ImageDescription byte string with trailing NULs
// removed. Absence is reported as a MissingTagError so callers can treat it
// as "field missing" rather than a structural failure.
func (d *Directory) Description() ([]byte, error) {
	ent, ok := d.Entry(TagImageDesc)
	if !ok || !ent.Value.Materialized {
		return nil, &MissingTagError{Tag: TagImageDesc, Dir: d.Index}
	}
	text := ent.Value.Text
	for len(text) > 0 && text[len(text)-1] == 0 {
		text = text[:len(text)-1]
	}
	return text, nil
}

// File is a parsed container. Header, Directories and the entry values are
// read-only reconstructions of on-disk state, rebuilt fresh on every Open.
type File struct {
	path string
	src  dataSource
	size int64

	Header      Header
	Directories []*Directory

	label *AuxImage
	macro *AuxImage
}

// Open parses the container at path: header, the full directory chain, and
// the label/macro classification. The returned File keeps a read handle open
// until Close.
func Open(path string) (*File, error) {
	osf, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	info, err := osf.Stat()
	if err != nil {
		osf.Close()
		return nil, err
	}
	src := newBlockSource(osf, info.Size(), minMetaBlockSize)
	f := &File{path: path, src: src, size: src.Size()}
	if err := f.parse(); err != nil {
		src.Close()
		return nil, err
	}
	if err := f.Locate(DefaultClassifiers()); err != nil {
		src.Close()
		return nil, err
	}
	return f, nil
}

// ParseBlob parses an in-memory replacement container. No label/macro
// classification is attempted; the blob is expected to hold a single
// directory describing its own pixel strip.
func ParseBlob(data []byte) (*File, error) {
	f := &File{src: &bytesSource{data: data}, size: int64(len(data))}
	if err := f.parse(); err != nil {
		return nil, err
	}
	return f, nil
}

// Close releases the underlying handle.
func (f *File) Close() error {
	if f.src == nil {
		return nil
	}
	err := f.src.Close()
	f.src = nil
	return err
}

// Path returns the file path the container was opened from. Empty for blobs.
func (f *File) Path() string {
	return f.path
}

// Size returns the container length in bytes.
func (f *File) Size() int64 {
	return f.size
}

func (f *File) parse() error {
	buf, err := sliceExact(f.src, 0, headerSize, "header")
	if err != nil {
		return err
	}
	hdr, err := ParseHeader(buf)
	if err != nil {
		return err
	}
	f.Header = hdr

	seen := make(map[uint64]bool)
	next := hdr.FirstDirOffset
	for next != 0 {
		if seen[next] {
			return &FormatError{Field: "next directory offset", Value: next}
		}
		seen[next] = true
		if len(f.Directories) >= maxDirectories {
			return &FormatError{Field: "directory count", Value: uint64(len(f.Directories))}
		}
		dir, err := f.readDirectory(int64(next), len(f.Directories)+1)
		if err != nil {
			return err
		}
		f.Directories = append(f.Directories, dir)
		next = dir.NextOffset
	}
	return nil
}

// ParseHeader validates the fixed 16-byte preamble. Any deviation is a fatal
// FormatError carrying the offending field and observed value.
func ParseHeader(buf []byte) (Header, error) {
	var hdr Header
	if len(buf) < headerSize {
		return hdr, &TruncatedDataError{Offset: 0, Need: headerSize, What: "header"}
	}
	if order := binary.LittleEndian.Uint16(buf[0:2]); order != byteOrderMarker {
		return hdr, &FormatError{Field: "byte order marker", Value: uint64(order)}
	}
	if version := binary.LittleEndian.Uint16(buf[2:4]); version != bigtiffVersion {
		return hdr, &FormatError{Field: "version", Value: uint64(version)}
	}
	if offsetSize := binary.LittleEndian.Uint16(buf[4:6]); offsetSize != offsetFieldSize {
		return hdr, &FormatError{Field: "offset size", Value: uint64(offsetSize)}
	}
	if reserved := binary.LittleEndian.Uint16(buf[6:8]); reserved != 0 {
		return hdr, &FormatError{Field: "reserved", Value: uint64(reserved)}
	}
	hdr.FirstDirOffset = binary.LittleEndian.Uint64(buf[8:16])
	return hdr, nil
}

func (f *File) readDirectory(offset int64, index int) (*Directory, error) {
	countBuf, err := sliceExact(f.src, offset, 8, "directory entry count")
	if err != nil {
		return nil, err
	}
	count := binary.LittleEndian.Uint64(countBuf)
	if count > uint64(f.size)/entrySize {
		return nil, &FormatError{Field: "directory entry count", Value: count}
	}

	dir := &Directory{Index: index, Offset: offset, Entries: make([]TagEntry, 0, count)}
	pos := offset + 8
	for i := uint64(0); i < count; i++ {
		rec, err := sliceExact(f.src, pos, entrySize, "tag entry")
		if err != nil {
			return nil, err
		}
		ent := TagEntry{
			Tag:      binary.LittleEndian.Uint16(rec[0:2]),
			Type:     binary.LittleEndian.Uint16(rec[2:4]),
			Count:    binary.LittleEndian.Uint64(rec[4:12]),
			TagPos:   pos,
			ValuePos: pos + 12,
			Raw:      binary.LittleEndian.Uint64(rec[12:20]),
		}
		slot := make([]byte, 8)
		copy(slot, rec[12:20])
		if err := f.decodeValue(&ent, slot); err != nil {
			return nil, err
		}
		dir.Entries = append(dir.Entries, ent)
		pos += entrySize
	}

	nextBuf, err := sliceExact(f.src, pos, 8, "next directory offset")
	if err != nil {
		return nil, err
	}
	dir.NextPos = pos
	dir.NextOffset = binary.LittleEndian.Uint64(nextBuf)
	return dir, nil
}
