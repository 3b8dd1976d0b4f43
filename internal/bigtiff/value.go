package bigtiff

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
)

// Rational is a numerator/denominator pair as stored for RATIONAL and
// SRATIONAL values.
type Rational struct {
	Num uint64
	Den uint64
}

// TagValue is the decoded form of a tag entry. Values whose encoded length
// exceeds 8 bytes are materialized only for the eager-tag allow-list; for
// everything else Materialized is false and byte-level access goes through
// the entry's Raw offset and encoded length.
type TagValue struct {
	Materialized bool

	Ints      []uint64
	SInts     []int64
	Floats    []float64
	Rationals []Rational
	Text      []byte
}

// decodeValue fills ent.Value. Values of 8 bytes or fewer decode from the
// in-place slot; larger values decode from the pointer target when the tag is
// on the eager list.
func (f *File) decodeValue(ent *TagEntry, slot []byte) error {
	length, err := ent.EncodedLen()
	if err != nil {
		return err
	}
	ft := fieldTypes[ent.Type]

	var raw []byte
	switch {
	case length <= 8:
		raw = slot[:length]
	case eagerTags[ent.Tag]:
		offset := int64(ent.Raw)
		if offset < 0 || length > uint64(f.src.Size()) || offset > f.src.Size()-int64(length) {
			need := length
			if need > math.MaxInt {
				need = math.MaxInt
			}
			return &TruncatedDataError{Offset: offset, Need: int(need), What: "tag value"}
		}
		buf, err := sliceExact(f.src, offset, int(length), "tag value")
		if err != nil {
			return err
		}
		raw = buf
	default:
		// Not materialized: unbounded values (pixel data offsets for
		// pyramid levels, ICC profiles) stay as offset/length.
		return nil
	}

	ent.Value = decodeScalars(ft, raw, ent.Count)
	return nil
}

func decodeScalars(ft fieldType, raw []byte, count uint64) TagValue {
	v := TagValue{Materialized: true}
	switch ft.Kind {
	case kindBytes:
		v.Text = append([]byte(nil), raw...)
	case kindUnsigned:
		v.Ints = make([]uint64, 0, count)
		for i := uint64(0); i < count; i++ {
			v.Ints = append(v.Ints, readUint(raw[i*ft.Size:], ft.Size))
		}
	case kindSigned:
		v.SInts = make([]int64, 0, count)
		for i := uint64(0); i < count; i++ {
			v.SInts = append(v.SInts, readInt(raw[i*ft.Size:], ft.Size))
		}
	case kindRational:
		v.Rationals = make([]Rational, 0, count)
		for i := uint64(0); i < count; i++ {
			pair := raw[i*8:]
			v.Rationals = append(v.Rationals, Rational{
				Num: uint64(binary.LittleEndian.Uint32(pair[0:4])),
				Den: uint64(binary.LittleEndian.Uint32(pair[4:8])),
			})
		}
	case kindFloat:
		v.Floats = make([]float64, 0, count)
		for i := uint64(0); i < count; i++ {
			if ft.Size == 4 {
				bits := binary.LittleEndian.Uint32(raw[i*4:])
				v.Floats = append(v.Floats, float64(math.Float32frombits(bits)))
			} else {
				bits := binary.LittleEndian.Uint64(raw[i*8:])
				v.Floats = append(v.Floats, math.Float64frombits(bits))
			}
		}
	}
	return v
}

func readUint(b []byte, size uint64) uint64 {
	switch size {
	case 1:
		return uint64(b[0])
	case 2:
		return uint64(binary.LittleEndian.Uint16(b))
	case 4:
		return uint64(binary.LittleEndian.Uint32(b))
	default:
		return binary.LittleEndian.Uint64(b)
	}
}

func readInt(b []byte, size uint64) int64 {
	switch size {
	case 1:
		return int64(int8(b[0]))
	case 2:
		return int64(int16(binary.LittleEndian.Uint16(b)))
	case 4:
		return int64(int32(binary.LittleEndian.Uint32(b)))
	default:
		return int64(binary.LittleEndian.Uint64(b))
	}
}

// Display renders the value for the diagnostic dump.
func (e *TagEntry) Display() string {
	if !e.Value.Materialized {
		length, err := e.EncodedLen()
		if err != nil {
			return "(unknown type)"
		}
		return fmt.Sprintf("(%d bytes at offset %d, not materialized)", length, e.Raw)
	}
	v := e.Value
	switch {
	case v.Text != nil:
		return strings.TrimRight(string(v.Text), "\x00")
	case v.SInts != nil:
		return fmt.Sprint(v.SInts)
	case v.Floats != nil:
		return fmt.Sprint(v.Floats)
	case v.Rationals != nil:
		parts := make([]string, len(v.Rationals))
		for i, r := range v.Rationals {
			parts[i] = fmt.Sprintf("%d/%d", r.Num, r.Den)
		}
		return strings.Join(parts, " ")
	default:
		return fmt.Sprint(v.Ints)
	}
}
