package label

import (
	"encoding/binary"
	"fmt"
	"image"

	"example.com/svslabel/internal/bigtiff"
)

// The blob layout mirrors what the scanner writes for auxiliary images: a
// 16-byte BigTIFF header, one directory, the external description bytes, then
// a single uncompressed RGB strip. All internal pointers are relative to blob
// byte 0; the splice engine relocates them into the target file.
const (
	blobHeaderSize = 16
	blobEntrySize  = 20
	blobEntryCount = 11
)

type blobEntry struct {
	tag   uint16
	typ   uint16
	count uint64
	value uint64
}

// EncodeBlob wraps the image's pixels into a standalone single-directory
// replacement container for the given role.
func EncodeBlob(img *image.RGBA, role bigtiff.Role) ([]byte, error) {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("empty %s image", role)
	}

	pixels := packRGB(img)
	desc := []byte(fmt.Sprintf("Aperio Image Library\n%s %dx%d\x00", role, width, height))

	dirOffset := uint64(blobHeaderSize)
	dirSize := uint64(8 + blobEntryCount*blobEntrySize + 8)
	descOffset := dirOffset + dirSize
	stripOffset := descOffset + uint64(len(desc))

	entries := []blobEntry{
		{tag: bigtiff.TagImageWidth, typ: 4, count: 1, value: uint64(width)},
		{tag: bigtiff.TagImageLength, typ: 4, count: 1, value: uint64(height)},
		{tag: bigtiff.TagBitsPerSample, typ: 3, count: 3, value: packShorts(8, 8, 8)},
		{tag: bigtiff.TagCompression, typ: 3, count: 1, value: bigtiff.CompressionNone},
		{tag: bigtiff.TagPhotometric, typ: 3, count: 1, value: 2},
		{tag: bigtiff.TagImageDesc, typ: 2, count: uint64(len(desc)), value: descOffset},
		{tag: bigtiff.TagStripOffsets, typ: 16, count: 1, value: stripOffset},
		{tag: bigtiff.TagSamplesPerPixel, typ: 3, count: 1, value: 3},
		{tag: bigtiff.TagRowsPerStrip, typ: 4, count: 1, value: uint64(height)},
		{tag: bigtiff.TagStripByteCounts, typ: 16, count: 1, value: uint64(len(pixels))},
		{tag: bigtiff.TagPlanarConfig, typ: 3, count: 1, value: 1},
	}
	if len(entries) != blobEntryCount {
		return nil, fmt.Errorf("entry table has %d entries, want %d", len(entries), blobEntryCount)
	}

	blob := make([]byte, stripOffset+uint64(len(pixels)))
	binary.LittleEndian.PutUint16(blob[0:2], 0x4949)
	binary.LittleEndian.PutUint16(blob[2:4], 43)
	binary.LittleEndian.PutUint16(blob[4:6], 8)
	binary.LittleEndian.PutUint16(blob[6:8], 0)
	binary.LittleEndian.PutUint64(blob[8:16], dirOffset)

	pos := dirOffset
	binary.LittleEndian.PutUint64(blob[pos:], uint64(len(entries)))
	pos += 8
	for _, e := range entries {
		binary.LittleEndian.PutUint16(blob[pos:], e.tag)
		binary.LittleEndian.PutUint16(blob[pos+2:], e.typ)
		binary.LittleEndian.PutUint64(blob[pos+4:], e.count)
		binary.LittleEndian.PutUint64(blob[pos+12:], e.value)
		pos += blobEntrySize
	}
	// Terminal next-directory pointer; the label relocation re-targets it at
	// the spliced macro directory.
	binary.LittleEndian.PutUint64(blob[pos:], 0)

	copy(blob[descOffset:], desc)
	copy(blob[stripOffset:], pixels)
	return blob, nil
}

// packRGB drops the alpha channel, yielding interleaved 8-bit RGB rows.
func packRGB(img *image.RGBA) []byte {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	out := make([]byte, 0, width*height*3)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		row := img.Pix[(y-bounds.Min.Y)*img.Stride : (y-bounds.Min.Y)*img.Stride+width*4]
		for x := 0; x < width; x++ {
			out = append(out, row[x*4], row[x*4+1], row[x*4+2])
		}
	}
	return out
}

func packShorts(a, b, c uint16) uint64 {
	return uint64(a) | uint64(b)<<16 | uint64(c)<<32
}
