package report

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"example.com/svslabel/internal/bigtiff"
)

func TestSlideHashToQR(t *testing.T) {
	png, err := SlideHashToQR("ba7816bf8f01", 128)
	if err != nil {
		t.Fatalf("SlideHashToQR: %v", err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Fatal("output is not a PNG")
	}
}

func TestSlideHashToQRRejectsEmpty(t *testing.T) {
	if _, err := SlideHashToQR("  zz--  ", 128); err == nil {
		t.Fatal("hash without hex characters should be rejected")
	}
}

func TestSanitizeHash(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "ab:cd ef", want: "ABCDEF"},
		{in: " 0123 ", want: "0123"},
		{in: "xyz", want: ""},
	}
	for _, tc := range tests {
		if got := sanitizeHash(tc.in); got != tc.want {
			t.Fatalf("sanitizeHash(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSaveInventoryPDF(t *testing.T) {
	f, err := bigtiff.ParseBlob(syntheticContainer())
	if err != nil {
		t.Fatalf("ParseBlob: %v", err)
	}
	if err := f.Locate(bigtiff.DefaultClassifiers()); err != nil {
		t.Fatalf("Locate: %v", err)
	}

	out := filepath.Join(t.TempDir(), "inventory.pdf")
	if err := SaveInventoryPDF(f, "ba7816bf8f01cfea414140de5dae2223", out); err != nil {
		t.Fatalf("SaveInventoryPDF: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read pdf: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatal("output is not a PDF")
	}
	if len(data) < 1024 {
		t.Fatalf("pdf suspiciously small: %d bytes", len(data))
	}
}

// syntheticContainer assembles a two-directory container whose last
// directories classify as label and macro.
func syntheticContainer() []byte {
	le := binary.LittleEndian
	buf := make([]byte, 16)
	le.PutUint16(buf[0:2], 0x4949)
	le.PutUint16(buf[2:4], 43)
	le.PutUint16(buf[4:6], 8)

	patchPos := 8
	addDir := func(entries [][4]uint64) {
		le.PutUint64(buf[patchPos:], uint64(len(buf)))
		var scratch [8]byte
		le.PutUint64(scratch[:], uint64(len(entries)))
		buf = append(buf, scratch[:]...)
		for _, e := range entries {
			var rec [20]byte
			le.PutUint16(rec[0:2], uint16(e[0]))
			le.PutUint16(rec[2:4], uint16(e[1]))
			le.PutUint64(rec[4:12], e[2])
			le.PutUint64(rec[12:20], e[3])
			buf = append(buf, rec[:]...)
		}
		patchPos = len(buf)
		buf = append(buf, make([]byte, 8)...)
	}

	strip := uint64(len(buf))
	buf = append(buf, bytes.Repeat([]byte{0xEE}, 12)...)
	addDir([][4]uint64{
		{uint64(bigtiff.TagCompression), 3, 1, bigtiff.CompressionLZW},
		{uint64(bigtiff.TagStripOffsets), 16, 1, strip},
		{uint64(bigtiff.TagStripByteCounts), 16, 1, 12},
	})
	addDir([][4]uint64{
		{uint64(bigtiff.TagCompression), 3, 1, bigtiff.CompressionJPEG},
		{uint64(bigtiff.TagStripOffsets), 16, 1, strip},
		{uint64(bigtiff.TagStripByteCounts), 16, 1, 12},
	})
	return buf
}
