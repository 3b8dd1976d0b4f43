package label

import (
	"bytes"
	"image"
	"testing"

	"example.com/svslabel/internal/bigtiff"
)

func TestBuilderLabelBlob(t *testing.T) {
	b := NewBuilder(Geometry{})
	blob, err := b.Label(TextParams{Lines: []string{"SLIDE-001", "", "H&E"}})
	if err != nil {
		t.Fatalf("Label: %v", err)
	}

	f, err := bigtiff.ParseBlob(blob)
	if err != nil {
		t.Fatalf("ParseBlob: %v", err)
	}
	if got := len(f.Directories); got != 1 {
		t.Fatalf("directory count = %d, want 1", got)
	}
	dir := f.Directories[0]

	desc, err := dir.Description()
	if err != nil {
		t.Fatalf("Description: %v", err)
	}
	if !bytes.Contains(desc, []byte("label")) {
		t.Fatalf("description %q does not name the label role", desc)
	}
	if !bytes.Contains(desc, []byte("Aperio Image Library")) {
		t.Fatalf("description %q missing the library banner", desc)
	}

	width, _ := dir.Entry(bigtiff.TagImageWidth)
	height, _ := dir.Entry(bigtiff.TagImageLength)
	if width.Value.Ints[0] != 609 || height.Value.Ints[0] != 567 {
		t.Fatalf("dimensions = %dx%d, want 609x567", width.Value.Ints[0], height.Value.Ints[0])
	}

	counts, _ := dir.Entry(bigtiff.TagStripByteCounts)
	if want := uint64(609 * 567 * 3); counts.Raw != want {
		t.Fatalf("strip byte count = %d, want %d", counts.Raw, want)
	}
	offsets, ok := dir.Entry(bigtiff.TagStripOffsets)
	if !ok {
		t.Fatal("no strip offset entry")
	}
	if end := offsets.Raw + counts.Raw; end != uint64(len(blob)) {
		t.Fatalf("strip ends at %d, blob is %d bytes", end, len(blob))
	}
}

func TestBuilderLabelGrowsForQR(t *testing.T) {
	b := NewBuilder(Geometry{})
	blob, err := b.Label(TextParams{QRText: "ABCDEF123456", Lines: []string{"SLIDE-001"}})
	if err != nil {
		t.Fatalf("Label: %v", err)
	}
	f, err := bigtiff.ParseBlob(blob)
	if err != nil {
		t.Fatalf("ParseBlob: %v", err)
	}
	dir := f.Directories[0]
	width, _ := dir.Entry(bigtiff.TagImageWidth)
	height, _ := dir.Entry(bigtiff.TagImageLength)
	if width.Value.Ints[0] != 609*3/2 || height.Value.Ints[0] != 567*3/2 {
		t.Fatalf("dimensions = %dx%d, want %dx%d",
			width.Value.Ints[0], height.Value.Ints[0], 609*3/2, 567*3/2)
	}
}

func TestBuilderMacroBlob(t *testing.T) {
	b := NewBuilder(Geometry{MacroWidth: 20, MacroHeight: 10})
	blob, err := b.Macro()
	if err != nil {
		t.Fatalf("Macro: %v", err)
	}
	f, err := bigtiff.ParseBlob(blob)
	if err != nil {
		t.Fatalf("ParseBlob: %v", err)
	}
	dir := f.Directories[0]

	desc, err := dir.Description()
	if err != nil {
		t.Fatalf("Description: %v", err)
	}
	if !bytes.Contains(desc, []byte("macro")) {
		t.Fatalf("description %q does not name the macro role", desc)
	}

	offsets, _ := dir.Entry(bigtiff.TagStripOffsets)
	counts, _ := dir.Entry(bigtiff.TagStripByteCounts)
	if want := uint64(20 * 10 * 3); counts.Raw != want {
		t.Fatalf("strip byte count = %d, want %d", counts.Raw, want)
	}
	strip := blob[offsets.Raw : offsets.Raw+counts.Raw]
	for i := 0; i < len(strip); i += 3 {
		if strip[i] != 0xFF || strip[i+1] != 0x00 || strip[i+2] != 0x00 {
			t.Fatalf("pixel %d = %02X%02X%02X, want solid red", i/3, strip[i], strip[i+1], strip[i+2])
		}
	}
}

func TestGeometryDefaults(t *testing.T) {
	g := Geometry{}.withDefaults()
	want := Geometry{
		LabelWidth:  609,
		LabelHeight: 567,
		MacroWidth:  1495,
		MacroHeight: 606,
		QRSize:      380,
	}
	if g != want {
		t.Fatalf("defaults = %+v, want %+v", g, want)
	}

	g = Geometry{LabelWidth: 100}.withDefaults()
	if g.LabelWidth != 100 || g.LabelHeight != 567 {
		t.Fatalf("partial override = %+v", g)
	}
}

func TestEncodeBlobRoundTrip(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 2))
	for i := range img.Pix {
		img.Pix[i] = byte(i)
	}
	blob, err := EncodeBlob(img, bigtiff.RoleLabel)
	if err != nil {
		t.Fatalf("EncodeBlob: %v", err)
	}

	f, err := bigtiff.ParseBlob(blob)
	if err != nil {
		t.Fatalf("ParseBlob: %v", err)
	}
	dir := f.Directories[0]
	offsets, _ := dir.Entry(bigtiff.TagStripOffsets)
	counts, _ := dir.Entry(bigtiff.TagStripByteCounts)
	strip := blob[offsets.Raw : offsets.Raw+counts.Raw]
	want := packRGB(img)
	if !bytes.Equal(strip, want) {
		t.Fatal("pixel strip does not round-trip")
	}
	if dir.NextOffset != 0 {
		t.Fatalf("next directory offset = %d, want 0", dir.NextOffset)
	}
}

func TestEncodeBlobRejectsEmptyImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 0, 0))
	if _, err := EncodeBlob(img, bigtiff.RoleMacro); err == nil {
		t.Fatal("empty image should be rejected")
	}
}
