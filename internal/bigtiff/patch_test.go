package bigtiff

import (
	"bytes"
	"encoding/binary"
	"testing"
)

// buildReplacementBlob assembles a standalone single-directory blob: header,
// directory, external description, pixel strip. Returns the blob plus the
// blob-relative description and strip offsets.
func buildReplacementBlob(t *testing.T, desc string, strip []byte) ([]byte, int64, int64) {
	t.Helper()
	b := newContainerBuilder()
	descOff := b.appendData([]byte(desc))
	stripOff := b.appendData(strip)
	b.addDirectory([]testEntry{
		{tag: TagCompression, typ: typeShort, count: 1, slot: CompressionNone},
		{tag: TagImageDesc, typ: typeASCII, count: uint64(len(desc)), slot: uint64(descOff)},
		{tag: TagStripOffsets, typ: typeLong8, count: 1, slot: uint64(stripOff)},
		{tag: TagStripByteCounts, typ: typeLong8, count: 1, slot: uint64(len(strip))},
	})
	return b.buf, descOff, stripOff
}

func TestPlanRelocation(t *testing.T) {
	desc := "a replacement label description\x00"
	strip := bytes.Repeat([]byte{0x5A}, 64)
	blob, descOff, stripOff := buildReplacementBlob(t, desc, strip)

	const insert = 1000
	plan, err := PlanRelocation(blob, RoleLabel, insert)
	if err != nil {
		t.Fatalf("PlanRelocation: %v", err)
	}

	shift := uint64(insert - headerSize)
	want := map[uint64]uint64{
		uint64(descOff):  uint64(descOff) + shift,
		uint64(stripOff): uint64(stripOff) + shift,
	}
	if len(plan.Ops) != len(want) {
		t.Fatalf("op count = %d, want %d: %+v", len(plan.Ops), len(want), plan.Ops)
	}
	parsed, err := ParseBlob(blob)
	if err != nil {
		t.Fatalf("ParseBlob: %v", err)
	}
	dir := parsed.Directories[0]
	for _, op := range plan.Ops {
		var found *TagEntry
		for i := range dir.Entries {
			if dir.Entries[i].ValuePos == op.SlotPos {
				found = &dir.Entries[i]
			}
		}
		if found == nil {
			t.Fatalf("op slot %d matches no entry", op.SlotPos)
		}
		if wantVal, ok := want[found.Raw]; !ok || op.Value != wantVal {
			t.Fatalf("tag %d: op value = %d, want %d", found.Tag, op.Value, want[found.Raw])
		}
	}

	if plan.NextDirOffset != uint64(len(blob)+insert) {
		t.Fatalf("NextDirOffset = %d, want %d", plan.NextDirOffset, len(blob)+insert)
	}
}

func TestPlanRelocationSkipsInlineValues(t *testing.T) {
	strip := []byte{1, 2, 3, 4}
	blob, _, _ := buildReplacementBlob(t, "d\x00", strip)

	plan, err := PlanRelocation(blob, RoleMacro, 500)
	if err != nil {
		t.Fatalf("PlanRelocation: %v", err)
	}
	// The 2-byte description is inline; only the strip-offset slot moves. The
	// strip byte count is inline and not an offset, so it stays.
	if len(plan.Ops) != 1 {
		t.Fatalf("op count = %d, want 1: %+v", len(plan.Ops), plan.Ops)
	}
}

func TestRelocateMacroReturnsZero(t *testing.T) {
	// Inline description: a relocated blob's external pointers reference the
	// target file, so only fully inline blobs reparse standalone.
	blob, _, _ := buildReplacementBlob(t, "m\x00", bytes.Repeat([]byte{9}, 16))
	next, err := Relocate(blob, RoleMacro, 800)
	if err != nil {
		t.Fatalf("Relocate: %v", err)
	}
	if next != 0 {
		t.Fatalf("macro relocation returned chain offset %d, want 0", next)
	}
	parsed, err := ParseBlob(blob)
	if err != nil {
		t.Fatalf("ParseBlob after relocation: %v", err)
	}
	if parsed.Directories[0].NextOffset != 0 {
		t.Fatalf("macro next pointer = %d, want 0", parsed.Directories[0].NextOffset)
	}
}

func TestRelocateNotComposable(t *testing.T) {
	blob, _, stripOff := buildReplacementBlob(t, "composability check\x00", bytes.Repeat([]byte{7}, 32))

	parsed, err := ParseBlob(blob)
	if err != nil {
		t.Fatalf("ParseBlob: %v", err)
	}
	stripEnt, ok := parsed.Directories[0].Entry(TagStripOffsets)
	if !ok {
		t.Fatal("no strip offset entry")
	}
	slotPos := stripEnt.ValuePos

	first := append([]byte(nil), blob...)
	if _, err := Relocate(first, RoleLabel, 1000); err != nil {
		t.Fatalf("first Relocate: %v", err)
	}
	// Re-patching the already-patched copy for a new insertion point shifts
	// the offsets twice; a fresh copy is required instead.
	twice := append([]byte(nil), first...)
	if _, err := Relocate(twice, RoleLabel, 2000); err != nil {
		t.Fatalf("second Relocate: %v", err)
	}
	fresh := append([]byte(nil), blob...)
	if _, err := Relocate(fresh, RoleLabel, 2000); err != nil {
		t.Fatalf("fresh Relocate: %v", err)
	}

	stripSlot := func(data []byte) uint64 {
		return binary.LittleEndian.Uint64(data[slotPos:])
	}
	wantFresh := uint64(stripOff) + 2000 - headerSize
	if got := stripSlot(fresh); got != wantFresh {
		t.Fatalf("fresh strip offset = %d, want %d", got, wantFresh)
	}
	if got := stripSlot(twice); got == wantFresh {
		t.Fatal("double-patched copy should not equal the fresh relocation")
	}
}

func TestPlanRelocationRejects(t *testing.T) {
	blob, _, _ := buildReplacementBlob(t, "x\x00", []byte{1})
	if _, err := PlanRelocation(blob, RoleLabel, headerSize-1); err == nil {
		t.Fatal("insertion point inside the header region should be rejected")
	}

	b := newContainerBuilder()
	b.addDirectory([]testEntry{{tag: TagImageWidth, typ: typeLong, count: 1, slot: 1}})
	b.addDirectory([]testEntry{{tag: TagImageWidth, typ: typeLong, count: 1, slot: 2}})
	if _, err := PlanRelocation(b.buf, RoleLabel, 1000); err == nil {
		t.Fatal("multi-directory blob should be rejected")
	}
}

func TestApplyBoundsChecked(t *testing.T) {
	plan := &PatchPlan{Ops: []PatchOp{{SlotPos: 100, Value: 1}}}
	if err := plan.Apply(make([]byte, 50)); err == nil {
		t.Fatal("out-of-range slot should be rejected")
	}
}

func TestApplyWritesSlots(t *testing.T) {
	buf := make([]byte, 32)
	plan := &PatchPlan{
		Ops:           []PatchOp{{SlotPos: 8, Value: 0xDEADBEEF}},
		NextDirPos:    24,
		NextDirOffset: 4242,
		patchNext:     true,
	}
	if err := plan.Apply(buf); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got := binary.LittleEndian.Uint64(buf[8:]); got != 0xDEADBEEF {
		t.Fatalf("slot value = %#x", got)
	}
	if got := binary.LittleEndian.Uint64(buf[24:]); got != 4242 {
		t.Fatalf("next pointer = %d, want 4242", got)
	}
}
