package bigtiff

import (
	"encoding/binary"
	"fmt"
)

// PatchOp rewrites one 8-byte slot inside a replacement blob.
type PatchOp struct {
	SlotPos int64
	Value   uint64
}

// PatchPlan holds the slot rewrites that relocate a standalone replacement
// blob to an absolute insertion point in a target file. A plan is built from
// an unpatched blob, applied once, and discarded: applying a plan computed
// for one insertion point to an already-patched blob produces garbage
// offsets, so callers work from a fresh copy per insertion point.
type PatchPlan struct {
	Ops []PatchOp

	// NextDirOffset, when patchNext is set, re-targets the blob's trailing
	// next-directory pointer so the chain continues at the position where
	// the subsequently spliced blob will land.
	NextDirPos    int64
	NextDirOffset uint64
	patchNext     bool
}

// PlanRelocation computes the rewrites needed for splicing blob at absolute
// position insert, where insert denotes the position of the blob's
// entry-count field once its 16-byte header is stripped. Every external value
// pointer, plus the strip-offset slot regardless of width, moves by
// insert - 16 because the blob's internal pointers are relative to its own
// byte 0. For the label role the plan additionally chains the next-directory
// pointer to end-of-blob + insert, which is where the macro blob is spliced.
func PlanRelocation(blob []byte, role Role, insert int64) (*PatchPlan, error) {
	if insert < headerSize {
		return nil, fmt.Errorf("insertion point %d inside header region", insert)
	}
	parsed, err := ParseBlob(blob)
	if err != nil {
		return nil, err
	}
	if len(parsed.Directories) != 1 {
		return nil, fmt.Errorf("replacement blob has %d directories, want 1", len(parsed.Directories))
	}
	dir := parsed.Directories[0]

	plan := &PatchPlan{}
	for i := range dir.Entries {
		ent := &dir.Entries[i]
		length, err := ent.EncodedLen()
		if err != nil {
			return nil, err
		}
		if length > 8 || ent.Tag == TagStripOffsets {
			plan.Ops = append(plan.Ops, PatchOp{
				SlotPos: ent.ValuePos,
				Value:   ent.Raw + uint64(insert) - headerSize,
			})
		}
	}
	if role == RoleLabel {
		plan.patchNext = true
		plan.NextDirPos = dir.NextPos
		plan.NextDirOffset = uint64(int64(len(blob)) + insert)
	}
	return plan, nil
}

// Apply writes the plan's slot values into blob.
func (p *PatchPlan) Apply(blob []byte) error {
	for _, op := range p.Ops {
		if op.SlotPos < 0 || op.SlotPos+8 > int64(len(blob)) {
			return fmt.Errorf("patch slot at %d outside blob of %d bytes", op.SlotPos, len(blob))
		}
		binary.LittleEndian.PutUint64(blob[op.SlotPos:], op.Value)
	}
	if p.patchNext {
		if p.NextDirPos < 0 || p.NextDirPos+8 > int64(len(blob)) {
			return fmt.Errorf("next-directory slot at %d outside blob of %d bytes", p.NextDirPos, len(blob))
		}
		binary.LittleEndian.PutUint64(blob[p.NextDirPos:], p.NextDirOffset)
	}
	return nil
}

// Relocate patches blob in place for splicing at insert. For the label role
// it returns the macro insertion point (the patched next-directory value);
// for other roles it returns 0. The blob must be unpatched: relocation is not
// composable across insertion points.
func Relocate(blob []byte, role Role, insert int64) (int64, error) {
	plan, err := PlanRelocation(blob, role, insert)
	if err != nil {
		return 0, err
	}
	if err := plan.Apply(blob); err != nil {
		return 0, err
	}
	if plan.patchNext {
		return int64(plan.NextDirOffset), nil
	}
	return 0, nil
}
