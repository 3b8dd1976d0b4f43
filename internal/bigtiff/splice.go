package bigtiff

import (
	"fmt"
	"os"
	"strings"
)

// Guard refuses destructive operations on paths carrying any of the
// configured protected markers. The check runs before any byte is written.
type Guard struct {
	Markers []string
}

// Check returns a ProtectedPathError when path matches a marker.
func (g Guard) Check(path string) error {
	for _, marker := range g.Markers {
		if marker == "" {
			continue
		}
		if strings.Contains(path, marker) {
			return &ProtectedPathError{Path: path, Marker: marker}
		}
	}
	return nil
}

const zeroChunkSize = 1 << 20

// ZeroAuxStrips overwrites the label and macro pixel strips with zero bytes
// in place, leaving the file length unchanged. Both auxiliary images must
// have been located; a crash partway through leaves the strips partially
// zeroed but the container structurally intact.
func (f *File) ZeroAuxStrips(g Guard) error {
	if err := g.Check(f.path); err != nil {
		return err
	}
	label, err := f.Label()
	if err != nil {
		return err
	}
	macro, err := f.Macro()
	if err != nil {
		return err
	}

	w, err := os.OpenFile(f.path, os.O_RDWR, 0)
	if err != nil {
		return err
	}
	defer w.Close()
	info, err := w.Stat()
	if err != nil {
		return err
	}
	for _, aux := range []*AuxImage{label, macro} {
		if err := zeroRange(w, info.Size(), aux.StripOffset, aux.StripByteCount); err != nil {
			return fmt.Errorf("zero %s strip: %w", aux.Role, err)
		}
	}
	return w.Sync()
}

func zeroRange(w *os.File, size, offset, length int64) error {
	if offset < 0 || length < 0 {
		return fmt.Errorf("invalid strip range [%d,%d)", offset, offset+length)
	}
	if offset+length > size {
		return fmt.Errorf("strip range [%d,%d) exceeds file size %d", offset, offset+length, size)
	}
	zeros := make([]byte, zeroChunkSize)
	for length > 0 {
		chunk := int64(len(zeros))
		if chunk > length {
			chunk = length
		}
		if _, err := w.WriteAt(zeros[:chunk], offset); err != nil {
			return err
		}
		offset += chunk
		length -= chunk
	}
	return nil
}

// SpliceAux overwrites the tail of the target file with the relocated label
// and macro replacement blobs. The label blob (header stripped) is written at
// the original label directory's offset; the macro blob follows at the
// chained next-directory position the label relocation produced. This is a
// direct overwrite, not an insert: writes past the prior end of file extend
// it, and a shorter replacement leaves stray trailing bytes behind. Callers
// must hold exclusive access for the duration.
func (f *File) SpliceAux(g Guard, labelBlob, macroBlob []byte) error {
	if err := g.Check(f.path); err != nil {
		return err
	}
	label, err := f.Label()
	if err != nil {
		return err
	}
	if len(labelBlob) <= headerSize || len(macroBlob) <= headerSize {
		return fmt.Errorf("replacement blob shorter than %d-byte header", headerSize)
	}

	// Relocation mutates, and a plan is only valid for one insertion point,
	// so work on private copies of the callers' blobs.
	labelCopy := append([]byte(nil), labelBlob...)
	macroCopy := append([]byte(nil), macroBlob...)

	insert := label.Dir.Offset
	macroInsert, err := Relocate(labelCopy, RoleLabel, insert)
	if err != nil {
		return fmt.Errorf("relocate label blob: %w", err)
	}
	if _, err := Relocate(macroCopy, RoleMacro, macroInsert); err != nil {
		return fmt.Errorf("relocate macro blob: %w", err)
	}

	w, err := os.OpenFile(f.path, os.O_RDWR, 0)
	if err != nil {
		return err
	}
	defer w.Close()
	if _, err := w.WriteAt(labelCopy[headerSize:], insert); err != nil {
		return fmt.Errorf("write label content: %w", err)
	}
	if _, err := w.WriteAt(macroCopy[headerSize:], macroInsert); err != nil {
		return fmt.Errorf("write macro content: %w", err)
	}
	return w.Sync()
}
