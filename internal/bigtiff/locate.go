package bigtiff

import "bytes"

// Role names one of the two auxiliary sub-images.
type Role string

const (
	RoleLabel Role = "label"
	RoleMacro Role = "macro"
)

// AuxImage describes a located auxiliary sub-image: its directory and the
// strip range holding its pixel bytes.
type AuxImage struct {
	Role           Role
	Dir            *Directory
	StripOffset    int64
	StripByteCount int64
}

// Classifier decides whether a candidate directory is the auxiliary image
// for a role. The candidate itself is chosen by chain position (second-to-
// last for label, last for macro); only the acceptance test is pluggable, so
// other producers' conventions can be supported without touching the reader.
type Classifier struct {
	Role    Role
	Matches func(d *Directory) bool
}

// DefaultClassifiers implements the Aperio convention: labels are LZW
// compressed or carry "label" in their description, macros are JPEG
// compressed or carry "macro".
func DefaultClassifiers() []Classifier {
	return []Classifier{
		{Role: RoleLabel, Matches: func(d *Directory) bool {
			if code, ok := compressionCode(d); ok && code == CompressionLZW {
				return true
			}
			return descriptionContains(d, "label", "Label")
		}},
		{Role: RoleMacro, Matches: func(d *Directory) bool {
			if code, ok := compressionCode(d); ok && isJPEGFamily(code) {
				return true
			}
			return descriptionContains(d, "macro", "Macro")
		}},
	}
}

func compressionCode(d *Directory) (uint64, bool) {
	ent, ok := d.Entry(TagCompression)
	if !ok {
		return 0, false
	}
	return ent.Raw, true
}

func descriptionContains(d *Directory, subs ...string) bool {
	desc, err := d.Description()
	if err != nil {
		// Absent description means the test is non-matching, never an error.
		return false
	}
	for _, sub := range subs {
		if bytes.Contains(desc, []byte(sub)) {
			return true
		}
	}
	return false
}

// Locate classifies the label and macro directories using the supplied
// strategies. Classification misses leave the descriptor unset; a matched
// candidate whose strip tags are absent is a fatal MissingTagError.
func (f *File) Locate(classifiers []Classifier) error {
	f.label = nil
	f.macro = nil
	n := len(f.Directories)
	for _, c := range classifiers {
		var candidate *Directory
		switch c.Role {
		case RoleLabel:
			if n >= 2 {
				candidate = f.Directories[n-2]
			}
		case RoleMacro:
			if n >= 1 {
				candidate = f.Directories[n-1]
			}
		}
		if candidate == nil || c.Matches == nil || !c.Matches(candidate) {
			continue
		}
		aux, err := auxFromDirectory(c.Role, candidate)
		if err != nil {
			return err
		}
		switch c.Role {
		case RoleLabel:
			f.label = aux
		case RoleMacro:
			f.macro = aux
		}
	}
	return nil
}

func auxFromDirectory(role Role, d *Directory) (*AuxImage, error) {
	offsets, ok := d.Entry(TagStripOffsets)
	if !ok {
		return nil, &MissingTagError{Tag: TagStripOffsets, Dir: d.Index}
	}
	counts, ok := d.Entry(TagStripByteCounts)
	if !ok {
		return nil, &MissingTagError{Tag: TagStripByteCounts, Dir: d.Index}
	}
	// Auxiliary images are written as a single strip, so the raw slot holds
	// the offset and count directly.
	return &AuxImage{
		Role:           role,
		Dir:            d,
		StripOffset:    int64(offsets.Raw),
		StripByteCount: int64(counts.Raw),
	}, nil
}

// Label returns the located label descriptor or an AuxImageNotFoundError.
func (f *File) Label() (*AuxImage, error) {
	if f.label == nil {
		return nil, &AuxImageNotFoundError{Role: RoleLabel}
	}
	return f.label, nil
}

// Macro returns the located macro descriptor or an AuxImageNotFoundError.
func (f *File) Macro() (*AuxImage, error) {
	if f.macro == nil {
		return nil, &AuxImageNotFoundError{Role: RoleMacro}
	}
	return f.macro, nil
}

// ReadAuxStrip returns the raw pixel bytes of the located auxiliary image.
func (f *File) ReadAuxStrip(role Role) ([]byte, error) {
	var aux *AuxImage
	var err error
	switch role {
	case RoleMacro:
		aux, err = f.Macro()
	default:
		aux, err = f.Label()
	}
	if err != nil {
		return nil, err
	}
	buf, err := sliceExact(f.src, aux.StripOffset, int(aux.StripByteCount), "strip data")
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), buf...), nil
}
