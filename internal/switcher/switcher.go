// Package switcher orchestrates a single-slide label switch: parse, optional
// de-identification, replacement rendering, and the in-place splice.
package switcher

import (
	"fmt"

	"example.com/svslabel/internal/bigtiff"
	"example.com/svslabel/internal/common"
	"example.com/svslabel/internal/label"
)

// Options describe one slide mutation. The caller must hold exclusive access
// to the slide for the duration: the writes are not transactional and a crash
// mid-splice corrupts the file.
type Options struct {
	SlidePath string

	// RemoveOriginal zeroes the original label and macro strips before the
	// replacement splice.
	RemoveOriginal bool

	QRText string
	Lines  []string

	Guard    bigtiff.Guard
	Geometry label.Geometry

	// Audit, when non-nil, receives one JSONL entry per destructive write.
	Audit *common.OpLog
}

// Switch performs the full label switch on one slide.
func Switch(opts Options) error {
	if err := opts.Guard.Check(opts.SlidePath); err != nil {
		return err
	}

	var beforeSHA string
	if opts.Audit != nil {
		sha, _, err := common.Sha256OfFile(opts.SlidePath)
		if err != nil {
			return fmt.Errorf("hash slide: %w", err)
		}
		beforeSHA = sha
	}

	f, err := bigtiff.Open(opts.SlidePath)
	if err != nil {
		return err
	}
	defer f.Close()

	if opts.RemoveOriginal {
		if err := deIdentify(f, opts.Guard, opts.Audit); err != nil {
			return err
		}
	}

	builder := label.NewBuilder(opts.Geometry)
	labelBlob, err := builder.Label(label.TextParams{QRText: opts.QRText, Lines: opts.Lines})
	if err != nil {
		return fmt.Errorf("build label: %w", err)
	}
	macroBlob, err := builder.Macro()
	if err != nil {
		return fmt.Errorf("build macro: %w", err)
	}

	if err := f.SpliceAux(opts.Guard, labelBlob, macroBlob); err != nil {
		return err
	}

	if opts.Audit != nil {
		afterSHA, _, err := common.Sha256OfFile(opts.SlidePath)
		if err != nil {
			return fmt.Errorf("hash slide: %w", err)
		}
		lbl, _ := f.Label()
		entry := common.OpEntry{
			Op:        common.OpSplice,
			Path:      opts.SlidePath,
			BeforeSHA: beforeSHA,
			AfterSHA:  afterSHA,
			Detail:    fmt.Sprintf("label %d bytes, macro %d bytes", len(labelBlob), len(macroBlob)),
		}
		if lbl != nil {
			entry.Offset = lbl.Dir.Offset
		}
		if err := opts.Audit.Append(entry); err != nil {
			return fmt.Errorf("append audit: %w", err)
		}
	}
	return nil
}

// DeIdentify zeroes the label and macro strips of one slide without writing
// a replacement.
func DeIdentify(path string, g bigtiff.Guard, audit *common.OpLog) error {
	if err := g.Check(path); err != nil {
		return err
	}
	f, err := bigtiff.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return deIdentify(f, g, audit)
}

func deIdentify(f *bigtiff.File, g bigtiff.Guard, audit *common.OpLog) error {
	label, err := f.Label()
	if err != nil {
		return err
	}
	macro, err := f.Macro()
	if err != nil {
		return err
	}
	if err := f.ZeroAuxStrips(g); err != nil {
		return err
	}
	if audit != nil {
		for _, aux := range []*bigtiff.AuxImage{label, macro} {
			err := audit.Append(common.OpEntry{
				Op:     common.OpZeroFill,
				Path:   f.Path(),
				Offset: aux.StripOffset,
				Length: aux.StripByteCount,
				Detail: string(aux.Role),
			})
			if err != nil {
				return fmt.Errorf("append audit: %w", err)
			}
		}
	}
	return nil
}
