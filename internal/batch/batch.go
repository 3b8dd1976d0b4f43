// Package batch drives label switches across many slides from a CSV sheet.
package batch

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"example.com/svslabel/internal/bigtiff"
	"example.com/svslabel/internal/common"
	"example.com/svslabel/internal/label"
	"example.com/svslabel/internal/switcher"
)

// DefaultPathColumn is the sheet column holding slide names or paths.
const DefaultPathColumn = "File Location"

var textColumns = []string{"line1", "line2", "line3", "line4"}

// Record is one row of the batch sheet. Missing optional columns leave the
// corresponding fields empty, meaning "omit".
type Record struct {
	SlidePath string
	QRText    string
	Lines     []string
}

// ReadCSV loads records from a CSV sheet. The header row must contain
// pathColumn; the "QR" and "line1".."line4" columns are optional. Rows whose
// path cell is empty are skipped.
func ReadCSV(path, pathColumn string) ([]Record, error) {
	if pathColumn == "" {
		pathColumn = DefaultPathColumn
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	_, ok := cols[pathColumn]
	if !ok {
		return nil, fmt.Errorf("sheet missing %q column", pathColumn)
	}

	cell := func(row []string, name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	var records []Record
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		slide := cell(row, pathColumn)
		if slide == "" {
			continue
		}
		rec := Record{SlidePath: slide, QRText: cell(row, "QR")}
		for _, col := range textColumns {
			text := cell(row, col)
			if len(text) > label.MaxLineLength {
				common.Logf("line %q may not fit on label (%d chars, recommended max %d)", text, len(text), label.MaxLineLength)
			}
			rec.Lines = append(rec.Lines, text)
		}
		records = append(records, rec)
	}
	return records, nil
}

// Options control a batch run.
type Options struct {
	// SlideDir, when set, rebases each record's slide name into this
	// directory, appending the .svs suffix when absent. Useful when files
	// moved but the sheet kept only names.
	SlideDir string

	RemoveOriginal bool
	Guard          bigtiff.Guard
	Geometry       label.Geometry
	Audit          *common.OpLog
}

// Summary reports the outcome of a batch run.
type Summary struct {
	Processed int
	Failed    int
}

// Run switches labels for every record sequentially. One record's failure is
// logged and does not abort the rest of the batch.
func Run(records []Record, opts Options) Summary {
	var sum Summary
	for _, rec := range records {
		slidePath := resolveSlidePath(rec.SlidePath, opts.SlideDir)
		err := switcher.Switch(switcher.Options{
			SlidePath:      slidePath,
			RemoveOriginal: opts.RemoveOriginal,
			QRText:         rec.QRText,
			Lines:          rec.Lines,
			Guard:          opts.Guard,
			Geometry:       opts.Geometry,
			Audit:          opts.Audit,
		})
		if err != nil {
			common.Logf("switch %s: %v", slidePath, err)
			sum.Failed++
			continue
		}
		sum.Processed++
	}
	return sum
}

func resolveSlidePath(slide, slideDir string) string {
	if slideDir == "" {
		return slide
	}
	name := filepath.Base(slide)
	if !strings.EqualFold(filepath.Ext(name), ".svs") {
		name += ".svs"
	}
	return filepath.Join(slideDir, name)
}
