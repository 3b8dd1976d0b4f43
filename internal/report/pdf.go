// Package report renders printable inventory sheets for parsed slides.
package report

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"example.com/svslabel/internal/bigtiff"
)

// SaveInventoryPDF renders a per-directory inventory of the parsed container
// into a PDF document. The sha argument, when non-empty, is printed and also
// embedded as a QR code for matching printouts back to files.
func SaveInventoryPDF(f *bigtiff.File, sha, out string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Slide Inventory", false)
	pdf.SetAuthor("svslabel", false)
	pdf.SetCreator("svslabel", false)
	pdf.SetMargins(15, 20, 15)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	addPDFTitle(pdf, "Slide Inventory")
	addSummarySection(pdf, f, sha)
	if sha != "" {
		if err := addHashQR(pdf, sha); err != nil {
			return err
		}
	}
	addDirectorySection(pdf, f)

	if pdf.Err() {
		return pdf.Error()
	}
	return pdf.OutputFileAndClose(out)
}

func addPDFTitle(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, title)
	pdf.Ln(12)
}

func addSummarySection(pdf *gofpdf.Fpdf, f *bigtiff.File, sha string) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Summary")
	pdf.Ln(8)

	labelState := "not identified"
	if aux, err := f.Label(); err == nil {
		labelState = fmt.Sprintf("directory %d", aux.Dir.Index)
	}
	macroState := "not identified"
	if aux, err := f.Macro(); err == nil {
		macroState = fmt.Sprintf("directory %d", aux.Dir.Index)
	}

	pdf.SetFont("Helvetica", "", 11)
	items := []struct {
		label string
		value string
	}{
		{label: "Path", value: emptyFallback(f.Path(), "(in memory)")},
		{label: "Size", value: fmt.Sprintf("%d bytes", f.Size())},
		{label: "Directories", value: strconv.Itoa(len(f.Directories))},
		{label: "First IFD Offset", value: strconv.FormatUint(f.Header.FirstDirOffset, 10)},
		{label: "Label", value: labelState},
		{label: "Macro", value: macroState},
	}
	if sha != "" {
		items = append(items, struct {
			label string
			value string
		}{label: "SHA-256", value: sha})
	}
	for _, item := range items {
		pdf.CellFormat(50, 6, item.label, "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, item.value, "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)
}

func addHashQR(pdf *gofpdf.Fpdf, sha string) error {
	png, err := SlideHashToQR(sha, 256)
	if err != nil {
		return err
	}
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("slide-hash", opts, bytes.NewReader(png))
	x := pdf.GetX()
	y := pdf.GetY()
	pdf.ImageOptions("slide-hash", x, y, 30, 30, false, opts, 0, "")
	pdf.SetY(y + 34)
	return nil
}

func addDirectorySection(pdf *gofpdf.Fpdf, f *bigtiff.File) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Directories")
	pdf.Ln(9)

	headers := []string{"Dir", "Offset", "Entries", "Width", "Height", "Compression", "Description"}
	widths := []float64{12, 26, 16, 18, 18, 32, 58}

	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Helvetica", "B", 10)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	lineHeight := 5.0
	for _, dir := range f.Directories {
		values := []string{
			strconv.Itoa(dir.Index),
			strconv.FormatInt(dir.Offset, 10),
			strconv.Itoa(len(dir.Entries)),
			dimensionValue(dir, bigtiff.TagImageWidth),
			dimensionValue(dir, bigtiff.TagImageLength),
			compressionValue(dir),
			descriptionSnippet(dir),
		}
		renderTableRow(pdf, widths, values, lineHeight)
	}
}

func dimensionValue(dir *bigtiff.Directory, tag uint16) string {
	ent, ok := dir.Entry(tag)
	if !ok {
		return "-"
	}
	return strconv.FormatUint(ent.Raw, 10)
}

func compressionValue(dir *bigtiff.Directory) string {
	ent, ok := dir.Entry(bigtiff.TagCompression)
	if !ok {
		return "-"
	}
	if name := bigtiff.CompressionName(ent.Raw); name != "" {
		return name
	}
	return strconv.FormatUint(ent.Raw, 10)
}

func descriptionSnippet(dir *bigtiff.Directory) string {
	desc, err := dir.Description()
	if err != nil {
		return "-"
	}
	text := strings.ReplaceAll(string(desc), "\n", " ")
	const maxLen = 80
	if len(text) > maxLen {
		text = text[:maxLen] + "..."
	}
	return text
}

func renderTableRow(pdf *gofpdf.Fpdf, widths []float64, values []string, lineHeight float64) {
	xStart := pdf.GetX()
	yStart := pdf.GetY()
	maxLines := 1
	splitCols := make([][]string, len(values))
	for i, val := range values {
		text := strings.TrimSpace(val)
		if text == "" {
			text = "-"
		}
		lines := pdf.SplitText(text, widths[i]-2)
		if len(lines) == 0 {
			lines = []string{""}
		}
		splitCols[i] = lines
		if len(lines) > maxLines {
			maxLines = len(lines)
		}
	}
	rowHeight := float64(maxLines) * lineHeight
	x := xStart
	for i, lines := range splitCols {
		pdf.SetXY(x, yStart)
		cellText := strings.Join(lines, "\n")
		pdf.MultiCell(widths[i], lineHeight, cellText, "1", "L", false)
		x += widths[i]
	}
	pdf.SetXY(xStart, yStart+rowHeight)
}

func emptyFallback(val, fallback string) string {
	if strings.TrimSpace(val) == "" {
		return fallback
	}
	return val
}
