package label

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	qrcode "github.com/skip2/go-qrcode"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Geometry controls the pixel dimensions of the rendered replacement images.
// Zero fields fall back to the Aperio GT450 label and macro dimensions.
type Geometry struct {
	LabelWidth  int
	LabelHeight int
	MacroWidth  int
	MacroHeight int
	QRSize      int
}

const (
	defaultLabelWidth  = 609
	defaultLabelHeight = 567
	defaultMacroWidth  = 1495
	defaultMacroHeight = 606
	defaultQRSize      = 380

	textLeftMargin = 28
	textLineStep   = 60
	ruoRightInset  = 150
	ruoTopInset    = 20
)

func (g Geometry) withDefaults() Geometry {
	if g.LabelWidth <= 0 {
		g.LabelWidth = defaultLabelWidth
	}
	if g.LabelHeight <= 0 {
		g.LabelHeight = defaultLabelHeight
	}
	if g.MacroWidth <= 0 {
		g.MacroWidth = defaultMacroWidth
	}
	if g.MacroHeight <= 0 {
		g.MacroHeight = defaultMacroHeight
	}
	if g.QRSize <= 0 {
		g.QRSize = defaultQRSize
	}
	return g
}

// TextParams carries the optional QR payload and up to four text lines that
// appear on a replacement label. Empty strings mean "omit this line".
type TextParams struct {
	QRText string
	Lines  []string
}

// MaxLineLength is the advisory limit beyond which a text line is unlikely to
// fit on the label.
const MaxLineLength = 60

// renderLabel draws the replacement label: white canvas, QR code at the top
// left, "RUO" marker at the top right, and the text lines below the QR code.
// When a QR payload is present the canvas grows by half so the code and text
// both fit, matching the slide scanner's label proportions.
func renderLabel(g Geometry, p TextParams) (*image.RGBA, error) {
	g = g.withDefaults()

	var qrImg image.Image
	if p.QRText != "" {
		qr, err := qrcode.New(p.QRText, qrcode.Medium)
		if err != nil {
			return nil, fmt.Errorf("encode qr: %w", err)
		}
		qrImg = qr.Image(g.QRSize)
	}

	width, height := g.LabelWidth, g.LabelHeight
	textTop := ruoTopInset + textLineStep
	if qrImg != nil {
		width = g.LabelWidth * 3 / 2
		height = g.LabelHeight * 3 / 2
		textTop = g.QRSize + textLineStep/2
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	if qrImg != nil {
		draw.Draw(img, qrImg.Bounds(), qrImg, image.Point{}, draw.Over)
	}

	drawText(img, width-ruoRightInset, ruoTopInset, "RUO")
	for i, line := range p.Lines {
		if line == "" {
			continue
		}
		drawText(img, textLeftMargin, textTop+i*textLineStep, line)
	}
	return img, nil
}

// renderMacro draws the replacement macro: a solid red panel.
func renderMacro(g Geometry) *image.RGBA {
	g = g.withDefaults()
	img := image.NewRGBA(image.Rect(0, 0, g.MacroWidth, g.MacroHeight))
	red := color.RGBA{R: 0xFF, A: 0xFF}
	draw.Draw(img, img.Bounds(), image.NewUniform(red), image.Point{}, draw.Src)
	return img
}

func drawText(dst *image.RGBA, x, y int, text string) {
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.Black),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}
