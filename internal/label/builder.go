// Package label renders the replacement label and macro images and packs
// them into standalone BigTIFF blobs the splice engine can relocate into a
// slide file.
package label

import (
	"example.com/svslabel/internal/bigtiff"
)

// Builder produces replacement sub-image blobs with a fixed geometry.
type Builder struct {
	geometry Geometry
}

// NewBuilder returns a Builder. Zero geometry fields use the GT450 defaults.
func NewBuilder(g Geometry) *Builder {
	return &Builder{geometry: g.withDefaults()}
}

// Label renders a label with the QR payload and text lines and returns it as
// a replacement blob.
func (b *Builder) Label(p TextParams) ([]byte, error) {
	img, err := renderLabel(b.geometry, p)
	if err != nil {
		return nil, err
	}
	return EncodeBlob(img, bigtiff.RoleLabel)
}

// Macro renders the solid replacement macro and returns it as a blob.
func (b *Builder) Macro() ([]byte, error) {
	return EncodeBlob(renderMacro(b.geometry), bigtiff.RoleMacro)
}
