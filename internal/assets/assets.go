// Package assets embeds the reference hematite unit cell.
package assets

import (
	"bytes"
	_ "embed"

	"github.com/piwi3910/SlabGen/internal/crystal"
)

// HematiteCIF is alpha-Fe2O3 in a P1 orthorhombic setting with 60 atoms.
//
//go:embed Fe2O3_orth.cif
var HematiteCIF []byte

// Hematite parses the embedded unit cell.
func Hematite() (*crystal.Structure, error) {
	return crystal.ReadCIF(bytes.NewReader(HematiteCIF))
}
