package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"

	"github.com/piwi3910/SlabGen/internal/crystal"
	"github.com/piwi3910/SlabGen/internal/model"
)

// OutlineLayer holds the cell outline and annotations of a DXF drawing.
const OutlineLayer = "CELL"

// layerColors cycles through the basic AutoCAD colors for element layers.
var layerColors = []color.ColorNumber{
	color.Red, color.Yellow, color.Green, color.Cyan, color.Blue, color.Magenta,
}

// ExportDXF writes a plan view of one slab variant to path: the a x b cell
// outline on the CELL layer and one circle per atom on a layer named after
// its species. Coordinates are in Angstrom.
func ExportDXF(path string, slab model.SlabResult) error {
	if len(slab.Sites) == 0 {
		return fmt.Errorf("slab %s has no atoms to draw", slab.Name())
	}

	d := dxf.NewDrawing()
	if _, err := d.AddLayer(OutlineLayer, color.White, dxf.DefaultLineType, true); err != nil {
		return fmt.Errorf("failed to add layer: %w", err)
	}

	a := slab.Lattice[0]
	b := slab.Lattice[1]
	corners := [5][2]float64{
		{0, 0},
		{a[0], a[1]},
		{a[0] + b[0], a[1] + b[1]},
		{b[0], b[1]},
		{0, 0},
	}
	for i := 0; i < 4; i++ {
		p, q := corners[i], corners[i+1]
		if _, err := d.Line(p[0], p[1], 0, q[0], q[1], 0); err != nil {
			return fmt.Errorf("failed to draw cell outline: %w", err)
		}
	}
	if _, err := d.Text(fmt.Sprintf("%s %s", slab.Name(), slab.Formula), 0, -2, 0, 0.8); err != nil {
		return fmt.Errorf("failed to draw caption: %w", err)
	}

	for i, sp := range sortedSpecies(slab.Composition) {
		if _, err := d.AddLayer(sp, layerColors[i%len(layerColors)], dxf.DefaultLineType, false); err != nil {
			return fmt.Errorf("failed to add layer %s: %w", sp, err)
		}
	}

	for _, s := range slab.Sites {
		if _, ok := slab.Composition[s.Species]; !ok {
			return fmt.Errorf("species %s missing from composition", s.Species)
		}
		if err := d.ChangeLayer(s.Species); err != nil {
			return fmt.Errorf("failed to select layer %s: %w", s.Species, err)
		}
		r := crystal.ElementOrDefault(s.Species).CovalentRadius * atomScale
		if _, err := d.Circle(s.X, s.Y, s.Z, r); err != nil {
			return fmt.Errorf("failed to draw atom: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := d.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save drawing %q: %w", path, err)
	}
	return nil
}

// ExportDXFAll writes one drawing per slab variant into dir, named after the
// variant, and returns the written paths.
func ExportDXFAll(dir string, runs []model.RunResult) ([]string, error) {
	var paths []string
	for _, run := range runs {
		for _, s := range run.Slabs {
			path := filepath.Join(dir, s.Name()+".dxf")
			if err := ExportDXF(path, s); err != nil {
				return paths, err
			}
			paths = append(paths, path)
		}
	}
	return paths, nil
}
