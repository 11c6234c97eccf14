package export

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/piwi3910/SlabGen/internal/model"
)

// countEntities counts DXF entities of a type by their group-0 name lines.
func countEntities(data []byte, name string) int {
	return len(regexp.MustCompile(`(?m)^` + name + `\r?$`).FindAll(data, -1))
}

func TestExportDXF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "drawings", "slab.dxf")
	slab := buildTestSlab(0, 10, 17, 30)

	if err := ExportDXF(path, slab); err != nil {
		t.Fatalf("ExportDXF returned error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read drawing: %v", err)
	}

	circles := countEntities(data, "CIRCLE")
	lines := countEntities(data, "LINE")
	if circles != slab.Atoms {
		t.Errorf("expected %d atoms, got %d circles", slab.Atoms, circles)
	}
	if lines != 4 {
		t.Errorf("expected 4 outline lines, got %d", lines)
	}
	if countEntities(data, "Fe") == 0 || countEntities(data, "O") == 0 {
		t.Error("expected one layer per element")
	}
}

func TestExportDXF_NoAtoms(t *testing.T) {
	err := ExportDXF(filepath.Join(t.TempDir(), "empty.dxf"), model.SlabResult{})
	if err == nil {
		t.Fatal("expected error for slab without atoms")
	}
}

func TestExportDXF_UnknownSpecies(t *testing.T) {
	slab := buildTestSlab(0, 10, 17, 30)
	slab.Sites = append(slab.Sites, model.AtomSite{Species: "Ti"})

	if err := ExportDXF(filepath.Join(t.TempDir(), "bad.dxf"), slab); err == nil {
		t.Fatal("expected error for species missing from composition")
	}
}

func TestExportDXFAll(t *testing.T) {
	dir := t.TempDir()

	paths, err := ExportDXFAll(dir, buildTestRuns())
	if err != nil {
		t.Fatalf("ExportDXFAll returned error: %v", err)
	}
	if len(paths) != 3 {
		t.Fatalf("expected 3 drawings, got %d", len(paths))
	}
	if filepath.Base(paths[1]) != "slab_(0, 0, 1)_1.dxf" {
		t.Errorf("unexpected file name %s", filepath.Base(paths[1]))
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("drawing %s missing: %v", p, err)
		}
	}
}
