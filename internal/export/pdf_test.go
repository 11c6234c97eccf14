package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/SlabGen/internal/model"
)

func TestExportPDF_CreatesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.pdf")

	if err := ExportPDF(path, buildTestRuns()); err != nil {
		t.Fatalf("ExportPDF returned error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("PDF file was not created: %v", err)
	}
	// Three slab pages plus the summary
	if info.Size() < 500 {
		t.Errorf("PDF file seems too small: %d bytes", info.Size())
	}
}

func TestExportPDF_EmptyResult(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.pdf")

	if err := ExportPDF(path, nil); err == nil {
		t.Fatal("expected error for no runs, got nil")
	}
	if err := ExportPDF(path, []model.RunResult{{ID: "r"}}); err == nil {
		t.Fatal("expected error for runs without slabs, got nil")
	}
}

func TestExportPDF_SkewedCellAndUnknownSpecies(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skewed.pdf")

	runs := buildTestRuns()[:1]
	slab := &runs[0].Slabs[0]
	slab.Lattice[1] = [3]float64{-8.72, 15.1, 0}
	slab.Angles[2] = 120
	slab.Sites = append(slab.Sites, model.AtomSite{Species: "Xx", X: 1, Y: 1, Z: 15})
	slab.Composition["Xx"] = 1

	if err := ExportPDF(path, runs); err != nil {
		t.Fatalf("ExportPDF returned error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("PDF file was not created: %v", err)
	}
}

func TestExportPDF_ManySlabsPaginatesSummary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "many.pdf")

	run := buildTestRuns()[0]
	run.Slabs = nil
	for i := 0; i < 40; i++ {
		run.Slabs = append(run.Slabs, buildTestSlab(i, 10, 10, 20))
	}

	if err := ExportPDF(path, []model.RunResult{run}); err != nil {
		t.Fatalf("ExportPDF returned error: %v", err)
	}
}

func TestNewViewport(t *testing.T) {
	vp := newViewport(0, 0, 10, 5, 20, 30, 100, 100)
	if vp.scale != 10 {
		t.Fatalf("expected scale 10, got %f", vp.scale)
	}

	// Horizontally centered, vertical axis flipped
	x, y := vp.point(0, 0)
	if x != 20 || y != 80 {
		t.Errorf("expected origin at (20, 80), got (%f, %f)", x, y)
	}
	x, y = vp.point(10, 5)
	if x != 120 || y != 30 {
		t.Errorf("expected corner at (120, 30), got (%f, %f)", x, y)
	}
}

func TestSortedSpecies(t *testing.T) {
	got := sortedSpecies(map[string]int{"O": 3, "Fe": 2, "Al": 1})
	want := []string{"Al", "Fe", "O"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestElementColor(t *testing.T) {
	if c := elementColor("O"); c != (rgb{R: 255, G: 13, B: 13}) {
		t.Errorf("unexpected oxygen color %+v", c)
	}
}
