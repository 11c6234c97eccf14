package export

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestExportXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.xlsx")

	if err := ExportXLSX(path, buildTestRuns()); err != nil {
		t.Fatalf("ExportXLSX returned error: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("failed to open workbook: %v", err)
	}
	defer f.Close()

	slabs, err := f.GetRows(SlabsSheet)
	if err != nil {
		t.Fatalf("failed to read %s: %v", SlabsSheet, err)
	}
	if len(slabs) != 4 {
		t.Fatalf("expected header plus 3 slab rows, got %d", len(slabs))
	}
	if slabs[0][0] != "Run" || slabs[0][len(slabHeaders)-1] != "Files" {
		t.Errorf("unexpected header %v", slabs[0])
	}
	if slabs[1][0] != "run00001" || slabs[1][2] != "(0, 0, 1)" || slabs[1][15] != "Fe4 O6" {
		t.Errorf("unexpected first slab row %v", slabs[1])
	}
	if slabs[3][1] != "(0, 1, 2) 10x10x8" {
		t.Errorf("unexpected request name %q", slabs[3][1])
	}

	runs, err := f.GetRows(RunsSheet)
	if err != nil {
		t.Fatalf("failed to read %s: %v", RunsSheet, err)
	}
	if len(runs) != 3 {
		t.Fatalf("expected header plus 2 run rows, got %d", len(runs))
	}
	if runs[1][10] != "2" || runs[1][11] != "20" {
		t.Errorf("expected 2 slabs with 20 atoms, got %v", runs[1])
	}
}

func TestExportXLSX_Empty(t *testing.T) {
	if err := ExportXLSX(filepath.Join(t.TempDir(), "empty.xlsx"), nil); err == nil {
		t.Fatal("expected error for no runs")
	}
}
