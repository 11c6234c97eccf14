package importer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/SlabGen/internal/model"
)

// ─── DetectCSVDelimiter Tests ──────────────────────────────

func TestDetectCSVDelimiter(t *testing.T) {
	tests := []struct {
		name string
		data string
		want rune
	}{
		{"comma", "Label,Thickness,Width,Depth,Miller\nbasal,10,20,20,001\n", ','},
		{"semicolon", "Label;Thickness;Width;Depth;Miller\nbasal;10;20;20;0,0,1\n", ';'},
		{"tab", "Label\tThickness\tWidth\tDepth\tMiller\nbasal\t10\t20\t20\t001\n", '\t'},
		{"pipe", "Label|Thickness|Width|Depth|Miller\nbasal|10|20|20|001\n", '|'},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectCSVDelimiter([]byte(tt.data)); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

// ─── DetectColumns Tests ───────────────────────────────────

func TestDetectColumns_StandardHeaders(t *testing.T) {
	row := []string{"Label", "Thickness", "Width", "Depth", "Miller", "Padding"}
	mapping, isHeader := DetectColumns(row)

	if !isHeader {
		t.Fatal("expected header to be detected")
	}
	want := ColumnMapping{Label: 0, Thickness: 1, Width: 2, Depth: 3, Miller: 4, H: -1, K: -1, L: -1, Padding: 5}
	if mapping != want {
		t.Errorf("expected %+v, got %+v", want, mapping)
	}
}

func TestDetectColumns_AliasesAndSplitMiller(t *testing.T) {
	row := []string{"VACUUM", "h", "K", "l", "Name", "thick", "A", "B"}
	mapping, isHeader := DetectColumns(row)

	if !isHeader {
		t.Fatal("expected header to be detected")
	}
	if !mapping.hasSplitMiller() {
		t.Error("expected split Miller columns")
	}
	if mapping.Padding != 0 || mapping.H != 1 || mapping.K != 2 || mapping.L != 3 {
		t.Errorf("unexpected mapping %+v", mapping)
	}
	if mapping.Label != 4 || mapping.Thickness != 5 || mapping.Width != 6 || mapping.Depth != 7 {
		t.Errorf("unexpected mapping %+v", mapping)
	}
}

func TestDetectColumns_NoHeader(t *testing.T) {
	mapping, isHeader := DetectColumns([]string{"basal", "10", "20", "20", "001"})
	if isHeader {
		t.Error("expected no header")
	}
	if mapping.Thickness != 1 || mapping.Miller != 4 || mapping.Padding != 5 {
		t.Errorf("expected positional mapping, got %+v", mapping)
	}
}

// ─── CSV Import Tests ──────────────────────────────────────

func TestImportCSVFromReader_WithHeaders(t *testing.T) {
	data := "Label,Thickness,Width,Depth,Miller,Padding\n" +
		"basal,10,20,20,\"0,0,1\",2\n" +
		"r-plane,12.5,15,25,012,\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Requests) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(result.Requests))
	}

	r := result.Requests[0]
	if r.Label != "basal" || r.Thickness != 10 || r.Width != 20 || r.Depth != 20 || r.Padding != 2 {
		t.Errorf("unexpected request %+v", r)
	}
	if r.Miller != (model.MillerIndex{0, 0, 1}) {
		t.Errorf("unexpected Miller index %v", r.Miller)
	}

	r = result.Requests[1]
	if r.Miller != (model.MillerIndex{0, 1, 2}) {
		t.Errorf("unexpected Miller index %v", r.Miller)
	}
	if r.Padding != model.DefaultPadding {
		t.Errorf("expected default padding, got %g", r.Padding)
	}
}

func TestImportCSVFromReader_SplitMillerColumns(t *testing.T) {
	data := "name;h;k;l;thickness;width;depth\nprism;1;-2;0;8;20;20\n"
	result := ImportCSVFromReader(strings.NewReader(data), ';')

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if got := result.Requests[0].Miller; got != (model.MillerIndex{1, -2, 0}) {
		t.Errorf("unexpected Miller index %v", got)
	}
}

func TestImportCSVFromReader_WithoutHeaders(t *testing.T) {
	data := "basal,10,20,20,001,3\nprism,8,20,20,1-10\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Requests) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(result.Requests))
	}
	if result.Requests[0].Padding != 3 {
		t.Errorf("expected padding 3, got %g", result.Requests[0].Padding)
	}
	if result.Requests[1].Miller != (model.MillerIndex{1, -1, 0}) {
		t.Errorf("unexpected Miller index %v", result.Requests[1].Miller)
	}
}

func TestImportCSVFromReader_UnknownHeaderSkipped(t *testing.T) {
	data := "foo,min,sx,sy,bar\nbasal,10,20,20,001\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')
	if len(result.Requests) != 1 {
		t.Fatalf("expected 1 request, got %d (errors %v)", len(result.Requests), result.Errors)
	}
}

func TestImportCSVFromReader_RowErrors(t *testing.T) {
	data := "Label,Thickness,Width,Depth,Miller\n" +
		"ok,10,20,20,001\n" +
		"badthick,abc,20,20,001\n" +
		"nomiller,10,20,20,\n" +
		"badmiller,10,20,20,1x1\n" +
		"negative,10,-20,20,001\n" +
		",,,,\n" +
		",10,20,20,110\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Requests) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(result.Requests))
	}
	if len(result.Errors) != 4 {
		t.Fatalf("expected 4 errors, got %d: %v", len(result.Errors), result.Errors)
	}
	if !strings.Contains(result.Errors[0], "Line 3") || !strings.Contains(result.Errors[0], "thickness") {
		t.Errorf("unexpected error %q", result.Errors[0])
	}
	if result.Requests[1].Label != "Slab 2" {
		t.Errorf("expected generated label, got %q", result.Requests[1].Label)
	}
}

func TestImportCSVFromReader_InvalidPaddingWarns(t *testing.T) {
	data := "Label,Thickness,Width,Depth,Miller,Padding\nbasal,10,20,20,001,-1\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(result.Requests))
	}
	if result.Requests[0].Padding != model.DefaultPadding {
		t.Errorf("expected default padding, got %g", result.Requests[0].Padding)
	}
	found := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "Invalid padding") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected padding warning, got %v", result.Warnings)
	}
}

func TestImportCSVFromReader_MissingRequiredColumnInHeader(t *testing.T) {
	data := "Label,Thickness,Width\nbasal,10,20\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 error, got %v", result.Errors)
	}
	if !strings.Contains(result.Errors[0], "Depth") || !strings.Contains(result.Errors[0], "Miller") {
		t.Errorf("unexpected error %q", result.Errors[0])
	}
}

func TestImportCSVFromReader_EmptyFile(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader(""), ',')
	if len(result.Errors) == 0 {
		t.Error("expected error for empty input")
	}
}

func TestImportCSV_SemicolonFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.csv")
	data := "Label;Thickness;Width;Depth;Miller\nbasal;10;20;20;0,0,1\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	result := ImportCSV(path)
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Requests) != 1 || result.Requests[0].Miller != (model.MillerIndex{0, 0, 1}) {
		t.Errorf("unexpected requests %+v", result.Requests)
	}
	if len(result.Warnings) == 0 || !strings.Contains(result.Warnings[0], "semicolon") {
		t.Errorf("expected semicolon warning, got %v", result.Warnings)
	}
}

func TestImportCSV_FileErrors(t *testing.T) {
	if result := ImportCSV(filepath.Join(t.TempDir(), "missing.csv")); len(result.Errors) == 0 {
		t.Error("expected error for missing file")
	}

	empty := filepath.Join(t.TempDir(), "empty.csv")
	if err := os.WriteFile(empty, []byte("  \n"), 0644); err != nil {
		t.Fatal(err)
	}
	if result := ImportCSV(empty); len(result.Errors) == 0 {
		t.Error("expected error for empty file")
	}
}

// ─── Excel Import Tests ────────────────────────────────────

func createTestExcel(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "jobs.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	for i, row := range rows {
		for j, cell := range row {
			cellRef, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				t.Fatalf("failed to create cell reference: %v", err)
			}
			if err := f.SetCellValue(sheet, cellRef, cell); err != nil {
				t.Fatalf("failed to set cell value: %v", err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		t.Fatalf("failed to save Excel file: %v", err)
	}
	return path
}

func TestImportExcel_WithHeaders(t *testing.T) {
	path := createTestExcel(t, [][]interface{}{
		{"Label", "Miller", "Thickness", "Width", "Depth", "Vacuum"},
		{"basal", "0,0,1", 10, 20, 20, 2.5},
		{"r-plane", "(0, 1, 2)", 12, 18, 18, ""},
	})

	result := ImportExcel(path)
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Requests) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(result.Requests))
	}
	if result.Requests[0].Padding != 2.5 {
		t.Errorf("expected padding 2.5, got %g", result.Requests[0].Padding)
	}
	if result.Requests[1].Miller != (model.MillerIndex{0, 1, 2}) {
		t.Errorf("unexpected Miller index %v", result.Requests[1].Miller)
	}
}

func TestImportExcel_FileNotFound(t *testing.T) {
	result := ImportExcel(filepath.Join(t.TempDir(), "missing.xlsx"))
	if len(result.Errors) == 0 {
		t.Error("expected error for missing file")
	}
}
