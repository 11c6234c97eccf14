package importer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/piwi3910/SlabGen/internal/model"
)

const tomlJob = `cell = "Fe2O3_hex.cif"

[settings]
output_dir = "slabs"
formats = ["cif", "vasp"]
workers = 4
no_lll = true

[[slabs]]
label = "basal"
miller = "0,0,1"
thickness = 10.0
width = 20.0
depth = 20.0
padding = 2.0

[[slabs]]
miller = "012"
thickness = 12.5
width = 15.0
depth = 15.0
`

const yamlJob = `cell: /data/Fe2O3_orth.cif
settings:
  formats: [xyz]
  shift_tolerance: 0.05
  no_center: true
slabs:
  - label: prism
    miller: "1 -1 0"
    thickness: 8
    width: 20
    depth: 10
`

func writeJob(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDecodeTOML(t *testing.T) {
	job, err := DecodeTOML(strings.NewReader(tomlJob))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if job.Cell != "Fe2O3_hex.cif" {
		t.Errorf("expected cell Fe2O3_hex.cif, got %q", job.Cell)
	}
	if job.Settings.OutputDir != "slabs" || job.Settings.Workers != 4 || !job.Settings.NoLLL {
		t.Errorf("unexpected settings %+v", job.Settings)
	}
	if len(job.Slabs) != 2 {
		t.Fatalf("expected 2 slabs, got %d", len(job.Slabs))
	}
	if job.Slabs[0].Thickness != 10 || job.Slabs[0].Padding != 2 {
		t.Errorf("unexpected first slab %+v", job.Slabs[0])
	}
	if job.Slabs[1].Miller != "012" {
		t.Errorf("expected Miller 012, got %q", job.Slabs[1].Miller)
	}
}

func TestDecodeTOML_IntegerLengths(t *testing.T) {
	data := `[settings]
shift_tolerance = 1

[[slabs]]
miller = "001"
thickness = 10
width = 20
depth = 15
padding = 2
`
	job, err := DecodeTOML(strings.NewReader(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(job.Slabs) != 1 {
		t.Fatalf("expected 1 slab, got %d", len(job.Slabs))
	}
	s := job.Slabs[0]
	if s.Thickness != 10 || s.Width != 20 || s.Depth != 15 || s.Padding != 2 {
		t.Errorf("unexpected slab %+v", s)
	}
	if job.Settings.ShiftTolerance != 1 {
		t.Errorf("expected shift tolerance 1, got %g", job.Settings.ShiftTolerance)
	}
}

func TestDecodeTOML_Malformed(t *testing.T) {
	if _, err := DecodeTOML(strings.NewReader("[[slabs]\nlabel = ")); err == nil {
		t.Error("expected error for malformed TOML")
	}
}

func TestDecodeYAML(t *testing.T) {
	job, err := DecodeYAML(strings.NewReader(yamlJob))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(job.Slabs) != 1 {
		t.Fatalf("expected 1 slab, got %d", len(job.Slabs))
	}
	s := job.Slabs[0]
	if s.Label != "prism" || s.Miller != "1 -1 0" || s.Thickness != 8 || s.Width != 20 || s.Depth != 10 {
		t.Errorf("unexpected slab %+v", s)
	}
	if job.Settings.ShiftTolerance != 0.05 || !job.Settings.NoCenter {
		t.Errorf("unexpected settings %+v", job.Settings)
	}
}

func TestDecodeYAML_UnknownField(t *testing.T) {
	if _, err := DecodeYAML(strings.NewReader("slabz: []\n")); err == nil {
		t.Error("expected error for unknown field")
	}
}

func TestDecodeYAML_Empty(t *testing.T) {
	job, err := DecodeYAML(strings.NewReader(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(job.Slabs) != 0 {
		t.Errorf("expected no slabs, got %d", len(job.Slabs))
	}
}

func TestJobSettings_Apply(t *testing.T) {
	s := model.DefaultSettings()
	JobSettings{}.Apply(&s)
	if s.OutputDir != "." || s.Workers != 1 || !s.CenterSlab || !s.LLLReduce {
		t.Errorf("empty job settings must not change defaults, got %+v", s)
	}

	js := JobSettings{
		OutputDir:      "out",
		Formats:        []string{"xyz"},
		Workers:        3,
		ShiftTolerance: 0.2,
		MatchTolerance: 0.3,
		NoCenter:       true,
		NoLLL:          true,
		InUnitPlanes:   true,
	}
	js.Apply(&s)
	if s.OutputDir != "out" || s.Workers != 3 || s.ShiftTolerance != 0.2 || s.MatchTolerance != 0.3 {
		t.Errorf("unexpected settings %+v", s)
	}
	if s.CenterSlab || s.LLLReduce || !s.InUnitPlanes {
		t.Errorf("unexpected flags %+v", s)
	}
	if len(s.Formats) != 1 || s.Formats[0] != "xyz" {
		t.Errorf("unexpected formats %v", s.Formats)
	}

	js.Formats[0] = "cif"
	if s.Formats[0] != "xyz" {
		t.Error("Apply must copy the formats slice")
	}
}

func TestJobFile_Requests(t *testing.T) {
	job := &JobFile{Slabs: []JobSlab{
		{Label: "basal", Miller: "001", Thickness: 10, Width: 20, Depth: 20},
		{Miller: "1x0", Thickness: 10, Width: 20, Depth: 20},
		{Miller: "110", Thickness: 0, Width: 20, Depth: 20},
		{Miller: "(0, 1, 2)", Thickness: 5, Width: 10, Depth: 10, Padding: 4},
	}}

	result := job.Requests()
	if len(result.Requests) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(result.Requests))
	}
	if len(result.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %v", result.Errors)
	}
	if !strings.HasPrefix(result.Errors[0], "Slab 2:") || !strings.HasPrefix(result.Errors[1], "Slab 3:") {
		t.Errorf("unexpected errors %v", result.Errors)
	}
	if result.Requests[0].Padding != model.DefaultPadding {
		t.Errorf("expected default padding, got %g", result.Requests[0].Padding)
	}
	last := result.Requests[1]
	if last.Label != "Slab 4" || last.Padding != 4 || last.Miller != (model.MillerIndex{0, 1, 2}) {
		t.Errorf("unexpected request %+v", last)
	}
}

func TestJobFile_RequestsEmpty(t *testing.T) {
	result := (&JobFile{}).Requests()
	if len(result.Errors) != 1 || len(result.Requests) != 0 {
		t.Errorf("expected a single error, got %+v", result)
	}
}

func TestLoadJobFile_ResolvesRelativeCell(t *testing.T) {
	path := writeJob(t, "job.toml", tomlJob)
	job, err := LoadJobFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := filepath.Join(filepath.Dir(path), "Fe2O3_hex.cif")
	if job.Cell != want {
		t.Errorf("expected cell %q, got %q", want, job.Cell)
	}

	path = writeJob(t, "job.yml", yamlJob)
	job, err = LoadJobFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if job.Cell != "/data/Fe2O3_orth.cif" {
		t.Errorf("absolute cell path must be kept, got %q", job.Cell)
	}
}

func TestLoadJobFile_Errors(t *testing.T) {
	if _, err := LoadJobFile(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := LoadJobFile(writeJob(t, "job.json", "{}")); err == nil {
		t.Error("expected error for unsupported extension")
	}
	if _, err := LoadJobFile(writeJob(t, "job.yaml", "slabs: [")); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestImportFile(t *testing.T) {
	result, job := ImportFile(writeJob(t, "job.toml", tomlJob))
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if job == nil {
		t.Fatal("expected job file to be returned")
	}
	if len(result.Requests) != 2 {
		t.Errorf("expected 2 requests, got %d", len(result.Requests))
	}

	result, job = ImportFile(writeJob(t, "jobs.csv", "Label,Thickness,Width,Depth,Miller\nbasal,10,20,20,001\n"))
	if job != nil {
		t.Error("CSV import must not return a job file")
	}
	if len(result.Requests) != 1 {
		t.Errorf("expected 1 request, got %d", len(result.Requests))
	}

	result, _ = ImportFile(writeJob(t, "jobs.pdf", ""))
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "Unsupported") {
		t.Errorf("expected unsupported error, got %v", result.Errors)
	}

	result, job = ImportFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if job != nil || len(result.Errors) != 1 {
		t.Errorf("expected load error, got %v", result.Errors)
	}
}
