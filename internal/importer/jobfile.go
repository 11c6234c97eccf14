package importer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"

	"github.com/piwi3910/SlabGen/internal/model"
)

// JobFile is a batch of slab requests with optional run settings, written
// as TOML or YAML:
//
//	cell = "Fe2O3_hex.cif"
//
//	[settings]
//	output_dir = "slabs"
//	formats = ["cif", "vasp"]
//
//	[[slabs]]
//	label = "basal"
//	miller = "0,0,1"
//	thickness = 10.0
//	width = 20.0
//	depth = 20.0
//	padding = 2.0
type JobFile struct {
	Cell     string      `toml:"cell" yaml:"cell"`
	Settings JobSettings `toml:"settings" yaml:"settings"`
	Slabs    []JobSlab   `toml:"slabs" yaml:"slabs"`
}

// JobSettings overrides run settings. Zero values leave the defaults alone.
type JobSettings struct {
	OutputDir      string   `toml:"output_dir" yaml:"output_dir"`
	Formats        []string `toml:"formats" yaml:"formats"`
	Workers        int      `toml:"workers" yaml:"workers"`
	ShiftTolerance float64  `toml:"shift_tolerance" yaml:"shift_tolerance"`
	MatchTolerance float64  `toml:"match_tolerance" yaml:"match_tolerance"`
	NoCenter       bool     `toml:"no_center" yaml:"no_center"`
	NoLLL          bool     `toml:"no_lll" yaml:"no_lll"`
	InUnitPlanes   bool     `toml:"in_unit_planes" yaml:"in_unit_planes"`
}

// JobSlab is one request of a job file.
type JobSlab struct {
	Label     string  `toml:"label" yaml:"label"`
	Miller    string  `toml:"miller" yaml:"miller"`
	Thickness float64 `toml:"thickness" yaml:"thickness"`
	Width     float64 `toml:"width" yaml:"width"`
	Depth     float64 `toml:"depth" yaml:"depth"`
	Padding   float64 `toml:"padding" yaml:"padding"`
}

// Apply copies the non-zero settings into s.
func (js JobSettings) Apply(s *model.Settings) {
	if js.OutputDir != "" {
		s.OutputDir = js.OutputDir
	}
	if len(js.Formats) > 0 {
		s.Formats = append([]string(nil), js.Formats...)
	}
	if js.Workers > 0 {
		s.Workers = js.Workers
	}
	if js.ShiftTolerance > 0 {
		s.ShiftTolerance = js.ShiftTolerance
	}
	if js.MatchTolerance > 0 {
		s.MatchTolerance = js.MatchTolerance
	}
	if js.NoCenter {
		s.CenterSlab = false
	}
	if js.NoLLL {
		s.LLLReduce = false
	}
	if js.InUnitPlanes {
		s.InUnitPlanes = true
	}
}

// Float fields of the job file. go-toml refuses to decode an integer such as
// thickness = 10 into them, so integers are widened first.
var (
	settingsFloatKeys = []string{"shift_tolerance", "match_tolerance"}
	slabFloatKeys     = []string{"thickness", "width", "depth", "padding"}
)

// DecodeTOML reads a TOML job file. Lengths may be integers or floats.
func DecodeTOML(r io.Reader) (*JobFile, error) {
	tree, err := toml.LoadReader(r)
	if err != nil {
		return nil, err
	}
	if settings, ok := tree.Get("settings").(*toml.Tree); ok {
		widenInts(settings, settingsFloatKeys)
	}
	if slabs, ok := tree.Get("slabs").([]*toml.Tree); ok {
		for _, t := range slabs {
			widenInts(t, slabFloatKeys)
		}
	}

	var job JobFile
	if err := tree.Unmarshal(&job); err != nil {
		return nil, err
	}
	return &job, nil
}

func widenInts(t *toml.Tree, keys []string) {
	for _, k := range keys {
		if n, ok := t.Get(k).(int64); ok {
			t.Set(k, float64(n))
		}
	}
}

// DecodeYAML reads a YAML job file.
func DecodeYAML(r io.Reader) (*JobFile, error) {
	var job JobFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&job); err != nil {
		if err == io.EOF {
			return &job, nil
		}
		return nil, err
	}
	return &job, nil
}

// LoadJobFile reads a job file, choosing the format by extension.
func LoadJobFile(path string) (*JobFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open job file: %w", err)
	}
	defer f.Close()

	var job *JobFile
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		job, err = DecodeTOML(f)
	case ".yaml", ".yml":
		job, err = DecodeYAML(f)
	default:
		return nil, fmt.Errorf("unsupported job file extension %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse job file %s: %w", path, err)
	}
	if job.Cell != "" && !filepath.IsAbs(job.Cell) {
		job.Cell = filepath.Join(filepath.Dir(path), job.Cell)
	}
	return job, nil
}

// Requests converts the job's slabs into requests, collecting per-slab
// problems the same way the sheet importers do.
func (j *JobFile) Requests() ImportResult {
	result := ImportResult{}
	if len(j.Slabs) == 0 {
		result.Errors = append(result.Errors, "Job file has no slabs")
		return result
	}
	for i, s := range j.Slabs {
		rowLabel := fmt.Sprintf("Slab %d", i+1)
		miller, err := model.ParseMillerIndex(s.Miller)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: Invalid Miller index '%s'", rowLabel, s.Miller))
			continue
		}
		label := s.Label
		if label == "" {
			label = rowLabel
		}
		req := model.NewRequest(label, s.Thickness, s.Width, s.Depth, miller)
		if s.Padding != 0 {
			req.Padding = s.Padding
		}
		if err := req.Validate(); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", rowLabel, err))
			continue
		}
		result.Requests = append(result.Requests, req)
	}
	return result
}

// ImportFile imports requests from any supported batch file: CSV, Excel,
// TOML or YAML. For job files the parsed JobFile is returned as well so
// the caller can apply its settings.
func ImportFile(path string) (ImportResult, *JobFile) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".tsv", ".txt":
		return ImportCSV(path), nil
	case ".xlsx", ".xlsm":
		return ImportExcel(path), nil
	case ".toml", ".yaml", ".yml":
		job, err := LoadJobFile(path)
		if err != nil {
			return ImportResult{Errors: []string{err.Error()}}, nil
		}
		return job.Requests(), job
	default:
		return ImportResult{Errors: []string{fmt.Sprintf("Unsupported batch file type: %s", filepath.Ext(path))}}, nil
	}
}
