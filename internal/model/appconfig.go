package model

import "fmt"

// maxRecentRuns bounds AppConfig.RecentRuns.
const maxRecentRuns = 10

// AppConfig holds application-wide preferences and default settings.
type AppConfig struct {
	// Defaults applied to new runs
	DefaultPadding        float64  `json:"default_padding"`
	DefaultShiftTolerance float64  `json:"default_shift_tolerance"`
	DefaultMatchTolerance float64  `json:"default_match_tolerance"`
	DefaultCenterSlab     bool     `json:"default_center_slab"`
	DefaultLLLReduce      bool     `json:"default_lll_reduce"`
	DefaultInUnitPlanes   bool     `json:"default_in_unit_planes"`
	DefaultOutputDir      string   `json:"default_output_dir"`
	DefaultFormats        []string `json:"default_formats"`
	DefaultWorkers        int      `json:"default_workers"`

	// Unit cell CIF; empty selects the embedded hematite cell
	UnitCellPath string `json:"unit_cell_path"`

	RecentRuns []string `json:"recent_runs"` // Manifest paths, newest first
}

// DefaultAppConfig returns an AppConfig populated with the values from
// DefaultSettings().
func DefaultAppConfig() AppConfig {
	defaults := DefaultSettings()
	return AppConfig{
		DefaultPadding:        DefaultPadding,
		DefaultShiftTolerance: defaults.ShiftTolerance,
		DefaultMatchTolerance: defaults.MatchTolerance,
		DefaultCenterSlab:     defaults.CenterSlab,
		DefaultLLLReduce:      defaults.LLLReduce,
		DefaultInUnitPlanes:   defaults.InUnitPlanes,
		DefaultOutputDir:      defaults.OutputDir,
		DefaultFormats:        append([]string(nil), defaults.Formats...),
		DefaultWorkers:        defaults.Workers,
		RecentRuns:            []string{},
	}
}

// Validate checks that the defaults can seed a run.
func (c AppConfig) Validate() error {
	switch {
	case c.DefaultPadding <= 0:
		return fmt.Errorf("%w: default_padding must be positive, got %g", ErrInvalidConfig, c.DefaultPadding)
	case c.DefaultShiftTolerance <= 0:
		return fmt.Errorf("%w: default_shift_tolerance must be positive, got %g", ErrInvalidConfig, c.DefaultShiftTolerance)
	case c.DefaultMatchTolerance <= 0:
		return fmt.Errorf("%w: default_match_tolerance must be positive, got %g", ErrInvalidConfig, c.DefaultMatchTolerance)
	case c.DefaultWorkers < 0:
		return fmt.Errorf("%w: default_workers must not be negative, got %d", ErrInvalidConfig, c.DefaultWorkers)
	}
	return nil
}

// ApplyToSettings copies the default values from AppConfig into a Settings struct.
func (c AppConfig) ApplyToSettings(s *Settings) {
	s.ShiftTolerance = c.DefaultShiftTolerance
	s.MatchTolerance = c.DefaultMatchTolerance
	s.CenterSlab = c.DefaultCenterSlab
	s.LLLReduce = c.DefaultLLLReduce
	s.InUnitPlanes = c.DefaultInUnitPlanes
	if c.DefaultOutputDir != "" {
		s.OutputDir = c.DefaultOutputDir
	}
	if len(c.DefaultFormats) > 0 {
		s.Formats = append([]string(nil), c.DefaultFormats...)
	}
	if c.DefaultWorkers > 0 {
		s.Workers = c.DefaultWorkers
	}
}

// AddRecentRun puts path at the front of RecentRuns, dropping an older
// entry for the same path and trimming the list.
func (c *AppConfig) AddRecentRun(path string) {
	runs := []string{path}
	for _, r := range c.RecentRuns {
		if r != path {
			runs = append(runs, r)
		}
	}
	if len(runs) > maxRecentRuns {
		runs = runs[:maxRecentRuns]
	}
	c.RecentRuns = runs
}
