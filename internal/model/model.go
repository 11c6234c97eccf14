package model

import (
	"fmt"

	"github.com/google/uuid"
)

// DefaultPadding is the vacuum gap in Angstrom used when a request leaves it unset.
const DefaultPadding = 1.0

// Request describes one slab job. Lengths are in Angstrom and the Miller
// index is given in the rhombohedral setting.
type Request struct {
	ID        string      `json:"id"`
	Label     string      `json:"label"`
	Thickness float64     `json:"thickness"` // Minimum slab thickness along the surface normal
	Width     float64     `json:"width"`     // Target in-plane size along a
	Depth     float64     `json:"depth"`     // Target in-plane size along b
	Miller    MillerIndex `json:"miller"`    // Rhombohedral setting
	Padding   float64     `json:"padding"`   // Vacuum gap above the slab
}

func NewRequest(label string, thickness, width, depth float64, miller MillerIndex) Request {
	return Request{
		ID:        uuid.New().String()[:8],
		Label:     label,
		Thickness: thickness,
		Width:     width,
		Depth:     depth,
		Miller:    miller,
		Padding:   DefaultPadding,
	}
}

// Validate reports the first problem with the request, wrapping ErrInvalidRequest.
func (r Request) Validate() error {
	switch {
	case r.Thickness <= 0:
		return fmt.Errorf("%w: thickness must be positive, got %g", ErrInvalidRequest, r.Thickness)
	case r.Width <= 0:
		return fmt.Errorf("%w: width must be positive, got %g", ErrInvalidRequest, r.Width)
	case r.Depth <= 0:
		return fmt.Errorf("%w: depth must be positive, got %g", ErrInvalidRequest, r.Depth)
	case r.Padding <= 0:
		return fmt.Errorf("%w: padding must be positive, got %g", ErrInvalidRequest, r.Padding)
	case r.Miller.IsZero():
		return fmt.Errorf("%w: Miller index %s is zero", ErrInvalidRequest, r.Miller)
	}
	return nil
}

// DisplayName returns the label, or a name built from the index and sizes.
func (r Request) DisplayName() string {
	if r.Label != "" {
		return r.Label
	}
	return fmt.Sprintf("%s %gx%gx%g", r.Miller, r.Width, r.Depth, r.Thickness)
}

// Settings holds the geometry and output options shared by every request of a run.
type Settings struct {
	// Geometry engine
	ShiftTolerance float64 `json:"shift_tolerance"` // Angstrom; atomic planes closer than this form one termination
	MatchTolerance float64 `json:"match_tolerance"` // Fraction of (V/n)^(1/3) for duplicate terminations
	CenterSlab     bool    `json:"center_slab"`
	LLLReduce      bool    `json:"lll_reduce"`
	InUnitPlanes   bool    `json:"in_unit_planes"` // Thickness and padding count hkl planes instead of Angstrom

	// Output
	OutputDir string   `json:"output_dir"`
	Formats   []string `json:"formats"` // "cif", "vasp", "xyz"
	Workers   int      `json:"workers"` // >1 processes candidates concurrently
	DryRun    bool     `json:"dry_run"` // Build slabs but write no files
}

func DefaultSettings() Settings {
	return Settings{
		ShiftTolerance: 0.1,
		MatchTolerance: 0.1,
		CenterSlab:     true,
		LLLReduce:      true,
		InUnitPlanes:   false,
		OutputDir:      ".",
		Formats:        []string{"cif"},
		Workers:        1,
	}
}

// AtomSite is a cartesian atom position kept for drawing.
type AtomSite struct {
	Species string  `json:"species"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Z       float64 `json:"z"`
}

// SlabResult describes one written termination variant.
type SlabResult struct {
	Index       int            `json:"index"`
	Miller      MillerIndex    `json:"miller"`      // As requested
	OrthMiller  MillerIndex    `json:"orth_miller"` // Orthorhombic setting
	Shift       float64        `json:"shift"`
	MultA       int            `json:"mult_a"`
	MultB       int            `json:"mult_b"`
	Lengths     [3]float64     `json:"lengths"` // Angstrom
	Angles      [3]float64     `json:"angles"`  // Degrees
	Atoms       int            `json:"atoms"`
	Composition map[string]int `json:"composition"`
	Formula     string         `json:"formula"`
	SurfaceArea float64        `json:"surface_area"` // Angstrom^2
	Thickness   float64        `json:"thickness"`    // Atom extent along the normal
	Mass        float64        `json:"mass"`         // g/mol
	Files       []string       `json:"files"`
	Planned     []string       `json:"planned,omitempty"` // Paths a dry run would have written

	Lattice [3][3]float64 `json:"-"`
	Sites   []AtomSite    `json:"-"`
}

// Name returns the base file name of the variant without extension.
func (s SlabResult) Name() string {
	return fmt.Sprintf("slab_%s_%d", s.Miller, s.Index)
}

// Stats derives the per-area figures for the slab.
func (s SlabResult) Stats() SlabStats {
	return CalculateSlabStats(s.Atoms, s.SurfaceArea, s.Thickness, s.Mass)
}

// RunResult is the outcome of one request.
type RunResult struct {
	ID         string       `json:"id"`
	CreatedAt  string       `json:"created_at"`
	Cell       string       `json:"cell"` // Unit cell source
	Request    Request      `json:"request"`
	OrthMiller MillerIndex  `json:"orth_miller"`
	Settings   Settings     `json:"settings"`
	Slabs      []SlabResult `json:"slabs"`
}

// Files returns every file written by the run in order.
func (r RunResult) Files() []string {
	var files []string
	for _, s := range r.Slabs {
		files = append(files, s.Files...)
	}
	return files
}

// TotalAtoms returns the number of atoms across all variants.
func (r RunResult) TotalAtoms() int {
	var n int
	for _, s := range r.Slabs {
		n += s.Atoms
	}
	return n
}
