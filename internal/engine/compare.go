package engine

import (
	"context"
	"fmt"

	"github.com/piwi3910/SlabGen/internal/crystal"
	"github.com/piwi3910/SlabGen/internal/model"
)

// ComparisonScenario defines a named variation of a request to compare.
type ComparisonScenario struct {
	Name     string
	Request  model.Request
	Settings model.Settings
}

// ComparisonResult holds the dry-run outcome and statistics for a single
// scenario.
type ComparisonResult struct {
	Scenario     ComparisonScenario
	Result       model.RunResult
	Terminations int
	MinAtoms     int
	MaxAtoms     int
	MaxThickness float64 // Angstrom, atom extent along the normal
	CellHeight   float64 // Angstrom, length of c
	Err          error
}

// CompareScenarios dry-runs every scenario and returns the results in
// scenario order. A failing scenario records its error instead of stopping
// the comparison.
func CompareScenarios(ctx context.Context, cell *crystal.Structure, scenarios []ComparisonScenario, opts ...Option) []ComparisonResult {
	results := make([]ComparisonResult, 0, len(scenarios))

	for _, scenario := range scenarios {
		settings := scenario.Settings
		settings.DryRun = true
		gen := New(settings, opts...)
		run, err := gen.Generate(ctx, cell, scenario.Request)

		cr := ComparisonResult{Scenario: scenario, Result: run, Err: err}
		for i, s := range run.Slabs {
			if i == 0 || s.Atoms < cr.MinAtoms {
				cr.MinAtoms = s.Atoms
			}
			cr.MaxAtoms = max(cr.MaxAtoms, s.Atoms)
			cr.MaxThickness = max(cr.MaxThickness, s.Thickness)
			cr.CellHeight = max(cr.CellHeight, s.Lengths[2])
		}
		cr.Terminations = len(run.Slabs)
		results = append(results, cr)
	}

	return results
}

// BuildDefaultScenarios generates what-if variations around a request:
// thicker and thinner slabs, more vacuum and, for reference, the raw
// unreduced lattice.
func BuildDefaultScenarios(req model.Request, base model.Settings) []ComparisonScenario {
	scenarios := []ComparisonScenario{
		{Name: "Current Settings", Request: req, Settings: base},
	}

	thick := req
	thick.Thickness = req.Thickness * 2
	scenarios = append(scenarios, ComparisonScenario{
		Name:     fmt.Sprintf("Thickness %.1f A (double)", thick.Thickness),
		Request:  thick,
		Settings: base,
	})

	if req.Thickness > 2 {
		thin := req
		thin.Thickness = req.Thickness / 2
		scenarios = append(scenarios, ComparisonScenario{
			Name:     fmt.Sprintf("Thickness %.1f A (half)", thin.Thickness),
			Request:  thin,
			Settings: base,
		})
	}

	vac := req
	vac.Padding = req.Padding + 15
	scenarios = append(scenarios, ComparisonScenario{
		Name:     fmt.Sprintf("Padding %.1f A", vac.Padding),
		Request:  vac,
		Settings: base,
	})

	if base.LLLReduce {
		noLLL := base
		noLLL.LLLReduce = false
		scenarios = append(scenarios, ComparisonScenario{
			Name:     "No LLL Reduction",
			Request:  req,
			Settings: noLLL,
		})
	}

	return scenarios
}
