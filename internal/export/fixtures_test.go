package export

import (
	"fmt"

	"github.com/piwi3910/SlabGen/internal/model"
)

// buildTestSlab creates a small orthogonal Fe2O3-like slab with sites on a
// grid inside an a x b x c cell.
func buildTestSlab(index int, a, b, c float64) model.SlabResult {
	s := model.SlabResult{
		Index:      index,
		Miller:     model.MillerIndex{0, 0, 1},
		OrthMiller: model.MillerIndex{0, 0, 1},
		Shift:      0.25 * float64(index),
		MultA:      2,
		MultB:      1,
		Lengths:    [3]float64{a, b, c},
		Angles:     [3]float64{90, 90, 90},
		Lattice:    [3][3]float64{{a, 0, 0}, {0, b, 0}, {0, 0, c}},
		Files:      []string{fmt.Sprintf("out/slab_(0, 0, 1)_%d.cif", index)},
	}
	for i := 0; i < 4; i++ {
		s.Sites = append(s.Sites, model.AtomSite{Species: "Fe", X: a * float64(i) / 4, Y: b / 4, Z: c/2 - 1})
	}
	for i := 0; i < 6; i++ {
		s.Sites = append(s.Sites, model.AtomSite{Species: "O", X: a * float64(i) / 6, Y: 3 * b / 4, Z: c/2 + float64(i%2)})
	}
	s.Atoms = len(s.Sites)
	s.Composition = map[string]int{"Fe": 4, "O": 6}
	s.Formula = "Fe4 O6"
	s.SurfaceArea = a * b
	s.Thickness = 2
	s.Mass = 4*55.845 + 6*15.999
	return s
}

// buildTestRuns creates two runs with three slab variants in total.
func buildTestRuns() []model.RunResult {
	req1 := model.NewRequest("basal", 10, 20, 20, model.MillerIndex{0, 0, 1})
	req2 := model.NewRequest("", 8, 10, 10, model.MillerIndex{0, 1, 2})
	return []model.RunResult{
		{
			ID:         "run00001",
			CreatedAt:  "2026-01-01T00:00:00Z",
			Cell:       "Fe2O3_orth.cif",
			Request:    req1,
			OrthMiller: model.MillerIndex{0, 0, 1},
			Settings:   model.DefaultSettings(),
			Slabs:      []model.SlabResult{buildTestSlab(0, 10.07, 17.44, 30), buildTestSlab(1, 10.07, 17.44, 30)},
		},
		{
			ID:         "run00002",
			CreatedAt:  "2026-01-01T00:00:01Z",
			Cell:       "Fe2O3_orth.cif",
			Request:    req2,
			OrthMiller: model.MillerIndex{0, 1, 2},
			Settings:   model.DefaultSettings(),
			Slabs:      []model.SlabResult{buildTestSlab(0, 5.04, 15.2, 24)},
		},
	}
}
