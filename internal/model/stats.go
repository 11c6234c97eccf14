package model

// avogadro is the Avogadro constant in 1/mol.
const avogadro = 6.02214076e23

// SlabStats holds per-area figures for one slab.
type SlabStats struct {
	Atoms         int     `json:"atoms"`
	SurfaceArea   float64 `json:"surface_area"`    // Angstrom^2
	AreaNm2       float64 `json:"area_nm2"`        // nm^2
	AtomsPerNm2   float64 `json:"atoms_per_nm2"`   // Both faces counted once
	Thickness     float64 `json:"thickness"`       // Angstrom
	MassPerArea   float64 `json:"mass_per_area"`   // mg/m^2
	VolumePerAtom float64 `json:"volume_per_atom"` // Angstrom^3, slab region only
}

// CalculateSlabStats derives per-area figures from the atom count, the face
// area in Angstrom^2, the atom extent along the normal and the mass in g/mol.
func CalculateSlabStats(atoms int, area, thickness, mass float64) SlabStats {
	st := SlabStats{
		Atoms:       atoms,
		SurfaceArea: area,
		AreaNm2:     area / 100,
		Thickness:   thickness,
	}
	if area <= 0 {
		return st
	}
	st.AtomsPerNm2 = float64(atoms) / st.AreaNm2
	// g/mol over Angstrom^2 to mg/m^2: (1/NA) g / 1e-20 m^2 * 1e3 mg/g
	st.MassPerArea = mass / avogadro / (area * 1e-20) * 1e3
	if atoms > 0 && thickness > 0 {
		st.VolumePerAtom = area * thickness / float64(atoms)
	}
	return st
}

// RunStats summarizes a batch of runs.
type RunStats struct {
	Runs    int `json:"runs"`
	Slabs   int `json:"slabs"`
	Atoms   int `json:"atoms"`
	Files   int `json:"files"`
	Largest int `json:"largest"` // Atom count of the biggest slab
}

// SummarizeRuns totals the slabs, atoms and files of several runs.
func SummarizeRuns(runs []RunResult) RunStats {
	st := RunStats{Runs: len(runs)}
	for _, r := range runs {
		for _, s := range r.Slabs {
			st.Slabs++
			st.Atoms += s.Atoms
			st.Files += len(s.Files)
			if s.Atoms > st.Largest {
				st.Largest = s.Atoms
			}
		}
	}
	return st
}
