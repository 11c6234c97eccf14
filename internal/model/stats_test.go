package model

import (
	"math"
	"testing"
)

func TestCalculateSlabStats(t *testing.T) {
	// 60 atoms of Fe24 O36 on a 5.0356 x 8.7219 face
	area := 5.0356 * 8.7219
	mass := 24*55.845 + 36*15.999
	st := CalculateSlabStats(60, area, 12.9, mass)

	if math.Abs(st.AreaNm2-area/100) > 1e-12 {
		t.Errorf("unexpected nm^2 area %f", st.AreaNm2)
	}
	if math.Abs(st.AtomsPerNm2-60/(area/100)) > 1e-9 {
		t.Errorf("unexpected atoms per nm^2 %f", st.AtomsPerNm2)
	}
	// 1916.2 g/mol / NA / 43.92e-20 m^2 = 7.245e-3 g/m^2
	if math.Abs(st.MassPerArea-7.245) > 0.01 {
		t.Errorf("expected about 7.245 mg/m^2, got %f", st.MassPerArea)
	}
	if math.Abs(st.VolumePerAtom-area*12.9/60) > 1e-9 {
		t.Errorf("unexpected volume per atom %f", st.VolumePerAtom)
	}
}

func TestCalculateSlabStatsZeroArea(t *testing.T) {
	st := CalculateSlabStats(10, 0, 5, 100)
	if st.AtomsPerNm2 != 0 || st.MassPerArea != 0 {
		t.Errorf("expected zero per-area figures, got %+v", st)
	}
	if st.Atoms != 10 {
		t.Errorf("expected atom count to be kept, got %d", st.Atoms)
	}
}

func TestSummarizeRuns(t *testing.T) {
	runs := []RunResult{
		{Slabs: []SlabResult{{Atoms: 480, Files: []string{"a"}}, {Atoms: 960, Files: []string{"b", "c"}}}},
		{Slabs: []SlabResult{{Atoms: 120, Files: []string{"d"}}}},
		{},
	}
	st := SummarizeRuns(runs)
	if st.Runs != 3 || st.Slabs != 3 || st.Atoms != 1560 || st.Files != 4 || st.Largest != 960 {
		t.Errorf("unexpected stats %+v", st)
	}
}
