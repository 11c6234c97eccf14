package crystal

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// wrapTol collapses fractional coordinates within this distance of 1 to 0.
const wrapTol = 1e-8

// Site is one atom of a periodic structure.
type Site struct {
	Species   string  `json:"species"`
	Label     string  `json:"label,omitempty"`
	Frac      Vec3    `json:"frac"`
	Occupancy float64 `json:"occupancy"`
}

// Structure is a periodic arrangement of sites in a lattice.
type Structure struct {
	Title   string  `json:"title"`
	Lattice Lattice `json:"lattice"`
	Sites   []Site  `json:"sites"`
}

// NewStructure builds a structure from a lattice and sites. The sites are
// copied.
func NewStructure(title string, lattice Lattice, sites []Site) *Structure {
	cp := make([]Site, len(sites))
	copy(cp, sites)
	return &Structure{Title: title, Lattice: lattice, Sites: cp}
}

// Len returns the number of sites.
func (s *Structure) Len() int { return len(s.Sites) }

// Copy returns a deep copy of the structure.
func (s *Structure) Copy() *Structure {
	return NewStructure(s.Title, s.Lattice, s.Sites)
}

// Cartesian returns the cartesian position of site i.
func (s *Structure) Cartesian(i int) Vec3 {
	return s.Lattice.Cartesian(s.Sites[i].Frac)
}

// CartesianCoords returns the cartesian positions of all sites.
func (s *Structure) CartesianCoords() []Vec3 {
	out := make([]Vec3, len(s.Sites))
	for i := range s.Sites {
		out[i] = s.Cartesian(i)
	}
	return out
}

// Wrap maps a fractional coordinate into [0, 1).
func Wrap(f float64) float64 {
	f -= math.Floor(f)
	if f > 1-wrapTol {
		f = 0
	}
	return f
}

// WrapVec maps every component of a fractional vector into [0, 1).
func WrapVec(v Vec3) Vec3 {
	return Vec3{Wrap(v[0]), Wrap(v[1]), Wrap(v[2])}
}

// ToUnitCell wraps all fractional coordinates into [0, 1).
func (s *Structure) ToUnitCell() {
	for i := range s.Sites {
		s.Sites[i].Frac = WrapVec(s.Sites[i].Frac)
	}
}

// Translate shifts every site by a fractional vector and wraps the result.
func (s *Structure) Translate(frac Vec3) {
	for i := range s.Sites {
		s.Sites[i].Frac = WrapVec(s.Sites[i].Frac.Add(frac))
	}
}

// Composition returns the number of sites per species.
func (s *Structure) Composition() map[string]int {
	comp := make(map[string]int)
	for _, site := range s.Sites {
		comp[site.Species]++
	}
	return comp
}

// Species returns the distinct species ordered by electronegativity, then
// symbol.
func (s *Structure) Species() []string {
	comp := s.Composition()
	out := make([]string, 0, len(comp))
	for sp := range comp {
		out = append(out, sp)
	}
	sortSpecies(out)
	return out
}

func sortSpecies(species []string) {
	sort.Slice(species, func(i, j int) bool {
		ei, ej := ElementOrDefault(species[i]), ElementOrDefault(species[j])
		if ei.Electronegativity != ej.Electronegativity {
			return ei.Electronegativity < ej.Electronegativity
		}
		return species[i] < species[j]
	})
}

// Formula returns the full (unreduced) formula, e.g. "Fe24 O36".
func (s *Structure) Formula() string {
	comp := s.Composition()
	parts := make([]string, 0, len(comp))
	for _, sp := range s.Species() {
		parts = append(parts, fmt.Sprintf("%s%d", sp, comp[sp]))
	}
	return strings.Join(parts, " ")
}

// Mass returns the total mass in g/mol, weighted by occupancy.
func (s *Structure) Mass() float64 {
	var m float64
	for _, site := range s.Sites {
		occ := site.Occupancy
		if occ == 0 {
			occ = 1
		}
		m += ElementOrDefault(site.Species).Mass * occ
	}
	return m
}

// Density returns the mass density in g/cm^3.
func (s *Structure) Density() float64 {
	v := s.Lattice.Volume()
	if v == 0 {
		return 0
	}
	// 1 g/mol / 1 A^3 = 1.66054 g/cm^3
	return s.Mass() / v * 1.66053906660
}

// SortByElectronegativity orders sites by species electronegativity. The
// sort is stable so sites of the same species keep their relative order.
func (s *Structure) SortByElectronegativity() {
	sort.SliceStable(s.Sites, func(i, j int) bool {
		ei := ElementOrDefault(s.Sites[i].Species).Electronegativity
		ej := ElementOrDefault(s.Sites[j].Species).Electronegativity
		return ei < ej
	})
}

// MakeSupercell returns the supercell whose lattice rows are m * L. Every
// site of the original cell is replicated |det m| times and wrapped into
// the new cell.
func (s *Structure) MakeSupercell(m IntMat3) (*Structure, error) {
	det := m.Det()
	if det == 0 {
		return nil, fmt.Errorf("singular supercell matrix %v", m)
	}
	inv, err := m.Float().Inverse()
	if err != nil {
		return nil, err
	}

	// Bounding box of the supercell corners in units of the original cell.
	var lo, hi [3]int
	for corner := 0; corner < 8; corner++ {
		var p [3]int
		for r := 0; r < 3; r++ {
			if corner&(1<<r) != 0 {
				for c := 0; c < 3; c++ {
					p[c] += m[r][c]
				}
			}
		}
		for c := 0; c < 3; c++ {
			lo[c] = min(lo[c], p[c])
			hi[c] = max(hi[c], p[c])
		}
	}

	const eps = 1e-8
	var points []Vec3
	for i := lo[0]; i <= hi[0]; i++ {
		for j := lo[1]; j <= hi[1]; j++ {
			for k := lo[2]; k <= hi[2]; k++ {
				f := inv.RowMul(Vec3{float64(i), float64(j), float64(k)})
				if f[0] >= -eps && f[0] < 1-eps && f[1] >= -eps && f[1] < 1-eps && f[2] >= -eps && f[2] < 1-eps {
					points = append(points, Vec3{float64(i), float64(j), float64(k)})
				}
			}
		}
	}
	n := det
	if n < 0 {
		n = -n
	}
	if len(points) != n {
		return nil, fmt.Errorf("supercell %v: found %d lattice points, expected %d", m, len(points), n)
	}

	sites := make([]Site, 0, len(s.Sites)*n)
	for _, site := range s.Sites {
		for _, p := range points {
			f := inv.RowMul(site.Frac.Add(p))
			ns := site
			ns.Frac = WrapVec(f)
			sites = append(sites, ns)
		}
	}
	return NewStructure(s.Title, s.Lattice.Scaled(m), sites), nil
}

// WithLattice returns a copy of the structure re-expressed in a new lattice,
// keeping every site at its cartesian position and wrapping into the cell.
func (s *Structure) WithLattice(l Lattice) (*Structure, error) {
	inv, err := l.Matrix.Inverse()
	if err != nil {
		return nil, err
	}
	out := s.Copy()
	out.Lattice = l
	for i := range out.Sites {
		out.Sites[i].Frac = WrapVec(inv.RowMul(s.Cartesian(i)))
	}
	return out, nil
}

// PeriodicFracDistance returns the cartesian distance between two
// fractional positions under the minimum-image convention on a 3x3x3
// neighbourhood.
func (l Lattice) PeriodicFracDistance(a, b Vec3) float64 {
	d := a.Sub(b)
	for i := 0; i < 3; i++ {
		d[i] -= math.Round(d[i])
	}
	best := math.Inf(1)
	for i := -1; i <= 1; i++ {
		for j := -1; j <= 1; j++ {
			for k := -1; k <= 1; k++ {
				v := l.Cartesian(d.Add(Vec3{float64(i), float64(j), float64(k)})).Norm()
				if v < best {
					best = v
				}
			}
		}
	}
	return best
}

// Dedupe removes sites of the same species closer than tol Angstrom,
// keeping the first occurrence.
func (s *Structure) Dedupe(tol float64) {
	kept := s.Sites[:0]
	for _, site := range s.Sites {
		dup := false
		for _, k := range kept {
			if k.Species == site.Species && s.Lattice.PeriodicFracDistance(k.Frac, site.Frac) < tol {
				dup = true
				break
			}
		}
		if !dup {
			kept = append(kept, site)
		}
	}
	s.Sites = kept
}
