package surface

import (
	"math"

	"github.com/piwi3910/SlabGen/internal/crystal"
)

// Matcher decides whether two structures are the same arrangement of atoms
// up to a rigid translation.
type Matcher struct {
	LatticeTol float64 // relative tolerance on lattice lengths
	SiteTol    float64 // site tolerance as a fraction of (V/n)^(1/3)
	AngleTol   float64 // degrees; defaults to 5
}

// Equivalent reports whether b is a translated copy of a. Both structures
// must have the same composition and compatible lattices.
func (m Matcher) Equivalent(a, b *crystal.Structure) bool {
	if a.Len() != b.Len() || a.Len() == 0 {
		return a.Len() == b.Len()
	}
	if !sameComposition(a, b) {
		return false
	}
	if !m.similarLattices(a.Lattice, b.Lattice) {
		return false
	}

	tol := m.SiteTol * math.Cbrt(a.Lattice.Volume()/float64(a.Len()))

	// Anchor on the rarest species to keep the number of trial translations
	// small.
	anchor := rarestSpecies(a)
	var origin crystal.Vec3
	for _, site := range a.Sites {
		if site.Species == anchor {
			origin = site.Frac
			break
		}
	}
	for _, site := range b.Sites {
		if site.Species != anchor {
			continue
		}
		t := site.Frac.Sub(origin)
		if matchesUnder(a, b, t, tol) {
			return true
		}
	}
	return false
}

func (m Matcher) similarLattices(la, lb crystal.Lattice) bool {
	angleTol := m.AngleTol
	if angleTol == 0 {
		angleTol = 5
	}
	ea, eb := la.Lengths(), lb.Lengths()
	aa, ab := la.Angles(), lb.Angles()
	for i := 0; i < 3; i++ {
		if math.Abs(ea[i]-eb[i]) > m.LatticeTol*math.Max(ea[i], eb[i]) {
			return false
		}
		if math.Abs(aa[i]-ab[i]) > angleTol {
			return false
		}
	}
	return true
}

// matchesUnder reports whether every site of a, translated by t, lands on
// an unused site of the same species in b.
func matchesUnder(a, b *crystal.Structure, t crystal.Vec3, tol float64) bool {
	used := make([]bool, b.Len())
	for _, sa := range a.Sites {
		p := sa.Frac.Add(t)
		found := false
		for j, sb := range b.Sites {
			if used[j] || sb.Species != sa.Species {
				continue
			}
			if nearestImageDistance(a.Lattice, p, sb.Frac) <= tol {
				used[j] = true
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// nearestImageDistance is the cartesian length of the fractional difference
// folded into [-0.5, 0.5). Only exact for near-orthogonal cells.
func nearestImageDistance(l crystal.Lattice, a, b crystal.Vec3) float64 {
	d := a.Sub(b)
	for i := 0; i < 3; i++ {
		d[i] -= math.Round(d[i])
	}
	return l.Cartesian(d).Norm()
}

func sameComposition(a, b *crystal.Structure) bool {
	ca, cb := a.Composition(), b.Composition()
	if len(ca) != len(cb) {
		return false
	}
	for sp, n := range ca {
		if cb[sp] != n {
			return false
		}
	}
	return true
}

func rarestSpecies(s *crystal.Structure) string {
	comp := s.Composition()
	best, bestN := "", math.MaxInt
	for _, sp := range s.Species() {
		if comp[sp] < bestN {
			best, bestN = sp, comp[sp]
		}
	}
	return best
}
