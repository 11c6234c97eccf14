package surface

import (
	"fmt"
	"math"

	"github.com/piwi3910/SlabGen/internal/crystal"
)

// orthoTol is the length (Angstrom) below which the in-plane component of
// the stacking vector is ignored.
const orthoTol = 1e-8

// Slab is a finite stack of atomic layers cut along a Miller plane, with
// vacuum along c. The first two lattice vectors lie in the surface plane.
type Slab struct {
	crystal.Structure

	Miller [3]int
	Shift  float64

	// ScaleFactor expresses the slab's in-plane vectors, and one layer of
	// the oriented unit cell, in the basis of the bulk lattice.
	ScaleFactor      crystal.IntMat3
	OrientedUnitCell *crystal.Structure
}

// Copy returns a deep copy of the slab.
func (s *Slab) Copy() *Slab {
	out := *s
	out.Structure = *s.Structure.Copy()
	if s.OrientedUnitCell != nil {
		out.OrientedUnitCell = s.OrientedUnitCell.Copy()
	}
	return &out
}

// Normal returns the unit vector perpendicular to the surface.
func (s *Slab) Normal() crystal.Vec3 {
	return s.Lattice.A().Cross(s.Lattice.B()).Unit()
}

// SurfaceArea returns the area of one face of the slab.
func (s *Slab) SurfaceArea() float64 {
	return s.Lattice.A().Cross(s.Lattice.B()).Norm()
}

// Thickness returns the distance along the normal between the lowest and
// highest atom.
func (s *Slab) Thickness() float64 {
	if s.Len() == 0 {
		return 0
	}
	n := s.Normal()
	lo, hi := math.Inf(1), math.Inf(-1)
	for i := range s.Sites {
		h := s.Cartesian(i).Dot(n)
		lo = math.Min(lo, h)
		hi = math.Max(hi, h)
	}
	return hi - lo
}

// MakeSupercell repeats the slab ma times along a and mb times along b.
func (s *Slab) MakeSupercell(ma, mb int) (*Slab, error) {
	if ma < 1 || mb < 1 {
		return nil, fmt.Errorf("in-plane multipliers must be positive, got %dx%d", ma, mb)
	}
	m := crystal.Diag(ma, mb, 1)
	st, err := s.Structure.MakeSupercell(m)
	if err != nil {
		return nil, err
	}
	out := s.Copy()
	out.Structure = *st
	out.ScaleFactor = m.Mul(s.ScaleFactor)
	return out, nil
}

// IsOrthogonalC reports whether c is perpendicular to the surface plane
// within tol Angstrom.
func (s *Slab) IsOrthogonalC(tol float64) bool {
	c := s.Lattice.C()
	n := s.Normal()
	return c.Sub(n.Scale(c.Dot(n))).Norm() <= tol
}

// OrthogonalC returns a copy of the slab whose c vector is replaced by its
// projection onto the surface normal. Atoms keep their cartesian positions
// and are wrapped back into the new cell. A slab that already has an
// orthogonal c is returned unchanged.
func (s *Slab) OrthogonalC() (*Slab, error) {
	if s.IsOrthogonalC(orthoTol) {
		return s.Copy(), nil
	}
	n := s.Normal()
	c := s.Lattice.C()
	l := crystal.NewLattice(s.Lattice.A(), s.Lattice.B(), n.Scale(c.Dot(n)))
	st, err := s.Structure.WithLattice(l)
	if err != nil {
		return nil, fmt.Errorf("orthogonalize c: %w", err)
	}
	out := s.Copy()
	out.Structure = *st
	return out, nil
}
