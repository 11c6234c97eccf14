// Package surface cuts slabs out of a bulk crystal along a Miller plane.
//
// A Generator builds the oriented unit cell for the plane, finds every
// distinct termination by clustering the atomic planes along the surface
// normal, and stacks layers of the oriented cell with vacuum on top.
package surface

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/piwi3910/SlabGen/internal/crystal"
)

// lllDelta is the Lovasz parameter used when reducing slab lattices.
const lllDelta = 0.75

// Options controls slab generation.
type Options struct {
	MinSlabSize    float64 // Angstrom, or number of hkl planes with InUnitPlanes
	MinVacuumSize  float64 // Angstrom, or number of hkl planes with InUnitPlanes
	CenterSlab     bool    // translate the slab to the middle of the cell
	LLLReduce      bool    // LLL-reduce the slab lattice
	InUnitPlanes   bool    // interpret sizes as counts of hkl planes
	ShiftTolerance float64 // Angstrom; planes closer than this form one termination
	MatchTolerance float64 // site tolerance as a fraction of (V/n)^(1/3)
}

// DefaultOptions returns centering and LLL reduction on with 0.1 tolerances.
func DefaultOptions() Options {
	return Options{
		CenterSlab:     true,
		LLLReduce:      true,
		ShiftTolerance: 0.1,
		MatchTolerance: 0.1,
	}
}

// Generator produces slabs for one bulk structure and Miller plane.
type Generator struct {
	parent     *crystal.Structure
	miller     [3]int
	opts       Options
	normal     crystal.Vec3
	scale      crystal.IntMat3
	ouc        *crystal.Structure
	projHeight float64
}

// NewGenerator prepares the oriented unit cell for miller. The index is
// reduced by its greatest common divisor first.
func NewGenerator(parent *crystal.Structure, miller [3]int, opts Options) (*Generator, error) {
	if parent == nil || parent.Len() == 0 {
		return nil, errors.New("empty bulk structure")
	}
	if miller == [3]int{} {
		return nil, errors.New("zero Miller index")
	}
	if opts.MinSlabSize <= 0 {
		return nil, fmt.Errorf("minimum slab size must be positive, got %g", opts.MinSlabSize)
	}
	if opts.MinVacuumSize < 0 {
		return nil, fmt.Errorf("minimum vacuum size must not be negative, got %g", opts.MinVacuumSize)
	}
	miller = ReduceVector(miller)

	recp, err := parent.Lattice.Reciprocal()
	if err != nil {
		return nil, fmt.Errorf("reciprocal lattice: %w", err)
	}
	normal := recp.Cartesian(crystal.Vec3{float64(miller[0]), float64(miller[1]), float64(miller[2])}).Unit()

	scale := orientedScale(parent.Lattice, miller, normal)
	ouc, err := parent.MakeSupercell(scale)
	if err != nil {
		return nil, fmt.Errorf("oriented unit cell: %w", err)
	}

	return &Generator{
		parent:     parent,
		miller:     miller,
		opts:       opts,
		normal:     normal,
		scale:      scale,
		ouc:        ouc,
		projHeight: math.Abs(normal.Dot(ouc.Lattice.C())),
	}, nil
}

// orientedScale returns the matrix whose first two rows span the (hkl)
// plane and whose third row is the lattice vector most aligned with the
// plane normal.
func orientedScale(l crystal.Lattice, miller [3]int, normal crystal.Vec3) crystal.IntMat3 {
	type axisDist struct {
		axis int
		dist float64
	}
	var rows [][3]int
	var nonOrth []axisDist
	for i, h := range miller {
		if h == 0 {
			var e [3]int
			e[i] = 1
			rows = append(rows, e)
			continue
		}
		v := l.Matrix[i]
		nonOrth = append(nonOrth, axisDist{axis: i, dist: math.Abs(normal.Dot(v)) / v.Norm()})
	}

	cIndex := nonOrth[0]
	for _, nd := range nonOrth[1:] {
		if nd.dist > cIndex.dist {
			cIndex = nd
		}
	}

	if len(nonOrth) > 1 {
		lcmMiller := 1
		for _, nd := range nonOrth {
			lcmMiller = lcm(lcmMiller, miller[nd.axis])
		}
	pairs:
		for i := 0; i < len(nonOrth); i++ {
			for j := i + 1; j < len(nonOrth); j++ {
				ii, jj := nonOrth[i].axis, nonOrth[j].axis
				var v [3]int
				v[ii] = -lcmMiller / miller[ii]
				v[jj] = lcmMiller / miller[jj]
				rows = append(rows, v)
				if len(rows) == 2 {
					break pairs
				}
			}
		}
	}
	var e [3]int
	e[cIndex.axis] = 1
	rows = append(rows, e)

	var m crystal.IntMat3
	for i := 0; i < 3; i++ {
		m[i] = ReduceVector(rows[i])
	}
	if m.Det() < 0 {
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				m[i][j] = -m[i][j]
			}
		}
	}
	return m
}

// Miller returns the reduced Miller index.
func (g *Generator) Miller() [3]int { return g.miller }

// OrientedUnitCell returns a copy of the oriented unit cell.
func (g *Generator) OrientedUnitCell() *crystal.Structure { return g.ouc.Copy() }

// ScaleFactor returns the oriented unit cell in the parent basis.
func (g *Generator) ScaleFactor() crystal.IntMat3 { return g.scale }

// Normal returns the unit surface normal in cartesian coordinates.
func (g *Generator) Normal() crystal.Vec3 { return g.normal }

// ProjectedHeight returns the height of the oriented unit cell along the
// surface normal.
func (g *Generator) ProjectedHeight() float64 { return g.projHeight }

// Shifts returns the fractional c offsets that place the cut between every
// pair of neighbouring atomic planes, one per candidate termination.
func (g *Generator) Shifts() []float64 {
	sites := g.ouc.Sites
	n := len(sites)
	if n == 0 {
		return nil
	}
	if n == 1 {
		return []float64{crystal.Wrap(sites[0].Frac[2] + 0.5)}
	}

	clusters := clusterPlanes(sites, g.projHeight, g.opts.ShiftTolerance)

	// The last site of every cluster represents it.
	rep := make(map[int]float64)
	for i, c := range clusters {
		rep[c] = sites[i].Frac[2]
	}
	planes := make([]float64, 0, len(rep))
	for _, z := range rep {
		planes = append(planes, z-math.Floor(z))
	}
	sort.Float64s(planes)

	shifts := make([]float64, 0, len(planes))
	for i := range planes {
		var shift float64
		if i == len(planes)-1 {
			shift = (planes[0] + 1 + planes[i]) * 0.5
			if shift > 1 {
				shift--
			}
		} else {
			shift = (planes[i] + planes[i+1]) * 0.5
		}
		shifts = append(shifts, crystal.Wrap(shift))
	}
	sort.Float64s(shifts)
	return shifts
}

// layerCounts returns how many oriented cells make up the slab and the
// vacuum.
func (g *Generator) layerCounts() (slabLayers, vacuumLayers int, err error) {
	h := g.projHeight
	if h <= 0 {
		return 0, 0, errors.New("oriented unit cell has no height along the normal")
	}
	if g.opts.InUnitPlanes {
		d, err := g.parent.Lattice.DHKL(g.miller)
		if err != nil {
			return 0, 0, err
		}
		planes := math.Round(h/d*1e8) / 1e8
		return int(math.Ceil(g.opts.MinSlabSize / planes)), int(math.Ceil(g.opts.MinVacuumSize / planes)), nil
	}
	return int(math.Ceil(g.opts.MinSlabSize / h)), int(math.Ceil(g.opts.MinVacuumSize / h)), nil
}

// Slab builds the slab whose bottom surface is cut at the given fractional
// shift of the oriented unit cell.
func (g *Generator) Slab(shift float64) (*Slab, error) {
	nSlab, nVac, err := g.layerCounts()
	if err != nil {
		return nil, err
	}
	nLayers := nSlab + nVac

	a, b, c := g.ouc.Lattice.A(), g.ouc.Lattice.B(), g.ouc.Lattice.C()
	lattice := crystal.NewLattice(a, b, c.Scale(float64(nLayers)))

	sites := make([]crystal.Site, 0, g.ouc.Len()*nSlab)
	for layer := 0; layer < nSlab; layer++ {
		for _, site := range g.ouc.Sites {
			f := site.Frac
			f[2] = crystal.Wrap(f[2]-shift)/float64(nLayers) + float64(layer)/float64(nLayers)
			ns := site
			ns.Frac = f
			sites = append(sites, ns)
		}
	}
	structure := crystal.NewStructure(g.parent.Title, lattice, sites)
	scale := g.scale

	if g.opts.LLLReduce {
		reduced, mapping, ok := reduceSlabLattice(lattice)
		if ok {
			rs, err := structure.WithLattice(reduced)
			if err != nil {
				return nil, fmt.Errorf("apply reduced lattice: %w", err)
			}
			structure = rs
			scale = mapping.Mul(g.scale)
		}
	}

	structure.SortByElectronegativity()

	if g.opts.CenterSlab {
		var avg float64
		for _, site := range structure.Sites {
			avg += site.Frac[2]
		}
		avg /= float64(structure.Len())
		structure.Translate(crystal.Vec3{0, 0, 0.5 - avg})
	}

	// Standard orientation: c along z, fractional coordinates unchanged.
	abc, ang := structure.Lattice.Lengths(), structure.Lattice.Angles()
	structure.Lattice = crystal.LatticeFromParameters(abc[0], abc[1], abc[2], ang[0], ang[1], ang[2])

	return &Slab{
		Structure:        *structure,
		Miller:           g.miller,
		Shift:            shift,
		ScaleFactor:      scale,
		OrientedUnitCell: g.ouc.Copy(),
	}, nil
}

// reduceSlabLattice LLL-reduces a slab lattice while keeping the two
// in-plane vectors first, the stacking vector last and pointing the same
// way, and the basis right-handed. It reports false when the reduction
// mixes the stacking vector into the plane.
func reduceSlabLattice(l crystal.Lattice) (crystal.Lattice, crystal.IntMat3, bool) {
	reduced, mapping := l.LLLReduce(lllDelta)

	var inPlane []int
	stacking := -1
	for r := 0; r < 3; r++ {
		switch {
		case mapping[r][2] == 0:
			inPlane = append(inPlane, r)
		case stacking < 0 && (mapping[r][2] == 1 || mapping[r][2] == -1):
			stacking = r
		default:
			return crystal.Lattice{}, crystal.IntMat3{}, false
		}
	}
	if len(inPlane) != 2 || stacking < 0 {
		return crystal.Lattice{}, crystal.IntMat3{}, false
	}

	order := [3]int{inPlane[0], inPlane[1], stacking}
	var m crystal.Mat3
	var t crystal.IntMat3
	for i, r := range order {
		m[i] = reduced.Matrix[r]
		t[i] = mapping[r]
	}
	if t[2][2] < 0 {
		m[2] = m[2].Scale(-1)
		for j := 0; j < 3; j++ {
			t[2][j] = -t[2][j]
		}
	}
	if m.Det() < 0 {
		m[0], m[1] = m[1], m[0]
		t[0], t[1] = t[1], t[0]
	}
	return crystal.Lattice{Matrix: m}, t, true
}

// Slabs returns one slab per distinct termination, ordered by shift.
// Terminations that are translations of an earlier one are dropped.
func (g *Generator) Slabs() ([]*Slab, error) {
	matcher := Matcher{LatticeTol: 0.1, SiteTol: g.opts.MatchTolerance}
	var unique []*Slab
	for _, shift := range g.Shifts() {
		slab, err := g.Slab(shift)
		if err != nil {
			return nil, fmt.Errorf("slab at shift %.4f: %w", shift, err)
		}
		dup := false
		for _, u := range unique {
			if matcher.Equivalent(&u.Structure, &slab.Structure) {
				dup = true
				break
			}
		}
		if !dup {
			unique = append(unique, slab)
		}
	}
	return unique, nil
}

// ReduceVector divides an integer vector by the gcd of its components.
func ReduceVector(v [3]int) [3]int {
	d := 0
	for _, x := range v {
		d = gcd(d, x)
	}
	if d == 0 {
		return v
	}
	return [3]int{v[0] / d, v[1] / d, v[2] / d}
}

func gcd(a, b int) int {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func lcm(a, b int) int {
	if a == 0 || b == 0 {
		return 0
	}
	l := a / gcd(a, b) * b
	if l < 0 {
		l = -l
	}
	return l
}
