// Package crystal provides the lattice and structure primitives used to build
// slab models: periodic lattices, fractional sites, supercells and the file
// formats (CIF, POSCAR, XYZ) structures are read from and written to.
package crystal

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Vec3 is a 3-component vector in Angstrom or fractional units.
type Vec3 [3]float64

func (v Vec3) r3() r3.Vec { return r3.Vec{X: v[0], Y: v[1], Z: v[2]} }

func fromR3(p r3.Vec) Vec3 { return Vec3{p.X, p.Y, p.Z} }

func (v Vec3) Add(o Vec3) Vec3      { return fromR3(r3.Add(v.r3(), o.r3())) }
func (v Vec3) Sub(o Vec3) Vec3      { return fromR3(r3.Sub(v.r3(), o.r3())) }
func (v Vec3) Scale(s float64) Vec3 { return fromR3(r3.Scale(s, v.r3())) }
func (v Vec3) Dot(o Vec3) float64   { return r3.Dot(v.r3(), o.r3()) }
func (v Vec3) Norm() float64        { return r3.Norm(v.r3()) }

// Cross returns the cross product v x o.
func (v Vec3) Cross(o Vec3) Vec3 {
	return fromR3(r3.Cross(v.r3(), o.r3()))
}

// Unit returns v scaled to length 1. The zero vector is returned unchanged.
func (v Vec3) Unit() Vec3 {
	if v.Norm() == 0 {
		return v
	}
	return fromR3(r3.Unit(v.r3()))
}

// Mat3 is a 3x3 matrix stored by rows.
type Mat3 [3]Vec3

// Identity returns the 3x3 identity matrix.
func Identity() Mat3 {
	return Mat3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
}

func (m Mat3) dense() *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		m[0][0], m[0][1], m[0][2],
		m[1][0], m[1][1], m[1][2],
		m[2][0], m[2][1], m[2][2],
	})
}

func fromDense(d mat.Matrix) Mat3 {
	var m Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			m[i][j] = d.At(i, j)
		}
	}
	return m
}

func (m Mat3) Det() float64 {
	return mat.Det(m.dense())
}

func (m Mat3) Transpose() Mat3 {
	return fromDense(m.dense().T())
}

// Inverse returns the matrix inverse. It fails for singular matrices.
func (m Mat3) Inverse() (Mat3, error) {
	d := m.dense()
	if det := mat.Det(d); math.Abs(det) < 1e-12 {
		return Mat3{}, fmt.Errorf("singular matrix (det=%g)", det)
	}
	var inv mat.Dense
	if err := inv.Inverse(d); err != nil {
		return Mat3{}, fmt.Errorf("invert matrix: %w", err)
	}
	return fromDense(&inv), nil
}

// Mul returns the matrix product m * o.
func (m Mat3) Mul(o Mat3) Mat3 {
	var r mat.Dense
	r.Mul(m.dense(), o.dense())
	return fromDense(&r)
}

// RowMul returns the row vector v multiplied by m (v * m).
func (m Mat3) RowMul(v Vec3) Vec3 {
	r := r3.Add(r3.Scale(v[0], m[0].r3()), r3.Scale(v[1], m[1].r3()))
	return fromR3(r3.Add(r, r3.Scale(v[2], m[2].r3())))
}

// IntMat3 is an integer 3x3 matrix, used for supercell and basis mappings.
type IntMat3 [3][3]int

// Float converts the integer matrix to a Mat3.
func (m IntMat3) Float() Mat3 {
	var f Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			f[i][j] = float64(m[i][j])
		}
	}
	return f
}

// Mul returns the integer matrix product m * o.
func (m IntMat3) Mul(o IntMat3) IntMat3 {
	var r IntMat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				r[i][j] += m[i][k] * o[k][j]
			}
		}
	}
	return r
}

// Det returns the integer determinant.
func (m IntMat3) Det() int {
	return m[0][0]*(m[1][1]*m[2][2]-m[1][2]*m[2][1]) -
		m[0][1]*(m[1][0]*m[2][2]-m[1][2]*m[2][0]) +
		m[0][2]*(m[1][0]*m[2][1]-m[1][1]*m[2][0])
}

// Diag returns a diagonal integer matrix.
func Diag(a, b, c int) IntMat3 {
	return IntMat3{{a, 0, 0}, {0, b, 0}, {0, 0, c}}
}

// Lattice is a periodic lattice whose rows are the a, b and c vectors in
// Angstrom.
type Lattice struct {
	Matrix Mat3 `json:"matrix"`
}

// NewLattice builds a lattice from three row vectors.
func NewLattice(a, b, c Vec3) Lattice {
	return Lattice{Matrix: Mat3{a, b, c}}
}

// LatticeFromParameters builds a lattice from lengths (Angstrom) and angles
// (degrees) in the standard orientation: c along z, a in the xz plane.
func LatticeFromParameters(a, b, c, alpha, beta, gamma float64) Lattice {
	ar := alpha * math.Pi / 180
	br := beta * math.Pi / 180
	gr := gamma * math.Pi / 180

	val := (math.Cos(ar)*math.Cos(br) - math.Cos(gr)) / (math.Sin(ar) * math.Sin(br))
	val = math.Max(-1, math.Min(1, val))
	gammaStar := math.Acos(val)

	va := Vec3{a * math.Sin(br), 0, a * math.Cos(br)}
	vb := Vec3{-b * math.Sin(ar) * math.Cos(gammaStar), b * math.Sin(ar) * math.Sin(gammaStar), b * math.Cos(ar)}
	vc := Vec3{0, 0, c}
	return NewLattice(va, vb, vc)
}

// A, B and C return the lattice vectors.
func (l Lattice) A() Vec3 { return l.Matrix[0] }
func (l Lattice) B() Vec3 { return l.Matrix[1] }
func (l Lattice) C() Vec3 { return l.Matrix[2] }

// Lengths returns |a|, |b| and |c|.
func (l Lattice) Lengths() Vec3 {
	return Vec3{l.Matrix[0].Norm(), l.Matrix[1].Norm(), l.Matrix[2].Norm()}
}

// Angles returns alpha, beta and gamma in degrees.
func (l Lattice) Angles() Vec3 {
	angle := func(u, v Vec3) float64 {
		c := u.Dot(v) / (u.Norm() * v.Norm())
		c = math.Max(-1, math.Min(1, c))
		return math.Acos(c) * 180 / math.Pi
	}
	return Vec3{
		angle(l.Matrix[1], l.Matrix[2]),
		angle(l.Matrix[0], l.Matrix[2]),
		angle(l.Matrix[0], l.Matrix[1]),
	}
}

// Volume returns the cell volume in cubic Angstrom.
func (l Lattice) Volume() float64 {
	return math.Abs(l.Matrix.Det())
}

// Cartesian converts fractional coordinates to cartesian.
func (l Lattice) Cartesian(frac Vec3) Vec3 {
	return l.Matrix.RowMul(frac)
}

// Fractional converts cartesian coordinates to fractional.
func (l Lattice) Fractional(cart Vec3) (Vec3, error) {
	inv, err := l.Matrix.Inverse()
	if err != nil {
		return Vec3{}, err
	}
	return inv.RowMul(cart), nil
}

// Reciprocal returns the crystallographic reciprocal lattice (no 2*pi factor).
func (l Lattice) Reciprocal() (Lattice, error) {
	inv, err := l.Matrix.Inverse()
	if err != nil {
		return Lattice{}, err
	}
	return Lattice{Matrix: inv.Transpose()}, nil
}

// DHKL returns the interplanar spacing of the (hkl) family.
func (l Lattice) DHKL(hkl [3]int) (float64, error) {
	recp, err := l.Reciprocal()
	if err != nil {
		return 0, err
	}
	g := recp.Cartesian(Vec3{float64(hkl[0]), float64(hkl[1]), float64(hkl[2])})
	n := g.Norm()
	if n == 0 {
		return 0, fmt.Errorf("zero Miller index")
	}
	return 1 / n, nil
}

// Scaled returns the lattice with its rows multiplied by m (m * L).
func (l Lattice) Scaled(m IntMat3) Lattice {
	return Lattice{Matrix: m.Float().Mul(l.Matrix)}
}

// LLLReduce returns the Lenstra-Lenstra-Lovasz reduced lattice and the
// integer mapping T such that reduced = T * original. delta is the Lovasz
// parameter, 0.75 in the usual formulation.
func (l Lattice) LLLReduce(delta float64) (Lattice, IntMat3) {
	b := l.Matrix
	t := IntMat3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}

	var bs Mat3
	var mu [3][3]float64
	var norms [3]float64
	gramSchmidt := func() {
		for i := 0; i < 3; i++ {
			bs[i] = b[i]
			for j := 0; j < i; j++ {
				mu[i][j] = b[i].Dot(bs[j]) / norms[j]
				bs[i] = bs[i].Sub(bs[j].Scale(mu[i][j]))
			}
			norms[i] = bs[i].Dot(bs[i])
		}
	}

	gramSchmidt()
	k := 1
	for iter := 0; k < 3 && iter < 1000; iter++ {
		for j := k - 1; j >= 0; j-- {
			q := int(math.Round(mu[k][j]))
			if q != 0 {
				b[k] = b[k].Sub(b[j].Scale(float64(q)))
				for c := 0; c < 3; c++ {
					t[k][c] -= q * t[j][c]
				}
				gramSchmidt()
			}
		}
		if norms[k] >= (delta-mu[k][k-1]*mu[k][k-1])*norms[k-1] {
			k++
			continue
		}
		b[k], b[k-1] = b[k-1], b[k]
		t[k], t[k-1] = t[k-1], t[k]
		gramSchmidt()
		if k > 1 {
			k--
		}
	}
	return Lattice{Matrix: b}, t
}

// Equal reports whether two lattices have the same vectors within tol.
func (l Lattice) Equal(o Lattice, tol float64) bool {
	for i := 0; i < 3; i++ {
		if l.Matrix[i].Sub(o.Matrix[i]).Norm() > tol {
			return false
		}
	}
	return true
}

func (l Lattice) String() string {
	abc := l.Lengths()
	ang := l.Angles()
	return fmt.Sprintf("a=%.4f b=%.4f c=%.4f alpha=%.2f beta=%.2f gamma=%.2f",
		abc[0], abc[1], abc[2], ang[0], ang[1], ang[2])
}
