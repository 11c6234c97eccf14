package crystal

import (
	"fmt"
	"strconv"
	"strings"
)

// SymOp is a crystallographic symmetry operation acting on fractional
// coordinates: x' = R x + t.
type SymOp struct {
	Rot   Mat3
	Trans Vec3
}

// Apply transforms a fractional position.
func (op SymOp) Apply(f Vec3) Vec3 {
	var out Vec3
	for i := 0; i < 3; i++ {
		out[i] = op.Rot[i].Dot(f) + op.Trans[i]
	}
	return out
}

// ParseSymOp parses a Jones-faithful operation such as "-x+y,-x,z+1/3".
func ParseSymOp(s string) (SymOp, error) {
	s = strings.Trim(strings.TrimSpace(s), "'\"")
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return SymOp{}, fmt.Errorf("symmetry operation %q: expected 3 components, got %d", s, len(parts))
	}
	var op SymOp
	for i, part := range parts {
		row, t, err := parseSymComponent(part)
		if err != nil {
			return SymOp{}, fmt.Errorf("symmetry operation %q: %w", s, err)
		}
		op.Rot[i] = row
		op.Trans[i] = t
	}
	return op, nil
}

func parseSymComponent(expr string) (Vec3, float64, error) {
	expr = strings.ToLower(strings.ReplaceAll(expr, " ", ""))
	if expr == "" {
		return Vec3{}, 0, fmt.Errorf("empty component")
	}
	var row Vec3
	var trans float64

	i := 0
	for i < len(expr) {
		sign := 1.0
		if expr[i] == '+' || expr[i] == '-' {
			if expr[i] == '-' {
				sign = -1
			}
			i++
		}
		j := i
		for j < len(expr) && expr[j] != '+' && expr[j] != '-' {
			j++
		}
		term := expr[i:j]
		i = j
		if term == "" {
			return Vec3{}, 0, fmt.Errorf("dangling sign in %q", expr)
		}

		axis := -1
		switch term[len(term)-1] {
		case 'x':
			axis = 0
		case 'y':
			axis = 1
		case 'z':
			axis = 2
		}
		if axis >= 0 {
			coef := 1.0
			if prefix := strings.TrimSuffix(term[:len(term)-1], "*"); prefix != "" {
				v, err := parseFraction(prefix)
				if err != nil {
					return Vec3{}, 0, err
				}
				coef = v
			}
			row[axis] += sign * coef
			continue
		}
		v, err := parseFraction(term)
		if err != nil {
			return Vec3{}, 0, err
		}
		trans += sign * v
	}
	return row, trans, nil
}

func parseFraction(s string) (float64, error) {
	if num, den, ok := strings.Cut(s, "/"); ok {
		n, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return 0, fmt.Errorf("bad number %q", s)
		}
		d, err := strconv.ParseFloat(den, 64)
		if err != nil || d == 0 {
			return 0, fmt.Errorf("bad denominator %q", s)
		}
		return n / d, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("bad number %q", s)
	}
	return v, nil
}
