package engine

import (
	"fmt"

	"github.com/piwi3910/SlabGen/internal/model"
)

// Family is one of the hematite plane families in the rhombohedral setting.
type Family int

const (
	Family100 Family = iota
	Family001
	Family110
	Family012
)

// familyTable lists the symmetry-equivalent rhombohedral indices of each
// family and the orthorhombic index they all map to.
var familyTable = [...]struct {
	name    string
	orth    model.MillerIndex
	members []model.MillerIndex
}{
	Family100: {
		name: "(100)",
		orth: model.MillerIndex{1, 1, 0},
		members: []model.MillerIndex{
			{1, 0, 0}, {0, 1, 0}, {1, -1, 0}, {-1, 0, 0}, {0, -1, 0}, {-1, 1, 0},
		},
	},
	Family001: {
		name: "(001)",
		orth: model.MillerIndex{0, 0, 1},
		members: []model.MillerIndex{
			{0, 0, 1}, {0, 0, -1},
		},
	},
	Family110: {
		name: "(110)",
		orth: model.MillerIndex{1, 0, 0},
		members: []model.MillerIndex{
			{1, 1, 0}, {1, -2, 0}, {2, -1, 0}, {-1, -1, 0}, {-1, 2, 0}, {-2, 1, 0},
		},
	},
	Family012: {
		name: "(012)",
		orth: model.MillerIndex{0, 2, 2},
		members: []model.MillerIndex{
			{0, 1, 2}, {1, -1, 2}, {-1, -1, 2}, {0, -2, -2}, {-1, 1, -2}, {1, 1, -2},
		},
	},
}

// Families returns every family in table order.
func Families() []Family {
	return []Family{Family100, Family001, Family110, Family012}
}

func (f Family) valid() bool { return f >= 0 && int(f) < len(familyTable) }

func (f Family) String() string {
	if !f.valid() {
		return fmt.Sprintf("Family(%d)", int(f))
	}
	return familyTable[f].name
}

// Orthorhombic returns the orthorhombic-setting index of the family, or the
// zero index for an unknown family.
func (f Family) Orthorhombic() model.MillerIndex {
	if !f.valid() {
		return model.MillerIndex{}
	}
	return familyTable[f].orth
}

// Members returns the rhombohedral indices belonging to the family. An
// unknown family has none.
func (f Family) Members() []model.MillerIndex {
	if !f.valid() {
		return nil
	}
	return append([]model.MillerIndex(nil), familyTable[f].members...)
}

// FamilyOf finds the family containing m by exact membership.
func FamilyOf(m model.MillerIndex) (Family, error) {
	for _, f := range Families() {
		for _, member := range familyTable[f].members {
			if member == m {
				return f, nil
			}
		}
	}
	return 0, fmt.Errorf("%w %s", model.ErrUnsupportedMiller, m)
}

// TranslateMiller maps a rhombohedral-setting index to its orthorhombic
// equivalent. Indices outside the known families fail with
// model.ErrUnsupportedMiller.
func TranslateMiller(m model.MillerIndex) (model.MillerIndex, error) {
	f, err := FamilyOf(m)
	if err != nil {
		return model.MillerIndex{}, err
	}
	return f.Orthorhombic(), nil
}
