package crystal

import (
	"strings"
	"unicode"
)

// Element holds the per-element data used for sorting, statistics and
// drawing.
type Element struct {
	Symbol            string
	Z                 int
	Mass              float64 // g/mol
	Electronegativity float64 // Pauling; 0 when undefined
	CovalentRadius    float64 // Angstrom
	Color             [3]int  // Jmol-style RGB
}

var elements = []Element{
	{"H", 1, 1.008, 2.20, 0.31, [3]int{255, 255, 255}},
	{"He", 2, 4.0026, 0, 0.28, [3]int{217, 255, 255}},
	{"Li", 3, 6.94, 0.98, 1.28, [3]int{204, 128, 255}},
	{"Be", 4, 9.0122, 1.57, 0.96, [3]int{194, 255, 0}},
	{"B", 5, 10.81, 2.04, 0.84, [3]int{255, 181, 181}},
	{"C", 6, 12.011, 2.55, 0.76, [3]int{144, 144, 144}},
	{"N", 7, 14.007, 3.04, 0.71, [3]int{48, 80, 248}},
	{"O", 8, 15.999, 3.44, 0.66, [3]int{255, 13, 13}},
	{"F", 9, 18.998, 3.98, 0.57, [3]int{144, 224, 80}},
	{"Ne", 10, 20.180, 0, 0.58, [3]int{179, 227, 245}},
	{"Na", 11, 22.990, 0.93, 1.66, [3]int{171, 92, 242}},
	{"Mg", 12, 24.305, 1.31, 1.41, [3]int{138, 255, 0}},
	{"Al", 13, 26.982, 1.61, 1.21, [3]int{191, 166, 166}},
	{"Si", 14, 28.085, 1.90, 1.11, [3]int{240, 200, 160}},
	{"P", 15, 30.974, 2.19, 1.07, [3]int{255, 128, 0}},
	{"S", 16, 32.06, 2.58, 1.05, [3]int{255, 255, 48}},
	{"Cl", 17, 35.45, 3.16, 1.02, [3]int{31, 240, 31}},
	{"Ar", 18, 39.948, 0, 1.06, [3]int{128, 209, 227}},
	{"K", 19, 39.098, 0.82, 2.03, [3]int{143, 64, 212}},
	{"Ca", 20, 40.078, 1.00, 1.76, [3]int{61, 255, 0}},
	{"Sc", 21, 44.956, 1.36, 1.70, [3]int{230, 230, 230}},
	{"Ti", 22, 47.867, 1.54, 1.60, [3]int{191, 194, 199}},
	{"V", 23, 50.942, 1.63, 1.53, [3]int{166, 166, 171}},
	{"Cr", 24, 51.996, 1.66, 1.39, [3]int{138, 153, 199}},
	{"Mn", 25, 54.938, 1.55, 1.39, [3]int{156, 122, 199}},
	{"Fe", 26, 55.845, 1.83, 1.32, [3]int{224, 102, 51}},
	{"Co", 27, 58.933, 1.88, 1.26, [3]int{240, 144, 160}},
	{"Ni", 28, 58.693, 1.91, 1.24, [3]int{80, 208, 80}},
	{"Cu", 29, 63.546, 1.90, 1.32, [3]int{200, 128, 51}},
	{"Zn", 30, 65.38, 1.65, 1.22, [3]int{125, 128, 176}},
	{"Ga", 31, 69.723, 1.81, 1.22, [3]int{194, 143, 143}},
	{"Ge", 32, 72.630, 2.01, 1.20, [3]int{102, 143, 143}},
	{"As", 33, 74.922, 2.18, 1.19, [3]int{189, 128, 227}},
	{"Se", 34, 78.971, 2.55, 1.20, [3]int{255, 161, 0}},
	{"Br", 35, 79.904, 2.96, 1.20, [3]int{166, 41, 41}},
	{"Kr", 36, 83.798, 3.00, 1.16, [3]int{92, 184, 209}},
	{"Sr", 38, 87.62, 0.95, 1.95, [3]int{0, 255, 0}},
	{"Y", 39, 88.906, 1.22, 1.90, [3]int{148, 255, 255}},
	{"Zr", 40, 91.224, 1.33, 1.75, [3]int{148, 224, 224}},
	{"Mo", 42, 95.95, 2.16, 1.54, [3]int{84, 181, 181}},
	{"Pd", 46, 106.42, 2.20, 1.39, [3]int{0, 105, 133}},
	{"Ag", 47, 107.87, 1.93, 1.45, [3]int{192, 192, 192}},
	{"Sn", 50, 118.71, 1.96, 1.39, [3]int{102, 128, 128}},
	{"I", 53, 126.90, 2.66, 1.39, [3]int{148, 0, 148}},
	{"Ba", 56, 137.33, 0.89, 2.15, [3]int{0, 201, 0}},
	{"Ce", 58, 140.12, 1.12, 2.04, [3]int{255, 255, 199}},
	{"W", 74, 183.84, 2.36, 1.62, [3]int{33, 148, 214}},
	{"Pt", 78, 195.08, 2.28, 1.36, [3]int{208, 208, 224}},
	{"Au", 79, 196.97, 2.54, 1.36, [3]int{255, 209, 35}},
	{"Pb", 82, 207.2, 2.33, 1.46, [3]int{87, 89, 97}},
	{"Bi", 83, 208.98, 2.02, 1.48, [3]int{158, 79, 181}},
}

var elementsBySymbol = func() map[string]Element {
	m := make(map[string]Element, len(elements))
	for _, e := range elements {
		m[e.Symbol] = e
	}
	return m
}()

// LookupElement returns the element data for a symbol.
func LookupElement(symbol string) (Element, bool) {
	e, ok := elementsBySymbol[symbol]
	return e, ok
}

// ElementOrDefault returns the element for symbol, or a neutral placeholder
// so unknown species can still be drawn and sorted.
func ElementOrDefault(symbol string) Element {
	if e, ok := elementsBySymbol[symbol]; ok {
		return e
	}
	return Element{Symbol: symbol, Electronegativity: 4.0, CovalentRadius: 1.0, Color: [3]int{255, 20, 147}}
}

// NormalizeSpecies strips oxidation states and label suffixes from a CIF
// type symbol or label, e.g. "Fe3+" -> "Fe", "O1" -> "O", "FE" -> "Fe".
func NormalizeSpecies(s string) string {
	s = strings.TrimSpace(s)
	var letters []rune
	for _, r := range s {
		if !unicode.IsLetter(r) {
			break
		}
		letters = append(letters, r)
		if len(letters) == 2 {
			break
		}
	}
	if len(letters) == 0 {
		return ""
	}
	first := strings.ToUpper(string(letters[0]))
	if len(letters) == 2 {
		two := first + strings.ToLower(string(letters[1]))
		if _, ok := elementsBySymbol[two]; ok {
			return two
		}
		if _, ok := elementsBySymbol[first]; ok {
			return first
		}
		return two
	}
	return first
}
