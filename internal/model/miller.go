package model

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// MillerIndex identifies a crystallographic plane.
type MillerIndex [3]int

// String formats the index as a tuple, e.g. "(0, 0, 1)". Output file names
// embed this form.
func (m MillerIndex) String() string {
	return fmt.Sprintf("(%d, %d, %d)", m[0], m[1], m[2])
}

// Compact formats the index without separators when every component has a
// single digit, e.g. "1-10".
func (m MillerIndex) Compact() string {
	var b strings.Builder
	for _, v := range m {
		if v > 9 || v < -9 {
			return fmt.Sprintf("%d,%d,%d", m[0], m[1], m[2])
		}
		b.WriteString(strconv.Itoa(v))
	}
	return b.String()
}

// IsZero reports whether all components are zero.
func (m MillerIndex) IsZero() bool {
	return m == MillerIndex{}
}

func (m MillerIndex) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *MillerIndex) UnmarshalText(text []byte) error {
	v, err := ParseMillerIndex(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// ParseMillerIndex accepts "0,0,1", "(0, 0, 1)", "[0 0 1]", "0 0 1" and the
// compact forms "001", "1-10" and "-102".
func ParseMillerIndex(s string) (MillerIndex, error) {
	trimmed := strings.TrimSpace(s)
	trimmed = strings.TrimLeft(trimmed, "([{")
	trimmed = strings.TrimRight(trimmed, ")]}")
	trimmed = strings.TrimSpace(trimmed)
	if trimmed == "" {
		return MillerIndex{}, fmt.Errorf("empty Miller index")
	}

	var fields []string
	if strings.ContainsAny(trimmed, ", \t;") {
		fields = strings.FieldsFunc(trimmed, func(r rune) bool {
			return r == ',' || r == ';' || unicode.IsSpace(r)
		})
	} else {
		var err error
		fields, err = splitCompact(trimmed)
		if err != nil {
			return MillerIndex{}, fmt.Errorf("invalid Miller index %q: %w", s, err)
		}
	}
	if len(fields) != 3 {
		return MillerIndex{}, fmt.Errorf("invalid Miller index %q: expected 3 components, got %d", s, len(fields))
	}

	var m MillerIndex
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return MillerIndex{}, fmt.Errorf("invalid Miller index %q: component %q is not an integer", s, f)
		}
		m[i] = v
	}
	return m, nil
}

// splitCompact splits "1-10" into "1", "-1", "0".
func splitCompact(s string) ([]string, error) {
	var out []string
	sign := ""
	for _, r := range s {
		switch {
		case r == '-' || r == '+':
			if sign != "" {
				return nil, fmt.Errorf("repeated sign")
			}
			if r == '-' {
				sign = "-"
			} else {
				sign = "+"
			}
		case r >= '0' && r <= '9':
			out = append(out, sign+string(r))
			sign = ""
		default:
			return nil, fmt.Errorf("unexpected character %q", r)
		}
	}
	if sign != "" {
		return nil, fmt.Errorf("trailing sign")
	}
	return out, nil
}
