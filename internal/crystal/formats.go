package crystal

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Format identifies a structure file format.
type Format string

const (
	FormatCIF    Format = "cif"
	FormatPOSCAR Format = "vasp" // VASP 5 POSCAR
	FormatXYZ    Format = "xyz"  // extended XYZ with Lattice comment
)

// Formats lists the supported output formats.
var Formats = []Format{FormatCIF, FormatPOSCAR, FormatXYZ}

// ParseFormat converts a user supplied name into a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "cif":
		return FormatCIF, nil
	case "vasp", "poscar":
		return FormatPOSCAR, nil
	case "xyz", "extxyz":
		return FormatXYZ, nil
	default:
		return "", fmt.Errorf("unknown structure format %q", s)
	}
}

// Ext returns the file extension, including the dot.
func (f Format) Ext() string { return "." + string(f) }

// Encode writes s to w in format f.
func (f Format) Encode(w io.Writer, s *Structure) error {
	switch f {
	case FormatCIF:
		return WriteCIF(w, s)
	case FormatPOSCAR:
		return WritePOSCAR(w, s)
	case FormatXYZ:
		return WriteXYZ(w, s)
	default:
		return fmt.Errorf("unknown structure format %q", string(f))
	}
}

// WriteFile writes the structure to path, creating parent directories.
func (f Format) WriteFile(path string, s *Structure) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := f.Encode(out, s); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// WritePOSCAR writes the structure in VASP 5 POSCAR format with direct
// coordinates, grouping sites by species.
func WritePOSCAR(w io.Writer, s *Structure) error {
	bw := bufio.NewWriter(w)
	title := s.Title
	if title == "" {
		title = s.Formula()
	}
	fmt.Fprintln(bw, title)
	fmt.Fprintln(bw, "1.0")
	for _, v := range s.Lattice.Matrix {
		fmt.Fprintf(bw, "  %.10f  %.10f  %.10f\n", v[0], v[1], v[2])
	}

	species := s.Species()
	comp := s.Composition()
	counts := make([]string, len(species))
	for i, sp := range species {
		counts[i] = fmt.Sprint(comp[sp])
	}
	fmt.Fprintln(bw, strings.Join(species, " "))
	fmt.Fprintln(bw, strings.Join(counts, " "))
	fmt.Fprintln(bw, "direct")
	for _, sp := range species {
		for _, site := range s.Sites {
			if site.Species != sp {
				continue
			}
			fmt.Fprintf(bw, "  %.10f  %.10f  %.10f %s\n", site.Frac[0], site.Frac[1], site.Frac[2], sp)
		}
	}
	return bw.Flush()
}

// WriteXYZ writes the structure as extended XYZ with cartesian positions.
func WriteXYZ(w io.Writer, s *Structure) error {
	bw := bufio.NewWriter(w)
	m := s.Lattice.Matrix
	fmt.Fprintln(bw, s.Len())
	fmt.Fprintf(bw, "Lattice=\"%.8f %.8f %.8f %.8f %.8f %.8f %.8f %.8f %.8f\" Properties=species:S:1:pos:R:3 pbc=\"T T T\"\n",
		m[0][0], m[0][1], m[0][2], m[1][0], m[1][1], m[1][2], m[2][0], m[2][1], m[2][2])
	for i, site := range s.Sites {
		c := s.Cartesian(i)
		fmt.Fprintf(bw, "%-2s %14.8f %14.8f %14.8f\n", site.Species, c[0], c[1], c[2])
	}
	return bw.Flush()
}
