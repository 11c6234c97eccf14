package crystal

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// symmetryMergeTol is the distance (Angstrom) below which symmetry images of
// the same species are treated as one site.
const symmetryMergeTol = 0.01

type cifToken struct {
	text   string
	quoted bool
}

// cifBlock is the flattened content of one CIF data block.
type cifBlock struct {
	name  string
	items map[string]string
	loops []cifLoop
}

type cifLoop struct {
	tags []string
	rows [][]string
}

func (l cifLoop) column(tag string) int {
	for i, t := range l.tags {
		if t == tag {
			return i
		}
	}
	return -1
}

func (b *cifBlock) findLoop(tags ...string) (cifLoop, bool) {
	for _, l := range b.loops {
		for _, t := range tags {
			if l.column(t) >= 0 {
				return l, true
			}
		}
	}
	return cifLoop{}, false
}

// tokenizeCIF splits CIF text into tokens, dropping comments and folding
// semicolon-delimited text fields into a single quoted token.
func tokenizeCIF(r io.Reader) ([]cifToken, error) {
	var tokens []cifToken
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	inText := false
	var text strings.Builder
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(line, ";") {
			if inText {
				tokens = append(tokens, cifToken{text: text.String(), quoted: true})
				text.Reset()
				inText = false
				continue
			}
			inText = true
			text.WriteString(line[1:])
			continue
		}
		if inText {
			text.WriteString("\n")
			text.WriteString(line)
			continue
		}

		i := 0
		for i < len(line) {
			c := line[i]
			switch {
			case c == ' ' || c == '\t':
				i++
			case c == '#':
				i = len(line)
			case c == '\'' || c == '"':
				end := i + 1
				for end < len(line) {
					if line[end] == c && (end+1 == len(line) || line[end+1] == ' ' || line[end+1] == '\t') {
						break
					}
					end++
				}
				if end >= len(line) {
					return nil, fmt.Errorf("unterminated quoted value in line %q", line)
				}
				tokens = append(tokens, cifToken{text: line[i+1 : end], quoted: true})
				i = end + 1
			default:
				end := i
				for end < len(line) && line[end] != ' ' && line[end] != '\t' {
					end++
				}
				tokens = append(tokens, cifToken{text: line[i:end]})
				i = end
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if inText {
		return nil, fmt.Errorf("unterminated text field")
	}
	return tokens, nil
}

func isKeyword(t cifToken) bool {
	if t.quoted {
		return false
	}
	lower := strings.ToLower(t.text)
	return strings.HasPrefix(t.text, "_") || lower == "loop_" || strings.HasPrefix(lower, "data_")
}

// parseCIFBlock reads the first data block of a CIF token stream.
func parseCIFBlock(tokens []cifToken) (*cifBlock, error) {
	b := &cifBlock{items: make(map[string]string)}
	seenData := false
	i := 0
	for i < len(tokens) {
		t := tokens[i]
		lower := strings.ToLower(t.text)
		switch {
		case !t.quoted && strings.HasPrefix(lower, "data_"):
			if seenData {
				return b, nil
			}
			seenData = true
			b.name = t.text[len("data_"):]
			i++
		case !t.quoted && lower == "loop_":
			i++
			var loop cifLoop
			for i < len(tokens) && !tokens[i].quoted && strings.HasPrefix(tokens[i].text, "_") {
				loop.tags = append(loop.tags, strings.ToLower(tokens[i].text))
				i++
			}
			if len(loop.tags) == 0 {
				return nil, fmt.Errorf("loop_ without tags")
			}
			var values []string
			for i < len(tokens) && !isKeyword(tokens[i]) {
				values = append(values, tokens[i].text)
				i++
			}
			if len(values)%len(loop.tags) != 0 {
				return nil, fmt.Errorf("loop with tags %v has %d values, not a multiple of %d",
					loop.tags, len(values), len(loop.tags))
			}
			for j := 0; j < len(values); j += len(loop.tags) {
				loop.rows = append(loop.rows, values[j:j+len(loop.tags)])
			}
			b.loops = append(b.loops, loop)
		case !t.quoted && strings.HasPrefix(t.text, "_"):
			if i+1 >= len(tokens) || isKeyword(tokens[i+1]) {
				return nil, fmt.Errorf("item %s has no value", t.text)
			}
			b.items[strings.ToLower(t.text)] = tokens[i+1].text
			i += 2
		default:
			return nil, fmt.Errorf("unexpected value %q", t.text)
		}
	}
	if !seenData {
		return nil, fmt.Errorf("no data_ block found")
	}
	return b, nil
}

// parseCIFNumber parses a CIF numeric value, dropping a trailing standard
// uncertainty such as "5.0356(2)".
func parseCIFNumber(s string) (float64, error) {
	if idx := strings.IndexByte(s, '('); idx >= 0 {
		s = s[:idx]
	}
	if s == "?" || s == "." || s == "" {
		return 0, fmt.Errorf("missing value")
	}
	return strconv.ParseFloat(s, 64)
}

// ReadCIF parses the first data block of a CIF document into a structure.
// Symmetry operations listed in the block are applied to the atom sites.
func ReadCIF(r io.Reader) (*Structure, error) {
	tokens, err := tokenizeCIF(r)
	if err != nil {
		return nil, err
	}
	block, err := parseCIFBlock(tokens)
	if err != nil {
		return nil, err
	}

	var params [6]float64
	for i, tag := range []string{
		"_cell_length_a", "_cell_length_b", "_cell_length_c",
		"_cell_angle_alpha", "_cell_angle_beta", "_cell_angle_gamma",
	} {
		raw, ok := block.items[tag]
		if !ok {
			return nil, fmt.Errorf("missing %s", tag)
		}
		v, err := parseCIFNumber(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", tag, err)
		}
		params[i] = v
	}
	lattice := LatticeFromParameters(params[0], params[1], params[2], params[3], params[4], params[5])

	ops, err := readSymOps(block)
	if err != nil {
		return nil, err
	}

	sites, err := readAtomSites(block)
	if err != nil {
		return nil, err
	}

	s := &Structure{Title: block.name, Lattice: lattice}
	for _, site := range sites {
		var images []Vec3
		for _, op := range ops {
			f := WrapVec(op.Apply(site.Frac))
			dup := false
			for _, img := range images {
				if lattice.PeriodicFracDistance(img, f) < symmetryMergeTol {
					dup = true
					break
				}
			}
			if !dup {
				images = append(images, f)
			}
		}
		for _, img := range images {
			ns := site
			ns.Frac = img
			s.Sites = append(s.Sites, ns)
		}
	}
	return s, nil
}

func readSymOps(block *cifBlock) ([]SymOp, error) {
	tags := []string{"_symmetry_equiv_pos_as_xyz", "_space_group_symop_operation_xyz"}
	var raw []string
	if loop, ok := block.findLoop(tags...); ok {
		col := loop.column(tags[0])
		if col < 0 {
			col = loop.column(tags[1])
		}
		for _, row := range loop.rows {
			raw = append(raw, row[col])
		}
	} else {
		for _, t := range tags {
			if v, ok := block.items[t]; ok {
				raw = append(raw, v)
			}
		}
	}
	if len(raw) == 0 {
		return []SymOp{{Rot: Identity()}}, nil
	}
	ops := make([]SymOp, 0, len(raw))
	for _, r := range raw {
		op, err := ParseSymOp(r)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	return ops, nil
}

func readAtomSites(block *cifBlock) ([]Site, error) {
	loop, ok := block.findLoop("_atom_site_fract_x")
	if !ok {
		return nil, fmt.Errorf("no _atom_site_fract_x loop")
	}
	cx, cy, cz := loop.column("_atom_site_fract_x"), loop.column("_atom_site_fract_y"), loop.column("_atom_site_fract_z")
	if cy < 0 || cz < 0 {
		return nil, fmt.Errorf("atom site loop lacks fractional y or z")
	}
	cType := loop.column("_atom_site_type_symbol")
	cLabel := loop.column("_atom_site_label")
	cOcc := loop.column("_atom_site_occupancy")
	if cType < 0 && cLabel < 0 {
		return nil, fmt.Errorf("atom site loop lacks both type symbol and label")
	}

	sites := make([]Site, 0, len(loop.rows))
	for n, row := range loop.rows {
		var site Site
		if cLabel >= 0 {
			site.Label = row[cLabel]
		}
		symbol := site.Label
		if cType >= 0 {
			symbol = row[cType]
		}
		site.Species = NormalizeSpecies(symbol)
		if site.Species == "" {
			return nil, fmt.Errorf("atom site %d: cannot determine species from %q", n+1, symbol)
		}
		for axis, col := range []int{cx, cy, cz} {
			v, err := parseCIFNumber(row[col])
			if err != nil {
				return nil, fmt.Errorf("atom site %d: %w", n+1, err)
			}
			site.Frac[axis] = v
		}
		site.Occupancy = 1
		if cOcc >= 0 {
			if v, err := parseCIFNumber(row[cOcc]); err == nil {
				site.Occupancy = v
			}
		}
		sites = append(sites, site)
	}
	return sites, nil
}

// ReadCIFFile reads a structure from a CIF file.
func ReadCIFFile(path string) (*Structure, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	s, err := ReadCIF(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return s, nil
}

// WriteCIF writes the structure as a P1 CIF document.
func WriteCIF(w io.Writer, s *Structure) error {
	bw := bufio.NewWriter(w)
	abc := s.Lattice.Lengths()
	ang := s.Lattice.Angles()
	title := s.Title
	if title == "" {
		title = strings.ReplaceAll(s.Formula(), " ", "")
	}
	title = strings.ReplaceAll(title, " ", "_")

	fmt.Fprintf(bw, "data_%s\n", title)
	fmt.Fprintf(bw, "_symmetry_space_group_name_H-M   'P 1'\n")
	fmt.Fprintf(bw, "_cell_length_a   %.8f\n", abc[0])
	fmt.Fprintf(bw, "_cell_length_b   %.8f\n", abc[1])
	fmt.Fprintf(bw, "_cell_length_c   %.8f\n", abc[2])
	fmt.Fprintf(bw, "_cell_angle_alpha   %.8f\n", ang[0])
	fmt.Fprintf(bw, "_cell_angle_beta   %.8f\n", ang[1])
	fmt.Fprintf(bw, "_cell_angle_gamma   %.8f\n", ang[2])
	fmt.Fprintf(bw, "_symmetry_Int_Tables_number   1\n")
	fmt.Fprintf(bw, "_chemical_formula_sum   '%s'\n", s.Formula())
	fmt.Fprintf(bw, "_cell_volume   %.8f\n", s.Lattice.Volume())
	fmt.Fprintf(bw, "loop_\n _symmetry_equiv_pos_site_id\n _symmetry_equiv_pos_as_xyz\n  1  'x, y, z'\n")
	fmt.Fprintf(bw, "loop_\n _atom_site_type_symbol\n _atom_site_label\n _atom_site_symmetry_multiplicity\n")
	fmt.Fprintf(bw, " _atom_site_fract_x\n _atom_site_fract_y\n _atom_site_fract_z\n _atom_site_occupancy\n")

	counts := make(map[string]int)
	for _, site := range s.Sites {
		label := fmt.Sprintf("%s%d", site.Species, counts[site.Species])
		counts[site.Species]++
		occ := site.Occupancy
		if occ == 0 {
			occ = 1
		}
		fmt.Fprintf(bw, "  %s  %s  1  %.8f  %.8f  %.8f  %g\n",
			site.Species, label, site.Frac[0], site.Frac[1], site.Frac[2], occ)
	}
	return bw.Flush()
}
