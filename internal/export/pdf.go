// Package export renders generated slabs into reports: a PDF with plan and
// side views, QR-coded labels, an XLSX summary workbook and DXF drawings.
package export

import (
	"fmt"
	"math"
	"sort"

	"github.com/go-pdf/fpdf"

	"github.com/piwi3910/SlabGen/internal/crystal"
	"github.com/piwi3910/SlabGen/internal/model"
)

// rgb is a fill color for an element.
type rgb struct {
	R, G, B int
}

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	statsHeight  = 20.0
	drawAreaTop  = marginTop + headerHeight + 12.0
	viewGap      = 10.0
)

// atomScale shrinks covalent radii so neighbouring atoms stay distinguishable.
const atomScale = 0.5

// ExportPDF generates a PDF report of the given runs. Every slab variant is
// drawn on its own page with a plan view down the surface normal, a side
// view along b and its statistics, followed by a summary page.
func ExportPDF(path string, runs []model.RunResult) error {
	if countSlabs(runs) == 0 {
		return fmt.Errorf("no slabs to export")
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	for _, run := range runs {
		for _, slab := range run.Slabs {
			pdf.AddPage()
			renderSlabPage(pdf, run, slab)
		}
	}

	pdf.AddPage()
	renderSummaryPage(pdf, runs)

	return pdf.OutputFileAndClose(path)
}

// elementColor returns the drawing color for a species.
func elementColor(species string) rgb {
	c := crystal.ElementOrDefault(species).Color
	return rgb{R: c[0], G: c[1], B: c[2]}
}

// renderSlabPage draws a single slab variant on the current PDF page.
func renderSlabPage(pdf *fpdf.Fpdf, run model.RunResult, slab model.SlabResult) {
	// Title
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	title := fmt.Sprintf("%s: %s termination %d", run.Request.DisplayName(), slab.Miller, slab.Index)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

	// Stats lines
	st := slab.Stats()
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	line1 := fmt.Sprintf("%s | %d atoms | supercell %dx%d | shift %.4f | orthorhombic index %s",
		slab.Formula, slab.Atoms, slab.MultA, slab.MultB, slab.Shift, slab.OrthMiller)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, line1, "", 0, "L", false, 0, "")
	pdf.SetXY(marginLeft, marginTop+headerHeight+5)
	line2 := fmt.Sprintf("a=%.3f b=%.3f c=%.3f A | alpha=%.2f beta=%.2f gamma=%.2f | area %.2f A2 | %.2f atoms/nm2 | thickness %.3f A",
		slab.Lengths[0], slab.Lengths[1], slab.Lengths[2], slab.Angles[0], slab.Angles[1], slab.Angles[2],
		st.SurfaceArea, st.AtomsPerNm2, st.Thickness)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, line2, "", 0, "L", false, 0, "")

	drawWidth := pageWidth - marginLeft - marginRight - viewGap
	drawHeight := pageHeight - drawAreaTop - marginBottom - statsHeight

	// Plan view takes the left two thirds, side view the rest
	planW := drawWidth * 2 / 3
	sideW := drawWidth - planW

	drawPlanView(pdf, slab, marginLeft, drawAreaTop, planW, drawHeight)
	drawSideView(pdf, slab, marginLeft+planW+viewGap, drawAreaTop, sideW, drawHeight)

	drawElementLegend(pdf, slab, pageHeight-marginBottom-statsHeight+8)
}

// viewport maps structure coordinates in Angstrom onto a page rectangle,
// flipping the vertical axis.
type viewport struct {
	scale      float64
	minX, minY float64
	offsetX    float64
	offsetY    float64
	height     float64
}

func newViewport(minX, minY, maxX, maxY, x, y, w, h float64) viewport {
	spanX := math.Max(maxX-minX, 1e-6)
	spanY := math.Max(maxY-minY, 1e-6)
	scale := math.Min(w/spanX, h/spanY)
	return viewport{
		scale:   scale,
		minX:    minX,
		minY:    minY,
		offsetX: x + (w-spanX*scale)/2,
		offsetY: y,
		height:  spanY * scale,
	}
}

func (v viewport) point(x, y float64) (float64, float64) {
	return v.offsetX + (x-v.minX)*v.scale, v.offsetY + v.height - (y-v.minY)*v.scale
}

// drawPlanView draws the cell outline spanned by a and b and every atom
// projected onto the surface plane. Atoms are drawn bottom-up so the
// exposed layer stays visible.
func drawPlanView(pdf *fpdf.Fpdf, slab model.SlabResult, x, y, w, h float64) {
	a := slab.Lattice[0]
	b := slab.Lattice[1]
	corners := [4][2]float64{
		{0, 0},
		{a[0], a[1]},
		{a[0] + b[0], a[1] + b[1]},
		{b[0], b[1]},
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, c := range corners {
		minX, maxX = math.Min(minX, c[0]), math.Max(maxX, c[0])
		minY, maxY = math.Min(minY, c[1]), math.Max(maxY, c[1])
	}
	vp := newViewport(minX, minY, maxX, maxY, x, y, w, h)

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetXY(x, y-6)
	pdf.CellFormat(w, 5, "Plan view (down the surface normal)", "", 0, "L", false, 0, "")

	// Cell outline
	pdf.SetFillColor(245, 240, 230)
	pdf.SetDrawColor(100, 100, 100)
	pdf.SetLineWidth(0.4)
	points := make([]fpdf.PointType, len(corners))
	for i, c := range corners {
		px, py := vp.point(c[0], c[1])
		points[i] = fpdf.PointType{X: px, Y: py}
	}
	pdf.Polygon(points, "FD")

	sites := append([]model.AtomSite(nil), slab.Sites...)
	sort.SliceStable(sites, func(i, j int) bool { return sites[i].Z < sites[j].Z })
	for _, s := range sites {
		px, py := vp.point(s.X, s.Y)
		drawAtom(pdf, s.Species, px, py, vp.scale)
	}

	drawDimensionAnnotations(pdf, fmt.Sprintf("a = %.2f A", slab.Lengths[0]), fmt.Sprintf("b = %.2f A", slab.Lengths[1]), vp, maxX-minX)
}

// drawSideView draws the slab seen along b: x horizontally, the normal
// vertically, with the full periodic height c including the vacuum.
func drawSideView(pdf *fpdf.Fpdf, slab model.SlabResult, x, y, w, h float64) {
	a := slab.Lattice[0]
	b := slab.Lattice[1]
	c := slab.Lattice[2]
	minX := math.Min(0, math.Min(a[0], math.Min(b[0], a[0]+b[0])))
	maxX := math.Max(0, math.Max(a[0], math.Max(b[0], a[0]+b[0])))
	top := c[2]
	vp := newViewport(minX, 0, maxX, top, x, y, w, h)

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetXY(x, y-6)
	pdf.CellFormat(w, 5, "Side view (along b)", "", 0, "L", false, 0, "")

	x0, y0 := vp.point(minX, top)
	x1, y1 := vp.point(maxX, 0)
	pdf.SetFillColor(235, 245, 255)
	pdf.SetDrawColor(100, 100, 100)
	pdf.SetLineWidth(0.4)
	pdf.Rect(x0, y0, x1-x0, y1-y0, "FD")

	sites := append([]model.AtomSite(nil), slab.Sites...)
	sort.SliceStable(sites, func(i, j int) bool { return sites[i].Y > sites[j].Y })
	for _, s := range sites {
		px, py := vp.point(s.X, s.Z)
		drawAtom(pdf, s.Species, px, py, vp.scale)
	}

	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(80, 80, 80)
	label := fmt.Sprintf("c = %.2f A", slab.Lengths[2])
	pdf.SetXY(x0, y1+1)
	pdf.CellFormat(x1-x0, 4, label, "", 0, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

// drawAtom renders one atom as a filled circle sized by covalent radius.
func drawAtom(pdf *fpdf.Fpdf, species string, x, y, scale float64) {
	col := elementColor(species)
	r := math.Max(crystal.ElementOrDefault(species).CovalentRadius*atomScale*scale, 0.3)
	pdf.SetFillColor(col.R, col.G, col.B)
	pdf.SetDrawColor(30, 30, 30)
	pdf.SetLineWidth(0.1)
	pdf.Circle(x, y, r, "FD")
}

// drawDimensionAnnotations labels the a extent below the plan view and the b
// extent rotated along its left side.
func drawDimensionAnnotations(pdf *fpdf.Fpdf, widthLabel, heightLabel string, vp viewport, spanX float64) {
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(80, 80, 80)

	canvasW := spanX * vp.scale
	wLabelW := pdf.GetStringWidth(widthLabel)
	pdf.SetXY(vp.offsetX+(canvasW-wLabelW)/2, vp.offsetY+vp.height+1)
	pdf.CellFormat(wLabelW, 4, widthLabel, "", 0, "C", false, 0, "")

	pdf.TransformBegin()
	pdf.TransformRotate(90, vp.offsetX-3, vp.offsetY+vp.height/2)
	hLabelW := pdf.GetStringWidth(heightLabel)
	pdf.SetXY(vp.offsetX-3-hLabelW/2, vp.offsetY+vp.height/2-2)
	pdf.CellFormat(hLabelW, 4, heightLabel, "", 0, "C", false, 0, "")
	pdf.TransformEnd()

	// Reset text color
	pdf.SetTextColor(0, 0, 0)
}

// drawElementLegend renders a swatch and count per species.
func drawElementLegend(pdf *fpdf.Fpdf, slab model.SlabResult, startY float64) {
	if len(slab.Composition) == 0 {
		return
	}

	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, startY)
	pdf.CellFormat(30, 4, "Elements:", "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	xPos := marginLeft + 32
	for _, sp := range sortedSpecies(slab.Composition) {
		col := elementColor(sp)
		label := fmt.Sprintf("%s (%d)", sp, slab.Composition[sp])
		labelW := pdf.GetStringWidth(label) + 6

		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.SetDrawColor(30, 30, 30)
		pdf.Rect(xPos, startY+0.5, 3, 3, "FD")

		pdf.SetXY(xPos+4, startY)
		pdf.CellFormat(labelW-4, 4, label, "", 0, "L", false, 0, "")
		xPos += labelW + 2
	}
}

// sortedSpecies returns the keys of a composition in electronegativity order.
func sortedSpecies(comp map[string]int) []string {
	species := make([]string, 0, len(comp))
	for sp := range comp {
		species = append(species, sp)
	}
	sort.Slice(species, func(i, j int) bool {
		ei := crystal.ElementOrDefault(species[i]).Electronegativity
		ej := crystal.ElementOrDefault(species[j]).Electronegativity
		if ei != ej {
			return ei < ej
		}
		return species[i] < species[j]
	})
	return species
}

// renderSummaryPage draws the final summary page with overall statistics.
func renderSummaryPage(pdf *fpdf.Fpdf, runs []model.RunResult) {
	// Title
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "Slab Generation Summary", "", 0, "L", false, 0, "")

	// Separator line
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	y := marginTop + 18

	totals := model.SummarizeRuns(runs)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Overall Statistics", "", 0, "L", false, 0, "")
	y += 9

	summaryItems := []struct {
		label string
		value string
	}{
		{"Requests", fmt.Sprintf("%d", totals.Runs)},
		{"Slab Variants", fmt.Sprintf("%d", totals.Slabs)},
		{"Total Atoms", fmt.Sprintf("%d", totals.Atoms)},
		{"Largest Slab", fmt.Sprintf("%d atoms", totals.Largest)},
		{"Files Written", fmt.Sprintf("%d", totals.Files)},
	}

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range summaryItems {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(60, 6, item.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(40, 6, item.value, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		y += 7
	}

	y += 5

	// Per-slab breakdown table
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Slab Breakdown", "", 0, "L", false, 0, "")
	y += 9

	colWidths := []float64{50, 25, 20, 15, 20, 30, 45, 30, 32}
	headers := []string{"Request", "Miller", "Orth.", "#", "Supercell", "Atoms", "a x b x c (A)", "Area (A2)", "Thickness (A)"}

	drawHeader := func() {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		xPos := marginLeft
		for i, header := range headers {
			pdf.SetXY(xPos, y)
			pdf.CellFormat(colWidths[i], 6, header, "1", 0, "C", true, 0, "")
			xPos += colWidths[i]
		}
		y += 6
		pdf.SetFont("Helvetica", "", 9)
	}
	drawHeader()

	row := 0
	for _, run := range runs {
		for _, slab := range run.Slabs {
			if y > pageHeight-marginBottom-10 {
				pdf.AddPage()
				y = marginTop
				drawHeader()
			}
			rowData := []string{
				run.Request.DisplayName(),
				slab.Miller.String(),
				slab.OrthMiller.Compact(),
				fmt.Sprintf("%d", slab.Index),
				fmt.Sprintf("%dx%d", slab.MultA, slab.MultB),
				fmt.Sprintf("%d", slab.Atoms),
				fmt.Sprintf("%.1f x %.1f x %.1f", slab.Lengths[0], slab.Lengths[1], slab.Lengths[2]),
				fmt.Sprintf("%.2f", slab.SurfaceArea),
				fmt.Sprintf("%.3f", slab.Thickness),
			}

			// Alternate row background
			if row%2 == 0 {
				pdf.SetFillColor(245, 245, 245)
			} else {
				pdf.SetFillColor(255, 255, 255)
			}

			xPos := marginLeft
			for j, cell := range rowData {
				pdf.SetXY(xPos, y)
				pdf.CellFormat(colWidths[j], 6, cell, "1", 0, "C", true, 0, "")
				xPos += colWidths[j]
			}
			y += 6
			row++
		}
	}

	// Settings of the first run; batch runs share them
	if len(runs) > 0 && y < pageHeight-marginBottom-50 {
		s := runs[0].Settings
		y += 8
		pdf.SetFont("Helvetica", "B", 12)
		pdf.SetXY(marginLeft, y)
		pdf.CellFormat(100, 7, "Settings", "", 0, "L", false, 0, "")
		y += 9

		settingsItems := []struct {
			label string
			value string
		}{
			{"Shift Tolerance", fmt.Sprintf("%.3f A", s.ShiftTolerance)},
			{"Match Tolerance", fmt.Sprintf("%.3f", s.MatchTolerance)},
			{"Centered", fmt.Sprintf("%t", s.CenterSlab)},
			{"LLL Reduced", fmt.Sprintf("%t", s.LLLReduce)},
			{"Unit Planes", fmt.Sprintf("%t", s.InUnitPlanes)},
		}

		pdf.SetFont("Helvetica", "", 9)
		for _, item := range settingsItems {
			pdf.SetXY(marginLeft+5, y)
			pdf.CellFormat(50, 5, item.label+":", "", 0, "L", false, 0, "")
			pdf.CellFormat(30, 5, item.value, "", 0, "L", false, 0, "")
			y += 5
		}
	}

	// Footer
	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, "Generated by SlabGen - Fe2O3 Slab Generator", "", 0, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

// countSlabs returns the total number of slab variants across all runs.
func countSlabs(runs []model.RunResult) int {
	total := 0
	for _, r := range runs {
		total += len(r.Slabs)
	}
	return total
}
