package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/piwi3910/SlabGen/internal/model"
)

// LabelInfo holds the data encoded into each slab label's QR code.
type LabelInfo struct {
	RequestLabel string  `json:"request"`
	Miller       string  `json:"miller"`
	OrthMiller   string  `json:"orth_miller"`
	Index        int     `json:"index"`
	Shift        float64 `json:"shift"`
	MultA        int     `json:"mult_a"`
	MultB        int     `json:"mult_b"`
	Atoms        int     `json:"atoms"`
	Formula      string  `json:"formula"`
	A            float64 `json:"a"`
	B            float64 `json:"b"`
	C            float64 `json:"c"`
	File         string  `json:"file,omitempty"`
}

// Label layout constants for Avery 5160-compatible labels (3 columns, 10 rows per page).
// Each label cell is approximately 66.7mm x 25.4mm on US Letter paper.
const (
	labelMarginTop  = 12.7 // mm
	labelMarginLeft = 4.8  // mm
	labelWidth      = 66.7 // mm per label
	labelHeight     = 25.4 // mm per label
	labelCols       = 3
	labelRows       = 10
	labelsPerPage   = labelCols * labelRows
	qrSize          = 20.0 // QR code size in mm
	labelPadding    = 2.0  // mm internal padding
)

// ExportLabels generates a PDF of QR-coded labels, one per slab variant.
// Each label shows the request, Miller index, supercell and formula, and a
// QR code encodes the same metadata as JSON. Labels are laid out on a
// standard label sheet (Avery 5160 / 3 columns x 10 rows on US Letter).
func ExportLabels(path string, runs []model.RunResult) error {
	labels := CollectLabelInfos(runs)
	if len(labels) == 0 {
		return fmt.Errorf("no slabs to generate labels for")
	}

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)

	for i, label := range labels {
		if i%labelsPerPage == 0 {
			pdf.AddPage()
		}

		posOnPage := i % labelsPerPage
		col := posOnPage % labelCols
		row := posOnPage / labelCols

		x := labelMarginLeft + float64(col)*labelWidth
		y := labelMarginTop + float64(row)*labelHeight

		if err := renderLabel(pdf, x, y, i, label); err != nil {
			return fmt.Errorf("failed to render label for %q: %w", label.RequestLabel, err)
		}
	}

	return pdf.OutputFileAndClose(path)
}

// renderLabel draws a single label at the given position.
func renderLabel(pdf *fpdf.Fpdf, x, y float64, n int, info LabelInfo) error {
	// Draw light border for cutting guide
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.1)
	pdf.Rect(x, y, labelWidth, labelHeight, "D")

	qrData, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal label info: %w", err)
	}

	qrPNG, err := qrcode.Encode(string(qrData), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("failed to generate QR code: %w", err)
	}

	imgName := fmt.Sprintf("qr_%d", n)
	pdf.RegisterImageOptionsReader(imgName, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qrPNG))

	// Place QR code on the right side of the label
	qrX := x + labelWidth - qrSize - labelPadding
	qrY := y + (labelHeight-qrSize)/2
	pdf.ImageOptions(imgName, qrX, qrY, qrSize, qrSize, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	// Text area (left side of label)
	textX := x + labelPadding
	textW := labelWidth - qrSize - 3*labelPadding

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(textX, y+labelPadding)
	title := truncate(pdf, fmt.Sprintf("%s #%d", info.Miller, info.Index), textW)
	pdf.CellFormat(textW, 4.5, title, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	pdf.SetXY(textX, y+labelPadding+5)
	pdf.CellFormat(textW, 3.5, truncate(pdf, info.RequestLabel, textW), "", 1, "L", false, 0, "")

	pdf.SetXY(textX, y+labelPadding+8.5)
	pdf.CellFormat(textW, 3.5, truncate(pdf, fmt.Sprintf("%s, %d atoms", info.Formula, info.Atoms), textW), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 6)
	pdf.SetTextColor(100, 100, 100)
	pdf.SetXY(textX, y+labelPadding+12)
	cell := fmt.Sprintf("%dx%d  %.1f x %.1f x %.1f A", info.MultA, info.MultB, info.A, info.B, info.C)
	pdf.CellFormat(textW, 3, truncate(pdf, cell, textW), "", 1, "L", false, 0, "")

	if info.File != "" {
		pdf.SetXY(textX, y+labelPadding+15.5)
		pdf.SetFont("Helvetica", "I", 6)
		pdf.CellFormat(textW, 3, truncate(pdf, filepath.Base(info.File), textW), "", 0, "L", false, 0, "")
	}

	// Reset text color
	pdf.SetTextColor(0, 0, 0)

	return nil
}

// truncate shortens s with an ellipsis until it fits into w at the current font.
func truncate(pdf *fpdf.Fpdf, s string, w float64) string {
	if pdf.GetStringWidth(s) <= w {
		return s
	}
	for len(s) > 0 && pdf.GetStringWidth(s+"...") > w {
		s = s[:len(s)-1]
	}
	return s + "..."
}

// CollectLabelInfos extracts label information for every slab variant of
// the runs, in run order.
func CollectLabelInfos(runs []model.RunResult) []LabelInfo {
	var labels []LabelInfo
	for _, run := range runs {
		for _, s := range run.Slabs {
			info := LabelInfo{
				RequestLabel: run.Request.DisplayName(),
				Miller:       s.Miller.String(),
				OrthMiller:   s.OrthMiller.String(),
				Index:        s.Index,
				Shift:        s.Shift,
				MultA:        s.MultA,
				MultB:        s.MultB,
				Atoms:        s.Atoms,
				Formula:      s.Formula,
				A:            s.Lengths[0],
				B:            s.Lengths[1],
				C:            s.Lengths[2],
			}
			if len(s.Files) > 0 {
				info.File = s.Files[0]
			}
			labels = append(labels, info)
		}
	}
	return labels
}
