package export

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/SlabGen/internal/model"
)

// Sheet names of the summary workbook.
const (
	SlabsSheet = "Slabs"
	RunsSheet  = "Runs"
)

// slabHeaders are the column titles of the Slabs sheet.
var slabHeaders = []string{
	"Run", "Request", "Miller", "Orth. Miller", "Termination", "Shift",
	"Mult A", "Mult B", "a (A)", "b (A)", "c (A)", "alpha", "beta", "gamma",
	"Atoms", "Formula", "Area (A2)", "Atoms/nm2", "Thickness (A)", "Mass/Area (mg/m2)", "Files",
}

// runHeaders are the column titles of the Runs sheet.
var runHeaders = []string{
	"Run", "Created", "Cell", "Request", "Miller", "Orth. Miller",
	"Thickness", "Width", "Depth", "Padding", "Slabs", "Atoms",
}

// ExportXLSX writes a summary workbook with one row per slab variant on the
// Slabs sheet and one row per request on the Runs sheet.
func ExportXLSX(path string, runs []model.RunResult) error {
	if len(runs) == 0 {
		return fmt.Errorf("no runs to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SlabsSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if _, err := f.NewSheet(RunsSheet); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"E6E6E6"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := writeRow(f, SlabsSheet, 1, toCells(slabHeaders)); err != nil {
		return err
	}
	if err := writeRow(f, RunsSheet, 1, toCells(runHeaders)); err != nil {
		return err
	}
	for _, sheet := range []struct {
		name string
		cols int
	}{{SlabsSheet, len(slabHeaders)}, {RunsSheet, len(runHeaders)}} {
		last, _ := excelize.CoordinatesToCellName(sheet.cols, 1)
		if err := f.SetCellStyle(sheet.name, "A1", last, header); err != nil {
			return fmt.Errorf("failed to style header: %w", err)
		}
	}

	slabRow := 2
	for i, run := range runs {
		for _, s := range run.Slabs {
			st := s.Stats()
			row := []interface{}{
				run.ID, run.Request.DisplayName(), s.Miller.String(), s.OrthMiller.String(),
				s.Index, s.Shift, s.MultA, s.MultB,
				s.Lengths[0], s.Lengths[1], s.Lengths[2], s.Angles[0], s.Angles[1], s.Angles[2],
				s.Atoms, s.Formula, s.SurfaceArea, st.AtomsPerNm2, s.Thickness, st.MassPerArea,
				strings.Join(s.Files, ", "),
			}
			if err := writeRow(f, SlabsSheet, slabRow, row); err != nil {
				return err
			}
			slabRow++
		}

		req := run.Request
		row := []interface{}{
			run.ID, run.CreatedAt, run.Cell, req.DisplayName(), req.Miller.String(), run.OrthMiller.String(),
			req.Thickness, req.Width, req.Depth, req.Padding, len(run.Slabs), run.TotalAtoms(),
		}
		if err := writeRow(f, RunsSheet, i+2, row); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func toCells(ss []string) []interface{} {
	out := make([]interface{}, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
