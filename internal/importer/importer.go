// Package importer reads batches of slab requests from CSV and Excel sheets
// and from TOML or YAML job files. Sheets get automatic delimiter detection,
// flexible column mapping and case-insensitive header recognition.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/SlabGen/internal/model"
)

// ImportResult holds the results of an import operation.
type ImportResult struct {
	Requests []model.Request
	Errors   []string
	Warnings []string
}

// ColumnMapping maps semantic column roles to their indices in the data.
// The Miller index comes either from one Miller column or from separate
// H, K and L columns.
type ColumnMapping struct {
	Label     int
	Thickness int
	Width     int
	Depth     int
	Miller    int
	H, K, L   int
	Padding   int
}

// headerAliases maps canonical column names to their accepted aliases (all lowercase).
var headerAliases = map[string][]string{
	"label":     {"label", "name", "description", "desc", "job", "slab"},
	"thickness": {"thickness", "thick", "t", "slab thickness", "min thickness", "min_slab_size"},
	"width":     {"width", "w", "a", "size a", "x"},
	"depth":     {"depth", "d", "b", "size b", "y"},
	"miller":    {"miller", "hkl", "miller index", "plane", "facet", "index"},
	"h":         {"h"},
	"k":         {"k"},
	"l":         {"l"},
	"padding":   {"padding", "vacuum", "vac", "pad", "gap", "min_vacuum_size"},
}

// DetectCSVDelimiter reads the file content and determines the most likely CSV delimiter.
// It tries comma, semicolon, tab, and pipe. The delimiter that produces the most
// consistent (non-one) column count across lines wins.
func DetectCSVDelimiter(data []byte) rune {
	candidates := []rune{',', ';', '\t', '|'}
	bestDelimiter := ','
	bestScore := 0

	for _, delim := range candidates {
		reader := csv.NewReader(bytes.NewReader(data))
		reader.Comma = delim
		reader.LazyQuotes = true
		reader.FieldsPerRecord = -1

		records, err := reader.ReadAll()
		if err != nil || len(records) < 1 {
			continue
		}

		firstCols := len(records[0])
		if firstCols < 2 {
			continue
		}

		score := 0
		for _, row := range records {
			if len(row) == firstCols {
				score++
			}
		}

		weighted := score*10 + firstCols
		if weighted > bestScore {
			bestScore = weighted
			bestDelimiter = delim
		}
	}

	return bestDelimiter
}

// DetectColumns examines a header row and returns a ColumnMapping.
// It performs case-insensitive matching against known aliases for each column role.
// Returns the mapping and true if a header was detected, or the positional
// mapping (label, thickness, width, depth, miller, padding) and false.
func DetectColumns(row []string) (ColumnMapping, bool) {
	mapping := ColumnMapping{
		Label: -1, Thickness: -1, Width: -1, Depth: -1,
		Miller: -1, H: -1, K: -1, L: -1, Padding: -1,
	}
	slots := map[string]*int{
		"label":     &mapping.Label,
		"thickness": &mapping.Thickness,
		"width":     &mapping.Width,
		"depth":     &mapping.Depth,
		"miller":    &mapping.Miller,
		"h":         &mapping.H,
		"k":         &mapping.K,
		"l":         &mapping.L,
		"padding":   &mapping.Padding,
	}

	isHeader := false
	for i, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for role, aliases := range headerAliases {
			for _, alias := range aliases {
				if normalized == alias {
					isHeader = true
					if *slots[role] == -1 {
						*slots[role] = i
					}
				}
			}
		}
	}

	if !isHeader {
		return ColumnMapping{
			Label:     0,
			Thickness: 1,
			Width:     2,
			Depth:     3,
			Miller:    4,
			H:         -1,
			K:         -1,
			L:         -1,
			Padding:   5,
		}, false
	}

	return mapping, true
}

// hasSplitMiller reports whether the mapping reads h, k and l separately.
func (m ColumnMapping) hasSplitMiller() bool {
	return m.H >= 0 && m.K >= 0 && m.L >= 0
}

// getCell safely retrieves a cell value from a row by column index.
// Returns empty string if the index is out of range or negative.
func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func parseLength(row []string, idx int, name, rowLabel string) (float64, string) {
	s := getCell(row, idx)
	if s == "" {
		return 0, fmt.Sprintf("%s: Missing %s value", rowLabel, name)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Sprintf("%s: Invalid %s '%s'", rowLabel, name, s)
	}
	return v, ""
}

func parseMillerCells(row []string, mapping ColumnMapping, rowLabel string) (model.MillerIndex, string) {
	if mapping.hasSplitMiller() {
		var m model.MillerIndex
		for i, idx := range []int{mapping.H, mapping.K, mapping.L} {
			s := getCell(row, idx)
			v, err := strconv.Atoi(s)
			if err != nil {
				return model.MillerIndex{}, fmt.Sprintf("%s: Invalid Miller component '%s'", rowLabel, s)
			}
			m[i] = v
		}
		return m, ""
	}
	s := getCell(row, mapping.Miller)
	if s == "" {
		return model.MillerIndex{}, fmt.Sprintf("%s: Missing Miller index", rowLabel)
	}
	m, err := model.ParseMillerIndex(s)
	if err != nil {
		return model.MillerIndex{}, fmt.Sprintf("%s: Invalid Miller index '%s'", rowLabel, s)
	}
	return m, ""
}

// parseRow extracts a Request from a row using the given column mapping.
// Returns the request, any error message, and any warning message.
func parseRow(row []string, mapping ColumnMapping, rowLabel string, count int) (model.Request, string, string) {
	label := getCell(row, mapping.Label)
	if label == "" {
		label = fmt.Sprintf("Slab %d", count+1)
	}

	thickness, errMsg := parseLength(row, mapping.Thickness, "thickness", rowLabel)
	if errMsg != "" {
		return model.Request{}, errMsg, ""
	}
	width, errMsg := parseLength(row, mapping.Width, "width", rowLabel)
	if errMsg != "" {
		return model.Request{}, errMsg, ""
	}
	depth, errMsg := parseLength(row, mapping.Depth, "depth", rowLabel)
	if errMsg != "" {
		return model.Request{}, errMsg, ""
	}
	miller, errMsg := parseMillerCells(row, mapping, rowLabel)
	if errMsg != "" {
		return model.Request{}, errMsg, ""
	}

	if thickness <= 0 || width <= 0 || depth <= 0 {
		return model.Request{}, fmt.Sprintf("%s: Thickness, width, and depth must be positive", rowLabel), ""
	}

	req := model.NewRequest(label, thickness, width, depth, miller)

	// Optional padding
	var warning string
	if padStr := getCell(row, mapping.Padding); padStr != "" {
		pad, err := strconv.ParseFloat(padStr, 64)
		if err != nil || pad <= 0 {
			warning = fmt.Sprintf("%s: Invalid padding '%s', defaulting to %g", rowLabel, padStr, model.DefaultPadding)
		} else {
			req.Padding = pad
		}
	}

	return req, "", warning
}

// isEmptyRow returns true if the row has no meaningful content.
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ImportCSV imports requests from a CSV file.
// It automatically detects the delimiter and maps columns by header names.
// Supports comma, semicolon, tab, and pipe delimiters.
func ImportCSV(path string) ImportResult {
	result := ImportResult{}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open file: %v", err))
		return result
	}

	if len(bytes.TrimSpace(data)) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	delimiter := DetectCSVDelimiter(data)
	if delimiter != ',' {
		delimName := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delimiter]
		result.Warnings = append(result.Warnings, fmt.Sprintf("Detected %s delimiter", delimName))
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}

	if len(records) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	return importFromRows(records, "Line", result.Warnings)
}

// ImportCSVFromReader imports requests from a CSV reader with a specific delimiter.
func ImportCSVFromReader(reader io.Reader, delimiter rune) ImportResult {
	result := ImportResult{}

	csvReader := csv.NewReader(reader)
	csvReader.Comma = delimiter
	csvReader.LazyQuotes = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}

	if len(records) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	return importFromRows(records, "Line", nil)
}

// ImportExcel imports requests from the first sheet of an Excel workbook.
func ImportExcel(path string) ImportResult {
	result := ImportResult{}

	f, err := excelize.OpenFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open Excel file: %v", err))
		return result
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		result.Errors = append(result.Errors, "Excel file has no sheets")
		return result
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read Excel data: %v", err))
		return result
	}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "Sheet is empty")
		return result
	}

	return importFromRows(rows, "Row", nil)
}

// importFromRows is the shared import logic for both CSV and Excel data.
// It detects headers, maps columns, and parses each row into a request.
func importFromRows(rows [][]string, rowPrefix string, initialWarnings []string) ImportResult {
	result := ImportResult{
		Warnings: initialWarnings,
	}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "No data rows found")
		return result
	}

	mapping, hasHeader := DetectColumns(rows[0])
	startRow := 0
	if hasHeader {
		startRow = 1
		result.Warnings = append(result.Warnings, "Detected header row, skipping")

		missing := []string{}
		if mapping.Thickness == -1 {
			missing = append(missing, "Thickness")
		}
		if mapping.Width == -1 {
			missing = append(missing, "Width")
		}
		if mapping.Depth == -1 {
			missing = append(missing, "Depth")
		}
		if mapping.Miller == -1 && !mapping.hasSplitMiller() {
			missing = append(missing, "Miller")
		}
		if len(missing) > 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("Required columns not found in header: %s", strings.Join(missing, ", ")))
			return result
		}
	} else if len(rows[0]) >= 4 {
		// An unrecognized header still has a non-numeric thickness cell.
		if _, err := strconv.ParseFloat(strings.TrimSpace(rows[0][1]), 64); err != nil {
			startRow = 1
			result.Warnings = append(result.Warnings, "Detected header row, skipping")
		}
	}

	for i := startRow; i < len(rows); i++ {
		row := rows[i]
		lineNum := i + 1

		if isEmptyRow(row) {
			continue
		}

		rowLabel := fmt.Sprintf("%s %d", rowPrefix, lineNum)
		req, errMsg, warning := parseRow(row, mapping, rowLabel, len(result.Requests))

		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}
		if warning != "" {
			result.Warnings = append(result.Warnings, warning)
		}

		result.Requests = append(result.Requests, req)
	}

	return result
}
