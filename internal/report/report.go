// =============================================================================
// Legacy Payment Converter - Report Export
// =============================================================================
//
// This module writes the outcome of a conversion as a JSON bundle and as an
// XLSX workbook for reviewers who work in spreadsheets.
//
// WORKBOOK LAYOUT:
//   | Sheet       | Columns                                          |
//   |-------------|--------------------------------------------------|
//   | Mapping     | Source, Value, Target XPath, Note                |
//   | Assumptions | Origin, Assumption                               |
//   | Risks       | ID, Level, Title, Description, Mitigation        |
//   | Validation  | Status, Finding                                  |
//
//   Row 1 of every sheet is a bold header; data starts on row 2.
//
// =============================================================================

package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/iso20022-converter/internal/risk"
	"github.com/ginjaninja78/iso20022-converter/internal/types"
)

// Sheet names.
const (
	SheetMapping     = "Mapping"
	SheetAssumptions = "Assumptions"
	SheetRisks       = "Risks"
	SheetValidation  = "Validation"
)

// Origins in the Assumptions sheet.
const (
	OriginBuilder  = "Builder"
	OriginInferred = "Inferred"
)

// Bundle is everything a report shows about one conversion.
type Bundle struct {
	SourceFile  string                 `json:"sourceFile,omitempty"`
	Format      types.Format           `json:"format"`
	Message     string                 `json:"message"`
	Mapping     types.MappingReport    `json:"mapping"`
	Validation  types.ValidationResult `json:"validation"`
	RiskSummary risk.Summary           `json:"riskSummary"`
	Assumptions []string               `json:"assumptions"`
}

// =============================================================================
// JSON
// =============================================================================

// WriteJSON encodes the bundle as indented JSON.
func WriteJSON(w io.Writer, b Bundle) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(b); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}

// SaveJSON writes the JSON bundle to path.
func SaveJSON(path string, b Bundle) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	if err := WriteJSON(f, b); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// =============================================================================
// XLSX
// =============================================================================

// Workbook builds the report workbook. The caller must Close it.
//
// PARAMETERS:
//   - b: The conversion to describe.
//
// RETURNS:
//   - An in-memory workbook with the four report sheets.
//   - An error if any cell cannot be written.
func Workbook(b Bundle) (*excelize.File, error) {
	f := excelize.NewFile()

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, err
	}
	critical, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#F8CBAD"}},
	})
	if err != nil {
		f.Close()
		return nil, err
	}

	w := &sheetWriter{f: f, header: header}

	// The default sheet becomes the mapping sheet.
	if err := f.SetSheetName(f.GetSheetName(0), SheetMapping); err != nil {
		f.Close()
		return nil, err
	}

	mapping := [][]interface{}{}
	for _, r := range b.Mapping.Rows {
		mapping = append(mapping, []interface{}{r.Source, r.Value, r.TargetPath, r.Note})
	}
	w.sheet(SheetMapping, []interface{}{"Source", "Value", "Target XPath", "Note"}, mapping, []float64{32, 28, 56, 40})

	var assumptions [][]interface{}
	for _, a := range b.Mapping.Assumptions {
		assumptions = append(assumptions, []interface{}{OriginBuilder, a})
	}
	for _, a := range b.Assumptions {
		assumptions = append(assumptions, []interface{}{OriginInferred, a})
	}
	w.sheet(SheetAssumptions, []interface{}{"Origin", "Assumption"}, assumptions, []float64{12, 90})

	var risks [][]interface{}
	for _, r := range b.Mapping.Risks {
		risks = append(risks, []interface{}{r.ID, r.Level.String(), r.Title, r.Description, r.Mitigation})
	}
	w.sheet(SheetRisks, []interface{}{"ID", "Level", "Title", "Description", "Mitigation"}, risks, []float64{30, 10, 34, 60, 60})
	for i, r := range b.Mapping.Risks {
		if r.Level == types.RiskCritical {
			w.style(SheetRisks, i+2, 5, critical)
		}
	}

	var validation [][]interface{}
	if b.Validation.Valid {
		validation = append(validation, []interface{}{"Valid", fmt.Sprintf("Passed in %s", b.Validation.Elapsed)})
	}
	for _, e := range b.Validation.Errors {
		validation = append(validation, []interface{}{"Invalid", e})
	}
	w.sheet(SheetValidation, []interface{}{"Status", "Finding"}, validation, []float64{10, 90})

	if w.err != nil {
		f.Close()
		return nil, w.err
	}
	return f, nil
}

// SaveXLSX writes the report workbook to path.
func SaveXLSX(path string, b Bundle) error {
	f, err := Workbook(b)
	if err != nil {
		return fmt.Errorf("failed to build workbook: %w", err)
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// sheetWriter writes sheets and keeps the first error.
type sheetWriter struct {
	f      *excelize.File
	header int
	err    error
}

func (w *sheetWriter) sheet(name string, header []interface{}, rows [][]interface{}, widths []float64) {
	if w.err != nil {
		return
	}
	if idx, _ := w.f.GetSheetIndex(name); idx < 0 {
		if _, w.err = w.f.NewSheet(name); w.err != nil {
			return
		}
	}

	w.row(name, 1, header)
	for i, r := range rows {
		w.row(name, i+2, r)
	}
	w.style(name, 1, len(header), w.header)

	for i, width := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			w.err = err
			return
		}
		if w.err == nil {
			w.err = w.f.SetColWidth(name, col, col, width)
		}
	}
}

func (w *sheetWriter) row(sheet string, n int, values []interface{}) {
	if w.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		w.err = err
		return
	}
	w.err = w.f.SetSheetRow(sheet, cell, &values)
}

// style applies styleID to columns 1..cols of row n.
func (w *sheetWriter) style(sheet string, n, cols, styleID int) {
	if w.err != nil {
		return
	}
	from, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		w.err = err
		return
	}
	to, err := excelize.CoordinatesToCellName(cols, n)
	if err != nil {
		w.err = err
		return
	}
	w.err = w.f.SetCellStyle(sheet, from, to, styleID)
}
