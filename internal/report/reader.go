package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/iso20022-converter/internal/types"
)

// ReadMappingRows reads the Mapping sheet of a report workbook back into
// mapping rows. Blank rows are skipped.
//
// PARAMETERS:
//   - r: The workbook bytes.
//
// RETURNS:
//   - The mapping rows in sheet order.
//   - An error if the workbook cannot be opened or has no Mapping sheet.
func ReadMappingRows(r io.Reader) ([]types.MappingRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	if idx, _ := f.GetSheetIndex(SheetMapping); idx < 0 {
		return nil, fmt.Errorf("workbook has no %s sheet", SheetMapping)
	}

	rows, err := f.GetRows(SheetMapping)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	var out []types.MappingRow
	// Row 1 is the header.
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if isRowEmpty(row) {
			continue
		}
		out = append(out, types.MappingRow{
			Source:     cell(row, 0),
			Value:      cell(row, 1),
			TargetPath: cell(row, 2),
			Note:       cell(row, 3),
		})
	}
	return out, nil
}

// cell returns column i of row, or "" when the row is short. GetRows drops
// trailing empty cells.
func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func isRowEmpty(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
