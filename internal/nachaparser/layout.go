// =============================================================================
// Legacy Payment Converter - NACHA Record Layouts
// =============================================================================
//
// Each NACHA record type is described by a declarative table of fields.
// Offsets are 0-based, start inclusive, end exclusive, and follow the NACHA
// 94-character record format:
//
//   | Type | Record           | Layout            |
//   |------|------------------|-------------------|
//   | 1    | File Header      | FileHeaderLayout  |
//   | 5    | Batch Header     | BatchHeaderLayout |
//   | 6    | Entry Detail     | EntryDetailLayout |
//   | 8    | Batch Control    | BatchControlLayout|
//   | 9    | File Control     | FileControlLayout |
//
// The offsets are part of the format contract. Change them only together
// with the fixtures in layout_test.go.
//
// =============================================================================

package nachaparser

import "strings"

// RecordLength is the width of a well-formed NACHA record.
const RecordLength = 94

// FieldSpec locates one named field inside a fixed-width record.
type FieldSpec struct {
	Name  string
	Start int
	End   int
}

// Layout is the ordered field table of one record type.
type Layout []FieldSpec

// FileHeaderLayout describes record type 1.
var FileHeaderLayout = Layout{
	{"priorityCode", 1, 3},
	{"immediateDestination", 3, 13},
	{"immediateOrigin", 13, 23},
	{"fileCreationDate", 23, 29},
	{"fileCreationTime", 29, 33},
	{"fileIdModifier", 33, 34},
	{"recordSize", 34, 37},
	{"blockingFactor", 37, 39},
	{"formatCode", 39, 40},
	{"immediateDestinationName", 40, 63},
	{"immediateOriginName", 63, 86},
	{"referenceCode", 86, 94},
}

// BatchHeaderLayout describes record type 5.
var BatchHeaderLayout = Layout{
	{"serviceClassCode", 1, 4},
	{"companyName", 4, 20},
	{"companyDiscretionaryData", 20, 40},
	{"companyId", 40, 50},
	{"standardEntryClass", 50, 53},
	{"companyEntryDescription", 53, 63},
	{"companyDescriptiveDate", 63, 69},
	{"effectiveEntryDate", 69, 75},
	{"settlementDate", 75, 78},
	{"originatorStatusCode", 78, 79},
	{"originatingDFI", 79, 87},
	{"batchNumber", 87, 94},
}

// EntryDetailLayout describes record type 6.
var EntryDetailLayout = Layout{
	{"transactionCode", 1, 3},
	{"routing", 3, 11},
	{"checkDigit", 11, 12},
	{"account", 12, 29},
	{"amount", 29, 39},
	{"individualId", 39, 54},
	{"name", 54, 76},
	{"discretionaryData", 76, 78},
	{"addendaIndicator", 78, 79},
	{"traceNumber", 79, 94},
}

// BatchControlLayout describes record type 8.
var BatchControlLayout = Layout{
	{"serviceClassCode", 1, 4},
	{"entryCount", 4, 10},
	{"entryHash", 10, 20},
	{"totalDebit", 20, 32},
	{"totalCredit", 32, 44},
	{"companyId", 44, 54},
	{"originatingDFI", 79, 87},
	{"batchNumber", 87, 94},
}

// FileControlLayout describes record type 9.
var FileControlLayout = Layout{
	{"batchCount", 1, 7},
	{"blockCount", 7, 13},
	{"entryAddendaCount", 13, 21},
	{"entryHash", 21, 31},
	{"totalDebit", 31, 43},
	{"totalCredit", 43, 55},
}

// layouts maps the record type character to its layout.
var layouts = map[byte]Layout{
	'1': FileHeaderLayout,
	'5': BatchHeaderLayout,
	'6': EntryDetailLayout,
	'8': BatchControlLayout,
	'9': FileControlLayout,
}

// Extract slices every field of the layout out of line and trims
// surrounding whitespace. Spans past the end of a short line yield "".
func (l Layout) Extract(line string) map[string]string {
	out := make(map[string]string, len(l))
	for _, f := range l {
		out[f.Name] = strings.TrimSpace(span(line, f.Start, f.End))
	}
	return out
}

// Field returns the FieldSpec with the given name.
func (l Layout) Field(name string) (FieldSpec, bool) {
	for _, f := range l {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// span is line[start:end] clamped to the line length.
func span(line string, start, end int) string {
	if start >= len(line) {
		return ""
	}
	if end > len(line) {
		end = len(line)
	}
	return line[start:end]
}
