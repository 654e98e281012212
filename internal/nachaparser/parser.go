// =============================================================================
// Legacy Payment Converter - NACHA Parser Module
// =============================================================================
//
// This module turns a NACHA ACH file into the canonical types.NACHAFile.
//
// PARSING PROCESS:
//   1. Split the input into trimmed, non-blank lines.
//   2. Select a layout by the first character of each line (1, 5, 6, 8, 9);
//      any other first character drops the line.
//   3. Extract fields using the declarative layout tables in layout.go.
//   4. Accumulate every type-6 record into one entry list, in file order.
//   5. Merge type-8 and type-9 fields into one controls map. Type 9 is
//      written last so the file trailer wins on a name collision.
//   6. Require a file header, a batch header and at least one entry.
//
// AMOUNTS:
//   A non-numeric amount span is NOT a parse error. The entry is kept with
//   AmountValid=false and is reported later by the risk detector.
//
// =============================================================================

package nachaparser

import (
	"strconv"
	"strings"

	"github.com/ginjaninja78/iso20022-converter/internal/types"
)

// Parse reads NACHA text and returns the canonical file.
//
// PARAMETERS:
//   - input: Raw NACHA text, one record per line.
//
// RETURNS:
//   - The parsed file.
//   - A *types.MissingFieldError when a required record type is absent.
func Parse(input string) (*types.NACHAFile, error) {
	file := &types.NACHAFile{
		FileHeader:  map[string]string{},
		BatchHeader: map[string]string{},
		Entries:     []types.NACHAEntry{},
		Controls:    map[string]string{},
	}

	var batchControl, fileControl map[string]string

	for _, raw := range strings.Split(input, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		layout, ok := layouts[line[0]]
		if !ok {
			continue
		}
		fields := layout.Extract(line)

		switch line[0] {
		case '1':
			fields["recordType"] = "1"
			file.FileHeader = fields
		case '5':
			fields["recordType"] = "5"
			file.BatchHeader = fields
		case '6':
			file.Entries = append(file.Entries, entryFromFields(fields))
		case '8':
			fields["recordType"] = "8"
			batchControl = fields
		case '9':
			fields["fileRecordType"] = "9"
			fileControl = fields
		}
	}

	// Batch control first, file control second: type 9 wins on collisions.
	for k, v := range batchControl {
		file.Controls[k] = v
	}
	for k, v := range fileControl {
		file.Controls[k] = v
	}

	if file.FileHeader["recordType"] == "" {
		return nil, &types.MissingFieldError{
			Field:   "record type 1",
			Message: "Missing File Header (record type 1)",
		}
	}
	if file.BatchHeader["recordType"] == "" {
		return nil, &types.MissingFieldError{
			Field:   "record type 5",
			Message: "Missing Batch Header (record type 5)",
		}
	}
	if len(file.Entries) == 0 {
		return nil, &types.MissingFieldError{
			Field:   "record type 6",
			Message: "No entry details found (record type 6)",
		}
	}

	return file, nil
}

// entryFromFields builds an entry from the extracted type-6 fields.
func entryFromFields(fields map[string]string) types.NACHAEntry {
	entry := types.NACHAEntry{
		TransactionCode: fields["transactionCode"],
		Routing:         fields["routing"] + fields["checkDigit"],
		Account:         fields["account"],
		IndividualID:    fields["individualId"],
		Name:            fields["name"],
		Memo:            fields["discretionaryData"],
		TraceNumber:     fields["traceNumber"],
	}

	if cents, err := strconv.ParseInt(fields["amount"], 10, 64); err == nil {
		entry.AmountCents = cents
		entry.AmountValid = true
	}

	return entry
}
