// Package fixtures provides sample legacy messages and NACHA record builders
// shared by the package tests and the `inspect --sample` command.
package fixtures

import (
	"fmt"
	"strings"
)

// MT103 is a complete MT103 message with both accounts, remittance and a
// charge code.
const MT103 = `:20:TRNREF123456
:23B:CRED
:32A:250930USD1234.56
:50K:/123456789
JOHN DOE
123 CAMPUS RD
CITY ST
:59:/987654321
JANE STUDENT
45 DORM WAY
CITY ST
:70:Payment for services
:71A:SHA`

// MT103Minimal carries only the required fields and bare party names.
const MT103Minimal = `:20:REF
:32A:250930EUR1000,50
:50K:Name
:59:Creditor`

// Literal 94-character records of a one-entry file. Offsets follow the
// layouts in nachaparser and must not drift.
const (
	FileHeaderRecord   = "101 123456789 9876543212509301200A094101MDCB BANK              STUDENT FILE           REF00001"
	BatchHeaderRecord  = "5220STUDENT CLUB    DISCRETIONARY       1234567890PPDREIMBURSE SEP 25250930   1123456780000001"
	EntryDetailRecord  = "6229876543211234567890       0000012345ID-0001        JANE STUDENT          RS0123456780000001"
	BatchControlRecord = "822000000100987654320000000000000000000123451234567890                         123456780000001"
	FileControlRecord  = "9000001000001000000010098765432000000000000000000012345                                       "
)

// NACHA is the one-entry file assembled from the literal records.
var NACHA = strings.Join([]string{
	FileHeaderRecord,
	BatchHeaderRecord,
	EntryDetailRecord,
	BatchControlRecord,
	FileControlRecord,
}, "\n")

// Entry describes a type-6 record for EntryRecord.
type Entry struct {
	Routing8    string
	CheckDigit  string
	Account     string
	AmountCents int64
	Name        string
	Memo        string
}

// EntryRecord renders a 94-character entry detail record.
func EntryRecord(e Entry) string {
	return fmt.Sprintf("622%-8s%-1s%-17s%010d%-15s%-22s%-2s0%-15s",
		e.Routing8, e.CheckDigit, e.Account, e.AmountCents, "", e.Name, e.Memo, "123456780000001")
}

// EntryRecordRawAmount renders an entry record with an arbitrary 10-char
// amount span, for malformed-amount cases.
func EntryRecordRawAmount(e Entry, amount string) string {
	return fmt.Sprintf("622%-8s%-1s%-17s%-10s%-15s%-22s%-2s0%-15s",
		e.Routing8, e.CheckDigit, e.Account, amount, "", e.Name, e.Memo, "123456780000001")
}

// BatchHeader renders a type-5 record with the given company name and
// effective entry date (YYMMDD, or blank).
func BatchHeader(company, effectiveDate string) string {
	return fmt.Sprintf("5220%-16s%-20s%-10sPPD%-10s%-6s%-6s   1%-8s%07d",
		company, "", "1234567890", "PAYROLL", "", effectiveDate, "12345678", 1)
}

// BatchControl renders a type-8 record.
func BatchControl(entryCount int, totalCredit int64) string {
	return fmt.Sprintf("8220%06d%010d%012d%012d%-10s%-25s%-8s%07d",
		entryCount, 0, 0, totalCredit, "1234567890", "", "12345678", 1)
}

// FileControl renders a type-9 record.
func FileControl(entryCount int, totalCredit int64) string {
	return fmt.Sprintf("9%06d%06d%08d%010d%012d%012d%-39s",
		1, 1, entryCount, 0, 0, totalCredit, "")
}

// NACHAFile assembles a file from the literal file header, a batch header
// and the given entry records, followed by batch and file controls carrying
// controlTotal. A negative controlTotal omits both control records.
func NACHAFile(batchHeader string, entries []string, controlTotal int64) string {
	lines := []string{FileHeaderRecord, batchHeader}
	lines = append(lines, entries...)
	if controlTotal >= 0 {
		lines = append(lines, BatchControl(len(entries), controlTotal), FileControl(len(entries), controlTotal))
	}
	return strings.Join(lines, "\n")
}
