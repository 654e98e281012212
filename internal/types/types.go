// =============================================================================
// Legacy Payment Converter - Shared Types
// =============================================================================
//
// This package contains the canonical message model and the report shapes
// shared by every stage of the pipeline. Types defined here are used by:
//   - mtparser / nachaparser  (produce the canonical model)
//   - mapping                 (consumes the model, produces XML + report)
//   - risk                    (consumes the model)
//   - validation, assumptions (produce findings over the generated XML)
//
// Keeping these types in one leaf package avoids import cycles between the
// stages.
//
// =============================================================================

package types

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// MESSAGE FORMATS
// =============================================================================

// Format identifies a legacy source format. The set is closed: every stage
// dispatches on it with a switch rather than an interface hierarchy.
type Format int

const (
	// FormatMT103 is a SWIFT MT103 single customer credit transfer.
	FormatMT103 Format = iota + 1

	// FormatNACHA is a NACHA ACH batch file.
	FormatNACHA
)

// String returns the display name of the format.
func (f Format) String() string {
	switch f {
	case FormatMT103:
		return "MT103"
	case FormatNACHA:
		return "NACHA"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// TargetMessage returns the ISO 20022 message produced from this format.
func (f Format) TargetMessage() string {
	switch f {
	case FormatMT103:
		return "pacs.008"
	case FormatNACHA:
		return "pain.001"
	default:
		return ""
	}
}

// ParseFormat resolves a user supplied format name. Matching is
// case-insensitive and accepts the target message name as an alias.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mt103", "swift", "pacs.008", "pacs008":
		return FormatMT103, nil
	case "nacha", "ach", "pain.001", "pain001":
		return FormatNACHA, nil
	default:
		return 0, fmt.Errorf("unknown format %q (expected mt103 or nacha)", s)
	}
}

// MarshalJSON renders the format by name.
func (f Format) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.String())
}

// =============================================================================
// MT103 MODEL
// =============================================================================

// ChargeCode is the :71A: details-of-charges code (SHA, BEN or OUR).
type ChargeCode string

const (
	ChargeShared      ChargeCode = "SHA"
	ChargeBeneficiary ChargeCode = "BEN"
	ChargeOurs        ChargeCode = "OUR"
)

// Party is a debtor or creditor taken from :50K: or :59:.
type Party struct {
	// Name is the first non-account line. It may only be empty when
	// address lines exist.
	Name string `json:"name"`

	// AddressLines holds every line after the name, in source order.
	AddressLines []string `json:"addressLines"`

	// Account is set only when the first source line began with "/".
	Account string `json:"account,omitempty"`
}

// HasAccount reports whether the source carried an account line.
func (p Party) HasAccount() bool {
	return p.Account != ""
}

// MT103 is the canonical form of a parsed MT103 message.
type MT103 struct {
	TrnRef    string `json:"trnRef"`
	ValueDate string `json:"valueDate"`
	Currency  string `json:"currency"`
	Amount    string `json:"amount"`

	Debtor   Party `json:"debtor"`
	Creditor Party `json:"creditor"`

	Remittance string     `json:"remittance,omitempty"`
	Charges    ChargeCode `json:"charges,omitempty"`

	// Extensions holds every tag the parser does not interpret, with
	// continuation lines joined by a single space.
	Extensions map[string]string `json:"extensions,omitempty"`

	// extensionOrder keeps the first-seen order of Extensions keys.
	extensionOrder []string
}

// Extension returns the verbatim value of an unrecognized tag.
func (m *MT103) Extension(tag string) (string, bool) {
	v, ok := m.Extensions[tag]
	return v, ok
}

// ExtensionTags lists extension tags in the order they appeared.
func (m *MT103) ExtensionTags() []string {
	out := make([]string, len(m.extensionOrder))
	copy(out, m.extensionOrder)
	return out
}

// SetExtension records an extension tag. Only parsers call this.
func (m *MT103) SetExtension(tag, value string) {
	if m.Extensions == nil {
		m.Extensions = make(map[string]string)
	}
	if _, seen := m.Extensions[tag]; !seen {
		m.extensionOrder = append(m.extensionOrder, tag)
	}
	m.Extensions[tag] = value
}

// =============================================================================
// NACHA MODEL
// =============================================================================

// NACHAEntry is a single type-6 entry detail record.
type NACHAEntry struct {
	TransactionCode string `json:"transactionCode"`

	// Routing is the 8-digit RDFI id followed by its check digit.
	Routing string `json:"routing"`
	Account string `json:"account"`

	// AmountCents is the parsed amount. When AmountValid is false the
	// source span was not an integer and AmountCents is zero.
	AmountCents int64 `json:"amountCents"`
	AmountValid bool  `json:"amountValid"`

	IndividualID string `json:"individualId,omitempty"`
	Name         string `json:"name"`
	Memo         string `json:"memo,omitempty"`
	TraceNumber  string `json:"traceNumber,omitempty"`
}

// NACHAFile is the canonical form of a parsed NACHA file. All type-6
// records across all batches are flattened into Entries.
type NACHAFile struct {
	FileHeader  map[string]string `json:"fileHeader"`
	BatchHeader map[string]string `json:"batchHeader"`
	Entries     []NACHAEntry      `json:"entries"`
	Controls    map[string]string `json:"controls"`
}

// TotalCents sums the amounts of every entry with a valid amount.
func (f *NACHAFile) TotalCents() int64 {
	var total int64
	for _, e := range f.Entries {
		if e.AmountValid {
			total += e.AmountCents
		}
	}
	return total
}

// =============================================================================
// MAPPING REPORT
// =============================================================================

// MappingRow traces one legacy value to its place in the XML.
type MappingRow struct {
	Source     string `json:"source"`
	Value      string `json:"value"`
	TargetPath string `json:"targetXPath"`
	Note       string `json:"note,omitempty"`
}

// MappingReport is produced by a builder alongside the XML.
type MappingReport struct {
	MessageID   string       `json:"messageId"`
	Rows        []MappingRow `json:"rows"`
	Assumptions []string     `json:"assumptions"`

	// Risks is filled by the caller after risk detection; builders leave
	// it empty.
	Risks []Risk `json:"risks"`
}

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// ValidationResult is either valid (with elapsed time) or invalid (with a
// non-empty error list). Use Valid and Invalid to construct one.
type ValidationResult struct {
	Valid   bool          `json:"valid"`
	Elapsed time.Duration `json:"elapsedNs"`
	Errors  []string      `json:"errors,omitempty"`
}

// Valid returns a passing result.
func Valid(elapsed time.Duration) ValidationResult {
	if elapsed < 0 {
		elapsed = 0
	}
	return ValidationResult{Valid: true, Elapsed: elapsed}
}

// Invalid returns a failing result. It panics on an empty list because an
// invalid result without findings is a programming error.
func Invalid(errs ...string) ValidationResult {
	if len(errs) == 0 {
		panic("types: Invalid called without errors")
	}
	out := make([]string, len(errs))
	copy(out, errs)
	return ValidationResult{Valid: false, Errors: out}
}
