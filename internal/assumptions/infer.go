// =============================================================================
// Legacy Payment Converter - Assumption Inferer
// =============================================================================
//
// This module scans generated ISO 20022 XML for places where a crude
// fallback was used instead of richer structure, and describes each one as
// a human-readable assumption.
//
// CHECKS:
//   | Concern     | Richer structure       | Fallback noted              |
//   |-------------|------------------------|-----------------------------|
//   | Agents      | BICFI                  | clearing member id / none   |
//   | Accounts    | IBAN                   | Othr/Id                     |
//   | Addresses   | Ctry, TwnNm, PstCd...  | AdrLine                     |
//   | Amount      | Ccy attribute          | missing currency            |
//   | Dates       | ISO settlement date    | derived date                |
//   | Identifiers | distinct ids           | MsgId reused as EndToEndId  |
//   | Charges     | ChrgBr code            | scheme default              |
//   | Purpose     | Purp/Cd                | none                        |
//   | Remittance  | RmtInf/Ustrd           | none                        |
//
// The scan works on the XML text alone. Mapping notes that mention an
// assumption or a default are forwarded as well. The result is
// deduplicated; its order is not significant.
//
// =============================================================================

package assumptions

import (
	"regexp"
	"strings"

	"github.com/ginjaninja78/iso20022-converter/internal/types"
)

// Messages emitted by Infer.
const (
	DebtorAgentNoBIC     = "Debtor Agent BIC missing; routed using clearing/member ID or account data."
	CreditorAgentNoBIC   = "Creditor Agent BIC missing; routed using clearing/member ID or account data."
	NoAgentIdentifier    = "No BIC or clearing ID for agents; downstream routing may require manual enrichment."
	DebtorAccountOther   = "Debtor account not IBAN; used <Othr>/Id."
	CreditorAccountOther = "Creditor account not IBAN; used <Othr>/Id."
	DebtorFreeAddress    = "Debtor address provided as free-form <AdrLine>; country/postcode may be missing."
	CreditorFreeAddress  = "Creditor address provided as free-form <AdrLine>; country/postcode may be missing."
	MissingCurrency      = "Currency code missing on amount; downstream validation may fail."
	MissingSettlement    = "Interbank settlement date missing; normalized/derived date may have been used."
	MissingExecution     = "Requested execution date missing; normalized/derived date may have been used."
	ReusedReference      = "MsgId equals EndToEndId; assumed reuse of transaction reference for both."
	DefaultChargeBearer  = "Charge bearer not provided; defaulted to scheme/clearing default (commonly SLEV)."
	NoPurposeCode        = "Purpose code not provided."
	NoRemittance         = "Unstructured remittance info missing."
)

// MappingNotePrefix precedes every forwarded mapping-row note.
const MappingNotePrefix = "Mapping note: "

var (
	bicPattern          = regexp.MustCompile(`(?is)<BICFI>[^<]*</BICFI>`)
	clearingPattern     = regexp.MustCompile(`(?i)<ClrSysId>|<ClrSysMmbId>`)
	ibanPattern         = regexp.MustCompile(`(?is)<IBAN>[^<]*</IBAN>`)
	otherIDPattern      = regexp.MustCompile(`(?is)<Othr>.*?<Id>[^<]*</Id>.*?</Othr>`)
	postalPattern       = regexp.MustCompile(`(?is)<PstlAdr>(.*?)</PstlAdr>`)
	structuredPattern   = regexp.MustCompile(`(?i)<(Ctry|TwnNm|PstCd|StrtNm)>`)
	adrLinePattern      = regexp.MustCompile(`(?i)<AdrLine>`)
	currencyPattern     = regexp.MustCompile(`(?i)<(InstdAmt|IntrBkSttlmAmt|Amt)\b[^>]*\bCcy="[A-Z]{3}"`)
	settlementPattern   = regexp.MustCompile(`(?i)<IntrBkSttlmDt>\d{4}-\d{2}-\d{2}</IntrBkSttlmDt>`)
	executionPattern    = regexp.MustCompile(`(?i)<ReqdExctnDt>\d{4}-\d{2}-\d{2}</ReqdExctnDt>`)
	msgIDPattern        = regexp.MustCompile(`(?is)<MsgId>(.*?)</MsgId>`)
	endToEndPattern     = regexp.MustCompile(`(?is)<EndToEndId>(.*?)</EndToEndId>`)
	chargeBearerPattern = regexp.MustCompile(`(?i)<ChrgBr>(SHAR|SLEV|CRED|DEBT)</ChrgBr>`)
	purposePattern      = regexp.MustCompile(`(?is)<Purp>\s*<Cd>[^<]*</Cd>\s*</Purp>`)
	remittancePattern   = regexp.MustCompile(`(?is)<RmtInf>.*?<Ustrd>[^<]*</Ustrd>.*?</RmtInf>`)
)

// blockPatterns match the element blocks the checks are scoped to. Each
// matches its exact tag, so "Dbtr" does not match DbtrAgt or DbtrAcct.
var blockPatterns = map[string]*regexp.Regexp{}

func init() {
	for _, name := range []string{"Dbtr", "Cdtr", "DbtrAgt", "CdtrAgt", "DbtrAcct", "CdtrAcct"} {
		blockPatterns[name] = regexp.MustCompile(`(?is)<` + name + `(?:\s[^>]*)?>(.*?)</` + name + `>`)
	}
}

// blocks returns the inner text of every <name>...</name> element.
func blocks(xml, name string) []string {
	re := blockPatterns[name]
	var out []string
	for _, m := range re.FindAllStringSubmatch(xml, -1) {
		out = append(out, m[1])
	}
	return out
}

// anyBlock reports whether some <name> block matches re.
func anyBlock(xml, name string, re *regexp.Regexp) bool {
	for _, b := range blocks(xml, name) {
		if re.MatchString(b) {
			return true
		}
	}
	return false
}

// pick returns the first capture of re, or "".
func pick(xml string, re *regexp.Regexp) string {
	if m := re.FindStringSubmatch(xml); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// addressStyle reports whether a party has a structured postal address and
// whether it has free-form address lines.
func addressStyle(xml, party string) (structured, freeForm bool) {
	for _, b := range blocks(xml, party) {
		for _, adr := range postalPattern.FindAllStringSubmatch(b, -1) {
			structured = structured || structuredPattern.MatchString(adr[1])
			freeForm = freeForm || adrLinePattern.MatchString(adr[1])
		}
	}
	return structured, freeForm
}

// Infer lists the assumptions visible in a generated document.
//
// PARAMETERS:
//   - xml: The generated document text.
//   - format: The source format; it selects which date element is expected.
//   - report: Optional mapping report whose row notes are forwarded.
//
// RETURNS:
//   - Deduplicated assumption strings, never nil.
func Infer(xml string, format types.Format, report *types.MappingReport) []string {
	var out []string

	// Agents
	debtorBIC := anyBlock(xml, "DbtrAgt", bicPattern)
	creditorBIC := anyBlock(xml, "CdtrAgt", bicPattern)
	if !debtorBIC {
		out = append(out, DebtorAgentNoBIC)
	}
	if !creditorBIC {
		out = append(out, CreditorAgentNoBIC)
	}
	if !debtorBIC && !creditorBIC && !clearingPattern.MatchString(xml) {
		out = append(out, NoAgentIdentifier)
	}

	// Accounts
	if !anyBlock(xml, "DbtrAcct", ibanPattern) && anyBlock(xml, "DbtrAcct", otherIDPattern) {
		out = append(out, DebtorAccountOther)
	}
	if !anyBlock(xml, "CdtrAcct", ibanPattern) && anyBlock(xml, "CdtrAcct", otherIDPattern) {
		out = append(out, CreditorAccountOther)
	}

	// Addresses
	if structured, free := addressStyle(xml, "Dbtr"); !structured && free {
		out = append(out, DebtorFreeAddress)
	}
	if structured, free := addressStyle(xml, "Cdtr"); !structured && free {
		out = append(out, CreditorFreeAddress)
	}

	if !currencyPattern.MatchString(xml) {
		out = append(out, MissingCurrency)
	}

	switch format {
	case types.FormatMT103:
		if !settlementPattern.MatchString(xml) {
			out = append(out, MissingSettlement)
		}
	case types.FormatNACHA:
		if !executionPattern.MatchString(xml) {
			out = append(out, MissingExecution)
		}
	}

	msgID, e2e := pick(xml, msgIDPattern), pick(xml, endToEndPattern)
	if msgID != "" && msgID == e2e {
		out = append(out, ReusedReference)
	}

	if !chargeBearerPattern.MatchString(xml) {
		out = append(out, DefaultChargeBearer)
	}
	if !purposePattern.MatchString(xml) {
		out = append(out, NoPurposeCode)
	}
	if !remittancePattern.MatchString(xml) {
		out = append(out, NoRemittance)
	}

	out = append(out, mappingNotes(report)...)
	return dedupe(out)
}

// mappingNotes forwards row notes that mention an assumption or a default.
func mappingNotes(report *types.MappingReport) []string {
	if report == nil {
		return nil
	}
	var out []string
	for _, row := range report.Rows {
		note := strings.ToLower(row.Note)
		if strings.Contains(note, "assume") || strings.Contains(note, "default") {
			out = append(out, MappingNotePrefix+row.Note)
		}
	}
	return out
}

// dedupe keeps the first occurrence of each string.
func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
