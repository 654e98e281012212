// =============================================================================
// Legacy Payment Converter - MT103 Parser Module
// =============================================================================
//
// This module turns raw SWIFT MT103 text into the canonical types.MT103 model.
//
// INPUT GRAMMAR:
//   :20:TRNREF123456          <- tag line ":<tag>:<rest>"
//   :32A:250930USD1234.56
//   :50K:/123456789           <- party account line (leading "/")
//   JOHN DOE                  <- continuation lines belong to the last tag
//   123 CAMPUS RD
//   :59:JANE STUDENT
//   :70:Payment for services
//   :71A:SHA
//
// RULES:
//   - Lines before the first tag are discarded.
//   - A repeated tag replaces the earlier occurrence.
//   - :20: and :32A: are required and must carry their value on the tag
//     line; :50K: and :59: must carry at least one line.
//   - :71A: is kept as captured, without case folding.
//   - Tags other than 20, 32A, 50K, 59, 70, 71A are kept verbatim as
//     extensions.
//
// =============================================================================

package mtparser

import (
	"regexp"
	"strings"

	"github.com/ginjaninja78/iso20022-converter/internal/types"
)

// =============================================================================
// TAG NAMES
// =============================================================================

const (
	TagReference  = "20"
	TagAmount     = "32A"
	TagDebtor     = "50K"
	TagCreditor   = "59"
	TagRemittance = "70"
	TagCharges    = "71A"
)

// knownTags are interpreted by the parser; everything else is an extension.
var knownTags = map[string]bool{
	TagReference:  true,
	TagAmount:     true,
	TagDebtor:     true,
	TagCreditor:   true,
	TagRemittance: true,
	TagCharges:    true,
}

var (
	tagLinePattern = regexp.MustCompile(`^:(\w+):(.*)$`)
	field32A       = regexp.MustCompile(`^(\d{6})([A-Z]{3})([\d,\.]+)$`)
)

// =============================================================================
// TAG BLOCKS
// =============================================================================

// block is the set of lines grouped under one tag. The first line is the
// text that followed the tag on its own line.
type block struct {
	tag   string
	lines []string
}

// tagBlocks groups lines under their most recent tag.
//
// PARAMETERS:
//   - input: The raw MT103 text.
//
// RETURNS:
//   - A map of tag -> block, and the order in which tags were first seen.
func tagBlocks(input string) (map[string]*block, []string) {
	blocks := make(map[string]*block)
	var order []string
	var current *block

	for _, raw := range strings.Split(input, "\n") {
		line := strings.TrimSpace(raw)

		if m := tagLinePattern.FindStringSubmatch(line); m != nil {
			tag := m[1]
			if _, seen := blocks[tag]; !seen {
				order = append(order, tag)
			}
			current = &block{tag: tag, lines: []string{strings.TrimSpace(m[2])}}
			blocks[tag] = current
			continue
		}

		// Lines before any tag, and blank lines, carry nothing.
		if current == nil || line == "" {
			continue
		}
		current.lines = append(current.lines, line)
	}

	return blocks, order
}

// nonEmpty drops blank lines from a block. The tag line itself may be empty
// when the value starts on the next line.
func (b *block) nonEmpty() []string {
	if b == nil {
		return nil
	}
	out := make([]string, 0, len(b.lines))
	for _, l := range b.lines {
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}

// tagLine returns the text on the tag's own line. Single-line fields must
// carry their value there; continuation lines are not consulted.
func (b *block) tagLine() string {
	if b == nil || len(b.lines) == 0 {
		return ""
	}
	return b.lines[0]
}

// =============================================================================
// PARSER
// =============================================================================

// Parse reads MT103 text and returns the canonical message.
//
// PARAMETERS:
//   - input: Raw MT103 text, "\n" or "\r\n" separated.
//
// RETURNS:
//   - The parsed message.
//   - A *types.MissingFieldError or *types.InvalidFormatError. No partial
//     message is ever returned alongside an error.
func Parse(input string) (*types.MT103, error) {
	blocks, order := tagBlocks(input)

	// =========================================================================
	// :20: TRANSACTION REFERENCE
	// =========================================================================

	trnRef := blocks[TagReference].tagLine()
	if trnRef == "" {
		return nil, &types.MissingFieldError{
			Field:   ":20:",
			Message: "Missing required field :20: (Transaction Reference)",
		}
	}

	// =========================================================================
	// :32A: VALUE DATE / CURRENCY / AMOUNT
	// =========================================================================

	raw32A := blocks[TagAmount].tagLine()
	if raw32A == "" {
		return nil, &types.MissingFieldError{
			Field:   ":32A:",
			Message: "Missing required field :32A: (Value Date/Currency/Amount)",
		}
	}

	m := field32A.FindStringSubmatch(raw32A)
	if m == nil {
		return nil, &types.InvalidFormatError{
			Field:    ":32A:",
			Expected: "YYMMDDCCCAMOUNT",
			Example:  "250930USD1234.56",
		}
	}

	msg := &types.MT103{
		TrnRef:    trnRef,
		ValueDate: m[1],
		Currency:  m[2],
		Amount:    strings.Replace(m[3], ",", ".", 1),
	}

	// =========================================================================
	// :50K: DEBTOR AND :59: CREDITOR
	// =========================================================================

	debtor, err := parseParty(":50K:", blocks[TagDebtor].nonEmpty())
	if err != nil {
		return nil, err
	}
	msg.Debtor = debtor

	creditor, err := parseParty(":59:", blocks[TagCreditor].nonEmpty())
	if err != nil {
		return nil, err
	}
	msg.Creditor = creditor

	// =========================================================================
	// OPTIONAL FIELDS
	// =========================================================================

	if b, ok := blocks[TagRemittance]; ok {
		msg.Remittance = strings.TrimSpace(strings.Join(b.nonEmpty(), " "))
	}

	if code := blocks[TagCharges].tagLine(); code != "" {
		msg.Charges = types.ChargeCode(code)
	}

	for _, tag := range order {
		if knownTags[tag] {
			continue
		}
		msg.SetExtension(tag, strings.Join(blocks[tag].nonEmpty(), " "))
	}

	return msg, nil
}

// parseParty splits a party block into account, name and address lines.
//
// PARAMETERS:
//   - tag: The tag label used in error messages (":50K:" or ":59:").
//   - lines: The non-empty lines of the block.
//
// RETURNS:
//   - The party.
//   - A MissingFieldError when the block has no lines, or only an account.
func parseParty(tag string, lines []string) (types.Party, error) {
	if len(lines) == 0 {
		return types.Party{}, &types.MissingFieldError{
			Field:   tag,
			Message: "Missing required field " + tag + " (party information)",
		}
	}

	var party types.Party
	rest := lines

	if strings.HasPrefix(lines[0], "/") {
		party.Account = strings.TrimSpace(lines[0][1:])
		rest = lines[1:]
	}

	if len(rest) == 0 {
		return types.Party{}, &types.MissingFieldError{
			Field:   tag,
			Message: "Missing required field " + tag + " (party name)",
		}
	}

	party.Name = rest[0]
	party.AddressLines = append([]string{}, rest[1:]...)

	return party, nil
}
