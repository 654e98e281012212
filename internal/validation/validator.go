// =============================================================================
// Legacy Payment Converter - Validation Engine
// =============================================================================
//
// This module provides soft validation for generated ISO 20022 documents.
// It is a rule-based approximation of schema validation, not an XSD
// validator.
//
// VALIDATION STRATEGY:
//   The XML text is re-parsed from scratch into a small node tree, so the
//   document is judged exactly as an outside consumer would see it. A fixed
//   checklist is then walked per message type:
//   1. Structure: Document and the message root must exist. If either is
//      missing, that single error is returned.
//   2. Group header: required elements and numeric counts.
//   3. Transactions: every CdtTrfTxInf is checked. A single transaction is
//      reported as "CdtTrfTxInf/..."; several are reported as
//      "CdtTrfTxInf[n]/..." with n starting at 1.
//
// ERROR HANDLING:
//   - Findings are collected, never returned as Go errors.
//   - A missing parent element suppresses the checks of its children.
//   - Sibling checks always all run.
//   - A leaf element with blank text counts as missing.
//   - XML that does not parse yields one "XML parsing error: ..." finding.
//
// =============================================================================

package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/iso20022-converter/internal/types"
)

var (
	currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)
	isoDatePattern  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// =============================================================================
// ENTRY POINTS
// =============================================================================

// Validate dispatches on the source format: MT103 conversions produce
// pacs.008 and NACHA conversions produce pain.001.
func Validate(format types.Format, xml string) (types.ValidationResult, error) {
	switch format {
	case types.FormatMT103:
		return ValidatePacs008(xml), nil
	case types.FormatNACHA:
		return ValidatePain001(xml), nil
	default:
		return types.ValidationResult{}, fmt.Errorf("no validator for %s", format)
	}
}

// ValidatePacs008 soft-validates a pacs.008 FIToFICstmrCdtTrf document.
//
// PARAMETERS:
//   - xml: The document text.
//
// RETURNS:
//   - A valid result with the elapsed time, or an invalid result listing
//     every finding.
func ValidatePacs008(xml string) types.ValidationResult {
	return run(xml, "FIToFICstmrCdtTrf", checkPacs008)
}

// ValidatePain001 soft-validates a pain.001 CstmrCdtTrfInitn document.
func ValidatePain001(xml string) types.ValidationResult {
	return run(xml, "CstmrCdtTrfInitn", checkPain001)
}

// run parses the document, locates the message root and applies check.
func run(xml, messageRoot string, check func(*checker, *node)) types.ValidationResult {
	start := time.Now()

	root, err := parse(xml)
	if err != nil {
		return types.Invalid(fmt.Sprintf("XML parsing error: %s", err))
	}

	doc := root.child("Document")
	if doc == nil {
		return types.Invalid("Missing root element: Document")
	}

	msg := doc.child(messageRoot)
	if msg == nil {
		return types.Invalid("Missing element: " + messageRoot)
	}

	c := &checker{}
	check(c, msg)

	if len(c.errors) > 0 {
		return types.Invalid(c.errors...)
	}
	return types.Valid(time.Since(start))
}

// =============================================================================
// CHECKER
// =============================================================================

// checker accumulates findings.
type checker struct {
	errors []string
}

func (c *checker) add(format string, args ...interface{}) {
	c.errors = append(c.errors, fmt.Sprintf(format, args...))
}

// require looks up a container element under parent and records a finding
// when it is absent. It returns nil in that case so callers can skip the
// element's children.
func (c *checker) require(parent *node, path, label string) *node {
	n := parent.find(path)
	if n == nil {
		c.add("Missing required element: %s", label)
	}
	return n
}

// requireValue is require for leaf elements: blank text counts as missing.
func (c *checker) requireValue(parent *node, path, label string) *node {
	n := parent.find(path)
	if !n.hasValue() {
		c.add("Missing required element: %s", label)
		return nil
	}
	return n
}

// number checks that the element text is a decimal number.
func (c *checker) number(n *node, label string) (decimal.Decimal, bool) {
	v, err := decimal.NewFromString(strings.TrimSpace(n.text))
	if err != nil {
		c.add("%s must contain a valid number", label)
		return decimal.Decimal{}, false
	}
	return v, true
}

// count checks a NbOfTxs-style element.
func (c *checker) count(n *node, label string) {
	if _, err := decimal.NewFromString(strings.TrimSpace(n.text)); err != nil {
		c.add("%s must be a number", label)
	}
}

// currency checks the Ccy attribute of an amount element.
func (c *checker) currency(n *node, label string, strict bool) {
	ccy := strings.TrimSpace(n.attrs["Ccy"])
	switch {
	case ccy == "":
		c.add("Missing required attribute: %s/@Ccy", label)
	case strict && !currencyPattern.MatchString(ccy):
		c.add("Invalid currency code format (must be 3 uppercase letters)")
	}
}

// isoDate checks a YYYY-MM-DD element.
func (c *checker) isoDate(n *node, label string) {
	if !isoDatePattern.MatchString(strings.TrimSpace(n.text)) {
		c.add("%s must be in format YYYY-MM-DD", label)
	}
}

// transactionPrefix names the i-th (0-based) of n transactions.
func transactionPrefix(base string, i, n int) string {
	if n == 1 {
		return base
	}
	return fmt.Sprintf("%s[%d]", base, i+1)
}

// =============================================================================
// PACS.008 RULES
// =============================================================================

func checkPacs008(c *checker, msg *node) {
	if hdr := c.require(msg, "GrpHdr", "GrpHdr"); hdr != nil {
		c.requireValue(hdr, "MsgId", "GrpHdr/MsgId")
		c.requireValue(hdr, "CreDtTm", "GrpHdr/CreDtTm")
		if n := c.requireValue(hdr, "NbOfTxs", "GrpHdr/NbOfTxs"); n != nil {
			c.count(n, "GrpHdr/NbOfTxs")
		}
	}

	txs := msg.all("CdtTrfTxInf")
	if len(txs) == 0 {
		c.add("Missing required element: CdtTrfTxInf")
		return
	}

	for i, tx := range txs {
		prefix := transactionPrefix("CdtTrfTxInf", i, len(txs))

		if pmt := c.require(tx, "PmtId", prefix+"/PmtId"); pmt != nil {
			c.requireValue(pmt, "InstrId", prefix+"/PmtId/InstrId")
			c.requireValue(pmt, "EndToEndId", prefix+"/PmtId/EndToEndId")
		}

		if amt := c.require(tx, "IntrBkSttlmAmt", prefix+"/IntrBkSttlmAmt"); amt != nil {
			label := prefix + "/IntrBkSttlmAmt"
			c.currency(amt, label, true)
			if v, ok := c.number(amt, label); ok && !v.IsPositive() {
				c.add("%s must be greater than 0", label)
			}
		}

		if dt := c.requireValue(tx, "IntrBkSttlmDt", prefix+"/IntrBkSttlmDt"); dt != nil {
			c.isoDate(dt, prefix+"/IntrBkSttlmDt")
		}

		if dbtr := c.require(tx, "Dbtr", prefix+"/Dbtr"); dbtr != nil {
			c.requireValue(dbtr, "Nm", prefix+"/Dbtr/Nm")
		}
		if cdtr := c.require(tx, "Cdtr", prefix+"/Cdtr"); cdtr != nil {
			c.requireValue(cdtr, "Nm", prefix+"/Cdtr/Nm")
		}
	}
}

// =============================================================================
// PAIN.001 RULES
// =============================================================================

func checkPain001(c *checker, msg *node) {
	if hdr := c.require(msg, "GrpHdr", "GrpHdr"); hdr != nil {
		c.requireValue(hdr, "MsgId", "GrpHdr/MsgId")
		c.requireValue(hdr, "CreDtTm", "GrpHdr/CreDtTm")
		if n := c.requireValue(hdr, "NbOfTxs", "GrpHdr/NbOfTxs"); n != nil {
			c.count(n, "GrpHdr/NbOfTxs")
		}
		if sum := hdr.find("CtrlSum"); sum.hasValue() {
			c.count(sum, "GrpHdr/CtrlSum")
		}
		c.require(hdr, "InitgPty", "GrpHdr/InitgPty")
	}

	pmt := c.require(msg, "PmtInf", "PmtInf")
	if pmt == nil {
		return
	}

	c.requireValue(pmt, "PmtInfId", "PmtInf/PmtInfId")
	c.requireValue(pmt, "PmtMtd", "PmtInf/PmtMtd")
	if dt := c.requireValue(pmt, "ReqdExctnDt", "PmtInf/ReqdExctnDt"); dt != nil {
		c.isoDate(dt, "PmtInf/ReqdExctnDt")
	}
	if dbtr := c.require(pmt, "Dbtr", "PmtInf/Dbtr"); dbtr != nil {
		c.requireValue(dbtr, "Nm", "PmtInf/Dbtr/Nm")
	}

	txs := pmt.all("CdtTrfTxInf")
	if len(txs) == 0 {
		c.add("Missing required element: PmtInf/CdtTrfTxInf")
		return
	}

	for i, tx := range txs {
		prefix := fmt.Sprintf("CdtTrfTxInf[%d]", i+1)

		c.requireValue(tx, "PmtId/EndToEndId", prefix+"/PmtId/EndToEndId")

		if amt := c.require(tx, "Amt/InstdAmt", prefix+"/Amt/InstdAmt"); amt != nil {
			label := prefix + "/Amt/InstdAmt"
			c.currency(amt, label, false)
			c.number(amt, label)
		}

		c.requireValue(tx, "Cdtr/Nm", prefix+"/Cdtr/Nm")
		c.require(tx, "CdtrAcct", prefix+"/CdtrAcct")
	}
}

// =============================================================================
// ERROR FORMATTING
// =============================================================================

// FormatErrors formats validation findings for display or logging.
//
// PARAMETERS:
//   - result: The validation result to format.
//
// RETURNS:
//   - A formatted string containing all findings.
func FormatErrors(result types.ValidationResult) string {
	if result.Valid {
		return fmt.Sprintf("Valid (%s).", result.Elapsed)
	}

	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("Validation completed with %d error(s):\n\n", len(result.Errors)))

	for i, err := range result.Errors {
		builder.WriteString(fmt.Sprintf("%d. %s\n", i+1, err))
	}

	return builder.String()
}
