// =============================================================================
// Legacy Payment Converter - Risk Detector
// =============================================================================
//
// This module flags domain risks in a parsed legacy message. It reads the
// canonical model only, never the generated XML, so its findings do not
// depend on how a builder chose to map a field.
//
// RULE SETS:
//   | Format | Rules                                                    |
//   |--------|----------------------------------------------------------|
//   | MT103  | accounts, amount, remittance, currency, address, charges |
//   | NACHA  | entries, per-entry amount/routing/account/name, control  |
//   |        | total, effective date                                    |
//
// IDs:
//   Rule ids are stable slugs. Per-entry NACHA rules append the 0-based
//   entry index ("nacha-invalid-routing-2"); their titles use the 1-based
//   entry number ("Entry 3: Invalid Routing Number").
//
// =============================================================================

package risk

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/iso20022-converter/internal/dates"
	"github.com/ginjaninja78/iso20022-converter/internal/types"
)

// MaxRemittanceLength is the longest remittance text that fits a single
// unstructured remittance line.
const MaxRemittanceLength = 140

// LargeAmountCents is the per-entry threshold above which a NACHA entry is
// flagged ($10 million).
const LargeAmountCents int64 = 1_000_000_000

// commonCurrencies is the allow-list for mt103-uncommon-currency.
var commonCurrencies = map[string]bool{
	"USD": true, "EUR": true, "GBP": true, "JPY": true,
	"CHF": true, "CAD": true, "AUD": true, "CNY": true,
}

// =============================================================================
// MT103 RULES
// =============================================================================

// DetectMT103Risks evaluates every MT103 rule in a fixed order.
//
// PARAMETERS:
//   - m: The parsed message. It is read, never modified.
//
// RETURNS:
//   - The risks found, possibly empty, never nil.
func DetectMT103Risks(m *types.MT103) []types.Risk {
	risks := []types.Risk{}
	if m == nil {
		return risks
	}

	if !m.Debtor.HasAccount() {
		risks = append(risks, types.Risk{
			ID:          "mt103-missing-debtor-account",
			Title:       "Missing Debtor Account",
			Level:       types.RiskWarning,
			Description: "The debtor account number was not provided in the MT103 message.",
			Mitigation:  "Verify account details manually before processing. Contact sender for complete information.",
		})
	}

	if !m.Creditor.HasAccount() {
		risks = append(risks, types.Risk{
			ID:          "mt103-missing-creditor-account",
			Title:       "Missing Creditor Account",
			Level:       types.RiskWarning,
			Description: "The creditor account number was not provided in the MT103 message.",
			Mitigation:  "Confirm beneficiary account through alternative channels before settlement.",
		})
	}

	if amount, err := decimal.NewFromString(m.Amount); err != nil || !amount.IsPositive() {
		risks = append(risks, types.Risk{
			ID:          "mt103-invalid-amount",
			Title:       "Invalid Payment Amount",
			Level:       types.RiskCritical,
			Description: fmt.Sprintf("The payment amount %q is invalid or zero.", m.Amount),
			Mitigation:  "Reject transaction and request corrected MT103 with valid amount.",
		})
	}

	// Missing and over-long remittance are exclusive conditions.
	switch remittance := strings.TrimSpace(m.Remittance); {
	case remittance == "":
		risks = append(risks, types.Risk{
			ID:          "mt103-no-remittance",
			Title:       "No Remittance Information",
			Level:       types.RiskInfo,
			Description: "Payment lacks remittance details, making reconciliation difficult.",
			Mitigation:  "Contact sender for payment purpose. Consider adding internal reference notes.",
		})
	case len([]rune(m.Remittance)) > MaxRemittanceLength:
		risks = append(risks, types.Risk{
			ID:          "mt103-long-remittance",
			Title:       "Unstructured Remittance Info",
			Level:       types.RiskInfo,
			Description: "Remittance information is lengthy and unstructured, which may cause truncation.",
			Mitigation:  "Consider structured remittance format for better interoperability.",
		})
	}

	if !commonCurrencies[m.Currency] {
		risks = append(risks, types.Risk{
			ID:          "mt103-uncommon-currency",
			Title:       "Uncommon Currency",
			Level:       types.RiskWarning,
			Description: fmt.Sprintf("Currency %q is not commonly used or may require special handling.", m.Currency),
			Mitigation:  "Verify currency code is correct and check exchange rate availability.",
		})
	}

	if len(m.Debtor.AddressLines) == 0 || len(m.Creditor.AddressLines) == 0 {
		risks = append(risks, types.Risk{
			ID:          "mt103-incomplete-address",
			Title:       "Incomplete Address Information",
			Level:       types.RiskWarning,
			Description: "One or more parties have incomplete address details, which may impact compliance checks.",
			Mitigation:  "Obtain full address for KYC/AML screening and regulatory compliance.",
		})
	}

	if m.Charges == "" {
		risks = append(risks, types.Risk{
			ID:          "mt103-no-charge-code",
			Title:       "Missing Charge Bearer Code",
			Level:       types.RiskInfo,
			Description: "Charge allocation (SHA/OUR/BEN) not specified.",
			Mitigation:  "Default charge allocation may apply. Confirm with sender if needed.",
		})
	}

	return risks
}

// =============================================================================
// NACHA RULES
// =============================================================================

// DetectNACHARisks evaluates the file-level and per-entry NACHA rules.
//
// PARAMETERS:
//   - f: The parsed file. It is read, never modified.
//
// RETURNS:
//   - The risks found, possibly empty, never nil.
//
// CONTROL TOTAL:
//   The computed total is compared with the totalCredit control field only
//   when that field is present and positive. An absent or zero control
//   total means "unknown", not "zero expected".
func DetectNACHARisks(f *types.NACHAFile) []types.Risk {
	risks := []types.Risk{}
	if f == nil {
		return risks
	}

	if len(f.Entries) == 0 {
		risks = append(risks, types.Risk{
			ID:          "nacha-no-entries",
			Title:       "No Payment Entries",
			Level:       types.RiskCritical,
			Description: "NACHA file contains no payment entry records.",
			Mitigation:  "File is invalid and cannot be processed. Request valid file.",
		})
	}

	for idx, entry := range f.Entries {
		risks = append(risks, entryRisks(idx, entry)...)
	}

	total := f.TotalCents()
	control, err := strconv.ParseInt(f.Controls["totalCredit"], 10, 64)
	if err == nil && control > 0 && control != total {
		risks = append(risks, types.Risk{
			ID:          "nacha-control-mismatch",
			Title:       "Control Total Mismatch",
			Level:       types.RiskCritical,
			Description: fmt.Sprintf("Calculated total (%d) does not match file control total (%d).", total, control),
			Mitigation:  "File integrity compromised. Reject and request corrected file from originator.",
		})
	}

	if f.BatchHeader["effectiveEntryDate"] == "" {
		risks = append(risks, types.Risk{
			ID:          "nacha-no-effective-date",
			Title:       "Missing Effective Entry Date",
			Level:       types.RiskWarning,
			Description: "Batch header lacks effective entry date.",
			Mitigation:  "Settlement timing unclear. Confirm intended processing date.",
		})
	}

	return risks
}

// entryRisks applies the per-entry rules to the entry at 0-based idx.
func entryRisks(idx int, entry types.NACHAEntry) []types.Risk {
	var risks []types.Risk
	title := func(s string) string {
		return fmt.Sprintf("Entry %d: %s", idx+1, s)
	}

	switch {
	case !entry.AmountValid:
		risks = append(risks, types.Risk{
			ID:          fmt.Sprintf("nacha-invalid-amount-%d", idx),
			Title:       title("Invalid Amount"),
			Level:       types.RiskCritical,
			Description: "Payment entry has a malformed amount that could not be read as a number of cents.",
			Mitigation:  "Reject entry and request correction from originator.",
		})
	case entry.AmountCents <= 0:
		risks = append(risks, types.Risk{
			ID:          fmt.Sprintf("nacha-invalid-amount-%d", idx),
			Title:       title("Invalid Amount"),
			Level:       types.RiskCritical,
			Description: fmt.Sprintf("Payment entry has zero or negative amount (%d cents).", entry.AmountCents),
			Mitigation:  "Reject entry and request correction from originator.",
		})
	case entry.AmountCents > LargeAmountCents:
		risks = append(risks, types.Risk{
			ID:          fmt.Sprintf("nacha-large-amount-%d", idx),
			Title:       title("Unusually Large Amount"),
			Level:       types.RiskWarning,
			Description: fmt.Sprintf("Payment amount exceeds $10 million (%s USD).", dates.CentsToDollars(entry.AmountCents)),
			Mitigation:  "Verify transaction authenticity and conduct enhanced due diligence.",
		})
	}

	if len(entry.Routing) != 9 {
		risks = append(risks, types.Risk{
			ID:          fmt.Sprintf("nacha-invalid-routing-%d", idx),
			Title:       title("Invalid Routing Number"),
			Level:       types.RiskCritical,
			Description: fmt.Sprintf("Routing number %q is not 9 digits.", entry.Routing),
			Mitigation:  "Correct routing number required for successful ACH processing.",
		})
	}

	if strings.TrimSpace(entry.Account) == "" {
		risks = append(risks, types.Risk{
			ID:          fmt.Sprintf("nacha-missing-account-%d", idx),
			Title:       title("Missing Account Number"),
			Level:       types.RiskCritical,
			Description: "Account number is missing or empty.",
			Mitigation:  "Account number is mandatory. Request complete entry data.",
		})
	}

	if strings.TrimSpace(entry.Name) == "" {
		risks = append(risks, types.Risk{
			ID:          fmt.Sprintf("nacha-missing-name-%d", idx),
			Title:       title("Missing Recipient Name"),
			Level:       types.RiskWarning,
			Description: "Recipient name is missing.",
			Mitigation:  "Name helps with reconciliation and fraud prevention. Obtain if possible.",
		})
	}

	return risks
}
