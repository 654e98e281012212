package mapping

import (
	"fmt"
	"strconv"

	"github.com/ginjaninja78/iso20022-converter/internal/dates"
	"github.com/ginjaninja78/iso20022-converter/internal/types"
	"github.com/ginjaninja78/iso20022-converter/internal/xmlwriter"
)

// Defaults used when the NACHA file leaves a field blank.
const (
	PlaceholderEffectiveDate = "250930"
	DefaultInitiatingParty   = "Initiating Party"
	DefaultDebtorName        = "Unknown Debtor"
	DefaultDebtorAccount     = "UNKNOWN"
	NACHACurrency            = "USD"
)

// Standing assumptions present in every pain.001 report.
var pain001Assumptions = []string{
	"All amounts assumed to be in USD",
	"Payment method set to TRF (Transfer)",
	"Service level code set to SEPA (default)",
}

// BuildPain001 maps a NACHA file to a pain.001 CstmrCdtTrfInitn.
//
// PARAMETERS:
//   - f: The parsed NACHA file. It is read, never modified.
//
// RETURNS:
//   - The XML text and the mapping report.
//   - ErrNilInput when f is nil.
//
// STRUCTURE:
//   GrpHdr{MsgId, CreDtTm, NbOfTxs, CtrlSum, InitgPty/Nm}
//   PmtInf{PmtInfId, PmtMtd, NbOfTxs, CtrlSum, PmtTpInf/SvcLvl/Cd,
//     ReqdExctnDt, Dbtr/Nm, DbtrAcct, CdtTrfTxInf[1..n]}
//
// AMOUNTS:
//   The control sum is the exact sum of valid entry amounts. An entry whose
//   amount could not be parsed is written as 0.00 and noted as an
//   assumption.
func (b *Builder) BuildPain001(f *types.NACHAFile) (*Result, error) {
	if f == nil {
		return nil, ErrNilInput
	}

	messageID := "PAIN" + b.NewID()
	paymentInfoID := "PMT" + b.NewID()

	doc, root := xmlwriter.NewDocument(Pain001Namespace, "CstmrCdtTrfInitn")
	t := newTrace(root)
	t.assumptions = append(t.assumptions, pain001Assumptions...)

	count := strconv.Itoa(len(f.Entries))
	total := dates.CentsToDollars(f.TotalCents())

	// Group header.
	hdr := root.Add("GrpHdr")
	t.text(hdr, "MsgId", messageID, "Generated (Message Id)", messageID, "PAIN prefix and a random UUID")
	created := b.creationTime()
	t.text(hdr, "CreDtTm", created, "Generated (Creation Time)", created, "Conversion time in UTC")
	t.text(hdr, "NbOfTxs", count, "Entry Count", count, "")
	t.text(hdr, "CtrlSum", total, "Total Amount (calculated)", total, "Sum of all entry amounts")

	originName := f.FileHeader["immediateOriginName"]
	initiator := originName
	if initiator == "" {
		initiator = DefaultInitiatingParty
		t.assume("Originator name not provided; initiating party defaulted to " + DefaultInitiatingParty)
	}
	t.text(hdr.Add("InitgPty"), "Nm", initiator, "File Header (Origin Name)", originName, "Initiating party from file header")

	// Payment information.
	pmt := root.Add("PmtInf")
	t.text(pmt, "PmtInfId", paymentInfoID, "Generated (Payment Info Id)", paymentInfoID, "PMT prefix and a random UUID")
	t.text(pmt, "PmtMtd", "TRF", "Fixed (Payment Method)", "TRF", "Payment method fixed to TRF")
	t.text(pmt, "NbOfTxs", count, "Entry Count", count, "")
	t.text(pmt, "CtrlSum", total, "Total Amount (calculated)", total, "Sum of all entry amounts")
	t.text(pmt.Add("PmtTpInf").Add("SvcLvl"), "Cd", "SEPA", "Fixed (Service Level)", "SEPA", "Service level set to SEPA by default")

	rawDate := f.BatchHeader["effectiveEntryDate"]
	execDate := b.executionDate(t, rawDate)
	t.text(pmt, "ReqdExctnDt", execDate, "Batch Header (Effective Date)", rawDate, fmt.Sprintf("Normalized to %s", execDate))

	companyName := f.BatchHeader["companyName"]
	debtor := companyName
	if debtor == "" {
		debtor = DefaultDebtorName
		t.assume("Company name not provided; debtor defaulted to " + DefaultDebtorName)
	}
	t.text(pmt.Add("Dbtr"), "Nm", debtor, "Batch Header (Company Name)", companyName, "Debtor is the company")

	companyID := f.BatchHeader["companyId"]
	debtorAccount := companyID
	if debtorAccount == "" {
		debtorAccount = DefaultDebtorAccount
		t.assume("Company id not provided; debtor account defaulted to " + DefaultDebtorAccount)
	}
	t.text(pmt.Add("DbtrAcct").Add("Id").Add("Othr"), "Id", debtorAccount, "Batch Header (Company Id)", companyID, "Debtor account is the company id")

	for i, entry := range f.Entries {
		addEntry(t, pmt, i+1, entry)
	}

	return t.result(doc, messageID), nil
}

// executionDate resolves ReqdExctnDt. A blank effective date uses the
// placeholder; an unusable one falls back to the conversion date.
func (b *Builder) executionDate(t *trace, raw string) string {
	if raw == "" {
		placeholder, _ := dates.NormalizeYYMMDD(PlaceholderEffectiveDate)
		t.assume(fmt.Sprintf("Effective entry date not provided; placeholder %s used", placeholder))
		return placeholder
	}

	date, fellBack := dates.NormalizeOrToday(raw, b.Now())
	if fellBack {
		t.assume(fmt.Sprintf("Effective entry date %q could not be normalized; conversion date used", raw))
	}
	return date
}

// addEntry writes one CdtTrfTxInf block for the n-th entry (1-based).
func addEntry(t *trace, pmt *xmlwriter.Element, n int, entry types.NACHAEntry) {
	label := func(field string) string {
		return fmt.Sprintf("Entry %d (%s)", n, field)
	}

	tx := pmt.AddRepeated("CdtTrfTxInf")

	e2e := fmt.Sprintf("E2E-%d", n)
	t.text(tx.Add("PmtId"), "EndToEndId", e2e, "Generated (End-to-End Id)", e2e, "Sequential entry reference")

	amount := dates.CentsToDollars(entry.AmountCents)
	var amt *xmlwriter.Element
	if entry.AmountValid {
		amt = t.text(tx.Add("Amt"), "InstdAmt", amount, label("Amount"), amount,
			fmt.Sprintf("Converted from %d cents", entry.AmountCents))
	} else {
		amt = t.text(tx.Add("Amt"), "InstdAmt", amount, label("Amount"), "",
			"Malformed amount; defaulted to 0.00")
		t.assume(fmt.Sprintf("Entry %d amount is malformed; defaulted to 0.00", n))
	}
	t.attr(amt, "Ccy", NACHACurrency, "Fixed (Currency)", NACHACurrency, "NACHA carries no currency; USD assumed")

	mmb := tx.Add("CdtrAgt").Add("FinInstnId").Add("ClrSysMmbId")
	t.text(mmb, "MmbId", entry.Routing, label("Routing"), entry.Routing, "ABA routing number")

	t.text(tx.Add("Cdtr"), "Nm", entry.Name, label("Name"), entry.Name, "")
	t.text(tx.Add("CdtrAcct").Add("Id").Add("Othr"), "Id", entry.Account, label("Account"), entry.Account, "")

	if entry.Memo != "" {
		t.text(tx.Add("RmtInf"), "Ustrd", entry.Memo, label("Memo"), entry.Memo, "")
	}
}
