package mapping

import (
	"fmt"

	"github.com/ginjaninja78/iso20022-converter/internal/dates"
	"github.com/ginjaninja78/iso20022-converter/internal/types"
	"github.com/ginjaninja78/iso20022-converter/internal/xmlwriter"
)

// BuildPacs008 maps an MT103 message to a pacs.008 FIToFICstmrCdtTrf.
//
// PARAMETERS:
//   - m: The parsed MT103 message. It is read, never modified.
//
// RETURNS:
//   - The XML text and the mapping report.
//   - ErrNilInput when m is nil.
//
// STRUCTURE:
//   GrpHdr{MsgId, CreDtTm, NbOfTxs, SttlmInf/SttlmMtd}
//   CdtTrfTxInf{PmtId{InstrId, EndToEndId}, IntrBkSttlmAmt@Ccy,
//     IntrBkSttlmDt, ChrgBr?, Dbtr{Nm, PstlAdr?}, DbtrAcct?,
//     Cdtr{Nm, PstlAdr?}, CdtrAcct?, RmtInf?}
func (b *Builder) BuildPacs008(m *types.MT103) (*Result, error) {
	if m == nil {
		return nil, ErrNilInput
	}

	messageID := "PACS" + b.NewID()

	doc, root := xmlwriter.NewDocument(Pacs008Namespace, "FIToFICstmrCdtTrf")
	t := newTrace(root)

	// Group header.
	hdr := root.Add("GrpHdr")
	t.text(hdr, "MsgId", messageID, "Generated (Message Id)", messageID, "PACS prefix and a random UUID")
	created := b.creationTime()
	t.text(hdr, "CreDtTm", created, "Generated (Creation Time)", created, "Conversion time in UTC")
	t.text(hdr, "NbOfTxs", "1", "Fixed (Transaction Count)", "1", "An MT103 carries exactly one transaction")
	t.text(hdr.Add("SttlmInf"), "SttlmMtd", "CLRG", "Fixed (Settlement Method)", "CLRG", "Settlement through a clearing system")

	tx := root.Add("CdtTrfTxInf")

	// Payment identification.
	pmtID := tx.Add("PmtId")
	t.text(pmtID, "InstrId", messageID, "Generated (Message Id)", messageID, "Instruction id reuses the message id")
	if m.TrnRef != "" {
		t.text(pmtID, "EndToEndId", m.TrnRef, ":20: (Transaction Reference)", m.TrnRef, "End-to-end reference")
	} else {
		e2e := "E2E" + b.NewID()
		t.text(pmtID, "EndToEndId", e2e, "Generated (End-to-End Id)", "", "No :20: reference; generated by default")
		t.assume("Transaction reference not provided; end-to-end id generated")
	}

	// Amount, currency and settlement date.
	amt := t.text(tx, "IntrBkSttlmAmt", m.Amount, ":32A: (Amount)", m.Amount, "Settlement amount")
	t.attr(amt, "Ccy", m.Currency, ":32A: (Currency)", m.Currency, "ISO currency code")

	settlement, fellBack := dates.NormalizeOrToday(m.ValueDate, b.Now())
	if fellBack {
		t.text(tx, "IntrBkSttlmDt", settlement, ":32A: (Value Date)", m.ValueDate,
			fmt.Sprintf("Value date unusable; defaulted to %s", settlement))
		t.assume(fmt.Sprintf("Value date %q could not be normalized; conversion date used", m.ValueDate))
	} else {
		t.text(tx, "IntrBkSttlmDt", settlement, ":32A: (Value Date)", m.ValueDate,
			fmt.Sprintf("Normalized to %s", settlement))
	}

	// Charges.
	if m.Charges != "" {
		bearer, note := chargeBearer(m.Charges)
		t.text(tx, "ChrgBr", bearer, ":71A: (Charge Bearer)", string(m.Charges), note)
	}

	// Parties and accounts.
	addParty(t, tx, "Dbtr", ":50K:", "Debtor", m.Debtor)
	if m.Debtor.HasAccount() {
		addAccount(t, tx, "DbtrAcct", ":50K: (Debtor Account)", m.Debtor.Account)
	} else {
		t.assume("Debtor account not provided; generic account used")
	}

	addParty(t, tx, "Cdtr", ":59:", "Creditor", m.Creditor)
	if m.Creditor.HasAccount() {
		addAccount(t, tx, "CdtrAcct", ":59: (Creditor Account)", m.Creditor.Account)
	} else {
		t.assume("Creditor account not provided; generic account used")
	}

	// Remittance.
	if m.Remittance != "" {
		t.text(tx.Add("RmtInf"), "Ustrd", m.Remittance, ":70: (Remittance Info)", m.Remittance, "")
	} else {
		t.assume("No remittance information provided")
	}

	for _, tag := range m.ExtensionTags() {
		t.assume(fmt.Sprintf("Field :%s: has no pacs.008 mapping and was not carried over", tag))
	}

	return t.result(doc, messageID), nil
}

// chargeBearer maps a :71A: code to ChrgBr. Only OUR is translated.
func chargeBearer(code types.ChargeCode) (string, string) {
	if code == types.ChargeOurs {
		return "DEBT", "Mapped OUR to DEBT"
	}
	return string(code), ""
}

// addParty writes Nm and, when there are address lines, PstlAdr/AdrLine*.
func addParty(t *trace, tx *xmlwriter.Element, element, tag, role string, p types.Party) {
	party := tx.Add(element)
	t.text(party, "Nm", p.Name, fmt.Sprintf("%s (%s Name)", tag, role), p.Name, "")

	if len(p.AddressLines) == 0 {
		return
	}
	addr := party.Add("PstlAdr")
	for _, line := range p.AddressLines {
		t.repeatedText(addr, "AdrLine", line, fmt.Sprintf("%s (%s Address)", tag, role), line, "")
	}
}

// addAccount writes <element>/Id/Othr/Id.
func addAccount(t *trace, tx *xmlwriter.Element, element, source, account string) {
	t.text(tx.Add(element).Add("Id").Add("Othr"), "Id", account, source, account, "")
}
