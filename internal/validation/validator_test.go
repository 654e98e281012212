package validation

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/iso20022-converter/internal/fixtures"
	"github.com/ginjaninja78/iso20022-converter/internal/mapping"
	"github.com/ginjaninja78/iso20022-converter/internal/mtparser"
	"github.com/ginjaninja78/iso20022-converter/internal/nachaparser"
	"github.com/ginjaninja78/iso20022-converter/internal/types"
)

const pacs008Sample = `<?xml version="1.0" encoding="UTF-8"?>
<Document xmlns="urn:iso:std:iso:20022:tech:xsd:pacs.008.001.08">
  <FIToFICstmrCdtTrf>
    <GrpHdr>
      <MsgId>PACS-1</MsgId>
      <CreDtTm>2025-10-01T12:00:00.000Z</CreDtTm>
      <NbOfTxs>1</NbOfTxs>
    </GrpHdr>
    <CdtTrfTxInf>
      <PmtId>
        <InstrId>PACS-1</InstrId>
        <EndToEndId>REF</EndToEndId>
      </PmtId>
      <IntrBkSttlmAmt Ccy="USD">100.00</IntrBkSttlmAmt>
      <IntrBkSttlmDt>2025-09-30</IntrBkSttlmDt>
      <Dbtr>
        <Nm>John Doe</Nm>
      </Dbtr>
      <Cdtr>
        <Nm>Jane Student</Nm>
      </Cdtr>
    </CdtTrfTxInf>
  </FIToFICstmrCdtTrf>
</Document>`

func generatedPacs008(t *testing.T) string {
	t.Helper()
	m, err := mtparser.Parse(fixtures.MT103)
	require.NoError(t, err)
	res, err := mapping.BuildPacs008(m)
	require.NoError(t, err)
	return res.XML
}

func generatedPain001(t *testing.T, input string) string {
	t.Helper()
	f, err := nachaparser.Parse(input)
	require.NoError(t, err)
	res, err := mapping.BuildPain001(f)
	require.NoError(t, err)
	return res.XML
}

// =============================================================================
// pacs.008
// =============================================================================

func TestValidatePacs008_Sample(t *testing.T) {
	res := ValidatePacs008(pacs008Sample)
	assert.True(t, res.Valid, res.Errors)
	assert.GreaterOrEqual(t, int64(res.Elapsed), int64(0))
	assert.Empty(t, res.Errors)
}

func TestValidatePacs008_GeneratedDocumentsAreValid(t *testing.T) {
	for name, input := range map[string]string{"full": fixtures.MT103, "minimal": fixtures.MT103Minimal} {
		t.Run(name, func(t *testing.T) {
			m, err := mtparser.Parse(input)
			require.NoError(t, err)
			built, err := mapping.BuildPacs008(m)
			require.NoError(t, err)

			res := ValidatePacs008(built.XML)
			assert.True(t, res.Valid, res.Errors)
		})
	}
}

func TestValidatePacs008_MissingDebtorName(t *testing.T) {
	doc := strings.Replace(pacs008Sample, "<Nm>John Doe</Nm>", "", 1)

	res := ValidatePacs008(doc)
	require.False(t, res.Valid)
	assert.Equal(t, []string{"Missing required element: CdtTrfTxInf/Dbtr/Nm"}, res.Errors)
	assert.Zero(t, res.Elapsed)
}

func TestValidatePacs008_BlankLeafCountsAsMissing(t *testing.T) {
	doc := strings.Replace(pacs008Sample, "<Nm>John Doe</Nm>", "<Nm>   </Nm>", 1)

	res := ValidatePacs008(doc)
	require.False(t, res.Valid)
	assert.Contains(t, res.Errors, "Missing required element: CdtTrfTxInf/Dbtr/Nm")
}

func TestValidatePacs008_AmountRules(t *testing.T) {
	cases := []struct {
		name    string
		element string
		want    string
	}{
		{"lowercase currency", `<IntrBkSttlmAmt Ccy="usd">100.00</IntrBkSttlmAmt>`, "Invalid currency code format (must be 3 uppercase letters)"},
		{"missing currency", `<IntrBkSttlmAmt>100.00</IntrBkSttlmAmt>`, "Missing required attribute: CdtTrfTxInf/IntrBkSttlmAmt/@Ccy"},
		{"not a number", `<IntrBkSttlmAmt Ccy="USD">abc</IntrBkSttlmAmt>`, "CdtTrfTxInf/IntrBkSttlmAmt must contain a valid number"},
		{"no text", `<IntrBkSttlmAmt Ccy="USD"/>`, "CdtTrfTxInf/IntrBkSttlmAmt must contain a valid number"},
		{"zero", `<IntrBkSttlmAmt Ccy="USD">0.00</IntrBkSttlmAmt>`, "CdtTrfTxInf/IntrBkSttlmAmt must be greater than 0"},
		{"negative", `<IntrBkSttlmAmt Ccy="USD">-5</IntrBkSttlmAmt>`, "CdtTrfTxInf/IntrBkSttlmAmt must be greater than 0"},
		{"absent", ``, "Missing required element: CdtTrfTxInf/IntrBkSttlmAmt"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doc := strings.Replace(pacs008Sample, `<IntrBkSttlmAmt Ccy="USD">100.00</IntrBkSttlmAmt>`, tc.element, 1)
			res := ValidatePacs008(doc)
			require.False(t, res.Valid)
			assert.Equal(t, []string{tc.want}, res.Errors)
		})
	}
}

func TestValidatePacs008_DateFormat(t *testing.T) {
	doc := strings.Replace(pacs008Sample, "2025-09-30", "250930", 1)
	res := ValidatePacs008(doc)
	require.False(t, res.Valid)
	assert.Equal(t, []string{"CdtTrfTxInf/IntrBkSttlmDt must be in format YYYY-MM-DD"}, res.Errors)
}

func TestValidatePacs008_NonNumericCount(t *testing.T) {
	doc := strings.Replace(pacs008Sample, "<NbOfTxs>1</NbOfTxs>", "<NbOfTxs>one</NbOfTxs>", 1)
	res := ValidatePacs008(doc)
	require.False(t, res.Valid)
	assert.Equal(t, []string{"GrpHdr/NbOfTxs must be a number"}, res.Errors)
}

func TestValidatePacs008_MissingParentSkipsChildren(t *testing.T) {
	start := strings.Index(pacs008Sample, "<GrpHdr>")
	end := strings.Index(pacs008Sample, "</GrpHdr>") + len("</GrpHdr>")
	doc := pacs008Sample[:start] + pacs008Sample[end:]

	res := ValidatePacs008(doc)
	require.False(t, res.Valid)
	assert.Equal(t, []string{"Missing required element: GrpHdr"}, res.Errors)
}

func TestValidatePacs008_SiblingChecksAllRun(t *testing.T) {
	doc := strings.Replace(pacs008Sample, "<InstrId>PACS-1</InstrId>", "", 1)
	doc = strings.Replace(doc, "<EndToEndId>REF</EndToEndId>", "", 1)
	doc = strings.Replace(doc, "<Nm>Jane Student</Nm>", "", 1)

	res := ValidatePacs008(doc)
	require.False(t, res.Valid)
	assert.Equal(t, []string{
		"Missing required element: CdtTrfTxInf/PmtId/InstrId",
		"Missing required element: CdtTrfTxInf/PmtId/EndToEndId",
		"Missing required element: CdtTrfTxInf/Cdtr/Nm",
	}, res.Errors)
}

func TestValidatePacs008_MultipleTransactionsAreIndexed(t *testing.T) {
	start := strings.Index(pacs008Sample, "<CdtTrfTxInf>")
	end := strings.Index(pacs008Sample, "</CdtTrfTxInf>") + len("</CdtTrfTxInf>")
	second := strings.Replace(pacs008Sample[start:end], "<Nm>John Doe</Nm>", "", 1)
	doc := pacs008Sample[:end] + second + pacs008Sample[end:]

	res := ValidatePacs008(doc)
	require.False(t, res.Valid)
	assert.Equal(t, []string{"Missing required element: CdtTrfTxInf[2]/Dbtr/Nm"}, res.Errors)
}

func TestValidatePacs008_Structure(t *testing.T) {
	res := ValidatePacs008(`<Other/>`)
	assert.Equal(t, []string{"Missing root element: Document"}, res.Errors)

	res = ValidatePacs008(``)
	assert.Equal(t, []string{"Missing root element: Document"}, res.Errors)

	res = ValidatePacs008(`<Document><CstmrCdtTrfInitn/></Document>`)
	assert.Equal(t, []string{"Missing element: FIToFICstmrCdtTrf"}, res.Errors)

	res = ValidatePacs008(`<Document><FIToFICstmrCdtTrf/></Document>`)
	assert.Equal(t, []string{
		"Missing required element: GrpHdr",
		"Missing required element: CdtTrfTxInf",
	}, res.Errors)
}

func TestValidatePacs008_MalformedXML(t *testing.T) {
	res := ValidatePacs008(`<Document><FIToFICstmrCdtTrf>`)
	require.False(t, res.Valid)
	require.Len(t, res.Errors, 1)
	assert.True(t, strings.HasPrefix(res.Errors[0], "XML parsing error: "), res.Errors[0])

	res = ValidatePacs008(`<Document></Wrong>`)
	require.Len(t, res.Errors, 1)
	assert.True(t, strings.HasPrefix(res.Errors[0], "XML parsing error: "))
}

// =============================================================================
// pain.001
// =============================================================================

func TestValidatePain001_GeneratedDocumentIsValid(t *testing.T) {
	res := ValidatePain001(generatedPain001(t, fixtures.NACHA))
	assert.True(t, res.Valid, res.Errors)
}

func TestValidatePain001_MalformedAmountStillValid(t *testing.T) {
	bad := fixtures.EntryRecordRawAmount(fixtures.Entry{Routing8: "98765432", CheckDigit: "1", Account: "1", Name: "A"}, "XYZ")
	doc := generatedPain001(t, fixtures.NACHAFile(fixtures.BatchHeader("CO", "250930"), []string{bad}, -1))

	res := ValidatePain001(doc)
	assert.True(t, res.Valid, res.Errors)
}

func TestValidatePain001_PerTransactionFindings(t *testing.T) {
	entries := []string{
		fixtures.EntryRecord(fixtures.Entry{Routing8: "98765432", CheckDigit: "1", Account: "A1", AmountCents: 100, Name: "ONE"}),
		fixtures.EntryRecord(fixtures.Entry{Routing8: "98765432", CheckDigit: "1", Account: "A2", AmountCents: 200, Name: "TWO"}),
	}
	doc := generatedPain001(t, fixtures.NACHAFile(fixtures.BatchHeader("CO", "250930"), entries, -1))
	doc = strings.Replace(doc, "<Nm>TWO</Nm>", "", 1)
	doc = strings.Replace(doc, `<InstdAmt Ccy="USD">1.00</InstdAmt>`, `<InstdAmt>x</InstdAmt>`, 1)

	res := ValidatePain001(doc)
	require.False(t, res.Valid)
	assert.Equal(t, []string{
		"Missing required attribute: CdtTrfTxInf[1]/Amt/InstdAmt/@Ccy",
		"CdtTrfTxInf[1]/Amt/InstdAmt must contain a valid number",
		"Missing required element: CdtTrfTxInf[2]/Cdtr/Nm",
	}, res.Errors)
}

func TestValidatePain001_SingleTransactionAlsoIterated(t *testing.T) {
	doc := generatedPain001(t, fixtures.NACHA)
	start := strings.Index(doc, "<CdtrAcct>")
	end := strings.Index(doc, "</CdtrAcct>") + len("</CdtrAcct>")
	doc = doc[:start] + doc[end:]

	res := ValidatePain001(doc)
	require.False(t, res.Valid)
	assert.Equal(t, []string{"Missing required element: CdtTrfTxInf[1]/CdtrAcct"}, res.Errors)
}

func TestValidatePain001_HeaderAndPaymentInfo(t *testing.T) {
	doc := generatedPain001(t, fixtures.NACHA)
	doc = strings.Replace(doc, "<PmtMtd>TRF</PmtMtd>", "", 1)
	doc = strings.Replace(doc, "<ReqdExctnDt>2025-09-30</ReqdExctnDt>", "<ReqdExctnDt>30/09/2025</ReqdExctnDt>", 1)
	doc = strings.Replace(doc, "<Nm>STUDENT CLUB</Nm>", "", 1)

	res := ValidatePain001(doc)
	require.False(t, res.Valid)
	assert.Equal(t, []string{
		"Missing required element: PmtInf/PmtMtd",
		"PmtInf/ReqdExctnDt must be in format YYYY-MM-DD",
		"Missing required element: PmtInf/Dbtr/Nm",
	}, res.Errors)
}

func TestValidatePain001_Structure(t *testing.T) {
	res := ValidatePain001(`<Document/>`)
	assert.Equal(t, []string{"Missing element: CstmrCdtTrfInitn"}, res.Errors)

	res = ValidatePain001(`<Document><CstmrCdtTrfInitn><GrpHdr><MsgId>M</MsgId></GrpHdr></CstmrCdtTrfInitn></Document>`)
	assert.Equal(t, []string{
		"Missing required element: GrpHdr/CreDtTm",
		"Missing required element: GrpHdr/NbOfTxs",
		"Missing required element: GrpHdr/InitgPty",
		"Missing required element: PmtInf",
	}, res.Errors)
}

// =============================================================================
// Dispatch and formatting
// =============================================================================

func TestValidate_Dispatch(t *testing.T) {
	res, err := Validate(types.FormatMT103, generatedPacs008(t))
	require.NoError(t, err)
	assert.True(t, res.Valid)

	res, err = Validate(types.FormatNACHA, generatedPacs008(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"Missing element: CstmrCdtTrfInitn"}, res.Errors)

	_, err = Validate(types.Format(0), "")
	assert.Error(t, err)
}

func TestFormatErrors(t *testing.T) {
	out := FormatErrors(types.Invalid("a", "b"))
	assert.Contains(t, out, "2 error(s)")
	assert.Contains(t, out, "1. a\n")
	assert.Contains(t, out, "2. b\n")

	assert.Contains(t, FormatErrors(types.Valid(0)), "Valid")
}

func TestValidResultAlwaysCarriesTiming(t *testing.T) {
	data, err := json.Marshal(types.Valid(0))
	require.NoError(t, err)
	assert.JSONEq(t, `{"valid":true,"elapsedNs":0}`, string(data))
}
