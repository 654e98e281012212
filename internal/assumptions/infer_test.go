package assumptions

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/iso20022-converter/internal/fixtures"
	"github.com/ginjaninja78/iso20022-converter/internal/mapping"
	"github.com/ginjaninja78/iso20022-converter/internal/mtparser"
	"github.com/ginjaninja78/iso20022-converter/internal/nachaparser"
	"github.com/ginjaninja78/iso20022-converter/internal/types"
)

var sortStrings = cmpopts.SortSlices(func(a, b string) bool { return a < b })

func buildPacs(t *testing.T, input string) *mapping.Result {
	t.Helper()
	m, err := mtparser.Parse(input)
	require.NoError(t, err)
	res, err := mapping.BuildPacs008(m)
	require.NoError(t, err)
	return res
}

func buildPain(t *testing.T, input string) *mapping.Result {
	t.Helper()
	f, err := nachaparser.Parse(input)
	require.NoError(t, err)
	res, err := mapping.BuildPain001(f)
	require.NoError(t, err)
	return res
}

func TestInfer_Pacs008FromFullMessage(t *testing.T) {
	res := buildPacs(t, fixtures.MT103)

	got := Infer(res.XML, types.FormatMT103, &res.Report)

	want := []string{
		DebtorAgentNoBIC,
		CreditorAgentNoBIC,
		NoAgentIdentifier,
		DebtorAccountOther,
		CreditorAccountOther,
		DebtorFreeAddress,
		CreditorFreeAddress,
		DefaultChargeBearer,
		NoPurposeCode,
	}
	if diff := cmp.Diff(want, got, sortStrings); diff != "" {
		t.Errorf("Infer() mismatch (-want +got):\n%s", diff)
	}
}

func TestInfer_Pacs008FromMinimalMessage(t *testing.T) {
	res := buildPacs(t, fixtures.MT103Minimal)

	got := Infer(res.XML, types.FormatMT103, &res.Report)

	assert.Contains(t, got, NoRemittance)
	assert.NotContains(t, got, DebtorAccountOther)
	assert.NotContains(t, got, CreditorAccountOther)
	assert.NotContains(t, got, DebtorFreeAddress)
	assert.NotContains(t, got, MissingSettlement)
	assert.NotContains(t, got, MissingCurrency)
}

func TestInfer_Pain001(t *testing.T) {
	res := buildPain(t, fixtures.NACHA)

	got := Infer(res.XML, types.FormatNACHA, &res.Report)

	assert.Contains(t, got, DebtorAgentNoBIC)
	assert.Contains(t, got, CreditorAgentNoBIC)
	assert.NotContains(t, got, NoAgentIdentifier, "clearing member id is present")
	assert.Contains(t, got, DebtorAccountOther)
	assert.Contains(t, got, CreditorAccountOther)
	assert.NotContains(t, got, MissingExecution)
	assert.NotContains(t, got, MissingSettlement, "pain.001 has no settlement date")
	assert.NotContains(t, got, MissingCurrency)
	assert.Contains(t, got, DefaultChargeBearer)

	assert.Contains(t, got, MappingNotePrefix+"Service level set to SEPA by default")
	assert.Contains(t, got, MappingNotePrefix+"NACHA carries no currency; USD assumed")
}

func TestInfer_DedupesRepeatedNotes(t *testing.T) {
	var entries []string
	for i := 0; i < 3; i++ {
		entries = append(entries, fixtures.EntryRecord(fixtures.Entry{
			Routing8: "98765432", CheckDigit: "1", Account: "1", AmountCents: 100, Name: "A",
		}))
	}
	res := buildPain(t, fixtures.NACHAFile(fixtures.BatchHeader("CO", "250930"), entries, 300))

	got := Infer(res.XML, types.FormatNACHA, &res.Report)

	count := 0
	for _, s := range got {
		if s == MappingNotePrefix+"NACHA carries no currency; USD assumed" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestInfer_ScopesChecksToTheirElement(t *testing.T) {
	// The creditor's structured address must not hide the debtor's
	// free-form one.
	doc := `<Document><X>
<Dbtr><Nm>A</Nm><PstlAdr><AdrLine>1 ROAD</AdrLine></PstlAdr></Dbtr>
<DbtrAgt><FinInstnId><BICFI>AAAAUS33</BICFI></FinInstnId></DbtrAgt>
<Cdtr><Nm>B</Nm><PstlAdr><TwnNm>CITY</TwnNm><Ctry>US</Ctry></PstlAdr></Cdtr>
<CdtrAcct><Id><IBAN>DE89370400440532013000</IBAN></Id></CdtrAcct>
</X></Document>`

	got := Infer(doc, types.FormatMT103, nil)

	assert.Contains(t, got, DebtorFreeAddress)
	assert.NotContains(t, got, CreditorFreeAddress)
	assert.NotContains(t, got, DebtorAgentNoBIC)
	assert.Contains(t, got, CreditorAgentNoBIC)
	assert.NotContains(t, got, NoAgentIdentifier)
	assert.NotContains(t, got, CreditorAccountOther)
}

func TestInfer_RichDocumentNeedsFewAssumptions(t *testing.T) {
	doc := `<Document><X>
<GrpHdr><MsgId>M1</MsgId></GrpHdr>
<CdtTrfTxInf>
<PmtId><EndToEndId>E1</EndToEndId></PmtId>
<IntrBkSttlmAmt Ccy="EUR">10.00</IntrBkSttlmAmt>
<IntrBkSttlmDt>2025-09-30</IntrBkSttlmDt>
<ChrgBr>SLEV</ChrgBr>
<DbtrAgt><FinInstnId><BICFI>AAAAUS33</BICFI></FinInstnId></DbtrAgt>
<CdtrAgt><FinInstnId><BICFI>BBBBDEFF</BICFI></FinInstnId></CdtrAgt>
<Purp><Cd>SALA</Cd></Purp>
<RmtInf><Ustrd>Invoice 7</Ustrd></RmtInf>
</CdtTrfTxInf>
</X></Document>`

	assert.Empty(t, Infer(doc, types.FormatMT103, nil))
}

func TestInfer_ReusedReference(t *testing.T) {
	doc := `<Document><MsgId>REF1</MsgId><EndToEndId>REF1</EndToEndId></Document>`
	assert.Contains(t, Infer(doc, types.FormatMT103, nil), ReusedReference)

	doc = `<Document><MsgId>REF1</MsgId><EndToEndId>REF2</EndToEndId></Document>`
	assert.NotContains(t, Infer(doc, types.FormatMT103, nil), ReusedReference)
}

func TestInfer_DateElementFollowsFormat(t *testing.T) {
	doc := `<Document><ReqdExctnDt>2025-09-30</ReqdExctnDt></Document>`

	assert.NotContains(t, Infer(doc, types.FormatNACHA, nil), MissingExecution)
	assert.Contains(t, Infer(doc, types.FormatMT103, nil), MissingSettlement)
}

func TestInfer_MappingNotes(t *testing.T) {
	report := &types.MappingReport{Rows: []types.MappingRow{
		{Note: "Currency ASSUMED from context"},
		{Note: "Value DEFAULTED"},
		{Note: "Normalized to 2025-09-30"},
		{Note: ""},
	}}

	got := Infer(`<Document/>`, types.FormatMT103, report)

	assert.Contains(t, got, "Mapping note: Currency ASSUMED from context")
	assert.Contains(t, got, "Mapping note: Value DEFAULTED")
	assert.NotContains(t, got, "Mapping note: Normalized to 2025-09-30")
}

func TestInfer_IsIdempotent(t *testing.T) {
	res := buildPain(t, fixtures.NACHA)

	first := Infer(res.XML, types.FormatNACHA, &res.Report)
	second := Infer(res.XML, types.FormatNACHA, &res.Report)

	if diff := cmp.Diff(first, second, sortStrings); diff != "" {
		t.Errorf("Infer() not stable (-first +second):\n%s", diff)
	}
	assert.Equal(t, len(first), len(dedupe(first)))
}

func TestInfer_NeverNil(t *testing.T) {
	got := Infer("", types.FormatNACHA, nil)
	assert.NotNil(t, got)
	assert.Contains(t, got, MissingExecution)
}
