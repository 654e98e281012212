// =============================================================================
// Legacy Payment Converter - Mapping Module
// =============================================================================
//
// This module turns the canonical legacy model into ISO 20022 XML plus a
// mapping report.
//
// MAPPINGS:
//   | Source | Target   | Builder             |
//   |--------|----------|---------------------|
//   | MT103  | pacs.008 | Builder.BuildPacs008 |
//   | NACHA  | pain.001 | Builder.BuildPain001 |
//
// TRACE:
//   Builders never write a mapping row by hand. Every value is placed
//   through a trace, which adds the element to the tree and records the row
//   with the path the element actually landed on. The report and the XML
//   therefore cannot drift apart.
//
// DETERMINISM:
//   The clock and the id generator are fields of Builder. Tests inject
//   fixed ones; the package-level functions use time.Now and uuid.
//
// =============================================================================

package mapping

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ginjaninja78/iso20022-converter/internal/types"
	"github.com/ginjaninja78/iso20022-converter/internal/xmlwriter"
)

// Message namespaces declared as the default namespace of each Document.
const (
	Pacs008Namespace = "urn:iso:std:iso:20022:tech:xsd:pacs.008.001.08"
	Pain001Namespace = "urn:iso:std:iso:20022:tech:xsd:pain.001.001.09"
)

// ErrNilInput is returned when a builder is handed a nil model.
var ErrNilInput = errors.New("mapping: nil input model")

// Result is the output of a builder.
type Result struct {
	XML    string              `json:"xml"`
	Report types.MappingReport `json:"mappingReport"`
}

// Builder builds ISO 20022 documents. The zero value is not usable; call
// NewBuilder or set both fields.
type Builder struct {
	// Now returns the conversion time, used for CreDtTm and date fallbacks.
	Now func() time.Time

	// NewID returns a fresh unique id, used for message and payment ids.
	NewID func() string
}

// NewBuilder returns a builder using the wall clock and random UUIDs.
func NewBuilder() *Builder {
	return &Builder{
		Now:   time.Now,
		NewID: uuid.NewString,
	}
}

var defaultBuilder = NewBuilder()

// BuildPacs008 maps an MT103 message with the default builder.
func BuildPacs008(m *types.MT103) (*Result, error) {
	return defaultBuilder.BuildPacs008(m)
}

// BuildPain001 maps a NACHA file with the default builder.
func BuildPain001(f *types.NACHAFile) (*Result, error) {
	return defaultBuilder.BuildPain001(f)
}

// creationTime formats the builder clock like an ISO 8601 UTC timestamp
// with millisecond precision.
func (b *Builder) creationTime() string {
	return b.Now().UTC().Format("2006-01-02T15:04:05.000Z")
}

// =============================================================================
// TRACE
// =============================================================================

// trace records one mapping row per placed value, with paths relative to
// the message root.
type trace struct {
	base        *xmlwriter.Element
	rows        []types.MappingRow
	assumptions []string
}

func newTrace(base *xmlwriter.Element) *trace {
	return &trace{base: base, rows: []types.MappingRow{}, assumptions: []string{}}
}

// text places a leaf under parent and records where it went.
//
// PARAMETERS:
//   - parent: The element to append to.
//   - name: The new element's name.
//   - text: The text written into the XML.
//   - source: The legacy source label.
//   - value: The raw legacy value (may differ from text after normalization).
//   - note: Optional free-text note.
func (t *trace) text(parent *xmlwriter.Element, name, text, source, value, note string) *xmlwriter.Element {
	return t.record(parent.AddText(name, text), source, value, note)
}

// repeatedText is text for elements that may occur several times.
func (t *trace) repeatedText(parent *xmlwriter.Element, name, text, source, value, note string) *xmlwriter.Element {
	return t.record(parent.AddRepeatedText(name, text), source, value, note)
}

// attr sets an attribute on el and records it.
func (t *trace) attr(el *xmlwriter.Element, name, text, source, value, note string) {
	el.SetAttr(name, text)
	t.rows = append(t.rows, types.MappingRow{
		Source:     source,
		Value:      value,
		TargetPath: el.AttrPath(t.base, name),
		Note:       note,
	})
}

func (t *trace) record(el *xmlwriter.Element, source, value, note string) *xmlwriter.Element {
	t.rows = append(t.rows, types.MappingRow{
		Source:     source,
		Value:      value,
		TargetPath: el.Path(t.base),
		Note:       note,
	})
	return el
}

func (t *trace) assume(note string) {
	t.assumptions = append(t.assumptions, note)
}

// result renders the document and assembles the builder output.
func (t *trace) result(doc *xmlwriter.Element, messageID string) *Result {
	return &Result{
		XML: string(xmlwriter.Generate(doc)),
		Report: types.MappingReport{
			MessageID:   messageID,
			Rows:        t.rows,
			Assumptions: t.assumptions,
			Risks:       []types.Risk{},
		},
	}
}
