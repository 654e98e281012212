// =============================================================================
// Legacy Payment Converter - XML Writer Module
// =============================================================================
//
// This module builds ISO 20022 documents as an in-memory element tree and
// renders them as pretty-printed UTF-8 XML.
//
// XML STRUCTURE:
//   Every generated document has the same outer shape:
//
//   <?xml version="1.0" encoding="UTF-8"?>
//   <Document xmlns="urn:iso:std:iso:20022:tech:xsd:pacs.008.001.08"
//             xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">
//     <FIToFICstmrCdtTrf>                <!-- Message root -->
//       <GrpHdr>
//         <MsgId>PACS...</MsgId>
//       </GrpHdr>
//       <CdtTrfTxInf>...</CdtTrfTxInf>
//     </FIToFICstmrCdtTrf>
//   </Document>
//
// PATHS:
//   Each element keeps a link to its parent, so its location can be derived
//   at any time with Path. Paths are relative to a base element (normally
//   the message root) and use "/" separators. Elements added with
//   AddRepeated carry a 1-based index among same-named siblings:
//
//     GrpHdr/MsgId
//     CdtTrfTxInf/IntrBkSttlmAmt/@Ccy
//     PmtInf/CdtTrfTxInf[2]/Amt/InstdAmt
//
//   The mapping builders record a path the moment they place a value, so
//   the trace and the XML come from the same traversal.
//
// =============================================================================

package xmlwriter

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
)

// XSINamespace is declared on every Document root.
const XSINamespace = "http://www.w3.org/2001/XMLSchema-instance"

// =============================================================================
// XML GENERATION OPTIONS
// =============================================================================

// GenerateOptions contains options for XML rendering.
type GenerateOptions struct {
	// Indent is the string used for indentation.
	// Default: "  " (two spaces)
	Indent string

	// IncludeXMLDeclaration determines whether to include the XML declaration.
	// Default: true
	IncludeXMLDeclaration bool

	// XMLVersion is the XML version for the declaration.
	// Default: "1.0"
	XMLVersion string

	// Encoding is the encoding for the XML declaration.
	// Default: "UTF-8"
	Encoding string
}

// DefaultGenerateOptions returns the default rendering options.
func DefaultGenerateOptions() GenerateOptions {
	return GenerateOptions{
		Indent:                "  ",
		IncludeXMLDeclaration: true,
		XMLVersion:            "1.0",
		Encoding:              "UTF-8",
	}
}

// =============================================================================
// ELEMENT TREE
// =============================================================================

// Attr is a single XML attribute.
type Attr struct {
	Name  string
	Value string
}

// Element is a node of the document tree. Build trees with NewDocument and
// the Add* methods; the zero value is not linked to a parent.
type Element struct {
	Name     string
	Attrs    []Attr
	Text     string
	Children []*Element

	parent *Element

	// index is the 1-based position among same-named siblings. It only
	// shows up in Path when repeated is set.
	index    int
	repeated bool
}

// NewDocument creates a Document root declaring namespace as the default
// namespace, with messageRoot as its only child. It returns both elements.
//
// PARAMETERS:
//   - namespace: The ISO 20022 message namespace URN.
//   - messageRoot: The message element name, e.g. "FIToFICstmrCdtTrf".
//
// RETURNS:
//   - The Document element (render this).
//   - The message root element (build under this, and use it as path base).
func NewDocument(namespace, messageRoot string) (*Element, *Element) {
	doc := &Element{
		Name: "Document",
		Attrs: []Attr{
			{Name: "xmlns", Value: namespace},
			{Name: "xmlns:xsi", Value: XSINamespace},
		},
	}
	return doc, doc.Add(messageRoot)
}

// Add appends an empty child element and returns it.
func (e *Element) Add(name string) *Element {
	child := &Element{Name: name, parent: e, index: e.countChildren(name) + 1}
	e.Children = append(e.Children, child)
	return child
}

// AddText appends a leaf element carrying text and returns it.
func (e *Element) AddText(name, text string) *Element {
	child := e.Add(name)
	child.Text = text
	return child
}

// AddRepeated appends a child whose path includes its sibling index, for
// elements that may occur more than once under the same parent.
func (e *Element) AddRepeated(name string) *Element {
	child := e.Add(name)
	child.repeated = true
	return child
}

// AddRepeatedText is AddRepeated for a leaf carrying text.
func (e *Element) AddRepeatedText(name, text string) *Element {
	child := e.AddRepeated(name)
	child.Text = text
	return child
}

// SetAttr sets (or replaces) an attribute and returns the element.
func (e *Element) SetAttr(name, value string) *Element {
	for i := range e.Attrs {
		if e.Attrs[i].Name == name {
			e.Attrs[i].Value = value
			return e
		}
	}
	e.Attrs = append(e.Attrs, Attr{Name: name, Value: value})
	return e
}

// Attr returns the value of an attribute.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Parent returns the enclosing element, or nil for a root.
func (e *Element) Parent() *Element {
	return e.parent
}

// Path returns the location of e relative to base, which must be an
// ancestor of e. If base is nil or not an ancestor, the path runs from the
// tree root.
func (e *Element) Path(base *Element) string {
	var segments []string
	for cur := e; cur != nil && cur != base; cur = cur.parent {
		seg := cur.Name
		if cur.repeated {
			seg = fmt.Sprintf("%s[%d]", cur.Name, cur.index)
		}
		segments = append(segments, seg)
	}

	for i, j := 0, len(segments)-1; i < j; i, j = i+1, j-1 {
		segments[i], segments[j] = segments[j], segments[i]
	}
	return strings.Join(segments, "/")
}

// AttrPath returns the path of an attribute of e, e.g. "Amt/InstdAmt/@Ccy".
func (e *Element) AttrPath(base *Element, attr string) string {
	return e.Path(base) + "/@" + attr
}

// Find walks a "/"-separated path of child names from e and returns the
// first match at each step. Sibling indexes ("Name[2]") are honoured.
func (e *Element) Find(path string) *Element {
	cur := e
	for _, seg := range strings.Split(path, "/") {
		name, index := splitIndex(seg)
		var next *Element
		for _, child := range cur.Children {
			if child.Name == name && child.index == index {
				next = child
				break
			}
		}
		if next == nil {
			return nil
		}
		cur = next
	}
	return cur
}

// Walk visits e and every descendant in document order.
func (e *Element) Walk(fn func(*Element)) {
	fn(e)
	for _, child := range e.Children {
		child.Walk(fn)
	}
}

func (e *Element) countChildren(name string) int {
	n := 0
	for _, child := range e.Children {
		if child.Name == name {
			n++
		}
	}
	return n
}

// splitIndex turns "Name[3]" into ("Name", 3) and "Name" into ("Name", 1).
func splitIndex(seg string) (string, int) {
	open := strings.IndexByte(seg, '[')
	if open < 0 || !strings.HasSuffix(seg, "]") {
		return seg, 1
	}
	var index int
	if _, err := fmt.Sscanf(seg[open+1:len(seg)-1], "%d", &index); err != nil || index < 1 {
		return seg, 1
	}
	return seg[:open], index
}

// =============================================================================
// XML GENERATION FUNCTIONS
// =============================================================================

// Generate renders the tree with the default options.
func Generate(root *Element) []byte {
	return GenerateWithOptions(root, DefaultGenerateOptions())
}

// GenerateWithOptions renders the tree with custom options.
//
// RENDERING RULES:
//   - Elements with text are written on one line.
//   - Elements with children open a block, one child per line.
//   - Elements with neither are self-closing.
//   - Text and attribute values are escaped; characters XML cannot carry
//     are replaced with U+FFFD.
func GenerateWithOptions(root *Element, options GenerateOptions) []byte {
	var buffer bytes.Buffer

	if options.IncludeXMLDeclaration {
		buffer.WriteString(fmt.Sprintf("<?xml version=\"%s\" encoding=\"%s\"?>\n",
			options.XMLVersion, options.Encoding))
	}

	writeElement(&buffer, root, options.Indent, 0)

	return buffer.Bytes()
}

// writeElement writes an XML element to the buffer with indentation.
func writeElement(buffer *bytes.Buffer, element *Element, indent string, level int) {
	buffer.WriteString(strings.Repeat(indent, level))

	buffer.WriteString("<")
	buffer.WriteString(element.Name)

	for _, attr := range element.Attrs {
		buffer.WriteString(fmt.Sprintf(" %s=\"%s\"", attr.Name, escapeXML(attr.Value)))
	}

	if len(element.Children) == 0 && element.Text == "" {
		buffer.WriteString("/>\n")
		return
	}

	buffer.WriteString(">")

	if len(element.Children) == 0 {
		buffer.WriteString(escapeXML(element.Text))
	} else {
		buffer.WriteString("\n")

		for _, child := range element.Children {
			writeElement(buffer, child, indent, level+1)
		}

		buffer.WriteString(strings.Repeat(indent, level))
	}

	buffer.WriteString("</")
	buffer.WriteString(element.Name)
	buffer.WriteString(">\n")
}

// escapeXML escapes special characters for XML. Characters XML 1.0 does
// not allow, and invalid UTF-8, come out as U+FFFD.
func escapeXML(s string) string {
	var buffer bytes.Buffer
	// Writes to a bytes.Buffer do not fail.
	_ = xml.EscapeText(&buffer, []byte(s))
	return buffer.String()
}
