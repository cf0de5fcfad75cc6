// Package resx implements reading and writing of .NET .resx string
// resource files.
//
// A .resx document is an XML file with a <root> element holding a small
// set of <resheader> metadata entries followed by <data> entries:
//
//	<data name="Greeting" xml:space="preserve">
//	    <value>Hello</value>
//	    <comment>Shown on the start page</comment>
//	</data>
//
// Entry names are unique case-insensitively within one file. Only string
// resources are modeled; <assembly> and <metadata> elements are skipped on
// parse and not written back.
package resx

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ---------------------------------------------------------------------------
// Data model
// ---------------------------------------------------------------------------

// Entry is a single key/value pair in a .resx file, with an optional comment.
type Entry struct {
	// Name is the resource key (attribute name="…").
	Name string
	// Value is the resource string. May be empty.
	Value string
	// Comment is an optional annotation. It is not a value.
	Comment string
}

// Header is a <resheader> metadata entry.
type Header struct {
	Name  string
	Value string
}

// Document represents a parsed .resx file.
type Document struct {
	// Headers holds the <resheader> entries in document order.
	Headers []Header
	// Entries holds the <data> entries in document order.
	Entries []*Entry
	// byName maps lower-cased entry name to index in Entries.
	byName map[string]int
}

// Standard resheader set written into every synthesized file. The reader
// and writer type names are what Visual Studio emits for string resources.
var standardHeaders = []Header{
	{Name: "resmimetype", Value: "text/microsoft-resx"},
	{Name: "version", Value: "2.0"},
	{Name: "reader", Value: "System.Resources.ResXResourceReader, System.Windows.Forms, Version=4.0.0.0, Culture=neutral, PublicKeyToken=b77a5c561934e089"},
	{Name: "writer", Value: "System.Resources.ResXResourceWriter, System.Windows.Forms, Version=4.0.0.0, Culture=neutral, PublicKeyToken=b77a5c561934e089"},
}

// NewDocument returns an empty document carrying the standard format headers.
func NewDocument() *Document {
	d := &Document{byName: make(map[string]int)}
	d.Headers = append(d.Headers, standardHeaders...)
	return d
}

// ---------------------------------------------------------------------------
// Parsing
// ---------------------------------------------------------------------------

// ParseFile reads and parses a .resx file.
func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return Parse(data)
}

// Parse parses .resx data. The document must contain a <root> element;
// anything inside it other than <resheader> and <data> is skipped.
func Parse(data []byte) (*Document, error) {
	d := &Document{byName: make(map[string]int)}

	dec := xml.NewDecoder(strings.NewReader(string(data)))
	inRoot := false
	sawRoot := false

	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				if !sawRoot {
					return nil, fmt.Errorf("parsing resx: no <root> element")
				}
				break
			}
			return nil, fmt.Errorf("parsing resx: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "root" && !inRoot {
				inRoot = true
				sawRoot = true
				continue
			}
			if !inRoot {
				continue
			}

			switch t.Name.Local {
			case "resheader":
				h, err := parseHeaderElement(dec, t)
				if err != nil {
					return nil, err
				}
				d.Headers = append(d.Headers, h)

			case "data":
				e, err := parseDataElement(dec, t)
				if err != nil {
					return nil, err
				}
				d.add(e)

			default:
				// assembly, metadata, schema — skip entirely
				dec.Skip()
			}

		case xml.EndElement:
			if t.Name.Local == "root" {
				inRoot = false
			}
		}
	}

	return d, nil
}

// add appends an entry and registers its lower-cased name.
func (d *Document) add(e *Entry) {
	idx := len(d.Entries)
	d.Entries = append(d.Entries, e)
	if e.Name != "" {
		d.byName[strings.ToLower(e.Name)] = idx
	}
}

// parseHeaderElement parses a <resheader> element already opened.
func parseHeaderElement(dec *xml.Decoder, elem xml.StartElement) (Header, error) {
	h := Header{Name: attrValue(elem, "name")}
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return h, fmt.Errorf("reading <resheader name=%q>: %w", h.Name, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "value" && depth == 1 {
				v, err := readText(dec)
				if err != nil {
					return h, fmt.Errorf("reading <resheader name=%q>: %w", h.Name, err)
				}
				h.Value = v
			} else {
				depth++
			}
		case xml.EndElement:
			depth--
		}
	}
	return h, nil
}

// parseDataElement parses a <data> element already opened.
func parseDataElement(dec *xml.Decoder, elem xml.StartElement) (*Entry, error) {
	e := &Entry{Name: attrValue(elem, "name")}
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("reading <data name=%q>: %w", e.Name, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch {
			case t.Name.Local == "value" && depth == 1:
				v, err := readText(dec)
				if err != nil {
					return nil, fmt.Errorf("reading <data name=%q>: %w", e.Name, err)
				}
				e.Value = v
			case t.Name.Local == "comment" && depth == 1:
				v, err := readText(dec)
				if err != nil {
					return nil, fmt.Errorf("reading <data name=%q>: %w", e.Name, err)
				}
				e.Comment = v
			default:
				depth++
			}
		case xml.EndElement:
			depth--
		}
	}
	return e, nil
}

// readText reads the character data of an element until its close tag.
func readText(dec *xml.Decoder) (string, error) {
	var b strings.Builder
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.CharData:
			b.Write(t)
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		}
	}
	return b.String(), nil
}

// attrValue returns the value of the named attribute, or "".
func attrValue(elem xml.StartElement, name string) string {
	for _, attr := range elem.Attr {
		if attr.Name.Local == name {
			return attr.Value
		}
	}
	return ""
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

// Get returns the value for a key. Lookup is case-insensitive.
func (d *Document) Get(name string) (string, bool) {
	idx, ok := d.byName[strings.ToLower(name)]
	if !ok {
		return "", false
	}
	return d.Entries[idx].Value, true
}

// GetEntry returns the entry for a key (case-insensitive), or nil.
func (d *Document) GetEntry(name string) *Entry {
	idx, ok := d.byName[strings.ToLower(name)]
	if !ok {
		return nil
	}
	return d.Entries[idx]
}

// Has reports whether a key exists (case-insensitive).
func (d *Document) Has(name string) bool {
	_, ok := d.byName[strings.ToLower(name)]
	return ok
}

// Keys returns all entry names in document order.
func (d *Document) Keys() []string {
	keys := make([]string, 0, len(d.Entries))
	for _, e := range d.Entries {
		keys = append(keys, e.Name)
	}
	return keys
}

// Values returns a name → value mapping of all entries.
func (d *Document) Values() map[string]string {
	m := make(map[string]string, len(d.Entries))
	for _, e := range d.Entries {
		m[e.Name] = e.Value
	}
	return m
}

// Add appends a new entry. It returns false without modifying the document
// when an entry with the same name already exists (case-insensitive) —
// existing values are never overwritten.
func (d *Document) Add(name, value, comment string) bool {
	if d.Has(name) {
		return false
	}
	d.add(&Entry{Name: name, Value: value, Comment: comment})
	return true
}

// ---------------------------------------------------------------------------
// Writing
// ---------------------------------------------------------------------------

// Marshal produces the XML output in .resx format.
func (d *Document) Marshal() []byte {
	var b strings.Builder
	b.WriteString("<?xml version=\"1.0\" encoding=\"utf-8\"?>\n")
	b.WriteString("<root>\n")

	for _, h := range d.Headers {
		b.WriteString(fmt.Sprintf("    <resheader name=\"%s\">\n", xmlEscapeAttr(h.Name)))
		b.WriteString(fmt.Sprintf("        <value>%s</value>\n", xmlEscape(h.Value)))
		b.WriteString("    </resheader>\n")
	}

	for _, e := range d.Entries {
		b.WriteString(fmt.Sprintf("    <data name=\"%s\" xml:space=\"preserve\">\n", xmlEscapeAttr(e.Name)))
		b.WriteString(fmt.Sprintf("        <value>%s</value>\n", xmlEscape(e.Value)))
		if e.Comment != "" {
			b.WriteString(fmt.Sprintf("        <comment>%s</comment>\n", xmlEscape(e.Comment)))
		}
		b.WriteString("    </data>\n")
	}

	b.WriteString("</root>\n")
	return []byte(b.String())
}

// xmlEscape escapes special XML characters in text content.
func xmlEscape(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

// xmlEscapeAttr escapes special XML characters in a double-quoted
// attribute value. Parsed names are not identifier-gated, so anything a
// parser accepted must survive the round trip verbatim.
func xmlEscapeAttr(s string) string {
	s = xmlEscape(s)
	return strings.ReplaceAll(s, `"`, "&quot;")
}
