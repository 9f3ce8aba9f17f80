// Package xmltree parses an XML document into an in-memory tree while
// preserving the prefix-to-namespace bindings visible at each node. It is
// the substrate the namespace rewriter and schema-model builder are built
// on: both need to resolve a qualified name ("qxg:member") against the
// bindings in scope at the node that carries it, not just at the document
// root.
package xmltree

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
)

// recursionLimit caps how deeply nested a document's elements may be
// before Parse gives up. XSD documents produced by schema compilers can
// nest deeply (inline complex types inside complex types); this is far
// above anything seen in practice.
const recursionLimit = 3000

var errTooDeep = fmt.Errorf("xmltree: exceeded max recursion depth (%d)", recursionLimit)

// Scope captures the xmlns/xmlns:prefix bindings visible at a node, as a
// stack: later entries shadow earlier ones with the same prefix.
type Scope struct {
	ns []xml.Name
}

// Element is one node of a parsed XML document: its start tag, the
// namespace scope active at that point in the document, any character
// data collected directly under it (with child elements elided), and its
// direct children.
type Element struct {
	xml.StartElement
	Scope
	Content  []byte
	Children []Element
}

// Attr returns the value of the attribute with the given namespace URI
// and local name, or "" if absent.
func (e *Element) Attr(space, local string) string {
	for _, a := range e.StartElement.Attr {
		if a.Name.Local == local && (space == "" || a.Name.Space == space) {
			return a.Value
		}
	}
	return ""
}

// AttrLocal returns the value of the first attribute whose local name
// matches, regardless of namespace. The schema-model builder uses this to
// read plain XSD attributes such as name, type and minOccurs.
func (e *Element) AttrLocal(local string) (string, bool) {
	for _, a := range e.StartElement.Attr {
		if a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}

// JoinScope returns a new Scope that extends parent with the namespace
// bindings declared directly on start.
func JoinScope(parent Scope, start xml.StartElement) Scope {
	s := Scope{ns: append([]xml.Name(nil), parent.ns...)}
	s.pushNS(start)
	return s
}

func (s *Scope) pushNS(start xml.StartElement) {
	for _, a := range start.Attr {
		switch {
		case a.Name.Space == "xmlns":
			s.ns = append(s.ns, xml.Name{Space: a.Value, Local: a.Name.Local})
		case a.Name.Space == "" && a.Name.Local == "xmlns":
			s.ns = append(s.ns, xml.Name{Space: a.Value, Local: ""})
		}
	}
}

// Resolve looks up a QName string of the form "prefix:local" or "local"
// against the scope, returning the fully-expanded xml.Name. An unprefixed
// name resolves against the default namespace.
func (s Scope) Resolve(qname string) xml.Name {
	prefix, local := splitQName(qname)
	for i := len(s.ns) - 1; i >= 0; i-- {
		if s.ns[i].Local == prefix {
			return xml.Name{Space: s.ns[i].Space, Local: local}
		}
	}
	return xml.Name{Local: local}
}

// ResolveDefault is like Resolve, but treats an unprefixed name as bound
// to defaultNS rather than whatever "xmlns" (no prefix) is in scope. This
// mirrors the XSD rule that unqualified type/element references inside a
// schema document resolve against the schema's own target namespace, not
// the document's default namespace.
func (s Scope) ResolveDefault(qname, defaultNS string) xml.Name {
	prefix, local := splitQName(qname)
	if prefix == "" {
		return xml.Name{Space: defaultNS, Local: local}
	}
	return s.Resolve(qname)
}

// Prefix returns name spelled with the innermost (most recently declared)
// prefix bound to its namespace, or just the local name if name's
// namespace has no prefixed binding in scope.
func (s Scope) Prefix(name xml.Name) string {
	if name.Space == "" {
		return name.Local
	}
	for i := len(s.ns) - 1; i >= 0; i-- {
		if s.ns[i].Space == name.Space && s.ns[i].Local != "" {
			return s.ns[i].Local + ":" + name.Local
		}
	}
	return name.Local
}

func splitQName(qname string) (prefix, local string) {
	if i := indexByte(qname, ':'); i >= 0 {
		return qname[:i], qname[i+1:]
	}
	return "", qname
}

func indexByte(s string, b byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return i
		}
	}
	return -1
}

// Parse reads a complete XML document from r and returns its root
// Element.
func Parse(r io.Reader) (*Element, error) {
	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		if start, ok := tok.(xml.StartElement); ok {
			root := &Element{
				StartElement: start.Copy(),
				Scope:        JoinScope(Scope{}, start),
			}
			if err := parseChildren(dec, root, 0); err != nil {
				return nil, err
			}
			return root, nil
		}
	}
}

func parseChildren(dec *xml.Decoder, el *Element, depth int) error {
	if depth > recursionLimit {
		return errTooDeep
	}
	var text bytes.Buffer
	for {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			child := Element{
				StartElement: t.Copy(),
				Scope:        JoinScope(el.Scope, t),
			}
			if err := parseChildren(dec, &child, depth+1); err != nil {
				return err
			}
			el.Children = append(el.Children, child)
		case xml.EndElement:
			el.Content = text.Bytes()
			return nil
		case xml.CharData:
			text.Write(t)
		}
	}
}

// SearchFunc returns every descendant of the root (root included) for
// which pred returns true, in document order.
func (e *Element) SearchFunc(pred func(*Element) bool) []*Element {
	var out []*Element
	e.walk(func(el *Element) {
		if pred(el) {
			out = append(out, el)
		}
	})
	return out
}

// Search returns every descendant element with the given fully-qualified
// name, root included.
func (e *Element) Search(name xml.Name) []*Element {
	return e.SearchFunc(func(el *Element) bool { return el.Name == name })
}

func (e *Element) walk(fn func(*Element)) {
	fn(e)
	for i := range e.Children {
		e.Children[i].walk(fn)
	}
}

// Flatten returns every element in the subtree rooted at e, including e,
// in document order.
func (e *Element) Flatten() []*Element {
	return e.SearchFunc(func(*Element) bool { return true })
}
