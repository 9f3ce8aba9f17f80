// Package qxschema reads a single XSD node's worth of information out of
// the annotation namespace — the namespace rewriter and annotation reader
// that sit underneath the schema-model builder. Nothing here builds or
// validates the IR; qxsd owns that. This package only knows how to turn a
// qualified name into its canonical prefixed spelling and how to read one
// annotation attribute, defaulting and built-in-type-mapping included.
package qxschema

import "github.com/skycoder42/qxmlcodegen/internal/xmltree"

// AnnotationNS is the fixed URI carrying generator directives
// ("qxg:member", "qxg:config", ...).
const AnnotationNS = "https://skycoder42.de/xml/schemas/QXmlCodeGen"

// xsdNamespaces lists every URI variant of the W3C XML Schema namespace
// this generator accepts on its input document: the 2001 and 2009
// revisions, in both http and https form.
var xsdNamespaces = []string{
	"http://www.w3.org/2001/XMLSchema",
	"https://www.w3.org/2001/XMLSchema",
	"http://www.w3.org/2009/XMLSchema",
	"https://www.w3.org/2009/XMLSchema",
}

// IsXSDNamespace reports whether uri is one of the accepted XSD schema
// namespace URI variants.
func IsXSDNamespace(uri string) bool {
	for _, ns := range xsdNamespaces {
		if ns == uri {
			return true
		}
	}
	return false
}

// IsAnnotationNamespace reports whether uri is the fixed annotation
// namespace.
func IsAnnotationNamespace(uri string) bool {
	return uri == AnnotationNS
}

// Canonicalize replaces a node's namespace URI with its short prefixed
// form ("xs:" for any accepted XSD namespace variant, "qxg:" for the
// annotation namespace); any other namespace passes through as a bare
// local name, since the generator never interprets third-party
// namespaces.
func Canonicalize(space, local string) string {
	switch {
	case IsXSDNamespace(space):
		return "xs:" + local
	case IsAnnotationNamespace(space):
		return "qxg:" + local
	default:
		return local
	}
}

// AnnotationAttr looks up an annotation attribute on el by its expanded
// {AnnotationNS}local name — the inverse of Canonicalize, resolving
// whatever prefix the input document happens to bind to the annotation
// namespace. This is distinct from the §9 design note restricting
// *generated reader* element-name comparisons to local names only: that
// note is about runtime document content, not about reading the fixed,
// well-known annotation namespace at generation time.
func AnnotationAttr(el *xmltree.Element, local string) (string, bool) {
	v := el.Attr(AnnotationNS, local)
	if v == "" {
		// distinguish "absent" from "present but empty"
		for _, a := range el.StartElement.Attr {
			if a.Name.Space == AnnotationNS && a.Name.Local == local {
				return "", true
			}
		}
		return "", false
	}
	return v, true
}
