package qxschema

import "github.com/skycoder42/qxmlcodegen/internal/xmltree"

// Annotation reads the qxg:-prefixed attribute attr from node. If absent,
// it returns def — or, when mapType is true, the host scalar type def
// maps to via the built-in table (an empty def maps to the empty
// string). This is the sole entry point the schema-model builder uses to
// read any annotation attribute, so defaulting and built-in mapping never
// have to be reimplemented at each call site.
func Annotation(node *xmltree.Element, attr, def string, mapType bool) string {
	if v, ok := AnnotationAttr(node, attr); ok {
		return v
	}
	if mapType {
		if def == "" {
			return ""
		}
		if goType, ok := BuiltinGoType(localName(def)); ok {
			return goType
		}
	}
	return def
}

// AnnotationBool reads a boolean-valued annotation attribute, defaulting
// to def when absent or unparsable (annotation attributes are never
// schema-shape fatal on a malformed boolean; the builder treats the
// default as authoritative).
func AnnotationBool(node *xmltree.Element, attr string, def bool) bool {
	v, ok := AnnotationAttr(node, attr)
	if !ok {
		return def
	}
	switch v {
	case "true", "1":
		return true
	case "false", "0":
		return false
	default:
		return def
	}
}

// localName strips a leading "xs:"/"qxg:"/arbitrary prefix off a QName
// string, since the builtin table is keyed by local name alone.
func localName(qname string) string {
	for i := 0; i < len(qname); i++ {
		if qname[i] == ':' {
			return qname[i+1:]
		}
	}
	return qname
}
