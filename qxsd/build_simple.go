package qxsd

import (
	"strconv"
	"strings"

	"github.com/skycoder42/qxmlcodegen/internal/xmltree"
	"github.com/skycoder42/qxmlcodegen/qxschema"
)

// readSimpleType implements §4.D's read_simple_type: a top-level
// xs:simpleType is a List (xs:list), a Union (xs:union), or a Restriction
// — which is either an Enum (an xs:enumeration facet is present) or, with
// no enumeration facets, a plain Alias of its base.
func (b *builder) readSimpleType(node *xmltree.Element) BasicType {
	name, _ := node.AttrLocal("name")

	if list := findChild(node, b.ns, "list"); list != nil {
		itemType, _ := list.AttrLocal("itemType")
		itemType = localName(itemType)
		if itemType == "" {
			if inline := findChild(list, b.ns, "simpleType"); inline != nil {
				itemType = "string"
				_ = inline
			}
		}
		elemHost := "string"
		if h, ok := qxschema.BuiltinGoType(itemType); ok {
			elemHost = h
		}
		return ListType{basicTypeBase: basicTypeBase{Name: name}, Elem: elemHost}
	}

	if union := findChild(node, b.ns, "union"); union != nil {
		memberTypes, _ := union.AttrLocal("memberTypes")
		var elems []string
		for _, mt := range strings.Fields(memberTypes) {
			local := localName(mt)
			host := "string"
			if h, ok := qxschema.BuiltinGoType(local); ok {
				host = h
			}
			elems = append(elems, host)
		}
		return UnionType{basicTypeBase: basicTypeBase{Name: name}, Elems: elems}
	}

	if restr := findChild(node, b.ns, "restriction"); restr != nil {
		base, _ := restr.AttrLocal("base")
		base = localName(base)

		var values []EnumValue
		rangeXSDChildren(restr, b.ns, "enumeration", func(e *xmltree.Element) {
			xmlValue, _ := e.AttrLocal("value")
			key := qxschema.Annotation(e, "key", titleCase(xmlValue), false)
			var val *int
			if v, ok := qxschema.AnnotationAttr(e, "value"); ok {
				if n, err := strconv.Atoi(v); err == nil {
					val = &n
				}
			}
			values = append(values, EnumValue{XMLValue: xmlValue, Key: key, Value: val})
		})
		if len(values) > 0 {
			return EnumType{basicTypeBase: basicTypeBase{Name: name}, Base: base, Values: values}
		}

		host := "string"
		if h, ok := qxschema.BuiltinGoType(base); ok {
			host = h
		}
		return AliasType{basicTypeBase: basicTypeBase{Name: name}, Scalar: host}
	}

	stop(ErrSchemaShape, "xs:simpleType %q has no list/union/restriction", name)
	return nil
}
