package qxsd

import (
	"github.com/skycoder42/qxmlcodegen/internal/xmltree"
	"github.com/skycoder42/qxmlcodegen/qxschema"
)

// readType implements §4.D's read_type: choose a record variant by
// child, then extract name/attributes/content for it.
func (b *builder) readType(node *xmltree.Element) RecordDef {
	name, _ := node.AttrLocal("name")
	declare := qxschema.AnnotationBool(node, "declare", false)
	mixed := qxschema.AnnotationBool(node, "mixed", false)

	if sc := findChild(node, b.ns, "simpleContent"); sc != nil {
		ext := findChild(sc, b.ns, "extension")
		if ext == nil {
			stop(ErrSchemaShape, "xs:simpleContent must contain xs:extension")
		}
		base, _ := ext.AttrLocal("base")
		base = localName(base)
		attrs, groups := b.readAttribs(ext)
		member := qxschema.Annotation(ext, "member", "Content", false)
		host := base
		if h, ok := qxschema.BuiltinGoType(base); ok {
			host = h
		}
		return SimpleTypeDef{
			recordBase:      recordBase{Name: name, Attrs: attrs, AttrGroups: groups, Declare: declare},
			ContentXMLType:  base,
			ContentHostType: host,
			ContentMember:   member,
		}
	}

	if cc := findChild(node, b.ns, "complexContent"); cc != nil {
		ext := findChild(cc, b.ns, "extension")
		if ext == nil {
			stop(ErrSchemaShape, "xs:complexContent must contain xs:extension")
		}
		base, _ := ext.AttrLocal("base")
		base = localName(base)
		ccMixed := mixed || qxschema.AnnotationBool(cc, "mixed", false)
		if ccMixed && base != "" {
			stop(ErrSchemaShape, "a mixed type may not extend a base type (xs:complexContent/xs:extension base=%q)", base)
		}
		attrs, groups := b.readAttribs(ext)
		content := b.readSingleContent(ext)
		if ccMixed {
			return MixedTypeDef{
				recordBase:      recordBase{Name: name, Attrs: attrs, AttrGroups: groups, Declare: declare},
				Content:         content,
				ContentHostType: "string",
				ContentMember:   "Content",
			}
		}
		return ComplexTypeDef{
			recordBase: recordBase{Name: name, Attrs: attrs, AttrGroups: groups, Declare: declare},
			BaseType:   base,
			Content:    content,
		}
	}

	attrs, groups := b.readAttribs(node)
	content := b.readSingleContent(node)
	if mixed {
		return MixedTypeDef{
			recordBase:      recordBase{Name: name, Attrs: attrs, AttrGroups: groups, Declare: declare},
			Content:         content,
			ContentHostType: "string",
			ContentMember:   "Content",
		}
	}
	return ComplexTypeDef{
		recordBase: recordBase{Name: name, Attrs: attrs, AttrGroups: groups, Declare: declare},
		Content:    content,
	}
}

// readGroup implements §4.D's read_group: a record whose body is a
// ContentDef, invoked in-line by its callers via the has-next handshake.
func (b *builder) readGroup(node *xmltree.Element) GroupTypeDef {
	name, _ := node.AttrLocal("name")
	if name == "" {
		stop(ErrSchemaShape, "xs:group missing name")
	}
	return GroupTypeDef{
		recordBase: recordBase{Name: name, Declare: qxschema.AnnotationBool(node, "declare", false)},
		Content:    b.readSingleContent(node),
	}
}

// readAttrGroup implements §4.D's read_attr_group.
func (b *builder) readAttrGroup(node *xmltree.Element) AttrGroupTypeDef {
	name, _ := node.AttrLocal("name")
	if name == "" {
		stop(ErrSchemaShape, "xs:attributeGroup missing name")
	}
	attrs, groups := b.readAttribs(node)
	return AttrGroupTypeDef{
		recordBase: recordBase{Name: name, Attrs: attrs, AttrGroups: groups, Declare: qxschema.AnnotationBool(node, "declare", false)},
	}
}
