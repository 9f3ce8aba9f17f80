package qxsd

import (
	"github.com/skycoder42/qxmlcodegen/internal/xmltree"
	"github.com/skycoder42/qxmlcodegen/qxschema"
)

// readSingleContent implements §4.D's read_single_content: probe for
// sequence/choice/all/element/group, in that priority order, and let
// whichever is found dictate the parser. A bare element or group found
// directly (no enclosing sequence/choice/all) with a non-(1,1)
// occurrence is wrapped in a synthetic one-slot Sequence; qxg:inherit
// combined with that wrapping is rejected (invariant 5's "excludes
// occurrence-induced list wrapping").
func (b *builder) readSingleContent(node *xmltree.Element) ContentDef {
	child, kind := findAnyChild(node, b.ns, "sequence", "choice", "all", "element", "group")
	if child == nil {
		// A record with no structured content at all (e.g. an
		// attribute-only complexType) — callers store a nil Content.
		return nil
	}
	switch kind {
	case "sequence":
		return b.readSequenceContent(child)
	case "choice":
		return b.readChoiceContent(child, nil)
	case "all":
		return b.readAllContent(child)
	case "element", "group":
		leaf := b.readTypeContent(child, kind == "group")
		min, max := occurs(child)
		if isOptionalRequired(min, max) {
			return leaf
		}
		if leaf.Inherit {
			stop(ErrSchemaShape, "qxg:inherit is not permitted on an occurrence-wrapped %s", kind)
		}
		return Sequence{Slots: []SequenceSlot{{Min: min, Max: max, Body: leaf}}}
	}
	return nil
}

// readSequenceContent implements read_sequence_content: recursive descent
// over xs:sequence's children, enforcing invariants 2 and 6 inline.
func (b *builder) readSequenceContent(node *xmltree.Element) Sequence {
	var seq Sequence
	for i := range node.Children {
		c := &node.Children[i]
		if c.Name.Space != b.ns {
			continue
		}
		switch c.Name.Local {
		case "sequence":
			min, max := occurs(c)
			if !isOptionalRequired(min, max) {
				stop(ErrSchemaShape, "a sequence may not directly contain another sequence with non-(1,1) occurrence; wrap it in a group")
			}
			nested := b.readSequenceContent(c)
			seq.Slots = append(seq.Slots, SequenceSlot{Min: 1, Max: 1, Body: nested})
		case "choice":
			min, max := occurs(c)
			ch := b.readChoiceContent(c, &choiceContext{min: min, max: max})
			seq.Slots = append(seq.Slots, SequenceSlot{Min: min, Max: max, Body: ch})
		case "element":
			min, max := occurs(c)
			leaf := b.readTypeContent(c, false)
			seq.Slots = append(seq.Slots, SequenceSlot{Min: min, Max: max, Body: leaf})
		case "group":
			min, max := occurs(c)
			if min != max {
				stop(ErrSchemaShape, "a group reference inside a sequence must have a fixed occurrence (minOccurs == maxOccurs)")
			}
			leaf := b.readTypeContent(c, true)
			seq.Slots = append(seq.Slots, SequenceSlot{Min: min, Max: max, Body: leaf})
		case "any":
			// xs:any wildcards carry no generator-relevant shape; skip.
		}
	}
	return seq
}

// choiceContext threads the enclosing Sequence slot's occurrence bounds
// into readChoiceContent, since invariant 4 ties "unordered" validity to
// the Choice being a Sequence slot, and the bounds themselves are stored
// on that slot, not on Choice.
type choiceContext struct{ min, max int }

// readChoiceContent implements read_choice_content, enforcing invariant 4
// (no nested Sequence/All; unordered only as a Sequence slot; non-
// unordered requires an explicit member) inline.
func (b *builder) readChoiceContent(node *xmltree.Element, ctx *choiceContext) Choice {
	var ch Choice
	ch.Unordered = qxschema.AnnotationBool(node, "unordered", false)
	if ch.Unordered && ctx == nil {
		stop(ErrSchemaShape, "qxg:unordered is only valid when the choice is the element of an enclosing sequence slot")
	}
	if member, ok := qxschema.AnnotationAttr(node, "member"); ok {
		ch.Member = member
	} else if !ch.Unordered {
		stop(ErrSchemaShape, "a non-unordered xs:choice must carry qxg:member")
	}
	for i := range node.Children {
		c := &node.Children[i]
		if c.Name.Space != b.ns {
			continue
		}
		switch c.Name.Local {
		case "sequence", "all":
			stop(ErrSchemaShape, "a choice may not directly contain a sequence or all")
		case "element":
			ch.Alts = append(ch.Alts, b.readTypeContent(c, false))
		case "group":
			ch.Alts = append(ch.Alts, b.readTypeContent(c, true))
		case "choice":
			stop(ErrSchemaShape, "nested xs:choice is not supported; factor it into a group")
		}
	}
	if !ch.Unordered {
		for i, alt := range ch.Alts {
			if alt.Member == "" && len(ch.Alts) > 1 {
				stop(ErrSchemaShape, "alternative %q of a non-unordered choice must carry its own qxg:member or be the choice's sole alternative", ch.Alts[i].Name)
			}
		}
	}
	return ch
}

// readAllContent implements read_all_content, enforcing invariant 3
// (occurrences restricted to (0,1)/(1,1); no nested sequence/all) inline.
func (b *builder) readAllContent(node *xmltree.Element) All {
	var all All
	for i := range node.Children {
		c := &node.Children[i]
		if c.Name.Space != b.ns {
			continue
		}
		switch c.Name.Local {
		case "element":
			min, max := occurs(c)
			if !((min == 0 || min == 1) && max == 1) {
				stop(ErrSchemaShape, "xs:all elements must have occurrence (0,1) or (1,1)")
			}
			all.Slots = append(all.Slots, AllSlot{Optional: min == 0, Element: b.readTypeContent(c, false)})
		case "sequence", "all":
			stop(ErrSchemaShape, "xs:all may not contain a nested sequence or all")
		}
	}
	return all
}

// readTypeContent implements read_type_content: extract name, member,
// type_key, and is_basic_type, and attach any qxg:method override.
func (b *builder) readTypeContent(node *xmltree.Element, isGroup bool) TypeContent {
	var tc TypeContent
	tc.IsGroup = isGroup

	refAttr := "ref"
	if !isGroup {
		// xs:element may be named inline or via ref=; both spellings
		// share the same annotation surface.
		if ref, ok := node.AttrLocal(refAttr); ok {
			tc.Name = localName(ref)
		} else if name, ok := node.AttrLocal("name"); ok {
			tc.Name = name
		}
	} else {
		ref, _ := node.AttrLocal(refAttr)
		tc.Name = localName(ref)
	}
	if tc.Name == "" {
		stop(ErrSchemaShape, "element or group reference missing name/ref")
	}

	tc.Member = qxschema.Annotation(node, "member", lowerFirst(tc.Name), false)
	tc.Inherit = qxschema.AnnotationBool(node, "inherit", false)

	if isGroup {
		tc.TypeKey = tc.Name
	} else if typ, ok := node.AttrLocal("type"); ok {
		tc.TypeKey = localName(typ)
	} else if inline := findChild(node, b.ns, "complexType"); inline != nil {
		rec := b.readType(inline)
		synthetic := titleCaseName(tc.Name) + "Type"
		recNamed := withName(rec, synthetic)
		b.register(synthetic, recNamed)
		tc.TypeKey = synthetic
	} else if inline := findChild(node, b.ns, "simpleType"); inline != nil {
		bt := b.readSimpleType(inline)
		synthetic := titleCaseName(tc.Name) + "Type"
		btNamed := withBasicName(bt, synthetic)
		b.registerBasic(synthetic, btNamed)
		tc.TypeKey = synthetic
	} else {
		tc.TypeKey = "string"
	}

	tc.IsBasicType = qxschema.AnnotationBool(node, "basicType", qxschema.IsBuiltin(tc.TypeKey))

	if methodName, ok := qxschema.AnnotationAttr(node, "method"); ok {
		m, ok := b.schema.Methods[methodName]
		if !ok {
			stop(ErrTypeResolution, "qxg:method refers to undeclared method %q", methodName)
		}
		tc.Method = &m
	}

	return tc
}

func titleCaseName(s string) string { return titleCase(s) }

func withName(rec RecordDef, name string) RecordDef {
	switch r := rec.(type) {
	case ComplexTypeDef:
		r.Name = name
		return r
	case MixedTypeDef:
		r.Name = name
		return r
	case SimpleTypeDef:
		r.Name = name
		return r
	default:
		return rec
	}
}

func withBasicName(bt BasicType, name string) BasicType {
	switch t := bt.(type) {
	case AliasType:
		t.Name = name
		return t
	case ListType:
		t.Name = name
		return t
	case UnionType:
		t.Name = name
		return t
	case EnumType:
		t.Name = name
		return t
	default:
		return bt
	}
}

// readAttribs implements §4.D's read_attribs: produce the member list and
// attribute-group reference list from a record node's xs:attribute and
// xs:attributeGroup children.
func (b *builder) readAttribs(node *xmltree.Element) ([]MemberDef, []AttrGroupRef) {
	var members []MemberDef
	var groups []AttrGroupRef

	for i := range node.Children {
		c := &node.Children[i]
		if c.Name.Space != b.ns {
			continue
		}
		switch c.Name.Local {
		case "attribute":
			members = append(members, b.readAttribute(c))
		case "attributeGroup":
			groups = append(groups, b.readAttrGroupRef(c))
		}
	}
	return members, groups
}

func (b *builder) readAttribute(node *xmltree.Element) MemberDef {
	name, _ := node.AttrLocal("name")
	if name == "" {
		if ref, ok := node.AttrLocal("ref"); ok {
			name = localName(ref)
		}
	}
	if name == "" {
		stop(ErrSchemaShape, "xs:attribute missing name")
	}
	typ, _ := node.AttrLocal("type")
	if typ == "" {
		typ = "string"
	} else {
		typ = localName(typ)
	}
	m := MemberDef{
		XMLName: name,
		Member:  qxschema.Annotation(node, "member", titleCase(name), false),
		XMLType: typ,
	}
	required := false
	if use, ok := node.AttrLocal("use"); ok {
		required = use == "required"
	}
	m.Required = required
	if def, ok := node.AttrLocal("default"); ok {
		d := def
		m.Default = &d
	}
	if host, ok := qxschema.BuiltinGoType(typ); ok {
		m.HostType = host
	}
	return m
}

func (b *builder) readAttrGroupRef(node *xmltree.Element) AttrGroupRef {
	ref, _ := node.AttrLocal("ref")
	ref = localName(ref)
	if ref == "" {
		stop(ErrSchemaShape, "xs:attributeGroup missing ref")
	}
	r := AttrGroupRef{TypeKey: ref}
	r.Inherit = qxschema.AnnotationBool(node, "inherit", false)
	if !r.Inherit {
		r.Member = qxschema.Annotation(node, "member", titleCase(ref), false)
	} else if _, ok := qxschema.AnnotationAttr(node, "member"); ok {
		stop(ErrSchemaShape, "an attribute-group reference may not set both qxg:inherit and qxg:member")
	}
	return r
}
