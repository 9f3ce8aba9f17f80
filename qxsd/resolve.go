package qxsd

import (
	"github.com/skycoder42/qxmlcodegen/internal/ordered"
	"github.com/skycoder42/qxmlcodegen/qxschema"
)

// resolveAll is the second pass invariant 1 requires: type references are
// recorded as bare names during the build walk and never eagerly
// resolved (forward references to a simpleType or complexType declared
// later in the same document are legal), so every type_key is checked
// against the finished Schema only once the whole tree is known. It also
// fills in MemberDef.HostType for attributes whose type is a named
// simpleType rather than an XSD builtin.
//
// Iteration is always in sorted-key order (via internal/ordered) so that,
// per testable property 6, two builds of byte-identical input produce
// byte-identical diagnostics ordering as well as byte-identical output.
func (b *builder) resolveAll() {
	names := make([]string, 0, len(b.schema.Records))
	for name := range b.schema.Records {
		names = append(names, name)
	}
	ordered.RangeMap(stringSet(names), func(name string) {
		switch rec := b.schema.Records[name].(type) {
		case SimpleTypeDef:
			b.checkScalarRef(rec.ContentXMLType)
		case ComplexTypeDef:
			if rec.BaseType != "" {
				b.checkRecordRef(rec.BaseType)
			}
			b.checkAttrs(rec.Attrs)
			b.checkAttrGroups(rec.AttrGroups)
			b.checkContent(rec.Content)
		case MixedTypeDef:
			b.checkAttrs(rec.Attrs)
			b.checkAttrGroups(rec.AttrGroups)
			b.checkContent(rec.Content)
		case GroupTypeDef:
			b.checkContent(rec.Content)
		case AttrGroupTypeDef:
			b.checkAttrs(rec.Attrs)
			b.checkAttrGroups(rec.AttrGroups)
		}
	})

	for name, rec := range b.schema.Records {
		b.schema.Records[name] = resolveMemberHostTypes(b.schema, rec)
	}

	for i := range b.schema.RootElements {
		b.checkLeaf(b.schema.RootElements[i])
	}
}

// stringSet adapts a plain []string to ordered.Map so ordered.RangeMap's
// sort-then-iterate guarantee applies without a second allocation of a
// map[string]struct{}.
type stringSet []string

func (s stringSet) Keys() []string { return s }

func (b *builder) checkAttrs(attrs []MemberDef) {
	for _, a := range attrs {
		b.checkScalarRef(a.XMLType)
	}
}

func (b *builder) checkAttrGroups(groups []AttrGroupRef) {
	for _, g := range groups {
		rec, ok := b.schema.Records[g.TypeKey]
		if !ok {
			stop(ErrTypeResolution, "undefined attribute group %q", g.TypeKey)
		}
		if _, ok := rec.(AttrGroupTypeDef); !ok {
			stop(ErrTypeResolution, "%q is not an attribute group", g.TypeKey)
		}
	}
}

// checkScalarRef validates an attribute or simpleContent type_key: it
// must be an XSD builtin or a top-level BasicType (never a record).
func (b *builder) checkScalarRef(typeKey string) {
	if typeKey == "" {
		return
	}
	if isBuiltinScalar(typeKey) {
		return
	}
	if _, ok := b.schema.BasicTypes[typeKey]; ok {
		return
	}
	stop(ErrTypeResolution, "undefined simple type %q", typeKey)
}

// checkRecordRef validates a complexContent base type_key: it must
// resolve to some record kind.
func (b *builder) checkRecordRef(typeKey string) {
	if _, ok := b.schema.Records[typeKey]; !ok {
		stop(ErrTypeResolution, "undefined base type %q", typeKey)
	}
}

func (b *builder) checkContent(cd ContentDef) {
	if cd == nil {
		return
	}
	switch v := cd.(type) {
	case Sequence:
		for _, slot := range v.Slots {
			b.checkContent(slot.Body)
		}
	case Choice:
		for _, alt := range v.Alts {
			b.checkLeaf(alt)
		}
	case All:
		for _, slot := range v.Slots {
			b.checkLeaf(slot.Element)
		}
	case TypeContent:
		b.checkLeaf(v)
	}
}

func (b *builder) checkLeaf(tc TypeContent) {
	if tc.IsGroup {
		rec, ok := b.schema.Records[tc.TypeKey]
		if !ok {
			stop(ErrTypeResolution, "undefined group %q", tc.TypeKey)
		}
		if _, ok := rec.(GroupTypeDef); !ok {
			stop(ErrTypeResolution, "%q is not a group", tc.TypeKey)
		}
		return
	}
	if tc.IsBasicType {
		b.checkScalarRef(tc.TypeKey)
		return
	}
	if _, ok := b.schema.Records[tc.TypeKey]; !ok {
		stop(ErrTypeResolution, "undefined type %q", tc.TypeKey)
	}
}

func isBuiltinScalar(typeKey string) bool {
	return qxschema.IsBuiltin(typeKey)
}

// resolveMemberHostTypes fills MemberDef.HostType for attribute fields
// whose declared type is a named BasicType (an Alias/List/Union/Enum
// rather than an XSD builtin) once the whole schema is known — the
// generated field type is always that BasicType's own declared Go name.
func resolveMemberHostTypes(schema *Schema, rec RecordDef) RecordDef {
	fix := func(attrs []MemberDef) []MemberDef {
		out := make([]MemberDef, len(attrs))
		for i, a := range attrs {
			if a.HostType == "" {
				if _, ok := schema.BasicTypes[a.XMLType]; ok {
					a.HostType = titleCase(a.XMLType)
				}
			}
			out[i] = a
		}
		return out
	}
	switch r := rec.(type) {
	case ComplexTypeDef:
		r.Attrs = fix(r.Attrs)
		return r
	case MixedTypeDef:
		r.Attrs = fix(r.Attrs)
		return r
	case AttrGroupTypeDef:
		r.Attrs = fix(r.Attrs)
		return r
	case SimpleTypeDef:
		r.Attrs = fix(r.Attrs)
		return r
	default:
		return rec
	}
}
