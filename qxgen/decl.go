package qxgen

import (
	"fmt"
	"go/ast"
	"go/token"

	"github.com/skycoder42/qxmlcodegen/internal/dependency"
	"github.com/skycoder42/qxmlcodegen/internal/gen"
	"github.com/skycoder42/qxmlcodegen/internal/ordered"
	"github.com/skycoder42/qxmlcodegen/qxsd"
)

// declEmitter is component F: it walks a built Schema and produces every
// type declaration plus the public read_document API. Nothing here reads
// from the wire; all reading lives in the sibling reader emitter
// (reader.go/content.go).
type declEmitter struct {
	schema *qxsd.Schema
	extra  []ast.Decl // synthesized variant/wrapper types, appended after the records that need them
}

// EmitDecl builds the header file's *ast.File: basic-type declarations,
// record structs (in the teacher's "flatten to a dependency-respecting
// order" style via internal/dependency; a group gets a struct only when
// qxg:declare is set), the Root type, and the public ReadDocument API.
func EmitDecl(schema *qxsd.Schema) (*ast.File, error) {
	e := &declEmitter{schema: schema}

	var decls []ast.Decl

	basicNames := schemaBasicTypeNames(schema)
	for _, name := range basicNames {
		d, err := e.basicTypeDecl(name, schema.BasicTypes[name])
		if err != nil {
			return nil, err
		}
		decls = append(decls, d)
	}

	recordNames := orderedRecordNames(schema)
	for _, name := range recordNames {
		rec := schema.Records[name]
		if grp, ok := rec.(qxsd.GroupTypeDef); ok && !grp.Declare {
			// A group's fields are ordinarily spliced directly into
			// whichever record references it; qxg:declare overrides this
			// and gives it a standalone Go type instead (handled below,
			// alongside every other record kind).
			continue
		}
		d, err := e.recordDecl(rec)
		if err != nil {
			return nil, err
		}
		decls = append(decls, d)
	}
	decls = append(decls, e.extra...)

	apiDecls, err := e.publicAPIDecls()
	if err != nil {
		return nil, err
	}
	decls = append(decls, apiDecls...)

	file := &ast.File{
		Name:  ast.NewIdent(schema.Config.ClassName),
		Decls: decls,
	}
	gen.PackageDoc(file, fmt.Sprintf(
		"Package %s is a generated reader for an XML document, produced\n"+
			"by qxmlcodegen. Do not edit by hand.", schema.Config.ClassName))
	return file, nil
}

// schemaBasicTypeNames returns every top-level BasicType name in
// deterministic (sorted) order, per testable property 6.
func schemaBasicTypeNames(schema *qxsd.Schema) []string {
	names := make([]string, 0, len(schema.BasicTypes))
	ordered.RangeStrings(schema.BasicTypes, func(n string) {
		names = append(names, n)
	})
	return names
}

// orderedRecordNames flattens the record dependency graph (a record
// depends on its base type and on every attribute group it references;
// element, group and choice references in its content are not edges) via
// internal/dependency so forward Go type references never occur in the
// emitted declaration order, then falls back to a sorted order for any
// names the flattener didn't need to reorder (determinism, property 6).
func orderedRecordNames(schema *qxsd.Schema) []string {
	names := make([]string, 0, len(schema.Records))
	ordered.RangeStrings(schema.Records, func(n string) {
		names = append(names, n)
	})

	g := new(dependency.Graph)
	for _, n := range names {
		for _, dep := range recordDeps(schema, schema.Records[n]) {
			if _, ok := schema.Records[dep]; ok {
				g.Add(n, dep)
			}
		}
	}

	var out []string
	seen := make(map[string]bool, len(names))
	g.Flatten(func(n string) {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	})
	// Records with no dependency edges never enter the graph's target set;
	// append them afterward in the same deterministic order.
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}

// recordDeps lists the record names a record's declaration directly
// depends on (so those declarations must precede it in a linear file,
// matching Go's lack of forward-reference restrictions for structs --
// this ordering exists for readability, not correctness, since Go allows
// out-of-order type references within a package).
func recordDeps(schema *qxsd.Schema, rec qxsd.RecordDef) []string {
	var deps []string
	switch r := rec.(type) {
	case qxsd.ComplexTypeDef:
		if r.BaseType != "" {
			deps = append(deps, r.BaseType)
		}
		deps = append(deps, attrGroupDeps(r.AttrGroups)...)
	case qxsd.MixedTypeDef:
		deps = append(deps, attrGroupDeps(r.AttrGroups)...)
	case qxsd.SimpleTypeDef:
		deps = append(deps, attrGroupDeps(r.AttrGroups)...)
	case qxsd.AttrGroupTypeDef:
		deps = append(deps, attrGroupDeps(r.AttrGroups)...)
	}
	return deps
}

func attrGroupDeps(groups []qxsd.AttrGroupRef) []string {
	var deps []string
	for _, g := range groups {
		deps = append(deps, g.TypeKey)
	}
	return deps
}

func (e *declEmitter) basicTypeDecl(name string, bt qxsd.BasicType) (ast.Decl, error) {
	goName := gen.Sanitize(exportedName(name))
	switch t := bt.(type) {
	case qxsd.AliasType:
		return gen.TypeDecl(ast.NewIdent(goName), ast.NewIdent(t.Scalar)), nil
	case qxsd.ListType:
		return gen.TypeDecl(ast.NewIdent(goName), &ast.ArrayType{Elt: ast.NewIdent(t.Elem)}), nil
	case qxsd.UnionType:
		fields, err := gen.FieldList(unionFieldStrings(t)...)
		if err != nil {
			return nil, err
		}
		return gen.TypeDecl(ast.NewIdent(goName), &ast.StructType{Fields: fields}), nil
	case qxsd.EnumType:
		return e.enumDecl(goName, t)
	default:
		return nil, fmt.Errorf("qxgen: unknown basic type kind for %q", name)
	}
}

func unionFieldStrings(t qxsd.UnionType) []string {
	out := make([]string, len(t.Elems))
	for i, elem := range t.Elems {
		out[i] = fmt.Sprintf("Item%d %s", i, elem)
	}
	return out
}

func (e *declEmitter) enumDecl(goName string, t qxsd.EnumType) (ast.Decl, error) {
	typeDecl := gen.TypeDecl(ast.NewIdent(goName), ast.NewIdent("int"))
	constSpecs := make([]ast.Spec, 0, len(t.Values))
	for i, v := range t.Values {
		val := i
		if v.Value != nil {
			val = *v.Value
		}
		constSpecs = append(constSpecs, &ast.ValueSpec{
			Names:  []*ast.Ident{ast.NewIdent(goName + gen.Sanitize(exportedName(v.Key)))},
			Type:   ast.NewIdent(goName),
			Values: []ast.Expr{&ast.BasicLit{Kind: token.INT, Value: fmt.Sprintf("%d", val)}},
		})
	}
	constDecl := &ast.GenDecl{Tok: token.CONST, Lparen: 1, Specs: constSpecs}
	// A GenDecl can't mix a type spec and value specs; emit the type now
	// and stash its constants as a second decl, emitted after the records.
	e.stashEnumConsts(constDecl)
	return typeDecl, nil
}

// stashEnumConsts defers emitting the const block alongside its type decl
// (GenDecl can't hold both a type spec and value specs at once) by
// appending it to e.extra, which EmitDecl flushes once, after all records.
func (e *declEmitter) stashEnumConsts(d *ast.GenDecl) {
	e.extra = append(e.extra, d)
}

func (e *declEmitter) recordDecl(rec qxsd.RecordDef) (ast.Decl, error) {
	goName := gen.Sanitize(exportedName(rec.RecordName()))
	fields, err := e.structFieldStrings(goName, rec)
	if err != nil {
		return nil, err
	}
	fieldList, err := gen.FieldList(fields...)
	if err != nil {
		return nil, fmt.Errorf("qxgen: record %s: %w", goName, err)
	}
	return gen.TypeDecl(ast.NewIdent(goName), &ast.StructType{Fields: fieldList}), nil
}

// structFieldStrings produces the full "Name Type" field list for rec:
// an embedded base type (for an extension), flattened inherited
// attribute-group fields, attribute fields, a single field per
// non-inherited attribute group, content fields, then the text-content
// member field.
func (e *declEmitter) structFieldStrings(ownerName string, rec qxsd.RecordDef) ([]string, error) {
	var fields []string

	// An extension's base type becomes an anonymous embedded field, so
	// the derived struct promotes every base attribute/content field
	// directly — the Go idiom for "extends" this generator reaches for.
	if ct, ok := rec.(qxsd.ComplexTypeDef); ok && ct.BaseType != "" {
		fields = append(fields, goTypeName(ct.BaseType, false))
	}

	attrs, groups, content, contentHost, contentMember := recordShape(rec)

	flatAttrs, err := e.flattenAttrGroups(groups)
	if err != nil {
		return nil, err
	}
	fields = append(fields, memberFieldStrings(flatAttrs)...)
	fields = append(fields, memberFieldStrings(attrs)...)

	for _, g := range groups {
		if g.Inherit {
			continue
		}
		fields = append(fields, fmt.Sprintf("%s %s", fieldName(g.Member), goTypeName(g.TypeKey, false)))
	}

	if content != nil {
		cfields, err := e.contentFieldStrings(ownerName, content)
		if err != nil {
			return nil, err
		}
		fields = append(fields, cfields...)
	}
	if contentMember != "" {
		opt := ""
		if _, isMixed := rec.(qxsd.MixedTypeDef); isMixed {
			opt = "*"
		}
		fields = append(fields, fmt.Sprintf("%s %s%s", fieldName(contentMember), opt, contentHost))
	}

	return fields, nil
}

// recordShape extracts the attribute/content shape common to every
// struct-bearing record kind, since Go has no sum-type-over-struct-
// embedding to dispatch this with directly.
func recordShape(rec qxsd.RecordDef) (attrs []qxsd.MemberDef, groups []qxsd.AttrGroupRef, content qxsd.ContentDef, contentHost, contentMember string) {
	switch r := rec.(type) {
	case qxsd.ComplexTypeDef:
		return r.Attrs, r.AttrGroups, r.Content, "", ""
	case qxsd.MixedTypeDef:
		return r.Attrs, r.AttrGroups, r.Content, r.ContentHostType, r.ContentMember
	case qxsd.SimpleTypeDef:
		return r.Attrs, r.AttrGroups, nil, r.ContentHostType, r.ContentMember
	case qxsd.AttrGroupTypeDef:
		return r.Attrs, r.AttrGroups, nil, "", ""
	case qxsd.GroupTypeDef:
		return r.Attrs, r.AttrGroups, r.Content, "", ""
	default:
		return nil, nil, nil, "", ""
	}
}

func memberFieldStrings(attrs []qxsd.MemberDef) []string {
	out := make([]string, 0, len(attrs))
	for _, a := range attrs {
		typ := a.HostType
		if typ == "" {
			typ = "string"
		}
		if !a.Required && a.Default == nil {
			typ = "*" + typ
		}
		out = append(out, fmt.Sprintf("%s %s", fieldName(a.Member), typ))
	}
	return out
}

// flattenAttrGroups recursively expands every qxg:inherit attribute-
// group reference into its own flattened attribute list; non-inherited
// refs are handled by the caller as a single nested-struct field instead.
func (e *declEmitter) flattenAttrGroups(groups []qxsd.AttrGroupRef) ([]qxsd.MemberDef, error) {
	var out []qxsd.MemberDef
	for _, g := range groups {
		if !g.Inherit {
			continue
		}
		rec, ok := e.schema.Records[g.TypeKey]
		if !ok {
			return nil, fmt.Errorf("qxgen: undefined attribute group %q", g.TypeKey)
		}
		agRec, ok := rec.(qxsd.AttrGroupTypeDef)
		if !ok {
			return nil, fmt.Errorf("qxgen: %q is not an attribute group", g.TypeKey)
		}
		out = append(out, agRec.Attrs...)
		nested, err := e.flattenAttrGroups(agRec.AttrGroups)
		if err != nil {
			return nil, err
		}
		out = append(out, nested...)
	}
	return out, nil
}

// contentFieldStrings derives the field list for a record's structured
// element content per §4.F's "write_hdr_content" table.
func (e *declEmitter) contentFieldStrings(ownerName string, cd qxsd.ContentDef) ([]string, error) {
	switch v := cd.(type) {
	case qxsd.Sequence:
		var fields []string
		for _, slot := range v.Slots {
			f, err := e.sequenceSlotFields(ownerName, slot)
			if err != nil {
				return nil, err
			}
			fields = append(fields, f...)
		}
		return fields, nil
	case qxsd.Choice:
		f, err := e.choiceFields(ownerName, v, 1, 1)
		return f, err
	case qxsd.All:
		var fields []string
		for _, slot := range v.Slots {
			typ := goTypeName(slot.Element.TypeKey, slot.Element.IsBasicType)
			if slot.Optional {
				typ = "*" + typ
			}
			fields = append(fields, fmt.Sprintf("%s %s", fieldName(slot.Element.Member), typ))
		}
		return fields, nil
	case qxsd.TypeContent:
		return e.leafFields(ownerName, v, 1, 1)
	default:
		return nil, nil
	}
}

func (e *declEmitter) sequenceSlotFields(ownerName string, slot qxsd.SequenceSlot) ([]string, error) {
	switch body := slot.Body.(type) {
	case qxsd.Sequence:
		// A (1,1) nested sequence (the only shape invariant 2 permits) is
		// purely organizational; its slots flatten straight into the
		// parent's field list.
		var fields []string
		for _, s := range body.Slots {
			f, err := e.sequenceSlotFields(ownerName, s)
			if err != nil {
				return nil, err
			}
			fields = append(fields, f...)
		}
		return fields, nil
	case qxsd.Choice:
		return e.choiceFields(ownerName, body, slot.Min, slot.Max)
	case qxsd.TypeContent:
		return e.leafFields(ownerName, body, slot.Min, slot.Max)
	default:
		return nil, nil
	}
}

func (e *declEmitter) leafFields(ownerName string, leaf qxsd.TypeContent, min, max int) ([]string, error) {
	if leaf.IsGroup {
		rec, ok := e.schema.Records[leaf.TypeKey]
		if !ok {
			return nil, fmt.Errorf("qxgen: undefined group %q", leaf.TypeKey)
		}
		grp, ok := rec.(qxsd.GroupTypeDef)
		if !ok {
			return nil, fmt.Errorf("qxgen: %q is not a group", leaf.TypeKey)
		}

		// qxg:declare overrides the default inlining behavior: the group
		// gets its own named Go type (emitted by EmitDecl's record loop),
		// referenced here the same way any other record-typed leaf is.
		if grp.Declare {
			typ := goTypeName(leaf.TypeKey, false)
			switch {
			case min == 1 && max == 1:
				return []string{fmt.Sprintf("%s %s", fieldName(leaf.Member), typ)}, nil
			case min == 0 && max == 1:
				return []string{fmt.Sprintf("%s *%s", fieldName(leaf.Member), typ)}, nil
			default:
				return []string{fmt.Sprintf("%s []%s", fieldName(leaf.Member), typ)}, nil
			}
		}

		if min == 1 && max == 1 {
			if grp.Content == nil {
				return nil, nil
			}
			return e.contentFieldStrings(ownerName, grp.Content)
		}
		// A repeated, non-declared group reference gets a synthetic
		// per-iteration wrapper type, since Go has no anonymous
		// repeated-struct-field shorthand.
		itemName := ownerName + fieldName(leaf.Member) + "Item"
		itemFields, err := e.contentFieldStrings(itemName, grp.Content)
		if err != nil {
			return nil, err
		}
		itemFieldList, err := gen.FieldList(itemFields...)
		if err != nil {
			return nil, err
		}
		e.extra = append(e.extra, gen.TypeDecl(ast.NewIdent(itemName), &ast.StructType{Fields: itemFieldList}))
		return []string{fmt.Sprintf("%s []%s", fieldName(leaf.Member), itemName)}, nil
	}

	typ := goTypeName(leaf.TypeKey, leaf.IsBasicType)
	switch {
	case min == 1 && max == 1:
		return []string{fmt.Sprintf("%s %s", fieldName(leaf.Member), typ)}, nil
	case min == 0 && max == 1:
		return []string{fmt.Sprintf("%s *%s", fieldName(leaf.Member), typ)}, nil
	default:
		return []string{fmt.Sprintf("%s []%s", fieldName(leaf.Member), typ)}, nil
	}
}

// choiceFields derives the field(s) for a Choice, unordered or not. An
// unordered choice flattens to one slice field per alternative (§4.F);
// a non-unordered choice gets a single tagged-variant field backed by a
// synthesized wrapper struct of nilable alternative pointers.
func (e *declEmitter) choiceFields(ownerName string, ch qxsd.Choice, min, max int) ([]string, error) {
	if ch.Unordered {
		var fields []string
		for _, alt := range ch.Alts {
			typ := goTypeName(alt.TypeKey, alt.IsBasicType)
			fields = append(fields, fmt.Sprintf("%s []%s", fieldName(alt.Member), typ))
		}
		return fields, nil
	}

	variantName := ownerName + fieldName(ch.Member) + "Choice"
	var altFields []string
	for _, alt := range ch.Alts {
		typ := goTypeName(alt.TypeKey, alt.IsBasicType)
		altFields = append(altFields, fmt.Sprintf("%s *%s", fieldName(alt.Member), typ))
	}
	altFieldList, err := gen.FieldList(altFields...)
	if err != nil {
		return nil, err
	}
	e.extra = append(e.extra, gen.TypeDecl(ast.NewIdent(variantName), &ast.StructType{Fields: altFieldList}))

	switch {
	case min == 1 && max == 1:
		return []string{fmt.Sprintf("%s %s", fieldName(ch.Member), variantName)}, nil
	case min == 0 && max == 1:
		return []string{fmt.Sprintf("%s *%s", fieldName(ch.Member), variantName)}, nil
	default:
		return []string{fmt.Sprintf("%s []%s", fieldName(ch.Member), variantName)}, nil
	}
}

// publicAPIDecls emits ReadDocument(io.Reader) and ReadDocumentFile(path)
// over the schema's root element(s), synthesizing a Root variant struct
// when there is more than one.
func (e *declEmitter) publicAPIDecls() ([]ast.Decl, error) {
	var decls []ast.Decl

	rootType := rootTypeName(e.schema)
	if len(e.schema.RootElements) > 1 {
		var altFields []string
		for _, root := range e.schema.RootElements {
			typ := goTypeName(root.TypeKey, root.IsBasicType)
			altFields = append(altFields, fmt.Sprintf("%s *%s", fieldName(root.Member), typ))
		}
		fieldList, err := gen.FieldList(altFields...)
		if err != nil {
			return nil, err
		}
		decls = append(decls, gen.TypeDecl(ast.NewIdent("Root"), &ast.StructType{Fields: fieldList}))
	}

	coreBody, err := e.readDocumentCoreBody(rootType)
	if err != nil {
		return nil, err
	}
	coreDecl, err := gen.Func("readDocumentFrom").
		Comment("readDocumentFrom drives the root element read over an already-open Reader; ReadDocument and ReadDocumentFile both funnel through it.").
		Args("sr qxrt.Reader").
		Returns(rootType, "error").
		Body(coreBody).
		Decl()
	if err != nil {
		return nil, err
	}
	decls = append(decls, coreDecl)

	readDecl, err := gen.Func("ReadDocument").
		Comment("ReadDocument reads a complete document from r into a new " + rootType + ".").
		Args("r io.Reader").
		Returns(rootType, "error").
		Body(`return readDocumentFrom(qxrt.NewStreamReader(r, ""))`).
		Decl()
	if err != nil {
		return nil, err
	}
	decls = append(decls, readDecl)

	fileDecl, err := gen.Func("ReadDocumentFile").
		Comment("ReadDocumentFile opens path and reads a complete document from it.").
		Args("path string").
		Returns(rootType, "error").
		Body(`reader, closer, err := qxrt.Open(path)
if err != nil {
	var zero %s
	return zero, err
}
defer closer.Close()
return readDocumentFrom(reader)`, rootType).
		Decl()
	if err != nil {
		return nil, err
	}
	decls = append(decls, fileDecl)

	return decls, nil
}

func (e *declEmitter) readDocumentCoreBody(rootType string) (string, error) {
	if len(e.schema.RootElements) != 1 {
		return e.multiRootDocumentCoreBody(rootType)
	}
	root := e.schema.RootElements[0]
	leafStmt, err := readLeafValueStmt(e.schema, "data", root, zeroErrReturn(rootType))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`if ok, err := sr.NextStartElement(); err != nil {
	var zero %s
	return zero, err
} else if !ok {
	var zero %s
	return zero, qxrt.ThrowNoChild(sr, %q)
}
%sreturn data, qxrt.CheckError(sr)`, rootType, rootType, root.Name, leafStmt), nil
}

func (e *declEmitter) multiRootDocumentCoreBody(rootType string) (string, error) {
	var buf string
	buf += `var data Root
if ok, err := sr.NextStartElement(); err != nil {
	var zero Root
	return zero, err
} else if !ok {
	var zero Root
	return zero, qxrt.ThrowNoChild(sr)
}
switch sr.LocalName() {
`
	for _, root := range e.schema.RootElements {
		leafStmt, err := readLeafValueStmt(e.schema, "v", root, zeroErrReturn("Root"))
		if err != nil {
			return "", err
		}
		buf += fmt.Sprintf(`case %q:
	%sdata.%s = &v
`, root.Name, leafStmt, fieldName(root.Member))
	}
	buf += `default:
	var zero Root
	return zero, qxrt.ThrowChild(sr, sr.LocalName())
}
return data, qxrt.CheckError(sr)`
	return buf, nil
}
