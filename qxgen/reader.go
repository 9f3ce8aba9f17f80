package qxgen

import (
	"fmt"
	"go/ast"
	"strings"

	"github.com/skycoder42/qxmlcodegen/internal/gen"
	"github.com/skycoder42/qxmlcodegen/qxschema"
	"github.com/skycoder42/qxmlcodegen/qxsd"
)

// readerEmitter is component G: for every record that owns a Go type (see
// declEmitter's Declare/inline rules), it emits the reader function that
// populates one from an open qxrt.Reader.
type readerEmitter struct {
	schema *qxsd.Schema
}

// EmitReader builds the source file's *ast.File: one reader function per
// attribute group, per declared group, and per Simple/Complex/MixedType
// record. Non-declared groups have no function of their own — their
// content-driving statements are inlined directly into every caller, the
// same way declEmitter inlines their fields.
func EmitReader(schema *qxsd.Schema) (*ast.File, error) {
	e := &readerEmitter{schema: schema}
	var decls []ast.Decl

	for _, name := range orderedRecordNames(schema) {
		rec := schema.Records[name]
		var d ast.Decl
		var err error
		switch r := rec.(type) {
		case qxsd.AttrGroupTypeDef:
			d, err = e.attrGroupReaderDecl(r)
		case qxsd.GroupTypeDef:
			if !r.Declare {
				continue
			}
			d, err = e.groupReaderDecl(r)
		case qxsd.ComplexTypeDef:
			d, err = e.complexReaderDecl(r)
		case qxsd.MixedTypeDef:
			d, err = e.mixedReaderDecl(r)
		case qxsd.SimpleTypeDef:
			d, err = e.simpleReaderDecl(r)
		default:
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("qxgen: record %s: %w", name, err)
		}
		decls = append(decls, d)
	}

	return &ast.File{Name: ast.NewIdent(schema.Config.ClassName), Decls: decls}, nil
}

func attrGroupReaderFuncName(typeKey string) string {
	return "read" + gen.Sanitize(exportedName(typeKey)) + "Attrs"
}

// attrStatements emits the attribute-reading block for attrs/groups against
// outExpr's current element (an attribute group's fields are always read
// off whichever element hosts the reference, never a child of their own).
func (e *readerEmitter) attrStatements(outExpr string, attrs []qxsd.MemberDef, groups []qxsd.AttrGroupRef) (string, error) {
	var b strings.Builder
	for _, a := range attrs {
		field := outExpr + "." + fieldName(a.Member)
		stmt, err := e.attrReadStmt(a, field)
		if err != nil {
			return "", err
		}
		b.WriteString(stmt)
	}
	for _, g := range groups {
		rec, ok := e.schema.Records[g.TypeKey]
		if !ok {
			return "", fmt.Errorf("undefined attribute group %q", g.TypeKey)
		}
		agRec, ok := rec.(qxsd.AttrGroupTypeDef)
		if !ok {
			return "", fmt.Errorf("%q is not an attribute group", g.TypeKey)
		}
		if g.Inherit {
			nested, err := e.attrStatements(outExpr, agRec.Attrs, agRec.AttrGroups)
			if err != nil {
				return "", err
			}
			b.WriteString(nested)
		} else {
			fmt.Fprintf(&b, "if err := %s(sr, &%s.%s); err != nil {\n\treturn err\n}\n",
				attrGroupReaderFuncName(g.TypeKey), outExpr, fieldName(g.Member))
		}
	}
	return b.String(), nil
}

// attrReadStmt emits the read for one attribute. A builtin-typed attribute
// goes straight through qxrt's generic Read*Attrib helpers, which bottom
// out in qxrt.ConvertData. A named-BasicType attribute (Alias/List/Union/
// Enum) can't: ConvertData only matches exact builtin scalar types, so an
// enum attribute would fall through its default case. Those get the raw
// string off sr.Attr() and run it through the same conversion an element
// of that type gets from readNamedBasicType/convertBasicTypeStmt.
func (e *readerEmitter) attrReadStmt(a qxsd.MemberDef, field string) (string, error) {
	if _, ok := qxschema.BuiltinGoType(a.XMLType); ok {
		typ := a.HostType
		if typ == "" {
			typ = "string"
		}
		switch {
		case a.Required:
			return fmt.Sprintf("if v, err := qxrt.ReadRequiredAttrib[%s](sr, %q); err != nil {\n\treturn err\n} else {\n\t%s = v\n}\n",
				typ, a.XMLName, field), nil
		case a.Default != nil:
			return fmt.Sprintf("if v, err := qxrt.ReadOptionalAttribDefault[%s](sr, %q, %q); err != nil {\n\treturn err\n} else {\n\t%s = v\n}\n",
				typ, a.XMLName, *a.Default, field), nil
		default:
			return fmt.Sprintf("if v, ok, err := qxrt.ReadOptionalAttrib[%s](sr, %q); err != nil {\n\treturn err\n} else if ok {\n\t%s = &v\n}\n",
				typ, a.XMLName, field), nil
		}
	}

	bt, ok := lookupBasicType(e.schema, a.XMLType)
	if !ok {
		return "", fmt.Errorf("undefined basic type %q", a.XMLType)
	}

	switch {
	case a.Required:
		convert, err := convertBasicTypeStmt("v", "vRaw", a.XMLType, bt, plainErrReturn)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("{\n\tvRaw, ok := sr.Attr(%q)\n\tif !ok {\n\t\treturn qxrt.ThrowMissingAttribute(sr, %q)\n\t}\n%s\t%s = v\n}\n",
			a.XMLName, a.XMLName, indent(convert, 1), field), nil
	case a.Default != nil:
		convert, err := convertBasicTypeStmt("v", "vRaw", a.XMLType, bt, plainErrReturn)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("{\n\tvRaw, ok := sr.Attr(%q)\n\tif !ok {\n\t\tvRaw = %q\n\t}\n%s\t%s = v\n}\n",
			a.XMLName, *a.Default, indent(convert, 1), field), nil
	default:
		convert, err := convertBasicTypeStmt("v", "vRaw", a.XMLType, bt, plainErrReturn)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("if vRaw, ok := sr.Attr(%q); ok {\n%s\t%s = &v\n}\n",
			a.XMLName, indent(convert, 1), field), nil
	}
}

func (e *readerEmitter) attrGroupReaderDecl(r qxsd.AttrGroupTypeDef) (ast.Decl, error) {
	typ := goTypeName(r.Name, false)
	body, err := e.attrStatements("out", r.Attrs, r.AttrGroups)
	if err != nil {
		return nil, err
	}
	return gen.Func(attrGroupReaderFuncName(r.Name)).
		Comment(fmt.Sprintf("%s reads the %s attribute group's fields off sr's current start element.", attrGroupReaderFuncName(r.Name), r.Name)).
		Args("sr qxrt.Reader", "out *"+typ).
		Returns("error").
		Body(body + "return nil").
		Decl()
}

// complexReaderDecl emits read_<T> for a ComplexTypeDef: attributes, an
// optional base-type delegation (keepOpen=true, since the base reads off
// the same still-open start element), then structured content.
func (e *readerEmitter) complexReaderDecl(r qxsd.ComplexTypeDef) (ast.Decl, error) {
	typ := goTypeName(r.Name, false)
	var b strings.Builder

	attrBody, err := e.attrStatements("out", r.Attrs, r.AttrGroups)
	if err != nil {
		return nil, err
	}
	b.WriteString(attrBody)

	hasBase := r.BaseType != ""
	if hasBase {
		fmt.Fprintf(&b, "if err := %s(sr, &out.%s, true); err != nil {\n\treturn err\n}\n",
			readerFuncName(r.BaseType), goTypeName(r.BaseType, false))
	}

	contentBody, err := e.contentStatements(typ, "out", r.Content, hasBase, "keepOpen")
	if err != nil {
		return nil, err
	}
	b.WriteString(contentBody)

	return gen.Func(readerFuncName(r.Name)).
		Comment(fmt.Sprintf("%s reads a %s element into out.", readerFuncName(r.Name), r.Name)).
		Args("sr qxrt.Reader", "out *"+typ, "keepOpen bool").
		Returns("error").
		Body(b.String()).
		Decl()
}

// groupReaderDecl emits read_<T> for a qxg:declare'd GroupTypeDef: the
// has-next handshake signature, since a group never owns its own start
// element — it consumes a prefix of whatever element is already open.
func (e *readerEmitter) groupReaderDecl(r qxsd.GroupTypeDef) (ast.Decl, error) {
	typ := goTypeName(r.Name, false)
	body, err := e.contentStatements(typ, "out", r.Content, false, "false")
	if err != nil {
		return nil, err
	}
	return gen.Func(readerFuncName(r.Name)).
		Comment(fmt.Sprintf("%s reads the %s group's elements from sr, which must already be positioned on the first candidate child.", readerFuncName(r.Name), r.Name)).
		Args("sr qxrt.Reader", "out *"+typ).
		Returns("error").
		Body(body).
		Decl()
}

func (e *readerEmitter) mixedReaderDecl(r qxsd.MixedTypeDef) (ast.Decl, error) {
	typ := goTypeName(r.Name, false)
	var b strings.Builder

	attrBody, err := e.attrStatements("out", r.Attrs, r.AttrGroups)
	if err != nil {
		return nil, err
	}
	b.WriteString(attrBody)

	// MixedType content is either pure text or structured children:
	// character data is accumulated until the first element token. An end
	// element makes the accumulated text the content; a start element
	// switches to structured children and the accumulated text is dropped.
	fmt.Fprintf(&b, `var text strings.Builder
for {
	tok, err := sr.NextToken()
	if err != nil {
		return err
	}
	switch tok.Kind {
	case qxrt.TokenCharData:
		text.WriteString(tok.Text)
	case qxrt.TokenEndElement:
`)
	if r.ContentMember != "" {
		fmt.Fprintf(&b, "\t\tv, err := qxrt.ConvertData[%s](text.String())\n\t\tif err != nil {\n\t\t\treturn qxrt.ThrowInvalidSimple(sr, text.String(), err)\n\t\t}\n\t\tout.%s = v\n",
			r.ContentHostType, fieldName(r.ContentMember))
	}
	b.WriteString(`		return nil
	case qxrt.TokenStartElement:
`)
	if r.Content != nil {
		// sr is already positioned on this start element (NextToken just
		// reported it), so the content driver starts with ok=true instead
		// of probing for it again the way contentStatements normally does.
		drive, err := e.driveContent(typ, "out", r.Content)
		if err != nil {
			return nil, err
		}
		childBody := fmt.Sprintf("ok := true\nvar err error\n%sif ok {\n\treturn qxrt.ThrowChild(sr, sr.LocalName())\n}\n", drive)
		b.WriteString(indent(childBody, 2))
		b.WriteString("\t\treturn nil\n")
	} else {
		b.WriteString("\t\treturn qxrt.ThrowChild(sr, tok.Name)\n")
	}
	b.WriteString("\t}\n}\n")

	return gen.Func(readerFuncName(r.Name)).
		Comment(fmt.Sprintf("%s reads a %s element, which may hold plain text or structured children.", readerFuncName(r.Name), r.Name)).
		Args("sr qxrt.Reader", "out *"+typ, "keepOpen bool").
		Returns("error").
		Body(b.String()).
		Decl()
}

func (e *readerEmitter) simpleReaderDecl(r qxsd.SimpleTypeDef) (ast.Decl, error) {
	typ := goTypeName(r.Name, false)
	var b strings.Builder

	attrBody, err := e.attrStatements("out", r.Attrs, r.AttrGroups)
	if err != nil {
		return nil, err
	}
	b.WriteString(attrBody)

	if r.ContentMember != "" {
		fmt.Fprintf(&b, "v, err := qxrt.ReadContent[%s](sr)\nif err != nil {\n\treturn err\n}\nout.%s = v\n",
			r.ContentHostType, fieldName(r.ContentMember))
	} else {
		b.WriteString("if _, err := sr.ElementText(); err != nil {\n\treturn err\n}\n")
	}
	b.WriteString("return nil\n")

	return gen.Func(readerFuncName(r.Name)).
		Comment(fmt.Sprintf("%s reads a %s element's attributes and scalar text content.", readerFuncName(r.Name), r.Name)).
		Args("sr qxrt.Reader", "out *"+typ, "keepOpen bool").
		Returns("error").
		Body(b.String()).
		Decl()
}

func indent(s string, levels int) string {
	prefix := strings.Repeat("\t", levels)
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		if l == "" {
			continue
		}
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n") + "\n"
}
