package qxgen

import (
	"fmt"
	"strings"

	"github.com/skycoder42/qxmlcodegen/internal/gen"
	"github.com/skycoder42/qxmlcodegen/qxschema"
	"github.com/skycoder42/qxmlcodegen/qxsd"
)

// contentStatements emits a complete content-reading block for a
// Complex/Mixed/declared-Group record: establish the first child (by
// probing NextStartElement, or for a ComplexType extension's derived
// half, by seeding from IsStartElement since the base reader already
// advanced through its own content), drive cd, then fail on any child
// the grammar didn't account for unless keepOpenExpr says the caller
// will keep consuming. ownerName is the record's own Go type name, used
// only to reconstruct the synthetic Choice-variant/repeated-group-item
// type names decl.go derives from "<Owner><Member>..." -- it never
// appears in a runtime expression, that's outExpr's job. keepOpenExpr is
// the Go boolean expression gating the trailing unexpected-child check
// -- the generated "keepOpen" parameter for a Complex/Mixed reader, or
// the literal "false" for a group reader, which never has one.
func (e *readerEmitter) contentStatements(ownerName, outExpr string, cd qxsd.ContentDef, hasBase bool, keepOpenExpr string) (string, error) {
	drive, err := e.driveContent(ownerName, outExpr, cd)
	if err != nil {
		return "", err
	}
	seed := "ok, err := sr.NextStartElement()\nif err != nil {\n\treturn err\n}\n"
	if hasBase {
		// The base reader was called with keepOpen=true: it consumed only
		// its own declared content and left sr positioned on the first
		// element the derived type must still account for, if any.
		// Probing again here would skip that element.
		seed = "ok := sr.IsStartElement()\n"
		if strings.Contains(drive, "err") {
			seed += "var err error\n"
		}
	}
	cond := "ok"
	if keepOpenExpr != "false" {
		cond = fmt.Sprintf("ok && !%s", keepOpenExpr)
	}
	return fmt.Sprintf(`%s%sif %s {
	return qxrt.ThrowChild(sr, sr.LocalName())
}
return nil
`, seed, drive, cond), nil
}

// driveContent generates the body driving one ContentDef, assuming `ok`
// and `err` are already in scope and `ok` reports whether sr currently
// sits on a start element eligible to satisfy this content.
func (e *readerEmitter) driveContent(ownerName, outExpr string, cd qxsd.ContentDef) (string, error) {
	if cd == nil {
		return "", nil
	}
	switch v := cd.(type) {
	case qxsd.Sequence:
		return e.driveSequence(ownerName, outExpr, v)
	case qxsd.Choice:
		return e.driveChoice(ownerName, outExpr, v, 1, 1)
	case qxsd.All:
		return e.driveAll(ownerName, outExpr, v)
	case qxsd.TypeContent:
		return e.driveLeaf(ownerName, outExpr, v, 1, 1)
	default:
		return "", nil
	}
}

func (e *readerEmitter) driveSequence(ownerName, outExpr string, seq qxsd.Sequence) (string, error) {
	var b strings.Builder
	for _, slot := range seq.Slots {
		stmt, err := e.driveSequenceSlot(ownerName, outExpr, slot)
		if err != nil {
			return "", err
		}
		b.WriteString(stmt)
	}
	return b.String(), nil
}

func (e *readerEmitter) driveSequenceSlot(ownerName, outExpr string, slot qxsd.SequenceSlot) (string, error) {
	switch body := slot.Body.(type) {
	case qxsd.Sequence:
		// invariant 2: only legal unnested at (1,1) -- splice its slots
		// into the same cursor directly.
		return e.driveSequence(ownerName, outExpr, body)
	case qxsd.Choice:
		return e.driveChoice(ownerName, outExpr, body, slot.Min, slot.Max)
	case qxsd.TypeContent:
		return e.driveLeaf(ownerName, outExpr, body, slot.Min, slot.Max)
	default:
		return "", nil
	}
}

// driveLeaf emits the read for one element or group reference at
// occurrence (min, max). A group leaf splices its own content directly
// into the same cursor unless qxg:declare gave it its own reader.
func (e *readerEmitter) driveLeaf(ownerName, outExpr string, leaf qxsd.TypeContent, min, max int) (string, error) {
	if leaf.IsGroup {
		rec, ok := e.schema.Records[leaf.TypeKey]
		if !ok {
			return "", fmt.Errorf("undefined group %q", leaf.TypeKey)
		}
		grp, ok := rec.(qxsd.GroupTypeDef)
		if !ok {
			return "", fmt.Errorf("%q is not a group", leaf.TypeKey)
		}
		if grp.Declare {
			return e.driveDeclaredGroup(outExpr, leaf, min, max)
		}
		if min == 1 && max == 1 {
			return e.driveContent(ownerName, outExpr, grp.Content)
		}
		return e.driveRepeatedInlineGroup(ownerName, outExpr, leaf, grp, min, max)
	}

	readStmt, err := readLeafValueStmt(e.schema, "v", leaf, plainErrReturn)
	if err != nil {
		return "", err
	}
	field := outExpr + "." + fieldName(leaf.Member)
	assignOne := fmt.Sprintf("%s\n%s = v\n", readStmt, field)
	assignAppend := fmt.Sprintf("%s\n%s = append(%s, v)\n", readStmt, field, field)
	assignPtr := fmt.Sprintf("%s\n%s = &v\n", readStmt, field)

	switch {
	case min == 1 && max == 1:
		// Wrapped in its own block so each mandatory leaf's "v"/"err" locals
		// don't collide with a sibling leaf's declarations at the same
		// sequence-statement scope.
		return fmt.Sprintf(`if !ok {
	return qxrt.ThrowNoChild(sr, %q)
}
if sr.LocalName() != %q {
	return qxrt.ThrowChild(sr, sr.LocalName(), %q)
}
{
%s}
ok, err = sr.NextStartElement()
if err != nil {
	return err
}
`, leaf.Name, leaf.Name, leaf.Name, indent(assignOne, 1)), nil
	case min == 0 && max == 1:
		return fmt.Sprintf(`if ok && sr.LocalName() == %q {
%sok, err = sr.NextStartElement()
if err != nil {
	return err
}
}
`, leaf.Name, indent(assignPtr, 1)), nil
	default:
		loopCond := fmt.Sprintf("ok && sr.LocalName() == %q", leaf.Name)
		if max >= 0 {
			loopCond = fmt.Sprintf("%s && len(%s) < %d", loopCond, field, max)
		}
		sizeCheck := ""
		if min > 0 {
			sizeCheck = fmt.Sprintf(`if len(%s) < %d {
	return qxrt.ThrowSizeError(sr, %q, %d, len(%s), false)
}
`, field, min, leaf.Name, min, field)
		}
		return fmt.Sprintf(`for %s {
%sok, err = sr.NextStartElement()
if err != nil {
	return err
}
}
%s`, loopCond, indent(assignAppend, 1), sizeCheck), nil
	}
}

// driveDeclaredGroup calls a qxg:declare'd group's own reader, which owns
// the has-next handshake: it reports whether it consumed at least one
// child, so the caller's cursor (ok) is refreshed by re-probing
// NextStartElement after it returns rather than being threaded in by hand.
func (e *readerEmitter) driveDeclaredGroup(outExpr string, leaf qxsd.TypeContent, min, max int) (string, error) {
	typ := goTypeName(leaf.TypeKey, false)
	field := outExpr + "." + fieldName(leaf.Member)
	read := fmt.Sprintf("var v %s\nif err := %s(sr, &v); err != nil {\n\treturn err\n}\n", typ, readerFuncName(leaf.TypeKey))
	switch {
	case min == 1 && max == 1:
		return fmt.Sprintf("{\n%s%s = v\n}\nok, err = sr.NextStartElement()\nif err != nil {\n\treturn err\n}\n", indent(read, 1), field), nil
	case min == 0 && max == 1:
		return fmt.Sprintf("if ok {\n%s\t%s = &v\n\tok, err = sr.NextStartElement()\n\tif err != nil {\n\t\treturn err\n\t}\n}\n", indent(read, 1), field), nil
	default:
		return fmt.Sprintf(`for i := 0; ok && (%d < 0 || i < %d); i++ {
%s%s = append(%s, v)
	ok, err = sr.NextStartElement()
	if err != nil {
		return err
	}
}
`, max, max, indent(read, 1), field, field), nil
	}
}

// driveRepeatedInlineGroup handles a repeated, non-declared group: each
// iteration fills one synthesized "<Owner><Member>Item" element before
// being appended, matching decl.go's synthetic wrapper type name exactly.
func (e *readerEmitter) driveRepeatedInlineGroup(ownerName, outExpr string, leaf qxsd.TypeContent, grp qxsd.GroupTypeDef, min, max int) (string, error) {
	field := outExpr + "." + fieldName(leaf.Member)
	itemType := ownerName + fieldName(leaf.Member) + "Item"
	itemVar := "item"
	innerBody, err := e.driveContent(itemType, itemVar, grp.Content)
	if err != nil {
		return "", err
	}
	loopCond := "ok"
	if max >= 0 {
		loopCond = fmt.Sprintf("ok && len(%s) < %d", field, max)
	}
	sizeCheck := ""
	if min > 0 {
		sizeCheck = fmt.Sprintf(`if len(%s) < %d {
	return qxrt.ThrowSizeError(sr, %q, %d, len(%s), false)
}
`, field, min, leaf.Name, min, field)
	}
	return fmt.Sprintf(`for %s {
	var %s %s
%s	%s = append(%s, %s)
}
%s`, loopCond, itemVar, itemType, indent(innerBody, 1), field, field, itemVar, sizeCheck), nil
}

func (e *readerEmitter) driveAll(ownerName, outExpr string, all qxsd.All) (string, error) {
	var b strings.Builder
	b.WriteString("used := map[string]bool{}\n")
	b.WriteString("for ok {\n")
	b.WriteString("\tmatched := false\n")
	b.WriteString("\tswitch sr.LocalName() {\n")
	for _, slot := range all.Slots {
		elem := slot.Element
		readStmt, err := readLeafValueStmt(e.schema, "v", elem, plainErrReturn)
		if err != nil {
			return "", err
		}
		field := outExpr + "." + fieldName(elem.Member)
		assign := field + " = v\n"
		if slot.Optional {
			assign = field + " = &v\n"
		}
		fmt.Fprintf(&b, "\tcase %q:\n\t\tif used[%q] {\n\t\t\treturn qxrt.ThrowDuplicateChild(sr, %q)\n\t\t}\n\t\tused[%q] = true\n%s%s\t\tmatched = true\n",
			elem.Name, elem.Name, elem.Name, elem.Name, indent(readStmt, 2), indent(assign, 2))
	}
	b.WriteString("\t}\n")
	b.WriteString("\tif !matched {\n\t\tbreak\n\t}\n")
	b.WriteString("\tok, err = sr.NextStartElement()\n\tif err != nil {\n\t\treturn err\n\t}\n")
	b.WriteString("}\n")
	for _, slot := range all.Slots {
		if !slot.Optional {
			fmt.Fprintf(&b, "if !used[%q] {\n\treturn qxrt.ThrowMissingChild(sr, %q)\n}\n", slot.Element.Name, slot.Element.Name)
		}
	}
	return b.String(), nil
}

// driveChoice handles both shapes invariant 4 allows: an ordered choice
// (single occurrence, one of N alternatives dispatched by name into a
// variant struct) and an unordered choice (repeated, flattened into one
// list per alternative, counted against the enclosing slot's bounds).
func (e *readerEmitter) driveChoice(ownerName, outExpr string, ch qxsd.Choice, min, max int) (string, error) {
	if ch.Unordered {
		return e.driveUnorderedChoice(outExpr, ch, min, max)
	}

	variantType := ownerName + fieldName(ch.Member) + "Choice"
	variantField := outExpr + "." + fieldName(ch.Member)

	var b strings.Builder
	b.WriteString("if !ok {\n\treturn qxrt.ThrowNoChild(sr")
	for _, alt := range ch.Alts {
		fmt.Fprintf(&b, ", %q", alt.Name)
	}
	b.WriteString(")\n}\nswitch sr.LocalName() {\n")
	for _, alt := range ch.Alts {
		readStmt, err := readLeafValueStmt(e.schema, "v", alt, plainErrReturn)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "case %q:\n%s\tvar variant %s\n\tvariant.%s = &v\n",
			alt.Name, indent(readStmt, 1), variantType, fieldName(alt.Member))
		if min == 1 && max == 1 {
			fmt.Fprintf(&b, "\t%s = variant\n", variantField)
		} else if min == 0 && max == 1 {
			fmt.Fprintf(&b, "\t%s = &variant\n", variantField)
		} else {
			fmt.Fprintf(&b, "\t%s = append(%s, variant)\n", variantField, variantField)
		}
	}
	fmt.Fprintf(&b, "default:\n\treturn qxrt.ThrowChild(sr, sr.LocalName())\n}\n")
	b.WriteString("ok, err = sr.NextStartElement()\nif err != nil {\n\treturn err\n}\n")
	return b.String(), nil
}

func (e *readerEmitter) driveUnorderedChoice(outExpr string, ch qxsd.Choice, min, max int) (string, error) {
	var b strings.Builder
	b.WriteString("count := 0\nfor ok {\n\tmatched := false\n\tswitch sr.LocalName() {\n")
	for _, alt := range ch.Alts {
		readStmt, err := readLeafValueStmt(e.schema, "v", alt, plainErrReturn)
		if err != nil {
			return "", err
		}
		field := outExpr + "." + fieldName(alt.Member)
		fmt.Fprintf(&b, "\tcase %q:\n%s\t\t%s = append(%s, v)\n\t\tmatched = true\n",
			alt.Name, indent(readStmt, 2), field, field)
	}
	b.WriteString("\t}\n\tif !matched {\n\t\tbreak\n\t}\n\tcount++\n")
	if max >= 0 {
		b.WriteString(fmt.Sprintf("\tif count >= %d {\n\t\tbreak\n\t}\n", max))
	}
	b.WriteString("\tok, err = sr.NextStartElement()\n\tif err != nil {\n\t\treturn err\n\t}\n}\n")
	if min > 0 {
		fmt.Fprintf(&b, "if count < %d {\n\treturn qxrt.ThrowSizeError(sr, %q, %d, count, false)\n}\n", min, ch.Member, min)
	}
	return b.String(), nil
}

// errReturn renders the statement a generated conversion emits when it
// fails. A reader function's own body just "return err" for a single
// error result; read_document's root-leaf read returns a (RootType,
// error) pair instead, so it needs "var zero T; return zero, err". This
// is the only thing that differs between the two call sites, since the
// conversion logic itself (readLeafValueStmt/readNamedBasicType) is
// otherwise identical whether the leaf is an element's content or
// read_document's root.
type errReturn func(errExpr string) string

// plainErrReturn is the errReturn every generated reader function body
// uses: those always return a single error.
func plainErrReturn(errExpr string) string {
	return "return " + errExpr
}

// zeroErrReturn is the errReturn read_document's single/multi-root core
// bodies use, since those return (RootType, error).
func zeroErrReturn(zeroType string) errReturn {
	return func(errExpr string) string {
		return fmt.Sprintf("var zero %s\nreturn zero, %s", zeroType, errExpr)
	}
}

// readLeafValueStmt emits the statements reading one element's value into
// a new local variable named varName; it never declares the destination
// field, leaving assignment to the caller. schema is threaded explicitly
// rather than read off a readerEmitter receiver so read_document's root
// leaf (built by the decl emitter) can reuse it too.
func readLeafValueStmt(schema *qxsd.Schema, varName string, leaf qxsd.TypeContent, onErr errReturn) (string, error) {
	if !leaf.IsBasicType {
		typ := goTypeName(leaf.TypeKey, false)
		return fmt.Sprintf("var %s %s\nif err := %s(sr, &%s, false); err != nil {\n\t%s\n}\n",
			varName, typ, readerFuncName(leaf.TypeKey), varName, onErr("err")), nil
	}

	if host, ok := qxschema.BuiltinGoType(leaf.TypeKey); ok {
		return fmt.Sprintf("%s, err := qxrt.ReadContent[%s](sr)\nif err != nil {\n\t%s\n}\n", varName, host, onErr("err")), nil
	}

	bt, ok := lookupBasicType(schema, leaf.TypeKey)
	if !ok {
		return "", fmt.Errorf("undefined basic type %q", leaf.TypeKey)
	}
	return readNamedBasicType(varName, leaf.TypeKey, bt, onErr)
}

// readNamedBasicType reads a named BasicType's value out of the current
// element's text content.
func readNamedBasicType(varName, typeKey string, bt qxsd.BasicType, onErr errReturn) (string, error) {
	rawVar := varName + "Raw"
	convert, err := convertBasicTypeStmt(varName, rawVar, typeKey, bt, onErr)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s, err := sr.ElementText()\nif err != nil {\n\t%s\n}\n%s", rawVar, onErr("err"), convert), nil
}

// convertBasicTypeStmt converts an already-extracted raw string
// (rawExpr, a Go expression evaluating to a string) into varName for a
// named BasicType (Alias/List/Union/Enum). Factoring this out of
// readNamedBasicType lets attribute values -- which never go through
// sr.ElementText(), since they come from sr.Attr() -- share the exact
// same enum table/list/union conversion an element of the same type
// gets, instead of falling through qxrt.ConvertData's builtin-only
// type switch.
func convertBasicTypeStmt(varName, rawExpr, typeKey string, bt qxsd.BasicType, onErr errReturn) (string, error) {
	goName := goTypeName(typeKey, false)
	switch t := bt.(type) {
	case qxsd.AliasType:
		return fmt.Sprintf("%s, err := qxrt.ConvertData[%s](%s)\nif err != nil {\n\t%s\n}\n",
			varName, t.Scalar, rawExpr, onErr(fmt.Sprintf("qxrt.ThrowInvalidSimple(sr, %s, err)", rawExpr))), nil
	case qxsd.ListType:
		return fmt.Sprintf(`%s, err := qxrt.ConvertList(%s, func(item string) (%s, error) { return qxrt.ConvertData[%s](item) })
if err != nil {
	%s
}
`, varName, rawExpr, t.Elem, t.Elem, onErr(fmt.Sprintf("qxrt.ThrowInvalidSimple(sr, %s, err)", rawExpr))), nil
	case qxsd.UnionType:
		var b strings.Builder
		fmt.Fprintf(&b, "%sItems, err := qxrt.SplitUnionItems(%s, %d)\nif err != nil {\n\t%s\n}\n",
			varName, rawExpr, len(t.Elems), onErr(fmt.Sprintf("qxrt.ThrowInvalidSimple(sr, %s, err)", rawExpr)))
		fmt.Fprintf(&b, "var %s %s\n", varName, goName)
		for i, elem := range t.Elems {
			fmt.Fprintf(&b, "if v, err := qxrt.ConvertData[%s](%sItems[%d]); err != nil {\n\t%s\n} else {\n\t%s.Item%d = v\n}\n",
				elem, varName, i, onErr(fmt.Sprintf("qxrt.ThrowInvalidSimple(sr, %sItems[%d], err)", varName, i)), varName, i)
		}
		return b.String(), nil
	case qxsd.EnumType:
		var b strings.Builder
		fmt.Fprintf(&b, "%sTable := map[string]%s{\n", varName, goName)
		for _, v := range t.Values {
			fmt.Fprintf(&b, "\t%q: %s,\n", v.XMLValue, goName+gen.Sanitize(exportedName(v.Key)))
		}
		b.WriteString("}\n")
		fmt.Fprintf(&b, "%s, ok := qxrt.MatchEnum(%s, %sTable)\nif !ok {\n\t%s\n}\n",
			varName, rawExpr, varName, onErr(fmt.Sprintf("qxrt.ThrowInvalidEnum(sr, %s)", rawExpr)))
		return b.String(), nil
	default:
		return "", fmt.Errorf("unknown basic type kind for %q", typeKey)
	}
}
