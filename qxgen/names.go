// Package qxgen turns a built qxsd.Schema into Go source: a declaration
// emitter (component F) producing the record/basic-type declarations and
// the public read_document API, and a reader emitter (component G)
// producing the per-type reader functions those declarations promise.
//
// Both emitters build go/ast trees via internal/gen and never touch the
// filesystem directly; driver.go is the only file that does I/O.
package qxgen

import (
	"strings"
	"unicode"

	"github.com/skycoder42/qxmlcodegen/internal/gen"
	"github.com/skycoder42/qxmlcodegen/qxschema"
	"github.com/skycoder42/qxmlcodegen/qxsd"
)

// goTypeName resolves a type_key to its Go spelling: a builtin's mapped
// host type, or the title-cased, keyword-sanitized name of a named
// BasicType or record.
func goTypeName(typeKey string, isBasicType bool) string {
	if isBasicType {
		if host, ok := qxschema.BuiltinGoType(typeKey); ok {
			return host
		}
	}
	return gen.Sanitize(exportedName(typeKey))
}

func exportedName(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

func unexportedName(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

// readerFuncName is the Go function name emitted for read_<T>, title-
// cased per the teacher's exported-helper convention but kept unexported
// since the generated reader routines are internal machinery behind the
// public read_document API (per §4.F's "visibility transition").
func readerFuncName(typeKey string) string {
	return "read" + gen.Sanitize(exportedName(typeKey))
}

// fieldName derives a Go struct field name from a member name: its
// exported, keyword-sanitized spelling.
func fieldName(member string) string {
	return gen.Sanitize(exportedName(member))
}

// rootTypeName names the generated Root type: the single root element's
// Go type if there is exactly one, else "Root" (a variant wrapper struct
// over every candidate).
func rootTypeName(schema *qxsd.Schema) string {
	if len(schema.RootElements) == 1 {
		root := schema.RootElements[0]
		return goTypeName(root.TypeKey, root.IsBasicType)
	}
	return "Root"
}

// lookupRecord resolves a type_key that is known to be a record (per
// resolveAll's invariant-1 guarantee) to its concrete RecordDef.
func lookupRecord(schema *qxsd.Schema, typeKey string) qxsd.RecordDef {
	return schema.Records[typeKey]
}

func lookupBasicType(schema *qxsd.Schema, typeKey string) (qxsd.BasicType, bool) {
	bt, ok := schema.BasicTypes[typeKey]
	return bt, ok
}

// isGroupKind reports whether rec is a Group — the one record kind whose
// content is inlined into the field list of whichever record references
// it, unless qxg:declare gives it its own Go struct.
func isGroupKind(rec qxsd.RecordDef) bool {
	_, ok := rec.(qxsd.GroupTypeDef)
	return ok
}

func trimmedJoin(parts []string, sep string) string {
	var kept []string
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
