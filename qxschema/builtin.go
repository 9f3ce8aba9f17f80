package qxschema

// builtinGoType maps each of the 46 XSD built-in scalar types (by local
// name) to the host Go type the declaration emitter spells out for it.
// This table is the direct descendant of a Go-struct-tag generator's
// built-in table, repointed at the scalar types qxrt.ConvertData knows
// how to produce instead of at marshal/unmarshal-method-bearing wrapper
// types.
var builtinGoType = map[string]string{
	"anyType":            "string",
	"anySimpleType":      "string",
	"entities":           "[]string",
	"entity":             "string",
	"id":                 "string",
	"idref":              "string",
	"idrefs":             "[]string",
	"ncName":             "string",
	"nmtoken":            "string",
	"nmtokens":           "[]string",
	"notation":           "[]string",
	"name":               "string",
	"qName":              "string",
	"anyURI":             "string",
	"base64Binary":       "[]byte",
	"boolean":            "bool",
	"byte":               "int",
	"date":               "time.Time",
	"dateTime":           "time.Time",
	"decimal":            "float64",
	"double":             "float64",
	"duration":           "string",
	"float":              "float32",
	"gDay":               "time.Time",
	"gMonth":             "time.Time",
	"gMonthDay":          "time.Time",
	"gYear":              "time.Time",
	"gYearMonth":         "time.Time",
	"hexBinary":          "[]byte",
	"int":                "int",
	"integer":            "int",
	"language":           "string",
	"long":               "int64",
	"negativeInteger":    "int",
	"nonNegativeInteger": "int",
	"normalizedString":   "string",
	"nonPositiveInteger": "int",
	"positiveInteger":    "int",
	"short":              "int",
	"string":             "string",
	"time":               "time.Time",
	"token":              "string",
	"unsignedByte":       "int",
	"unsignedInt":        "uint",
	"unsignedLong":       "uint64",
	"unsignedShort":      "uint",
}

// nonTrivialBuiltins are the built-ins whose host representation
// (time.Time, []byte) needs qxrt.ConvertData's non-default-literal
// coercion rather than a plain identity string conversion. The list is
// exposed through NonTrivialBuiltin only; the emitters do not consult it
// (ConvertData's type switch already covers every case).
var nonTrivialBuiltins = map[string]bool{
	"base64Binary": true,
	"hexBinary":    true,
	"date":         true,
	"time":         true,
	"dateTime":     true,
	"gDay":         true,
	"gMonth":       true,
	"gMonthDay":    true,
	"gYear":        true,
	"gYearMonth":   true,
}

// BuiltinGoType returns the host Go type for an XSD built-in scalar given
// its local name (e.g. "string", "dateTime"), and whether it is in fact a
// recognized built-in.
func BuiltinGoType(local string) (string, bool) {
	t, ok := builtinGoType[local]
	return t, ok
}

// IsBuiltin reports whether local names one of the 46 XSD built-in
// scalar types. The schema-model builder uses this to decide
// TypeContent.IsBasicType when no explicit qxg:basicType override is
// present.
func IsBuiltin(local string) bool {
	_, ok := builtinGoType[local]
	return ok
}

// NonTrivialBuiltin reports whether local requires more than a bare
// identity conversion from its XML text representation.
func NonTrivialBuiltin(local string) bool {
	return nonTrivialBuiltins[local]
}
