// Package qxsd builds and validates the intermediate representation the
// declaration and reader emitters (package qxgen) walk: the schema-model
// builder (XSD construct → IR) with its semantic validator inlined, plus
// the run configuration the annotation namespace's qxg:config element
// carries.
//
// The IR is a forest of named records; every cross-reference between
// nodes is a string key (a "by name" reference, never a pointer formed
// during the build pass) so that forward references within the same
// schema never need a topological build order. Resolving those keys into
// concrete definitions is a separate pass (resolve.go), run once the
// whole tree is known.
package qxsd

// Visibility records qxg:config's visibility attribute. The qxgen
// emitters do not consult it: the generated ReadDocument API is always
// exported and the per-type read<T> routines are always unexported.
type Visibility int

const (
	// VisibilityProtected is the default.
	VisibilityProtected Visibility = iota
	VisibilityPublic
	VisibilityPrivate
)

// Include is one qxg:include child of qxg:config: its text as Path and
// its local attribute as Local. The qxgen emitters do not write includes
// into the generated files.
type Include struct {
	Path  string
	Local bool
}

// Config is the singleton, per-run generator configuration read from the
// optional qxg:config child of the schema root.
type Config struct {
	ClassName  string
	Prefix     string
	Namespace  string
	Visibility Visibility
	StdCompat  bool
	Includes   []Include
	SchemaURL  string
}

// BasicType is one of the four shapes a top-level xs:simpleType can take.
// Exactly one of AliasType/ListType/UnionType/EnumType ever implements
// it for a given name — this is a closed tagged union, not an open
// interface other packages are meant to add cases to.
type BasicType interface {
	basicTypeName() string
	isBasicType()
}

type basicTypeBase struct{ Name string }

func (b basicTypeBase) basicTypeName() string { return b.Name }

// AliasType is a single mapped scalar type, e.g. xs:int -> int.
type AliasType struct {
	basicTypeBase
	Scalar string // host Go type
}

func (AliasType) isBasicType() {}

// ListType is a whitespace-separated sequence of a scalar type.
type ListType struct {
	basicTypeBase
	Elem string // host Go type of each element
}

func (ListType) isBasicType() {}

// UnionType is a fixed-arity tuple over an ordered list of scalar types.
type UnionType struct {
	basicTypeBase
	Elems []string // host Go type of each tuple position, in order
}

func (UnionType) isBasicType() {}

// EnumValue is one member of an EnumType's restriction.
type EnumValue struct {
	XMLValue string
	Key      string
	Value    *int // explicit numeric tag, nil if none was given
}

// EnumType is a restriction with enumerated values.
type EnumType struct {
	basicTypeBase
	Base   string // underlying XSD scalar being restricted, usually string
	Values []EnumValue
}

func (EnumType) isBasicType() {}

// MemberDef is one attribute field: a simple scalar (never a basic-type
// alias/list/union/enum reference is prohibited by XSD itself — an
// attribute's type is always some simpleType, which may itself be a
// BasicType name).
type MemberDef struct {
	XMLName  string // XML local name
	Member   string // host field name
	XMLType  string // type_key into Config/BasicTypes/builtin table
	HostType string // resolved host Go type spelling
	Required bool
	Default  *string // nil unless optional-with-default
}

// AttrGroupRef is a reference to a reusable attribute fragment
// (AttrGroupTypeDef), always expanded at the attribute-reading stage.
type AttrGroupRef struct {
	TypeKey string
	Inherit bool
	Member  string // set iff !Inherit
}

// ContentKind tags the four ContentDef variants so dispatch is an
// exhaustive switch instead of class-identity checks.
type ContentKind int

const (
	KindSequence ContentKind = iota
	KindChoice
	KindAll
	KindTypeContent
)

// ContentDef is the recursive element-content variant of §3: a Sequence,
// Choice, All, or a leaf TypeContent reference. Implementations are a
// closed set.
type ContentDef interface {
	Kind() ContentKind
}

// SequenceSlot is one (min, max, element) position of an xs:sequence.
// Max of -1 means unbounded. Body is ordinarily a TypeContent leaf or a
// Choice (an unordered Choice's bounds live here, on the enclosing
// slot, per invariant 4); invariant 2 forbids a nested Sequence here
// unless its own occurrence is exactly (1,1).
type SequenceSlot struct {
	Min, Max int
	Body     ContentDef
}

// Sequence is XSD xs:sequence.
type Sequence struct {
	Slots []SequenceSlot
}

func (Sequence) Kind() ContentKind { return KindSequence }

// Choice is XSD xs:choice. Unordered is the generator's "accept any
// permutation, repeated" extension (invariant 4); a non-Unordered Choice
// must carry Member (invariant 9) since it produces a tagged variant
// field rather than one list per alternative.
type Choice struct {
	Alts      []TypeContent
	Unordered bool
	Member    string
}

func (Choice) Kind() ContentKind { return KindChoice }

// AllSlot is one alternative of an xs:all group.
type AllSlot struct {
	Optional bool
	Element  TypeContent
}

// All is XSD xs:all; invariant 3 restricts its elements to (0,1)/(1,1)
// occurrences and forbids nesting a Sequence or another All inside it.
type All struct {
	Slots []AllSlot
}

func (All) Kind() ContentKind { return KindAll }

// MethodParam is one qxg:param child of a qxg:method declaration. Per
// the spec's third Open Question, Raw is never type-checked against the
// referenced method's actual Go parameter types.
type MethodParam struct {
	Name string
	Raw  string
}

// MethodRef is a qxg:method declaration: a user-supplied reader method
// signature available as an override on a TypeContent leaf.
type MethodRef struct {
	Name       string
	AsGroup    bool
	ReturnType string
	Params     []MethodParam
}

// TypeContent is a leaf reference to an element or group: the only
// ContentDef variant that is not itself a grouping operator.
type TypeContent struct {
	IsGroup     bool
	Name        string // XML local name (element or group name)
	Member      string // host field name; lowerFirst(Name) by default
	TypeKey     string // BasicType or record name this leaf refers to
	Inherit     bool
	IsBasicType bool
	Method      *MethodRef // non-nil iff a qxg:method annotation applied
}

func (TypeContent) Kind() ContentKind { return KindTypeContent }

// RecordDef is the common shape of the five record kinds: a name plus
// attribute fields, attribute-group references, and an optional forced
// forward declaration.
type RecordDef interface {
	RecordName() string
	recordKind() recordKind
}

type recordKind int

const (
	recordSimple recordKind = iota
	recordComplex
	recordMixed
	recordGroup
	recordAttrGroup
)

type recordBase struct {
	Name       string
	Attrs      []MemberDef
	AttrGroups []AttrGroupRef
	Declare    bool
}

func (r recordBase) RecordName() string { return r.Name }

// SimpleTypeDef is a host record with attribute fields plus one scalar
// content_member (XSD simpleContent + extension).
type SimpleTypeDef struct {
	recordBase
	ContentXMLType  string // @base of the extension
	ContentHostType string
	ContentMember   string
}

func (SimpleTypeDef) recordKind() recordKind { return recordSimple }

// ComplexTypeDef is a host record with attribute fields plus structured
// element content, optionally extending a named base type.
type ComplexTypeDef struct {
	recordBase
	BaseType string // "" unless complexContent + extension
	Content  ContentDef
}

func (ComplexTypeDef) recordKind() recordKind { return recordComplex }

// MixedTypeDef is like ComplexTypeDef but the element may contain either
// pure text (captured in ContentMember) or structured children, and may
// never extend a base type (invariant 7).
type MixedTypeDef struct {
	recordBase
	Content         ContentDef
	ContentHostType string
	ContentMember   string
}

func (MixedTypeDef) recordKind() recordKind { return recordMixed }

// GroupTypeDef is a reusable element-content fragment invoked in-line
// into an enclosing parent, sharing its element buffer via a has-next
// handshake.
type GroupTypeDef struct {
	recordBase
	Content ContentDef
}

func (GroupTypeDef) recordKind() recordKind { return recordGroup }

// AttrGroupTypeDef is a reusable attribute fragment, always expanded at
// the attribute-reading stage of whichever record references it.
type AttrGroupTypeDef struct {
	recordBase
}

func (AttrGroupTypeDef) recordKind() recordKind { return recordAttrGroup }

// Schema is the complete, built-but-unresolved IR for one generator run:
// the forest of records and basic types plus the run configuration, the
// declared qxg:method table, and the schema's root elements (candidates
// for the public read_document entry point).
type Schema struct {
	Config       Config
	BasicTypes   map[string]BasicType
	Records      map[string]RecordDef
	Methods      map[string]MethodRef
	RootElements []TypeContent
}

func newSchema() *Schema {
	return &Schema{
		BasicTypes: make(map[string]BasicType),
		Records:    make(map[string]RecordDef),
		Methods:    make(map[string]MethodRef),
	}
}

// Lookup resolves a type_key to either a BasicType or a RecordDef (never
// both), satisfying invariant 1. The builtin table is not consulted here
// — built-in scalar references never enter Records/BasicTypes, they are
// resolved directly to a host type string by qxschema at the point of
// use.
func (s *Schema) Lookup(name string) (BasicType, RecordDef, bool) {
	if bt, ok := s.BasicTypes[name]; ok {
		return bt, nil, true
	}
	if rec, ok := s.Records[name]; ok {
		return nil, rec, true
	}
	return nil, nil, false
}
