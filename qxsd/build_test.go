package qxsd

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const schemaTmpl = `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema"
	xmlns:qxg="https://skycoder42.de/xml/schemas/QXmlCodeGen">
%s
</xs:schema>`

func build(t *testing.T, body string) *Schema {
	t.Helper()
	doc := []byte(fmt.Sprintf(schemaTmpl, body))
	schema, err := Build(doc, "testschema.xsd")
	require.NoError(t, err)
	return schema
}

func buildErr(t *testing.T, body string) error {
	t.Helper()
	doc := []byte(fmt.Sprintf(schemaTmpl, body))
	_, err := Build(doc, "testschema.xsd")
	require.Error(t, err)
	return err
}

// S1 — a bare top-level element with a builtin type is a valid root.
func TestBuildRootElement(t *testing.T) {
	schema := build(t, `<xs:element name="R" type="xs:string"/>`)
	require.Len(t, schema.RootElements, 1)
	root := schema.RootElements[0]
	assert.Equal(t, "R", root.Name)
	assert.True(t, root.IsBasicType)
	assert.Equal(t, "string", root.TypeKey)
}

// S2 — required/optional attributes with a default.
func TestBuildAttributes(t *testing.T) {
	schema := build(t, `
		<xs:complexType name="T">
			<xs:attribute name="a" type="xs:int" use="required"/>
			<xs:attribute name="b" type="xs:string" default="z"/>
		</xs:complexType>`)

	rec, ok := schema.Records["T"].(ComplexTypeDef)
	require.True(t, ok)
	require.Len(t, rec.Attrs, 2)

	a := rec.Attrs[0]
	assert.Equal(t, "a", a.XMLName)
	assert.True(t, a.Required)
	assert.Equal(t, "int", a.HostType)

	b := rec.Attrs[1]
	assert.Equal(t, "b", b.XMLName)
	assert.False(t, b.Required)
	require.NotNil(t, b.Default)
	assert.Equal(t, "z", *b.Default)
}

// S3 — a sequence slot with explicit occurrence bounds.
func TestBuildSequenceBounds(t *testing.T) {
	schema := build(t, `
		<xs:complexType name="T">
			<xs:sequence>
				<xs:element name="x" type="xs:int" minOccurs="2" maxOccurs="3"/>
			</xs:sequence>
		</xs:complexType>`)

	rec, ok := schema.Records["T"].(ComplexTypeDef)
	require.True(t, ok)
	seq, ok := rec.Content.(Sequence)
	require.True(t, ok)
	require.Len(t, seq.Slots, 1)
	assert.Equal(t, 2, seq.Slots[0].Min)
	assert.Equal(t, 3, seq.Slots[0].Max)
}

// invariant 2: a sequence nested directly in another sequence must have
// occurrence (1,1).
func TestBuildRejectsNonTrivialNestedSequence(t *testing.T) {
	err := buildErr(t, `
		<xs:complexType name="T">
			<xs:sequence>
				<xs:sequence minOccurs="0" maxOccurs="2">
					<xs:element name="x" type="xs:int"/>
				</xs:sequence>
			</xs:sequence>
		</xs:complexType>`)
	be, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, ErrSchemaShape, be.Kind)
}

// S4 — a choice with an explicit member produces alternatives, each
// with its own type_key.
func TestBuildChoice(t *testing.T) {
	schema := build(t, `
		<xs:complexType name="E1">
			<xs:sequence/>
		</xs:complexType>
		<xs:complexType name="E2">
			<xs:sequence/>
		</xs:complexType>
		<xs:complexType name="T">
			<xs:choice qxg:member="body">
				<xs:element name="e1" type="E1"/>
				<xs:element name="e2" type="E2"/>
			</xs:choice>
		</xs:complexType>`)

	rec, ok := schema.Records["T"].(ComplexTypeDef)
	require.True(t, ok)
	ch, ok := rec.Content.(Choice)
	require.True(t, ok)
	assert.Equal(t, "body", ch.Member)
	assert.False(t, ch.Unordered)
	require.Len(t, ch.Alts, 2)
	assert.Equal(t, "E1", ch.Alts[0].TypeKey)
	assert.Equal(t, "E2", ch.Alts[1].TypeKey)
}

// invariant 4: a non-unordered choice without its own qxg:member is a
// schema-shape error.
func TestBuildChoiceRequiresMember(t *testing.T) {
	err := buildErr(t, `
		<xs:complexType name="T">
			<xs:choice>
				<xs:element name="e1" type="xs:string"/>
				<xs:element name="e2" type="xs:string"/>
			</xs:choice>
		</xs:complexType>`)
	be, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, ErrSchemaShape, be.Kind)
}

// S5 — an all-group with one required and one optional slot.
func TestBuildAllGroup(t *testing.T) {
	schema := build(t, `
		<xs:complexType name="A"><xs:sequence/></xs:complexType>
		<xs:complexType name="B"><xs:sequence/></xs:complexType>
		<xs:complexType name="T">
			<xs:all>
				<xs:element name="a" type="A"/>
				<xs:element name="b" type="B" minOccurs="0"/>
			</xs:all>
		</xs:complexType>`)

	rec, ok := schema.Records["T"].(ComplexTypeDef)
	require.True(t, ok)
	all, ok := rec.Content.(All)
	require.True(t, ok)
	require.Len(t, all.Slots, 2)
	assert.False(t, all.Slots[0].Optional)
	assert.True(t, all.Slots[1].Optional)
}

// S6 — an enum restriction with its enumerated keys.
func TestBuildEnumRestriction(t *testing.T) {
	schema := build(t, `
		<xs:simpleType name="Color">
			<xs:restriction base="xs:string">
				<xs:enumeration value="red"/>
				<xs:enumeration value="green"/>
				<xs:enumeration value="blue"/>
			</xs:restriction>
		</xs:simpleType>`)

	bt, ok := schema.BasicTypes["Color"].(EnumType)
	require.True(t, ok)
	require.Len(t, bt.Values, 3)
	assert.Equal(t, "red", bt.Values[0].XMLValue)
	assert.Equal(t, "Red", bt.Values[0].Key)
}

// invariant 1: a reference to an undeclared type is a fatal
// type-resolution error, even when it only surfaces during the
// resolve-all pass (forward references within the same document are
// otherwise legal).
func TestBuildUndefinedTypeReference(t *testing.T) {
	err := buildErr(t, `
		<xs:complexType name="T">
			<xs:sequence>
				<xs:element name="x" type="Nonexistent"/>
			</xs:sequence>
		</xs:complexType>`)
	be, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, ErrTypeResolution, be.Kind)
}

// forward reference: T references U, declared afterward in the same
// document — this must succeed since resolution is a second pass.
func TestBuildForwardReference(t *testing.T) {
	schema := build(t, `
		<xs:complexType name="T">
			<xs:sequence>
				<xs:element name="u" type="U"/>
			</xs:sequence>
		</xs:complexType>
		<xs:complexType name="U">
			<xs:sequence/>
		</xs:complexType>`)

	rec, ok := schema.Records["T"].(ComplexTypeDef)
	require.True(t, ok)
	seq := rec.Content.(Sequence)
	assert.Equal(t, "U", seq.Slots[0].Body.(TypeContent).TypeKey)
}

// invariant 7: a MixedType may not extend a base type.
func TestBuildMixedTypeCannotExtend(t *testing.T) {
	err := buildErr(t, `
		<xs:complexType name="Base">
			<xs:sequence/>
		</xs:complexType>
		<xs:complexType name="T" qxg:mixed="true">
			<xs:complexContent>
				<xs:extension base="Base"/>
			</xs:complexContent>
		</xs:complexType>`)
	be, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, ErrSchemaShape, be.Kind)
}

// invariant 8: an attribute-group reference may not set both inherit and
// member (with neither, member defaults to the referenced group's name).
func TestBuildAttrGroupRefRejectsBoth(t *testing.T) {
	err := buildErr(t, `
		<xs:attributeGroup name="G">
			<xs:attribute name="a" type="xs:string"/>
		</xs:attributeGroup>
		<xs:complexType name="T">
			<xs:attributeGroup ref="G" qxg:inherit="true" qxg:member="g"/>
		</xs:complexType>`)
	be, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, ErrSchemaShape, be.Kind)
}

func TestBuildConfigOverrides(t *testing.T) {
	schema := build(t, `<xs:element name="R" type="xs:string"/>`)
	assert.Equal(t, "Testschema", schema.Config.ClassName)

	doc := []byte(fmt.Sprintf(schemaTmpl, `
		<qxg:config class="Custom" ns="urn:test" stdcompat="true" visibility="public"/>
		<xs:element name="R" type="xs:string"/>`))
	schema2, err := Build(doc, "testschema.xsd")
	require.NoError(t, err)
	assert.Equal(t, "Custom", schema2.Config.ClassName)
	assert.Equal(t, "urn:test", schema2.Config.Namespace)
	assert.True(t, schema2.Config.StdCompat)
	assert.Equal(t, VisibilityPublic, schema2.Config.Visibility)
}
