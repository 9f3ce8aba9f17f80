package qxgen

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skycoder42/qxmlcodegen/internal/gen"
	"github.com/skycoder42/qxmlcodegen/qxsd"
)

const schemaTmpl = `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema"
	xmlns:qxg="https://skycoder42.de/xml/schemas/QXmlCodeGen">
%s
</xs:schema>`

func buildSchema(t *testing.T, body string) *qxsd.Schema {
	t.Helper()
	doc := []byte(fmt.Sprintf(schemaTmpl, body))
	schema, err := qxsd.Build(doc, "testschema.xsd")
	require.NoError(t, err)
	return schema
}

func emitDeclSource(t *testing.T, schema *qxsd.Schema) string {
	t.Helper()
	file, err := EmitDecl(schema)
	require.NoError(t, err)
	src, err := gen.FormattedSource(file)
	require.NoError(t, err)
	return string(src)
}

func emitReaderSource(t *testing.T, schema *qxsd.Schema) string {
	t.Helper()
	file, err := EmitReader(schema)
	require.NoError(t, err)
	src, err := gen.FormattedSource(file)
	require.NoError(t, err)
	return string(src)
}

func TestEmitDeclSimpleRecord(t *testing.T) {
	schema := buildSchema(t, `
		<xs:complexType name="T">
			<xs:attribute name="a" type="xs:int" use="required"/>
			<xs:sequence>
				<xs:element name="x" type="xs:string"/>
			</xs:sequence>
		</xs:complexType>
		<xs:element name="R" type="T"/>`)

	src := emitDeclSource(t, schema)
	assert.Contains(t, src, "type T struct")
	assert.Contains(t, src, "A int")
	assert.Contains(t, src, "X string")
	assert.Contains(t, src, "func ReadDocument(")
	assert.Contains(t, src, "func ReadDocumentFile(")
	assert.Contains(t, src, "func readDocumentFrom(")
}

func TestEmitDeclOptionalAttribute(t *testing.T) {
	schema := buildSchema(t, `
		<xs:complexType name="T">
			<xs:attribute name="b" type="xs:string"/>
		</xs:complexType>
		<xs:element name="R" type="T"/>`)

	src := emitDeclSource(t, schema)
	assert.Contains(t, src, "B *string")
}

func TestEmitDeclMultiRootGeneratesRootVariant(t *testing.T) {
	schema := buildSchema(t, `
		<xs:element name="A" type="xs:string"/>
		<xs:element name="B" type="xs:int"/>`)

	src := emitDeclSource(t, schema)
	assert.Contains(t, src, "type Root struct")
	assert.Contains(t, src, "var data Root")
}

func TestEmitDeclEnum(t *testing.T) {
	schema := buildSchema(t, `
		<xs:simpleType name="Color">
			<xs:restriction base="xs:string">
				<xs:enumeration value="red"/>
				<xs:enumeration value="blue"/>
			</xs:restriction>
		</xs:simpleType>
		<xs:element name="R" type="Color"/>`)

	src := emitDeclSource(t, schema)
	assert.Contains(t, src, "type Color int")
	assert.Contains(t, src, "ColorRed")
	assert.Contains(t, src, "ColorBlue")
}

func TestEmitDeclNonDeclaredGroupInlinesFields(t *testing.T) {
	schema := buildSchema(t, `
		<xs:group name="G">
			<xs:sequence>
				<xs:element name="g1" type="xs:int"/>
			</xs:sequence>
		</xs:group>
		<xs:complexType name="T">
			<xs:sequence>
				<xs:group ref="G"/>
			</xs:sequence>
		</xs:complexType>
		<xs:element name="R" type="T"/>`)

	src := emitDeclSource(t, schema)
	assert.Contains(t, src, "G1 int")
	assert.NotContains(t, src, "type G struct")
}

func TestEmitDeclDeclaredGroupGetsOwnType(t *testing.T) {
	schema := buildSchema(t, `
		<xs:group name="G" qxg:declare="true">
			<xs:sequence>
				<xs:element name="g1" type="xs:int"/>
			</xs:sequence>
		</xs:group>
		<xs:complexType name="T">
			<xs:sequence>
				<xs:group ref="G"/>
			</xs:sequence>
		</xs:complexType>
		<xs:element name="R" type="T"/>`)

	src := emitDeclSource(t, schema)
	assert.Contains(t, src, "type G struct")
}

func TestEmitReaderSimpleRecord(t *testing.T) {
	schema := buildSchema(t, `
		<xs:complexType name="T">
			<xs:attribute name="a" type="xs:int" use="required"/>
			<xs:sequence>
				<xs:element name="x" type="xs:string"/>
			</xs:sequence>
		</xs:complexType>
		<xs:element name="R" type="T"/>`)

	src := emitReaderSource(t, schema)
	assert.Contains(t, src, "func readT(")
	assert.Contains(t, src, "qxrt.ReadRequiredAttrib[int](sr, \"a\")")
	assert.Contains(t, src, "sr.LocalName() != \"x\"")
}

func TestEmitReaderChoiceVariant(t *testing.T) {
	schema := buildSchema(t, `
		<xs:complexType name="T">
			<xs:choice qxg:member="content">
				<xs:element name="x" type="xs:int"/>
				<xs:element name="y" type="xs:string"/>
			</xs:choice>
		</xs:complexType>
		<xs:element name="R" type="T"/>`)

	declSrc := emitDeclSource(t, schema)
	readerSrc := emitReaderSource(t, schema)
	assert.Contains(t, declSrc, "type TContentChoice struct")
	assert.Contains(t, readerSrc, "TContentChoice")
}
