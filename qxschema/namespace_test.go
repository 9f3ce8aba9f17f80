package qxschema

import (
	"bytes"
	"testing"

	"github.com/skycoder42/qxmlcodegen/internal/xmltree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fragment = `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema"
	xmlns:qxg="https://skycoder42.de/xml/schemas/QXmlCodeGen">
	<xs:element name="foo" qxg:member="Foo" qxg:inherit="true" qxg:empty=""/>
</xs:schema>`

func parseFragment(t *testing.T) *xmltree.Element {
	t.Helper()
	root, err := xmltree.Parse(bytes.NewReader([]byte(fragment)))
	require.NoError(t, err)
	return &root.Children[0]
}

func TestIsXSDNamespace(t *testing.T) {
	assert.True(t, IsXSDNamespace("http://www.w3.org/2001/XMLSchema"))
	assert.True(t, IsXSDNamespace("https://www.w3.org/2009/XMLSchema"))
	assert.False(t, IsXSDNamespace("urn:something-else"))
}

func TestIsAnnotationNamespace(t *testing.T) {
	assert.True(t, IsAnnotationNamespace(AnnotationNS))
	assert.False(t, IsAnnotationNamespace("http://www.w3.org/2001/XMLSchema"))
}

func TestCanonicalize(t *testing.T) {
	assert.Equal(t, "xs:element", Canonicalize("http://www.w3.org/2001/XMLSchema", "element"))
	assert.Equal(t, "qxg:member", Canonicalize(AnnotationNS, "member"))
	assert.Equal(t, "foo", Canonicalize("urn:other", "foo"))
}

func TestAnnotationAttr(t *testing.T) {
	el := parseFragment(t)

	v, ok := AnnotationAttr(el, "member")
	require.True(t, ok)
	assert.Equal(t, "Foo", v)

	v, ok = AnnotationAttr(el, "empty")
	require.True(t, ok, "present-but-empty attribute must report ok=true")
	assert.Equal(t, "", v)

	_, ok = AnnotationAttr(el, "nonexistent")
	assert.False(t, ok)
}
