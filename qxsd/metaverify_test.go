package qxsd

import (
	"context"
	"testing"

	"github.com/skycoder42/qxmlcodegen/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fakeMetaSchema = `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema"
	targetNamespace="http://www.w3.org/2001/XMLSchema"/>`

func TestMetaVerifyAccepts(t *testing.T) {
	client := testutil.FakeClient("http://meta.example/schema.xsd", []byte(fakeMetaSchema))
	v := NewMetaVerifier("http://meta.example/schema.xsd", &client)

	doc := []byte(`<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">
		<xs:element name="R" type="xs:string"/>
	</xs:schema>`)

	assert.NoError(t, v.Verify(context.Background(), doc))
}

func TestMetaVerifyToleratesAnnotationNamespace(t *testing.T) {
	client := testutil.FakeClient("http://meta.example/schema.xsd", []byte(fakeMetaSchema))
	v := NewMetaVerifier("http://meta.example/schema.xsd", &client)

	doc := []byte(`<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema"
		xmlns:qxg="https://skycoder42.de/xml/schemas/QXmlCodeGen">
		<qxg:config class="Foo"/>
		<xs:element name="R" type="xs:string"/>
	</xs:schema>`)

	assert.NoError(t, v.Verify(context.Background(), doc))
}

func TestMetaVerifyRejectsForeignNamespace(t *testing.T) {
	client := testutil.FakeClient("http://meta.example/schema.xsd", []byte(fakeMetaSchema))
	v := NewMetaVerifier("http://meta.example/schema.xsd", &client)

	doc := []byte(`<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema" xmlns:foo="urn:foo">
		<foo:whatever/>
	</xs:schema>`)

	err := v.Verify(context.Background(), doc)
	require.Error(t, err)
	var merr *Error
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, ErrMetaValidation, merr.Kind)
}

func TestMetaVerifyFetchFailure(t *testing.T) {
	client := testutil.FakeClient("http://meta.example/schema.xsd", []byte(fakeMetaSchema))
	v := NewMetaVerifier("http://meta.example/wrong-url.xsd", &client)

	err := v.Verify(context.Background(), []byte(`<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema"/>`))
	assert.Error(t, err)
}
