package qxrt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamReaderBasic(t *testing.T) {
	r := NewStreamReader(strings.NewReader(`<root a="1"><child b="2">text</child></root>`), "in.xml")

	ok, err := r.NextStartElement()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "root", r.LocalName())
	v, ok := r.Attr("a")
	require.True(t, ok)
	assert.Equal(t, "1", v)

	ok, err = r.NextStartElement()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "child", r.LocalName())

	text, err := r.ElementText()
	require.NoError(t, err)
	assert.Equal(t, "text", text)

	ok, err = r.NextStartElement()
	require.NoError(t, err)
	assert.False(t, ok, "root has no more children")
}

func TestStreamReaderElementTextRejectsChild(t *testing.T) {
	r := NewStreamReader(strings.NewReader(`<root><a><b/></a></root>`), "")
	_, err := r.NextStartElement()
	require.NoError(t, err)
	_, err = r.NextStartElement()
	require.NoError(t, err)

	_, err = r.ElementText()
	require.Error(t, err)
	var xerr *XMLError
	require.ErrorAs(t, err, &xerr)
}

func TestStreamReaderNextToken(t *testing.T) {
	r := NewStreamReader(strings.NewReader(`<root>hi<b/></root>`), "")
	_, err := r.NextStartElement()
	require.NoError(t, err)

	tok, err := r.NextToken()
	require.NoError(t, err)
	assert.Equal(t, TokenCharData, tok.Kind)
	assert.Equal(t, "hi", tok.Text)

	tok, err = r.NextToken()
	require.NoError(t, err)
	assert.Equal(t, TokenStartElement, tok.Kind)
	assert.Equal(t, "b", tok.Name)
}

func TestReadRequiredAttrib(t *testing.T) {
	r := NewStreamReader(strings.NewReader(`<root a="5"/>`), "")
	_, err := r.NextStartElement()
	require.NoError(t, err)

	v, err := ReadRequiredAttrib[int](r, "a")
	require.NoError(t, err)
	assert.Equal(t, 5, v)

	_, err = ReadRequiredAttrib[int](r, "missing")
	assert.Error(t, err)
}

func TestReadOptionalAttribDefault(t *testing.T) {
	r := NewStreamReader(strings.NewReader(`<root/>`), "")
	_, err := r.NextStartElement()
	require.NoError(t, err)

	v, err := ReadOptionalAttribDefault[int](r, "missing", "9")
	require.NoError(t, err)
	assert.Equal(t, 9, v)
}
