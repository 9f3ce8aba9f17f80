package qxschema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnnotation(t *testing.T) {
	el := parseFragment(t)

	assert.Equal(t, "Foo", Annotation(el, "member", "fallback", false))
	assert.Equal(t, "fallback", Annotation(el, "missing", "fallback", false))
	assert.Equal(t, "int", Annotation(el, "missing", "xs:int", true))
	assert.Equal(t, "", Annotation(el, "missing", "", true))
}

func TestAnnotationBool(t *testing.T) {
	el := parseFragment(t)

	assert.True(t, AnnotationBool(el, "inherit", false))
	assert.False(t, AnnotationBool(el, "missing", false))
	assert.True(t, AnnotationBool(el, "missing", true))
}

func TestBuiltinGoType(t *testing.T) {
	got, ok := BuiltinGoType("dateTime")
	assert.True(t, ok)
	assert.Equal(t, "time.Time", got)

	_, ok = BuiltinGoType("notAType")
	assert.False(t, ok)
}

func TestIsBuiltin(t *testing.T) {
	assert.True(t, IsBuiltin("string"))
	assert.False(t, IsBuiltin("Color"))
}

func TestNonTrivialBuiltin(t *testing.T) {
	assert.True(t, NonTrivialBuiltin("hexBinary"))
	assert.False(t, NonTrivialBuiltin("string"))
}
