package qxrt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertDataScalars(t *testing.T) {
	s, err := ConvertData[string]("hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", s)

	b, err := ConvertData[bool]("true")
	require.NoError(t, err)
	assert.True(t, b)

	i, err := ConvertData[int]("-42")
	require.NoError(t, err)
	assert.Equal(t, -42, i)

	u, err := ConvertData[uint]("7")
	require.NoError(t, err)
	assert.Equal(t, uint(7), u)

	f, err := ConvertData[float64]("3.5")
	require.NoError(t, err)
	assert.Equal(t, 3.5, f)

	by, err := ConvertData[[]byte]("raw")
	require.NoError(t, err)
	assert.Equal(t, []byte("raw"), by)

	_, err = ConvertData[int]("not-a-number")
	assert.Error(t, err)
}

func TestConvertDataTime(t *testing.T) {
	v, err := ConvertData[time.Time]("2024-03-01T10:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, 2024, v.Year())

	v, err = ConvertData[time.Time]("2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, time.Month(3), v.Month())

	_, err = ConvertData[time.Time]("not-a-date")
	assert.Error(t, err)
}

func TestSplitListItems(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, SplitListItems("  a  b\tc\n"))
	assert.Empty(t, SplitListItems("   "))
}

func TestSplitUnionItems(t *testing.T) {
	items, err := SplitUnionItems("1 2", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, items)

	_, err = SplitUnionItems("1 2 3", 2)
	assert.Error(t, err)
}

func TestConvertList(t *testing.T) {
	out, err := ConvertList("1 2 3", func(s string) (int, error) {
		return ConvertData[int](s)
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, out)

	_, err = ConvertList("1 x 3", func(s string) (int, error) {
		return ConvertData[int](s)
	})
	assert.Error(t, err)
}

func TestMatchEnum(t *testing.T) {
	table := map[string]int{"red": 1, "blue": 2}
	v, ok := MatchEnum("red", table)
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = MatchEnum("green", table)
	assert.False(t, ok)
}
