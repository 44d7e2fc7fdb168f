package deliverables

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultColorMap(t *testing.T) {
	m := DefaultColorMap()
	c, ok := m.Lookup("/")
	require.True(t, ok)
	assert.Equal(t, "00FF00", c)

	c, ok = m.Lookup("Q")
	require.True(t, ok)
	assert.Equal(t, "ED7D31", c)

	c, ok = m.Lookup("q")
	require.True(t, ok)
	assert.Equal(t, "FFFF00", c, "marks are case sensitive")

	_, ok = m.Lookup("QQ")
	assert.False(t, ok)
}

func TestDefaultColorMap_IsACopy(t *testing.T) {
	m := DefaultColorMap()
	m["/"] = "000000"
	c, _ := DefaultColorMap().Lookup("/")
	assert.Equal(t, "00FF00", c)
}

func TestColorMap_LookupNumericMark(t *testing.T) {
	c, ok := DefaultColorMap().Lookup("2.0")
	require.True(t, ok)
	assert.Equal(t, "FF0000", c)
}

func TestColorMap_Merge(t *testing.T) {
	m, err := DefaultColorMap().Merge(map[string]string{
		"Q":  "#112233",
		"QQ": "abcdef",
	})
	require.NoError(t, err)

	c, _ := m.Lookup("Q")
	assert.Equal(t, "112233", c)
	c, _ = m.Lookup("QQ")
	assert.Equal(t, "ABCDEF", c)
}

func TestColorMap_MergeInvalid(t *testing.T) {
	for _, bad := range []string{"red", "#12345", "#GGGGGG", ""} {
		_, err := DefaultColorMap().Merge(map[string]string{"Q": bad})
		assert.Error(t, err, bad)
	}
}
