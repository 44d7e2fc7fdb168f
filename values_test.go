package deliverables

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseValue(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"", nil},
		{"1001", int64(1001)},
		{"007", int64(7)},
		{"1.25", 1.25},
		{"-3", -3.0},
		{"1e3", 1000.0},
		{"Q", "Q"},
		{" 12 ", 12.0},
		{"1,000", "1,000"},
		{"99999999999999999999", 1e20},
		{"N/A", "N/A"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseValue(tt.in), "ParseValue(%q)", tt.in)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{" Q ", "Q"},
		{"1001.0", "1001"},
		{"1001", "1001"},
		{"1.50", "1.50"},
		{1001.0, "1001"},
		{2.5, "2.5"},
		{int64(7), "7"},
		{42, "42"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), "Normalize(%#v)", tt.in)
	}
}

func TestNumeric(t *testing.T) {
	f, ok := Numeric(" 200 ")
	assert.True(t, ok)
	assert.Equal(t, 200.0, f)

	_, ok = Numeric("")
	assert.False(t, ok)
	_, ok = Numeric("two hundred")
	assert.False(t, ok)
	_, ok = Numeric("1e999")
	assert.False(t, ok)
}

func TestTypedValue(t *testing.T) {
	assert.Nil(t, typedValue(""))
	assert.Equal(t, int64(1001), typedValue("1001"))
	assert.Equal(t, int64(1001), typedValue("1001.0"))
	assert.Equal(t, 0.2, typedValue("0.2"))
	assert.Equal(t, "OS", typedValue("OS"))
}

func TestCompareValues(t *testing.T) {
	items := []string{"b", "10", "A", "9", "-1", "2.5"}
	sort.SliceStable(items, func(i, j int) bool { return compareValues(items[i], items[j]) < 0 })
	assert.Equal(t, []string{"-1", "2.5", "9", "10", "A", "b"}, items)
	assert.Equal(t, 0, compareValues("1", "1.0"))
}

func TestIsDecimal(t *testing.T) {
	for _, s := range []string{"1", "+1", "-1.5", ".5", "5.", "1e10", "1E-3"} {
		assert.True(t, isDecimal(s), s)
	}
	for _, s := range []string{"", "-", ".", "e5", "1e", "1.2.3", "0x10", "1 2"} {
		assert.False(t, isDecimal(s), s)
	}
}
