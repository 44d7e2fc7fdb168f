package deliverables

import (
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// ParseValue converts a raw CSV field into the value written to the sheet:
// all-digit fields become integers, decimal fields become floats and
// everything else stays a string. Empty fields return nil.
func ParseValue(field string) any {
	if field == "" {
		return nil
	}
	if isDigits(field) {
		if n, err := strconv.ParseInt(field, 10, 64); err == nil {
			return n
		}
	}
	if isDecimal(strings.TrimSpace(field)) {
		if f, err := cast.ToFloat64E(strings.TrimSpace(field)); err == nil && !math.IsInf(f, 0) {
			return f
		}
	}
	return field
}

// Normalize renders a cell value the way codes are compared: trimmed, with
// integral numbers printed without a fraction ("1001.0" and 1001.0 both give "1001").
func Normalize(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		s := strings.TrimSpace(x)
		if !isDecimal(s) {
			return s
		}
		f, err := cast.ToFloat64E(s)
		if err != nil {
			return s
		}
		if i, ok := integral(f); ok {
			return strconv.FormatInt(i, 10)
		}
		return s
	case float32, float64:
		f := cast.ToFloat64(x)
		if i, ok := integral(f); ok {
			return strconv.FormatInt(i, 10)
		}
		return strconv.FormatFloat(f, 'f', -1, 64)
	default:
		return strings.TrimSpace(cast.ToString(x))
	}
}

// Numeric reports the float value of a cell string when it holds a number.
func Numeric(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if !isDecimal(s) {
		return 0, false
	}
	f, err := cast.ToFloat64E(s)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// typedValue returns the number held by s, or s itself, for writing back.
func typedValue(s string) any {
	if s == "" {
		return nil
	}
	if f, ok := Numeric(s); ok {
		if i, ok := integral(f); ok {
			return i
		}
		return f
	}
	return s
}

// compareValues orders pivot items: numbers ascending first, then text.
func compareValues(a, b string) int {
	fa, aNum := Numeric(a)
	fb, bNum := Numeric(b)
	switch {
	case aNum && bNum:
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	case aNum:
		return -1
	case bNum:
		return 1
	}
	return strings.Compare(a, b)
}

func integral(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || math.Abs(f) >= 1e15 {
		return 0, false
	}
	return int64(f), true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// isDecimal accepts [+-]digits[.digits][e[+-]digits] with at least one digit
// in the mantissa.
func isDecimal(s string) bool {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
			digits++
		}
	}
	if digits == 0 {
		return false
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		i++
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}
		exp := 0
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
			exp++
		}
		if exp == 0 {
			return false
		}
	}
	return i == len(s)
}
