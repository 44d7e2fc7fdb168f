package deliverables

import (
	"fmt"
	"strings"
)

// FallbackColor fills wafermap cells whose mark is unknown or has no colour.
const FallbackColor = "C8C8C8"

// ColorMap maps C1_MARK codes to RRGGBB fill colours.
type ColorMap map[string]string

var defaultColors = ColorMap{
	"/": "00FF00", "$": "7B68EE", "*": "87CEEB", "?": "66FF66", "=": "7FFFD4",
	"!": "6495ED", "#": "6A5ACD", "%": "66FF66", ".": "66FF66", ":": "66FF66",
	"^": "66FF66", "+": "66FF66", "-": "66FF66", "{": "66FF66", "}": "66FF66",
	"(": "66FF66", ")": "66FF66", "_": "66FF66", "|": "66FF66", ";": "66FF66",
	"@": "66FF66", `\`: "66FF66", "<": "66FF66", ">": "66FF66", "&": "66FF66",

	"0": "66FF66", "1": "FFFF99", "2": "FF0000", "3": "FFFFE0", "4": "ADD8E6",
	"5": "FF8080", "6": "AFEEEE", "7": "99CCFF", "8": "FFCC00", "9": "FFFF00",

	"A": "2E8B57", "B": "FFCC00", "C": "FFCC00", "D": "99CC00", "E": "99CC00",
	"F": "7CFC00", "G": "FFFF00", "H": "A6A6A6", "I": "00CCFF", "J": "32CD32",
	"K": "20B2AA", "L": "FFDEAD", "M": "D9D9D9", "N": "DAA520", "O": "00CCFF",
	"P": "FFFF99", "Q": "ED7D31", "R": "FFCC00", "S": "FF7C80", "T": "FFCC00",
	"U": "00CCFF", "V": "008080", "W": "008080", "X": "008080", "Y": "666699",
	"Z": "666699",

	"a": "D2691E", "b": "993366", "c": "A52A2A", "d": "E9967A", "e": "660066",
	"f": "ED7D31", "g": "3366FF", "h": "CCFFFF", "i": "FF7F50", "j": "99CCFF",
	"k": "CCCCFF", "l": "D9D9D9", "m": "969696", "n": "339966", "o": "333399",
	"p": "FF6600", "q": "FFFF00", "r": "0066CC", "s": "FF9900", "t": "33CCCC",
	"u": "008080", "v": "EE82EE", "w": "DDA0DD", "x": "00FFFF", "y": "99CC00",
	"z": "9932CC",
}

// DefaultColorMap returns a copy of the built-in colour table.
func DefaultColorMap() ColorMap {
	m := make(ColorMap, len(defaultColors))
	for k, v := range defaultColors {
		m[k] = v
	}
	return m
}

// Lookup returns the colour for a mark. Integral numeric marks such as
// "1.0" are looked up as "1".
func (m ColorMap) Lookup(mark string) (string, bool) {
	c, ok := m[Normalize(mark)]
	return c, ok
}

// Merge returns a copy of m with overrides applied. Colours may be written
// "#RRGGBB" or "RRGGBB".
func (m ColorMap) Merge(overrides map[string]string) (ColorMap, error) {
	out := make(ColorMap, len(m)+len(overrides))
	for k, v := range m {
		out[k] = v
	}
	for mark, color := range overrides {
		hex, err := parseHexColor(color)
		if err != nil {
			return nil, fmt.Errorf("colour for mark %q: %w", mark, err)
		}
		out[mark] = hex
	}
	return out, nil
}

func parseHexColor(s string) (string, error) {
	hex := strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(s), "#"))
	if len(hex) != 6 {
		return "", fmt.Errorf("invalid colour %q: want #RRGGBB", s)
	}
	for _, ch := range hex {
		if !(ch >= '0' && ch <= '9' || ch >= 'A' && ch <= 'F') {
			return "", fmt.Errorf("invalid colour %q: want #RRGGBB", s)
		}
	}
	return hex, nil
}
