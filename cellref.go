package deliverables

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

// CellRef addresses one cell by 0-based row and column. An empty Sheet means
// the sheet is implied by the caller.
type CellRef struct {
	Sheet string
	Row   int
	Col   int
}

// NewCellRef returns the reference to (row, col) on sheet.
func NewCellRef(sheet string, row, col int) CellRef {
	return CellRef{Sheet: sheet, Row: row, Col: col}
}

// CellName renders the A1 name without the sheet, e.g. "D3".
func (c CellRef) CellName() string {
	return ColToName(c.Col) + strconv.Itoa(c.Row+1)
}

func (c CellRef) String() string {
	if c.Sheet == "" {
		return c.CellName()
	}
	return c.Sheet + "!" + c.CellName()
}

// Offset moves the reference by rows and cols.
func (c CellRef) Offset(rows, cols int) CellRef {
	c.Row += rows
	c.Col += cols
	return c
}

// ColToName returns the column letters of a 0-based index: 0 is "A", 26 is
// "AA". Out of range indexes yield "".
func ColToName(col int) string {
	name, err := excelize.ColumnNumberToName(col + 1)
	if err != nil {
		return ""
	}
	return name
}

// AreaRef is the rectangle between two corners, inclusive.
type AreaRef struct {
	First CellRef
	Last  CellRef
}

// NewAreaRef spans first..last. last inherits first's sheet when it has none.
func NewAreaRef(first, last CellRef) AreaRef {
	if last.Sheet == "" {
		last.Sheet = first.Sheet
	}
	return AreaRef{First: first, Last: last}
}

func (a AreaRef) String() string {
	return a.First.String() + ":" + a.Last.CellName()
}

// Absolute renders the area as a pivot data range, e.g. "lot7!$G$11:$I$18".
// The sheet name stays unquoted because excelize splits pivot ranges on "!".
func (a AreaRef) Absolute() string {
	abs := func(c CellRef) string {
		return fmt.Sprintf("$%s$%d", ColToName(c.Col), c.Row+1)
	}
	return a.First.Sheet + "!" + abs(a.First) + ":" + abs(a.Last)
}

// Size is a block extent in columns and rows.
type Size struct {
	Width  int
	Height int
}

func (s Size) String() string {
	return fmt.Sprintf("(%dx%d)", s.Width, s.Height)
}

// maxSheetName is the longest sheet name Excel accepts, in characters.
const maxSheetName = 31

var sheetNameReplacer = strings.NewReplacer(
	"/", "_", `\`, "_", ":", "_", "*", "_", "?", "_", "[", "_", "]", "_",
)

// SafeSheetName replaces the characters Excel forbids in sheet names with
// "_" and cuts the result to 31 characters.
func SafeSheetName(name string) string {
	name = sheetNameReplacer.Replace(name)
	if utf8.RuneCountInString(name) <= maxSheetName {
		return name
	}
	return string([]rune(name)[:maxSheetName])
}
