package deliverables

import (
	"fmt"
	"strings"
)

// Fixed positions of the test log layout.
const (
	MarkerHeader = "C1_MARK"

	markerCol = 6 // G
	limitCol  = 5 // F

	theoreticalLabel = "THEORETICAL_NUM"
	slotLabel        = "SLOT"
	limitLabel       = "LOLIMIT"
)

// DieColumns holds the 0-based columns of the die table found in the marker row.
type DieColumns struct {
	X, Y, ET int
}

func equalFold(want string) func(string) bool {
	return func(v string) bool { return strings.EqualFold(strings.TrimSpace(v), want) }
}

// findMarkerRow scans column G for the exact C1_MARK header.
func findMarkerRow(sd *SheetData) (int, error) {
	row, ok := sd.FindInColumn(markerCol, func(v string) bool {
		return strings.TrimSpace(v) == MarkerHeader
	})
	if !ok {
		return 0, fmt.Errorf("sheet %q: %w", sd.Name, ErrMarkerNotFound)
	}
	return row, nil
}

// markValues collects the marks below the header down to End(Down) of the
// header cell, trimmed, blanks dropped, deduplicated in first-seen order.
func markValues(sd *SheetData, headerRow int) []string {
	last := sd.EndDown(headerRow, markerCol)
	seen := make(map[string]bool)
	var marks []string
	for r := headerRow + 1; r <= last; r++ {
		v := strings.TrimSpace(sd.Cell(r, markerCol))
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		marks = append(marks, v)
	}
	return marks
}

// findHeaderRight returns the first column in [from, End(Right)] of row whose
// header matches one of names, case-insensitively.
func findHeaderRight(sd *SheetData, row, from int, names ...string) (int, bool) {
	last := sd.EndRight(row, from)
	for c := from; c <= last; c++ {
		v := strings.TrimSpace(sd.Cell(row, c))
		for _, n := range names {
			if strings.EqualFold(v, n) {
				return c, true
			}
		}
	}
	return 0, false
}

// findFTColumn looks for FT inside the pivot source columns G..ET.
func findFTColumn(sd *SheetData, headerRow, etCol int) (int, bool) {
	for c := markerCol; c <= etCol; c++ {
		if strings.EqualFold(strings.TrimSpace(sd.Cell(headerRow, c)), "FT") {
			return c, true
		}
	}
	return 0, false
}

// findDieColumns locates X, Y and ET across the marker row starting at
// column A. When a header repeats, the rightmost one wins.
func findDieColumns(sd *SheetData, headerRow int) (DieColumns, error) {
	cols := DieColumns{X: -1, Y: -1, ET: -1}
	last := sd.EndRight(headerRow, 0)
	for c := 0; c <= last; c++ {
		switch strings.ToUpper(strings.TrimSpace(sd.Cell(headerRow, c))) {
		case "X":
			cols.X = c
		case "Y":
			cols.Y = c
		case "ET", "END TEST NO.":
			cols.ET = c
		}
	}
	var missing []string
	if cols.X < 0 {
		missing = append(missing, "X")
	}
	if cols.Y < 0 {
		missing = append(missing, "Y")
	}
	if cols.ET < 0 {
		missing = append(missing, "ET")
	}
	if len(missing) > 0 {
		return cols, fmt.Errorf("%s: %w", strings.Join(missing, ", "), ErrColumnNotFound)
	}
	return cols, nil
}

// theoreticalNum reads the die count two columns right of THEORETICAL_NUM.
func theoreticalNum(sd *SheetData) (float64, bool) {
	row, ok := sd.FindInColumn(0, equalFold(theoreticalLabel))
	if !ok {
		return 0, false
	}
	return Numeric(sd.Cell(row, 2))
}

// slotNumber returns the wafer slot below the SLOT header, zero padded.
func slotNumber(sd *SheetData) (string, error) {
	row, ok := sd.FindInColumn(0, equalFold(slotLabel))
	if !ok {
		return "", ErrSlotNotFound
	}
	raw := sd.Cell(row+1, 0)
	if strings.TrimSpace(raw) == "" {
		return "", ErrSlotEmpty
	}
	f, ok := Numeric(raw)
	if !ok {
		return "", fmt.Errorf("%w: %q is not a number", ErrSlotEmpty, raw)
	}
	return fmt.Sprintf("%02d", int(f)), nil
}

// limitHeaderRow follows End(Down) from F1 and expects the LOLIMIT header
// there.
func limitHeaderRow(sd *SheetData) (int, error) {
	row := sd.EndDown(0, limitCol)
	if !strings.EqualFold(strings.TrimSpace(sd.Cell(row, limitCol)), limitLabel) {
		return 0, ErrLimitTableNotFound
	}
	return row, nil
}
