package deliverables

import (
	"fmt"
	"strings"
)

// Describe opens a workbook and returns a human-readable tree of the layout
// the report stages will use. Useful for checking a new tester's CSV format.
func Describe(xlsxPath string, opts ...Option) (string, error) {
	r, err := NewReporter(opts...)
	if err != nil {
		return "", err
	}
	return r.Describe(xlsxPath)
}

// Describe renders the detected layout of xlsxPath.
func (r *Reporter) Describe(xlsxPath string) (string, error) {
	wb, err := OpenWorkbook(xlsxPath)
	if err != nil {
		return "", err
	}
	defer wb.Close()

	sd, err := wb.DataSheet(r.opts.dataSheet)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Workbook: %s\n", xlsxPath)
	fmt.Fprintf(&b, "Sheets: %s\n", strings.Join(wb.SheetNames(), ", "))
	fmt.Fprintf(&b, "Data sheet: %s %s\n", sd.Name, Size{Width: sd.Cols(), Height: sd.Rows()})

	if row, ok := sd.FindInColumn(0, equalFold(theoreticalLabel)); ok {
		fmt.Fprintf(&b, "  THEORETICAL_NUM: %s (%s)\n", orDash(sd.Cell(row, 2)), NewCellRef("", row, 2))
	} else {
		b.WriteString("  THEORETICAL_NUM: -\n")
	}
	if slot, err := slotNumber(sd); err == nil {
		fmt.Fprintf(&b, "  SLOT: %s -> %s\n", slot, WafermapSheetName(slot))
	} else {
		fmt.Fprintf(&b, "  SLOT: - (%v)\n", err)
	}
	r.describeLimitTable(&b, sd)
	r.describeDieTable(&b, sd)
	return b.String(), nil
}

func (r *Reporter) describeLimitTable(b *strings.Builder, sd *SheetData) {
	header, err := limitHeaderRow(sd)
	if err != nil {
		fmt.Fprintf(b, "  Limit table: - (%v)\n", err)
		return
	}
	size := sd.ExpandTable(header, 0)
	fmt.Fprintf(b, "  Limit table: %s %d tests\n",
		NewAreaRef(NewCellRef("", header, 0), NewCellRef("", header+size.Height-1, limitCol)), size.Height-1)
}

func (r *Reporter) describeDieTable(b *strings.Builder, sd *SheetData) {
	headerRow, err := findMarkerRow(sd)
	if err != nil {
		fmt.Fprintf(b, "  Die table: - (%v)\n", err)
		return
	}
	last := sd.EndDown(headerRow, markerCol)
	fmt.Fprintf(b, "  Die table: header row %d, %d rows\n", headerRow+1, last-headerRow)

	var cols []string
	if c, ok := findHeaderRight(sd, headerRow, markerCol, "ET"); ok {
		cols = append(cols, "ET="+ColToName(c))
		if ft, ok := findFTColumn(sd, headerRow, c); ok {
			cols = append(cols, "FT="+ColToName(ft))
		}
	}
	if dc, err := findDieColumns(sd, headerRow); err == nil {
		cols = append(cols, "X="+ColToName(dc.X), "Y="+ColToName(dc.Y))
	}
	fmt.Fprintf(b, "    Columns: C1_MARK=%s %s\n", ColToName(markerCol), strings.Join(cols, " "))

	marks := markValues(sd, headerRow)
	fmt.Fprintf(b, "    Marks (%d):", len(marks))
	for _, m := range marks {
		if _, ok := r.colors.Lookup(m); ok {
			fmt.Fprintf(b, " %s", m)
		} else {
			fmt.Fprintf(b, " %s(no colour)", m)
		}
	}
	b.WriteByte('\n')
	if f := r.filter.String(); f != "" {
		fmt.Fprintf(b, "    Filter: %s\n", f)
	}
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
