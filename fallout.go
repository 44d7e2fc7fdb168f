package deliverables

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// PivotSheet is the sheet holding the fallout and end test tables.
const PivotSheet = "Pivot"

var (
	headerStyle   = CellStyle{Fill: "C0E6F5", Bold: true, Border: true, Center: true}
	topFailStyle  = CellStyle{Fill: "FF9F9F", Bold: true, Border: true, Center: true}
	boxStyle      = CellStyle{Border: true, Center: true}
	boldDataStyle = CellStyle{Fill: "FFFFFF", Bold: true, Border: true, Center: true}
)

// FalloutRow is one End Test line of the fallout table.
type FalloutRow struct {
	EndTest string
	Count   int
	Percent float64 // Count over the theoretical die count, in percent
}

// FalloutTable is the per-End-Test failure summary for one mark.
type FalloutTable struct {
	Mark           string
	Rows           []FalloutRow // highest count first
	Theoretical    float64
	HasTheoretical bool
	Source         AreaRef // pivot source range on the data sheet
	NativePivot    bool    // a spreadsheet pivot table was added at A3
}

// Values renders the table as written to the Pivot sheet: a header row, one
// row per End Test and the Grand Total row.
func (t *FalloutTable) Values() [][]any {
	out := make([][]any, 0, len(t.Rows)+2)
	out = append(out, []any{"End Test No.", "Count", "Fallout%"})
	for _, r := range t.Rows {
		out = append(out, []any{r.EndTest, r.Count, fmt.Sprintf("%.2f%%", r.Percent)})
	}
	total := ""
	if t.HasTheoretical {
		total = Normalize(t.Theoretical)
	}
	out = append(out, []any{"Grand Total", total, ""})
	return out
}

// Top returns the End Test with the most failures.
func (t *FalloutTable) Top() (FalloutRow, bool) {
	if len(t.Rows) == 0 {
		return FalloutRow{}, false
	}
	return t.Rows[0], true
}

// GeneratePivot counts FT results per End Test for the rows carrying mark,
// writes the fallout table to the Pivot sheet and saves the workbook.
func (r *Reporter) GeneratePivot(ctx context.Context, xlsxPath, mark string) (*FalloutTable, error) {
	mark = strings.TrimSpace(mark)
	if mark == "" {
		return nil, ErrNoMarkSelected
	}
	log := r.opts.logger.With(zap.String("xlsx", xlsxPath), zap.String("mark", mark))
	log.Info("generating pivot table")

	wb, err := OpenWorkbook(xlsxPath)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	sd, err := wb.DataSheet(r.opts.dataSheet)
	if err != nil {
		return nil, err
	}
	headerRow, err := findMarkerRow(sd)
	if err != nil {
		return nil, err
	}
	etCol, ok := findHeaderRight(sd, headerRow, markerCol, "ET")
	if !ok {
		return nil, fmt.Errorf("'ET' to the right of %s: %w", MarkerHeader, ErrColumnNotFound)
	}
	ftCol, ok := findFTColumn(sd, headerRow, etCol)
	if !ok {
		return nil, fmt.Errorf("'FT' between %s and ET: %w", MarkerHeader, ErrColumnNotFound)
	}
	lastRow := sd.EndDown(headerRow, markerCol)
	if lastRow <= headerRow {
		return nil, ErrNoData
	}

	valid := markValues(sd, headerRow)
	if !containsString(valid, mark) {
		return nil, fmt.Errorf("%w: %q not in C1_MARK items %v", ErrUnknownMark, mark, valid)
	}

	table := &FalloutTable{
		Mark:   mark,
		Source: NewAreaRef(NewCellRef(sd.Name, headerRow, markerCol), NewCellRef(sd.Name, lastRow, etCol)),
	}
	table.Theoretical, table.HasTheoretical = theoreticalNum(sd)

	headers := sd.Row(headerRow, 0, sd.Cols()-1)
	counts := make(map[string]int)
	var order []string
	for row := headerRow + 1; row <= lastRow; row++ {
		if (row-headerRow)%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if strings.TrimSpace(sd.Cell(row, markerCol)) != mark {
			continue
		}
		ok, err := r.filter.Match(headers, sd.Row(row, 0, sd.Cols()-1))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row+1, err)
		}
		if !ok {
			continue
		}
		et := Normalize(sd.Cell(row, etCol))
		if et == "" {
			continue
		}
		if _, seen := counts[et]; !seen {
			counts[et] = 0
			order = append(order, et)
		}
		if strings.TrimSpace(sd.Cell(row, ftCol)) != "" {
			counts[et]++
		}
	}

	sort.SliceStable(order, func(i, j int) bool { return compareValues(order[i], order[j]) < 0 })
	sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })
	for _, et := range order {
		row := FalloutRow{EndTest: et, Count: counts[et]}
		if table.HasTheoretical && table.Theoretical != 0 {
			row.Percent = float64(row.Count) / table.Theoretical * 100
		}
		table.Rows = append(table.Rows, row)
	}

	if err := wb.ResetSheet(PivotSheet); err != nil {
		return nil, err
	}
	if err := r.writeFallout(wb, table); err != nil {
		return nil, err
	}
	if r.opts.nativePivot {
		if err := r.addNativePivot(wb, sd, table, headerRow, etCol, ftCol); err != nil {
			// The computed table is the deliverable; the native pivot is a convenience.
			log.Warn("native pivot table skipped", zap.Error(err))
		} else {
			table.NativePivot = true
		}
	}
	if err := wb.Save(); err != nil {
		return nil, err
	}
	log.Info("fallout table written", zap.Int("end_tests", len(table.Rows)))
	return table, nil
}

func (r *Reporter) writeFallout(wb *Workbook, table *FalloutTable) error {
	values := table.Values()
	origin := NewCellRef(PivotSheet, 2, 3) // D3
	if err := wb.SetValues(origin, values); err != nil {
		return err
	}
	last := len(values) - 1
	rowArea := func(i int) AreaRef {
		return NewAreaRef(origin.Offset(i, 0), origin.Offset(i, 2))
	}
	styles := []struct {
		area  AreaRef
		style CellStyle
	}{
		{NewAreaRef(origin, origin.Offset(last, 2)), boxStyle},
		{rowArea(0), headerStyle},
		{rowArea(1), topFailStyle},
		{rowArea(last), headerStyle},
	}
	for _, s := range styles {
		if err := wb.SetStyle(s.area, s.style); err != nil {
			return err
		}
	}
	return nil
}

func (r *Reporter) addNativePivot(wb *Workbook, sd *SheetData, table *FalloutTable, headerRow, etCol, ftCol int) error {
	height := len(table.Rows) + 2
	return wb.AddPivotTable(&excelize.PivotTableOptions{
		DataRange:       table.Source.Absolute(),
		PivotTableRange: PivotSheet + "!$A$3:$B$" + strconv.Itoa(3+height),
		Name:            "PivotTable_" + r.now().Format("20060102150405"),
		Filter:          []excelize.PivotTableField{{Data: sd.Cell(headerRow, markerCol)}},
		Rows:            []excelize.PivotTableField{{Data: sd.Cell(headerRow, etCol)}},
		Data: []excelize.PivotTableField{{
			Data:     sd.Cell(headerRow, ftCol),
			Name:     "Count of FT",
			Subtotal: "Count",
		}},
		RowGrandTotals: true,
		ColGrandTotals: true,
		ShowDrill:      true,
		ShowRowHeaders: true,
		ShowColHeaders: true,
		ShowLastColumn: true,
	})
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
