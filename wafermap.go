package deliverables

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
)

var (
	mapHeaderStyle = CellStyle{Fill: "E4F1FD", FontColor: "2E6E9E", Bold: true, Border: true, Center: true}
	mapCellStyle   = CellStyle{Border: true, Center: true}
)

// WafermapSheetName returns the sheet name used for a zero-padded slot.
func WafermapSheetName(slot string) string {
	return "W#" + slot + "_wafermap_by_End_Test_No"
}

// WafermapWarning records a die cell that fell back to the default colour.
type WafermapWarning struct {
	Cell    string // cell on the wafermap sheet
	EndTest string
	Mark    string // empty when the End Test has no mark
	Message string
}

// WafermapResult describes a rendered wafermap.
type WafermapResult struct {
	Sheet    string
	Slot     string
	Rows     int // Y values
	Cols     int // X values
	Dies     int // coloured cells
	Warnings []WafermapWarning
}

// waferGrid is the minimum End Test per (Y, X), with axes in pivot order.
type waferGrid struct {
	ys, xs []string
	cells  map[[2]string]float64
}

// GenerateWafermap renders the minimum End Test per die position on the slot's
// wafermap sheet, colouring each die by the mark of its End Test.
func (r *Reporter) GenerateWafermap(ctx context.Context, xlsxPath string) (*WafermapResult, error) {
	wb, err := OpenWorkbook(xlsxPath)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	sd, err := wb.DataSheet(r.opts.dataSheet)
	if err != nil {
		return nil, err
	}
	slot, err := slotNumber(sd)
	if err != nil {
		return nil, err
	}
	res := &WafermapResult{Slot: slot, Sheet: WafermapSheetName(slot)}
	log := r.opts.logger.With(zap.String("xlsx", xlsxPath), zap.String("sheet", res.Sheet))
	log.Info("generating wafermap")

	headerRow, err := findMarkerRow(sd)
	if err != nil {
		return nil, err
	}
	cols, err := findDieColumns(sd, headerRow)
	if err != nil {
		return nil, err
	}
	if headerRow+1 >= sd.Rows() {
		return nil, ErrNoData
	}
	lastRow := sd.EndDown(headerRow+1, cols.ET)

	etToMark := make(map[string]string)
	for row := headerRow + 1; row <= lastRow; row++ {
		et := Normalize(sd.Cell(row, cols.ET))
		mark := strings.TrimSpace(sd.Cell(row, markerCol))
		if et == "" || mark == "" {
			continue
		}
		etToMark[et] = mark
	}

	grid, err := r.buildGrid(ctx, sd, headerRow, lastRow, cols)
	if err != nil {
		return nil, err
	}
	res.Rows, res.Cols = len(grid.ys), len(grid.xs)

	if err := wb.ResetSheet(res.Sheet); err != nil {
		return nil, err
	}
	if err := r.renderWafermap(ctx, wb, res, grid, etToMark); err != nil {
		return nil, err
	}
	if err := wb.Save(); err != nil {
		return nil, err
	}
	for _, w := range res.Warnings {
		log.Warn(w.Message, zap.String("cell", w.Cell), zap.String("end_test", w.EndTest), zap.String("mark", w.Mark))
	}
	log.Info("wafermap created", zap.Int("rows", res.Rows), zap.Int("cols", res.Cols), zap.Int("dies", res.Dies))
	return res, nil
}

func (r *Reporter) buildGrid(ctx context.Context, sd *SheetData, headerRow, lastRow int, cols DieColumns) (*waferGrid, error) {
	g := &waferGrid{cells: make(map[[2]string]float64)}
	seenY := make(map[string]bool)
	seenX := make(map[string]bool)
	headers := sd.Row(headerRow, 0, sd.Cols()-1)

	for row := headerRow + 1; row <= lastRow; row++ {
		if (row-headerRow)%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		y := Normalize(sd.Cell(row, cols.Y))
		x := Normalize(sd.Cell(row, cols.X))
		if x == "" || y == "" {
			continue
		}
		ok, err := r.filter.Match(headers, sd.Row(row, 0, sd.Cols()-1))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row+1, err)
		}
		if !ok {
			continue
		}
		if !seenY[y] {
			seenY[y] = true
			g.ys = append(g.ys, y)
		}
		if !seenX[x] {
			seenX[x] = true
			g.xs = append(g.xs, x)
		}
		et, ok := Numeric(sd.Cell(row, cols.ET))
		if !ok {
			continue
		}
		key := [2]string{y, x}
		if cur, seen := g.cells[key]; !seen || et < cur {
			g.cells[key] = et
		}
	}
	sort.SliceStable(g.ys, func(i, j int) bool { return compareValues(g.ys[i], g.ys[j]) < 0 })
	sort.SliceStable(g.xs, func(i, j int) bool { return compareValues(g.xs[i], g.xs[j]) < 0 })
	return g, nil
}

// renderWafermap writes the grid from A1 with "No." in the corner, colours the
// dies and mirrors the header row and column on the far sides.
func (r *Reporter) renderWafermap(ctx context.Context, wb *Workbook, res *WafermapResult, g *waferGrid, etToMark map[string]string) error {
	sheet := res.Sheet
	lastRow, lastCol := len(g.ys), len(g.xs) // 0-based index of the last grid row/column

	header := make([]any, 0, lastCol+2)
	header = append(header, "No.")
	for _, x := range g.xs {
		header = append(header, x)
	}
	block := make([][]any, 0, lastRow+2)
	block = append(block, header)
	for _, y := range g.ys {
		line := make([]any, 0, lastCol+2)
		line = append(line, y)
		for _, x := range g.xs {
			if et, ok := g.cells[[2]string{y, x}]; ok {
				line = append(line, typedValue(Normalize(et)))
			} else {
				line = append(line, nil)
			}
		}
		line = append(line, y)
		block = append(block, line)
	}
	block[0] = append(block[0], "No.")
	block = append(block, append([]any(nil), block[0]...))

	origin := NewCellRef(sheet, 0, 0)
	if err := wb.SetValues(origin, block); err != nil {
		return err
	}

	whole := NewAreaRef(origin, NewCellRef(sheet, lastRow+1, lastCol+1))
	if err := wb.SetStyle(whole, mapCellStyle); err != nil {
		return err
	}
	// Row 1, its mirror, column A and its mirror.
	for _, area := range []AreaRef{
		NewAreaRef(origin, NewCellRef(sheet, 0, lastCol+1)),
		NewAreaRef(NewCellRef(sheet, lastRow+1, 0), NewCellRef(sheet, lastRow+1, lastCol+1)),
		NewAreaRef(origin, NewCellRef(sheet, lastRow+1, 0)),
		NewAreaRef(NewCellRef(sheet, 0, lastCol+1), NewCellRef(sheet, lastRow+1, lastCol+1)),
	} {
		if err := wb.SetStyle(area, mapHeaderStyle); err != nil {
			return err
		}
	}

	for i, y := range g.ys {
		if err := ctx.Err(); err != nil {
			return err
		}
		for j, x := range g.xs {
			et, ok := g.cells[[2]string{y, x}]
			if !ok {
				continue
			}
			cell := NewCellRef(sheet, i+1, j+1)
			color := r.dieColor(res, cell, Normalize(et), etToMark)
			if err := wb.SetStyle(NewAreaRef(cell, cell), CellStyle{Fill: color, Border: true, Center: true}); err != nil {
				return err
			}
			res.Dies++
		}
	}
	return wb.HideGridlines(sheet)
}

// dieColor maps an End Test through its mark to a fill, recording a warning
// whenever it has to fall back.
func (r *Reporter) dieColor(res *WafermapResult, cell CellRef, et string, etToMark map[string]string) string {
	mark, ok := etToMark[et]
	if !ok {
		res.Warnings = append(res.Warnings, WafermapWarning{
			Cell:    cell.CellName(),
			EndTest: et,
			Message: fmt.Sprintf("No C1_MARK found for ET '%s'", et),
		})
		return FallbackColor
	}
	color, ok := r.colors.Lookup(mark)
	if !ok {
		res.Warnings = append(res.Warnings, WafermapWarning{
			Cell:    cell.CellName(),
			EndTest: et,
			Mark:    Normalize(mark),
			Message: fmt.Sprintf("No color mapping for C1_MARK '%s'", Normalize(mark)),
		})
		return FallbackColor
	}
	return color
}
