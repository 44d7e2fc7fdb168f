package deliverables

import (
	"encoding/xml"
	"fmt"
	"path"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/xuri/excelize/v2"
)

// Workbook wraps an excelize file with the handful of range operations the
// report stages need: sheet snapshots, typed range writes, cached styles and
// pivot tables.
type Workbook struct {
	file       *excelize.File
	path       string
	sheets     map[string]*SheetData // snapshots read on first access
	styleCache map[CellStyle]int
}

// SheetData holds an in-memory snapshot of one sheet's raw cell values.
type SheetData struct {
	Name  string
	rows  [][]string
	width int
}

// CellStyle describes the formatting applied to a range. It is comparable so
// it doubles as the style cache key.
type CellStyle struct {
	Fill      string // RRGGBB background, empty for none
	FontColor string // RRGGBB
	Bold      bool
	Border    bool // thin border on all four sides
	Center    bool // horizontal and vertical centre, no indent
}

// NewWorkbook wraps an already opened excelize file. path is where Save writes.
func NewWorkbook(f *excelize.File, path string) *Workbook {
	return &Workbook{
		file:       f,
		path:       path,
		sheets:     make(map[string]*SheetData),
		styleCache: make(map[CellStyle]int),
	}
}

// OpenWorkbook opens an xlsx file for in-place editing.
func OpenWorkbook(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %q: %w", path, err)
	}
	return NewWorkbook(f, path), nil
}

// SheetNames returns all sheet names in workbook order.
func (wb *Workbook) SheetNames() []string {
	return wb.file.GetSheetList()
}

// HasSheet reports whether a sheet with the given name exists.
func (wb *Workbook) HasSheet(name string) bool {
	idx, err := wb.file.GetSheetIndex(name)
	return err == nil && idx >= 0
}

// Sheet returns a snapshot of the named sheet. Snapshots are cached until the
// sheet is written through the Workbook.
func (wb *Workbook) Sheet(name string) (*SheetData, error) {
	if sd, ok := wb.sheets[name]; ok {
		return sd, nil
	}
	if !wb.HasSheet(name) {
		return nil, fmt.Errorf("sheet %q: %w", name, ErrSheetNotFound)
	}
	rows, err := wb.file.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read rows from sheet %q: %w", name, err)
	}
	sd := &SheetData{Name: name, rows: rows}
	for _, r := range rows {
		if len(r) > sd.width {
			sd.width = len(r)
		}
	}
	wb.sheets[name] = sd
	return sd, nil
}

// DataSheet returns the named sheet, or the first sheet when name is empty.
func (wb *Workbook) DataSheet(name string) (*SheetData, error) {
	if name == "" {
		list := wb.file.GetSheetList()
		if len(list) == 0 {
			return nil, fmt.Errorf("workbook %q has no sheets: %w", wb.path, ErrSheetNotFound)
		}
		name = list[0]
	}
	return wb.Sheet(name)
}

// SetValues writes a block of values with its top-left corner at ref.
// Strings holding numbers are written as numbers; nil leaves the cell blank.
func (wb *Workbook) SetValues(ref CellRef, rows [][]any) error {
	delete(wb.sheets, ref.Sheet)
	for i, row := range rows {
		vals := make([]any, len(row))
		for j, v := range row {
			if s, ok := v.(string); ok {
				vals[j] = typedValue(s)
				continue
			}
			vals[j] = v
		}
		cell := ref.Offset(i, 0).CellName()
		if err := wb.file.SetSheetRow(ref.Sheet, cell, &vals); err != nil {
			return fmt.Errorf("write row at %s!%s: %w", ref.Sheet, cell, err)
		}
	}
	return nil
}

// SetStyle applies style to every cell of area.
func (wb *Workbook) SetStyle(area AreaRef, style CellStyle) error {
	id, err := wb.styleID(style)
	if err != nil {
		return err
	}
	return wb.file.SetCellStyle(area.First.Sheet, area.First.CellName(), area.Last.CellName(), id)
}

func (wb *Workbook) styleID(style CellStyle) (int, error) {
	if id, ok := wb.styleCache[style]; ok {
		return id, nil
	}
	s := &excelize.Style{}
	if style.Fill != "" {
		s.Fill = excelize.Fill{Type: "pattern", Color: []string{style.Fill}, Pattern: 1}
	}
	if style.Bold || style.FontColor != "" {
		s.Font = &excelize.Font{Bold: style.Bold, Color: style.FontColor}
	}
	if style.Border {
		for _, side := range []string{"left", "top", "right", "bottom"} {
			s.Border = append(s.Border, excelize.Border{Type: side, Color: "000000", Style: 1})
		}
	}
	if style.Center {
		s.Alignment = &excelize.Alignment{Horizontal: "center", Vertical: "center"}
	}
	id, err := wb.file.NewStyle(s)
	if err != nil {
		return 0, fmt.Errorf("create style %+v: %w", style, err)
	}
	wb.styleCache[style] = id
	return id, nil
}

// ResetSheet creates the named sheet, replacing any existing sheet of that
// name with an empty one. Pivot tables on the old sheet are deleted with it.
func (wb *Workbook) ResetSheet(name string) error {
	delete(wb.sheets, name)
	if wb.HasSheet(name) {
		pivots, err := wb.file.GetPivotTables(name)
		if err != nil {
			return fmt.Errorf("list pivot tables on %q: %w", name, err)
		}
		for _, pt := range pivots {
			if err := wb.file.DeletePivotTable(name, pt.Name); err != nil {
				return fmt.Errorf("delete pivot table %s: %w", pt.Name, err)
			}
		}
		if err := wb.file.DeleteSheet(name); err != nil {
			return fmt.Errorf("clear sheet %q: %w", name, err)
		}
	}
	if _, err := wb.file.NewSheet(name); err != nil {
		return fmt.Errorf("create sheet %q: %w", name, err)
	}
	wb.file.SetActiveSheet(0)
	return wb.prunePivotParts()
}

// prunePivotParts drops pivot table and cache parts that no relationship
// points at. excelize numbers new pivot parts by counting the existing ones,
// so a recreated pivot reuses pivotTable1.xml instead of piling up copies.
func (wb *Workbook) prunePivotParts() error {
	for {
		refs, err := wb.relTargets()
		if err != nil {
			return err
		}
		removed := false
		wb.file.Pkg.Range(func(k, _ any) bool {
			part := k.(string)
			if !isPivotPart(part) || refs[part] {
				return true
			}
			rels := path.Join(path.Dir(part), "_rels", path.Base(part)+".rels")
			wb.file.Pkg.Delete(part)
			wb.file.Pkg.Delete(rels)
			wb.file.Relationships.Delete(rels)
			if ct := wb.file.ContentTypes; ct != nil {
				kept := ct.Overrides[:0]
				for _, o := range ct.Overrides {
					if o.PartName != "/"+part {
						kept = append(kept, o)
					}
				}
				ct.Overrides = kept
			}
			removed = true
			return true
		})
		if !removed {
			return nil
		}
	}
}

type relationshipList struct {
	Items []struct {
		Target     string `xml:"Target,attr"`
		TargetMode string `xml:"TargetMode,attr"`
	} `xml:"Relationship"`
}

// relTargets resolves every internal relationship target of the package to
// its part name. Relationships excelize has already parsed are taken from
// memory since the package bytes are only refreshed on save.
func (wb *Workbook) relTargets() (map[string]bool, error) {
	sources := map[string][]byte{}
	var err error
	wb.file.Pkg.Range(func(k, v any) bool {
		if name := k.(string); strings.HasSuffix(name, ".rels") {
			if b, ok := v.([]byte); ok {
				sources[name] = b
			}
		}
		return true
	})
	wb.file.Relationships.Range(func(k, v any) bool {
		var b []byte
		if b, err = xml.Marshal(v); err != nil {
			return false
		}
		sources[k.(string)] = b
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("read relationships: %w", err)
	}

	refs := map[string]bool{}
	for rels, data := range sources {
		var list relationshipList
		if err := xml.Unmarshal(data, &list); err != nil {
			return nil, fmt.Errorf("parse relationships %s: %w", rels, err)
		}
		base := path.Dir(path.Dir(rels))
		for _, r := range list.Items {
			if r.TargetMode == "External" {
				continue
			}
			if strings.HasPrefix(r.Target, "/") {
				refs[strings.TrimPrefix(r.Target, "/")] = true
				continue
			}
			refs[path.Join(base, r.Target)] = true
		}
	}
	return refs, nil
}

func isPivotPart(name string) bool {
	if !strings.HasSuffix(name, ".xml") {
		return false
	}
	for _, prefix := range []string{
		"xl/pivotTables/pivotTable",
		"xl/pivotCache/pivotCacheDefinition",
		"xl/pivotCache/pivotCacheRecords",
	} {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

// HideGridlines turns off gridlines on the sheet's default view.
func (wb *Workbook) HideGridlines(sheet string) error {
	off := false
	return wb.file.SetSheetView(sheet, 0, &excelize.ViewOptions{ShowGridLines: &off})
}

// AddPivotTable adds a native pivot table. Its values are computed by the
// spreadsheet application on open.
func (wb *Workbook) AddPivotTable(opts *excelize.PivotTableOptions) error {
	if err := wb.file.AddPivotTable(opts); err != nil {
		return fmt.Errorf("add pivot table %s: %w", opts.Name, err)
	}
	return nil
}

// Save writes the workbook back to its path.
func (wb *Workbook) Save() error {
	if err := wb.file.SaveAs(wb.path); err != nil {
		return fmt.Errorf("save workbook %q: %w", wb.path, err)
	}
	return nil
}

// Close closes the underlying excelize file.
func (wb *Workbook) Close() error {
	return wb.file.Close()
}

// SaveAndClose saves and always closes, reporting both failures.
func (wb *Workbook) SaveAndClose() error {
	var result *multierror.Error
	if err := wb.Save(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := wb.Close(); err != nil {
		result = multierror.Append(result, fmt.Errorf("close workbook %q: %w", wb.path, err))
	}
	return result.ErrorOrNil()
}

// Cell returns the raw value at (row, col), or "" outside the used range.
func (s *SheetData) Cell(row, col int) string {
	if row < 0 || row >= len(s.rows) || col < 0 || col >= len(s.rows[row]) {
		return ""
	}
	return s.rows[row][col]
}

// Rows returns the number of used rows.
func (s *SheetData) Rows() int {
	return len(s.rows)
}

// Cols returns the width of the widest used row.
func (s *SheetData) Cols() int {
	return s.width
}

// Row returns the cells of row from column first to last inclusive.
func (s *SheetData) Row(row, first, last int) []string {
	out := make([]string, 0, last-first+1)
	for c := first; c <= last; c++ {
		out = append(out, s.Cell(row, c))
	}
	return out
}

// FindInColumn returns the first row whose cell in col satisfies match.
func (s *SheetData) FindInColumn(col int, match func(string) bool) (int, bool) {
	for r := range s.rows {
		if match(s.Cell(r, col)) {
			return r, true
		}
	}
	return 0, false
}

// EndDown mimics Ctrl+Down from (row, col): inside a filled block it stops on
// the block's last cell, otherwise on the next filled cell below. With nothing
// below it stops on the last used row rather than the sheet limit.
func (s *SheetData) EndDown(row, col int) int {
	last := len(s.rows) - 1
	if s.Cell(row, col) != "" && s.Cell(row+1, col) != "" {
		r := row + 1
		for r < last && s.Cell(r+1, col) != "" {
			r++
		}
		return r
	}
	for r := row + 1; r <= last; r++ {
		if s.Cell(r, col) != "" {
			return r
		}
	}
	if last > row {
		return last
	}
	return row
}

// EndRight mimics Ctrl+Right from (row, col), capped at the used width.
func (s *SheetData) EndRight(row, col int) int {
	last := s.width - 1
	if s.Cell(row, col) != "" && s.Cell(row, col+1) != "" {
		c := col + 1
		for c < last && s.Cell(row, c+1) != "" {
			c++
		}
		return c
	}
	for c := col + 1; c <= last; c++ {
		if s.Cell(row, c) != "" {
			return c
		}
	}
	if last > col {
		return last
	}
	return col
}

// ExpandTable returns the size of the current region anchored at (row, col),
// growing down and right while the neighbouring cells are filled.
func (s *SheetData) ExpandTable(row, col int) Size {
	size := Size{Width: 1, Height: 1}
	if s.Cell(row+1, col) != "" {
		size.Height = s.EndDown(row, col) - row + 1
	}
	if s.Cell(row, col+1) != "" {
		size.Width = s.EndRight(row, col) - col + 1
	}
	return size
}
