package deliverables

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// die is one row of the die table.
type die struct {
	site, x, y int
	mark, ft   string
	et         string
}

// sampleDies covers one retested position (2,2) whose lower End Test wins.
var sampleDies = []die{
	{1, 1, 1, "/", "", "1000"},
	{2, 2, 1, "Q", "F", "1001"},
	{1, 3, 1, "Q", "F", "1001"},
	{2, 1, 2, "Q", "F", "1002"},
	{1, 2, 2, "2", "F", "1003"},
	{2, 3, 2, "/", "", "1000"},
	{1, 2, 2, "Q", "F", "1001"},
}

// sampleLog builds a tester log:
//
//	row 2:  THEORETICAL_NUM | | 200
//	row 3:  SLOT, row 4: 7
//	row 6:  limit table TSNO..LOLIMIT with TESTNO 1001..1003
//	row 11: die table SITE X Y BIN HB SB C1_MARK FT ET
func sampleLog(dies []die) [][]string {
	rows := [][]string{
		{"LOT", "AB123"},
		{"THEORETICAL_NUM", "", "200"},
		{"SLOT"},
		{"7"},
		{},
		{"TSNO", "TESTNO", "COMMENT", "MODE", "HILIMIT", "LOLIMIT"},
		{"1", "1001", "OS", "V", "1.2", "0.2"},
		{"2", "1002", "LEAK", "A", "5", ""},
		{"3", "1003", "IDD", "A", "10", "1"},
		{},
		{"SITE", "X", "Y", "BIN", "HB", "SB", "C1_MARK", "FT", "ET"},
	}
	for _, d := range dies {
		rows = append(rows, []string{
			strconv.Itoa(d.site), strconv.Itoa(d.x), strconv.Itoa(d.y),
			"1", "1", "1", d.mark, d.ft, d.et,
		})
	}
	return rows
}

// writeCSV writes rows as a CSV file named name in a temp directory.
func writeCSV(t *testing.T, name string, rows [][]string) string {
	t.Helper()
	var b strings.Builder
	for _, r := range rows {
		b.WriteString(strings.Join(r, ","))
		b.WriteString("\r\n")
	}
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

// createLogWorkbook writes rows to the first sheet of a new workbook, typed
// the way a CSV import would type them.
func createLogWorkbook(t *testing.T, sheet string, rows [][]string) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetName("Sheet1", sheet))
	for i, r := range rows {
		vals := make([]any, len(r))
		for j, v := range r {
			vals[j] = ParseValue(v)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &vals))
	}
	path := filepath.Join(t.TempDir(), sheet+".xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

// createSampleWorkbook is createLogWorkbook over sampleLog(sampleDies).
func createSampleWorkbook(t *testing.T) string {
	t.Helper()
	return createLogWorkbook(t, "lot7", sampleLog(sampleDies))
}

// newSheetData builds an in-memory sheet snapshot.
func newSheetData(rows ...[]string) *SheetData {
	sd := &SheetData{Name: "test", rows: rows}
	for _, r := range rows {
		if len(r) > sd.width {
			sd.width = len(r)
		}
	}
	return sd
}

// readSheet returns the raw rows of sheet.
func readSheet(t *testing.T, path, sheet string) [][]string {
	t.Helper()
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	return rows
}

// cellFill returns the first fill colour of a cell's style, or "".
func cellFill(t *testing.T, path, sheet, cell string) string {
	t.Helper()
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	id, err := f.GetCellStyle(sheet, cell)
	require.NoError(t, err)
	style, err := f.GetStyle(id)
	require.NoError(t, err)
	if len(style.Fill.Color) == 0 {
		return ""
	}
	return strings.TrimPrefix(strings.ToUpper(style.Fill.Color[0]), "#")
}

func newTestReporter(t *testing.T, opts ...Option) *Reporter {
	t.Helper()
	r, err := NewReporter(opts...)
	require.NoError(t, err)
	return r
}

// sheetNames lists the sheets of the workbook at path.
func sheetNames(t *testing.T, path string) []string {
	t.Helper()
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	return f.GetSheetList()
}

// packageParts returns the raw parts of the xlsx package at path by name.
func packageParts(t *testing.T, path string) map[string]string {
	t.Helper()
	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer zr.Close()
	parts := make(map[string]string, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		parts[f.Name] = string(data)
	}
	return parts
}
