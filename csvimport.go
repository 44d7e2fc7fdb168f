package deliverables

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ImportResult describes a converted test log.
type ImportResult struct {
	OutFile   string   // written workbook
	SheetName string   // data sheet, named after the CSV file
	Rows      int      // CSV records written
	Marks     []string // distinct C1_MARK values, first-seen order
}

var encodingAliases = map[string]string{
	"sjis":   "shift_jis",
	"cp932":  "shift_jis",
	"ms932":  "shift_jis",
	"cp1252": "windows-1252",
	"latin1": "iso-8859-1",
}

// lookupEncoding resolves an encoding label. UTF-8 input has any byte order
// mark stripped.
func lookupEncoding(name string) (encoding.Encoding, error) {
	label := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := encodingAliases[label]; ok {
		label = alias
	}
	switch label {
	case "", "utf-8", "utf8", "utf-8-sig":
		return unicode.UTF8BOM, nil
	case "utf-16":
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM), nil
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("unsupported encoding %q: %w", name, err)
	}
	return enc, nil
}

// readCSV reads all records of a CSV file. Rows may have differing lengths.
func readCSV(path, encodingName string) ([][]string, error) {
	enc, err := lookupEncoding(encodingName)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv %q: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(transform.NewReader(f, enc.NewDecoder()))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	// encoding/csv skips empty lines, but blank rows separate the tables of
	// a test log, so they are restored from the record line numbers.
	var records [][]string
	next := 1
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv %q: %w", path, err)
		}
		line, _ := reader.FieldPos(0)
		for ; next < line; next++ {
			records = append(records, nil)
		}
		records = append(records, rec)
		last := len(rec) - 1
		lastLine, _ := reader.FieldPos(last)
		next = lastLine + strings.Count(rec[last], "\n") + 1
	}
	return records, nil
}

// Convert imports a CSV test log into a new workbook and loads the C1_MARK
// values from it. When the marker header is missing the workbook is still
// written and the result is returned together with ErrMarkerNotFound.
func (r *Reporter) Convert(ctx context.Context, csvPath string) (*ImportResult, error) {
	log := r.opts.logger.With(zap.String("csv", csvPath))
	log.Info("converting csv")

	records, err := readCSV(csvPath, r.opts.encoding)
	if err != nil {
		return nil, err
	}

	base := strings.TrimSuffix(filepath.Base(csvPath), filepath.Ext(csvPath))
	sheet := SafeSheetName(base)
	if sheet == "" {
		sheet = "Sheet1"
	}
	out := r.opts.outputPath
	if out == "" {
		out = strings.TrimSuffix(csvPath, filepath.Ext(csvPath)) + ".xlsx"
	}

	f := excelize.NewFile()
	if sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			f.Close()
			return nil, fmt.Errorf("name sheet %q: %w", sheet, err)
		}
	}
	wb := NewWorkbook(f, out)

	rows := make([][]any, len(records))
	for i, rec := range records {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				wb.Close()
				return nil, err
			}
		}
		vals := make([]any, len(rec))
		for j, field := range rec {
			vals[j] = ParseValue(field)
		}
		rows[i] = vals
	}
	if err := wb.SetValues(NewCellRef(sheet, 0, 0), rows); err != nil {
		wb.Close()
		return nil, err
	}
	if err := wb.SaveAndClose(); err != nil {
		return nil, err
	}
	log.Info("workbook written", zap.String("xlsx", out), zap.Int("rows", len(records)))

	res := &ImportResult{OutFile: out, SheetName: sheet, Rows: len(records)}
	marks, err := r.listMarks(out, sheet)
	if err != nil {
		return res, err
	}
	res.Marks = marks
	return res, nil
}

// ListMarks returns the distinct C1_MARK values of an existing workbook.
func (r *Reporter) ListMarks(ctx context.Context, xlsxPath string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.listMarks(xlsxPath, r.opts.dataSheet)
}

func (r *Reporter) listMarks(path, sheet string) ([]string, error) {
	wb, err := OpenWorkbook(path)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	sd, err := wb.DataSheet(sheet)
	if err != nil {
		return nil, err
	}
	header, err := findMarkerRow(sd)
	if err != nil {
		return nil, err
	}
	marks := markValues(sd, header)
	r.opts.logger.Debug("filter options loaded", zap.Strings("marks", marks))
	return marks, nil
}
