package deliverables

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// LimitStatus is the outcome of looking an End Test number up in the limit table.
type LimitStatus int

const (
	NotFound        LimitStatus = iota // no TESTNO matches
	FoundNoLimit                       // matched, LOLIMIT blank
	FoundWithLimits                    // matched, LOLIMIT set
)

// String returns the status line shown to the user.
func (s LimitStatus) String() string {
	switch s {
	case FoundWithLimits:
		return "Found with Limits"
	case FoundNoLimit:
		return "Found with no Limit"
	default:
		return "No End Test No. found in the TESTNO Column"
	}
}

// ReferenceHeader is the header written above a matched limit table row.
var ReferenceHeader = []string{"TSNO", "TESTNO", "COMMENT", "MODE", "HILIMIT", "LOLIMIT"}

// EndTestResult is the limit table entry for an End Test number.
type EndTestResult struct {
	EndTestNo string
	Status    LimitStatus
	Reference []string // TSNO..LOLIMIT of the matched row
	Row       int      // 0-based row on the data sheet, -1 when not found
}

// CheckEndTest looks endTestNo up in the TESTNO column of the limit table and
// copies the matching row next to the fallout table. An empty endTestNo uses
// the top End Test of the fallout table (Pivot!D4).
func (r *Reporter) CheckEndTest(ctx context.Context, xlsxPath, endTestNo string) (*EndTestResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	wb, err := OpenWorkbook(xlsxPath)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	endTestNo = Normalize(endTestNo)
	if endTestNo == "" {
		if !wb.HasSheet(PivotSheet) {
			return nil, ErrNoFallout
		}
		pv, err := wb.Sheet(PivotSheet)
		if err != nil {
			return nil, err
		}
		endTestNo = Normalize(pv.Cell(3, 3))
		if endTestNo == "" {
			return nil, ErrNoFallout
		}
	}
	log := r.opts.logger.With(zap.String("xlsx", xlsxPath), zap.String("end_test", endTestNo))
	log.Info("checking end test no")

	sd, err := wb.DataSheet(r.opts.dataSheet)
	if err != nil {
		return nil, err
	}
	header, err := limitHeaderRow(sd)
	if err != nil {
		return nil, err
	}
	table := sd.ExpandTable(header, 0)

	res := &EndTestResult{EndTestNo: endTestNo, Status: NotFound, Row: -1}
	for row := header + 1; row <= header+table.Height-1; row++ {
		if Normalize(sd.Cell(row, 1)) == endTestNo {
			res.Row = row
			break
		}
	}
	if res.Row < 0 {
		log.Info("end test no not in limit table")
		return res, nil
	}

	ref := sd.Row(res.Row, 0, len(ReferenceHeader)-1)
	for i := range ref {
		ref[i] = strings.TrimSpace(ref[i])
	}
	res.Reference = ref
	res.Status = FoundNoLimit
	if ref[len(ref)-1] != "" {
		res.Status = FoundWithLimits
	}

	if !wb.HasSheet(PivotSheet) {
		if err := wb.ResetSheet(PivotSheet); err != nil {
			return nil, err
		}
	}
	if err := writeReference(wb, ref); err != nil {
		return nil, err
	}
	if err := wb.Save(); err != nil {
		return nil, err
	}
	log.Info("end test reference written", zap.Stringer("status", res.Status))
	return res, nil
}

func writeReference(wb *Workbook, ref []string) error {
	origin := NewCellRef(PivotSheet, 2, 7) // H3
	header := make([]any, len(ReferenceHeader))
	for i, h := range ReferenceHeader {
		header[i] = h
	}
	data := make([]any, len(ref))
	for i, v := range ref {
		data[i] = v
	}
	if err := wb.SetValues(origin, [][]any{header, data}); err != nil {
		return err
	}
	width := len(ReferenceHeader) - 1
	if err := wb.SetStyle(NewAreaRef(origin, origin.Offset(0, width)), headerStyle); err != nil {
		return err
	}
	return wb.SetStyle(NewAreaRef(origin.Offset(1, 0), origin.Offset(1, width)), boldDataStyle)
}
