package deliverables

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// Severity indicates the severity of a validation issue.
type Severity int

const (
	SeverityError   Severity = iota // Every stage will fail
	SeverityWarning                 // Some stage will fail or degrade
)

// ValidationIssue represents a single problem found in a test log workbook.
type ValidationIssue struct {
	Severity Severity
	CellRef  CellRef
	Message  string
}

// String formats the issue as "[ERROR] lot7!G12: message" or "[WARN] ...".
func (v ValidationIssue) String() string {
	sev := "ERROR"
	if v.Severity == SeverityWarning {
		sev = "WARN"
	}
	return fmt.Sprintf("[%s] %s: %s", sev, v.CellRef, v.Message)
}

// IssuesError folds the error-severity issues into one error, or nil when
// there are none.
func IssuesError(issues []ValidationIssue) error {
	var result *multierror.Error
	for _, issue := range issues {
		if issue.Severity == SeverityError {
			result = multierror.Append(result, errors.New(issue.String()))
		}
	}
	return result.ErrorOrNil()
}

// Validate checks a workbook's layout without modifying it.
func Validate(xlsxPath string, opts ...Option) ([]ValidationIssue, error) {
	r, err := NewReporter(opts...)
	if err != nil {
		return nil, err
	}
	return r.Validate(xlsxPath)
}

// Validate opens the workbook and checks every header the stages look for.
// A non-nil error means the workbook could not be opened at all; layout
// problems are returned as issues.
func (r *Reporter) Validate(xlsxPath string) ([]ValidationIssue, error) {
	wb, err := OpenWorkbook(xlsxPath)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	sd, err := wb.DataSheet(r.opts.dataSheet)
	if err != nil {
		return nil, err
	}

	var issues []ValidationIssue
	issues = append(issues, r.validateColumnA(sd)...)
	issues = append(issues, r.validateLimitTable(sd)...)
	issues = append(issues, r.validateDieTable(sd)...)
	return issues, nil
}

func (r *Reporter) validateColumnA(sd *SheetData) []ValidationIssue {
	var issues []ValidationIssue
	origin := NewCellRef(sd.Name, 0, 0)
	if row, ok := sd.FindInColumn(0, equalFold(theoreticalLabel)); !ok {
		issues = append(issues, ValidationIssue{
			Severity: SeverityWarning,
			CellRef:  origin,
			Message:  "THEORETICAL_NUM not found in column A; fallout percentages will be 0.00%",
		})
	} else if _, ok := Numeric(sd.Cell(row, 2)); !ok {
		issues = append(issues, ValidationIssue{
			Severity: SeverityWarning,
			CellRef:  NewCellRef(sd.Name, row, 2),
			Message:  fmt.Sprintf("THEORETICAL_NUM value %q is not a number", sd.Cell(row, 2)),
		})
	}
	if _, err := slotNumber(sd); err != nil {
		issues = append(issues, ValidationIssue{
			Severity: SeverityWarning,
			CellRef:  origin,
			Message:  err.Error() + "; the wafermap cannot be generated",
		})
	}
	return issues
}

func (r *Reporter) validateLimitTable(sd *SheetData) []ValidationIssue {
	if _, err := limitHeaderRow(sd); err != nil {
		return []ValidationIssue{{
			Severity: SeverityWarning,
			CellRef:  NewCellRef(sd.Name, 0, limitCol),
			Message:  err.Error() + "; End Test numbers cannot be checked",
		}}
	}
	return nil
}

func (r *Reporter) validateDieTable(sd *SheetData) []ValidationIssue {
	headerRow, err := findMarkerRow(sd)
	if err != nil {
		return []ValidationIssue{{
			Severity: SeverityError,
			CellRef:  NewCellRef(sd.Name, 0, markerCol),
			Message:  err.Error(),
		}}
	}
	marker := NewCellRef(sd.Name, headerRow, markerCol)

	var issues []ValidationIssue
	etCol, ok := findHeaderRight(sd, headerRow, markerCol, "ET")
	if !ok {
		issues = append(issues, ValidationIssue{
			Severity: SeverityError,
			CellRef:  marker,
			Message:  "'ET' column not found to the right of C1_MARK",
		})
	} else if _, ok := findFTColumn(sd, headerRow, etCol); !ok {
		issues = append(issues, ValidationIssue{
			Severity: SeverityWarning,
			CellRef:  marker,
			Message:  "'FT' column not found between C1_MARK and ET; the pivot table cannot count failures",
		})
	}
	if _, err := findDieColumns(sd, headerRow); err != nil {
		issues = append(issues, ValidationIssue{
			Severity: SeverityWarning,
			CellRef:  NewCellRef(sd.Name, headerRow, 0),
			Message:  err.Error() + "; the wafermap cannot be generated",
		})
	}

	marks := markValues(sd, headerRow)
	if len(marks) == 0 {
		issues = append(issues, ValidationIssue{
			Severity: SeverityError,
			CellRef:  marker,
			Message:  ErrNoData.Error(),
		})
	}
	var unmapped []string
	for _, m := range marks {
		if _, ok := r.colors.Lookup(m); !ok {
			unmapped = append(unmapped, m)
		}
	}
	if len(unmapped) > 0 {
		issues = append(issues, ValidationIssue{
			Severity: SeverityWarning,
			CellRef:  marker,
			Message:  fmt.Sprintf("no colour mapping for C1_MARK %s; those dies will be grey", strings.Join(unmapped, ", ")),
		})
	}
	return issues
}
