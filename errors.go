package deliverables

import "errors"

var (
	// ErrSheetNotFound is returned when a required sheet does not exist.
	ErrSheetNotFound = errors.New("sheet not found")

	// ErrMarkerNotFound means column G holds no C1_MARK header cell.
	ErrMarkerNotFound = errors.New("'C1_MARK' not found in column G")

	// ErrColumnNotFound means a required header (ET, FT, X, Y) is missing from the marker row.
	ErrColumnNotFound = errors.New("required column not found in header row")

	// ErrNoMarkSelected is returned by the pivot stage when no mark was given.
	ErrNoMarkSelected = errors.New("no C1_MARK value selected")

	// ErrUnknownMark is returned when the selected mark does not occur in the data.
	ErrUnknownMark = errors.New("selected C1_MARK value not found")

	// ErrNoData means the die table has a header but no rows.
	ErrNoData = errors.New("no data rows below the C1_MARK header")

	// ErrNoFallout is returned when the end test check runs before a pivot was generated.
	ErrNoFallout = errors.New("no fallout table; generate the pivot table first")

	// ErrLimitTableNotFound means End(Down) from F1 does not land on LOLIMIT.
	ErrLimitTableNotFound = errors.New("LOLIMIT not found in column F")

	// ErrSlotNotFound means column A has no SLOT header cell.
	ErrSlotNotFound = errors.New("SLOT header not found in column A")

	// ErrSlotEmpty means the cell below the SLOT header is blank or not a number.
	ErrSlotEmpty = errors.New("SLOT value below header is empty")
)
