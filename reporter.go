package deliverables

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
)

// Reporter runs the report stages against a test log workbook. Each stage
// opens the workbook, edits it and saves it in place.
type Reporter struct {
	opts   *Options
	colors ColorMap
	filter *RowFilter
	now    func() time.Time
}

// NewReporter creates a Reporter with the given options. It fails when the
// filter expression does not compile or a colour override is malformed.
func NewReporter(opts ...Option) (*Reporter, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	colors, err := DefaultColorMap().Merge(o.colorOverrides)
	if err != nil {
		return nil, err
	}
	filter, err := NewRowFilter(o.filter)
	if err != nil {
		return nil, err
	}
	return &Reporter{opts: o, colors: colors, filter: filter, now: time.Now}, nil
}

// RunResult collects the outcome of every stage of Run.
type RunResult struct {
	Import   *ImportResult
	Fallout  *FalloutTable
	EndTest  *EndTestResult
	Wafermap *WafermapResult
}

// Run converts the CSV and then builds the fallout table for mark, checks the
// top End Test number against the limit table and renders the wafermap. An
// empty mark selects the first mark found in the log. A failed conversion
// stops the run. After that the wafermap is built regardless of the other
// stages and the End Test check only needs the fallout table; every stage
// error is returned together with the partial result.
func (r *Reporter) Run(ctx context.Context, csvPath, mark string) (*RunResult, error) {
	res := &RunResult{}
	var err error

	res.Import, err = r.Convert(ctx, csvPath)
	if err != nil {
		return res, fmt.Errorf("convert: %w", err)
	}
	path := res.Import.OutFile
	var errs *multierror.Error

	if mark == "" && len(res.Import.Marks) > 0 {
		mark = res.Import.Marks[0]
		r.opts.logger.Info("no mark given, using first", zap.String("mark", mark))
	}
	switch {
	case mark == "":
		errs = multierror.Append(errs, fmt.Errorf("pivot: %w", ErrNoMarkSelected))
	default:
		if res.Fallout, err = r.GeneratePivot(ctx, path, mark); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("pivot: %w", err))
			break
		}
		if res.EndTest, err = r.CheckEndTest(ctx, path, ""); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("end test: %w", err))
		}
	}
	if res.Wafermap, err = r.GenerateWafermap(ctx, path); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("wafermap: %w", err))
	}

	if errs != nil && len(errs.Errors) == 1 {
		return res, errs.Errors[0]
	}
	return res, errs.ErrorOrNil()
}

// Convert imports csvPath into a workbook with a one-off Reporter.
func Convert(ctx context.Context, csvPath string, opts ...Option) (*ImportResult, error) {
	r, err := NewReporter(opts...)
	if err != nil {
		return nil, err
	}
	return r.Convert(ctx, csvPath)
}

// Run converts csvPath and builds every report with a one-off Reporter.
func Run(ctx context.Context, csvPath, mark string, opts ...Option) (*RunResult, error) {
	r, err := NewReporter(opts...)
	if err != nil {
		return nil, err
	}
	return r.Run(ctx, csvPath, mark)
}
