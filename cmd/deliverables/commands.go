package main

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javajack/deliverables"
)

func (a *app) convertCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "convert <log.csv>",
		Short: "Convert a CSV test log into an xlsx workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var extra []deliverables.Option
			if out != "" {
				extra = append(extra, deliverables.WithOutputPath(out))
			}
			r, err := a.reporter(extra...)
			if err != nil {
				return err
			}
			res, err := r.Convert(cmd.Context(), args[0])
			a.printImport(args[0], res)
			return err
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "workbook path (default: next to the CSV)")
	return cmd
}

func (a *app) marksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "marks <log.xlsx>",
		Short: "List the C1_MARK values of a workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.reporter()
			if err != nil {
				return err
			}
			marks, err := r.ListMarks(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			for _, m := range marks {
				a.status.Info("%s", m)
			}
			return nil
		},
	}
}

func (a *app) pivotCmd() *cobra.Command {
	var mark string
	cmd := &cobra.Command{
		Use:   "pivot <log.xlsx>",
		Short: "Write the fallout table for one C1_MARK to the Pivot sheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.reporter()
			if err != nil {
				return err
			}
			table, err := r.GeneratePivot(cmd.Context(), args[0], mark)
			if err != nil {
				if errors.Is(err, deliverables.ErrNoMarkSelected) {
					a.status.Error("Please select a C1_MARK value (--mark).")
				}
				return err
			}
			a.printFallout(table)
			return nil
		},
	}
	cmd.Flags().StringVarP(&mark, "mark", "m", "", "C1_MARK value to summarise")
	return cmd
}

func (a *app) endTestCmd() *cobra.Command {
	var endTest string
	cmd := &cobra.Command{
		Use:   "endtest <log.xlsx>",
		Short: "Look the top End Test number up in the limit table",
		Long: `Looks an End Test number up in the TESTNO column of the limit table and
copies the matching row to Pivot!H3. Without --end-test the top row of the
fallout table (Pivot!D4) is used, so run "pivot" first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.reporter()
			if err != nil {
				return err
			}
			res, err := r.CheckEndTest(cmd.Context(), args[0], endTest)
			if err != nil {
				return err
			}
			a.printEndTest(res)
			return nil
		},
	}
	cmd.Flags().StringVarP(&endTest, "end-test", "e", "", "End Test number (default: top of the fallout table)")
	return cmd
}

func (a *app) wafermapCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "wafermap <log.xlsx>",
		Short: "Render the minimum End Test per die as a coloured wafermap",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.reporter()
			if err != nil {
				return err
			}
			res, err := r.GenerateWafermap(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			a.printWafermap(res)
			return nil
		},
	}
}

func (a *app) runCmd() *cobra.Command {
	var mark string
	cmd := &cobra.Command{
		Use:   "run <log.csv>",
		Short: "Convert, then build the fallout table, End Test reference and wafermap",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.reporter()
			if err != nil {
				return err
			}
			res, err := r.Run(cmd.Context(), args[0], mark)
			if res != nil {
				a.printImport(args[0], res.Import)
				if res.Fallout != nil {
					a.printFallout(res.Fallout)
				}
				if res.EndTest != nil {
					a.printEndTest(res.EndTest)
				}
				if res.Wafermap != nil {
					a.printWafermap(res.Wafermap)
				}
			}
			return err
		},
	}
	cmd.Flags().StringVarP(&mark, "mark", "m", "", "C1_MARK value to summarise (default: first found)")
	return cmd
}

func (a *app) validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <log.xlsx>",
		Short: "Check a workbook's layout without modifying it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.reporter()
			if err != nil {
				return err
			}
			issues, err := r.Validate(args[0])
			if err != nil {
				return err
			}
			for _, issue := range issues {
				if issue.Severity == deliverables.SeverityError {
					a.status.Error("%s", issue)
				} else {
					a.status.Warn("%s", issue)
				}
			}
			if len(issues) == 0 {
				a.status.Success("No issues found.")
			}
			return deliverables.IssuesError(issues)
		},
	}
}

func (a *app) describeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "describe <log.xlsx>",
		Short: "Show the layout the report stages will use",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.reporter()
			if err != nil {
				return err
			}
			out, err := r.Describe(args[0])
			if err != nil {
				return err
			}
			a.status.Text(out)
			return nil
		},
	}
}

func (a *app) printImport(csvPath string, res *deliverables.ImportResult) {
	if res == nil {
		return
	}
	a.status.Success("Conversion complete: %s -> %s", csvPath, res.OutFile)
	a.status.Info("File saved at: %s (sheet %q, %d rows)", res.OutFile, res.SheetName, res.Rows)
	if len(res.Marks) > 0 {
		a.status.Success("Filter options loaded: %s", strings.Join(res.Marks, " "))
	}
}

func (a *app) printFallout(t *deliverables.FalloutTable) {
	a.status.Text(deliverables.FormatFallout(t))
	if top, ok := t.Top(); ok {
		a.status.Info("Top End Test No.: %s (%d)", top.EndTest, top.Count)
	}
	if !t.HasTheoretical {
		a.status.Warn("THEORETICAL_NUM not found; fallout percentages are 0.00%%.")
	}
	if a.cfg.NativePivot && !t.NativePivot {
		a.status.Warn("Native pivot table could not be added; see the log.")
	}
	a.status.Success("Successfully generated table for C1_MARK:%s", t.Mark)
}

func (a *app) printEndTest(res *deliverables.EndTestResult) {
	switch res.Status {
	case deliverables.FoundWithLimits:
		a.status.Text(deliverables.FormatReference(res))
		a.status.Success("%s: %s", res.EndTestNo, res.Status)
	case deliverables.FoundNoLimit:
		a.status.Text(deliverables.FormatReference(res))
		a.status.Warn("%s: %s", res.EndTestNo, res.Status)
	default:
		a.status.Error("%s: %s", res.EndTestNo, res.Status)
	}
}

func (a *app) printWafermap(res *deliverables.WafermapResult) {
	for _, w := range res.Warnings {
		a.status.Warn("%s: %s", w.Cell, w.Message)
	}
	a.status.Success("Wafermap created in sheet %s (%d x %d, %d dies)", res.Sheet, res.Cols, res.Rows, res.Dies)
}
