package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/javajack/deliverables"
	"github.com/javajack/deliverables/internal/config"
	"github.com/javajack/deliverables/internal/logging"
)

// app carries the global flags and what PersistentPreRunE builds from them.
type app struct {
	configPath string
	verbose    bool
	encoding   string
	where      string
	dataSheet  string
	noPivot    bool

	cfg    *config.Config
	log    *logging.Logger
	status *status
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "deliverables",
		Short: "Build fallout tables and wafermaps from wafer test CSV logs",
		Long: `deliverables converts a tester CSV log into an Excel workbook and adds:
  - a fallout table per End Test number for one C1_MARK (sheet "Pivot")
  - the limit table entry of the top failing End Test
  - a colour-coded wafermap of the minimum End Test per die

Run "deliverables run log.csv" to do all of it at once.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Close()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", "", "YAML config file")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "debug logging on stderr")
	pf.StringVar(&a.encoding, "encoding", "", "CSV character encoding (default utf-8)")
	pf.StringVar(&a.where, "where", "", "only use die rows matching this expression, e.g. 'SITE == 1'")
	pf.StringVar(&a.dataSheet, "sheet", "", "data sheet name (default: first sheet)")
	pf.BoolVar(&a.noPivot, "no-pivot", false, "do not add a native pivot table to the Pivot sheet")

	root.AddCommand(
		a.convertCmd(),
		a.marksCmd(),
		a.pivotCmd(),
		a.endTestCmd(),
		a.wafermapCmd(),
		a.runCmd(),
		a.validateCmd(),
		a.describeCmd(),
	)
	return root
}

// setup loads the config, applies flag overrides and builds the logger.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("encoding") {
		cfg.Encoding = a.encoding
	}
	if flags.Changed("where") {
		cfg.Filter = a.where
	}
	if flags.Changed("sheet") {
		cfg.DataSheet = a.dataSheet
	}
	if a.noPivot {
		cfg.NativePivot = false
	}
	a.cfg = cfg

	log, err := logging.New(cfg.Log, a.verbose, cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	a.log = log
	a.status = newStatus(cmd.OutOrStdout())
	return nil
}

func (a *app) reporter(extra ...deliverables.Option) (*deliverables.Reporter, error) {
	opts := append(a.cfg.ReporterOptions(), deliverables.WithLogger(a.log.Logger))
	return deliverables.NewReporter(append(opts, extra...)...)
}
