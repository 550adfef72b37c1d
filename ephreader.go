package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gutsergut/EphReader/lib/format"
	"github.com/gutsergut/EphReader/lib/report"
	"github.com/gutsergut/EphReader/lib/spk"
)

const version = "1.0.0"

func main() {
	a := &app{}
	err := a.rootCommand().Execute()
	if a.logger != nil {
		a.logger.Sync()
	}
	if err != nil {
		os.Exit(1)
	}
}

// app holds the command line flags and the logger they configure. The
// report itself always goes to standard output; diagnostics go to standard
// error through the logger so the two streams can be separated.
type app struct {
	logger *zap.Logger
	sugar  *zap.SugaredLogger
	opt    report.Options

	maxBodies    int
	maxIntervals int
	bodies       string
	exact        bool
	stats        bool
	verbose      bool
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "ephreader <kernel.bsp> [more kernels...]",
		Short: "Inspect SPK planetary ephemeris kernels",
		Long: "ephreader opens SPK planetary ephemeris kernels without a " +
			"SPICE toolkit\ninstallation and reports what is inside them: " +
			"the bodies they carry, their\ntime coverage, and the native " +
			"Chebyshev interval layout of each segment.\nKernels " +
			"compressed with zstandard (*.zst) are decompressed in memory.",
		Version:           version,
		Args:              cobra.MinimumNArgs(1),
		SilenceUsage:      true,
		PersistentPreRunE: func(*cobra.Command, []string) error { return a.setup() },
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInspect(args)
		},
	}

	flags := root.PersistentFlags()
	flags.IntVar(&a.maxBodies, "max-bodies", spk.DefaultLimits().MaxBodies,
		"largest number of distinct bodies to accept from one kernel")
	flags.IntVar(&a.maxIntervals, "max-intervals",
		spk.DefaultLimits().MaxIntervals,
		"largest number of coverage windows or sub-records to accept")
	flags.StringVar(&a.bodies, "bodies", "",
		"selection of body identifiers to report, e.g. '1..10 + 301 - 3'")
	flags.BoolVar(&a.exact, "exact", false,
		"walk every sub-record for exact interval counts")
	flags.BoolVar(&a.stats, "stats", false,
		"append interval statistics across the reported bodies")
	flags.BoolVarP(&a.verbose, "verbose", "v", false,
		"log per-body diagnostics to standard error")

	root.AddCommand(a.inspectCommand(), a.compareCommand())
	return root
}

func (a *app) inspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <kernel.bsp> [more kernels...]",
		Short: "Inspect SPK planetary ephemeris kernels",
		Long: "inspect analyses each kernel and reports its bodies, their " +
			"time coverage, and\nthe native Chebyshev interval layout of " +
			"each segment. Running ephreader with\nkernel paths and no " +
			"subcommand does the same thing.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInspect(args)
		},
	}
}

func (a *app) compareCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "compare <kernel.bsp> <kernel.bsp> [more kernels...]",
		Short: "Compare body availability across kernels",
		Long: "compare analyses each kernel the way inspect does, then " +
			"prints a matrix of\nwhich bodies each one carries and at " +
			"which native interval lengths, the first\nquestion asked " +
			"when choosing between ephemeris releases.",
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return report.New(a.logger, a.opt).Compare(os.Stdout, args)
		},
	}
}

// setup runs after flag parsing and before any command body.
func (a *app) setup() error {
	cfg := zap.NewDevelopmentConfig()
	if !a.verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("could not set up logging: %w", err)
	}
	a.logger = logger
	a.sugar = logger.Sugar()

	a.opt = report.Options{
		Limits: spk.Limits{
			MaxBodies:    a.maxBodies,
			MaxIntervals: a.maxIntervals,
		},
		Exact: a.exact,
		Stats: a.stats,
	}
	if a.bodies != "" {
		ids, err := format.ExpandSequenceFormat(a.bodies)
		if err != nil {
			return fmt.Errorf("the --bodies selection '%s' is not valid: %w",
				a.bodies, err)
		}
		a.opt.Bodies = ids
	}

	return nil
}

// runInspect analyses each kernel in turn. A kernel that cannot be opened
// or enumerated is reported and skipped, and makes the whole run fail
// after the remaining kernels have been analysed.
func (a *app) runInspect(fileNames []string) error {
	rep := report.New(a.logger, a.opt)

	var failed []string
	for _, fileName := range fileNames {
		if err := rep.Inspect(os.Stdout, fileName); err != nil {
			a.sugar.Errorw("analysis failed", "file", fileName, "error", err)
			failed = append(failed, fileName)
		}
	}

	if len(failed) > 0 {
		return fmt.Errorf("could not analyse %s", strings.Join(failed, ", "))
	}
	return nil
}
