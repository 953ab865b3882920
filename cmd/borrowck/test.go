package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"borrowck/internal/driver"
)

var testCmd = &cobra.Command{
	Use:   "test [flags] [file.own|directory]...",
	Short: "Run a script suite against its //~ ERROR expectations",
	Long: `Test checks every script of the suite and compares the reported errors with the
//~ ERROR <kind> comments in the scripts. Any missing, unexpected or malformed
expectation fails the run.`,
	RunE: runTest,
}

func init() {
	testCmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
	testCmd.Flags().Bool("no-cache", false, "do not read or write the result cache")
	testCmd.Flags().BoolP("verbose", "v", false, "print the verdict of every script")
	testCmd.Flags().String("ui", "off", "progress view (auto|on|off)")
}

// suiteSummary counts what a test run verified.
type suiteSummary struct {
	files        int
	expectations int
	mismatches   []driver.Mismatch
}

func runTest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	defer dumpTraceOnPanic(ctx)

	cfg, err := loadSettings(cmd, args)
	if err != nil {
		return err
	}
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return fmt.Errorf("failed to get verbose flag: %w", err)
	}
	uiFlag, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	mode, err := readUIMode(uiFlag)
	if err != nil {
		return err
	}

	cleanup, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	report, err := runChecks(cmd, cfg, mode, driver.Options{
		MaxDiagnostics: cfg.out.maxDiagnostics,
		Jobs:           cfg.jobs,
		BaseDir:        cfg.baseDir,
		Cache:          openCache(cmd, cfg.cache),
	})
	if err != nil {
		return err
	}

	summary := summarize(report)
	renderSuite(cmd.OutOrStdout(), cfg.name, report, summary, verbose)
	if cfg.out.timings {
		if err := renderTimings(cmd.ErrOrStderr(), report, cfg.out.format); err != nil {
			return err
		}
	}
	if len(summary.mismatches) > 0 {
		return exitError{code: 1}
	}
	return nil
}

func summarize(report *driver.Report) suiteSummary {
	s := suiteSummary{files: len(report.Files), mismatches: report.Mismatches()}
	for _, f := range report.Files {
		if f != nil {
			s.expectations += len(f.Expectations)
		}
	}
	return s
}

func renderSuite(w io.Writer, name string, report *driver.Report, s suiteSummary, verbose bool) {
	if verbose {
		failing := make(map[string]bool, len(s.mismatches))
		for _, m := range s.mismatches {
			failing[m.Path] = true
		}
		for _, f := range report.Files {
			if f == nil {
				continue
			}
			path := displayPath(report, f)
			verdict := "ok"
			if failing[path] {
				verdict = "FAIL"
			}
			note := ""
			if f.Cached {
				note = " (cached)"
			}
			fmt.Fprintf(w, "%-4s %s%s\n", verdict, path, note)
		}
	}
	for _, m := range s.mismatches {
		fmt.Fprintln(w, m.String())
	}
	verdict := "ok"
	if len(s.mismatches) > 0 {
		verdict = "FAIL"
	}
	fmt.Fprintf(w, "%s %s: %d %s, %d %s, %d %s\n", verdict, name,
		s.files, plural(s.files, "script", "scripts"),
		s.expectations, plural(s.expectations, "expectation", "expectations"),
		len(s.mismatches), plural(len(s.mismatches), "mismatch", "mismatches"))
}
