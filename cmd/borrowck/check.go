package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"borrowck/internal/driver"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] [file.own|directory]...",
	Short: "Check ownership and borrowing rules of .own scripts",
	Long: `Check lowers every function of the given scripts into an ownership trace and
evaluates it. Without arguments the paths of the nearest borrowck.toml are checked.`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().String("format", "pretty", "output format (pretty|json|short)")
	checkCmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
	checkCmd.Flags().Bool("no-cache", false, "do not read or write the result cache")
	checkCmd.Flags().Bool("emit-events", false, "print the evaluator event log of every function")
	checkCmd.Flags().Bool("emit-trace", false, "print the ownership trace of every function")
	checkCmd.Flags().Bool("with-notes", true, "include notes in json/short output and note excerpts in pretty output")
	checkCmd.Flags().String("path-mode", "relative", "how to print paths (auto|absolute|relative|basename)")
	checkCmd.Flags().String("ui", "auto", "progress view (auto|on|off)")
}

// runCheck executes the "check" command. It exits with status 1 when any
// script has error diagnostics.
func runCheck(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	defer dumpTraceOnPanic(ctx)

	cfg, err := loadSettings(cmd, args)
	if err != nil {
		return err
	}
	emitEvents, err := cmd.Flags().GetBool("emit-events")
	if err != nil {
		return fmt.Errorf("failed to get emit-events flag: %w", err)
	}
	emitTrace, err := cmd.Flags().GetBool("emit-trace")
	if err != nil {
		return fmt.Errorf("failed to get emit-trace flag: %w", err)
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

	opts := driver.Options{
		MaxDiagnostics: cfg.out.maxDiagnostics,
		Jobs:           cfg.jobs,
		EmitEvents:     emitEvents,
		EmitTrace:      emitTrace,
		BaseDir:        cfg.baseDir,
		Cache:          openCache(cmd, cfg.cache),
	}

	report, err := runChecks(cmd, cfg, mode, opts)
	if err != nil {
		return err
	}

	if err := renderReport(cmd.OutOrStdout(), report, cfg.out, emitEvents || emitTrace); err != nil {
		return fmt.Errorf("failed to render diagnostics: %w", err)
	}
	if cfg.out.timings {
		if err := renderTimings(cmd.ErrOrStderr(), report, cfg.out.format); err != nil {
			return err
		}
	}
	if report.HasErrors() {
		return exitError{code: 1}
	}
	return nil
}

// runChecks runs the driver, with the progress view when it is wanted.
func runChecks(cmd *cobra.Command, cfg *settings, mode uiMode, opts driver.Options) (*driver.Report, error) {
	ctx := cmd.Context()
	files, err := driver.ListScripts(cfg.paths)
	if err != nil {
		return nil, err
	}
	if cfg.out.format != "json" && shouldUseTUI(mode, len(files)) {
		return runCheckWithUI(ctx, "checking "+cfg.name, cfg.paths, opts)
	}
	return driver.CheckPaths(ctx, cfg.paths, opts)
}

// openCache opens the user cache directory; failures only disable caching.
func openCache(cmd *cobra.Command, enabled bool) *driver.DiskCache {
	if !enabled {
		return nil
	}
	cache, err := driver.OpenDiskCache("borrowck")
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: result cache disabled: %v\n", err)
		return nil
	}
	return cache
}

