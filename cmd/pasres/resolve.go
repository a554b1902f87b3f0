package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"pasres/internal/bundle"
	"pasres/internal/diag"
	"pasres/internal/driver"
	"pasres/internal/project"
	"pasres/internal/source"
	"pasres/internal/trace"
)

var errResolveFailed = errors.New("resolution failed")

var resolveCmd = &cobra.Command{
	Use:   "resolve [flags] [bundle.pbundle...]",
	Short: "Bind names and type expressions of analysed bundles",
	Long: `Resolve every file of the given bundles. Without arguments the bundles
matching [files] of pasres.toml below the project root are resolved.`,
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().Int("jobs", 0, "max parallel files (0 = from pasres.toml)")
	resolveCmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
	resolveCmd.Flags().String("index", "", "write the usage index of the bundle to this path")
	resolveCmd.Flags().Bool("watch", false, "re-resolve bundles when they change")
	resolveCmd.Flags().Bool("with-notes", true, "include diagnostic notes in output")
}

type resolveSettings struct {
	cfg       project.Config
	opts      driver.Options
	ui        uiMode
	quiet     bool
	notes     bool
	indexPath string
}

func readResolveSettings(cmd *cobra.Command) (resolveSettings, error) {
	var s resolveSettings
	cfg, err := loadProjectConfig()
	if err != nil {
		newDiagPrinter(cmd.OutOrStdout(), nil, false).print(diag.NewError(diag.ProjConfigInvalid, source.Span{}, err.Error()))
		return s, errResolveFailed
	}
	s.cfg = cfg

	root := cmd.Root().PersistentFlags()
	if s.quiet, err = root.GetBool("quiet"); err != nil {
		return s, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	timings, err := root.GetBool("timings")
	if err != nil {
		return s, fmt.Errorf("failed to get timings flag: %w", err)
	}
	maxDiagnostics, err := root.GetInt("max-diagnostics")
	if err != nil {
		return s, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	if maxDiagnostics <= 0 {
		maxDiagnostics = cfg.Analysis.MaxDiagnostics
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return s, fmt.Errorf("failed to get jobs flag: %w", err)
	}
	if jobs <= 0 {
		jobs = cfg.Analysis.Jobs
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return s, fmt.Errorf("failed to get ui flag: %w", err)
	}
	if s.ui, err = readUIMode(uiValue); err != nil {
		return s, err
	}
	if s.notes, err = cmd.Flags().GetBool("with-notes"); err != nil {
		return s, fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	if s.indexPath, err = cmd.Flags().GetString("index"); err != nil {
		return s, fmt.Errorf("failed to get index flag: %w", err)
	}

	s.opts = driver.Options{
		Jobs:           jobs,
		MaxDiagnostics: maxDiagnostics,
		UnitScopeNames: cfg.Units.ScopeNames,
		UnitAliases:    cfg.Units.Aliases,
		Timings:        timings,
	}
	return s, nil
}

func runResolve(cmd *cobra.Command, args []string) error {
	s, err := readResolveSettings(cmd)
	if err != nil {
		return err
	}
	watch, err := cmd.Flags().GetBool("watch")
	if err != nil {
		return fmt.Errorf("failed to get watch flag: %w", err)
	}

	paths := args
	if len(paths) == 0 {
		if paths, err = collectBundles(s.cfg); err != nil {
			return err
		}
	}
	out := cmd.OutOrStdout()
	if len(paths) == 0 {
		printer := newDiagPrinter(out, nil, false)
		printer.print(diag.NewError(diag.ProjNoInputs, source.Span{}, "no bundles found under "+s.cfg.Root))
		return errResolveFailed
	}
	if s.indexPath != "" && len(paths) != 1 {
		return fmt.Errorf("--index needs exactly one bundle, got %d", len(paths))
	}

	ctx := cmd.Context()
	failed := false
	for _, path := range paths {
		ok, err := resolveBundle(ctx, cmd, path, s)
		if err != nil {
			return err
		}
		failed = failed || !ok
	}

	if watch {
		return watchBundles(ctx, cmd, s)
	}
	if failed {
		return errResolveFailed
	}
	return nil
}

func collectBundles(cfg project.Config) ([]string, error) {
	matcher, err := cfg.Matcher()
	if err != nil {
		return nil, err
	}
	return matcher.Collect(cfg.Root)
}

// resolveBundle resolves one bundle and prints its diagnostics. It reports
// false when the bundle has errors; the error is reserved for cancellation.
func resolveBundle(ctx context.Context, cmd *cobra.Command, path string, s resolveSettings) (bool, error) {
	out := cmd.OutOrStdout()
	ctx, span := trace.Start(ctx, trace.ScopePass, "resolve_bundle")
	span.WithExtra("path", path)
	defer span.End("")

	data, err := os.ReadFile(path)
	if err != nil {
		newDiagPrinter(out, nil, false).print(diag.NewError(diag.IOLoadFileError, source.Span{}, err.Error()))
		return false, nil
	}
	prog, err := bundle.Decode(bytes.NewReader(data))
	if err != nil {
		newDiagPrinter(out, nil, false).print(diag.NewError(diag.IOBundleDecode, source.Span{}, fmt.Sprintf("%s: %v", path, err)))
		return false, nil
	}

	var report *driver.Report
	if shouldUseTUI(s.ui, s.quiet, len(prog.Files())) {
		report, err = runResolveWithUI(ctx, filepath.Base(path), prog, s.opts)
	} else {
		report, err = driver.ResolveAll(ctx, prog, s.opts)
	}
	if err != nil {
		return false, err
	}

	printer := newDiagPrinter(out, prog, s.notes && !s.quiet)
	printer.printReport(report)
	if !s.quiet {
		printSummary(out, path, report)
	}

	if s.indexPath != "" {
		ix := driver.BuildUsageIndex(prog, project.HashBytes(data))
		if err := driver.WriteIndex(s.indexPath, ix); err != nil {
			printer.print(diag.NewError(diag.IOIndexCacheError, source.Span{}, err.Error()))
			return false, nil
		}
	}
	return !report.HasErrors(), nil
}

func watchBundles(ctx context.Context, cmd *cobra.Command, s resolveSettings) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	matcher, err := s.cfg.Matcher()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()
	// в режиме наблюдения прогресс-UI не запускаем
	s.ui = uiModeOff
	s.indexPath = ""

	w, err := driver.NewWatcher(s.cfg.Root, matcher, driver.DefaultDebounce, func(paths []string) {
		for _, path := range paths {
			if _, err := os.Stat(path); err != nil {
				continue
			}
			if _, err := resolveBundle(ctx, cmd, path, s); err != nil && !errors.Is(err, context.Canceled) {
				fmt.Fprintf(errOut, "watch: %v\n", err)
			}
		}
	}, func(err error) {
		fmt.Fprintf(errOut, "watch: %v\n", err)
	})
	if err != nil {
		return err
	}
	if !s.quiet {
		fmt.Fprintf(out, "watching %s\n", s.cfg.Root)
	}
	return w.Run(ctx)
}
