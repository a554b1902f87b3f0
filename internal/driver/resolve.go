// Package driver runs name resolution over every file of a program: units
// are processed in waves (used units first), files of a wave in parallel.
package driver

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"pasres/internal/ast"
	"pasres/internal/bundle"
	"pasres/internal/diag"
	"pasres/internal/observ"
	"pasres/internal/project/dag"
	"pasres/internal/sema"
	"pasres/internal/symbols"
	"pasres/internal/trace"
)

// Options configures ResolveAll.
type Options struct {
	Jobs           int
	MaxDiagnostics int
	UnitScopeNames []string
	UnitAliases    map[string]string
	Progress       ProgressSink
	// Timings appends an ObsTimings diagnostic to Report.Units.
	Timings bool
}

// FileResult is the outcome of one file.
type FileResult struct {
	File ast.FileID
	Path string
	Unit symbols.SymbolID
	Bag  *diag.Bag
	Sema *sema.Result
	// Ambiguity is set when resolution of the file stopped on an ambiguous name.
	Ambiguity *sema.AmbiguityError
	Elapsed   time.Duration

	// Suppressed counts repeated reports dropped for this file.
	Suppressed int
}

// Failed reports whether the file has errors.
func (r *FileResult) Failed() bool {
	return r.Ambiguity != nil || (r.Bag != nil && r.Bag.HasErrors())
}

// Report collects the results of ResolveAll.
type Report struct {
	// Files in file ID order.
	Files []FileResult
	// Units holds unit-level diagnostics: circular uses and broken dependencies.
	Units *diag.Bag
	// Batches are the unit waves, used units first.
	Batches [][]symbols.SymbolID
	Timing  observ.Report
}

// HasErrors reports whether any file or unit has errors.
func (r *Report) HasErrors() bool {
	if r == nil {
		return false
	}
	if r.Units != nil && r.Units.HasErrors() {
		return true
	}
	for i := range r.Files {
		if r.Files[i].Failed() {
			return true
		}
	}
	return false
}

// Ambiguities lists the files stopped by an ambiguous name.
func (r *Report) Ambiguities() []*FileResult {
	var out []*FileResult
	for i := range r.Files {
		if r.Files[i].Ambiguity != nil {
			out = append(out, &r.Files[i])
		}
	}
	return out
}

// ResolveAll resolves every file of prog. A file stopped by an ambiguity is
// recorded in its FileResult and does not stop the others; the returned error
// is reserved for cancellation and broken input.
func ResolveAll(ctx context.Context, prog *bundle.Program, opts Options) (*Report, error) {
	if prog == nil || prog.Table == nil || prog.Tree == nil {
		return nil, errors.New("resolve: empty program")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	ctx, span := trace.Start(ctx, trace.ScopeDriver, "resolve_all")
	defer span.End("")

	timer := observ.NewTimer()
	files := prog.Files()
	report := &Report{
		Files: make([]FileResult, len(files)),
		Units: diag.NewBag(opts.MaxDiagnostics),
	}
	for i, file := range files {
		res := FileResult{File: file, Path: prog.Path(file), Bag: diag.NewBag(opts.MaxDiagnostics)}
		if f := prog.Tree.Files.Get(file); f != nil {
			res.Unit = f.Unit
		}
		report.Files[i] = res
		emit(opts.Progress, Event{File: res.Path, Stage: StageResolve, Status: StatusQueued})
	}

	phase := timer.Begin("order")
	emit(opts.Progress, Event{Stage: StageOrder, Status: StatusWorking})
	units := &diag.LockedReporter{Next: diag.BagReporter{Bag: report.Units}}
	reporters := make(map[symbols.SymbolID]diag.Reporter)
	for _, unit := range prog.Table.Units() {
		reporters[unit] = units
	}
	report.Batches = dag.Order(prog.Table, reporters)
	waves := fileWaves(report.Files, report.Batches)
	timer.End(phase, fmt.Sprintf("%d waves", len(waves)))

	phase = timer.Begin("resolve")
	emit(opts.Progress, Event{Stage: StageResolve, Status: StatusWorking})
	for _, wave := range waves {
		if err := resolveWave(ctx, prog, report.Files, wave, jobs, opts); err != nil {
			timer.End(phase, "cancelled")
			report.Timing = timer.Report()
			return report, err
		}
	}
	timer.End(phase, fmt.Sprintf("%d files", len(files)))

	reportBrokenUnits(prog.Table, report.Files, units)

	report.Timing = timer.Report()
	if opts.Timings {
		appendTimingDiagnostic(report.Units, summarizeTimings(report, len(waves), jobs))
	}
	span.WithExtra("files", fmt.Sprintf("%d", len(files)))
	emit(opts.Progress, Event{Stage: StageResolve, Status: StatusDone})
	return report, nil
}

// fileWaves groups file indexes by the unit batch of their unit. Files of
// units absent from the batches (System, bare programs) form the last wave.
func fileWaves(files []FileResult, batches [][]symbols.SymbolID) [][]int {
	waveOf := make(map[symbols.SymbolID]int)
	for i, batch := range batches {
		for _, unit := range batch {
			waveOf[unit] = i
		}
	}
	waves := make([][]int, len(batches)+1)
	for i := range files {
		w, ok := waveOf[files[i].Unit]
		if !ok {
			w = len(batches)
		}
		waves[w] = append(waves[w], i)
	}
	out := waves[:0]
	for _, wave := range waves {
		if len(wave) > 0 {
			out = append(out, wave)
		}
	}
	return out
}

func resolveWave(ctx context.Context, prog *bundle.Program, results []FileResult, wave []int, jobs int, opts Options) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(wave)))

	// Индексы уникальны для каждой горутины, мьютекс не нужен
	for _, i := range wave {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			return resolveFile(gctx, prog, &results[i], opts)
		})
	}
	return g.Wait()
}

func resolveFile(ctx context.Context, prog *bundle.Program, res *FileResult, opts Options) error {
	emit(opts.Progress, Event{File: res.Path, Stage: StageResolve, Status: StatusWorking})
	start := time.Now()

	reporter := diag.NewDedupReporter(diag.BagReporter{Bag: res.Bag})
	out, err := sema.Resolve(ctx, prog.Table, prog.Tree, res.File, sema.Options{
		Reporter:       reporter,
		UnitScopeNames: opts.UnitScopeNames,
		UnitAliases:    opts.UnitAliases,
	})
	res.Sema = out
	res.Elapsed = time.Since(start)
	res.Suppressed = reporter.Suppressed()

	var amb *sema.AmbiguityError
	switch {
	case err == nil:
	case errors.As(err, &amb):
		res.Ambiguity = amb
	default:
		emit(opts.Progress, Event{File: res.Path, Stage: StageResolve, Status: StatusError, Err: err, Elapsed: res.Elapsed})
		return fmt.Errorf("%s: %w", res.Path, err)
	}

	status := StatusDone
	if res.Failed() {
		status = StatusError
	}
	emit(opts.Progress, Event{File: res.Path, Stage: StageResolve, Status: status, Err: err, Elapsed: res.Elapsed})
	return nil
}

// reportBrokenUnits warns units whose interface uses a unit with failed files.
func reportBrokenUnits(table *symbols.Table, files []FileResult, reporter diag.Reporter) {
	firstErr := make(map[symbols.SymbolID]*diag.Diagnostic)
	broken := make(map[symbols.SymbolID]bool)
	for i := range files {
		f := &files[i]
		if !f.Failed() || broken[f.Unit] {
			continue
		}
		broken[f.Unit] = true
		for j, d := range f.Bag.Items() {
			if d.Severity >= diag.SevError {
				firstErr[f.Unit] = &f.Bag.Items()[j]
				break
			}
		}
	}
	if len(broken) == 0 {
		return
	}

	nodes := dag.FromTable(table)
	for i := range nodes {
		unit := table.Unit(nodes[i].Name)
		nodes[i].Reporter = reporter
		nodes[i].Broken = broken[unit]
		nodes[i].FirstErr = firstErr[unit]
	}
	idx := dag.BuildIndex(nodes)
	_, slots := dag.BuildGraph(idx, nodes)
	dag.ReportBrokenDeps(idx, slots)
}
