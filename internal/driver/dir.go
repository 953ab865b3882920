package driver

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"

	"borrowck/internal/diag"
	"borrowck/internal/observ"
	"borrowck/internal/pipeline"
	"borrowck/internal/project"
	"borrowck/internal/source"
	"borrowck/internal/trace"
)

// Report is the outcome of checking several scripts.
type Report struct {
	FileSet *source.FileSet
	// Files are in path order, independent of scheduling.
	Files []*FileResult
	// Timer aggregates the phases of every file.
	Timer *observ.Timer
}

// HasErrors reports whether any file failed.
func (r *Report) HasErrors() bool {
	for _, f := range r.Files {
		if f.HasErrors() {
			return true
		}
	}
	return false
}

// Diagnostics returns the diagnostics of every file in file order.
func (r *Report) Diagnostics() []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, f := range r.Files {
		if f != nil && f.Bag != nil {
			out = append(out, f.Bag.Items()...)
		}
	}
	return out
}

// Mismatches verifies every file against its expectations.
func (r *Report) Mismatches() []Mismatch {
	var out []Mismatch
	for _, f := range r.Files {
		if f == nil {
			continue
		}
		if f.Err != nil {
			out = append(out, Mismatch{Kind: MismatchMalformed, Path: f.Path, Message: f.Err.Error()})
			continue
		}
		out = append(out, Verify(f)...)
	}
	return out
}

// CheckDir checks every script below dir.
func CheckDir(ctx context.Context, dir string, opts Options) (*Report, error) {
	if opts.BaseDir == "" {
		opts.BaseDir = dir
	}
	return CheckPaths(ctx, []string{dir}, opts)
}

// ListScripts expands paths into the scripts CheckPaths would check.
func ListScripts(paths []string) ([]string, error) {
	return project.CollectScripts(paths)
}

// CheckPaths checks the scripts found in paths in parallel. Files are loaded
// up front so the shared FileSet is read-only while workers run.
func CheckPaths(ctx context.Context, paths []string, opts Options) (*Report, error) {
	files, err := project.CollectScripts(paths)
	if err != nil {
		return nil, err
	}

	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeDriver, "check_paths", trace.ParentSpan(ctx))
	span.WithExtra("files", fmt.Sprintf("%d", len(files)))
	defer span.End("")
	ctx = trace.WithParent(ctx, span)

	baseDir := opts.BaseDir
	if baseDir == "" {
		if wd, err := os.Getwd(); err == nil {
			baseDir = wd
		}
	}
	fileSet := source.NewFileSetWithBase(baseDir)
	report := &Report{
		FileSet: fileSet,
		Files:   make([]*FileResult, len(files)),
		Timer:   observ.NewTimer(),
	}

	ids := make([]source.FileID, len(files))
	loaded := make([]bool, len(files))
	for i, path := range files {
		if opts.Progress != nil {
			opts.Progress.OnEvent(pipeline.Event{File: path, Stage: pipeline.StageLoad, Status: pipeline.StatusQueued})
		}
		id, err := fileSet.Load(path)
		if err != nil {
			// ошибка загрузки не прерывает остальные файлы
			report.Files[i] = &FileResult{Path: path, FileSet: fileSet, Err: err}
			if opts.Progress != nil {
				opts.Progress.OnEvent(pipeline.Event{File: path, Stage: pipeline.StageLoad, Status: pipeline.StatusError, Err: err})
			}
			continue
		}
		ids[i], loaded[i] = id, true
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// Результаты (индексы уникальны для каждой горутины, мьютекс не нужен)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(jobs, len(files))))
	for i := range files {
		if !loaded[i] {
			continue
		}
		g.Go(func() error {
			res, err := CheckSource(gctx, fileSet, ids[i], opts)
			report.Files[i] = res
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return report, err
	}

	for _, f := range report.Files {
		if f != nil && f.Timer != nil {
			report.Timer.Merge(f.Timer)
		}
	}
	return report, nil
}
