package driver

import (
	"context"
	"fmt"

	"borrowck/internal/diag"
	"borrowck/internal/observ"
	"borrowck/internal/ownership"
	"borrowck/internal/pipeline"
	"borrowck/internal/source"
	"borrowck/internal/trace"
)

// Options configure checking of one or more scripts.
type Options struct {
	MaxDiagnostics int
	// Jobs limits parallel checks in CheckPaths; 0 means GOMAXPROCS.
	Jobs int
	// EmitEvents keeps the evaluator event log of every function.
	EmitEvents bool
	// EmitTrace keeps the rendered ownership trace of every function.
	EmitTrace bool
	// Cache is consulted before checking and updated after; nil disables it.
	Cache    *DiskCache
	Progress pipeline.ProgressSink
	// BaseDir is used to print paths relative to it.
	BaseDir string
}

const defaultMaxDiagnostics = 100

func (o Options) maxDiagnostics() int {
	if o.MaxDiagnostics <= 0 {
		return defaultMaxDiagnostics
	}
	return o.MaxDiagnostics
}

// cacheable reports whether results may be served from the disk cache.
// Event logs and traces are not cached.
func (o Options) cacheable() bool {
	return o.Cache != nil && !o.EmitEvents && !o.EmitTrace
}

// FuncReport is the verdict for one function.
type FuncReport struct {
	Name string
	Ops  int
	// Violation is the first broken rule, nil when the body is accepted.
	Violation *ownership.Violation
	Events    []ownership.Event
	Trace     string
}

// FileResult holds everything produced for one script.
type FileResult struct {
	Path    string
	FileSet *source.FileSet
	File    *source.File
	Bag     *diag.Bag
	Funcs   []FuncReport
	// Skipped names functions left unchecked because of semantic errors.
	Skipped      []string
	Expectations []Expectation
	Timer        *observ.Timer
	// Cached is set when the result came from the disk cache.
	Cached bool
	// Err is set when the file could not be loaded.
	Err error
}

// HasErrors reports whether the file failed to load or produced errors.
func (r *FileResult) HasErrors() bool {
	if r == nil {
		return false
	}
	return r.Err != nil || (r.Bag != nil && r.Bag.HasErrors())
}

// Violations counts functions rejected by the evaluator.
func (r *FileResult) Violations() int {
	n := 0
	for _, fn := range r.Funcs {
		if fn.Violation != nil {
			n++
		}
	}
	return n
}

// CheckFile loads and checks a single script.
func CheckFile(ctx context.Context, path string, opts Options) (*FileResult, error) {
	fs := source.NewFileSet()
	if opts.BaseDir != "" {
		fs.SetBaseDir(opts.BaseDir)
	}
	fileID, err := fs.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return CheckSource(ctx, fs, fileID, opts)
}

// CheckSource checks a file already present in fs. The FileSet is only read,
// so several files of one FileSet may be checked concurrently.
func CheckSource(ctx context.Context, fs *source.FileSet, fileID source.FileID, opts Options) (*FileResult, error) {
	file := fs.Get(fileID)
	if file == nil {
		return nil, fmt.Errorf("unknown file id %d", fileID)
	}
	res := &FileResult{
		Path:    file.Path,
		FileSet: fs,
		File:    file,
		Bag:     diag.NewBag(opts.maxDiagnostics()),
		Timer:   observ.NewTimer(),
	}

	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeDriver, "check_file", trace.ParentSpan(ctx))
	span.WithExtra("file", file.Path)
	defer func() {
		span.WithExtra("diags", fmt.Sprintf("%d", res.Bag.Len()))
		span.End(string(statusOf(res)))
	}()

	r := &run{
		ctx:    trace.WithParent(ctx, span),
		tracer: tracer,
		parent: span.ID(),
		opts:   opts,
		res:    res,
	}
	if err := r.execute(); err != nil {
		r.emit(pipeline.StageCheck, pipeline.StatusError, err)
		return res, err
	}
	r.emit(pipeline.StageCheck, statusOf(res), nil)
	return res, nil
}

func statusOf(res *FileResult) pipeline.Status {
	switch {
	case res.Err != nil:
		return pipeline.StatusError
	case res.HasErrors():
		return pipeline.StatusFailed
	default:
		return pipeline.StatusDone
	}
}
