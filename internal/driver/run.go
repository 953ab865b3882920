package driver

import (
	"context"
	"fmt"

	"borrowck/internal/ast"
	"borrowck/internal/diag"
	"borrowck/internal/lexer"
	"borrowck/internal/lower"
	"borrowck/internal/ownership"
	"borrowck/internal/parser"
	"borrowck/internal/pipeline"
	"borrowck/internal/sema"
	"borrowck/internal/token"
	"borrowck/internal/trace"

	"fortio.org/safecast"
)

// run walks one file through the pipeline stages.
type run struct {
	ctx    context.Context
	tracer trace.Tracer
	parent uint64
	opts   Options
	res    *FileResult

	reporter diag.Reporter
	builder  *ast.Builder
	astFile  ast.FileID
	sema     sema.Result
	lowered  lower.Result
}

func (r *run) execute() error {
	r.reporter = diag.NewDedupReporter(diag.BagReporter{Bag: r.res.Bag})

	var tokens []token.Token
	if err := r.stage(pipeline.StageLex, func() string {
		tokens = lexer.New(r.res.File, lexer.Options{Reporter: r.reporter}).All()
		r.res.Expectations = ParseExpectations(r.res.FileSet, tokens)
		return fmt.Sprintf("tokens=%d", len(tokens))
	}); err != nil {
		return err
	}

	key, useCache := r.cacheKey()
	if useCache && r.restore(key) {
		return nil
	}

	if err := r.stage(pipeline.StageParse, r.parse); err != nil {
		return err
	}
	if r.res.Bag.HasErrors() || r.astFile == ast.NoFileID {
		// синтаксические ошибки: дальше AST ненадёжен
		r.store(key, useCache)
		return nil
	}
	if err := r.stage(pipeline.StageSema, r.check); err != nil {
		return err
	}
	if err := r.stage(pipeline.StageLower, r.lower); err != nil {
		return err
	}
	if err := r.stage(pipeline.StageCheck, r.evaluate); err != nil {
		return err
	}
	r.store(key, useCache)
	return nil
}

// stage runs fn as a timed and traced pipeline phase.
func (r *run) stage(stage pipeline.Stage, fn func() string) error {
	if err := r.ctx.Err(); err != nil {
		return err
	}
	r.emit(stage, pipeline.StatusWorking, nil)
	span := trace.Begin(r.tracer, trace.ScopePhase, string(stage), r.parent)
	idx := r.res.Timer.Begin(string(stage))
	note := fn()
	r.res.Timer.End(idx, note)
	span.End(note)
	return nil
}

func (r *run) emit(stage pipeline.Stage, status pipeline.Status, err error) {
	if r.opts.Progress == nil {
		return
	}
	r.opts.Progress.OnEvent(pipeline.Event{File: r.res.Path, Stage: stage, Status: status, Err: err})
}

func (r *run) parse() string {
	maxErrors, err := safecast.Conv[uint](r.opts.maxDiagnostics())
	if err != nil {
		panic(fmt.Errorf("max diagnostics overflow: %w", err))
	}
	r.builder = ast.NewBuilder(ast.Hints{})
	// лексические ошибки уже собраны на стадии lex
	lx := lexer.New(r.res.File, lexer.Options{})
	pr := parser.ParseFile(lx, r.builder, parser.Options{Reporter: r.reporter, MaxErrors: maxErrors})
	r.astFile = pr.File
	if file := r.builder.Files.Get(pr.File); file != nil {
		return fmt.Sprintf("items=%d", len(file.Items))
	}
	return ""
}

func (r *run) check() string {
	r.sema = sema.Check(r.builder, r.astFile, sema.Options{Reporter: r.reporter, Tracer: r.tracer})
	return fmt.Sprintf("fns=%d invalid=%d", len(r.sema.FnOrder), len(r.sema.Invalid))
}

func (r *run) lower() string {
	r.lowered = lower.Lower(r.builder, r.astFile, &r.sema, lower.Options{Tracer: r.tracer})
	r.res.Skipped = r.lowered.Skipped
	ops := 0
	for _, fn := range r.lowered.Funcs {
		ops += fn.Trace.Len()
	}
	return fmt.Sprintf("ops=%d", ops)
}

func (r *run) evaluate() string {
	rejected := 0
	for _, fn := range r.lowered.Funcs {
		span := trace.Begin(r.tracer, trace.ScopeFunc, "evaluate", r.parent)
		span.WithExtra("fn", fn.Name)
		got := ownership.Check(fn.Trace, ownership.Options{Reporter: r.reporter})
		report := FuncReport{Name: fn.Name, Ops: fn.Trace.Len(), Violation: got.Violation}
		if r.opts.EmitEvents {
			report.Events = got.Events
		}
		if r.opts.EmitTrace {
			report.Trace = fn.Trace.Format()
		}
		detail := "ok"
		if got.Violation != nil {
			rejected++
			detail = got.Violation.Kind.String()
		}
		span.End(detail)
		r.res.Funcs = append(r.res.Funcs, report)
	}
	return fmt.Sprintf("fns=%d rejected=%d", len(r.lowered.Funcs), rejected)
}
