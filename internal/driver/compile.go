// Package driver runs the compilation pipeline for one unit: parse,
// resolve, check, capture, lower and emit.
package driver

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"scriptc/internal/ast"
	"scriptc/internal/backend/llvm"
	"scriptc/internal/capture"
	"scriptc/internal/diag"
	"scriptc/internal/layout"
	"scriptc/internal/lower"
	"scriptc/internal/observ"
	"scriptc/internal/parser"
	"scriptc/internal/project"
	"scriptc/internal/sema"
	"scriptc/internal/source"
	"scriptc/internal/symbols"
	"scriptc/internal/target"
	"scriptc/internal/trace"
	"scriptc/internal/types"
	"scriptc/internal/vm"

	"fortio.org/safecast"
)

// Backend selects the builder the lowerer writes into.
type Backend string

const (
	// BackendLLVM produces a textual LLVM module.
	BackendLLVM Backend = "llvm"
	// BackendVM produces a module for the interpreter.
	BackendVM Backend = "vm"
)

// Stage bounds how far Compile goes.
type Stage string

const (
	StageCheck Stage = "check"
	StageLower Stage = "lower"
	StageAll   Stage = "all"
)

// Options configures Compile.
type Options struct {
	Backend        Backend
	Stage          Stage
	Triple         string
	Lower          lower.Options
	MaxDiagnostics int
	EnableTimings  bool
	Observer       PhaseObserver
}

// OptionsFromConfig maps a project configuration to compile options.
func OptionsFromConfig(cfg project.Config) Options {
	return Options{
		Backend: BackendLLVM,
		Stage:   StageAll,
		Triple:  cfg.Build.Triple,
		Lower: lower.Options{
			Entry:        cfg.Build.Entry,
			AllocateHook: cfg.Runtime.Allocate,
			ReleaseHook:  cfg.Runtime.Release,
		},
		MaxDiagnostics: 100,
	}
}

// Unit is the outcome of compiling one source file. Fields past Bag are
// nil once a phase reports errors.
type Unit struct {
	Path    string
	FileSet *source.FileSet
	File    *source.File
	Bag     *diag.Bag

	AST     *ast.Unit
	Symbols *symbols.Table
	Types   *types.Interner
	Info    *sema.Info
	Capture *capture.Result
	Lowered *lower.Result

	LLVM *llvm.Module
	VM   *vm.Module
	// IR is the textual module for BackendLLVM after the emit phase.
	IR string

	// Hooks holds the entry and hook names in effect.
	Hooks lower.Options
	Timer *observ.Timer
}

// Failed reports whether the unit has error diagnostics.
func (u *Unit) Failed() bool {
	return u.Bag.HasErrors()
}

// CompileFile loads path and compiles it.
func CompileFile(ctx context.Context, path string, opts Options) (*Unit, error) {
	fs := source.NewFileSet()
	fileID, err := fs.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return compile(ctx, fs, fileID, opts)
}

// CompileSource compiles src registered under name as a virtual file.
func CompileSource(ctx context.Context, name string, src []byte, opts Options) (*Unit, error) {
	fs := source.NewFileSet()
	return compile(ctx, fs, fs.AddVirtual(name, src), opts)
}

func compile(ctx context.Context, fs *source.FileSet, fileID source.FileID, opts Options) (*Unit, error) {
	if opts.Backend == "" {
		opts.Backend = BackendLLVM
	}
	if opts.Stage == "" {
		opts.Stage = StageAll
	}
	def := lower.DefaultOptions()
	if opts.Lower.Entry == "" {
		opts.Lower.Entry = def.Entry
	}
	if opts.Lower.AllocateHook == "" {
		opts.Lower.AllocateHook = def.AllocateHook
	}
	if opts.Lower.ReleaseHook == "" {
		opts.Lower.ReleaseHook = def.ReleaseHook
	}
	if opts.MaxDiagnostics <= 0 {
		opts.MaxDiagnostics = 100
	}
	maxErrors, err := safecast.Conv[uint](opts.MaxDiagnostics)
	if err != nil {
		return nil, err
	}

	file := fs.Get(fileID)
	unit := &Unit{
		Path:    file.Path,
		FileSet: fs,
		File:    file,
		Bag:     diag.NewBag(opts.MaxDiagnostics),
		Hooks:   opts.Lower,
	}
	if opts.EnableTimings {
		unit.Timer = observ.NewTimer()
	}
	rep := diag.BagReporter{Bag: unit.Bag}

	tracer := trace.FromContext(ctx)
	unitSpan := trace.Begin(tracer, trace.ScopeUnit, file.Path, trace.CurrentSpan(ctx))
	defer func() { unitSpan.End(fmt.Sprintf("diags=%d", unit.Bag.Len())) }()
	ctx = trace.WithSpan(ctx, unitSpan)

	p := phases{ctx: ctx, unit: unit, tracer: tracer, parent: unitSpan.Context(), observer: opts.Observer}

	if err := p.run("parse", func() string {
		unit.AST = parser.ParseFile(file, parser.Options{Reporter: rep, MaxErrors: maxErrors})
		return fmt.Sprintf("nodes=%d", unit.AST.Len())
	}); err != nil || unit.Failed() {
		return unit, err
	}

	if err := p.run("resolve", func() string {
		unit.Symbols = symbols.Resolve(unit.AST, rep)
		return fmt.Sprintf("diags=%d", unit.Bag.Len())
	}); err != nil || unit.Failed() {
		return unit, err
	}

	if err := p.run("check", func() string {
		unit.Types = types.NewInterner()
		unit.Info = sema.Check(unit.AST, unit.Symbols, unit.Types, rep)
		return fmt.Sprintf("diags=%d", unit.Bag.Len())
	}); err != nil || unit.Failed() || opts.Stage == StageCheck {
		return unit, err
	}

	if err := p.run("capture", func() string {
		unit.Capture = capture.Analyze(unit.AST, unit.Symbols)
		return fmt.Sprintf("escaping=%d rounds=%d", len(unit.Capture.EscapingContainers()), unit.Capture.Rounds())
	}); err != nil {
		return unit, err
	}

	var builder target.Builder
	switch opts.Backend {
	case BackendLLVM:
		unit.LLVM = llvm.NewModule(file.Path, opts.Triple)
		builder = unit.LLVM
	case BackendVM:
		unit.VM = vm.NewModule()
		builder = unit.VM
	default:
		return unit, fmt.Errorf("unsupported backend: %s (supported: llvm, vm)", opts.Backend)
	}

	if err := p.run("lower", func() string {
		in := lower.Input{
			Unit:    unit.AST,
			Symbols: unit.Symbols,
			Info:    unit.Info,
			Types:   unit.Types,
			Capture: unit.Capture,
			Target:  layout.TargetFor(opts.Triple),
		}
		res, lerr := lower.Lower(p.spanCtx(), in, builder, opts.Lower)
		if lerr != nil {
			reportLowerError(unit.Bag, file.ID, lerr)
			unit.LLVM, unit.VM = nil, nil
			return "failed"
		}
		unit.Lowered = res
		p.current.Attr("backend", string(opts.Backend)).
			Attr("escaping", strconv.Itoa(len(unit.Capture.EscapingContainers())))
		return fmt.Sprintf("functions=%d objects=%d layouts=%d", len(res.Functions), res.Objects, len(res.Registry.Descriptors()))
	}); err != nil || unit.Failed() || opts.Stage == StageLower {
		return unit, err
	}

	if unit.LLVM != nil {
		if err := p.run("emit", func() string {
			unit.IR = unit.LLVM.String()
			return fmt.Sprintf("bytes=%d", len(unit.IR))
		}); err != nil {
			return unit, err
		}
	}
	return unit, nil
}

// phases runs pipeline steps with a trace span, a timer entry and
// observer notifications around each.
type phases struct {
	ctx      context.Context
	unit     *Unit
	tracer   trace.Tracer
	parent   trace.SpanContext
	current  *trace.Span
	observer PhaseObserver
}

func (p *phases) run(name string, fn func() string) error {
	if err := p.ctx.Err(); err != nil {
		return err
	}
	span := trace.Begin(p.tracer, trace.ScopePhase, name, p.parent)
	p.current = span
	endTimer := p.unit.Timer.Begin(name)
	start := time.Now()
	if p.observer != nil {
		p.observer(PhaseEvent{Name: name, Status: PhaseStart})
	}

	note := fn()

	endTimer(note)
	span.End(note)
	if p.observer != nil {
		p.observer(PhaseEvent{Name: name, Status: PhaseEnd, Elapsed: time.Since(start), Failed: p.unit.Failed()})
	}
	return nil
}

func (p *phases) spanCtx() context.Context {
	return trace.WithSpan(p.ctx, p.current)
}
