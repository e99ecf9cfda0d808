// Package lower translates a checked unit into target IR. It owns the
// object model (construction, retain and release of reference counted
// objects), builds scope objects for escaping containers, turns function
// declarations and arrow functions into pure code or closures, and
// translates statements and expressions into builder calls.
package lower

import (
	"context"
	"fmt"
	"strconv"

	"scriptc/internal/ast"
	"scriptc/internal/capture"
	"scriptc/internal/layout"
	"scriptc/internal/scope"
	"scriptc/internal/sema"
	"scriptc/internal/source"
	"scriptc/internal/symbols"
	"scriptc/internal/target"
	"scriptc/internal/trace"
	"scriptc/internal/types"
)

// Input bundles what the frontend produced for one unit.
type Input struct {
	Unit    *ast.Unit
	Symbols *symbols.Table
	Info    *sema.Info
	Types   *types.Interner
	// Capture and Registry are computed when nil.
	Capture  *capture.Result
	Registry *layout.Registry
	Target   layout.Target
}

// Options names the symbols the generated module defines and imports.
type Options struct {
	Entry        string
	AllocateHook string
	ReleaseHook  string
}

// DefaultOptions returns the default entry and hook names.
func DefaultOptions() Options {
	return Options{
		Entry:        "__scriptc_start",
		AllocateHook: "allocate",
		ReleaseHook:  "release",
	}
}

// FuncInfo describes one generated code body.
type FuncInfo struct {
	Name string
	Node ast.NodeID
	Pure bool
}

// Result describes a translated unit.
type Result struct {
	Entry     string
	Registry  *layout.Registry
	Capture   *capture.Result
	Functions []FuncInfo
	// Objects counts allocation sites, scope objects and closures included.
	Objects int
}

type pending struct {
	node   ast.NodeID
	parent *scope.Node
	code   target.Func
}

type fnState struct {
	node   ast.NodeID
	code   target.Func
	env    target.Value
	result layout.Repr
}

// Translator lowers one unit. It is single use.
type Translator struct {
	ctx  context.Context
	in   Input
	u    *ast.Unit
	reg  *layout.Registry
	cap  *capture.Result
	b    target.Builder
	opts Options

	rt      runtimeFuncs
	structs map[*layout.Descriptor]*target.Struct
	codes   map[ast.NodeID]target.Func
	queue   []pending
	fn      *fnState
	funcs   []FuncInfo
	span    trace.SpanContext

	stats struct {
		objects int
	}
}

// Lower translates in into b. On error nothing useful is left in b.
func Lower(ctx context.Context, in Input, b target.Builder, opts Options) (*Result, error) {
	def := DefaultOptions()
	if opts.Entry == "" {
		opts.Entry = def.Entry
	}
	if opts.AllocateHook == "" {
		opts.AllocateHook = def.AllocateHook
	}
	if opts.ReleaseHook == "" {
		opts.ReleaseHook = def.ReleaseHook
	}
	if in.Target.Triple == "" {
		in.Target = layout.X86_64LinuxGNU()
	}
	if in.Registry == nil {
		in.Registry = layout.NewRegistry(in.Target, in.Types)
	}
	if in.Capture == nil {
		in.Capture = capture.Analyze(in.Unit, in.Symbols)
	}

	t := &Translator{
		ctx:     ctx,
		in:      in,
		u:       in.Unit,
		reg:     in.Registry,
		cap:     in.Capture,
		b:       b,
		opts:    opts,
		structs: make(map[*layout.Descriptor]*target.Struct),
		codes:   make(map[ast.NodeID]target.Func),
		span:    trace.CurrentSpan(ctx),
	}
	if err := t.run(); err != nil {
		return nil, err
	}
	return &Result{
		Entry:     opts.Entry,
		Registry:  t.reg,
		Capture:   t.cap,
		Functions: t.funcs,
		Objects:   t.stats.objects,
	}, nil
}

func (t *Translator) run() error {
	if err := t.checkExternNames(); err != nil {
		return err
	}
	t.declareRuntime()
	if err := t.lowerEntry(); err != nil {
		return err
	}
	for len(t.queue) > 0 {
		p := t.queue[0]
		t.queue = t.queue[1:]
		if err := t.lowerFunction(p); err != nil {
			return err
		}
	}
	t.defineRuntime()
	return nil
}

// checkExternNames rejects externs that would collide with the symbols the
// module defines or the hooks it imports with a different signature.
func (t *Translator) checkExternNames() error {
	reserved := map[string]bool{
		t.opts.Entry:        true,
		t.opts.AllocateHook: true,
		t.opts.ReleaseHook:  true,
		retainName:          true,
		releaseName:         true,
		fnRetainName:        true,
		fnReleaseName:       true,
	}
	var err error
	t.u.Walk(t.u.Root, func(id ast.NodeID) bool {
		n := t.u.Node(id)
		if err == nil && n.Kind == ast.KindDeclareFunc && reserved[n.Name] {
			err = t.unsupported(n.Kind.String(), n.Span, fmt.Sprintf("extern %q collides with a generated or runtime symbol", n.Name))
		}
		return err == nil && !n.Kind.IsType()
	})
	return err
}

func (t *Translator) lowerEntry() error {
	code := t.b.DeclareFunc(t.opts.Entry, &target.Sig{Ret: target.Void})
	t.b.DefineFunc(code)
	t.fn = &fnState{node: ast.NoNode, code: code, env: t.b.Null(), result: layout.VoidRepr}
	t.funcs = append(t.funcs, FuncInfo{Name: t.opts.Entry, Node: t.u.Root, Pure: true})

	root := scope.NewRoot(t.u.Root)
	if err := t.enterContainer(root, t.u.Root); err != nil {
		return err
	}
	if err := t.lowerStmts(root, t.u.Node(t.u.Root).List); err != nil {
		return err
	}
	if !t.b.Terminated() {
		t.emitDeferred(root)
		t.b.Ret(nil)
	}
	return nil
}

// typeOf returns the static type of id.
func (t *Translator) typeOf(id ast.NodeID) types.TypeID {
	return t.in.Info.TypeOf(id)
}

// reprOf resolves the representation of the static type of id.
func (t *Translator) reprOf(id ast.NodeID) (layout.Repr, error) {
	tid := t.typeOf(id)
	if tid == types.NoTypeID {
		n := t.u.Node(id)
		return layout.Repr{}, t.unsupported(n.Kind.String(), n.Span, "no static type")
	}
	if t.in.Types.Resolved(tid).Kind == types.KindNull {
		return layout.Repr{Kind: layout.ReprObject, Type: tid}, nil
	}
	r, err := t.reg.Resolve(tid)
	if err != nil {
		return layout.Repr{}, t.at(t.u.Node(id).Span, err)
	}
	return r, nil
}

// signature builds the target signature of a function type. Every code
// body takes the environment pointer first.
func (t *Translator) signature(fnType types.TypeID, sp source.Span) (*target.Sig, layout.Repr, []layout.Repr, error) {
	ft := t.in.Types.Resolved(fnType)
	if ft.Kind != types.KindFunc {
		return nil, layout.Repr{}, nil, &UnknownCalleeRepresentationError{Span: sp, Type: t.in.Types.String(fnType)}
	}
	params := make([]layout.Repr, 0, len(ft.Params))
	sig := &target.Sig{Params: make([]target.Type, 0, len(ft.Params)+1)}
	sig.Params = append(sig.Params, target.Ptr)
	for _, p := range ft.Params {
		r, err := t.reg.Resolve(p)
		if err != nil {
			return nil, layout.Repr{}, nil, t.at(sp, err)
		}
		params = append(params, r)
		sig.Params = append(sig.Params, irType(r))
	}
	res, err := t.reg.Resolve(ft.Result)
	if err != nil {
		return nil, layout.Repr{}, nil, t.at(sp, err)
	}
	sig.Ret = irType(res)
	return sig, res, params, nil
}

// codeName returns the symbol name of a function node.
func (t *Translator) codeName(fn ast.NodeID) string {
	n := t.u.Node(fn)
	id := strconv.FormatUint(uint64(fn), 10)
	switch n.Kind {
	case ast.KindDeclareFunc:
		return n.Name
	case ast.KindFuncDecl:
		return n.Name + "." + id
	}
	if p := t.u.Node(n.Parent); p != nil && p.Kind == ast.KindVarDecl && p.X == fn {
		return p.Name + "." + id
	}
	return "arrow." + id
}

// codeFor declares the code symbol of a function or extern once.
func (t *Translator) codeFor(fn ast.NodeID) (target.Func, error) {
	if c, ok := t.codes[fn]; ok {
		return c, nil
	}
	n := t.u.Node(fn)
	sig, _, _, err := t.signature(t.typeOf(fn), n.Span)
	if err != nil {
		return nil, err
	}
	c := t.b.DeclareFunc(t.codeName(fn), sig)
	t.codes[fn] = c
	return c, nil
}

// enqueue schedules the body of fn for translation below parent.
func (t *Translator) enqueue(fn ast.NodeID, parent *scope.Node) (target.Func, error) {
	_, seen := t.codes[fn]
	code, err := t.codeFor(fn)
	if err != nil || seen {
		return code, err
	}
	t.queue = append(t.queue, pending{node: fn, parent: parent, code: code})
	return code, nil
}
