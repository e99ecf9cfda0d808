package layout

import (
	"fmt"
	"slices"
	"strings"

	"scriptc/internal/types"
)

// Registry resolves static types to representations and owns every layout
// descriptor of one compilation unit. Descriptors are created on first use
// and never change afterwards.
type Registry struct {
	Target Target
	Types  *types.Interner

	byType  map[types.TypeID]*Descriptor
	byShape map[string]*Descriptor
	scopes  map[string]*Descriptor
	all     []*Descriptor
	nextTag int32
	anon    int
	closure *Descriptor

	stack []types.TypeID
	index map[types.TypeID]int
}

// NewRegistry creates a registry with the closure layout preinstalled.
func NewRegistry(target Target, in *types.Interner) *Registry {
	r := &Registry{
		Target:  target,
		Types:   in,
		byType:  make(map[types.TypeID]*Descriptor, 32),
		byShape: make(map[string]*Descriptor, 32),
		scopes:  make(map[string]*Descriptor, 16),
		index:   make(map[types.TypeID]int, 8),
		nextTag: ClosureTag + 1,
	}
	r.closure = Build(target, ClosureTag, "$closure", DescClosure, []FieldSpec{
		{Name: "code", Repr: CodeRepr},
		{Name: "env", Repr: ScopeRepr},
	})
	r.all = append(r.all, r.closure)
	return r
}

// Closure returns the reserved closure layout {code, env}.
func (r *Registry) Closure() *Descriptor {
	return r.closure
}

// Descriptors lists every layout in tag order.
func (r *Registry) Descriptors() []*Descriptor {
	return r.all
}

// Resolve maps a static type to its representation, deriving the layout of
// structural types on demand.
func (r *Registry) Resolve(t types.TypeID) (Repr, error) {
	tt := r.Types.Resolved(t)
	switch tt.Kind {
	case types.KindVoid:
		return VoidRepr, nil
	case types.KindBool:
		return BoolRepr, nil
	case types.KindNumber:
		return FloatRepr, nil
	case types.KindInt:
		return Repr{Kind: ReprInt, Bits: int(tt.Width)}, nil
	case types.KindString:
		return Repr{Kind: ReprString, Type: t}, nil
	case types.KindFunc:
		return Repr{Kind: ReprFunc, Type: r.Types.Unalias(t)}, nil
	case types.KindObject:
		d, err := r.LayoutOf(t)
		if err != nil {
			return Repr{}, err
		}
		return Repr{Kind: ReprObject, Layout: d, Type: t}, nil
	}
	return Repr{}, &NotStructuralError{Type: t, Desc: r.Types.String(t)}
}

// LayoutOf returns the descriptor of a structural object type. Function
// types and primitives yield *NotStructuralError.
func (r *Registry) LayoutOf(t types.TypeID) (*Descriptor, error) {
	canon := r.Types.Unalias(t)
	if d, ok := r.byType[canon]; ok {
		return d, nil
	}
	tt := r.Types.Resolved(canon)
	if tt.Kind != types.KindObject {
		return nil, &NotStructuralError{Type: t, Desc: r.Types.String(t)}
	}

	if idx, ok := r.index[canon]; ok {
		cycle := make([]string, 0, len(r.stack)-idx+1)
		for _, id := range r.stack[idx:] {
			cycle = append(cycle, r.displayName(id))
		}
		cycle = append(cycle, r.displayName(t))
		return nil, &RecursiveTypeError{Type: canon, Cycle: cycle}
	}
	r.index[canon] = len(r.stack)
	r.stack = append(r.stack, t)
	defer func() {
		r.stack = r.stack[:len(r.stack)-1]
		delete(r.index, canon)
	}()

	specs := make([]FieldSpec, 0, len(tt.Props))
	for _, p := range tt.Props {
		repr, err := r.Resolve(p.Type)
		if err != nil {
			return nil, err
		}
		specs = append(specs, FieldSpec{Name: p.Name, Repr: repr})
	}

	shape := shapeKey(DescObject, specs)
	if d, ok := r.byShape[shape]; ok {
		r.byType[canon] = d
		return d, nil
	}
	d := r.install(r.nameFor(t), DescObject, specs)
	d.Type = canon
	r.byType[canon] = d
	r.byShape[shape] = d
	return d, nil
}

// Scope returns the scope-object layout registered under key, building it
// from locals on first use. The parent link is always present.
func (r *Registry) Scope(key string, locals []FieldSpec) *Descriptor {
	if d, ok := r.scopes[key]; ok {
		return d
	}
	specs := make([]FieldSpec, 0, len(locals)+1)
	specs = append(specs, FieldSpec{Name: ParentField, Repr: ScopeRepr})
	specs = append(specs, locals...)
	d := r.install("scope."+key, DescScope, specs)
	r.scopes[key] = d
	return d
}

// ParentField names the scope-object link to the enclosing scope object.
// Its slot depends on the other field names; look it up with Field.
const ParentField = "$parent"

func (r *Registry) install(name string, kind DescKind, specs []FieldSpec) *Descriptor {
	d := Build(r.Target, r.nextTag, name, kind, specs)
	r.nextTag++
	r.all = append(r.all, d)
	return d
}

func (r *Registry) nameFor(t types.TypeID) string {
	if name := r.Types.AliasName(t); name != "" {
		return name
	}
	r.anon++
	return fmt.Sprintf("anon.%d", r.anon)
}

func (r *Registry) displayName(t types.TypeID) string {
	if name := r.Types.AliasName(t); name != "" {
		return name
	}
	return r.Types.String(t)
}

func shapeKey(kind DescKind, specs []FieldSpec) string {
	names := make([]string, 0, len(specs))
	for _, s := range specs {
		names = append(names, s.Name+":"+s.Repr.fingerprint())
	}
	slices.Sort(names)
	return kind.String() + "{" + strings.Join(names, ",") + "}"
}
