package layout

import (
	"errors"
	"testing"

	"scriptc/internal/types"
)

func newTestRegistry() (*Registry, *types.Interner) {
	in := types.NewInterner()
	return NewRegistry(X86_64LinuxGNU(), in), in
}

func TestLayoutDeterminism(t *testing.T) {
	r1, in1 := newTestRegistry()
	b1 := in1.Builtins()
	d1, err := r1.LayoutOf(in1.Object([]types.Prop{{Name: "y", Type: b1.Number}, {Name: "flag", Type: b1.Bool}, {Name: "x", Type: b1.I32}}))
	if err != nil {
		t.Fatalf("LayoutOf: %v", err)
	}

	r2, in2 := newTestRegistry()
	b2 := in2.Builtins()
	d2, err := r2.LayoutOf(in2.Object([]types.Prop{{Name: "x", Type: b2.I32}, {Name: "y", Type: b2.Number}, {Name: "flag", Type: b2.Bool}}))
	if err != nil {
		t.Fatalf("LayoutOf: %v", err)
	}

	if d1.Size != d2.Size || d1.Tag != d2.Tag || len(d1.Fields) != len(d2.Fields) {
		t.Fatalf("descriptors differ: %s vs %s", d1, d2)
	}
	for i := range d1.Fields {
		f1, f2 := d1.Fields[i], d2.Fields[i]
		if f1.Name != f2.Name || f1.Slot != f2.Slot || f1.Offset != f2.Offset || f1.Repr.String() != f2.Repr.String() {
			t.Fatalf("field %d differs: %+v vs %+v", i, f1, f2)
		}
	}
}

func TestLayoutOffsetsAndHeader(t *testing.T) {
	r, in := newTestRegistry()
	b := in.Builtins()
	d, err := r.LayoutOf(in.Object([]types.Prop{
		{Name: "a", Type: b.I8},
		{Name: "b", Type: b.Number},
		{Name: "c", Type: b.I32},
		{Name: "d", Type: b.Bool},
	}))
	if err != nil {
		t.Fatalf("LayoutOf: %v", err)
	}
	want := []struct {
		name   string
		slot   int
		offset int
	}{
		{"a", 2, 8},
		{"b", 3, 16},
		{"c", 4, 24},
		{"d", 5, 28},
	}
	for i, w := range want {
		f := d.Fields[i]
		if f.Name != w.name || f.Slot != w.slot || f.Offset != w.offset {
			t.Fatalf("field %d: want %+v, got %+v", i, w, f)
		}
	}
	if d.Size != 32 || d.Align != 8 || !d.HasRefcount {
		t.Fatalf("unexpected size/align: %d/%d", d.Size, d.Align)
	}
	if d.Tag <= ClosureTag {
		t.Fatalf("object tag %d collides with reserved tags", d.Tag)
	}
}

func TestLayoutSharedShapeAndNames(t *testing.T) {
	r, in := newTestRegistry()
	b := in.Builtins()
	obj := in.Object([]types.Prop{{Name: "x", Type: b.Number}})
	alias := in.NewAlias("P")
	in.SetAlias(alias, obj)

	viaAlias, err := r.LayoutOf(alias)
	if err != nil {
		t.Fatalf("LayoutOf alias: %v", err)
	}
	direct, err := r.LayoutOf(obj)
	if err != nil {
		t.Fatalf("LayoutOf object: %v", err)
	}
	if viaAlias != direct || viaAlias.Name != "P" {
		t.Fatalf("alias and object should share descriptor P, got %q and %q", viaAlias.Name, direct.Name)
	}

	anon, err := r.LayoutOf(in.Object([]types.Prop{{Name: "z", Type: b.Number}}))
	if err != nil {
		t.Fatalf("LayoutOf anon: %v", err)
	}
	if anon.Name != "anon.1" {
		t.Fatalf("anonymous shape should be named anon.1, got %q", anon.Name)
	}
}

func TestLayoutNestedObjects(t *testing.T) {
	r, in := newTestRegistry()
	b := in.Builtins()
	inner := in.Object([]types.Prop{{Name: "v", Type: b.Number}})
	outer := in.Object([]types.Prop{{Name: "child", Type: inner}, {Name: "n", Type: b.I64}})
	d, err := r.LayoutOf(outer)
	if err != nil {
		t.Fatalf("LayoutOf: %v", err)
	}
	child, err := d.Field("child")
	if err != nil {
		t.Fatalf("Field: %v", err)
	}
	if child.Repr.Kind != ReprObject || child.Repr.Layout == nil || !child.Repr.IsCounted() {
		t.Fatalf("child should be a counted object pointer, got %s", child.Repr)
	}
	if len(d.CountedFields()) != 1 {
		t.Fatalf("expected one counted field")
	}
}

func TestLayoutRecursiveTypeFails(t *testing.T) {
	r, in := newTestRegistry()
	node := in.NewAlias("Node")
	in.SetAlias(node, in.Object([]types.Prop{{Name: "next", Type: node}}))
	_, err := r.LayoutOf(node)
	var rec *RecursiveTypeError
	if !errors.As(err, &rec) {
		t.Fatalf("expected RecursiveTypeError, got %v", err)
	}
	if len(rec.Cycle) != 2 || rec.Cycle[0] != "Node" {
		t.Fatalf("unexpected cycle %v", rec.Cycle)
	}
	// A failed resolution must not leave a half-built descriptor behind.
	if _, err := r.LayoutOf(node); !errors.As(err, &rec) {
		t.Fatalf("second lookup should fail the same way, got %v", err)
	}
}

func TestLayoutRejectsFunctionTypes(t *testing.T) {
	r, in := newTestRegistry()
	b := in.Builtins()
	fn := in.Func([]types.TypeID{b.Number}, b.Void)
	var ns *NotStructuralError
	if _, err := r.LayoutOf(fn); !errors.As(err, &ns) {
		t.Fatalf("expected NotStructuralError, got %v", err)
	}
	repr, err := r.Resolve(fn)
	if err != nil || repr.Kind != ReprFunc {
		t.Fatalf("function types resolve to function values, got %v %v", repr, err)
	}
}

func TestFieldNotFound(t *testing.T) {
	r, in := newTestRegistry()
	d, _ := r.LayoutOf(in.Object([]types.Prop{{Name: "x", Type: in.Builtins().Number}}))
	var nf *FieldNotFoundError
	if _, err := d.Field("y"); !errors.As(err, &nf) {
		t.Fatalf("expected FieldNotFoundError, got %v", err)
	}
}

func TestReservedLayouts(t *testing.T) {
	r, _ := newTestRegistry()
	c := r.Closure()
	if c.Tag != ClosureTag || c.Fields[0].Name != "code" || c.Fields[1].Name != "env" {
		t.Fatalf("unexpected closure layout: %s", c)
	}
	s := r.Scope("f", []FieldSpec{{Name: "n", Repr: FloatRepr}, {Name: "acc", Repr: FloatRepr}})
	if s.Fields[0].Name != ParentField || s.Fields[0].Slot != HeaderSlots {
		t.Fatalf("parent link must be the first field: %s", s)
	}
	if s.Fields[1].Name != "acc" || s.Fields[2].Name != "n" {
		t.Fatalf("locals must be sorted: %s", s)
	}
	if r.Scope("f", nil) != s {
		t.Fatalf("scope layouts must be cached by key")
	}
}
