package lower

import (
	"scriptc/internal/layout"
	"scriptc/internal/target"
)

// Names of the generated runtime helpers.
const (
	retainName    = "__scriptc_retain"
	releaseName   = "__scriptc_release"
	fnRetainName  = "__scriptc_fn_retain"
	fnReleaseName = "__scriptc_fn_release"
)

var (
	hookAllocSig   = &target.Sig{Ret: target.Ptr, Params: []target.Type{target.Ptr, target.I64}}
	hookReleaseSig = &target.Sig{Ret: target.Void, Params: []target.Type{target.Ptr, target.Ptr}}
	helperSig      = &target.Sig{Ret: target.Void, Params: []target.Type{target.Ptr, target.Ptr}}
	headerStruct   = &target.Struct{Name: "$header", Fields: []target.Type{target.I32, target.I32}}
)

type runtimeFuncs struct {
	allocate, releaseHook target.Func
	retain, release       target.Func
	fnRetain, fnRelease   target.Func
}

func (t *Translator) declareRuntime() {
	t.b.DeclareStruct(headerStruct)
	t.rt = runtimeFuncs{
		allocate:    t.b.DeclareFunc(t.opts.AllocateHook, hookAllocSig),
		releaseHook: t.b.DeclareFunc(t.opts.ReleaseHook, hookReleaseSig),
		retain:      t.b.DeclareFunc(retainName, helperSig),
		release:     t.b.DeclareFunc(releaseName, helperSig),
		fnRetain:    t.b.DeclareFunc(fnRetainName, helperSig),
		fnRelease:   t.b.DeclareFunc(fnReleaseName, helperSig),
	}
}

// irType maps a representation to the target type of its values.
func irType(r layout.Repr) target.Type {
	switch r.Kind {
	case layout.ReprVoid:
		return target.Void
	case layout.ReprBool:
		return target.I1
	case layout.ReprInt:
		return target.IntType(r.Bits)
	case layout.ReprFloat:
		return target.F64
	}
	return target.Ptr
}

// structOf declares the target struct of a descriptor on first use.
func (t *Translator) structOf(d *layout.Descriptor) *target.Struct {
	if s, ok := t.structs[d]; ok {
		return s
	}
	fields := make([]target.Type, 0, d.SlotCount())
	fields = append(fields, target.I32, target.I32)
	for _, f := range d.Fields {
		fields = append(fields, irType(f.Repr))
	}
	s := &target.Struct{Name: d.Name, Fields: fields}
	t.b.DeclareStruct(s)
	t.structs[d] = s
	return s
}

// construct allocates an object of layout d with refcount 1. Pointer
// fields start out null.
func (t *Translator) construct(d *layout.Descriptor) target.Value {
	s := t.structOf(d)
	obj := t.b.Call(hookAllocSig, t.rt.allocate, t.b.Null(), t.b.ConstInt(target.I64, int64(d.Size)))
	t.b.Store(t.b.FieldAddr(s, obj, layout.TagSlot), t.b.ConstInt(target.I32, int64(d.Tag)))
	t.b.Store(t.b.FieldAddr(s, obj, layout.RefcountSlot), t.b.ConstInt(target.I32, 1))
	for _, f := range d.Fields {
		if f.Repr.IsPointer() {
			t.b.Store(t.b.FieldAddr(s, obj, f.Slot), t.b.Null())
		}
	}
	t.stats.objects++
	return obj
}

func (t *Translator) fieldAddr(d *layout.Descriptor, base target.Value, f layout.Field) target.Value {
	return t.b.FieldAddr(t.structOf(d), base, f.Slot)
}

func (t *Translator) loadField(d *layout.Descriptor, base target.Value, f layout.Field) target.Value {
	return t.b.Load(irType(f.Repr), t.fieldAddr(d, base, f))
}

// storeField stores v into field f of base, retaining v and releasing the
// previous occupant.
func (t *Translator) storeField(d *layout.Descriptor, base target.Value, f layout.Field, v target.Value) {
	t.storeOwned(t.fieldAddr(d, base, f), f.Repr, v)
}

// storeOwned stores v at addr. The slot owns one unit of a counted value:
// the new value is retained before the previous one is released.
func (t *Translator) storeOwned(addr target.Value, r layout.Repr, v target.Value) {
	if !r.IsCounted() {
		t.b.Store(addr, v)
		return
	}
	t.retain(r, v)
	old := t.b.Load(target.Ptr, addr)
	t.b.Store(addr, v)
	t.release(r, old)
}

// retain adds one unit of ownership to v when its representation is
// counted. Null values are ignored at run time.
func (t *Translator) retain(r layout.Repr, v target.Value) {
	switch r.Kind {
	case layout.ReprObject, layout.ReprScope:
		t.b.Call(helperSig, t.rt.retain, t.b.Null(), v)
	case layout.ReprFunc:
		t.b.Call(helperSig, t.rt.fnRetain, t.b.Null(), v)
	}
}

// release drops one unit of ownership of v.
func (t *Translator) release(r layout.Repr, v target.Value) {
	switch r.Kind {
	case layout.ReprObject, layout.ReprScope:
		t.b.Call(helperSig, t.rt.release, t.b.Null(), v)
	case layout.ReprFunc:
		t.b.Call(helperSig, t.rt.fnRelease, t.b.Null(), v)
	}
}

// defineRetain emits __scriptc_retain: increment the refcount of a
// non-null object.
func (t *Translator) defineRetain() {
	_, params := t.b.DefineFunc(t.rt.retain)
	p := params[1]
	inc, done := t.b.NewBlock("inc"), t.b.NewBlock("done")
	t.b.CondBr(t.b.Compare(target.Eq, p, t.b.Null()), done, inc)
	t.b.SetInsert(inc)
	rc := t.b.FieldAddr(headerStruct, p, layout.RefcountSlot)
	t.b.Store(rc, t.b.Binary(target.Add, t.b.Load(target.I32, rc), t.b.ConstInt(target.I32, 1)))
	t.b.Br(done)
	t.b.SetInsert(done)
	t.b.Ret(nil)
}

// defineFnHelper emits a function-value helper: values tagged as closures
// are forwarded to inner, code pointers are left alone.
func (t *Translator) defineFnHelper(fn, inner target.Func) {
	_, params := t.b.DefineFunc(fn)
	p := params[1]
	check, call, done := t.b.NewBlock("check"), t.b.NewBlock("closure"), t.b.NewBlock("done")
	t.b.CondBr(t.b.Compare(target.Eq, p, t.b.Null()), done, check)
	t.b.SetInsert(check)
	tag := t.b.Load(target.I32, t.b.FieldAddr(headerStruct, p, layout.TagSlot))
	t.b.CondBr(t.b.Compare(target.Eq, tag, t.b.ConstInt(target.I32, int64(layout.ClosureTag))), call, done)
	t.b.SetInsert(call)
	t.b.Call(helperSig, inner, t.b.Null(), p)
	t.b.Br(done)
	t.b.SetInsert(done)
	t.b.Ret(nil)
}

// defineRelease emits __scriptc_release. When the decremented count drops
// to zero or below, the object's tag selects the drop routine: counted
// fields are released, then the release hook runs once. It is emitted
// after all user code so that every layout is known.
func (t *Translator) defineRelease() {
	_, params := t.b.DefineFunc(t.rt.release)
	p := params[1]
	dec, drop, done := t.b.NewBlock("dec"), t.b.NewBlock("drop"), t.b.NewBlock("done")
	t.b.CondBr(t.b.Compare(target.Eq, p, t.b.Null()), done, dec)

	t.b.SetInsert(dec)
	rcAddr := t.b.FieldAddr(headerStruct, p, layout.RefcountSlot)
	rc := t.b.Binary(target.Sub, t.b.Load(target.I32, rcAddr), t.b.ConstInt(target.I32, 1))
	t.b.Store(rcAddr, rc)
	t.b.CondBr(t.b.Compare(target.Le, rc, t.b.ConstInt(target.I32, 0)), drop, done)

	t.b.SetInsert(drop)
	tag := t.b.Load(target.I32, t.b.FieldAddr(headerStruct, p, layout.TagSlot))
	free := t.b.NewBlock("free")
	for _, d := range t.reg.Descriptors() {
		counted := d.CountedFields()
		if len(counted) == 0 {
			continue
		}
		match, next := t.b.NewBlock("drop."+d.Name), t.b.NewBlock("next")
		t.b.CondBr(t.b.Compare(target.Eq, tag, t.b.ConstInt(target.I32, int64(d.Tag))), match, next)
		t.b.SetInsert(match)
		for _, f := range counted {
			t.release(f.Repr, t.loadField(d, p, f))
		}
		t.b.Br(free)
		t.b.SetInsert(next)
	}
	t.b.Br(free)

	t.b.SetInsert(free)
	t.b.Call(hookReleaseSig, t.rt.releaseHook, t.b.Null(), p)
	t.b.Br(done)
	t.b.SetInsert(done)
	t.b.Ret(nil)
}

func (t *Translator) defineRuntime() {
	t.defineRetain()
	t.defineFnHelper(t.rt.fnRetain, t.rt.retain)
	t.defineFnHelper(t.rt.fnRelease, t.rt.release)
	t.defineRelease()
}
