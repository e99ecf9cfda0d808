package vm

import (
	"fmt"
	"slices"
	"strings"

	"scriptc/internal/layout"
)

// Object is a heap allocation. Slots grow on first store; the byte size
// requested from the allocator is kept for diagnostics.
type Object struct {
	ID       uint64
	Size     int64
	Slots    []Value
	Released bool
}

// Tag returns the tag word, or -1 when it was never stored.
func (o *Object) Tag() int64 {
	if len(o.Slots) <= layout.TagSlot || o.Slots[layout.TagSlot].Kind != VKInt {
		return -1
	}
	return o.Slots[layout.TagSlot].I
}

// Refcount returns the refcount word, or -1 when it was never stored.
func (o *Object) Refcount() int64 {
	if len(o.Slots) <= layout.RefcountSlot || o.Slots[layout.RefcountSlot].Kind != VKInt {
		return -1
	}
	return o.Slots[layout.RefcountSlot].I
}

// Heap owns every object allocated by a run. Objects are never reused, so
// a released object stays addressable and further access is detected.
type Heap struct {
	nextID   uint64
	objs     []*Object
	Allocs   int
	Releases int
}

func (h *Heap) alloc(size int64) *Object {
	h.nextID++
	obj := &Object{ID: h.nextID, Size: size}
	h.objs = append(h.objs, obj)
	h.Allocs++
	return obj
}

// Live returns the objects that were never released.
func (h *Heap) Live() []*Object {
	var out []*Object
	for _, o := range h.objs {
		if !o.Released {
			out = append(out, o)
		}
	}
	return out
}

// Objects returns every object allocated so far.
func (h *Heap) Objects() []*Object {
	return slices.Clone(h.objs)
}

func (vm *VM) allocate(size int64) Value {
	if size <= 0 {
		vm.panicf(PanicInvalidPointer, "allocation of %d bytes", size)
	}
	obj := vm.Heap.alloc(size)
	if vm.Trace != nil {
		vm.Trace.heapAlloc(obj)
	}
	return PtrValue(Ptr{Kind: PObject, Obj: obj})
}

func (vm *VM) release(v Value) {
	if v.Kind != VKPtr || v.P.Kind != PObject {
		vm.panicf(PanicInvalidPointer, "release of %s", v)
	}
	obj := v.P.Obj
	if obj.Released {
		vm.panicf(PanicDoubleRelease, "double release: obj#%d tag=%d", obj.ID, obj.Tag())
	}
	if rc := obj.Refcount(); rc > 0 {
		vm.panicf(PanicReleasedLive, "release of obj#%d tag=%d with refcount %d", obj.ID, obj.Tag(), rc)
	}
	obj.Released = true
	vm.Heap.Releases++
	if vm.Trace != nil {
		vm.Trace.heapRelease(obj)
	}
}

func (vm *VM) object(p Ptr) *Object {
	if p.Obj == nil {
		vm.panic(PanicNullDeref, "dereference of null")
	}
	if p.Obj.Released {
		vm.panicf(PanicUseAfterFree, "use after release: obj#%d slot %d", p.Obj.ID, p.Slot)
	}
	return p.Obj
}

func (vm *VM) load(addr Value) Value {
	if addr.Kind != VKPtr {
		vm.panicf(PanicTypeMismatch, "load through %s", addr.Kind)
	}
	p := addr.P
	switch p.Kind {
	case PNull:
		vm.panic(PanicNullDeref, "load through null")
	case PStack:
		if p.Cell.Kind == VKInvalid {
			vm.panic(PanicUseBeforeInit, "stack slot read before store")
		}
		return *p.Cell
	case PField:
		obj := vm.object(p)
		if p.Slot >= len(obj.Slots) || obj.Slots[p.Slot].Kind == VKInvalid {
			vm.panicf(PanicUseBeforeInit, "obj#%d slot %d read before store", obj.ID, p.Slot)
		}
		return obj.Slots[p.Slot]
	case PCodeField:
		if p.Slot == layout.TagSlot {
			return IntValue(0)
		}
		vm.panicf(PanicInvalidPointer, "slot %d read through code pointer @%s", p.Slot, p.Fn.name)
	}
	vm.panicf(PanicInvalidPointer, "load through %s", p)
	return Value{}
}

func (vm *VM) store(addr, v Value) {
	if addr.Kind != VKPtr {
		vm.panicf(PanicTypeMismatch, "store through %s", addr.Kind)
	}
	p := addr.P
	switch p.Kind {
	case PNull:
		vm.panic(PanicNullDeref, "store through null")
	case PStack:
		*p.Cell = v
		return
	case PField:
		obj := vm.object(p)
		if p.Slot >= len(obj.Slots) {
			obj.Slots = append(obj.Slots, make([]Value, p.Slot+1-len(obj.Slots))...)
		}
		obj.Slots[p.Slot] = v
		return
	}
	vm.panicf(PanicInvalidPointer, "store through %s", p)
}

func (vm *VM) fieldAddr(base Value, slot int) Value {
	if base.Kind != VKPtr {
		vm.panicf(PanicTypeMismatch, "field address of %s", base.Kind)
	}
	switch base.P.Kind {
	case PObject:
		return PtrValue(Ptr{Kind: PField, Obj: base.P.Obj, Slot: slot})
	case PCode:
		return PtrValue(Ptr{Kind: PCodeField, Fn: base.P.Fn, Slot: slot})
	case PNull:
		vm.panicf(PanicNullDeref, "field %d of null", slot)
	}
	vm.panicf(PanicInvalidPointer, "field address of %s", base.P)
	return Value{}
}

// CheckBalanced reports an error when objects allocated by the run were
// never handed to the release hook.
func (vm *VM) CheckBalanced() error {
	live := vm.Heap.Live()
	if len(live) == 0 {
		return nil
	}
	parts := make([]string, 0, len(live))
	for _, o := range live {
		parts = append(parts, fmt.Sprintf("obj#%d(tag=%d rc=%d)", o.ID, o.Tag(), o.Refcount()))
	}
	return &VMError{
		Code:    PanicLeak,
		Message: fmt.Sprintf("%d object(s) never released: %s", len(live), strings.Join(parts, ", ")),
	}
}
