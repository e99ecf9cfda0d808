package vm

import (
	"fmt"
	"io"
)

// Tracer outputs execution traces for debugging.
type Tracer struct {
	w io.Writer
}

// NewTracer creates a new tracer that writes to w.
func NewTracer(w io.Writer) *Tracer {
	return &Tracer{w: w}
}

// Format: [depth=N] <func> <block> <instr>
func (t *Tracer) instr(depth int, fn *Func, b *Block, in *Instr) {
	if t == nil || t.w == nil {
		return
	}
	fmt.Fprintf(t.w, "[depth=%d] %s %s %s\n", depth, fn.name, b.name, in)
}

func (t *Tracer) hostCall(depth int, name string, args []Value) {
	if t == nil || t.w == nil {
		return
	}
	fmt.Fprintf(t.w, "[depth=%d] host %s%v\n", depth, name, args)
}

func (t *Tracer) heapAlloc(obj *Object) {
	if t == nil || t.w == nil {
		return
	}
	fmt.Fprintf(t.w, "[heap] alloc obj#%d size=%d\n", obj.ID, obj.Size)
}

func (t *Tracer) heapRelease(obj *Object) {
	if t == nil || t.w == nil {
		return
	}
	fmt.Fprintf(t.w, "[heap] release obj#%d tag=%d\n", obj.ID, obj.Tag())
}
