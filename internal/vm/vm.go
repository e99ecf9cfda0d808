package vm

import (
	"errors"
	"fmt"
	"math"

	"scriptc/internal/target"
)

// HostFunc implements an undefined (extern) function. args include the
// leading env pointer.
type HostFunc func(vm *VM, args []Value) (Value, error)

// Options configures a VM.
type Options struct {
	// AllocateHook and ReleaseHook name the allocator hooks.
	AllocateHook string
	ReleaseHook  string
	// MaxSteps bounds the number of executed instructions; 0 means no limit.
	MaxSteps int
	Trace    *Tracer
}

// Frame is a function activation.
type Frame struct {
	Func *Func
	Regs []Value
}

// VM executes a recorded Module.
type VM struct {
	Mod   *Module
	Heap  *Heap
	Stack []Frame
	Trace *Tracer

	hosts    map[string]HostFunc
	maxSteps int
	steps    int
}

// New creates a VM with the allocator hooks bound.
func New(mod *Module, opts Options) *VM {
	vm := &VM{
		Mod:      mod,
		Heap:     &Heap{},
		Trace:    opts.Trace,
		hosts:    make(map[string]HostFunc, 8),
		maxSteps: opts.MaxSteps,
	}
	alloc, rel := opts.AllocateHook, opts.ReleaseHook
	if alloc == "" {
		alloc = "allocate"
	}
	if rel == "" {
		rel = "release"
	}
	vm.Bind(alloc, func(vm *VM, args []Value) (Value, error) {
		if len(args) != 2 || args[1].Kind != VKInt {
			return Value{}, fmt.Errorf("%s expects (env, i64)", alloc)
		}
		return vm.allocate(args[1].I), nil
	})
	vm.Bind(rel, func(vm *VM, args []Value) (Value, error) {
		if len(args) != 2 {
			return Value{}, fmt.Errorf("%s expects (env, ptr)", rel)
		}
		vm.release(args[1])
		return Value{}, nil
	})
	return vm
}

// Bind installs a host function for calls to the undefined function name.
func (vm *VM) Bind(name string, fn HostFunc) {
	vm.hosts[name] = fn
}

// Steps returns the number of instructions executed so far.
func (vm *VM) Steps() int {
	return vm.steps
}

// Run calls the function name with args and converts VM panics to errors.
func (vm *VM) Run(name string, args ...Value) (ret Value, err error) {
	f, ok := vm.Mod.Func(name)
	if !ok {
		return Value{}, fmt.Errorf("function %q not found", name)
	}
	defer func() {
		if r := recover(); r != nil {
			var vmErr *VMError
			if e, ok := r.(error); ok && errors.As(e, &vmErr) {
				vm.Stack = vm.Stack[:0]
				err = vmErr
				return
			}
			panic(r)
		}
	}()
	return vm.call(f, args), nil
}

func (vm *VM) call(f *Func, args []Value) Value {
	if !f.defined {
		host, ok := vm.hosts[f.name]
		if !ok {
			vm.panicf(PanicUnknownHost, "call to undefined function %s", f.name)
		}
		if vm.Trace != nil {
			vm.Trace.hostCall(len(vm.Stack), f.name, args)
		}
		v, err := host(vm, args)
		if err != nil {
			vm.panicf(PanicUnknownHost, "%s: %v", f.name, err)
		}
		return v
	}
	if len(args) != len(f.sig.Params) {
		vm.panicf(PanicTypeMismatch, "%s called with %d arguments, want %d", f.name, len(args), len(f.sig.Params))
	}
	regs := make([]Value, f.nregs)
	copy(regs, args)
	for _, id := range f.allocas {
		regs[id] = PtrValue(Ptr{Kind: PStack, Cell: new(Value)})
	}
	vm.Stack = append(vm.Stack, Frame{Func: f, Regs: regs})
	ret := vm.exec(f, regs)
	vm.Stack = vm.Stack[:len(vm.Stack)-1]
	return ret
}

func (vm *VM) exec(f *Func, regs []Value) Value {
	blk := f.entry
	for {
		if !blk.terminated() {
			vm.panicf(PanicUnimplemented, "block %s of %s has no terminator", blk.name, f.name)
		}
		var next *Block
		for i := range blk.Instrs {
			in := &blk.Instrs[i]
			vm.step()
			if vm.Trace != nil {
				vm.Trace.instr(len(vm.Stack), f, blk, in)
			}
			switch in.Op {
			case OpFieldAddr:
				regs[in.Dst] = vm.fieldAddr(vm.operand(regs, in.Args[0]), in.Slot)
			case OpLoad:
				regs[in.Dst] = vm.load(vm.operand(regs, in.Args[0]))
			case OpStore:
				vm.store(vm.operand(regs, in.Args[0]), vm.operand(regs, in.Args[1]))
			case OpCall:
				regs[in.Dst] = vm.execCall(regs, in)
			case OpBinary:
				regs[in.Dst] = vm.binary(in.BinOp, in.Type, vm.operand(regs, in.Args[0]), vm.operand(regs, in.Args[1]))
			case OpCompare:
				regs[in.Dst] = vm.compare(in.Pred, vm.operand(regs, in.Args[0]), vm.operand(regs, in.Args[1]))
			case OpCondBr:
				cond := vm.operand(regs, in.Args[0])
				if cond.Kind != VKBool {
					vm.panicf(PanicTypeMismatch, "branch on %s", cond.Kind)
				}
				if cond.Bool() {
					next = in.Targets[0]
				} else {
					next = in.Targets[1]
				}
			case OpBr:
				next = in.Targets[0]
			case OpRet:
				if len(in.Args) == 0 {
					return Value{}
				}
				return vm.operand(regs, in.Args[0])
			}
		}
		blk = next
	}
}

func (vm *VM) step() {
	vm.steps++
	if vm.maxSteps > 0 && vm.steps > vm.maxSteps {
		vm.panicf(PanicStepLimit, "step limit %d exceeded", vm.maxSteps)
	}
}

func (vm *VM) operand(regs []Value, v target.Value) Value {
	switch v := v.(type) {
	case *reg:
		return regs[v.id]
	case *konst:
		return v.v
	case *Func:
		return PtrValue(Ptr{Kind: PCode, Fn: v})
	}
	vm.panicf(PanicUnimplemented, "foreign operand %T", v)
	return Value{}
}

func (vm *VM) execCall(regs []Value, in *Instr) Value {
	callee := vm.operand(regs, in.Args[0])
	if callee.Kind != VKPtr || callee.P.Kind != PCode {
		vm.panicf(PanicInvalidPointer, "call through %s", callee)
	}
	args := make([]Value, 0, len(in.Args)-1)
	for _, a := range in.Args[1:] {
		args = append(args, vm.operand(regs, a))
	}
	return vm.call(callee.P.Fn, args)
}

func (vm *VM) binary(op target.Op, t target.Type, x, y Value) Value {
	if x.Kind == VKFloat && y.Kind == VKFloat {
		switch op {
		case target.Add:
			return FloatValue(x.F + y.F)
		case target.Sub:
			return FloatValue(x.F - y.F)
		case target.Mul:
			return FloatValue(x.F * y.F)
		case target.Div:
			return FloatValue(x.F / y.F)
		default:
			return FloatValue(math.Mod(x.F, y.F))
		}
	}
	if x.Kind != VKInt || y.Kind != VKInt {
		vm.panicf(PanicTypeMismatch, "%s of %s and %s", op, x.Kind, y.Kind)
	}
	var r int64
	switch op {
	case target.Add:
		r = x.I + y.I
	case target.Sub:
		r = x.I - y.I
	case target.Mul:
		r = x.I * y.I
	case target.Div, target.Rem:
		if y.I == 0 {
			vm.panic(PanicDivByZero, "integer division by zero")
		}
		if op == target.Div {
			r = x.I / y.I
		} else {
			r = x.I % y.I
		}
	}
	return IntValue(wrap(r, t))
}

// wrap truncates r to the width of t and sign-extends it back.
func wrap(r int64, t target.Type) int64 {
	b, ok := t.(target.Basic)
	if !ok || !b.IsInt() || b.Bits() >= 64 {
		return r
	}
	shift := 64 - b.Bits()
	return r << shift >> shift
}

func (vm *VM) compare(pred target.Pred, x, y Value) Value {
	if x.Kind != y.Kind {
		vm.panicf(PanicTypeMismatch, "compare %s with %s", x.Kind, y.Kind)
	}
	var c int
	switch x.Kind {
	case VKFloat:
		if math.IsNaN(x.F) || math.IsNaN(y.F) {
			return BoolValue(pred == target.Ne)
		}
		switch {
		case x.F < y.F:
			c = -1
		case x.F > y.F:
			c = 1
		}
	case VKInt, VKBool:
		switch {
		case x.I < y.I:
			c = -1
		case x.I > y.I:
			c = 1
		}
	default:
		switch pred {
		case target.Eq:
			return BoolValue(x.Equal(y))
		case target.Ne:
			return BoolValue(!x.Equal(y))
		}
		vm.panicf(PanicTypeMismatch, "ordered comparison of pointers")
	}
	switch pred {
	case target.Eq:
		return BoolValue(c == 0)
	case target.Ne:
		return BoolValue(c != 0)
	case target.Lt:
		return BoolValue(c < 0)
	case target.Le:
		return BoolValue(c <= 0)
	case target.Gt:
		return BoolValue(c > 0)
	}
	return BoolValue(c >= 0)
}
