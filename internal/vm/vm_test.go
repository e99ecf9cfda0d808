package vm_test

import (
	"bytes"
	"errors"
	"testing"

	"scriptc/internal/target"
	"scriptc/internal/vm"
)

var (
	allocSig   = &target.Sig{Ret: target.Ptr, Params: []target.Type{target.Ptr, target.I64}}
	releaseSig = &target.Sig{Ret: target.Void, Params: []target.Type{target.Ptr, target.Ptr}}
	boxStruct  = &target.Struct{Name: "box", Fields: []target.Type{target.I32, target.I32, target.F64}}
)

// buildBox emits main(env) which allocates a box holding 20, doubles the
// field and passes it to print, then releases the box releases times.
func buildBox(t *testing.T, releases int, readAfter bool) *vm.Module {
	t.Helper()
	m := vm.NewModule()
	m.DeclareStruct(boxStruct)
	alloc := m.DeclareFunc("allocate", allocSig)
	release := m.DeclareFunc("release", releaseSig)
	printFn := m.DeclareFunc("print", &target.Sig{Ret: target.Void, Params: []target.Type{target.Ptr, target.F64}})
	main := m.DeclareFunc("main", &target.Sig{Ret: target.Void, Params: []target.Type{target.Ptr}})

	m.DefineFunc(main)
	obj := m.Call(allocSig, alloc, m.Null(), m.ConstInt(target.I64, 16))
	m.Store(m.FieldAddr(boxStruct, obj, 0), m.ConstInt(target.I32, 2))
	m.Store(m.FieldAddr(boxStruct, obj, 1), m.ConstInt(target.I32, 0))
	m.Store(m.FieldAddr(boxStruct, obj, 2), m.ConstFloat(20))
	x := m.Load(target.F64, m.FieldAddr(boxStruct, obj, 2))
	m.Call(printFn.Sig(), printFn, m.Null(), m.Binary(target.Mul, x, m.ConstFloat(2)))
	for range releases {
		m.Call(releaseSig, release, m.Null(), obj)
	}
	if readAfter {
		m.Load(target.F64, m.FieldAddr(boxStruct, obj, 2))
	}
	m.Ret(nil)
	return m
}

func run(t *testing.T, m *vm.Module) (*vm.VM, [][]vm.Value, error) {
	t.Helper()
	var calls [][]vm.Value
	machine := vm.New(m, vm.Options{MaxSteps: 10_000})
	machine.Bind("print", vm.Printer(nil, &calls))
	_, err := machine.Run("main", vm.NullValue())
	return machine, calls, err
}

func wantCode(t *testing.T, err error, code vm.PanicCode) {
	t.Helper()
	var vmErr *vm.VMError
	if !errors.As(err, &vmErr) {
		t.Fatalf("expected VM error %s, got %v", code, err)
	}
	if vmErr.Code != code {
		t.Fatalf("expected %s, got %s (%s)", code, vmErr.Code, vmErr.Message)
	}
}

func TestVMRunsAndBalances(t *testing.T) {
	machine, calls, err := run(t, buildBox(t, 1, false))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(calls) != 1 || calls[0][0].F != 40 {
		t.Fatalf("expected one print(40), got %v", calls)
	}
	if err := machine.CheckBalanced(); err != nil {
		t.Fatalf("unexpected imbalance: %v", err)
	}
	if machine.Heap.Allocs != 1 || machine.Heap.Releases != 1 {
		t.Fatalf("allocs=%d releases=%d", machine.Heap.Allocs, machine.Heap.Releases)
	}
}

func TestVMDetectsLeak(t *testing.T) {
	machine, _, err := run(t, buildBox(t, 0, false))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	wantCode(t, machine.CheckBalanced(), vm.PanicLeak)
}

func TestVMDetectsDoubleRelease(t *testing.T) {
	_, _, err := run(t, buildBox(t, 2, false))
	wantCode(t, err, vm.PanicDoubleRelease)
}

func TestVMDetectsUseAfterRelease(t *testing.T) {
	_, _, err := run(t, buildBox(t, 1, true))
	wantCode(t, err, vm.PanicUseAfterFree)
}

func TestVMCodePointerReadsZeroTag(t *testing.T) {
	m := vm.NewModule()
	m.DeclareStruct(boxStruct)
	fnSig := &target.Sig{Ret: target.I32, Params: []target.Type{target.Ptr}}
	helper := m.DeclareFunc("helper", fnSig)
	main := m.DeclareFunc("main", fnSig)

	m.DefineFunc(helper)
	m.Ret(m.ConstInt(target.I32, 7))

	m.DefineFunc(main)
	slot := m.AllocStack(target.Ptr)
	m.Store(slot, helper)
	code := m.Load(target.Ptr, slot)
	tag := m.Load(target.I32, m.FieldAddr(boxStruct, code, 0))
	isZero := m.Compare(target.Eq, tag, m.ConstInt(target.I32, 0))
	yes, no := m.NewBlock("yes"), m.NewBlock("no")
	m.CondBr(isZero, yes, no)
	m.SetInsert(yes)
	m.Ret(m.Call(fnSig, code, m.Null()))
	m.SetInsert(no)
	m.Ret(m.ConstInt(target.I32, -1))

	var trace bytes.Buffer
	machine := vm.New(m, vm.Options{Trace: vm.NewTracer(&trace)})
	got, err := machine.Run("main", vm.NullValue())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if got.I != 7 {
		t.Fatalf("expected indirect call result 7, got %s", got)
	}
	if trace.Len() == 0 {
		t.Fatalf("tracer produced no output")
	}
}

func TestVMStepLimitAndIntWrap(t *testing.T) {
	m := vm.NewModule()
	sig := &target.Sig{Ret: target.I8, Params: []target.Type{target.Ptr}}
	main := m.DeclareFunc("main", sig)
	m.DefineFunc(main)
	m.Ret(m.Binary(target.Add, m.ConstInt(target.I8, 127), m.ConstInt(target.I8, 1)))
	got, err := vm.New(m, vm.Options{}).Run("main", vm.NullValue())
	if err != nil || got.I != -128 {
		t.Fatalf("expected i8 wraparound to -128, got %s (%v)", got, err)
	}

	loop := vm.NewModule()
	spin := loop.DeclareFunc("main", &target.Sig{Ret: target.Void, Params: []target.Type{target.Ptr}})
	loop.DefineFunc(spin)
	body := loop.NewBlock("body")
	loop.Br(body)
	loop.SetInsert(body)
	loop.Br(body)
	_, err = vm.New(loop, vm.Options{MaxSteps: 100}).Run("main", vm.NullValue())
	wantCode(t, err, vm.PanicStepLimit)
}

func TestVMUnknownHost(t *testing.T) {
	m := vm.NewModule()
	sig := &target.Sig{Ret: target.Void, Params: []target.Type{target.Ptr}}
	ext := m.DeclareFunc("missing", sig)
	main := m.DeclareFunc("main", sig)
	m.DefineFunc(main)
	m.Call(sig, ext, m.Null())
	m.Ret(nil)
	_, err := vm.New(m, vm.Options{}).Run("main", vm.NullValue())
	wantCode(t, err, vm.PanicUnknownHost)
}
