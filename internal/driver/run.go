package driver

import (
	"context"
	"errors"
	"fmt"
	"io"

	"scriptc/internal/target"
	"scriptc/internal/vm"
)

// RunOptions configures Run.
type RunOptions struct {
	// Stdout receives the output of void externs; nil discards it.
	Stdout   io.Writer
	MaxSteps int
	// Trace, when set, receives one line per executed instruction.
	Trace io.Writer
}

// RunResult reports what an interpreted unit did.
type RunResult struct {
	// Calls lists the arguments of each extern call, env excluded.
	Calls    [][]vm.Value
	Allocs   int
	Releases int
	Steps    int
}

// Run executes the entry routine of a unit compiled with BackendVM. Every
// void extern is bound to a printer writing its arguments to Stdout. A
// successful run also requires every allocation to have been released
// exactly once.
func Run(ctx context.Context, unit *Unit, opts RunOptions) (*RunResult, error) {
	if unit == nil || unit.VM == nil || unit.Lowered == nil {
		return nil, errors.New("unit was not lowered for the interpreter")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	vmOpts := vm.Options{
		AllocateHook: unit.Hooks.AllocateHook,
		ReleaseHook:  unit.Hooks.ReleaseHook,
		MaxSteps:     opts.MaxSteps,
	}
	if opts.Trace != nil {
		vmOpts.Trace = vm.NewTracer(opts.Trace)
	}
	machine := vm.New(unit.VM, vmOpts)

	res := &RunResult{}
	for _, f := range unit.VM.Funcs() {
		if f.Defined() || f.Name() == unit.Hooks.AllocateHook || f.Name() == unit.Hooks.ReleaseHook {
			continue
		}
		if f.Sig().Ret == target.Void {
			machine.Bind(f.Name(), vm.Printer(opts.Stdout, &res.Calls))
		}
	}

	_, err := machine.Run(unit.Lowered.Entry)
	res.Allocs, res.Releases, res.Steps = machine.Heap.Allocs, machine.Heap.Releases, machine.Steps()
	if err != nil {
		return res, fmt.Errorf("run %s: %w", unit.Path, err)
	}
	if err := machine.CheckBalanced(); err != nil {
		return res, fmt.Errorf("run %s: %w", unit.Path, err)
	}
	return res, nil
}
