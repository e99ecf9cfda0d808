package vm

import (
	"fmt"
	"strings"
)

// PanicCode identifies the type of VM panic.
type PanicCode int

// Stable panic codes - do not change values.
const (
	PanicUseBeforeInit  PanicCode = 1001 // VM1001: slot read before any store
	PanicTypeMismatch   PanicCode = 1003 // VM1003: operand of the wrong kind
	PanicNullDeref      PanicCode = 1004 // VM1004: load or store through null
	PanicUnknownHost    PanicCode = 1005 // VM1005: call to an undefined function
	PanicUseAfterFree   PanicCode = 1101 // VM1101: access to a released object
	PanicDoubleRelease  PanicCode = 1102 // VM1102: release hook called twice
	PanicReleasedLive   PanicCode = 1103 // VM1103: release hook called with rc > 0
	PanicInvalidPointer PanicCode = 1104 // VM1104: pointer of the wrong kind
	PanicLeak           PanicCode = 1105 // VM1105: objects alive at exit
	PanicDivByZero      PanicCode = 1201 // VM1201: integer division by zero
	PanicStepLimit      PanicCode = 1202 // VM1202: step limit exhausted
	PanicUnimplemented  PanicCode = 1999 // VM1999: malformed program
)

// String returns the code as "VM1001" format.
func (c PanicCode) String() string {
	return fmt.Sprintf("VM%d", c)
}

// VMError represents a runtime panic in the VM.
type VMError struct {
	Code      PanicCode
	Message   string
	Backtrace []string // function names from top to bottom
}

// Error implements the error interface.
func (p *VMError) Error() string {
	return fmt.Sprintf("panic %s: %s", p.Code, p.Message)
}

// Format renders the panic with its backtrace.
func (p *VMError) Format() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "panic %s: %s\n", p.Code, p.Message)
	if len(p.Backtrace) > 0 {
		sb.WriteString("backtrace:\n")
		for i, fn := range p.Backtrace {
			fmt.Fprintf(&sb, "  %d: %s\n", i, fn)
		}
	}
	return sb.String()
}

func (vm *VM) panic(code PanicCode, msg string) {
	e := &VMError{Code: code, Message: msg}
	for i := len(vm.Stack) - 1; i >= 0; i-- {
		e.Backtrace = append(e.Backtrace, vm.Stack[i].Func.name)
	}
	panic(e)
}

func (vm *VM) panicf(code PanicCode, format string, args ...any) {
	vm.panic(code, fmt.Sprintf(format, args...))
}
