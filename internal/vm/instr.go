package vm

import (
	"fmt"
	"strings"

	"scriptc/internal/target"
)

// Opcode identifies a recorded instruction.
type Opcode uint8

const (
	OpFieldAddr Opcode = iota
	OpLoad
	OpStore
	OpCall
	OpBinary
	OpCompare
	OpCondBr
	OpBr
	OpRet
)

var opNames = [...]string{
	OpFieldAddr: "fieldaddr",
	OpLoad:      "load",
	OpStore:     "store",
	OpCall:      "call",
	OpBinary:    "binary",
	OpCompare:   "compare",
	OpCondBr:    "condbr",
	OpBr:        "br",
	OpRet:       "ret",
}

func (op Opcode) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}
	return "?"
}

// IsTerminator reports whether the opcode ends a block.
func (op Opcode) IsTerminator() bool {
	return op == OpCondBr || op == OpBr || op == OpRet
}

// Instr is one recorded instruction. Dst is the register receiving the
// result, or -1.
type Instr struct {
	Op      Opcode
	Dst     int
	Args    []target.Value
	Type    target.Type
	Struct  *target.Struct
	Slot    int
	BinOp   target.Op
	Pred    target.Pred
	Sig     *target.Sig
	Targets [2]*Block
}

func (in *Instr) String() string {
	var sb strings.Builder
	if in.Dst >= 0 {
		fmt.Fprintf(&sb, "%%%d = ", in.Dst)
	}
	sb.WriteString(in.Op.String())
	switch in.Op {
	case OpFieldAddr:
		fmt.Fprintf(&sb, " %s.%d", in.Struct.Name, in.Slot)
	case OpLoad:
		fmt.Fprintf(&sb, " %s", in.Type)
	case OpBinary:
		fmt.Fprintf(&sb, " %s", in.BinOp)
	case OpCompare:
		fmt.Fprintf(&sb, " %s", in.Pred)
	}
	for _, a := range in.Args {
		sb.WriteByte(' ')
		sb.WriteString(operandString(a))
	}
	for _, b := range in.Targets {
		if b != nil {
			sb.WriteString(" ^")
			sb.WriteString(b.name)
		}
	}
	return sb.String()
}

func operandString(v target.Value) string {
	switch v := v.(type) {
	case *reg:
		return fmt.Sprintf("%%%d", v.id)
	case *konst:
		return v.v.String()
	case *Func:
		return "@" + v.name
	}
	return "?"
}
