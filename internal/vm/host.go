package vm

import (
	"fmt"
	"io"
	"strings"
)

// Printer returns a host function that writes its arguments after env,
// separated by spaces, followed by a newline. Every call is also appended
// to log when log is non-nil.
func Printer(w io.Writer, log *[][]Value) HostFunc {
	return func(_ *VM, args []Value) (Value, error) {
		if len(args) == 0 {
			return Value{}, fmt.Errorf("missing env argument")
		}
		vals := args[1:]
		if log != nil {
			*log = append(*log, append([]Value(nil), vals...))
		}
		if w != nil {
			parts := make([]string, 0, len(vals))
			for _, v := range vals {
				parts = append(parts, v.Format())
			}
			if _, err := fmt.Fprintln(w, strings.Join(parts, " ")); err != nil {
				return Value{}, err
			}
		}
		return Value{}, nil
	}
}
