package layout

import (
	"fmt"
	"strings"

	"scriptc/internal/types"
)

// RecursiveTypeError reports a structural type whose layout depends on
// itself.
type RecursiveTypeError struct {
	Type  types.TypeID
	Cycle []string
}

func (e *RecursiveTypeError) Error() string {
	if len(e.Cycle) == 0 {
		return fmt.Sprintf("recursive type has no finite layout (type#%d)", e.Type)
	}
	return fmt.Sprintf("recursive type has no finite layout (cycle: %s)", strings.Join(e.Cycle, " -> "))
}

// FieldNotFoundError reports a property missing from a resolved layout.
type FieldNotFoundError struct {
	Layout string
	Field  string
}

func (e *FieldNotFoundError) Error() string {
	return fmt.Sprintf("field %q not found in layout %s", e.Field, e.Layout)
}

// NotStructuralError reports a request for the structural layout of a type
// that has none, such as a call signature.
type NotStructuralError struct {
	Type types.TypeID
	Desc string
}

func (e *NotStructuralError) Error() string {
	return fmt.Sprintf("type %s has no structural layout", e.Desc)
}
