package layout

import (
	"fmt"
	"strings"

	"scriptc/internal/types"
)

// DescKind tells what a layout describes.
type DescKind uint8

const (
	DescObject DescKind = iota
	DescScope
	DescClosure
)

func (k DescKind) String() string {
	switch k {
	case DescScope:
		return "scope"
	case DescClosure:
		return "closure"
	}
	return "object"
}

// Header slot indices shared by every descriptor.
const (
	TagSlot      = 0
	RefcountSlot = 1
	HeaderSlots  = 2
	HeaderSize   = 8
)

// ClosureTag is the tag reserved for closure objects. Tag 0 is never
// assigned so that a word read from code memory is not mistaken for it.
const ClosureTag int32 = 1

// Field is one slot of a descriptor.
type Field struct {
	Name   string
	Repr   Repr
	Slot   int
	Offset int
}

// Descriptor is the immutable layout of a heap object: a tag word, a
// refcount word, then the fields sorted by name.
type Descriptor struct {
	Tag         int32
	Name        string
	Kind        DescKind
	Type        types.TypeID
	Fields      []Field
	HasRefcount bool
	Size        int
	Align       int
}

// Field looks up a field by name.
func (d *Descriptor) Field(name string) (Field, error) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, nil
		}
	}
	return Field{}, &FieldNotFoundError{Layout: d.Name, Field: name}
}

// SlotCount is the number of slots including the header.
func (d *Descriptor) SlotCount() int {
	return HeaderSlots + len(d.Fields)
}

// CountedFields returns the fields a drop routine must release.
func (d *Descriptor) CountedFields() []Field {
	var out []Field
	for _, f := range d.Fields {
		if f.Repr.IsCounted() {
			out = append(out, f)
		}
	}
	return out
}

func (d *Descriptor) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s tag=%d size=%d align=%d\n", d.Kind, d.Name, d.Tag, d.Size, d.Align)
	fmt.Fprintf(&sb, "  [0] +0 $tag i32\n")
	if d.HasRefcount {
		fmt.Fprintf(&sb, "  [1] +4 $rc i32\n")
	}
	for _, f := range d.Fields {
		fmt.Fprintf(&sb, "  [%d] +%d %s %s\n", f.Slot, f.Offset, f.Name, f.Repr)
	}
	return sb.String()
}

// FieldSpec is a name and representation before placement.
type FieldSpec struct {
	Name string
	Repr Repr
}
