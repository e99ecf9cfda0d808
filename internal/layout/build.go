package layout

import (
	"slices"
	"strings"
)

// Build places fields after the header in name order using natural
// alignment. The result does not depend on the order of specs.
func Build(target Target, tag int32, name string, kind DescKind, specs []FieldSpec) *Descriptor {
	sorted := slices.Clone(specs)
	slices.SortFunc(sorted, func(a, b FieldSpec) int { return strings.Compare(a.Name, b.Name) })

	d := &Descriptor{
		Tag:         tag,
		Name:        name,
		Kind:        kind,
		HasRefcount: true,
		Fields:      make([]Field, 0, len(sorted)),
	}
	offset := HeaderSize
	maxAlign := 4
	for i, s := range sorted {
		size, align := s.Repr.SizeAlign(target)
		if align < 1 {
			align = 1
		}
		offset = alignUp(offset, align)
		d.Fields = append(d.Fields, Field{Name: s.Name, Repr: s.Repr, Slot: HeaderSlots + i, Offset: offset})
		offset += size
		maxAlign = max(maxAlign, align)
	}
	d.Align = maxAlign
	d.Size = alignUp(offset, maxAlign)
	return d
}

func alignUp(n, a int) int {
	if a <= 1 {
		return n
	}
	return (n + a - 1) / a * a
}
