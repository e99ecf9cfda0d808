package types

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"fortio.org/safecast"
)

// Builtins stores TypeIDs for primitive types.
type Builtins struct {
	Void   TypeID
	Bool   TypeID
	Number TypeID
	String TypeID
	Null   TypeID
	I8     TypeID
	I16    TypeID
	I32    TypeID
	I64    TypeID
}

// Interner provides stable TypeIDs. Objects and signatures are interned
// structurally, so two object types with the same property set share one id
// whatever order the properties were written in. Aliases are nominal.
type Interner struct {
	types    []Type
	index    map[string]TypeID
	builtins Builtins
}

// NewInterner constructs an interner seeded with built-in primitives.
func NewInterner() *Interner {
	in := &Interner{
		types: []Type{{Kind: KindInvalid}},
		index: make(map[string]TypeID, 64),
	}
	in.builtins.Void = in.Intern(Type{Kind: KindVoid})
	in.builtins.Bool = in.Intern(Type{Kind: KindBool})
	in.builtins.Number = in.Intern(Type{Kind: KindNumber})
	in.builtins.String = in.Intern(Type{Kind: KindString})
	in.builtins.Null = in.Intern(Type{Kind: KindNull})
	in.builtins.I8 = in.Intern(Type{Kind: KindInt, Width: 8})
	in.builtins.I16 = in.Intern(Type{Kind: KindInt, Width: 16})
	in.builtins.I32 = in.Intern(Type{Kind: KindInt, Width: 32})
	in.builtins.I64 = in.Intern(Type{Kind: KindInt, Width: 64})
	return in
}

func (in *Interner) Builtins() Builtins {
	return in.builtins
}

// Primitive maps a primitive type name to its id.
func (in *Interner) Primitive(name string) (TypeID, bool) {
	switch name {
	case "void":
		return in.builtins.Void, true
	case "boolean":
		return in.builtins.Bool, true
	case "number":
		return in.builtins.Number, true
	case "string":
		return in.builtins.String, true
	case "null":
		return in.builtins.Null, true
	case "i8":
		return in.builtins.I8, true
	case "i16":
		return in.builtins.I16, true
	case "i32":
		return in.builtins.I32, true
	case "i64":
		return in.builtins.I64, true
	}
	return NoTypeID, false
}

// Intern ensures the descriptor has a stable TypeID.
func (in *Interner) Intern(t Type) TypeID {
	if t.Kind == KindInvalid {
		return NoTypeID
	}
	if t.Kind == KindObject {
		t.Props = slices.Clone(t.Props)
		slices.SortFunc(t.Props, func(a, b Prop) int { return strings.Compare(a.Name, b.Name) })
	}
	key := typeKey(t)
	if id, ok := in.index[key]; ok {
		return id
	}
	id := in.append(t)
	in.index[key] = id
	return id
}

func (in *Interner) append(t Type) TypeID {
	n, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	in.types = append(in.types, t)
	return TypeID(n)
}

// Object interns a structural object type.
func (in *Interner) Object(props []Prop) TypeID {
	return in.Intern(Type{Kind: KindObject, Props: props})
}

// Func interns a call signature.
func (in *Interner) Func(params []TypeID, result TypeID) TypeID {
	return in.Intern(Type{Kind: KindFunc, Params: slices.Clone(params), Result: result})
}

// NewAlias registers a named alias whose target is set later with SetAlias,
// which allows self-referential declarations to be represented.
func (in *Interner) NewAlias(name string) TypeID {
	return in.append(Type{Kind: KindAlias, Name: name})
}

func (in *Interner) SetAlias(alias, target TypeID) {
	if int(alias) < len(in.types) && in.types[alias].Kind == KindAlias {
		in.types[alias].Target = target
	}
}

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// MustLookup panics when id is invalid.
func (in *Interner) MustLookup(id TypeID) Type {
	tt, ok := in.Lookup(id)
	if !ok {
		panic("types: invalid TypeID")
	}
	return tt
}

// Unalias follows alias links until a non-alias type is reached. An alias
// chain that loops without reaching a constructor yields NoTypeID.
func (in *Interner) Unalias(id TypeID) TypeID {
	for range len(in.types) {
		t, ok := in.Lookup(id)
		if !ok || t.Kind != KindAlias {
			return id
		}
		id = t.Target
	}
	return NoTypeID
}

// Resolved returns the descriptor behind any aliases.
func (in *Interner) Resolved(id TypeID) Type {
	t, _ := in.Lookup(in.Unalias(id))
	return t
}

// AliasName returns the alias name when id is an alias.
func (in *Interner) AliasName(id TypeID) string {
	if t, ok := in.Lookup(id); ok && t.Kind == KindAlias {
		return t.Name
	}
	return ""
}

// Prop finds a property of an object type.
func (in *Interner) Prop(obj TypeID, name string) (Prop, bool) {
	t := in.Resolved(obj)
	if t.Kind != KindObject {
		return Prop{}, false
	}
	i, found := slices.BinarySearchFunc(t.Props, name, func(p Prop, n string) int { return strings.Compare(p.Name, n) })
	if !found {
		return Prop{}, false
	}
	return t.Props[i], true
}

// Identical reports structural identity after alias resolution. Recursion
// through aliases is compared by alias identity.
func (in *Interner) Identical(a, b TypeID) bool {
	return in.identical(a, b, map[[2]TypeID]bool{})
}

func (in *Interner) identical(a, b TypeID, seen map[[2]TypeID]bool) bool {
	if a == b {
		return true
	}
	key := [2]TypeID{a, b}
	if seen[key] {
		return true
	}
	seen[key] = true
	ta, tb := in.Resolved(a), in.Resolved(b)
	if ta.Kind != tb.Kind {
		return false
	}
	switch ta.Kind {
	case KindInt:
		return ta.Width == tb.Width
	case KindObject:
		if len(ta.Props) != len(tb.Props) {
			return false
		}
		for i := range ta.Props {
			if ta.Props[i].Name != tb.Props[i].Name || !in.identical(ta.Props[i].Type, tb.Props[i].Type, seen) {
				return false
			}
		}
		return true
	case KindFunc:
		if len(ta.Params) != len(tb.Params) || !in.identical(ta.Result, tb.Result, seen) {
			return false
		}
		for i := range ta.Params {
			if !in.identical(ta.Params[i], tb.Params[i], seen) {
				return false
			}
		}
		return true
	case KindInvalid:
		return false
	}
	return true
}

// Assignable reports whether a value of type src may be stored where dst is
// expected: identical types, or null into an object or function slot.
func (in *Interner) Assignable(dst, src TypeID) bool {
	if in.Identical(dst, src) {
		return true
	}
	if in.Resolved(src).Kind == KindNull {
		switch in.Resolved(dst).Kind {
		case KindObject, KindFunc:
			return true
		}
	}
	return false
}

// IsHeap reports whether values of the type are reference counted objects.
func (in *Interner) IsHeap(id TypeID) bool {
	return in.Resolved(id).Kind == KindObject
}

// String renders a type for diagnostics.
func (in *Interner) String(id TypeID) string {
	return in.format(id, 0)
}

func (in *Interner) format(id TypeID, depth int) string {
	t, ok := in.Lookup(id)
	if !ok {
		return "<invalid>"
	}
	if depth > 4 {
		return "..."
	}
	switch t.Kind {
	case KindAlias:
		return t.Name
	case KindInt:
		return widthName(t.Width)
	case KindObject:
		var sb strings.Builder
		sb.WriteString("{ ")
		for i, p := range t.Props {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(p.Name)
			sb.WriteString(": ")
			sb.WriteString(in.format(p.Type, depth+1))
		}
		sb.WriteString(" }")
		return sb.String()
	case KindFunc:
		var sb strings.Builder
		sb.WriteByte('(')
		for i, p := range t.Params {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString("p")
			sb.WriteString(strconv.Itoa(i))
			sb.WriteString(": ")
			sb.WriteString(in.format(p, depth+1))
		}
		sb.WriteString(") => ")
		sb.WriteString(in.format(t.Result, depth+1))
		return sb.String()
	}
	return t.Kind.String()
}

func typeKey(t Type) string {
	var sb strings.Builder
	sb.WriteString(strconv.Itoa(int(t.Kind)))
	sb.WriteByte(':')
	switch t.Kind {
	case KindInt:
		sb.WriteString(strconv.Itoa(int(t.Width)))
	case KindObject:
		for _, p := range t.Props {
			sb.WriteString(p.Name)
			sb.WriteByte('=')
			sb.WriteString(strconv.FormatUint(uint64(p.Type), 10))
			sb.WriteByte(';')
		}
	case KindFunc:
		for _, p := range t.Params {
			sb.WriteString(strconv.FormatUint(uint64(p), 10))
			sb.WriteByte(',')
		}
		sb.WriteString("->")
		sb.WriteString(strconv.FormatUint(uint64(t.Result), 10))
	}
	return sb.String()
}
