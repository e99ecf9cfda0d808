package sema

import (
	"scriptc/internal/ast"
	"scriptc/internal/diag"
	"scriptc/internal/types"
)

// declareAliases registers every alias before any body is checked so that
// aliases may refer to each other and to themselves in any order.
func (c *Checker) declareAliases() {
	var decls []ast.NodeID
	c.unit.Walk(c.unit.Root, func(id ast.NodeID) bool {
		if c.unit.Kind(id) == ast.KindTypeAlias {
			decls = append(decls, id)
			c.aliases[id] = c.types.NewAlias(c.unit.Node(id).Name)
			c.record(id, c.aliases[id])
		}
		return true
	})
	for _, d := range decls {
		c.types.SetAlias(c.aliases[d], c.resolveType(c.unit.Node(d).Type))
	}
	for _, d := range decls {
		if c.types.Unalias(c.aliases[d]) == types.NoTypeID {
			c.errorf(diag.SemaUnknownType, c.span(d), "type alias '"+c.unit.Node(d).Name+"' circularly references itself")
		}
	}
}

// resolveType converts a type expression to a TypeID.
func (c *Checker) resolveType(id ast.NodeID) types.TypeID {
	n := c.unit.Node(id)
	if n == nil {
		return types.NoTypeID
	}
	switch n.Kind {
	case ast.KindTypeName:
		if t, ok := c.types.Primitive(n.Name); ok {
			return t
		}
		if d, ok := c.table.TypeDecl(id); ok {
			return c.aliases[d]
		}
		return types.NoTypeID
	case ast.KindTypeObject:
		if len(n.List) == 0 {
			c.errorf(diag.SemaUnknownType, n.Span, "empty object types are not supported")
			return types.NoTypeID
		}
		props := make([]types.Prop, 0, len(n.List))
		seen := map[string]bool{}
		for _, f := range n.List {
			fn := c.unit.Node(f)
			if seen[fn.Name] {
				c.errorf(diag.SemaDuplicateDecl, fn.Span, "duplicate field '"+fn.Name+"'")
				continue
			}
			seen[fn.Name] = true
			ft := c.resolveType(fn.Type)
			if ft == types.NoTypeID {
				return types.NoTypeID
			}
			props = append(props, types.Prop{Name: fn.Name, Type: ft})
		}
		return c.types.Object(props)
	case ast.KindTypeFunc:
		params := make([]types.TypeID, 0, len(n.List))
		for _, p := range n.List {
			pt := c.resolveType(c.unit.Node(p).Type)
			if pt == types.NoTypeID {
				c.errorf(diag.SemaMissingType, c.span(p), "parameter in function type needs a type")
				return types.NoTypeID
			}
			params = append(params, pt)
		}
		ret := c.resolveType(n.Type)
		if ret == types.NoTypeID {
			return types.NoTypeID
		}
		return c.types.Func(params, ret)
	}
	return types.NoTypeID
}
