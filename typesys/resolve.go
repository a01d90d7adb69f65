// SPDX-FileCopyrightText: © 2021 The dyml authors <https://github.com/golangee/dyml/blob/main/AUTHORS>
// SPDX-License-Identifier: Apache-2.0

package typesys

import (
	"fmt"

	"github.com/rive-lang/rivec/ast"
)

// ResolveTypeExpr turns a syntactic type annotation into a registry
// ID, creating composite types (Optional/Array/List/Map/Tuple/
// Function) as needed and looking up user/primitive names by their
// registered name. Named user types must already be registered (the
// parser reserves struct/enum names before resolving their own field
// types, so self- and mutually-referential declarations work without
// ordering requirements).
func ResolveTypeExpr(r *Registry, te ast.TypeExpr) (ID, error) {
	switch t := te.(type) {
	case *ast.NamedType:
		id, ok := r.GetByName(t.Name)
		if !ok {
			return 0, fmt.Errorf("unknown type %q", t.Name)
		}
		return id, nil

	case *ast.OptionalType:
		inner, err := ResolveTypeExpr(r, t.Inner)
		if err != nil {
			return 0, err
		}
		return r.CreateOptional(inner), nil

	case *ast.ArrayType:
		elem, err := ResolveTypeExpr(r, t.Elem)
		if err != nil {
			return 0, err
		}
		return r.CreateArray(elem, t.Size), nil

	case *ast.ListType:
		elem, err := ResolveTypeExpr(r, t.Elem)
		if err != nil {
			return 0, err
		}
		return r.CreateList(elem), nil

	case *ast.MapType:
		key, err := ResolveTypeExpr(r, t.Key)
		if err != nil {
			return 0, err
		}
		val, err := ResolveTypeExpr(r, t.Val)
		if err != nil {
			return 0, err
		}
		return r.CreateMap(key, val), nil

	case *ast.TupleType:
		elems := make([]ID, len(t.Elems))
		for i, e := range t.Elems {
			id, err := ResolveTypeExpr(r, e)
			if err != nil {
				return 0, err
			}
			elems[i] = id
		}
		return r.CreateTuple(elems), nil

	case *ast.FunctionType:
		params := make([]ID, len(t.Params))
		for i, p := range t.Params {
			id, err := ResolveTypeExpr(r, p)
			if err != nil {
				return 0, err
			}
			params[i] = id
		}
		ret := ID(Unit)
		if t.Ret != nil {
			var err error
			ret, err = ResolveTypeExpr(r, t.Ret)
			if err != nil {
				return 0, err
			}
		}
		return r.CreateFunction(params, ret), nil

	default:
		return 0, fmt.Errorf("unhandled type expression %T", te)
	}
}
