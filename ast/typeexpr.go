// SPDX-FileCopyrightText: © 2021 The dyml authors <https://github.com/golangee/dyml/blob/main/AUTHORS>
// SPDX-License-Identifier: Apache-2.0

package ast

import "github.com/rive-lang/rivec/token"

// TypeExpr is the syntactic form of a type annotation, as written in
// source. It is resolved to a typesys.ID by the parser (for
// user-type declarations, so later constructor calls can resolve the
// name) or by lowering (everywhere else).
type TypeExpr interface {
	typeExprNode()
	Span() token.Span
}

// NamedType is a bare type name: `Int`, `Text`, or a user struct/enum
// name. `?` suffixed nullability is represented by wrapping in
// OptionalType, not here.
type NamedType struct {
	Name string
	Sp   token.Span
}

func (*NamedType) typeExprNode()      {}
func (n *NamedType) Span() token.Span { return n.Sp }

// OptionalType is `T?`.
type OptionalType struct {
	Inner TypeExpr
	Sp    token.Span
}

func (*OptionalType) typeExprNode()      {}
func (o *OptionalType) Span() token.Span { return o.Sp }

// ArrayType is `[T; N]`.
type ArrayType struct {
	Elem TypeExpr
	Size int
	Sp   token.Span
}

func (*ArrayType) typeExprNode()      {}
func (a *ArrayType) Span() token.Span { return a.Sp }

// ListType is `List<T>`.
type ListType struct {
	Elem TypeExpr
	Sp   token.Span
}

func (*ListType) typeExprNode()      {}
func (l *ListType) Span() token.Span { return l.Sp }

// MapType is `Map<K, V>`.
type MapType struct {
	Key TypeExpr
	Val TypeExpr
	Sp  token.Span
}

func (*MapType) typeExprNode()      {}
func (m *MapType) Span() token.Span { return m.Sp }

// TupleType is `(T1, T2, ...)`.
type TupleType struct {
	Elems []TypeExpr
	Sp    token.Span
}

func (*TupleType) typeExprNode()      {}
func (t *TupleType) Span() token.Span { return t.Sp }

// FunctionType is `fun(T1, T2) -> R`.
type FunctionType struct {
	Params []TypeExpr
	Ret    TypeExpr
	Sp     token.Span
}

func (*FunctionType) typeExprNode()      {}
func (f *FunctionType) Span() token.Span { return f.Sp }
