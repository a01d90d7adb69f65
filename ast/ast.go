// SPDX-FileCopyrightText: © 2021 The dyml authors <https://github.com/golangee/dyml/blob/main/AUTHORS>
// SPDX-License-Identifier: Apache-2.0

// Package ast defines the untyped parse tree the parser produces and
// the semantic analyzer and lowering pass consume. No node carries a
// resolved type; declared type annotations are the syntactic TypeExpr
// defined in typeexpr.go, resolved to a typesys.ID only during parsing
// (for user type declarations) or lowering (for every other use).
package ast

import "github.com/rive-lang/rivec/token"

// Program is a whole compilation unit: every top-level item in
// source order.
type Program struct {
	Items []Item
}

// Item is a top-level declaration: a function, a struct/enum type
// declaration, or an impl block of instance methods.
type Item interface {
	itemNode()
	Span() token.Span
}

// Function is a top-level `fun name(params) -> ret { body }`
// declaration.
type Function struct {
	Name       string
	Params     []Param
	ReturnType TypeExpr // nil means Unit
	Body       *Block
	Sp         token.Span
}

func (*Function) itemNode()          {}
func (f *Function) Span() token.Span { return f.Sp }

// Param is one function parameter.
type Param struct {
	Name string
	Type TypeExpr
	Sp   token.Span
}

// TypeDecl declares a user struct or enum type.
type TypeDecl struct {
	Name     string
	IsEnum   bool
	Fields   []FieldDecl   // struct fields; empty for enums
	Variants []VariantDecl // enum variants; empty for structs
	Unique   bool          // struct only: @unique annotation
	Sp       token.Span
}

func (*TypeDecl) itemNode()          {}
func (t *TypeDecl) Span() token.Span { return t.Sp }

// FieldDecl is one struct field.
type FieldDecl struct {
	Name string
	Type TypeExpr
	Sp   token.Span
}

// VariantDecl is one enum variant, optionally carrying positional
// field types (a tuple-like payload).
type VariantDecl struct {
	Name   string
	Fields []TypeExpr
	Sp     token.Span
}

// ImplBlock declares instance methods for a user type:
// `impl TypeName { fun method(self, ...) ... }`.
type ImplBlock struct {
	TypeName string
	Methods  []*Function
	Sp       token.Span
}

func (*ImplBlock) itemNode()          {}
func (i *ImplBlock) Span() token.Span { return i.Sp }
