// SPDX-FileCopyrightText: © 2021 The dyml authors <https://github.com/golangee/dyml/blob/main/AUTHORS>
// SPDX-License-Identifier: Apache-2.0

package ast

import "github.com/rive-lang/rivec/token"

// Pattern is one `when` arm pattern (spec.md §4.2: literal, wildcard,
// range, multi-value, guarded, enum-variant with destructuring).
// Guards and multi-value grouping live on WhenArm, not on Pattern
// itself, since both apply across a whole arm rather than to one
// pattern value.
type Pattern interface {
	patternNode()
	Span() token.Span
}

// WildcardPattern is `_`.
type WildcardPattern struct {
	Sp token.Span
}

func (*WildcardPattern) patternNode()        {}
func (w *WildcardPattern) Span() token.Span { return w.Sp }

// LiteralPattern matches a literal int/float/string/bool/null value.
type LiteralPattern struct {
	Value Expr // always one of IntLit, FloatLit, StringLit, BoolLit, NullLit
	Sp    token.Span
}

func (*LiteralPattern) patternNode()        {}
func (l *LiteralPattern) Span() token.Span { return l.Sp }

// RangePattern is `in a..b` / `in a..=b`.
type RangePattern struct {
	Lo        Expr
	Hi        Expr
	Inclusive bool
	Sp        token.Span
}

func (*RangePattern) patternNode()        {}
func (r *RangePattern) Span() token.Span { return r.Sp }

// BindingPattern binds the scrutinee (or a destructured field) to a
// name within the arm's scope.
type BindingPattern struct {
	Name string
	Sp   token.Span
}

func (*BindingPattern) patternNode()        {}
func (b *BindingPattern) Span() token.Span { return b.Sp }

// EnumVariantPattern matches a specific enum variant, optionally
// destructuring its fields into bindings.
type EnumVariantPattern struct {
	EnumName string // may be empty; resolved from the scrutinee's type during lowering
	Variant  string
	Bindings []string // one per variant field, in order; empty if the variant has no fields
	Sp       token.Span
}

func (*EnumVariantPattern) patternNode()        {}
func (e *EnumVariantPattern) Span() token.Span { return e.Sp }
