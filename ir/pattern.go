// SPDX-FileCopyrightText: © 2021 The dyml authors <https://github.com/golangee/dyml/blob/main/AUTHORS>
// SPDX-License-Identifier: Apache-2.0

package ir

import (
	"github.com/rive-lang/rivec/token"
	"github.com/rive-lang/rivec/typesys"
)

// Pattern is a lowered match pattern.
type Pattern interface {
	patternNode()
	Span() token.Span
}

// WildcardPat matches anything.
type WildcardPat struct {
	Sp token.Span
}

func (*WildcardPat) patternNode()       {}
func (w *WildcardPat) Span() token.Span { return w.Sp }

// LiteralPat matches one literal value. Value is always a literal
// expression (IntLit, FloatLit, TextLit, BoolLit, or a negated
// IntLit/FloatLit).
type LiteralPat struct {
	Value Expr
	Sp    token.Span
}

func (*LiteralPat) patternNode()       {}
func (l *LiteralPat) Span() token.Span { return l.Sp }

// RangePat matches `in lo..hi` / `in lo..=hi`.
type RangePat struct {
	Lo        Expr
	Hi        Expr
	Inclusive bool
	Sp        token.Span
}

func (*RangePat) patternNode()       {}
func (r *RangePat) Span() token.Span { return r.Sp }

// BindingPat binds the scrutinee to a name within the arm.
type BindingPat struct {
	Name string
	Typ  typesys.ID
	Sp   token.Span
}

func (*BindingPat) patternNode()       {}
func (b *BindingPat) Span() token.Span { return b.Sp }

// EnumVariantPat matches one enum variant, with its field bindings
// resolved against the variant's declared field types.
type EnumVariantPat struct {
	EnumName string
	Variant  string
	Bindings []string
	Fields   []typesys.ID
	Sp       token.Span
}

func (*EnumVariantPat) patternNode()       {}
func (e *EnumVariantPat) Span() token.Span { return e.Sp }
