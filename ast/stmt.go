// SPDX-FileCopyrightText: © 2021 The dyml authors <https://github.com/golangee/dyml/blob/main/AUTHORS>
// SPDX-License-Identifier: Apache-2.0

package ast

import "github.com/rive-lang/rivec/token"

// Stmt is any Rive statement.
type Stmt interface {
	stmtNode()
	Span() token.Span
}

// Let is `let [mut] name [: type] [?] = expr` or `const` in place of
// `let` (IsConst true); const additionally forbids reassignment.
type Let struct {
	Name        string
	Mutable     bool
	IsConst     bool
	Type        TypeExpr // nil if not annotated
	NullableTag bool     // `let x?` shorthand: declared type is Optional<inferred>
	Init        Expr
	Sp          token.Span
}

func (*Let) stmtNode()          {}
func (l *Let) Span() token.Span { return l.Sp }

// Assign is `name = expr`.
type Assign struct {
	Name  string
	Value Expr
	Sp    token.Span
}

func (*Assign) stmtNode()          {}
func (a *Assign) Span() token.Span { return a.Sp }

// ExprStmt is an expression used as a statement (its value, if any, is
// discarded).
type ExprStmt struct {
	X  Expr
	Sp token.Span
}

func (*ExprStmt) stmtNode()          {}
func (e *ExprStmt) Span() token.Span { return e.Sp }

// Return is `return [expr]`.
type Return struct {
	Value Expr // nil for bare `return`
	Sp    token.Span
}

func (*Return) stmtNode()          {}
func (r *Return) Span() token.Span { return r.Sp }

// Break is `break [depth] [with value]`. Depth 0 means unspecified
// (innermost loop, depth 1).
type Break struct {
	Label string // set if the user named a label instead of/with a depth
	Depth int
	Value Expr // nil if no `with value`
	Sp    token.Span
}

func (*Break) stmtNode()          {}
func (b *Break) Span() token.Span { return b.Sp }

// Continue is `continue [depth]`.
type Continue struct {
	Label string
	Depth int
	Sp    token.Span
}

func (*Continue) stmtNode()          {}
func (c *Continue) Span() token.Span { return c.Sp }
