// SPDX-FileCopyrightText: © 2021 The dyml authors <https://github.com/golangee/dyml/blob/main/AUTHORS>
// SPDX-License-Identifier: Apache-2.0

package ir

import (
	"github.com/rive-lang/rivec/token"
	"github.com/rive-lang/rivec/typesys"
)

// Stmt is any IR statement.
type Stmt interface {
	stmtNode()
	Span() token.Span
}

// Let declares a binding. Strategy records how the emitter manages
// the value's memory (spec.md §3: every let-binding carries a
// MemoryStrategy).
type Let struct {
	Name     string
	Type     typesys.ID
	Strategy typesys.Strategy
	Mutable  bool
	Value    Expr
	Sp       token.Span
}

func (*Let) stmtNode()          {}
func (l *Let) Span() token.Span { return l.Sp }

// Assign stores a new value into an existing mutable binding.
type Assign struct {
	Name  string
	Value Expr
	Sp    token.Span
}

func (*Assign) stmtNode()          {}
func (a *Assign) Span() token.Span { return a.Sp }

// Return exits the enclosing function, with Value nil for bare
// `return` in a Unit function.
type Return struct {
	Value Expr
	Sp    token.Span
}

func (*Return) stmtNode()          {}
func (r *Return) Span() token.Span { return r.Sp }

// ExprStmt evaluates an expression for its effects.
type ExprStmt struct {
	X  Expr
	Sp token.Span
}

func (*ExprStmt) stmtNode()          {}
func (e *ExprStmt) Span() token.Span { return e.Sp }

// If in statement position; Else may be nil.
type If struct {
	Cond Expr
	Then *Block
	Else *Block
	Sp   token.Span
}

func (*If) stmtNode()          {}
func (i *If) Span() token.Span { return i.Sp }

// While in statement position. Label is empty unless the user named
// the loop or a nested break/continue addresses it by depth.
type While struct {
	Label string
	Cond  Expr
	Body  *Block
	Sp    token.Span
}

func (*While) stmtNode()          {}
func (w *While) Span() token.Span { return w.Sp }

// For iterates an Int range.
type For struct {
	Label     string
	Var       string
	Lo        Expr
	Hi        Expr
	Inclusive bool
	Body      *Block
	Sp        token.Span
}

func (*For) stmtNode()          {}
func (f *For) Span() token.Span { return f.Sp }

// Loop is an unconditional loop.
type Loop struct {
	Label string
	Body  *Block
	Sp    token.Span
}

func (*Loop) stmtNode()          {}
func (l *Loop) Span() token.Span { return l.Sp }

// Break exits the loop named by Label. ResultVar, when non-empty,
// names the loop-expression result variable this break assigns Value
// to before breaking (spec.md §4.6's result-variable pattern).
type Break struct {
	Label     string
	Value     Expr
	ResultVar string
	Sp        token.Span
}

func (*Break) stmtNode()          {}
func (b *Break) Span() token.Span { return b.Sp }

// Continue jumps to the next iteration of the loop named by Label.
type Continue struct {
	Label string
	Sp    token.Span
}

func (*Continue) stmtNode()          {}
func (c *Continue) Span() token.Span { return c.Sp }

// Print is the line-printing intrinsic. The emitter selects the
// formatting per Arg's type.
type Print struct {
	Arg Expr
	Sp  token.Span
}

func (*Print) stmtNode()          {}
func (p *Print) Span() token.Span { return p.Sp }
