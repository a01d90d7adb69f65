// SPDX-FileCopyrightText: © 2021 The dyml authors <https://github.com/golangee/dyml/blob/main/AUTHORS>
// SPDX-License-Identifier: Apache-2.0

package ast

import "github.com/rive-lang/rivec/token"

// Expr is any Rive expression.
type Expr interface {
	exprNode()
	Span() token.Span
}

// BinaryOp enumerates the binary operators.
type BinaryOp int

const (
	Add BinaryOp = iota
	Sub
	Mul
	Div
	Mod
	Eq
	NotEq
	Lt
	LtEq
	Gt
	GtEq
	And
	Or
	RangeExcl // ..
	RangeIncl // ..=
)

// UnaryOp enumerates the unary operators.
type UnaryOp int

const (
	Neg UnaryOp = iota
	Not
)

// IntLit is an integer literal.
type IntLit struct {
	Value int64
	Sp    token.Span
}

func (*IntLit) exprNode()          {}
func (i *IntLit) Span() token.Span { return i.Sp }

// FloatLit is a floating-point literal.
type FloatLit struct {
	Value float64
	Sp    token.Span
}

func (*FloatLit) exprNode()          {}
func (f *FloatLit) Span() token.Span { return f.Sp }

// BoolLit is `true` or `false`.
type BoolLit struct {
	Value bool
	Sp    token.Span
}

func (*BoolLit) exprNode()          {}
func (b *BoolLit) Span() token.Span { return b.Sp }

// NullLit is the `null` literal.
type NullLit struct {
	Sp token.Span
}

func (*NullLit) exprNode()          {}
func (n *NullLit) Span() token.Span { return n.Sp }

// StringLit is a string literal, possibly interpolated. Parts
// alternates implicitly between literal text and embedded
// expressions; when len(Exprs) == 0 the string has no interpolation.
type StringLit struct {
	// Parts are the literal text segments; len(Parts) == len(Exprs)+1.
	Parts []string
	// Exprs are the `${...}`/`$ident` expressions between parts.
	Exprs []Expr
	Sp    token.Span
}

func (*StringLit) exprNode()          {}
func (s *StringLit) Span() token.Span { return s.Sp }

// Ident is a bare variable or function reference.
type Ident struct {
	Name string
	Sp   token.Span
}

func (*Ident) exprNode()          {}
func (i *Ident) Span() token.Span { return i.Sp }

// Binary is a binary operation.
type Binary struct {
	Op    BinaryOp
	Left  Expr
	Right Expr
	Sp    token.Span
}

func (*Binary) exprNode()          {}
func (b *Binary) Span() token.Span { return b.Sp }

// Unary is a unary operation.
type Unary struct {
	Op      UnaryOp
	Operand Expr
	Sp      token.Span
}

func (*Unary) exprNode()          {}
func (u *Unary) Span() token.Span { return u.Sp }

// Elvis is `left ?: right`.
type Elvis struct {
	Left  Expr
	Right Expr
	Sp    token.Span
}

func (*Elvis) exprNode()          {}
func (e *Elvis) Span() token.Span { return e.Sp }

// Arg is one call argument, optionally named.
type Arg struct {
	Name  string // empty if positional
	Value Expr
}

// Call is a function call: `name(args...)`.
type Call struct {
	Callee string
	Args   []Arg
	Sp     token.Span
}

func (*Call) exprNode()          {}
func (c *Call) Span() token.Span { return c.Sp }

// MethodCall is `receiver.method(args...)`, dispatched at lowering
// time either to a registry-provided builtin signature or, for
// user-defined receivers, to a free function
// `TypeName_instance_methodName(receiver, args...)`.
type MethodCall struct {
	Receiver Expr
	Method   string
	Args     []Arg
	Safe     bool // receiver?.method(...)
	Sp       token.Span
}

func (*MethodCall) exprNode()          {}
func (m *MethodCall) Span() token.Span { return m.Sp }

// FieldAccess is `receiver.field`.
type FieldAccess struct {
	Receiver Expr
	Field    string
	Safe     bool // receiver?.field
	Sp       token.Span
}

func (*FieldAccess) exprNode()          {}
func (f *FieldAccess) Span() token.Span { return f.Sp }

// Index is `receiver[index]`.
type Index struct {
	Receiver Expr
	Index    Expr
	Sp       token.Span
}

func (*Index) exprNode()          {}
func (i *Index) Span() token.Span { return i.Sp }

// ArrayLit is `[e1, e2, ...]`, lowered to List when the context
// expects a List, otherwise to a fixed-size Array.
type ArrayLit struct {
	Elements []Expr
	Sp       token.Span
}

func (*ArrayLit) exprNode()          {}
func (a *ArrayLit) Span() token.Span { return a.Sp }

// TupleLit is `(e1, e2, ...)`. A single parenthesized expression with
// no comma is not a TupleLit; the parser unwraps it. `()` is the Unit
// literal, represented as a TupleLit with no elements.
type TupleLit struct {
	Elements []Expr
	Sp       token.Span
}

func (*TupleLit) exprNode()          {}
func (t *TupleLit) Span() token.Span { return t.Sp }

// DictEntry is one `"key": value` pair of a dict literal.
type DictEntry struct {
	Key   Expr
	Value Expr
}

// DictLit is `{ "k": v, ... }`.
type DictLit struct {
	Entries []DictEntry
	Sp      token.Span
}

func (*DictLit) exprNode()          {}
func (d *DictLit) Span() token.Span { return d.Sp }

// EnumConstruct is `EnumName.Variant(args...)` or `EnumName.Variant`.
// The parser builds it only for the qualified form; a bare variant
// name outside a pattern parses as an identifier or a call.
type EnumConstruct struct {
	EnumName string
	Variant  string
	Args     []Expr
	Sp       token.Span
}

func (*EnumConstruct) exprNode()          {}
func (e *EnumConstruct) Span() token.Span { return e.Sp }

// StructConstruct is `TypeName(field: value, ...)`, reusing Call's
// named-argument shape for fields.
type StructConstruct struct {
	TypeName string
	Fields   []Arg
	Sp       token.Span
}

func (*StructConstruct) exprNode()          {}
func (s *StructConstruct) Span() token.Span { return s.Sp }

// If as an expression or statement; the parser produces the same node
// for both and the semantic analyzer decides, from context, whether
// an Else is required.
type If struct {
	Cond Expr
	Then *Block
	Else *Block // nil if absent; may itself contain a single If statement (else if)
	Sp   token.Span
}

func (*If) exprNode()          {}
func (i *If) Span() token.Span { return i.Sp }

// When (match) arm.
type WhenArm struct {
	Patterns []Pattern // multiple patterns separated by commas share a body
	Guard    Expr      // nil if absent
	Body     Expr
	Sp       token.Span
}

// When is Rive's match expression/statement.
type When struct {
	Scrutinee Expr
	Arms      []WhenArm
	Sp        token.Span
}

func (*When) exprNode()          {}
func (w *When) Span() token.Span { return w.Sp }

// Block is `{ statements...; final_expr? }`.
type Block struct {
	Statements []Stmt
	Sp         token.Span
}

func (*Block) exprNode()          {}
func (b *Block) Span() token.Span { return b.Sp }

// Loop is `loop { ... }`, `while cond { ... }`, or
// `for name in range { ... }`, optionally prefixed by `label:`.
type LoopKind int

const (
	LoopBare LoopKind = iota
	LoopWhile
	LoopFor
)

type Loop struct {
	Kind      LoopKind
	Label     string // empty if the user did not supply one
	Cond      Expr   // LoopWhile only
	VarName   string // LoopFor only
	RangeLo   Expr   // LoopFor only
	RangeHi   Expr   // LoopFor only
	Inclusive bool   // LoopFor only: `..=` vs `..`
	Body      *Block
	Sp        token.Span
}

func (*Loop) exprNode()          {}
func (l *Loop) Span() token.Span { return l.Sp }

// Print is the `print(expr)` intrinsic.
type Print struct {
	Arg Expr
	Sp  token.Span
}

func (*Print) exprNode()          {}
func (p *Print) Span() token.Span { return p.Sp }
