// SPDX-FileCopyrightText: © 2021 The dyml authors <https://github.com/golangee/dyml/blob/main/AUTHORS>
// SPDX-License-Identifier: Apache-2.0

package ir

import (
	"github.com/rive-lang/rivec/token"
	"github.com/rive-lang/rivec/typesys"
)

// Expr is any IR expression. Every expression knows its resolved
// type.
type Expr interface {
	exprNode()
	Type() typesys.ID
	Span() token.Span
}

// BinOp enumerates the IR binary operators. All are left-associative.
type BinOp int

const (
	Add BinOp = iota
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
)

// UnOp enumerates the IR unary operators.
type UnOp int

const (
	Neg UnOp = iota
	Not
)

// IntLit is an integer literal, always typed Int.
type IntLit struct {
	Value int64
	Sp    token.Span
}

func (*IntLit) exprNode()          {}
func (i *IntLit) Type() typesys.ID { return typesys.Int }
func (i *IntLit) Span() token.Span { return i.Sp }

// FloatLit is a float literal, always typed Float.
type FloatLit struct {
	Value float64
	Sp    token.Span
}

func (*FloatLit) exprNode()          {}
func (f *FloatLit) Type() typesys.ID { return typesys.Float }
func (f *FloatLit) Span() token.Span { return f.Sp }

// BoolLit is a boolean literal, always typed Bool.
type BoolLit struct {
	Value bool
	Sp    token.Span
}

func (*BoolLit) exprNode()          {}
func (b *BoolLit) Type() typesys.ID { return typesys.Bool }
func (b *BoolLit) Span() token.Span { return b.Sp }

// TextLit is a string literal with interpolation already reduced
// away, always typed Text.
type TextLit struct {
	Value string
	Sp    token.Span
}

func (*TextLit) exprNode()          {}
func (t *TextLit) Type() typesys.ID { return typesys.Text }
func (t *TextLit) Span() token.Span { return t.Sp }

// UnitLit is the `()` value.
type UnitLit struct {
	Sp token.Span
}

func (*UnitLit) exprNode()          {}
func (u *UnitLit) Type() typesys.ID { return typesys.Unit }
func (u *UnitLit) Span() token.Span { return u.Sp }

// NullLit is `null`, typed as the Optional it flows into.
type NullLit struct {
	Typ typesys.ID
	Sp  token.Span
}

func (*NullLit) exprNode()          {}
func (n *NullLit) Type() typesys.ID { return n.Typ }
func (n *NullLit) Span() token.Span { return n.Sp }

// VarRef is a resolved variable reference.
type VarRef struct {
	Name string
	Typ  typesys.ID
	Sp   token.Span
}

func (*VarRef) exprNode()          {}
func (v *VarRef) Type() typesys.ID { return v.Typ }
func (v *VarRef) Span() token.Span { return v.Sp }

// Binary is a binary operation with its result type resolved.
type Binary struct {
	Op    BinOp
	Left  Expr
	Right Expr
	Typ   typesys.ID
	Sp    token.Span
}

func (*Binary) exprNode()          {}
func (b *Binary) Type() typesys.ID { return b.Typ }
func (b *Binary) Span() token.Span { return b.Sp }

// Unary is a unary operation.
type Unary struct {
	Op      UnOp
	Operand Expr
	Typ     typesys.ID
	Sp      token.Span
}

func (*Unary) exprNode()          {}
func (u *Unary) Type() typesys.ID { return u.Typ }
func (u *Unary) Span() token.Span { return u.Sp }

// Elvis is `value ?: fallback` with the narrowing already decided:
// Typ is T when the fallback is T, T? when the fallback is itself
// optional.
type Elvis struct {
	Value    Expr
	Fallback Expr
	Typ      typesys.ID
	Sp       token.Span
}

func (*Elvis) exprNode()          {}
func (e *Elvis) Type() typesys.ID { return e.Typ }
func (e *Elvis) Span() token.Span { return e.Sp }

// WrapOptional materializes an implicit T -> T? widening. Typ is the
// Optional<T> being produced.
type WrapOptional struct {
	Value Expr
	Typ   typesys.ID
	Sp    token.Span
}

func (*WrapOptional) exprNode()          {}
func (w *WrapOptional) Type() typesys.ID { return w.Typ }
func (w *WrapOptional) Span() token.Span { return w.Sp }

// Call is a call of a free function (or of a lowered instance
// method).
type Call struct {
	Callee string
	Args   []Expr
	Typ    typesys.ID
	Sp     token.Span
}

func (*Call) exprNode()          {}
func (c *Call) Type() typesys.ID { return c.Typ }
func (c *Call) Span() token.Span { return c.Sp }

// MethodCall is a call of a built-in method on a primitive or
// collection receiver, or, with Free set, a safe call of a lowered
// instance method: Method then names the free function the receiver
// is passed to as first argument. Non-safe calls on user-defined
// receivers never reach the IR in this shape; lowering rewrites them
// to Call.
type MethodCall struct {
	Receiver Expr
	Method   string
	Args     []Expr
	Safe     bool
	Free     bool
	// Flatten is set on safe calls whose underlying result is already
	// optional, so the emitter chains with and_then instead of map.
	Flatten bool
	Typ     typesys.ID
	Sp      token.Span
}

func (*MethodCall) exprNode()          {}
func (m *MethodCall) Type() typesys.ID { return m.Typ }
func (m *MethodCall) Span() token.Span { return m.Sp }

// FieldAccess reads a struct field. Flatten mirrors MethodCall: a
// safe access to an already-optional field chains with and_then.
type FieldAccess struct {
	Receiver Expr
	Field    string
	Safe     bool
	Flatten  bool
	Typ      typesys.ID
	Sp       token.Span
}

func (*FieldAccess) exprNode()          {}
func (f *FieldAccess) Type() typesys.ID { return f.Typ }
func (f *FieldAccess) Span() token.Span { return f.Sp }

// Index reads an Array or List element.
type Index struct {
	Receiver Expr
	Index    Expr
	Typ      typesys.ID
	Sp       token.Span
}

func (*Index) exprNode()          {}
func (i *Index) Type() typesys.ID { return i.Typ }
func (i *Index) Span() token.Span { return i.Sp }

// ArrayLit is a fixed-size array literal.
type ArrayLit struct {
	Elems []Expr
	Typ   typesys.ID
	Sp    token.Span
}

func (*ArrayLit) exprNode()          {}
func (a *ArrayLit) Type() typesys.ID { return a.Typ }
func (a *ArrayLit) Span() token.Span { return a.Sp }

// ListLit is a growable list literal.
type ListLit struct {
	Elems []Expr
	Typ   typesys.ID
	Sp    token.Span
}

func (*ListLit) exprNode()          {}
func (l *ListLit) Type() typesys.ID { return l.Typ }
func (l *ListLit) Span() token.Span { return l.Sp }

// MapEntry is one key/value pair of a MapLit.
type MapEntry struct {
	Key   Expr
	Value Expr
}

// MapLit is a map literal.
type MapLit struct {
	Entries []MapEntry
	Typ     typesys.ID
	Sp      token.Span
}

func (*MapLit) exprNode()          {}
func (m *MapLit) Type() typesys.ID { return m.Typ }
func (m *MapLit) Span() token.Span { return m.Sp }

// TupleLit is a tuple literal.
type TupleLit struct {
	Elems []Expr
	Typ   typesys.ID
	Sp    token.Span
}

func (*TupleLit) exprNode()          {}
func (t *TupleLit) Type() typesys.ID { return t.Typ }
func (t *TupleLit) Span() token.Span { return t.Sp }

// FieldInit is one named field of a StructLit, already reordered to
// declaration order.
type FieldInit struct {
	Name  string
	Value Expr
}

// StructLit constructs a user struct value.
type StructLit struct {
	TypeName string
	Fields   []FieldInit
	Typ      typesys.ID
	Sp       token.Span
}

func (*StructLit) exprNode()          {}
func (s *StructLit) Type() typesys.ID { return s.Typ }
func (s *StructLit) Span() token.Span { return s.Sp }

// EnumVariant constructs an enum value.
type EnumVariant struct {
	EnumName string
	Variant  string
	Args     []Expr
	Typ      typesys.ID
	Sp       token.Span
}

func (*EnumVariant) exprNode()          {}
func (e *EnumVariant) Type() typesys.ID { return e.Typ }
func (e *EnumVariant) Span() token.Span { return e.Sp }

// IfExpr is an if with a value; both branches are present and share
// Typ.
type IfExpr struct {
	Cond Expr
	Then *Block
	Else *Block
	Typ  typesys.ID
	Sp   token.Span
}

func (*IfExpr) exprNode()          {}
func (i *IfExpr) Type() typesys.ID { return i.Typ }
func (i *IfExpr) Span() token.Span { return i.Sp }

// WhenArm is one arm of a When.
type WhenArm struct {
	Patterns []Pattern
	Guard    Expr
	Body     Expr
	Sp       token.Span
}

// When is a lowered match. In statement position Typ is Unit.
type When struct {
	Scrutinee Expr
	Arms      []WhenArm
	Typ       typesys.ID
	Sp        token.Span
}

func (*When) exprNode()          {}
func (w *When) Type() typesys.ID { return w.Typ }
func (w *When) Span() token.Span { return w.Sp }

// BlockExpr is a block with a value.
type BlockExpr struct {
	Block *Block
	Typ   typesys.ID
	Sp    token.Span
}

func (*BlockExpr) exprNode()          {}
func (b *BlockExpr) Type() typesys.ID { return b.Typ }
func (b *BlockExpr) Span() token.Span { return b.Sp }

// LoopExprKind discriminates the three loop forms of LoopExpr.
type LoopExprKind int

const (
	LoopExprBare LoopExprKind = iota
	LoopExprWhile
	LoopExprFor
)

// LoopExpr is a loop in value position. ResultVar names the local the
// emitter introduces for the result-variable pattern; every `break
// with v` inside carries it. Typ is the shared type of the break
// values, or Unit when no break carries a value.
type LoopExpr struct {
	Kind      LoopExprKind
	Label     string
	Cond      Expr // while only
	Var       string
	Lo        Expr
	Hi        Expr
	Inclusive bool
	Body      *Block
	ResultVar string
	Typ       typesys.ID
	Sp        token.Span
}

func (*LoopExpr) exprNode()          {}
func (l *LoopExpr) Type() typesys.ID { return l.Typ }
func (l *LoopExpr) Span() token.Span { return l.Sp }
