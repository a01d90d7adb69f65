// SPDX-FileCopyrightText: © 2021 The dyml authors <https://github.com/golangee/dyml/blob/main/AUTHORS>
// SPDX-License-Identifier: Apache-2.0

package optimizer

import (
	"math"

	"github.com/rive-lang/rivec/ir"
)

// ConstantFolding evaluates binary and unary operations over literal
// operands at compile time. Integer arithmetic is checked: overflow
// and division or modulo by zero leave the node unfolded rather than
// miscompiling or raising.
type ConstantFolding struct{}

func (*ConstantFolding) Name() string { return "constant-folding" }

func (p *ConstantFolding) Run(mod *ir.Module) bool {
	changed := false

	for _, fn := range mod.Functions {
		if p.foldBlock(fn.Body) {
			changed = true
		}
	}

	return changed
}

func (p *ConstantFolding) foldBlock(b *ir.Block) bool {
	changed := false

	for _, s := range b.Statements {
		if p.foldStmt(s) {
			changed = true
		}
	}

	if b.FinalExpr != nil {
		if e, c := p.foldExpr(b.FinalExpr); c {
			b.FinalExpr = e
			changed = true
		}
	}

	return changed
}

func (p *ConstantFolding) foldStmt(s ir.Stmt) bool {
	switch st := s.(type) {
	case *ir.Let:
		e, c := p.foldExpr(st.Value)
		st.Value = e

		return c

	case *ir.Assign:
		e, c := p.foldExpr(st.Value)
		st.Value = e

		return c

	case *ir.Return:
		if st.Value == nil {
			return false
		}

		e, c := p.foldExpr(st.Value)
		st.Value = e

		return c

	case *ir.ExprStmt:
		e, c := p.foldExpr(st.X)
		st.X = e

		return c

	case *ir.Print:
		e, c := p.foldExpr(st.Arg)
		st.Arg = e

		return c

	case *ir.If:
		cond, changed := p.foldExpr(st.Cond)
		st.Cond = cond

		if p.foldBlock(st.Then) {
			changed = true
		}

		if st.Else != nil && p.foldBlock(st.Else) {
			changed = true
		}

		return changed

	case *ir.While:
		cond, changed := p.foldExpr(st.Cond)
		st.Cond = cond

		if p.foldBlock(st.Body) {
			changed = true
		}

		return changed

	case *ir.For:
		lo, changed := p.foldExpr(st.Lo)
		st.Lo = lo

		hi, c := p.foldExpr(st.Hi)
		st.Hi = hi

		if c {
			changed = true
		}

		if p.foldBlock(st.Body) {
			changed = true
		}

		return changed

	case *ir.Loop:
		return p.foldBlock(st.Body)

	case *ir.Break:
		if st.Value == nil {
			return false
		}

		e, c := p.foldExpr(st.Value)
		st.Value = e

		return c

	default:
		return false
	}
}

// foldExpr folds e bottom-up and returns the (possibly replaced)
// expression.
func (p *ConstantFolding) foldExpr(e ir.Expr) (ir.Expr, bool) {
	switch x := e.(type) {
	case *ir.Binary:
		left, lc := p.foldExpr(x.Left)
		right, rc := p.foldExpr(x.Right)
		x.Left, x.Right = left, right

		if folded, ok := foldBinary(x); ok {
			return folded, true
		}

		return x, lc || rc

	case *ir.Unary:
		operand, c := p.foldExpr(x.Operand)
		x.Operand = operand

		if folded, ok := foldUnary(x); ok {
			return folded, true
		}

		return x, c

	case *ir.Elvis:
		value, vc := p.foldExpr(x.Value)
		fallback, fc := p.foldExpr(x.Fallback)
		x.Value, x.Fallback = value, fallback

		return x, vc || fc

	case *ir.WrapOptional:
		value, c := p.foldExpr(x.Value)
		x.Value = value

		return x, c

	case *ir.Call:
		return x, p.foldList(x.Args)

	case *ir.MethodCall:
		recv, c := p.foldExpr(x.Receiver)
		x.Receiver = recv

		return x, p.foldList(x.Args) || c

	case *ir.FieldAccess:
		recv, c := p.foldExpr(x.Receiver)
		x.Receiver = recv

		return x, c

	case *ir.Index:
		recv, rc := p.foldExpr(x.Receiver)
		idx, ic := p.foldExpr(x.Index)
		x.Receiver, x.Index = recv, idx

		return x, rc || ic

	case *ir.ArrayLit:
		return x, p.foldList(x.Elems)

	case *ir.ListLit:
		return x, p.foldList(x.Elems)

	case *ir.TupleLit:
		return x, p.foldList(x.Elems)

	case *ir.MapLit:
		changed := false

		for i := range x.Entries {
			key, kc := p.foldExpr(x.Entries[i].Key)
			value, vc := p.foldExpr(x.Entries[i].Value)
			x.Entries[i].Key, x.Entries[i].Value = key, value
			changed = changed || kc || vc
		}

		return x, changed

	case *ir.StructLit:
		changed := false

		for i := range x.Fields {
			value, c := p.foldExpr(x.Fields[i].Value)
			x.Fields[i].Value = value
			changed = changed || c
		}

		return x, changed

	case *ir.EnumVariant:
		return x, p.foldList(x.Args)

	case *ir.IfExpr:
		cond, changed := p.foldExpr(x.Cond)
		x.Cond = cond

		if p.foldBlock(x.Then) {
			changed = true
		}

		if p.foldBlock(x.Else) {
			changed = true
		}

		return x, changed

	case *ir.When:
		scrutinee, changed := p.foldExpr(x.Scrutinee)
		x.Scrutinee = scrutinee

		for i := range x.Arms {
			if x.Arms[i].Guard != nil {
				guard, c := p.foldExpr(x.Arms[i].Guard)
				x.Arms[i].Guard = guard
				changed = changed || c
			}

			body, c := p.foldExpr(x.Arms[i].Body)
			x.Arms[i].Body = body
			changed = changed || c
		}

		return x, changed

	case *ir.BlockExpr:
		return x, p.foldBlock(x.Block)

	case *ir.LoopExpr:
		changed := false

		if x.Cond != nil {
			cond, c := p.foldExpr(x.Cond)
			x.Cond = cond
			changed = changed || c
		}

		if x.Lo != nil {
			lo, c := p.foldExpr(x.Lo)
			x.Lo = lo
			changed = changed || c
		}

		if x.Hi != nil {
			hi, c := p.foldExpr(x.Hi)
			x.Hi = hi
			changed = changed || c
		}

		if p.foldBlock(x.Body) {
			changed = true
		}

		return x, changed

	default:
		return e, false
	}
}

func (p *ConstantFolding) foldList(exprs []ir.Expr) bool {
	changed := false

	for i := range exprs {
		e, c := p.foldExpr(exprs[i])
		exprs[i] = e
		changed = changed || c
	}

	return changed
}

// foldBinary folds a binary node whose operands are both literals.
func foldBinary(x *ir.Binary) (ir.Expr, bool) {
	switch l := x.Left.(type) {
	case *ir.IntLit:
		r, ok := x.Right.(*ir.IntLit)
		if !ok {
			return nil, false
		}

		return foldIntBinary(x, l.Value, r.Value)

	case *ir.FloatLit:
		r, ok := x.Right.(*ir.FloatLit)
		if !ok {
			return nil, false
		}

		return foldFloatBinary(x, l.Value, r.Value)

	case *ir.BoolLit:
		r, ok := x.Right.(*ir.BoolLit)
		if !ok {
			return nil, false
		}

		return foldBoolBinary(x, l.Value, r.Value)

	case *ir.TextLit:
		r, ok := x.Right.(*ir.TextLit)
		if !ok {
			return nil, false
		}

		switch x.Op {
		case ir.Eq:
			return &ir.BoolLit{Value: l.Value == r.Value, Sp: x.Sp}, true
		case ir.NotEq:
			return &ir.BoolLit{Value: l.Value != r.Value, Sp: x.Sp}, true
		default:
			return nil, false
		}

	default:
		return nil, false
	}
}

func foldIntBinary(x *ir.Binary, a, b int64) (ir.Expr, bool) {
	switch x.Op {
	case ir.Add:
		if v, ok := checkedAdd(a, b); ok {
			return &ir.IntLit{Value: v, Sp: x.Sp}, true
		}

		return nil, false

	case ir.Sub:
		if v, ok := checkedSub(a, b); ok {
			return &ir.IntLit{Value: v, Sp: x.Sp}, true
		}

		return nil, false

	case ir.Mul:
		if v, ok := checkedMul(a, b); ok {
			return &ir.IntLit{Value: v, Sp: x.Sp}, true
		}

		return nil, false

	case ir.Div:
		if b == 0 || (a == math.MinInt64 && b == -1) {
			return nil, false
		}

		return &ir.IntLit{Value: a / b, Sp: x.Sp}, true

	case ir.Mod:
		if b == 0 || (a == math.MinInt64 && b == -1) {
			return nil, false
		}

		return &ir.IntLit{Value: a % b, Sp: x.Sp}, true

	case ir.Eq:
		return &ir.BoolLit{Value: a == b, Sp: x.Sp}, true
	case ir.NotEq:
		return &ir.BoolLit{Value: a != b, Sp: x.Sp}, true
	case ir.Lt:
		return &ir.BoolLit{Value: a < b, Sp: x.Sp}, true
	case ir.LtEq:
		return &ir.BoolLit{Value: a <= b, Sp: x.Sp}, true
	case ir.Gt:
		return &ir.BoolLit{Value: a > b, Sp: x.Sp}, true
	case ir.GtEq:
		return &ir.BoolLit{Value: a >= b, Sp: x.Sp}, true
	default:
		return nil, false
	}
}

func foldFloatBinary(x *ir.Binary, a, b float64) (ir.Expr, bool) {
	switch x.Op {
	case ir.Add:
		return &ir.FloatLit{Value: a + b, Sp: x.Sp}, true
	case ir.Sub:
		return &ir.FloatLit{Value: a - b, Sp: x.Sp}, true
	case ir.Mul:
		return &ir.FloatLit{Value: a * b, Sp: x.Sp}, true
	case ir.Div:
		if b == 0 {
			return nil, false
		}

		return &ir.FloatLit{Value: a / b, Sp: x.Sp}, true
	case ir.Eq:
		return &ir.BoolLit{Value: a == b, Sp: x.Sp}, true
	case ir.NotEq:
		return &ir.BoolLit{Value: a != b, Sp: x.Sp}, true
	case ir.Lt:
		return &ir.BoolLit{Value: a < b, Sp: x.Sp}, true
	case ir.LtEq:
		return &ir.BoolLit{Value: a <= b, Sp: x.Sp}, true
	case ir.Gt:
		return &ir.BoolLit{Value: a > b, Sp: x.Sp}, true
	case ir.GtEq:
		return &ir.BoolLit{Value: a >= b, Sp: x.Sp}, true
	default:
		return nil, false
	}
}

func foldBoolBinary(x *ir.Binary, a, b bool) (ir.Expr, bool) {
	switch x.Op {
	case ir.And:
		return &ir.BoolLit{Value: a && b, Sp: x.Sp}, true
	case ir.Or:
		return &ir.BoolLit{Value: a || b, Sp: x.Sp}, true
	case ir.Eq:
		return &ir.BoolLit{Value: a == b, Sp: x.Sp}, true
	case ir.NotEq:
		return &ir.BoolLit{Value: a != b, Sp: x.Sp}, true
	default:
		return nil, false
	}
}

func foldUnary(x *ir.Unary) (ir.Expr, bool) {
	switch operand := x.Operand.(type) {
	case *ir.IntLit:
		if x.Op == ir.Neg && operand.Value != math.MinInt64 {
			return &ir.IntLit{Value: -operand.Value, Sp: x.Sp}, true
		}

	case *ir.FloatLit:
		if x.Op == ir.Neg {
			return &ir.FloatLit{Value: -operand.Value, Sp: x.Sp}, true
		}

	case *ir.BoolLit:
		if x.Op == ir.Not {
			return &ir.BoolLit{Value: !operand.Value, Sp: x.Sp}, true
		}
	}

	return nil, false
}

func checkedAdd(a, b int64) (int64, bool) {
	r := a + b
	if (b > 0 && r < a) || (b < 0 && r > a) {
		return 0, false
	}

	return r, true
}

func checkedSub(a, b int64) (int64, bool) {
	r := a - b
	if (b < 0 && r < a) || (b > 0 && r > a) {
		return 0, false
	}

	return r, true
}

func checkedMul(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}

	r := a * b
	if r/b != a || (a == math.MinInt64 && b == -1) || (b == math.MinInt64 && a == -1) {
		return 0, false
	}

	return r, true
}
