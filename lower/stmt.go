// SPDX-FileCopyrightText: © 2021 The dyml authors <https://github.com/golangee/dyml/blob/main/AUTHORS>
// SPDX-License-Identifier: Apache-2.0

package lower

import (
	"github.com/rive-lang/rivec/ast"
	"github.com/rive-lang/rivec/ir"
	"github.com/rive-lang/rivec/typesys"
)

// lowerBlock lowers a block, promoting a trailing value-producing
// expression statement to the block's FinalExpr (spec.md §4.4: calls,
// if, and when in tail position are statement-like and stay
// statements).
func (l *Lowerer) lowerBlock(b *ast.Block) (*ir.Block, *Error) {
	l.pushScope()
	defer l.popScope()

	out := &ir.Block{Sp: b.Sp}

	for i, s := range b.Statements {
		if i == len(b.Statements)-1 {
			if es, ok := s.(*ast.ExprStmt); ok && tailIsValue(es.X) {
				final, err := l.lowerExprCtx(es.X, noExpectation)
				if err != nil {
					return nil, err
				}

				if final.Type() != typesys.Unit {
					out.FinalExpr = final
					break
				}

				// A unit-valued loop in tail position stays a loop statement.
				if lx, isLoop := final.(*ir.LoopExpr); isLoop {
					switch lx.Kind {
					case ir.LoopExprWhile:
						out.Statements = append(out.Statements, &ir.While{Label: lx.Label, Cond: lx.Cond, Body: lx.Body, Sp: lx.Sp})
					case ir.LoopExprFor:
						out.Statements = append(out.Statements, &ir.For{Label: lx.Label, Var: lx.Var, Lo: lx.Lo, Hi: lx.Hi, Inclusive: lx.Inclusive, Body: lx.Body, Sp: lx.Sp})
					default:
						out.Statements = append(out.Statements, &ir.Loop{Label: lx.Label, Body: lx.Body, Sp: lx.Sp})
					}

					break
				}

				out.Statements = append(out.Statements, &ir.ExprStmt{X: final, Sp: es.Sp})

				break
			}
		}

		st, err := l.lowerStmt(s)
		if err != nil {
			return nil, err
		}

		out.Statements = append(out.Statements, st)
	}

	return out, nil
}

func tailIsValue(x ast.Expr) bool {
	switch x.(type) {
	case *ast.Call, *ast.MethodCall, *ast.If, *ast.When, *ast.Print:
		return false
	default:
		return true
	}
}

func blockType(b *ir.Block) typesys.ID {
	if b.FinalExpr != nil {
		return b.FinalExpr.Type()
	}

	return typesys.Unit
}

func (l *Lowerer) lowerStmt(s ast.Stmt) (ir.Stmt, *Error) {
	switch st := s.(type) {
	case *ast.Let:
		return l.lowerLet(st)

	case *ast.Assign:
		return l.lowerAssign(st)

	case *ast.Return:
		return l.lowerReturn(st)

	case *ast.Break:
		return l.lowerBreak(st)

	case *ast.Continue:
		return l.lowerContinue(st)

	case *ast.ExprStmt:
		return l.lowerExprStmt(st)

	default:
		return nil, newError(s.Span(), "unhandled statement reached lowering")
	}
}

func (l *Lowerer) lowerLet(st *ast.Let) (ir.Stmt, *Error) {
	var declared typesys.ID

	hasDecl := false

	if st.Type != nil {
		id, err := typesys.ResolveTypeExpr(l.reg, st.Type)
		if err != nil {
			return nil, newError(st.Type.Span(), "%s", err)
		}

		declared = id
		hasDecl = true
	}

	expected := noExpectation
	if hasDecl {
		expected = declared
	}

	value, err := l.lowerExprCtx(st.Init, expected)
	if err != nil {
		return nil, err
	}

	bound := value.Type()

	switch {
	case hasDecl:
		value = l.maybeWrap(value, declared)
		bound = declared

	case st.NullableTag:
		if !l.isOptional(bound) {
			bound = l.reg.CreateOptional(bound)
			value = l.maybeWrap(value, bound)
		}
	}

	strategy := typesys.Copy
	if m, ok := l.reg.Get(bound); ok {
		strategy = m.Strategy
	}

	l.define(st.Name, varInfo{typ: bound, mutable: st.Mutable})

	return &ir.Let{
		Name:     st.Name,
		Type:     bound,
		Strategy: strategy,
		Mutable:  st.Mutable,
		Value:    value,
		Sp:       st.Sp,
	}, nil
}

func (l *Lowerer) lowerAssign(st *ast.Assign) (ir.Stmt, *Error) {
	sym, ok := l.lookup(st.Name)
	if !ok {
		return nil, newError(st.Sp, "undefined variable %q reached lowering", st.Name)
	}

	value, err := l.lowerExprCtx(st.Value, sym.typ)
	if err != nil {
		return nil, err
	}

	return &ir.Assign{Name: st.Name, Value: l.maybeWrap(value, sym.typ), Sp: st.Sp}, nil
}

func (l *Lowerer) lowerReturn(st *ast.Return) (ir.Stmt, *Error) {
	if st.Value == nil {
		return &ir.Return{Sp: st.Sp}, nil
	}

	value, err := l.lowerExprCtx(st.Value, l.retType)
	if err != nil {
		return nil, err
	}

	return &ir.Return{Value: l.maybeWrap(value, l.retType), Sp: st.Sp}, nil
}

func (l *Lowerer) lowerBreak(st *ast.Break) (ir.Stmt, *Error) {
	frame, err := l.resolveFrame(st.Sp, st.Label, st.Depth)
	if err != nil {
		return nil, err
	}

	out := &ir.Break{Sp: st.Sp}

	if st.Label != "" || st.Depth > 1 {
		out.Label = frame.label
	}

	if st.Value != nil {
		value, verr := l.lowerExprCtx(st.Value, noExpectation)
		if verr != nil {
			return nil, verr
		}

		out.Value = value
		out.ResultVar = frame.resultVar

		if !frame.sawValue {
			frame.resultType = value.Type()
			frame.sawValue = true
		}
	}

	return out, nil
}

func (l *Lowerer) lowerContinue(st *ast.Continue) (ir.Stmt, *Error) {
	frame, err := l.resolveFrame(st.Sp, st.Label, st.Depth)
	if err != nil {
		return nil, err
	}

	out := &ir.Continue{Sp: st.Sp}

	if st.Label != "" || st.Depth > 1 {
		out.Label = frame.label
	}

	return out, nil
}

func (l *Lowerer) lowerExprStmt(st *ast.ExprStmt) (ir.Stmt, *Error) {
	switch x := st.X.(type) {
	case *ast.If:
		return l.lowerIfStmt(x)

	case *ast.When:
		w, err := l.lowerWhen(x, false)
		if err != nil {
			return nil, err
		}

		return &ir.ExprStmt{X: w, Sp: st.Sp}, nil

	case *ast.Loop:
		return l.lowerLoopStmt(x)

	case *ast.Print:
		arg, err := l.lowerExprCtx(x.Arg, noExpectation)
		if err != nil {
			return nil, err
		}

		return &ir.Print{Arg: arg, Sp: x.Sp}, nil

	default:
		e, err := l.lowerExprCtx(st.X, noExpectation)
		if err != nil {
			return nil, err
		}

		return &ir.ExprStmt{X: e, Sp: st.Sp}, nil
	}
}

func (l *Lowerer) lowerIfStmt(x *ast.If) (ir.Stmt, *Error) {
	cond, err := l.lowerExprCtx(x.Cond, typesys.Bool)
	if err != nil {
		return nil, err
	}

	then, terr := l.lowerBlock(x.Then)
	if terr != nil {
		return nil, terr
	}

	var els *ir.Block

	if x.Else != nil {
		e, eerr := l.lowerBlock(x.Else)
		if eerr != nil {
			return nil, eerr
		}

		els = e
	}

	return &ir.If{Cond: cond, Then: then, Else: els, Sp: x.Sp}, nil
}

// lowerLoopStmt lowers a loop in statement position: no result
// variable, label kept only when the user wrote one or a nested
// break/continue addresses it.
func (l *Lowerer) lowerLoopStmt(x *ast.Loop) (ir.Stmt, *Error) {
	header, err := l.lowerLoopHeader(x)
	if err != nil {
		return nil, err
	}

	frame := &loopFrame{label: labelOr(x.Label, l.freshLabel())}
	l.loops = append(l.loops, frame)

	l.pushScope()

	if x.Kind == ast.LoopFor {
		l.define(x.VarName, varInfo{typ: typesys.Int})
	}

	body, berr := l.lowerLoopBody(x.Body)

	l.popScope()

	l.loops = l.loops[:len(l.loops)-1]

	if berr != nil {
		return nil, berr
	}

	label := ""
	if frame.used || x.Label != "" {
		label = frame.label
	}

	switch x.Kind {
	case ast.LoopWhile:
		return &ir.While{Label: label, Cond: header.cond, Body: body, Sp: x.Sp}, nil
	case ast.LoopFor:
		return &ir.For{Label: label, Var: x.VarName, Lo: header.lo, Hi: header.hi, Inclusive: x.Inclusive, Body: body, Sp: x.Sp}, nil
	default:
		return &ir.Loop{Label: label, Body: body, Sp: x.Sp}, nil
	}
}

type loopHeader struct {
	cond ir.Expr
	lo   ir.Expr
	hi   ir.Expr
}

// lowerLoopHeader lowers the parts of a loop that evaluate outside
// the loop frame (condition and range bounds).
func (l *Lowerer) lowerLoopHeader(x *ast.Loop) (loopHeader, *Error) {
	var h loopHeader

	switch x.Kind {
	case ast.LoopWhile:
		cond, err := l.lowerExprCtx(x.Cond, typesys.Bool)
		if err != nil {
			return h, err
		}

		h.cond = cond

	case ast.LoopFor:
		lo, err := l.lowerExprCtx(x.RangeLo, typesys.Int)
		if err != nil {
			return h, err
		}

		hi, herr := l.lowerExprCtx(x.RangeHi, typesys.Int)
		if herr != nil {
			return h, herr
		}

		h.lo, h.hi = lo, hi
	}

	return h, nil
}

// lowerLoopBody lowers a loop body as plain statements; a loop body
// has no value of its own, values leave through `break with`.
func (l *Lowerer) lowerLoopBody(b *ast.Block) (*ir.Block, *Error) {
	out := &ir.Block{Sp: b.Sp}

	for _, s := range b.Statements {
		st, err := l.lowerStmt(s)
		if err != nil {
			return nil, err
		}

		out.Statements = append(out.Statements, st)
	}

	return out, nil
}

func labelOr(user, fallback string) string {
	if user != "" {
		return user
	}

	return fallback
}
