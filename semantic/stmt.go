// SPDX-FileCopyrightText: © 2021 The dyml authors <https://github.com/golangee/dyml/blob/main/AUTHORS>
// SPDX-License-Identifier: Apache-2.0

package semantic

import (
	"github.com/rive-lang/rivec/ast"
	"github.com/rive-lang/rivec/token"
	"github.com/rive-lang/rivec/typesys"
)

func (a *Analyzer) checkStmt(s ast.Stmt) *Error {
	switch st := s.(type) {
	case *ast.Let:
		return a.checkLet(st)

	case *ast.Assign:
		return a.checkAssign(st)

	case *ast.Return:
		return a.checkReturn(st)

	case *ast.Break:
		return a.checkBreak(st)

	case *ast.Continue:
		return a.checkContinue(st)

	case *ast.ExprStmt:
		return a.checkExprStmt(st)

	default:
		return newError(s.Span(), "unhandled statement")
	}
}

func (a *Analyzer) checkLet(st *ast.Let) *Error {
	var declared typesys.ID

	hasDecl := false

	if st.Type != nil {
		id, err := typesys.ResolveTypeExpr(a.reg, st.Type)
		if err != nil {
			return newError(st.Type.Span(), "%s", err)
		}

		declared = id
		hasDecl = true
	}

	expected := noExpectation
	if hasDecl {
		expected = declared
	}

	initType, err := a.inferExprCtx(st.Init, expected)
	if err != nil {
		return err
	}

	bound := initType

	switch {
	case hasDecl:
		if !a.reg.AreCompatible(declared, initType) {
			return newError(st.Init.Span(), "cannot initialize %s with %s",
				a.reg.TypeName(declared), a.reg.TypeName(initType))
		}

		bound = declared

	case st.NullableTag:
		if a.isOptional(initType) {
			bound = initType
		} else {
			bound = a.reg.CreateOptional(initType)
		}

	case initType == typesys.Null:
		return newError(st.Init.Span(), "cannot infer a type for 'null'; annotate the declaration")
	}

	if !a.scopes.define(st.Name, symbol{typ: bound, mutable: st.Mutable}) {
		return newError(st.Sp, "%q is already defined in this scope", st.Name)
	}

	return nil
}

func (a *Analyzer) checkAssign(st *ast.Assign) *Error {
	sym, ok := a.scopes.lookup(st.Name)
	if !ok {
		return newError(st.Sp, "undefined variable %q", st.Name)
	}

	if !sym.mutable {
		return newError(st.Sp, "cannot assign to immutable variable %q; declare it with 'let mut'", st.Name)
	}

	valType, err := a.inferExprCtx(st.Value, sym.typ)
	if err != nil {
		return err
	}

	if !a.reg.AreCompatible(sym.typ, valType) {
		return newError(st.Value.Span(), "cannot assign %s to %q of type %s",
			a.reg.TypeName(valType), st.Name, a.reg.TypeName(sym.typ))
	}

	return nil
}

func (a *Analyzer) checkReturn(st *ast.Return) *Error {
	if st.Value == nil {
		if a.retType != typesys.Unit {
			return newError(st.Sp, "bare 'return' in a function returning %s", a.reg.TypeName(a.retType))
		}

		return nil
	}

	valType, err := a.inferExprCtx(st.Value, a.retType)
	if err != nil {
		return err
	}

	if !a.reg.AreCompatible(a.retType, valType) {
		return newError(st.Value.Span(), "cannot return %s from a function returning %s",
			a.reg.TypeName(valType), a.reg.TypeName(a.retType))
	}

	return nil
}

// checkBreak resolves the target loop and enforces the break-value
// contract: all break values in one loop share a type, and valued and
// plain breaks must not coexist at one loop level.
func (a *Analyzer) checkBreak(st *ast.Break) *Error {
	ctx, err := a.resolveLoop(st.Sp, st.Label, st.Depth)
	if err != nil {
		return err
	}

	if st.Value == nil {
		if ctx.sawValue {
			return newError(st.Sp, "loop mixes 'break' with and without a value")
		}

		ctx.sawPlain = true

		return nil
	}

	if ctx.sawPlain {
		return newError(st.Sp, "loop mixes 'break' with and without a value")
	}

	valType, verr := a.inferExprCtx(st.Value, noExpectation)
	if verr != nil {
		return verr
	}

	if ctx.sawValue && ctx.breakType != valType && !a.reg.AreCompatible(ctx.breakType, valType) {
		return newError(st.Value.Span(), "break value type %s differs from earlier break value type %s",
			a.reg.TypeName(valType), a.reg.TypeName(ctx.breakType))
	}

	if !ctx.sawValue {
		ctx.breakType = valType
		ctx.sawValue = true
	}

	return nil
}

func (a *Analyzer) checkContinue(st *ast.Continue) *Error {
	_, err := a.resolveLoop(st.Sp, st.Label, st.Depth)
	return err
}

// resolveLoop finds the loop a break/continue addresses: by label, by
// depth counted from the innermost loop (1), or the innermost when
// neither is given.
func (a *Analyzer) resolveLoop(sp token.Span, label string, depth int) (*loopCtx, *Error) {
	if len(a.loops) == 0 {
		return nil, newError(sp, "'break' and 'continue' are only valid inside a loop")
	}

	if label != "" {
		for i := len(a.loops) - 1; i >= 0; i-- {
			if a.loops[i].label == label {
				return a.loops[i], nil
			}
		}

		return nil, newError(sp, "no enclosing loop labeled %q", label)
	}

	if depth == 0 {
		depth = 1
	}

	if depth > len(a.loops) {
		return nil, newError(sp, "break depth %d exceeds loop nesting %d", depth, len(a.loops))
	}

	return a.loops[len(a.loops)-depth], nil
}

// checkExprStmt checks an expression in statement position, where if
// needs no else and loops need no value.
func (a *Analyzer) checkExprStmt(st *ast.ExprStmt) *Error {
	switch x := st.X.(type) {
	case *ast.If:
		return a.checkIf(x, false, nil)
	case *ast.When:
		_, err := a.checkWhen(x, false)
		return err
	case *ast.Loop:
		_, err := a.checkLoop(x)
		return err
	default:
		_, err := a.inferExprCtx(st.X, noExpectation)
		return err
	}
}

// checkIf checks the condition and both branches. In expression
// position (asExpr true) an else branch is required and both branch
// types must agree; outType receives the shared type.
func (a *Analyzer) checkIf(x *ast.If, asExpr bool, outType *typesys.ID) *Error {
	condType, err := a.inferExprCtx(x.Cond, typesys.Bool)
	if err != nil {
		return err
	}

	if condType != typesys.Bool {
		return newError(x.Cond.Span(), "if condition must be Bool, found %s", a.reg.TypeName(condType))
	}

	if !asExpr {
		if err := a.checkBlockStmts(x.Then); err != nil {
			return err
		}

		if x.Else != nil {
			return a.checkBlockStmts(x.Else)
		}

		return nil
	}

	if x.Else == nil {
		return newError(x.Sp, "if used as an expression requires an else branch")
	}

	thenType, terr := a.blockValueType(x.Then)
	if terr != nil {
		return terr
	}

	elseType, eerr := a.blockValueType(x.Else)
	if eerr != nil {
		return eerr
	}

	if thenType != elseType && !a.reg.AreCompatible(thenType, elseType) {
		return newError(x.Sp, "if branches have different types: %s and %s",
			a.reg.TypeName(thenType), a.reg.TypeName(elseType))
	}

	if outType != nil {
		*outType = thenType
	}

	return nil
}

// checkLoop checks a loop in either position and returns the loop's
// value type: the shared break-value type, or Unit.
func (a *Analyzer) checkLoop(x *ast.Loop) (typesys.ID, *Error) {
	switch x.Kind {
	case ast.LoopWhile:
		condType, err := a.inferExprCtx(x.Cond, typesys.Bool)
		if err != nil {
			return 0, err
		}

		if condType != typesys.Bool {
			return 0, newError(x.Cond.Span(), "while condition must be Bool, found %s", a.reg.TypeName(condType))
		}

	case ast.LoopFor:
		loType, err := a.inferExprCtx(x.RangeLo, typesys.Int)
		if err != nil {
			return 0, err
		}

		hiType, herr := a.inferExprCtx(x.RangeHi, typesys.Int)
		if herr != nil {
			return 0, herr
		}

		if loType != typesys.Int || hiType != typesys.Int {
			return 0, newError(x.Sp, "for loop bounds must be Int")
		}
	}

	ctx := &loopCtx{label: x.Label, breakType: typesys.Unit}
	a.loops = append(a.loops, ctx)

	a.scopes.push()

	if x.Kind == ast.LoopFor {
		a.scopes.define(x.VarName, symbol{typ: typesys.Int})
	}

	var err *Error

	for _, s := range x.Body.Statements {
		if err = a.checkStmt(s); err != nil {
			break
		}
	}

	a.scopes.pop()

	a.loops = a.loops[:len(a.loops)-1]

	if err != nil {
		return 0, err
	}

	if ctx.sawValue {
		return ctx.breakType, nil
	}

	return typesys.Unit, nil
}
