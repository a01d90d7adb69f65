// SPDX-FileCopyrightText: © 2021 The dyml authors <https://github.com/golangee/dyml/blob/main/AUTHORS>
// SPDX-License-Identifier: Apache-2.0

package lower

import (
	"github.com/rive-lang/rivec/ast"
	"github.com/rive-lang/rivec/ir"
	"github.com/rive-lang/rivec/typesys"
)

// lowerWhen lowers a when expression or statement. In value position
// the first arm's body type becomes the node's type and every later
// arm is coerced to it.
func (l *Lowerer) lowerWhen(x *ast.When, asExpr bool) (*ir.When, *Error) {
	scrutinee, err := l.lowerExprCtx(x.Scrutinee, noExpectation)
	if err != nil {
		return nil, err
	}

	out := &ir.When{Scrutinee: scrutinee, Typ: typesys.Unit, Sp: x.Sp}

	haveType := false

	for _, arm := range x.Arms {
		l.pushScope()

		patterns := make([]ir.Pattern, len(arm.Patterns))

		for i, pat := range arm.Patterns {
			p, perr := l.lowerPattern(pat, scrutinee.Type())
			if perr != nil {
				l.popScope()
				return nil, perr
			}

			patterns[i] = p
		}

		var guard ir.Expr

		if arm.Guard != nil {
			g, gerr := l.lowerExprCtx(arm.Guard, typesys.Bool)
			if gerr != nil {
				l.popScope()
				return nil, gerr
			}

			guard = g
		}

		body, berr := l.lowerExprCtx(arm.Body, noExpectation)

		l.popScope()

		if berr != nil {
			return nil, berr
		}

		if asExpr {
			if !haveType {
				out.Typ = body.Type()
				haveType = true
			} else {
				body = l.maybeWrap(body, out.Typ)
			}
		}

		out.Arms = append(out.Arms, ir.WhenArm{Patterns: patterns, Guard: guard, Body: body, Sp: arm.Sp})
	}

	return out, nil
}

func (l *Lowerer) lowerPattern(p ast.Pattern, scrut typesys.ID) (ir.Pattern, *Error) {
	switch pat := p.(type) {
	case *ast.WildcardPattern:
		return &ir.WildcardPat{Sp: pat.Sp}, nil

	case *ast.BindingPattern:
		l.define(pat.Name, varInfo{typ: scrut})
		return &ir.BindingPat{Name: pat.Name, Typ: scrut, Sp: pat.Sp}, nil

	case *ast.LiteralPattern:
		if _, isNull := pat.Value.(*ast.NullLit); isNull {
			return nil, newError(pat.Sp, "null patterns are not supported yet; use '?:' or a wildcard arm")
		}

		value, err := l.lowerExprCtx(pat.Value, scrut)
		if err != nil {
			return nil, err
		}

		return &ir.LiteralPat{Value: value, Sp: pat.Sp}, nil

	case *ast.RangePattern:
		lo, err := l.lowerExprCtx(pat.Lo, typesys.Int)
		if err != nil {
			return nil, err
		}

		hi, herr := l.lowerExprCtx(pat.Hi, typesys.Int)
		if herr != nil {
			return nil, herr
		}

		return &ir.RangePat{Lo: lo, Hi: hi, Inclusive: pat.Inclusive, Sp: pat.Sp}, nil

	case *ast.EnumVariantPattern:
		return l.lowerEnumVariantPattern(pat, scrut)

	default:
		return nil, newError(p.Span(), "unhandled pattern reached lowering")
	}
}

// lowerEnumVariantPattern validates the variant against the
// scrutinee's enum and introduces one binding per destructured field.
func (l *Lowerer) lowerEnumVariantPattern(pat *ast.EnumVariantPattern, scrut typesys.ID) (ir.Pattern, *Error) {
	meta, ok := l.reg.Get(scrut)
	if !ok || meta.Kind.Tag != typesys.KEnum {
		return nil, newError(pat.Sp, "variant pattern on non-enum scrutinee reached lowering")
	}

	var fields []typesys.ID

	found := false

	for _, v := range meta.Kind.Variants {
		if v.Name == pat.Variant {
			fields = v.Fields
			found = true

			break
		}
	}

	if !found {
		return nil, newError(pat.Sp, "enum %s has no variant %q", meta.Kind.Name, pat.Variant)
	}

	if len(pat.Bindings) != 0 && len(pat.Bindings) != len(fields) {
		return nil, newError(pat.Sp, "variant %s.%s has %d fields, pattern binds %d",
			meta.Kind.Name, pat.Variant, len(fields), len(pat.Bindings))
	}

	for i, b := range pat.Bindings {
		l.define(b, varInfo{typ: fields[i]})
	}

	return &ir.EnumVariantPat{
		EnumName: meta.Kind.Name,
		Variant:  pat.Variant,
		Bindings: pat.Bindings,
		Fields:   fields,
		Sp:       pat.Sp,
	}, nil
}
