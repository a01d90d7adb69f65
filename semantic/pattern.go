// SPDX-FileCopyrightText: © 2021 The dyml authors <https://github.com/golangee/dyml/blob/main/AUTHORS>
// SPDX-License-Identifier: Apache-2.0

package semantic

import (
	"github.com/rive-lang/rivec/ast"
	"github.com/rive-lang/rivec/typesys"
)

// checkWhen validates a when expression/statement and returns its
// value type (Unit in statement position).
func (a *Analyzer) checkWhen(x *ast.When, asExpr bool) (typesys.ID, *Error) {
	scrutType, err := a.inferExprCtx(x.Scrutinee, noExpectation)
	if err != nil {
		return 0, err
	}

	var armType typesys.ID

	haveArmType := false

	for _, arm := range x.Arms {
		a.scopes.push()

		for _, pat := range arm.Patterns {
			if perr := a.checkPattern(pat, scrutType); perr != nil {
				a.scopes.pop()
				return 0, perr
			}
		}

		if arm.Guard != nil {
			guardType, gerr := a.inferExprCtx(arm.Guard, typesys.Bool)
			if gerr != nil {
				a.scopes.pop()
				return 0, gerr
			}

			if guardType != typesys.Bool {
				a.scopes.pop()
				return 0, newError(arm.Guard.Span(), "pattern guard must be Bool, found %s", a.reg.TypeName(guardType))
			}
		}

		bodyType, berr := a.inferExprCtx(arm.Body, noExpectation)
		if berr != nil {
			a.scopes.pop()
			return 0, berr
		}

		a.scopes.pop()

		if !asExpr {
			continue
		}

		if !haveArmType {
			armType = bodyType
			haveArmType = true

			continue
		}

		if bodyType != armType && !a.reg.AreCompatible(armType, bodyType) {
			return 0, newError(arm.Sp, "when arms have different types: %s and %s",
				a.reg.TypeName(armType), a.reg.TypeName(bodyType))
		}
	}

	if err := a.checkExhaustiveness(x, scrutType); err != nil {
		return 0, err
	}

	if !asExpr {
		return typesys.Unit, nil
	}

	return armType, nil
}

func (a *Analyzer) checkPattern(p ast.Pattern, scrut typesys.ID) *Error {
	switch pat := p.(type) {
	case *ast.WildcardPattern:
		return nil

	case *ast.BindingPattern:
		a.scopes.define(pat.Name, symbol{typ: scrut})
		return nil

	case *ast.LiteralPattern:
		litType, err := a.inferExprCtx(pat.Value, scrut)
		if err != nil {
			return err
		}

		if !a.reg.AreCompatible(scrut, litType) {
			return newError(pat.Sp, "pattern type %s does not match scrutinee type %s",
				a.reg.TypeName(litType), a.reg.TypeName(scrut))
		}

		return nil

	case *ast.RangePattern:
		if scrut != typesys.Int {
			return newError(pat.Sp, "range patterns require an Int scrutinee, found %s", a.reg.TypeName(scrut))
		}

		loType, err := a.inferExprCtx(pat.Lo, typesys.Int)
		if err != nil {
			return err
		}

		hiType, herr := a.inferExprCtx(pat.Hi, typesys.Int)
		if herr != nil {
			return herr
		}

		if loType != typesys.Int || hiType != typesys.Int {
			return newError(pat.Sp, "range pattern bounds must be Int")
		}

		return nil

	case *ast.EnumVariantPattern:
		return a.checkEnumVariantPattern(pat, scrut)

	default:
		return newError(p.Span(), "unhandled pattern")
	}
}

func (a *Analyzer) checkEnumVariantPattern(pat *ast.EnumVariantPattern, scrut typesys.ID) *Error {
	meta, ok := a.reg.Get(scrut)
	if !ok || meta.Kind.Tag != typesys.KEnum {
		return newError(pat.Sp, "variant patterns require an enum scrutinee, found %s", a.reg.TypeName(scrut))
	}

	if pat.EnumName != "" && pat.EnumName != meta.Kind.Name {
		return newError(pat.Sp, "pattern names enum %s but the scrutinee is %s", pat.EnumName, meta.Kind.Name)
	}

	variant, found := findVariant(meta.Kind.Variants, pat.Variant)
	if !found {
		return newError(pat.Sp, "enum %s has no variant %q", meta.Kind.Name, pat.Variant)
	}

	if len(pat.Bindings) != 0 && len(pat.Bindings) != len(variant.Fields) {
		return newError(pat.Sp, "variant %s.%s has %d fields, pattern binds %d",
			meta.Kind.Name, pat.Variant, len(variant.Fields), len(pat.Bindings))
	}

	for i, b := range pat.Bindings {
		a.scopes.define(b, symbol{typ: variant.Fields[i]})
	}

	return nil
}

// checkExhaustiveness requires the arms to cover every possible value
// of the scrutinee: a wildcard or binding arm, both booleans for a
// Bool scrutinee, or every variant for an enum scrutinee. Guarded
// arms never count toward coverage.
func (a *Analyzer) checkExhaustiveness(x *ast.When, scrut typesys.ID) *Error {
	sawTrue, sawFalse := false, false

	variants := make(map[string]bool)

	for _, arm := range x.Arms {
		if arm.Guard != nil {
			continue
		}

		for _, pat := range arm.Patterns {
			switch p := pat.(type) {
			case *ast.WildcardPattern, *ast.BindingPattern:
				return nil

			case *ast.LiteralPattern:
				if b, ok := p.Value.(*ast.BoolLit); ok {
					if b.Value {
						sawTrue = true
					} else {
						sawFalse = true
					}
				}

			case *ast.EnumVariantPattern:
				variants[p.Variant] = true
			}
		}
	}

	if scrut == typesys.Bool {
		if sawTrue && sawFalse {
			return nil
		}

		return newError(x.Sp, "when over Bool must cover both true and false or use a wildcard")
	}

	if meta, ok := a.reg.Get(scrut); ok && meta.Kind.Tag == typesys.KEnum {
		for _, v := range meta.Kind.Variants {
			if !variants[v.Name] {
				return newError(x.Sp, "when is not exhaustive: variant %s.%s is not covered", meta.Kind.Name, v.Name)
			}
		}

		return nil
	}

	return newError(x.Sp, "when is not exhaustive: add a wildcard arm")
}
