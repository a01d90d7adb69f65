// SPDX-FileCopyrightText: © 2021 The dyml authors <https://github.com/golangee/dyml/blob/main/AUTHORS>
// SPDX-License-Identifier: Apache-2.0

// Package semantic validates a parsed program: name resolution,
// type checking, mutability, arity, null-safety, and match
// exhaustiveness. It never mutates the AST; its sole output is ok or
// the first error found.
package semantic

import (
	"fmt"

	"github.com/rive-lang/rivec/ast"
	"github.com/rive-lang/rivec/token"
	"github.com/rive-lang/rivec/typesys"
)

// Error is a semantic error (spec.md §7: SemanticError). The first
// one aborts the stage.
type Error struct {
	*token.PosError
}

func newError(sp token.Span, format string, args ...any) *Error {
	return &Error{token.NewPosError(sp, fmt.Sprintf(format, args...))}
}

// param is one declared parameter of a checked function.
type param struct {
	name string
	typ  typesys.ID
}

type funcSig struct {
	params []param
	ret    typesys.ID
}

// loopCtx tracks one enclosing loop while its body is checked.
type loopCtx struct {
	label     string
	breakType typesys.ID
	sawValue  bool
	sawPlain  bool
}

// Analyzer walks the AST with a stacked symbol table. A fresh
// Analyzer is used per compilation; it appends composite types to the
// registry while resolving annotations but never mutates the AST.
type Analyzer struct {
	reg     *typesys.Registry
	funcs   map[string]funcSig
	scopes  *scopeStack
	loops   []*loopCtx
	retType typesys.ID
}

// Analyze checks prog against the registry the parser populated and
// returns the first error, or nil if the program is well-formed.
func Analyze(prog *ast.Program, reg *typesys.Registry) *Error {
	a := &Analyzer{
		reg:    reg,
		funcs:  make(map[string]funcSig),
		scopes: newScopeStack(),
	}

	if err := a.collectSignatures(prog); err != nil {
		return err
	}

	if _, ok := a.funcs["main"]; !ok {
		return newError(token.Span{}, "missing 'main' function")
	}

	for _, item := range prog.Items {
		switch it := item.(type) {
		case *ast.Function:
			if err := a.checkFunction(it, ""); err != nil {
				return err
			}
		case *ast.ImplBlock:
			for _, m := range it.Methods {
				if err := a.checkFunction(m, it.TypeName); err != nil {
					return err
				}
			}
		}
	}

	return nil
}

// collectSignatures registers every function (and every impl method
// under its mangled free-function name) before any body is checked,
// so forward references and mutual recursion resolve.
func (a *Analyzer) collectSignatures(prog *ast.Program) *Error {
	for _, item := range prog.Items {
		switch it := item.(type) {
		case *ast.Function:
			sig, err := a.resolveSignature(it, "")
			if err != nil {
				return err
			}

			if _, dup := a.funcs[it.Name]; dup {
				return newError(it.Sp, "function %q is defined more than once", it.Name)
			}

			a.funcs[it.Name] = sig

		case *ast.ImplBlock:
			if _, ok := a.reg.GetByName(it.TypeName); !ok {
				return newError(it.Sp, "impl block for unknown type %q", it.TypeName)
			}

			for _, m := range it.Methods {
				sig, err := a.resolveSignature(m, it.TypeName)
				if err != nil {
					return err
				}

				mangled := instanceMethodName(it.TypeName, m.Name)
				if _, dup := a.funcs[mangled]; dup {
					return newError(m.Sp, "method %q is defined more than once on %s", m.Name, it.TypeName)
				}

				a.funcs[mangled] = sig
			}
		}
	}

	return nil
}

// instanceMethodName is the free-function name an instance method of
// a user type lowers to.
func instanceMethodName(typeName, method string) string {
	return typeName + "_instance_" + method
}

func (a *Analyzer) resolveSignature(fn *ast.Function, receiver string) (funcSig, *Error) {
	var sig funcSig

	for _, p := range fn.Params {
		var typ typesys.ID

		if p.Name == "self" {
			if receiver == "" {
				return funcSig{}, newError(p.Sp, "'self' is only valid inside an impl block")
			}

			id, ok := a.reg.GetByName(receiver)
			if !ok {
				return funcSig{}, newError(p.Sp, "unknown receiver type %q", receiver)
			}

			typ = id
		} else {
			id, err := typesys.ResolveTypeExpr(a.reg, p.Type)
			if err != nil {
				return funcSig{}, newError(p.Sp, "%s", err)
			}

			typ = id
		}

		sig.params = append(sig.params, param{name: p.Name, typ: typ})
	}

	sig.ret = typesys.Unit

	if fn.ReturnType != nil {
		id, err := typesys.ResolveTypeExpr(a.reg, fn.ReturnType)
		if err != nil {
			return funcSig{}, newError(fn.ReturnType.Span(), "%s", err)
		}

		sig.ret = id
	}

	return sig, nil
}

func (a *Analyzer) checkFunction(fn *ast.Function, receiver string) *Error {
	name := fn.Name
	if receiver != "" {
		name = instanceMethodName(receiver, fn.Name)
	}

	sig := a.funcs[name]
	a.retType = sig.ret

	a.scopes.push()
	defer a.scopes.pop()

	for _, p := range sig.params {
		if !a.scopes.define(p.name, symbol{typ: p.typ}) {
			return newError(fn.Sp, "duplicate parameter %q", p.name)
		}
	}

	if err := a.checkBlockStmts(fn.Body); err != nil {
		return err
	}

	return nil
}

// checkBlockStmts checks a block in statement position: a fresh scope
// around its statements, value ignored.
func (a *Analyzer) checkBlockStmts(b *ast.Block) *Error {
	a.scopes.push()
	defer a.scopes.pop()

	for _, s := range b.Statements {
		if err := a.checkStmt(s); err != nil {
			return err
		}
	}

	return nil
}
