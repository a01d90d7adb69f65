// SPDX-FileCopyrightText: © 2021 The dyml authors <https://github.com/golangee/dyml/blob/main/AUTHORS>
// SPDX-License-Identifier: Apache-2.0

// Package lower transforms a semantically valid AST into the typed
// IR: names resolve to symbols with types attached, implicit T -> T?
// widenings become explicit WrapOptional nodes, loops keep a label
// when the source names one or a break/continue addresses them with
// a depth above 1, loops in value position get a result variable, and instance
// methods on user types become free functions.
package lower

import (
	"fmt"
	"strconv"

	"github.com/rive-lang/rivec/ast"
	"github.com/rive-lang/rivec/ir"
	"github.com/rive-lang/rivec/token"
	"github.com/rive-lang/rivec/typesys"
)

// Error is a lowering error (spec.md §7: LoweringError). It signals
// either an invariant the semantic analyzer should have enforced, or
// a construct lowering does not support yet.
type Error struct {
	*token.PosError
}

func newError(sp token.Span, format string, args ...any) *Error {
	return &Error{token.NewPosError(sp, fmt.Sprintf(format, args...))}
}

// noExpectation mirrors the semantic analyzer's sentinel for "no
// context type".
const noExpectation = ^typesys.ID(0)

type varInfo struct {
	typ     typesys.ID
	mutable bool
	// rename is the emitted name when it must differ from the source
	// name (the `self` receiver, which Rust reserves in free
	// functions).
	rename string
}

type funcSig struct {
	params []ir.Param
	ret    typesys.ID
}

// loopFrame tracks one loop while its body is lowered. resultVar is
// non-empty only for loops in value position; used records whether
// any break or continue addressed this loop by label or depth, which
// is what decides whether the emitted loop carries a label.
type loopFrame struct {
	label      string
	resultVar  string
	resultType typesys.ID
	sawValue   bool
	used       bool
}

// Lowerer walks the AST a second time, with its own symbol table
// because it needs the resolved type of every identifier use, not
// just validity.
type Lowerer struct {
	reg     *typesys.Registry
	funcs   map[string]funcSig
	scopes  []map[string]varInfo
	loops   []*loopFrame
	retType typesys.ID
}

// Lower produces the IR module for prog. The registry is cloned into
// the module so later stages resolve type metadata without the
// front-end.
func Lower(prog *ast.Program, reg *typesys.Registry) (*ir.Module, *Error) {
	l := &Lowerer{
		reg:   reg,
		funcs: make(map[string]funcSig),
	}

	// First pass: signatures, so forward references resolve.
	for _, item := range prog.Items {
		switch it := item.(type) {
		case *ast.Function:
			sig, err := l.resolveSignature(it, "")
			if err != nil {
				return nil, err
			}

			l.funcs[it.Name] = sig

		case *ast.ImplBlock:
			for _, m := range it.Methods {
				sig, err := l.resolveSignature(m, it.TypeName)
				if err != nil {
					return nil, err
				}

				l.funcs[instanceMethodName(it.TypeName, m.Name)] = sig
			}
		}
	}

	// Second pass: bodies.
	mod := &ir.Module{}

	for _, item := range prog.Items {
		switch it := item.(type) {
		case *ast.Function:
			fn, err := l.lowerFunction(it, "")
			if err != nil {
				return nil, err
			}

			mod.Functions = append(mod.Functions, fn)

		case *ast.ImplBlock:
			for _, m := range it.Methods {
				fn, err := l.lowerFunction(m, it.TypeName)
				if err != nil {
					return nil, err
				}

				mod.Functions = append(mod.Functions, fn)
			}
		}
	}

	mod.Registry = reg.Clone()

	return mod, nil
}

func instanceMethodName(typeName, method string) string {
	return typeName + "_instance_" + method
}

func (l *Lowerer) resolveSignature(fn *ast.Function, receiver string) (funcSig, *Error) {
	var sig funcSig

	for _, p := range fn.Params {
		var typ typesys.ID

		if p.Name == "self" {
			id, ok := l.reg.GetByName(receiver)
			if !ok {
				return funcSig{}, newError(p.Sp, "unknown receiver type %q", receiver)
			}

			typ = id
		} else {
			id, err := typesys.ResolveTypeExpr(l.reg, p.Type)
			if err != nil {
				return funcSig{}, newError(p.Sp, "%s", err)
			}

			typ = id
		}

		name := p.Name
		if name == "self" {
			name = "self_"
		}

		sig.params = append(sig.params, ir.Param{Name: name, Type: typ})
	}

	sig.ret = typesys.Unit

	if fn.ReturnType != nil {
		id, err := typesys.ResolveTypeExpr(l.reg, fn.ReturnType)
		if err != nil {
			return funcSig{}, newError(fn.ReturnType.Span(), "%s", err)
		}

		sig.ret = id
	}

	return sig, nil
}

func (l *Lowerer) lowerFunction(fn *ast.Function, receiver string) (*ir.Function, *Error) {
	name := fn.Name
	if receiver != "" {
		name = instanceMethodName(receiver, fn.Name)
	}

	sig := l.funcs[name]
	l.retType = sig.ret

	l.pushScope()
	defer l.popScope()

	for _, p := range sig.params {
		if p.Name == "self_" {
			l.define("self", varInfo{typ: p.Type, rename: "self_"})
			continue
		}

		l.define(p.Name, varInfo{typ: p.Type})
	}

	body, err := l.lowerBlock(fn.Body)
	if err != nil {
		return nil, err
	}

	return &ir.Function{
		Name:       name,
		Params:     sig.params,
		ReturnType: sig.ret,
		Body:       body,
		Sp:         fn.Sp,
	}, nil
}

func (l *Lowerer) pushScope() {
	l.scopes = append(l.scopes, make(map[string]varInfo))
}

func (l *Lowerer) popScope() {
	l.scopes = l.scopes[:len(l.scopes)-1]
}

func (l *Lowerer) define(name string, v varInfo) {
	l.scopes[len(l.scopes)-1][name] = v
}

func (l *Lowerer) lookup(name string) (varInfo, bool) {
	for i := len(l.scopes) - 1; i >= 0; i-- {
		if v, ok := l.scopes[i][name]; ok {
			return v, true
		}
	}

	return varInfo{}, false
}

// freshLabel synthesizes a loop label from the current nesting depth.
func (l *Lowerer) freshLabel() string {
	return "loop_" + strconv.Itoa(len(l.loops)+1)
}

// resolveFrame finds the loop frame a break/continue addresses and
// marks it label-used when the reference is explicit.
func (l *Lowerer) resolveFrame(sp token.Span, label string, depth int) (*loopFrame, *Error) {
	if len(l.loops) == 0 {
		return nil, newError(sp, "'break' outside of a loop reached lowering")
	}

	if label != "" {
		for i := len(l.loops) - 1; i >= 0; i-- {
			if l.loops[i].label == label {
				l.loops[i].used = true
				return l.loops[i], nil
			}
		}

		return nil, newError(sp, "no enclosing loop labeled %q", label)
	}

	if depth == 0 {
		depth = 1
	}

	if depth > len(l.loops) {
		return nil, newError(sp, "break depth %d exceeds loop nesting %d", depth, len(l.loops))
	}

	frame := l.loops[len(l.loops)-depth]

	if depth > 1 {
		frame.used = true
	}

	return frame, nil
}

// maybeWrap inserts a WrapOptional node when a non-optional value
// flows into an optional sink; null literals are retyped to the sink
// instead.
func (l *Lowerer) maybeWrap(e ir.Expr, target typesys.ID) ir.Expr {
	if target == noExpectation || e.Type() == target {
		return e
	}

	tm, ok := l.reg.Get(target)
	if !ok || tm.Kind.Tag != typesys.KOptional {
		return e
	}

	if n, isNull := e.(*ir.NullLit); isNull {
		n.Typ = target
		return n
	}

	em, ok := l.reg.Get(e.Type())
	if ok && em.Kind.Tag == typesys.KOptional {
		return e
	}

	return &ir.WrapOptional{Value: e, Typ: target, Sp: e.Span()}
}
