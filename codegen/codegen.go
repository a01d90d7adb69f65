// SPDX-FileCopyrightText: © 2021 The dyml authors <https://github.com/golangee/dyml/blob/main/AUTHORS>
// SPDX-License-Identifier: Apache-2.0

// Package codegen walks the IR and emits equivalent Rust source text.
// The emitter tracks indentation itself and produces already-valid,
// already-formatted Rust; the host toolchain only has to compile it.
package codegen

import (
	"fmt"
	"strings"

	"github.com/rive-lang/rivec/ir"
	"github.com/rive-lang/rivec/typesys"
)

// Error is a codegen error: malformed IR reaching the emitter. There
// is no span; by this stage the defect is the compiler's, not the
// user's.
type Error struct {
	Message string
}

func (e *Error) Error() string { return e.Message }

func newError(format string, args ...any) *Error {
	return &Error{Message: fmt.Sprintf(format, args...)}
}

// Options are the emitter's knobs.
type Options struct {
	// EmitInlineHints annotates small, non-recursive helper functions
	// with #[inline]. Correctness never depends on it.
	EmitInlineHints bool
}

// Generator emits one module. It is single-use.
type Generator struct {
	reg    *typesys.Registry
	opts   Options
	sb     strings.Builder
	indent int
}

// Generate emits Rust source for mod.
func Generate(mod *ir.Module, opts Options) (string, *Error) {
	g := &Generator{reg: mod.Registry, opts: opts}

	g.emitPrelude()

	if err := g.emitTypeDecls(); err != nil {
		return "", err
	}

	for _, fn := range mod.Functions {
		if err := g.emitFunction(fn); err != nil {
			return "", err
		}
	}

	return g.sb.String(), nil
}

func (g *Generator) line(format string, args ...any) {
	g.sb.WriteString(strings.Repeat("    ", g.indent))
	fmt.Fprintf(&g.sb, format, args...)
	g.sb.WriteString("\n")
}

func (g *Generator) blank() {
	g.sb.WriteString("\n")
}

func (g *Generator) emitPrelude() {
	g.line("#![allow(unused_variables, unused_mut, unused_imports, unused_parens, unused_labels, dead_code)]")
	g.blank()
	g.line("use std::cell::RefCell;")
	g.line("use std::collections::HashMap;")
	g.line("use std::rc::Rc;")
	g.blank()
}

// emitTypeDecls generates one Rust item per user struct/enum in
// declaration order.
func (g *Generator) emitTypeDecls() *Error {
	for _, meta := range g.reg.UserTypes() {
		switch meta.Kind.Tag {
		case typesys.KStruct:
			g.line("#[derive(Debug, Clone, PartialEq)]")
			g.line("struct %s {", meta.Kind.Name)
			g.indent++

			for _, f := range meta.Kind.Fields {
				ft, err := g.rustType(f.Type)
				if err != nil {
					return err
				}

				g.line("%s: %s,", f.Name, ft)
			}

			g.indent--
			g.line("}")
			g.blank()

		case typesys.KEnum:
			g.line("#[derive(Debug, Clone, PartialEq)]")
			g.line("enum %s {", meta.Kind.Name)
			g.indent++

			for _, v := range meta.Kind.Variants {
				if len(v.Fields) == 0 {
					g.line("%s,", v.Name)
					continue
				}

				types := make([]string, len(v.Fields))

				for i, f := range v.Fields {
					ft, err := g.rustType(f)
					if err != nil {
						return err
					}

					types[i] = ft
				}

				g.line("%s(%s),", v.Name, strings.Join(types, ", "))
			}

			g.indent--
			g.line("}")
			g.blank()
		}
	}

	return nil
}

func (g *Generator) emitFunction(fn *ir.Function) *Error {
	if g.opts.EmitInlineHints && isInlineCandidate(fn) {
		g.line("#[inline]")
	}

	params := make([]string, len(fn.Params))

	for i, p := range fn.Params {
		pt, err := g.rustType(p.Type)
		if err != nil {
			return err
		}

		params[i] = p.Name + ": " + pt
	}

	sig := "fn " + fn.Name + "(" + strings.Join(params, ", ") + ")"

	if fn.ReturnType != typesys.Unit {
		rt, err := g.rustType(fn.ReturnType)
		if err != nil {
			return err
		}

		sig += " -> " + rt
	}

	g.line("%s {", sig)
	g.indent++

	if err := g.emitBlockBody(fn.Body); err != nil {
		return err
	}

	g.indent--
	g.line("}")
	g.blank()

	return nil
}

// isInlineCandidate reports whether fn is small and simple enough for
// an inlining hint: at most five statements, no control flow, no
// self-recursion, and not the entry point.
func isInlineCandidate(fn *ir.Function) bool {
	if fn.Name == "main" || len(fn.Body.Statements) > 5 {
		return false
	}

	for _, s := range fn.Body.Statements {
		switch s.(type) {
		case *ir.If, *ir.While, *ir.For, *ir.Loop:
			return false
		}
	}

	return !callsNamed(fn.Body, fn.Name)
}

func callsNamed(b *ir.Block, name string) bool {
	found := false

	walkBlock(b, func(e ir.Expr) {
		if c, ok := e.(*ir.Call); ok && c.Callee == name {
			found = true
		}
	})

	return found
}

// walkBlock visits every expression in b, depth-first.
func walkBlock(b *ir.Block, visit func(ir.Expr)) {
	for _, s := range b.Statements {
		walkStmt(s, visit)
	}

	if b.FinalExpr != nil {
		walkExpr(b.FinalExpr, visit)
	}
}

func walkStmt(s ir.Stmt, visit func(ir.Expr)) {
	switch st := s.(type) {
	case *ir.Let:
		walkExpr(st.Value, visit)
	case *ir.Assign:
		walkExpr(st.Value, visit)
	case *ir.Return:
		if st.Value != nil {
			walkExpr(st.Value, visit)
		}
	case *ir.ExprStmt:
		walkExpr(st.X, visit)
	case *ir.Print:
		walkExpr(st.Arg, visit)
	case *ir.If:
		walkExpr(st.Cond, visit)
		walkBlock(st.Then, visit)

		if st.Else != nil {
			walkBlock(st.Else, visit)
		}
	case *ir.While:
		walkExpr(st.Cond, visit)
		walkBlock(st.Body, visit)
	case *ir.For:
		walkExpr(st.Lo, visit)
		walkExpr(st.Hi, visit)
		walkBlock(st.Body, visit)
	case *ir.Loop:
		walkBlock(st.Body, visit)
	case *ir.Break:
		if st.Value != nil {
			walkExpr(st.Value, visit)
		}
	}
}

func walkExpr(e ir.Expr, visit func(ir.Expr)) {
	visit(e)

	switch x := e.(type) {
	case *ir.Binary:
		walkExpr(x.Left, visit)
		walkExpr(x.Right, visit)
	case *ir.Unary:
		walkExpr(x.Operand, visit)
	case *ir.Elvis:
		walkExpr(x.Value, visit)
		walkExpr(x.Fallback, visit)
	case *ir.WrapOptional:
		walkExpr(x.Value, visit)
	case *ir.Call:
		for _, a := range x.Args {
			walkExpr(a, visit)
		}
	case *ir.MethodCall:
		walkExpr(x.Receiver, visit)

		for _, a := range x.Args {
			walkExpr(a, visit)
		}
	case *ir.FieldAccess:
		walkExpr(x.Receiver, visit)
	case *ir.Index:
		walkExpr(x.Receiver, visit)
		walkExpr(x.Index, visit)
	case *ir.ArrayLit:
		for _, el := range x.Elems {
			walkExpr(el, visit)
		}
	case *ir.ListLit:
		for _, el := range x.Elems {
			walkExpr(el, visit)
		}
	case *ir.TupleLit:
		for _, el := range x.Elems {
			walkExpr(el, visit)
		}
	case *ir.MapLit:
		for _, entry := range x.Entries {
			walkExpr(entry.Key, visit)
			walkExpr(entry.Value, visit)
		}
	case *ir.StructLit:
		for _, f := range x.Fields {
			walkExpr(f.Value, visit)
		}
	case *ir.EnumVariant:
		for _, a := range x.Args {
			walkExpr(a, visit)
		}
	case *ir.IfExpr:
		walkExpr(x.Cond, visit)
		walkBlock(x.Then, visit)
		walkBlock(x.Else, visit)
	case *ir.When:
		walkExpr(x.Scrutinee, visit)

		for _, arm := range x.Arms {
			if arm.Guard != nil {
				walkExpr(arm.Guard, visit)
			}

			walkExpr(arm.Body, visit)
		}
	case *ir.BlockExpr:
		walkBlock(x.Block, visit)
	case *ir.LoopExpr:
		if x.Cond != nil {
			walkExpr(x.Cond, visit)
		}

		if x.Lo != nil {
			walkExpr(x.Lo, visit)
		}

		if x.Hi != nil {
			walkExpr(x.Hi, visit)
		}

		walkBlock(x.Body, visit)
	}
}

// rustType lowers a registry type to its Rust spelling (spec.md §4.6's
// type-lowering table).
func (g *Generator) rustType(id typesys.ID) (string, *Error) {
	meta, ok := g.reg.Get(id)
	if !ok {
		return "", newError("codegen: unknown type %s", id)
	}

	switch meta.Kind.Tag {
	case typesys.KInt:
		return "i64", nil
	case typesys.KFloat:
		return "f64", nil
	case typesys.KBool:
		return "bool", nil
	case typesys.KText:
		return "String", nil
	case typesys.KUnit:
		return "()", nil
	case typesys.KNull:
		return "Option<()>", nil

	case typesys.KOptional:
		inner, err := g.rustType(meta.Kind.Elem)
		if err != nil {
			return "", err
		}

		return "Option<" + inner + ">", nil

	case typesys.KArray:
		elem, err := g.rustType(meta.Kind.Elem)
		if err != nil {
			return "", err
		}

		if meta.IsCopy() {
			return fmt.Sprintf("[%s; %d]", elem, meta.Kind.Size), nil
		}

		return "Rc<RefCell<Vec<" + elem + ">>>", nil

	case typesys.KList:
		elem, err := g.rustType(meta.Kind.Elem)
		if err != nil {
			return "", err
		}

		return "Rc<RefCell<Vec<" + elem + ">>>", nil

	case typesys.KMap:
		key, err := g.rustType(meta.Kind.Key)
		if err != nil {
			return "", err
		}

		val, verr := g.rustType(meta.Kind.Val)
		if verr != nil {
			return "", verr
		}

		return "Rc<RefCell<HashMap<" + key + ", " + val + ">>>", nil

	case typesys.KTuple:
		elems := make([]string, len(meta.Kind.Elems))

		for i, e := range meta.Kind.Elems {
			t, err := g.rustType(e)
			if err != nil {
				return "", err
			}

			elems[i] = t
		}

		return "(" + strings.Join(elems, ", ") + ")", nil

	case typesys.KFunction:
		params := make([]string, len(meta.Kind.Params))

		for i, p := range meta.Kind.Params {
			t, err := g.rustType(p)
			if err != nil {
				return "", err
			}

			params[i] = t
		}

		sig := "fn(" + strings.Join(params, ", ") + ")"

		if meta.Kind.Ret != typesys.Unit {
			ret, err := g.rustType(meta.Kind.Ret)
			if err != nil {
				return "", err
			}

			sig += " -> " + ret
		}

		return sig, nil

	case typesys.KStruct:
		if meta.IsMoveOnly() {
			return meta.Kind.Name, nil
		}

		return "Rc<RefCell<" + meta.Kind.Name + ">>", nil

	case typesys.KEnum:
		return meta.Kind.Name, nil

	default:
		return "", newError("codegen: cannot lower type %s", g.reg.TypeName(id))
	}
}
