// SPDX-FileCopyrightText: © 2021 The dyml authors <https://github.com/golangee/dyml/blob/main/AUTHORS>
// SPDX-License-Identifier: Apache-2.0

package codegen

import (
	"github.com/rive-lang/rivec/ir"
	"github.com/rive-lang/rivec/typesys"
)

// emitBlockBody writes a block's statements (and tail expression) at
// the current indentation; the caller owns the braces.
func (g *Generator) emitBlockBody(b *ir.Block) *Error {
	for _, s := range b.Statements {
		if err := g.emitStmt(s); err != nil {
			return err
		}
	}

	if b.FinalExpr != nil {
		tail, err := g.genExpr(b.FinalExpr)
		if err != nil {
			return err
		}

		g.line("%s", tail)
	}

	return nil
}

func (g *Generator) emitStmt(s ir.Stmt) *Error {
	switch st := s.(type) {
	case *ir.Let:
		return g.emitLet(st)

	case *ir.Assign:
		value, err := g.genExpr(st.Value)
		if err != nil {
			return err
		}

		g.line("%s = %s;", st.Name, value)

		return nil

	case *ir.Return:
		if st.Value == nil {
			g.line("return;")
			return nil
		}

		value, err := g.genExpr(st.Value)
		if err != nil {
			return err
		}

		g.line("return %s;", value)

		return nil

	case *ir.ExprStmt:
		return g.emitExprStmt(st)

	case *ir.Print:
		return g.emitPrint(st)

	case *ir.If:
		return g.emitIf(st)

	case *ir.While:
		return g.emitWhile(st)

	case *ir.For:
		return g.emitFor(st)

	case *ir.Loop:
		return g.emitLoop(st)

	case *ir.Break:
		return g.emitBreak(st)

	case *ir.Continue:
		if st.Label != "" {
			g.line("continue '%s;", st.Label)
		} else {
			g.line("continue;")
		}

		return nil

	default:
		return newError("codegen: unhandled statement %T", s)
	}
}

func (g *Generator) emitLet(st *ir.Let) *Error {
	value, err := g.genExpr(st.Value)
	if err != nil {
		return err
	}

	typ, terr := g.rustType(st.Type)
	if terr != nil {
		return terr
	}

	mut := ""
	if st.Mutable {
		mut = "mut "
	}

	g.line("let %s%s: %s = %s;", mut, st.Name, typ, value)

	return nil
}

func (g *Generator) emitExprStmt(st *ir.ExprStmt) *Error {
	// A match in statement position emits as a multi-line match, not
	// a one-line expression.
	if w, ok := st.X.(*ir.When); ok {
		return g.emitWhenStmt(w)
	}

	x, err := g.genExpr(st.X)
	if err != nil {
		return err
	}

	g.line("%s;", x)

	return nil
}

func (g *Generator) emitIf(st *ir.If) *Error {
	cond, err := g.genExpr(st.Cond)
	if err != nil {
		return err
	}

	g.line("if %s {", cond)
	g.indent++

	if err := g.emitBlockBody(st.Then); err != nil {
		return err
	}

	g.indent--

	if st.Else == nil {
		g.line("}")
		return nil
	}

	g.line("} else {")
	g.indent++

	if err := g.emitBlockBody(st.Else); err != nil {
		return err
	}

	g.indent--
	g.line("}")

	return nil
}

func labelPrefix(label string) string {
	if label == "" {
		return ""
	}

	return "'" + label + ": "
}

func (g *Generator) emitWhile(st *ir.While) *Error {
	cond, err := g.genExpr(st.Cond)
	if err != nil {
		return err
	}

	g.line("%swhile %s {", labelPrefix(st.Label), cond)
	g.indent++

	if err := g.emitBlockBody(st.Body); err != nil {
		return err
	}

	g.indent--
	g.line("}")

	return nil
}

func (g *Generator) emitFor(st *ir.For) *Error {
	lo, err := g.genExpr(st.Lo)
	if err != nil {
		return err
	}

	hi, herr := g.genExpr(st.Hi)
	if herr != nil {
		return herr
	}

	op := ".."
	if st.Inclusive {
		op = "..="
	}

	g.line("%sfor %s in %s%s%s {", labelPrefix(st.Label), st.Var, lo, op, hi)
	g.indent++

	if err := g.emitBlockBody(st.Body); err != nil {
		return err
	}

	g.indent--
	g.line("}")

	return nil
}

func (g *Generator) emitLoop(st *ir.Loop) *Error {
	g.line("%sloop {", labelPrefix(st.Label))
	g.indent++

	if err := g.emitBlockBody(st.Body); err != nil {
		return err
	}

	g.indent--
	g.line("}")

	return nil
}

// emitBreak lowers the three break shapes: a valued break inside a
// loop expression assigns the result variable first; a valued break
// in a statement loop evaluates the value for its effects only; a
// plain break just breaks.
func (g *Generator) emitBreak(st *ir.Break) *Error {
	target := "break"
	if st.Label != "" {
		target = "break '" + st.Label
	}

	if st.Value == nil {
		g.line("%s;", target)
		return nil
	}

	value, err := g.genExpr(st.Value)
	if err != nil {
		return err
	}

	if st.ResultVar != "" {
		g.line("%s = Some(%s);", st.ResultVar, value)
		g.line("%s;", target)

		return nil
	}

	g.line("let _ = %s;", value)
	g.line("%s;", target)

	return nil
}

// emitPrint selects the formatting per the argument's type (spec.md
// §4.6's print intrinsic table).
func (g *Generator) emitPrint(st *ir.Print) *Error {
	arg, err := g.genExpr(st.Arg)
	if err != nil {
		return err
	}

	meta, ok := g.reg.Get(st.Arg.Type())
	if !ok {
		return newError("codegen: print argument has unknown type")
	}

	switch meta.Kind.Tag {
	case typesys.KText:
		g.line("println!(\"{}\", %s);", arg)

	case typesys.KOptional:
		g.line("match %s {", arg)
		g.indent++
		g.line("Some(__v) => println!(\"{:?}\", __v),")
		g.line("None => println!(\"null\"),")
		g.indent--
		g.line("}")

	case typesys.KList, typesys.KMap:
		g.line("println!(\"{:?}\", %s.borrow());", arg)

	case typesys.KArray:
		if meta.IsCopy() {
			g.line("println!(\"{:?}\", %s);", arg)
		} else {
			g.line("println!(\"{:?}\", %s.borrow());", arg)
		}

	case typesys.KStruct:
		if meta.IsMoveOnly() {
			g.line("println!(\"{:?}\", %s);", arg)
		} else {
			g.line("println!(\"{:?}\", %s.borrow());", arg)
		}

	default:
		g.line("println!(\"{:?}\", %s);", arg)
	}

	return nil
}

// emitWhenStmt writes a match whose arms are statements.
func (g *Generator) emitWhenStmt(w *ir.When) *Error {
	head, err := g.genMatchHead(w)
	if err != nil {
		return err
	}

	g.line("match %s {", head)
	g.indent++

	for _, arm := range w.Arms {
		pat, perr := g.genArmPattern(arm)
		if perr != nil {
			return perr
		}

		g.line("%s => {", pat)
		g.indent++

		body, berr := g.genExpr(arm.Body)
		if berr != nil {
			return berr
		}

		g.line("%s;", body)
		g.indent--
		g.line("}")
	}

	g.indent--
	g.line("}")

	return nil
}
