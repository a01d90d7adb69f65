// SPDX-FileCopyrightText: © 2021 The dyml authors <https://github.com/golangee/dyml/blob/main/AUTHORS>
// SPDX-License-Identifier: Apache-2.0

package codegen

import (
	"strconv"
	"strings"

	"github.com/rive-lang/rivec/ir"
	"github.com/rive-lang/rivec/typesys"
)

// Binary operator precedence, matching Rust's. Higher binds tighter.
// Comparison operators (level 3) are non-associative in Rust, so a
// comparison child of a comparison parent is always parenthesized.
const cmpPrec = 3

func binPrec(op ir.BinOp) int {
	switch op {
	case ir.Or:
		return 1
	case ir.And:
		return 2
	case ir.Eq, ir.NotEq, ir.Lt, ir.LtEq, ir.Gt, ir.GtEq:
		return cmpPrec
	case ir.Add, ir.Sub:
		return 4
	default:
		return 5
	}
}

func binOpText(op ir.BinOp) string {
	switch op {
	case ir.Add:
		return "+"
	case ir.Sub:
		return "-"
	case ir.Mul:
		return "*"
	case ir.Div:
		return "/"
	case ir.Mod:
		return "%"
	case ir.Eq:
		return "=="
	case ir.NotEq:
		return "!="
	case ir.Lt:
		return "<"
	case ir.LtEq:
		return "<="
	case ir.Gt:
		return ">"
	case ir.GtEq:
		return ">="
	case ir.And:
		return "&&"
	default:
		return "||"
	}
}

func (g *Generator) genExpr(e ir.Expr) (string, *Error) {
	switch x := e.(type) {
	case *ir.IntLit:
		return strconv.FormatInt(x.Value, 10), nil

	case *ir.FloatLit:
		return floatText(x.Value), nil

	case *ir.BoolLit:
		return strconv.FormatBool(x.Value), nil

	case *ir.TextLit:
		return strconv.Quote(x.Value) + ".to_string()", nil

	case *ir.UnitLit:
		return "()", nil

	case *ir.NullLit:
		return "None", nil

	case *ir.VarRef:
		return g.genVarRef(x)

	case *ir.Binary:
		return g.genBinary(x)

	case *ir.Unary:
		return g.genUnary(x)

	case *ir.Elvis:
		return g.genElvis(x)

	case *ir.WrapOptional:
		inner, err := g.genExpr(x.Value)
		if err != nil {
			return "", err
		}

		return "Some(" + inner + ")", nil

	case *ir.Call:
		args, err := g.genExprList(x.Args)
		if err != nil {
			return "", err
		}

		return x.Callee + "(" + strings.Join(args, ", ") + ")", nil

	case *ir.MethodCall:
		return g.genMethodCall(x)

	case *ir.FieldAccess:
		return g.genFieldAccess(x)

	case *ir.Index:
		return g.genIndex(x)

	case *ir.ArrayLit:
		return g.genArrayLit(x)

	case *ir.ListLit:
		elems, err := g.genExprList(x.Elems)
		if err != nil {
			return "", err
		}

		return "Rc::new(RefCell::new(vec![" + strings.Join(elems, ", ") + "]))", nil

	case *ir.MapLit:
		return g.genMapLit(x)

	case *ir.TupleLit:
		elems, err := g.genExprList(x.Elems)
		if err != nil {
			return "", err
		}

		return "(" + strings.Join(elems, ", ") + ")", nil

	case *ir.StructLit:
		return g.genStructLit(x)

	case *ir.EnumVariant:
		return g.genEnumVariant(x)

	case *ir.IfExpr:
		return g.genIfExpr(x)

	case *ir.When:
		return g.genWhenExpr(x)

	case *ir.BlockExpr:
		return g.genBlockString(x.Block)

	case *ir.LoopExpr:
		return g.genLoopExpr(x)

	default:
		return "", newError("codegen: unhandled expression %T", e)
	}
}

func (g *Generator) genExprList(exprs []ir.Expr) ([]string, *Error) {
	out := make([]string, len(exprs))

	for i, e := range exprs {
		s, err := g.genExpr(e)
		if err != nil {
			return nil, err
		}

		out[i] = s
	}

	return out, nil
}

// genVarRef emits a variable use. CoW values are shared by cloning
// the handle at every use site, which is the cheap Rc (or String)
// clone the memory model calls for.
func (g *Generator) genVarRef(x *ir.VarRef) (string, *Error) {
	if meta, ok := g.reg.Get(x.Typ); ok && meta.UsesRc() {
		return x.Name + ".clone()", nil
	}

	return x.Name, nil
}

func floatText(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}

	return s
}

// genBinary parenthesizes a child only when its precedence is lower
// than the parent's, or equal on the right side of a left-associative
// parent (comparisons additionally never nest bare). Text `+` emits
// formatted concatenation instead of an operator.
func (g *Generator) genBinary(x *ir.Binary) (string, *Error) {
	if x.Op == ir.Add && x.Typ == typesys.Text {
		left, err := g.genExpr(x.Left)
		if err != nil {
			return "", err
		}

		right, rerr := g.genExpr(x.Right)
		if rerr != nil {
			return "", rerr
		}

		return "format!(\"{}{}\", " + left + ", " + right + ")", nil
	}

	parent := binPrec(x.Op)

	left, err := g.genChild(x.Left, parent, false)
	if err != nil {
		return "", err
	}

	right, rerr := g.genChild(x.Right, parent, true)
	if rerr != nil {
		return "", rerr
	}

	return left + " " + binOpText(x.Op) + " " + right, nil
}

func (g *Generator) genChild(child ir.Expr, parentPrec int, isRight bool) (string, *Error) {
	s, err := g.genExpr(child)
	if err != nil {
		return "", err
	}

	b, ok := child.(*ir.Binary)
	if !ok {
		return s, nil
	}

	// Text concatenation renders as a format! call, which is primary.
	if b.Op == ir.Add && b.Typ == typesys.Text {
		return s, nil
	}

	childPrec := binPrec(b.Op)

	if childPrec < parentPrec ||
		(childPrec == parentPrec && isRight) ||
		(childPrec == cmpPrec && parentPrec == cmpPrec) {
		return "(" + s + ")", nil
	}

	return s, nil
}

// genUnary fuses a negated numeric literal into a single literal
// token instead of wrapping it in parentheses.
func (g *Generator) genUnary(x *ir.Unary) (string, *Error) {
	op := "-"
	if x.Op == ir.Not {
		op = "!"
	}

	switch operand := x.Operand.(type) {
	case *ir.IntLit:
		if x.Op == ir.Neg {
			return "-" + strconv.FormatInt(operand.Value, 10), nil
		}

	case *ir.FloatLit:
		if x.Op == ir.Neg {
			return "-" + floatText(operand.Value), nil
		}
	}

	inner, err := g.genExpr(x.Operand)
	if err != nil {
		return "", err
	}

	if _, isBinary := x.Operand.(*ir.Binary); isBinary {
		return op + "(" + inner + ")", nil
	}

	return op + inner, nil
}

// genElvis picks the optional combinator from the resolved result
// type: unwrap_or_else narrows to T, or_else stays T?.
func (g *Generator) genElvis(x *ir.Elvis) (string, *Error) {
	fallback, err := g.genExpr(x.Fallback)
	if err != nil {
		return "", err
	}

	if x.Value.Type() == typesys.Null {
		return fallback, nil
	}

	value, verr := g.genExpr(x.Value)
	if verr != nil {
		return "", verr
	}

	if meta, ok := g.reg.Get(x.Typ); ok && meta.Kind.Tag == typesys.KOptional {
		return value + ".or_else(|| " + fallback + ")", nil
	}

	return value + ".unwrap_or_else(|| " + fallback + ")", nil
}

func (g *Generator) genMethodCall(x *ir.MethodCall) (string, *Error) {
	recv, err := g.genExpr(x.Receiver)
	if err != nil {
		return "", err
	}

	args, aerr := g.genExprList(x.Args)
	if aerr != nil {
		return "", aerr
	}

	if !x.Safe {
		recvMeta, ok := g.reg.Get(x.Receiver.Type())
		if !ok {
			return "", newError("codegen: method receiver has unknown type")
		}

		return g.genBuiltinMethod(recv, recvMeta, x.Method, args)
	}

	chain := ".map"
	if x.Flatten {
		chain = ".and_then"
	}

	if x.Free {
		callArgs := append([]string{"__it"}, args...)
		return recv + chain + "(|__it| " + x.Method + "(" + strings.Join(callArgs, ", ") + "))", nil
	}

	innerType, ok := g.optionalInner(x.Receiver.Type())
	if !ok {
		return "", newError("codegen: safe call on non-optional receiver")
	}

	innerMeta, ok := g.reg.Get(innerType)
	if !ok {
		return "", newError("codegen: safe-call receiver has unknown inner type")
	}

	body, berr := g.genBuiltinMethod("__it", innerMeta, x.Method, args)
	if berr != nil {
		return "", berr
	}

	return recv + chain + "(|__it| " + body + ")", nil
}

func (g *Generator) optionalInner(id typesys.ID) (typesys.ID, bool) {
	m, ok := g.reg.Get(id)
	if !ok || m.Kind.Tag != typesys.KOptional {
		return 0, false
	}

	return m.Kind.Elem, true
}

// genBuiltinMethod emits the Rust form of one built-in method call on
// an already-rendered receiver.
func (g *Generator) genBuiltinMethod(recv string, meta typesys.Metadata, method string, args []string) (string, *Error) {
	switch meta.Kind.Tag {
	case typesys.KText:
		return genTextMethod(recv, method, args)
	case typesys.KInt:
		if method == "to_float" {
			return "(" + recv + " as f64)", nil
		}
	case typesys.KFloat:
		return genFloatMethod(recv, method)
	case typesys.KList:
		return genListMethod(recv, method, args)
	case typesys.KMap:
		return genMapMethod(recv, method, args)
	case typesys.KTuple:
		if method == "len" {
			return strconv.Itoa(len(meta.Kind.Elems)) + "i64", nil
		}
	}

	return "", newError("codegen: no emission for method %q on %s", method, meta.Kind.DisplayName())
}

func genTextMethod(recv, method string, args []string) (string, *Error) {
	switch method {
	case "len":
		return "(" + recv + ".len() as i64)", nil
	case "is_empty":
		return recv + ".is_empty()", nil
	case "contains":
		return recv + ".contains(" + args[0] + ".as_str())", nil
	case "to_upper":
		return recv + ".to_uppercase()", nil
	case "to_lower":
		return recv + ".to_lowercase()", nil
	case "trim":
		return recv + ".trim().to_string()", nil
	case "replace":
		return recv + ".replace(" + args[0] + ".as_str(), " + args[1] + ".as_str())", nil
	default:
		return "", newError("codegen: no emission for Text method %q", method)
	}
}

func genFloatMethod(recv, method string) (string, *Error) {
	switch method {
	case "to_int":
		return "(if " + recv + ".is_finite() { Some(" + recv + " as i64) } else { None })", nil
	case "is_nan":
		return recv + ".is_nan()", nil
	case "is_infinite":
		return recv + ".is_infinite()", nil
	case "is_finite":
		return recv + ".is_finite()", nil
	case "round":
		return recv + ".round()", nil
	default:
		return "", newError("codegen: no emission for Float method %q", method)
	}
}

func genListMethod(recv, method string, args []string) (string, *Error) {
	switch method {
	case "len":
		return "(" + recv + ".borrow().len() as i64)", nil
	case "is_empty":
		return recv + ".borrow().is_empty()", nil
	case "get":
		return recv + ".borrow().get(" + args[0] + " as usize).cloned()", nil
	case "contains":
		return recv + ".borrow().contains(&" + args[0] + ")", nil
	case "append":
		return recv + ".borrow_mut().push(" + args[0] + ")", nil
	case "insert":
		return recv + ".borrow_mut().insert(" + args[0] + " as usize, " + args[1] + ")", nil
	case "remove":
		return "{ " + recv + ".borrow_mut().remove(" + args[0] + " as usize); }", nil
	case "clear":
		return recv + ".borrow_mut().clear()", nil
	case "reverse":
		return recv + ".borrow_mut().reverse()", nil
	case "sort":
		return recv + ".borrow_mut().sort()", nil
	default:
		return "", newError("codegen: no emission for List method %q", method)
	}
}

func genMapMethod(recv, method string, args []string) (string, *Error) {
	switch method {
	case "len":
		return "(" + recv + ".borrow().len() as i64)", nil
	case "is_empty":
		return recv + ".borrow().is_empty()", nil
	case "get":
		return recv + ".borrow().get(&" + args[0] + ").cloned()", nil
	case "contains_key":
		return recv + ".borrow().contains_key(&" + args[0] + ")", nil
	case "insert":
		return "{ " + recv + ".borrow_mut().insert(" + args[0] + ", " + args[1] + "); }", nil
	case "remove":
		return "{ " + recv + ".borrow_mut().remove(&" + args[0] + "); }", nil
	case "keys":
		return "Rc::new(RefCell::new(" + recv + ".borrow().keys().cloned().collect::<Vec<_>>()))", nil
	case "values":
		return "Rc::new(RefCell::new(" + recv + ".borrow().values().cloned().collect::<Vec<_>>()))", nil
	default:
		return "", newError("codegen: no emission for Map method %q", method)
	}
}

func (g *Generator) genFieldAccess(x *ir.FieldAccess) (string, *Error) {
	recv, err := g.genExpr(x.Receiver)
	if err != nil {
		return "", err
	}

	if !x.Safe {
		return g.fieldRead(recv, x.Receiver.Type(), x.Field)
	}

	inner, ok := g.optionalInner(x.Receiver.Type())
	if !ok {
		return "", newError("codegen: safe field access on non-optional receiver")
	}

	body, berr := g.fieldRead("__it", inner, x.Field)
	if berr != nil {
		return "", berr
	}

	chain := ".map"
	if x.Flatten {
		chain = ".and_then"
	}

	return recv + chain + "(|__it| " + body + ")", nil
}

func (g *Generator) fieldRead(recv string, recvType typesys.ID, field string) (string, *Error) {
	meta, ok := g.reg.Get(recvType)
	if !ok || meta.Kind.Tag != typesys.KStruct {
		return "", newError("codegen: field access on non-struct receiver")
	}

	if meta.IsMoveOnly() {
		return recv + "." + field + ".clone()", nil
	}

	return recv + ".borrow()." + field + ".clone()", nil
}

func (g *Generator) genIndex(x *ir.Index) (string, *Error) {
	recv, err := g.genExpr(x.Receiver)
	if err != nil {
		return "", err
	}

	idx, ierr := g.genExpr(x.Index)
	if ierr != nil {
		return "", ierr
	}

	meta, ok := g.reg.Get(x.Receiver.Type())
	if !ok {
		return "", newError("codegen: index receiver has unknown type")
	}

	if meta.Kind.Tag == typesys.KArray && meta.IsCopy() {
		return recv + "[" + idx + " as usize]", nil
	}

	return recv + ".borrow()[" + idx + " as usize].clone()", nil
}

func (g *Generator) genArrayLit(x *ir.ArrayLit) (string, *Error) {
	elems, err := g.genExprList(x.Elems)
	if err != nil {
		return "", err
	}

	meta, ok := g.reg.Get(x.Typ)
	if !ok {
		return "", newError("codegen: array literal has unknown type")
	}

	if meta.IsCopy() {
		return "[" + strings.Join(elems, ", ") + "]", nil
	}

	return "Rc::new(RefCell::new(vec![" + strings.Join(elems, ", ") + "]))", nil
}

func (g *Generator) genMapLit(x *ir.MapLit) (string, *Error) {
	pairs := make([]string, len(x.Entries))

	for i, entry := range x.Entries {
		key, err := g.genExpr(entry.Key)
		if err != nil {
			return "", err
		}

		value, verr := g.genExpr(entry.Value)
		if verr != nil {
			return "", verr
		}

		pairs[i] = "(" + key + ", " + value + ")"
	}

	return "Rc::new(RefCell::new(HashMap::from([" + strings.Join(pairs, ", ") + "])))", nil
}

func (g *Generator) genStructLit(x *ir.StructLit) (string, *Error) {
	fields := make([]string, len(x.Fields))

	for i, f := range x.Fields {
		value, err := g.genExpr(f.Value)
		if err != nil {
			return "", err
		}

		fields[i] = f.Name + ": " + value
	}

	lit := x.TypeName + " { " + strings.Join(fields, ", ") + " }"

	meta, ok := g.reg.Get(x.Typ)
	if ok && meta.IsMoveOnly() {
		return lit, nil
	}

	return "Rc::new(RefCell::new(" + lit + "))", nil
}

func (g *Generator) genEnumVariant(x *ir.EnumVariant) (string, *Error) {
	if len(x.Args) == 0 {
		return x.EnumName + "::" + x.Variant, nil
	}

	args, err := g.genExprList(x.Args)
	if err != nil {
		return "", err
	}

	return x.EnumName + "::" + x.Variant + "(" + strings.Join(args, ", ") + ")", nil
}

// genBlockString renders a braced block inline at the current
// indentation level.
func (g *Generator) genBlockString(b *ir.Block) (string, *Error) {
	sub := &Generator{reg: g.reg, opts: g.opts, indent: g.indent + 1}

	if err := sub.emitBlockBody(b); err != nil {
		return "", err
	}

	return "{\n" + sub.sb.String() + strings.Repeat("    ", g.indent) + "}", nil
}

func (g *Generator) genIfExpr(x *ir.IfExpr) (string, *Error) {
	cond, err := g.genExpr(x.Cond)
	if err != nil {
		return "", err
	}

	then, terr := g.genBlockString(x.Then)
	if terr != nil {
		return "", terr
	}

	els, eerr := g.genBlockString(x.Else)
	if eerr != nil {
		return "", eerr
	}

	return "if " + cond + " " + then + " else " + els, nil
}

// genMatchHead renders a match scrutinee; Text scrutinees are matched
// as borrowed string slices.
func (g *Generator) genMatchHead(w *ir.When) (string, *Error) {
	s, err := g.genExpr(w.Scrutinee)
	if err != nil {
		return "", err
	}

	if w.Scrutinee.Type() == typesys.Text {
		return s + ".as_str()", nil
	}

	return s, nil
}

func (g *Generator) genArmPattern(arm ir.WhenArm) (string, *Error) {
	pats := make([]string, len(arm.Patterns))

	for i, p := range arm.Patterns {
		s, err := g.genPattern(p)
		if err != nil {
			return "", err
		}

		pats[i] = s
	}

	out := strings.Join(pats, " | ")

	if arm.Guard != nil {
		guard, err := g.genExpr(arm.Guard)
		if err != nil {
			return "", err
		}

		out += " if " + guard
	}

	return out, nil
}

func (g *Generator) genPattern(p ir.Pattern) (string, *Error) {
	switch pat := p.(type) {
	case *ir.WildcardPat:
		return "_", nil

	case *ir.BindingPat:
		return pat.Name, nil

	case *ir.LiteralPat:
		return g.genPatternLiteral(pat.Value)

	case *ir.RangePat:
		lo, err := g.genExpr(pat.Lo)
		if err != nil {
			return "", err
		}

		hi, herr := g.genExpr(pat.Hi)
		if herr != nil {
			return "", herr
		}

		op := ".."
		if pat.Inclusive {
			op = "..="
		}

		return lo + op + hi, nil

	case *ir.EnumVariantPat:
		if len(pat.Bindings) > 0 {
			return pat.EnumName + "::" + pat.Variant + "(" + strings.Join(pat.Bindings, ", ") + ")", nil
		}

		if len(pat.Fields) > 0 {
			return pat.EnumName + "::" + pat.Variant + "(..)", nil
		}

		return pat.EnumName + "::" + pat.Variant, nil

	default:
		return "", newError("codegen: unhandled pattern %T", p)
	}
}

// genPatternLiteral renders a literal in pattern position, where
// strings stay borrowed and negated literals fuse.
func (g *Generator) genPatternLiteral(e ir.Expr) (string, *Error) {
	switch lit := e.(type) {
	case *ir.IntLit:
		return strconv.FormatInt(lit.Value, 10), nil
	case *ir.FloatLit:
		return floatText(lit.Value), nil
	case *ir.BoolLit:
		return strconv.FormatBool(lit.Value), nil
	case *ir.TextLit:
		return strconv.Quote(lit.Value), nil
	case *ir.Unary:
		inner, err := g.genPatternLiteral(lit.Operand)
		if err != nil {
			return "", err
		}

		return "-" + inner, nil
	default:
		return "", newError("codegen: unsupported literal pattern %T", e)
	}
}

// genWhenExpr renders a match in value position.
func (g *Generator) genWhenExpr(w *ir.When) (string, *Error) {
	head, err := g.genMatchHead(w)
	if err != nil {
		return "", err
	}

	sub := &Generator{reg: g.reg, opts: g.opts, indent: g.indent + 1}

	for _, arm := range w.Arms {
		pat, perr := sub.genArmPattern(arm)
		if perr != nil {
			return "", perr
		}

		body, berr := sub.genExpr(arm.Body)
		if berr != nil {
			return "", berr
		}

		sub.line("%s => %s,", pat, body)
	}

	return "match " + head + " {\n" + sub.sb.String() + strings.Repeat("    ", g.indent) + "}", nil
}

// genLoopExpr emits the result-variable pattern: a block that
// declares the result local, runs the loop (whose valued breaks
// assign it), and yields the unwrapped result.
func (g *Generator) genLoopExpr(x *ir.LoopExpr) (string, *Error) {
	sub := &Generator{reg: g.reg, opts: g.opts, indent: g.indent + 1}

	if x.Typ == typesys.Unit {
		// No valued break assigns the result, so the local needs an
		// explicit type and the block yields plain unit.
		sub.line("let mut %s: Option<()> = None;", x.ResultVar)
	} else {
		sub.line("let mut %s = None;", x.ResultVar)
	}

	var loopStmt ir.Stmt

	switch x.Kind {
	case ir.LoopExprWhile:
		loopStmt = &ir.While{Label: x.Label, Cond: x.Cond, Body: x.Body, Sp: x.Sp}
	case ir.LoopExprFor:
		loopStmt = &ir.For{Label: x.Label, Var: x.Var, Lo: x.Lo, Hi: x.Hi, Inclusive: x.Inclusive, Body: x.Body, Sp: x.Sp}
	default:
		loopStmt = &ir.Loop{Label: x.Label, Body: x.Body, Sp: x.Sp}
	}

	if err := sub.emitStmt(loopStmt); err != nil {
		return "", err
	}

	if x.Typ != typesys.Unit {
		sub.line("%s.unwrap()", x.ResultVar)
	} else {
		sub.line("let _ = %s;", x.ResultVar)
	}

	return "{\n" + sub.sb.String() + strings.Repeat("    ", g.indent) + "}", nil
}
