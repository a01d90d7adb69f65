// SPDX-FileCopyrightText: © 2021 The dyml authors <https://github.com/golangee/dyml/blob/main/AUTHORS>
// SPDX-License-Identifier: Apache-2.0

package lower

import (
	"github.com/rive-lang/rivec/ast"
	"github.com/rive-lang/rivec/ir"
	"github.com/rive-lang/rivec/typesys"
)

func (l *Lowerer) isOptional(id typesys.ID) bool {
	m, ok := l.reg.Get(id)
	return ok && m.Kind.Tag == typesys.KOptional
}

func (l *Lowerer) optionalInner(id typesys.ID) (typesys.ID, bool) {
	m, ok := l.reg.Get(id)
	if !ok || m.Kind.Tag != typesys.KOptional {
		return 0, false
	}

	return m.Kind.Elem, true
}

// lowerExprCtx lowers an expression, using the expected sink type (or
// noExpectation) to steer collection literals and null.
func (l *Lowerer) lowerExprCtx(e ast.Expr, expected typesys.ID) (ir.Expr, *Error) {
	switch x := e.(type) {
	case *ast.IntLit:
		return &ir.IntLit{Value: x.Value, Sp: x.Sp}, nil

	case *ast.FloatLit:
		return &ir.FloatLit{Value: x.Value, Sp: x.Sp}, nil

	case *ast.BoolLit:
		return &ir.BoolLit{Value: x.Value, Sp: x.Sp}, nil

	case *ast.NullLit:
		typ := typesys.ID(typesys.Null)
		if expected != noExpectation && l.isOptional(expected) {
			typ = expected
		}

		return &ir.NullLit{Typ: typ, Sp: x.Sp}, nil

	case *ast.StringLit:
		return l.lowerStringLit(x)

	case *ast.Ident:
		return l.lowerIdent(x)

	case *ast.Binary:
		return l.lowerBinary(x)

	case *ast.Unary:
		return l.lowerUnary(x)

	case *ast.Elvis:
		return l.lowerElvis(x)

	case *ast.Call:
		return l.lowerCall(x)

	case *ast.MethodCall:
		return l.lowerMethodCall(x)

	case *ast.FieldAccess:
		return l.lowerFieldAccess(x)

	case *ast.Index:
		return l.lowerIndex(x)

	case *ast.ArrayLit:
		return l.lowerArrayLit(x, expected)

	case *ast.TupleLit:
		return l.lowerTupleLit(x)

	case *ast.DictLit:
		return l.lowerDictLit(x, expected)

	case *ast.StructConstruct:
		return l.lowerStructConstruct(x)

	case *ast.EnumConstruct:
		return l.lowerEnumConstruct(x)

	case *ast.If:
		return l.lowerIfExpr(x)

	case *ast.When:
		return l.lowerWhen(x, true)

	case *ast.Loop:
		return l.lowerLoopExpr(x)

	case *ast.Block:
		b, err := l.lowerBlock(x)
		if err != nil {
			return nil, err
		}

		return &ir.BlockExpr{Block: b, Typ: blockType(b), Sp: x.Sp}, nil

	case *ast.Print:
		// print in value position (a when-arm body, a block tail)
		// becomes a Unit-valued block around the print statement.
		arg, err := l.lowerExprCtx(x.Arg, noExpectation)
		if err != nil {
			return nil, err
		}

		b := &ir.Block{Statements: []ir.Stmt{&ir.Print{Arg: arg, Sp: x.Sp}}, Sp: x.Sp}

		return &ir.BlockExpr{Block: b, Typ: typesys.Unit, Sp: x.Sp}, nil

	default:
		return nil, newError(e.Span(), "unhandled expression reached lowering")
	}
}

// lowerStringLit reduces interpolation to a left-associative chain of
// Text concatenations; the emitter turns Text `+` into formatted
// concatenation, which also stringifies non-Text operands.
func (l *Lowerer) lowerStringLit(x *ast.StringLit) (ir.Expr, *Error) {
	var out ir.Expr = &ir.TextLit{Value: x.Parts[0], Sp: x.Sp}

	for i, sub := range x.Exprs {
		e, err := l.lowerExprCtx(sub, noExpectation)
		if err != nil {
			return nil, err
		}

		out = &ir.Binary{Op: ir.Add, Left: out, Right: e, Typ: typesys.Text, Sp: x.Sp}

		if part := x.Parts[i+1]; part != "" {
			out = &ir.Binary{
				Op:    ir.Add,
				Left:  out,
				Right: &ir.TextLit{Value: part, Sp: x.Sp},
				Typ:   typesys.Text,
				Sp:    x.Sp,
			}
		}
	}

	return out, nil
}

func (l *Lowerer) lowerIdent(x *ast.Ident) (ir.Expr, *Error) {
	if sym, ok := l.lookup(x.Name); ok {
		name := x.Name
		if sym.rename != "" {
			name = sym.rename
		}

		return &ir.VarRef{Name: name, Typ: sym.typ, Sp: x.Sp}, nil
	}

	sig, ok := l.funcs[x.Name]
	if !ok {
		return nil, newError(x.Sp, "undefined name %q reached lowering", x.Name)
	}

	params := make([]typesys.ID, len(sig.params))
	for i, p := range sig.params {
		params[i] = p.Type
	}

	return &ir.VarRef{Name: x.Name, Typ: l.reg.CreateFunction(params, sig.ret), Sp: x.Sp}, nil
}

var binOps = map[ast.BinaryOp]ir.BinOp{
	ast.Add:   ir.Add,
	ast.Sub:   ir.Sub,
	ast.Mul:   ir.Mul,
	ast.Div:   ir.Div,
	ast.Mod:   ir.Mod,
	ast.Eq:    ir.Eq,
	ast.NotEq: ir.NotEq,
	ast.Lt:    ir.Lt,
	ast.LtEq:  ir.LtEq,
	ast.Gt:    ir.Gt,
	ast.GtEq:  ir.GtEq,
	ast.And:   ir.And,
	ast.Or:    ir.Or,
}

func (l *Lowerer) lowerBinary(x *ast.Binary) (ir.Expr, *Error) {
	op, ok := binOps[x.Op]
	if !ok {
		return nil, newError(x.Sp, "range expression outside of a for loop reached lowering")
	}

	left, err := l.lowerExprCtx(x.Left, noExpectation)
	if err != nil {
		return nil, err
	}

	right, rerr := l.lowerExprCtx(x.Right, noExpectation)
	if rerr != nil {
		return nil, rerr
	}

	var typ typesys.ID

	switch op {
	case ir.Add, ir.Sub, ir.Mul, ir.Div, ir.Mod:
		typ = left.Type()
	default:
		typ = typesys.Bool
	}

	return &ir.Binary{Op: op, Left: left, Right: right, Typ: typ, Sp: x.Sp}, nil
}

func (l *Lowerer) lowerUnary(x *ast.Unary) (ir.Expr, *Error) {
	operand, err := l.lowerExprCtx(x.Operand, noExpectation)
	if err != nil {
		return nil, err
	}

	op := ir.Neg
	if x.Op == ast.Not {
		op = ir.Not
	}

	return &ir.Unary{Op: op, Operand: operand, Typ: operand.Type(), Sp: x.Sp}, nil
}

// lowerElvis resolves the Elvis result type: T when the fallback is
// plain, T? when the fallback is itself optional, the fallback's type
// when the left side is a bare null.
func (l *Lowerer) lowerElvis(x *ast.Elvis) (ir.Expr, *Error) {
	left, err := l.lowerExprCtx(x.Left, noExpectation)
	if err != nil {
		return nil, err
	}

	right, rerr := l.lowerExprCtx(x.Right, noExpectation)
	if rerr != nil {
		return nil, rerr
	}

	var typ typesys.ID

	switch {
	case left.Type() == typesys.Null:
		typ = right.Type()
	case l.isOptional(right.Type()):
		typ = right.Type()
	default:
		inner, ok := l.optionalInner(left.Type())
		if !ok {
			return nil, newError(x.Left.Span(), "non-nullable left side of '?:' reached lowering")
		}

		typ = inner
	}

	return &ir.Elvis{Value: left, Fallback: right, Typ: typ, Sp: x.Sp}, nil
}

func (l *Lowerer) lowerCall(x *ast.Call) (ir.Expr, *Error) {
	sig, ok := l.funcs[x.Callee]
	if !ok {
		return nil, newError(x.Sp, "undefined function %q reached lowering", x.Callee)
	}

	ordered, err := l.orderArguments(x, sig)
	if err != nil {
		return nil, err
	}

	args := make([]ir.Expr, len(ordered))

	for i, arg := range ordered {
		e, aerr := l.lowerExprCtx(arg, sig.params[i].Type)
		if aerr != nil {
			return nil, aerr
		}

		args[i] = l.maybeWrap(e, sig.params[i].Type)
	}

	return &ir.Call{Callee: x.Callee, Args: args, Typ: sig.ret, Sp: x.Sp}, nil
}

func (l *Lowerer) orderArguments(x *ast.Call, sig funcSig) ([]ast.Expr, *Error) {
	if len(x.Args) != len(sig.params) {
		return nil, newError(x.Sp, "%q expects %d arguments, found %d", x.Callee, len(sig.params), len(x.Args))
	}

	ordered := make([]ast.Expr, len(sig.params))

	pos := 0

	for _, arg := range x.Args {
		if arg.Name == "" {
			ordered[pos] = arg.Value
			pos++

			continue
		}

		for i, p := range sig.params {
			if p.Name == arg.Name {
				ordered[i] = arg.Value
				break
			}
		}
	}

	for i, o := range ordered {
		if o == nil {
			return nil, newError(x.Sp, "missing argument for parameter %q of %q", sig.params[i].Name, x.Callee)
		}
	}

	return ordered, nil
}

func (l *Lowerer) lowerMethodCall(x *ast.MethodCall) (ir.Expr, *Error) {
	recv, err := l.lowerExprCtx(x.Receiver, noExpectation)
	if err != nil {
		return nil, err
	}

	target := recv.Type()

	if x.Safe {
		inner, ok := l.optionalInner(target)
		if !ok {
			return nil, newError(x.Receiver.Span(), "'?.' on a non-nullable receiver reached lowering")
		}

		target = inner
	}

	meta, ok := l.reg.Get(target)
	if !ok {
		return nil, newError(x.Sp, "unknown receiver type reached lowering")
	}

	if meta.Kind.IsUserDefined() {
		return l.lowerUserMethod(x, recv, meta)
	}

	return l.lowerBuiltinMethod(x, recv, target, meta)
}

// lowerBuiltinMethod dispatches through the registry's method table,
// with the List.get / Map.get results surfacing as Optional.
func (l *Lowerer) lowerBuiltinMethod(x *ast.MethodCall, recv ir.Expr, target typesys.ID, meta typesys.Metadata) (ir.Expr, *Error) {
	sig, found := l.reg.GetMethod(target, x.Method)
	if !found {
		return nil, newError(x.Sp, "%s has no method %q", l.reg.TypeName(target), x.Method)
	}

	args := make([]ir.Expr, len(x.Args))

	for i, arg := range x.Args {
		e, err := l.lowerExprCtx(arg.Value, sig.Parameters[i])
		if err != nil {
			return nil, err
		}

		args[i] = l.maybeWrap(e, sig.Parameters[i])
	}

	ret := sig.ReturnType

	if x.Method == "get" && (meta.Kind.Tag == typesys.KList || meta.Kind.Tag == typesys.KMap) {
		ret = l.reg.CreateOptional(ret)
	}

	if (x.Method == "keys" || x.Method == "values") && meta.Kind.Tag == typesys.KMap {
		ret = l.reg.CreateList(ret)
	}

	typ := ret

	flatten := false

	if x.Safe {
		if l.isOptional(ret) {
			flatten = true
		} else {
			typ = l.reg.CreateOptional(ret)
		}
	}

	return &ir.MethodCall{Receiver: recv, Method: x.Method, Args: args, Safe: x.Safe, Flatten: flatten, Typ: typ, Sp: x.Sp}, nil
}

// lowerUserMethod rewrites a call on a user-defined receiver into the
// TypeName_instance_methodName free function, receiver first. A safe
// call keeps the method-call shape so the emitter can thread the
// receiver through the optional.
func (l *Lowerer) lowerUserMethod(x *ast.MethodCall, recv ir.Expr, meta typesys.Metadata) (ir.Expr, *Error) {
	name := instanceMethodName(meta.Kind.Name, x.Method)

	sig, ok := l.funcs[name]
	if !ok {
		return nil, newError(x.Sp, "%s has no method %q", meta.Kind.Name, x.Method)
	}

	args := make([]ir.Expr, 0, len(x.Args)+1)

	if !x.Safe {
		args = append(args, recv)
	}

	for i, arg := range x.Args {
		want := sig.params[i+1].Type

		e, err := l.lowerExprCtx(arg.Value, want)
		if err != nil {
			return nil, err
		}

		args = append(args, l.maybeWrap(e, want))
	}

	if !x.Safe {
		return &ir.Call{Callee: name, Args: args, Typ: sig.ret, Sp: x.Sp}, nil
	}

	typ := sig.ret
	flatten := true

	if !l.isOptional(typ) {
		typ = l.reg.CreateOptional(typ)
		flatten = false
	}

	return &ir.MethodCall{Receiver: recv, Method: name, Args: args, Safe: true, Free: true, Flatten: flatten, Typ: typ, Sp: x.Sp}, nil
}

func (l *Lowerer) lowerFieldAccess(x *ast.FieldAccess) (ir.Expr, *Error) {
	recv, err := l.lowerExprCtx(x.Receiver, noExpectation)
	if err != nil {
		return nil, err
	}

	target := recv.Type()

	if x.Safe {
		inner, ok := l.optionalInner(target)
		if !ok {
			return nil, newError(x.Receiver.Span(), "'?.' on a non-nullable receiver reached lowering")
		}

		target = inner
	}

	meta, ok := l.reg.Get(target)
	if !ok || meta.Kind.Tag != typesys.KStruct {
		return nil, newError(x.Sp, "%s has no fields", l.reg.TypeName(target))
	}

	var fieldType typesys.ID

	found := false

	for _, f := range meta.Kind.Fields {
		if f.Name == x.Field {
			fieldType = f.Type
			found = true

			break
		}
	}

	if !found {
		return nil, newError(x.Sp, "%s has no field %q", meta.Kind.Name, x.Field)
	}

	typ := fieldType

	flatten := false

	if x.Safe {
		if l.isOptional(fieldType) {
			flatten = true
		} else {
			typ = l.reg.CreateOptional(fieldType)
		}
	}

	return &ir.FieldAccess{Receiver: recv, Field: x.Field, Safe: x.Safe, Flatten: flatten, Typ: typ, Sp: x.Sp}, nil
}

func (l *Lowerer) lowerIndex(x *ast.Index) (ir.Expr, *Error) {
	recv, err := l.lowerExprCtx(x.Receiver, noExpectation)
	if err != nil {
		return nil, err
	}

	idx, ierr := l.lowerExprCtx(x.Index, typesys.Int)
	if ierr != nil {
		return nil, ierr
	}

	meta, ok := l.reg.Get(recv.Type())
	if !ok || (meta.Kind.Tag != typesys.KArray && meta.Kind.Tag != typesys.KList) {
		return nil, newError(x.Sp, "%s cannot be indexed", l.reg.TypeName(recv.Type()))
	}

	return &ir.Index{Receiver: recv, Index: idx, Typ: meta.Kind.Elem, Sp: x.Sp}, nil
}

func (l *Lowerer) lowerArrayLit(x *ast.ArrayLit, expected typesys.ID) (ir.Expr, *Error) {
	var wantElem typesys.ID

	asList := false

	hasWant := false

	if expected != noExpectation {
		if m, ok := l.reg.Get(expected); ok {
			switch m.Kind.Tag {
			case typesys.KList:
				asList = true
				wantElem = m.Kind.Elem
				hasWant = true
			case typesys.KArray:
				wantElem = m.Kind.Elem
				hasWant = true
			}
		}
	}

	elemExpected := noExpectation
	if hasWant {
		elemExpected = wantElem
	}

	elems := make([]ir.Expr, len(x.Elements))

	for i, e := range x.Elements {
		low, err := l.lowerExprCtx(e, elemExpected)
		if err != nil {
			return nil, err
		}

		if hasWant {
			low = l.maybeWrap(low, wantElem)
		}

		elems[i] = low
	}

	elemType := wantElem

	if !hasWant {
		if len(elems) == 0 {
			return nil, newError(x.Sp, "empty collection literal without a declared type reached lowering")
		}

		elemType = elems[0].Type()
	}

	if asList {
		return &ir.ListLit{Elems: elems, Typ: l.reg.CreateList(elemType), Sp: x.Sp}, nil
	}

	return &ir.ArrayLit{Elems: elems, Typ: l.reg.CreateArray(elemType, len(elems)), Sp: x.Sp}, nil
}

func (l *Lowerer) lowerTupleLit(x *ast.TupleLit) (ir.Expr, *Error) {
	if len(x.Elements) == 0 {
		return &ir.UnitLit{Sp: x.Sp}, nil
	}

	elems := make([]ir.Expr, len(x.Elements))
	types := make([]typesys.ID, len(x.Elements))

	for i, e := range x.Elements {
		low, err := l.lowerExprCtx(e, noExpectation)
		if err != nil {
			return nil, err
		}

		elems[i] = low
		types[i] = low.Type()
	}

	return &ir.TupleLit{Elems: elems, Typ: l.reg.CreateTuple(types), Sp: x.Sp}, nil
}

func (l *Lowerer) lowerDictLit(x *ast.DictLit, expected typesys.ID) (ir.Expr, *Error) {
	var wantVal typesys.ID

	hasWant := false

	if expected != noExpectation {
		if m, ok := l.reg.Get(expected); ok && m.Kind.Tag == typesys.KMap {
			wantVal = m.Kind.Val
			hasWant = true
		}
	}

	valExpected := noExpectation
	if hasWant {
		valExpected = wantVal
	}

	entries := make([]ir.MapEntry, len(x.Entries))

	for i, entry := range x.Entries {
		key, err := l.lowerExprCtx(entry.Key, typesys.Text)
		if err != nil {
			return nil, err
		}

		value, verr := l.lowerExprCtx(entry.Value, valExpected)
		if verr != nil {
			return nil, verr
		}

		if hasWant {
			value = l.maybeWrap(value, wantVal)
		}

		entries[i] = ir.MapEntry{Key: key, Value: value}
	}

	valType := wantVal

	if !hasWant {
		if len(entries) == 0 {
			return nil, newError(x.Sp, "empty dict literal without a declared type reached lowering")
		}

		valType = entries[0].Value.Type()
	}

	return &ir.MapLit{Entries: entries, Typ: l.reg.CreateMap(typesys.Text, valType), Sp: x.Sp}, nil
}

// lowerStructConstruct reorders field initializers to declaration
// order and coerces each to its declared field type.
func (l *Lowerer) lowerStructConstruct(x *ast.StructConstruct) (ir.Expr, *Error) {
	id, ok := l.reg.GetByName(x.TypeName)
	if !ok {
		return nil, newError(x.Sp, "unknown struct %q reached lowering", x.TypeName)
	}

	meta := l.reg.MustGet(id)
	fields := meta.Kind.Fields

	byName := make(map[string]ast.Expr, len(x.Fields))

	var positional []ast.Expr

	for _, init := range x.Fields {
		if init.Name == "" {
			positional = append(positional, init.Value)
		} else {
			byName[init.Name] = init.Value
		}
	}

	inits := make([]ir.FieldInit, len(fields))

	pos := 0

	for i, f := range fields {
		var src ast.Expr

		if v, named := byName[f.Name]; named {
			src = v
		} else if pos < len(positional) {
			src = positional[pos]
			pos++
		} else {
			return nil, newError(x.Sp, "missing initializer for field %q of %s", f.Name, x.TypeName)
		}

		low, err := l.lowerExprCtx(src, f.Type)
		if err != nil {
			return nil, err
		}

		inits[i] = ir.FieldInit{Name: f.Name, Value: l.maybeWrap(low, f.Type)}
	}

	return &ir.StructLit{TypeName: x.TypeName, Fields: inits, Typ: id, Sp: x.Sp}, nil
}

func (l *Lowerer) lowerEnumConstruct(x *ast.EnumConstruct) (ir.Expr, *Error) {
	id, ok := l.reg.GetByName(x.EnumName)
	if !ok {
		return nil, newError(x.Sp, "unknown enum %q reached lowering", x.EnumName)
	}

	meta := l.reg.MustGet(id)

	var fields []typesys.ID

	found := false

	for _, v := range meta.Kind.Variants {
		if v.Name == x.Variant {
			fields = v.Fields
			found = true

			break
		}
	}

	if !found {
		return nil, newError(x.Sp, "enum %s has no variant %q", x.EnumName, x.Variant)
	}

	args := make([]ir.Expr, len(x.Args))

	for i, arg := range x.Args {
		low, err := l.lowerExprCtx(arg, fields[i])
		if err != nil {
			return nil, err
		}

		args[i] = l.maybeWrap(low, fields[i])
	}

	return &ir.EnumVariant{EnumName: x.EnumName, Variant: x.Variant, Args: args, Typ: id, Sp: x.Sp}, nil
}

func (l *Lowerer) lowerIfExpr(x *ast.If) (ir.Expr, *Error) {
	cond, err := l.lowerExprCtx(x.Cond, typesys.Bool)
	if err != nil {
		return nil, err
	}

	if x.Else == nil {
		return nil, newError(x.Sp, "if without else in value position reached lowering")
	}

	then, terr := l.lowerBlock(x.Then)
	if terr != nil {
		return nil, terr
	}

	els, eerr := l.lowerBlock(x.Else)
	if eerr != nil {
		return nil, eerr
	}

	return &ir.IfExpr{Cond: cond, Then: then, Else: els, Typ: blockType(then), Sp: x.Sp}, nil
}

// lowerLoopExpr lowers a loop in value position with the
// result-variable pattern: the loop carries the variable's name, and
// every valued break inside assigns it.
func (l *Lowerer) lowerLoopExpr(x *ast.Loop) (ir.Expr, *Error) {
	header, err := l.lowerLoopHeader(x)
	if err != nil {
		return nil, err
	}

	var resultVar string

	var kind ir.LoopExprKind

	switch x.Kind {
	case ast.LoopWhile:
		kind = ir.LoopExprWhile
		resultVar = "__while_result"
	case ast.LoopFor:
		kind = ir.LoopExprFor
		resultVar = "__for_result"
	default:
		kind = ir.LoopExprBare
		resultVar = "__loop_result"
	}

	frame := &loopFrame{label: labelOr(x.Label, l.freshLabel()), resultVar: resultVar, resultType: typesys.Unit}
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

	typ := typesys.ID(typesys.Unit)
	if frame.sawValue {
		typ = frame.resultType
	}

	return &ir.LoopExpr{
		Kind:      kind,
		Label:     label,
		Cond:      header.cond,
		Var:       x.VarName,
		Lo:        header.lo,
		Hi:        header.hi,
		Inclusive: x.Inclusive,
		Body:      body,
		ResultVar: resultVar,
		Typ:       typ,
		Sp:        x.Sp,
	}, nil
}
