// SPDX-FileCopyrightText: © 2021 The dyml authors <https://github.com/golangee/dyml/blob/main/AUTHORS>
// SPDX-License-Identifier: Apache-2.0

package semantic

import (
	"github.com/rive-lang/rivec/ast"
	"github.com/rive-lang/rivec/typesys"
)

// noExpectation is the sentinel for "no context type"; collection
// literals use the expected type to decide between Array and List.
const noExpectation = ^typesys.ID(0)

func (a *Analyzer) isOptional(id typesys.ID) bool {
	m, ok := a.reg.Get(id)
	return ok && m.Kind.Tag == typesys.KOptional
}

func (a *Analyzer) optionalInner(id typesys.ID) (typesys.ID, bool) {
	m, ok := a.reg.Get(id)
	if !ok || m.Kind.Tag != typesys.KOptional {
		return 0, false
	}

	return m.Kind.Elem, true
}

func isNumeric(id typesys.ID) bool {
	return id == typesys.Int || id == typesys.Float
}

// inferExprCtx infers the type of e and validates it along the way.
// expected is the type the surrounding context wants (or
// noExpectation); it never relaxes a check, it only steers the typing
// of literals that are ambiguous on their own.
func (a *Analyzer) inferExprCtx(e ast.Expr, expected typesys.ID) (typesys.ID, *Error) {
	switch x := e.(type) {
	case *ast.IntLit:
		return typesys.Int, nil

	case *ast.FloatLit:
		return typesys.Float, nil

	case *ast.BoolLit:
		return typesys.Bool, nil

	case *ast.NullLit:
		return typesys.Null, nil

	case *ast.StringLit:
		for _, sub := range x.Exprs {
			if _, err := a.inferExprCtx(sub, noExpectation); err != nil {
				return 0, err
			}
		}

		return typesys.Text, nil

	case *ast.Ident:
		sym, ok := a.scopes.lookup(x.Name)
		if !ok {
			return a.inferFunctionRef(x)
		}

		return sym.typ, nil

	case *ast.Binary:
		return a.inferBinary(x)

	case *ast.Unary:
		return a.inferUnary(x)

	case *ast.Elvis:
		return a.inferElvis(x)

	case *ast.Call:
		return a.inferCall(x)

	case *ast.MethodCall:
		return a.inferMethodCall(x)

	case *ast.FieldAccess:
		return a.inferFieldAccess(x)

	case *ast.Index:
		return a.inferIndex(x)

	case *ast.ArrayLit:
		return a.inferArrayLit(x, expected)

	case *ast.TupleLit:
		return a.inferTupleLit(x)

	case *ast.DictLit:
		return a.inferDictLit(x, expected)

	case *ast.StructConstruct:
		return a.inferStructConstruct(x)

	case *ast.EnumConstruct:
		return a.inferEnumConstruct(x)

	case *ast.If:
		var out typesys.ID

		if err := a.checkIf(x, true, &out); err != nil {
			return 0, err
		}

		return out, nil

	case *ast.When:
		return a.checkWhen(x, true)

	case *ast.Loop:
		return a.checkLoop(x)

	case *ast.Block:
		return a.blockValueType(x)

	case *ast.Print:
		if _, err := a.inferExprCtx(x.Arg, noExpectation); err != nil {
			return 0, err
		}

		return typesys.Unit, nil

	default:
		return 0, newError(e.Span(), "unhandled expression")
	}
}

// inferFunctionRef types a bare reference to a function name as a
// function value.
func (a *Analyzer) inferFunctionRef(x *ast.Ident) (typesys.ID, *Error) {
	sig, ok := a.funcs[x.Name]
	if !ok {
		return 0, newError(x.Sp, "undefined variable %q", x.Name)
	}

	params := make([]typesys.ID, len(sig.params))
	for i, p := range sig.params {
		params[i] = p.typ
	}

	return a.reg.CreateFunction(params, sig.ret), nil
}

func (a *Analyzer) inferBinary(x *ast.Binary) (typesys.ID, *Error) {
	if x.Op == ast.RangeExcl || x.Op == ast.RangeIncl {
		return 0, newError(x.Sp, "range expressions are only valid as the iterable of a for loop")
	}

	left, err := a.inferExprCtx(x.Left, noExpectation)
	if err != nil {
		return 0, err
	}

	right, rerr := a.inferExprCtx(x.Right, noExpectation)
	if rerr != nil {
		return 0, rerr
	}

	switch x.Op {
	case ast.Add:
		if left == typesys.Text && right == typesys.Text {
			return typesys.Text, nil
		}

		fallthrough

	case ast.Sub, ast.Mul, ast.Div, ast.Mod:
		if !isNumeric(left) || !isNumeric(right) || left != right {
			return 0, newError(x.Sp, "arithmetic requires two Int or two Float operands, found %s and %s",
				a.reg.TypeName(left), a.reg.TypeName(right))
		}

		return left, nil

	case ast.Eq, ast.NotEq:
		if !a.reg.AreCompatible(left, right) && !a.reg.AreCompatible(right, left) {
			return 0, newError(x.Sp, "cannot compare %s with %s", a.reg.TypeName(left), a.reg.TypeName(right))
		}

		return typesys.Bool, nil

	case ast.Lt, ast.LtEq, ast.Gt, ast.GtEq:
		if !isNumeric(left) || !isNumeric(right) || left != right {
			return 0, newError(x.Sp, "ordering requires two Int or two Float operands, found %s and %s",
				a.reg.TypeName(left), a.reg.TypeName(right))
		}

		return typesys.Bool, nil

	case ast.And, ast.Or:
		if left != typesys.Bool || right != typesys.Bool {
			return 0, newError(x.Sp, "logical operators require Bool operands, found %s and %s",
				a.reg.TypeName(left), a.reg.TypeName(right))
		}

		return typesys.Bool, nil

	default:
		return 0, newError(x.Sp, "unhandled binary operator")
	}
}

func (a *Analyzer) inferUnary(x *ast.Unary) (typesys.ID, *Error) {
	operand, err := a.inferExprCtx(x.Operand, noExpectation)
	if err != nil {
		return 0, err
	}

	switch x.Op {
	case ast.Neg:
		if !isNumeric(operand) {
			return 0, newError(x.Sp, "unary '-' requires Int or Float, found %s", a.reg.TypeName(operand))
		}

		return operand, nil

	default: // ast.Not
		if operand != typesys.Bool {
			return 0, newError(x.Sp, "unary '!' requires Bool, found %s", a.reg.TypeName(operand))
		}

		return typesys.Bool, nil
	}
}

// inferElvis applies the narrowing rules: `v ?: f` with v:T? yields T
// when f:T and T? when f:T?; `null ?: f` yields f's type.
func (a *Analyzer) inferElvis(x *ast.Elvis) (typesys.ID, *Error) {
	left, err := a.inferExprCtx(x.Left, noExpectation)
	if err != nil {
		return 0, err
	}

	right, rerr := a.inferExprCtx(x.Right, noExpectation)
	if rerr != nil {
		return 0, rerr
	}

	if left == typesys.Null {
		return right, nil
	}

	inner, ok := a.optionalInner(left)
	if !ok {
		return 0, newError(x.Left.Span(), "left side of '?:' must be nullable, found %s", a.reg.TypeName(left))
	}

	if a.isOptional(right) {
		if !a.reg.AreCompatible(right, left) {
			return 0, newError(x.Sp, "'?:' fallback type %s does not match %s",
				a.reg.TypeName(right), a.reg.TypeName(left))
		}

		return right, nil
	}

	if !a.reg.AreCompatible(inner, right) {
		return 0, newError(x.Sp, "'?:' fallback type %s does not match %s",
			a.reg.TypeName(right), a.reg.TypeName(inner))
	}

	return inner, nil
}

// inferCall checks a free-function call, reordering named arguments
// onto the declared parameters before checking compatibility.
func (a *Analyzer) inferCall(x *ast.Call) (typesys.ID, *Error) {
	sig, ok := a.funcs[x.Callee]
	if !ok {
		return 0, newError(x.Sp, "undefined function %q", x.Callee)
	}

	ordered, err := a.orderArguments(x, sig)
	if err != nil {
		return 0, err
	}

	for i, arg := range ordered {
		argType, aerr := a.inferExprCtx(arg, sig.params[i].typ)
		if aerr != nil {
			return 0, aerr
		}

		if !a.reg.AreCompatible(sig.params[i].typ, argType) {
			return 0, newError(arg.Span(), "argument %d of %q: cannot pass %s as %s",
				i+1, x.Callee, a.reg.TypeName(argType), a.reg.TypeName(sig.params[i].typ))
		}
	}

	return sig.ret, nil
}

// orderArguments maps a call's positional and named arguments onto a
// signature's parameters, in declaration order.
func (a *Analyzer) orderArguments(x *ast.Call, sig funcSig) ([]ast.Expr, *Error) {
	if len(x.Args) != len(sig.params) {
		return nil, newError(x.Sp, "%q expects %d arguments, found %d", x.Callee, len(sig.params), len(x.Args))
	}

	ordered := make([]ast.Expr, len(sig.params))

	pos := 0

	for _, arg := range x.Args {
		if arg.Name == "" {
			if pos >= len(sig.params) || ordered[pos] != nil {
				return nil, newError(arg.Value.Span(), "positional argument after named arguments")
			}

			ordered[pos] = arg.Value
			pos++

			continue
		}

		idx := -1

		for i, p := range sig.params {
			if p.name == arg.Name {
				idx = i
				break
			}
		}

		if idx < 0 {
			return nil, newError(arg.Value.Span(), "%q has no parameter named %q", x.Callee, arg.Name)
		}

		if ordered[idx] != nil {
			return nil, newError(arg.Value.Span(), "parameter %q specified more than once", arg.Name)
		}

		ordered[idx] = arg.Value
	}

	for i, o := range ordered {
		if o == nil {
			return nil, newError(x.Sp, "missing argument for parameter %q of %q", sig.params[i].name, x.Callee)
		}
	}

	return ordered, nil
}

func (a *Analyzer) inferMethodCall(x *ast.MethodCall) (typesys.ID, *Error) {
	recvType, err := a.inferExprCtx(x.Receiver, noExpectation)
	if err != nil {
		return 0, err
	}

	if x.Safe {
		inner, ok := a.optionalInner(recvType)
		if !ok {
			return 0, newError(x.Receiver.Span(), "'?.' requires a nullable receiver, found %s", a.reg.TypeName(recvType))
		}

		result, merr := a.methodResult(x, inner)
		if merr != nil {
			return 0, merr
		}

		if a.isOptional(result) {
			return result, nil
		}

		return a.reg.CreateOptional(result), nil
	}

	return a.methodResult(x, recvType)
}

// methodResult resolves a method call against a non-optional receiver
// type: built-in methods through the registry (with the List.get /
// Map.get nullable special case), user-type methods through the impl
// table.
func (a *Analyzer) methodResult(x *ast.MethodCall, recvType typesys.ID) (typesys.ID, *Error) {
	meta, ok := a.reg.Get(recvType)
	if !ok {
		return 0, newError(x.Sp, "unknown receiver type")
	}

	if meta.Kind.IsUserDefined() {
		return a.inferUserMethod(x, meta)
	}

	sig, found := a.reg.GetMethod(recvType, x.Method)
	if !found {
		return 0, newError(x.Sp, "%s has no method %q", a.reg.TypeName(recvType), x.Method)
	}

	if len(x.Args) != len(sig.Parameters) {
		return 0, newError(x.Sp, "%q expects %d arguments, found %d", x.Method, len(sig.Parameters), len(x.Args))
	}

	for i, arg := range x.Args {
		if arg.Name != "" {
			return 0, newError(arg.Value.Span(), "built-in methods take positional arguments only")
		}

		argType, aerr := a.inferExprCtx(arg.Value, sig.Parameters[i])
		if aerr != nil {
			return 0, aerr
		}

		if !a.reg.AreCompatible(sig.Parameters[i], argType) {
			return 0, newError(arg.Value.Span(), "argument %d of %q: cannot pass %s as %s",
				i+1, x.Method, a.reg.TypeName(argType), a.reg.TypeName(sig.Parameters[i]))
		}
	}

	// List.get and Map.get surface as nullable lookups; Map.keys and
	// Map.values surface as lists of the registry's element result.
	if x.Method == "get" && (meta.Kind.Tag == typesys.KList || meta.Kind.Tag == typesys.KMap) {
		return a.reg.CreateOptional(sig.ReturnType), nil
	}

	if (x.Method == "keys" || x.Method == "values") && meta.Kind.Tag == typesys.KMap {
		return a.reg.CreateList(sig.ReturnType), nil
	}

	return sig.ReturnType, nil
}

func (a *Analyzer) inferUserMethod(x *ast.MethodCall, meta typesys.Metadata) (typesys.ID, *Error) {
	name := instanceMethodName(meta.Kind.Name, x.Method)

	sig, ok := a.funcs[name]
	if !ok {
		return 0, newError(x.Sp, "%s has no method %q", meta.Kind.Name, x.Method)
	}

	// The receiver occupies the first parameter slot.
	if len(x.Args) != len(sig.params)-1 {
		return 0, newError(x.Sp, "%q expects %d arguments, found %d", x.Method, len(sig.params)-1, len(x.Args))
	}

	for i, arg := range x.Args {
		want := sig.params[i+1].typ

		argType, aerr := a.inferExprCtx(arg.Value, want)
		if aerr != nil {
			return 0, aerr
		}

		if !a.reg.AreCompatible(want, argType) {
			return 0, newError(arg.Value.Span(), "argument %d of %q: cannot pass %s as %s",
				i+1, x.Method, a.reg.TypeName(argType), a.reg.TypeName(want))
		}
	}

	return sig.ret, nil
}

func (a *Analyzer) inferFieldAccess(x *ast.FieldAccess) (typesys.ID, *Error) {
	recvType, err := a.inferExprCtx(x.Receiver, noExpectation)
	if err != nil {
		return 0, err
	}

	target := recvType

	if x.Safe {
		inner, ok := a.optionalInner(recvType)
		if !ok {
			return 0, newError(x.Receiver.Span(), "'?.' requires a nullable receiver, found %s", a.reg.TypeName(recvType))
		}

		target = inner
	}

	fieldType, ferr := a.structFieldType(target, x)
	if ferr != nil {
		return 0, ferr
	}

	if x.Safe && !a.isOptional(fieldType) {
		return a.reg.CreateOptional(fieldType), nil
	}

	return fieldType, nil
}

func (a *Analyzer) structFieldType(target typesys.ID, x *ast.FieldAccess) (typesys.ID, *Error) {
	meta, ok := a.reg.Get(target)
	if !ok || meta.Kind.Tag != typesys.KStruct {
		return 0, newError(x.Sp, "%s has no fields", a.reg.TypeName(target))
	}

	for _, f := range meta.Kind.Fields {
		if f.Name == x.Field {
			return f.Type, nil
		}
	}

	return 0, newError(x.Sp, "%s has no field %q", meta.Kind.Name, x.Field)
}

func (a *Analyzer) inferIndex(x *ast.Index) (typesys.ID, *Error) {
	recvType, err := a.inferExprCtx(x.Receiver, noExpectation)
	if err != nil {
		return 0, err
	}

	idxType, ierr := a.inferExprCtx(x.Index, typesys.Int)
	if ierr != nil {
		return 0, ierr
	}

	if idxType != typesys.Int {
		return 0, newError(x.Index.Span(), "index must be Int, found %s", a.reg.TypeName(idxType))
	}

	meta, ok := a.reg.Get(recvType)
	if !ok || (meta.Kind.Tag != typesys.KArray && meta.Kind.Tag != typesys.KList) {
		return 0, newError(x.Sp, "%s cannot be indexed", a.reg.TypeName(recvType))
	}

	return meta.Kind.Elem, nil
}

// inferArrayLit types `[...]` as a fixed-size array unless the
// context expects a List.
func (a *Analyzer) inferArrayLit(x *ast.ArrayLit, expected typesys.ID) (typesys.ID, *Error) {
	var wantElem typesys.ID

	asList := false

	hasWant := false

	if expected != noExpectation {
		if m, ok := a.reg.Get(expected); ok {
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

	if len(x.Elements) == 0 {
		if !hasWant {
			return 0, newError(x.Sp, "cannot infer the element type of an empty collection; annotate the declaration")
		}

		if asList {
			return a.reg.CreateList(wantElem), nil
		}

		return a.reg.CreateArray(wantElem, 0), nil
	}

	elemExpected := noExpectation
	if hasWant {
		elemExpected = wantElem
	}

	first, err := a.inferExprCtx(x.Elements[0], elemExpected)
	if err != nil {
		return 0, err
	}

	for _, e := range x.Elements[1:] {
		t, eerr := a.inferExprCtx(e, first)
		if eerr != nil {
			return 0, eerr
		}

		if t != first && !a.reg.AreCompatible(first, t) {
			return 0, newError(e.Span(), "collection elements must share a type: %s vs %s",
				a.reg.TypeName(first), a.reg.TypeName(t))
		}
	}

	if hasWant {
		first = wantElem
	}

	if asList {
		return a.reg.CreateList(first), nil
	}

	return a.reg.CreateArray(first, len(x.Elements)), nil
}

func (a *Analyzer) inferTupleLit(x *ast.TupleLit) (typesys.ID, *Error) {
	if len(x.Elements) == 0 {
		return typesys.Unit, nil
	}

	elems := make([]typesys.ID, len(x.Elements))

	for i, e := range x.Elements {
		t, err := a.inferExprCtx(e, noExpectation)
		if err != nil {
			return 0, err
		}

		elems[i] = t
	}

	return a.reg.CreateTuple(elems), nil
}

func (a *Analyzer) inferDictLit(x *ast.DictLit, expected typesys.ID) (typesys.ID, *Error) {
	var wantVal typesys.ID

	hasWant := false

	if expected != noExpectation {
		if m, ok := a.reg.Get(expected); ok && m.Kind.Tag == typesys.KMap {
			wantVal = m.Kind.Val
			hasWant = true
		}
	}

	if len(x.Entries) == 0 {
		if !hasWant {
			return 0, newError(x.Sp, "cannot infer the value type of an empty dict; annotate the declaration")
		}

		return a.reg.CreateMap(typesys.Text, wantVal), nil
	}

	valExpected := noExpectation
	if hasWant {
		valExpected = wantVal
	}

	first, err := a.inferExprCtx(x.Entries[0].Value, valExpected)
	if err != nil {
		return 0, err
	}

	for _, entry := range x.Entries[1:] {
		t, eerr := a.inferExprCtx(entry.Value, first)
		if eerr != nil {
			return 0, eerr
		}

		if t != first && !a.reg.AreCompatible(first, t) {
			return 0, newError(entry.Value.Span(), "dict values must share a type: %s vs %s",
				a.reg.TypeName(first), a.reg.TypeName(t))
		}
	}

	if hasWant {
		first = wantVal
	}

	return a.reg.CreateMap(typesys.Text, first), nil
}

func (a *Analyzer) inferStructConstruct(x *ast.StructConstruct) (typesys.ID, *Error) {
	id, ok := a.reg.GetByName(x.TypeName)
	if !ok {
		return 0, newError(x.Sp, "unknown type %q", x.TypeName)
	}

	meta := a.reg.MustGet(id)
	if meta.Kind.Tag != typesys.KStruct {
		return 0, newError(x.Sp, "%q is not a struct type", x.TypeName)
	}

	fields := meta.Kind.Fields

	if len(x.Fields) != len(fields) {
		return 0, newError(x.Sp, "%s has %d fields, found %d initializers", x.TypeName, len(fields), len(x.Fields))
	}

	seen := make(map[string]bool, len(fields))

	for i, init := range x.Fields {
		var decl typesys.StructField

		if init.Name == "" {
			decl = fields[i]
		} else {
			found := false

			for _, f := range fields {
				if f.Name == init.Name {
					decl = f
					found = true

					break
				}
			}

			if !found {
				return 0, newError(init.Value.Span(), "%s has no field %q", x.TypeName, init.Name)
			}
		}

		if seen[decl.Name] {
			return 0, newError(init.Value.Span(), "field %q initialized more than once", decl.Name)
		}

		seen[decl.Name] = true

		argType, err := a.inferExprCtx(init.Value, decl.Type)
		if err != nil {
			return 0, err
		}

		if !a.reg.AreCompatible(decl.Type, argType) {
			return 0, newError(init.Value.Span(), "field %q of %s: cannot assign %s to %s",
				decl.Name, x.TypeName, a.reg.TypeName(argType), a.reg.TypeName(decl.Type))
		}
	}

	return id, nil
}

func (a *Analyzer) inferEnumConstruct(x *ast.EnumConstruct) (typesys.ID, *Error) {
	id, ok := a.reg.GetByName(x.EnumName)
	if !ok {
		return 0, newError(x.Sp, "unknown enum %q", x.EnumName)
	}

	meta := a.reg.MustGet(id)
	if meta.Kind.Tag != typesys.KEnum {
		return 0, newError(x.Sp, "%q is not an enum type", x.EnumName)
	}

	variant, found := findVariant(meta.Kind.Variants, x.Variant)
	if !found {
		return 0, newError(x.Sp, "enum %s has no variant %q", x.EnumName, x.Variant)
	}

	if len(x.Args) != len(variant.Fields) {
		return 0, newError(x.Sp, "variant %s.%s has %d fields, found %d arguments",
			x.EnumName, x.Variant, len(variant.Fields), len(x.Args))
	}

	for i, arg := range x.Args {
		argType, err := a.inferExprCtx(arg, variant.Fields[i])
		if err != nil {
			return 0, err
		}

		if !a.reg.AreCompatible(variant.Fields[i], argType) {
			return 0, newError(arg.Span(), "field %d of %s.%s: cannot pass %s as %s",
				i+1, x.EnumName, x.Variant, a.reg.TypeName(argType), a.reg.TypeName(variant.Fields[i]))
		}
	}

	return id, nil
}

func findVariant(variants []typesys.EnumVariant, name string) (typesys.EnumVariant, bool) {
	for _, v := range variants {
		if v.Name == name {
			return v, true
		}
	}

	return typesys.EnumVariant{}, false
}

// blockValueType checks a block used as an expression and returns its
// value type: the type of a trailing value-producing expression
// statement, or Unit. Calls, if, and when in tail position are
// statement-like and do not become the block's value.
func (a *Analyzer) blockValueType(b *ast.Block) (typesys.ID, *Error) {
	a.scopes.push()
	defer a.scopes.pop()

	for i, s := range b.Statements {
		if i == len(b.Statements)-1 {
			if es, ok := s.(*ast.ExprStmt); ok && TailIsValue(es.X) {
				return a.inferExprCtx(es.X, noExpectation)
			}
		}

		if err := a.checkStmt(s); err != nil {
			return 0, err
		}
	}

	return typesys.Unit, nil
}

// TailIsValue reports whether an expression in a block's tail
// position supplies the block's value. Calls, if, when, and print are
// statement-like there; everything else counts.
func TailIsValue(x ast.Expr) bool {
	switch x.(type) {
	case *ast.Call, *ast.MethodCall, *ast.If, *ast.When, *ast.Print:
		return false
	default:
		return true
	}
}
