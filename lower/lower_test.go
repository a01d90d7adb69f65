// SPDX-FileCopyrightText: © 2021 The dyml authors <https://github.com/golangee/dyml/blob/main/AUTHORS>
// SPDX-License-Identifier: Apache-2.0

package lower_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rive-lang/rivec/ir"
	"github.com/rive-lang/rivec/lower"
	"github.com/rive-lang/rivec/parser"
	"github.com/rive-lang/rivec/semantic"
	"github.com/rive-lang/rivec/typesys"
)

func lowerSource(t *testing.T, src string) *ir.Module {
	t.Helper()

	reg := typesys.NewRegistry()

	prog, perr := parser.Parse(src, reg)
	require.Nil(t, perr, "parse error: %v", perr)

	serr := semantic.Analyze(prog, reg)
	require.Nil(t, serr, "semantic error: %v", serr)

	mod, lerr := lower.Lower(prog, reg)
	require.Nil(t, lerr, "lowering error: %v", lerr)

	return mod
}

func fn(t *testing.T, mod *ir.Module, name string) *ir.Function {
	t.Helper()

	for _, f := range mod.Functions {
		if f.Name == name {
			return f
		}
	}

	t.Fatalf("function %q not in module", name)

	return nil
}

func TestLetCoercionInsertsWrapOptional(t *testing.T) {
	mod := lowerSource(t, `fun main() { let x: Int? = 5 }`)

	let := fn(t, mod, "main").Body.Statements[0].(*ir.Let)
	wrap, ok := let.Value.(*ir.WrapOptional)
	require.True(t, ok, "T flowing into T? materializes a WrapOptional")

	_, isInt := wrap.Value.(*ir.IntLit)
	assert.True(t, isInt)
}

func TestArgumentCoercionInsertsWrapOptional(t *testing.T) {
	mod := lowerSource(t, `fun f(x: Int?) { } fun main() { f(5) }`)

	call := fn(t, mod, "main").Body.Statements[0].(*ir.ExprStmt).X.(*ir.Call)
	_, ok := call.Args[0].(*ir.WrapOptional)
	assert.True(t, ok)
}

func TestReturnCoercionInsertsWrapOptional(t *testing.T) {
	mod := lowerSource(t, `fun f(): Int? { return 5 } fun main() { }`)

	ret := fn(t, mod, "f").Body.Statements[0].(*ir.Return)
	_, ok := ret.Value.(*ir.WrapOptional)
	assert.True(t, ok)
}

func TestAssignCoercionInsertsWrapOptional(t *testing.T) {
	mod := lowerSource(t, `fun main() { let mut x: Int? = null x = 7 }`)

	assign := fn(t, mod, "main").Body.Statements[1].(*ir.Assign)
	_, ok := assign.Value.(*ir.WrapOptional)
	assert.True(t, ok)
}

func TestNullLiteralRetypedNotWrapped(t *testing.T) {
	mod := lowerSource(t, `fun main() { let x: Int? = null }`)

	let := fn(t, mod, "main").Body.Statements[0].(*ir.Let)
	null, ok := let.Value.(*ir.NullLit)
	require.True(t, ok, "null is retyped to the sink, never wrapped in Some")
	assert.Equal(t, let.Type, null.Typ)
}

func TestElvisNarrowsToInt(t *testing.T) {
	mod := lowerSource(t, `fun main() { let x: Int? = null let y: Int = x ?: 42 }`)

	let := fn(t, mod, "main").Body.Statements[1].(*ir.Let)
	elvis, ok := let.Value.(*ir.Elvis)
	require.True(t, ok)
	assert.Equal(t, typesys.ID(typesys.Int), elvis.Type(), "?: with a plain fallback narrows to Int")
}

func TestLetCarriesMemoryStrategy(t *testing.T) {
	mod := lowerSource(t, `fun main() { let n = 1 let s = "x" let xs: List<Int> = [1] }`)

	stmts := fn(t, mod, "main").Body.Statements
	assert.Equal(t, typesys.Copy, stmts[0].(*ir.Let).Strategy)
	assert.Equal(t, typesys.CoW, stmts[1].(*ir.Let).Strategy)
	assert.Equal(t, typesys.CoW, stmts[2].(*ir.Let).Strategy)
}

func TestLoopAsExpressionGetsResultVar(t *testing.T) {
	mod := lowerSource(t, `fun main() { let x: Int = loop { break with 5 } }`)

	let := fn(t, mod, "main").Body.Statements[0].(*ir.Let)
	loop, ok := let.Value.(*ir.LoopExpr)
	require.True(t, ok)

	assert.Equal(t, "__loop_result", loop.ResultVar)
	assert.Equal(t, typesys.ID(typesys.Int), loop.Type())

	brk := loop.Body.Statements[0].(*ir.Break)
	assert.Equal(t, "__loop_result", brk.ResultVar)
}

func TestDepthBreakResolvesToOuterLabel(t *testing.T) {
	mod := lowerSource(t, `
		fun main() {
			outer: for i in 0..10 {
				while true {
					break 2
				}
			}
		}
	`)

	outer := fn(t, mod, "main").Body.Statements[0].(*ir.For)
	assert.Equal(t, "outer", outer.Label)

	inner := outer.Body.Statements[0].(*ir.While)
	brk := inner.Body.Statements[0].(*ir.Break)
	assert.Equal(t, "outer", brk.Label)
}

func TestInnermostBreakNeedsNoLabel(t *testing.T) {
	mod := lowerSource(t, `fun main() { while true { break } }`)

	loop := fn(t, mod, "main").Body.Statements[0].(*ir.While)
	assert.Empty(t, loop.Label)
	assert.Empty(t, loop.Body.Statements[0].(*ir.Break).Label)
}

func TestUserMethodRewrittenToFreeFunction(t *testing.T) {
	mod := lowerSource(t, `
		type Point { x: Int, y: Int }
		impl Point { fun sum(self): Int { return self.x + self.y } }
		fun main() { let p = Point(x: 1, y: 2) let s = p.sum() }
	`)

	require.NotNil(t, fn(t, mod, "Point_instance_sum"))

	let := fn(t, mod, "main").Body.Statements[1].(*ir.Let)
	call, ok := let.Value.(*ir.Call)
	require.True(t, ok)
	assert.Equal(t, "Point_instance_sum", call.Callee)
	require.Len(t, call.Args, 1, "the receiver is prepended as the first argument")
}

func TestListGetReturnsOptional(t *testing.T) {
	mod := lowerSource(t, `fun main() { let xs: List<Int> = [1] let v = xs.get(0) }`)

	let := fn(t, mod, "main").Body.Statements[1].(*ir.Let)
	mc, ok := let.Value.(*ir.MethodCall)
	require.True(t, ok)

	meta, found := mod.Registry.Get(mc.Type())
	require.True(t, found)
	assert.Equal(t, typesys.KOptional, meta.Kind.Tag)
}

func TestStringInterpolationBecomesTextConcat(t *testing.T) {
	mod := lowerSource(t, `fun main() { let n = 2 let s = "n is $n!" }`)

	let := fn(t, mod, "main").Body.Statements[1].(*ir.Let)
	bin, ok := let.Value.(*ir.Binary)
	require.True(t, ok)
	assert.Equal(t, ir.Add, bin.Op)
	assert.Equal(t, typesys.ID(typesys.Text), bin.Type())
}

func TestBlockImplicitFinalExpr(t *testing.T) {
	mod := lowerSource(t, `fun main() { let x = if true { 41 + 1 } else { 0 } }`)

	let := fn(t, mod, "main").Body.Statements[0].(*ir.Let)
	ifx, ok := let.Value.(*ir.IfExpr)
	require.True(t, ok)
	require.NotNil(t, ifx.Then.FinalExpr)
	assert.Equal(t, typesys.ID(typesys.Int), ifx.Type())
}

func TestRegistryClonePreservesIdentity(t *testing.T) {
	reg := typesys.NewRegistry()

	prog, perr := parser.Parse(`fun main() { let x: Int? = 5 }`, reg)
	require.Nil(t, perr)
	require.Nil(t, semantic.Analyze(prog, reg))

	mod, lerr := lower.Lower(prog, reg)
	require.Nil(t, lerr)

	let := mod.Functions[0].Body.Statements[0].(*ir.Let)

	orig, ok1 := reg.Get(let.Type)
	clone, ok2 := mod.Registry.Get(let.Type)
	require.True(t, ok1)
	require.True(t, ok2)
	assert.Equal(t, orig.ID, clone.ID)
}

func TestNullPatternUnsupported(t *testing.T) {
	reg := typesys.NewRegistry()

	prog, perr := parser.Parse(`fun main() { let x: Int? = 5 when x { null -> print(0) _ -> print(1) } }`, reg)
	require.Nil(t, perr)
	require.Nil(t, semantic.Analyze(prog, reg))

	_, lerr := lower.Lower(prog, reg)
	require.NotNil(t, lerr)
	assert.Contains(t, lerr.Error(), "null patterns")
}
