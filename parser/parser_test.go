// SPDX-FileCopyrightText: © 2021 The dyml authors <https://github.com/golangee/dyml/blob/main/AUTHORS>
// SPDX-License-Identifier: Apache-2.0

package parser_test

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rive-lang/rivec/ast"
	"github.com/rive-lang/rivec/parser"
	"github.com/rive-lang/rivec/typesys"
)

func parse(t *testing.T, src string) (*ast.Program, *typesys.Registry) {
	t.Helper()

	reg := typesys.NewRegistry()

	prog, err := parser.Parse(src, reg)
	require.Nil(t, err, "parse error: %v", err)

	return prog, reg
}

func mainBody(t *testing.T, src string) []ast.Stmt {
	t.Helper()

	prog, _ := parse(t, src)

	for _, item := range prog.Items {
		if fn, ok := item.(*ast.Function); ok && fn.Name == "main" {
			return fn.Body.Statements
		}
	}

	t.Fatal("no main function in test program")

	return nil
}

func TestLiteralRoundTrip(t *testing.T) {
	stmts := mainBody(t, `fun main() { let a = 42 let b = 3.25 let c = true }`)
	require.Len(t, stmts, 3)

	a := stmts[0].(*ast.Let).Init.(*ast.IntLit)
	assert.Equal(t, "42", strconv.FormatInt(a.Value, 10))

	b := stmts[1].(*ast.Let).Init.(*ast.FloatLit)
	assert.Equal(t, "3.25", strconv.FormatFloat(b.Value, 'f', -1, 64))

	c := stmts[2].(*ast.Let).Init.(*ast.BoolLit)
	assert.True(t, c.Value)
}

func TestPrecedenceClimbing(t *testing.T) {
	stmts := mainBody(t, `fun main() { let n = 2+3*4 }`)

	add := stmts[0].(*ast.Let).Init.(*ast.Binary)
	require.Equal(t, ast.Add, add.Op)

	mul := add.Right.(*ast.Binary)
	assert.Equal(t, ast.Mul, mul.Op)
}

func TestElvisHasLowestPrecedence(t *testing.T) {
	stmts := mainBody(t, `fun main() { let x: Int? = 1 let y = x ?: 2 + 3 }`)

	elvis := stmts[1].(*ast.Let).Init.(*ast.Elvis)
	_, ok := elvis.Right.(*ast.Binary)
	assert.True(t, ok, "the whole sum is the fallback")
}

func TestFunctionDeclarationForms(t *testing.T) {
	prog, _ := parse(t, `
		fun arrow(x: Int) -> Int { return x }
		fun colon(x: Int): Int { return x }
		fun main() { }
	`)

	require.Len(t, prog.Items, 3)

	arrow := prog.Items[0].(*ast.Function)
	assert.NotNil(t, arrow.ReturnType)

	colon := prog.Items[1].(*ast.Function)
	assert.NotNil(t, colon.ReturnType)
}

func TestNamedArguments(t *testing.T) {
	stmts := mainBody(t, `
		fun greet(name: Text, times: Int) { }
		fun main() { greet(times: 2, name: "hi") }
	`)

	call := stmts[0].(*ast.ExprStmt).X.(*ast.Call)
	require.Len(t, call.Args, 2)
	assert.Equal(t, "times", call.Args[0].Name)
	assert.Equal(t, "name", call.Args[1].Name)
}

func TestLabeledLoopAndDepthBreak(t *testing.T) {
	stmts := mainBody(t, `
		fun main() {
			outer: for i in 0..10 {
				while true {
					break 2
				}
			}
		}
	`)

	loop := stmts[0].(*ast.ExprStmt).X.(*ast.Loop)
	assert.Equal(t, "outer", loop.Label)
	assert.Equal(t, ast.LoopFor, loop.Kind)

	inner := loop.Body.Statements[0].(*ast.ExprStmt).X.(*ast.Loop)
	brk := inner.Body.Statements[0].(*ast.Break)
	assert.Equal(t, 2, brk.Depth)
}

func TestBreakWithValue(t *testing.T) {
	stmts := mainBody(t, `fun main() { let x = loop { break with 5 } }`)

	loop := stmts[0].(*ast.Let).Init.(*ast.Loop)
	brk := loop.Body.Statements[0].(*ast.Break)
	require.NotNil(t, brk.Value)
	assert.Equal(t, int64(5), brk.Value.(*ast.IntLit).Value)
}

func TestWhenArms(t *testing.T) {
	stmts := mainBody(t, `
		fun main() {
			let d = when 3 {
				1, 2 -> "low"
				in 3..=5 -> "mid"
				n if n > 100 -> "guarded"
				_ -> "high"
			}
		}
	`)

	when := stmts[0].(*ast.Let).Init.(*ast.When)
	require.Len(t, when.Arms, 4)

	assert.Len(t, when.Arms[0].Patterns, 2)

	_, isRange := when.Arms[1].Patterns[0].(*ast.RangePattern)
	assert.True(t, isRange)

	assert.NotNil(t, when.Arms[2].Guard)

	_, isWildcard := when.Arms[3].Patterns[0].(*ast.WildcardPattern)
	assert.True(t, isWildcard)
}

func TestStringInterpolationSplitsParts(t *testing.T) {
	stmts := mainBody(t, `fun main() { let name = "world" let s = "Hello, $name: ${1 + 2}!" }`)

	lit := stmts[1].(*ast.Let).Init.(*ast.StringLit)
	require.Len(t, lit.Exprs, 2)
	require.Len(t, lit.Parts, 3)

	assert.Equal(t, "Hello, ", lit.Parts[0])
	assert.Equal(t, ": ", lit.Parts[1])
	assert.Equal(t, "!", lit.Parts[2])

	_, isIdent := lit.Exprs[0].(*ast.Ident)
	assert.True(t, isIdent)

	_, isBinary := lit.Exprs[1].(*ast.Binary)
	assert.True(t, isBinary, "${...} re-parses through a nested parser")
}

func TestDictLiteralDisambiguatedFromBlock(t *testing.T) {
	stmts := mainBody(t, `fun main() { let d = { "a": 1, "b": 2 } }`)

	dict := stmts[0].(*ast.Let).Init.(*ast.DictLit)
	assert.Len(t, dict.Entries, 2)
}

func TestTupleAndUnitLiterals(t *testing.T) {
	stmts := mainBody(t, `fun main() { let t = (1, "two") let u = () let p = (1) }`)

	tuple := stmts[0].(*ast.Let).Init.(*ast.TupleLit)
	assert.Len(t, tuple.Elements, 2)

	unit := stmts[1].(*ast.Let).Init.(*ast.TupleLit)
	assert.Empty(t, unit.Elements)

	_, isInt := stmts[2].(*ast.Let).Init.(*ast.IntLit)
	assert.True(t, isInt, "a single parenthesized expression is not a tuple")
}

func TestTypeDeclRegistersStruct(t *testing.T) {
	_, reg := parse(t, `
		type Point { x: Int, y: Int }
		fun main() { let p = Point(x: 1, y: 2) }
	`)

	id, ok := reg.GetByName("Point")
	require.True(t, ok)

	meta, _ := reg.Get(id)
	assert.Equal(t, typesys.KStruct, meta.Kind.Tag)
	require.Len(t, meta.Kind.Fields, 2)
	assert.Equal(t, "x", meta.Kind.Fields[0].Name)
}

func TestStructConstructRecognized(t *testing.T) {
	stmts := mainBody(t, `
		type Point { x: Int, y: Int }
		fun main() { let p = Point(x: 1, y: 2) }
	`)

	construct := stmts[0].(*ast.Let).Init.(*ast.StructConstruct)
	assert.Equal(t, "Point", construct.TypeName)
}

func TestEnumDeclAndConstruct(t *testing.T) {
	stmts := mainBody(t, `
		type Shape = Circle(Float) | Square(Float) | Dot
		fun main() { let s = Shape.Circle(1.5) }
	`)

	construct := stmts[0].(*ast.Let).Init.(*ast.EnumConstruct)
	assert.Equal(t, "Shape", construct.EnumName)
	assert.Equal(t, "Circle", construct.Variant)
	assert.Len(t, construct.Args, 1)
}

func TestTypesCanReferForward(t *testing.T) {
	_, reg := parse(t, `
		type Outer { inner: Inner }
		type Inner { value: Int }
		fun main() { }
	`)

	_, ok := reg.GetByName("Outer")
	assert.True(t, ok)
}

func TestImplBlockParsesMethods(t *testing.T) {
	prog, _ := parse(t, `
		type Point { x: Int, y: Int }
		impl Point {
			fun norm(self): Int { return self.x + self.y }
		}
		fun main() { }
	`)

	var impl *ast.ImplBlock

	for _, item := range prog.Items {
		if ib, ok := item.(*ast.ImplBlock); ok {
			impl = ib
		}
	}

	require.NotNil(t, impl)
	assert.Equal(t, "Point", impl.TypeName)
	require.Len(t, impl.Methods, 1)
	assert.Equal(t, "self", impl.Methods[0].Params[0].Name)
}

func TestSafeCallAndElvisTokens(t *testing.T) {
	stmts := mainBody(t, `fun main() { let s: Text? = "x" let n = s?.len() ?: 0 }`)

	elvis := stmts[1].(*ast.Let).Init.(*ast.Elvis)
	mc := elvis.Left.(*ast.MethodCall)
	assert.True(t, mc.Safe)
	assert.Equal(t, "len", mc.Method)
}

func TestFirstSyntaxErrorAborts(t *testing.T) {
	reg := typesys.NewRegistry()

	_, err := parser.Parse(`fun main() { let = 5 }`, reg)
	require.NotNil(t, err)
	assert.Greater(t, err.Span.Start.Line, 0)
}

func TestNullableLetShorthand(t *testing.T) {
	stmts := mainBody(t, `fun main() { let x? = 5 }`)

	let := stmts[0].(*ast.Let)
	assert.True(t, let.NullableTag)
}
