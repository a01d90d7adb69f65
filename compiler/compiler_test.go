// SPDX-FileCopyrightText: © 2021 The dyml authors <https://github.com/golangee/dyml/blob/main/AUTHORS>
// SPDX-License-Identifier: Apache-2.0

package compiler_test

import (
	"strings"
	"testing"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rive-lang/rivec/compiler"
)

func contains(t *testing.T, emitted, want string) {
	t.Helper()

	if strings.Contains(emitted, want) {
		return
	}

	diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(want),
		B:        difflib.SplitLines(emitted),
		FromFile: "expected fragment",
		ToFile:   "emitted",
		Context:  2,
	})

	t.Fatalf("emitted Rust lacks %q\n%s", want, diff)
}

func TestHelloWorldEmitsLinePrint(t *testing.T) {
	out, err := compiler.Compile(`fun main() { print("Hello") }`)
	require.Nil(t, err, "compile error: %v", err)

	contains(t, out, "println!")
	contains(t, out, `"Hello"`)
}

func TestAddFunctionChecksAndCompiles(t *testing.T) {
	src := `
		fun add(x: Int, y: Int): Int { return x + y }
		fun main() { let r = add(1, 2) print(r) }
	`

	require.Nil(t, compiler.Check(src))

	out, err := compiler.Compile(src)
	require.Nil(t, err)

	contains(t, out, "fn add(x: i64, y: i64) -> i64")
	contains(t, out, "fn main()")
	contains(t, out, "add(1, 2)")
}

func TestTypeMismatchFailsAtInitializer(t *testing.T) {
	_, err := compiler.Compile(`fun main() { let x: Int = "s" }`)
	require.NotNil(t, err)

	assert.Equal(t, compiler.StageSemantic, err.Stage)
	require.NotNil(t, err.Pos)
	assert.Equal(t, 1, err.Pos.Span.Start.Line)
}

func TestNoImplicitNarrowing(t *testing.T) {
	_, err := compiler.Compile(`fun main() { let x: Int? = 5 let y: Int = x }`)
	require.NotNil(t, err)
	assert.Equal(t, compiler.StageSemantic, err.Stage)
}

func TestElvisNarrowingSucceeds(t *testing.T) {
	err := compiler.Check(`fun main() { let x: Int? = null let y: Int = x ?: 42 }`)
	assert.Nil(t, err)
}

func TestConstantsFoldIntoEmission(t *testing.T) {
	out, err := compiler.Compile(`fun main() { let n = 2+3*4 print(n) }`)
	require.Nil(t, err)

	contains(t, out, "let n: i64 = 14;")
}

func TestDeadCodeGone(t *testing.T) {
	out, err := compiler.Compile(`fun main() { let u = 0 print(1) return let v = 1 }`)
	require.Nil(t, err)

	assert.NotContains(t, out, "let u", "unread let with pure initializer is pruned")
	assert.NotContains(t, out, "let v", "statements after return are pruned")
}

func TestMissingMainFails(t *testing.T) {
	err := compiler.Check(`fun helper() { }`)
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "missing 'main'")
}

func TestLexErrorCarriesStage(t *testing.T) {
	err := compiler.Check("fun main() { let x = 1 @ 2 }")
	require.NotNil(t, err)
	assert.Equal(t, compiler.StageLex, err.Stage)
}

func TestParseErrorCarriesStage(t *testing.T) {
	err := compiler.Check(`fun main() { let = 5 }`)
	require.NotNil(t, err)
	assert.Equal(t, compiler.StageParse, err.Stage)
}

func TestExplainRendersCaretLine(t *testing.T) {
	src := `fun main() { let x: Int = "s" }`

	err := compiler.Check(src)
	require.NotNil(t, err)

	rendered := err.Explain(src)
	assert.Contains(t, rendered, "error:")
	assert.Contains(t, rendered, src)
	assert.Contains(t, rendered, "^")
}

func TestCompileIsPure(t *testing.T) {
	src := `fun main() { print("twice") }`

	first, err1 := compiler.Compile(src)
	second, err2 := compiler.Compile(src)
	require.Nil(t, err1)
	require.Nil(t, err2)

	assert.Equal(t, first, second)
}

func TestEndToEndKitchenSink(t *testing.T) {
	src := `
		type Shape = Circle(Float) | Square(Float) | Dot

		fun area(s: Shape): Float {
			let a = when s {
				Circle(r) -> 3.14 * r * r
				Square(w) -> w * w
				Dot -> 0.0
			}
			return a
		}

		fun main() {
			let shapes: List<Float> = [1.0, 2.0]
			let mut total = 0.0
			for i in 0..2 {
				total = total + (shapes.get(i) ?: 0.0)
			}
			print("total is $total")
			print(area(Shape.Circle(1.0)))
		}
	`

	out, err := compiler.Compile(src)
	require.Nil(t, err, "compile error: %v", err)

	contains(t, out, "enum Shape {")
	contains(t, out, "fn area(s: Shape) -> f64")
	contains(t, out, "for i in 0..2 {")
	contains(t, out, "format!(")
}

func TestWithOptionsEmitsInlineHints(t *testing.T) {
	src := `
		fun tiny(x: Int): Int { return x + 1 }
		fun main() { print(tiny(1)) }
	`

	out, err := compiler.CompileWithOptions(src, compiler.Options{EmitInlineHints: true})
	require.Nil(t, err)

	contains(t, out, "#[inline]")
}
