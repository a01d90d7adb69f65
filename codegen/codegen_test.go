// SPDX-FileCopyrightText: © 2021 The dyml authors <https://github.com/golangee/dyml/blob/main/AUTHORS>
// SPDX-License-Identifier: Apache-2.0

package codegen_test

import (
	"strings"
	"testing"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rive-lang/rivec/codegen"
	"github.com/rive-lang/rivec/lower"
	"github.com/rive-lang/rivec/optimizer"
	"github.com/rive-lang/rivec/parser"
	"github.com/rive-lang/rivec/semantic"
	"github.com/rive-lang/rivec/typesys"
)

func emit(t *testing.T, src string) string {
	return emitWith(t, src, codegen.Options{})
}

func emitWith(t *testing.T, src string, opts codegen.Options) string {
	t.Helper()

	reg := typesys.NewRegistry()

	prog, perr := parser.Parse(src, reg)
	require.Nil(t, perr, "parse error: %v", perr)
	require.Nil(t, semantic.Analyze(prog, reg))

	mod, lerr := lower.Lower(prog, reg)
	require.Nil(t, lerr, "lowering error: %v", lerr)

	optimizer.New().Optimize(mod)

	out, cerr := codegen.Generate(mod, opts)
	require.Nil(t, cerr, "codegen error: %v", cerr)

	return out
}

// requireContains asserts substring presence, printing a unified diff
// of the emitted text on failure so a mis-emission is readable.
func requireContains(t *testing.T, emitted, want string) {
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

func TestHelloWorld(t *testing.T) {
	out := emit(t, `fun main() { print("Hello") }`)

	requireContains(t, out, "fn main() {")
	requireContains(t, out, `println!("{}", "Hello".to_string());`)
}

func TestFunctionSignatureLowering(t *testing.T) {
	out := emit(t, `
		fun add(x: Int, y: Int): Int { return x + y }
		fun main() { let r = add(1, 2) print(r) }
	`)

	requireContains(t, out, "fn add(x: i64, y: i64) -> i64 {")
	requireContains(t, out, "return x + y;")
	requireContains(t, out, "add(1, 2)")
}

func TestPrecedenceParenthesization(t *testing.T) {
	out := emit(t, `
		fun f(a: Int, b: Int, c: Int): Int { return (a + b) * c }
		fun main() { }
	`)

	requireContains(t, out, "(a + b) * c")
}

func TestLeftAssociativeNeedsNoParens(t *testing.T) {
	out := emit(t, `
		fun f(a: Int, b: Int, c: Int): Int { return a - b - c }
		fun main() { }
	`)

	requireContains(t, out, "return a - b - c;")
}

func TestRightNestedSubtractionKeepsParens(t *testing.T) {
	out := emit(t, `
		fun f(a: Int, b: Int, c: Int): Int { return a - (b - c) }
		fun main() { }
	`)

	requireContains(t, out, "a - (b - c)")
}

func TestUnaryLiteralFusion(t *testing.T) {
	out := emit(t, `fun main() { let n = -5 print(n) }`)

	requireContains(t, out, "= -5;")
	assert.NotContains(t, out, "-(5)")
}

func TestTextConcatEmitsFormat(t *testing.T) {
	out := emit(t, `
		fun greet(name: Text): Text { return "Hello, " + name }
		fun main() { }
	`)

	requireContains(t, out, `format!("{}{}", "Hello, ".to_string(), name.clone())`)
}

func TestOptionalTypeAndWrap(t *testing.T) {
	out := emit(t, `fun main() { let x: Int? = 5 print(x) }`)

	requireContains(t, out, "let x: Option<i64> = Some(5);")
	requireContains(t, out, `None => println!("null"),`)
}

func TestElvisEmitsUnwrapOrElse(t *testing.T) {
	out := emit(t, `fun main() { let x: Int? = null let y: Int = x ?: 42 print(y) }`)

	requireContains(t, out, "x.unwrap_or_else(|| 42)")
}

func TestListLoweringAndMethods(t *testing.T) {
	out := emit(t, `
		fun main() {
			let xs: List<Int> = [1, 2]
			xs.append(3)
			print(xs)
		}
	`)

	requireContains(t, out, "let xs: Rc<RefCell<Vec<i64>>> = Rc::new(RefCell::new(vec![1, 2]));")
	requireContains(t, out, "xs.clone().borrow_mut().push(3);")
	requireContains(t, out, `println!("{:?}", xs.clone().borrow());`)
}

func TestMapLowering(t *testing.T) {
	out := emit(t, `fun main() { let d: Map<Text, Int> = { "a": 1 } print(d) }`)

	requireContains(t, out, "Rc<RefCell<HashMap<String, i64>>>")
	requireContains(t, out, `HashMap::from([("a".to_string(), 1)])`)
}

func TestCopyArrayStaysFixedSize(t *testing.T) {
	out := emit(t, `fun main() { let a = [1, 2, 3] print(a) }`)

	requireContains(t, out, "let a: [i64; 3] = [1, 2, 3];")
}

func TestLoopAsExpressionResultVariable(t *testing.T) {
	out := emit(t, `fun main() { let x: Int = loop { break with 5 } print(x) }`)

	requireContains(t, out, "let mut __loop_result = None;")
	requireContains(t, out, "__loop_result = Some(5);")
	requireContains(t, out, "__loop_result.unwrap()")
}

func TestLabeledLoopAndBreak(t *testing.T) {
	out := emit(t, `
		fun main() {
			outer: for i in 0..10 {
				while true {
					break 2
				}
			}
		}
	`)

	requireContains(t, out, "'outer: for i in 0..10 {")
	requireContains(t, out, "break 'outer;")
}

func TestMatchOverTextUsesStrSlice(t *testing.T) {
	out := emit(t, `
		fun main() {
			let s = "hi"
			when s {
				"hi" -> print(1)
				_ -> print(2)
			}
		}
	`)

	requireContains(t, out, "match s.clone().as_str() {")
	requireContains(t, out, `"hi" =>`)
}

func TestStructAndEnumDeclarations(t *testing.T) {
	out := emit(t, `
		type Point { x: Int, y: Int }
		type Shape = Circle(Float) | Dot
		fun main() {
			let p = Point(x: 1, y: 2)
			let s = Shape.Circle(1.5)
			print(p.x)
			when s {
				Circle(r) -> print(r)
				Dot -> print(0)
			}
		}
	`)

	requireContains(t, out, "struct Point {")
	requireContains(t, out, "x: i64,")
	requireContains(t, out, "enum Shape {")
	requireContains(t, out, "Circle(f64),")
	requireContains(t, out, "Rc::new(RefCell::new(Point { x: 1, y: 2 }))")
	requireContains(t, out, "Shape::Circle(1.5)")
	requireContains(t, out, "Shape::Circle(r) =>")
	requireContains(t, out, "Shape::Dot =>")
	requireContains(t, out, ".borrow().x.clone()")
}

func TestInstanceMethodEmittedAsFreeFunction(t *testing.T) {
	out := emit(t, `
		type Point { x: Int, y: Int }
		impl Point { fun sum(self): Int { return self.x + self.y } }
		fun main() { let p = Point(x: 1, y: 2) print(p.sum()) }
	`)

	requireContains(t, out, "fn Point_instance_sum(self_: Rc<RefCell<Point>>) -> i64 {")
	requireContains(t, out, "Point_instance_sum(p.clone())")
}

func TestInlineHintOnSmallFunctions(t *testing.T) {
	src := `
		fun tiny(x: Int): Int { return x + 1 }
		fun main() { print(tiny(1)) }
	`

	plain := emitWith(t, src, codegen.Options{})
	assert.NotContains(t, plain, "#[inline]")

	hinted := emitWith(t, src, codegen.Options{EmitInlineHints: true})
	requireContains(t, hinted, "#[inline]\nfn tiny")
	assert.NotContains(t, hinted, "#[inline]\nfn main")
}

func TestSafeCallChainsThroughOption(t *testing.T) {
	out := emit(t, `fun main() { let s: Text? = "x" let n = s?.len() print(n) }`)

	requireContains(t, out, "s.clone().map(|__it| (__it.len() as i64))")
}
