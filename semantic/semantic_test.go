// SPDX-FileCopyrightText: © 2021 The dyml authors <https://github.com/golangee/dyml/blob/main/AUTHORS>
// SPDX-License-Identifier: Apache-2.0

package semantic_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rive-lang/rivec/parser"
	"github.com/rive-lang/rivec/semantic"
	"github.com/rive-lang/rivec/typesys"
)

func analyze(t *testing.T, src string) *semantic.Error {
	t.Helper()

	reg := typesys.NewRegistry()

	prog, perr := parser.Parse(src, reg)
	require.Nil(t, perr, "parse error: %v", perr)

	return semantic.Analyze(prog, reg)
}

func TestAccepted(t *testing.T) {
	cases := map[string]string{
		"minimal main":       `fun main() { }`,
		"let and arithmetic": `fun main() { let x = 1 + 2 * 3 }`,
		"mutable assignment": `fun main() { let mut x = 1 x = 2 }`,
		"call with widening": `fun f(x: Int?) { } fun main() { f(5) }`,
		"named args":         `fun f(a: Int, b: Text) { } fun main() { f(b: "x", a: 1) }`,
		"return widening":    `fun f(): Int? { return 5 } fun main() { let x = f() }`,
		"if statement no else": `
			fun main() { if 1 < 2 { } }`,
		"if expression both branches": `
			fun main() { let x = if true { 1 } else { 2 } }`,
		"elvis narrowing": `
			fun main() { let x: Int? = null let y: Int = x ?: 42 }`,
		"safe call": `
			fun main() { let s: Text? = "x" let n: Int? = s?.len() }`,
		"when over bool": `
			fun main() { let x = when true { true -> 1 false -> 2 } }`,
		"when wildcard": `
			fun main() { let x = when 5 { 1 -> "a" _ -> "b" } }`,
		"loop break value": `
			fun main() { let x: Int = loop { break with 7 } }`,
		"for over range": `
			fun main() { for i in 0..10 { print(i) } }`,
		"shadowing across scopes": `
			fun main() { let x = 1 if true { let x = "s" print(x) } }`,
		"enum exhaustive": `
			type Shape = Circle(Float) | Dot
			fun main() {
				let s = Shape.Dot
				when s { Circle(r) -> print(r) Dot -> print(0) }
			}`,
		"instance method": `
			type Point { x: Int, y: Int }
			impl Point { fun sum(self): Int { return self.x + self.y } }
			fun main() { let p = Point(x: 1, y: 2) let s = p.sum() }`,
		"list literal and methods": `
			fun main() {
				let xs: List<Int> = [1, 2, 3]
				xs.append(4)
				let n = xs.len()
				let first: Int = xs.get(0) ?: 0
			}`,
		"dict literal": `
			fun main() { let d: Map<Text, Int> = { "a": 1 } let v: Int? = d.get("a") }`,
	}

	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			err := analyze(t, src)
			assert.Nil(t, err, "expected acceptance, got: %v", err)
		})
	}
}

func TestRejected(t *testing.T) {
	cases := map[string]struct {
		src  string
		want string
	}{
		"missing main": {
			`fun helper() { }`,
			"missing 'main'",
		},
		"undefined variable": {
			`fun main() { let x = y }`,
			"undefined",
		},
		"let type mismatch": {
			`fun main() { let x: Int = "s" }`,
			"cannot initialize",
		},
		"assign immutable": {
			`fun main() { let x = 1 x = 2 }`,
			"immutable",
		},
		"assign const": {
			`fun main() { const x = 1 x = 2 }`,
			"immutable",
		},
		"assign type mismatch": {
			`fun main() { let mut x = 1 x = "s" }`,
			"cannot assign",
		},
		"duplicate in same scope": {
			`fun main() { let x = 1 let x = 2 }`,
			"already defined",
		},
		"mixed arithmetic": {
			`fun main() { let x = 1 + 1.5 }`,
			"arithmetic requires",
		},
		"unary minus on bool": {
			`fun main() { let x = -true }`,
			"unary '-'",
		},
		"unary not on int": {
			`fun main() { let x = !1 }`,
			"unary '!'",
		},
		"logic on ints": {
			`fun main() { let x = 1 && 2 }`,
			"logical operators",
		},
		"call arity": {
			`fun f(x: Int) { } fun main() { f(1, 2) }`,
			"expects 1 arguments",
		},
		"unknown named arg": {
			`fun f(x: Int) { } fun main() { f(y: 1) }`,
			"no parameter named",
		},
		"argument type mismatch": {
			`fun f(x: Int) { } fun main() { f("s") }`,
			"cannot pass",
		},
		"return type mismatch": {
			`fun f(): Int { return "s" } fun main() { }`,
			"cannot return",
		},
		"bare return needs unit": {
			`fun f(): Int { return } fun main() { }`,
			"bare 'return'",
		},
		"if condition not bool": {
			`fun main() { if 1 { } }`,
			"must be Bool",
		},
		"if expression needs else": {
			`fun main() { let x = if true { 1 } }`,
			"requires an else",
		},
		"if branch types differ": {
			`fun main() { let x = if true { 1 } else { "s" } }`,
			"different types",
		},
		"while condition not bool": {
			`fun main() { while 1 { } }`,
			"must be Bool",
		},
		"for bounds not int": {
			`fun main() { for i in 0..1.5 { } }`,
			"must be Int",
		},
		"break outside loop": {
			`fun main() { break }`,
			"only valid inside a loop",
		},
		"break depth exceeds nesting": {
			`fun main() { while true { break 2 } }`,
			"exceeds loop nesting",
		},
		"mixed break values": {
			`fun main() { loop { break with 1 break } }`,
			"mixes 'break'",
		},
		"break value types differ": {
			`fun main() { loop { break with 1 break with "s" } }`,
			"differs from earlier",
		},
		"no implicit narrowing": {
			`fun main() { let x: Int? = 5 let y: Int = x }`,
			"cannot initialize",
		},
		"null needs optional sink": {
			`fun main() { let x: Int = null }`,
			"cannot initialize",
		},
		"elvis on non-nullable": {
			`fun main() { let x = 1 ?: 2 }`,
			"must be nullable",
		},
		"safe call on non-nullable": {
			`fun main() { let s = "x" let n = s?.len() }`,
			"requires a nullable receiver",
		},
		"when not exhaustive over bool": {
			`fun main() { let x = when true { true -> 1 } }`,
			"cover both",
		},
		"when not exhaustive over enum": {
			`type Shape = Circle(Float) | Dot
			 fun main() { let s = Shape.Dot when s { Dot -> print(0) } }`,
			"not exhaustive",
		},
		"when arm types differ": {
			`fun main() { let x = when 1 { 1 -> 2 _ -> "s" } }`,
			"different types",
		},
		"guard not bool": {
			`fun main() { when 1 { n if n -> print(1) _ -> print(2) } }`,
			"guard must be Bool",
		},
		"guarded arm does not cover": {
			`fun main() { let x = when true { true -> 1 false if true -> 2 } }`,
			"cover both",
		},
		"unknown method": {
			`fun main() { let s = "x" let n = s.reverse() }`,
			"has no method",
		},
		"unknown field": {
			`type Point { x: Int, y: Int }
			 fun main() { let p = Point(x: 1, y: 2) let z = p.z }`,
			"has no field",
		},
		"range outside for": {
			`fun main() { let r = 0..10 }`,
			"only valid as the iterable",
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			err := analyze(t, tc.src)
			require.NotNil(t, err, "expected rejection")
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestErrorSpanPointsAtInitializer(t *testing.T) {
	err := analyze(t, `fun main() { let x: Int = "s" }`)
	require.NotNil(t, err)

	assert.Equal(t, 1, err.Span.Start.Line)
	assert.Greater(t, err.Span.Start.Col, 20, "span anchors at the initializer, not the let keyword")
}
