// SPDX-FileCopyrightText: © 2021 The dyml authors <https://github.com/golangee/dyml/blob/main/AUTHORS>
// SPDX-License-Identifier: Apache-2.0

package optimizer_test

import (
	"math"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rive-lang/rivec/ir"
	"github.com/rive-lang/rivec/lower"
	"github.com/rive-lang/rivec/optimizer"
	"github.com/rive-lang/rivec/parser"
	"github.com/rive-lang/rivec/semantic"
	"github.com/rive-lang/rivec/typesys"
)

func build(t *testing.T, src string) *ir.Module {
	t.Helper()

	reg := typesys.NewRegistry()

	prog, perr := parser.Parse(src, reg)
	require.Nil(t, perr, "parse error: %v", perr)
	require.Nil(t, semantic.Analyze(prog, reg))

	mod, lerr := lower.Lower(prog, reg)
	require.Nil(t, lerr, "lowering error: %v", lerr)

	return mod
}

func mainFn(t *testing.T, mod *ir.Module) *ir.Function {
	t.Helper()

	for _, f := range mod.Functions {
		if f.Name == "main" {
			return f
		}
	}

	t.Fatal("no main in module")

	return nil
}

func TestFoldsArithmeticChain(t *testing.T) {
	mod := build(t, `fun main() { let n = 2+3*4 print(n) }`)

	optimizer.New().Optimize(mod)

	let := mainFn(t, mod).Body.Statements[0].(*ir.Let)
	lit, ok := let.Value.(*ir.IntLit)
	require.True(t, ok, "2+3*4 folds to a single literal")
	assert.Equal(t, int64(14), lit.Value)
}

func TestFoldSoundness(t *testing.T) {
	cases := map[string]struct {
		src  string
		want int64
	}{
		"add":        {`fun main() { let n = 40 + 2 print(n) }`, 42},
		"sub":        {`fun main() { let n = 50 - 8 print(n) }`, 42},
		"mul":        {`fun main() { let n = 6 * 7 print(n) }`, 42},
		"div":        {`fun main() { let n = 84 / 2 print(n) }`, 42},
		"mod":        {`fun main() { let n = 142 % 100 print(n) }`, 42},
		"nested neg": {`fun main() { let n = -(-42) print(n) }`, 42},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			mod := build(t, tc.src)
			optimizer.New().Optimize(mod)

			let := mainFn(t, mod).Body.Statements[0].(*ir.Let)
			lit, ok := let.Value.(*ir.IntLit)
			require.True(t, ok)
			assert.Equal(t, tc.want, lit.Value)
		})
	}
}

func TestFoldsComparisonsAndLogic(t *testing.T) {
	mod := build(t, `fun main() { let b = 1 < 2 && "a" == "a" print(b) }`)

	optimizer.New().Optimize(mod)

	let := mainFn(t, mod).Body.Statements[0].(*ir.Let)
	lit, ok := let.Value.(*ir.BoolLit)
	require.True(t, ok)
	assert.True(t, lit.Value)
}

func TestDivisionByZeroStaysUnfolded(t *testing.T) {
	mod := build(t, `fun main() { let n = 1 / 0 print(n) }`)

	optimizer.New().Optimize(mod)

	let := mainFn(t, mod).Body.Statements[0].(*ir.Let)
	_, stillBinary := let.Value.(*ir.Binary)
	assert.True(t, stillBinary, "division by zero is left for the host to surface")
}

func TestOverflowStaysUnfolded(t *testing.T) {
	// Built by hand: the MaxInt64 + 1 node is placed directly into the
	// lowered IR in place of the parsed initializer.
	mod := build(t, `fun main() { let n = 1 + 1 print(n) }`)

	let := mainFn(t, mod).Body.Statements[0].(*ir.Let)
	let.Value = &ir.Binary{
		Op:    ir.Add,
		Left:  &ir.IntLit{Value: math.MaxInt64},
		Right: &ir.IntLit{Value: 1},
		Typ:   typesys.Int,
	}

	optimizer.New().Optimize(mod)

	_, stillBinary := let.Value.(*ir.Binary)
	assert.True(t, stillBinary)
}

func TestFixedPoint(t *testing.T) {
	src := `
		fun main() {
			let a = 2 + 3 * 4
			let unused = 1
			print(a)
			return
			let after = 9
		}
	`

	once := build(t, src)
	optimizer.New().Optimize(once)

	twice := build(t, src)
	optimizer.New().Optimize(twice)
	optimizer.New().Optimize(twice)

	assert.True(t, reflect.DeepEqual(once.Functions, twice.Functions),
		"optimizing twice yields the same IR as optimizing once")
}

func TestPruneStatementsAfterReturn(t *testing.T) {
	mod := build(t, `fun main() { let u = 0 return let v = 1 }`)

	optimizer.New().Optimize(mod)

	stmts := mainFn(t, mod).Body.Statements
	_, last := stmts[len(stmts)-1].(*ir.Return)
	assert.True(t, last, "nothing survives after the return")
}

func TestDeadLetWithoutCallRemoved(t *testing.T) {
	mod := build(t, `fun main() { let u = 0 return }`)

	optimizer.New().Optimize(mod)

	stmts := mainFn(t, mod).Body.Statements
	require.Len(t, stmts, 1)
	_, isReturn := stmts[0].(*ir.Return)
	assert.True(t, isReturn, "an unread let with a pure initializer is gone")
}

func TestDeadLetWithCallKept(t *testing.T) {
	mod := build(t, `
		fun effect(): Int { return 1 }
		fun main() { let u = effect() }
	`)

	optimizer.New().Optimize(mod)

	stmts := mainFn(t, mod).Body.Statements
	require.Len(t, stmts, 1)

	let, ok := stmts[0].(*ir.Let)
	require.True(t, ok, "a let whose initializer calls a function stays")
	_, isCall := let.Value.(*ir.Call)
	assert.True(t, isCall)
}

func TestReadLetKept(t *testing.T) {
	mod := build(t, `fun main() { let n = 5 print(n) }`)

	optimizer.New().Optimize(mod)

	_, ok := mainFn(t, mod).Body.Statements[0].(*ir.Let)
	assert.True(t, ok)
}

func TestEmptyOptimizerChangesNothing(t *testing.T) {
	mod := build(t, `fun main() { let n = 2 + 3 print(n) }`)
	ref := build(t, `fun main() { let n = 2 + 3 print(n) }`)

	optimizer.Empty().Optimize(mod)

	assert.True(t, reflect.DeepEqual(ref.Functions, mod.Functions))
}

func TestFoldsInsideNestedBlocks(t *testing.T) {
	mod := build(t, `fun main() { if true { let n = 2 * 21 print(n) } }`)

	optimizer.New().Optimize(mod)

	ifStmt := mainFn(t, mod).Body.Statements[0].(*ir.If)
	let := ifStmt.Then.Statements[0].(*ir.Let)
	lit, ok := let.Value.(*ir.IntLit)
	require.True(t, ok)
	assert.Equal(t, int64(42), lit.Value)
}
