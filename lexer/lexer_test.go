// SPDX-FileCopyrightText: © 2021 The dyml authors <https://github.com/golangee/dyml/blob/main/AUTHORS>
// SPDX-License-Identifier: Apache-2.0

package lexer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rive-lang/rivec/lexer"
	"github.com/rive-lang/rivec/token"
)

func kinds(t *testing.T, toks []token.Token) []token.Kind {
	t.Helper()

	out := make([]token.Kind, 0, len(toks))
	for _, tok := range toks {
		out = append(out, tok.Kind)
	}

	return out
}

func TestKeywords(t *testing.T) {
	toks, err := lexer.Tokenize("let mut fun if else while for return break continue")
	require.Nil(t, err)

	assert.Equal(t, []token.Kind{
		token.Let, token.Mut, token.Fun, token.If, token.Else, token.While,
		token.For, token.Return, token.Break, token.Continue, token.EOF,
	}, kinds(t, toks))
}

func TestLiterals(t *testing.T) {
	toks, err := lexer.Tokenize(`42 3.14 "hello" true false null`)
	require.Nil(t, err)
	require.Len(t, toks, 7)

	assert.Equal(t, token.Integer, toks[0].Kind)
	assert.Equal(t, "42", toks[0].Text)

	assert.Equal(t, token.Float, toks[1].Kind)
	assert.Equal(t, "3.14", toks[1].Text)

	assert.Equal(t, token.String, toks[2].Kind)
	assert.Equal(t, "hello", toks[2].Text)

	assert.Equal(t, token.True, toks[3].Kind)
	assert.Equal(t, token.False, toks[4].Kind)
	assert.Equal(t, token.Null, toks[5].Kind)
}

func TestOperators(t *testing.T) {
	toks, err := lexer.Tokenize("+ - * / % = == != < <= > >= && || !")
	require.Nil(t, err)

	assert.Equal(t, []token.Kind{
		token.Plus, token.Minus, token.Star, token.Slash, token.Percent,
		token.Equal, token.EqualEqual, token.BangEqual, token.Less, token.LessEqual,
		token.Greater, token.GreaterEqual, token.AmpAmp, token.PipePipe, token.Bang,
		token.EOF,
	}, kinds(t, toks))
}

func TestRangeOperatorsPreferLongestMatch(t *testing.T) {
	toks, err := lexer.Tokenize("0..=9 0..9")
	require.Nil(t, err)

	assert.Equal(t, token.DotDotEq, toks[1].Kind)
	assert.Equal(t, token.DotDot, toks[4].Kind)
}

func TestMinusIsNeverFusedIntoALiteral(t *testing.T) {
	toks, err := lexer.Tokenize("3-4")
	require.Nil(t, err)

	assert.Equal(t, []token.Kind{token.Integer, token.Minus, token.Integer, token.EOF}, kinds(t, toks))
}

func TestLineCommentsAreSkipped(t *testing.T) {
	toks, err := lexer.Tokenize("let x = 1 // trailing comment\nlet y = 2")
	require.Nil(t, err)

	assert.Equal(t, []token.Kind{
		token.Let, token.Identifier, token.Equal, token.Integer,
		token.Let, token.Identifier, token.Equal, token.Integer, token.EOF,
	}, kinds(t, toks))
}

func TestUnterminatedStringIsALexError(t *testing.T) {
	_, err := lexer.Tokenize(`"unterminated`)
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "unterminated")
}

func TestSimpleFunction(t *testing.T) {
	toks, err := lexer.Tokenize(`
		fun greet(name: Text): Text {
			print("Hello, " + name)
		}
	`)
	require.Nil(t, err)

	hasKind := func(k token.Kind) bool {
		for _, tok := range toks {
			if tok.Kind == k {
				return true
			}
		}

		return false
	}

	assert.True(t, hasKind(token.Fun))
	assert.True(t, hasKind(token.Identifier))
	assert.True(t, hasKind(token.Print))
}

func TestSpansTrackLineAndColumn(t *testing.T) {
	toks, err := lexer.Tokenize("let\nx")
	require.Nil(t, err)

	assert.Equal(t, 1, toks[0].Span.Start.Line)
	assert.Equal(t, 2, toks[1].Span.Start.Line)
	assert.Equal(t, 1, toks[1].Span.Start.Col)
}
